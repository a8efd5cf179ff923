// Copyright 2024 The go-morph Authors
// This file is part of the go-morph library.
//
// The go-morph library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-morph library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-morph library. If not, see <http://www.gnu.org/licenses/>.

package crypto

import (
	"hash"

	"github.com/probechain/go-morph/common"
	"golang.org/x/crypto/sha3"
)

// KeccakState is a Keccak-256 hasher that can be read without copying its
// state.
type KeccakState interface {
	hash.Hash
	Read([]byte) (int, error)
}

// NewKeccakState creates a legacy Keccak-256 hasher, the hash function of
// transaction and genesis identifiers.
func NewKeccakState() KeccakState {
	return sha3.NewLegacyKeccak256().(KeccakState)
}

// Keccak256 returns the Keccak-256 digest of the concatenated inputs.
func Keccak256(data ...[]byte) []byte {
	b := make([]byte, 32)
	d := NewKeccakState()
	for _, chunk := range data {
		d.Write(chunk)
	}
	d.Read(b)
	return b
}

// Keccak256Hash is Keccak256 returning a common.Hash.
func Keccak256Hash(data ...[]byte) (h common.Hash) {
	d := NewKeccakState()
	for _, chunk := range data {
		d.Write(chunk)
	}
	d.Read(h[:])
	return h
}
