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

package oracle

import (
	"encoding/binary"
	"fmt"

	"github.com/probechain/go-morph/common"
	"github.com/probechain/go-morph/crypto"
	"github.com/probechain/go-morph/params"
)

// Seeds of the oracle owned program derived accounts.
var (
	contextSeed     = []byte("context")
	interactionSeed = []byte("interaction")
	identitySeed    = []byte("identity")
	configSeed      = []byte("config")
)

// mustFind derives an oracle address. The seeds used here are fixed size and
// well within limits, so a failure means the derivation code is broken.
func mustFind(seeds ...[]byte) (common.Address, uint8) {
	addr, bump, err := crypto.FindProgramAddress(seeds, params.OracleProgramID)
	if err != nil {
		panic(fmt.Errorf("oracle address derivation: %w", err))
	}
	return addr, bump
}

// ContextAddress returns the address of the context allocated for slot count.
func ContextAddress(count uint32) (common.Address, uint8) {
	return mustFind(contextSeed, countSeed(count))
}

// InteractionAddress returns the address of the interaction between user
// and the given context.
func InteractionAddress(user, context common.Address) (common.Address, uint8) {
	return mustFind(interactionSeed, user.Bytes(), context.Bytes())
}

// IdentityAddress returns the oracle's signing identity used on callbacks.
func IdentityAddress() (common.Address, uint8) {
	return mustFind(identitySeed)
}

// ConfigAddress returns the address of the oracle configuration account.
func ConfigAddress() (common.Address, uint8) {
	return mustFind(configSeed)
}

func countSeed(count uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, count)
}
