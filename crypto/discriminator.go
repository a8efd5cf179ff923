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

import "crypto/sha256"

// DiscriminatorLength is the size of the account and instruction tags.
const DiscriminatorLength = 8

// Discriminator tags the first bytes of program account data and of
// instruction data so readers can tell layouts apart.
type Discriminator [DiscriminatorLength]byte

// AccountDiscriminator returns the tag of the named account layout.
func AccountDiscriminator(name string) Discriminator {
	return sighash("account", name)
}

// InstructionDiscriminator returns the selector of the named instruction.
func InstructionDiscriminator(name string) Discriminator {
	return sighash("global", name)
}

func sighash(namespace, name string) (d Discriminator) {
	sum := sha256.Sum256([]byte(namespace + ":" + name))
	copy(d[:], sum[:DiscriminatorLength])
	return d
}

// Bytes returns a copy of the tag.
func (d Discriminator) Bytes() []byte {
	return append([]byte(nil), d[:]...)
}
