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

package morph

import (
	"github.com/probechain/go-morph/common"
	"github.com/probechain/go-morph/programs/oracle"
)

// ContextAddress returns the oracle context bound to the agent allocated at
// slot count. Contexts live in the oracle's address space; this program only
// records the reference.
func ContextAddress(count uint32) common.Address {
	addr, _ := oracle.ContextAddress(count)
	return addr
}

// InteractionAddress returns the oracle interaction record of wallet
// talking to its agent's context.
func InteractionAddress(wallet, context common.Address) common.Address {
	addr, _ := oracle.InteractionAddress(wallet, context)
	return addr
}
