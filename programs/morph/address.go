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
	"github.com/probechain/go-morph/crypto"
	"github.com/probechain/go-morph/params"
)

var (
	counterSeed = []byte("counter")
	mintSeed    = []byte("mint")
	agentSeed   = []byte("agent")
)

func find(seeds ...[]byte) (common.Address, uint8) {
	addr, bump, err := crypto.FindProgramAddress(seeds, params.MorphProgramID)
	if err != nil {
		// Only reachable with oversized seeds, which none of ours are.
		panic(err)
	}
	return addr, bump
}

// CounterAddress returns the slot counter account.
func CounterAddress() (common.Address, uint8) { return find(counterSeed) }

// MintAddress returns the token mint account. The mint is its own authority.
func MintAddress() (common.Address, uint8) { return find(mintSeed) }

// AgentAddress returns the agent account of wallet.
func AgentAddress(wallet common.Address) (common.Address, uint8) {
	return find(agentSeed, wallet.Bytes())
}
