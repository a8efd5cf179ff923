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
	"github.com/probechain/go-morph/core"
	"github.com/probechain/go-morph/core/vm"
	"github.com/probechain/go-morph/params"
	"github.com/probechain/go-morph/programs/oracle"
)

// GenesisAlloc returns the accounts the morph program starts with: its
// program account and the slot counter at zero.
func GenesisAlloc() core.GenesisAlloc {
	counter, _ := CounterAddress()
	return core.GenesisAlloc{
		params.MorphProgramID: {Owner: params.SystemProgramID, Executable: true, Lamports: rent(0)},
		counter:               {Owner: params.MorphProgramID, Lamports: rent(CounterSpace), Data: (&Counter{}).encode()},
	}
}

// DefaultGenesis combines both programs' accounts with the given funded
// wallets. The oracle accepts contexts only from the morph counter.
func DefaultGenesis(responder common.Address, funded core.GenesisAlloc) *core.Genesis {
	counter, _ := CounterAddress()
	alloc := core.GenesisAlloc{}
	for _, part := range []core.GenesisAlloc{funded, oracle.GenesisAlloc(responder, counter), GenesisAlloc()} {
		for addr, acct := range part {
			alloc[addr] = acct
		}
	}
	return &core.Genesis{Alloc: alloc}
}

// Registry returns the program registry with both programs deployed.
func Registry() *vm.Registry {
	return vm.NewRegistry(New(), oracle.New())
}

func rent(space int) uint64 {
	lamports, err := vm.MinimumBalance(space)
	if err != nil {
		panic(err)
	}
	return lamports
}
