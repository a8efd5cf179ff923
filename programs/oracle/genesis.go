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
	"github.com/probechain/go-morph/common"
	"github.com/probechain/go-morph/core"
	"github.com/probechain/go-morph/core/vm"
	"github.com/probechain/go-morph/params"
)

// GenesisAlloc returns the accounts the oracle needs at genesis: its program
// account, its signing identity and the configuration naming the responder
// and the only signer allowed to create contexts.
func GenesisAlloc(responder, contextAuthority common.Address) core.GenesisAlloc {
	identity, _ := IdentityAddress()
	config, _ := ConfigAddress()

	identityData := identityDiscriminator[:]
	configData := (&Config{Responder: responder, ContextAuthority: contextAuthority}).encode()

	return core.GenesisAlloc{
		params.OracleProgramID: {Owner: params.SystemProgramID, Executable: true, Lamports: mustRent(0)},
		identity:               {Owner: params.OracleProgramID, Lamports: mustRent(IdentitySpace), Data: append([]byte(nil), identityData...)},
		config:                 {Owner: params.OracleProgramID, Lamports: mustRent(ConfigSpace), Data: configData},
	}
}

func mustRent(space int) uint64 {
	rent, err := vm.MinimumBalance(space)
	if err != nil {
		panic(err)
	}
	return rent
}
