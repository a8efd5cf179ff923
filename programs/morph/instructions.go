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
	"github.com/probechain/go-morph/core/types"
	"github.com/probechain/go-morph/crypto"
	"github.com/probechain/go-morph/params"
	"github.com/probechain/go-morph/programs/oracle"
)

// NewInitializeTokenInstruction builds the initialize_token instruction.
func NewInitializeTokenInstruction(payer common.Address) types.Instruction {
	mint, _ := MintAddress()
	return types.Instruction{
		ProgramID: params.MorphProgramID,
		Accounts: []types.AccountMeta{
			types.NewAccountMeta(payer, true),
			types.NewAccountMeta(mint, false),
		},
		Data: initializeTokenSelector[:],
	}
}

// NewInitializeAgentInstruction builds the initialize_agent instruction for
// the slot the caller last read from the counter. If another allocation
// consumes that slot first, the instruction fails with a stale state error.
func NewInitializeAgentInstruction(payer common.Address, count uint32) types.Instruction {
	agent, _ := AgentAddress(payer)
	counter, _ := CounterAddress()
	config, _ := oracle.ConfigAddress()
	return types.Instruction{
		ProgramID: params.MorphProgramID,
		Accounts: []types.AccountMeta{
			types.NewAccountMeta(payer, true),
			types.NewAccountMeta(agent, false),
			types.NewAccountMeta(counter, false),
			types.NewAccountMeta(ContextAddress(count), false),
			types.NewReadonlyAccountMeta(config, false),
			types.NewReadonlyAccountMeta(params.OracleProgramID, false),
		},
		Data: initializeAgentSelector[:],
	}
}

// NewInteractAgentInstruction builds the interact_agent instruction sending
// prompt to the payer's agent, bound to context.
func NewInteractAgentInstruction(payer, context common.Address, prompt string) types.Instruction {
	agent, _ := AgentAddress(payer)
	return types.Instruction{
		ProgramID: params.MorphProgramID,
		Accounts: []types.AccountMeta{
			types.NewAccountMeta(payer, true),
			types.NewAccountMeta(InteractionAddress(payer, context), false),
			types.NewReadonlyAccountMeta(agent, false),
			types.NewReadonlyAccountMeta(context, false),
			types.NewReadonlyAccountMeta(params.OracleProgramID, false),
		},
		Data: common.NewLayoutWriter(crypto.DiscriminatorLength + 4 + len(prompt)).
			Raw(interactAgentSelector[:]).
			String(prompt).
			Bytes(),
	}
}
