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
	"github.com/probechain/go-morph/core/types"
	"github.com/probechain/go-morph/crypto"
	"github.com/probechain/go-morph/params"
)

// CreateContextData encodes the arguments of create_llm_context.
func CreateContextData(count uint32, text string) []byte {
	return common.NewLayoutWriter(crypto.DiscriminatorLength+8+len(text)).
		Raw(createContextSelector[:]).
		U32(count).
		String(text).
		Bytes()
}

// NewCreateContextInstruction builds a create_llm_context instruction for a
// signing authority. Programs normally issue it through a cross-program call
// with a derived authority.
func NewCreateContextInstruction(payer, authority common.Address, count uint32, text string) types.Instruction {
	config, _ := ConfigAddress()
	context, _ := ContextAddress(count)
	return types.Instruction{
		ProgramID: params.OracleProgramID,
		Accounts: []types.AccountMeta{
			types.NewAccountMeta(payer, true),
			{Address: authority, IsSigner: true},
			types.NewReadonlyAccountMeta(config, false),
			types.NewAccountMeta(context, false),
		},
		Data: CreateContextData(count, text),
	}
}

// InteractData encodes the arguments of interact_with_llm.
func InteractData(prompt string, callbackProgram common.Address, callbackSelector crypto.Discriminator, callbackAccounts []types.AccountMeta) []byte {
	w := common.NewLayoutWriter(crypto.DiscriminatorLength + 4 + len(prompt) + common.AddressLength + crypto.DiscriminatorLength + 4 + len(callbackAccounts)*accountMetaSize).
		Raw(interactSelector[:]).
		String(prompt).
		Address(callbackProgram).
		Raw(callbackSelector[:]).
		U32(uint32(len(callbackAccounts)))
	for _, meta := range callbackAccounts {
		w.Address(meta.Address).Bool(meta.IsSigner).Bool(meta.IsWritable)
	}
	return w.Bytes()
}

// NewInteractInstruction builds an interact_with_llm instruction recording
// prompt from user against context.
func NewInteractInstruction(user, context common.Address, prompt string, callbackProgram common.Address, callbackSelector crypto.Discriminator, callbackAccounts []types.AccountMeta) types.Instruction {
	interaction, _ := InteractionAddress(user, context)
	return types.Instruction{
		ProgramID: params.OracleProgramID,
		Accounts: []types.AccountMeta{
			types.NewAccountMeta(user, true),
			types.NewAccountMeta(interaction, false),
			types.NewReadonlyAccountMeta(context, false),
		},
		Data: InteractData(prompt, callbackProgram, callbackSelector, callbackAccounts),
	}
}

// NewCallbackInstruction builds the callback_from_llm instruction answering
// the interaction stored at addr. The recorded callback accounts are passed
// along so the relayed call can reach them.
func NewCallbackInstruction(responder, addr common.Address, interaction *Interaction, response string) types.Instruction {
	identity, _ := IdentityAddress()
	config, _ := ConfigAddress()
	accounts := []types.AccountMeta{
		{Address: responder, IsSigner: true},
		types.NewReadonlyAccountMeta(identity, false),
		types.NewReadonlyAccountMeta(config, false),
		types.NewAccountMeta(addr, false),
		types.NewReadonlyAccountMeta(interaction.CallbackProgram, false),
	}
	accounts = append(accounts, interaction.CallbackAccounts...)
	return types.Instruction{
		ProgramID: params.OracleProgramID,
		Accounts:  accounts,
		Data: common.NewLayoutWriter(crypto.DiscriminatorLength + 4 + len(response)).
			Raw(callbackSelector[:]).
			String(response).
			Bytes(),
	}
}
