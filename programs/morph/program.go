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

// Package morph implements the agent ledger program: the token mint, the
// slot counter, one agent per wallet bound to an oracle context, and
// interactions dispatched to the oracle.
package morph

import (
	"fmt"

	"github.com/probechain/go-morph/common"
	"github.com/probechain/go-morph/core/types"
	"github.com/probechain/go-morph/core/vm"
	"github.com/probechain/go-morph/crypto"
	"github.com/probechain/go-morph/params"
)

var (
	initializeTokenSelector = crypto.InstructionDiscriminator("initialize_token")
	initializeAgentSelector = crypto.InstructionDiscriminator("initialize_agent")
	interactAgentSelector   = crypto.InstructionDiscriminator("interact_agent")
	callbackSelector        = crypto.InstructionDiscriminator("callback_from_agent")
)

// Program is the morph ledger program.
type Program struct{}

// New returns the morph program.
func New() *Program { return &Program{} }

// ID implements vm.Program.
func (p *Program) ID() common.Address { return params.MorphProgramID }

// Execute implements vm.Program.
func (p *Program) Execute(ctx *vm.Context, accounts []types.AccountMeta, data []byte) error {
	if len(data) < crypto.DiscriminatorLength {
		return fmt.Errorf("%w: short instruction data", vm.ErrInvalidInstruction)
	}
	selector := crypto.Discriminator(data[:crypto.DiscriminatorLength])
	args := common.NewLayoutReader(data[crypto.DiscriminatorLength:])

	switch selector {
	case initializeTokenSelector:
		return p.initializeToken(ctx, accounts)
	case initializeAgentSelector:
		return p.initializeAgent(ctx, accounts)
	case interactAgentSelector:
		return p.interactAgent(ctx, accounts, args)
	case callbackSelector:
		return p.callbackFromAgent(ctx, accounts, args)
	}
	return fmt.Errorf("%w: unknown selector %x", vm.ErrInvalidInstruction, selector)
}

func needAccounts(accounts []types.AccountMeta, n int) error {
	if len(accounts) < n {
		return fmt.Errorf("%w: want %d accounts, have %d", vm.ErrInvalidInstruction, n, len(accounts))
	}
	return nil
}

func argsErr(r *common.LayoutReader) error {
	if err := r.Err(); err != nil {
		return fmt.Errorf("%w: %v", vm.ErrInvalidInstruction, err)
	}
	return nil
}
