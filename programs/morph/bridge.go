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
	"fmt"

	"github.com/probechain/go-morph/common"
	"github.com/probechain/go-morph/core/types"
	"github.com/probechain/go-morph/core/vm"
	"github.com/probechain/go-morph/params"
	"github.com/probechain/go-morph/programs/oracle"
)

func checkOracle(addr common.Address) error {
	if addr != params.OracleProgramID {
		return fmt.Errorf("%w: oracle program %s", vm.ErrInvalidAccount, addr)
	}
	return nil
}

// createContext has the oracle allocate the context of slot. The counter
// PDA is the oracle's context authority and signs the call.
func (p *Program) createContext(ctx *vm.Context, payer, counter, config common.Address, slot uint32) error {
	_, bump := CounterAddress()
	ins := oracle.NewCreateContextInstruction(payer, counter, slot, AgentDescription)
	if want, _ := oracle.ConfigAddress(); config != want {
		return fmt.Errorf("%w: oracle config %s", vm.ErrInvalidAccount, config)
	}
	if err := ctx.Invoke(ins, [][]byte{counterSeed, {bump}}); err != nil {
		return fmt.Errorf("%w: create context %d: %w", vm.ErrDependencyFailure, slot, err)
	}
	return nil
}

// callbackAccounts are the accounts the oracle hands back when relaying the
// response to the agent's prompt. The interaction lets the callback check
// that the answer belongs to this user and agent.
func callbackAccounts(payer, agent, interaction common.Address) []types.AccountMeta {
	return []types.AccountMeta{
		types.NewReadonlyAccountMeta(payer, false),
		types.NewAccountMeta(agent, false),
		types.NewReadonlyAccountMeta(interaction, false),
	}
}

// recordInteraction dispatches prompt to the oracle, which creates or
// overwrites the interaction of payer and context. The response arrives
// later through callback_from_agent.
func (p *Program) recordInteraction(ctx *vm.Context, payer, agent, context, interaction common.Address, prompt string) error {
	ins := oracle.NewInteractInstruction(payer, context, prompt, p.ID(), callbackSelector, callbackAccounts(payer, agent, interaction))
	if err := ctx.Invoke(ins); err != nil {
		return fmt.Errorf("%w: interact: %w", vm.ErrDependencyFailure, err)
	}
	return nil
}
