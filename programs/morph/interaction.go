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

// interactAgent sends prompt to the payer's agent. The interaction record
// is written by the oracle inside the same transaction, so an oracle
// rejection leaves no record behind.
//
// Accounts: payer (signer, writable), interaction (writable), agent,
// context, oracle program.
func (p *Program) interactAgent(ctx *vm.Context, accounts []types.AccountMeta, args *common.LayoutReader) error {
	if err := needAccounts(accounts, 5); err != nil {
		return err
	}
	// The oracle owns prompt limits; only the framing is checked here.
	prompt := args.String(args.Remaining())
	if err := argsErr(args); err != nil {
		return err
	}
	var (
		payer           = accounts[0].Address
		interactionAddr = accounts[1].Address
		agentAddr       = accounts[2].Address
		contextAddr     = accounts[3].Address
	)
	if err := checkOracle(accounts[4].Address); err != nil {
		return err
	}
	if want, _ := AgentAddress(payer); agentAddr != want {
		return fmt.Errorf("%w: agent %s for wallet %s", vm.ErrInvalidAccount, agentAddr, payer)
	}
	data, err := ctx.OwnedData(agentAddr, p.ID())
	if err != nil {
		return err
	}
	agent, err := DecodeAgent(data)
	if err != nil {
		return err
	}
	if contextAddr != agent.Context {
		return fmt.Errorf("%w: context %s, agent is bound to %s", vm.ErrInvalidAccount, contextAddr, agent.Context)
	}
	if ok, err := ctx.Exists(contextAddr); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("%w: context %s", vm.ErrNotFound, contextAddr)
	}
	if want := InteractionAddress(payer, contextAddr); interactionAddr != want {
		return fmt.Errorf("%w: interaction %s", vm.ErrInvalidAccount, interactionAddr)
	}
	return p.recordInteraction(ctx, payer, agentAddr, contextAddr, interactionAddr, prompt)
}

// FetchInteraction returns the latest exchange between wallet and its agent.
func FetchInteraction(r AccountReader, wallet common.Address) (*oracle.Interaction, error) {
	agent, err := FetchAgent(r, wallet)
	if err != nil {
		return nil, err
	}
	data, err := readOwned(r, InteractionAddress(wallet, agent.Context), params.OracleProgramID)
	if err != nil {
		return nil, err
	}
	return oracle.DecodeInteraction(data)
}
