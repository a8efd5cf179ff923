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
)

// AgentDescription is the system prompt every agent context is created with.
const AgentDescription = `You are a cute AI agent called M0RPH which can dispense M0RPH ` +
	`tokens. Users can interact with you and change you energy, ` +
	`health, happiness and amount of tokens you can give out. Always ` +
	`provide clear, funny, short and concise answers. You can be more ` +
	`sad or happy, sometimes angry. You love Solana and MagicBlock. ` +
	`IMPORTANT: always reply in a valid json format. No character ` +
	`before or after. The format is:/{"reply": "your reply", ` +
	`"reaction": "the reaction",  "energy": x, "health": x, ` +
	`"happiness": x, "amount": amount }, where amount is the number of ` +
	`tokens you want to mint (based on the conversation engagement and ` +
	`happiness, between 0 and 10000). Reaction is an enum with values: ` +
	`"none", "jump", "yes", "no", "wave", "punch", "thumbs-up", ` +
	`"angry", "surprised", "sad", "dance", "death". Reaction should be ` +
	`based on the reply and the current state of the agent. Most of ` +
	`the time set amount to 0. If already minted, make it more hard to ` +
	`get more tokens. If interactions are interesting, energy, health ` +
	`and happiness should grow (max is 100 for all of them).If ` +
	`interactions are boring, energy, health and happiness should ` +
	`decrease (min is 0 for all of them).`

// initializeAgent allocates the next slot to the payer: the oracle creates
// the slot's context, the agent is bound to it and the counter advances.
// A context derived from an outdated count fails with ErrStaleState; the
// caller re-reads the counter and resubmits.
//
// Accounts: payer (signer, writable), agent (writable), counter (writable),
// context (writable), oracle config, oracle program.
func (p *Program) initializeAgent(ctx *vm.Context, accounts []types.AccountMeta) error {
	if err := needAccounts(accounts, 6); err != nil {
		return err
	}
	var (
		payer       = accounts[0].Address
		agentAddr   = accounts[1].Address
		counterAddr = accounts[2].Address
		contextAddr = accounts[3].Address
		configAddr  = accounts[4].Address
	)
	if err := checkOracle(accounts[5].Address); err != nil {
		return err
	}
	want, agentBump := AgentAddress(payer)
	if agentAddr != want {
		return fmt.Errorf("%w: agent %s for wallet %s", vm.ErrInvalidAccount, agentAddr, payer)
	}
	exists, err := ctx.Exists(agentAddr)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: agent of %s", vm.ErrAlreadyExists, payer)
	}
	counter, err := p.loadCounter(ctx, counterAddr)
	if err != nil {
		return err
	}
	slot := counter.Count
	if contextAddr != ContextAddress(slot) {
		return fmt.Errorf("%w: context %s is not the context of slot %d", vm.ErrStaleState, contextAddr, slot)
	}
	if err := p.createContext(ctx, payer, counterAddr, configAddr, slot); err != nil {
		return err
	}
	if _, err := ctx.OwnedData(contextAddr, params.OracleProgramID); err != nil {
		return err
	}
	seeds := [][]byte{agentSeed, payer.Bytes(), {agentBump}}
	if err := ctx.CreateAccount(payer, agentAddr, AgentSpace, seeds); err != nil {
		return err
	}
	if err := ctx.WriteData(agentAddr, newAgent(contextAddr, slot).encode()); err != nil {
		return err
	}
	if err := counter.advance(); err != nil {
		return err
	}
	if err := ctx.WriteData(counterAddr, counter.encode()); err != nil {
		return err
	}
	ctx.Log(fmt.Sprintf("Agent %d bound to context %s", slot, contextAddr))
	return nil
}

// FetchAgent returns the agent of wallet, or ErrNotFound if it has none.
func FetchAgent(r AccountReader, wallet common.Address) (*Agent, error) {
	addr, _ := AgentAddress(wallet)
	data, err := readOwned(r, addr, params.MorphProgramID)
	if err != nil {
		return nil, err
	}
	return DecodeAgent(data)
}
