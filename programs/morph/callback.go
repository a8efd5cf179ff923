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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/probechain/go-morph/common"
	"github.com/probechain/go-morph/core/types"
	"github.com/probechain/go-morph/core/vm"
	"github.com/probechain/go-morph/params"
	"github.com/probechain/go-morph/programs/oracle"
)

// fallbackReply stands in for a reply the agent could not phrase.
const fallbackReply = "I'm sorry, I'm busy now!"

// Reply is the agent's answer as relayed by the oracle.
type Reply struct {
	Reply     string `json:"reply"`
	Reaction  string `json:"reaction"`
	Energy    uint64 `json:"energy"`
	Health    uint64 `json:"health"`
	Happiness uint64 `json:"happiness"`
	Amount    uint64 `json:"amount"`
}

// ParseReply decodes a model response. Responses are expected to be a JSON
// object, possibly inside a markdown code fence. Fields that are missing or
// mistyped take their defaults, so any input yields a usable reply.
func ParseReply(response string) Reply {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimSuffix(response, "```")

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(response), &fields); err != nil {
		fields = nil
	}
	reply := Reply{
		Reply:    stringField(fields, "reply", fallbackReply),
		Reaction: stringField(fields, "reaction", "none"),
	}
	reply.Energy = uintField(fields, "energy")
	reply.Health = uintField(fields, "health")
	reply.Happiness = uintField(fields, "happiness")
	reply.Amount = uintField(fields, "amount")
	return reply
}

func stringField(fields map[string]json.RawMessage, key, def string) string {
	var s string
	if raw, ok := fields[key]; ok && json.Unmarshal(raw, &s) == nil {
		return s
	}
	return def
}

func uintField(fields map[string]json.RawMessage, key string) uint64 {
	var n uint64
	if raw, ok := fields[key]; ok && json.Unmarshal(raw, &n) == nil {
		return n
	}
	return 0
}

func mood(v uint64) uint8 {
	if v > maxMood {
		return maxMood
	}
	return uint8(v)
}

// callbackFromAgent applies the oracle's answer to the agent's mood. Only
// the oracle identity may call it, and only with the answered interaction of
// the same user and agent.
//
// Accounts: identity (signer), user, agent (writable), interaction.
func (p *Program) callbackFromAgent(ctx *vm.Context, accounts []types.AccountMeta, args *common.LayoutReader) error {
	if err := needAccounts(accounts, 4); err != nil {
		return err
	}
	response := args.String(oracle.MaxResponseLen)
	if err := argsErr(args); err != nil {
		return err
	}
	identity, user, agentAddr, interactionAddr := accounts[0].Address, accounts[1].Address, accounts[2].Address, accounts[3].Address
	if want, _ := oracle.IdentityAddress(); identity != want || !ctx.IsSigner(identity) {
		return fmt.Errorf("%w: callback not signed by the oracle identity", vm.ErrUnauthorized)
	}
	if want, _ := AgentAddress(user); agentAddr != want {
		return fmt.Errorf("%w: agent %s for wallet %s", vm.ErrInvalidAccount, agentAddr, user)
	}
	data, err := ctx.OwnedData(agentAddr, p.ID())
	if err != nil {
		return err
	}
	agent, err := DecodeAgent(data)
	if err != nil {
		return err
	}
	if err := checkAnswered(ctx, interactionAddr, user, agent.Context, response); err != nil {
		return err
	}
	reply := ParseReply(response)
	ctx.Log(fmt.Sprintf("Agent Reply: %q", reply.Reply))
	ctx.Log(fmt.Sprintf("Energy: %d", reply.Energy))
	ctx.Log(fmt.Sprintf("Happiness: %d", reply.Happiness))
	ctx.Log(fmt.Sprintf("Health: %d", reply.Health))
	ctx.Log(fmt.Sprintf("Amount: %d", reply.Amount))
	ctx.Log(fmt.Sprintf("Reaction: %q", reply.Reaction))

	agent.Energy = mood(reply.Energy)
	agent.Happiness = mood(reply.Happiness)
	agent.Health = mood(reply.Health)
	return ctx.WriteData(agentAddr, agent.encode())
}

// checkAnswered verifies that addr holds the interaction of user with
// context and that it was just answered with response.
func checkAnswered(ctx *vm.Context, addr, user, context common.Address, response string) error {
	if addr != InteractionAddress(user, context) {
		return fmt.Errorf("%w: interaction %s for wallet %s", vm.ErrUnauthorized, addr, user)
	}
	data, err := ctx.OwnedData(addr, params.OracleProgramID)
	if err != nil {
		return err
	}
	interaction, err := oracle.DecodeInteraction(data)
	if err != nil {
		return err
	}
	if interaction.User != user || interaction.Context != context {
		return fmt.Errorf("%w: interaction %s belongs to %s", vm.ErrUnauthorized, addr, interaction.User)
	}
	if interaction.Status != oracle.StatusResponded || interaction.Response != response {
		return fmt.Errorf("%w: interaction %s was not answered with this response", vm.ErrUnauthorized, addr)
	}
	return nil
}
