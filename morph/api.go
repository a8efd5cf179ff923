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
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/probechain/go-morph/common"
	"github.com/probechain/go-morph/core/types"
	"github.com/probechain/go-morph/core/vm"
	ledger "github.com/probechain/go-morph/programs/morph"
	"github.com/probechain/go-morph/programs/oracle"
)

// PublicLedgerAPI provides the read and submit API of the morph ledger.
type PublicLedgerAPI struct {
	m *Morph
}

// NewPublicLedgerAPI creates a new ledger API.
func NewPublicLedgerAPI(m *Morph) *PublicLedgerAPI {
	return &PublicLedgerAPI{m: m}
}

// SendTransaction executes tx. A failed transaction returns its receipt,
// carrying the program logs, alongside the error.
func (api *PublicLedgerAPI) SendTransaction(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return api.m.ledger.SendTransaction(ctx, tx)
}

// GetReceipt returns the receipt of a committed transaction.
func (api *PublicLedgerAPI) GetReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	receipt := api.m.ledger.Receipt(hash)
	if receipt == nil {
		return nil, fmt.Errorf("%w: receipt %s", vm.ErrNotFound, hash)
	}
	return receipt, nil
}

// AccountResult is the API rendering of an account.
type AccountResult struct {
	Address    common.Address `json:"address"`
	Lamports   uint64         `json:"lamports"`
	Owner      common.Address `json:"owner"`
	Executable bool           `json:"executable"`
	Data       hexutil.Bytes  `json:"data"`
}

// GetAccount returns the committed account at addr.
func (api *PublicLedgerAPI) GetAccount(_ context.Context, addr common.Address) (*AccountResult, error) {
	acct, err := api.m.ledger.Account(addr)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, fmt.Errorf("%w: %s", vm.ErrNotFound, addr)
	}
	return &AccountResult{
		Address:    addr,
		Lamports:   acct.Lamports,
		Owner:      acct.Owner,
		Executable: acct.Executable,
		Data:       acct.Data,
	}, nil
}

// CounterResult reports the next slot and the context it will bind.
type CounterResult struct {
	Count   uint32         `json:"count"`
	Context common.Address `json:"context"`
}

// GetCounter returns the next slot to be allocated.
func (api *PublicLedgerAPI) GetCounter(_ context.Context) (*CounterResult, error) {
	count, err := ledger.ReadCounter(api.m.ledger)
	if err != nil {
		return nil, err
	}
	return &CounterResult{Count: count, Context: ledger.ContextAddress(count)}, nil
}

// AgentResult is the API rendering of an agent.
type AgentResult struct {
	Address common.Address `json:"address"`
	Wallet  common.Address `json:"wallet"`
	*ledger.Agent
}

// GetAgent returns the agent of wallet.
func (api *PublicLedgerAPI) GetAgent(_ context.Context, wallet common.Address) (*AgentResult, error) {
	agent, err := ledger.FetchAgent(api.m.ledger, wallet)
	if err != nil {
		return nil, err
	}
	addr, _ := ledger.AgentAddress(wallet)
	return &AgentResult{Address: addr, Wallet: wallet, Agent: agent}, nil
}

// InteractionResult is the API rendering of an interaction.
type InteractionResult struct {
	Address  common.Address `json:"address"`
	Context  common.Address `json:"context"`
	User     common.Address `json:"user"`
	Prompt   string         `json:"prompt"`
	Response string         `json:"response"`
	Status   string         `json:"status"`
}

// GetInteraction returns the latest exchange of wallet with its agent.
func (api *PublicLedgerAPI) GetInteraction(_ context.Context, wallet common.Address) (*InteractionResult, error) {
	interaction, err := ledger.FetchInteraction(api.m.ledger, wallet)
	if err != nil {
		return nil, err
	}
	return &InteractionResult{
		Address:  ledger.InteractionAddress(wallet, interaction.Context),
		Context:  interaction.Context,
		User:     interaction.User,
		Prompt:   interaction.Prompt,
		Response: interaction.Response,
		Status:   interaction.Status.String(),
	}, nil
}

// GetMint returns the token mint.
func (api *PublicLedgerAPI) GetMint(_ context.Context) (*ledger.Mint, error) {
	return ledger.ReadMint(api.m.ledger)
}

// Airdrop credits lamports to addr.
func (api *PublicLedgerAPI) Airdrop(ctx context.Context, addr common.Address, lamports uint64) (*types.Receipt, error) {
	return api.m.ledger.Airdrop(ctx, addr, lamports)
}

// pendingInteraction loads the interaction of wallet for answering.
func (api *PublicLedgerAPI) pendingInteraction(wallet common.Address) (common.Address, *oracle.Interaction, error) {
	interaction, err := ledger.FetchInteraction(api.m.ledger, wallet)
	if err != nil {
		return common.Address{}, nil, err
	}
	if interaction.Status != oracle.StatusRecorded {
		return common.Address{}, nil, fmt.Errorf("%w: %s", oracle.ErrAlreadyResponded, wallet)
	}
	return ledger.InteractionAddress(wallet, interaction.Context), interaction, nil
}

// Respond answers the pending interaction of wallet on behalf of the
// configured responder. It is only usable on nodes that hold the responder
// role, since the transaction carries the responder as signer.
func (api *PublicLedgerAPI) Respond(ctx context.Context, wallet common.Address, response string, nonce uint64) (*types.Receipt, error) {
	addr, interaction, err := api.pendingInteraction(wallet)
	if err != nil {
		return nil, err
	}
	responder := api.m.config.Responder
	ins := oracle.NewCallbackInstruction(responder, addr, interaction, response)
	return api.m.ledger.SendTransaction(ctx, types.NewTransaction(responder, nonce, []types.Instruction{ins}))
}
