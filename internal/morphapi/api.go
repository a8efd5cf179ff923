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

package morphapi

import (
	"context"

	"github.com/probechain/go-morph/common"
	"github.com/probechain/go-morph/core/types"
	"github.com/probechain/go-morph/morph"
	ledger "github.com/probechain/go-morph/programs/morph"
)

// PublicMorphAPI is the "morph" JSON-RPC namespace. It forwards to the
// backend, attaching error codes to failures and enforcing the node's
// faucet and responder settings.
type PublicMorphAPI struct {
	config  Config
	backend Backend
}

// SendTransaction executes tx. A failed transaction's receipt travels in the
// error data.
func (api *PublicMorphAPI) SendTransaction(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	if tx == nil {
		return nil, invalidParams("missing transaction")
	}
	receipt, err := api.backend.SendTransaction(ctx, tx)
	if err != nil {
		return nil, wrapError(err, receipt)
	}
	return receipt, nil
}

// GetReceipt returns the receipt of a committed transaction.
func (api *PublicMorphAPI) GetReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	receipt, err := api.backend.GetReceipt(ctx, hash)
	return receipt, wrapError(err, nil)
}

// GetAccount returns the committed account at addr.
func (api *PublicMorphAPI) GetAccount(ctx context.Context, addr common.Address) (*morph.AccountResult, error) {
	acct, err := api.backend.GetAccount(ctx, addr)
	return acct, wrapError(err, nil)
}

// GetCounter returns the next slot to be allocated.
func (api *PublicMorphAPI) GetCounter(ctx context.Context) (*morph.CounterResult, error) {
	counter, err := api.backend.GetCounter(ctx)
	return counter, wrapError(err, nil)
}

// GetMint returns the token mint.
func (api *PublicMorphAPI) GetMint(ctx context.Context) (*ledger.Mint, error) {
	mint, err := api.backend.GetMint(ctx)
	return mint, wrapError(err, nil)
}

// GetAgent returns the agent of wallet.
func (api *PublicMorphAPI) GetAgent(ctx context.Context, wallet common.Address) (*morph.AgentResult, error) {
	agent, err := api.backend.GetAgent(ctx, wallet)
	return agent, wrapError(err, nil)
}

// GetInteraction returns the latest exchange of wallet with its agent.
func (api *PublicMorphAPI) GetInteraction(ctx context.Context, wallet common.Address) (*morph.InteractionResult, error) {
	interaction, err := api.backend.GetInteraction(ctx, wallet)
	return interaction, wrapError(err, nil)
}

// Respond answers the pending interaction of wallet as the node's
// responder. Only nodes running with the responder role accept it.
func (api *PublicMorphAPI) Respond(ctx context.Context, wallet common.Address, response string, nonce uint64) (*types.Receipt, error) {
	if !api.config.Respond {
		return nil, forbidden("responder role")
	}
	receipt, err := api.backend.Respond(ctx, wallet, response, nonce)
	if err != nil {
		return nil, wrapError(err, receipt)
	}
	return receipt, nil
}

// Airdrop credits lamports to addr from the development faucet.
func (api *PublicMorphAPI) Airdrop(ctx context.Context, addr common.Address, lamports uint64) (*types.Receipt, error) {
	if !api.config.Airdrop {
		return nil, forbidden("faucet")
	}
	if lamports == 0 || lamports > api.config.AirdropMax {
		return nil, invalidParams("lamports must be between 1 and %d", api.config.AirdropMax)
	}
	receipt, err := api.backend.Airdrop(ctx, addr, lamports)
	if err != nil {
		return nil, wrapError(err, receipt)
	}
	return receipt, nil
}
