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

// Package morphclient is the caller side of the morph ledger. It builds the
// program instructions for a wallet, submits them and applies the action
// each error class calls for.
package morphclient

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/probechain/go-morph/common"
	"github.com/probechain/go-morph/core/types"
	"github.com/probechain/go-morph/core/vm"
	ledger "github.com/probechain/go-morph/programs/morph"
	"github.com/probechain/go-morph/programs/oracle"
)

// DefaultMaxRetries bounds how often an agent allocation is resubmitted after
// losing the race for a slot.
const DefaultMaxRetries = 16

var (
	// ErrRetriesExhausted is returned when every allocation attempt found the
	// counter moved.
	ErrRetriesExhausted = errors.New("allocation retries exhausted")

	// ErrNoFaucet is returned by Airdrop on backends without a faucet.
	ErrNoFaucet = errors.New("backend has no faucet")
)

// Backend is a ledger the client reads and submits to. Both *core.Ledger and
// *RPCBackend implement it.
type Backend interface {
	ledger.AccountReader
	SendTransaction(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// Faucet is implemented by backends that can credit lamports.
type Faucet interface {
	Airdrop(ctx context.Context, addr common.Address, lamports uint64) (*types.Receipt, error)
}

// Allocation describes a freshly created agent.
type Allocation struct {
	Slot    uint32
	Agent   common.Address
	Context common.Address
	Receipt *types.Receipt
}

// Client submits transactions paid for and signed by a single wallet.
type Client struct {
	backend    Backend
	payer      common.Address
	nonce      atomic.Uint64
	maxRetries int
}

// New creates a client for payer.
func New(backend Backend, payer common.Address) (*Client, error) {
	if err := common.ValidateNil(backend, "backend"); err != nil {
		return nil, err
	}
	if payer.IsZero() {
		return nil, errors.New("payer must be specified")
	}
	c := &Client{backend: backend, payer: payer, maxRetries: DefaultMaxRetries}
	// Nonces only make hashes unique, seed them so restarted clients do
	// not replay earlier transactions.
	c.nonce.Store(uint64(time.Now().UnixNano()))
	return c, nil
}

// SetMaxRetries changes the allocation retry bound.
func (c *Client) SetMaxRetries(n int) {
	if n < 1 {
		n = 1
	}
	c.maxRetries = n
}

// Payer returns the wallet the client acts for.
func (c *Client) Payer() common.Address { return c.payer }

func (c *Client) send(ctx context.Context, ins types.Instruction) (*types.Receipt, error) {
	tx := types.NewTransaction(c.payer, c.nonce.Add(1), []types.Instruction{ins})
	return c.backend.SendTransaction(ctx, tx)
}

// InitializeToken creates the token mint. It reports created=false when the
// mint already existed, which is not an error.
func (c *Client) InitializeToken(ctx context.Context) (receipt *types.Receipt, created bool, err error) {
	receipt, err = c.send(ctx, ledger.NewInitializeTokenInstruction(c.payer))
	switch vm.Classify(err) {
	case vm.ClassNone:
		return receipt, true, nil
	case vm.ClassIdempotent:
		log.Debug("Token mint already initialized", "payer", c.payer)
		return nil, false, nil
	default:
		return receipt, false, err
	}
}

// InitializeAgent allocates the next slot to the payer's agent. A submission
// that raced with another allocation is rebuilt from a fresh counter read
// and resubmitted, up to the retry bound.
func (c *Client) InitializeAgent(ctx context.Context) (*Allocation, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		slot, err := ledger.ReadCounter(c.backend)
		if err != nil {
			return nil, err
		}
		receipt, err := c.send(ctx, ledger.NewInitializeAgentInstruction(c.payer, slot))
		switch vm.Classify(err) {
		case vm.ClassNone:
			agent, _ := ledger.AgentAddress(c.payer)
			return &Allocation{
				Slot:    slot,
				Agent:   agent,
				Context: ledger.ContextAddress(slot),
				Receipt: receipt,
			}, nil
		case vm.ClassRetry:
			log.Debug("Agent slot taken, retrying", "payer", c.payer, "slot", slot, "attempt", attempt+1)
			lastErr = err
		default:
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %d attempts: %w", ErrRetriesExhausted, c.maxRetries, lastErr)
}

// Interact records prompt for the payer's agent.
func (c *Client) Interact(ctx context.Context, prompt string) (*types.Receipt, error) {
	agent, err := ledger.FetchAgent(c.backend, c.payer)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, ledger.NewInteractAgentInstruction(c.payer, agent.Context, prompt))
}

// Respond answers the pending interaction of wallet. The client's payer must
// be the responder the oracle is configured with.
func (c *Client) Respond(ctx context.Context, wallet common.Address, response string) (*types.Receipt, error) {
	interaction, err := ledger.FetchInteraction(c.backend, wallet)
	if err != nil {
		return nil, err
	}
	if interaction.Status != oracle.StatusRecorded {
		return nil, fmt.Errorf("%w: %s", oracle.ErrAlreadyResponded, wallet)
	}
	addr := ledger.InteractionAddress(wallet, interaction.Context)
	return c.send(ctx, oracle.NewCallbackInstruction(c.payer, addr, interaction, response))
}

// Airdrop credits lamports to the payer when the backend has a faucet.
func (c *Client) Airdrop(ctx context.Context, lamports uint64) (*types.Receipt, error) {
	f, ok := c.backend.(Faucet)
	if !ok {
		return nil, ErrNoFaucet
	}
	return f.Airdrop(ctx, c.payer, lamports)
}

// Agent returns the payer's agent.
func (c *Client) Agent() (*ledger.Agent, error) {
	return ledger.FetchAgent(c.backend, c.payer)
}

// Interaction returns the payer's latest exchange with its agent.
func (c *Client) Interaction() (*oracle.Interaction, error) {
	return ledger.FetchInteraction(c.backend, c.payer)
}

// Counter returns the next slot to be allocated.
func (c *Client) Counter() (uint32, error) {
	return ledger.ReadCounter(c.backend)
}

// Balance returns the payer's lamports, zero if the account does not exist.
func (c *Client) Balance() (uint64, error) {
	acct, err := c.backend.Account(c.payer)
	if err != nil || acct == nil {
		return 0, err
	}
	return acct.Lamports, nil
}
