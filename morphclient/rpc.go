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

package morphclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/probechain/go-morph/common"
	"github.com/probechain/go-morph/core/state"
	"github.com/probechain/go-morph/core/types"
	"github.com/probechain/go-morph/internal/morphapi"
	"github.com/probechain/go-morph/morph"
)

// RemoteError is a failure reported by a remote node. It unwraps to the
// ledger errors named by its codes, so errors.Is and vm.Classify behave as
// they would against a local ledger.
type RemoteError struct {
	Code    int // JSON-RPC error code, or HTTP status for refused requests
	Message string
	Codes   []string
	Receipt *types.Receipt
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error %d: %s", e.Code, e.Message)
}

func (e *RemoteError) Unwrap() []error {
	var errs []error
	for _, code := range e.Codes {
		if err := morphapi.CodeError(code); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (e *RemoteError) hasCode(code string) bool {
	for _, c := range e.Codes {
		if c == code {
			return true
		}
	}
	return false
}

// remoteError turns the errors of an RPC call into a RemoteError when the
// node answered with one.
func remoteError(err error) error {
	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		rerr := &RemoteError{Code: httpErr.StatusCode, Message: httpErr.Status}
		var body morphapi.ErrorResponse
		if json.Unmarshal(httpErr.Body, &body) == nil {
			rerr.Message, rerr.Codes = body.Error, body.Codes
		}
		return rerr
	}
	var callErr rpc.Error
	if !errors.As(err, &callErr) {
		return err
	}
	rerr := &RemoteError{Code: callErr.ErrorCode(), Message: callErr.Error()}
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) && dataErr.ErrorData() != nil {
		// The data arrives as generic JSON; re-decode it into its real shape.
		var data morphapi.ErrorData
		if enc, jerr := json.Marshal(dataErr.ErrorData()); jerr == nil && json.Unmarshal(enc, &data) == nil {
			rerr.Codes, rerr.Receipt = data.Codes, data.Receipt
		}
	}
	return rerr
}

// RPCBackend talks to a node serving the morph JSON-RPC namespace.
type RPCBackend struct {
	c *rpc.Client
}

// Dial connects to the node at rawurl. HTTP endpoints are not contacted
// until the first call.
func Dial(rawurl string) (*RPCBackend, error) {
	return DialContext(context.Background(), rawurl)
}

// DialContext connects to the node at rawurl using ctx for the dial.
func DialContext(ctx context.Context, rawurl string) (*RPCBackend, error) {
	c, err := rpc.DialContext(ctx, rawurl)
	if err != nil {
		return nil, err
	}
	return NewRPCBackend(c), nil
}

// NewRPCBackend wraps an established RPC client.
func NewRPCBackend(c *rpc.Client) *RPCBackend {
	return &RPCBackend{c: c}
}

// Close closes the underlying RPC connection.
func (b *RPCBackend) Close() {
	b.c.Close()
}

func (b *RPCBackend) call(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	return remoteError(b.c.CallContext(ctx, result, method, args...))
}

// Account returns the account at addr, or nil if the node has none.
func (b *RPCBackend) Account(addr common.Address) (*state.Account, error) {
	var res *morph.AccountResult
	err := b.call(context.Background(), &res, "morph_getAccount", addr)
	if rerr, ok := err.(*RemoteError); ok && rerr.hasCode(morphapi.CodeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nil
	}
	return &state.Account{
		Lamports:   res.Lamports,
		Owner:      res.Owner,
		Executable: res.Executable,
		Data:       res.Data,
	}, nil
}

// SendTransaction submits tx. A rejected transaction returns the failed
// receipt, when the node sent one, alongside the error.
func (b *RPCBackend) SendTransaction(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	var receipt *types.Receipt
	if err := b.call(ctx, &receipt, "morph_sendTransaction", tx); err != nil {
		if rerr, ok := err.(*RemoteError); ok {
			return rerr.Receipt, err
		}
		return nil, err
	}
	return receipt, nil
}

// Airdrop asks the node's faucet for lamports.
func (b *RPCBackend) Airdrop(ctx context.Context, addr common.Address, lamports uint64) (*types.Receipt, error) {
	var receipt *types.Receipt
	if err := b.call(ctx, &receipt, "morph_airdrop", addr, lamports); err != nil {
		return nil, err
	}
	return receipt, nil
}

// Receipt fetches the receipt of a committed transaction.
func (b *RPCBackend) Receipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	var receipt *types.Receipt
	if err := b.call(ctx, &receipt, "morph_getReceipt", hash); err != nil {
		return nil, err
	}
	return receipt, nil
}
