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

package vm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/probechain/go-morph/common"
	"github.com/probechain/go-morph/core/state"
	"github.com/probechain/go-morph/core/types"
	"github.com/probechain/go-morph/crypto"
	"github.com/probechain/go-morph/ledgerdb/leveldb"
	"github.com/probechain/go-morph/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcProgram struct {
	id common.Address
	fn func(ctx *Context, accounts []types.AccountMeta, data []byte) error
}

func (p *funcProgram) ID() common.Address { return p.id }

func (p *funcProgram) Execute(ctx *Context, accounts []types.AccountMeta, data []byte) error {
	return p.fn(ctx, accounts, data)
}

var (
	payer    = common.BytesToAddress([]byte{0x01})
	stranger = common.BytesToAddress([]byte{0x02})
	progA    = common.BytesToAddress([]byte{0xa0})
	progB    = common.BytesToAddress([]byte{0xb0})
)

func newTestEnv(t *testing.T, tx *types.Transaction, programs ...Program) *Env {
	t.Helper()
	st := state.New(state.NewDatabase(leveldb.NewMemory()))
	st.CreateAccount(payer, params.SystemProgramID, params.LamportsPerSol, 0, false)
	return NewEnv(st, NewRegistry(programs...), tx)
}

func pda(t *testing.T, program common.Address, seed string) (common.Address, [][]byte) {
	t.Helper()
	addr, bump, err := crypto.FindProgramAddress([][]byte{[]byte(seed)}, program)
	require.NoError(t, err)
	return addr, [][]byte{[]byte(seed), {bump}}
}

func TestMinimumBalance(t *testing.T) {
	bal, err := MinimumBalance(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(128*3480*2), bal)

	bal, err = MinimumBalance(8)
	require.NoError(t, err)
	assert.Equal(t, uint64(136*3480*2), bal)

	_, err = MinimumBalance(params.MaxAccountDataLen + 1)
	assert.ErrorIs(t, err, ErrInsufficientResources)
}

func TestClassify(t *testing.T) {
	wrapped := fmt.Errorf("%w: %w", ErrDependencyFailure, ErrAlreadyExists)
	for _, tt := range []struct {
		err  error
		want ErrorClass
	}{
		{nil, ClassNone},
		{ErrAlreadyInitialized, ClassIdempotent},
		{fmt.Errorf("ix 0: %w", ErrStaleState), ClassRetry},
		{ErrAlreadyExists, ClassConflict},
		{wrapped, ClassConflict},
		{ErrNotFound, ClassFailed},
		{errors.New("boom"), ClassFailed},
	} {
		assert.Equal(t, tt.want, Classify(tt.err), "error %v", tt.err)
	}
}

func TestCreateAccount(t *testing.T) {
	target, seeds := pda(t, progA, "slot")
	metas := []types.AccountMeta{types.NewAccountMeta(payer, true), types.NewAccountMeta(target, false)}

	prog := &funcProgram{id: progA, fn: func(ctx *Context, _ []types.AccountMeta, data []byte) error {
		switch data[0] {
		case 0:
			return ctx.CreateAccount(payer, target, 16, seeds)
		case 1:
			return ctx.CreateAccount(payer, target, 16, [][]byte{[]byte("other")})
		}
		return nil
	}}
	tx := types.NewTransaction(payer, 0, []types.Instruction{{ProgramID: progA, Accounts: metas, Data: []byte{0}}})
	env := newTestEnv(t, tx, prog)

	require.NoError(t, env.Run(types.Instruction{ProgramID: progA, Accounts: metas, Data: []byte{0}}))
	rent, _ := MinimumBalance(16)
	acct := env.State().GetAccount(target)
	require.NotNil(t, acct)
	assert.Equal(t, progA, acct.Owner)
	assert.Equal(t, rent, acct.Lamports)
	assert.Len(t, acct.Data, 16)
	assert.Equal(t, params.LamportsPerSol-rent, env.State().GetLamports(payer))

	err := env.Run(types.Instruction{ProgramID: progA, Accounts: metas, Data: []byte{0}})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	err = env.Run(types.Instruction{ProgramID: progA, Accounts: metas, Data: []byte{1}})
	assert.ErrorIs(t, err, ErrInvalidSeeds)
}

func TestCreateAccountInsufficientFunds(t *testing.T) {
	target, seeds := pda(t, progA, "slot")
	metas := []types.AccountMeta{types.NewAccountMeta(payer, true), types.NewAccountMeta(target, false)}
	prog := &funcProgram{id: progA, fn: func(ctx *Context, _ []types.AccountMeta, _ []byte) error {
		return ctx.CreateAccount(payer, target, params.MaxAccountDataLen, seeds)
	}}
	ins := types.Instruction{ProgramID: progA, Accounts: metas}
	env := newTestEnv(t, types.NewTransaction(payer, 0, []types.Instruction{ins}), prog)

	assert.ErrorIs(t, env.Run(ins), ErrInsufficientResources)
	assert.False(t, env.State().Exist(target))
}

func TestWriteDataChecks(t *testing.T) {
	target, seeds := pda(t, progA, "slot")
	prog := &funcProgram{id: progA, fn: func(ctx *Context, _ []types.AccountMeta, data []byte) error {
		switch data[0] {
		case 0:
			return ctx.CreateAccount(payer, target, 4, seeds)
		case 1:
			return ctx.WriteData(target, []byte{1, 2})
		case 2:
			return ctx.WriteData(target, []byte{1, 2, 3, 4, 5})
		case 3:
			_, err := ctx.Account(stranger)
			return err
		}
		return nil
	}}
	foreign := &funcProgram{id: progB, fn: func(ctx *Context, _ []types.AccountMeta, _ []byte) error {
		return ctx.WriteData(target, []byte{9})
	}}
	writable := []types.AccountMeta{types.NewAccountMeta(payer, true), types.NewAccountMeta(target, false)}
	readonly := []types.AccountMeta{types.NewReadonlyAccountMeta(target, false)}

	env := newTestEnv(t, types.NewTransaction(payer, 0, []types.Instruction{{ProgramID: progA, Accounts: writable}}), prog, foreign)
	require.NoError(t, env.Run(types.Instruction{ProgramID: progA, Accounts: writable, Data: []byte{0}}))
	require.NoError(t, env.Run(types.Instruction{ProgramID: progA, Accounts: writable, Data: []byte{1}}))
	assert.Equal(t, []byte{1, 2, 0, 0}, env.State().GetData(target))

	assert.ErrorIs(t, env.Run(types.Instruction{ProgramID: progA, Accounts: writable, Data: []byte{2}}), ErrInsufficientResources)
	assert.ErrorIs(t, env.Run(types.Instruction{ProgramID: progA, Accounts: readonly, Data: []byte{1}}), ErrReadonlyAccount)
	assert.ErrorIs(t, env.Run(types.Instruction{ProgramID: progA, Accounts: writable, Data: []byte{3}}), ErrAccountNotDeclared)
	assert.ErrorIs(t, env.Run(types.Instruction{ProgramID: progB, Accounts: writable}), ErrIllegalOwner)
}

func TestRunRequiresTransactionSigner(t *testing.T) {
	prog := &funcProgram{id: progA, fn: func(*Context, []types.AccountMeta, []byte) error { return nil }}
	ins := types.Instruction{ProgramID: progA, Accounts: []types.AccountMeta{types.NewReadonlyAccountMeta(stranger, true)}}
	env := newTestEnv(t, types.NewTransaction(payer, 0, []types.Instruction{ins}), prog)

	assert.ErrorIs(t, env.Run(ins), ErrMissingSigner)
	assert.ErrorIs(t, env.Run(types.Instruction{ProgramID: progB}), ErrProgramNotFound)
}

func TestInvokePrivileges(t *testing.T) {
	signerPDA, signerSeeds := pda(t, progA, "authority")

	var sawSigner bool
	callee := &funcProgram{id: progB, fn: func(ctx *Context, _ []types.AccountMeta, _ []byte) error {
		sawSigner = ctx.IsSigner(signerPDA)
		return nil
	}}
	caller := &funcProgram{id: progA, fn: func(ctx *Context, _ []types.AccountMeta, data []byte) error {
		switch data[0] {
		case 0:
			// escalate writable
			return ctx.Invoke(types.Instruction{ProgramID: progB, Accounts: []types.AccountMeta{types.NewAccountMeta(stranger, false)}})
		case 1:
			// forge a signer
			return ctx.Invoke(types.Instruction{ProgramID: progB, Accounts: []types.AccountMeta{types.NewReadonlyAccountMeta(stranger, true)}})
		case 2:
			// sign with own PDA
			return ctx.Invoke(types.Instruction{ProgramID: progB, Accounts: []types.AccountMeta{types.NewReadonlyAccountMeta(signerPDA, true)}}, signerSeeds)
		case 3:
			// undeclared account
			return ctx.Invoke(types.Instruction{ProgramID: progB, Accounts: []types.AccountMeta{types.NewReadonlyAccountMeta(common.Address{0x77}, false)}})
		}
		return nil
	}}
	metas := []types.AccountMeta{
		types.NewReadonlyAccountMeta(stranger, false),
		types.NewReadonlyAccountMeta(signerPDA, false),
		types.NewReadonlyAccountMeta(progB, false),
	}
	ins := func(op byte) types.Instruction { return types.Instruction{ProgramID: progA, Accounts: metas, Data: []byte{op}} }
	env := newTestEnv(t, types.NewTransaction(payer, 0, []types.Instruction{ins(0)}), caller, callee)

	assert.ErrorIs(t, env.Run(ins(0)), ErrReadonlyAccount)
	assert.ErrorIs(t, env.Run(ins(1)), ErrMissingSigner)
	assert.ErrorIs(t, env.Run(ins(3)), ErrAccountNotDeclared)
	require.NoError(t, env.Run(ins(2)))
	assert.True(t, sawSigner, "PDA signer not propagated")
}

func TestInvokeRevertsCallee(t *testing.T) {
	target, seeds := pda(t, progB, "slot")
	callee := &funcProgram{id: progB, fn: func(ctx *Context, _ []types.AccountMeta, _ []byte) error {
		if err := ctx.CreateAccount(payer, target, 8, seeds); err != nil {
			return err
		}
		ctx.Log("created")
		return errors.New("callee failure")
	}}
	caller := &funcProgram{id: progA, fn: func(ctx *Context, accounts []types.AccountMeta, _ []byte) error {
		return ctx.Invoke(types.Instruction{ProgramID: progB, Accounts: accounts[:2]})
	}}
	metas := []types.AccountMeta{
		types.NewAccountMeta(payer, true),
		types.NewAccountMeta(target, false),
		types.NewReadonlyAccountMeta(progB, false),
	}
	ins := types.Instruction{ProgramID: progA, Accounts: metas}
	env := newTestEnv(t, types.NewTransaction(payer, 0, []types.Instruction{ins}), caller, callee)

	require.Error(t, env.Run(ins))
	assert.False(t, env.State().Exist(target), "callee account survived its failure")
	assert.Equal(t, params.LamportsPerSol, env.State().GetLamports(payer), "rent not refunded")
	assert.Empty(t, env.State().Logs())
}

func TestInvokeDepthLimit(t *testing.T) {
	var maxDepth int
	recurse := &funcProgram{id: progA, fn: func(ctx *Context, accounts []types.AccountMeta, _ []byte) error {
		if ctx.Depth() > maxDepth {
			maxDepth = ctx.Depth()
		}
		return ctx.Invoke(types.Instruction{ProgramID: progA, Accounts: accounts})
	}}
	metas := []types.AccountMeta{types.NewReadonlyAccountMeta(progA, false)}
	ins := types.Instruction{ProgramID: progA, Accounts: metas}
	env := newTestEnv(t, types.NewTransaction(payer, 0, []types.Instruction{ins}), recurse)

	assert.ErrorIs(t, env.Run(ins), ErrCallDepth)
	assert.Equal(t, params.MaxInvokeDepth, maxDepth)
}
