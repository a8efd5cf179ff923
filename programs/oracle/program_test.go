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

package oracle

import (
	"context"
	"errors"
	"testing"

	"github.com/probechain/go-morph/common"
	"github.com/probechain/go-morph/core"
	"github.com/probechain/go-morph/core/types"
	"github.com/probechain/go-morph/core/vm"
	"github.com/probechain/go-morph/crypto"
	"github.com/probechain/go-morph/ledgerdb/leveldb"
	"github.com/probechain/go-morph/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	echoProgramID = common.BytesToAddress([]byte{0xec, 0x40})
	echoAccount   = common.BytesToAddress([]byte{0xec, 0x41})
	echoSelector  = crypto.InstructionDiscriminator("echo")

	user      = common.BytesToAddress([]byte{0x01})
	authority = common.BytesToAddress([]byte{0x02})
	responder = common.BytesToAddress([]byte{0x03})
	stranger  = common.BytesToAddress([]byte{0x04})
)

// echoProgram stores relayed responses in echoAccount and rejects "fail".
type echoProgram struct{}

func (echoProgram) ID() common.Address { return echoProgramID }

func (echoProgram) Execute(ctx *vm.Context, accounts []types.AccountMeta, data []byte) error {
	identity, _ := IdentityAddress()
	if len(accounts) < 2 || accounts[0].Address != identity || !ctx.IsSigner(identity) {
		return vm.ErrUnauthorized
	}
	r := common.NewLayoutReader(data)
	if sel := r.Raw(crypto.DiscriminatorLength); string(sel) != string(echoSelector[:]) {
		return vm.ErrInvalidInstruction
	}
	response := r.String(64)
	if response == "fail" {
		return errors.New("echo refused")
	}
	return ctx.WriteData(accounts[1].Address, []byte(response))
}

func newTestLedger(t *testing.T) *core.Ledger {
	t.Helper()
	db := leveldb.NewMemory()
	t.Cleanup(func() { db.Close() })

	alloc := GenesisAlloc(responder, authority)
	alloc[echoProgramID] = core.GenesisAccount{Owner: params.SystemProgramID, Executable: true, Lamports: 1}
	alloc[echoAccount] = core.GenesisAccount{Owner: echoProgramID, Lamports: 1, Data: make([]byte, 64)}
	for _, w := range []common.Address{user, authority, responder, stranger} {
		alloc[w] = core.GenesisAccount{Owner: params.SystemProgramID, Lamports: params.LamportsPerSol}
	}
	_, err := core.SetupGenesis(db, &core.Genesis{Alloc: alloc})
	require.NoError(t, err)

	l, err := core.NewLedger(db, core.Config{}, vm.NewRegistry(New(), echoProgram{}))
	require.NoError(t, err)
	return l
}

var nonce uint64

func send(t *testing.T, l *core.Ledger, payer common.Address, ins types.Instruction, signers ...common.Address) error {
	t.Helper()
	nonce++
	_, err := l.SendTransaction(context.Background(), types.NewTransaction(payer, nonce, []types.Instruction{ins}, signers...))
	return err
}

func createContext(t *testing.T, l *core.Ledger, count uint32) common.Address {
	t.Helper()
	require.NoError(t, send(t, l, user, NewCreateContextInstruction(user, authority, count, "be a pet"), authority))
	addr, _ := ContextAddress(count)
	return addr
}

func readInteraction(t *testing.T, l *core.Ledger, addr common.Address) *Interaction {
	t.Helper()
	acct, err := l.Account(addr)
	require.NoError(t, err)
	require.NotNil(t, acct)
	i, err := DecodeInteraction(acct.Data)
	require.NoError(t, err)
	return i
}

func TestCreateContext(t *testing.T) {
	l := newTestLedger(t)
	addr := createContext(t, l, 7)

	acct, err := l.Account(addr)
	require.NoError(t, err)
	assert.Equal(t, params.OracleProgramID, acct.Owner)
	c, err := DecodeContext(acct.Data)
	require.NoError(t, err)
	assert.Equal(t, "be a pet", c.Text)

	err = send(t, l, user, NewCreateContextInstruction(user, authority, 7, "again"), authority)
	assert.ErrorIs(t, err, vm.ErrAlreadyExists)
}

func TestCreateContextRequiresAuthority(t *testing.T) {
	l := newTestLedger(t)
	err := send(t, l, user, NewCreateContextInstruction(user, stranger, 0, "be a pet"), stranger)
	assert.ErrorIs(t, err, vm.ErrUnauthorized)

	err = send(t, l, user, NewCreateContextInstruction(user, authority, 0, ""), authority)
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestInteractCreatesThenOverwrites(t *testing.T) {
	l := newTestLedger(t)
	ctxAddr := createContext(t, l, 0)
	addr, _ := InteractionAddress(user, ctxAddr)
	metas := []types.AccountMeta{types.NewAccountMeta(echoAccount, false)}

	require.NoError(t, send(t, l, user, NewInteractInstruction(user, ctxAddr, "hello", echoProgramID, echoSelector, metas)))
	first := readInteraction(t, l, addr)
	assert.Equal(t, "hello", first.Prompt)
	assert.Equal(t, StatusRecorded, first.Status)
	assert.Equal(t, user, first.User)
	assert.Equal(t, ctxAddr, first.Context)

	before, _ := l.Account(user)
	require.NoError(t, send(t, l, user, NewInteractInstruction(user, ctxAddr, "again", echoProgramID, echoSelector, metas)))
	after, _ := l.Account(user)
	// Only the fee is charged once the account exists.
	assert.Equal(t, before.Lamports-params.LamportsPerSignature, after.Lamports)
	assert.Equal(t, "again", readInteraction(t, l, addr).Prompt)
}

func TestInteractRejectsSignerCallbackAccounts(t *testing.T) {
	l := newTestLedger(t)
	ctxAddr := createContext(t, l, 0)
	metas := []types.AccountMeta{types.NewAccountMeta(echoAccount, true)}
	err := send(t, l, user, NewInteractInstruction(user, ctxAddr, "hello", echoProgramID, echoSelector, metas))
	assert.ErrorIs(t, err, vm.ErrInvalidInstruction)
}

func TestCallbackRelaysResponse(t *testing.T) {
	l := newTestLedger(t)
	ctxAddr := createContext(t, l, 0)
	addr, _ := InteractionAddress(user, ctxAddr)
	metas := []types.AccountMeta{types.NewAccountMeta(echoAccount, false)}
	require.NoError(t, send(t, l, user, NewInteractInstruction(user, ctxAddr, "hello", echoProgramID, echoSelector, metas)))

	pending := readInteraction(t, l, addr)
	require.NoError(t, send(t, l, responder, NewCallbackInstruction(responder, addr, pending, "hi there")))

	done := readInteraction(t, l, addr)
	assert.Equal(t, StatusResponded, done.Status)
	assert.Equal(t, "hi there", done.Response)
	echo, _ := l.Account(echoAccount)
	assert.Equal(t, "hi there", string(echo.Data[:8]))

	err := send(t, l, responder, NewCallbackInstruction(responder, addr, done, "twice"))
	assert.ErrorIs(t, err, ErrAlreadyResponded)
}

func TestCallbackRequiresResponder(t *testing.T) {
	l := newTestLedger(t)
	ctxAddr := createContext(t, l, 0)
	addr, _ := InteractionAddress(user, ctxAddr)
	require.NoError(t, send(t, l, user, NewInteractInstruction(user, ctxAddr, "hello", echoProgramID, echoSelector,
		[]types.AccountMeta{types.NewAccountMeta(echoAccount, false)})))

	err := send(t, l, stranger, NewCallbackInstruction(stranger, addr, readInteraction(t, l, addr), "hi"))
	assert.ErrorIs(t, err, vm.ErrUnauthorized)
}

func TestCallbackFailureKeepsPrompt(t *testing.T) {
	l := newTestLedger(t)
	ctxAddr := createContext(t, l, 0)
	addr, _ := InteractionAddress(user, ctxAddr)
	require.NoError(t, send(t, l, user, NewInteractInstruction(user, ctxAddr, "hello", echoProgramID, echoSelector,
		[]types.AccountMeta{types.NewAccountMeta(echoAccount, false)})))

	err := send(t, l, responder, NewCallbackInstruction(responder, addr, readInteraction(t, l, addr), "fail"))
	require.Error(t, err)

	i := readInteraction(t, l, addr)
	assert.Equal(t, StatusRecorded, i.Status)
	assert.Empty(t, i.Response)
}

func TestAddressesAreStable(t *testing.T) {
	a, bumpA := ContextAddress(3)
	b, bumpB := ContextAddress(3)
	assert.Equal(t, a, b)
	assert.Equal(t, bumpA, bumpB)
	c, _ := ContextAddress(4)
	assert.NotEqual(t, a, c)
	assert.False(t, crypto.IsOnCurve(a.Bytes()))
}
