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

package core

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/probechain/go-morph/common"
	"github.com/probechain/go-morph/core/types"
	"github.com/probechain/go-morph/core/vm"
	"github.com/probechain/go-morph/ledgerdb/leveldb"
	"github.com/probechain/go-morph/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tallyProgramID = common.BytesToAddress([]byte{0xc0, 0xde})
	tallyAccount   = common.BytesToAddress([]byte{0x7a})
)

// tallyProgram bumps a u64 stored in tallyAccount. Opcode 1 bumps and then
// fails, opcode 2 logs and fails.
type tallyProgram struct{}

func (tallyProgram) ID() common.Address { return tallyProgramID }

func (tallyProgram) Execute(ctx *vm.Context, accounts []types.AccountMeta, data []byte) error {
	if len(data) == 0 || len(accounts) == 0 {
		return vm.ErrInvalidInstruction
	}
	cur, err := ctx.OwnedData(accounts[0].Address, tallyProgramID)
	if err != nil {
		return err
	}
	next := binary.LittleEndian.Uint64(cur) + 1
	if err := ctx.WriteData(accounts[0].Address, binary.LittleEndian.AppendUint64(nil, next)); err != nil {
		return err
	}
	ctx.Log("tally bumped")
	switch data[0] {
	case 1:
		return errors.New("tally refused")
	case 2:
		return vm.ErrStaleState
	}
	return nil
}

func wallet(i int) common.Address {
	return common.BytesToAddress([]byte{0x10, byte(i >> 8), byte(i)})
}

func newTestLedger(t *testing.T, wallets int) *Ledger {
	t.Helper()
	db := leveldb.NewMemory()
	t.Cleanup(func() { db.Close() })

	alloc := GenesisAlloc{
		tallyProgramID: {Owner: params.SystemProgramID, Executable: true, Lamports: 1},
		tallyAccount:   {Owner: tallyProgramID, Lamports: 1, Data: make([]byte, 8)},
	}
	for i := 0; i < wallets; i++ {
		alloc[wallet(i)] = GenesisAccount{Owner: params.SystemProgramID, Lamports: params.LamportsPerSol}
	}
	_, err := SetupGenesis(db, &Genesis{Alloc: alloc})
	require.NoError(t, err)

	l, err := NewLedger(db, Config{StateCache: 1}, vm.NewRegistry(tallyProgram{}))
	require.NoError(t, err)
	return l
}

func tallyTx(payer common.Address, nonce uint64, op byte) *types.Transaction {
	return types.NewTransaction(payer, nonce, []types.Instruction{{
		ProgramID: tallyProgramID,
		Accounts:  []types.AccountMeta{types.NewAccountMeta(tallyAccount, false)},
		Data:      []byte{op},
	}})
}

func tally(t *testing.T, l *Ledger) uint64 {
	acct, err := l.Account(tallyAccount)
	require.NoError(t, err)
	require.NotNil(t, acct)
	return binary.LittleEndian.Uint64(acct.Data)
}

func TestSendTransactionCommits(t *testing.T) {
	l := newTestLedger(t, 1)
	tx := tallyTx(wallet(0), 0, 0)

	receipt, err := l.SendTransaction(context.Background(), tx)
	require.NoError(t, err)
	assert.True(t, receipt.Succeeded())
	assert.Equal(t, uint64(1), receipt.Sequence)
	assert.Equal(t, params.LamportsPerSignature, receipt.Fee)
	assert.Contains(t, receipt.Logs, "Program log: tally bumped")
	assert.Equal(t, uint64(1), tally(t, l))
	assert.Equal(t, uint64(1), l.Sequence())

	payer, _ := l.Account(wallet(0))
	assert.Equal(t, params.LamportsPerSol-params.LamportsPerSignature, payer.Lamports)

	stored := l.Receipt(tx.Hash())
	require.NotNil(t, stored)
	assert.Equal(t, receipt.Sequence, stored.Sequence)

	_, err = l.SendTransaction(context.Background(), tx)
	assert.ErrorIs(t, err, ErrAlreadyKnown)
}

func TestSendTransactionFailureLeavesNoTrace(t *testing.T) {
	l := newTestLedger(t, 1)
	tx := tallyTx(wallet(0), 0, 1)

	receipt, err := l.SendTransaction(context.Background(), tx)
	require.Error(t, err)

	var insErr *InstructionError
	require.ErrorAs(t, err, &insErr)
	assert.Equal(t, 0, insErr.Index)
	assert.Equal(t, tallyProgramID, insErr.Program)

	require.NotNil(t, receipt)
	assert.False(t, receipt.Succeeded())
	assert.Contains(t, receipt.Logs, "Program log: tally bumped")

	assert.Equal(t, uint64(0), tally(t, l))
	assert.Nil(t, l.Receipt(tx.Hash()))
	assert.Equal(t, uint64(0), l.Sequence())
	payer, _ := l.Account(wallet(0))
	assert.Equal(t, params.LamportsPerSol, payer.Lamports, "fee charged for failed transaction")

	_, err = l.SendTransaction(context.Background(), tallyTx(wallet(0), 1, 2))
	assert.Equal(t, vm.ClassRetry, vm.Classify(err))
}

func TestSendTransactionUnfundedPayer(t *testing.T) {
	l := newTestLedger(t, 0)
	_, err := l.SendTransaction(context.Background(), tallyTx(wallet(5), 0, 0))
	assert.ErrorIs(t, err, ErrInsufficientFundsForFee)
	assert.ErrorIs(t, err, vm.ErrInsufficientResources)
}

func TestSendBatchSerializesConflicts(t *testing.T) {
	const n = 40
	l := newTestLedger(t, n)

	txs := make([]*types.Transaction, n)
	for i := range txs {
		txs[i] = tallyTx(wallet(i), 0, 0)
	}
	receipts, errs := l.SendBatch(context.Background(), txs)
	seqs := make(map[uint64]bool)
	for i := range txs {
		require.NoError(t, errs[i], "tx %d", i)
		assert.False(t, seqs[receipts[i].Sequence], "duplicate sequence %d", receipts[i].Sequence)
		seqs[receipts[i].Sequence] = true
	}
	assert.Equal(t, uint64(n), tally(t, l))
	assert.Equal(t, uint64(n), l.Sequence())
}

func TestLockWaitHonoursContext(t *testing.T) {
	l := newTestLedger(t, 1)
	held := []common.Address{tallyAccount}
	require.NoError(t, l.locks.lock(context.Background(), held, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := l.SendTransaction(ctx, tallyTx(wallet(0), 0, 0))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	l.locks.unlock(held, nil)
	_, err = l.SendTransaction(context.Background(), tallyTx(wallet(0), 0, 0))
	assert.NoError(t, err)
}

func TestReadLocksShare(t *testing.T) {
	locks := newAccountLocks()
	a := []common.Address{tallyAccount}
	require.NoError(t, locks.lock(context.Background(), nil, a))
	require.NoError(t, locks.lock(context.Background(), nil, a))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, locks.lock(ctx, a, nil), context.DeadlineExceeded)

	locks.unlock(nil, a)
	locks.unlock(nil, a)
	assert.NoError(t, locks.lock(context.Background(), a, nil))
}

func TestAirdrop(t *testing.T) {
	l := newTestLedger(t, 0)
	target := wallet(9)

	_, err := l.Airdrop(context.Background(), target, 500)
	require.NoError(t, err)
	_, err = l.Airdrop(context.Background(), target, 250)
	require.NoError(t, err)

	acct, err := l.Account(target)
	require.NoError(t, err)
	assert.Equal(t, uint64(750), acct.Lamports)
	assert.Equal(t, params.SystemProgramID, acct.Owner)
	assert.Equal(t, uint64(2), l.Sequence())
}

func TestClosedLedger(t *testing.T) {
	l := newTestLedger(t, 1)
	l.Close()
	_, err := l.SendTransaction(context.Background(), tallyTx(wallet(0), 0, 0))
	assert.ErrorIs(t, err, ErrLedgerClosed)
}

func TestSetupGenesis(t *testing.T) {
	db := leveldb.NewMemory()
	defer db.Close()

	g := &Genesis{Alloc: GenesisAlloc{wallet(1): {Lamports: 10}}}
	hash, err := SetupGenesis(db, g)
	require.NoError(t, err)

	again, err := SetupGenesis(db, nil)
	require.NoError(t, err)
	assert.Equal(t, hash, again)

	other := &Genesis{Alloc: GenesisAlloc{wallet(2): {Lamports: 10}}}
	_, err = SetupGenesis(db, other)
	assert.ErrorIs(t, err, ErrGenesisMismatch)

	_, err = NewLedger(leveldb.NewMemory(), Config{}, vm.NewRegistry())
	assert.Error(t, err, "unseeded database accepted")
}
