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

// Package core implements the ledger: transaction admission, execution
// against a staging overlay and atomic commit.
package core

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/probechain/go-morph/common"
	"github.com/probechain/go-morph/core/rawdb"
	"github.com/probechain/go-morph/core/state"
	"github.com/probechain/go-morph/core/types"
	"github.com/probechain/go-morph/core/vm"
	"github.com/probechain/go-morph/crypto"
	"github.com/probechain/go-morph/ledgerdb"
	"github.com/probechain/go-morph/params"
	"golang.org/x/sync/errgroup"
)

var (
	txCommitMeter = metrics.NewRegisteredMeter("ledger/tx/commit", nil)
	txFailMeter   = metrics.NewRegisteredMeter("ledger/tx/fail", nil)
	txExecTimer   = metrics.NewRegisteredTimer("ledger/tx/exec", nil)
)

// Config are the tunables of a ledger instance.
type Config struct {
	StateCache  int // Clean account cache size in megabytes
	Parallelism int // Worker limit for batch submission, zero means GOMAXPROCS
}

// Ledger executes transactions atomically against the committed account
// state. Transactions touching disjoint accounts run in parallel; those
// sharing a writable account are serialized by the account lock table.
type Ledger struct {
	config   Config
	db       ledgerdb.KeyValueStore
	stateDB  state.Database
	registry *vm.Registry
	locks    *accountLocks

	commitMu sync.Mutex // Orders sequence numbers and batch writes
	sequence uint64     // Last committed sequence, guarded by commitMu

	closed atomic.Bool
}

// NewLedger opens a ledger over a seeded database.
func NewLedger(db ledgerdb.KeyValueStore, config Config, registry *vm.Registry) (*Ledger, error) {
	if registry == nil {
		return nil, errors.New("program registry must be specified")
	}
	if _, ok := rawdb.ReadGenesisHash(db); !ok {
		return nil, fmt.Errorf("ledger database not seeded, run genesis first")
	}
	if config.Parallelism <= 0 {
		config.Parallelism = runtime.GOMAXPROCS(0)
	}
	l := &Ledger{
		config:   config,
		db:       db,
		stateDB:  state.NewDatabaseWithCache(db, config.StateCache),
		registry: registry,
		locks:    newAccountLocks(),
		sequence: rawdb.ReadLastSequence(db),
	}
	log.Info("Initialised ledger", "sequence", l.sequence, "programs", len(registry.IDs()))
	return l, nil
}

// SendTransaction executes tx and commits it if every instruction succeeds.
// A failed transaction leaves no trace in the ledger; its receipt, carrying
// the program logs up to the failure, is returned alongside the error.
func (l *Ledger) SendTransaction(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	if l.closed.Load() {
		return nil, ErrLedgerClosed
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	msg := tx.AsMessage()
	writable, readonly := msg.Writable(), msg.Readonly()
	if err := l.locks.lock(ctx, writable, readonly); err != nil {
		return nil, err
	}
	defer l.locks.unlock(writable, readonly)

	hash := tx.Hash()
	if rawdb.ReadReceipt(l.db, hash) != nil {
		return nil, ErrAlreadyKnown
	}
	start := time.Now()
	statedb := state.New(l.stateDB)
	fee, err := ApplyTransaction(l.registry, statedb, tx)
	txExecTimer.UpdateSince(start)
	if err != nil {
		txFailMeter.Mark(1)
		log.Debug("Transaction failed", "hash", hash, "err", err)
		return &types.Receipt{
			TxHash: hash,
			Status: types.ReceiptStatusFailed,
			Logs:   statedb.Logs(),
			Err:    err.Error(),
		}, err
	}
	receipt, err := l.commit(statedb, hash, fee)
	if err != nil {
		return nil, err
	}
	log.Debug("Committed transaction", "hash", hash, "sequence", receipt.Sequence, "fee", fee)
	return receipt, nil
}

// SendBatch submits txs concurrently. Results are positional; conflicting
// transactions execute one after another in no particular order.
func (l *Ledger) SendBatch(ctx context.Context, txs []*types.Transaction) ([]*types.Receipt, []error) {
	var (
		receipts = make([]*types.Receipt, len(txs))
		errs     = make([]error, len(txs))
		g        errgroup.Group
	)
	g.SetLimit(l.config.Parallelism)
	for i, tx := range txs {
		i, tx := i, tx
		g.Go(func() error {
			receipts[i], errs[i] = l.SendTransaction(ctx, tx)
			return nil
		})
	}
	g.Wait()
	return receipts, errs
}

// commit persists the overlay and the receipt in one batch.
func (l *Ledger) commit(statedb *state.StateDB, hash common.Hash, fee uint64) (*types.Receipt, error) {
	l.commitMu.Lock()
	defer l.commitMu.Unlock()

	batch := l.db.NewBatch()
	updates, err := statedb.Commit(batch)
	if err != nil {
		return nil, err
	}
	receipt := &types.Receipt{
		TxHash:   hash,
		Sequence: l.sequence + 1,
		Status:   types.ReceiptStatusSuccessful,
		Fee:      fee,
		Logs:     statedb.Logs(),
	}
	rawdb.WriteReceipt(batch, receipt)
	rawdb.WriteLastSequence(batch, receipt.Sequence)
	if err := batch.Write(); err != nil {
		return nil, fmt.Errorf("commit transaction %s: %w", hash, err)
	}
	l.sequence = receipt.Sequence
	l.stateDB.Publish(updates)
	txCommitMeter.Mark(1)
	return receipt, nil
}

// Airdrop credits lamports to addr, creating a system account if needed.
// It is a development faucet and bypasses program execution.
func (l *Ledger) Airdrop(ctx context.Context, addr common.Address, lamports uint64) (*types.Receipt, error) {
	if l.closed.Load() {
		return nil, ErrLedgerClosed
	}
	writable := []common.Address{addr}
	if err := l.locks.lock(ctx, writable, nil); err != nil {
		return nil, err
	}
	defer l.locks.unlock(writable, nil)

	statedb := state.New(l.stateDB)
	if !statedb.Exist(addr) {
		statedb.CreateAccount(addr, params.SystemProgramID, 0, 0, false)
	}
	bal, err := vm.Credit(statedb.GetLamports(addr), lamports)
	if err != nil {
		return nil, err
	}
	statedb.SetLamports(addr, bal)
	statedb.AddLog(fmt.Sprintf("Airdrop %d lamports to %s", lamports, addr))

	var salt []byte
	salt = binary.BigEndian.AppendUint64(salt, lamports)
	salt = binary.BigEndian.AppendUint64(salt, l.Sequence())
	salt = binary.BigEndian.AppendUint64(salt, uint64(time.Now().UnixNano()))
	return l.commit(statedb, crypto.Keccak256Hash([]byte("airdrop"), addr.Bytes(), salt), 0)
}

// Account returns the committed account at addr, or nil if absent.
func (l *Ledger) Account(addr common.Address) (*state.Account, error) {
	return l.stateDB.ReadAccount(addr)
}

// Receipt returns the receipt of a committed transaction.
func (l *Ledger) Receipt(hash common.Hash) *types.Receipt {
	return rawdb.ReadReceipt(l.db, hash)
}

// Sequence returns the sequence number of the latest committed transaction.
func (l *Ledger) Sequence() uint64 {
	l.commitMu.Lock()
	defer l.commitMu.Unlock()
	return l.sequence
}

// Registry returns the deployed programs.
func (l *Ledger) Registry() *vm.Registry {
	return l.registry
}

// Close stops accepting transactions. The database is owned by the caller.
func (l *Ledger) Close() {
	if l.closed.CompareAndSwap(false, true) {
		log.Info("Ledger stopped", "sequence", l.Sequence())
	}
}
