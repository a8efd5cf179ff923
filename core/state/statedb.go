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

// Package state provides the staging overlay transactions execute against.
package state

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/probechain/go-morph/common"
	"github.com/probechain/go-morph/core/rawdb"
	"github.com/probechain/go-morph/ledgerdb"
)

type revision struct {
	id           int
	journalIndex int
}

// StateDB is a write-ahead overlay over committed accounts. Every change is
// journaled, so any prefix of a transaction can be rolled back with
// RevertToSnapshot, and nothing reaches the store before Commit.
//
// A StateDB serves a single transaction and is not safe for concurrent use.
type StateDB struct {
	db Database

	// This map holds 'live' objects, which will get modified while processing a
	// state transition.
	stateObjects map[common.Address]*stateObject

	// DB error.
	// State objects are used by the programs which are unable to deal with
	// database-level errors. Any error that occurs during a database read is
	// memoized here and will eventually be returned by StateDB.Commit.
	dbErr error

	logs []string

	// Journal of state modifications. This is the backbone of
	// Snapshot and RevertToSnapshot.
	journal        *journal
	validRevisions []revision
	nextRevisionId int
}

// New creates a new overlay on top of the committed state.
func New(db Database) *StateDB {
	return &StateDB{
		db:           db,
		stateObjects: make(map[common.Address]*stateObject),
		journal:      newJournal(),
	}
}

// setError remembers the first non-nil error it is called with.
func (s *StateDB) setError(err error) {
	if s.dbErr == nil {
		s.dbErr = err
	}
}

func (s *StateDB) Error() error {
	return s.dbErr
}

// AddLog appends a program log line.
func (s *StateDB) AddLog(msg string) {
	s.journal.append(addLogChange{})
	s.logs = append(s.logs, msg)
}

// Logs returns the program log lines recorded so far.
func (s *StateDB) Logs() []string {
	return append([]string(nil), s.logs...)
}

// Exist reports whether the given account address exists in the state.
func (s *StateDB) Exist(addr common.Address) bool {
	return s.getStateObject(addr) != nil
}

// GetAccount returns a copy of the account at addr, or nil.
func (s *StateDB) GetAccount(addr common.Address) *Account {
	if obj := s.getStateObject(addr); obj != nil {
		return obj.data.Copy()
	}
	return nil
}

// GetLamports retrieves the balance from the given address or 0 if object not found
func (s *StateDB) GetLamports(addr common.Address) uint64 {
	if obj := s.getStateObject(addr); obj != nil {
		return obj.Lamports()
	}
	return 0
}

// GetOwner returns the owning program of addr, or the zero address.
func (s *StateDB) GetOwner(addr common.Address) common.Address {
	if obj := s.getStateObject(addr); obj != nil {
		return obj.data.Owner
	}
	return common.Address{}
}

// GetData returns a copy of the account payload.
func (s *StateDB) GetData(addr common.Address) []byte {
	if obj := s.getStateObject(addr); obj != nil {
		return append([]byte(nil), obj.data.Data...)
	}
	return nil
}

// IsExecutable reports whether addr holds a program.
func (s *StateDB) IsExecutable(addr common.Address) bool {
	if obj := s.getStateObject(addr); obj != nil {
		return obj.data.Executable
	}
	return false
}

/*
 * SETTERS
 */

// SetLamports sets the balance of addr. The account must exist.
func (s *StateDB) SetLamports(addr common.Address, amount uint64) {
	if obj := s.getStateObject(addr); obj != nil {
		obj.SetLamports(amount)
	}
}

// SetOwner assigns addr to another program. The account must exist.
func (s *StateDB) SetOwner(addr common.Address, owner common.Address) {
	if obj := s.getStateObject(addr); obj != nil {
		obj.SetOwner(owner)
	}
}

// SetData replaces the payload of addr. The account must exist.
func (s *StateDB) SetData(addr common.Address, data []byte) {
	if obj := s.getStateObject(addr); obj != nil {
		obj.SetData(append([]byte(nil), data...))
	}
}

// CreateAccount creates a new account with a zeroed payload of the given
// size. Creating an account that already exists is a programming error.
func (s *StateDB) CreateAccount(addr common.Address, owner common.Address, lamports uint64, space int, executable bool) {
	if s.getStateObject(addr) != nil {
		panic(fmt.Errorf("account %s already exists", addr))
	}
	obj := newObject(s, addr, Account{
		Lamports:   lamports,
		Owner:      owner,
		Executable: executable,
		Data:       make([]byte, space),
	})
	s.journal.append(createObjectChange{account: &addr})
	s.stateObjects[addr] = obj
}

// getStateObject retrieves a state object given by the address, returning nil
// if the object is not found or an error occurred.
func (s *StateDB) getStateObject(addr common.Address) *stateObject {
	// Prefer live objects if any is available
	if obj := s.stateObjects[addr]; obj != nil {
		return obj
	}
	acct, err := s.db.ReadAccount(addr)
	if err != nil {
		s.setError(fmt.Errorf("getStateObject (%s) error: %w", addr, err))
		return nil
	}
	if acct == nil {
		return nil
	}
	obj := newObject(s, addr, *acct)
	s.stateObjects[addr] = obj
	return obj
}

// Snapshot returns an identifier for the current revision of the state.
func (s *StateDB) Snapshot() int {
	id := s.nextRevisionId
	s.nextRevisionId++
	s.validRevisions = append(s.validRevisions, revision{id, s.journal.length()})
	return id
}

// RevertToSnapshot reverts all state changes made since the given revision.
func (s *StateDB) RevertToSnapshot(revid int) {
	// Find the snapshot in the stack of valid snapshots.
	idx := sort.Search(len(s.validRevisions), func(i int) bool {
		return s.validRevisions[i].id >= revid
	})
	if idx == len(s.validRevisions) || s.validRevisions[idx].id != revid {
		panic(fmt.Errorf("revision id %v cannot be reverted", revid))
	}
	snapshot := s.validRevisions[idx].journalIndex

	// Replay the journal to undo changes and remove invalidated snapshots
	s.journal.revert(s, snapshot)
	s.validRevisions = s.validRevisions[:idx]
}

// Dirty returns the addresses changed since the overlay was created.
func (s *StateDB) Dirty() []common.Address {
	addrs := make([]common.Address, 0, len(s.journal.dirties))
	for addr := range s.journal.dirties {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Cmp(addrs[j]) < 0 })
	return addrs
}

// Commit writes every dirty account into batch and returns their encodings
// for Database.Publish. The overlay must not be used afterwards.
func (s *StateDB) Commit(batch ledgerdb.KeyValueWriter) (map[common.Address][]byte, error) {
	if s.dbErr != nil {
		return nil, fmt.Errorf("commit aborted due to earlier error: %w", s.dbErr)
	}
	updates := make(map[common.Address][]byte, len(s.journal.dirties))
	for _, addr := range s.Dirty() {
		obj := s.stateObjects[addr]
		if obj == nil {
			continue
		}
		enc, err := rlp.EncodeToBytes(&obj.data)
		if err != nil {
			return nil, fmt.Errorf("encode account %s: %w", addr, err)
		}
		rawdb.WriteAccountRLP(batch, addr, enc)
		updates[addr] = enc
	}
	s.journal = newJournal()
	s.validRevisions = s.validRevisions[:0]
	return updates, nil
}
