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

package state

import (
	"github.com/probechain/go-morph/common"
)

// journalEntry is one undoable account mutation.
type journalEntry interface {
	revert(*StateDB)

	// dirtied returns the account the entry touched, nil for entries that
	// touch no account.
	dirtied() *common.Address
}

// journal records the mutations of a transaction overlay so that a failed
// instruction or cross-program call can be rolled back to a snapshot.
type journal struct {
	entries []journalEntry
	dirties map[common.Address]int // Account -> number of live entries
}

func newJournal() *journal {
	return &journal{
		dirties: make(map[common.Address]int),
	}
}

// append records entry.
func (j *journal) append(entry journalEntry) {
	j.entries = append(j.entries, entry)
	if addr := entry.dirtied(); addr != nil {
		j.dirties[*addr]++
	}
}

// revert undoes every entry recorded after snapshot, newest first.
func (j *journal) revert(statedb *StateDB, snapshot int) {
	for i := len(j.entries) - 1; i >= snapshot; i-- {
		j.entries[i].revert(statedb)
		if addr := j.entries[i].dirtied(); addr != nil {
			if j.dirties[*addr]--; j.dirties[*addr] == 0 {
				delete(j.dirties, *addr)
			}
		}
	}
	j.entries = j.entries[:snapshot]
}

func (j *journal) length() int {
	return len(j.entries)
}

type (
	// Changes to the account set.
	createObjectChange struct {
		account *common.Address
	}

	// Changes to individual accounts.
	lamportsChange struct {
		account *common.Address
		prev    uint64
	}
	ownerChange struct {
		account *common.Address
		prev    common.Address
	}
	dataChange struct {
		account *common.Address
		prev    []byte
	}

	// Changes to other state values.
	addLogChange struct{}
)

func (ch createObjectChange) revert(s *StateDB) {
	delete(s.stateObjects, *ch.account)
}

func (ch createObjectChange) dirtied() *common.Address {
	return ch.account
}

func (ch lamportsChange) revert(s *StateDB) {
	s.getStateObject(*ch.account).setLamports(ch.prev)
}

func (ch lamportsChange) dirtied() *common.Address {
	return ch.account
}

func (ch ownerChange) revert(s *StateDB) {
	s.getStateObject(*ch.account).setOwner(ch.prev)
}

func (ch ownerChange) dirtied() *common.Address {
	return ch.account
}

func (ch dataChange) revert(s *StateDB) {
	s.getStateObject(*ch.account).setData(ch.prev)
}

func (ch dataChange) dirtied() *common.Address {
	return ch.account
}

func (ch addLogChange) revert(s *StateDB) {
	s.logs = s.logs[:len(s.logs)-1]
}

func (ch addLogChange) dirtied() *common.Address {
	return nil
}
