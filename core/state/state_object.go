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

// Account is the consensus representation of a ledger account. The owner is
// the only program allowed to change Data; Data keeps the length it was
// allocated with.
type Account struct {
	Lamports   uint64
	Owner      common.Address
	Executable bool
	Data       []byte
}

// Copy returns a deep copy of the account.
func (a *Account) Copy() *Account {
	cpy := *a
	cpy.Data = append([]byte(nil), a.Data...)
	return &cpy
}

// stateObject represents an account which is being modified.
//
// The usage pattern is as follows:
// First you need to obtain a state object.
// Account values can be accessed and modified through the object.
// Finally, call StateDB.Commit to write the modified accounts into a batch.
type stateObject struct {
	address common.Address
	data    Account
	db      *StateDB
}

func newObject(db *StateDB, address common.Address, data Account) *stateObject {
	return &stateObject{
		address: address,
		data:    data,
		db:      db,
	}
}

// Address returns the address of the account.
func (s *stateObject) Address() common.Address {
	return s.address
}

func (s *stateObject) Lamports() uint64 {
	return s.data.Lamports
}

func (s *stateObject) SetLamports(amount uint64) {
	s.db.journal.append(lamportsChange{
		account: &s.address,
		prev:    s.data.Lamports,
	})
	s.setLamports(amount)
}

func (s *stateObject) setLamports(amount uint64) {
	s.data.Lamports = amount
}

func (s *stateObject) SetOwner(owner common.Address) {
	s.db.journal.append(ownerChange{
		account: &s.address,
		prev:    s.data.Owner,
	})
	s.setOwner(owner)
}

func (s *stateObject) setOwner(owner common.Address) {
	s.data.Owner = owner
}

// SetData replaces the account payload. The previous payload is kept in the
// journal by reference, so callers must not mutate a slice after handing it in.
func (s *stateObject) SetData(data []byte) {
	s.db.journal.append(dataChange{
		account: &s.address,
		prev:    s.data.Data,
	})
	s.setData(data)
}

func (s *stateObject) setData(data []byte) {
	s.data.Data = data
}
