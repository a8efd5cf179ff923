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

package types

import (
	"github.com/probechain/go-morph/common"
)

// AccountKey is one entry of a transaction's compiled account list.
type AccountKey struct {
	Address  common.Address
	Signer   bool
	Writable bool
	Program  bool
}

// Message is the flattened account view of a transaction: every account any
// instruction names, with the union of privileges requested for it. The
// execution environment locks accounts and checks access against it.
type Message struct {
	keys  []AccountKey
	index map[common.Address]int
}

// AsMessage compiles the account list of tx. The payer comes first and is
// always a writable signer.
func (tx *Transaction) AsMessage() *Message {
	m := &Message{index: make(map[common.Address]int)}
	m.add(AccountKey{Address: tx.inner.Payer, Signer: true, Writable: true})
	for _, ins := range tx.inner.Instructions {
		for _, meta := range ins.Accounts {
			m.add(AccountKey{Address: meta.Address, Signer: meta.IsSigner, Writable: meta.IsWritable})
		}
		m.add(AccountKey{Address: ins.ProgramID, Program: true})
	}
	return m
}

func (m *Message) add(key AccountKey) {
	if i, ok := m.index[key.Address]; ok {
		have := &m.keys[i]
		have.Signer = have.Signer || key.Signer
		have.Writable = have.Writable || key.Writable
		have.Program = have.Program || key.Program
		return
	}
	m.index[key.Address] = len(m.keys)
	m.keys = append(m.keys, key)
}

// Keys returns the compiled account list.
func (m *Message) Keys() []AccountKey {
	return append([]AccountKey(nil), m.keys...)
}

// Lookup returns the compiled entry of addr.
func (m *Message) Lookup(addr common.Address) (AccountKey, bool) {
	i, ok := m.index[addr]
	if !ok {
		return AccountKey{}, false
	}
	return m.keys[i], true
}

// Writable returns the accounts requested writable.
func (m *Message) Writable() []common.Address {
	var out []common.Address
	for _, k := range m.keys {
		if k.Writable {
			out = append(out, k.Address)
		}
	}
	return out
}

// Readonly returns the data accounts requested read-only. Program accounts
// are immutable and left out.
func (m *Message) Readonly() []common.Address {
	var out []common.Address
	for _, k := range m.keys {
		if !k.Writable && !k.Program {
			out = append(out, k.Address)
		}
	}
	return out
}

// Signers returns the accounts requested as signers.
func (m *Message) Signers() []common.Address {
	var out []common.Address
	for _, k := range m.keys {
		if k.Signer {
			out = append(out, k.Address)
		}
	}
	return out
}

// Len returns the number of distinct accounts.
func (m *Message) Len() int {
	return len(m.keys)
}
