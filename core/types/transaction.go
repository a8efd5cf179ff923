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
	"encoding/json"
	"errors"
	"io"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/probechain/go-morph/common"
	"github.com/probechain/go-morph/crypto"
)

var (
	ErrNoInstructions = errors.New("transaction has no instructions")
	ErrNoPayer        = errors.New("transaction has no fee payer")
)

// AccountMeta declares one account an instruction touches and the
// privileges it needs on it.
type AccountMeta struct {
	Address    common.Address `json:"address"`
	IsSigner   bool           `json:"isSigner"`
	IsWritable bool           `json:"isWritable"`
}

// NewAccountMeta returns a meta for a writable account.
func NewAccountMeta(addr common.Address, signer bool) AccountMeta {
	return AccountMeta{Address: addr, IsSigner: signer, IsWritable: true}
}

// NewReadonlyAccountMeta returns a meta for a read-only account.
func NewReadonlyAccountMeta(addr common.Address, signer bool) AccountMeta {
	return AccountMeta{Address: addr, IsSigner: signer}
}

// Instruction is a single program invocation.
type Instruction struct {
	ProgramID common.Address `json:"programId"`
	Accounts  []AccountMeta  `json:"accounts"`
	Data      hexutil.Bytes  `json:"data"`
}

// txdata is the consensus encoding of a transaction.
type txdata struct {
	Payer        common.Address
	Signers      []common.Address
	Nonce        uint64
	Instructions []Instruction
}

// Transaction is an atomic list of instructions paid for by a single payer.
// Signature verification happens before a transaction reaches the ledger,
// so the declared signer set is trusted as is.
type Transaction struct {
	inner txdata

	// caches
	hash atomic.Value
}

// NewTransaction creates a transaction. The payer is always the first signer;
// extra signers are appended in order without duplicates.
func NewTransaction(payer common.Address, nonce uint64, instructions []Instruction, signers ...common.Address) *Transaction {
	all := []common.Address{payer}
	for _, s := range signers {
		dup := false
		for _, have := range all {
			if have == s {
				dup = true
				break
			}
		}
		if !dup {
			all = append(all, s)
		}
	}
	return &Transaction{inner: txdata{
		Payer:        payer,
		Signers:      all,
		Nonce:        nonce,
		Instructions: copyInstructions(instructions),
	}}
}

func copyInstructions(src []Instruction) []Instruction {
	cpy := make([]Instruction, len(src))
	for i, ins := range src {
		cpy[i] = Instruction{
			ProgramID: ins.ProgramID,
			Accounts:  append([]AccountMeta(nil), ins.Accounts...),
			Data:      append(hexutil.Bytes(nil), ins.Data...),
		}
	}
	return cpy
}

// Payer returns the account charged the transaction fee.
func (tx *Transaction) Payer() common.Address { return tx.inner.Payer }

// Nonce returns the payer-chosen value that keeps otherwise equal
// transactions distinct.
func (tx *Transaction) Nonce() uint64 { return tx.inner.Nonce }

// Signers returns a copy of the declared signer set.
func (tx *Transaction) Signers() []common.Address {
	return append([]common.Address(nil), tx.inner.Signers...)
}

// Instructions returns a deep copy of the instruction list.
func (tx *Transaction) Instructions() []Instruction {
	return copyInstructions(tx.inner.Instructions)
}

// IsSigner reports whether addr is in the declared signer set.
func (tx *Transaction) IsSigner(addr common.Address) bool {
	for _, s := range tx.inner.Signers {
		if s == addr {
			return true
		}
	}
	return false
}

// Validate performs stateless sanity checks.
func (tx *Transaction) Validate() error {
	if tx.inner.Payer.IsZero() {
		return ErrNoPayer
	}
	if len(tx.inner.Instructions) == 0 {
		return ErrNoInstructions
	}
	return nil
}

// Hash returns the transaction hash, which doubles as its signature id.
func (tx *Transaction) Hash() common.Hash {
	if hash := tx.hash.Load(); hash != nil {
		return hash.(common.Hash)
	}
	enc, _ := rlp.EncodeToBytes(&tx.inner)
	h := crypto.Keccak256Hash(enc)
	tx.hash.Store(h)
	return h
}

// EncodeRLP implements rlp.Encoder.
func (tx *Transaction) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &tx.inner)
}

// DecodeRLP implements rlp.Decoder.
func (tx *Transaction) DecodeRLP(s *rlp.Stream) error {
	var inner txdata
	if err := s.Decode(&inner); err != nil {
		return err
	}
	tx.inner = inner
	tx.hash = atomic.Value{}
	return nil
}

// txJSON is the JSON representation of transactions.
type txJSON struct {
	Payer        common.Address   `json:"payer"`
	Signers      []common.Address `json:"signers"`
	Nonce        hexutil.Uint64   `json:"nonce"`
	Instructions []Instruction    `json:"instructions"`

	// Only used for encoding.
	Hash common.Hash `json:"hash"`
}

// MarshalJSON marshals as JSON with a hash.
func (tx *Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(&txJSON{
		Payer:        tx.inner.Payer,
		Signers:      tx.inner.Signers,
		Nonce:        hexutil.Uint64(tx.inner.Nonce),
		Instructions: tx.inner.Instructions,
		Hash:         tx.Hash(),
	})
}

// UnmarshalJSON unmarshals from JSON. The payer is forced to be a signer.
func (tx *Transaction) UnmarshalJSON(input []byte) error {
	var dec txJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	fresh := NewTransaction(dec.Payer, uint64(dec.Nonce), dec.Instructions, dec.Signers...)
	tx.inner = fresh.inner
	tx.hash = atomic.Value{}
	return tx.Validate()
}
