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

package rawdb

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/probechain/go-morph/common"
	"github.com/probechain/go-morph/core/types"
	"github.com/probechain/go-morph/ledgerdb/leveldb"
)

func TestAccountStorage(t *testing.T) {
	db := leveldb.NewMemory()
	defer db.Close()

	a := common.BytesToAddress([]byte{1})
	b := common.BytesToAddress([]byte{2})
	if HasAccount(db, a) {
		t.Fatal("account present in empty database")
	}
	WriteAccountRLP(db, a, []byte{0xc1, 0x01})
	WriteAccountRLP(db, b, []byte{0xc1, 0x02})
	if enc := ReadAccountRLP(db, a); len(enc) != 2 || enc[1] != 0x01 {
		t.Fatalf("account mismatch: %x", enc)
	}
	var seen []common.Address
	if err := IterateAccounts(db, func(addr common.Address, _ []byte) bool {
		seen = append(seen, addr)
		return true
	}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]common.Address{a, b}, seen); diff != "" {
		t.Fatalf("iteration mismatch (-want +got):\n%s", diff)
	}
	DeleteAccount(db, a)
	if HasAccount(db, a) {
		t.Fatal("deleted account still present")
	}
}

func TestReceiptStorage(t *testing.T) {
	db := leveldb.NewMemory()
	defer db.Close()

	receipt := &types.Receipt{
		TxHash:   common.BytesToHash([]byte{0xde, 0xad}),
		Sequence: 42,
		Status:   types.ReceiptStatusSuccessful,
		Fee:      5000,
		Logs:     []string{"Program log: hello"},
	}
	if ReadReceipt(db, receipt.TxHash) != nil {
		t.Fatal("receipt present in empty database")
	}
	WriteReceipt(db, receipt)
	if diff := cmp.Diff(receipt, ReadReceipt(db, receipt.TxHash)); diff != "" {
		t.Fatalf("receipt mismatch (-want +got):\n%s", diff)
	}
	if hash := ReadTxHashBySequence(db, 42); hash == nil || *hash != receipt.TxHash {
		t.Fatalf("sequence index mismatch: %v", hash)
	}
}

func TestSequenceAndVersion(t *testing.T) {
	db := leveldb.NewMemory()
	defer db.Close()

	if n := ReadLastSequence(db); n != 0 {
		t.Fatalf("fresh sequence %d", n)
	}
	WriteLastSequence(db, 9)
	if n := ReadLastSequence(db); n != 9 {
		t.Fatalf("sequence mismatch: %d", n)
	}
	if ReadDatabaseVersion(db) != nil {
		t.Fatal("fresh database has a version")
	}
	WriteDatabaseVersion(db, 1)
	if v := ReadDatabaseVersion(db); v == nil || *v != 1 {
		t.Fatalf("version mismatch: %v", v)
	}
	if _, ok := ReadGenesisHash(db); ok {
		t.Fatal("fresh database is seeded")
	}
}
