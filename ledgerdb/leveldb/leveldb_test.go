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

package leveldb

import (
	"bytes"
	"testing"

	"github.com/probechain/go-morph/ledgerdb"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

func newTestDatabase(t *testing.T) ledgerdb.KeyValueStore {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		t.Fatal(err)
	}
	return &Database{db: db}
}

func TestLevelDBKeyValue(t *testing.T) {
	db := newTestDatabase(t)
	defer db.Close()

	if ok, _ := db.Has([]byte("a")); ok {
		t.Fatal("empty database reports key")
	}
	if err := db.Put([]byte("a"), []byte("1")); err != nil {
		t.Fatal(err)
	}
	v, err := db.Get([]byte("a"))
	if err != nil || !bytes.Equal(v, []byte("1")) {
		t.Fatalf("get mismatch: %q %v", v, err)
	}
	if err := db.Delete([]byte("a")); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Get([]byte("a")); err == nil {
		t.Fatal("deleted key still readable")
	}
}

func TestLevelDBBatch(t *testing.T) {
	db := newTestDatabase(t)
	defer db.Close()

	b := db.NewBatch()
	b.Put([]byte("k1"), []byte("v1"))
	b.Put([]byte("k2"), []byte("v2"))
	if b.ValueSize() != 8 {
		t.Fatalf("value size mismatch: have %d want 8", b.ValueSize())
	}
	if ok, _ := db.Has([]byte("k1")); ok {
		t.Fatal("batch leaked before write")
	}
	if err := b.Write(); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"k1", "k2"} {
		if ok, _ := db.Has([]byte(k)); !ok {
			t.Fatalf("key %s missing after write", k)
		}
	}
	b.Reset()
	if b.ValueSize() != 0 {
		t.Fatal("reset did not clear size")
	}
}

func TestLevelDBIterator(t *testing.T) {
	db := newTestDatabase(t)
	defer db.Close()

	for _, k := range []string{"a1", "a2", "a3", "b1"} {
		db.Put([]byte(k), []byte(k))
	}
	it := db.NewIterator([]byte("a"), []byte("2"))
	defer it.Release()

	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	if err := it.Error(); err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 || keys[0] != "a2" || keys[1] != "a3" {
		t.Fatalf("iteration mismatch: %v", keys)
	}
}

func TestNewMemoryClose(t *testing.T) {
	db := NewMemory()
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
