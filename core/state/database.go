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
	"sync"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/probechain/go-morph/common"
	"github.com/probechain/go-morph/core/rawdb"
	"github.com/probechain/go-morph/ledgerdb"
)

var (
	cleanHitMeter   = metrics.NewRegisteredMeter("state/clean/hit", nil)
	cleanMissMeter  = metrics.NewRegisteredMeter("state/clean/miss", nil)
	cleanWriteMeter = metrics.NewRegisteredMeter("state/clean/write", nil)
)

// Database wraps access to committed accounts. Reads go through a clean
// cache sitting in front of the key/value store.
type Database interface {
	// ReadAccount returns the committed account at addr, or nil if absent.
	ReadAccount(addr common.Address) (*Account, error)

	// Publish refreshes the clean cache after a batch carrying the given
	// encoded accounts has been persisted.
	Publish(updates map[common.Address][]byte)

	// DiskDB returns the underlying key/value store.
	DiskDB() ledgerdb.KeyValueStore
}

// NewDatabase creates a backing store for state with a default clean cache.
func NewDatabase(db ledgerdb.KeyValueStore) Database {
	return NewDatabaseWithCache(db, 16)
}

// NewDatabaseWithCache creates a backing store for state with a clean cache
// of the given size in megabytes. A zero size disables caching.
func NewDatabaseWithCache(db ledgerdb.KeyValueStore, cache int) Database {
	var cleans *fastcache.Cache
	if cache > 0 {
		cleans = fastcache.New(cache * 1024 * 1024)
	}
	return &cachingDB{disk: db, cleans: cleans}
}

type cachingDB struct {
	disk   ledgerdb.KeyValueStore
	cleans *fastcache.Cache

	// fillLock orders miss fills against Publish. A reader holds it shared
	// from the disk read until its fill lands, so a Publish that follows a
	// batch write always overwrites whatever the reader saw.
	fillLock sync.RWMutex
}

func (db *cachingDB) ReadAccount(addr common.Address) (*Account, error) {
	var enc []byte
	if db.cleans != nil {
		if blob, found := db.cleans.HasGet(nil, addr[:]); found && len(blob) > 0 {
			cleanHitMeter.Mark(1)
			enc = blob
		}
	}
	if enc == nil {
		enc = db.readMiss(addr)
		if len(enc) == 0 {
			return nil, nil
		}
	}
	acct := new(Account)
	if err := rlp.DecodeBytes(enc, acct); err != nil {
		return nil, err
	}
	return acct, nil
}

// readMiss loads addr from disk and fills the clean cache with it.
func (db *cachingDB) readMiss(addr common.Address) []byte {
	if db.cleans == nil {
		return rawdb.ReadAccountRLP(db.disk, addr)
	}
	db.fillLock.RLock()
	defer db.fillLock.RUnlock()

	enc := rawdb.ReadAccountRLP(db.disk, addr)
	if len(enc) > 0 {
		cleanMissMeter.Mark(1)
		db.cleans.Set(addr[:], enc)
	}
	return enc
}

func (db *cachingDB) Publish(updates map[common.Address][]byte) {
	if db.cleans == nil {
		return
	}
	db.fillLock.Lock()
	defer db.fillLock.Unlock()

	for addr, enc := range updates {
		db.cleans.Set(addr[:], enc)
	}
	cleanWriteMeter.Mark(int64(len(updates)))
}

func (db *cachingDB) DiskDB() ledgerdb.KeyValueStore {
	return db.disk
}
