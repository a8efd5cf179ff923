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
	"sync"

	mapset "github.com/deckarep/golang-set"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/probechain/go-morph/common"
)

var lockWaitMeter = metrics.NewRegisteredMeter("ledger/locks/wait", nil)

// accountLocks serializes transactions over the accounts they declare.
// Writable accounts are held exclusively, read-only ones shared. A
// transaction takes all of its locks at once or none, so there is no lock
// ordering to get wrong.
type accountLocks struct {
	mu      sync.Mutex
	cond    *sync.Cond
	writers mapset.Set
	readers map[common.Address]int
}

func newAccountLocks() *accountLocks {
	l := &accountLocks{
		writers: mapset.NewThreadUnsafeSet(),
		readers: make(map[common.Address]int),
	}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// available reports whether the requested locks are free. Callers hold mu.
func (l *accountLocks) available(writable, readonly []common.Address) bool {
	for _, addr := range writable {
		if l.writers.Contains(addr) || l.readers[addr] > 0 {
			return false
		}
	}
	for _, addr := range readonly {
		if l.writers.Contains(addr) {
			return false
		}
	}
	return true
}

// lock blocks until all requested locks are granted or ctx is done.
func (l *accountLocks) lock(ctx context.Context, writable, readonly []common.Address) error {
	stop := context.AfterFunc(ctx, func() {
		l.mu.Lock()
		l.cond.Broadcast()
		l.mu.Unlock()
	})
	defer stop()

	l.mu.Lock()
	defer l.mu.Unlock()

	for !l.available(writable, readonly) {
		if err := ctx.Err(); err != nil {
			return err
		}
		lockWaitMeter.Mark(1)
		l.cond.Wait()
	}
	for _, addr := range writable {
		l.writers.Add(addr)
	}
	for _, addr := range readonly {
		l.readers[addr]++
	}
	return nil
}

// unlock releases locks taken by a successful lock call.
func (l *accountLocks) unlock(writable, readonly []common.Address) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, addr := range writable {
		l.writers.Remove(addr)
	}
	for _, addr := range readonly {
		if l.readers[addr]--; l.readers[addr] <= 0 {
			delete(l.readers, addr)
		}
	}
	l.cond.Broadcast()
}
