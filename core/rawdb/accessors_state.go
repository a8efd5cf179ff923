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
	"github.com/ethereum/go-ethereum/log"
	"github.com/probechain/go-morph/common"
	"github.com/probechain/go-morph/ledgerdb"
)

// ReadAccountRLP retrieves the encoded account stored at addr.
func ReadAccountRLP(db ledgerdb.KeyValueReader, addr common.Address) []byte {
	data, _ := db.Get(accountKey(addr))
	accountReadCounter.Inc(1)
	return data
}

// HasAccount checks whether an account is stored at addr.
func HasAccount(db ledgerdb.KeyValueReader, addr common.Address) bool {
	ok, _ := db.Has(accountKey(addr))
	return ok
}

// WriteAccountRLP stores an encoded account.
func WriteAccountRLP(db ledgerdb.KeyValueWriter, addr common.Address, enc []byte) {
	if err := db.Put(accountKey(addr), enc); err != nil {
		log.Crit("Failed to store account", "err", err)
	}
	accountWriteCounter.Inc(1)
}

// DeleteAccount removes the account stored at addr.
func DeleteAccount(db ledgerdb.KeyValueWriter, addr common.Address) {
	if err := db.Delete(accountKey(addr)); err != nil {
		log.Crit("Failed to delete account", "err", err)
	}
}

// IterateAccounts calls fn for every stored account in address order until
// fn returns false.
func IterateAccounts(db ledgerdb.Iteratee, fn func(addr common.Address, enc []byte) bool) error {
	it := db.NewIterator(accountPrefix, nil)
	defer it.Release()

	for it.Next() {
		key := it.Key()
		if len(key) != len(accountPrefix)+common.AddressLength {
			continue
		}
		if !fn(common.BytesToAddress(key[len(accountPrefix):]), it.Value()) {
			break
		}
	}
	return it.Error()
}
