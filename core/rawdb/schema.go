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

// Package rawdb contains a collection of low level database accessors.
package rawdb

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/metrics"
	"github.com/probechain/go-morph/common"
)

// The fields below define the low level database schema prefixing.
var (
	// databaseVersionKey tracks the current database version.
	databaseVersionKey = []byte("DatabaseVersion")

	// lastSequenceKey tracks the sequence number of the latest committed transaction.
	lastSequenceKey = []byte("LastSequence")

	// genesisKey marks a database that has been seeded.
	genesisKey = []byte("Genesis")

	accountPrefix  = []byte("a") // accountPrefix + address -> account RLP
	receiptPrefix  = []byte("r") // receiptPrefix + tx hash -> receipt RLP
	sequencePrefix = []byte("s") // sequencePrefix + num (uint64 big endian) -> tx hash

	accountReadCounter  = metrics.NewRegisteredCounter("rawdb/account/read", nil)
	accountWriteCounter = metrics.NewRegisteredCounter("rawdb/account/write", nil)
	receiptWriteCounter = metrics.NewRegisteredCounter("rawdb/receipt/write", nil)
)

// encodeSequence encodes a sequence number as big endian uint64
func encodeSequence(number uint64) []byte {
	enc := make([]byte, 8)
	binary.BigEndian.PutUint64(enc, number)
	return enc
}

// accountKey = accountPrefix + address
func accountKey(addr common.Address) []byte {
	return append(append([]byte{}, accountPrefix...), addr.Bytes()...)
}

// receiptKey = receiptPrefix + hash
func receiptKey(hash common.Hash) []byte {
	return append(append([]byte{}, receiptPrefix...), hash.Bytes()...)
}

// sequenceKey = sequencePrefix + num (uint64 big endian)
func sequenceKey(number uint64) []byte {
	return append(append([]byte{}, sequencePrefix...), encodeSequence(number)...)
}
