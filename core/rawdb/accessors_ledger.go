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
	"encoding/binary"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/probechain/go-morph/common"
	"github.com/probechain/go-morph/core/types"
	"github.com/probechain/go-morph/ledgerdb"
)

// ReadDatabaseVersion retrieves the version number of the database.
func ReadDatabaseVersion(db ledgerdb.KeyValueReader) *uint64 {
	enc, _ := db.Get(databaseVersionKey)
	if len(enc) != 8 {
		return nil
	}
	version := binary.BigEndian.Uint64(enc)
	return &version
}

// WriteDatabaseVersion stores the version number of the database
func WriteDatabaseVersion(db ledgerdb.KeyValueWriter, version uint64) {
	if err := db.Put(databaseVersionKey, encodeSequence(version)); err != nil {
		log.Crit("Failed to store the database version", "err", err)
	}
}

// ReadGenesisHash retrieves the hash of the genesis allocation, if seeded.
func ReadGenesisHash(db ledgerdb.KeyValueReader) (common.Hash, bool) {
	data, _ := db.Get(genesisKey)
	if len(data) != common.HashLength {
		return common.Hash{}, false
	}
	return common.BytesToHash(data), true
}

// WriteGenesisHash marks the database as seeded with the given genesis.
func WriteGenesisHash(db ledgerdb.KeyValueWriter, hash common.Hash) {
	if err := db.Put(genesisKey, hash.Bytes()); err != nil {
		log.Crit("Failed to store genesis marker", "err", err)
	}
}

// ReadLastSequence retrieves the sequence number of the latest committed
// transaction. Zero means nothing has been committed.
func ReadLastSequence(db ledgerdb.KeyValueReader) uint64 {
	data, _ := db.Get(lastSequenceKey)
	if len(data) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(data)
}

// WriteLastSequence stores the sequence number of the latest committed transaction.
func WriteLastSequence(db ledgerdb.KeyValueWriter, number uint64) {
	if err := db.Put(lastSequenceKey, encodeSequence(number)); err != nil {
		log.Crit("Failed to store last sequence", "err", err)
	}
}

// ReadReceipt retrieves the receipt of a committed transaction.
func ReadReceipt(db ledgerdb.KeyValueReader, hash common.Hash) *types.Receipt {
	data, _ := db.Get(receiptKey(hash))
	if len(data) == 0 {
		return nil
	}
	receipt := new(types.Receipt)
	if err := rlp.DecodeBytes(data, receipt); err != nil {
		log.Error("Invalid receipt RLP", "hash", hash, "err", err)
		return nil
	}
	return receipt
}

// WriteReceipt stores a receipt together with its sequence index entry.
func WriteReceipt(db ledgerdb.KeyValueWriter, receipt *types.Receipt) {
	data, err := rlp.EncodeToBytes(receipt)
	if err != nil {
		log.Crit("Failed to encode receipt", "err", err)
	}
	if err := db.Put(receiptKey(receipt.TxHash), data); err != nil {
		log.Crit("Failed to store receipt", "err", err)
	}
	if err := db.Put(sequenceKey(receipt.Sequence), receipt.TxHash.Bytes()); err != nil {
		log.Crit("Failed to store sequence index", "err", err)
	}
	receiptWriteCounter.Inc(1)
}

// ReadTxHashBySequence retrieves the hash of the transaction committed at number.
func ReadTxHashBySequence(db ledgerdb.KeyValueReader, number uint64) *common.Hash {
	data, _ := db.Get(sequenceKey(number))
	if len(data) != common.HashLength {
		return nil
	}
	hash := common.BytesToHash(data)
	return &hash
}
