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
	"sort"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/probechain/go-morph/common"
	"github.com/probechain/go-morph/core/rawdb"
	"github.com/probechain/go-morph/core/state"
	"github.com/probechain/go-morph/crypto"
	"github.com/probechain/go-morph/ledgerdb"
)

// databaseVersion is the schema version written alongside the genesis marker.
const databaseVersion = 1

// GenesisAccount is an account in the state of the genesis ledger.
type GenesisAccount struct {
	Lamports   uint64         `json:"lamports" toml:",omitempty"`
	Owner      common.Address `json:"owner"`
	Executable bool           `json:"executable,omitempty" toml:",omitempty"`
	Data       hexutil.Bytes  `json:"data,omitempty" toml:",omitempty"`
}

// GenesisAlloc specifies the initial state of the ledger.
type GenesisAlloc map[common.Address]GenesisAccount

// Genesis specifies the accounts a fresh ledger is seeded with.
type Genesis struct {
	Alloc GenesisAlloc `json:"alloc"`
}

type genesisEntry struct {
	Address common.Address
	Account GenesisAccount
}

func (g *Genesis) sorted() []genesisEntry {
	entries := make([]genesisEntry, 0, len(g.Alloc))
	for addr, acct := range g.Alloc {
		entries = append(entries, genesisEntry{addr, acct})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Address.Cmp(entries[j].Address) < 0 })
	return entries
}

// Hash identifies the allocation.
func (g *Genesis) Hash() common.Hash {
	enc, err := rlp.EncodeToBytes(g.sorted())
	if err != nil {
		panic(err)
	}
	return crypto.Keccak256Hash(enc)
}

// SetupGenesis seeds db with genesis if it is empty. A seeded database is
// left alone, but must have been seeded with the same allocation when one is
// given.
func SetupGenesis(db ledgerdb.KeyValueStore, genesis *Genesis) (common.Hash, error) {
	if stored, ok := rawdb.ReadGenesisHash(db); ok {
		if genesis != nil && genesis.Hash() != stored {
			return stored, ErrGenesisMismatch
		}
		return stored, nil
	}
	if genesis == nil {
		genesis = &Genesis{Alloc: GenesisAlloc{}}
	}
	statedb := state.New(state.NewDatabaseWithCache(db, 0))
	for _, entry := range genesis.sorted() {
		acct := entry.Account
		statedb.CreateAccount(entry.Address, acct.Owner, acct.Lamports, len(acct.Data), acct.Executable)
		if len(acct.Data) > 0 {
			statedb.SetData(entry.Address, acct.Data)
		}
	}
	batch := db.NewBatch()
	if _, err := statedb.Commit(batch); err != nil {
		return common.Hash{}, err
	}
	hash := genesis.Hash()
	rawdb.WriteGenesisHash(batch, hash)
	rawdb.WriteDatabaseVersion(batch, databaseVersion)
	if err := batch.Write(); err != nil {
		return common.Hash{}, err
	}
	log.Info("Wrote genesis state", "hash", hash, "accounts", len(genesis.Alloc))
	return hash, nil
}
