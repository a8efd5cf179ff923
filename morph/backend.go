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

// Package morph implements the morph ledger node: storage, genesis and the
// deployed programs behind a single service object.
package morph

import (
	"fmt"
	"path/filepath"

	"github.com/ethereum/go-ethereum/log"
	"github.com/probechain/go-morph/common"
	"github.com/probechain/go-morph/core"
	"github.com/probechain/go-morph/core/rawdb"
	"github.com/probechain/go-morph/ledgerdb"
	"github.com/probechain/go-morph/ledgerdb/leveldb"
	"github.com/probechain/go-morph/morph/morphconfig"
	"github.com/probechain/go-morph/params"
	ledger "github.com/probechain/go-morph/programs/morph"
)

// LedgerVersion is the highest database schema version this node can open.
const LedgerVersion = 1

// Morph implements the morph ledger service.
type Morph struct {
	config *morphconfig.Config

	db          ledgerdb.KeyValueStore
	ledger      *core.Ledger
	genesisHash common.Hash

	APIBackend *PublicLedgerAPI
}

// New creates a morph node, seeding the database on first start.
func New(config *morphconfig.Config) (*Morph, error) {
	if config.DatabaseCache < 16 {
		log.Warn("Sanitizing database cache", "provided", config.DatabaseCache, "updated", 16)
		config.DatabaseCache = 16
	}
	if config.DatabaseHandles < 16 {
		config.DatabaseHandles = morphconfig.Defaults.DatabaseHandles
	}
	if config.Responder.IsZero() {
		log.Warn("No oracle responder configured, using the development key", "responder", morphconfig.DevResponder)
		config.Responder = morphconfig.DevResponder
	}
	db, err := openDatabase(config)
	if err != nil {
		return nil, err
	}
	if version := rawdb.ReadDatabaseVersion(db); version != nil && *version > LedgerVersion {
		db.Close()
		return nil, fmt.Errorf("database version is v%d, morph %s only supports v%d", *version, params.VersionWithMeta, LedgerVersion)
	}
	genesisHash, err := core.SetupGenesis(db, Genesis(config))
	if err != nil {
		db.Close()
		return nil, err
	}
	l, err := core.NewLedger(db, core.Config{
		StateCache:  config.StateCache,
		Parallelism: config.Parallelism,
	}, ledger.Registry())
	if err != nil {
		db.Close()
		return nil, err
	}
	m := &Morph{
		config:      config,
		db:          db,
		ledger:      l,
		genesisHash: genesisHash,
	}
	m.APIBackend = NewPublicLedgerAPI(m)
	log.Info("Initialised morph ledger", "genesis", genesisHash, "sequence", l.Sequence(), "responder", config.Responder)
	return m, nil
}

func openDatabase(config *morphconfig.Config) (ledgerdb.KeyValueStore, error) {
	if config.DataDir == "" {
		log.Info("Using in-memory ledger database")
		return leveldb.NewMemory(), nil
	}
	return leveldb.New(filepath.Join(config.DataDir, "ledgerdata"), config.DatabaseCache, config.DatabaseHandles, false)
}

// Genesis returns the allocation a node with config is seeded with.
func Genesis(config *morphconfig.Config) *core.Genesis {
	funded := make(core.GenesisAlloc, len(config.Funded))
	for _, f := range config.Funded {
		funded[f.Address] = core.GenesisAccount{Owner: params.SystemProgramID, Lamports: f.Lamports}
	}
	return ledger.DefaultGenesis(config.Responder, funded)
}

// Ledger returns the transaction executor.
func (m *Morph) Ledger() *core.Ledger { return m.ledger }

// GenesisHash returns the hash of the seeded allocation.
func (m *Morph) GenesisHash() common.Hash { return m.genesisHash }

// Config returns the effective configuration.
func (m *Morph) Config() *morphconfig.Config { return m.config }

// Close stops the ledger and releases the database.
func (m *Morph) Close() error {
	m.ledger.Close()
	return m.db.Close()
}
