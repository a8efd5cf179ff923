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

// Package morphconfig contains the configuration of the morph ledger node.
package morphconfig

import (
	"bytes"

	"github.com/probechain/go-morph/common"
)

// FundedAccount is a wallet credited at genesis.
type FundedAccount struct {
	Address  common.Address
	Lamports uint64
}

// Defaults contains default settings for use on the morph ledger.
var Defaults = Config{
	DatabaseCache:   64,
	DatabaseHandles: 256,
	StateCache:      16,
	Responder:       DevResponder,
}

// DevResponder is the all-ones key, the default responder of development
// ledgers.
var DevResponder = common.BytesToAddress(bytes.Repeat([]byte{0x01}, common.AddressLength))

// Config contains configuration options for the morph ledger node.
type Config struct {
	// DataDir holds the ledger database. An empty directory runs the ledger
	// in memory.
	DataDir string `toml:",omitempty"`

	// Database options
	DatabaseCache   int
	DatabaseHandles int `toml:"-"`

	// StateCache is the clean account cache in megabytes, zero disables it.
	StateCache int

	// Parallelism bounds concurrent batch execution, zero means GOMAXPROCS.
	Parallelism int `toml:",omitempty"`

	// Responder is the only key the oracle accepts responses from.
	Responder common.Address

	// Funded wallets at genesis. Changing it on a seeded database is an error.
	Funded []FundedAccount `toml:",omitempty"`
}
