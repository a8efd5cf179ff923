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

package morphapi

import (
	"github.com/probechain/go-morph/params"
)

// Config are the settings of the HTTP surface.
type Config struct {
	// Addr is the listening address.
	Addr string

	// CorsOrigins are the origins allowed to call the API from a browser.
	CorsOrigins []string `toml:",omitempty"`

	// RateLimit is the sustained request rate allowed per client address,
	// zero disables limiting. RateBurst is the bucket size.
	RateLimit float64
	RateBurst int

	// TrustedProxies are the addresses or CIDR ranges of reverse proxies
	// whose X-Forwarded-For header identifies the client. Requests from
	// anywhere else are limited by their peer address.
	TrustedProxies []string `toml:",omitempty"`

	// Airdrop enables the development faucet, crediting at most AirdropMax
	// lamports per request.
	Airdrop    bool   `toml:",omitempty"`
	AirdropMax uint64 `toml:",omitempty"`

	// Respond lets the node answer interactions as the configured responder.
	Respond bool `toml:",omitempty"`
}

// DefaultConfig contains the default HTTP settings.
var DefaultConfig = Config{
	Addr:        "localhost:8899",
	CorsOrigins: []string{"*"},
	RateLimit:   20,
	RateBurst:   40,
	AirdropMax:  10 * params.LamportsPerSol,
}

// maxVisitors bounds the number of client addresses with a tracked limiter.
const maxVisitors = 4096
