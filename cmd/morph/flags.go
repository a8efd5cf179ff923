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

package main

import (
	"gopkg.in/urfave/cli.v1"
)

var (
	// General settings
	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "datadir",
		Usage: "Data directory for the ledger database (empty runs in memory)",
	}
	rpcFlag = cli.StringFlag{
		Name:  "rpc",
		Usage: "Talk to a remote node at this URL instead of opening the local database",
	}
	responderFlag = cli.StringFlag{
		Name:  "responder",
		Usage: "Base58 key the oracle accepts responses from",
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Usage: "Megabytes of memory allocated to the database",
	}
	parallelismFlag = cli.IntFlag{
		Name:  "parallelism",
		Usage: "Concurrent transaction limit for batches (0 = GOMAXPROCS)",
	}

	// Logging
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value: 3,
	}
	vmoduleFlag = cli.StringFlag{
		Name:  "vmodule",
		Usage: "Per-module verbosity: comma-separated list of <pattern>=<level> (e.g. core/*=5)",
	}
	logJSONFlag = cli.BoolFlag{
		Name:  "log.json",
		Usage: "Format logs with JSON",
	}

	// Transaction settings
	walletFlag = cli.StringFlag{
		Name:  "wallet",
		Usage: "Base58 key of the paying and signing wallet",
	}
	retriesFlag = cli.IntFlag{
		Name:  "retries",
		Usage: "Maximum agent allocation attempts",
		Value: 16,
	}
	lamportsFlag = cli.Uint64Flag{
		Name:  "lamports",
		Usage: "Amount of lamports to credit",
	}

	// HTTP server
	httpAddrFlag = cli.StringFlag{
		Name:  "http.addr",
		Usage: "HTTP server listening address",
	}
	httpCorsFlag = cli.StringFlag{
		Name:  "http.corsdomain",
		Usage: "Comma separated list of domains from which to accept cross origin requests",
	}
	httpRateFlag = cli.Float64Flag{
		Name:  "http.ratelimit",
		Usage: "Requests per second allowed per client address (0 = unlimited)",
	}
	httpProxiesFlag = cli.StringFlag{
		Name:  "http.trustedproxies",
		Usage: "Comma separated addresses or CIDR ranges of proxies whose X-Forwarded-For header is honoured",
	}
	faucetFlag = cli.BoolFlag{
		Name:  "faucet",
		Usage: "Enable the development airdrop method",
	}
	respondFlag = cli.BoolFlag{
		Name:  "respond",
		Usage: "Answer interactions submitted over JSON-RPC as the configured responder",
	}
)

var (
	nodeFlags = []cli.Flag{
		configFileFlag,
		dataDirFlag,
		responderFlag,
		cacheFlag,
		parallelismFlag,
	}
	logFlags = []cli.Flag{
		verbosityFlag,
		vmoduleFlag,
		logJSONFlag,
	}
	httpFlags = []cli.Flag{
		httpAddrFlag,
		httpCorsFlag,
		httpRateFlag,
		httpProxiesFlag,
		faucetFlag,
		respondFlag,
	}
)
