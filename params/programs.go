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

package params

import "github.com/probechain/go-morph/common"

var (
	// SystemProgramID owns every wallet account and pays for account creation.
	SystemProgramID = common.Address{}

	// MorphProgramID is the ledger program holding agents, the slot counter
	// and the token mint.
	MorphProgramID = common.MustBase58ToAddress("morpn5gHTNsUivctAeGCEG9VBFqxoRpdDgmAfNQH3DM")

	// OracleProgramID is the external program owning contexts and interactions.
	OracleProgramID = common.MustBase58ToAddress("LLMrieZMpbJFwN52WgmBNMxYojrpRVYXdC1RCweEbab")
)
