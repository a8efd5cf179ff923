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

const (
	// LamportsPerSignature is the fee charged per declared signer of a
	// committed transaction.
	LamportsPerSignature uint64 = 5000

	// Rent parameters. An account is rent exempt when it holds at least
	// (AccountStorageOverhead + len(data)) * LamportsPerByteYear * ExemptionYears.
	AccountStorageOverhead uint64 = 128
	LamportsPerByteYear    uint64 = 3480
	ExemptionYears         uint64 = 2

	MaxAccountDataLen = 10 * 1024 * 1024 // Upper bound on a single account's data
	MaxInvokeDepth    = 4                // Nested cross-program calls allowed below the top level
	MaxTxAccounts     = 64               // Distinct accounts one transaction may declare
	MaxInstructions   = 16               // Instructions per transaction
)
