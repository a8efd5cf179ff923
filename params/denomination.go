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

// These are the multipliers for lamport denominations.
// Example: To get the lamport value of an amount in 'sol', use
//
//	value * params.LamportsPerSol
const (
	Lamport        uint64 = 1
	LamportsPerSol uint64 = 1_000_000_000
)

// M0RPH token metadata.
const (
	TokenName     = "M0RPH"
	TokenSymbol   = "M0RPH"
	TokenDecimals = 5
	TokenURI      = "https://shdw-drive.genesysgo.net/4PMP1MG5vYGkT7gnAMb7E5kqPLLjjDzTiAaZ3xRx5Czd/m0rph.json"
)
