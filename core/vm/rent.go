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

package vm

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/probechain/go-morph/params"
)

// MinimumBalance returns the lamports an account of the given data size must
// hold to be rent exempt.
func MinimumBalance(space int) (uint64, error) {
	if space < 0 || space > params.MaxAccountDataLen {
		return 0, fmt.Errorf("%w: account size %d", ErrInsufficientResources, space)
	}
	bal := uint256.NewInt(params.AccountStorageOverhead + uint64(space))
	bal.Mul(bal, uint256.NewInt(params.LamportsPerByteYear))
	bal.Mul(bal, uint256.NewInt(params.ExemptionYears))
	if !bal.IsUint64() {
		return 0, fmt.Errorf("%w: rent overflow", ErrInsufficientResources)
	}
	return bal.Uint64(), nil
}

// Debit subtracts amount from balance, failing when funds are short.
func Debit(balance, amount uint64) (uint64, error) {
	have, want := uint256.NewInt(balance), uint256.NewInt(amount)
	if have.Lt(want) {
		return 0, fmt.Errorf("%w: have %d lamports, need %d", ErrInsufficientResources, balance, amount)
	}
	return have.Sub(have, want).Uint64(), nil
}

// Credit adds amount to balance, failing on overflow.
func Credit(balance, amount uint64) (uint64, error) {
	sum := uint256.NewInt(balance)
	sum.Add(sum, uint256.NewInt(amount))
	if !sum.IsUint64() {
		return 0, fmt.Errorf("%w: balance overflow", ErrInsufficientResources)
	}
	return sum.Uint64(), nil
}
