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
	"fmt"

	"github.com/probechain/go-morph/core/state"
	"github.com/probechain/go-morph/core/types"
	"github.com/probechain/go-morph/core/vm"
	"github.com/probechain/go-morph/params"
)

// TransactionFee returns the fee charged for committing tx.
func TransactionFee(tx *types.Transaction) uint64 {
	return params.LamportsPerSignature * uint64(len(tx.Signers()))
}

// validateTransaction checks whether a transaction is admissible against the
// staged state before any instruction runs.
func validateTransaction(statedb *state.StateDB, tx *types.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if n := len(tx.Instructions()); n > params.MaxInstructions {
		return fmt.Errorf("%w: have %d, max %d", ErrTooManyInstructions, n, params.MaxInstructions)
	}
	if n := tx.AsMessage().Len(); n > params.MaxTxAccounts {
		return fmt.Errorf("%w: have %d, max %d", ErrTooManyAccounts, n, params.MaxTxAccounts)
	}
	return chargeable(statedb, tx)
}

func chargeable(statedb *state.StateDB, tx *types.Transaction) error {
	payer := tx.Payer()
	if !statedb.Exist(payer) {
		return fmt.Errorf("%w: %w: payer %s has no account", ErrInsufficientFundsForFee, vm.ErrInsufficientResources, payer)
	}
	if have, want := statedb.GetLamports(payer), TransactionFee(tx); have < want {
		return fmt.Errorf("%w: %w: have %d, want %d", ErrInsufficientFundsForFee, vm.ErrInsufficientResources, have, want)
	}
	return nil
}
