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
	"errors"
	"fmt"

	"github.com/probechain/go-morph/common"
)

var (
	// ErrLedgerClosed is returned when submitting to a ledger that has shut down.
	ErrLedgerClosed = errors.New("ledger closed")

	// ErrAlreadyKnown is returned if a transaction with the same hash has
	// already been committed.
	ErrAlreadyKnown = errors.New("transaction already processed")

	// ErrTooManyAccounts is returned if a transaction declares more accounts
	// than the execution environment locks at once.
	ErrTooManyAccounts = errors.New("too many accounts")

	// ErrTooManyInstructions is returned if a transaction carries more
	// instructions than allowed.
	ErrTooManyInstructions = errors.New("too many instructions")

	// ErrInsufficientFundsForFee is returned if the payer cannot cover the
	// signature fee.
	ErrInsufficientFundsForFee = errors.New("insufficient funds for fee")

	// ErrGenesisMismatch is returned when a seeded database was seeded with a
	// different allocation.
	ErrGenesisMismatch = errors.New("database contains incompatible genesis")
)

// InstructionError locates the failing instruction of a transaction.
type InstructionError struct {
	Index   int
	Program common.Address
	Err     error
}

func (e *InstructionError) Error() string {
	return fmt.Sprintf("instruction %d (program %s): %v", e.Index, e.Program, e.Err)
}

func (e *InstructionError) Unwrap() error {
	return e.Err
}
