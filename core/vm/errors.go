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
	"errors"
)

// List execution errors
var (
	// Outcomes callers act on.
	ErrAlreadyExists         = errors.New("account already exists")
	ErrAlreadyInitialized    = errors.New("already initialized")
	ErrNotFound              = errors.New("account not found")
	ErrStaleState            = errors.New("stale state")
	ErrDependencyFailure     = errors.New("dependency call failed")
	ErrInsufficientResources = errors.New("insufficient resources")

	// Malformed or unauthorized requests.
	ErrInvalidAccount     = errors.New("invalid account")
	ErrMissingSigner      = errors.New("missing required signature")
	ErrReadonlyAccount    = errors.New("write to read-only account")
	ErrAccountNotDeclared = errors.New("account not declared by instruction")
	ErrIllegalOwner       = errors.New("account not owned by program")
	ErrInvalidInstruction = errors.New("invalid instruction data")
	ErrInvalidSeeds       = errors.New("seeds do not derive the account")
	ErrCallDepth          = errors.New("max cross-program call depth exceeded")
	ErrProgramNotFound    = errors.New("program not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrCounterOverflow    = errors.New("slot counter exhausted")
	ErrInvalidAccountData = errors.New("invalid account data")
)

// ErrorClass tells a caller what to do about a failed transaction.
type ErrorClass int

const (
	// ClassNone is the class of a nil error.
	ClassNone ErrorClass = iota
	// ClassFailed covers errors that will fail again unless the request changes.
	ClassFailed
	// ClassIdempotent means the requested effect is already in place.
	ClassIdempotent
	// ClassRetry means an input was derived from state that has since moved;
	// re-read and resubmit.
	ClassRetry
	// ClassConflict means the target exists and will not be replaced.
	ClassConflict
)

func (c ErrorClass) String() string {
	switch c {
	case ClassNone:
		return "none"
	case ClassIdempotent:
		return "idempotent"
	case ClassRetry:
		return "retry"
	case ClassConflict:
		return "conflict"
	default:
		return "failed"
	}
}

// Classify maps an execution error to the action a caller should take.
// Errors are matched with errors.Is, so a dependency failure carrying one of
// the outcome errors takes that error's class.
func Classify(err error) ErrorClass {
	switch {
	case err == nil:
		return ClassNone
	case errors.Is(err, ErrAlreadyInitialized):
		return ClassIdempotent
	case errors.Is(err, ErrStaleState):
		return ClassRetry
	case errors.Is(err, ErrAlreadyExists):
		return ClassConflict
	default:
		return ClassFailed
	}
}
