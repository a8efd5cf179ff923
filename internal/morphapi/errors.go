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
	"context"
	"errors"
	"fmt"

	"github.com/probechain/go-morph/core"
	"github.com/probechain/go-morph/core/types"
	"github.com/probechain/go-morph/core/vm"
	"github.com/probechain/go-morph/programs/oracle"
)

// Error codes carried in the data of failed calls. A failure lists every
// code its error matches, so clients can rebuild errors that errors.Is
// understands.
const (
	CodeAlreadyExists         = "already_exists"
	CodeAlreadyInitialized    = "already_initialized"
	CodeNotFound              = "not_found"
	CodeStaleState            = "stale_state"
	CodeDependencyFailure     = "dependency_failure"
	CodeInsufficientResources = "insufficient_resources"
	CodeAlreadyResponded      = "already_responded"
	CodeAlreadyKnown          = "already_known"
	CodeUnavailable           = "unavailable"
	CodeInvalidRequest        = "invalid_request"
	CodeForbidden             = "forbidden"
	CodeRateLimited           = "rate_limited"
	CodeFailed                = "failed"
)

// JSON-RPC error codes of failed calls.
const (
	ErrCodeFailed        = -32000
	ErrCodeNotFound      = -32001
	ErrCodeConflict      = -32002
	ErrCodeUnavailable   = -32003
	ErrCodeTimeout       = -32004
	ErrCodeForbidden     = -32005
	ErrCodeInvalidParams = -32602
)

type codedError struct {
	code    string
	err     error
	rpcCode int
}

// Ordered by precedence: the first match picks the JSON-RPC code.
var codedErrors = []codedError{
	{CodeStaleState, vm.ErrStaleState, ErrCodeConflict},
	{CodeAlreadyInitialized, vm.ErrAlreadyInitialized, ErrCodeConflict},
	{CodeAlreadyExists, vm.ErrAlreadyExists, ErrCodeConflict},
	{CodeAlreadyKnown, core.ErrAlreadyKnown, ErrCodeConflict},
	{CodeAlreadyResponded, oracle.ErrAlreadyResponded, ErrCodeConflict},
	{CodeDependencyFailure, vm.ErrDependencyFailure, ErrCodeFailed},
	{CodeInsufficientResources, vm.ErrInsufficientResources, ErrCodeFailed},
	{CodeNotFound, vm.ErrNotFound, ErrCodeNotFound},
	{CodeUnavailable, core.ErrLedgerClosed, ErrCodeUnavailable},
}

// ErrorCodes returns the codes err matches together with the JSON-RPC code
// of the most specific one.
func ErrorCodes(err error) ([]string, int) {
	var (
		codes   []string
		rpcCode int
	)
	for _, c := range codedErrors {
		if errors.Is(err, c.err) {
			codes = append(codes, c.code)
			if rpcCode == 0 {
				rpcCode = c.rpcCode
			}
		}
	}
	switch {
	case rpcCode != 0:
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		rpcCode = ErrCodeTimeout
	default:
		rpcCode = ErrCodeFailed
	}
	if len(codes) == 0 {
		codes = []string{CodeFailed}
	}
	return codes, rpcCode
}

// CodeError returns the sentinel error behind code, or nil for codes that
// have none.
func CodeError(code string) error {
	for _, c := range codedErrors {
		if c.code == code {
			return c.err
		}
	}
	return nil
}

// Error is the error of a failed call. It satisfies rpc.Error and
// rpc.DataError, so the server sends its code and data to the caller.
type Error struct {
	err  error
	code int
	data *ErrorData
}

func (e *Error) Error() string          { return e.err.Error() }
func (e *Error) ErrorCode() int         { return e.code }
func (e *Error) ErrorData() interface{} { return e.data }
func (e *Error) Unwrap() error          { return e.err }

// wrapError attaches codes to a ledger error, plus the receipt of a failed
// transaction when there is one.
func wrapError(err error, receipt *types.Receipt) error {
	if err == nil {
		return nil
	}
	codes, code := ErrorCodes(err)
	return &Error{err: err, code: code, data: &ErrorData{Codes: codes, Receipt: receipt}}
}

func invalidParams(format string, args ...interface{}) error {
	return &Error{
		err:  fmt.Errorf(format, args...),
		code: ErrCodeInvalidParams,
		data: &ErrorData{Codes: []string{CodeInvalidRequest}},
	}
}

func forbidden(what string) error {
	return &Error{
		err:  fmt.Errorf("%s disabled", what),
		code: ErrCodeForbidden,
		data: &ErrorData{Codes: []string{CodeForbidden}},
	}
}
