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
	"github.com/probechain/go-morph/core/types"
)

// ErrorData is the data member of a failed call's JSON-RPC error.
type ErrorData struct {
	Codes   []string       `json:"codes,omitempty"`
	Receipt *types.Receipt `json:"receipt,omitempty"`
}

// ErrorResponse is the body of requests refused before they reach the
// JSON-RPC handler.
type ErrorResponse struct {
	Error     string   `json:"error"`
	Codes     []string `json:"codes,omitempty"`
	RequestID string   `json:"requestId,omitempty"`
}
