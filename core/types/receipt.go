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

package types

import (
	"github.com/probechain/go-morph/common"
)

const (
	// ReceiptStatusFailed is the status code of a transaction if execution failed.
	ReceiptStatusFailed = uint64(0)

	// ReceiptStatusSuccessful is the status code of a transaction if execution succeeded.
	ReceiptStatusSuccessful = uint64(1)
)

// Receipt represents the results of a transaction. Only successful receipts
// are persisted; failed ones are handed back to the submitter.
type Receipt struct {
	TxHash   common.Hash `json:"transactionHash"`
	Sequence uint64      `json:"sequence"`
	Status   uint64      `json:"status"`
	Fee      uint64      `json:"fee"`
	Logs     []string    `json:"logs"`
	Err      string      `json:"error,omitempty"`
}

// Succeeded reports whether the transaction committed.
func (r *Receipt) Succeeded() bool {
	return r.Status == ReceiptStatusSuccessful
}
