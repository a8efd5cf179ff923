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
	"github.com/ethereum/go-ethereum/log"
	"github.com/probechain/go-morph/core/state"
	"github.com/probechain/go-morph/core/types"
	"github.com/probechain/go-morph/core/vm"
	"github.com/status-im/keycard-go/hexutils"
)

// ApplyTransaction runs every instruction of tx against statedb and charges
// the fee. On error the overlay holds partial changes and must be dropped;
// nothing has reached the store.
func ApplyTransaction(registry *vm.Registry, statedb *state.StateDB, tx *types.Transaction) (uint64, error) {
	if err := validateTransaction(statedb, tx); err != nil {
		return 0, err
	}
	env := vm.NewEnv(statedb, registry, tx)
	for i, ins := range tx.Instructions() {
		log.Trace("Running instruction", "index", i, "program", ins.ProgramID, "data", hexutils.BytesToHex(ins.Data))
		if err := env.Run(ins); err != nil {
			return 0, &InstructionError{Index: i, Program: ins.ProgramID, Err: err}
		}
	}
	// Instructions may have spent the payer's lamports on rent.
	if err := chargeable(statedb, tx); err != nil {
		return 0, err
	}
	fee := TransactionFee(tx)
	left, err := vm.Debit(statedb.GetLamports(tx.Payer()), fee)
	if err != nil {
		return 0, err
	}
	statedb.SetLamports(tx.Payer(), left)
	return fee, nil
}
