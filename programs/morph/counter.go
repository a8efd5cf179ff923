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

package morph

import (
	"fmt"
	"math"

	"github.com/probechain/go-morph/common"
	"github.com/probechain/go-morph/core/state"
	"github.com/probechain/go-morph/core/vm"
	"github.com/probechain/go-morph/params"
)

// AccountReader reads committed accounts. A missing account reads as nil.
type AccountReader interface {
	Account(addr common.Address) (*state.Account, error)
}

// loadCounter reads the slot counter, which must be passed at its derived
// address.
func (p *Program) loadCounter(ctx *vm.Context, addr common.Address) (*Counter, error) {
	if want, _ := CounterAddress(); addr != want {
		return nil, fmt.Errorf("%w: counter %s", vm.ErrInvalidAccount, addr)
	}
	data, err := ctx.OwnedData(addr, p.ID())
	if err != nil {
		return nil, err
	}
	return DecodeCounter(data)
}

// advance consumes the current slot.
func (c *Counter) advance() error {
	if c.Count == math.MaxUint32 {
		return fmt.Errorf("%w: %w", vm.ErrInsufficientResources, vm.ErrCounterOverflow)
	}
	c.Count++
	return nil
}

// ReadCounter returns the next slot to be allocated.
func ReadCounter(r AccountReader) (uint32, error) {
	addr, _ := CounterAddress()
	data, err := readOwned(r, addr, params.MorphProgramID)
	if err != nil {
		return 0, err
	}
	c, err := DecodeCounter(data)
	if err != nil {
		return 0, err
	}
	return c.Count, nil
}
