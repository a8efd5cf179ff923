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
	"sort"

	"github.com/probechain/go-morph/common"
	"github.com/probechain/go-morph/core/types"
)

// Program is native code owning a slice of the account space. Execute runs
// one instruction inside the frame described by ctx; any returned error
// aborts the surrounding transaction.
type Program interface {
	ID() common.Address
	Execute(ctx *Context, accounts []types.AccountMeta, data []byte) error
}

// Registry maps program ids to their implementation. It is populated before
// execution starts and read-only afterwards.
type Registry struct {
	programs map[common.Address]Program
}

// NewRegistry creates a registry holding the given programs.
func NewRegistry(programs ...Program) *Registry {
	r := &Registry{programs: make(map[common.Address]Program)}
	for _, p := range programs {
		r.programs[p.ID()] = p
	}
	return r
}

// Get returns the program deployed at id.
func (r *Registry) Get(id common.Address) (Program, bool) {
	p, ok := r.programs[id]
	return p, ok
}

// IDs returns the deployed program ids in address order.
func (r *Registry) IDs() []common.Address {
	ids := make([]common.Address, 0, len(r.programs))
	for id := range r.programs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Cmp(ids[j]) < 0 })
	return ids
}
