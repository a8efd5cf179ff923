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

	mapset "github.com/deckarep/golang-set"
	"github.com/ethereum/go-ethereum/log"
	"github.com/probechain/go-morph/common"
	"github.com/probechain/go-morph/core/state"
	"github.com/probechain/go-morph/core/types"
	"github.com/probechain/go-morph/crypto"
	"github.com/probechain/go-morph/params"
)

// Env carries the per-transaction execution state shared by every frame.
type Env struct {
	state    *state.StateDB
	registry *Registry
	msg      *types.Message
	signers  mapset.Set // transaction level signers
}

// NewEnv prepares the execution of tx against statedb.
func NewEnv(statedb *state.StateDB, registry *Registry, tx *types.Transaction) *Env {
	signers := mapset.NewSet()
	for _, s := range tx.Signers() {
		signers.Add(s)
	}
	return &Env{
		state:    statedb,
		registry: registry,
		msg:      tx.AsMessage(),
		signers:  signers,
	}
}

// State returns the staging overlay of the transaction.
func (e *Env) State() *state.StateDB {
	return e.state
}

// Run executes a top level instruction. Signer metas must be backed by a
// transaction signature; writable metas are already part of the message.
func (e *Env) Run(ins types.Instruction) error {
	prog, ok := e.registry.Get(ins.ProgramID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrProgramNotFound, ins.ProgramID)
	}
	metas := make(map[common.Address]types.AccountMeta, len(ins.Accounts))
	for _, meta := range ins.Accounts {
		if meta.IsSigner && !e.signers.Contains(meta.Address) {
			return fmt.Errorf("%w: %s", ErrMissingSigner, meta.Address)
		}
		mergeMeta(metas, meta)
	}
	// The invoked program is implicitly visible to itself.
	mergeMeta(metas, types.AccountMeta{Address: ins.ProgramID})

	ctx := &Context{
		env:     e,
		program: ins.ProgramID,
		metas:   metas,
		logger:  log.New("program", ins.ProgramID),
	}
	return prog.Execute(ctx, ins.Accounts, ins.Data)
}

func mergeMeta(metas map[common.Address]types.AccountMeta, meta types.AccountMeta) {
	have := metas[meta.Address]
	have.Address = meta.Address
	have.IsSigner = have.IsSigner || meta.IsSigner
	have.IsWritable = have.IsWritable || meta.IsWritable
	metas[meta.Address] = have
}

// Context is one call frame: the program being run and the accounts it was
// handed, with the privileges granted on each. Programs only ever reach
// state through it.
type Context struct {
	env     *Env
	program common.Address
	metas   map[common.Address]types.AccountMeta
	depth   int
	logger  log.Logger
}

// ProgramID returns the id of the executing program.
func (c *Context) ProgramID() common.Address { return c.program }

// Depth returns the cross-program call depth, zero for top level instructions.
func (c *Context) Depth() int { return c.depth }

// IsSigner reports whether addr carries signer privilege in this frame.
func (c *Context) IsSigner(addr common.Address) bool {
	return c.metas[addr].IsSigner
}

// IsWritable reports whether addr may be written in this frame.
func (c *Context) IsWritable(addr common.Address) bool {
	return c.metas[addr].IsWritable
}

func (c *Context) declared(addr common.Address) error {
	if _, ok := c.metas[addr]; !ok {
		return fmt.Errorf("%w: %s", ErrAccountNotDeclared, addr)
	}
	return nil
}

// Exists reports whether a declared account exists.
func (c *Context) Exists(addr common.Address) (bool, error) {
	if err := c.declared(addr); err != nil {
		return false, err
	}
	return c.env.state.Exist(addr), nil
}

// Account loads a declared account, failing with ErrNotFound if absent.
func (c *Context) Account(addr common.Address) (*state.Account, error) {
	if err := c.declared(addr); err != nil {
		return nil, err
	}
	acct := c.env.state.GetAccount(addr)
	if acct == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, addr)
	}
	return acct, nil
}

// OwnedData returns the payload of an existing account owned by owner.
func (c *Context) OwnedData(addr common.Address, owner common.Address) ([]byte, error) {
	acct, err := c.Account(addr)
	if err != nil {
		return nil, err
	}
	if acct.Owner != owner {
		return nil, fmt.Errorf("%w: %s owned by %s", ErrIllegalOwner, addr, acct.Owner)
	}
	return acct.Data, nil
}

// WriteData stores data into an account owned by the executing program. The
// payload is zero padded to the allocated size and may not exceed it.
func (c *Context) WriteData(addr common.Address, data []byte) error {
	if err := c.declared(addr); err != nil {
		return err
	}
	if !c.IsWritable(addr) {
		return fmt.Errorf("%w: %s", ErrReadonlyAccount, addr)
	}
	acct := c.env.state.GetAccount(addr)
	if acct == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, addr)
	}
	if acct.Owner != c.program {
		return fmt.Errorf("%w: %s owned by %s", ErrIllegalOwner, addr, acct.Owner)
	}
	if len(data) > len(acct.Data) {
		return fmt.Errorf("%w: %d bytes into %d byte account", ErrInsufficientResources, len(data), len(acct.Data))
	}
	buf := make([]byte, len(acct.Data))
	copy(buf, data)
	c.env.state.SetData(addr, buf)
	return nil
}

// CreateAccount allocates a rent exempt account of the given size at a
// program derived address of the executing program. The seeds, bump
// included, prove the address belongs to the program; payer funds the rent.
func (c *Context) CreateAccount(payer, addr common.Address, space int, seeds [][]byte) error {
	for _, a := range []common.Address{payer, addr} {
		if err := c.declared(a); err != nil {
			return err
		}
		if !c.IsWritable(a) {
			return fmt.Errorf("%w: %s", ErrReadonlyAccount, a)
		}
	}
	if !c.IsSigner(payer) {
		return fmt.Errorf("%w: payer %s", ErrMissingSigner, payer)
	}
	derived, err := crypto.CreateProgramAddress(seeds, c.program)
	if err != nil || derived != addr {
		return fmt.Errorf("%w: %s", ErrInvalidSeeds, addr)
	}
	if c.env.state.Exist(addr) {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, addr)
	}
	rent, err := MinimumBalance(space)
	if err != nil {
		return err
	}
	if !c.env.state.Exist(payer) {
		return fmt.Errorf("%w: payer %s has no account", ErrInsufficientResources, payer)
	}
	left, err := Debit(c.env.state.GetLamports(payer), rent)
	if err != nil {
		return err
	}
	c.env.state.SetLamports(payer, left)
	c.env.state.CreateAccount(addr, c.program, rent, space, false)
	return nil
}

// Invoke performs a synchronous cross-program call. The callee sees only the
// accounts named by ins, with privileges no wider than this frame holds.
// Signer privilege may additionally be granted to addresses derived from
// signerSeeds under the executing program. A failing callee has its changes
// rolled back before the error is returned.
func (c *Context) Invoke(ins types.Instruction, signerSeeds ...[][]byte) error {
	if c.depth+1 > params.MaxInvokeDepth {
		return ErrCallDepth
	}
	if err := c.declared(ins.ProgramID); err != nil {
		return err
	}
	prog, ok := c.env.registry.Get(ins.ProgramID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrProgramNotFound, ins.ProgramID)
	}
	pdaSigners := mapset.NewSet()
	for _, seeds := range signerSeeds {
		addr, err := crypto.CreateProgramAddress(seeds, c.program)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSeeds, err)
		}
		pdaSigners.Add(addr)
	}
	metas := make(map[common.Address]types.AccountMeta, len(ins.Accounts)+1)
	for _, meta := range ins.Accounts {
		have, ok := c.metas[meta.Address]
		if !ok {
			return fmt.Errorf("%w: %s", ErrAccountNotDeclared, meta.Address)
		}
		if meta.IsWritable && !have.IsWritable {
			return fmt.Errorf("%w: %s", ErrReadonlyAccount, meta.Address)
		}
		if meta.IsSigner && !have.IsSigner && !pdaSigners.Contains(meta.Address) {
			return fmt.Errorf("%w: %s", ErrMissingSigner, meta.Address)
		}
		mergeMeta(metas, meta)
	}
	mergeMeta(metas, types.AccountMeta{Address: ins.ProgramID})

	callee := &Context{
		env:     c.env,
		program: ins.ProgramID,
		metas:   metas,
		depth:   c.depth + 1,
		logger:  log.New("program", ins.ProgramID, "depth", c.depth+1),
	}
	snapshot := c.env.state.Snapshot()
	c.env.state.AddLog(fmt.Sprintf("Program %s invoke [%d]", ins.ProgramID, callee.depth+1))
	if err := prog.Execute(callee, ins.Accounts, ins.Data); err != nil {
		c.env.state.RevertToSnapshot(snapshot)
		return err
	}
	c.env.state.AddLog(fmt.Sprintf("Program %s success", ins.ProgramID))
	return nil
}

// Log records a program log line in the transaction receipt.
func (c *Context) Log(msg string) {
	c.env.state.AddLog("Program log: " + msg)
	c.logger.Trace(msg)
}

// Logger returns the frame's contextual logger.
func (c *Context) Logger() log.Logger {
	return c.logger
}
