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

	"github.com/probechain/go-morph/common"
	"github.com/probechain/go-morph/core/types"
	"github.com/probechain/go-morph/core/vm"
	"github.com/probechain/go-morph/params"
)

// initializeToken creates the token mint. A mint that already exists is
// reported as ErrAlreadyInitialized so callers can treat a retry as done.
//
// Accounts: payer (signer, writable), mint (writable).
func (p *Program) initializeToken(ctx *vm.Context, accounts []types.AccountMeta) error {
	if err := needAccounts(accounts, 2); err != nil {
		return err
	}
	payer, mint := accounts[0].Address, accounts[1].Address
	want, bump := MintAddress()
	if mint != want {
		return fmt.Errorf("%w: mint %s", vm.ErrInvalidAccount, mint)
	}
	exists, err := ctx.Exists(mint)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: mint %s", vm.ErrAlreadyInitialized, mint)
	}
	if err := ctx.CreateAccount(payer, mint, MintSpace, [][]byte{mintSeed, {bump}}); err != nil {
		return err
	}
	if err := ctx.WriteData(mint, newMint(mint).encode()); err != nil {
		return err
	}
	ctx.Log(fmt.Sprintf("Initialized mint %s", mint))
	return nil
}

// ReadMint returns the token mint, or ErrNotFound before initializeToken.
func ReadMint(r AccountReader) (*Mint, error) {
	addr, _ := MintAddress()
	data, err := readOwned(r, addr, params.MorphProgramID)
	if err != nil {
		return nil, err
	}
	return DecodeMint(data)
}

func readOwned(r AccountReader, addr, owner common.Address) ([]byte, error) {
	acct, err := r.Account(addr)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, fmt.Errorf("%w: %s", vm.ErrNotFound, addr)
	}
	if acct.Owner != owner {
		return nil, fmt.Errorf("%w: %s owned by %s", vm.ErrIllegalOwner, addr, acct.Owner)
	}
	return acct.Data, nil
}
