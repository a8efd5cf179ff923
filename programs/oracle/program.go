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

// Package oracle implements the language model oracle program. Programs
// record prompts against a context through it; an off-ledger responder
// answers them and the oracle relays the answer back to the program that
// asked, signing the callback with its identity account.
package oracle

import (
	"errors"
	"fmt"

	"github.com/probechain/go-morph/common"
	"github.com/probechain/go-morph/core/types"
	"github.com/probechain/go-morph/core/vm"
	"github.com/probechain/go-morph/crypto"
	"github.com/probechain/go-morph/params"
)

var (
	createContextSelector = crypto.InstructionDiscriminator("create_llm_context")
	interactSelector      = crypto.InstructionDiscriminator("interact_with_llm")
	callbackSelector      = crypto.InstructionDiscriminator("callback_from_llm")
)

var (
	// ErrAlreadyResponded is returned when answering an interaction whose
	// latest prompt has already been answered.
	ErrAlreadyResponded = errors.New("interaction already responded")

	// ErrEmptyText is returned for an empty context text or prompt.
	ErrEmptyText = errors.New("empty text")
)

// Program is the oracle program.
type Program struct{}

// New returns the oracle program.
func New() *Program { return &Program{} }

// ID implements vm.Program.
func (p *Program) ID() common.Address { return params.OracleProgramID }

// Execute implements vm.Program.
func (p *Program) Execute(ctx *vm.Context, accounts []types.AccountMeta, data []byte) error {
	if len(data) < crypto.DiscriminatorLength {
		return fmt.Errorf("%w: short instruction data", vm.ErrInvalidInstruction)
	}
	var selector crypto.Discriminator
	copy(selector[:], data)
	args := common.NewLayoutReader(data[crypto.DiscriminatorLength:])

	switch selector {
	case createContextSelector:
		return p.createContext(ctx, accounts, args)
	case interactSelector:
		return p.interact(ctx, accounts, args)
	case callbackSelector:
		return p.callback(ctx, accounts, args)
	default:
		return fmt.Errorf("%w: unknown selector %x", vm.ErrInvalidInstruction, selector)
	}
}

func needAccounts(accounts []types.AccountMeta, n int) error {
	if len(accounts) < n {
		return fmt.Errorf("%w: want %d accounts, have %d", vm.ErrInvalidInstruction, n, len(accounts))
	}
	return nil
}

func argsErr(r *common.LayoutReader) error {
	if err := r.Err(); err != nil {
		return fmt.Errorf("%w: %v", vm.ErrInvalidInstruction, err)
	}
	return nil
}

func (p *Program) loadConfig(ctx *vm.Context, addr common.Address) (*Config, error) {
	if want, _ := ConfigAddress(); addr != want {
		return nil, fmt.Errorf("%w: config %s", vm.ErrInvalidAccount, addr)
	}
	data, err := ctx.OwnedData(addr, p.ID())
	if err != nil {
		return nil, err
	}
	return DecodeConfig(data)
}

// createContext allocates the context account for a counter slot.
//
// Accounts: payer (signer, writable), authority (signer), config, context (writable).
func (p *Program) createContext(ctx *vm.Context, accounts []types.AccountMeta, args *common.LayoutReader) error {
	if err := needAccounts(accounts, 4); err != nil {
		return err
	}
	count := args.U32()
	text := args.String(MaxContextTextLen)
	if err := argsErr(args); err != nil {
		return err
	}
	if text == "" {
		return fmt.Errorf("%w: %w", vm.ErrInvalidInstruction, ErrEmptyText)
	}
	payer, authority, configAddr, contextAddr := accounts[0].Address, accounts[1].Address, accounts[2].Address, accounts[3].Address

	config, err := p.loadConfig(ctx, configAddr)
	if err != nil {
		return err
	}
	if authority != config.ContextAuthority || !ctx.IsSigner(authority) {
		return fmt.Errorf("%w: context authority %s", vm.ErrUnauthorized, authority)
	}
	want, bump := ContextAddress(count)
	if contextAddr != want {
		return fmt.Errorf("%w: context %s for slot %d", vm.ErrInvalidSeeds, contextAddr, count)
	}
	acct := &ContextAccount{Text: text}
	seeds := [][]byte{contextSeed, countSeed(count), {bump}}
	if err := ctx.CreateAccount(payer, contextAddr, ContextSpace(text), seeds); err != nil {
		return err
	}
	if err := ctx.WriteData(contextAddr, acct.encode()); err != nil {
		return err
	}
	ctx.Log(fmt.Sprintf("Created context %d", count))
	return nil
}

// interact records a prompt, creating the interaction account on first use
// and overwriting the previous exchange otherwise.
//
// Accounts: payer (signer, writable), interaction (writable), context.
func (p *Program) interact(ctx *vm.Context, accounts []types.AccountMeta, args *common.LayoutReader) error {
	if err := needAccounts(accounts, 3); err != nil {
		return err
	}
	prompt := args.String(MaxPromptLen)
	cbProgram := args.Address()
	var cbSelector crypto.Discriminator
	copy(cbSelector[:], args.Raw(crypto.DiscriminatorLength))
	cbAccounts, err := decodeMetas(args)
	if err != nil {
		return err
	}
	if err := argsErr(args); err != nil {
		return err
	}
	if prompt == "" {
		return fmt.Errorf("%w: %w", vm.ErrInvalidInstruction, ErrEmptyText)
	}
	for _, meta := range cbAccounts {
		if meta.IsSigner {
			return fmt.Errorf("%w: callback account %s cannot require a signature", vm.ErrInvalidInstruction, meta.Address)
		}
	}
	user, interactionAddr, contextAddr := accounts[0].Address, accounts[1].Address, accounts[2].Address
	if !ctx.IsSigner(user) {
		return fmt.Errorf("%w: user %s", vm.ErrMissingSigner, user)
	}
	data, err := ctx.OwnedData(contextAddr, p.ID())
	if err != nil {
		return err
	}
	if _, err := DecodeContext(data); err != nil {
		return err
	}
	want, bump := InteractionAddress(user, contextAddr)
	if interactionAddr != want {
		return fmt.Errorf("%w: interaction %s", vm.ErrInvalidSeeds, interactionAddr)
	}
	exists, err := ctx.Exists(interactionAddr)
	if err != nil {
		return err
	}
	if !exists {
		seeds := [][]byte{interactionSeed, user.Bytes(), contextAddr.Bytes(), {bump}}
		if err := ctx.CreateAccount(user, interactionAddr, InteractionSpace, seeds); err != nil {
			return err
		}
	} else if _, err := ctx.OwnedData(interactionAddr, p.ID()); err != nil {
		return err
	}
	interaction := &Interaction{
		Context:          contextAddr,
		User:             user,
		Prompt:           prompt,
		Status:           StatusRecorded,
		CallbackProgram:  cbProgram,
		CallbackSelector: cbSelector,
		CallbackAccounts: cbAccounts,
	}
	if err := ctx.WriteData(interactionAddr, interaction.encode()); err != nil {
		return err
	}
	ctx.Log(fmt.Sprintf("Recorded interaction %s", interactionAddr))
	return nil
}

// callback stores the responder's answer and relays it to the program that
// recorded the interaction.
//
// Accounts: responder (signer), identity, config, interaction (writable),
// callback program, followed by the recorded callback accounts.
func (p *Program) callback(ctx *vm.Context, accounts []types.AccountMeta, args *common.LayoutReader) error {
	if err := needAccounts(accounts, 5); err != nil {
		return err
	}
	response := args.String(MaxResponseLen)
	if err := argsErr(args); err != nil {
		return err
	}
	responder, identity, configAddr, interactionAddr := accounts[0].Address, accounts[1].Address, accounts[2].Address, accounts[3].Address

	config, err := p.loadConfig(ctx, configAddr)
	if err != nil {
		return err
	}
	if responder != config.Responder || !ctx.IsSigner(responder) {
		return fmt.Errorf("%w: responder %s", vm.ErrUnauthorized, responder)
	}
	identityAddr, bump := IdentityAddress()
	if identity != identityAddr {
		return fmt.Errorf("%w: identity %s", vm.ErrInvalidAccount, identity)
	}
	data, err := ctx.OwnedData(interactionAddr, p.ID())
	if err != nil {
		return err
	}
	interaction, err := DecodeInteraction(data)
	if err != nil {
		return err
	}
	if interaction.Status == StatusResponded {
		return fmt.Errorf("%w: %s", ErrAlreadyResponded, interactionAddr)
	}
	if accounts[4].Address != interaction.CallbackProgram {
		return fmt.Errorf("%w: callback program %s", vm.ErrInvalidAccount, accounts[4].Address)
	}
	interaction.Response = response
	interaction.Status = StatusResponded
	if err := ctx.WriteData(interactionAddr, interaction.encode()); err != nil {
		return err
	}
	if interaction.CallbackProgram.IsZero() {
		return nil
	}
	metas := append([]types.AccountMeta{{Address: identity, IsSigner: true}}, interaction.CallbackAccounts...)
	ins := types.Instruction{
		ProgramID: interaction.CallbackProgram,
		Accounts:  metas,
		Data:      common.NewLayoutWriter(crypto.DiscriminatorLength + 4 + len(response)).Raw(interaction.CallbackSelector[:]).String(response).Bytes(),
	}
	return ctx.Invoke(ins, [][]byte{identitySeed, {bump}})
}
