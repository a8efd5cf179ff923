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

package oracle

import (
	"fmt"

	"github.com/probechain/go-morph/common"
	"github.com/probechain/go-morph/core/types"
	"github.com/probechain/go-morph/core/vm"
	"github.com/probechain/go-morph/crypto"
)

const (
	MaxContextTextLen   = 4096
	MaxPromptLen        = 2048
	MaxResponseLen      = 2048
	MaxCallbackAccounts = 8

	accountMetaSize = common.AddressLength + 2

	// InteractionSpace is the fixed payload size of an interaction account,
	// large enough for the longest prompt and response.
	InteractionSpace = crypto.DiscriminatorLength +
		2*common.AddressLength +
		4 + MaxPromptLen +
		4 + MaxResponseLen +
		1 +
		common.AddressLength + crypto.DiscriminatorLength +
		4 + MaxCallbackAccounts*accountMetaSize

	// IdentitySpace is the payload size of the identity account.
	IdentitySpace = crypto.DiscriminatorLength

	// ConfigSpace is the payload size of the configuration account.
	ConfigSpace = crypto.DiscriminatorLength + 2*common.AddressLength
)

var (
	contextDiscriminator     = crypto.AccountDiscriminator("ContextAccount")
	interactionDiscriminator = crypto.AccountDiscriminator("Interaction")
	identityDiscriminator    = crypto.AccountDiscriminator("Identity")
	configDiscriminator      = crypto.AccountDiscriminator("OracleConfig")
)

// InteractionStatus tracks an interaction through the oracle.
type InteractionStatus uint8

const (
	// StatusRecorded means a prompt awaits a response.
	StatusRecorded InteractionStatus = iota + 1
	// StatusResponded means the responder answered the latest prompt.
	StatusResponded
)

func (s InteractionStatus) String() string {
	switch s {
	case StatusRecorded:
		return "recorded"
	case StatusResponded:
		return "responded"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// ContextAccount holds the system prompt a conversation is grounded on.
type ContextAccount struct {
	Text string
}

// ContextSpace returns the payload size needed for a context with text.
func ContextSpace(text string) int {
	return crypto.DiscriminatorLength + 4 + len(text)
}

func (c *ContextAccount) encode() []byte {
	return common.NewLayoutWriter(ContextSpace(c.Text)).
		Raw(contextDiscriminator[:]).
		String(c.Text).
		Bytes()
}

// DecodeContext parses the payload of a context account.
func DecodeContext(data []byte) (*ContextAccount, error) {
	r, err := openLayout(data, contextDiscriminator)
	if err != nil {
		return nil, err
	}
	c := &ContextAccount{Text: r.String(MaxContextTextLen)}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", vm.ErrInvalidAccountData, err)
	}
	return c, nil
}

// Interaction is the latest exchange between a user and a context.
type Interaction struct {
	Context          common.Address
	User             common.Address
	Prompt           string
	Response         string
	Status           InteractionStatus
	CallbackProgram  common.Address
	CallbackSelector crypto.Discriminator
	CallbackAccounts []types.AccountMeta
}

func (i *Interaction) encode() []byte {
	w := common.NewLayoutWriter(InteractionSpace).
		Raw(interactionDiscriminator[:]).
		Address(i.Context).
		Address(i.User).
		String(i.Prompt).
		String(i.Response).
		U8(uint8(i.Status)).
		Address(i.CallbackProgram).
		Raw(i.CallbackSelector[:]).
		U32(uint32(len(i.CallbackAccounts)))
	for _, meta := range i.CallbackAccounts {
		w.Address(meta.Address).Bool(meta.IsSigner).Bool(meta.IsWritable)
	}
	return w.Bytes()
}

// DecodeInteraction parses the payload of an interaction account.
func DecodeInteraction(data []byte) (*Interaction, error) {
	r, err := openLayout(data, interactionDiscriminator)
	if err != nil {
		return nil, err
	}
	i := &Interaction{
		Context:  r.Address(),
		User:     r.Address(),
		Prompt:   r.String(MaxPromptLen),
		Response: r.String(MaxResponseLen),
		Status:   InteractionStatus(r.U8()),
	}
	i.CallbackProgram = r.Address()
	copy(i.CallbackSelector[:], r.Raw(crypto.DiscriminatorLength))
	metas, err := decodeMetas(r)
	if err != nil {
		return nil, err
	}
	i.CallbackAccounts = metas
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", vm.ErrInvalidAccountData, err)
	}
	return i, nil
}

func decodeMetas(r *common.LayoutReader) ([]types.AccountMeta, error) {
	n := r.U32()
	if n > MaxCallbackAccounts {
		return nil, fmt.Errorf("%w: %d callback accounts", vm.ErrInvalidInstruction, n)
	}
	metas := make([]types.AccountMeta, 0, n)
	for j := uint32(0); j < n && r.Err() == nil; j++ {
		metas = append(metas, types.AccountMeta{
			Address:    r.Address(),
			IsSigner:   r.Bool(),
			IsWritable: r.Bool(),
		})
	}
	return metas, nil
}

// Config names the parties the oracle trusts.
type Config struct {
	// Responder is the only key allowed to answer interactions.
	Responder common.Address
	// ContextAuthority is the only signer allowed to create contexts.
	ContextAuthority common.Address
}

func (c *Config) encode() []byte {
	return common.NewLayoutWriter(ConfigSpace).
		Raw(configDiscriminator[:]).
		Address(c.Responder).
		Address(c.ContextAuthority).
		Bytes()
}

// DecodeConfig parses the payload of the configuration account.
func DecodeConfig(data []byte) (*Config, error) {
	r, err := openLayout(data, configDiscriminator)
	if err != nil {
		return nil, err
	}
	c := &Config{Responder: r.Address(), ContextAuthority: r.Address()}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", vm.ErrInvalidAccountData, err)
	}
	return c, nil
}

func openLayout(data []byte, want crypto.Discriminator) (*common.LayoutReader, error) {
	r := common.NewLayoutReader(data)
	var have crypto.Discriminator
	copy(have[:], r.Raw(crypto.DiscriminatorLength))
	if r.Err() != nil || have != want {
		return nil, fmt.Errorf("%w: discriminator mismatch", vm.ErrInvalidAccountData)
	}
	return r, nil
}
