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
	"github.com/probechain/go-morph/core/vm"
	"github.com/probechain/go-morph/crypto"
	"github.com/probechain/go-morph/params"
)

const (
	// MaxAgentNameLen bounds the agent's display name.
	MaxAgentNameLen = 100

	maxMetadataLen = 200

	// CounterSpace is the payload size of the counter account.
	CounterSpace = crypto.DiscriminatorLength + 4

	// AgentSpace is the payload size of an agent account.
	AgentSpace = crypto.DiscriminatorLength + common.AddressLength + 4 + MaxAgentNameLen + 3 + 4

	// MintSpace is the payload size of the mint account.
	MintSpace = crypto.DiscriminatorLength + 1 + 8 + common.AddressLength + 3*(4+maxMetadataLen)
)

var (
	counterDiscriminator = crypto.AccountDiscriminator("Counter")
	agentDiscriminator   = crypto.AccountDiscriminator("Agent")
	mintDiscriminator    = crypto.AccountDiscriminator("Mint")
)

// Counter is the global slot sequence.
type Counter struct {
	Count uint32
}

func (c *Counter) encode() []byte {
	return common.NewLayoutWriter(CounterSpace).Raw(counterDiscriminator[:]).U32(c.Count).Bytes()
}

// DecodeCounter parses the payload of the counter account.
func DecodeCounter(data []byte) (*Counter, error) {
	r, err := open(data, counterDiscriminator)
	if err != nil {
		return nil, err
	}
	c := &Counter{Count: r.U32()}
	if err := layoutErr(r); err != nil {
		return nil, err
	}
	return c, nil
}

// Agent is the per wallet record. The context binding is fixed at
// allocation; the mood values follow the oracle's replies.
type Agent struct {
	Context    common.Address `json:"context"`
	Name       string         `json:"name"`
	Happiness  uint8          `json:"happiness"`
	Energy     uint8          `json:"energy"`
	Health     uint8          `json:"health"`
	Individual uint32         `json:"individual"`
}

const (
	defaultAgentName = "Morph"
	defaultMood      = 70
	maxMood          = 100
)

func newAgent(context common.Address, slot uint32) *Agent {
	return &Agent{
		Context:    context,
		Name:       defaultAgentName,
		Happiness:  defaultMood,
		Energy:     defaultMood,
		Health:     defaultMood,
		Individual: slot,
	}
}

func (a *Agent) encode() []byte {
	return common.NewLayoutWriter(AgentSpace).
		Raw(agentDiscriminator[:]).
		Address(a.Context).
		String(a.Name).
		U8(a.Happiness).
		U8(a.Energy).
		U8(a.Health).
		U32(a.Individual).
		Bytes()
}

// DecodeAgent parses the payload of an agent account.
func DecodeAgent(data []byte) (*Agent, error) {
	r, err := open(data, agentDiscriminator)
	if err != nil {
		return nil, err
	}
	a := &Agent{
		Context:    r.Address(),
		Name:       r.String(MaxAgentNameLen),
		Happiness:  r.U8(),
		Energy:     r.U8(),
		Health:     r.U8(),
		Individual: r.U32(),
	}
	if err := layoutErr(r); err != nil {
		return nil, err
	}
	return a, nil
}

// Mint describes the agent token.
type Mint struct {
	Decimals  uint8          `json:"decimals"`
	Supply    uint64         `json:"supply"`
	Authority common.Address `json:"authority"`
	Name      string         `json:"name"`
	Symbol    string         `json:"symbol"`
	URI       string         `json:"uri"`
}

func newMint(authority common.Address) *Mint {
	return &Mint{
		Decimals:  params.TokenDecimals,
		Authority: authority,
		Name:      params.TokenName,
		Symbol:    params.TokenSymbol,
		URI:       params.TokenURI,
	}
}

func (m *Mint) encode() []byte {
	return common.NewLayoutWriter(MintSpace).
		Raw(mintDiscriminator[:]).
		U8(m.Decimals).
		U64(m.Supply).
		Address(m.Authority).
		String(m.Name).
		String(m.Symbol).
		String(m.URI).
		Bytes()
}

// DecodeMint parses the payload of the mint account.
func DecodeMint(data []byte) (*Mint, error) {
	r, err := open(data, mintDiscriminator)
	if err != nil {
		return nil, err
	}
	m := &Mint{
		Decimals:  r.U8(),
		Supply:    r.U64(),
		Authority: r.Address(),
		Name:      r.String(maxMetadataLen),
		Symbol:    r.String(maxMetadataLen),
		URI:       r.String(maxMetadataLen),
	}
	if err := layoutErr(r); err != nil {
		return nil, err
	}
	return m, nil
}

func open(data []byte, want crypto.Discriminator) (*common.LayoutReader, error) {
	if len(data) < crypto.DiscriminatorLength || crypto.Discriminator(data[:crypto.DiscriminatorLength]) != want {
		return nil, fmt.Errorf("%w: discriminator mismatch", vm.ErrInvalidAccountData)
	}
	return common.NewLayoutReader(data[crypto.DiscriminatorLength:]), nil
}

func layoutErr(r *common.LayoutReader) error {
	if err := r.Err(); err != nil {
		return fmt.Errorf("%w: %v", vm.ErrInvalidAccountData, err)
	}
	return nil
}
