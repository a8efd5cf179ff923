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

package crypto

import (
	"crypto/sha256"
	"errors"
	"strings"

	"filippo.io/edwards25519"
	lru "github.com/hashicorp/golang-lru"
	"github.com/probechain/go-morph/common"
)

const (
	// MaxSeeds is the maximum number of seeds, bump included, of a derived address.
	MaxSeeds = 16
	// MaxSeedLength is the maximum byte length of a single seed.
	MaxSeedLength = 32

	pdaMarker      = "ProgramDerivedAddress"
	derivedCacheSz = 4096
)

var (
	ErrMaxSeedLengthExceeded = errors.New("length of the seed is too long for address generation")
	ErrTooManySeeds          = errors.New("too many seeds for address generation")
	ErrInvalidSeeds          = errors.New("provided seeds do not result in a valid address")
	ErrNoViableBump          = errors.New("unable to find a viable program address bump seed")
)

// derivedCache memoizes FindProgramAddress. Derivation is pure, so entries
// never go stale.
var derivedCache, _ = lru.NewARC(derivedCacheSz)

type derived struct {
	addr common.Address
	bump uint8
}

// CreateProgramAddress derives an address from seeds and a program id. The
// result is rejected if it lies on the ed25519 curve, since such an address
// could have a private key.
func CreateProgramAddress(seeds [][]byte, programID common.Address) (common.Address, error) {
	if len(seeds) > MaxSeeds {
		return common.Address{}, ErrTooManySeeds
	}
	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return common.Address{}, ErrMaxSeedLengthExceeded
		}
		h.Write(seed)
	}
	h.Write(programID[:])
	h.Write([]byte(pdaMarker))

	sum := h.Sum(nil)
	if IsOnCurve(sum) {
		return common.Address{}, ErrInvalidSeeds
	}
	return common.BytesToAddress(sum), nil
}

// FindProgramAddress searches bump seeds from 255 downwards and returns the
// first off-curve address together with the bump that produced it.
func FindProgramAddress(seeds [][]byte, programID common.Address) (common.Address, uint8, error) {
	key := cacheKey(seeds, programID)
	if v, ok := derivedCache.Get(key); ok {
		d := v.(derived)
		return d.addr, d.bump, nil
	}
	if len(seeds) >= MaxSeeds {
		return common.Address{}, 0, ErrTooManySeeds
	}
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	for bump := 255; bump > 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		addr, err := CreateProgramAddress(withBump, programID)
		switch {
		case err == nil:
			derivedCache.Add(key, derived{addr: addr, bump: uint8(bump)})
			return addr, uint8(bump), nil
		case errors.Is(err, ErrInvalidSeeds):
			continue
		default:
			return common.Address{}, 0, err
		}
	}
	return common.Address{}, 0, ErrNoViableBump
}

// IsOnCurve reports whether b decodes to a point on the ed25519 curve.
func IsOnCurve(b []byte) bool {
	if len(b) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

func cacheKey(seeds [][]byte, programID common.Address) string {
	var sb strings.Builder
	sb.Write(programID[:])
	for _, seed := range seeds {
		sb.WriteByte(byte(len(seed)))
		sb.Write(seed)
	}
	return sb.String()
}
