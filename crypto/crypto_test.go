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
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"filippo.io/edwards25519"
	"github.com/probechain/go-morph/common"
)

var testProgram = common.MustBase58ToAddress("LLMrieZMpbJFwN52WgmBNMxYojrpRVYXdC1RCweEbab")

func TestKeccak256Hash(t *testing.T) {
	msg := []byte("")
	exp, _ := hex.DecodeString("c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470")
	if h := Keccak256Hash(msg); !bytes.Equal(h[:], exp) {
		t.Fatalf("hash mismatch: have %x want %x", h, exp)
	}
	if h := Keccak256(msg); !bytes.Equal(h, exp) {
		t.Fatalf("hash mismatch: have %x want %x", h, exp)
	}
}

func TestFindProgramAddress(t *testing.T) {
	seeds := [][]byte{[]byte("context"), {5, 0, 0, 0}}

	addr, bump, err := FindProgramAddress(seeds, testProgram)
	if err != nil {
		t.Fatalf("derivation failed: %v", err)
	}
	if IsOnCurve(addr[:]) {
		t.Fatalf("derived address %s lies on the curve", addr)
	}
	again, err := CreateProgramAddress(append(seeds, []byte{bump}), testProgram)
	if err != nil {
		t.Fatalf("recreate with bump %d failed: %v", bump, err)
	}
	if again != addr {
		t.Fatalf("address mismatch: have %s want %s", again, addr)
	}
	// Second lookup is served from the cache and must agree.
	cached, cachedBump, err := FindProgramAddress(seeds, testProgram)
	if err != nil || cached != addr || cachedBump != bump {
		t.Fatalf("cached derivation differs: %s/%d vs %s/%d (%v)", cached, cachedBump, addr, bump, err)
	}
}

func TestFindProgramAddressDistinct(t *testing.T) {
	seen := make(map[common.Address]uint32)
	for i := uint32(0); i < 64; i++ {
		seed := []byte{byte(i), byte(i >> 8), byte(i >> 16), byte(i >> 24)}
		addr, _, err := FindProgramAddress([][]byte{[]byte("context"), seed}, testProgram)
		if err != nil {
			t.Fatalf("count %d: %v", i, err)
		}
		if prev, ok := seen[addr]; ok {
			t.Fatalf("counts %d and %d collide on %s", prev, i, addr)
		}
		seen[addr] = i
	}
	other := common.MustBase58ToAddress("morpn5gHTNsUivctAeGCEG9VBFqxoRpdDgmAfNQH3DM")
	a, _, _ := FindProgramAddress([][]byte{[]byte("counter")}, testProgram)
	b, _, _ := FindProgramAddress([][]byte{[]byte("counter")}, other)
	if a == b {
		t.Fatal("same seeds under different programs must not collide")
	}
}

func TestCreateProgramAddressLimits(t *testing.T) {
	long := bytes.Repeat([]byte{127}, MaxSeedLength+1)
	if _, err := CreateProgramAddress([][]byte{long}, testProgram); !errors.Is(err, ErrMaxSeedLengthExceeded) {
		t.Fatalf("expected %v, got %v", ErrMaxSeedLengthExceeded, err)
	}
	if _, _, err := FindProgramAddress([][]byte{long}, testProgram); !errors.Is(err, ErrMaxSeedLengthExceeded) {
		t.Fatalf("expected %v, got %v", ErrMaxSeedLengthExceeded, err)
	}
	many := make([][]byte, MaxSeeds)
	if _, _, err := FindProgramAddress(many, testProgram); !errors.Is(err, ErrTooManySeeds) {
		t.Fatalf("expected %v, got %v", ErrTooManySeeds, err)
	}
}

func TestIsOnCurve(t *testing.T) {
	if !IsOnCurve(edwards25519.NewGeneratorPoint().Bytes()) {
		t.Fatal("generator must be on the curve")
	}
	if IsOnCurve([]byte{1, 2, 3}) {
		t.Fatal("short input cannot be a point")
	}
}

func TestDiscriminator(t *testing.T) {
	sum := sha256.Sum256([]byte("account:Agent"))
	if d := AccountDiscriminator("Agent"); !bytes.Equal(d[:], sum[:8]) {
		t.Fatalf("account tag mismatch: %x vs %x", d, sum[:8])
	}
	if AccountDiscriminator("initialize_agent") == InstructionDiscriminator("initialize_agent") {
		t.Fatal("namespaces must differ")
	}
}
