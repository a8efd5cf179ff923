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

package morphclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/probechain/go-morph/common"
	"github.com/probechain/go-morph/core"
	"github.com/probechain/go-morph/core/types"
	"github.com/probechain/go-morph/core/vm"
	"github.com/probechain/go-morph/internal/morphapi"
	"github.com/probechain/go-morph/ledgerdb/leveldb"
	"github.com/probechain/go-morph/morph"
	"github.com/probechain/go-morph/morph/morphconfig"
	"github.com/probechain/go-morph/params"
	ledger "github.com/probechain/go-morph/programs/morph"
	"github.com/probechain/go-morph/programs/oracle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

var responder = common.BytesToAddress([]byte{0x0e, 0x5b})

func wallet(i int) common.Address {
	return common.BytesToAddress([]byte{0x55, byte(i >> 8), byte(i)})
}

func newLedger(t *testing.T, wallets int) *core.Ledger {
	t.Helper()
	db := leveldb.NewMemory()
	t.Cleanup(func() { db.Close() })

	funded := core.GenesisAlloc{
		responder: {Owner: params.SystemProgramID, Lamports: params.LamportsPerSol},
	}
	for i := 0; i < wallets; i++ {
		funded[wallet(i)] = core.GenesisAccount{Owner: params.SystemProgramID, Lamports: params.LamportsPerSol}
	}
	_, err := core.SetupGenesis(db, ledger.DefaultGenesis(responder, funded))
	require.NoError(t, err)
	l, err := core.NewLedger(db, core.Config{}, ledger.Registry())
	require.NoError(t, err)
	t.Cleanup(l.Close)
	return l
}

func newClient(t *testing.T, backend Backend, payer common.Address) *Client {
	t.Helper()
	c, err := New(backend, payer)
	require.NoError(t, err)
	return c
}

// racingBackend lets another wallet take the current slot right before each
// of the next races submissions.
type racingBackend struct {
	*core.Ledger
	t      *testing.T
	races  int
	racers []common.Address
}

func (b *racingBackend) SendTransaction(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	if b.races > 0 {
		b.races--
		racer := b.racers[0]
		b.racers = b.racers[1:]
		_, err := newClient(b.t, b.Ledger, racer).InitializeAgent(ctx)
		require.NoError(b.t, err)
	}
	return b.Ledger.SendTransaction(ctx, tx)
}

func TestNewValidates(t *testing.T) {
	_, err := New(nil, wallet(0))
	assert.Error(t, err)
	_, err = New(newLedger(t, 0), common.Address{})
	assert.Error(t, err)
}

func TestInitializeToken(t *testing.T) {
	c := newClient(t, newLedger(t, 1), wallet(0))

	receipt, created, err := c.InitializeToken(context.Background())
	require.NoError(t, err)
	require.True(t, created)
	require.True(t, receipt.Succeeded())

	receipt, created, err = c.InitializeToken(context.Background())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Nil(t, receipt)
}

func TestInitializeAgentRetriesStaleSlot(t *testing.T) {
	l := newLedger(t, 3)
	backend := &racingBackend{Ledger: l, t: t, races: 2, racers: []common.Address{wallet(1), wallet(2)}}
	c := newClient(t, backend, wallet(0))

	alloc, err := c.InitializeAgent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(2), alloc.Slot)
	assert.Equal(t, ledger.ContextAddress(2), alloc.Context)

	agent, err := c.Agent()
	require.NoError(t, err)
	assert.Equal(t, alloc.Context, agent.Context)

	for i, racer := range []common.Address{wallet(1), wallet(2)} {
		a, err := ledger.FetchAgent(l, racer)
		require.NoError(t, err)
		assert.Equal(t, ledger.ContextAddress(uint32(i)), a.Context)
	}
	count, err := c.Counter()
	require.NoError(t, err)
	assert.Equal(t, uint32(3), count)
}

func TestInitializeAgentRetriesExhausted(t *testing.T) {
	l := newLedger(t, 4)
	backend := &racingBackend{Ledger: l, t: t, races: 3, racers: []common.Address{wallet(1), wallet(2), wallet(3)}}
	c := newClient(t, backend, wallet(0))
	c.SetMaxRetries(3)

	_, err := c.InitializeAgent(context.Background())
	require.ErrorIs(t, err, ErrRetriesExhausted)
	assert.ErrorIs(t, err, vm.ErrStaleState)

	_, err = c.Agent()
	assert.ErrorIs(t, err, vm.ErrNotFound)
}

func TestInitializeAgentConflict(t *testing.T) {
	c := newClient(t, newLedger(t, 1), wallet(0))

	_, err := c.InitializeAgent(context.Background())
	require.NoError(t, err)
	_, err = c.InitializeAgent(context.Background())
	assert.ErrorIs(t, err, vm.ErrAlreadyExists)
	assert.Equal(t, vm.ClassConflict, vm.Classify(err))
}

func TestInitializeAgentCancelled(t *testing.T) {
	c := newClient(t, newLedger(t, 1), wallet(0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.InitializeAgent(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConcurrentAllocation(t *testing.T) {
	const n = 16
	l := newLedger(t, n)

	var g errgroup.Group
	slots := make([]uint32, n)
	for i := 0; i < n; i++ {
		i := i
		c := newClient(t, l, wallet(i))
		c.SetMaxRetries(4 * n)
		g.Go(func() error {
			alloc, err := c.InitializeAgent(context.Background())
			if err != nil {
				return err
			}
			slots[i] = alloc.Slot
			return nil
		})
	}
	require.NoError(t, g.Wait())

	seen := make(map[uint32]bool)
	for _, s := range slots {
		assert.Less(t, s, uint32(n))
		assert.False(t, seen[s], "slot %d allocated twice", s)
		seen[s] = true
	}
}

func TestInteractAndRespond(t *testing.T) {
	l := newLedger(t, 1)
	user := newClient(t, l, wallet(0))
	oracleClient := newClient(t, l, responder)

	_, err := user.Interact(context.Background(), "hello")
	require.ErrorIs(t, err, vm.ErrNotFound)

	_, err = user.InitializeAgent(context.Background())
	require.NoError(t, err)
	_, err = user.Interact(context.Background(), "hello")
	require.NoError(t, err)

	interaction, err := user.Interaction()
	require.NoError(t, err)
	assert.Equal(t, "hello", interaction.Prompt)
	assert.Equal(t, oracle.StatusRecorded, interaction.Status)

	// Only the configured responder may answer.
	_, err = newClient(t, l, wallet(0)).Respond(context.Background(), wallet(0), `{"energy":1}`)
	require.ErrorIs(t, err, vm.ErrUnauthorized)

	_, err = oracleClient.Respond(context.Background(), wallet(0), `{"reply":"hey","energy":10,"happiness":20,"health":30}`)
	require.NoError(t, err)

	agent, err := user.Agent()
	require.NoError(t, err)
	assert.Equal(t, uint8(10), agent.Energy)
	assert.Equal(t, uint8(20), agent.Happiness)
	assert.Equal(t, uint8(30), agent.Health)

	_, err = oracleClient.Respond(context.Background(), wallet(0), "again")
	assert.ErrorIs(t, err, oracle.ErrAlreadyResponded)
}

func TestAirdrop(t *testing.T) {
	l := newLedger(t, 0)
	fresh := common.BytesToAddress([]byte{0xfe})
	c := newClient(t, l, fresh)

	bal, err := c.Balance()
	require.NoError(t, err)
	require.Zero(t, bal)

	_, err = c.Airdrop(context.Background(), 5000)
	require.NoError(t, err)
	bal, err = c.Balance()
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), bal)

	noFaucet := newClient(t, struct{ Backend }{l}, fresh)
	_, err = noFaucet.Airdrop(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNoFaucet)
}

func TestRemoteErrorUnwrap(t *testing.T) {
	err := error(&RemoteError{
		Code:   morphapi.ErrCodeConflict,
		Codes:  []string{morphapi.CodeStaleState, morphapi.CodeDependencyFailure, morphapi.CodeFailed},
	})
	assert.ErrorIs(t, err, vm.ErrStaleState)
	assert.ErrorIs(t, err, vm.ErrDependencyFailure)
	assert.False(t, errors.Is(err, vm.ErrNotFound))
	assert.Equal(t, vm.ClassRetry, vm.Classify(err))
}

func TestDial(t *testing.T) {
	_, err := Dial("ftp://localhost")
	assert.Error(t, err)
	b, err := Dial("http://localhost:8899/")
	require.NoError(t, err)
	b.Close()
}

func newRemoteNode(t *testing.T, config morphapi.Config) *RPCBackend {
	t.Helper()
	node, err := morph.New(&morphconfig.Config{
		Responder: responder,
		Funded: []morphconfig.FundedAccount{
			{Address: wallet(0), Lamports: params.LamportsPerSol},
			{Address: responder, Lamports: params.LamportsPerSol},
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { node.Close() })
	srv, err := morphapi.New(config, node.APIBackend)
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	backend, err := Dial(ts.URL)
	require.NoError(t, err)
	t.Cleanup(backend.Close)
	return backend
}

func TestRPCBackend(t *testing.T) {
	backend := newRemoteNode(t, morphapi.Config{Airdrop: true, AirdropMax: params.LamportsPerSol})
	user := newClient(t, backend, wallet(0))
	ctx := context.Background()

	_, err := user.Agent()
	require.ErrorIs(t, err, vm.ErrNotFound)

	alloc, err := user.InitializeAgent(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), alloc.Slot)

	fetched, err := backend.Receipt(ctx, alloc.Receipt.TxHash)
	require.NoError(t, err)
	assert.Equal(t, alloc.Receipt.Logs, fetched.Logs)

	receipt, err := user.send(ctx, ledger.NewInitializeAgentInstruction(wallet(0), 1))
	require.ErrorIs(t, err, vm.ErrAlreadyExists)
	assert.Equal(t, vm.ClassConflict, vm.Classify(err))
	require.NotNil(t, receipt)
	assert.False(t, receipt.Succeeded())

	_, err = user.Interact(ctx, "remote hello")
	require.NoError(t, err)
	_, err = newClient(t, backend, responder).Respond(ctx, wallet(0), `{"health":99}`)
	require.NoError(t, err)

	agent, err := user.Agent()
	require.NoError(t, err)
	assert.Equal(t, uint8(99), agent.Health)

	fresh := newClient(t, backend, common.BytesToAddress([]byte{0xfd}))
	_, err = fresh.Airdrop(ctx, 777)
	require.NoError(t, err)
	bal, err := fresh.Balance()
	require.NoError(t, err)
	assert.Equal(t, uint64(777), bal)
}

func TestRPCBackendErrors(t *testing.T) {
	backend := newRemoteNode(t, morphapi.Config{RateLimit: 0.001, RateBurst: 3})
	ctx := context.Background()

	acct, err := backend.Account(common.BytesToAddress([]byte{0xfe}))
	require.NoError(t, err)
	assert.Nil(t, acct)

	_, err = backend.Airdrop(ctx, wallet(0), 1)
	var rerr *RemoteError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, morphapi.ErrCodeForbidden, rerr.Code)
	assert.Equal(t, []string{morphapi.CodeForbidden}, rerr.Codes)

	_, err = backend.Receipt(ctx, common.Hash{0x01})
	require.ErrorIs(t, err, vm.ErrNotFound)

	// The bucket is empty now; the refusal happens before the RPC handler.
	_, err = backend.Receipt(ctx, common.Hash{0x02})
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, http.StatusTooManyRequests, rerr.Code)
	assert.Equal(t, []string{morphapi.CodeRateLimited}, rerr.Codes)
}
