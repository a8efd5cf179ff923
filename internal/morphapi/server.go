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

// Package morphapi serves the ledger over JSON-RPC on HTTP.
package morphapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
	lru "github.com/hashicorp/golang-lru"
	"github.com/julienschmidt/httprouter"
	"github.com/probechain/go-morph/common"
	"github.com/probechain/go-morph/core/types"
	"github.com/probechain/go-morph/morph"
	ledger "github.com/probechain/go-morph/programs/morph"
)

// Backend is the ledger the server exposes. It is implemented by
// morph.PublicLedgerAPI.
type Backend interface {
	SendTransaction(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
	GetReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	GetAccount(ctx context.Context, addr common.Address) (*morph.AccountResult, error)
	GetCounter(ctx context.Context) (*morph.CounterResult, error)
	GetAgent(ctx context.Context, wallet common.Address) (*morph.AgentResult, error)
	GetInteraction(ctx context.Context, wallet common.Address) (*morph.InteractionResult, error)
	GetMint(ctx context.Context) (*ledger.Mint, error)
	Airdrop(ctx context.Context, addr common.Address, lamports uint64) (*types.Receipt, error)
	Respond(ctx context.Context, wallet common.Address, response string, nonce uint64) (*types.Receipt, error)
}

// Server is the HTTP front of a ledger node.
type Server struct {
	config   Config
	backend  Backend
	rpc      *rpc.Server
	router   *httprouter.Router
	handler  http.Handler
	visitors *lru.Cache // client address -> *rate.Limiter
	proxies  []*net.IPNet

	srv      *http.Server
	listener net.Listener
}

// New creates a server with the morph namespace registered.
func New(config Config, backend Backend) (*Server, error) {
	if err := common.ValidateNil(backend, "backend"); err != nil {
		return nil, err
	}
	proxies, err := parseProxies(config.TrustedProxies)
	if err != nil {
		return nil, err
	}
	visitors, err := lru.New(maxVisitors)
	if err != nil {
		return nil, err
	}
	s := &Server{
		config:   config,
		backend:  backend,
		rpc:      rpc.NewServer(),
		router:   httprouter.New(),
		visitors: visitors,
		proxies:  proxies,
	}
	for _, api := range s.APIs() {
		if err := s.rpc.RegisterName(api.Namespace, api.Service); err != nil {
			return nil, err
		}
	}
	s.routes()
	s.handler = s.withCORS(s.withRequestID(s.withLogging(s.withRateLimit(s.router))))
	return s, nil
}

// APIs returns the JSON-RPC services the server offers.
func (s *Server) APIs() []rpc.API {
	return []rpc.API{{
		Namespace: "morph",
		Service:   &PublicMorphAPI{config: s.config, backend: s.backend},
	}}
}

func (s *Server) routes() {
	s.router.Handler(http.MethodPost, "/", s.rpc)
	s.router.GET("/health", s.handleHealth)

	s.router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "no such endpoint", nil)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Start begins serving on the configured address and returns the address
// actually bound.
func (s *Server) Start() (net.Addr, error) {
	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return nil, err
	}
	s.listener = listener
	s.srv = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		if err := s.srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", "err", err)
		}
	}()
	log.Info("HTTP server started", "endpoint", listener.Addr(), "cors", s.config.CorsOrigins, "faucet", s.config.Airdrop)
	return listener.Addr(), nil
}

// Stop shuts the server down, waiting for in-flight requests until ctx ends.
func (s *Server) Stop(ctx context.Context) error {
	defer s.rpc.Stop()
	if s.srv == nil {
		return nil
	}
	defer log.Info("HTTP server stopped", "endpoint", s.listener.Addr())
	return s.srv.Shutdown(ctx)
}
