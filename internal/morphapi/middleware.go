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

package morphapi

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

var (
	requestTimer     = metrics.NewRegisteredTimer("api/requests", nil)
	rateLimitedMeter = metrics.NewRegisteredMeter("api/ratelimited", nil)
)

type requestIDKey struct{}

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-Id"

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// withRequestID tags every request with an id, reusing the caller's if it
// sent one.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		requestTimer.UpdateSince(start)
		log.Debug("Served request", "id", requestID(r.Context()), "method", r.Method, "path", r.URL.Path,
			"status", rec.status, "elapsed", time.Since(start))
	})
}

// withRateLimit applies a token bucket per client address.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	if s.config.RateLimit <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter(s.clientIP(r)).Allow() {
			rateLimitedMeter.Mark(1)
			writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded", []string{CodeRateLimited})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) limiter(ip string) *rate.Limiter {
	if l, ok := s.visitors.Get(ip); ok {
		return l.(*rate.Limiter)
	}
	l := rate.NewLimiter(rate.Limit(s.config.RateLimit), s.config.RateBurst)
	// A concurrent request may have added one first; either limiter is fine.
	if prev, ok, _ := s.visitors.PeekOrAdd(ip, l); ok {
		return prev.(*rate.Limiter)
	}
	return l
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	if len(s.config.CorsOrigins) == 0 {
		return next
	}
	c := cors.New(cors.Options{
		AllowedOrigins: s.config.CorsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         600,
	})
	return c.Handler(next)
}

// clientIP returns the address a request is limited under. The
// X-Forwarded-For chain is only consulted when the peer is a trusted proxy,
// and then the nearest hop that is not itself a trusted proxy wins.
func (s *Server) clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if !s.trusted(host) {
		return host
	}
	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !s.trusted(hop) {
			return hop
		}
		host = hop
	}
	return host
}

func (s *Server) trusted(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, n := range s.proxies {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// parseProxies accepts plain addresses and CIDR ranges.
func parseProxies(entries []string) ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(entries))
	for _, entry := range entries {
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", entry)
			}
			bits := 8 * net.IPv4len
			if ip.To4() == nil {
				bits = 8 * net.IPv6len
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %v", entry, err)
		}
		nets = append(nets, n)
	}
	return nets, nil
}
