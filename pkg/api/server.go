// Daily3Albums Unlock
// Copyright (c) 2026 The Daily3Albums Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Daily3Albums Unlock.
//
// Daily3Albums Unlock is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Daily3Albums Unlock is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Daily3Albums Unlock.  If not, see <http://www.gnu.org/licenses/>.

// Package api serves the engine state, manual retry, the debug override and
// a notification stream over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/daily3albums/unlock/pkg/api/middleware"
	"github.com/daily3albums/unlock/pkg/api/models"
	"github.com/daily3albums/unlock/pkg/clock"
	"github.com/daily3albums/unlock/pkg/config"
	"github.com/daily3albums/unlock/pkg/service"
	"github.com/daily3albums/unlock/pkg/service/freshness"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jonboulle/clockwork"
	"github.com/olahol/melody"
	"github.com/rs/zerolog/log"
)

const (
	RequestTimeout  = 10 * time.Second
	shutdownTimeout = 5 * time.Second
	maxBodyBytes    = 4 << 10
	notifyBuffer    = 100
)

// Backend is the engine surface the API exposes.
type Backend interface {
	State() service.State
	Sample() clock.Sample
	RetryNow() (joined bool, state freshness.Connectivity)
	InitOverride(query url.Values) error
	Override() *string
	SetOverride(value *string) error
	ShiftOverride(delta time.Duration) (string, error)
}

// Notifier is the notification source for /api/notifications.
type Notifier interface {
	Subscribe(bufferSize int) (<-chan models.Notification, int)
	Unsubscribe(id int)
	Latest(method string) (models.Notification, bool)
}

type Options struct {
	Clock          clockwork.Clock
	AllowedOrigins []string
	RetryInterval  time.Duration
	RetryBurst     int
}

type Server struct {
	backend  Backend
	notifier Notifier
	melody   *melody.Melody
	limiter  *middleware.IPRateLimiter
	router   chi.Router
	origins  []string
}

//nolint:gocritic // options struct copied once at construction
func NewServer(backend Backend, notifier Notifier, opts Options) *Server {
	s := &Server{
		backend:  backend,
		notifier: notifier,
		melody:   melody.New(),
		limiter:  middleware.NewIPRateLimiter(opts.Clock, opts.RetryInterval, opts.RetryBurst),
		origins:  opts.AllowedOrigins,
	}
	s.melody.Upgrader.CheckOrigin = s.checkOrigin
	s.melody.HandleConnect(s.handleConnect)
	s.melody.HandleMessage(handleWSMessage)
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins(),
		AllowedMethods: []string{"GET", "PUT", "POST", "DELETE"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}))

	r.Get("/api/notifications", func(w http.ResponseWriter, r *http.Request) {
		if err := s.melody.HandleRequest(w, r); err != nil {
			log.Error().Err(err).Msg("handling websocket request")
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(chimw.NoCache)
		r.Use(chimw.Timeout(RequestTimeout))

		r.Get("/api/state", s.handleState)
		r.With(middleware.HTTPRateLimitMiddleware(s.limiter)).
			Post("/api/retry", s.handleRetry)

		r.Route("/api/override", func(r chi.Router) {
			r.Get("/", s.handleGetOverride)
			r.Put("/", s.handleSetOverride)
			r.Delete("/", s.handleClearOverride)
			r.Post("/shift", s.handleShiftOverride)
		})
	})

	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) corsOrigins() []string {
	if len(s.origins) == 0 {
		return []string{"https://*", "http://*"}
	}
	return s.origins
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(s.origins) == 0 {
		return true
	}
	return slices.Contains(s.origins, origin)
}

// Run serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: RequestTimeout,
	}

	go s.broadcastNotifications(ctx)
	s.limiter.StartCleanup(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		_ = s.melody.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("api: shutting down")
	if err := s.melody.Close(); err != nil {
		log.Debug().Err(err).Msg("api: error closing websocket sessions")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}

// Start serves the API for svc on the configured address until ctx is
// cancelled.
func Start(ctx context.Context, cfg *config.Instance, svc *service.Service) error {
	ln, err := net.Listen("tcp", cfg.Listen())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Listen(), err)
	}
	log.Info().Msgf("api: listening on %s", ln.Addr())

	srv := NewServer(svc, svc.Broker(), Options{
		AllowedOrigins: cfg.AllowedOrigins(),
		RetryInterval:  cfg.RetryInterval(),
		RetryBurst:     cfg.RetryBurst(),
	})
	return srv.Run(ctx, ln)
}
