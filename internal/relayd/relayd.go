/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package relayd assembles the corkd daemon: the websocket hub, the
// health and version endpoints, and a resident GM peer that applies
// routed mutations into the shared store so boards persist server-side
// even when no desktop GM is connected.
package relayd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"corkboard/internal/config"
	applog "corkboard/internal/log"
	"corkboard/internal/relay"
	"corkboard/internal/store"
	"corkboard/internal/version"
)

// ResidentUser is the user id under which the daemon joins its own hub.
const ResidentUser = "corkd"

// Daemon-only environment variables. The store DSN and data dir come
// from the shared config package.
const (
	EnvAddr        = "CKB_ADDR"
	EnvRelaySecret = "CKB_RELAY_SECRET"
	EnvHostGM      = "CKB_HOST_GM"
)

// Config holds the daemon configuration.
type Config struct {
	Addr     string // http bind address, e.g. ":8750"
	StoreDSN string
	Secret   string // join token secret; empty leaves the hub open
	HostGM   bool   // run the resident authoritative peer

	// OnReady, when set, receives the bound listen address once the
	// daemon is accepting. Tests use it to learn the port.
	OnReady func(net.Addr)
}

// LoadConfig resolves the daemon configuration from the environment on
// top of the shared config file. PORT is honored for platforms that
// inject it; CKB_ADDR wins over both.
func LoadConfig() Config {
	cfg := Config{Addr: ":8750", StoreDSN: "memory", HostGM: true}
	if app, _, err := config.Load(); err == nil {
		dataDir, _ := config.DataDir()
		cfg.StoreDSN = app.Store.ResolveDSN(dataDir)
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Addr = ":" + v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Addr = v
	}
	cfg.Secret = os.Getenv(EnvRelaySecret)
	if v := strings.TrimSpace(os.Getenv(EnvHostGM)); v != "" {
		cfg.HostGM = !strings.EqualFold(v, "false") && v != "0"
	}
	return cfg
}

// Start runs the daemon until ctx is cancelled or the listener fails.
func Start(ctx context.Context, cfg Config) error {
	l := applog.WithComponent("relayd")

	st, err := store.Open(ctx, cfg.StoreDSN)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			l.Warn("store close", "error", err)
		}
	}()

	hub := relay.NewHub()
	if cfg.Secret != "" {
		hub.Authenticate = Authenticator(cfg.Secret)
	} else {
		l.Info("token auth disabled; set " + EnvRelaySecret + " to require join tokens")
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}
	srv := &http.Server{Handler: newMux(st, hub)}
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()
	l.Info("relay listening",
		"addr", ln.Addr().String(),
		"store", describeDSN(cfg.StoreDSN),
		"auth", cfg.Secret != "",
		"resident_gm", cfg.HostGM)

	if cfg.HostGM {
		sock, svc, err := hostGM(ctx, ln.Addr(), st, cfg.Secret)
		if err != nil {
			_ = srv.Close()
			return fmt.Errorf("resident GM: %w", err)
		}
		defer sock.Close()
		defer svc.Close()
	}
	if cfg.OnReady != nil {
		cfg.OnReady(ln.Addr())
	}

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	l.Info("relay stopped")
	return nil
}

// newMux wires the daemon's HTTP surface: the hub upgrade plus probe and
// version endpoints.
func newMux(st store.Store, hub *relay.Hub) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := st.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("store not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	mux.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(version.String()))
	})
	return mux
}

// hostGM joins the daemon's own hub as the authoritative peer. It uses
// the public protocol end to end, so the resident GM behaves exactly
// like a desktop GM would.
func hostGM(ctx context.Context, addr net.Addr, st store.Store, secret string) (*relay.WSSocket, *relay.Service, error) {
	tcp, ok := addr.(*net.TCPAddr)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected listener address %T", addr)
	}
	url := fmt.Sprintf("ws://127.0.0.1:%d/ws", tcp.Port)

	var opts relay.DialOptions
	if secret != "" {
		tok, err := SignToken(secret, ResidentUser, true, time.Now().Add(24*time.Hour))
		if err != nil {
			return nil, nil, err
		}
		opts.Token = tok
	}
	ident := relay.Identity{UserID: ResidentUser, IsGM: true}
	sock, err := relay.DialWith(ctx, url, ident, opts)
	if err != nil {
		return nil, nil, err
	}
	svc := relay.NewService(sock, st, ident)
	svc.Register()
	return sock, svc, nil
}

// describeDSN reduces a DSN to a loggable label; postgres URLs carry
// credentials and are never logged verbatim.
func describeDSN(dsn string) string {
	switch {
	case dsn == "" || dsn == "memory" || dsn == "memory://":
		return "memory"
	case strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://"):
		return "postgres"
	default:
		return "sqlite:" + dsn
	}
}
