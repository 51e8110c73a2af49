// Package pprof serves the runtime profiling endpoints on an optional,
// auth-guarded HTTP listener.
package pprof

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	hpprof "net/http/pprof"
	"strings"
	"sync"
	"time"

	logx "dexsignal/pkg/logx"
)

type Config struct {
	Enabled bool
	Addr    string
	Token   string
	// AllowInsecure permits a tokenless non-loopback bind.
	AllowInsecure bool
}

type Service struct {
	mu  sync.Mutex
	cfg Config
	log logx.Logger

	ln  net.Listener
	srv *http.Server
}

func New(cfg Config, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{cfg: cfg, log: log}
}

// Start binds the listener and serves in the background. Disabled
// config is a no-op.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cfg.Enabled || s.srv != nil {
		return nil
	}

	addr := strings.TrimSpace(s.cfg.Addr)
	if addr == "" {
		addr = "127.0.0.1:6060"
	}
	// Refuse an unauthenticated public bind unless explicitly allowed.
	if !s.cfg.AllowInsecure && s.cfg.Token == "" && !isLoopbackAddr(addr) {
		return fmt.Errorf("refusing non-loopback bind %q without token or allow_insecure", addr)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("pprof listen: %w", err)
	}

	mux := http.NewServeMux()
	wrap := func(h http.HandlerFunc) http.HandlerFunc { return withToken(s.cfg.Token, h) }
	mux.HandleFunc("/healthz", wrap(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	mux.HandleFunc("/debug/pprof/", wrap(hpprof.Index))
	mux.HandleFunc("/debug/pprof/cmdline", wrap(hpprof.Cmdline))
	mux.HandleFunc("/debug/pprof/profile", wrap(hpprof.Profile))
	mux.HandleFunc("/debug/pprof/symbol", wrap(hpprof.Symbol))
	mux.HandleFunc("/debug/pprof/trace", wrap(hpprof.Trace))

	// WriteTimeout stays 0 so long-running /profile captures work.
	srv := &http.Server{
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: time.Minute,
	}
	s.ln = ln
	s.srv = srv

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Warn("pprof server exited", logx.Err(err))
		}
	}()

	s.log.Info("pprof started",
		logx.String("addr", ln.Addr().String()),
		logx.Bool("token_set", s.cfg.Token != ""))
	return nil
}

func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	srv := s.srv
	ln := s.ln
	s.srv = nil
	s.ln = nil
	s.mu.Unlock()

	if srv != nil {
		_ = srv.Shutdown(ctx)
		_ = srv.Close()
	}
	if ln != nil {
		_ = ln.Close()
	}
}

// withToken accepts either "Authorization: Bearer <token>" or a
// ?token= query param; an empty configured token disables the check.
func withToken(token string, h http.HandlerFunc) http.HandlerFunc {
	tok := strings.TrimSpace(token)
	if tok == "" {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("token"); got == tok && got != "" {
			h(w, r)
			return
		}
		if ah := r.Header.Get("Authorization"); strings.HasPrefix(ah, "Bearer ") &&
			strings.TrimSpace(strings.TrimPrefix(ah, "Bearer ")) == tok {
			h(w, r)
			return
		}
		w.Header().Set("WWW-Authenticate", "Bearer")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}
}

func isLoopbackAddr(addr string) bool {
	h, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	h = strings.TrimSpace(h)
	if h == "" {
		return false
	}
	if strings.EqualFold(h, "localhost") {
		return true
	}
	ip := net.ParseIP(h)
	return ip != nil && ip.IsLoopback()
}
