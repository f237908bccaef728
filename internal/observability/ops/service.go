// Package ops serves the operator HTTP endpoints: /healthz, /metrics and,
// when enabled, /debug/pprof.
package ops

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ffbot/internal/metrics"
	rtsup "ffbot/internal/runtime/supervisor"
	"ffbot/internal/watch"
	"ffbot/pkg/logx"
)

const (
	DefaultAddr        = "127.0.0.1:9090"
	DefaultMaxFailures = 3
)

type Config struct {
	Addr  string
	Token string
	Pprof bool
	// MaxFailures consecutive failed ticks make a watcher unhealthy.
	MaxFailures int
}

type HealthSource interface {
	Statuses() []watch.Status
}

type Deps struct {
	Log     logx.Logger
	Metrics *metrics.Recorder
	Health  HealthSource
	Now     func() time.Time
}

type Service struct {
	cfg  Config
	deps Deps
	log  logx.Logger

	mu       sync.Mutex
	sup      *rtsup.Supervisor
	boundURL string
}

func New(cfg Config, d Deps) *Service {
	if d.Log.IsZero() {
		d.Log = logx.Nop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = DefaultMaxFailures
	}
	return &Service{cfg: cfg, deps: d, log: d.Log.With(logx.String("comp", "ops"))}
}

// Handler builds the router. Every route requires the token when one is set.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.withAuth)

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", s.deps.Metrics.Handler())
	if s.cfg.Pprof {
		r.Mount("/debug", middleware.Profiler())
	}
	return r
}

type watcherHealth struct {
	Name                string    `json:"name"`
	Healthy             bool      `json:"healthy"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastAttempt         time.Time `json:"last_attempt"`
	LastSuccess         time.Time `json:"last_success"`
	LastError           string    `json:"last_error,omitempty"`
	Alerts              uint64    `json:"alerts"`
}

type healthBody struct {
	Status   string          `json:"status"`
	Time     time.Time       `json:"time"`
	Watchers []watcherHealth `json:"watchers"`
}

func (s *Service) healthz(w http.ResponseWriter, _ *http.Request) {
	body := healthBody{Status: "ok", Time: s.deps.Now().UTC(), Watchers: []watcherHealth{}}
	if s.deps.Health != nil {
		for _, st := range s.deps.Health.Statuses() {
			ok := st.Healthy(s.cfg.MaxFailures)
			if !ok {
				body.Status = "degraded"
			}
			body.Watchers = append(body.Watchers, watcherHealth{
				Name:                st.Name,
				Healthy:             ok,
				ConsecutiveFailures: st.ConsecutiveFailures,
				LastAttempt:         st.LastAttempt,
				LastSuccess:         st.LastSuccess,
				LastError:           st.LastError,
				Alerts:              st.Alerts,
			})
		}
	}
	code := http.StatusOK
	if body.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// withAuth accepts "Authorization: Bearer <token>" or ?token=<token>.
func (s *Service) withAuth(next http.Handler) http.Handler {
	tok := strings.TrimSpace(s.cfg.Token)
	if tok == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.URL.Query().Get("token")
		if got == "" {
			got = strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		}
		if got != tok {
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start serves in the background under a restart loop. It is idempotent.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sup != nil {
		return
	}
	s.sup = rtsup.New(ctx, rtsup.WithLogger(s.log), rtsup.WithCancelOnError(false))
	s.sup.GoRestart("ops.serve", s.serveOnce, rtsup.WithRestartBackoff(500*time.Millisecond, 10*time.Second))
}

func (s *Service) serveOnce(ctx context.Context) error {
	if s.cfg.Token == "" && !isLoopbackAddr(s.cfg.Addr) {
		s.log.Warn("ops server bound to a non-loopback address without a token", logx.String("addr", s.cfg.Addr))
	}
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		s.log.Error("ops listen failed", logx.String("addr", s.cfg.Addr), logx.Err(err))
		return err
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.mu.Lock()
	s.boundURL = "http://" + ln.Addr().String()
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		cctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = srv.Shutdown(cctx)
		cancel()
	}()

	s.log.Info("ops server started", logx.String("addr", ln.Addr().String()), logx.Bool("pprof", s.cfg.Pprof), logx.Bool("token_set", s.cfg.Token != ""))
	err = srv.Serve(ln)
	if ctx.Err() != nil {
		return context.Canceled
	}
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return errors.New("ops server exited unexpectedly")
	}
	return err
}

// URL is the bound base URL once serving, else "".
func (s *Service) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boundURL
}

func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	sup := s.sup
	s.sup, s.boundURL = nil, ""
	s.mu.Unlock()
	if sup == nil {
		return nil
	}
	// cancelling the supervisor shuts the server down inside serveOnce
	err := sup.Stop(ctx)
	s.log.Info("ops server stopped")
	return err
}

func isLoopbackAddr(addr string) bool {
	h, _, err := net.SplitHostPort(addr)
	if err != nil || strings.TrimSpace(h) == "" {
		return false
	}
	if strings.EqualFold(h, "localhost") {
		return true
	}
	ip := net.ParseIP(h)
	return ip != nil && ip.IsLoopback()
}
