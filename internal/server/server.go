package server

import (
	"fmt"
	"net/http"

	"github.com/brk3/habitbattles/internal/config"
	"github.com/brk3/habitbattles/internal/engine"
	"github.com/brk3/habitbattles/internal/logger"
	"github.com/brk3/habitbattles/internal/storage"
	"github.com/brk3/habitbattles/pkg/calendar"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/securecookie"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/oauth2"
)

type AuthProvider struct {
	name       string
	oauth2     *oauth2.Config
	oidcProv   *oidc.Provider
	idVerifier *oidc.IDTokenVerifier
	state      *StateStore
}

type Server struct {
	cfg           *config.Config
	store         storage.Store
	engine        *engine.Engine
	authProviders map[string]*AuthProvider
	sessionCookie *securecookie.SecureCookie
	clock         *calendar.Clock
}

type Option func(*Server)

// WithClock replaces the clock built from cfg.DefaultTimezone.
func WithClock(c *calendar.Clock) Option {
	return func(s *Server) { s.clock = c }
}

func New(cfg *config.Config, store storage.Store, opts ...Option) (*Server, error) {
	s := &Server{cfg: cfg, store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		clock, err := calendar.NewClock(cfg.DefaultTimezone)
		if err != nil {
			return nil, err
		}
		s.clock = clock
	}
	s.engine = engine.New(store, s.clock)

	if cfg.AuthEnabled {
		providers, cookie, err := ConfigureOIDCProviders(cfg)
		if err != nil {
			return nil, fmt.Errorf("configure auth: %w", err)
		}
		s.authProviders = providers
		s.sessionCookie = cookie
	} else {
		logger.Warn("Authentication disabled, all requests act as the anonymous user")
	}
	return s, nil
}

// Engine exposes the engine the server's handlers use.
func (s *Server) Engine() *engine.Engine { return s.engine }

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	r.Get("/version", s.getVersionInfo)
	r.Handle("/metrics", promhttp.Handler())

	if s.cfg.AuthEnabled {
		r.Route("/auth", func(r chi.Router) {
			r.Get("/login", s.simpleLogin)
			r.Get("/login/{id}", s.login)
			r.Get("/callback/{id}", s.callback)
			r.Post("/logout", s.logout)
			r.Group(func(r chi.Router) {
				r.Use(s.authMiddleware)
				r.Post("/api_keys", s.generateAPIKey)
				r.Get("/api_keys", s.listAPIKeys)
				r.Delete("/api_keys/{prefix}", s.deleteAPIKey)
			})
		})
	}

	r.Group(func(r chi.Router) {
		if s.cfg.AuthEnabled {
			r.Use(s.authMiddleware)
		}
		r.Use(s.userAwareMetricsMiddleware)
		r.Use(timezoneMiddleware)

		r.Route("/habits", func(r chi.Router) {
			r.Get("/", s.listHabits)
			r.Post("/", s.createHabit)
			r.Get("/{habit_id}", s.getHabit)
			r.Patch("/{habit_id}", s.updateHabit)
			r.Delete("/{habit_id}", s.deleteHabit)
			r.Post("/{habit_id}/checkins", s.checkIn)
			r.Get("/{habit_id}/summary", s.getHabitSummary)
		})
		r.Route("/stats", func(r chi.Router) {
			r.Get("/quota", s.getQuotaStats)
			r.Get("/streak", s.getStreak)
		})
		r.Get("/calendar", s.getCalendar)
	})
	return r
}
