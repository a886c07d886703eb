// Package api is the HTTP surface: style transforms, per-user history and
// account signup/signin.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/KK-2k06/DreamInk/auth"
	"github.com/KK-2k06/DreamInk/core"
	"github.com/KK-2k06/DreamInk/db"
	"github.com/KK-2k06/DreamInk/stylize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Transformer runs style transforms. *stylize.Service satisfies it.
type Transformer interface {
	Transform(ctx context.Context, req stylize.Request) (stylize.Result, error)
}

// HistoryService lists and deletes history rows. *stylize.Service satisfies it.
type HistoryService interface {
	History(ctx context.Context, userID int64) ([]db.HistoryRecord, error)
	DeleteHistory(ctx context.Context, id int64) error
}

// Accounts creates and authenticates users. *auth.Service satisfies it.
type Accounts interface {
	CreateAccount(ctx context.Context, in auth.Signup) (auth.Account, error)
	Authenticate(ctx context.Context, email, password string) (auth.Account, error)
}

// Config holds the transport settings.
type Config struct {
	// MaxUploadBytes bounds the multipart body of a style request.
	MaxUploadBytes int64
	// RequestTimeout is applied to every request context.
	RequestTimeout time.Duration
	// Signin throttles failed sign-ins per client IP.
	Signin core.AttemptPolicy
}

const maxJSONBody = 1 << 20

// Server wires the handlers to their services.
type Server struct {
	cfg      Config
	styles   Transformer
	history  HistoryService
	accounts Accounts
	stats    StatsSource
	limiter  *RateLimiter
	logger   *zap.Logger
}

// NewServer creates a Server. A nil styles runs the server in auth-only
// mode: style requests answer 503 while history and accounts keep working.
func NewServer(cfg Config, styles Transformer, history HistoryService, accounts Accounts, logger *zap.Logger) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20 << 20
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 5 * time.Minute
	}
	return &Server{
		cfg:      cfg,
		styles:   styles,
		history:  history,
		accounts: accounts,
		limiter:  NewRateLimiter(cfg.Signin),
		logger:   logger,
	}
}

// WithStats exposes src on GET /api/stats.
func (s *Server) WithStats(src StatsSource) *Server {
	s.stats = src
	return s
}

// Limiter returns the sign-in limiter so its cleanup can be scheduled.
func (s *Server) Limiter() *RateLimiter { return s.limiter }

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "ngrok-skip-browser-warning"},
		MaxAge:         300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.NotFound(RestHandler(s.logger, func(*http.Request) (any, error) {
		return nil, CodedErrorf(http.StatusNotFound, "Not found")
	}))
	r.MethodNotAllowed(RestHandler(s.logger, func(*http.Request) (any, error) {
		return nil, CodedErrorf(http.StatusMethodNotAllowed, "Method not allowed")
	}))

	r.Get("/", RestHandler(s.logger, func(*http.Request) (any, error) {
		return messageBody{Message: "DreamInk Modular Backend is Live!"}, nil
	}))

	r.Route("/api", func(r chi.Router) {
		r.With(bodyLimit(s.cfg.MaxUploadBytes)).Post("/style/{style}", RestHandler(s.logger, s.Stylize))

		r.Get("/history/{userId:[0-9]+}", RestHandler(s.logger, s.ListHistory))
		r.Delete("/history/{historyId:[0-9]+}", RestHandler(s.logger, s.DeleteHistory))
		r.Get("/stats", RestHandler(s.logger, s.Stats))

		r.Group(func(r chi.Router) {
			r.Use(bodyLimit(maxJSONBody))
			r.Post("/signup", RestHandler(s.logger, s.Signup))
			r.Post("/signin", RestHandler(s.logger, s.Signin))
		})
	})

	return r
}
