package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/mrcapitals/fundledger-backend/internal/domain"
	"github.com/mrcapitals/fundledger-backend/internal/usecase/audit"
	"github.com/mrcapitals/fundledger-backend/internal/usecase/ledger"
	"github.com/mrcapitals/fundledger-backend/internal/usecase/nav"
	"github.com/mrcapitals/fundledger-backend/internal/usecase/registry"
	"github.com/mrcapitals/fundledger-backend/internal/usecase/report"
)

// Services bundles the use cases the HTTP layer exposes
type Services struct {
	Ledger   *ledger.Service
	Nav      *nav.Service
	Report   *report.Service
	Registry *registry.Service
	Audit    *audit.Service
}

// Options carries the transport-level configuration of the router
type Options struct {
	CORSOrigins []string
	JWTSecret   string
	DevMode     bool
	DevUserID   int64

	RatePerSecond float64
	RateBurst     int
}

type handler struct {
	svc    Services
	logger zerolog.Logger
}

// NewRouter builds the HTTP API router. Every endpoint except health sits
// behind the rate limiter and the authenticator; mutations additionally
// require an admin caller.
func NewRouter(svc Services, users domain.UserRepository, opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	h := &handler{svc: svc, logger: logger.With().Str("component", "http").Logger()}
	auth := NewAuthenticator(users, opts.JWTSecret, opts.DevMode, opts.DevUserID, logger)
	limiter := NewRateLimiter(opts.RatePerSecond, opts.RateBurst)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", h.health)

		api.Group(func(api chi.Router) {
			api.Use(limiter.Middleware)
			api.Use(auth.Authenticate)

			api.Get("/me", h.me)

			// Users and accounts
			api.With(RequireAdmin).Post("/users", h.createUser)
			api.With(RequireAdmin).Get("/users", h.listUsers)
			api.With(RequireAdmin).Post("/accounts", h.createAccount)
			api.Get("/users/{userID}/accounts", h.listUserAccounts)

			// Funds and NAV history
			api.Get("/funds", h.listFunds)
			api.With(RequireAdmin).Post("/funds", h.createFund)
			api.Get("/funds/performance", h.allFundPerformance)
			api.Get("/funds/latest-navs", h.latestNavs)
			api.Get("/funds/{fundID}/performance", h.fundPerformance)
			api.Get("/funds/{fundID}/navs", h.listNavs)
			api.With(RequireAdmin).Post("/funds/{fundID}/navs", h.appendNav)
			api.With(RequireAdmin).Post("/funds/{fundID}/navs/recompute-deltas", h.recomputeNavDeltas)

			// Movements and positions
			api.With(RequireAdmin).Post("/accounts/{accountID}/cash-movements", h.createCashMovement)
			api.Get("/accounts/{accountID}/cash-movements", h.listCashMovements)
			api.With(RequireAdmin).Post("/accounts/{accountID}/fund-share-movements", h.createFundShareMovement)
			api.Get("/accounts/{accountID}/fund-share-movements", h.listFundShareMovements)
			api.Get("/accounts/{accountID}/positions", h.listPositions)
			api.Get("/accounts/{accountID}/positions/{fundID}", h.getPosition)
			api.With(RequireAdmin).Get("/cash-movements/{id}", h.getCashMovement)
			api.With(RequireAdmin).Get("/fund-share-movements/{id}", h.getFundShareMovement)

			// Reports
			api.With(RequireAdmin).Get("/reports/cash-share", h.cashShareReport)
			api.Get("/reports/account-summaries", h.accountSummaries)

			// Audit trail
			api.With(RequireAdmin).Get("/audit/{entityType}/{entityID}", h.entityTrail)
			api.With(RequireAdmin).Get("/audit/actors/{userID}", h.actorTrail)
		})
	})

	return r
}

// requestLogger emits one structured line per request
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request")
		})
	}
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// authorizeAccount lets admins through and otherwise requires the account to
// belong to the caller.
func (h *handler) authorizeAccount(r *http.Request, accountID int64) error {
	user, ok := UserFromContext(r.Context())
	if !ok {
		return errForbidden
	}
	if user.IsAdmin {
		return nil
	}
	account, err := h.svc.Registry.GetAccount(r.Context(), accountID)
	if err != nil {
		return err
	}
	if account.UserID != user.ID {
		return fmt.Errorf("account %d: %w", accountID, errForbidden)
	}
	return nil
}

// actorID returns the caller's user id for audit attribution
func actorID(r *http.Request) *int64 {
	user, ok := UserFromContext(r.Context())
	if !ok {
		return nil
	}
	return &user.ID
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s in path: %w", name, domain.ErrValidation)
	}
	return id, nil
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %v: %w", err, domain.ErrValidation)
	}
	return nil
}

// parseTimestamp parses an RFC 3339 query parameter, empty meaning unset
func parseTimestamp(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// queryLimit parses the optional ?limit= parameter; zero means unlimited
func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("invalid limit %q: %w", raw, domain.ErrValidation)
	}
	return limit, nil
}
