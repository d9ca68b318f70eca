package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"council-vote/internal/domain/ballot"
	"council-vote/internal/domain/motion"
	"council-vote/internal/domain/notification"
	"council-vote/internal/domain/operator"
	jwtpkg "council-vote/internal/platform/jwt"
	"council-vote/internal/worker"
)

// Pinger reports storage readiness.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Deps struct {
	Motions       *motion.Service
	Ballots       *ballot.Service
	Notifications *notification.Service
	Operators     *operator.Service
	Sweeper       *worker.Sweeper
	Delivery      *worker.Delivery
	// Mailer sends voter invitations.
	Mailer   ballot.Sender
	JWT      *jwtpkg.Manager
	TokenTTL time.Duration
	BaseURL  string
	DB       Pinger
	// Redis is checked by /ready when set.
	Redis Pinger

	VoteRatePerMinute int
	VoteBurst         int
	DeliveryBatchSize int
}

type Handler struct {
	motionSvc       *motion.Service
	ballotSvc       *ballot.Service
	notificationSvc *notification.Service
	operatorSvc     *operator.Service
	sweeper         *worker.Sweeper
	delivery        *worker.Delivery
	mailer          ballot.Sender
	jwtMgr          *jwtpkg.Manager
	tokenTTL        time.Duration
	baseURL         string
	batchSize       int
	db              Pinger
	redis           Pinger
}

func NewRouter(d Deps) http.Handler {
	h := &Handler{
		motionSvc:       d.Motions,
		ballotSvc:       d.Ballots,
		notificationSvc: d.Notifications,
		operatorSvc:     d.Operators,
		sweeper:         d.Sweeper,
		delivery:        d.Delivery,
		mailer:          d.Mailer,
		jwtMgr:          d.JWT,
		tokenTTL:        d.TokenTTL,
		baseURL:         d.BaseURL,
		batchSize:       d.DeliveryBatchSize,
		db:              d.DB,
		redis:           d.Redis,
	}
	if h.tokenTTL <= 0 {
		h.tokenTTL = 12 * time.Hour
	}
	votesPerMinute, burst := d.VoteRatePerMinute, d.VoteBurst
	if votesPerMinute <= 0 {
		votesPerMinute = 10
	}
	if burst <= 0 {
		burst = 3
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(RequestLogger)
	r.Use(CORSMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/ready", h.handleReady)
	r.Get("/swagger/*", httpSwagger.WrapHandler)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", h.handleLogin)

		r.Get("/motions/{id}", h.handleGetMotion)
		r.Get("/motions/{id}/results", h.handleResults)
		r.With(RateLimitVotes(rate.Every(time.Minute/time.Duration(votesPerMinute)), burst)).
			Post("/motions/{id}/vote", h.handleVote)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(h.jwtMgr))
			r.Use(RequireRole(operator.RoleAdmin))

			r.Get("/motions", h.handleListMotions)
			r.Post("/motions", h.handleCreateMotion)
			r.Patch("/motions/{id}/status", h.handleAdvanceMotion)
			r.Put("/motions/{id}/outcome", h.handleSetOutcome)

			r.Get("/motions/{id}/tokens", h.handleListTokens)
			r.Post("/motions/{id}/tokens", h.handleIssueTokens)
			r.Post("/motions/{id}/invitations", h.handleSendInvitations)
			r.Post("/tokens/{id}/revoke", h.handleRevokeToken)

			r.Get("/motions/{id}/notification", h.handleGetNotification)
			r.Post("/motions/{id}/notification", h.handleEnsureNotification)
			r.Post("/motions/{id}/notification/renotify", h.handleRenotify)

			r.Get("/admin/motions/{id}/results", h.handleAdminResults)
			r.Post("/admin/notifications/backfill", h.handleBackfill)
			r.Post("/admin/sweep", h.handleSweep)
			r.Post("/admin/deliver", h.handleDeliver)
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseIDParam(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

// handleReady pings every configured backend and reports each result.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	ready := true
	for name, p := range map[string]Pinger{"database": h.db, "redis": h.redis} {
		switch {
		case p == nil && name == "database":
			checks[name], ready = "not configured", false
		case p == nil:
			continue
		case p.PingContext(ctx) != nil:
			checks[name], ready = "unavailable", false
		default:
			checks[name] = "ok"
		}
	}

	if !ready {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "not_ready", "checks": checks})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready", "checks": checks})
}
