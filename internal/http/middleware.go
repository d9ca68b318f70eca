package api

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	"council-vote/internal/domain/operator"
	"council-vote/internal/metrics"
	"council-vote/internal/platform/apperr"
	jwtpkg "council-vote/internal/platform/jwt"
)

type ctxKey string

const ctxKeyOperator ctxKey = "operator"

var httpLogger = zap.NewNop()

func SetLogger(l *zap.Logger) {
	if l != nil {
		httpLogger = l
	}
}

func zapError(err error) zap.Field {
	if appErr, ok := err.(*apperr.AppError); ok && appErr.Err != nil {
		return zap.Error(appErr.Err)
	}
	return zap.Error(err)
}

// AuthMiddleware resolves the bearer token into the calling operator.
func AuthMiddleware(jm *jwtpkg.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
			if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
				errorResponse(w, apperr.Unauthorized("missing_token", "bearer token required", nil))
				return
			}

			claims, err := jm.Parse(token)
			if err != nil {
				errorResponse(w, apperr.Unauthorized("invalid_token", "invalid token", err))
				return
			}

			op := &operator.Operator{Username: claims.Subject, Role: claims.Role}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyOperator, op)))
		})
	}
}

func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if op := operatorFromCtx(r); op == nil || op.Role != role {
				errorResponse(w, apperr.Forbidden("forbidden", "insufficient permissions", nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func operatorFromCtx(r *http.Request) *operator.Operator {
	op, _ := r.Context().Value(ctxKeyOperator).(*operator.Operator)
	return op
}

// actor names the operator behind a request for audit log fields.
func actor(r *http.Request) string {
	if op := operatorFromCtx(r); op != nil {
		return op.Username
	}
	return "anonymous"
}

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimitVotes bounds ballot submissions per client address and motion.
func RateLimitVotes(limit rate.Limit, burst int) func(http.Handler) http.Handler {
	limiter := newVoteLimiter(limit, burst, 10*time.Minute)
	retryAfter := "1"
	if limit > 0 {
		retryAfter = strconv.Itoa(int(math.Ceil(1/float64(limit) - 1e-9)))
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r) + "|" + chi.URLParam(r, "id")
			if !limiter.allow(key, time.Now()) {
				metrics.IncVote("rate_limited")
				w.Header().Set("Retry-After", retryAfter)
				errorResponse(w, apperr.TooManyRequests("rate_limited", "too many ballot submissions, try again shortly", nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(rw, r)

		status := rw.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		metrics.IncRequest(r.Method, route, status)

		level := zapcore.InfoLevel
		switch {
		case status >= 500:
			level = zapcore.ErrorLevel
		case status >= 400:
			level = zapcore.WarnLevel
		}
		if ce := httpLogger.Check(level, "request"); ce != nil {
			ce.Write(
				zap.String("request_id", chimw.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Int("bytes", rw.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		}
	})
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// voteLimiter keeps one token bucket per key and drops idle buckets.
type voteLimiter struct {
	mu        sync.Mutex
	entries   map[string]*limiterEntry
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
}

func newVoteLimiter(limit rate.Limit, burst int, idleTTL time.Duration) *voteLimiter {
	return &voteLimiter{
		entries: make(map[string]*limiterEntry),
		limit:   limit,
		burst:   burst,
		idleTTL: idleTTL,
	}
}

func (l *voteLimiter) allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > time.Minute {
		for k, e := range l.entries {
			if now.Sub(e.lastSeen) > l.idleTTL {
				delete(l.entries, k)
			}
		}
		l.lastSweep = now
	}

	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// clientIP expects chi's RealIP middleware to have normalised RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
