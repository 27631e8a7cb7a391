package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/AlibekovAA/snapfeed/internal/common/constants"
	"github.com/AlibekovAA/snapfeed/internal/common/httpmetrics"
	"github.com/AlibekovAA/snapfeed/internal/observability/metrics"
)

type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

type LimitRule struct {
	Name              string
	RequestsPerSecond float64
	Burst             int
}

type LimiterFactory func(rule LimitRule) Limiter

var (
	SigninRule  = LimitRule{Name: "signin", RequestsPerSecond: constants.RateLimitSigninRequestsPerSecond, Burst: constants.RateLimitSigninBurst}
	SignupRule  = LimitRule{Name: "signup", RequestsPerSecond: constants.RateLimitSignupRequestsPerSecond, Burst: constants.RateLimitSignupBurst}
	UploadRule  = LimitRule{Name: "upload", RequestsPerSecond: constants.RateLimitUploadRequestsPerSecond, Burst: constants.RateLimitUploadBurst}
	GeneralRule = LimitRule{Name: "general", RequestsPerSecond: constants.RateLimitGeneralRequestsPerSecond, Burst: constants.RateLimitGeneralBurst}
)

// RateLimiter is an in-process token bucket per client key.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
	cleanup  *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
}

func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
		cleanup:  time.NewTicker(constants.RateLimitCleanupInterval),
		done:     make(chan struct{}),
	}

	go rl.cleanupLimiters()

	return rl
}

func MemoryLimiterFactory(rule LimitRule) Limiter {
	return NewRateLimiter(rule.RequestsPerSecond, rule.Burst)
}

func (rl *RateLimiter) cleanupLimiters() {
	for {
		select {
		case <-rl.done:
			return
		case <-rl.cleanup.C:
			rl.mu.Lock()
			for key, limiter := range rl.limiters {
				if limiter.Tokens() >= float64(rl.burst) {
					delete(rl.limiters, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.RLock()
	limiter, exists := rl.limiters[key]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		limiter, exists = rl.limiters[key]
		if !exists {
			limiter = rate.NewLimiter(rl.rate, rl.burst)
			rl.limiters[key] = limiter
		}
		rl.mu.Unlock()
	}

	return limiter
}

func (rl *RateLimiter) Allow(_ context.Context, key string) bool {
	return rl.getLimiter(key).Allow()
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		rl.cleanup.Stop()
		close(rl.done)
	})
}

// StrictRateLimiter picks a limiter per route: tight budgets for sign-in,
// sign-up and uploads, a general one for everything else.
type StrictRateLimiter struct {
	signin   Limiter
	signup   Limiter
	upload   Limiter
	general  Limiter
	clientIP *ClientIPResolver
}

// NewStrictRateLimiter keys every bucket on the address clientIP resolves.
// With a nil resolver the key is the direct peer address.
func NewStrictRateLimiter(factory LimiterFactory, clientIP *ClientIPResolver) *StrictRateLimiter {
	if factory == nil {
		factory = MemoryLimiterFactory
	}
	return &StrictRateLimiter{
		signin:   factory(SigninRule),
		signup:   factory(SignupRule),
		upload:   factory(UploadRule),
		general:  factory(GeneralRule),
		clientIP: clientIP,
	}
}

func (srl *StrictRateLimiter) limiterFor(method, path string) (Limiter, string) {
	switch {
	case path == "/api/auth/signin" || path == "/api/auth/callback/credentials":
		return srl.signin, SigninRule.Name
	case path == "/api/auth/signup":
		return srl.signup, SignupRule.Name
	case path == "/api/posts" && method == http.MethodPost:
		return srl.upload, UploadRule.Name
	case path == "/api/profile" && method == http.MethodPut:
		return srl.upload, UploadRule.Name
	default:
		return srl.general, GeneralRule.Name
	}
}

func (srl *StrictRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter, limiterType := srl.limiterFor(r.Method, r.URL.Path)
		key := limiterType + ":" + srl.clientIP.ClientIP(r)

		if !limiter.Allow(r.Context(), key) {
			metrics.RateLimitBlocked.WithLabelValues(httpmetrics.NormalizePath(r.URL.Path), limiterType).Inc()
			w.Header().Set("Retry-After", "60")
			WriteErrorCode(w, http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded", TraceIDFromContext(r.Context()))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Except returns the limiter middleware with paths left unlimited.
func (srl *StrictRateLimiter) Except(paths ...string) Middleware {
	skip := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		skip[p] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		limited := srl.Middleware(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}

func (srl *StrictRateLimiter) Stop() {
	for _, l := range []Limiter{srl.signin, srl.signup, srl.upload, srl.general} {
		if s, ok := l.(interface{ Stop() }); ok {
			s.Stop()
		}
	}
}
