package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"signalcraft-be/internal/auth"
	"signalcraft-be/internal/logger"
	"signalcraft-be/internal/metrics"
	"signalcraft-be/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Rate limit tiers
const (
	// Contact form and code exchange
	limitStrict = rate.Limit(2)
	burstStrict = 5

	limitGeneral = rate.Limit(10)
	burstGeneral = 20

	// Trusted services presenting X-Service-Auth
	limitInternal = rate.Limit(100)
	burstInternal = 200
)

const (
	visitorIdleTTL = 3 * time.Minute
	sweepInterval  = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per identity and tier.
type RateLimiter struct {
	internalKey string

	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time

	rejected metrics.Counter
}

func NewRateLimiter(internalKey string) *RateLimiter {
	return &RateLimiter{
		internalKey: internalKey,
		visitors:    make(map[string]*visitor),
		now:         time.Now,
	}
}

// Run sweeps idle visitors until stop is closed.
func (rl *RateLimiter) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, v := range rl.visitors {
		if rl.now().Sub(v.lastSeen) > visitorIdleTTL {
			delete(rl.visitors, key)
		}
	}
}

func (rl *RateLimiter) limiterFor(key string, r rate.Limit, b int) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(r, b)}
		rl.visitors[key] = v
	}
	v.lastSeen = rl.now()
	return v.limiter
}

func (rl *RateLimiter) Rejected() uint64 {
	return rl.rejected.Load()
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, burst, tier := rl.resolveTier(r)
		key := identity(r) + ":" + tier

		if !rl.limiterFor(key, limit, burst).Allow() {
			rl.rejected.Inc()
			logger.FromCtx(r.Context()).Warn("rate limited",
				zap.String("tier", tier),
				zap.String("path", r.URL.Path),
				zap.Uint64("rejected_total", rl.rejected.Load()),
			)
			utils.WriteJSONError(w, "too many requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) resolveTier(r *http.Request) (rate.Limit, int, string) {
	if rl.internalKey != "" && r.Header.Get("X-Service-Auth") == rl.internalKey {
		return limitInternal, burstInternal, "internal"
	}

	if r.Method == http.MethodPost && (r.URL.Path == "/contact" || r.URL.Path == "/auth/exchange") {
		return limitStrict, burstStrict, "strict"
	}

	return limitGeneral, burstGeneral, "general"
}

// identity prefers the authenticated subject, then a client device id, then the remote ip.
func identity(r *http.Request) string {
	if c := auth.CallerFrom(r.Context()); c != nil && c.Sub != "" {
		return "user:" + c.Sub
	}
	if deviceID := r.Header.Get("X-Device-ID"); deviceID != "" {
		return "device:" + deviceID
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return "ip:" + ip
}
