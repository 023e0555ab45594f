package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dtroode/voc-auth/internal/logger"
)

const rateLimiterSweepInterval = 5 * time.Minute

// RateLimiter counts requests per key in fixed windows.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) Decision
	Close()
}

// Decision is the verdict for a single request.
type Decision struct {
	Allowed   bool
	Count     int
	WindowEnd time.Time
}

type memoryRateLimiter struct {
	mu      sync.Mutex
	entries map[string]rateState
	now     func() time.Time
	stopCh  chan struct{}
	once    sync.Once
}

type rateState struct {
	count     int
	windowEnd time.Time
}

// NewMemoryRateLimiter keeps counters in process. Expired windows are swept periodically.
func NewMemoryRateLimiter() RateLimiter {
	rl := newMemoryRateLimiter(time.Now)
	go rl.sweepLoop()
	return rl
}

func newMemoryRateLimiter(now func() time.Time) *memoryRateLimiter {
	return &memoryRateLimiter{
		entries: make(map[string]rateState),
		now:     now,
		stopCh:  make(chan struct{}),
	}
}

func (rl *memoryRateLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) Decision {
	if limit <= 0 {
		return Decision{Allowed: true}
	}
	if window <= 0 {
		window = time.Minute
	}
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	state, ok := rl.entries[key]
	if !ok || !now.Before(state.windowEnd) {
		state = rateState{count: 1, windowEnd: now.Add(window)}
		rl.entries[key] = state
		return Decision{Allowed: true, Count: state.count, WindowEnd: state.windowEnd}
	}
	if state.count >= limit {
		return Decision{Allowed: false, Count: state.count, WindowEnd: state.windowEnd}
	}
	state.count++
	rl.entries[key] = state
	return Decision{Allowed: true, Count: state.count, WindowEnd: state.windowEnd}
}

func (rl *memoryRateLimiter) sweepLoop() {
	ticker := time.NewTicker(rateLimiterSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.cleanup(rl.now())
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *memoryRateLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, state := range rl.entries {
		if !now.Before(state.windowEnd) {
			delete(rl.entries, key)
		}
	}
}

func (rl *memoryRateLimiter) Close() {
	rl.once.Do(func() {
		close(rl.stopCh)
	})
}

// RateLimit throttles credential endpoints per client address.
type RateLimit struct {
	limiter RateLimiter
	limit   int
	window  time.Duration
	metrics *Metrics
	logger  *logger.Logger
	now     func() time.Time
}

// NewRateLimit creates the middleware. A nil metrics disables hit counting.
func NewRateLimit(limiter RateLimiter, limit int, window time.Duration, metrics *Metrics, logger *logger.Logger) *RateLimit {
	return &RateLimit{
		limiter: limiter,
		limit:   limit,
		window:  window,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Handle returns a middleware labelled with route.
func (m *RateLimit) Handle(route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.limit <= 0 || m.limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := route + "|" + clientKey(r)
			decision := m.limiter.Allow(r.Context(), key, m.limit, m.window)
			m.applyHeaders(w, decision)

			if !decision.Allowed {
				if m.metrics != nil {
					m.metrics.RateLimitHit(route, "ip")
				}
				m.logger.Warn("HTTP middleware: rate limit exceeded",
					"route", route,
					"remote_addr", r.RemoteAddr)
				writeJSON(w, http.StatusTooManyRequests, map[string]string{
					"message": "Too many requests, try again later.",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (m *RateLimit) applyHeaders(w http.ResponseWriter, d Decision) {
	remaining := m.limit - d.Count
	if remaining < 0 {
		remaining = 0
	}
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(m.limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	if d.WindowEnd.IsZero() {
		return
	}
	h.Set("X-RateLimit-Reset", strconv.FormatInt(d.WindowEnd.Unix(), 10))
	if !d.Allowed {
		retry := int(math.Ceil(d.WindowEnd.Sub(m.now()).Seconds()))
		if retry < 1 {
			retry = 1
		}
		h.Set("Retry-After", strconv.Itoa(retry))
	}
}

// clientKey relies on RealIP having rewritten RemoteAddr.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	host = strings.TrimSpace(host)
	if host == "" {
		host = "unknown"
	}
	return "ip:" + host
}
