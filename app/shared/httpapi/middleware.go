package httpapi

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Black-And-White-Club/truthtable/app/shared/attr"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

const (
	// cleanupThreshold is the minimum map size before a cleanup pass runs.
	cleanupThreshold = 500
	// maxIdleAge is the duration after which an idle client entry is eligible for cleanup.
	maxIdleAge = 10 * time.Minute
)

// CorrelationHeader carries the correlation id in and out of the API.
const CorrelationHeader = "X-Correlation-ID"

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientRateLimiter hands out one token bucket per client address and prunes idle
// buckets inline.
type ClientRateLimiter struct {
	clients map[string]*clientEntry
	mu      sync.Mutex
	r       rate.Limit
	b       int
	now     func() time.Time
}

func NewClientRateLimiter(r rate.Limit, b int) *ClientRateLimiter {
	return &ClientRateLimiter{
		clients: make(map[string]*clientEntry),
		r:       r,
		b:       b,
		now:     time.Now,
	}
}

// Limiter returns the bucket for addr.
func (l *ClientRateLimiter) Limiter(addr string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.clients) > cleanupThreshold {
		cutoff := now.Add(-maxIdleAge)
		for k, e := range l.clients {
			if e.lastSeen.Before(cutoff) {
				delete(l.clients, k)
			}
		}
	}

	e, ok := l.clients[addr]
	if !ok {
		e = &clientEntry{limiter: rate.NewLimiter(l.r, l.b)}
		l.clients[addr] = e
	}
	e.lastSeen = now
	return e.limiter
}

func (l *ClientRateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// RateLimit rejects requests over the per-client budget with 429.
func RateLimit(limiter *ClientRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			if !limiter.Limiter(ip).Allow() {
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORS sets CORS headers for the configured origins. With no origins it only
// short-circuits preflight requests.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := r.Header.Get("Origin"); origin != "" {
				if _, ok := origins[origin]; ok {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
					w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+CorrelationHeader)
				}
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Correlation puts a correlation id on the request context, taken from the
// request header or from chi's request id, and echoes it on the response.
func Correlation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(CorrelationHeader)
		if id == "" {
			id = middleware.GetReqID(r.Context())
		}
		if id != "" {
			w.Header().Set(CorrelationHeader, id)
			r = r.WithContext(attr.WithCorrelationID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
