package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type clientLimiter struct {
	general  *rate.Limiter
	auth     *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware applies per-client-IP limits, with a stricter
// budget for the credential endpoints.
type RateLimitMiddleware struct {
	generalRPM int
	authRPM    int
	mu         sync.Mutex
	clients    map[string]*clientLimiter
}

func NewRateLimitMiddleware(generalRPM int, authRPM int) *RateLimitMiddleware {
	if generalRPM <= 0 {
		generalRPM = 300
	}
	if authRPM <= 0 {
		authRPM = 30
	}

	return &RateLimitMiddleware{
		generalRPM: generalRPM,
		authRPM:    authRPM,
		clients:    map[string]*clientLimiter{},
	}
}

func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The event stream holds one slot for minutes; counting it
		// against the budget would starve reconnecting viewers.
		if r.URL.Path == "/events" {
			next.ServeHTTP(w, r)
			return
		}

		limiter := m.getLimiter(extractClientIP(r))

		target := limiter.general
		if strings.HasPrefix(r.URL.Path, "/auth") {
			target = limiter.auth
		}

		if !target.Allow() {
			w.Header().Set("Retry-After", "60")
			writeJSONError(w, http.StatusTooManyRequests, "Too many requests")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *RateLimitMiddleware) getLimiter(clientIP string) *clientLimiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	limiter, exists := m.clients[clientIP]
	if !exists {
		limiter = &clientLimiter{
			general: rate.NewLimiter(rate.Limit(float64(m.generalRPM)/60.0), m.generalRPM),
			auth:    rate.NewLimiter(rate.Limit(float64(m.authRPM)/60.0), m.authRPM),
		}
		m.clients[clientIP] = limiter
	}
	limiter.lastSeen = time.Now()

	// Opportunistic eviction of idle clients keeps the map bounded
	// without a background goroutine.
	if len(m.clients) > 1024 {
		cutoff := time.Now().Add(-10 * time.Minute)
		for ip, c := range m.clients {
			if c.lastSeen.Before(cutoff) {
				delete(m.clients, ip)
			}
		}
	}

	return limiter
}

func extractClientIP(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
