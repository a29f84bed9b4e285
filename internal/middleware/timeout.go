package middleware

import (
	"net/http"
	"time"
)

// Timeout bounds request handling. The events stream is exempt: SSE
// connections are long-lived by design and http.TimeoutHandler would
// also buffer their writes.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	message := `{"error":"Request timed out"}`

	return func(next http.Handler) http.Handler {
		timed := http.TimeoutHandler(next, timeout, message)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/events" {
				next.ServeHTTP(w, r)
				return
			}
			timed.ServeHTTP(w, r)
		})
	}
}
