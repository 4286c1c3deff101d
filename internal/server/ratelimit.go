package server

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"golang.org/x/time/rate"
)

var errRateLimited = errors.New("rate limit exceeded")

// newLimiter returns a server-wide token bucket, or nil when perSecond is 0.
func newLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}

	return rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
}

// limit rejects API requests with 429 once the token bucket is empty.
// Probes and the metrics endpoint are not routed through it.
func (s *Server) limit(next http.HandlerFunc) http.Handler {
	if s.limiter == nil {
		return next
	}

	return http.HandlerFunc(func(rw http.ResponseWriter, hr *http.Request) {
		if s.limiter.Allow() {
			next(rw, hr)

			return
		}

		retry := math.Ceil(1 / float64(s.limiter.Limit()))
		rw.Header().Set("Retry-After", strconv.Itoa(int(max(retry, 1))))

		s.logger.DebugContext(hr.Context(), "rate limited", "path", hr.URL.Path)
		writeJSON(rw, hr, http.StatusTooManyRequests, ErrorResponse{Error: errRateLimited.Error()})
	})
}
