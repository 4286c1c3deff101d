package server

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Sumatoshi-tech/paramspace/pkg/observability"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-ID"

const maxRequestIDLen = 128

// withRequestID propagates an incoming request ID, or mints one, into the
// request context and the response headers.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, hr *http.Request) {
		id := hr.Header.Get(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}

		rw.Header().Set(HeaderRequestID, id)

		ctx := observability.ContextWithRequestID(hr.Context(), id)
		s.logger.DebugContext(ctx, "request", "method", hr.Method, "path", hr.URL.Path)

		next.ServeHTTP(rw, hr.WithContext(ctx))
	})
}
