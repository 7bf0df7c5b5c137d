package http

import (
	"context"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/alem-hub/course-schedule/internal/interface/http/handlers"
	"github.com/alem-hub/course-schedule/pkg/logger"
)

const headerRequestID = "X-Request-ID"

type requestIDKey struct{}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// wrap applies the middleware; the first listed runs outermost.
func (s *Server) wrap(router http.Handler) http.Handler {
	chain := []handlers.Middleware{s.withRequestID, s.recoverPanics, s.logRequests}
	if len(s.config.AllowedOrigins) > 0 {
		chain = append(chain, cors.New(cors.Options{
			AllowedOrigins: s.config.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders: []string{"Content-Type", headerRequestID},
			ExposedHeaders: []string{headerRequestID},
			MaxAge:         int((24 * time.Hour).Seconds()),
		}).Handler)
	}
	chain = append(chain, handlers.StaticHeaders(handlers.ScheduleHeaders))
	if s.config.MaxBodyBytes > 0 {
		tooLarge := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.writeJSONError(w, r, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body too large")
		})
		chain = append(chain, handlers.LimitBody(s.config.MaxBodyBytes, tooLarge))
	}
	return handlers.Wrap(router, chain...)
}

// withRequestID reuses the caller's X-Request-ID or generates one, and
// attaches a request logger to the context.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)

		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		ctx = logger.WithContext(ctx, s.logger.WithRequestID(id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				logger.FromContext(r.Context()).Error("panic recovered",
					logger.Any("panic", p),
					logger.String("stack", string(debug.Stack())),
					logger.HTTPPath(r.URL.Path),
				)
				s.writeJSONError(w, r, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.FromContext(r.Context()).Info("http request",
			logger.HTTPMethod(r.Method),
			logger.HTTPPath(r.URL.Path),
			logger.HTTPStatus(rec.status),
			logger.Latency(time.Since(start)),
			logger.String("ip", clientIP(r)),
		)
	})
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
