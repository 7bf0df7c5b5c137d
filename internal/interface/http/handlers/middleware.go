package handlers

import "net/http"

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Wrap applies mws to h; mws[0] runs outermost.
func Wrap(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// ScheduleHeaders are set on every API response. Schedules are computed
// against the current time, so nothing may be cached.
var ScheduleHeaders = http.Header{
	"Cache-Control":           {"no-store, no-cache, must-revalidate, max-age=0"},
	"Pragma":                  {"no-cache"},
	"X-Content-Type-Options":  {"nosniff"},
	"X-Frame-Options":         {"DENY"},
	"Referrer-Policy":         {"strict-origin-when-cross-origin"},
	"Content-Security-Policy": {"default-src 'none'; frame-ancestors 'none'"},
}

// StaticHeaders copies headers into every response before next runs.
func StaticHeaders(headers http.Header) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			dst := w.Header()
			for k, v := range headers {
				dst[k] = append([]string(nil), v...)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LimitBody rejects requests whose declared length exceeds maxBytes with
// tooLarge and caps the body of the rest.
func LimitBody(maxBytes int64, tooLarge http.Handler) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				tooLarge.ServeHTTP(w, r)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
