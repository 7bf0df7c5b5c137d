package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/alem-hub/course-schedule/internal/domain/shared"
	"github.com/alem-hub/course-schedule/pkg/logger"
)

// JSONResponse is the envelope of every response.
type JSONResponse struct {
	Success bool          `json:"success"`
	Data    any           `json:"data,omitempty"`
	Error   *APIError     `json:"error,omitempty"`
	Meta    *ResponseMeta `json:"meta,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ResponseMeta struct {
	Timestamp  time.Time `json:"timestamp"`
	Version    string    `json:"version,omitempty"`
	RequestID  string    `json:"requestId,omitempty"`
	TotalCount *int      `json:"totalCount,omitempty"`
}

func (s *Server) meta(r *http.Request) *ResponseMeta {
	return &ResponseMeta{
		Timestamp: time.Now().UTC(),
		Version:   s.config.Version,
		RequestID: requestID(r.Context()),
	}
}

func (s *Server) write(w http.ResponseWriter, status int, resp JSONResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	s.write(w, status, JSONResponse{Success: true, Data: data, Meta: s.meta(r)})
}

// writeList adds the item count to the metadata.
func (s *Server) writeList(w http.ResponseWriter, r *http.Request, data any, count int) {
	meta := s.meta(r)
	meta.TotalCount = &count
	s.write(w, http.StatusOK, JSONResponse{Success: true, Data: data, Meta: meta})
}

func (s *Server) writeJSONError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	s.write(w, status, JSONResponse{Error: &APIError{Code: code, Message: message}, Meta: s.meta(r)})
}

// writeDomainError maps not-found to 404, validation to 400 and failures of
// the certificate service to 502; anything else is logged and hidden behind
// a 500. data, when set, travels with the
// error (partial copy results).
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error, data any) {
	apiErr := &APIError{Code: "internal_error", Message: "Internal server error"}
	status := http.StatusInternalServerError

	switch {
	case shared.IsNotFound(err):
		status, apiErr.Code, apiErr.Message = http.StatusNotFound, "not_found", err.Error()
	case shared.IsValidation(err):
		status, apiErr.Code, apiErr.Message = http.StatusBadRequest, "validation_error", err.Error()
	case shared.IsExternalService(err):
		status, apiErr.Code, apiErr.Message = http.StatusBadGateway, "upstream_error", err.Error()
		logger.FromContext(r.Context()).Warn("upstream failure", logger.HTTPPath(r.URL.Path), logger.Err(err))
	default:
		logger.FromContext(r.Context()).Error("request failed",
			logger.HTTPMethod(r.Method),
			logger.HTTPPath(r.URL.Path),
			logger.Err(err),
		)
	}
	s.write(w, status, JSONResponse{Data: data, Error: apiErr, Meta: s.meta(r)})
}

func (s *Server) notConfigured(w http.ResponseWriter, r *http.Request) {
	s.writeJSONError(w, r, http.StatusNotImplemented, "not_implemented", "Handler not configured")
}
