package api

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/bitfsorg/libibom-go/auth"
	"github.com/bitfsorg/libibom-go/identity"
)

type requestIDKey struct{}

// RequestIDFrom returns the request identifier assigned by the server.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// observe traces, counts and logs each request on route.
func (s *Server) observe(route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx, span := s.tracer.Start(r.Context(), route, trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", route),
				attribute.String("request.id", RequestIDFrom(r.Context())),
			))
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))
			span.SetAttributes(attribute.Int("http.status_code", rec.status))
			span.End()

			elapsed := time.Since(start)
			s.metrics.ObserveRequest(route, r.Method, rec.status, elapsed)
			s.log.DebugContext(ctx, "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", elapsed.Milliseconds(),
				"request_id", RequestIDFrom(r.Context()),
			)
		})
	}
}

func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" {
			got := r.Header.Get(HeaderAPIKey)
			if subtle.ConstantTimeCompare([]byte(got), []byte(s.apiKey)) != 1 {
				writeError(w, http.StatusUnauthorized, nil, &Error{Code: CodeUnauthorized, Message: ErrInvalidAPIKey.Error()})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// authenticate verifies the request signature when one is present and
// stores the signer as the caller. Unsigned requests pass through without a
// caller; methods that need one reject them.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes+1))
		if err != nil {
			writeError(w, http.StatusBadRequest, nil, &Error{Code: CodeInvalidRequest, Message: "read body: " + err.Error()})
			return
		}
		if len(body) > maxRequestBytes {
			writeError(w, http.StatusRequestEntityTooLarge, nil, &Error{Code: CodeInvalidRequest, Message: "request body too large"})
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		env, err := auth.FromHeaders(r.Header)
		if errors.Is(err, auth.ErrMissingSignature) {
			next.ServeHTTP(w, r)
			return
		}
		if err == nil {
			var caller identity.ID
			caller, err = s.verifier.Verify(env, r.Method, r.URL.Path, body)
			if err == nil {
				next.ServeHTTP(w, r.WithContext(auth.WithCaller(r.Context(), caller)))
				return
			}
		}
		s.log.InfoContext(r.Context(), "request signature rejected",
			"error", err.Error(),
			"request_id", RequestIDFrom(r.Context()),
		)
		writeError(w, http.StatusUnauthorized, nil, &Error{
			Code:    CodeUnauthorized,
			Message: err.Error(),
			Data:    &ErrorData{Name: "Unauthorized"},
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, id json.RawMessage, e *Error) {
	if id == nil {
		id = json.RawMessage("null")
	}
	writeJSON(w, status, Response{JSONRPC: JSONRPCVersion, ID: id, Error: e})
}
