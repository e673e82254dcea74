// Package api serves the ledger over JSON-RPC 2.0.
//
// All calls are POSTed to /rpc. Mutating methods must carry a request
// signature (see package auth); the signer's identity is the caller.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/bitfsorg/libibom-go/auth"
	"github.com/bitfsorg/libibom-go/ledger"
	"github.com/bitfsorg/libibom-go/logging"
	"github.com/bitfsorg/libibom-go/metrics"
)

const (
	// RPCPath is the JSON-RPC endpoint.
	RPCPath = "/rpc"

	// HeaderAPIKey carries the shared API key when one is configured.
	HeaderAPIKey = "X-Ibom-Api-Key"

	// HeaderRequestID echoes the request identifier.
	HeaderRequestID = "X-Request-Id"

	maxRequestBytes = 1 << 20
)

// Options configures a Server.
type Options struct {
	ServiceName  string
	APIKey       string // empty disables the check
	MaxClockSkew time.Duration
	Logger       *slog.Logger
	Metrics      *metrics.Recorder
}

// Server is the ibomd HTTP surface.
type Server struct {
	ledger   *ledger.Ledger
	log      *slog.Logger
	metrics  *metrics.Recorder
	tracer   trace.Tracer
	verifier *auth.Verifier
	apiKey   string
	router   chi.Router
	methods  map[string]method
}

// NewServer builds the router for l.
func NewServer(l *ledger.Ledger, opts Options) *Server {
	if opts.ServiceName == "" {
		opts.ServiceName = "ibomd"
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{
		ledger:   l,
		log:      logger.With("component", "api"),
		metrics:  opts.Metrics,
		tracer:   otel.Tracer(opts.ServiceName),
		verifier: auth.NewVerifier(opts.MaxClockSkew),
		apiKey:   opts.APIKey,
	}
	s.methods = s.methodTable()

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.With(s.observe("/healthz")).Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())
	r.With(s.observe(RPCPath), s.requireAPIKey, s.authenticate).Post(RPCPath, s.handleRPC)
	s.router = r
	return s
}

// SetVerifier replaces the signature verifier.
func (s *Server) SetVerifier(v *auth.Verifier) { s.verifier = v }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"faucet": s.ledger.FaucetEnabled(),
	})
}
