package rpc

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/near/near-bridge/token"
)

const maxRequestBody = 1 << 20

// Server exposes the ledger operations over HTTP. Amounts cross this
// boundary as base-10 decimal strings.
type Server struct {
	ledger   *token.Ledger
	bridge   *token.Bridge
	auth     *Authenticator
	limiter  *RateLimiter
	metrics  *Metrics
	gatherer prometheus.Gatherer
	log      *slog.Logger
}

// Options configures the optional server collaborators.
type Options struct {
	Auth      *Authenticator
	RateLimit RateLimit
	Registry  *prometheus.Registry
	Logger    *slog.Logger
}

// NewServer wires the ledger and mint bridge into an HTTP server.
func NewServer(ledger *token.Ledger, bridge *token.Bridge, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	return &Server{
		ledger:   ledger,
		bridge:   bridge,
		auth:     opts.Auth,
		limiter:  NewRateLimiter(opts.RateLimit),
		metrics:  NewMetrics(registry),
		gatherer: registry,
		log:      logger,
	}
}

// Router assembles the HTTP routes. The mint completion entry point is
// deliberately absent: FinishMint is reachable only through the bridge's
// internal continuation, never over the wire.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.limiter.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(v1 chi.Router) {
		v1.With(s.metrics.Middleware("init")).Post("/init", s.handleInit)
		v1.With(s.metrics.Middleware("mint")).Post("/mint", s.handleMint)
		v1.With(s.metrics.Middleware("supply")).Get("/supply", s.handleSupply)
		v1.With(s.metrics.Middleware("balance")).Get("/balance/{ownerId}", s.handleBalance)
		v1.With(s.metrics.Middleware("allowance")).Get("/allowance/{ownerId}/{escrowId}", s.handleAllowance)

		v1.Group(func(authed chi.Router) {
			if s.auth != nil {
				authed.Use(s.auth.Middleware)
			}
			authed.With(s.metrics.Middleware("set_allowance")).Post("/allowances", s.handleSetAllowance)
			authed.With(s.metrics.Middleware("transfer")).Post("/transfer", s.handleTransfer)
			authed.With(s.metrics.Middleware("transfer_from")).Post("/transfer-from", s.handleTransferFrom)
		})
	})
	return r
}

type initRequest struct {
	OwnerID       string `json:"ownerId"`
	TotalSupply   string `json:"totalSupply"`
	ProverAccount string `json:"proverAccount"`
	VerifyProof   bool   `json:"verifyProof"`
}

func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	var req initRequest
	if !s.decode(w, r, &req) {
		return
	}
	supply, err := token.ParseAmount(req.TotalSupply)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.ledger.Initialize(req.OwnerID, supply, req.ProverAccount, req.VerifyProof); err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Info("ledger initialized", "owner", req.OwnerID, "totalSupply", req.TotalSupply)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type setAllowanceRequest struct {
	EscrowID  string `json:"escrowId"`
	Allowance string `json:"allowance"`
}

func (s *Server) handleSetAllowance(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFrom(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "caller identity required")
		return
	}
	var req setAllowanceRequest
	if !s.decode(w, r, &req) {
		return
	}
	allowance, err := token.ParseAmount(req.Allowance)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.ledger.SetAllowance(caller, req.EscrowID, allowance); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type transferRequest struct {
	NewOwnerID string `json:"newOwnerId"`
	Amount     string `json:"amount"`
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFrom(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "caller identity required")
		return
	}
	var req transferRequest
	if !s.decode(w, r, &req) {
		return
	}
	amount, err := token.ParseAmount(req.Amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.ledger.Transfer(caller, req.NewOwnerID, amount); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type transferFromRequest struct {
	OwnerID    string `json:"ownerId"`
	NewOwnerID string `json:"newOwnerId"`
	Amount     string `json:"amount"`
}

func (s *Server) handleTransferFrom(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFrom(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "caller identity required")
		return
	}
	var req transferFromRequest
	if !s.decode(w, r, &req) {
		return
	}
	amount, err := token.ParseAmount(req.Amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.ledger.TransferFrom(caller, req.OwnerID, req.NewOwnerID, amount); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type mintRequest struct {
	NewOwnerID string      `json:"newOwnerId"`
	Amount     string      `json:"amount"`
	Proof      token.Proof `json:"proof"`
}

func (s *Server) handleMint(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if !s.decode(w, r, &req) {
		return
	}
	amount, err := token.ParseAmount(req.Amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	pending, err := s.bridge.Mint(r.Context(), req.NewOwnerID, amount, req.Proof)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Info("mint requested", "requestId", pending.ID, "newOwner", req.NewOwnerID, "amount", req.Amount)
	writeJSON(w, http.StatusAccepted, map[string]string{"requestId": pending.ID})
}

func (s *Server) handleSupply(w http.ResponseWriter, r *http.Request) {
	supply, err := s.ledger.TotalSupply()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"totalSupply": token.FormatAmount(supply)})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.ledger.Balance(chi.URLParam(r, "ownerId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"balance": token.FormatAmount(balance)})
}

func (s *Server) handleAllowance(w http.ResponseWriter, r *http.Request) {
	allowance, err := s.ledger.Allowance(chi.URLParam(r, "ownerId"), chi.URLParam(r, "escrowId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"allowance": token.FormatAmount(allowance)})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := decoder.Decode(out); err != nil {
		writeJSONError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, token.ErrInvalidAccountID),
		errors.Is(err, token.ErrInvalidAmount),
		errors.Is(err, token.ErrZeroAmount),
		errors.Is(err, token.ErrSelfAllowance),
		errors.Is(err, token.ErrAmountOverflow):
		status = http.StatusBadRequest
	case errors.Is(err, token.ErrAlreadyInitialized),
		errors.Is(err, token.ErrNotInitialized):
		status = http.StatusConflict
	case errors.Is(err, token.ErrInsufficientBalance),
		errors.Is(err, token.ErrInsufficientAllowance):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, token.ErrFinishMintForbidden):
		status = http.StatusForbidden
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "err", err)
	}
	writeJSONError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
