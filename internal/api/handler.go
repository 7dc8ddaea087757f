package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sourishdey2005/fraud--detection/internal/domain"
	"github.com/sourishdey2005/fraud--detection/internal/ledger"
	"github.com/sourishdey2005/fraud--detection/internal/ocr"
	"github.com/sourishdey2005/fraud--detection/internal/rules"
	"github.com/sourishdey2005/fraud--detection/internal/session"
)

// maxImageBytes bounds uploaded document/QR images.
const maxImageBytes = 10 << 20

// Handler holds dependencies for API handlers.
type Handler struct {
	store      domain.SessionStore
	repo       domain.Repository
	bus        domain.EventBus
	engine     *rules.Engine
	extractor  ocr.Extractor
	users      *userRegistry
	validation domain.ValidationConfig
	version    string
}

// NewHandler creates a new API handler.
func NewHandler(store domain.SessionStore, repo domain.Repository, bus domain.EventBus, engine *rules.Engine, extractor ocr.Extractor, validation domain.ValidationConfig, version string) *Handler {
	return &Handler{
		store:      store,
		repo:       repo,
		bus:        bus,
		engine:     engine,
		extractor:  extractor,
		users:      newUserRegistry(),
		validation: validation,
		version:    version,
	}
}

// SessionResponse summarizes a session for the UI.
type SessionResponse struct {
	SessionID   string `json:"sessionId"`
	User        string `json:"user,omitempty"`
	CreditScore int    `json:"creditScore"`
}

// SubmitRequest is the request body for POST /transactions.
type SubmitRequest struct {
	Handle   string `json:"handle"`
	Amount   int64  `json:"amount"`
	Location string `json:"location,omitempty"`
}

// SubmitResponse is the response for POST /transactions.
type SubmitResponse struct {
	Transaction domain.Transaction `json:"transaction"`
	NewAlerts   []string           `json:"newAlerts"`
}

// CredentialRequest is the request body for the text-credential
// verification endpoints.
type CredentialRequest struct {
	Value string `json:"value"`
}

// VerifyResponse is the response of the verification endpoints.
type VerifyResponse struct {
	Valid bool                     `json:"valid"`
	Flags domain.VerificationFlags `json:"flags"`
}

// LinesRequest carries pre-extracted text lines for the document endpoints.
type LinesRequest struct {
	Lines []string `json:"lines"`
}

// CredentialsRequest is the request body for POST /register and /login.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateSession handles POST /sessions: starts a fresh anonymous session.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	h.startSession(w, r, "")
}

// Register handles POST /register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username and password are required"})
		return
	}

	if err := h.users.register(req.Username, req.Password); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
}

// Login handles POST /login: authenticates and starts a session for the
// user.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username and password are required"})
		return
	}

	if err := h.users.authenticate(req.Username, req.Password); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
		return
	}
	h.startSession(w, r, req.Username)
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, user string) {
	ses := session.New(user, h.engine, h.validation)
	if err := h.store.Put(r.Context(), ses.State()); err != nil {
		slog.Error("failed to store session", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create session"})
		return
	}

	writeJSON(w, http.StatusCreated, SessionResponse{
		SessionID:   ses.ID(),
		User:        ses.User(),
		CreditScore: ses.CreditScore(),
	})
}

// GetSession handles GET /session: returns the full session snapshot.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ses, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ses.State())
}

// Logout handles DELETE /session: discards the session and everything in
// it. The session id is invalid afterwards.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ses, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), ses.ID()); err != nil {
		slog.Error("failed to delete session", "session_id", ses.ID(), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete session"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Submit handles POST /transactions. A successful submission is followed by
// a fraud scan; newly raised alerts come back with the created record.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	ses, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON request body"})
		return
	}

	tx, err := ses.SubmitTransaction(req.Handle, req.Amount, req.Location)
	switch {
	case errors.Is(err, ledger.ErrHandleRejected):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "invalid payment handle"})
		return
	case errors.Is(err, ledger.ErrInvalidAmount):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount must be at least 1"})
		return
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "submission failed"})
		return
	}

	newAlerts := ses.ScanForFraud()
	if !h.saveSession(w, r, ses) {
		return
	}

	if payload, err := json.Marshal(tx); err == nil {
		h.publish(r, ses.ID(), domain.TopicTransactionSubmitted, payload)
	}
	for _, alert := range newAlerts {
		h.publish(r, ses.ID(), domain.TopicAlertRaised, []byte(alert))
	}

	writeJSON(w, http.StatusCreated, SubmitResponse{
		Transaction: tx,
		NewAlerts:   newAlerts,
	})
}

// Validate handles POST /transactions/{index}/validate.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	ses, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "index must be an integer"})
		return
	}

	if err := ses.ValidateTransaction(index); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "transaction index out of range"})
		return
	}
	if !h.saveSession(w, r, ses) {
		return
	}

	tx := ses.Transactions()[index]
	if payload, err := json.Marshal(domain.StatusChange{TxID: tx.ID, Status: tx.Status}); err == nil {
		h.publish(r, ses.ID(), domain.TopicTransactionValidated, payload)
	}

	writeJSON(w, http.StatusOK, tx)
}

// ListTransactions handles GET /transactions.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ses, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": ses.Transactions()})
}

// Scan handles POST /fraud/scan: re-evaluates the rule set against every
// recorded transaction.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	ses, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	newAlerts := ses.ScanForFraud()
	if !h.saveSession(w, r, ses) {
		return
	}
	for _, alert := range newAlerts {
		h.publish(r, ses.ID(), domain.TopicAlertRaised, []byte(alert))
	}

	writeJSON(w, http.StatusOK, map[string]any{"newAlerts": newAlerts})
}

// ListAlerts handles GET /alerts.
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	ses, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": ses.Alerts()})
}

// VerifyTaxID handles POST /verify/tax-id.
func (h *Handler) VerifyTaxID(w http.ResponseWriter, r *http.Request) {
	h.verifyCredential(w, r, func(ses *session.Session, value string) bool {
		return ses.VerifyTaxID(value)
	})
}

// VerifyRegistration handles POST /verify/registration.
func (h *Handler) VerifyRegistration(w http.ResponseWriter, r *http.Request) {
	h.verifyCredential(w, r, func(ses *session.Session, value string) bool {
		return ses.VerifyRegistrationNumber(value)
	})
}

// VerifyBankAccount handles POST /verify/bank-account.
func (h *Handler) VerifyBankAccount(w http.ResponseWriter, r *http.Request) {
	h.verifyCredential(w, r, func(ses *session.Session, value string) bool {
		return ses.VerifyBankAccount(value)
	})
}

func (h *Handler) verifyCredential(w http.ResponseWriter, r *http.Request, verify func(*session.Session, string) bool) {
	ses, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	var req CredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON request body"})
		return
	}

	valid := verify(ses, req.Value)
	if !h.saveSession(w, r, ses) {
		return
	}
	writeJSON(w, http.StatusOK, VerifyResponse{Valid: valid, Flags: ses.Flags()})
}

// VerifyIdentity handles POST /verify/identity. The body is either
// pre-extracted lines as JSON or raw image bytes forwarded to the
// text-extraction service.
func (h *Handler) VerifyIdentity(w http.ResponseWriter, r *http.Request) {
	ses, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	lines, ok := h.extractLines(w, r)
	if !ok {
		return
	}

	valid := ses.VerifyIdentityDocument(lines)
	if !h.saveSession(w, r, ses) {
		return
	}
	writeJSON(w, http.StatusOK, VerifyResponse{Valid: valid, Flags: ses.Flags()})
}

// VerifyQR handles POST /verify/qr: links a bank account from a scanned QR
// code.
func (h *Handler) VerifyQR(w http.ResponseWriter, r *http.Request) {
	ses, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	lines, ok := h.extractLines(w, r)
	if !ok {
		return
	}

	handle, linked := ses.LinkAccount(lines)
	if !h.saveSession(w, r, ses) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"linked": linked,
		"handle": handle,
		"flags":  ses.Flags(),
	})
}

// GetVerification handles GET /verification.
func (h *Handler) GetVerification(w http.ResponseWriter, r *http.Request) {
	ses, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"flags":        ses.Flags(),
		"linkedHandle": ses.LinkedHandle(),
		"creditScore":  ses.CreditScore(),
	})
}

// ListRules handles GET /rules.
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"rules": h.engine.LoadedRules()})
}

// CreateRule handles POST /rules: validates and loads a rule. A rule with
// an existing ID is replaced.
func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var cfg rules.Rule
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON request body"})
		return
	}
	cfg.Enabled = true

	if err := h.engine.LoadRule(cfg); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, cfg)
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": h.version,
	})
}

// Ready handles GET /ready: checks the session store and, when configured,
// the repository and bus.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	checks := map[string]string{}
	healthy := true

	if err := h.store.Ping(ctx); err != nil {
		checks["sessions"] = err.Error()
		healthy = false
	} else {
		checks["sessions"] = "ok"
	}
	if h.repo != nil {
		if err := h.repo.Ping(ctx); err != nil {
			checks["repository"] = err.Error()
			healthy = false
		} else {
			checks["repository"] = "ok"
		}
	}
	if h.bus != nil {
		if err := h.bus.Ping(ctx); err != nil {
			checks["bus"] = err.Error()
			healthy = false
		} else {
			checks["bus"] = "ok"
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, checks)
}

// loadSession reconstructs the caller's session from its stored snapshot.
func (h *Handler) loadSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sessionID := GetSessionID(r.Context())

	state, err := h.store.Get(r.Context(), sessionID)
	if err != nil {
		slog.Error("failed to load session", "session_id", sessionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load session"})
		return nil, false
	}
	if state == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return nil, false
	}

	return session.FromState(state, h.engine, h.validation), true
}

// saveSession writes the session snapshot back to the store.
func (h *Handler) saveSession(w http.ResponseWriter, r *http.Request, ses *session.Session) bool {
	if err := h.store.Put(r.Context(), ses.State()); err != nil {
		slog.Error("failed to store session", "session_id", ses.ID(), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to store session"})
		return false
	}
	return true
}

// publish sends an audit event. Audit is best-effort: failures are logged,
// never surfaced to the caller.
func (h *Handler) publish(r *http.Request, sessionID, topic string, payload []byte) {
	if h.bus == nil {
		return
	}
	if err := h.bus.Publish(r.Context(), sessionID, topic, payload); err != nil {
		slog.Warn("failed to publish audit event", "topic", topic, "error", err)
	}
}

// extractLines reads either a JSON lines body or raw image bytes handed to
// the extraction service.
func (h *Handler) extractLines(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req LinesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON request body"})
			return nil, false
		}
		return req.Lines, true
	}

	if h.extractor == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "text extraction is not configured"})
		return nil, false
	}

	image, err := io.ReadAll(io.LimitReader(r.Body, maxImageBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read image"})
		return nil, false
	}

	lines, err := h.extractor.ExtractText(r.Context(), image)
	if err != nil {
		slog.Error("text extraction failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "text extraction failed"})
		return nil, false
	}
	return lines, true
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
