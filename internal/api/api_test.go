package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sourishdey2005/fraud--detection/internal/cache"
	"github.com/sourishdey2005/fraud--detection/internal/domain"
	"github.com/sourishdey2005/fraud--detection/internal/ocr"
	"github.com/sourishdey2005/fraud--detection/internal/rules"
)

// createTestServer creates a server backed by an in-memory session store
// with the builtin rule set loaded.
func createTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := domain.ServerConfig{
		Host:         "localhost",
		Port:         8080,
		ReadTimeout:  30,
		WriteTimeout: 30,
	}

	engine, err := rules.NewEngine()
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	if err := engine.LoadRules(rules.Builtin()); err != nil {
		t.Fatalf("failed to load builtin rules: %v", err)
	}

	store := cache.NewMemoryStore(100, time.Hour)
	validation := domain.ValidationConfig{StrictTaxID: true, StrictRegistration: true}

	return NewServer(cfg, store, nil, nil, engine, nil, validation, "test-v1")
}

// createTestSession starts a session and returns its id.
func createTestSession(t *testing.T, server *Server) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/sessions", nil)
	rr := httptest.NewRecorder()
	server.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp SessionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.SessionID == "" {
		t.Fatal("expected sessionId in response")
	}
	return resp.SessionID
}

// doJSON performs a JSON request against the server for a session.
func doJSON(server *Server, method, path, sessionID string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set("X-Session-ID", sessionID)
	}

	rr := httptest.NewRecorder()
	server.Router().ServeHTTP(rr, req)
	return rr
}

func TestCreateSession(t *testing.T) {
	server := createTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/sessions", nil)
	rr := httptest.NewRecorder()
	server.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp SessionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.SessionID == "" {
		t.Error("expected sessionId in response")
	}
	if resp.CreditScore < 300 || resp.CreditScore > 900 {
		t.Errorf("expected credit score in [300, 900], got %d", resp.CreditScore)
	}
}

func TestSubmitEndpoint(t *testing.T) {
	server := createTestServer(t)
	sessionID := createTestSession(t, server)

	t.Run("SuccessfulSubmission", func(t *testing.T) {
		rr := doJSON(server, http.MethodPost, "/transactions", sessionID, SubmitRequest{
			Handle:   "user@sbi",
			Amount:   1200,
			Location: "Mumbai",
		})

		if rr.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
		}

		var resp SubmitResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if resp.Transaction.ID != "TXN1" {
			t.Errorf("expected id TXN1, got %s", resp.Transaction.ID)
		}
		if resp.Transaction.Status != domain.StatusPending {
			t.Errorf("expected status Pending, got %s", resp.Transaction.Status)
		}
		if len(resp.NewAlerts) != 0 {
			t.Errorf("expected no alerts for a small transaction, got %v", resp.NewAlerts)
		}
	})

	t.Run("SuspiciousSubmission", func(t *testing.T) {
		rr := doJSON(server, http.MethodPost, "/transactions", sessionID, SubmitRequest{
			Handle:   "user@hdfcbank",
			Amount:   60000,
			Location: "Pune",
		})

		if rr.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
		}

		var resp SubmitResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if resp.Transaction.ID != "TXN2" {
			t.Errorf("expected id TXN2, got %s", resp.Transaction.ID)
		}
		if len(resp.NewAlerts) != 2 {
			t.Errorf("expected 2 alerts (amount and location), got %v", resp.NewAlerts)
		}
	})

	t.Run("RejectedHandle", func(t *testing.T) {
		rr := doJSON(server, http.MethodPost, "/transactions", sessionID, SubmitRequest{
			Handle: "user@gmail.com",
			Amount: 500,
		})

		if rr.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected status 422, got %d", rr.Code)
		}
	})

	t.Run("InvalidAmount", func(t *testing.T) {
		rr := doJSON(server, http.MethodPost, "/transactions", sessionID, SubmitRequest{
			Handle: "user@sbi",
			Amount: 0,
		})

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rr.Code)
		}
	})

	t.Run("MissingSessionID", func(t *testing.T) {
		rr := doJSON(server, http.MethodPost, "/transactions", "", SubmitRequest{
			Handle: "user@sbi",
			Amount: 500,
		})

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rr.Code)
		}
	})

	t.Run("UnknownSession", func(t *testing.T) {
		rr := doJSON(server, http.MethodPost, "/transactions", "no-such-session", SubmitRequest{
			Handle: "user@sbi",
			Amount: 500,
		})

		if rr.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rr.Code)
		}
	})
}

func TestValidateEndpoint(t *testing.T) {
	server := createTestServer(t)
	sessionID := createTestSession(t, server)

	doJSON(server, http.MethodPost, "/transactions", sessionID, SubmitRequest{
		Handle: "user@sbi",
		Amount: 900,
	})

	t.Run("SuccessfulValidation", func(t *testing.T) {
		rr := doJSON(server, http.MethodPost, "/transactions/0/validate", sessionID, nil)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
		}

		var tx domain.Transaction
		if err := json.Unmarshal(rr.Body.Bytes(), &tx); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if tx.Status != domain.StatusValidated {
			t.Errorf("expected status Validated, got %s", tx.Status)
		}
	})

	t.Run("IndexOutOfRange", func(t *testing.T) {
		rr := doJSON(server, http.MethodPost, "/transactions/5/validate", sessionID, nil)

		if rr.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rr.Code)
		}
	})

	t.Run("NonIntegerIndex", func(t *testing.T) {
		rr := doJSON(server, http.MethodPost, "/transactions/abc/validate", sessionID, nil)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rr.Code)
		}
	})
}

func TestScanEndpoint(t *testing.T) {
	server := createTestServer(t)
	sessionID := createTestSession(t, server)

	doJSON(server, http.MethodPost, "/transactions", sessionID, SubmitRequest{
		Handle:   "user@hdfcbank",
		Amount:   75000,
		Location: "Goa",
	})

	// The submit already scanned, so a second scan raises nothing new.
	rr := doJSON(server, http.MethodPost, "/fraud/scan", sessionID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		NewAlerts []string `json:"newAlerts"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(resp.NewAlerts) != 0 {
		t.Errorf("expected no new alerts on re-scan, got %v", resp.NewAlerts)
	}

	// The alert log still holds both alerts from the submit-time scan.
	rr = doJSON(server, http.MethodGet, "/alerts", sessionID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var alertsResp struct {
		Alerts []string `json:"alerts"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &alertsResp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(alertsResp.Alerts) != 2 {
		t.Errorf("expected 2 alerts in the log, got %v", alertsResp.Alerts)
	}
}

func TestVerificationEndpoints(t *testing.T) {
	server := createTestServer(t)
	sessionID := createTestSession(t, server)

	t.Run("TaxID", func(t *testing.T) {
		rr := doJSON(server, http.MethodPost, "/verify/tax-id", sessionID, CredentialRequest{Value: "ABCDE1234F"})
		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
		}

		var resp VerifyResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if !resp.Valid || !resp.Flags.TaxID {
			t.Errorf("expected valid tax id with flag set, got %+v", resp)
		}
	})

	t.Run("TaxIDRejectedKeepsFlag", func(t *testing.T) {
		rr := doJSON(server, http.MethodPost, "/verify/tax-id", sessionID, CredentialRequest{Value: "ABCDE1234f"})
		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rr.Code)
		}

		var resp VerifyResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if resp.Valid {
			t.Error("expected lowercase-suffix tax id to be rejected")
		}
		if !resp.Flags.TaxID {
			t.Error("expected a failed attempt to keep the earlier verified flag")
		}
	})

	t.Run("Registration", func(t *testing.T) {
		rr := doJSON(server, http.MethodPost, "/verify/registration", sessionID, CredentialRequest{Value: "22ABCDE1234F1Z5"})

		var resp VerifyResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if !resp.Valid || !resp.Flags.Registration {
			t.Errorf("expected valid registration number, got %+v", resp)
		}
	})

	t.Run("BankAccount", func(t *testing.T) {
		rr := doJSON(server, http.MethodPost, "/verify/bank-account", sessionID, CredentialRequest{Value: "123456789"})

		var resp VerifyResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if !resp.Valid || !resp.Flags.BankAccount {
			t.Errorf("expected valid bank account, got %+v", resp)
		}
	})

	t.Run("IdentityFromLines", func(t *testing.T) {
		rr := doJSON(server, http.MethodPost, "/verify/identity", sessionID, LinesRequest{
			Lines: []string{"Government of India", "1234 5678 9012"},
		})

		var resp VerifyResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if !resp.Valid || !resp.Flags.IdentityDocument {
			t.Errorf("expected identity document to verify, got %+v", resp)
		}
	})

	t.Run("QRFromLines", func(t *testing.T) {
		rr := doJSON(server, http.MethodPost, "/verify/qr", sessionID, LinesRequest{
			Lines: []string{"upi://pay?pa=merchant@okaxis"},
		})

		var resp struct {
			Linked bool                     `json:"linked"`
			Handle string                   `json:"handle"`
			Flags  domain.VerificationFlags `json:"flags"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if !resp.Linked || !resp.Flags.LinkedAccount {
			t.Errorf("expected QR link to succeed, got %+v", resp)
		}
		if resp.Handle == "" {
			t.Error("expected the linked handle in the response")
		}
	})

	t.Run("ImageWithoutExtractor", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/verify/identity", bytes.NewBufferString("fake-image-bytes"))
		req.Header.Set("Content-Type", "image/png")
		req.Header.Set("X-Session-ID", sessionID)

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusServiceUnavailable {
			t.Errorf("expected status 503 when extraction is unconfigured, got %d", rr.Code)
		}
	})

	t.Run("VerificationSummary", func(t *testing.T) {
		rr := doJSON(server, http.MethodGet, "/verification", sessionID, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rr.Code)
		}

		var resp struct {
			Flags       domain.VerificationFlags `json:"flags"`
			CreditScore int                      `json:"creditScore"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if !resp.Flags.TaxID || !resp.Flags.Registration || !resp.Flags.BankAccount {
			t.Errorf("expected accumulated flags, got %+v", resp.Flags)
		}
	})
}

func TestVerifyWithExtractor(t *testing.T) {
	server := createTestServer(t)
	server.Handler().extractor = &ocr.Static{Lines: []string{"Name: Test", "1234 5678 9012"}}
	sessionID := createTestSession(t, server)

	req := httptest.NewRequest(http.MethodPost, "/verify/identity", bytes.NewBufferString("fake-image-bytes"))
	req.Header.Set("Content-Type", "image/png")
	req.Header.Set("X-Session-ID", sessionID)

	rr := httptest.NewRecorder()
	server.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp VerifyResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !resp.Valid {
		t.Error("expected extracted lines to verify the document")
	}
}

func TestRegisterAndLogin(t *testing.T) {
	server := createTestServer(t)

	t.Run("Register", func(t *testing.T) {
		rr := doJSON(server, http.MethodPost, "/register", "", CredentialsRequest{
			Username: "analyst",
			Password: "secret",
		})
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("DuplicateRegister", func(t *testing.T) {
		rr := doJSON(server, http.MethodPost, "/register", "", CredentialsRequest{
			Username: "analyst",
			Password: "other",
		})
		if rr.Code != http.StatusConflict {
			t.Errorf("expected status 409, got %d", rr.Code)
		}
	})

	t.Run("LoginStartsSession", func(t *testing.T) {
		rr := doJSON(server, http.MethodPost, "/login", "", CredentialsRequest{
			Username: "analyst",
			Password: "secret",
		})
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
		}

		var resp SessionResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if resp.User != "analyst" {
			t.Errorf("expected user analyst, got %s", resp.User)
		}
	})

	t.Run("WrongPassword", func(t *testing.T) {
		rr := doJSON(server, http.MethodPost, "/login", "", CredentialsRequest{
			Username: "analyst",
			Password: "wrong",
		})
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rr.Code)
		}
	})
}

func TestLogout(t *testing.T) {
	server := createTestServer(t)
	sessionID := createTestSession(t, server)

	doJSON(server, http.MethodPost, "/transactions", sessionID, SubmitRequest{
		Handle: "user@sbi",
		Amount: 700,
	})

	rr := doJSON(server, http.MethodDelete, "/session", sessionID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	// The id is dead afterwards.
	rr = doJSON(server, http.MethodGet, "/transactions", sessionID, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404 after logout, got %d", rr.Code)
	}

	rr = doJSON(server, http.MethodDelete, "/session", sessionID, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404 on repeated logout, got %d", rr.Code)
	}
}

func TestRuleEndpoints(t *testing.T) {
	server := createTestServer(t)
	sessionID := createTestSession(t, server)

	t.Run("ListBuiltins", func(t *testing.T) {
		rr := doJSON(server, http.MethodGet, "/rules", sessionID, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rr.Code)
		}

		var resp struct {
			Rules []rules.Rule `json:"rules"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if len(resp.Rules) != 2 {
			t.Errorf("expected 2 builtin rules, got %d", len(resp.Rules))
		}
	})

	t.Run("CreateRule", func(t *testing.T) {
		rr := doJSON(server, http.MethodPost, "/rules", sessionID, rules.Rule{
			ID:         "round-amount",
			Name:       "Round Amount",
			Expression: `amount % 10000 == 0 && amount >= 10000`,
			Template:   "Round Amount: transaction {{.ID}} for exactly {{.Amount}}",
		})
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("RejectBadExpression", func(t *testing.T) {
		rr := doJSON(server, http.MethodPost, "/rules", sessionID, rules.Rule{
			ID:         "broken",
			Name:       "Broken",
			Expression: `amount +`,
			Template:   "never",
		})
		if rr.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected status 422, got %d", rr.Code)
		}
	})
}

func TestHealthEndpoints(t *testing.T) {
	server := createTestServer(t)

	rr := httptest.NewRecorder()
	server.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200 from /health, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	server.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200 from /ready, got %d", rr.Code)
	}
}
