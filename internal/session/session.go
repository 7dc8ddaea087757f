// Package session owns the per-session dashboard state: the transaction
// ledger, the alert log and the credential verification flags. Every core
// operation goes through a Session; the process holds no package-level
// state.
package session

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/sourishdey2005/fraud--detection/internal/alerts"
	"github.com/sourishdey2005/fraud--detection/internal/domain"
	"github.com/sourishdey2005/fraud--detection/internal/identity"
	"github.com/sourishdey2005/fraud--detection/internal/ledger"
	"github.com/sourishdey2005/fraud--detection/internal/rules"
)

// Session is one user's dashboard session. It is not safe for concurrent
// use: the dashboard is request/response per user action, and the HTTP layer
// reconstructs a session from its stored snapshot for each request.
type Session struct {
	id           string
	user         string
	ledger       *ledger.Ledger
	log          *alerts.Log
	flags        domain.VerificationFlags
	linkedHandle string
	creditScore  int
	createdAt    time.Time

	engine     *rules.Engine
	validation domain.ValidationConfig
}

// New creates a fresh session with empty state and a randomly assigned
// credit score between 300 and 900.
func New(user string, engine *rules.Engine, validation domain.ValidationConfig) *Session {
	return &Session{
		id:          uuid.New().String(),
		user:        user,
		ledger:      ledger.New(),
		log:         alerts.New(),
		creditScore: 300 + rand.Intn(601),
		createdAt:   time.Now().UTC(),
		engine:      engine,
		validation:  validation,
	}
}

// FromState rebuilds a session from a stored snapshot.
func FromState(state *domain.SessionState, engine *rules.Engine, validation domain.ValidationConfig) *Session {
	return &Session{
		id:           state.ID,
		user:         state.User,
		ledger:       ledger.FromRecords(state.Transactions),
		log:          alerts.FromEntries(state.Alerts),
		flags:        state.Flags,
		linkedHandle: state.LinkedHandle,
		creditScore:  state.CreditScore,
		createdAt:    state.CreatedAt,
		engine:       engine,
		validation:   validation,
	}
}

// State returns the serializable snapshot of the session.
func (s *Session) State() *domain.SessionState {
	return &domain.SessionState{
		ID:           s.id,
		User:         s.user,
		Transactions: s.ledger.All(),
		Alerts:       s.log.All(),
		Flags:        s.flags,
		LinkedHandle: s.linkedHandle,
		CreditScore:  s.creditScore,
		CreatedAt:    s.createdAt,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// User returns the logged-in username, if any.
func (s *Session) User() string { return s.user }

// CreditScore returns the score assigned at session creation.
func (s *Session) CreditScore() int { return s.creditScore }

// SubmitTransaction validates the payment handle and records a new Pending
// transaction. On rejection nothing is stored and the error wraps
// ledger.ErrHandleRejected.
func (s *Session) SubmitTransaction(handle string, amount int64, location string) (domain.Transaction, error) {
	return s.ledger.Submit(handle, amount, location)
}

// ValidateTransaction marks the transaction at index as Validated.
func (s *Session) ValidateTransaction(index int) error {
	return s.ledger.Validate(index)
}

// Transactions returns the recorded transactions in insertion order.
func (s *Session) Transactions() []domain.Transaction {
	return s.ledger.All()
}

// ScanForFraud evaluates the rule set against every recorded transaction
// and returns the newly raised alerts. Repeated calls with an unchanged
// ledger raise nothing.
func (s *Session) ScanForFraud() []string {
	return s.engine.Scan(s.ledger.All(), s.log)
}

// Alerts returns the alert log in append order.
func (s *Session) Alerts() []string {
	return s.log.All()
}

// Flags returns the credential verification flags.
func (s *Session) Flags() domain.VerificationFlags {
	return s.flags
}

// LinkedHandle returns the payment handle linked via QR scan, if any.
func (s *Session) LinkedHandle() string {
	return s.linkedHandle
}

// VerifyTaxID validates a tax identifier and, on success, marks the tax-ID
// credential verified. A failure never clears a previously set flag.
func (s *Session) VerifyTaxID(value string) bool {
	if !identity.ValidTaxID(value, s.validation.StrictTaxID) {
		return false
	}
	s.flags.TaxID = true
	return true
}

// VerifyRegistrationNumber validates a business-registration number and, on
// success, marks the registration credential verified.
func (s *Session) VerifyRegistrationNumber(value string) bool {
	if !identity.ValidRegistrationNumber(value, s.validation.StrictRegistration) {
		return false
	}
	s.flags.Registration = true
	return true
}

// VerifyBankAccount validates a bank account number and, on success, marks
// the bank-account credential verified.
func (s *Session) VerifyBankAccount(value string) bool {
	if !identity.ValidBankAccount(value) {
		return false
	}
	s.flags.BankAccount = true
	return true
}

// VerifyIdentityDocument scans the text lines extracted from an uploaded
// document and, on the first line containing an identity-number token,
// marks the identity-document credential verified.
func (s *Session) VerifyIdentityDocument(lines []string) bool {
	if !identity.VerifyIdentityDocument(lines) {
		return false
	}
	s.flags.IdentityDocument = true
	return true
}

// LinkAccount scans the text lines extracted from a QR code and, when a
// payment-handle reference is found, records it and marks the
// linked-account credential verified.
func (s *Session) LinkAccount(lines []string) (string, bool) {
	handle, ok := identity.LinkedHandle(lines)
	if !ok {
		return "", false
	}
	s.linkedHandle = handle
	s.flags.LinkedAccount = true
	return handle, true
}
