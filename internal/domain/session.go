package domain

import "time"

// Credential identifies a verifiable credential kind.
type Credential string

const (
	CredentialIdentityDocument Credential = "identity-document"
	CredentialTaxID            Credential = "tax-id"
	CredentialRegistration     Credential = "business-registration"
	CredentialBankAccount      Credential = "bank-account"
	CredentialLinkedAccount    Credential = "linked-account"
)

// VerificationFlags records which credentials have been verified during the
// session. A flag is set on the first successful validation of a freshly
// submitted credential and is never reset within the session.
type VerificationFlags struct {
	IdentityDocument bool `json:"identityDocument"`
	TaxID            bool `json:"taxId"`
	Registration     bool `json:"registration"`
	BankAccount      bool `json:"bankAccount"`
	LinkedAccount    bool `json:"linkedAccount"`
}

// SessionState is the serializable snapshot of one dashboard session. It is
// what the session store persists between user interactions; all decision
// logic operates on a session reconstructed from it.
type SessionState struct {
	ID           string            `json:"id"`
	User         string            `json:"user,omitempty"`
	Transactions []Transaction     `json:"transactions"`
	Alerts       []string          `json:"alerts"`
	Flags        VerificationFlags `json:"flags"`

	// LinkedHandle is the payment handle recovered from a scanned QR code,
	// if any.
	LinkedHandle string `json:"linkedHandle,omitempty"`

	// CreditScore is assigned once at session creation (300-900).
	CreditScore int `json:"creditScore"`

	CreatedAt time.Time `json:"createdAt"`
}
