// Package identity provides the credential format validators. Every
// validator is a pure predicate: no stored state, no side effects, never
// panics on malformed or empty input.
package identity

import (
	"regexp"
	"strings"
)

// handleSuffixes is the enumerated set of known payment-service suffixes. A
// payment handle is accepted iff it ends with one of these, case-sensitive,
// no normalization. A bare suffix ("@sbi") is accepted; that is observed
// behavior, not an oversight.
var handleSuffixes = []string{
	"@sbi", "@imobile", "@pockets", "@ezeepay", "@eazypay", "@icici", "@okicici",
	"@hdfcbank", "@payzapp", "@okhdfcbank", "@rajgovhdfcbank", "@mahb", "@kotak",
	"@kaypay", "@kmb", "@kmbl", "@yesbank", "@yesbankltd", "@ubi", "@united",
	"@utbi", "@idbi", "@idbibank", "@hsbc", "@pnb", "@centralbank", "@cbin",
	"@cboi", "@cnrb", "@barodampay",
}

var (
	// Three space-separated 4-digit groups, matched anywhere inside one
	// extracted text line.
	identityNumberPattern = regexp.MustCompile(`[0-9]{4} [0-9]{4} [0-9]{4}`)

	// 10-character tax identifier: 5 uppercase letters, 4 digits, 1
	// uppercase letter. The lenient shape anchors the start only.
	taxIDStrict  = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	taxIDLenient = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]`)

	// 15-character registration number: 2 digits, 5 letters, 4 digits, 1
	// letter, 1 entity digit, literal Z, 1 final character. The strict
	// shape requires the entity digit to be 1-9 and the final character to
	// be a digit; the lenient shape allows any digit and a trailing
	// alphanumeric, without anchoring the end.
	registrationStrict  = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9]Z[0-9]$`)
	registrationLenient = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][0-9]Z[A-Z0-9]`)

	bankAccountPattern = regexp.MustCompile(`^[0-9]{9,}$`)
)

// ValidPaymentHandle reports whether s ends with a known payment-service
// suffix.
func ValidPaymentHandle(s string) bool {
	for _, suffix := range handleSuffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

// HandleSuffixes returns a copy of the accepted suffix set.
func HandleSuffixes() []string {
	out := make([]string, len(handleSuffixes))
	copy(out, handleSuffixes)
	return out
}

// MatchIdentityNumber reports whether one extracted text line contains an
// identity-document number token.
func MatchIdentityNumber(line string) bool {
	return identityNumberPattern.MatchString(line)
}

// VerifyIdentityDocument scans the ordered text lines produced by the
// extraction collaborator and succeeds on the first line containing an
// identity-number token.
func VerifyIdentityDocument(lines []string) bool {
	for _, line := range lines {
		if MatchIdentityNumber(line) {
			return true
		}
	}
	return false
}

// ValidTaxID reports whether s matches the 10-character tax identifier
// template. Matching is case-sensitive.
func ValidTaxID(s string, strict bool) bool {
	if strict {
		return taxIDStrict.MatchString(s)
	}
	return taxIDLenient.MatchString(s)
}

// ValidRegistrationNumber reports whether s matches the 15-character
// business-registration template in the selected strictness mode.
func ValidRegistrationNumber(s string, strict bool) bool {
	if strict {
		return registrationStrict.MatchString(s)
	}
	return registrationLenient.MatchString(s)
}

// ValidBankAccount reports whether s consists only of decimal digits and has
// at least 9 of them. No upper bound, no checksum.
func ValidBankAccount(s string) bool {
	return bankAccountPattern.MatchString(s)
}

// LinkedHandle scans extracted QR-code text lines for a payment-handle
// reference and returns the first line mentioning one. The match is a
// case-insensitive substring check, as observed in the QR linking flow.
func LinkedHandle(lines []string) (string, bool) {
	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), "upi") {
			return line, true
		}
	}
	return "", false
}
