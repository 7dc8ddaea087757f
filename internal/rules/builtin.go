package rules

// Built-in rule identifiers.
const (
	RuleHighAmount      = "high-amount"
	RuleUnusualLocation = "unusual-location"
)

// HighAmountThreshold is the amount above which a transaction is flagged.
// The rule fires strictly above the threshold: 50000 itself does not fire.
const HighAmountThreshold = 50000

// Builtin returns the fixed rule set of the dashboard. The unusual-location
// rule is skipped for records whose form variant did not collect a location
// (empty field); the city allow-list is matched case-insensitively.
func Builtin() []Rule {
	return []Rule{
		{
			ID:          RuleHighAmount,
			Name:        "High amount",
			Description: "Flags transactions above the suspicious amount threshold.",
			Expression:  "amount > 50000",
			Template:    "Fraud Alert: transaction {{.ID}} with amount {{.Amount}} looks suspicious",
			Enabled:     true,
		},
		{
			ID:          RuleUnusualLocation,
			Name:        "Unusual location",
			Description: "Flags transactions submitted from outside the expected cities.",
			Expression:  `location != "" && !(location.lowerAscii() in ["mumbai", "delhi", "bangalore"])`,
			Template:    "Unusual Location: transaction {{.ID}} from {{.Location}}",
			Enabled:     true,
		},
	}
}
