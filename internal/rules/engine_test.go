package rules

import (
	"strings"
	"testing"

	"github.com/sourishdey2005/fraud--detection/internal/alerts"
	"github.com/sourishdey2005/fraud--detection/internal/domain"
)

func newBuiltinEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	if err := engine.LoadRules(Builtin()); err != nil {
		t.Fatalf("failed to load builtin rules: %v", err)
	}
	return engine
}

func TestEngineCreation(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	defer engine.Close()

	if engine.RulesCount() != 0 {
		t.Errorf("expected 0 rules, got %d", engine.RulesCount())
	}
}

func TestLoadBuiltinRules(t *testing.T) {
	engine := newBuiltinEngine(t)
	defer engine.Close()

	if engine.RulesCount() != 2 {
		t.Errorf("expected 2 builtin rules, got %d", engine.RulesCount())
	}
}

func TestLoadInvalidRule(t *testing.T) {
	engine, _ := NewEngine()
	defer engine.Close()

	err := engine.LoadRule(Rule{
		ID:         "broken",
		Expression: "this is not valid CEL !!!",
		Template:   "x",
		Enabled:    true,
	})
	if err == nil {
		t.Error("expected error for invalid CEL expression")
	}
}

func TestLoadNonBooleanRule(t *testing.T) {
	engine, _ := NewEngine()
	defer engine.Close()

	err := engine.LoadRule(Rule{
		ID:         "numeric",
		Expression: "amount + 1",
		Template:   "x",
		Enabled:    true,
	})
	if err == nil {
		t.Error("expected error for non-boolean expression")
	}
}

func TestHighAmountRule(t *testing.T) {
	engine := newBuiltinEngine(t)
	defer engine.Close()

	cases := []struct {
		amount int64
		fires  bool
	}{
		{50000, false}, // threshold itself does not fire
		{50001, true},
		{1, false},
	}

	for _, tc := range cases {
		log := alerts.New()
		appended := engine.Scan([]domain.Transaction{
			{ID: "TXN1", Status: domain.StatusPending, Handle: "u@sbi", Amount: tc.amount},
		}, log)

		if tc.fires {
			if len(appended) != 1 {
				t.Fatalf("amount %d: expected 1 alert, got %d", tc.amount, len(appended))
			}
			if !strings.Contains(appended[0], "TXN1") {
				t.Errorf("alert must embed the transaction id: %q", appended[0])
			}
		} else if len(appended) != 0 {
			t.Errorf("amount %d: expected no alerts, got %v", tc.amount, appended)
		}
	}
}

func TestUnusualLocationRule(t *testing.T) {
	engine := newBuiltinEngine(t)
	defer engine.Close()

	cases := []struct {
		location string
		fires    bool
	}{
		{"Mumbai", false},
		{"MUMBAI", false}, // allow-list is case-insensitive
		{"delhi", false},
		{"Bangalore", false},
		{"Pune", true},
		{"", false}, // variant without a location field is skipped
	}

	for _, tc := range cases {
		log := alerts.New()
		appended := engine.Scan([]domain.Transaction{
			{ID: "TXN1", Status: domain.StatusPending, Handle: "u@sbi", Amount: 100, Location: tc.location},
		}, log)

		if tc.fires && len(appended) != 1 {
			t.Errorf("location %q: expected 1 alert, got %d", tc.location, len(appended))
		}
		if !tc.fires && len(appended) != 0 {
			t.Errorf("location %q: expected no alerts, got %v", tc.location, appended)
		}
	}
}

func TestScanIsIdempotent(t *testing.T) {
	engine := newBuiltinEngine(t)
	defer engine.Close()

	txs := []domain.Transaction{
		{ID: "TXN1", Status: domain.StatusPending, Handle: "u@hdfcbank", Amount: 60000, Location: "Pune"},
	}
	log := alerts.New()

	first := engine.Scan(txs, log)
	if len(first) != 2 {
		t.Fatalf("expected 2 alerts on first scan, got %d: %v", len(first), first)
	}

	second := engine.Scan(txs, log)
	if len(second) != 0 {
		t.Errorf("expected no new alerts on second scan, got %v", second)
	}
	if log.Len() != 2 {
		t.Errorf("log must not grow on re-scan, got %d entries", log.Len())
	}
}

func TestValidatedTransactionStillRescans(t *testing.T) {
	engine := newBuiltinEngine(t)
	defer engine.Close()

	log := alerts.New()
	tx := domain.Transaction{ID: "TXN1", Status: domain.StatusPending, Handle: "u@sbi", Amount: 60000}
	engine.Scan([]domain.Transaction{tx}, log)

	// Status transition does not change the rendered message, so the
	// re-fired rule appends nothing.
	tx.Status = domain.StatusValidated
	appended := engine.Scan([]domain.Transaction{tx}, log)
	if len(appended) != 0 {
		t.Errorf("expected no new alerts after validation, got %v", appended)
	}
}

func TestLoadRuleReplacesByID(t *testing.T) {
	engine := newBuiltinEngine(t)
	defer engine.Close()

	err := engine.LoadRule(Rule{
		ID:         RuleHighAmount,
		Name:       "High amount (lowered)",
		Expression: "amount > 100",
		Template:   "Fraud Alert: transaction {{.ID}} with amount {{.Amount}} looks suspicious",
		Enabled:    true,
	})
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if engine.RulesCount() != 2 {
		t.Errorf("expected rule replacement, got %d rules", engine.RulesCount())
	}

	log := alerts.New()
	appended := engine.Scan([]domain.Transaction{
		{ID: "TXN1", Handle: "u@sbi", Amount: 101},
	}, log)
	if len(appended) != 1 {
		t.Errorf("expected replaced rule to fire, got %v", appended)
	}
}

func TestValidateRuleDoesNotLoad(t *testing.T) {
	engine, _ := NewEngine()
	defer engine.Close()

	if err := engine.ValidateRule(Builtin()[0]); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if engine.RulesCount() != 0 {
		t.Errorf("ValidateRule must not load, got %d rules", engine.RulesCount())
	}
}
