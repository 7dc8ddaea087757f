// Package rules provides the CEL-Go based fraud rule engine.
package rules

import (
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/ext"

	"github.com/sourishdey2005/fraud--detection/internal/alerts"
	"github.com/sourishdey2005/fraud--detection/internal/domain"
)

// Rule is a fraud detection rule: a CEL predicate over one transaction plus
// a message template rendered when the predicate fires.
type Rule struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// Expression is a CEL expression returning bool. Available variables:
	// id, handle, location, status (string) and amount (int).
	Expression string `json:"expression"`

	// Template is a text/template over the transaction record. Distinct
	// rules must render distinct text for the same transaction; the alert
	// log deduplicates by exact message text.
	Template string `json:"template"`

	Enabled bool `json:"enabled"`
}

type compiledRule struct {
	config  Rule
	program cel.Program
	tmpl    *template.Template
}

// Engine evaluates the loaded rules against transaction records. Rules are
// evaluated in load order, each independently per transaction.
type Engine struct {
	mu       sync.RWMutex
	env      *cel.Env
	compiled []*compiledRule
}

// NewEngine creates a rule engine with an empty rule set.
func NewEngine() (*Engine, error) {
	env, err := cel.NewEnv(
		ext.Strings(),
		cel.Variable("id", cel.StringType),
		cel.Variable("handle", cel.StringType),
		cel.Variable("amount", cel.IntType),
		cel.Variable("location", cel.StringType),
		cel.Variable("status", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Engine{env: env}, nil
}

// ValidateRule compiles a rule without loading it.
func (e *Engine) ValidateRule(cfg Rule) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	_, err := e.compileRule(cfg)
	return err
}

// LoadRule compiles and appends a rule. A rule with an already-loaded ID is
// replaced in place, keeping its position in the evaluation order.
func (e *Engine) LoadRule(cfg Rule) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	compiled, err := e.compileRule(cfg)
	if err != nil {
		return err
	}

	for i, existing := range e.compiled {
		if existing.config.ID == cfg.ID {
			e.compiled[i] = compiled
			return nil
		}
	}
	e.compiled = append(e.compiled, compiled)
	return nil
}

// LoadRules compiles and loads the enabled rules in order.
func (e *Engine) LoadRules(configs []Rule) error {
	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}
		if err := e.LoadRule(cfg); err != nil {
			return err
		}
	}
	return nil
}

// Scan evaluates every loaded rule against every transaction in order and
// appends each rendered message to the alert log unless identical text is
// already present. Returns the newly appended messages. Scan never removes
// entries and is idempotent with respect to log growth: a second call with
// an unchanged store appends nothing.
func (e *Engine) Scan(transactions []domain.Transaction, log *alerts.Log) []string {
	e.mu.RLock()
	rules := make([]*compiledRule, len(e.compiled))
	copy(rules, e.compiled)
	e.mu.RUnlock()

	var appended []string
	for _, tx := range transactions {
		activation := map[string]any{
			"id":       tx.ID,
			"handle":   tx.Handle,
			"amount":   tx.Amount,
			"location": tx.Location,
			"status":   string(tx.Status),
		}

		for _, rule := range rules {
			out, _, err := rule.program.Eval(activation)
			if err != nil {
				continue
			}
			fired, ok := out.(types.Bool)
			if !ok || !bool(fired) {
				continue
			}

			var sb strings.Builder
			if err := rule.tmpl.Execute(&sb, tx); err != nil {
				continue
			}
			if log.Append(sb.String()) {
				appended = append(appended, sb.String())
			}
		}
	}

	return appended
}

// RulesCount returns the number of loaded rules.
func (e *Engine) RulesCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.compiled)
}

// LoadedRules returns the loaded rule configurations in evaluation order.
func (e *Engine) LoadedRules() []Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]Rule, 0, len(e.compiled))
	for _, c := range e.compiled {
		out = append(out, c.config)
	}
	return out
}

// Close cleans up the engine.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compiled = nil
	return nil
}

func (e *Engine) compileRule(cfg Rule) (*compiledRule, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("rule id is required")
	}

	ast, issues := e.env.Compile(cfg.Expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile rule %s: %w", cfg.ID, issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("rule %s: expression must return bool, got %s", cfg.ID, ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program for rule %s: %w", cfg.ID, err)
	}

	tmpl, err := template.New(cfg.ID).Parse(cfg.Template)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template for rule %s: %w", cfg.ID, err)
	}

	return &compiledRule{
		config:  cfg,
		program: program,
		tmpl:    tmpl,
	}, nil
}
