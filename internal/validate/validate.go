package validate

import "swipe/internal/domain"

// Severity classifies how serious a failed check is. Errors point at
// data a caller should not trust; warnings flag fields worth reviewing.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one failed check against the reconciled dataset.
type Issue struct {
	RuleKey   string   `json:"ruleKey"`
	FieldPath string   `json:"fieldPath"`
	Severity  Severity `json:"severity"`
	Message   string   `json:"message"`
}

// Rule is a single consistency check over a reconciled dataset.
type Rule interface {
	Key() string
	Severity() Severity
	Check(ds *domain.Dataset) []Issue
}

// Registry maps rule keys to Rule implementations.
type Registry struct {
	rules map[string]Rule
	order []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]Rule)}
}

// Register adds a rule to the registry. Re-registering a key replaces
// the rule but keeps its original position.
func (r *Registry) Register(rule Rule) {
	if _, exists := r.rules[rule.Key()]; !exists {
		r.order = append(r.order, rule.Key())
	}
	r.rules[rule.Key()] = rule
}

// Get returns the rule for a given key, or nil if not found.
func (r *Registry) Get(key string) Rule {
	return r.rules[key]
}

// Run executes every registered rule in registration order and collects
// the failed checks.
func (r *Registry) Run(ds *domain.Dataset) []Issue {
	var issues []Issue
	for _, key := range r.order {
		issues = append(issues, r.rules[key].Check(ds)...)
	}
	return issues
}

// DefaultRegistry returns a registry loaded with all built-in rules.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, rule := range BuiltinRules() {
		r.Register(rule)
	}
	return r
}
