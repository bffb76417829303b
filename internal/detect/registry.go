package detect

import (
	"strings"

	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

// Outcome is a rule's answer for one candidate.
type Outcome int

const (
	Pass Outcome = iota
	Match
	Veto
)

// Candidate is the text under test plus its neighbours on the same line.
// Prev and Next are empty at line boundaries.
type Candidate struct {
	Text string
	Prev string
	Next string
}

// Result describes a match.
type Result struct {
	Kind   redact.Kind
	Reason string

	// Strength is the rule's own certainty in (0,1]. It caps the score of
	// unvalidated matches.
	Strength float64

	// Validated is set when the match passed a checksum or structural check.
	Validated bool

	// Custom is set for matches produced by a user pattern.
	Custom bool
}

// Rule is one entry of the ordered registry.
type Rule struct {
	Kind   redact.Kind
	Detect func(c Candidate) (Result, Outcome)
}

// Registry classifies candidates with custom patterns first, then the
// built-in rules in precedence order.
type Registry struct {
	custom  *PatternEngine
	secrets SecretScanner
	rules   []Rule
}

// Option configures a Registry.
type Option func(*Registry)

// WithCustomPatterns evaluates e before every built-in rule.
func WithCustomPatterns(e *PatternEngine) Option {
	return func(r *Registry) { r.custom = e }
}

// WithSecretScanner consults s inside the API_KEY slot when the fixed-prefix
// check does not match.
func WithSecretScanner(s SecretScanner) Option {
	return func(r *Registry) { r.secrets = s }
}

// NewRegistry builds a registry with the built-in rules.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{}
	for _, opt := range opts {
		opt(r)
	}
	r.rules = []Rule{
		{Kind: redact.KindPAN, Detect: detectPAN},
		{Kind: redact.KindIBAN, Detect: detectIBAN},
		{Kind: redact.KindSSN, Detect: detectSSN},
		{Kind: redact.KindPassport, Detect: detectPassport},
		{Kind: redact.KindJWT, Detect: detectJWT},
		{Kind: redact.KindAPIKey, Detect: r.detectAPIKey},
		{Kind: redact.KindEmail, Detect: detectEmail},
		{Kind: redact.KindPhone, Detect: detectPhone},
		{Kind: redact.KindAddress, Detect: detectAddress},
		{Kind: redact.KindName, Detect: detectName},
	}
	return r
}

// Precedence returns the built-in kinds in evaluation order.
func (r *Registry) Precedence() []redact.Kind {
	kinds := make([]redact.Kind, len(r.rules))
	for i, rule := range r.rules {
		kinds[i] = rule.Kind
	}
	return kinds
}

// Classify runs the candidate through the custom patterns and the built-in
// rules. It returns false when nothing matched or a rule vetoed the candidate.
func (r *Registry) Classify(c Candidate) (Result, bool) {
	c.Text = clean(c.Text)
	c.Prev = clean(c.Prev)
	c.Next = clean(c.Next)
	if c.Text == "" {
		return Result{}, false
	}

	if r.custom != nil {
		if res, ok := r.custom.Match(c.Text); ok {
			return res, true
		}
	}

	for _, rule := range r.rules {
		res, outcome := rule.Detect(c)
		switch outcome {
		case Match:
			res.Kind = rule.Kind
			return res, true
		case Veto:
			return Result{}, false
		}
	}
	return Result{}, false
}

// clean strips punctuation that OCR and text layers attach to word edges.
func clean(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'`()[]{}<>,;")
	s = strings.TrimRight(s, ".:!?")
	return s
}
