package detect

import (
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

// DefaultCustomConfidence is used when a custom pattern leaves Confidence at zero.
const DefaultCustomConfidence = 0.9

type compiledPattern struct {
	def redact.CustomPattern
	re  *regexp.Regexp
}

// PatternEngine evaluates user patterns in list order. Patterns compile
// lazily on first use; a pattern that fails validation is skipped and
// reported through Warnings, and the remaining patterns still run.
type PatternEngine struct {
	defs   []redact.CustomPattern
	logger *log.Logger

	once     sync.Once
	compiled []compiledPattern
	invalid  []error
}

// NewPatternEngine returns an engine over patterns. logger may be nil.
func NewPatternEngine(patterns []redact.CustomPattern, logger *log.Logger) *PatternEngine {
	defs := make([]redact.CustomPattern, len(patterns))
	copy(defs, patterns)
	return &PatternEngine{defs: defs, logger: logger}
}

func (e *PatternEngine) compile() {
	for _, def := range e.defs {
		re, err := compilePattern(def)
		if err != nil {
			verr := &redact.ValidationError{Rule: patternLabel(def), Err: err}
			e.invalid = append(e.invalid, verr)
			if e.logger != nil {
				e.logger.Warn("skipping custom pattern", "pattern", patternLabel(def), "err", err)
			}
			continue
		}
		if def.Confidence == 0 {
			def.Confidence = DefaultCustomConfidence
		}
		e.compiled = append(e.compiled, compiledPattern{def: def, re: re})
	}
}

func compilePattern(def redact.CustomPattern) (*regexp.Regexp, error) {
	if def.Pattern == "" {
		return nil, errors.New("empty pattern")
	}
	if !def.Kind.Valid() {
		return nil, fmt.Errorf("invalid kind %d", int(def.Kind))
	}
	if def.Confidence < 0 || def.Confidence > 1 {
		return nil, fmt.Errorf("confidence %g outside [0,1]", def.Confidence)
	}
	expr := def.Pattern
	if !def.CaseSensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("failed to compile pattern: %w", err)
	}
	return re, nil
}

// Match returns the first pattern matching text.
func (e *PatternEngine) Match(text string) (Result, bool) {
	e.once.Do(e.compile)
	for _, p := range e.compiled {
		if p.re.MatchString(text) {
			return Result{
				Kind:     p.def.Kind,
				Reason:   fmt.Sprintf("custom pattern %q", patternLabel(p.def)),
				Strength: p.def.Confidence,
				Custom:   true,
			}, true
		}
	}
	return Result{}, false
}

// Warnings returns one ValidationError per skipped pattern.
func (e *PatternEngine) Warnings() []error {
	e.once.Do(e.compile)
	return e.invalid
}

// Len returns the number of patterns that compiled.
func (e *PatternEngine) Len() int {
	e.once.Do(e.compile)
	return len(e.compiled)
}

func patternLabel(p redact.CustomPattern) string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}
