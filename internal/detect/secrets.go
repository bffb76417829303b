package detect

import (
	"fmt"
	"sync"

	gitleaks "github.com/zricethezav/gitleaks/v8/detect"
)

// SecretScanner finds credentials the fixed-prefix API key rule cannot see.
type SecretScanner interface {
	// Scan returns the matching rule id when text holds a secret.
	Scan(text string) (rule string, ok bool)
}

// GitleaksScanner adapts the gitleaks default rule set to SecretScanner.
type GitleaksScanner struct {
	mu       sync.Mutex
	detector *gitleaks.Detector
}

// NewGitleaksScanner loads the default gitleaks configuration.
func NewGitleaksScanner() (*GitleaksScanner, error) {
	d, err := gitleaks.NewDetectorDefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create gitleaks detector: %w", err)
	}
	return &GitleaksScanner{detector: d}, nil
}

// Scan runs the detector over text. The detector keeps internal state, so
// calls are serialized.
func (g *GitleaksScanner) Scan(text string) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	findings := g.detector.DetectBytes([]byte(text))
	if len(findings) == 0 {
		return "", false
	}
	return findings[0].RuleID, true
}
