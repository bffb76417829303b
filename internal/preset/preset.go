// Package preset holds the named redaction presets offered to callers.
//
// Four presets are built in. Presets from configuration are layered on top
// and replace a built-in with the same id. A configured preset that names
// an unknown kind or style, or has a threshold outside [0,1], is skipped as
// a whole; a bad regex only drops that pattern. Both produce a
// *redact.ValidationError in the warnings returned by NewStore.
package preset

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/ironsheep/redact-tools-mcp/internal/detect"
	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

// DefaultID is used when a caller names no preset.
const DefaultID = "default"

// Definition is the configuration form of a preset. Kinds and styles are
// wire names so that the file format stays plain strings.
type Definition struct {
	ID                  string            `toml:"id" mapstructure:"id" json:"id"`
	Name                string            `toml:"name" mapstructure:"name" json:"name"`
	EnabledKinds        []string          `toml:"enabled_kinds" mapstructure:"enabled_kinds" json:"enabled_kinds,omitempty"`
	StyleMap            map[string]string `toml:"style_map" mapstructure:"style_map" json:"style_map,omitempty"`
	ConfidenceThreshold *float64          `toml:"confidence_threshold" mapstructure:"confidence_threshold" json:"confidence_threshold,omitempty"`
	CustomPatterns      []PatternDef      `toml:"custom_patterns" mapstructure:"custom_patterns" json:"custom_patterns,omitempty"`
}

// PatternDef is the configuration form of a custom pattern.
type PatternDef struct {
	ID            string  `toml:"id" mapstructure:"id" json:"id"`
	Name          string  `toml:"name" mapstructure:"name" json:"name"`
	Pattern       string  `toml:"pattern" mapstructure:"pattern" json:"pattern"`
	Kind          string  `toml:"kind" mapstructure:"kind" json:"kind"`
	Confidence    float64 `toml:"confidence" mapstructure:"confidence" json:"confidence"`
	CaseSensitive bool    `toml:"case_sensitive" mapstructure:"case_sensitive" json:"case_sensitive"`
}

func threshold(v float64) *float64 { return &v }

// Builtins returns fresh copies of the built-in presets.
func Builtins() []redact.Preset {
	return []redact.Preset{
		{
			ID:                  DefaultID,
			Name:                "All kinds, black boxes",
			ConfidenceThreshold: threshold(0.5),
		},
		{
			ID:           "financial",
			Name:         "Card and bank numbers, last four kept",
			EnabledKinds: []redact.Kind{redact.KindPAN, redact.KindIBAN},
			StyleMap: map[redact.Kind]redact.Style{
				redact.KindPAN:  redact.StyleMaskLast4,
				redact.KindIBAN: redact.StyleMaskLast4,
			},
			ConfidenceThreshold: threshold(0.6),
		},
		{
			ID:   "identity",
			Name: "Identity documents",
			EnabledKinds: []redact.Kind{
				redact.KindSSN, redact.KindPassport, redact.KindName, redact.KindAddress, redact.KindFace,
			},
			StyleMap: map[redact.Kind]redact.Style{
				redact.KindSSN:      redact.StyleBox,
				redact.KindPassport: redact.StyleBox,
				redact.KindName:     redact.StyleBox,
				redact.KindAddress:  redact.StyleBox,
				redact.KindFace:     redact.StyleBlur,
			},
			ConfidenceThreshold: threshold(0.5),
		},
		{
			ID:           "secrets",
			Name:         "Tokens and API keys",
			EnabledKinds: []redact.Kind{redact.KindJWT, redact.KindAPIKey},
			StyleMap: map[redact.Kind]redact.Style{
				redact.KindJWT:    redact.StyleSolidColor,
				redact.KindAPIKey: redact.StyleSolidColor,
			},
			ConfidenceThreshold: threshold(0.5),
		},
	}
}

// Store is a read-only set of presets keyed by id. It is safe for
// concurrent use.
type Store struct {
	mu      sync.RWMutex
	presets map[string]redact.Preset
}

// NewStore builds a store from the built-ins and the configured definitions.
//
// Returns the store and one error per skipped preset or pattern. The store
// is always usable, even when every definition was rejected.
func NewStore(defs []Definition, logger *log.Logger) (*Store, []error) {
	s := &Store{presets: make(map[string]redact.Preset)}
	for _, p := range Builtins() {
		s.presets[p.ID] = p
	}

	var warnings []error
	for _, def := range defs {
		p, errs := convert(def)
		for _, err := range errs {
			warnings = append(warnings, err)
			if logger != nil {
				logger.Warn("Ignoring preset entry", "preset", def.ID, "err", err)
			}
		}
		if p != nil {
			s.presets[p.ID] = *p
		}
	}
	return s, warnings
}

// Get returns the preset with the given id; the empty id means DefaultID.
// The returned preset is a copy the caller may modify.
func (s *Store) Get(id string) (*redact.Preset, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = DefaultID
	}
	s.mu.RLock()
	p, ok := s.presets[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", redact.ErrUnknownPreset, id)
	}
	return clone(p), nil
}

// List returns every preset sorted by id.
func (s *Store) List() []redact.Preset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]redact.Preset, 0, len(s.presets))
	for _, p := range s.presets {
		out = append(out, *clone(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func clone(p redact.Preset) *redact.Preset {
	c := p
	c.EnabledKinds = append([]redact.Kind(nil), p.EnabledKinds...)
	c.CustomPatterns = append([]redact.CustomPattern(nil), p.CustomPatterns...)
	if p.StyleMap != nil {
		c.StyleMap = make(map[redact.Kind]redact.Style, len(p.StyleMap))
		for k, v := range p.StyleMap {
			c.StyleMap[k] = v
		}
	}
	if p.ConfidenceThreshold != nil {
		c.ConfidenceThreshold = threshold(*p.ConfidenceThreshold)
	}
	return &c
}

// convert validates a definition. A nil preset means the whole entry was
// rejected.
func convert(def Definition) (*redact.Preset, []error) {
	id := strings.TrimSpace(def.ID)
	rule := "preset " + id
	invalid := func(err error) []error {
		return []error{&redact.ValidationError{Rule: rule, Err: err}}
	}
	if id == "" {
		return nil, invalid(errors.New("missing id"))
	}

	kinds, err := redact.ParseKinds(def.EnabledKinds)
	if err != nil {
		return nil, invalid(err)
	}

	var styles map[redact.Kind]redact.Style
	if len(def.StyleMap) > 0 {
		styles = make(map[redact.Kind]redact.Style, len(def.StyleMap))
		for kname, sname := range def.StyleMap {
			k, err := redact.ParseKind(kname)
			if err != nil {
				return nil, invalid(err)
			}
			st, err := redact.ParseStyle(sname)
			if err != nil {
				return nil, invalid(err)
			}
			styles[k] = st
		}
	}

	if t := def.ConfidenceThreshold; t != nil && (*t < 0 || *t > 1) {
		return nil, invalid(fmt.Errorf("confidence_threshold %g outside [0,1]", *t))
	}

	patterns, errs := ConvertPatterns(def.CustomPatterns)
	p := &redact.Preset{
		ID:                  id,
		Name:                def.Name,
		EnabledKinds:        kinds,
		StyleMap:            styles,
		ConfidenceThreshold: def.ConfidenceThreshold,
		CustomPatterns:      patterns,
	}
	if p.Name == "" {
		p.Name = id
	}
	return p, errs
}

// ConvertPatterns turns configured patterns into custom patterns, dropping
// those with an unknown kind or a regex that does not compile.
func ConvertPatterns(defs []PatternDef) ([]redact.CustomPattern, []error) {
	var (
		out  []redact.CustomPattern
		errs []error
	)
	for _, d := range defs {
		kind := redact.KindOther
		if strings.TrimSpace(d.Kind) != "" {
			k, err := redact.ParseKind(d.Kind)
			if err != nil {
				errs = append(errs, &redact.ValidationError{Rule: label(d), Err: err})
				continue
			}
			kind = k
		}
		cp := redact.CustomPattern{
			ID:            d.ID,
			Name:          d.Name,
			Pattern:       d.Pattern,
			Kind:          kind,
			Confidence:    d.Confidence,
			CaseSensitive: d.CaseSensitive,
		}
		if w := detect.NewPatternEngine([]redact.CustomPattern{cp}, nil).Warnings(); len(w) > 0 {
			errs = append(errs, w...)
			continue
		}
		out = append(out, cp)
	}
	return out, errs
}

func label(d PatternDef) string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}
