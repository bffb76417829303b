package redact

import (
	"fmt"
	"strings"
)

// Style is the visual or structural treatment applied to a detection's region.
// The zero value means no style was chosen.
type Style int

const (
	StyleBox Style = iota + 1
	StyleBlur
	StylePixelate
	StyleLabel
	StyleMaskLast4
	StylePattern
	StyleGradient
	StyleSolidColor
	StyleVectorOverlay
	StyleRemoveMetadata
)

var styleNames = map[Style]string{
	StyleBox:            "BOX",
	StyleBlur:           "BLUR",
	StylePixelate:       "PIXELATE",
	StyleLabel:          "LABEL",
	StyleMaskLast4:      "MASK_LAST4",
	StylePattern:        "PATTERN",
	StyleGradient:       "GRADIENT",
	StyleSolidColor:     "SOLID_COLOR",
	StyleVectorOverlay:  "VECTOR_OVERLAY",
	StyleRemoveMetadata: "REMOVE_METADATA",
}

// AllStyles returns every style in wire order.
func AllStyles() []Style {
	return []Style{
		StyleBox, StyleBlur, StylePixelate, StyleLabel, StyleMaskLast4,
		StylePattern, StyleGradient, StyleSolidColor, StyleVectorOverlay, StyleRemoveMetadata,
	}
}

func (s Style) String() string {
	if s == 0 {
		return ""
	}
	if name, ok := styleNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Style(%d)", int(s))
}

// IsSet reports whether a concrete style was chosen.
func (s Style) IsSet() bool {
	_, ok := styleNames[s]
	return ok
}

// ParseStyle converts a wire name (case-insensitive) into a Style. The empty
// string parses to the unset style.
func ParseStyle(s string) (Style, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	if want == "" {
		return 0, nil
	}
	for st, name := range styleNames {
		if name == want {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown redaction style %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Style) MarshalText() ([]byte, error) {
	if s != 0 && !s.IsSet() {
		return nil, fmt.Errorf("cannot marshal invalid style %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Style) UnmarshalText(text []byte) error {
	parsed, err := ParseStyle(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// PatternKind selects the fill drawn by StylePattern.
type PatternKind string

const (
	PatternDiagonal   PatternKind = "diagonal"
	PatternDots       PatternKind = "dots"
	PatternCrossHatch PatternKind = "cross-hatch"
	PatternWaves      PatternKind = "waves"
	PatternNoise      PatternKind = "noise"
)

// StyleConfig carries the per-action knobs of a style. Zero fields take the
// compositor defaults, so an empty StyleConfig is always usable.
type StyleConfig struct {
	// Color is the fill colour as hex ("#000000", "#000", "000000").
	Color string `json:"color,omitempty" toml:"color" mapstructure:"color"`

	// BorderColor and BorderWidth draw a stroke around the region when BorderWidth > 0.
	BorderColor string  `json:"border_color,omitempty" toml:"border_color" mapstructure:"border_color"`
	BorderWidth float64 `json:"border_width,omitempty" toml:"border_width" mapstructure:"border_width"`

	// CornerRadius rounds BOX and SOLID_COLOR corners, in substrate units.
	CornerRadius float64 `json:"corner_radius,omitempty" toml:"corner_radius" mapstructure:"corner_radius"`

	// Text is the LABEL caption. Defaults to the detection kind.
	Text      string  `json:"text,omitempty" toml:"text" mapstructure:"text"`
	TextColor string  `json:"text_color,omitempty" toml:"text_color" mapstructure:"text_color"`
	FontSize  float64 `json:"font_size,omitempty" toml:"font_size" mapstructure:"font_size"`

	// Pattern selects the PATTERN fill; PatternColor is the ink drawn over Color.
	Pattern      PatternKind `json:"pattern,omitempty" toml:"pattern" mapstructure:"pattern"`
	PatternColor string      `json:"pattern_color,omitempty" toml:"pattern_color" mapstructure:"pattern_color"`

	// GradientFrom and GradientTo are the GRADIENT end colours; Vertical runs
	// the gradient top to bottom instead of left to right.
	GradientFrom string `json:"gradient_from,omitempty" toml:"gradient_from" mapstructure:"gradient_from"`
	GradientTo   string `json:"gradient_to,omitempty" toml:"gradient_to" mapstructure:"gradient_to"`
	Vertical     bool   `json:"vertical,omitempty" toml:"vertical" mapstructure:"vertical"`

	// BlurRadius is the BLUR sigma in pixels. Defaults to a fraction of the region height.
	BlurRadius float64 `json:"blur_radius,omitempty" toml:"blur_radius" mapstructure:"blur_radius"`

	// Padding grows the region on every side, in substrate units.
	Padding float64 `json:"padding,omitempty" toml:"padding" mapstructure:"padding"`
}
