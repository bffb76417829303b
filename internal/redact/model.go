package redact

// Box is a page-normalized rectangle with a top-left origin.
//
// X and Y locate the top-left corner and W and H the extent, all as fractions
// of the page width and height. A valid box satisfies 0 <= X, 0 <= Y,
// X+W <= 1+Epsilon and Y+H <= 1+Epsilon. Page is zero-based.
type Box struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	W    float64 `json:"w"`
	H    float64 `json:"h"`
	Page int     `json:"page"`
}

// Epsilon is the tolerance allowed on the far edges of a normalized box.
const Epsilon = 1e-6

// Right returns X+W.
func (b Box) Right() float64 { return b.X + b.W }

// Bottom returns Y+H.
func (b Box) Bottom() float64 { return b.Y + b.H }

// Union returns the smallest box on b's page covering both boxes.
func (b Box) Union(o Box) Box {
	x1, y1 := min(b.X, o.X), min(b.Y, o.Y)
	x2, y2 := max(b.Right(), o.Right()), max(b.Bottom(), o.Bottom())
	return Box{X: x1, Y: y1, W: x2 - x1, H: y2 - y1, Page: b.Page}
}

// CoordSystem tags the unit and origin of a SourceBox.
type CoordSystem int

const (
	// CoordPixelTopLeft is raster pixels with the origin at the top-left (images, OCR).
	CoordPixelTopLeft CoordSystem = iota
	// CoordPointTopLeft is PDF points measured from the top-left of the page.
	CoordPointTopLeft
	// CoordPointBottomLeft is PDF user space: points with the origin at the bottom-left.
	CoordPointBottomLeft
)

func (c CoordSystem) String() string {
	switch c {
	case CoordPixelTopLeft:
		return "pixel-top-left"
	case CoordPointTopLeft:
		return "point-top-left"
	case CoordPointBottomLeft:
		return "point-bottom-left"
	default:
		return "unknown"
	}
}

// SourceBox is a rectangle in a token source's own units. For bottom-left
// systems Y is the lower edge of the rectangle.
type SourceBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Token is one piece of text located on a page by a token source.
type Token struct {
	Text   string      `json:"text"`
	BBox   SourceBox   `json:"bbox"`
	System CoordSystem `json:"system"`
	Page   int         `json:"page"`

	// PageWidth and PageHeight are the page extent in the same units as BBox.
	PageWidth  float64 `json:"page_width"`
	PageHeight float64 `json:"page_height"`

	// Confidence is the extraction confidence in [0,1]. Text layers report 1.
	Confidence float64 `json:"confidence"`

	// Source names the adapter that produced the token ("ocr", "pdf-text", "barcode").
	Source string `json:"source"`

	// Kind is set by adapters that classify on their own (barcode scanners).
	// Such tokens bypass the detector registry.
	Kind Kind `json:"kind,omitempty"`

	// Reason explains a pre-classified token. Ignored when Kind is unset.
	Reason string `json:"reason,omitempty"`
}

// Detection is a classified, located, confidence-scored sensitive token.
// Detections are immutable once the assembler returns them.
type Detection struct {
	ID         string  `json:"id"`
	Kind       Kind    `json:"kind"`
	Box        Box     `json:"box"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
	Preview    string  `json:"preview"`
}

// CustomPattern is a user-supplied rule evaluated before the built-in detectors.
type CustomPattern struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Pattern       string  `json:"pattern"`
	Kind          Kind    `json:"kind"`
	Confidence    float64 `json:"confidence"`
	CaseSensitive bool    `json:"case_sensitive"`
}

// Action asks for one detection to be redacted with a style.
type Action struct {
	DetectionID string      `json:"detection_id"`
	Style       Style       `json:"style,omitempty"`
	Config      StyleConfig `json:"config,omitempty"`
}

// Preset is a named bundle of filters and default styles.
type Preset struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	EnabledKinds []Kind         `json:"enabled_kinds,omitempty"`
	StyleMap     map[Kind]Style `json:"style_map,omitempty"`

	// ConfidenceThreshold drops detections scoring below it when set.
	ConfidenceThreshold *float64 `json:"confidence_threshold,omitempty"`

	CustomPatterns []CustomPattern `json:"custom_patterns,omitempty"`
}

// Enables reports whether the preset lets kind k through. An empty
// EnabledKinds list enables every kind.
func (p *Preset) Enables(k Kind) bool {
	if p == nil || len(p.EnabledKinds) == 0 {
		return true
	}
	for _, e := range p.EnabledKinds {
		if e == k {
			return true
		}
	}
	return false
}

// StyleFor returns the preset style for kind k, or StyleBox when none is mapped.
func (p *Preset) StyleFor(k Kind) Style {
	if p != nil {
		if s, ok := p.StyleMap[k]; ok && s.IsSet() {
			return s
		}
	}
	return StyleBox
}

// PageSize is a page extent in the document's native units.
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// AnalyzeResult is the outcome of analysing one document.
type AnalyzeResult struct {
	SessionID  string      `json:"session_id"`
	Detections []Detection `json:"detections"`
	Pages      int         `json:"pages"`
	PageSizes  []PageSize  `json:"page_sizes,omitempty"`
	Warnings   []string    `json:"warnings,omitempty"`
}

// Report summarizes one redaction run.
type Report struct {
	TotalDetections  int          `json:"total_detections"`
	RedactedCount    int          `json:"redacted_count"`
	ByKind           map[Kind]int `json:"by_kind"`
	Skipped          int          `json:"skipped"`
	Pages            int          `json:"pages"`
	MetadataStripped bool         `json:"metadata_stripped"`
	ClearedMetadata  []string     `json:"cleared_metadata,omitempty"`
	// TextOnlyPages lists the PDF pages rebuilt from their words alone,
	// without images, graphics or original fonts.
	TextOnlyPages []int `json:"text_only_pages,omitempty"`
}

// ApplyResult is the sanitized document plus its report.
type ApplyResult struct {
	Bytes    []byte   `json:"bytes"`
	Filename string   `json:"filename"`
	MimeType string   `json:"mime_type"`
	Report   Report   `json:"report"`
	Warnings []string `json:"warnings,omitempty"`
}
