package pdfdoc

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/ironsheep/redact-tools-mcp/internal/coords"
	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

// Source is the Token.Source value for text-layer tokens.
const Source = "pdf-text"

const (
	// wordGap splits glyphs further apart than this share of the font size.
	wordGap = 0.2
	// baselineTolerance is the vertical drift, as a share of the font size,
	// still treated as the same line.
	baselineTolerance = 0.3
	// zeroWidthAdvance estimates a glyph's advance when the font has no widths.
	zeroWidthAdvance = 0.5
	// descent is the share of the font size drawn below the baseline.
	descent = 0.2
)

// letter is used when a page has no usable MediaBox.
var letter = coords.Frame{Width: 612, Height: 792}

// Word is a run of glyphs on one baseline, in user space relative to the
// MediaBox origin.
type Word struct {
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Baseline float64 `json:"baseline"`
	Width    float64 `json:"width"`
	FontSize float64 `json:"font_size"`
}

// Box returns the word's rectangle in bottom-left user space.
func (w Word) Box() redact.SourceBox {
	return redact.SourceBox{
		X: w.X,
		Y: w.Baseline - descent*w.FontSize,
		W: w.Width,
		H: w.FontSize,
	}
}

// Page is one page of the text layer.
type Page struct {
	Index int
	Frame coords.Frame
	Words []Word

	// Images counts the image XObjects and inline images the page paints.
	Images int
	// Graphics is set when the page paints paths, shadings or form XObjects.
	Graphics bool
}

// TextOnly reports whether the text layer is all the page carries.
func (p Page) TextOnly() bool {
	return p.Images == 0 && !p.Graphics
}

// Document is the readable content of a PDF.
type Document struct {
	Pages []Page

	// Info holds the document information dictionary, keyed by field name.
	Info map[string]string

	// Errors lists pages whose content could not be parsed.
	Errors []error
}

// InfoKeys returns the information fields present in the source, sorted.
func (d *Document) InfoKeys() []string {
	keys := make([]string, 0, len(d.Info))
	for k := range d.Info {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Frames returns the page extents in points.
func (d *Document) Frames() []coords.Frame {
	frames := make([]coords.Frame, len(d.Pages))
	for i, p := range d.Pages {
		frames[i] = p.Frame
	}
	return frames
}

// Tokens returns one bottom-left token per word on every page.
func (d *Document) Tokens() []redact.Token {
	var tokens []redact.Token
	for _, p := range d.Pages {
		for _, w := range p.Words {
			tokens = append(tokens, redact.Token{
				Text:       w.Text,
				BBox:       w.Box(),
				System:     redact.CoordPointBottomLeft,
				Page:       p.Index,
				PageWidth:  p.Frame.Width,
				PageHeight: p.Frame.Height,
				Confidence: 1,
				Source:     Source,
			})
		}
	}
	return tokens
}

// Read parses data as a PDF.
//
// Returns:
//   - *Document: Every page with its frame and words. A page whose content
//     fails to parse is kept with no words and its error is appended to
//     Document.Errors. A page with a degenerate MediaBox keeps its words on a
//     US Letter frame and also records an error wrapping
//     redact.ErrZeroDimension.
//   - error: A *redact.ExtractionError when the file itself cannot be opened
//     or has no pages.
func Read(data []byte) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, &redact.ExtractionError{Source: Source, Page: -1, Err: fmt.Errorf("malformed PDF: %v", r)}
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &redact.ExtractionError{Source: Source, Page: -1, Err: fmt.Errorf("failed to open PDF: %w", err)}
	}

	n := r.NumPage()
	if n == 0 {
		return nil, &redact.ExtractionError{Source: Source, Page: -1, Err: redact.ErrZeroDimension}
	}

	doc = &Document{Info: readInfo(r)}
	for i := 1; i <= n; i++ {
		page, perr := readPage(r, i)
		doc.Pages = append(doc.Pages, page)
		if perr != nil {
			doc.Errors = append(doc.Errors, perr)
		}
	}
	return doc, nil
}

func readPage(r *pdf.Reader, num int) (page Page, err error) {
	page = Page{Index: num - 1, Frame: letter}
	defer func() {
		if rec := recover(); rec != nil {
			page.Words = nil
			err = &redact.ExtractionError{Source: Source, Page: num - 1, Err: fmt.Errorf("malformed content: %v", rec)}
		}
	}()

	p := r.Page(num)
	if p.V.IsNull() {
		return page, &redact.ExtractionError{Source: Source, Page: num - 1, Err: fmt.Errorf("page object missing")}
	}

	llx, lly := 0.0, 0.0
	if box, ok := mediaBox(p.V); ok {
		frame := coords.Frame{Width: box[2] - box[0], Height: box[3] - box[1]}
		if frame.Valid() {
			llx, lly = box[0], box[1]
			page.Frame = frame
		} else {
			err = &redact.ExtractionError{Source: Source, Page: num - 1, Err: fmt.Errorf("degenerate MediaBox %v, using US Letter: %w", box, redact.ErrZeroDimension)}
		}
	}

	content := p.Content()
	glyphs := make([]glyph, 0, len(content.Text))
	for _, t := range content.Text {
		glyphs = append(glyphs, glyph{S: t.S, X: t.X - llx, Y: t.Y - lly, W: t.W, FontSize: t.FontSize})
	}
	page.Words = groupWords(glyphs)
	page.Images, page.Graphics = paintOps(p)
	return page, err
}

// pathPaint lists the operators that stroke or fill a path.
var pathPaint = map[string]bool{
	"S": true, "s": true, "f": true, "F": true, "f*": true,
	"B": true, "B*": true, "b": true, "b*": true, "sh": true,
}

// paintOps walks the content stream for operators that draw something other
// than text. A stream it cannot tokenize counts as graphics.
func paintOps(p pdf.Page) (images int, graphics bool) {
	defer func() {
		if recover() != nil {
			graphics = true
		}
	}()
	xobjects := p.Resources().Key("XObject")
	pdf.Interpret(p.V.Key("Contents"), func(stk *pdf.Stack, op string) {
		var last pdf.Value
		for stk.Len() > 0 {
			last = stk.Pop()
		}
		switch {
		case op == "Do":
			switch xobjects.Key(last.Name()).Key("Subtype").Name() {
			case "Image":
				images++
			case "Form":
				graphics = true
			}
		case op == "BI":
			images++
		case pathPaint[op]:
			graphics = true
		}
	})
	return images, graphics
}

// mediaBox returns [llx lly urx ury], following Parent links for inherited boxes.
func mediaBox(v pdf.Value) ([4]float64, bool) {
	for depth := 0; depth < 32 && !v.IsNull(); depth++ {
		mb := v.Key("MediaBox")
		if mb.Kind() == pdf.Array && mb.Len() == 4 {
			var box [4]float64
			for i := range box {
				box[i] = mb.Index(i).Float64()
			}
			if box[0] > box[2] {
				box[0], box[2] = box[2], box[0]
			}
			if box[1] > box[3] {
				box[1], box[3] = box[3], box[1]
			}
			return box, true
		}
		v = v.Key("Parent")
	}
	return [4]float64{}, false
}

func readInfo(r *pdf.Reader) map[string]string {
	info := map[string]string{}
	dict := r.Trailer().Key("Info")
	if dict.Kind() != pdf.Dict {
		return info
	}
	for _, k := range dict.Keys() {
		v := dict.Key(k)
		switch v.Kind() {
		case pdf.String:
			info[k] = v.Text()
		default:
			info[k] = v.String()
		}
	}
	return info
}

type glyph struct {
	S        string
	X, Y, W  float64
	FontSize float64
}

// groupWords joins glyphs in content order into words. Glyphs join the
// current word while they stay on its baseline and the horizontal gap is
// under wordGap times the font size. Fonts without width tables report
// zero-width glyphs that all share the x of their show-text operation;
// such a run is one word and a new x starts the next.
func groupWords(glyphs []glyph) []Word {
	var (
		words []Word
		cur   []glyph
	)
	flush := func() {
		if w, ok := makeWord(cur); ok {
			words = append(words, w)
		}
		cur = cur[:0]
	}

	for _, g := range glyphs {
		if strings.TrimFunc(g.S, unicode.IsSpace) == "" {
			flush()
			continue
		}
		if len(cur) > 0 && !continues(cur[len(cur)-1], g) {
			flush()
		}
		cur = append(cur, g)
	}
	flush()
	return words
}

func continues(prev, g glyph) bool {
	fs := math.Max(prev.FontSize, 1)
	if math.Abs(g.Y-prev.Y) > baselineTolerance*fs {
		return false
	}
	if prev.W == 0 && g.W == 0 {
		return math.Abs(g.X-prev.X) < 0.01
	}
	gap := g.X - (prev.X + prev.W)
	return gap < wordGap*fs && gap > -0.5*fs
}

func makeWord(glyphs []glyph) (Word, bool) {
	if len(glyphs) == 0 {
		return Word{}, false
	}
	var (
		sb       strings.Builder
		fontSize float64
		runes    int
	)
	for _, g := range glyphs {
		sb.WriteString(g.S)
		fontSize = math.Max(fontSize, g.FontSize)
		runes += len([]rune(g.S))
	}
	text := strings.TrimSpace(sb.String())
	if text == "" || fontSize <= 0 {
		return Word{}, false
	}

	first, last := glyphs[0], glyphs[len(glyphs)-1]
	width := last.X + last.W - first.X
	if last.W == 0 {
		// no widths: estimate from the glyph count of the zero-width tail
		tail := 0
		for i := len(glyphs) - 1; i >= 0 && glyphs[i].W == 0 && glyphs[i].X == last.X; i-- {
			tail += len([]rune(glyphs[i].S))
		}
		width = last.X - first.X + float64(tail)*zeroWidthAdvance*fontSize
	}
	if width <= 0 {
		width = float64(runes) * zeroWidthAdvance * fontSize
	}

	return Word{
		Text:     text,
		X:        first.X,
		Baseline: first.Y,
		Width:    width,
		FontSize: fontSize,
	}, true
}

// WordRect returns the word's top-left rectangle on its page in points.
func (p Page) WordRect(w Word) (coords.Rect, error) {
	b, err := coords.Normalize(w.Box(), redact.CoordPointBottomLeft, p.Index, p.Frame)
	if err != nil {
		return coords.Rect{}, err
	}
	return coords.ToAbsolute(b, p.Frame), nil
}

// KeptWords returns the words that intersect none of the redacted rectangles.
// Words that cannot be placed on the page are dropped as well.
func (p Page) KeptWords(redacted []coords.Rect) []Word {
	kept := make([]Word, 0, len(p.Words))
	for _, w := range p.Words {
		r, err := p.WordRect(w)
		if err != nil {
			continue
		}
		hit := false
		for _, red := range redacted {
			if r.Intersects(red) {
				hit = true
				break
			}
		}
		if !hit {
			kept = append(kept, w)
		}
	}
	return kept
}
