package pipeline

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ironsheep/redact-tools-mcp/internal/coords"
	"github.com/ironsheep/redact-tools-mcp/internal/detect"
	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

// maxJoin is the longest run of fragments tried as one candidate. Nine
// covers a 34-character IBAN printed in groups of four.
const maxJoin = 9

// fragmentShape accepts the short groups OCR splits card numbers, IBANs and
// phone numbers into.
var fragmentShape = regexp.MustCompile(`^[+(]?[A-Za-z0-9]{1,6}[)\-.]?$`)

// joinKinds are the only kinds a multi-token candidate may produce.
var joinKinds = map[redact.Kind]bool{
	redact.KindPAN:   true,
	redact.KindIBAN:  true,
	redact.KindPhone: true,
}

// AssembleOptions controls filtering and id assignment.
type AssembleOptions struct {
	Preset    *redact.Preset
	Threshold *float64
	Session   string
}

type placed struct {
	tok redact.Token
	box redact.Box
}

// Assemble turns extracted tokens into the filtered, ordered detection list.
//
// Tokens are normalized first; those that cannot be placed are dropped and
// counted per page in the returned warnings. Text tokens are classified one
// line at a time so that rules can see their neighbours and so that numbers
// split across several tokens can be matched as one. Detections below the
// threshold or of a kind the preset disables are removed. Ids are assigned
// after sorting, so they follow reading order.
func Assemble(tokens []redact.Token, reg *detect.Registry, opts AssembleOptions) ([]redact.Detection, []string) {
	var (
		text     []placed
		found    []redact.Detection
		rejected = map[int]int{}
	)
	for _, tok := range tokens {
		box, err := coords.Normalize(tok.BBox, tok.System, tok.Page, coords.FrameOf(tok))
		if err != nil {
			rejected[tok.Page]++
			continue
		}
		if tok.Kind.Valid() {
			found = append(found, redact.Detection{
				Kind:       tok.Kind,
				Box:        box,
				Confidence: detect.Score(tok.Confidence, detect.Result{Kind: tok.Kind, Strength: 1}),
				Reason:     tok.Reason,
				Preview:    tok.Text,
			})
			continue
		}
		text = append(text, placed{tok: tok, box: box})
	}

	for _, line := range groupLines(text) {
		found = append(found, classifyLine(line, reg)...)
	}

	threshold := 0.0
	if opts.Preset != nil && opts.Preset.ConfidenceThreshold != nil {
		threshold = *opts.Preset.ConfidenceThreshold
	}
	if opts.Threshold != nil {
		threshold = *opts.Threshold
	}

	kept := found[:0]
	for _, d := range found {
		if !opts.Preset.Enables(d.Kind) || d.Confidence < threshold {
			continue
		}
		kept = append(kept, d)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i].Box, kept[j].Box
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	prefix := opts.Session
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	for i := range kept {
		kept[i].ID = fmt.Sprintf("%s-%d", prefix, i+1)
	}

	var warnings []string
	pages := make([]int, 0, len(rejected))
	for p := range rejected {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	for _, p := range pages {
		warnings = append(warnings, fmt.Sprintf("page %d: %d token(s) could not be placed on the page", p, rejected[p]))
	}
	return kept, warnings
}

// groupLines orders tokens by page and position and splits them into lines.
// A token joins the current line when its vertical centre falls inside the
// line's first token.
func groupLines(tokens []placed) [][]placed {
	sorted := append([]placed(nil), tokens...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].box, sorted[j].box
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	var lines [][]placed
	for _, p := range sorted {
		n := len(lines)
		if n > 0 {
			head := lines[n-1][0].box
			if head.Page == p.box.Page && sameLine(head, p.box) {
				lines[n-1] = append(lines[n-1], p)
				continue
			}
		}
		lines = append(lines, []placed{p})
	}
	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool { return line[i].box.X < line[j].box.X })
	}
	return lines
}

func sameLine(a, b redact.Box) bool {
	centre := b.Y + b.H/2
	return centre >= a.Y && centre <= a.Bottom()
}

// classifyLine scans a line left to right. At each position the longest
// useful run of fragments is tried first as a joined candidate; when no join
// produces a card, IBAN or phone number the single token is classified with
// its neighbours.
func classifyLine(line []placed, reg *detect.Registry) []redact.Detection {
	var out []redact.Detection
	for i := 0; i < len(line); {
		if d, n, ok := bestJoin(line, i, reg); ok {
			out = append(out, d)
			i += n
			continue
		}

		c := detect.Candidate{Text: line[i].tok.Text}
		if i > 0 {
			c.Prev = line[i-1].tok.Text
		}
		if i+1 < len(line) {
			c.Next = line[i+1].tok.Text
		}
		if res, ok := reg.Classify(c); ok {
			out = append(out, newDetection(line[i].tok.Text, line[i].box, line[i].tok.Confidence, res))
		}
		i++
	}
	return out
}

// bestJoin tries runs of 2..maxJoin fragments starting at i and returns the
// highest scoring match, preferring the longer run on ties.
func bestJoin(line []placed, i int, reg *detect.Registry) (redact.Detection, int, bool) {
	if !fragmentShape.MatchString(line[i].tok.Text) {
		return redact.Detection{}, 0, false
	}
	var (
		best  redact.Detection
		bestN int
	)
	parts := []string{line[i].tok.Text}
	box := line[i].box
	conf := line[i].tok.Confidence
	for j := i + 1; j < len(line) && j-i < maxJoin; j++ {
		next := line[j]
		if !fragmentShape.MatchString(next.tok.Text) || !adjacent(line[j-1], next) {
			break
		}
		parts = append(parts, next.tok.Text)
		box = box.Union(next.box)
		conf = min(conf, next.tok.Confidence)

		res, ok := reg.Classify(detect.Candidate{Text: strings.Join(parts, " ")})
		if !ok || !joinKinds[res.Kind] {
			continue
		}
		d := newDetection(strings.Join(parts, " "), box, conf, res)
		if bestN == 0 || d.Confidence >= best.Confidence {
			best, bestN = d, len(parts)
		}
	}
	return best, bestN, bestN > 0
}

// adjacent reports whether b follows a closely enough to be part of the same
// printed number. The gap is measured in a's source units.
func adjacent(a, b placed) bool {
	fa := coords.FrameOf(a.tok)
	if !fa.Valid() || a.tok.BBox.H <= 0 {
		return false
	}
	gap := (b.box.X - a.box.Right()) * fa.Width
	return gap < 1.5*a.tok.BBox.H
}

func newDetection(text string, box redact.Box, conf float64, res detect.Result) redact.Detection {
	return redact.Detection{
		Kind:       res.Kind,
		Box:        box,
		Confidence: detect.Score(conf, res),
		Reason:     res.Reason,
		Preview:    text,
	}
}
