package compose

import (
	"github.com/charmbracelet/log"

	"github.com/ironsheep/redact-tools-mcp/internal/coords"
	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

// Resolved is one draw instruction in absolute top-left substrate units.
type Resolved struct {
	Page      int
	Rect      coords.Rect
	Style     redact.Style
	Config    redact.StyleConfig
	Detection redact.Detection
}

// Resolution is the outcome of resolving a batch of actions.
type Resolution struct {
	Items []Resolved

	// Skipped holds one *redact.ResolutionError per action that was dropped.
	Skipped []error
}

// ForPage returns the instructions for page p in action order.
func (r Resolution) ForPage(p int) []Resolved {
	var out []Resolved
	for _, it := range r.Items {
		if it.Page == p {
			out = append(out, it)
		}
	}
	return out
}

// Pages returns the set of pages with at least one instruction.
func (r Resolution) Pages() map[int]bool {
	pages := make(map[int]bool)
	for _, it := range r.Items {
		pages[it.Page] = true
	}
	return pages
}

// Resolve matches actions against detections and sizes them for the target pages.
//
// Parameters:
//   - actions: Requested redactions, applied in order.
//   - detections: The detection list of this document's analysis. Lookups never
//     reach outside this list.
//   - frames: Extent of every page of the target substrate, indexed by page.
//   - preset: Supplies styles for actions that leave Style unset. May be nil.
//   - logger: Receives one warning per skipped action. May be nil.
//
// Returns the resolved instructions plus one ResolutionError per skipped
// action. Resolve never fails as a whole.
func Resolve(actions []redact.Action, detections []redact.Detection, frames []coords.Frame, preset *redact.Preset, logger *log.Logger) Resolution {
	byID := make(map[string]redact.Detection, len(detections))
	for _, d := range detections {
		byID[d.ID] = d
	}

	var res Resolution
	skip := func(id, reason string) {
		res.Skipped = append(res.Skipped, &redact.ResolutionError{DetectionID: id, Reason: reason})
		if logger != nil {
			logger.Warn("skipping redaction action", "detection", id, "reason", reason)
		}
	}

	for _, a := range actions {
		det, ok := byID[a.DetectionID]
		if !ok {
			skip(a.DetectionID, "unknown detection id")
			continue
		}
		page := det.Box.Page
		if page < 0 || page >= len(frames) {
			skip(a.DetectionID, "page out of range")
			continue
		}
		frame := frames[page]
		if !frame.Valid() {
			skip(a.DetectionID, "page has zero dimensions")
			continue
		}

		style := a.Style
		if !style.IsSet() {
			style = preset.StyleFor(det.Kind)
		}

		rect := coords.ToAbsolute(det.Box, frame).Inset(a.Config.Padding).Clip(frame.Width, frame.Height)
		if rect.Empty() && style != redact.StyleRemoveMetadata {
			skip(a.DetectionID, "region is empty")
			continue
		}

		res.Items = append(res.Items, Resolved{
			Page:      page,
			Rect:      rect,
			Style:     style,
			Config:    a.Config,
			Detection: det,
		})
	}
	return res
}

// AutoActions returns one action per detection with the preset's style for
// its kind, or BOX when the preset has none.
func AutoActions(detections []redact.Detection, preset *redact.Preset) []redact.Action {
	actions := make([]redact.Action, 0, len(detections))
	for _, d := range detections {
		actions = append(actions, redact.Action{DetectionID: d.ID, Style: preset.StyleFor(d.Kind)})
	}
	return actions
}
