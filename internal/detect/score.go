package detect

import "github.com/ironsheep/redact-tools-mcp/internal/redact"

const (
	// BaseCap limits how much an extraction confidence alone can contribute.
	BaseCap = 0.95

	// NamePenalty scales NAME scores after the strength cap.
	NamePenalty = 0.7
)

var validationBonus = map[redact.Kind]float64{
	redact.KindPAN:    0.15,
	redact.KindIBAN:   0.15,
	redact.KindAPIKey: 0.10,
	redact.KindJWT:    0.10,
	redact.KindSSN:    0.05,
}

// Score turns an extraction confidence and a rule result into a detection
// confidence in [0,1].
//
// The base is min(confidence, BaseCap). Validated matches add their kind's
// bonus to the base, capped at 1. Every other match is capped by its rule
// strength, and NAME matches are further scaled by NamePenalty. A validated
// match therefore never scores below a looser match of the same token.
func Score(confidence float64, r Result) float64 {
	base := min(max(confidence, 0), BaseCap)
	var s float64
	switch {
	case r.Validated && !r.Custom:
		s = min(1, base+validationBonus[r.Kind])
	default:
		s = min(base, r.Strength)
	}
	if r.Kind == redact.KindName && !r.Custom {
		s *= NamePenalty
	}
	return s
}
