package detect

import (
	"regexp"
	"strings"
	"unicode"
)

var streetSuffixes = setOf(
	"street", "st", "avenue", "ave", "road", "rd", "boulevard", "blvd", "lane", "ln",
	"drive", "dr", "court", "ct", "place", "pl", "way", "terrace", "ter", "circle", "cir",
	"highway", "hwy", "parkway", "pkwy", "square", "sq", "trail", "trl", "alley", "plaza",
)

var usStates = setOf(
	"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "FL", "GA", "HI", "ID", "IL", "IN", "IA",
	"KS", "KY", "LA", "ME", "MD", "MA", "MI", "MN", "MS", "MO", "MT", "NE", "NV", "NH", "NJ",
	"NM", "NY", "NC", "ND", "OH", "OK", "OR", "PA", "RI", "SC", "SD", "TN", "TX", "UT", "VT",
	"VA", "WA", "WV", "WI", "WY", "DC", "PR",
)

var directionals = setOf(
	"n", "s", "e", "w", "ne", "nw", "se", "sw", "north", "south", "east", "west",
	"northeast", "northwest", "southeast", "southwest",
)

var (
	zipShape         = regexp.MustCompile(`^\d{5}(?:-\d{4})?$`)
	apartmentShape   = regexp.MustCompile(`(?i)^(?:#\d+[a-z]?|apt|apartment|suite|ste|unit)$`)
	houseNumberShape = regexp.MustCompile(`^\d{2,6}[A-Za-z]?$`)
	digitRunShape    = regexp.MustCompile(`^\d+$`)
)

// detectAddress grades address fragments by what the token is and what
// surrounds it on the line:
//
//	street suffix after a word or number      0.8
//	state code before a ZIP or ending a line  0.8
//	ZIP, apartment or house number            0.65
//	directional before a capitalized word     0.5
//	bare digit run next to an indicator       0.3
func detectAddress(c Candidate) (Result, Outcome) {
	t := c.Text
	lower := strings.ToLower(t)

	switch {
	case streetSuffixes[lower] && (isCapitalizedWord(c.Prev) || houseNumberShape.MatchString(c.Prev)):
		return Result{Reason: "street suffix", Strength: 0.8}, Match
	case usStates[t] && (zipShape.MatchString(c.Next) || (isCapitalizedWord(c.Prev) && c.Next == "")):
		return Result{Reason: "US state abbreviation", Strength: 0.8}, Match
	case zipShape.MatchString(t) && (usStates[c.Prev] || strings.Contains(t, "-")):
		return Result{Reason: "ZIP code", Strength: 0.65}, Match
	case apartmentShape.MatchString(t):
		return Result{Reason: "apartment or suite designator", Strength: 0.65}, Match
	case houseNumberShape.MatchString(t) && isCapitalizedWord(c.Next):
		return Result{Reason: "house number", Strength: 0.65}, Match
	case directionals[lower] && isCapitalizedWord(c.Next):
		return Result{Reason: "street directional", Strength: 0.5}, Match
	case digitRunShape.MatchString(t) && (isAddressIndicator(c.Prev) || isAddressIndicator(c.Next)):
		return Result{Reason: "digit run near an address", Strength: 0.3}, Match
	}
	return Result{}, Pass
}

func isAddressIndicator(s string) bool {
	lower := strings.ToLower(s)
	return streetSuffixes[lower] || directionals[lower] || usStates[s] || apartmentShape.MatchString(s)
}

// isCapitalizedWord reports whether s starts with an upper-case letter and
// continues with letters only.
func isCapitalizedWord(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 && !unicode.IsUpper(r) {
			return false
		}
		if !unicode.IsLetter(r) && r != '-' && r != '\'' {
			return false
		}
	}
	return true
}

func setOf(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}
