package detect

import (
	"regexp"
	"strings"
)

var nameShape = regexp.MustCompile(`^\p{Lu}\p{Ll}+(?:[-']\p{Lu}\p{Ll}+)*$`)

var nameTitles = setOf("mr", "mrs", "ms", "miss", "mx", "dr", "prof", "sir", "madam", "rev")

// nameStoplist holds capitalized words that commonly start sentences or label
// form fields and are never names on their own.
var nameStoplist = setOf(
	"the", "a", "an", "and", "or", "but", "for", "with", "from", "to", "of", "in", "on", "at",
	"by", "this", "that", "these", "those", "it", "is", "are", "was", "be", "we", "you", "your",
	"our", "they", "he", "she", "his", "her", "i", "please", "thank", "thanks", "dear", "hello",
	"hi", "regards", "sincerely", "yes", "no", "not", "all", "any", "if", "when", "where", "who",
	"name", "first", "last", "address", "street", "city", "state", "country", "zip", "postal",
	"phone", "mobile", "fax", "email", "mail", "date", "time", "page", "total", "subtotal", "tax",
	"amount", "balance", "due", "paid", "invoice", "receipt", "order", "account", "number", "card",
	"bank", "payment", "credit", "debit", "customer", "client", "company", "department", "office",
	"signature", "signed", "note", "notes", "description", "item", "items", "quantity", "price",
	"reference", "ref", "id", "code", "key", "token", "passport", "license", "social", "security",
	"january", "february", "march", "april", "may", "june", "july", "august", "september",
	"october", "november", "december", "monday", "tuesday", "wednesday", "thursday", "friday",
	"saturday", "sunday", "street", "avenue", "road", "north", "south", "east", "west",
	"inc", "ltd", "llc", "corp", "co", "report", "summary", "statement", "section", "table",
)

// detectName flags capitalized words outside the stoplist. Titles, all-caps
// words and words containing digits never match.
func detectName(c Candidate) (Result, Outcome) {
	t := c.Text
	lower := strings.ToLower(t)
	if len(t) < 2 || !nameShape.MatchString(t) || nameStoplist[lower] || nameTitles[lower] {
		return Result{}, Pass
	}
	prev := strings.ToLower(strings.TrimRight(c.Prev, "."))
	switch {
	case nameTitles[prev]:
		return Result{Reason: "capitalized word after a title", Strength: 0.8}, Match
	case looksLikeName(c.Prev) || looksLikeName(c.Next):
		return Result{Reason: "adjacent capitalized words", Strength: 0.7}, Match
	default:
		return Result{Reason: "capitalized word", Strength: 0.6}, Match
	}
}

func looksLikeName(s string) bool {
	return nameShape.MatchString(s) && !nameStoplist[strings.ToLower(s)] && !nameTitles[strings.ToLower(s)]
}
