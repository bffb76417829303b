package detect

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	panShape      = regexp.MustCompile(`^\d[\d -]*\d$`)
	ibanShape     = regexp.MustCompile(`^[A-Z]{2}\d{2}[A-Z0-9]{11,30}$`)
	ssnShape      = regexp.MustCompile(`^(\d{3})-(\d{2})-(\d{4})$`)
	passportShape = regexp.MustCompile(`^(?:\d{9}|[A-Za-z]\d{8})$`)
	jwtShape      = regexp.MustCompile(`^[A-Za-z0-9_-]{2,}\.[A-Za-z0-9_-]{2,}\.[A-Za-z0-9_-]{2,}$`)
	awsKeyShape   = regexp.MustCompile(`^(?:AKIA|ASIA)[A-Z0-9]{16}$`)
	emailShape    = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
	phoneShape    = regexp.MustCompile(`^\+?[\d\s().\-]+$`)
	zipPlus4Shape = regexp.MustCompile(`^\d{5}-\d{4}$`)
	isoDateShape  = regexp.MustCompile(`^\d{4}[-/.]\d{1,2}[-/.]\d{1,2}$`)
	usDateShape   = regexp.MustCompile(`^\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4}$`)
)

const (
	jwtMinLength   = 30
	secretMinChars = 16
)

func detectPAN(c Candidate) (Result, Outcome) {
	if !panShape.MatchString(c.Text) {
		return Result{}, Pass
	}
	digits := digitsOnly(c.Text)
	if len(digits) < 13 || len(digits) > 19 || !luhnValid(digits) {
		return Result{}, Pass
	}
	return Result{
		Reason:    fmt.Sprintf("%d-digit number passes Luhn check", len(digits)),
		Strength:  1,
		Validated: true,
	}, Match
}

func detectIBAN(c Candidate) (Result, Outcome) {
	compact := strings.ToUpper(strings.ReplaceAll(c.Text, " ", ""))
	if len(compact) < 15 || len(compact) > 34 || !ibanShape.MatchString(compact) {
		return Result{}, Pass
	}
	if !ibanValid(compact) {
		return Result{}, Pass
	}
	return Result{
		Reason:    fmt.Sprintf("%s IBAN passes MOD-97 check", compact[:2]),
		Strength:  1,
		Validated: true,
	}, Match
}

// detectSSN vetoes numbers in the never-issued ranges so they cannot be
// picked up by the phone or address rules either.
func detectSSN(c Candidate) (Result, Outcome) {
	m := ssnShape.FindStringSubmatch(c.Text)
	if m == nil {
		return Result{}, Pass
	}
	area, _ := strconv.Atoi(m[1])
	switch {
	case area == 0, area == 666, area >= 900:
		return Result{}, Veto
	case m[2] == "00", m[3] == "0000":
		return Result{}, Veto
	}
	return Result{
		Reason:    "SSN with valid area, group and serial",
		Strength:  1,
		Validated: true,
	}, Match
}

func detectPassport(c Candidate) (Result, Outcome) {
	if !passportShape.MatchString(c.Text) {
		return Result{}, Pass
	}
	reason := "9-digit passport number"
	if c.Text[0] < '0' || c.Text[0] > '9' {
		reason = "letter-prefixed passport number"
	}
	return Result{Reason: reason, Strength: 0.7}, Match
}

// detectJWT accepts three base64url segments of a minimum total length. A
// header that decodes to a JSON object upgrades the match to validated.
func detectJWT(c Candidate) (Result, Outcome) {
	if len(c.Text) < jwtMinLength || !jwtShape.MatchString(c.Text) {
		return Result{}, Pass
	}
	header := c.Text[:strings.IndexByte(c.Text, '.')]
	if raw, err := base64.RawURLEncoding.DecodeString(header); err == nil && len(raw) > 0 && raw[0] == '{' {
		return Result{Reason: "JWT with JSON header", Strength: 1, Validated: true}, Match
	}
	return Result{Reason: "three-segment base64url token", Strength: 0.7}, Match
}

func (r *Registry) detectAPIKey(c Candidate) (Result, Outcome) {
	if awsKeyShape.MatchString(c.Text) {
		return Result{Reason: "AWS access key id", Strength: 1, Validated: true}, Match
	}
	if r.secrets == nil || len(c.Text) < secretMinChars {
		return Result{}, Pass
	}
	if rule, ok := r.secrets.Scan(c.Text); ok {
		return Result{Reason: "secret scanner rule " + rule, Strength: 0.85}, Match
	}
	return Result{}, Pass
}

func detectEmail(c Candidate) (Result, Outcome) {
	if !emailShape.MatchString(c.Text) {
		return Result{}, Pass
	}
	return Result{Reason: "email address", Strength: 0.9}, Match
}

// detectPhone grades digit runs of 7 to 15 digits. North-American shapes
// score highest, explicit international prefixes next.
func detectPhone(c Candidate) (Result, Outcome) {
	t := c.Text
	if !phoneShape.MatchString(t) || zipPlus4Shape.MatchString(t) ||
		isoDateShape.MatchString(t) || usDateShape.MatchString(t) {
		return Result{}, Pass
	}
	digits := digitsOnly(t)
	n := len(digits)
	if n < 7 || n > 15 {
		return Result{}, Pass
	}
	switch {
	case n == 10 || (n == 11 && digits[0] == '1'):
		return Result{Reason: "North American phone number", Strength: 0.85}, Match
	case strings.HasPrefix(t, "+"):
		return Result{Reason: "international phone number", Strength: 0.7}, Match
	default:
		return Result{Reason: "digit run shaped like a phone number", Strength: 0.5}, Match
	}
}
