package redact

import (
	"fmt"
	"strings"
)

// Kind classifies a detection.
type Kind int

const (
	KindEmail Kind = iota + 1
	KindPhone
	KindPAN
	KindIBAN
	KindSSN
	KindPassport
	KindJWT
	KindAPIKey
	KindBarcode
	KindAddress
	KindName
	KindFace
	KindOther
)

var kindNames = map[Kind]string{
	KindEmail:    "EMAIL",
	KindPhone:    "PHONE",
	KindPAN:      "PAN",
	KindIBAN:     "IBAN",
	KindSSN:      "SSN",
	KindPassport: "PASSPORT",
	KindJWT:      "JWT",
	KindAPIKey:   "API_KEY",
	KindBarcode:  "BARCODE",
	KindAddress:  "ADDRESS",
	KindName:     "NAME",
	KindFace:     "FACE",
	KindOther:    "OTHER",
}

// AllKinds returns every detection kind in wire order.
func AllKinds() []Kind {
	return []Kind{
		KindEmail, KindPhone, KindPAN, KindIBAN, KindSSN, KindPassport, KindJWT,
		KindAPIKey, KindBarcode, KindAddress, KindName, KindFace, KindOther,
	}
}

// String returns the wire name, or "Kind(n)" for values outside the enumeration.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind converts a wire name (case-insensitive) into a Kind.
func ParseKind(s string) (Kind, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == want {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown detection kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKinds converts a list of wire names, failing on the first unknown name.
func ParseKinds(names []string) ([]Kind, error) {
	kinds := make([]Kind, 0, len(names))
	for _, n := range names {
		k, err := ParseKind(n)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}
