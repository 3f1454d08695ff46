// Package cardid turns recognized text into canonical card identifiers such
// as OGN-083 or OGN-299s.
package cardid

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultSetCode is assumed when only the collector number survives recognition.
const DefaultSetCode = "OGN"

// Set is a printed card set.
type Set struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// KnownSets lists the sets the catalog ships with, in display order.
var KnownSets = []Set{
	{Code: "OGN", Name: "Origins"},
	{Code: "OGS", Name: "Proving Grounds"},
}

// Identifier is a resolved card identifier. Suffix is "" or "s" (alternate art).
type Identifier struct {
	SetCode string `json:"set_code"`
	Number  string `json:"number"`
	Suffix  string `json:"suffix,omitempty"`
}

func (id Identifier) String() string {
	return id.SetCode + "-" + id.Number + id.Suffix
}

// padNumber zero-pads to three digits; longer numbers are left alone.
func padNumber(n string) string {
	if len(n) >= 3 {
		return n
	}
	return strings.Repeat("0", 3-len(n)) + n
}

var identifierRE = regexp.MustCompile(`^([A-Z]+)[\s-]*(\d+)(\*|S)?$`)

// Parse reads an identifier string such as "OGN-083", "ogn 83*" or "OGN-299s".
func Parse(s string) (Identifier, error) {
	m := identifierRE.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return Identifier{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, s)
	}
	id := Identifier{SetCode: m[1], Number: padNumber(m[2])}
	if m[3] != "" {
		id.Suffix = "s"
	}
	return id, nil
}

// ParseManual builds an identifier from a set code and a typed collector
// number. A trailing '*' on the number marks the alternate-art variant.
func ParseManual(set, number string) (Identifier, error) {
	set = strings.ToUpper(strings.TrimSpace(set))
	number = strings.TrimSpace(number)
	if set == "" || strings.IndexFunc(set, func(r rune) bool { return r < 'A' || r > 'Z' }) >= 0 {
		return Identifier{}, fmt.Errorf("%w: set %q", ErrInvalidIdentifier, set)
	}
	if strings.HasSuffix(number, "*") {
		number = strings.TrimSuffix(number, "*") + "s"
	}
	digits := strings.TrimRightFunc(number, func(r rune) bool { return r < '0' || r > '9' })
	rest := number[len(digits):]
	if digits == "" || strings.IndexFunc(digits, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return Identifier{}, fmt.Errorf("%w: number %q", ErrInvalidIdentifier, number)
	}
	switch strings.ToLower(rest) {
	case "":
		return Identifier{SetCode: set, Number: padNumber(digits)}, nil
	case "s":
		return Identifier{SetCode: set, Number: padNumber(digits), Suffix: "s"}, nil
	}
	return Identifier{}, fmt.Errorf("%w: suffix %q", ErrInvalidIdentifier, rest)
}

// reconstructSet maps the trailing letters of a set code back to the one
// known set they belong to.
func reconstructSet(letters string, sets []Set) (string, bool) {
	found := ""
	for _, s := range sets {
		if strings.HasSuffix(s.Code, letters) {
			if found != "" && found != s.Code {
				return "", false
			}
			found = s.Code
		}
	}
	return found, found != ""
}
