package gotemplate

import (
	"encoding/json"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/flosch/pongo2/v6"
)

var defaultFilters = map[string]pongo2.FilterFunction{
	"trim":     filterTrim,
	"tojson":   filterToJSON,
	"initials": filterInitials,
	"percent":  filterPercent,
}

func registerDefaultFilters() {
	for name, fn := range defaultFilters {
		if !pongo2.FilterExists(name) {
			_ = pongo2.RegisterFilter(name, fn)
		}
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.IsNil() {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

// filterToJSON encodes the input as indented JSON. The optional parameter
// selects compact output when falsy.
func filterToJSON(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	var (
		payload []byte
		err     error
	)
	if param != nil && !param.IsNil() && !param.IsTrue() {
		payload, err = json.Marshal(in.Interface())
	} else {
		payload, err = json.MarshalIndent(in.Interface(), "", "  ")
	}
	if err != nil {
		return nil, &pongo2.Error{Sender: "filter:tojson", OrigError: err}
	}
	return pongo2.AsValue(string(payload)), nil
}

// filterInitials reduces a display name to at most two uppercase initials.
func filterInitials(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	var out []rune
	for _, word := range strings.Fields(in.String()) {
		r, _ := utf8.DecodeRuneInString(word)
		if r == utf8.RuneError || !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		out = append(out, unicode.ToUpper(r))
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return pongo2.AsValue("?"), nil
	}
	return pongo2.AsValue(string(out)), nil
}

// filterPercent converts value against the max passed as parameter into a
// 0-100 percentage, clamped.
func filterPercent(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	maximum := 100.0
	if param != nil && !param.IsNil() && param.Float() > 0 {
		maximum = param.Float()
	}
	pct := in.Float() / maximum * 100
	switch {
	case pct < 0:
		pct = 0
	case pct > 100:
		pct = 100
	}
	return pongo2.AsValue(pct), nil
}
