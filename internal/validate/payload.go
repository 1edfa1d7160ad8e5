// Package validate holds the request payload checks shared by the reservation
// and table workflows. Every write endpoint receives a body shaped as
// {"data": {...}}; Payload gives typed access to the fields of that object.
package validate

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/iliyamo/restaurant-reservation/internal/apperr"
)

// Payload is the parsed "data" object of a request body.
type Payload struct {
	keys   []string
	fields map[string]gjson.Result
}

// ParseBody extracts the "data" object from a raw JSON request body.
func ParseBody(raw []byte) (Payload, error) {
	if len(strings.TrimSpace(string(raw))) == 0 || !gjson.ValidBytes(raw) {
		return Payload{}, apperr.Validation("request body must be valid JSON")
	}
	data := gjson.GetBytes(raw, "data")
	if !data.IsObject() {
		return Payload{}, apperr.Validation("data is missing")
	}
	p := Payload{fields: map[string]gjson.Result{}}
	data.ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		if _, dup := p.fields[k]; !dup {
			p.keys = append(p.keys, k)
		}
		p.fields[k] = value
		return true
	})
	return p, nil
}

// Keys returns the field names in the order they appeared in the body.
func (p Payload) Keys() []string { return p.keys }

// Present reports whether name appears in the payload at all, even as null.
func (p Payload) Present(name string) bool {
	_, ok := p.fields[name]
	return ok
}

// Has reports whether name is present with a non-null, non-blank value.
func (p Payload) Has(name string) bool {
	v, ok := p.fields[name]
	if !ok {
		return false
	}
	switch v.Type {
	case gjson.Null:
		return false
	case gjson.String:
		return strings.TrimSpace(v.Str) != ""
	}
	return true
}

// String returns a textual field. Numbers are rendered using their raw JSON text.
func (p Payload) String(name string) (string, bool) {
	v, ok := p.fields[name]
	if !ok {
		return "", false
	}
	switch v.Type {
	case gjson.String:
		return strings.TrimSpace(v.Str), true
	case gjson.Number:
		return v.Raw, true
	}
	return "", false
}

// Int returns a field that is a JSON number with no fractional part.
func (p Payload) Int(name string) (int, bool) {
	v, ok := p.fields[name]
	if !ok || v.Type != gjson.Number {
		return 0, false
	}
	if v.Num != math.Trunc(v.Num) {
		return 0, false
	}
	return int(v.Int()), true
}

// Numeric is like Int but also accepts a string holding a whole number.
func (p Payload) Numeric(name string) (int, bool) {
	if n, ok := p.Int(name); ok {
		return n, true
	}
	v, ok := p.fields[name]
	if !ok || v.Type != gjson.String {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v.Str))
	if err != nil {
		return 0, false
	}
	return n, true
}

// ID returns a positive identifier given as a number or numeric string.
func (p Payload) ID(name string) (uint64, bool) {
	n, ok := p.Numeric(name)
	if !ok || n <= 0 {
		return 0, false
	}
	return uint64(n), true
}
