package validate

import (
	"strings"

	"github.com/iliyamo/restaurant-reservation/internal/apperr"
)

// RequireFields fails on the first named field that is absent or empty.
func RequireFields(p Payload, names ...string) error {
	for _, name := range names {
		if !p.Has(name) {
			return apperr.Validation("A '%s' property is required.", name)
		}
	}
	return nil
}

// OnlyKnownFields fails when the payload carries any field outside allow,
// listing every offending field in a single message.
func OnlyKnownFields(p Payload, allow ...string) error {
	known := make(map[string]struct{}, len(allow))
	for _, a := range allow {
		known[a] = struct{}{}
	}
	var invalid []string
	for _, k := range p.Keys() {
		if _, ok := known[k]; !ok {
			invalid = append(invalid, k)
		}
	}
	if len(invalid) > 0 {
		return apperr.Validation("Invalid field(s): %s", strings.Join(invalid, ", "))
	}
	return nil
}
