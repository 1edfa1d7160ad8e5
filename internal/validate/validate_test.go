package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-reservation/internal/apperr"
)

func mustParse(t *testing.T, body string) Payload {
	t.Helper()
	p, err := ParseBody([]byte(body))
	require.NoError(t, err)
	return p
}

func TestParseBodyRejectsMissingData(t *testing.T) {
	for _, body := range []string{``, `not json`, `{}`, `{"data": 4}`, `{"data": null}`} {
		_, err := ParseBody([]byte(body))
		assert.Truef(t, apperr.IsKind(err, apperr.KindValidation), "body %q", body)
	}
}

func TestRequireFields(t *testing.T) {
	p := mustParse(t, `{"data": {"first_name": "Ada", "last_name": "  ", "people": 2, "mobile_number": null}}`)

	assert.NoError(t, RequireFields(p, "first_name", "people"))

	err := RequireFields(p, "first_name", "last_name")
	require.Error(t, err)
	assert.Equal(t, "A 'last_name' property is required.", err.Error())

	err = RequireFields(p, "mobile_number")
	assert.EqualError(t, err, "A 'mobile_number' property is required.")

	err = RequireFields(p, "reservation_date")
	assert.EqualError(t, err, "A 'reservation_date' property is required.")
}

func TestOnlyKnownFieldsListsEveryUnknownField(t *testing.T) {
	p := mustParse(t, `{"data": {"table_name": "#1", "colour": "red", "capacity": 2, "legs": 4}}`)

	assert.NoError(t, OnlyKnownFields(p, "table_name", "capacity", "colour", "legs"))

	err := OnlyKnownFields(p, "table_name", "capacity")
	require.Error(t, err)
	assert.Equal(t, "Invalid field(s): colour, legs", err.Error())
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestTypedAccessors(t *testing.T) {
	p := mustParse(t, `{"data": {"people": 4, "half": 2.5, "text": "6", "bad": "six", "mobile_number": 5551234, "id": "12"}}`)

	n, ok := p.Int("people")
	assert.True(t, ok)
	assert.Equal(t, 4, n)

	_, ok = p.Int("half")
	assert.False(t, ok)
	_, ok = p.Int("text")
	assert.False(t, ok)

	n, ok = p.Numeric("text")
	assert.True(t, ok)
	assert.Equal(t, 6, n)
	_, ok = p.Numeric("bad")
	assert.False(t, ok)

	s, ok := p.String("mobile_number")
	assert.True(t, ok)
	assert.Equal(t, "5551234", s)

	id, ok := p.ID("id")
	assert.True(t, ok)
	assert.Equal(t, uint64(12), id)
	_, ok = p.ID("missing")
	assert.False(t, ok)
}
