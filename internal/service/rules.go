package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/restaurant-reservation/internal/apperr"
)

// fieldRules checks the struct level rules below.  Field names in reported
// errors are the JSON names used by the API.
var fieldRules = newFieldValidator()

func newFieldValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// reservationContact holds the fields a full update must keep non-empty.
type reservationContact struct {
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	MobileNumber    string `json:"mobile_number" validate:"required"`
	ReservationTime string `json:"reservation_time" validate:"required"`
}

type tableFields struct {
	Name     string `json:"table_name" validate:"required,min=2"`
	Capacity int    `json:"capacity" validate:"gte=1"`
}

// messages maps "field.tag" (or just "tag") to a message template; %s is
// replaced with the field name.
type messages map[string]string

// checkRules validates s and converts the first violation into a
// validation error using msgs.
func checkRules(s any, msgs messages) error {
	err := fieldRules.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	tmpl, ok := msgs[fe.Field()+"."+fe.Tag()]
	if !ok {
		tmpl, ok = msgs[fe.Tag()]
	}
	if !ok {
		tmpl = "%s is invalid"
	}
	if strings.Contains(tmpl, "%s") {
		return apperr.Validation(tmpl, fe.Field())
	}
	return apperr.Validation("%s", tmpl)
}
