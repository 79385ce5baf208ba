package services

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sm8ta/ridewise/internal/core/domain"
)

// NewValidator returns a validator that knows the domain's custom tags and
// reports fields by their JSON names.
func NewValidator() *validator.Validate {
	return newValidator(time.Now)
}

func newValidator(now func() time.Time) *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// at most two decimal places
	_ = v.RegisterValidation("cents", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float() * 100
		return math.Abs(f-math.Round(f)) < 1e-6
	})

	// model years run at most one year ahead
	_ = v.RegisterValidation("maxyear", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(now().Year()+1)
	})

	return v
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(msgs, "; "))
}
