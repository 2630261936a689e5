package engine

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/brk3/habitbattles/pkg/habit"
	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json field names so errors match what API clients sent.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateHabit returns a *habit.ValidationError for the first failing
// field of h.
func (e *Engine) validateHabit(h habit.Habit) error {
	err := e.validate.Struct(h)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) || len(vErrs) == 0 {
		return err
	}
	fe := vErrs[0]
	return &habit.ValidationError{Field: fe.Field(), Reason: reason(fe)}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "timezone":
		return fmt.Sprintf("unknown timezone %q", fe.Value())
	}
	return fmt.Sprintf("failed %q check", fe.Tag())
}
