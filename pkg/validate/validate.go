package validate

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/GlebRadaev/artauction/pkg/money"
	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		_ = instance.RegisterValidation("amount", isAmount)
		_ = instance.RegisterValidation("card", func(fl validator.FieldLevel) bool {
			return IsCardNumber(fl.Field().String())
		})
	})
	return instance
}

// isAmount accepts what money.Parse accepts: plain notation, at most two
// fractional digits, within the column range.
func isAmount(fl validator.FieldLevel) bool {
	_, err := money.Parse(fl.Field().String())
	return err == nil
}

// Struct validates a request payload and flattens the failures into one
// readable error.
func Struct(v any) error {
	err := get().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, message(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func message(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gte", "lte":
		return fmt.Sprintf("%s is out of range", field)
	case "amount":
		return field + " must be a number with at most two decimal places"
	case "card":
		return field + " is not a valid card number"
	case "alphanum":
		return field + " may only contain letters and digits"
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
