package scoring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var errEmptyRecord = errors.New("record has no fields")

type ValidationError struct {
	reason error
}

func (e ValidationError) Error() string {
	return e.reason.Error()
}

func (e ValidationError) Unwrap() error {
	return e.reason
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

var validate = validator.New()

// validateRequest runs struct tag validation and flattens the field errors
// into one message.
func validateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationError{reason: err}
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return ValidationError{reason: errors.New(strings.Join(msgs, "; "))}
}
