package session

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Answer is the locally-validated input for one submission. Position is
// only meaningful for debate turns.
type Answer struct {
	Response         string
	Position         string
	PositionRequired bool
}

// FieldError is a single per-field validation failure. Validation reports
// every offending field, never just the first.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var vld = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Word-count rules are not built in; register them once.
	_ = v.RegisterValidation("minwords", func(fl validator.FieldLevel) bool {
		minW, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return wordCount(fl.Field().String()) >= minW
	})
	_ = v.RegisterValidation("maxwords", func(fl validator.FieldLevel) bool {
		maxW, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return wordCount(fl.Field().String()) <= maxW
	})
	return v
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

// ValidateAnswer checks an answer against the activity policy before any
// network call. Each field is validated independently; the result lists
// every failure.
func ValidateAnswer(a Answer, policy Policy) []FieldError {
	var errs []FieldError

	responseTag := "required"
	if policy.MinWords > 0 {
		responseTag += fmt.Sprintf(",minwords=%d", policy.MinWords)
	}
	if policy.MaxWords > 0 {
		responseTag += fmt.Sprintf(",maxwords=%d", policy.MaxWords)
	}
	errs = append(errs, validateField("response", a.Response, responseTag, policy)...)

	if a.PositionRequired {
		errs = append(errs, validateField("position", a.Position, "required", policy)...)
	}

	return errs
}

func validateField(name, value, tag string, policy Policy) []FieldError {
	err := vld.Var(value, tag)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: name, Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: name, Message: fieldMessage(fe, policy)})
	}
	return out
}

func fieldMessage(fe validator.FieldError, policy Policy) string {
	switch fe.Tag() {
	case "required":
		return "cannot be empty"
	case "minwords":
		return fmt.Sprintf("needs at least %d words", policy.MinWords)
	case "maxwords":
		return fmt.Sprintf("must be at most %d words", policy.MaxWords)
	}
	return "invalid value"
}
