package scan

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// checker is shared by every validate tag: the library is stateless
// once built and safe for concurrent use.
var checker = validator.New()

// varValidator returns a check backed by the go-playground validator,
// running the given constraint tag against the resolved value.
func varValidator(fieldName, constraint string) func(any) error {
	return func(value any) error {
		err := checker.Var(value, constraint)
		if err == nil {
			return nil
		}

		return &invalidVarError{
			fieldName:  fieldName,
			fieldValue: fmt.Sprint(value),
			cause:      err,
		}
	}
}

// invalidVarError rewrites the library's struct-oriented messages into
// ones that read naturally on a command line.
type invalidVarError struct {
	fieldName  string
	fieldValue string
	cause      error
}

var constraintTag = regexp.MustCompile(`the '.*' tag`)

func (err *invalidVarError) Error() string {
	matched := constraintTag.FindString(err.cause.Error())
	if matched != "" {
		parts := strings.Split(matched, " ")
		if len(parts) > 1 {
			return fmt.Sprintf("%q is not a valid %s", err.fieldValue, strings.Trim(parts[1], "'"))
		}
	}

	return strings.ReplaceAll(err.cause.Error(), "''", fmt.Sprintf("'%s'", err.fieldName))
}

func (err *invalidVarError) Unwrap() error { return err.cause }
