package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "modelkit/pkg/domain-errors"
)

// Schema decodes raw untyped input into typed props. Decode failures report
// every violated field, not just the first.
type Schema[P any] interface {
	Decode(raw any) (P, error)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct returns a Schema backed by `validate` struct tags on P. The raw
// input must be a P (or *P); anything else is a structural mismatch.
func Struct[P any]() Schema[P] {
	return structSchema[P]{}
}

type structSchema[P any] struct{}

func (structSchema[P]) Decode(raw any) (P, error) {
	var zero P

	props, ok := coerce[P](raw)
	if !ok {
		return zero, dErrors.NewSchemaDecode([]dErrors.FieldIssue{{
			Path:    "$",
			Message: fmt.Sprintf("expected %T, got %T", zero, raw),
		}})
	}

	if err := validate.Struct(props); err != nil {
		var violations validator.ValidationErrors
		if errors.As(err, &violations) {
			return zero, dErrors.NewSchemaDecode(toFieldIssues(violations))
		}
		// validator.InvalidValidationError: P is not a struct type.
		return zero, dErrors.Wrap(dErrors.CodeMisconfigured, "schema requires struct props", err)
	}

	return props, nil
}

// coerce accepts the props type itself or a pointer to it.
func coerce[P any](raw any) (P, bool) {
	switch v := raw.(type) {
	case P:
		return v, true
	case *P:
		if v == nil {
			var zero P
			return zero, false
		}
		return *v, true
	default:
		var zero P
		return zero, false
	}
}

func toFieldIssues(violations validator.ValidationErrors) []dErrors.FieldIssue {
	issues := make([]dErrors.FieldIssue, 0, len(violations))
	for _, v := range violations {
		issues = append(issues, dErrors.FieldIssue{
			Path:    fieldPath(v),
			Message: fieldMessage(v),
		})
	}
	return issues
}

// fieldPath strips the struct type prefix from the validator namespace so
// paths read "Items[0].Price" rather than "OrderProps.Items[0].Price".
func fieldPath(v validator.FieldError) string {
	ns := v.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(v validator.FieldError) string {
	if v.Param() != "" {
		return fmt.Sprintf("violates the '%s=%s' constraint", v.Tag(), v.Param())
	}
	return fmt.Sprintf("violates the '%s' constraint", v.Tag())
}
