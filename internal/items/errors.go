package items

import (
	"fmt"
	"strings"
)

// FieldViolation describes a single validation failure on an input field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func joinViolations(violations []FieldViolation) string {
	parts := make([]string, 0, len(violations))
	for _, v := range violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return strings.Join(parts, "; ")
}

// InvalidQueryError rejects the whole request when any query parameter fails
// validation. No store access happens once it is raised.
type InvalidQueryError struct {
	Violations []FieldViolation
}

func (e *InvalidQueryError) Error() string {
	return "invalid query parameters: " + joinViolations(e.Violations)
}

// InvalidBodyError rejects a request body that fails shape or enum checks.
type InvalidBodyError struct {
	Violations []FieldViolation
}

func (e *InvalidBodyError) Error() string {
	return "invalid request body: " + joinViolations(e.Violations)
}

// NotFoundError reports that no item exists for the requested id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("item %s not found", e.ID)
}
