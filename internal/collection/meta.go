package collection

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Meta is the shared shape of every tenant-scoped record. Domain structs
// embed it; id and tenantId are set at creation and never change.
type Meta struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ErrNotFound signals an id+tenant lookup miss on a mutating operation,
// distinct from a validation failure so callers can map it to 404.
var ErrNotFound = errors.New("collection: not found")

// ValidationError carries every field problem of a payload at once.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError builds a resource-policy validation failure.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func missingError(fields []string) *ValidationError {
	return &ValidationError{
		Fields:  fields,
		Message: "missing required fields: " + strings.Join(fields, ", "),
	}
}

// ConflictError signals a per-tenant uniqueness violation.
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("duplicate %s %q", e.Field, e.Value)
}
