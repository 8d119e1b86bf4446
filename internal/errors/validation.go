package errors

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// FieldError is every problem found with one field, in the order found
type FieldError struct {
	Field    string   `json:"field"`
	Messages []string `json:"messages"`
}

// ValidationError collects field problems for a Config or request. Fields
// keep the order they were first reported in, so messages are stable.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	if len(v.Fields) == 0 {
		return "validation failed"
	}

	parts := make([]string, 0, len(v.Fields))
	for _, f := range v.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, strings.Join(f.Messages, ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError creates an empty validation error
func NewValidationError() *ValidationError {
	return &ValidationError{}
}

// AddFieldError records a problem with field
func (v *ValidationError) AddFieldError(field, message string) {
	i := slices.IndexFunc(v.Fields, func(f FieldError) bool { return f.Field == field })
	if i < 0 {
		v.Fields = append(v.Fields, FieldError{Field: field})
		i = len(v.Fields) - 1
	}
	v.Fields[i].Messages = append(v.Fields[i].Messages, message)
}

// AddFieldErrorf records a formatted problem with field
func (v *ValidationError) AddFieldErrorf(field, format string, args ...any) {
	v.AddFieldError(field, fmt.Sprintf(format, args...))
}

// HasErrors reports whether any field was rejected
func (v *ValidationError) HasErrors() bool {
	return len(v.Fields) > 0
}

// FieldNames returns the rejected fields in report order
func (v *ValidationError) FieldNames() []string {
	names := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		names[i] = f.Field
	}
	return names
}

// ToError converts the validation error to an InvalidArgument error. The
// per-field messages travel as the "validation_errors" meta entry.
func (v *ValidationError) ToError() *Error {
	if !v.HasErrors() {
		return nil
	}

	byField := make(map[string][]string, len(v.Fields))
	for _, f := range v.Fields {
		byField[f.Field] = f.Messages
	}
	return InvalidArgument(v.Error()).WithMeta("validation_errors", byField)
}

// ValidationBuilder accumulates field problems and builds nil when there
// are none. Every component Config.Validate is written with one.
type ValidationBuilder struct {
	err *ValidationError
}

// NewValidationBuilder creates a new validation builder
func NewValidationBuilder() *ValidationBuilder {
	return &ValidationBuilder{
		err: NewValidationError(),
	}
}

// Field adds a validation error for a field
func (vb *ValidationBuilder) Field(field, message string) *ValidationBuilder {
	vb.err.AddFieldError(field, message)
	return vb
}

// Fieldf adds a formatted validation error for a field
func (vb *ValidationBuilder) Fieldf(field, format string, args ...any) *ValidationBuilder {
	vb.err.AddFieldErrorf(field, format, args...)
	return vb
}

// RequiredField adds a required field error
func (vb *ValidationBuilder) RequiredField(field string) *ValidationBuilder {
	return vb.Field(field, "is required")
}

// InvalidField adds an invalid field error
func (vb *ValidationBuilder) InvalidField(field, reason string) *ValidationBuilder {
	return vb.Fieldf(field, "is invalid: %s", reason)
}

// Build returns the error if there are validation errors, nil otherwise
func (vb *ValidationBuilder) Build() error {
	if vb.err.HasErrors() {
		return vb.err.ToError()
	}
	return nil
}

// ValidateRequired rejects an empty or blank string
func ValidateRequired(field, value string, vb *ValidationBuilder) {
	if strings.TrimSpace(value) == "" {
		vb.RequiredField(field)
	}
}

// ValidateEnum checks if a value is in a list of allowed values
func ValidateEnum(field, value string, allowed []string, vb *ValidationBuilder) {
	if slices.Contains(allowed, value) {
		return
	}
	vb.Fieldf(field, "must be one of: %s", strings.Join(allowed, ", "))
}

// ValidateNonNegative rejects negative counts and durations. Zero usually
// means "use the default".
func ValidateNonNegative[T ~int | ~int32 | ~int64 | ~float64](field string, value T, vb *ValidationBuilder) {
	if value < 0 {
		vb.Field(field, "must not be negative")
	}
}

// ValidatePositiveDuration checks that a timeout or TTL is set
func ValidatePositiveDuration(field string, value time.Duration, vb *ValidationBuilder) {
	if value <= 0 {
		vb.Fieldf(field, "must be a positive duration, got %s", value)
	}
}

// ValidateUnitInterval checks that a ratio such as a volume is within [0, 1]
func ValidateUnitInterval(field string, value float64, vb *ValidationBuilder) {
	if value < 0 || value > 1 {
		vb.Fieldf(field, "must be between 0 and 1, got %g", value)
	}
}
