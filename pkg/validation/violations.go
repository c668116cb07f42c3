package validation

import (
	"fmt"
	"strings"
)

// Violation is one field-level validation failure.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Violations aggregates every failure found in a payload.
type Violations []Violation

// Add records a violation.
func (v *Violations) Add(field, rule, message string) {
	*v = append(*v, Violation{Field: field, Rule: rule, Message: message})
}

// Addf records a violation with a formatted message.
func (v *Violations) Addf(field, rule, format string, args ...interface{}) {
	v.Add(field, rule, fmt.Sprintf(format, args...))
}

// Err returns v as an error, or nil when empty.
func (v Violations) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// Error implements the error interface.
func (v Violations) Error() string {
	parts := make([]string, 0, len(v))
	for _, item := range v {
		parts = append(parts, item.Field+": "+item.Message)
	}
	return fmt.Sprintf("%d validation error(s): %s", len(v), strings.Join(parts, "; "))
}

// Fields lists the offending field paths in order.
func (v Violations) Fields() []string {
	fields := make([]string, 0, len(v))
	for _, item := range v {
		fields = append(fields, item.Field)
	}
	return fields
}
