package bloc

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfig is wrapped by every report configuration error.
	ErrConfig = errors.New("invalid report configuration")
	// ErrInvalidReport is wrapped by data-shape errors of a report definition.
	ErrInvalidReport = errors.New("invalid report definition")
)

// UnknownAttributeError is returned when a bloc uses a key outside its allow-list.
type UnknownAttributeError struct {
	Key     string
	Allowed []string
	Raw     string
}

func (e *UnknownAttributeError) Error() string {
	return fmt.Sprintf("unknown attribute %q used in report, allowed attributes are: [%s], bloc:\n%s",
		e.Key, strings.Join(e.Allowed, ", "), e.Raw)
}

func (e *UnknownAttributeError) Unwrap() error { return ErrConfig }

// InvalidValueError is returned for a value outside the allowed set, such as
// condition_type or multi_condition.
type InvalidValueError struct {
	Attribute string
	Value     string
	Allowed   []string
	Raw       string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %q for attribute %q, allowed values are: [%s], bloc:\n%s",
		e.Value, e.Attribute, strings.Join(e.Allowed, ", "), e.Raw)
}

func (e *InvalidValueError) Unwrap() error { return ErrConfig }

// RefKind names the shared library section a reference points into.
type RefKind string

const (
	RefPaths    RefKind = "paths"
	RefTags     RefKind = "tags"
	RefInfoTags RefKind = "info_tags"
	RefContent  RefKind = "content"
)

// UnknownReferenceError is returned when a reference names nothing in the
// shared library.
type UnknownReferenceError struct {
	Kind RefKind
	Name string
	Raw  string
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("unknown %s reference %q used, bloc:\n%s", e.Kind, e.Name, e.Raw)
}

func (e *UnknownReferenceError) Unwrap() error { return ErrConfig }

// ReferenceCycleError is returned when content references include themselves.
type ReferenceCycleError struct {
	Chain []string
}

func (e *ReferenceCycleError) Error() string {
	return fmt.Sprintf("content reference cycle: %s", strings.Join(e.Chain, " -> "))
}

func (e *ReferenceCycleError) Unwrap() error { return ErrConfig }

// ConflictError is returned when mutually exclusive keys are used together.
type ConflictError struct {
	Keys []string
	Raw  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("attributes %s cannot be used together, bloc:\n%s", strings.Join(e.Keys, " / "), e.Raw)
}

func (e *ConflictError) Unwrap() error { return ErrConfig }

// TypeError is returned when a value does not have the expected shape.
type TypeError struct {
	Attribute string
	Expected  string
	Raw       string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("attribute %q must be %s, bloc:\n%s", e.Attribute, e.Expected, e.Raw)
}

func (e *TypeError) Unwrap() error { return ErrConfig }

// MissingFieldError marks a report definition that cannot be generated at
// all, like one without a target. Only that report is skipped.
type MissingFieldError struct {
	Field string
	Raw   string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing mandatory attribute %q, bloc:\n%s", e.Field, e.Raw)
}

func (e *MissingFieldError) Unwrap() error { return ErrInvalidReport }
