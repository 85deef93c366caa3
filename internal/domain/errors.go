package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrBadCredentials = errors.New("invalid username or password")
	ErrNoSession      = errors.New("no session")
)

// MsgTaken is the message attached to uniqueness violations so they stay
// distinguishable from other field errors.
const MsgTaken = "already in use"

// ValidationError carries field-level messages, possibly for several forms
// at once. Uniqueness violations are field entries with MsgTaken.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

// Conflict builds a uniqueness violation for a single field.
func Conflict(field string) *ValidationError {
	v := NewValidationError()
	v.Add(field, MsgTaken)
	return v
}

func (v *ValidationError) Add(field, msg string) {
	if v.Fields == nil {
		v.Fields = map[string][]string{}
	}
	v.Fields[field] = append(v.Fields[field], msg)
}

// Merge folds another validation error's fields into v.
func (v *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	for f, msgs := range other.Fields {
		for _, m := range msgs {
			v.Add(f, m)
		}
	}
}

func (v *ValidationError) Empty() bool { return len(v.Fields) == 0 }

func (v *ValidationError) Has(field string) bool {
	_, ok := v.Fields[field]
	return ok
}

// Taken reports whether the field failed on uniqueness.
func (v *ValidationError) Taken(field string) bool {
	for _, m := range v.Fields[field] {
		if m == MsgTaken {
			return true
		}
	}
	return false
}

func (v *ValidationError) Error() string {
	fields := make([]string, 0, len(v.Fields))
	for f := range v.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// NotFoundError names the entity type whose id did not resolve, so that
// callers can surface a specific message per entity.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func NotFound(entity string) error { return &NotFoundError{Entity: entity} }

// AsValidation unwraps err into a ValidationError when it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// AsNotFound unwraps err into a NotFoundError when it is one.
func AsNotFound(err error) (*NotFoundError, bool) {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf, true
	}
	return nil, false
}
