// Package filter is the storage-agnostic query representation: field paths,
// literal values, filter trees and queries over one schema.
package filter

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyPath is returned for a path with no segments.
	ErrEmptyPath = errors.New("field path must not be empty")
	// ErrEmptySegment is returned for a path such as "company..name".
	ErrEmptySegment = errors.New("field path contains an empty segment")
)

// FieldPath is a dotted sequence of field names. The zero value is empty
// and only produced by mistake; constructors reject it.
type FieldPath struct {
	segments []string
}

// ParsePath parses a dotted path such as "company.industry".
func ParsePath(s string) (FieldPath, error) {
	if s == "" {
		return FieldPath{}, ErrEmptyPath
	}
	return NewPath(strings.Split(s, ".")...)
}

// NewPath builds a path from its segments.
func NewPath(segments ...string) (FieldPath, error) {
	if len(segments) == 0 {
		return FieldPath{}, ErrEmptyPath
	}
	for _, s := range segments {
		if s == "" {
			return FieldPath{}, fmt.Errorf("invalid field path '%s': %w", strings.Join(segments, "."), ErrEmptySegment)
		}
	}
	return FieldPath{segments: append([]string(nil), segments...)}, nil
}

// MustPath is ParsePath for literals known to be valid.
func MustPath(s string) FieldPath {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Segments returns a copy of the path segments.
func (p FieldPath) Segments() []string {
	return append([]string(nil), p.segments...)
}

func (p FieldPath) Depth() int { return len(p.segments) }

// IsSimple reports whether the path names a field of the queried schema
// directly.
func (p FieldPath) IsSimple() bool { return len(p.segments) == 1 }

func (p FieldPath) IsEmpty() bool { return len(p.segments) == 0 }

func (p FieldPath) Root() string {
	if p.IsEmpty() {
		return ""
	}
	return p.segments[0]
}

func (p FieldPath) Leaf() string {
	if p.IsEmpty() {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

func (p FieldPath) String() string {
	return strings.Join(p.segments, ".")
}

// Equal reports whether both paths have the same segments.
func (p FieldPath) Equal(o FieldPath) bool {
	if len(p.segments) != len(o.segments) {
		return false
	}
	for i := range p.segments {
		if p.segments[i] != o.segments[i] {
			return false
		}
	}
	return true
}
