package diagnostics

import (
	"bytes"
	"errors"
	"fmt"
)

// Diagnostics accumulates the errors of one lexing and parsing pass so they
// can be reported together instead of stopping at the first.
type Diagnostics struct {
	errors []Error
}

// NewDiagnostics creates an empty collection.
func NewDiagnostics() Diagnostics {
	return Diagnostics{errors: make([]Error, 0)}
}

// FromError creates a Diagnostics holding a single error.
func FromError(err Error) Diagnostics {
	d := NewDiagnostics()
	d.PushError(err)
	return d
}

// PushError adds an error to the collection.
func (d *Diagnostics) PushError(err Error) {
	d.errors = append(d.errors, err)
}

// Errors returns all errors in the order they were reported.
func (d *Diagnostics) Errors() []Error {
	return d.errors
}

// LexErrors returns only the lexer errors.
func (d *Diagnostics) LexErrors() []*LexError {
	var out []*LexError
	for _, err := range d.errors {
		if le, ok := err.(*LexError); ok {
			out = append(out, le)
		}
	}
	return out
}

// ParseErrors returns only the parser errors.
func (d *Diagnostics) ParseErrors() []*ParseError {
	var out []*ParseError
	for _, err := range d.errors {
		if pe, ok := err.(*ParseError); ok {
			out = append(out, pe)
		}
	}
	return out
}

// HasErrors returns true if there is at least one error in this collection.
func (d *Diagnostics) HasErrors() bool {
	return len(d.errors) > 0
}

// ToResult joins the collected errors into one, or returns nil.
func (d *Diagnostics) ToResult() error {
	if !d.HasErrors() {
		return nil
	}
	errs := make([]error, len(d.errors))
	for i, err := range d.errors {
		errs[i] = err
	}
	return fmt.Errorf("schema has %d syntax errors: %w", len(d.errors), errors.Join(errs...))
}

// ToPrettyString formats all errors with source excerpts.
func (d *Diagnostics) ToPrettyString(fileName, text string) string {
	var buf bytes.Buffer
	for _, err := range d.errors {
		_ = PrettyPrint(&buf, fileName, text, err.Span(), err.Error(), ErrorColorer{})
	}
	return buf.String()
}
