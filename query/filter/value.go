package filter

import (
	"strconv"
	"time"
)

// Value is a literal compared against a field. The variants are Null,
// Text, Integer, Float, Boolean and DateTime.
type Value interface {
	// TypeName names the literal's type in error messages.
	TypeName() string
	// Native returns the Go value handed to database drivers.
	Native() any
	String() string
	value()
}

type Null struct{}

type Text string

type Integer int64

type Float float64

type Boolean bool

type DateTime time.Time

func (Null) TypeName() string     { return "null" }
func (Text) TypeName() string     { return "text" }
func (Integer) TypeName() string  { return "integer" }
func (Float) TypeName() string    { return "float" }
func (Boolean) TypeName() string  { return "boolean" }
func (DateTime) TypeName() string { return "datetime" }

func (Null) Native() any       { return nil }
func (v Text) Native() any     { return string(v) }
func (v Integer) Native() any  { return int64(v) }
func (v Float) Native() any    { return float64(v) }
func (v Boolean) Native() any  { return bool(v) }
func (v DateTime) Native() any { return time.Time(v).UTC() }

func (Null) String() string      { return "null" }
func (v Text) String() string    { return strconv.Quote(string(v)) }
func (v Integer) String() string { return strconv.FormatInt(int64(v), 10) }
func (v Float) String() string   { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v Boolean) String() string { return strconv.FormatBool(bool(v)) }

func (v DateTime) String() string {
	return time.Time(v).UTC().Format(time.RFC3339Nano)
}

func (Null) value()     {}
func (Text) value()     {}
func (Integer) value()  {}
func (Float) value()    {}
func (Boolean) value()  {}
func (DateTime) value() {}
