// Package plan defines migration steps and the ordered, safety-classified
// plans the diff engine produces.
package plan

import (
	"fmt"

	"github.com/satishbabariya/schema-forge/schema"
)

// Safety classifies how risky a step is to apply.
type Safety int

const (
	// Safe steps never lose data.
	Safe Safety = iota
	// RequiresConfirmation steps may fail or rewrite existing data.
	RequiresConfirmation
	// Destructive steps drop data.
	Destructive
)

func (s Safety) String() string {
	switch s {
	case RequiresConfirmation:
		return "requires_confirmation"
	case Destructive:
		return "destructive"
	}
	return "safe"
}

// Worst returns the more severe of s and other.
func (s Safety) Worst(other Safety) Safety {
	if other > s {
		return other
	}
	return s
}

// StepKind identifies a Step variant.
type StepKind string

const (
	KindCreateSchema   StepKind = "CreateSchema"
	KindDropSchema     StepKind = "DropSchema"
	KindAddField       StepKind = "AddField"
	KindRemoveField    StepKind = "RemoveField"
	KindRenameField    StepKind = "RenameField"
	KindChangeType     StepKind = "ChangeType"
	KindAddRequired    StepKind = "AddRequired"
	KindRemoveRequired StepKind = "RemoveRequired"
	KindSetDefault     StepKind = "SetDefault"
	KindRemoveDefault  StepKind = "RemoveDefault"
	KindAddIndex       StepKind = "AddIndex"
	KindRemoveIndex    StepKind = "RemoveIndex"
	KindAddRelation    StepKind = "AddRelation"
	KindRemoveRelation StepKind = "RemoveRelation"
)

// Transform is the strategy for converting stored values on a type change.
type Transform string

const (
	// Identity keeps values as they are; only constraints changed.
	Identity Transform = "identity"
	// IntegerToFloat widens integers.
	IntegerToFloat Transform = "integer_to_float"
	// ToString renders scalar values as text.
	ToString Transform = "to_string"
	// SetNull discards values that cannot be converted.
	SetNull Transform = "set_null"
)

// Step is one atomic structural change. The variants are CreateSchema,
// DropSchema, AddField, RemoveField, RenameField, ChangeType, AddRequired,
// RemoveRequired, SetDefault, RemoveDefault, AddIndex, RemoveIndex,
// AddRelation and RemoveRelation.
type Step interface {
	Kind() StepKind
	Safety() Safety
	// Target is the field the step touches; empty for schema-level steps.
	Target() schema.FieldName
	String() string
	step()
}

type CreateSchema struct {
	Schema schema.SchemaDefinition
}

type DropSchema struct {
	Name schema.SchemaName
}

type AddField struct {
	Field schema.FieldDefinition
}

// RemoveField carries the removed definition so adapters know what they drop.
type RemoveField struct {
	Field schema.FieldDefinition
}

type RenameField struct {
	From schema.FieldName
	To   schema.FieldName
}

type ChangeType struct {
	Name      schema.FieldName
	From      schema.FieldType
	To        schema.FieldType
	Transform Transform
}

type AddRequired struct {
	Name schema.FieldName
}

type RemoveRequired struct {
	Name schema.FieldName
}

type SetDefault struct {
	Name  schema.FieldName
	Value schema.DefaultValue
}

type RemoveDefault struct {
	Name schema.FieldName
}

type AddIndex struct {
	Name schema.FieldName
}

type RemoveIndex struct {
	Name schema.FieldName
}

type AddRelation struct {
	Name         schema.FieldName
	TargetSchema schema.SchemaName
	Cardinality  schema.Cardinality
}

type RemoveRelation struct {
	Name         schema.FieldName
	TargetSchema schema.SchemaName
	Cardinality  schema.Cardinality
}

func (CreateSchema) Kind() StepKind   { return KindCreateSchema }
func (DropSchema) Kind() StepKind     { return KindDropSchema }
func (AddField) Kind() StepKind       { return KindAddField }
func (RemoveField) Kind() StepKind    { return KindRemoveField }
func (RenameField) Kind() StepKind    { return KindRenameField }
func (ChangeType) Kind() StepKind     { return KindChangeType }
func (AddRequired) Kind() StepKind    { return KindAddRequired }
func (RemoveRequired) Kind() StepKind { return KindRemoveRequired }
func (SetDefault) Kind() StepKind     { return KindSetDefault }
func (RemoveDefault) Kind() StepKind  { return KindRemoveDefault }
func (AddIndex) Kind() StepKind       { return KindAddIndex }
func (RemoveIndex) Kind() StepKind    { return KindRemoveIndex }
func (AddRelation) Kind() StepKind    { return KindAddRelation }
func (RemoveRelation) Kind() StepKind { return KindRemoveRelation }

func (CreateSchema) Safety() Safety   { return Safe }
func (DropSchema) Safety() Safety     { return Destructive }
func (AddField) Safety() Safety       { return Safe }
func (RemoveField) Safety() Safety    { return Destructive }
func (RenameField) Safety() Safety    { return RequiresConfirmation }
func (ChangeType) Safety() Safety     { return RequiresConfirmation }
func (AddRequired) Safety() Safety    { return RequiresConfirmation }
func (RemoveRequired) Safety() Safety { return Safe }
func (SetDefault) Safety() Safety     { return Safe }
func (RemoveDefault) Safety() Safety  { return Safe }
func (AddIndex) Safety() Safety       { return Safe }
func (RemoveIndex) Safety() Safety    { return Destructive }
func (AddRelation) Safety() Safety    { return Safe }
func (RemoveRelation) Safety() Safety { return Destructive }

func (CreateSchema) Target() schema.FieldName     { return "" }
func (DropSchema) Target() schema.FieldName       { return "" }
func (s AddField) Target() schema.FieldName       { return s.Field.Name }
func (s RemoveField) Target() schema.FieldName    { return s.Field.Name }
func (s RenameField) Target() schema.FieldName    { return s.To }
func (s ChangeType) Target() schema.FieldName     { return s.Name }
func (s AddRequired) Target() schema.FieldName    { return s.Name }
func (s RemoveRequired) Target() schema.FieldName { return s.Name }
func (s SetDefault) Target() schema.FieldName     { return s.Name }
func (s RemoveDefault) Target() schema.FieldName  { return s.Name }
func (s AddIndex) Target() schema.FieldName       { return s.Name }
func (s RemoveIndex) Target() schema.FieldName    { return s.Name }
func (s AddRelation) Target() schema.FieldName    { return s.Name }
func (s RemoveRelation) Target() schema.FieldName { return s.Name }

func (s CreateSchema) String() string {
	return fmt.Sprintf("CREATE schema '%s' with %d fields", s.Schema.Name, len(s.Schema.Fields))
}

func (s DropSchema) String() string  { return fmt.Sprintf("DROP schema '%s'", s.Name) }
func (s AddField) String() string    { return fmt.Sprintf("ADD field '%s'", s.Field.Name) }
func (s RemoveField) String() string { return fmt.Sprintf("REMOVE field '%s'", s.Field.Name) }

func (s RenameField) String() string {
	return fmt.Sprintf("RENAME field '%s' to '%s'", s.From, s.To)
}

func (s ChangeType) String() string {
	return fmt.Sprintf("CHANGE TYPE of '%s' from %s to %s via %s", s.Name, s.From, s.To, s.Transform)
}

func (s AddRequired) String() string    { return fmt.Sprintf("ADD REQUIRED on '%s'", s.Name) }
func (s RemoveRequired) String() string { return fmt.Sprintf("REMOVE REQUIRED on '%s'", s.Name) }

func (s SetDefault) String() string {
	return fmt.Sprintf("SET DEFAULT on '%s' to %s", s.Name, s.Value)
}

func (s RemoveDefault) String() string { return fmt.Sprintf("REMOVE DEFAULT on '%s'", s.Name) }
func (s AddIndex) String() string      { return fmt.Sprintf("ADD INDEX on '%s'", s.Name) }
func (s RemoveIndex) String() string   { return fmt.Sprintf("REMOVE INDEX on '%s'", s.Name) }

func (s AddRelation) String() string {
	return fmt.Sprintf("ADD RELATION '%s' -> %s (%s)", s.Name, s.TargetSchema, s.Cardinality)
}

func (s RemoveRelation) String() string { return fmt.Sprintf("REMOVE RELATION '%s'", s.Name) }

func (CreateSchema) step()   {}
func (DropSchema) step()     {}
func (AddField) step()       {}
func (RemoveField) step()    {}
func (RenameField) step()    {}
func (ChangeType) step()     {}
func (AddRequired) step()    {}
func (RemoveRequired) step() {}
func (SetDefault) step()     {}
func (RemoveDefault) step()  {}
func (AddIndex) step()       {}
func (RemoveIndex) step()    {}
func (AddRelation) step()    {}
func (RemoveRelation) step() {}
