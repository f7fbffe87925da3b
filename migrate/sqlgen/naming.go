package sqlgen

import (
	"strings"
	"unicode"

	"github.com/satishbabariya/schema-forge/schema"
)

// IDColumn is the primary key of every entity table.
const IDColumn = "id"

// Join table columns for many-valued relations.
const (
	SourceColumn = "source_id"
	TargetColumn = "target_id"
)

// TableName maps a schema name to its table: DealStage becomes deal_stage.
func TableName(name schema.SchemaName) string {
	var b strings.Builder
	for i, r := range string(name) {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ColumnName is the column storing a field. Single-valued relations store
// the target id in <field>_id; many-valued relations have no column.
func ColumnName(f schema.FieldDefinition) string {
	if _, ok := f.Type.(schema.Relation); ok {
		return string(f.Name) + "_id"
	}
	return string(f.Name)
}

// JoinTableName is the table linking a schema to the targets of a
// many-valued relation field.
func JoinTableName(owner schema.SchemaName, field schema.FieldName) string {
	return TableName(owner) + "_" + string(field)
}

// IndexName names the index created for an indexed field.
func IndexName(owner schema.SchemaName, field schema.FieldName) string {
	return "idx_" + TableName(owner) + "_" + string(field)
}

// IsManyRelation reports whether f is stored in a join table.
func IsManyRelation(f schema.FieldDefinition) bool {
	rel, ok := f.Type.(schema.Relation)
	return ok && rel.Cardinality == schema.Many
}
