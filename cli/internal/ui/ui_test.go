package ui

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/satishbabariya/schema-forge/migrate/plan"
	"github.com/satishbabariya/schema-forge/schema"
)

func TestFormatPlan(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	p := plan.New("Contact", 1, 2, []plan.Step{
		plan.AddField{Field: schema.FieldDefinition{Name: "phone", Type: schema.Text{}}},
		plan.RemoveField{Field: schema.FieldDefinition{Name: "email", Type: schema.Text{}}},
	})

	assert.Equal(t, "Plan for Contact (v1 → v2, destructive)\n"+
		"   1. ADD field 'phone' [safe]\n"+
		"   2. REMOVE field 'email' [destructive]\n", FormatPlan(p))
}

func TestSafetyColor(t *testing.T) {
	assert.True(t, SafetyColor(plan.Safe).Equals(color.New(color.FgGreen)))
	assert.True(t, SafetyColor(plan.RequiresConfirmation).Equals(color.New(color.FgYellow)))
	assert.True(t, SafetyColor(plan.Destructive).Equals(color.New(color.FgRed, color.Bold)))
}
