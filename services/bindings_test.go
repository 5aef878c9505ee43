package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"recipe-canvas/models"
)

func testCatalog() *Catalog {
	c := NewCatalog()
	c.Replace([]models.RoleType{
		{Label: "Agent", Code: "AG", GenericDescription: "the entity acting"},
		{Label: "Theme", Code: "TH", GenericDescription: "the entity acted upon"},
	})
	return c
}

func TestDescribeRoleTiers(t *testing.T) {
	r := NewBindingResolver(testCatalog())

	roles := []models.Role{
		{Label: "Agent", Code: "AG", Description: "the runner"},
		{Label: "Goal", Code: "GO", Description: "where to"},
	}

	tests := []struct {
		name     string
		label    string
		expected string
	}{
		{"exact label match", "Agent", "the runner"},
		{"case-insensitive label match", "agent", "the runner"},
		{"code match", "GO", "where to"},
		{"generic catalog fallback", "Theme", "the entity acted upon"},
		{"bare label fallback", "Instrument", "Instrument"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, r.describeRole(tt.label, roles))
		})
	}
}

func TestDescribeRoleExactBeatsCaseInsensitive(t *testing.T) {
	r := NewBindingResolver(NewCatalog())
	roles := []models.Role{
		{Label: "agent", Description: "lowercase role"},
		{Label: "Agent", Description: "uppercase role"},
	}
	assert.Equal(t, "uppercase role", r.describeRole("Agent", roles))
}

func TestResolveRoleBinding(t *testing.T) {
	r := NewBindingResolver(testCatalog())

	predicate := &models.PredicateNode{
		ID: 1,
		Lexical: models.LexicalRef{
			Lemma: "move",
			Roles: []models.Role{{Label: "Mover", Description: "the moving thing"}},
		},
	}
	current := &models.GraphNode{
		Roles: []models.Role{{Label: "Agent", Description: "the one who runs"}},
	}
	m := models.RoleMapping{
		RoleLabel:      "Mover",
		BindKind:       models.BindRole,
		EntryRoleLabel: "Agent",
	}

	b := r.Resolve(m, predicate, &models.Recipe{}, current)
	assert.Equal(t, "Mover", b.RoleLabel)
	assert.Equal(t, "the moving thing", b.RoleDescription)
	assert.Equal(t, "Agent", b.TargetLabel)
	assert.Equal(t, "the one who runs", b.TargetDescription)
	assert.False(t, b.Variable)
	assert.False(t, b.Constant)
}

func TestResolveVariableBinding(t *testing.T) {
	r := NewBindingResolver(NewCatalog())
	recipe := &models.Recipe{
		Variables: []models.Variable{
			{Key: "x", NounCode: "vehicle", NounGloss: "a means of transport"},
			{Key: "y"},
		},
	}

	tests := []struct {
		name         string
		mapping      models.RoleMapping
		expectedText string
		expectedDesc string
	}{
		{
			name:         "keyed variable with noun type",
			mapping:      models.RoleMapping{BindKind: models.BindVariable, VariableKey: "x"},
			expectedText: "$x",
			expectedDesc: "instance of vehicle (a means of transport)",
		},
		{
			name:         "keyed variable with type label only",
			mapping:      models.RoleMapping{BindKind: models.BindVariable, VariableKey: "y", VariableTypeLabel: "container"},
			expectedText: "$y",
			expectedDesc: "type container",
		},
		{
			name:         "keyed variable without any type",
			mapping:      models.RoleMapping{BindKind: models.BindVariable, VariableKey: "y"},
			expectedText: "$y",
			expectedDesc: "variable",
		},
		{
			name:         "unkeyed variable with type label",
			mapping:      models.RoleMapping{BindKind: models.BindVariable, VariableTypeLabel: "liquid"},
			expectedText: "[liquid]",
			expectedDesc: "type liquid",
		},
		{
			name:         "unkeyed variable without type label",
			mapping:      models.RoleMapping{BindKind: models.BindVariable},
			expectedText: "[variable]",
			expectedDesc: "variable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := r.Resolve(tt.mapping, pred(1), recipe, nil)
			assert.True(t, b.Variable)
			assert.Equal(t, tt.expectedText, b.TargetLabel)
			assert.Equal(t, tt.expectedDesc, b.TargetDescription)
		})
	}
}

func TestResolveConstantBinding(t *testing.T) {
	r := NewBindingResolver(NewCatalog())
	b := r.Resolve(models.RoleMapping{BindKind: models.BindConstant}, pred(1), &models.Recipe{}, nil)

	assert.True(t, b.Constant)
	assert.Equal(t, "[constant]", b.TargetLabel)
	assert.Equal(t, "Constant binding", b.TargetDescription)
}

func TestResolveDiscoveredFlagForwarded(t *testing.T) {
	r := NewBindingResolver(NewCatalog())
	b := r.Resolve(models.RoleMapping{
		BindKind:       models.BindRole,
		EntryRoleLabel: "Agent",
		Discovered:     true,
	}, pred(1), &models.Recipe{}, nil)
	assert.True(t, b.Discovered)
}

func TestEmptyCatalogDegradesToBareLabel(t *testing.T) {
	// Solange der Katalog nie geladen wurde, bleibt das Label selbst
	// die Beschreibung; kein Fehler.
	r := NewBindingResolver(NewCatalog())
	assert.Equal(t, "Agent", r.describeRole("Agent", nil))
}

func TestCatalogReplaceAndLookup(t *testing.T) {
	c := NewCatalog()
	assert.Empty(t, c.Types())

	c.Replace([]models.RoleType{{Label: "Agent", Code: "AG", GenericDescription: "acting entity"}})

	desc, ok := c.GenericDescription("agent")
	assert.True(t, ok)
	assert.Equal(t, "acting entity", desc)

	desc, ok = c.GenericDescription("ag")
	assert.True(t, ok)
	assert.Equal(t, "acting entity", desc)

	_, ok = c.GenericDescription("Patient")
	assert.False(t, ok)
}
