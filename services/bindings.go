package services

import (
	"fmt"
	"strings"
	"sync"

	"recipe-canvas/models"
)

// Catalog hält den generischen Rollentyp-Katalog im Speicher. Der Cron
// im Server ersetzt den Inhalt atomar; solange er leer ist, degradieren
// Beschreibungen zum bloßen Label.
type Catalog struct {
	mu    sync.RWMutex
	types []models.RoleType
}

// NewCatalog erstellt einen leeren Katalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Replace ersetzt den gesamten Katalog-Inhalt.
func (c *Catalog) Replace(types []models.RoleType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.types = append([]models.RoleType(nil), types...)
}

// Types liefert eine Kopie der Katalog-Einträge.
func (c *Catalog) Types() []models.RoleType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.RoleType(nil), c.types...)
}

// GenericDescription sucht die generische Beschreibung eines Labels,
// case-insensitiv, sonst über den Code.
func (c *Catalog) GenericDescription(label string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.types {
		if strings.EqualFold(t.Label, label) {
			return t.GenericDescription, true
		}
	}
	for _, t := range c.types {
		if t.Code != "" && strings.EqualFold(t.Code, label) {
			return t.GenericDescription, true
		}
	}
	return "", false
}

// Binding ist das aufgelöste Anzeige-Paar eines RoleMappings: Label und
// Beschreibung auf Prädikat-Seite und Ziel-Seite.
type Binding struct {
	RoleLabel       string `json:"role_label"`
	RoleDescription string `json:"role_description,omitempty"`

	TargetLabel       string `json:"target_label"`
	TargetDescription string `json:"target_description,omitempty"`

	// Styling-Hinweise für den Renderer.
	Variable   bool `json:"variable,omitempty"`
	Constant   bool `json:"constant,omitempty"`
	Discovered bool `json:"discovered,omitempty"`
}

// BindingResolver löst RoleMappings in anzeigbare Bindings auf. Reine
// synchrone Lookups, keine Seiteneffekte.
type BindingResolver struct {
	Catalog *Catalog
}

// NewBindingResolver erstellt einen Resolver über dem gegebenen Katalog.
func NewBindingResolver(catalog *Catalog) *BindingResolver {
	return &BindingResolver{Catalog: catalog}
}

// Resolve bestimmt beide Seiten eines Mappings. predicate liefert den
// eigenen Verb-Frame, current den äußeren Eintrag, recipe die
// Variablen-Definitionen.
func (r *BindingResolver) Resolve(m models.RoleMapping, predicate *models.PredicateNode, recipe *models.Recipe, current *models.GraphNode) Binding {
	b := Binding{
		RoleLabel:  m.RoleLabel,
		Discovered: m.Discovered,
	}

	var frameRoles []models.Role
	if predicate != nil {
		frameRoles = predicate.Lexical.Roles
	}
	b.RoleDescription = r.describeRole(m.RoleLabel, frameRoles)

	switch m.BindKind {
	case models.BindRole:
		b.TargetLabel = m.EntryRoleLabel
		var entryRoles []models.Role
		if current != nil {
			entryRoles = current.Roles
		}
		b.TargetDescription = r.describeRole(m.EntryRoleLabel, entryRoles)
	case models.BindVariable:
		b.Variable = true
		b.TargetLabel, b.TargetDescription = r.describeVariable(m, recipe)
	case models.BindConstant:
		b.Constant = true
		b.TargetLabel = "[constant]"
		b.TargetDescription = "Constant binding"
	default:
		b.TargetLabel = m.EntryRoleLabel
		b.TargetDescription = m.EntryRoleLabel
	}
	return b
}

// describeRole: exaktes Label vor case-insensitivem Label vor
// Code-Match, danach generischer Katalog, zuletzt das nackte Label.
func (r *BindingResolver) describeRole(label string, roles []models.Role) string {
	for _, role := range roles {
		if role.Label == label && role.Description != "" {
			return role.Description
		}
	}
	for _, role := range roles {
		if strings.EqualFold(role.Label, label) && role.Description != "" {
			return role.Description
		}
	}
	for _, role := range roles {
		if role.Code != "" && strings.EqualFold(role.Code, label) && role.Description != "" {
			return role.Description
		}
	}
	if r.Catalog != nil {
		if desc, ok := r.Catalog.GenericDescription(label); ok && desc != "" {
			return desc
		}
	}
	return label
}

func (r *BindingResolver) describeVariable(m models.RoleMapping, recipe *models.Recipe) (label, desc string) {
	if m.VariableKey == "" {
		typeLabel := m.VariableTypeLabel
		if typeLabel == "" {
			typeLabel = "variable"
		}
		label = "[" + typeLabel + "]"
		if m.VariableTypeLabel != "" {
			desc = "type " + m.VariableTypeLabel
		} else {
			desc = "variable"
		}
		return label, desc
	}

	label = "$" + m.VariableKey
	if recipe != nil {
		if v := recipe.VariableByKey(m.VariableKey); v != nil && v.NounCode != "" {
			return label, fmt.Sprintf("instance of %s (%s)", v.NounCode, v.NounGloss)
		}
	}
	if m.VariableTypeLabel != "" {
		return label, "type " + m.VariableTypeLabel
	}
	return label, "variable"
}
