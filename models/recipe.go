package models

import "fmt"

// Recipe ist eine Zerlegung der Bedeutung eines Verbs in Sub-Prädikate.
// Ein Eintrag kann null oder mehrere Recipes haben; angezeigt wird immer
// genau eines.
type Recipe struct {
	ID      uint   `json:"id"`
	Label   string `json:"label,omitempty"`
	Example string `json:"example,omitempty"`

	Preconditions []Precondition  `json:"preconditions,omitempty"`
	Predicates    []PredicateNode `json:"predicates"`
	Relations     []Relation      `json:"relations,omitempty"`
	Variables     []Variable      `json:"variables,omitempty"`

	// Aktuelle Baum-Repräsentation; nil bei Alt-Daten vor der Migration.
	LogicRoot *LogicNode `json:"logic_root"`

	// Legacy-OR-Gruppierung über Prädikat-IDs, nur bei Alt-Daten gesetzt.
	PredicateGroups [][]uint `json:"predicate_groups,omitempty"`
}

// PredicateByID sucht ein Prädikat-Vorkommen über seine ID. Migrierte
// Recipes tragen ihre Vorkommen mitunter nur noch im Baum, daher fällt
// die Suche auf LogicRoot zurück, wenn die flache Liste nichts liefert.
func (r *Recipe) PredicateByID(id uint) *PredicateNode {
	for i := range r.Predicates {
		if r.Predicates[i].ID == id {
			return &r.Predicates[i]
		}
	}
	return r.LogicRoot.FindPredicate(id)
}

// VariableByKey sucht eine Rezept-Variable über ihren Key.
func (r *Recipe) VariableByKey(key string) *Variable {
	for i := range r.Variables {
		if r.Variables[i].Key == key {
			return &r.Variables[i]
		}
	}
	return nil
}

// PredicateNode ist ein Vorkommen eines anderen Verb-Eintrags innerhalb
// eines Recipes. Die ID ist pro Vorkommen eindeutig, nicht pro Verb.
type PredicateNode struct {
	ID           uint          `json:"id"`
	Lexical      LexicalRef    `json:"lexical"`
	Example      string        `json:"example,omitempty"`
	RoleMappings []RoleMapping `json:"role_mappings"`
}

// DisplayID ist der im Diagramm angezeigte Titel des Vorkommens.
func (p *PredicateNode) DisplayID() string {
	return fmt.Sprintf("%s #%d", p.Lexical.Lemma, p.ID)
}

// LexicalRef verweist auf den Verb-Eintrag hinter einem Prädikat.
type LexicalRef struct {
	ID       uint   `json:"id"`
	Lemma    string `json:"lemma"`
	Gloss    string `json:"gloss,omitempty"`
	Concrete *bool  `json:"concrete,omitempty"`
	Roles    []Role `json:"roles,omitempty"`
}

// Bind-Arten eines RoleMappings.
const (
	BindRole     = "role"
	BindVariable = "variable"
	BindConstant = "constant"
)

// RoleMapping bindet eine Rolle des Prädikat-Verbs an den äußeren Scope:
// an eine Rolle des aktuellen Eintrags, eine Variable oder eine Konstante.
type RoleMapping struct {
	RoleLabel string `json:"role_label"`
	BindKind  string `json:"bind_kind"`

	// BindRole: Rollen-Label am aktuellen Eintrag.
	EntryRoleLabel string `json:"entry_role_label,omitempty"`

	// BindVariable: Key einer Recipe.Variables oder nur Typ-Beschreibung.
	VariableKey       string `json:"variable_key,omitempty"`
	VariableTypeLabel string `json:"variable_type_label,omitempty"`

	// Discovered: die Ziel-Rolle muss am Ziel-Eintrag NULL sein; steuert
	// die Rezept-Wahl beim Folgen eines Prädikat-Links.
	Discovered bool `json:"discovered"`
}

// Variable ist eine benannte existenzielle Bindung eines Recipes.
type Variable struct {
	Key       string `json:"key"`
	NounCode  string `json:"noun_code,omitempty"`
	NounGloss string `json:"noun_gloss,omitempty"`
}

// Bekannte Condition-Typen einer Precondition.
const (
	CondRoleIsNull    = "role_is_null"
	CondRoleIsNotNull = "role_is_not_null"
)

// Precondition ist eine Vorbedingung auf Rezept- oder Prädikat-Ebene.
type Precondition struct {
	ConditionType   string `json:"condition_type"`
	TargetRoleID    *uint  `json:"target_role_id,omitempty"`
	TargetRoleLabel string `json:"target_role_label,omitempty"`

	// Gesetzt bei Prädikat-Scope; solche Einträge fehlen in der
	// Rezept-Zusammenfassung.
	TargetRecipePredicateID *uint `json:"target_recipe_predicate_id,omitempty"`

	Description string `json:"description,omitempty"`
}

// Relation ist eine gerichtete Kante zwischen zwei Prädikat-Vorkommen,
// z.B. "causes" oder "enables".
type Relation struct {
	SourcePredicateID uint   `json:"source_predicate_id"`
	TargetPredicateID uint   `json:"target_predicate_id"`
	RelationType      string `json:"relation_type"`
}
