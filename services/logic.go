package services

import (
	"recipe-canvas/models"
)

// Occurrence ist ein Prädikat-Vorkommen samt effektiver Negation
// (Parität der Not-Vorfahren auf dem Pfad zur Wurzel).
type Occurrence struct {
	Predicate *models.PredicateNode
	Negated   bool
}

// OccurrenceGroup ist eine visuelle Einheit des Diagramms: eine Menge
// von Vorkommen, die der Renderer optional mit einem "all"/"oneOf"
// Rahmen versieht.
type OccurrenceGroup struct {
	Occurrences []Occurrence
	Kind        string // models.LogicAnd oder models.LogicOr
	Structural  bool   // eigener sichtbarer Rahmen?
	Description string // optionales Label aus dem Baum-Knoten
}

// PredicateIDs liefert die Vorkommen-IDs der Gruppe in Reihenfolge.
func (g *OccurrenceGroup) PredicateIDs() []uint {
	ids := make([]uint, 0, len(g.Occurrences))
	for _, occ := range g.Occurrences {
		ids = append(ids, occ.Predicate.ID)
	}
	return ids
}

// OuterBorder beschreibt den äußeren Rahmen um alle Gruppen eines
// Recipes, falls die Wurzel einen sichtbaren Top-Level-Indikator
// verlangt.
type OuterBorder struct {
	Kind         string
	Label        string
	PredicateIDs []uint
}

// RecipePlan ist das Ergebnis der Baum-Interpretation und die einzige
// Eingabeform des Layouters; beide Rezept-Formen (Baum und Legacy)
// münden hier.
type RecipePlan struct {
	Groups []OccurrenceGroup
	Outer  *OuterBorder
}

// AllOccurrences liefert alle Vorkommen über alle Gruppen in
// Traversierungs-Reihenfolge.
func (p *RecipePlan) AllOccurrences() []Occurrence {
	var out []Occurrence
	for _, g := range p.Groups {
		out = append(out, g.Occurrences...)
	}
	return out
}

// GroupCaption ist die Rahmen-Beschriftung für eine Gruppen-Art.
func GroupCaption(kind string) string {
	if kind == models.LogicOr {
		return "oneOf"
	}
	return "all"
}

// ExtractOccurrences sammelt rekursiv alle (Prädikat, Negation)-Paare
// eines Teilbaums in Dokument-Reihenfolge. Ein Not kippt die Parität;
// leere oder unbekannte Knoten tragen nichts bei.
func ExtractOccurrences(node *models.LogicNode, negated bool) []Occurrence {
	if node == nil {
		return nil
	}
	switch node.Kind {
	case models.LogicLeaf:
		if node.TargetPredicate == nil {
			return nil
		}
		return []Occurrence{{Predicate: node.TargetPredicate, Negated: negated}}
	case models.LogicNot:
		var out []Occurrence
		for _, child := range node.Children {
			out = append(out, ExtractOccurrences(child, !negated)...)
		}
		return out
	case models.LogicAnd, models.LogicOr:
		var out []Occurrence
		for _, child := range node.Children {
			out = append(out, ExtractOccurrences(child, negated)...)
		}
		return out
	default:
		return nil
	}
}

// InterpretRecipe übersetzt ein Recipe in den RecipePlan. Liegt kein
// logic_root vor, greift der Legacy-Pfad über die flache Prädikatliste
// und die optionale predicate_groups-Gruppierung.
func InterpretRecipe(recipe *models.Recipe) RecipePlan {
	if recipe == nil {
		return RecipePlan{}
	}
	if recipe.LogicRoot != nil {
		return interpretTree(recipe.LogicRoot)
	}
	return interpretLegacy(recipe)
}

func interpretTree(root *models.LogicNode) RecipePlan {
	var plan RecipePlan

	switch root.Kind {
	case models.LogicAnd:
		plan.Groups = interpretAndRoot(root)
	case models.LogicOr:
		plan = interpretOrRoot(root)
	case models.LogicLeaf, models.LogicNot:
		// Degeneriertes Ein-Zweig-Rezept: eine Gruppe ohne Rahmen.
		if occs := ExtractOccurrences(root, false); len(occs) > 0 {
			plan.Groups = []OccurrenceGroup{{
				Occurrences: occs,
				Kind:        models.LogicAnd,
			}}
		}
	}

	if plan.Outer != nil {
		plan.Outer.PredicateIDs = collectPredicateIDs(plan.Groups)
	}
	return plan
}

// interpretAndRoot: eine AND-Wurzel ist entweder "AND of ORs" (jedes
// OR-Kind wird eigene oneOf-Gruppe) oder "pure AND" (eine gemeinsame
// all-Gruppe). Mischformen behalten die restlichen Kinder als eine
// rahmenlose Sammelgruppe an der Position ihres ersten Vorkommens.
func interpretAndRoot(root *models.LogicNode) []OccurrenceGroup {
	var groups []OccurrenceGroup
	hasOrChild := false
	for _, child := range root.Children {
		if child != nil && child.Kind == models.LogicOr {
			hasOrChild = true
			break
		}
	}

	var pending []Occurrence
	pendingIdx := -1
	for _, child := range root.Children {
		if child != nil && child.Kind == models.LogicOr {
			occs := ExtractOccurrences(child, false)
			if len(occs) == 0 {
				continue
			}
			groups = append(groups, OccurrenceGroup{
				Occurrences: occs,
				Kind:        models.LogicOr,
				Structural:  true,
				Description: child.Description,
			})
			continue
		}
		occs := ExtractOccurrences(child, false)
		if len(occs) == 0 {
			continue
		}
		if pendingIdx < 0 {
			pendingIdx = len(groups)
		}
		pending = append(pending, occs...)
	}

	if len(pending) > 0 {
		combined := OccurrenceGroup{
			Occurrences: pending,
			Kind:        models.LogicAnd,
			// Rahmen nur im reinen AND-Fall und nur bei mehr als
			// einem Vorkommen; neben OR-Gruppen bleibt die
			// Sammelgruppe unsichtbar.
			Structural:  !hasOrChild && len(pending) > 1,
			Description: root.Description,
		}
		groups = append(groups[:pendingIdx], append([]OccurrenceGroup{combined}, groups[pendingIdx:]...)...)
	}
	return groups
}

// interpretOrRoot: ein AND-Kind erzwingt den äußeren oneOf-Rahmen.
// Aufeinanderfolgende Leaf-Kinder verschmelzen zu einer rahmenlosen
// Gruppe; And/Or/Not-Kinder bekommen jeweils einen eigenen Rahmen.
// Ohne AND-Kind fällt alles in eine Gruppe, deren Rahmen nur bei mehr
// als einem Vorkommen gezeichnet wird.
func interpretOrRoot(root *models.LogicNode) RecipePlan {
	hasAndChild := false
	for _, child := range root.Children {
		if child != nil && child.Kind == models.LogicAnd {
			hasAndChild = true
			break
		}
	}

	if !hasAndChild {
		occs := ExtractOccurrences(root, false)
		if len(occs) == 0 {
			return RecipePlan{}
		}
		return RecipePlan{Groups: []OccurrenceGroup{{
			Occurrences: occs,
			Kind:        models.LogicOr,
			Structural:  len(occs) > 1,
			Description: root.Description,
		}}}
	}

	var groups []OccurrenceGroup
	var leafRun []Occurrence
	flushLeaves := func() {
		if len(leafRun) == 0 {
			return
		}
		groups = append(groups, OccurrenceGroup{
			Occurrences: leafRun,
			Kind:        models.LogicOr,
		})
		leafRun = nil
	}

	for _, child := range root.Children {
		if child == nil {
			continue
		}
		if child.Kind == models.LogicLeaf {
			leafRun = append(leafRun, ExtractOccurrences(child, false)...)
			continue
		}
		flushLeaves()
		occs := ExtractOccurrences(child, false)
		if len(occs) == 0 {
			continue
		}
		kind := child.Kind
		if kind == models.LogicNot {
			kind = models.LogicOr
		}
		groups = append(groups, OccurrenceGroup{
			Occurrences: occs,
			Kind:        kind,
			Structural:  true,
			Description: child.Description,
		})
	}
	flushLeaves()

	return RecipePlan{
		Groups: groups,
		Outer: &OuterBorder{
			Kind:  models.LogicOr,
			Label: root.Description,
		},
	}
}

// interpretLegacy bildet Alt-Rezepte ohne Baum ab: jede Legacy-Gruppe
// wird eine OR-Gruppe, ungrouped Prädikate sammeln sich in einer
// rahmenlosen AND-Gruppe. Nie ein äußerer Rahmen.
func interpretLegacy(recipe *models.Recipe) RecipePlan {
	var plan RecipePlan
	grouped := make(map[uint]bool)

	for _, idGroup := range recipe.PredicateGroups {
		var occs []Occurrence
		for _, id := range idGroup {
			if pred := recipe.PredicateByID(id); pred != nil && !grouped[id] {
				grouped[id] = true
				occs = append(occs, Occurrence{Predicate: pred})
			}
		}
		if len(occs) == 0 {
			continue
		}
		plan.Groups = append(plan.Groups, OccurrenceGroup{
			Occurrences: occs,
			Kind:        models.LogicOr,
			Structural:  len(occs) > 1,
		})
	}

	var rest []Occurrence
	for i := range recipe.Predicates {
		if !grouped[recipe.Predicates[i].ID] {
			rest = append(rest, Occurrence{Predicate: &recipe.Predicates[i]})
		}
	}
	if len(rest) > 0 {
		plan.Groups = append(plan.Groups, OccurrenceGroup{
			Occurrences: rest,
			Kind:        models.LogicAnd,
		})
	}
	return plan
}

func collectPredicateIDs(groups []OccurrenceGroup) []uint {
	var ids []uint
	for i := range groups {
		ids = append(ids, groups[i].PredicateIDs()...)
	}
	return ids
}
