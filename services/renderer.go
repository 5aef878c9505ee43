package services

import (
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"

	"recipe-canvas/models"
)

// MainNodeRenderer zeichnet den Haupt-Knoten des aktuellen Eintrags.
// Ausgelagert, damit der Diagramm-Renderer nur den Höhen-Vertrag der
// Komponente kennt.
type MainNodeRenderer func(w *strings.Builder, entry *models.GraphNode, rect Rect, expand ExpandConfig)

// Renderer erzeugt das SVG-Diagramm eines Recipes: Haupt-Knoten,
// Prädikat-Boxen, Gruppen-Rahmen, Relations-Kanten und Pager.
type Renderer struct {
	Layouter *Layouter
	Resolver *BindingResolver
	MainNode MainNodeRenderer
	Logger   *zap.Logger
}

// NewRenderer erstellt einen Renderer mit dem Standard-Haupt-Knoten.
func NewRenderer(layouter *Layouter, resolver *BindingResolver, logger *zap.Logger) *Renderer {
	return &Renderer{
		Layouter: layouter,
		Resolver: resolver,
		MainNode: renderMainNode,
		Logger:   logger,
	}
}

// ActiveRecipe wählt das anzuzeigende Recipe: explizite Auswahl über
// die ID, sonst das erste. Nicht auflösbare IDs liefern nil.
func ActiveRecipe(recipes []models.Recipe, recipeID uint) *models.Recipe {
	if len(recipes) == 0 {
		return nil
	}
	if recipeID == 0 {
		return &recipes[0]
	}
	for i := range recipes {
		if recipes[i].ID == recipeID {
			return &recipes[i]
		}
	}
	return nil
}

// RenderDiagram baut das komplette SVG für einen Eintrag. Eine leere
// Rezeptliste ergibt den "no recipes available"-Platzhalter, eine nicht
// auflösbare Auswahl den "loading recipe"-Platzhalter.
func (r *Renderer) RenderDiagram(entry *models.GraphNode, recipes []models.Recipe, recipeID uint, expand ExpandConfig) string {
	if len(recipes) == 0 {
		return r.placeholder("no recipes available")
	}
	recipe := ActiveRecipe(recipes, recipeID)
	if recipe == nil {
		// Sollte transient sein; dauerhaft deutet es auf eine
		// ID-Diskrepanz zwischen Auswahl und Rezeptliste hin.
		r.Logger.Warn("Kein aktives Recipe auflösbar",
			zap.Uint("selected_recipe_id", recipeID),
			zap.Int("recipes", len(recipes)))
		return r.placeholder("loading recipe")
	}

	plan := InterpretRecipe(recipe)
	head := HeadInfo{
		Pager:         len(recipes) > 1,
		Preconditions: hasRecipePreconditions(recipe),
		Example:       recipe.Example != "",
	}
	layout := r.Layouter.Layout(plan, recipe.Relations, expand, head)

	var w strings.Builder
	r.openSVG(&w, layout)

	if r.MainNode != nil && entry != nil {
		r.MainNode(&w, entry, layout.CurrentNode, expand)
	}

	headY := layout.CurrentNode.Bottom() + 24
	if head.Pager {
		r.renderPager(&w, entry, recipes, recipe, layout.Width/2, headY)
		headY += r.Layouter.PagerOffset
	}
	if head.Preconditions {
		fmt.Fprintf(&w, `<text x="%.1f" y="%.1f" text-anchor="middle" class="preconditions">%s</text>`+"\n",
			layout.Width/2, headY, esc(PreconditionSummary(recipe)))
		headY += r.Layouter.PreconditionOffset
	}
	if head.Example {
		fmt.Fprintf(&w, `<text x="%.1f" y="%.1f" text-anchor="middle" class="example">%s</text>`+"\n",
			layout.Width/2, headY, esc(recipe.Example))
	}

	if layout.Outer != nil {
		label := layout.OuterLabel
		if label == "" {
			label = GroupCaption(layout.OuterKind)
		}
		r.renderBorder(&w, *layout.Outer, label, true)
	}
	for _, g := range layout.Groups {
		if g.Structural {
			label := g.Description
			if label == "" {
				label = GroupCaption(g.Kind)
			}
			r.renderBorder(&w, g.Rect, label, false)
		}
		for _, box := range g.Boxes {
			r.renderPredicateBox(&w, entry, recipe, box)
		}
	}

	for _, e := range layout.Edges {
		fmt.Fprintf(&w, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" class="relation" marker-end="url(#arrow)"/>`+"\n",
			e.X1, e.Y1, e.X2, e.Y2)
		fmt.Fprintf(&w, `<text x="%.1f" y="%.1f" text-anchor="middle" class="relation-label">%s</text>`+"\n",
			e.LabelX, e.LabelY, esc(e.Label))
	}

	w.WriteString("</svg>\n")
	return w.String()
}

// ResolveBoxBindings füllt die Binding-Zeilen aller platzierten Boxen
// eines Layouts auf, damit die JSON-Form ohne weitere Lookups
// zeichenbar ist.
func (r *Renderer) ResolveBoxBindings(layout *Layout, recipe *models.Recipe, entry *models.GraphNode) {
	for gi := range layout.Groups {
		for bi := range layout.Groups[gi].Boxes {
			box := &layout.Groups[gi].Boxes[bi]
			pred := box.Occurrence.Predicate
			if pred == nil {
				continue
			}
			for _, m := range pred.RoleMappings {
				box.Bindings = append(box.Bindings, r.Resolver.Resolve(m, pred, recipe, entry))
			}
		}
	}
}

func (r *Renderer) openSVG(w *strings.Builder, layout Layout) {
	fmt.Fprintf(w, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">`+"\n",
		layout.Width, layout.Height, layout.Width, layout.Height)
	w.WriteString(svgDefs)
}

// svgDefs: Pfeilspitze und die festen Stile des Diagramms.
const svgDefs = `<defs>
<marker id="arrow" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="7" markerHeight="7" orient="auto-start-reverse">
<path d="M 0 0 L 10 5 L 0 10 z" fill="#555"/>
</marker>
<style>
.main-node { fill: #eef4ff; stroke: #3b5bdb; stroke-width: 2; }
.predicate { fill: #ffffff; stroke: #444; }
.predicate.abstract { fill: #f3f0ff; }
.predicate.negated { stroke: #c92a2a; stroke-dasharray: 6 3; }
.group-border { fill: none; stroke: #888; }
.outer-border { fill: none; stroke: #555; stroke-width: 2.5; }
.border-label { fill: #666; font: 11px sans-serif; }
.border-label-patch { fill: #ffffff; }
.title { font: bold 13px sans-serif; fill: #222; }
.gloss { font: italic 11px sans-serif; fill: #555; }
.binding { font: 11px sans-serif; fill: #333; }
.binding .role { font-weight: bold; }
.binding .loose { font-style: italic; opacity: 0.7; }
.not-marker { font: bold 11px sans-serif; fill: #c92a2a; }
.example { font: italic 11px sans-serif; fill: #777; }
.preconditions { font: 11px sans-serif; fill: #777; }
.relation { stroke: #555; stroke-width: 1.4; }
.relation-label { font: 10px sans-serif; fill: #555; }
.pager { font: 12px sans-serif; fill: #333; }
.pager a { fill: #3b5bdb; }
.placeholder { font: 14px sans-serif; fill: #888; }
</style>
</defs>
`

func (r *Renderer) placeholder(message string) string {
	var w strings.Builder
	w.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="400" height="120" viewBox="0 0 400 120">` + "\n")
	fmt.Fprintf(&w, `<text x="200" y="64" text-anchor="middle" class="placeholder" font-family="sans-serif" fill="#888">%s</text>`+"\n", esc(message))
	w.WriteString("</svg>\n")
	return w.String()
}

// renderBorder zeichnet einen Gruppen- oder Außen-Rahmen mit einem
// Label-Patch, der die Oberkante unterbricht.
func (r *Renderer) renderBorder(w *strings.Builder, rect Rect, label string, outer bool) {
	class := "group-border"
	if outer {
		class = "outer-border"
	}
	fmt.Fprintf(w, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="8" class="%s"/>`+"\n",
		rect.X, rect.Y, rect.W, rect.H, class)

	patchW := float64(len(label))*7 + 10
	patchX := rect.X + 14
	fmt.Fprintf(w, `<rect x="%.1f" y="%.1f" width="%.1f" height="14" class="border-label-patch"/>`+"\n",
		patchX, rect.Y-7, patchW)
	fmt.Fprintf(w, `<text x="%.1f" y="%.1f" class="border-label">%s</text>`+"\n",
		patchX+5, rect.Y+4, esc(label))
}

// renderPredicateBox zeichnet ein Prädikat-Vorkommen: Titel, Gloss,
// Binding-Zeilen mit Tooltips, ggf. Beispieltext und NOT-Markierung.
// Die ganze Box verlinkt auf den Navigations-Endpoint des Eintrags.
func (r *Renderer) renderPredicateBox(w *strings.Builder, entry *models.GraphNode, recipe *models.Recipe, box PlacedBox) {
	pred := box.Occurrence.Predicate

	var entryID uint
	if entry != nil {
		entryID = entry.ID
	}
	// Der Navigations-Endpoint braucht das aktive Recipe, sonst sucht er
	// das Vorkommen im ersten Recipe des Eintrags.
	fmt.Fprintf(w, `<a xlink:href="/entries/%d/navigate/%d?recipe=%d">`+"\n", entryID, pred.ID, recipe.ID)

	class := "predicate"
	if pred.Lexical.Concrete != nil && !*pred.Lexical.Concrete {
		class += " abstract"
	}
	if box.Occurrence.Negated {
		class += " negated"
	}
	fmt.Fprintf(w, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="6" class="%s"/>`+"\n",
		box.X, box.Y, box.W, box.H, class)

	if box.Occurrence.Negated {
		fmt.Fprintf(w, `<text x="%.1f" y="%.1f" class="not-marker">NOT</text>`+"\n",
			box.X+box.W-34, box.Y+14)
	}

	textX := box.X + 10
	textY := box.Y + 18
	fmt.Fprintf(w, `<text x="%.1f" y="%.1f" class="title">%s</text>`+"\n",
		textX, textY, esc(pred.DisplayID()))
	textY += 16
	if pred.Lexical.Gloss != "" {
		fmt.Fprintf(w, `<text x="%.1f" y="%.1f" class="gloss">%s</text>`+"\n",
			textX, textY, esc(pred.Lexical.Gloss))
	}
	textY += 16

	for _, m := range pred.RoleMappings {
		b := r.Resolver.Resolve(m, pred, recipe, entry)
		targetClass := ""
		if b.Variable || b.Constant {
			targetClass = ` class="loose"`
		}
		marker := ""
		if b.Discovered {
			marker = `<tspan fill="#e8590c">&#9670;</tspan> `
		}
		fmt.Fprintf(w, `<text x="%.1f" y="%.1f" class="binding">%s<tspan class="role">%s</tspan> = <tspan%s>%s</tspan><title>%s</title></text>`+"\n",
			textX, textY, marker, esc(b.RoleLabel), targetClass, esc(b.TargetLabel),
			esc(bindingTooltip(b)))
		textY += r.Layouter.PerMappingHeight
	}

	if pred.Example != "" {
		fmt.Fprintf(w, `<text x="%.1f" y="%.1f" class="example">%s</text>`+"\n",
			textX, textY, esc(pred.Example))
	}

	w.WriteString("</a>\n")
}

// renderPager: "i/total", optionales Label, Prev/Next als Links, die
// modulo der Rezeptanzahl zyklisch weiterschalten.
func (r *Renderer) renderPager(w *strings.Builder, entry *models.GraphNode, recipes []models.Recipe, active *models.Recipe, centerX, y float64) {
	idx := 0
	for i := range recipes {
		if recipes[i].ID == active.ID {
			idx = i
			break
		}
	}
	total := len(recipes)
	prev := recipes[(idx-1+total)%total].ID
	next := recipes[(idx+1)%total].ID

	var entryID uint
	if entry != nil {
		entryID = entry.ID
	}
	caption := fmt.Sprintf("%d/%d", idx+1, total)
	if active.Label != "" {
		caption += " " + active.Label
	}

	fmt.Fprintf(w, `<a xlink:href="/entries/%d/diagram?recipe=%d"><text x="%.1f" y="%.1f" text-anchor="middle" class="pager">&#8249;</text></a>`+"\n",
		entryID, prev, centerX-90, y)
	fmt.Fprintf(w, `<text x="%.1f" y="%.1f" text-anchor="middle" class="pager">%s</text>`+"\n",
		centerX, y, esc(caption))
	fmt.Fprintf(w, `<a xlink:href="/entries/%d/diagram?recipe=%d"><text x="%.1f" y="%.1f" text-anchor="middle" class="pager">&#8250;</text></a>`+"\n",
		entryID, next, centerX+90, y)
}

// PreconditionSummary bildet den Rezept-Satz aus den Vorbedingungen auf
// Rezept-Ebene; prädikat-gebundene Einträge bleiben außen vor.
func PreconditionSummary(recipe *models.Recipe) string {
	var parts []string
	for _, p := range recipe.Preconditions {
		if p.TargetRecipePredicateID != nil {
			continue
		}
		switch p.ConditionType {
		case models.CondRoleIsNull:
			parts = append(parts, p.TargetRoleLabel+" is unset")
		case models.CondRoleIsNotNull:
			parts = append(parts, p.TargetRoleLabel+" is set")
		default:
			if p.Description != "" {
				parts = append(parts, p.Description)
			} else {
				parts = append(parts, p.ConditionType)
			}
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "requires: " + strings.Join(parts, ", ")
}

func hasRecipePreconditions(recipe *models.Recipe) bool {
	for _, p := range recipe.Preconditions {
		if p.TargetRecipePredicateID == nil {
			return true
		}
	}
	return false
}

func bindingTooltip(b Binding) string {
	return fmt.Sprintf("%s: %s / %s: %s", b.RoleLabel, b.RoleDescription, b.TargetLabel, b.TargetDescription)
}

// renderMainNode ist der Standard-Haupt-Knoten: Rahmen, Lemma, Gloss
// und ein Edit-Link. Aufgeklappte Sektionen vergrößern nur die Box;
// ihre Inhalte zeichnet die Detail-Komponente des Hosts.
func renderMainNode(w *strings.Builder, entry *models.GraphNode, rect Rect, expand ExpandConfig) {
	fmt.Fprintf(w, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="10" class="main-node"/>`+"\n",
		rect.X, rect.Y, rect.W, rect.H)
	fmt.Fprintf(w, `<text x="%.1f" y="%.1f" text-anchor="middle" class="title">%s</text>`+"\n",
		rect.CenterX(), rect.Y+24, esc(entry.Lemma))
	if entry.Gloss != "" {
		fmt.Fprintf(w, `<text x="%.1f" y="%.1f" text-anchor="middle" class="gloss">%s</text>`+"\n",
			rect.CenterX(), rect.Y+42, esc(entry.Gloss))
	}
	fmt.Fprintf(w, `<a xlink:href="/entries/%d/edit"><text x="%.1f" y="%.1f" class="pager">edit</text></a>`+"\n",
		entry.ID, rect.X+rect.W-38, rect.Y+18)
}

func esc(s string) string {
	return html.EscapeString(s)
}
