package services

import (
	"math"

	"recipe-canvas/models"
)

// ExpandConfig bündelt die sechs Auf/Zu-Zustände des aktuellen
// Eintrags-Knotens. Die Höhenfunktion und der Layouter nehmen sie als
// ein Struct, damit neue Sektionen die Signaturen nicht aufblähen.
type ExpandConfig struct {
	Roles    bool `json:"roles"`
	Lemmas   bool `json:"lemmas"`
	Examples bool `json:"examples"`
	Causes   bool `json:"causes"`
	Entails  bool `json:"entails"`
	AlsoSee  bool `json:"also_see"`
}

// NodeHeightFunc liefert die Höhe des aktuellen Eintrags-Knotens in
// Abhängigkeit der aufgeklappten Sektionen. Der Haupt-Knoten wird von
// einer eigenen Komponente gezeichnet; hier zählt nur ihr Höhen-Vertrag.
type NodeHeightFunc func(ExpandConfig) float64

// DefaultNodeHeight ist die Standard-Höhenfunktion des Haupt-Knotens.
func DefaultNodeHeight(cfg ExpandConfig) float64 {
	h := 64.0
	if cfg.Roles {
		h += 96
	}
	if cfg.Lemmas {
		h += 40
	}
	if cfg.Examples {
		h += 56
	}
	if cfg.Causes {
		h += 44
	}
	if cfg.Entails {
		h += 44
	}
	if cfg.AlsoSee {
		h += 44
	}
	return h
}

// Rect ist ein achsenparalleles Rechteck im Canvas-Koordinatensystem.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// CenterX liefert die horizontale Mitte.
func (r Rect) CenterX() float64 { return r.X + r.W/2 }

// CenterY liefert die vertikale Mitte.
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// Bottom liefert die Unterkante.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// PlacedBox ist ein positioniertes Prädikat-Vorkommen. Die Inhalts-
// Felder machen das Layout-JSON für selbst zeichnende Hosts vollständig;
// Bindings füllt der Renderer nach, weil die Auflösung Eintrag und
// Katalog braucht.
type PlacedBox struct {
	Rect
	PredicateID uint      `json:"predicate_id"`
	Title       string    `json:"title"`
	Gloss       string    `json:"gloss,omitempty"`
	Example     string    `json:"example,omitempty"`
	Negated     bool      `json:"negated,omitempty"`
	Bindings    []Binding `json:"bindings,omitempty"`

	Occurrence Occurrence `json:"-"`
}

// PlacedGroup ist eine positionierte OccurrenceGroup samt Rahmen-Rect.
type PlacedGroup struct {
	Rect
	Kind        string      `json:"kind"`
	Structural  bool        `json:"structural"`
	Description string      `json:"description,omitempty"`
	Boxes       []PlacedBox `json:"boxes"`
}

// PlacedEdge ist eine gerichtete Relation mit geclippten Endpunkten und
// Label-Position.
type PlacedEdge struct {
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	X2     float64 `json:"x2"`
	Y2     float64 `json:"y2"`
	LabelX float64 `json:"label_x"`
	LabelY float64 `json:"label_y"`
	Label  string  `json:"label"`
}

// Layout ist das vollständige, deterministische Layout-Ergebnis.
type Layout struct {
	CurrentNode Rect          `json:"current_node"`
	Groups      []PlacedGroup `json:"groups"`
	Outer       *Rect         `json:"outer,omitempty"`
	OuterKind   string        `json:"outer_kind,omitempty"`
	OuterLabel  string        `json:"outer_label,omitempty"`
	Edges       []PlacedEdge  `json:"edges,omitempty"`
	Width       float64       `json:"width"`
	Height      float64       `json:"height"`
}

// HeadInfo steuert den zusätzlichen Platz zwischen Haupt-Knoten und
// erster Gruppen-Zeile (Pager, Vorbedingungs-Satz, Beispieltext).
type HeadInfo struct {
	Pager         bool
	Preconditions bool
	Example       bool
}

// Layouter positioniert Haupt-Knoten, Gruppen und Kanten. Alle Maße
// sind Konstanten der Instanz; gleiche Eingaben ergeben exakt gleiche
// Ausgaben, keine Zufälligkeit, keine Zeitabhängigkeit.
type Layouter struct {
	CanvasWidth      float64
	MaxRowWidth      float64
	TopMargin        float64
	BottomMargin     float64
	CurrentNodeWidth float64

	BaseOffset         float64
	PagerOffset        float64
	PreconditionOffset float64
	ExampleOffset      float64

	MinBoxWidth  float64
	MaxBoxWidth  float64
	PerCharWidth float64

	BoxBaseHeight    float64
	PerMappingHeight float64
	ExampleHeight    float64

	BoxGap       float64
	GroupGap     float64
	RowGap       float64
	GroupPadding float64
	OuterPadding float64
	EdgePadding  float64

	NodeHeight NodeHeightFunc
}

// NewLayouter erstellt einen Layouter mit den Standard-Maßen.
func NewLayouter() *Layouter {
	return &Layouter{
		CanvasWidth:      1100,
		MaxRowWidth:      980,
		TopMargin:        24,
		BottomMargin:     32,
		CurrentNodeWidth: 320,

		BaseOffset:         72,
		PagerOffset:        36,
		PreconditionOffset: 28,
		ExampleOffset:      22,

		MinBoxWidth:  160,
		MaxBoxWidth:  260,
		PerCharWidth: 9,

		BoxBaseHeight:    52,
		PerMappingHeight: 18,
		ExampleHeight:    20,

		BoxGap:       14,
		GroupGap:     28,
		RowGap:       40,
		GroupPadding: 16,
		OuterPadding: 26,
		EdgePadding:  6,
	}
}

// BoxWidth ist eine geklemmte lineare Funktion der Titel-Länge.
func (l *Layouter) BoxWidth(displayID string) float64 {
	w := float64(len(displayID)) * l.PerCharWidth
	return math.Min(l.MaxBoxWidth, math.Max(l.MinBoxWidth, w))
}

// BoxHeight wächst mit der Zahl der Role-Mappings und dem Beispieltext.
func (l *Layouter) BoxHeight(pred *models.PredicateNode) float64 {
	h := l.BoxBaseHeight + float64(len(pred.RoleMappings))*l.PerMappingHeight
	if pred.Example != "" {
		h += l.ExampleHeight
	}
	return h
}

// Layout platziert den Haupt-Knoten und alle Gruppen des Plans und
// berechnet die Relations-Kanten.
func (l *Layouter) Layout(plan RecipePlan, relations []models.Relation, expand ExpandConfig, head HeadInfo) Layout {
	heightFn := l.NodeHeight
	if heightFn == nil {
		heightFn = DefaultNodeHeight
	}

	out := Layout{Width: l.CanvasWidth}
	centerX := l.CanvasWidth / 2

	out.CurrentNode = Rect{
		X: centerX - l.CurrentNodeWidth/2,
		Y: l.TopMargin,
		W: l.CurrentNodeWidth,
		H: heightFn(expand),
	}

	// Gruppen-Maße vorab berechnen.
	groupW := make([]float64, len(plan.Groups))
	groupH := make([]float64, len(plan.Groups))
	for i, g := range plan.Groups {
		maxBoxW := 0.0
		sumH := 0.0
		for j, occ := range g.Occurrences {
			maxBoxW = math.Max(maxBoxW, l.BoxWidth(occ.Predicate.DisplayID()))
			sumH += l.BoxHeight(occ.Predicate)
			if j > 0 {
				sumH += l.BoxGap
			}
		}
		groupW[i] = maxBoxW + 2*l.GroupPadding
		groupH[i] = sumH + 2*l.GroupPadding
	}

	// Greedy First-Fit in Zeilen: Gruppe passt, solange die Zeile die
	// Maximalbreite nicht sprengt; eine überbreite Gruppe bekommt eine
	// eigene Zeile.
	var rows [][]int
	var row []int
	rowWidth := 0.0
	for i := range plan.Groups {
		w := groupW[i]
		if len(row) > 0 && rowWidth+l.GroupGap+w > l.MaxRowWidth {
			rows = append(rows, row)
			row = nil
			rowWidth = 0
		}
		if len(row) > 0 {
			rowWidth += l.GroupGap
		}
		row = append(row, i)
		rowWidth += w
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	y := out.CurrentNode.Bottom() + l.BaseOffset
	if head.Pager {
		y += l.PagerOffset
	}
	if head.Preconditions {
		y += l.PreconditionOffset
	}
	if head.Example {
		y += l.ExampleOffset
	}

	out.Groups = make([]PlacedGroup, len(plan.Groups))
	for _, rowIdx := range rows {
		totalW := 0.0
		maxH := 0.0
		for n, i := range rowIdx {
			if n > 0 {
				totalW += l.GroupGap
			}
			totalW += groupW[i]
			maxH = math.Max(maxH, groupH[i])
		}

		x := centerX - totalW/2
		for _, i := range rowIdx {
			g := plan.Groups[i]
			placed := PlacedGroup{
				Rect:        Rect{X: x, Y: y, W: groupW[i], H: groupH[i]},
				Kind:        g.Kind,
				Structural:  g.Structural,
				Description: g.Description,
			}
			boxY := y + l.GroupPadding
			innerW := groupW[i] - 2*l.GroupPadding
			for _, occ := range g.Occurrences {
				bw := l.BoxWidth(occ.Predicate.DisplayID())
				bh := l.BoxHeight(occ.Predicate)
				placed.Boxes = append(placed.Boxes, PlacedBox{
					Rect: Rect{
						X: x + l.GroupPadding + (innerW-bw)/2,
						Y: boxY,
						W: bw,
						H: bh,
					},
					PredicateID: occ.Predicate.ID,
					Title:       occ.Predicate.DisplayID(),
					Gloss:       occ.Predicate.Lexical.Gloss,
					Example:     occ.Predicate.Example,
					Negated:     occ.Negated,
					Occurrence:  occ,
				})
				boxY += bh + l.BoxGap
			}
			out.Groups[i] = placed
			x += groupW[i] + l.GroupGap
		}
		y += maxH + l.RowGap
	}

	if plan.Outer != nil && len(out.Groups) > 0 {
		outer := boundingRect(out.Groups)
		outer.X -= l.OuterPadding
		outer.Y -= l.OuterPadding
		outer.W += 2 * l.OuterPadding
		outer.H += 2 * l.OuterPadding
		out.Outer = &outer
		out.OuterKind = plan.Outer.Kind
		out.OuterLabel = plan.Outer.Label
	}

	out.Edges = l.placeEdges(out.Groups, relations)

	bottom := out.CurrentNode.Bottom()
	for _, g := range out.Groups {
		bottom = math.Max(bottom, g.Bottom())
	}
	if out.Outer != nil {
		bottom = math.Max(bottom, out.Outer.Bottom())
	}
	out.Height = bottom + l.BottomMargin
	return out
}

// placeEdges berechnet pro Relation die Verbindungslinie zwischen den
// Box-Mittelpunkten, geclippt auf die Box-Ränder plus Abstand, damit
// Linie und Pfeilspitze nie in eine Box hineinragen.
func (l *Layouter) placeEdges(groups []PlacedGroup, relations []models.Relation) []PlacedEdge {
	boxes := make(map[uint]Rect)
	for _, g := range groups {
		for _, b := range g.Boxes {
			boxes[b.Occurrence.Predicate.ID] = b.Rect
		}
	}

	var edges []PlacedEdge
	for _, rel := range relations {
		src, okS := boxes[rel.SourcePredicateID]
		tgt, okT := boxes[rel.TargetPredicateID]
		if !okS || !okT {
			continue
		}
		dx := tgt.CenterX() - src.CenterX()
		dy := tgt.CenterY() - src.CenterY()
		if dx == 0 && dy == 0 {
			continue
		}
		angle := math.Atan2(dy, dx)

		srcDist := rayToBorder(src, angle) + l.EdgePadding
		tgtDist := rayToBorder(tgt, angle+math.Pi) + l.EdgePadding

		x1 := src.CenterX() + math.Cos(angle)*srcDist
		y1 := src.CenterY() + math.Sin(angle)*srcDist
		x2 := tgt.CenterX() + math.Cos(angle+math.Pi)*tgtDist
		y2 := tgt.CenterY() + math.Sin(angle+math.Pi)*tgtDist

		// Label am Mittelpunkt, senkrecht zur Linie versetzt.
		midX := (x1 + x2) / 2
		midY := (y1 + y2) / 2
		const labelOffset = 10.0
		edges = append(edges, PlacedEdge{
			X1: x1, Y1: y1, X2: x2, Y2: y2,
			LabelX: midX - math.Sin(angle)*labelOffset,
			LabelY: midY + math.Cos(angle)*labelOffset,
			Label:  rel.RelationType,
		})
	}
	return edges
}

// rayToBorder: Abstand vom Rechteck-Mittelpunkt bis zum Rand entlang
// des Winkels.
func rayToBorder(r Rect, angle float64) float64 {
	cos := math.Abs(math.Cos(angle))
	sin := math.Abs(math.Sin(angle))
	dist := math.Inf(1)
	if cos > 1e-9 {
		dist = (r.W / 2) / cos
	}
	if sin > 1e-9 {
		dist = math.Min(dist, (r.H/2)/sin)
	}
	return dist
}

func boundingRect(groups []PlacedGroup) Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, g := range groups {
		minX = math.Min(minX, g.X)
		minY = math.Min(minY, g.Y)
		maxX = math.Max(maxX, g.X+g.W)
		maxY = math.Max(maxY, g.Y+g.H)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}
