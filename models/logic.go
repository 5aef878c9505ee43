package models

// Knoten-Arten des Logik-Baums.
const (
	LogicLeaf = "leaf"
	LogicNot  = "not"
	LogicAnd  = "and"
	LogicOr   = "or"
)

// LogicNode ist ein Knoten des AND/OR/NOT/LEAF-Baums eines Recipes.
// Invarianten: jeder Pfad endet in einem Leaf; ein Not-Knoten hat genau
// ein Kind; die Negation eines Leafs ist die Parität seiner
// Not-Vorfahren.
type LogicNode struct {
	Kind string `json:"kind"`

	// Nur bei Leaf gesetzt.
	TargetPredicate *PredicateNode `json:"target_predicate,omitempty"`

	// Gruppen-Label bei And/Or, Anzeige-Text bei Leaf.
	Description string `json:"description,omitempty"`

	// Kinder bei Not (genau eines) sowie And/Or.
	Children []*LogicNode `json:"children,omitempty"`
}

// FindPredicate sucht ein Prädikat-Vorkommen im Teilbaum über seine ID.
func (n *LogicNode) FindPredicate(id uint) *PredicateNode {
	if n == nil {
		return nil
	}
	if n.TargetPredicate != nil && n.TargetPredicate.ID == id {
		return n.TargetPredicate
	}
	for _, child := range n.Children {
		if p := child.FindPredicate(id); p != nil {
			return p
		}
	}
	return nil
}
