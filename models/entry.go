package models

// GraphNode repräsentiert den aktuell betrachteten Lexikon-Eintrag.
// Read-only Snapshot aus der Lexikon-API; wird hier nie mutiert.
type GraphNode struct {
	ID       uint     `json:"id"`
	Lemma    string   `json:"lemma"`
	Gloss    string   `json:"gloss"`
	Lemmas   []string `json:"lemmas,omitempty"`
	Examples []string `json:"examples,omitempty"`
	Roles    []Role   `json:"roles"`

	// Nur für Nomen gesetzt.
	Concrete *bool `json:"concrete,omitempty"`

	Causes  []EntryRef `json:"causes,omitempty"`
	Entails []EntryRef `json:"entails,omitempty"`
	AlsoSee []EntryRef `json:"also_see,omitempty"`
}

// Role ist eine semantische Rolle im Frame eines Eintrags.
type Role struct {
	ID          uint   `json:"id"`
	Label       string `json:"label"`
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
}

// EntryRef ist ein leichter Verweis auf einen anderen Eintrag.
type EntryRef struct {
	ID    uint   `json:"id"`
	Lemma string `json:"lemma"`
	Gloss string `json:"gloss,omitempty"`
}
