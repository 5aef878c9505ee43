package models

// RoleType ist ein Eintrag des generischen Rollentyp-Katalogs. Liefert
// die Fallback-Beschreibung, wenn weder Prädikat-Frame noch aktueller
// Eintrag eine Rolle beschreiben.
type RoleType struct {
	Label              string `json:"label"`
	Code               string `json:"code,omitempty"`
	GenericDescription string `json:"generic_description"`
}
