package record

// Outcome accumulates the answers across the flow's steps. Fields with a
// form tag are merged from submissions; the rest are derived server-side.
type Outcome struct {
	Attended string `json:"attended,omitempty" form:"attended"`
	Complied string `json:"complied,omitempty" form:"complied"`
	Notes    string `json:"notes,omitempty" form:"notes"`

	OffenderName string `json:"offenderName,omitempty"`
	Reference    string `json:"reference,omitempty"`
}
