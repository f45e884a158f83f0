package arrange

// Appointment is the domain object assembled across the flow's steps. Fields
// carrying a form tag are owned by exactly one step; the rest are derived by
// the init and per-step hooks.
type Appointment struct {
	Type             string `form:"type" json:"type,omitempty"`
	TypeDescription  string `json:"typeDescription,omitempty"`
	RequiresLocation bool   `json:"requiresLocation,omitempty"`

	// Unavailable routes the flow to the unavailable step when the case's
	// countable-appointment quota is already spent.
	Unavailable bool `json:"unavailable,omitempty"`

	Location            string `form:"location" json:"location,omitempty"`
	LocationDescription string `json:"locationDescription,omitempty"`

	Date  string `form:"date" json:"date,omitempty"`
	Start string `form:"start" json:"start,omitempty"`
	End   string `form:"end" json:"end,omitempty"`

	OffenderName string `json:"offenderName,omitempty"`

	// Reference is set once the booking has been created.
	Reference string `json:"reference,omitempty"`
}
