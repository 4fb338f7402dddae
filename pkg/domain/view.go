package domain

// FieldView is what the rendering surface receives for one field.
// Error is only populated once the field has been touched.
type FieldView struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Kind     FieldKind `json:"kind"`
	Value    string    `json:"value"`
	Error    string    `json:"error,omitempty"`
	Optional bool      `json:"optional,omitempty"`
	Touched  bool      `json:"touched,omitempty"`
}

// View is the presentation of the active step.
type View struct {
	SessionID   string      `json:"session_id,omitempty"`
	Wizard      string      `json:"wizard"`
	Step        int         `json:"step"`
	TotalSteps  int         `json:"total_steps"`
	Title       string      `json:"title,omitempty"`
	Fields      []FieldView `json:"fields"`
	SubmitLabel string      `json:"submit_label,omitempty"`
	CanGoBack   bool        `json:"can_go_back"`
	Submitting  bool        `json:"submitting"`
	Completed   bool        `json:"completed"`
}
