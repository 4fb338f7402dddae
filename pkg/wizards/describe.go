package wizards

import "github.com/aretw0/onboarding/pkg/domain"

// Description is the serializable form of a wizard, used by `onboard steps`.
type Description struct {
	Kind  string            `json:"kind" yaml:"kind"`
	Steps []StepDescription `json:"steps" yaml:"steps"`
}

// StepDescription documents one step without its handler.
type StepDescription struct {
	Position    int                        `json:"position" yaml:"position"`
	Name        string                     `json:"name" yaml:"name"`
	Title       string                     `json:"title,omitempty" yaml:"title,omitempty"`
	Fields      []domain.Field             `json:"fields" yaml:"fields"`
	Required    []string                   `json:"required,omitempty" yaml:"required,omitempty"`
	Rules       map[string]RuleDescription `json:"rules,omitempty" yaml:"rules,omitempty"`
	Verified    bool                       `json:"verified" yaml:"verified"`
	SubmitLabel string                     `json:"submit_label" yaml:"submit_label"`
}

// RuleDescription lists the messages a field can produce.
type RuleDescription struct {
	Required string `json:"required,omitempty" yaml:"required,omitempty"`
	Pattern  string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Cross    string `json:"cross,omitempty" yaml:"cross,omitempty"`
}

// Describe converts steps into their serializable description.
// Verified is true when the step gates advancement on a gateway call.
func Describe(kind string, steps []domain.Step) Description {
	d := Description{Kind: kind, Steps: make([]StepDescription, 0, len(steps))}
	for i, s := range steps {
		sd := StepDescription{
			Position:    i + 1,
			Name:        s.Name,
			Title:       s.Title,
			Fields:      s.Fields,
			Required:    s.Required,
			Verified:    s.Handler != nil,
			SubmitLabel: s.SubmitLabel,
		}
		if len(s.Rules) > 0 {
			sd.Rules = make(map[string]RuleDescription, len(s.Rules))
			for name, r := range s.Rules {
				var rd RuleDescription
				if r.Required {
					rd.Required = r.RequiredMessage
					if rd.Required == "" {
						rd.Required = name + " is required"
					}
				}
				if r.Pattern != nil {
					rd.Pattern = r.PatternMessage
				}
				if r.Cross != nil {
					rd.Cross = r.CrossMessage
				}
				sd.Rules[name] = rd
			}
		}
		d.Steps = append(d.Steps, sd)
	}
	return d
}
