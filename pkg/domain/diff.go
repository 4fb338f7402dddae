package domain

// StateDiff represents the changes between two states.
// It is serialized to JSON for partial updates on the client. Field values are
// never included: subscribers only learn about position, errors and touch state.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	Step       *int  `json:"step,omitempty"`
	Submitting *bool `json:"submitting,omitempty"`

	// FieldErrors contains only changed, added or cleared messages.
	// For cleared errors, the key is present with a nil value.
	FieldErrors map[string]*string `json:"field_errors,omitempty"`

	// Touched lists fields that became touched.
	Touched []string `json:"touched,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{
		SessionID: newState.SessionID,
	}

	if oldState == nil || oldState.Step != newState.Step {
		diff.Step = &newState.Step
	}
	if oldState == nil || oldState.Submitting != newState.Submitting {
		diff.Submitting = &newState.Submitting
	}

	diff.FieldErrors = diffErrors(oldState, newState)
	diff.Touched = diffTouched(oldState, newState)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffErrors(old *State, new *State) map[string]*string {
	delta := make(map[string]*string)

	for k, msg := range new.FieldErrors {
		if old != nil {
			if prev, ok := old.FieldErrors[k]; ok && prev == msg {
				continue
			}
		}
		m := msg
		delta[k] = &m
	}

	if old != nil {
		for k := range old.FieldErrors {
			if _, exists := new.FieldErrors[k]; !exists {
				delta[k] = nil
			}
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

func diffTouched(old *State, new *State) []string {
	var added []string
	for k, touched := range new.Touched {
		if !touched {
			continue
		}
		if old != nil && old.Touched[k] {
			continue
		}
		added = append(added, k)
	}
	return added
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.Step == nil &&
		d.Submitting == nil &&
		len(d.FieldErrors) == 0 &&
		len(d.Touched) == 0
}
