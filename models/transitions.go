package models

// Transitions lists, for each state, the states it may move to next.
// A transition absent from the table is rejected.
type Transitions map[string][]string

// Allows reports whether moving from one state to another is a listed edge.
func (t Transitions) Allows(from, to string) bool {
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Has reports whether the state appears in the table at all, as a source or a target.
func (t Transitions) Has(state string) bool {
	if _, ok := t[state]; ok {
		return true
	}
	for _, targets := range t {
		for _, s := range targets {
			if s == state {
				return true
			}
		}
	}
	return false
}
