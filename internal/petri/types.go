package petri

// State is a place of the net, one component of the dynamical system.
type State struct {
	ID          string
	Name        string
	Description string
}

// Transition contributes one rate term to the derivative of every state in
// its Output list. Input and Output are multisets: a repeated id counts once
// per occurrence.
type Transition struct {
	ID     string
	Input  []string
	Output []string
	Name   string
}

// Distribution tags a parameter with an uncertainty family and its named
// numeric parameters, e.g. StandardUniform1 with minimum/maximum.
type Distribution struct {
	Type       string
	Parameters map[string]float64
}

// Parameter is a named constant of the model. Value is the point estimate;
// a non-nil Distribution marks the parameter as uncertain.
type Parameter struct {
	ID           string
	Value        float64
	Distribution *Distribution
}

// TimeSpec names the independent variable and its unit label. Units are
// free text and never dimensionally checked.
type TimeSpec struct {
	ID    string
	Units string
}

// Model is the validated in-memory form of an exchange document. It is
// immutable after Load; everything derived from it (compiled systems,
// trajectories) is built without mutating it, so a Model may be shared
// across concurrent runs.
type Model struct {
	Name        string
	Description string
	States      []State
	Transitions []Transition
	Rates       map[string]string // transition id -> rate expression
	Initials    map[string]string // state id -> initial expression
	Parameters  []Parameter
	Time        TimeSpec

	stateIndex map[string]int
}

// StateIndex maps a state id to its slot in the declared state order.
func (m *Model) StateIndex(id string) (int, bool) {
	i, ok := m.stateIndex[id]
	return i, ok
}

// StateIDs returns the state ids in declared order.
func (m *Model) StateIDs() []string {
	ids := make([]string, len(m.States))
	for i, s := range m.States {
		ids[i] = s.ID
	}
	return ids
}

// Uncertain returns the parameters carrying a distribution, in declared order.
func (m *Model) Uncertain() []Parameter {
	var out []Parameter
	for _, p := range m.Parameters {
		if p.Distribution != nil {
			out = append(out, p)
		}
	}
	return out
}
