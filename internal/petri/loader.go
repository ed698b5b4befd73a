package petri

import (
	"encoding/json"
	"fmt"
)

// ValidationError reports the first structural invariant a document
// violates: duplicate id, dangling reference, or a missing rate/initial.
type ValidationError struct {
	ID  string
	Msg string
}

func (e *ValidationError) Error() string {
	if e.ID == "" {
		return "model validation: " + e.Msg
	}
	return fmt.Sprintf("model validation: %s: %s", e.ID, e.Msg)
}

// Document shapes, matching the exchange schema. Expressions stay
// uninterpreted strings here; the ODE assembler parses them.
type document struct {
	Name        string `json:"name"`
	Schema      string `json:"schema"`
	Description string `json:"description"`
	Model       struct {
		States      []stateDoc      `json:"states"`
		Transitions []transitionDoc `json:"transitions"`
	} `json:"model"`
	Semantics struct {
		ODE struct {
			Rates      []targetDoc    `json:"rates"`
			Initials   []targetDoc    `json:"initials"`
			Parameters []parameterDoc `json:"parameters"`
			Time       timeDoc        `json:"time"`
		} `json:"ode"`
	} `json:"semantics"`
}

type stateDoc struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type transitionDoc struct {
	ID         string   `json:"id"`
	Input      []string `json:"input"`
	Output     []string `json:"output"`
	Properties struct {
		Name string `json:"name"`
	} `json:"properties"`
}

type targetDoc struct {
	Target     string `json:"target"`
	Expression string `json:"expression"`
}

type parameterDoc struct {
	ID           string   `json:"id"`
	Value        float64  `json:"value"`
	Distribution *distDoc `json:"distribution"`
}

type distDoc struct {
	Type       string             `json:"type"`
	Parameters map[string]float64 `json:"parameters"`
}

type timeDoc struct {
	ID    string `json:"id"`
	Units struct {
		Expression string `json:"expression"`
	} `json:"units"`
}

// Load deserializes and validates an exchange document. It performs no I/O
// and no expression parsing, only structural checks; the returned Model is
// complete and immutable.
func Load(data []byte) (*Model, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ValidationError{Msg: "malformed document: " + err.Error()}
	}

	if len(doc.Model.States) == 0 {
		return nil, &ValidationError{Msg: "document declares no states"}
	}

	m := &Model{
		Name:        doc.Name,
		Description: doc.Description,
		Rates:       make(map[string]string, len(doc.Semantics.ODE.Rates)),
		Initials:    make(map[string]string, len(doc.Semantics.ODE.Initials)),
		Time: TimeSpec{
			ID:    doc.Semantics.ODE.Time.ID,
			Units: doc.Semantics.ODE.Time.Units.Expression,
		},
		stateIndex: make(map[string]int, len(doc.Model.States)),
	}
	if m.Time.ID == "" {
		m.Time.ID = "t"
	}

	for i, s := range doc.Model.States {
		if s.ID == "" {
			return nil, &ValidationError{Msg: fmt.Sprintf("state %d has no id", i)}
		}
		if _, dup := m.stateIndex[s.ID]; dup {
			return nil, &ValidationError{ID: s.ID, Msg: "duplicate state id"}
		}
		m.stateIndex[s.ID] = i
		m.States = append(m.States, State{ID: s.ID, Name: s.Name, Description: s.Description})
	}

	transitions := make(map[string]struct{}, len(doc.Model.Transitions))
	for _, t := range doc.Model.Transitions {
		if t.ID == "" {
			return nil, &ValidationError{Msg: "transition has no id"}
		}
		if _, dup := transitions[t.ID]; dup {
			return nil, &ValidationError{ID: t.ID, Msg: "duplicate transition id"}
		}
		transitions[t.ID] = struct{}{}
		for _, ref := range t.Input {
			if _, ok := m.stateIndex[ref]; !ok {
				return nil, &ValidationError{ID: t.ID, Msg: "input references undeclared state " + ref}
			}
		}
		for _, ref := range t.Output {
			if _, ok := m.stateIndex[ref]; !ok {
				return nil, &ValidationError{ID: t.ID, Msg: "output references undeclared state " + ref}
			}
		}
		m.Transitions = append(m.Transitions, Transition{
			ID:     t.ID,
			Input:  append([]string(nil), t.Input...),
			Output: append([]string(nil), t.Output...),
			Name:   t.Properties.Name,
		})
	}

	for _, r := range doc.Semantics.ODE.Rates {
		if _, ok := transitions[r.Target]; !ok {
			return nil, &ValidationError{ID: r.Target, Msg: "rate targets undeclared transition"}
		}
		if _, dup := m.Rates[r.Target]; dup {
			return nil, &ValidationError{ID: r.Target, Msg: "duplicate rate for transition"}
		}
		m.Rates[r.Target] = r.Expression
	}
	for _, t := range m.Transitions {
		if _, ok := m.Rates[t.ID]; !ok {
			return nil, &ValidationError{ID: t.ID, Msg: "transition has no rate expression"}
		}
	}

	for _, ini := range doc.Semantics.ODE.Initials {
		if _, ok := m.stateIndex[ini.Target]; !ok {
			return nil, &ValidationError{ID: ini.Target, Msg: "initial targets undeclared state"}
		}
		if _, dup := m.Initials[ini.Target]; dup {
			return nil, &ValidationError{ID: ini.Target, Msg: "duplicate initial for state"}
		}
		m.Initials[ini.Target] = ini.Expression
	}
	for _, s := range m.States {
		if _, ok := m.Initials[s.ID]; !ok {
			return nil, &ValidationError{ID: s.ID, Msg: "state has no initial expression"}
		}
	}

	params := make(map[string]struct{}, len(doc.Semantics.ODE.Parameters))
	for _, p := range doc.Semantics.ODE.Parameters {
		if p.ID == "" {
			return nil, &ValidationError{Msg: "parameter has no id"}
		}
		if _, dup := params[p.ID]; dup {
			return nil, &ValidationError{ID: p.ID, Msg: "duplicate parameter id"}
		}
		if _, clash := m.stateIndex[p.ID]; clash {
			return nil, &ValidationError{ID: p.ID, Msg: "parameter id collides with state id"}
		}
		params[p.ID] = struct{}{}
		param := Parameter{ID: p.ID, Value: p.Value}
		if p.Distribution != nil {
			// Unknown families are a soft condition here; the sampler
			// rejects them when a draw is actually requested.
			param.Distribution = &Distribution{
				Type:       p.Distribution.Type,
				Parameters: p.Distribution.Parameters,
			}
		}
		m.Parameters = append(m.Parameters, param)
	}

	return m, nil
}
