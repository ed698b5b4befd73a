// Package ode assembles a loaded petri model into a dynamo.System.
//
// The exchange format folds flux signs into the rate expressions: a
// transition's output list only names the derivative slots it feeds, and a
// negative contribution is written as a literal -1* factor in the
// expression. Compile therefore adds rate(t) once per output occurrence
// and never subtracts for inputs. Re-deriving classical consume/produce
// stoichiometry from the input/output lists would double-count or invert
// signs, so the input lists carry no dynamical meaning here.
package ode

import (
	"fmt"
	"math"

	"github.com/san-kum/ratenet/internal/dynamo"
	"github.com/san-kum/ratenet/internal/expr"
	"github.com/san-kum/ratenet/internal/petri"
)

// flux is one compiled transition: a rate expression and the derivative
// slots it feeds, with multiplicity.
type flux struct {
	id    string
	rate  *expr.Expr
	slots []slot
}

type slot struct {
	index int
	count float64
}

// System is the assembled ODE right-hand side for one parameter
// environment. It is immutable after Compile and safe for concurrent use.
type System struct {
	stateIDs []string
	params   map[string]float64
	timeSym  string
	fluxes   []flux
	initials []*expr.Expr
}

// Compile parses every rate and initial expression of m, resolves their
// symbols against the model and the given parameter environment, and
// returns the derivative system. params usually comes from
// sample.Defaults or a Sampler.Resolve for this run.
func Compile(m *petri.Model, params map[string]float64) (*System, error) {
	sys := &System{
		stateIDs: m.StateIDs(),
		params:   params,
		timeSym:  m.Time.ID,
		fluxes:   make([]flux, 0, len(m.Transitions)),
		initials: make([]*expr.Expr, len(m.States)),
	}

	for _, t := range m.Transitions {
		e, err := expr.Compile(m.Rates[t.ID])
		if err != nil {
			return nil, fmt.Errorf("rate for transition %s: %w", t.ID, err)
		}
		for _, sym := range e.Vars() {
			if sym == sys.timeSym {
				continue
			}
			if _, ok := m.StateIndex(sym); ok {
				continue
			}
			if _, ok := params[sym]; ok {
				continue
			}
			return nil, fmt.Errorf("rate for transition %s: symbol %s is neither state, parameter, nor time", t.ID, sym)
		}

		// Output is a multiset: a repeated state receives the rate once
		// per occurrence.
		counts := make(map[int]float64)
		order := make([]int, 0, len(t.Output))
		for _, id := range t.Output {
			idx, _ := m.StateIndex(id)
			if _, seen := counts[idx]; !seen {
				order = append(order, idx)
			}
			counts[idx]++
		}
		f := flux{id: t.ID, rate: e}
		for _, idx := range order {
			f.slots = append(f.slots, slot{index: idx, count: counts[idx]})
		}
		sys.fluxes = append(sys.fluxes, f)
	}

	for i, s := range m.States {
		e, err := expr.Compile(m.Initials[s.ID])
		if err != nil {
			return nil, fmt.Errorf("initial for state %s: %w", s.ID, err)
		}
		// Initials may depend on parameters only; they are evaluated once,
		// before any state value exists.
		for _, sym := range e.Vars() {
			if _, ok := params[sym]; !ok {
				return nil, fmt.Errorf("initial for state %s: symbol %s is not a parameter", s.ID, sym)
			}
		}
		sys.initials[i] = e
	}

	return sys, nil
}

func (s *System) StateDim() int { return len(s.stateIDs) }

// StateIDs returns the declared state order of the trajectory vectors.
func (s *System) StateIDs() []string { return s.stateIDs }

// Params returns the parameter environment the system was compiled with.
func (s *System) Params() map[string]float64 { return s.params }

// Derive evaluates every rate expression exactly once and accumulates the
// results into the derivative slots. A runtime evaluation failure (the
// grammar only admits division by zero) poisons the vector with NaN so the
// simulator's validity check aborts the run.
func (s *System) Derive(x dynamo.State, t float64) dynamo.State {
	env := s.env(x, t)
	dx := make(dynamo.State, len(s.stateIDs))
	for _, f := range s.fluxes {
		v, err := f.rate.Eval(env)
		if err != nil {
			v = math.NaN()
		}
		for _, sl := range f.slots {
			dx[sl.index] += sl.count * v
		}
	}
	return dx
}

// Rates evaluates every transition's rate at (x, t), for diagnostics. The
// first evaluation failure is returned with its transition id.
func (s *System) Rates(x dynamo.State, t float64) (map[string]float64, error) {
	env := s.env(x, t)
	out := make(map[string]float64, len(s.fluxes))
	for _, f := range s.fluxes {
		v, err := f.rate.Eval(env)
		if err != nil {
			return nil, fmt.Errorf("rate for transition %s: %w", f.id, err)
		}
		out[f.id] = v
	}
	return out, nil
}

// InitialState evaluates the initial expressions against the parameter
// environment.
func (s *System) InitialState() (dynamo.State, error) {
	env := make(expr.Env, len(s.params))
	for k, v := range s.params {
		env[k] = v
	}
	x0 := make(dynamo.State, len(s.initials))
	for i, e := range s.initials {
		v, err := e.Eval(env)
		if err != nil {
			return nil, fmt.Errorf("initial for state %s: %w", s.stateIDs[i], err)
		}
		x0[i] = v
	}
	return x0, nil
}

func (s *System) env(x dynamo.State, t float64) expr.Env {
	env := make(expr.Env, len(s.stateIDs)+len(s.params)+1)
	for i, id := range s.stateIDs {
		env[id] = x[i]
	}
	for k, v := range s.params {
		env[k] = v
	}
	env[s.timeSym] = t
	return env
}
