// Package sample draws concrete values for uncertain model parameters.
//
// A Sampler owns its random source; callers seed one per simulation run so
// parallel runs stay reproducible and uncorrelated. A parameter is sampled
// once per run and held fixed across integration steps.
package sample

import (
	"math/rand"

	"github.com/san-kum/ratenet/internal/petri"
)

// Distribution families understood by the sampler.
const (
	StandardUniform1 = "StandardUniform1"
)

// UnsupportedError reports a distribution family the sampler cannot draw
// from. Callers may degrade to the parameter's default value instead.
type UnsupportedError struct {
	Family string
}

func (e *UnsupportedError) Error() string {
	return "unsupported distribution family: " + e.Family
}

type Sampler struct {
	rng *rand.Rand
}

func New(seed int64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewSource(seed))}
}

// Sample draws one value from d. It never mutates d.
func (s *Sampler) Sample(d *petri.Distribution) (float64, error) {
	switch d.Type {
	case StandardUniform1:
		lo := d.Parameters["minimum"]
		hi := d.Parameters["maximum"]
		return lo + s.rng.Float64()*(hi-lo), nil
	}
	return 0, &UnsupportedError{Family: d.Type}
}

// Resolve builds the parameter environment for one run: uncertain
// parameters are drawn once, the rest keep their default value. The second
// map records only the drawn values, for run metadata. With fallback set,
// an unsupported family degrades to the default value instead of failing.
func (s *Sampler) Resolve(params []petri.Parameter, fallback bool) (map[string]float64, map[string]float64, error) {
	env := make(map[string]float64, len(params))
	drawn := make(map[string]float64)
	for _, p := range params {
		if p.Distribution == nil {
			env[p.ID] = p.Value
			continue
		}
		v, err := s.Sample(p.Distribution)
		if err != nil {
			if !fallback {
				return nil, nil, err
			}
			env[p.ID] = p.Value
			continue
		}
		env[p.ID] = v
		drawn[p.ID] = v
	}
	return env, drawn, nil
}

// Defaults builds the parameter environment from point estimates only,
// ignoring distributions. Used for non-sampling runs.
func Defaults(params []petri.Parameter) map[string]float64 {
	env := make(map[string]float64, len(params))
	for _, p := range params {
		env[p.ID] = p.Value
	}
	return env
}
