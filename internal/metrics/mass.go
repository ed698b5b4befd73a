// Package metrics provides per-step trajectory metrics. For flux-balanced
// rate nets the total of the state vector is conserved, so mass drift is
// the natural integration-quality check.
package metrics

import (
	"math"

	"github.com/san-kum/ratenet/internal/dynamo"
)

// Mass reports the mean total of the state vector over the run.
type Mass struct {
	samples int
	total   float64
}

func NewMass() *Mass { return &Mass{} }

func (m *Mass) Name() string { return "mass" }

func (m *Mass) Observe(x dynamo.State, t float64) {
	sum := 0.0
	for _, v := range x {
		sum += v
	}
	m.total += sum
	m.samples++
}

func (m *Mass) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *Mass) Reset() {
	m.samples = 0
	m.total = 0
}

// MassDrift reports the largest relative deviation of total mass from its
// value at the first observed step.
type MassDrift struct {
	samples  int
	initial  float64
	maxDrift float64
}

func NewMassDrift() *MassDrift { return &MassDrift{} }

func (m *MassDrift) Name() string { return "mass_drift" }

func (m *MassDrift) Observe(x dynamo.State, t float64) {
	sum := 0.0
	for _, v := range x {
		sum += v
	}
	if m.samples == 0 {
		m.initial = sum
	}
	m.samples++
	if m.initial != 0 {
		drift := math.Abs(sum-m.initial) / math.Abs(m.initial)
		m.maxDrift = math.Max(m.maxDrift, drift)
	}
}

func (m *MassDrift) Value() float64 { return m.maxDrift }

func (m *MassDrift) Reset() {
	m.samples = 0
	m.initial = 0
	m.maxDrift = 0
}
