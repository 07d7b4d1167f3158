package metrics

import (
	"github.com/san-kum/chargesim/internal/dynamo"
	"github.com/san-kum/chargesim/internal/physics"
	"gonum.org/v1/gonum/floats"
)

// Bounces counts wall reflections over a run.
type Bounces struct {
	name  string
	total int
}

func NewBounces() *Bounces {
	return &Bounces{name: "bounces"}
}

func (b *Bounces) Name() string { return b.name }

func (b *Bounces) Observe(ps []dynamo.Particle, r dynamo.StepReport) {
	b.total += r.Bounces
}

func (b *Bounces) Value() float64 { return float64(b.total) }
func (b *Bounces) Reset()         { b.total = 0 }

// Momentum is the magnitude of total momentum at the last observed step.
// Walls are the only external force, so it changes only on reflection.
type Momentum struct {
	name string
	last float64
}

func NewMomentum() *Momentum {
	return &Momentum{name: "momentum"}
}

func (m *Momentum) Name() string { return m.name }

func (m *Momentum) Observe(ps []dynamo.Particle, r dynamo.StepReport) {
	m.last = dynamo.TotalMomentum(ps).Magnitude()
}

func (m *Momentum) Value() float64 { return m.last }
func (m *Momentum) Reset()         { m.last = 0 }

// AngularMomentum is the mean absolute angular momentum about the origin.
type AngularMomentum struct {
	name    string
	field   *physics.Coulomb
	samples []float64
}

func NewAngularMomentum(field *physics.Coulomb) *AngularMomentum {
	return &AngularMomentum{name: "angular_momentum", field: field}
}

func (a *AngularMomentum) Name() string { return a.name }

func (a *AngularMomentum) Observe(ps []dynamo.Particle, r dynamo.StepReport) {
	L := a.field.AngularMomentum(ps)
	if L < 0 {
		L = -L
	}
	a.samples = append(a.samples, L)
}

func (a *AngularMomentum) Value() float64 {
	if len(a.samples) == 0 {
		return 0
	}
	return floats.Sum(a.samples) / float64(len(a.samples))
}

func (a *AngularMomentum) Reset() { a.samples = a.samples[:0] }

// Containment is the fraction of steps on which every particle lies fully
// inside the box. Below 1 means some particle is wider than the box.
type Containment struct {
	name       string
	box        *physics.Box
	violations int
	samples    int
}

func NewContainment(box *physics.Box) *Containment {
	return &Containment{name: "containment", box: box}
}

func (c *Containment) Name() string { return c.name }

func (c *Containment) Observe(ps []dynamo.Particle, r dynamo.StepReport) {
	c.samples++
	for _, p := range ps {
		if !c.box.Contains(p) {
			c.violations++
			break
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}
