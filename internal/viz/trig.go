package viz

import "math"

// trigTable holds precomputed sin/cos over one turn. Circle outlines are
// redrawn every frame for every particle, so the lookups add up.
type trigTable struct {
	sin []float64
	cos []float64
	n   int
}

var circleTable = newTrigTable(1024)

func newTrigTable(n int) *trigTable {
	t := &trigTable{
		sin: make([]float64, n),
		cos: make([]float64, n),
		n:   n,
	}
	for i := 0; i < n; i++ {
		angle := float64(i) * 2 * math.Pi / float64(n)
		t.sin[i] = math.Sin(angle)
		t.cos[i] = math.Cos(angle)
	}
	return t
}

// at returns sin and cos of the k-th of steps evenly spaced angles,
// snapped to the nearest table entry.
func (t *trigTable) at(k, steps int) (sin, cos float64) {
	i := (k * t.n / steps) % t.n
	return t.sin[i], t.cos[i]
}
