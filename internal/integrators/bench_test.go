package integrators

import (
	"testing"

	"github.com/san-kum/chargesim/internal/dynamo"
	"github.com/san-kum/chargesim/internal/physics"
)

func benchParticles(n int) []dynamo.Particle {
	ps := make([]dynamo.Particle, n)
	for i := range ps {
		ps[i] = dynamo.Particle{
			Charge:   10 + float64(i%20),
			Position: dynamo.Vec2{X: float64(i%10) * 50, Y: float64(i/10) * 50},
			Velocity: dynamo.Vec2{X: 0.5, Y: -0.25},
		}
	}
	return ps
}

func benchmarkIntegrator(b *testing.B, integ dynamo.Integrator, n int) {
	field := physics.NewCoulomb(physics.DefaultForceConstant)
	ps := benchParticles(n)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		integ.Step(field, ps, 0.001)
	}
}

func BenchmarkSymplecticEuler10(b *testing.B)  { benchmarkIntegrator(b, NewSymplecticEuler(), 10) }
func BenchmarkSymplecticEuler100(b *testing.B) { benchmarkIntegrator(b, NewSymplecticEuler(), 100) }
func BenchmarkEuler10(b *testing.B)            { benchmarkIntegrator(b, NewEuler(), 10) }
func BenchmarkLeapfrog10(b *testing.B)         { benchmarkIntegrator(b, NewLeapfrog(), 10) }
func BenchmarkLeapfrog100(b *testing.B)        { benchmarkIntegrator(b, NewLeapfrog(), 100) }

func BenchmarkForces(b *testing.B) {
	field := physics.NewCoulomb(physics.DefaultForceConstant)
	ps := benchParticles(50)
	out := make([]dynamo.Vec2, len(ps))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		out = field.Forces(ps, out)
	}
}
