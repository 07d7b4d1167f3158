// Package dynamo provides the core types for the charged-particle simulation.
//
//   - [Vec2]: immutable 2D vector
//   - [Particle]: charged body; charge doubles as inertial mass
//   - [ForceField], [Integrator], [Boundary], [Normalizer]: the per-tick pipeline stages
//   - [Simulator]: runs the pipeline; [Simulator.Advance] is one step
//   - [World]: stateful arena with Step and TotalEnergy for tick loops and renderers
//
// # Example
//
//	field := physics.NewCoulomb(25000)
//	sim := dynamo.New(field, integrators.NewSymplecticEuler(),
//	    dynamo.WithBoundary(physics.NewBox(800, 600, 10)),
//	    dynamo.WithNormalizer(physics.NewNormalizer()))
//	world, _ := dynamo.NewWorld(sim, particles, 0.1)
//	world.Step()
//
// # Thread Safety
//
// Simulator and World are NOT thread-safe. For parallel runs use [Ensemble],
// which gives every member its own simulator and particles.
package dynamo
