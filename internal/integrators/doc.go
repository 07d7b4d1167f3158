// Package integrators advances particle velocities and positions by one
// fixed time step. Every integrator reuses a force buffer between steps, so
// an instance must not be shared between goroutines.
package integrators
