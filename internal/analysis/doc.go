// Package analysis provides post-run analysis of particle trajectories.
//
//   - [PowerSpectrum] and [DominantFrequency]: spectral content of an energy series
//   - [Divergence]: trajectory separation rate under a small perturbation
//   - [NewPhasePortrait]: one particle's trajectory in a chosen phase plane
//
// # Sensitivity
//
// A positive divergence rate means nearby starting states separate
// exponentially, the usual signature of chaotic motion:
//
//	lambda := analysis.Divergence(sim, particles, 0, dt, 200, 1e-6)
//	if lambda > 0 {
//	    // trajectories separate
//	}
package analysis
