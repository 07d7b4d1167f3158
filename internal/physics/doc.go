// Package physics implements the pipeline stages of the charged-particle
// simulation:
//
//   - [Coulomb]: pairwise inverse-square repulsion and potential energy
//   - [Box]: reflection off axis-aligned rectangular walls
//   - [EnergyNormalizer]: post-step velocity rescale holding total energy fixed
//
// All charges are positive, so every pair repels. Charge also serves as
// inertial mass.
package physics
