// Package analysis provides offline tools for inspecting recorded runs.
//
//   - [DominantPeriod]: spectral period estimate from a sampled signal
//   - [Sweep]: measured pendulum period across a parameter range
//   - [GeneratePhasePortrait]: (theta, omega) trajectory of a System
//   - [PortraitFromTrail]: phase portrait from a recorded trail
//
// # Period Cross-Check
//
// The pendulum measures its period from zero crossings. The spectrum of the
// same angle history gives an independent estimate:
//
//	p, err := analysis.DominantPeriod(angles, dt)
package analysis
