// Package effects spawns, advances and retires short-lived visual
// entities: launch bursts, smoke puffs, impact debris and overload sparks.
//
// All randomness comes from the *rand.Rand given to [New], so a seeded
// manager replays the same effects.
package effects
