// Package trail records bounded position histories for path and
// phase-portrait displays.
package trail
