// Package challenge is a reference challenge evaluator: it turns measured
// values reported by experiments into pass/fail and a score made of an
// accuracy part and a speed bonus of up to 30 points.
package challenge
