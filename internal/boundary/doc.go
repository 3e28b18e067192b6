// Package boundary holds the narrow interfaces between the simulation core
// and everything outside it: the control surface that sends parameter
// changes in, the data sink that receives labels, the challenge evaluator
// that receives measured results and the tone renderer.
package boundary
