// Package export renders recorded trails and canvas snapshots as SVG.
package export
