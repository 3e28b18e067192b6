package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

var ErrShortSignal = errors.New("analysis: signal too short")

// PowerSpectrum returns |X[k]| for the non-negative frequency bins of a
// mean-removed, Hann-windowed copy of data.
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n == 0 {
		return nil
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)

	windowed := make([]float64, n)
	for i, v := range data {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(max(n-1, 1))))
		windowed[i] = (v - mean) * w
	}

	spec := fft.FFTReal(windowed)
	ps := make([]float64, n/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

// DominantPeriod estimates the period of the strongest oscillation in
// samples taken every dt seconds. The peak bin is refined by parabolic
// interpolation over its neighbours.
func DominantPeriod(samples []float64, dt float64) (float64, error) {
	if len(samples) < 8 || dt <= 0 {
		return 0, ErrShortSignal
	}
	ps := PowerSpectrum(samples)
	k := 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > ps[k] || k == 0 {
			k = i
		}
	}
	if ps[k] == 0 {
		return 0, ErrShortSignal
	}

	bin := float64(k)
	if k > 1 && k < len(ps)-1 {
		a, b, c := ps[k-1], ps[k], ps[k+1]
		if d := a - 2*b + c; d != 0 {
			bin += 0.5 * (a - c) / d
		}
	}
	return float64(len(samples)) * dt / bin, nil
}
