package automation

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"
)

// ParameterSweep runs one scenario per value of Param across [Min, Max].
type ParameterSweep struct {
	Base    Scenario
	Param   string
	Min     float64
	Max     float64
	Steps   int
	Workers int
}

type SweepResult struct {
	Value  float64
	Result *Result
}

// Values lists the swept values, endpoints included.
func (s *ParameterSweep) Values() []float64 {
	n := s.Steps
	if n < 2 {
		n = 2
	}
	out := make([]float64, n)
	stride := (s.Max - s.Min) / float64(n-1)
	for i := range out {
		out[i] = s.Min + float64(i)*stride
	}
	return out
}

// RunSweep runs the points concurrently. Every point gets its own
// scheduler and experiment, so results match a sequential run exactly.
func (r *Runner) RunSweep(ctx context.Context, sw *ParameterSweep) ([]SweepResult, error) {
	if sw.Param == "" {
		return nil, fmt.Errorf("sweep: parameter is required")
	}
	values := sw.Values()
	results := make([]SweepResult, len(values))
	errs := make([]error, len(values))

	workers := sw.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(values))

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				sc := sw.Base
				sc.Params = make(map[string]float64, len(sw.Base.Params)+1)
				for k, v := range sw.Base.Params {
					sc.Params[k] = v
				}
				sc.Params[sw.Param] = values[idx]
				sc.Steps = append([]Step(nil), sw.Base.Steps...)

				res, err := r.Run(ctx, &sc)
				results[idx] = SweepResult{Value: values[idx], Result: res}
				errs[idx] = err
			}
		}()
	}

	for i := range values {
		select {
		case jobs <- i:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("sweep %s=%g: %w", sw.Param, values[i], err)
		}
	}
	return results, nil
}

// Column pulls one measured value out of every point; missing values are NaN.
func Column(results []SweepResult, id string) []float64 {
	out := make([]float64, len(results))
	for i, r := range results {
		v, ok := r.Result.Measured[id]
		if !ok {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}
