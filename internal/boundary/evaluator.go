package boundary

// ResultKind names the quantity a completion event measured.
type ResultKind string

const (
	ResultRange   ResultKind = "range"
	ResultHeight  ResultKind = "max-height"
	ResultCurrent ResultKind = "current"
	ResultPower   ResultKind = "power"
	ResultPeriod  ResultKind = "period"
)

// Outcome is the evaluator's verdict on one reported value.
type Outcome struct {
	Active   bool
	Success  bool
	Score    int
	Measured float64
	Elapsed  float64
	Reason   string
}

// Evaluator turns measured values into pass/fail and a score. The core
// reports and never reinterprets the answer.
type Evaluator interface {
	ReportResult(value float64, kind ResultKind) Outcome
}

type NopEvaluator struct{}

func (NopEvaluator) ReportResult(value float64, _ ResultKind) Outcome {
	return Outcome{Measured: value}
}

// Reporter forwards at most one value per completion event. Arm opens an
// event, the first Report closes it.
type Reporter struct {
	eval    Evaluator
	armed   bool
	last    Outcome
	reports int
}

func NewReporter(eval Evaluator) *Reporter {
	if eval == nil {
		eval = NopEvaluator{}
	}
	return &Reporter{eval: eval}
}

func (r *Reporter) Arm() { r.armed = true }

func (r *Reporter) Disarm() { r.armed = false }

func (r *Reporter) Armed() bool { return r.armed }

// Report sends value if an event is open. The bool reports whether it was
// sent.
func (r *Reporter) Report(value float64, kind ResultKind) (Outcome, bool) {
	if !r.armed {
		return r.last, false
	}
	r.armed = false
	r.last = r.eval.ReportResult(value, kind)
	r.reports++
	return r.last, true
}

// Fire is Arm followed by Report, for events that complete the instant
// they start (a toggle).
func (r *Reporter) Fire(value float64, kind ResultKind) Outcome {
	r.Arm()
	out, _ := r.Report(value, kind)
	return out
}

func (r *Reporter) Last() Outcome { return r.last }

func (r *Reporter) Reports() int { return r.reports }
