package boundary

import (
	"sort"
	"strconv"
)

// DataSink receives formatted quantities under stable ids ("range",
// "current", "period", ...).
type DataSink interface {
	UpdateValue(id, value, unit string)
}

// Labels sits between an experiment and its sink and drops writes that
// would not change what the sink shows.
type Labels struct {
	sink    DataSink
	last    map[string]string
	writes  int
	skipped int
}

func NewLabels(sink DataSink) *Labels {
	return &Labels{sink: sink, last: make(map[string]string)}
}

// Set formats value with prec decimals and forwards it if changed.
func (l *Labels) Set(id string, value float64, prec int, unit string) bool {
	return l.SetText(id, strconv.FormatFloat(value, 'f', prec, 64), unit)
}

func (l *Labels) SetText(id, value, unit string) bool {
	if l.sink == nil {
		return false
	}
	key := value + "\x00" + unit
	if prev, ok := l.last[id]; ok && prev == key {
		l.skipped++
		return false
	}
	l.last[id] = key
	l.sink.UpdateValue(id, value, unit)
	l.writes++
	return true
}

// Forget drops the cache so the next write of every id goes through.
func (l *Labels) Forget() {
	clear(l.last)
}

// Detach stops all further writes.
func (l *Labels) Detach() {
	l.sink = nil
	clear(l.last)
}

func (l *Labels) Writes() int { return l.writes }

func (l *Labels) Skipped() int { return l.skipped }

type Value struct {
	ID    string
	Value string
	Unit  string
}

func (v Value) String() string {
	if v.Unit == "" {
		return v.Value
	}
	return v.Value + " " + v.Unit
}

// MemorySink keeps the latest value per id. Hosts render from it.
type MemorySink struct {
	values map[string]Value
	order  []string
	writes int
}

func NewMemorySink() *MemorySink {
	return &MemorySink{values: make(map[string]Value)}
}

func (m *MemorySink) UpdateValue(id, value, unit string) {
	if _, ok := m.values[id]; !ok {
		m.order = append(m.order, id)
	}
	m.values[id] = Value{ID: id, Value: value, Unit: unit}
	m.writes++
}

func (m *MemorySink) Get(id string) (Value, bool) {
	v, ok := m.values[id]
	return v, ok
}

// Rows returns values in first-write order.
func (m *MemorySink) Rows() []Value {
	out := make([]Value, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.values[id])
	}
	return out
}

func (m *MemorySink) IDs() []string {
	ids := append([]string(nil), m.order...)
	sort.Strings(ids)
	return ids
}

func (m *MemorySink) Writes() int { return m.writes }

func (m *MemorySink) Reset() {
	clear(m.values)
	m.order = m.order[:0]
}
