package trail

import (
	"github.com/san-kum/labsim/internal/dynamo"
	"github.com/san-kum/labsim/internal/scene"
)

const DefaultCapacity = 500

// Sample is one recorded position. Seq increases by one per Append for the
// life of the recorder, Clear included.
type Sample struct {
	Pos dynamo.Vec3
	Seq uint64
}

// Recorder is a bounded, time-ordered history. When full, the oldest
// sample is evicted.
type Recorder struct {
	buf   []Sample
	head  int
	size  int
	next  uint64
	dirty bool

	surface scene.Surface
	line    scene.Handle
	bound   bool
}

func New(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Recorder{buf: make([]Sample, capacity)}
}

func (r *Recorder) Cap() int { return len(r.buf) }

func (r *Recorder) Len() int { return r.size }

func (r *Recorder) Append(p dynamo.Vec3) {
	idx := (r.head + r.size) % len(r.buf)
	if r.size == len(r.buf) {
		idx = r.head
		r.head = (r.head + 1) % len(r.buf)
	} else {
		r.size++
	}
	r.buf[idx] = Sample{Pos: p, Seq: r.next}
	r.next++
	r.dirty = true
}

// Samples returns the history oldest first.
func (r *Recorder) Samples() []Sample {
	out := make([]Sample, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	return out
}

func (r *Recorder) Points() []dynamo.Vec3 {
	out := make([]dynamo.Vec3, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(r.head+i)%len(r.buf)].Pos
	}
	return out
}

func (r *Recorder) Last() (Sample, bool) {
	if r.size == 0 {
		return Sample{}, false
	}
	return r.buf[(r.head+r.size-1)%len(r.buf)], true
}

func (r *Recorder) Clear() {
	r.head, r.size = 0, 0
	r.dirty = true
	r.Sync()
}

// Bind mirrors the history into a line node on surface. Sync pushes the
// points after appends; Unbind removes the node.
func (r *Recorder) Bind(surface scene.Surface, parent scene.Handle, node scene.Node) scene.Handle {
	r.Unbind()
	r.surface = surface
	r.line = surface.Add(parent, node)
	r.bound = true
	r.dirty = true
	r.Sync()
	return r.line
}

func (r *Recorder) Sync() {
	if !r.bound || !r.dirty {
		return
	}
	r.surface.SetPoints(r.line, r.Points())
	r.dirty = false
}

func (r *Recorder) Unbind() {
	if !r.bound {
		return
	}
	r.surface.Remove(r.line)
	r.bound = false
	r.surface = nil
}
