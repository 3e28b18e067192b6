package scene

import (
	"fmt"

	"github.com/san-kum/labsim/internal/dynamo"
)

// Handle addresses a node in an Arena. The zero Handle is the root.
// Handles are generation-stamped: once a node is removed its handle stays
// inert even after the slot is reused.
type Handle struct {
	index uint32
	gen   uint32
}

var Root Handle

func (h Handle) IsRoot() bool { return h == Root }

func (h Handle) String() string {
	if h.IsRoot() {
		return "root"
	}
	return fmt.Sprintf("%d@%d", h.index, h.gen)
}

// Surface is the narrow rendering capability handed to experiments.
// Mutating a stale handle is a no-op.
type Surface interface {
	Add(parent Handle, n Node) Handle
	Remove(h Handle)
	Move(h Handle, p dynamo.Vec3)
	SetOpacity(h Handle, opacity float64)
	SetScale(h Handle, scale float64)
	SetVisible(h Handle, visible bool)
	SetPoints(h Handle, pts []dynamo.Vec3)
	SetText(h Handle, text string)
}

type slot struct {
	node     Node
	gen      uint32
	alive    bool
	parent   Handle
	children []Handle
}

type Arena struct {
	slots    []slot
	free     []uint32
	live     int
	disposed int
	added    int
}

func NewArena() *Arena {
	// slot 0 backs the root and is never handed out
	return &Arena{slots: []slot{{gen: 0, alive: true, node: NewNode(KindGroup, "root")}}}
}

func (a *Arena) lookup(h Handle) *slot {
	if h.IsRoot() || int(h.index) >= len(a.slots) {
		return nil
	}
	s := &a.slots[h.index]
	if !s.alive || s.gen != h.gen {
		return nil
	}
	return s
}

// Contains reports whether h still names a live node.
func (a *Arena) Contains(h Handle) bool {
	return a.lookup(h) != nil
}

// Add attaches n under parent. A stale parent attaches to the root.
func (a *Arena) Add(parent Handle, n Node) Handle {
	if !parent.IsRoot() && a.lookup(parent) == nil {
		parent = Root
	}

	var idx uint32
	if k := len(a.free); k > 0 {
		idx = a.free[k-1]
		a.free = a.free[:k-1]
	} else {
		a.slots = append(a.slots, slot{})
		idx = uint32(len(a.slots) - 1)
	}

	s := &a.slots[idx]
	s.gen++
	s.alive = true
	s.node = n
	s.parent = parent
	s.children = s.children[:0]

	h := Handle{index: idx, gen: s.gen}
	if parent.IsRoot() {
		a.slots[0].children = append(a.slots[0].children, h)
	} else {
		p := a.lookup(parent)
		p.children = append(p.children, h)
	}
	a.live++
	a.added++
	return h
}

// Remove detaches h from its parent and disposes h and its whole subtree.
func (a *Arena) Remove(h Handle) {
	s := a.lookup(h)
	if s == nil {
		return
	}
	parent := &a.slots[0]
	if !s.parent.IsRoot() {
		if p := a.lookup(s.parent); p != nil {
			parent = p
		}
	}
	for i, c := range parent.children {
		if c == h {
			parent.children = append(parent.children[:i], parent.children[i+1:]...)
			break
		}
	}
	a.dispose(h)
}

func (a *Arena) dispose(h Handle) {
	s := a.lookup(h)
	if s == nil {
		return
	}
	children := s.children
	s.children = nil
	for _, c := range children {
		a.dispose(c)
	}
	s = &a.slots[h.index]
	s.alive = false
	s.node = Node{}
	s.parent = Root
	a.free = append(a.free, h.index)
	a.live--
	a.disposed++
}

func (a *Arena) Move(h Handle, p dynamo.Vec3) {
	if s := a.lookup(h); s != nil {
		s.node.Pos = p
	}
}

func (a *Arena) SetOpacity(h Handle, opacity float64) {
	if s := a.lookup(h); s != nil {
		s.node.Opacity = opacity
	}
}

func (a *Arena) SetScale(h Handle, scale float64) {
	if s := a.lookup(h); s != nil {
		s.node.Scale = scale
	}
}

func (a *Arena) SetVisible(h Handle, visible bool) {
	if s := a.lookup(h); s != nil {
		s.node.Visible = visible
	}
}

func (a *Arena) SetPoints(h Handle, pts []dynamo.Vec3) {
	if s := a.lookup(h); s != nil {
		s.node.Points = append(s.node.Points[:0], pts...)
	}
}

func (a *Arena) SetText(h Handle, text string) {
	if s := a.lookup(h); s != nil {
		s.node.Text = text
	}
}

// Get returns a copy of the node behind h.
func (a *Arena) Get(h Handle) (Node, bool) {
	s := a.lookup(h)
	if s == nil {
		return Node{}, false
	}
	return s.node, true
}

func (a *Arena) Children(h Handle) []Handle {
	var src []Handle
	if h.IsRoot() {
		src = a.slots[0].children
	} else if s := a.lookup(h); s != nil {
		src = s.children
	}
	return append([]Handle(nil), src...)
}

// Walk visits live nodes depth first in attach order. Hidden nodes and
// their subtrees are skipped.
func (a *Arena) Walk(fn func(h Handle, n Node)) {
	var visit func(hs []Handle)
	visit = func(hs []Handle) {
		for _, h := range hs {
			s := a.lookup(h)
			if s == nil || !s.node.Visible {
				continue
			}
			fn(h, s.node)
			visit(s.children)
		}
	}
	visit(a.slots[0].children)
}

// Live is the number of nodes currently attached.
func (a *Arena) Live() int { return a.live }

// Disposed counts every node released since construction.
func (a *Arena) Disposed() int { return a.disposed }

func (a *Arena) Added() int { return a.added }
