package scene

import "github.com/san-kum/labsim/internal/dynamo"

type Kind int

const (
	KindGroup Kind = iota
	KindPoint
	KindLine
	KindDashed
	KindLabel
	KindMarker
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindPoint:
		return "point"
	case KindLine:
		return "line"
	case KindDashed:
		return "dashed"
	case KindLabel:
		return "label"
	case KindMarker:
		return "marker"
	default:
		return "unknown"
	}
}

// Node is the host-independent description of one scene element. Points
// are only used by line kinds, Text only by labels.
type Node struct {
	Kind    Kind
	Name    string
	Pos     dynamo.Vec3
	Points  []dynamo.Vec3
	Text    string
	Glyph   rune
	Role    Role
	Opacity float64
	Scale   float64
	Visible bool
}

// NewNode returns a visible, fully opaque node at unit scale.
func NewNode(kind Kind, name string) Node {
	return Node{Kind: kind, Name: name, Opacity: 1, Scale: 1, Visible: true}
}

func (n Node) At(p dynamo.Vec3) Node {
	n.Pos = p
	return n
}

func (n Node) WithRole(r Role) Node {
	n.Role = r
	return n
}

func (n Node) WithGlyph(r rune) Node {
	n.Glyph = r
	return n
}

func (n Node) WithText(s string) Node {
	n.Text = s
	return n
}

func (n Node) WithPoints(pts []dynamo.Vec3) Node {
	n.Points = append([]dynamo.Vec3(nil), pts...)
	return n
}
