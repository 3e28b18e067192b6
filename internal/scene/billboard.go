package scene

// TextBillboard is a label whose text can be replaced without knowing how
// the host draws it.
type TextBillboard interface {
	SetText(text string)
	Text() string
}

type Billboard struct {
	surface Surface
	handle  Handle
	text    string
}

func NewBillboard(surface Surface, parent Handle, name string, role Role) *Billboard {
	h := surface.Add(parent, NewNode(KindLabel, name).WithRole(role))
	return &Billboard{surface: surface, handle: h}
}

func (b *Billboard) SetText(text string) {
	if text == b.text {
		return
	}
	b.text = text
	b.surface.SetText(b.handle, text)
}

func (b *Billboard) Text() string { return b.text }

func (b *Billboard) Handle() Handle { return b.handle }
