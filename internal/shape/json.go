package shape

// Wire is the flat JSON form of a shape, discriminated by Type.
type Wire struct {
	ID       string    `json:"id"`
	Color    string    `json:"color"`
	Type     Kind      `json:"type"`
	Position Position  `json:"position"`
	State    string    `json:"state"`
	PageNo   int       `json:"pageNo"`
	Text     *string   `json:"text,omitempty"`
	Size     float64   `json:"size,omitempty"`
	Width    *float64  `json:"width,omitempty"`
	Height   *float64  `json:"height,omitempty"`
	End      *Position `json:"end,omitempty"`
}

// Encode flattens s. Unknown variants encode their header only.
func Encode(s Shape) Wire {
	m := s.Meta()
	w := Wire{
		ID:       m.ID,
		Color:    m.Color,
		Type:     m.Type,
		Position: m.Position,
		State:    m.State.String(),
		PageNo:   m.PageNo,
	}
	switch v := s.(type) {
	case Text:
		w.Text = &v.Text
		w.Size = v.Size
	case Rectangle:
		w.Width, w.Height = &v.Width, &v.Height
	case StrikeLine:
		w.End = &v.End
	}
	return w
}

// EncodeAll flattens every shape of c.
func EncodeAll(c Collection) []Wire {
	out := make([]Wire, 0, len(c))
	for _, s := range c {
		out = append(out, Encode(s))
	}
	return out
}
