package pdfio

// Token is a positioned unit of text on a page. Coordinates are page units
// with the origin at the top-left corner, so Top < Bottom and X0 <= X1.
// Tokens are immutable once produced and scoped to a single page.
type Token struct {
	Text   string
	X0     float64
	X1     float64
	Top    float64
	Bottom float64
}

// CenterX returns the horizontal center of the token's bounding box.
func (t Token) CenterX() float64 {
	return (t.X0 + t.X1) / 2
}

// Box is an axis-aligned crop region in the same coordinate system as Token.
type Box struct {
	X0     float64
	Top    float64
	X1     float64
	Bottom float64
}

// Contains reports whether the token's center point lies inside the box.
func (b Box) Contains(t Token) bool {
	cx := t.CenterX()
	cy := (t.Top + t.Bottom) / 2
	return cx >= b.X0 && cx <= b.X1 && cy >= b.Top && cy <= b.Bottom
}
