package domain

// Rect is a viewport-pixel bounding box (spec.md §3 "Rectangle").
type Rect struct {
	Left, Top, Right, Bottom float64
}

// Width, Height, CenterX and CenterY are the small geometry helpers the
// domain layer exposes to the action pipeline's occlusion check (§4.8) and
// the relative-position engine (§4.7).
func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }
func (r Rect) CenterX() float64 { return r.Left + r.Width()/2 }
func (r Rect) CenterY() float64 { return r.Top + r.Height()/2 }

// RectFromQuad builds a Rect from a CDP content quad: eight numbers
// (x1,y1,x2,y2,x3,y3,x4,y4) as returned by DOM.getContentQuads, taking the
// bounding box of the four corners.
func RectFromQuad(quad []float64) Rect {
	if len(quad) < 8 {
		return Rect{}
	}
	minX, maxX := quad[0], quad[0]
	minY, maxY := quad[1], quad[1]
	for i := 0; i < 8; i += 2 {
		x, y := quad[i], quad[i+1]
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	return Rect{Left: minX, Top: minY, Right: maxX, Bottom: maxY}
}
