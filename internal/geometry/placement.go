package geometry

import "github.com/phambaophuc/dali/internal/models"

// Borders are the offsets around an overlay on its canvas.
// Left + overlay width + Right always equals the canvas width, same for the vertical axis.
type Borders struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// PlaceWatermark computes the borders of a wmWidth x wmHeight overlay anchored at point.
// An overlay that overflows the canvas is pulled back inside by absorbing
// the excess into the anchored border.
func PlaceWatermark(canvasWidth, canvasHeight, wmWidth, wmHeight int, point models.Point) Borders {
	left, right := placeHorizontal(canvasWidth, wmWidth, point.X)
	top, bottom := placeVertical(canvasHeight, wmHeight, point.Y)
	return Borders{Left: left, Top: top, Right: right, Bottom: bottom}
}

func placeHorizontal(canvas, size int, anchor models.HorizontalAnchor) (int, int) {
	switch anchor.Origin {
	case models.OriginRight:
		near, far := placeAxis(canvas, size, anchor.Offset)
		return far, near
	case models.OriginHCenter:
		return placeCenter(canvas, size)
	default:
		return placeAxis(canvas, size, anchor.Offset)
	}
}

func placeVertical(canvas, size int, anchor models.VerticalAnchor) (int, int) {
	switch anchor.Origin {
	case models.OriginBottom:
		near, far := placeAxis(canvas, size, anchor.Offset)
		return far, near
	case models.OriginVCenter:
		return placeCenter(canvas, size)
	default:
		return placeAxis(canvas, size, anchor.Offset)
	}
}

// placeAxis returns (near, far) borders for an overlay offset from the near edge.
func placeAxis(canvas, size, offset int) (int, int) {
	overflow := canvas - offset - size
	if overflow < 0 {
		return offset + overflow, 0
	}
	return offset, overflow
}

// placeCenter puts the overlay in the middle. For an even overlay the far
// border is near + canvas%2; an odd overlay takes its extra pixel from the
// far border, so the borders still span the canvas.
func placeCenter(canvas, size int) (int, int) {
	near := canvas/2 - size/2
	return near, canvas - near - size
}
