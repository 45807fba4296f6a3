package pattern

import "math"

// Geometry fixes the margin policy of one pattern: the extent along each axis is
// Ratio * (viewport side - Margin) * Scale, never negative.
type Geometry struct {
	MarginX float64
	MarginY float64
	RatioX  float64
	RatioY  float64
	// Square uses the shorter remaining side for both axes.
	Square bool
	// Scale is the device area factor. Zero means 1.
	Scale float64
}

// WithScale returns a copy of geometry using the given device area factor.
func (geometry Geometry) WithScale(scale float64) Geometry {
	geometry.Scale = scale
	return geometry
}

// Extent returns the horizontal and vertical radius (or amplitude) for viewport.
func (geometry Geometry) Extent(viewport Viewport) (float64, float64) {
	spanX := nonNegative(nonNegative(viewport.Width) - geometry.MarginX)
	spanY := nonNegative(nonNegative(viewport.Height) - geometry.MarginY)
	if geometry.Square {
		spanX = math.Min(spanX, spanY)
		spanY = spanX
	}
	scale := geometry.Scale
	if scale == 0 {
		scale = 1
	}
	scale = nonNegative(scale)
	return nonNegative(spanX * geometry.RatioX * scale), nonNegative(spanY * geometry.RatioY * scale)
}

// Orientation selects the lobe axis of the figure eight.
type Orientation int

const (
	// OrientationVertical stacks the lobes top and bottom.
	OrientationVertical Orientation = iota
	// OrientationHorizontal places the lobes left and right.
	OrientationHorizontal
)

// Vertex names a corner of the diamond.
type Vertex int

const (
	VertexTop Vertex = iota
	VertexRight
	VertexBottom
	VertexLeft
)

// CircleFunc traces an ellipse once per progress cycle, starting at its rightmost point.
func CircleFunc(geometry Geometry) Func {
	return func(progress float64, viewport Viewport) Point {
		center := viewport.Center()
		rx, ry := geometry.Extent(viewport)
		angle := wrapUnit(progress) * 2 * math.Pi
		return Point{
			X: center.X + math.Cos(angle)*rx,
			Y: center.Y + math.Sin(angle)*ry,
		}
	}
}

// Figure8Func traces a lemniscate of Bernoulli once per progress cycle.
func Figure8Func(geometry Geometry, orientation Orientation) Func {
	return func(progress float64, viewport Viewport) Point {
		center := viewport.Center()
		rx, ry := geometry.Extent(viewport)
		angle := wrapUnit(progress) * 2 * math.Pi
		sinT := math.Sin(angle)
		cosT := math.Cos(angle)
		denominator := 1 + sinT*sinT
		if orientation == OrientationHorizontal {
			return Point{
				X: center.X + rx*cosT/denominator,
				Y: center.Y + ry*sinT*cosT/denominator,
			}
		}
		return Point{
			X: center.X + rx*sinT*cosT/denominator,
			Y: center.Y + ry*cosT/denominator,
		}
	}
}

// VerticalFunc oscillates up and down twice per progress cycle, starting at the centre moving up.
func VerticalFunc(geometry Geometry) Func {
	return func(progress float64, viewport Viewport) Point {
		center := viewport.Center()
		_, amplitude := geometry.Extent(viewport)
		angle := wrapUnit(progress) * 4 * math.Pi
		return Point{X: center.X, Y: center.Y - math.Sin(angle)*amplitude}
	}
}

// HorizontalFunc oscillates left and right twice per progress cycle, starting at the right edge.
func HorizontalFunc(geometry Geometry) Func {
	return func(progress float64, viewport Viewport) Point {
		center := viewport.Center()
		amplitude, _ := geometry.Extent(viewport)
		angle := wrapUnit(progress) * 4 * math.Pi
		return Point{X: center.X + math.Cos(angle)*amplitude, Y: center.Y}
	}
}

// DiamondFunc walks the four edges of a rhombus clockwise (top, right, bottom, left),
// beginning at start. Each quarter of progress covers one edge.
func DiamondFunc(geometry Geometry, start Vertex) Func {
	return func(progress float64, viewport Viewport) Point {
		vertices := DiamondVertices(geometry, viewport)
		stage := math.Mod(finite(progress)*4, 4)
		if stage < 0 {
			stage += 4
		}
		index := math.Floor(stage)
		t := stage - index
		from := vertices[(int(start)+int(index))%4]
		to := vertices[(int(start)+int(index)+1)%4]
		return Point{
			X: from.X + (to.X-from.X)*t,
			Y: from.Y + (to.Y-from.Y)*t,
		}
	}
}

// DiamondVertices returns the corners in canonical order: top, right, bottom, left.
func DiamondVertices(geometry Geometry, viewport Viewport) [4]Point {
	center := viewport.Center()
	rx, ry := geometry.Extent(viewport)
	return [4]Point{
		VertexTop:    {X: center.X, Y: center.Y - ry},
		VertexRight:  {X: center.X + rx, Y: center.Y},
		VertexBottom: {X: center.X, Y: center.Y + ry},
		VertexLeft:   {X: center.X - rx, Y: center.Y},
	}
}

func wrapUnit(progress float64) float64 {
	progress = finite(progress)
	return progress - math.Floor(progress)
}

func finite(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}
