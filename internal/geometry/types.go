package geometry

import "math"

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is a completed freehand gesture or shape.
type Stroke struct {
	Points []Point `json:"points"`
	Color  string  `json:"color"`
	Width  float64 `json:"width"`
}

// DrawingData is the payload of a drawing annotation.
type DrawingData struct {
	Strokes []Stroke `json:"strokes"`
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Clone returns a deep copy of the stroke.
func (s Stroke) Clone() Stroke {
	out := s
	out.Points = append([]Point(nil), s.Points...)
	return out
}

// Clone returns a deep copy of the drawing.
func (d DrawingData) Clone() DrawingData {
	if d.Strokes == nil {
		return DrawingData{}
	}
	out := DrawingData{Strokes: make([]Stroke, len(d.Strokes))}
	for i, stroke := range d.Strokes {
		out.Strokes[i] = stroke.Clone()
	}
	return out
}

// PointCount returns the number of points across every stroke.
func (d DrawingData) PointCount() int {
	total := 0
	for _, stroke := range d.Strokes {
		total += len(stroke.Points)
	}
	return total
}

// IsEmpty reports whether the drawing has no strokes.
func (d DrawingData) IsEmpty() bool {
	return len(d.Strokes) == 0
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// Bounds returns the bounding box of points. Empty input yields a zero Rect.
func Bounds(points []Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// DrawingBounds returns the bounding box of every stroke in d.
func DrawingBounds(d DrawingData) Rect {
	all := make([]Point, 0, d.PointCount())
	for _, stroke := range d.Strokes {
		all = append(all, stroke.Points...)
	}
	return Bounds(all)
}

// ToPercent converts a pixel-space point on a width x height frame into
// percent space, clamped to [0,100]. Non-positive dimensions yield the origin.
func ToPercent(p Point, width, height float64) Point {
	if width <= 0 || height <= 0 {
		return Point{}
	}
	return Point{X: clampPercent(p.X / width * 100), Y: clampPercent(p.Y / height * 100)}
}

// FromPercent converts a percent-space point back into pixel space.
func FromPercent(p Point, width, height float64) Point {
	return Point{X: p.X / 100 * width, Y: p.Y / 100 * height}
}

// InPercentRange reports whether p lies inside [0,100] on both axes.
func InPercentRange(p Point) bool {
	return p.X >= 0 && p.X <= 100 && p.Y >= 0 && p.Y <= 100
}

func clampPercent(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
