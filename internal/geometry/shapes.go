package geometry

import (
	"fmt"
	"math"
	"strings"

	"reelreview/internal/services"
)

// Tool names a drawing tool.
type Tool string

const (
	ToolPen       Tool = "pen"
	ToolArrow     Tool = "arrow"
	ToolRectangle Tool = "rectangle"
	ToolCircle    Tool = "circle"
)

// ParseTool normalizes a tool name.
func ParseTool(value string) (Tool, error) {
	switch tool := Tool(strings.ToLower(strings.TrimSpace(value))); tool {
	case ToolPen, ToolArrow, ToolRectangle, ToolCircle:
		return tool, nil
	case "":
		return ToolPen, nil
	default:
		return "", services.Wrap(services.ErrValidation, "geometry", "parse tool", fmt.Sprintf("unknown tool %q", value), nil)
	}
}

// IsShape reports whether the tool produces a fixed point set rather than a
// freehand stroke.
func (t Tool) IsShape() bool {
	return t == ToolArrow || t == ToolRectangle || t == ToolCircle
}

// Arrow is a two point set: tail then tip.
func Arrow(from, to Point) []Point {
	return []Point{from, to}
}

// Circle is a two point set: center then a point on the rim.
func Circle(center, edge Point) []Point {
	return []Point{center, edge}
}

// Rectangle is a closed five point quad starting and ending at a.
func Rectangle(a, b Point) []Point {
	return []Point{
		a,
		{X: b.X, Y: a.Y},
		b,
		{X: a.X, Y: b.Y},
		a,
	}
}

// Radius returns the radius of a circle point set, or zero when the set is
// malformed.
func Radius(points []Point) float64 {
	if len(points) != 2 {
		return 0
	}
	return Distance(points[0], points[1])
}

// ShapeStroke builds the stroke a shape tool commits for a drag from start to
// end.
func ShapeStroke(tool Tool, start, end Point, color string, width float64) (Stroke, error) {
	if width <= 0 || math.IsNaN(width) {
		return Stroke{}, services.Wrap(services.ErrValidation, "geometry", "shape", fmt.Sprintf("stroke width must be positive, got %v", width), nil)
	}
	var points []Point
	switch tool {
	case ToolArrow:
		points = Arrow(start, end)
	case ToolRectangle:
		points = Rectangle(start, end)
	case ToolCircle:
		points = Circle(start, end)
	default:
		return Stroke{}, services.Wrap(services.ErrValidation, "geometry", "shape", fmt.Sprintf("tool %q is not a shape", tool), nil)
	}
	return Stroke{Points: points, Color: color, Width: width}, nil
}

// ArrowHead returns the two wing points of an arrow head drawn at the tip.
// length is the wing length and spread the half angle in radians. A
// zero-length arrow has no direction, so both wings collapse onto the tip.
func ArrowHead(from, to Point, length, spread float64) (Point, Point) {
	if from == to {
		return to, to
	}
	angle := math.Atan2(to.Y-from.Y, to.X-from.X)
	left := Point{
		X: to.X - length*math.Cos(angle-spread),
		Y: to.Y - length*math.Sin(angle-spread),
	}
	right := Point{
		X: to.X - length*math.Cos(angle+spread),
		Y: to.Y - length*math.Sin(angle+spread),
	}
	return left, right
}
