package geometry

import (
	"strconv"
	"strings"
)

// PathOp is a path drawing command.
type PathOp string

const (
	OpMove PathOp = "M"
	OpLine PathOp = "L"
	OpQuad PathOp = "Q"
)

// Segment is one path command with its operand points. Quad segments carry
// a control point followed by the end point.
type Segment struct {
	Op     PathOp  `json:"op"`
	Points []Point `json:"points"`
}

// Path is an ordered sequence of segments.
type Path []Segment

// SmoothPath builds a render path through points using quadratic curves whose
// control points are the input points and whose end points are the midpoints
// between neighbours. Joins are tangent-continuous.
//
// Zero points yield an empty path. One point yields a zero-length line so
// renderers draw a dot. Two points yield a straight segment.
func SmoothPath(points []Point) Path {
	switch len(points) {
	case 0:
		return Path{}
	case 1:
		return Path{
			{Op: OpMove, Points: []Point{points[0]}},
			{Op: OpLine, Points: []Point{points[0]}},
		}
	case 2:
		return Path{
			{Op: OpMove, Points: []Point{points[0]}},
			{Op: OpLine, Points: []Point{points[1]}},
		}
	}

	path := make(Path, 0, len(points))
	path = append(path, Segment{Op: OpMove, Points: []Point{points[0]}})
	for i := 1; i < len(points)-1; i++ {
		end := Midpoint(points[i], points[i+1])
		path = append(path, Segment{Op: OpQuad, Points: []Point{points[i], end}})
	}
	path = append(path, Segment{Op: OpLine, Points: []Point{points[len(points)-1]}})
	return path
}

// End returns the final point of the path and false when the path is empty.
func (p Path) End() (Point, bool) {
	if len(p) == 0 {
		return Point{}, false
	}
	last := p[len(p)-1].Points
	if len(last) == 0 {
		return Point{}, false
	}
	return last[len(last)-1], true
}

// SVG renders the path as SVG path data, e.g. "M 0 0 Q 5 5 7.5 7.5 L 10 10".
func (p Path) SVG() string {
	var b strings.Builder
	for i, seg := range p {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(string(seg.Op))
		for _, pt := range seg.Points {
			b.WriteByte(' ')
			b.WriteString(formatCoord(pt.X))
			b.WriteByte(' ')
			b.WriteString(formatCoord(pt.Y))
		}
	}
	return b.String()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
