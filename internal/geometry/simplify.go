package geometry

import "math"

// collinearEpsilon absorbs floating point noise so points that are collinear
// up to rounding are always dropped, even at zero tolerance.
const collinearEpsilon = 1e-9

// SimplifyPath reduces points with the Douglas-Peucker algorithm. The first
// and last points are always retained and every dropped point lies within
// tolerance of the segment between its retained neighbours. A negative
// tolerance is treated as zero. Inputs with fewer than three points are
// returned as a copy. The result is idempotent for a fixed tolerance.
func SimplifyPath(points []Point, tolerance float64) []Point {
	if len(points) < 3 {
		return append([]Point(nil), points...)
	}
	if tolerance < 0 || math.IsNaN(tolerance) {
		tolerance = 0
	}

	keep := make([]bool, len(points))
	keep[0] = true
	keep[len(points)-1] = true

	type span struct{ first, last int }
	stack := []span{{0, len(points) - 1}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.last-s.first < 2 {
			continue
		}

		index := -1
		maxDist := 0.0
		for i := s.first + 1; i < s.last; i++ {
			d := SegmentDistance(points[i], points[s.first], points[s.last])
			if d > maxDist {
				maxDist = d
				index = i
			}
		}
		if index < 0 || maxDist <= tolerance || maxDist <= collinearEpsilon {
			continue
		}
		keep[index] = true
		stack = append(stack, span{s.first, index}, span{index, s.last})
	}

	out := make([]Point, 0, len(points))
	for i, p := range points {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}

// SimplifyStroke returns a copy of s with its points simplified.
func SimplifyStroke(s Stroke, tolerance float64) Stroke {
	out := s
	out.Points = SimplifyPath(s.Points, tolerance)
	return out
}

// SegmentDistance returns the shortest distance from p to the segment a-b.
// For a degenerate segment it is the distance to a.
func SegmentDistance(p, a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lengthSq := dx*dx + dy*dy
	if lengthSq == 0 {
		return Distance(p, a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lengthSq
	switch {
	case t <= 0:
		return Distance(p, a)
	case t >= 1:
		return Distance(p, b)
	}
	// Perpendicular distance from the cross product avoids the rounding of
	// projecting onto the segment first.
	cross := math.Abs(dx*(p.Y-a.Y) - dy*(p.X-a.X))
	return cross / math.Sqrt(lengthSq)
}
