package geometry

// Capture accumulates pointer samples for one freehand gesture.
type Capture struct {
	minDistance float64
	tolerance   float64
	color       string
	width       float64
	points      []Point
	active      bool
}

// NewCapture creates a capture that ignores samples closer than minDistance
// to the previous kept sample and simplifies with tolerance when the gesture
// ends.
func NewCapture(minDistance, tolerance float64) *Capture {
	if minDistance < 0 {
		minDistance = 0
	}
	if tolerance < 0 {
		tolerance = 0
	}
	return &Capture{minDistance: minDistance, tolerance: tolerance}
}

// Begin starts a gesture at p, discarding any unfinished gesture.
func (c *Capture) Begin(p Point, color string, width float64) {
	c.points = append(c.points[:0], p)
	c.color = color
	c.width = width
	c.active = true
}

// Move records a sample. It reports whether the sample was kept.
func (c *Capture) Move(p Point) bool {
	if !c.active {
		return false
	}
	last := c.points[len(c.points)-1]
	if Distance(last, p) < c.minDistance || last == p {
		return false
	}
	c.points = append(c.points, p)
	return true
}

// Active reports whether a gesture is in progress.
func (c *Capture) Active() bool {
	return c.active
}

// Points returns a copy of the samples kept so far.
func (c *Capture) Points() []Point {
	return append([]Point(nil), c.points...)
}

// Preview returns the smoothed path of the gesture in progress.
func (c *Capture) Preview() Path {
	return SmoothPath(c.points)
}

// End finishes the gesture at p and returns the simplified stroke. ok is
// false when no gesture was active.
func (c *Capture) End(p Point) (Stroke, bool) {
	if !c.active {
		return Stroke{}, false
	}
	c.Move(p)
	stroke := Stroke{
		Points: SimplifyPath(c.points, c.tolerance),
		Color:  c.color,
		Width:  c.width,
	}
	c.Cancel()
	return stroke, true
}

// Cancel abandons the gesture in progress.
func (c *Capture) Cancel() {
	c.points = c.points[:0]
	c.active = false
}
