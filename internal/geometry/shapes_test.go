package geometry_test

import (
	"errors"
	"math"
	"testing"

	"reelreview/internal/geometry"
	"reelreview/internal/services"
)

func TestShapeStrokePointSets(t *testing.T) {
	start := geometry.Point{X: 1, Y: 2}
	end := geometry.Point{X: 11, Y: 22}
	cases := []struct {
		tool geometry.Tool
		n    int
	}{
		{geometry.ToolArrow, 2},
		{geometry.ToolCircle, 2},
		{geometry.ToolRectangle, 5},
	}
	for _, tc := range cases {
		stroke, err := geometry.ShapeStroke(tc.tool, start, end, "#ff0000", 2)
		if err != nil {
			t.Fatalf("%s: %v", tc.tool, err)
		}
		if len(stroke.Points) != tc.n {
			t.Fatalf("%s: expected %d points, got %d", tc.tool, tc.n, len(stroke.Points))
		}
		if stroke.Points[0] != start {
			t.Fatalf("%s: expected shape to start at drag origin", tc.tool)
		}
	}

	rect, _ := geometry.ShapeStroke(geometry.ToolRectangle, start, end, "#fff", 1)
	if rect.Points[4] != rect.Points[0] {
		t.Fatal("rectangle must be closed")
	}
}

func TestShapeStrokeRejects(t *testing.T) {
	if _, err := geometry.ShapeStroke(geometry.ToolPen, geometry.Point{}, geometry.Point{X: 1}, "#fff", 1); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for pen, got %v", err)
	}
	if _, err := geometry.ShapeStroke(geometry.ToolArrow, geometry.Point{}, geometry.Point{X: 1}, "#fff", 0); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for zero width, got %v", err)
	}
}

func TestParseTool(t *testing.T) {
	if tool, err := geometry.ParseTool(" Rectangle "); err != nil || tool != geometry.ToolRectangle {
		t.Fatalf("unexpected parse result %q %v", tool, err)
	}
	if tool, _ := geometry.ParseTool(""); tool != geometry.ToolPen {
		t.Fatalf("expected pen default, got %q", tool)
	}
	if _, err := geometry.ParseTool("laser"); err == nil {
		t.Fatal("expected error for unknown tool")
	}
}

func TestArrowHead(t *testing.T) {
	left, right := geometry.ArrowHead(geometry.Point{}, geometry.Point{X: 10}, 2, math.Pi/4)
	if math.Abs(left.X-right.X) > 1e-9 || math.Abs(left.Y+right.Y) > 1e-9 {
		t.Fatalf("wings should mirror across the shaft: %v %v", left, right)
	}
	if left.X >= 10 {
		t.Fatalf("wings should trail the tip: %v", left)
	}
	tip := geometry.Point{X: 3, Y: 3}
	if l, r := geometry.ArrowHead(tip, tip, 2, 1); l != tip || r != tip {
		t.Fatal("zero-length arrow should collapse wings onto the tip")
	}
}

func TestRadius(t *testing.T) {
	if r := geometry.Radius(geometry.Circle(geometry.Point{}, geometry.Point{X: 3, Y: 4})); r != 5 {
		t.Fatalf("expected radius 5, got %v", r)
	}
	if r := geometry.Radius([]geometry.Point{{}}); r != 0 {
		t.Fatalf("expected zero radius for malformed set, got %v", r)
	}
}
