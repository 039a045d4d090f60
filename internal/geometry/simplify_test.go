package geometry_test

import (
	"math"
	"testing"

	"reelreview/internal/geometry"
)

func TestSimplifyPathDiagonal(t *testing.T) {
	got := geometry.SimplifyPath([]geometry.Point{{0, 0}, {5, 5}, {10, 10}}, 1)
	want := []geometry.Point{{0, 0}, {10, 10}}
	assertPoints(t, got, want)
}

func TestSimplifyPathCollinearAnyTolerance(t *testing.T) {
	line := []geometry.Point{{0, 0}, {1, 2}, {2, 4}, {3, 6}, {4, 8}, {10, 20}}
	for _, tol := range []float64{0, 0.5, 1, 100, -3} {
		got := geometry.SimplifyPath(line, tol)
		if len(got) != 2 {
			t.Fatalf("tolerance %v: expected 2 points, got %v", tol, got)
		}
		if got[0] != line[0] || got[1] != line[len(line)-1] {
			t.Fatalf("tolerance %v: endpoints moved: %v", tol, got)
		}
	}
}

func TestSimplifyPathKeepsDeviatingPoint(t *testing.T) {
	points := []geometry.Point{{0, 0}, {5, 4}, {10, 0}}
	if got := geometry.SimplifyPath(points, 1); len(got) != 3 {
		t.Fatalf("expected peak retained, got %v", got)
	}
	if got := geometry.SimplifyPath(points, 5); len(got) != 2 {
		t.Fatalf("expected peak dropped at tolerance 5, got %v", got)
	}
}

func TestSimplifyPathShortInputsCopied(t *testing.T) {
	in := []geometry.Point{{1, 1}, {2, 2}}
	out := geometry.SimplifyPath(in, 1)
	out[0].X = 99
	if in[0].X != 1 {
		t.Fatal("simplify aliased its input")
	}
	if got := geometry.SimplifyPath(nil, 1); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestSimplifyPathPropertiesOnWave(t *testing.T) {
	var wave []geometry.Point
	for i := 0; i <= 200; i++ {
		x := float64(i)
		wave = append(wave, geometry.Point{X: x, Y: 20 * math.Sin(x/15)})
	}
	for _, tol := range []float64{0, 0.25, 1, 4, 50} {
		got := geometry.SimplifyPath(wave, tol)
		if len(got) > len(wave) {
			t.Fatalf("tolerance %v: point count grew", tol)
		}
		if got[0] != wave[0] || got[len(got)-1] != wave[len(wave)-1] {
			t.Fatalf("tolerance %v: endpoints moved", tol)
		}
		again := geometry.SimplifyPath(got, tol)
		assertPoints(t, again, got)
		assertWithinTolerance(t, wave, got, tol)
	}
}

func TestSegmentDistance(t *testing.T) {
	cases := []struct {
		name    string
		p, a, b geometry.Point
		want    float64
	}{
		{"perpendicular", geometry.Point{X: 5, Y: 3}, geometry.Point{}, geometry.Point{X: 10}, 3},
		{"before start", geometry.Point{X: -3, Y: 4}, geometry.Point{}, geometry.Point{X: 10}, 5},
		{"past end", geometry.Point{X: 13, Y: 4}, geometry.Point{}, geometry.Point{X: 10}, 5},
		{"degenerate", geometry.Point{X: 3, Y: 4}, geometry.Point{}, geometry.Point{}, 5},
	}
	for _, tc := range cases {
		if got := geometry.SegmentDistance(tc.p, tc.a, tc.b); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

// assertWithinTolerance checks every original point lies within tol of the
// simplified segment spanning it.
func assertWithinTolerance(t *testing.T, original, simplified []geometry.Point, tol float64) {
	t.Helper()
	seg := 0
	for _, p := range original {
		for seg < len(simplified)-2 && p.X > simplified[seg+1].X {
			seg++
		}
		d := geometry.SegmentDistance(p, simplified[seg], simplified[seg+1])
		if d > tol+1e-6 {
			t.Fatalf("point %v deviates %v > %v", p, d, tol)
		}
	}
}

func assertPoints(t *testing.T, got, want []geometry.Point) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("point %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}
