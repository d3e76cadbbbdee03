package geom

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	d := Distance(Vec2{X: 0, Y: 0}, Vec2{X: 3, Y: 4})
	if math.Abs(d-5) > 1e-9 {
		t.Fatalf("Distance = %v, want 5", d)
	}
}

func TestSampleBezierStraightLine(t *testing.T) {
	p1 := Vec3{X: 0, Y: 0, Z: 0}
	p4 := Vec3{X: 0, Y: 100, Z: 0}
	// Zero-offset controls collapse the cubic Bézier onto the straight
	// segment p1-p4 (an affine combination of only the two endpoints).
	samples := SampleBezier(p1, p1, p4, p4, 8)
	if len(samples) != 8 {
		t.Fatalf("len(samples) = %d, want 8", len(samples))
	}
	for _, s := range samples {
		if math.Abs(s.Position.X) > 1e-9 {
			t.Fatalf("expected straight line along Y, got X=%v", s.Position.X)
		}
	}
	last := samples[len(samples)-1]
	if math.Abs(last.AccumulatedDistance-100) > 1e-6 {
		t.Fatalf("accumulated distance = %v, want 100", last.AccumulatedDistance)
	}
}

func TestSampleBezierClampsN(t *testing.T) {
	samples := SampleBezier(Vec3{}, Vec3{}, Vec3{X: 1}, Vec3{X: 1}, 0)
	if len(samples) < 2 {
		t.Fatalf("len(samples) = %d, want >= 2", len(samples))
	}
}

func TestInterpClampsAtEnds(t *testing.T) {
	samples := SampleBezier(Vec3{}, Vec3{}, Vec3{Y: 10}, Vec3{Y: 10}, 4)
	below := Interp(samples, -5)
	if below != samples[0].Position {
		t.Fatalf("Interp below range = %v, want %v", below, samples[0].Position)
	}
	above := Interp(samples, 1000)
	if above != samples[len(samples)-1].Position {
		t.Fatalf("Interp above range = %v, want %v", above, samples[len(samples)-1].Position)
	}
}

func TestInterpMidpoint(t *testing.T) {
	samples := []Sample{
		{Position: Vec3{X: 0, Y: 0}, AccumulatedDistance: 0},
		{Position: Vec3{X: 0, Y: 10}, AccumulatedDistance: 10},
	}
	mid := Interp(samples, 5)
	if math.Abs(mid.Y-5) > 1e-9 {
		t.Fatalf("Interp midpoint Y = %v, want 5", mid.Y)
	}
}

func TestHeadingAlongYIsHalfPi(t *testing.T) {
	samples := []Sample{
		{Position: Vec3{X: 0, Y: 0}, AccumulatedDistance: 0},
		{Position: Vec3{X: 0, Y: 10}, AccumulatedDistance: 10},
	}
	h := Heading(samples, 5)
	if math.Abs(h-math.Pi/2) > 1e-9 {
		t.Fatalf("Heading = %v, want pi/2", h)
	}
}
