package mls

import (
	"testing"
)

func TestPointArithmetic(t *testing.T) {
	diff(t, Pt(0, 0).Translate(Vec(-10, 0)), Pt(-10, 0))
	diff(t, Pt(3, 4).Sub(Pt(1, 1)), Vec(2, 3))
}

func TestPointDistance(t *testing.T) {
	p1 := Pt(0, 10)
	p2 := Pt(0, 5)
	if d := p1.Distance(p2); d != 5 {
		t.Errorf("got distance %v, want 5", d)
	}

	p3 := Pt(-11, 1)
	p4 := Pt(-7, -2)
	if d := p3.Distance(p4); d != 5 {
		t.Errorf("got distance %v, want 5", d)
	}

	if d := p3.DistanceSquared(p4); d != 25 {
		t.Errorf("got squared distance %v, want 25", d)
	}
}

func TestPointLerp(t *testing.T) {
	diff(t, Pt(0, 0).Lerp(Pt(10, 4), 0.5), Pt(5, 2))
	diff(t, Pt(0, 0).Lerp(Pt(10, 4), 0), Pt(0, 0))
	diff(t, Pt(0, 0).Lerp(Pt(10, 4), 1), Pt(10, 4))
	diff(t, Pt(2, 2).Midpoint(Pt(4, 8)), Pt(3, 5))
}
