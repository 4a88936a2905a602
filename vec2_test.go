package mls

import (
	"testing"
)

func TestVec2Products(t *testing.T) {
	if d := Vec(2, 3).Dot(Vec(4, 5)); d != 23 {
		t.Errorf("got dot product %v, want 23", d)
	}
	if c := Vec(2, 3).Cross(Vec(4, 5)); c != -2 {
		t.Errorf("got cross product %v, want -2", c)
	}
}

func TestVec2Turn90(t *testing.T) {
	diff(t, Vec(1, 0).Turn90(), Vec(0, 1))
	diff(t, Vec(0, 1).Turn90(), Vec(-1, 0))
	// Turn90 is perpendicular to the input
	v := Vec(3.5, -7)
	if d := v.Dot(v.Turn90()); d != 0 {
		t.Errorf("got dot product %v, want 0", d)
	}
}

func TestVec2Magnitude(t *testing.T) {
	v := Vec(3, 4)
	if h := v.Hypot(); h != 5 {
		t.Errorf("got magnitude %v, want 5", h)
	}
	if h := v.Hypot2(); h != 25 {
		t.Errorf("got squared magnitude %v, want 25", h)
	}
	diff(t, v.Normalize(), Vec(0.6, 0.8))
}
