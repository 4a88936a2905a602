package mls_test

import (
	"fmt"
	"image"

	"honnef.co/go/mls"
)

func ExampleDeformAffine() {
	// A single correspondence reduces to a pure translation.
	src := []mls.Point{mls.Pt(0, 0)}
	dst := []mls.Point{mls.Pt(5, 5)}
	fmt.Println(mls.DeformAffine(src, dst, mls.Pt(1, 1)))
	// Output: (6, 6)
}

func ExampleDeformRigid() {
	// Pin the corners of a 100×100 square and drag its center to the right.
	src := []mls.Point{
		mls.Pt(0, 0), mls.Pt(100, 0), mls.Pt(100, 100), mls.Pt(0, 100),
		mls.Pt(50, 50),
	}
	dst := []mls.Point{
		mls.Pt(0, 0), mls.Pt(100, 0), mls.Pt(100, 100), mls.Pt(0, 100),
		mls.Pt(70, 50),
	}

	// Queries at control points map to their destinations exactly.
	fmt.Println(mls.DeformRigid(src, dst, mls.Pt(50, 50)))
	fmt.Println(mls.DeformRigid(src, dst, mls.Pt(0, 100)))
	// Output:
	// (70, 50)
	// (0, 100)
}

func ExampleWarp() {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	src := []mls.Point{mls.Pt(16, 16), mls.Pt(48, 16), mls.Pt(32, 48)}
	dst := []mls.Point{mls.Pt(14, 18), mls.Pt(50, 14), mls.Pt(32, 50)}

	out := mls.Warp(img, src, dst, mls.KindRigid, mls.WarpOpts{})
	fmt.Println(out.Bounds())
	// Output: (0,0)-(64,64)
}
