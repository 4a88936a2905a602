package mls

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// EdgeOp defines how warping samples source locations that fall outside the
// image. The moving least squares formulation doesn't prescribe a policy;
// Clamp is a good default for most images.
type EdgeOp uint8

const (
	// Clamp samples out-of-bounds locations at the nearest edge pixel.
	Clamp EdgeOp = iota
	// Fill paints pixels whose source location falls outside the image with
	// [WarpOpts.Background].
	Fill
)

// WarpOpts describes options for image warping.
type WarpOpts struct {
	// Sampling policy for source locations outside the image.
	Edge EdgeOp
	// Color used by the Fill edge policy.
	Background color.NRGBA
	// Number of goroutines that warp rows concurrently. Zero means
	// runtime.GOMAXPROCS(0); one disables parallelism.
	Workers int
}

// Warp computes a deformed version of img according to the deformation that
// carries the src control points to their dst locations. Control points are
// expressed in the pixel coordinate space of img.
//
// The output image is computed by reverse mapping: for every output pixel,
// the inverse deformation (d with the roles of src and dst swapped) yields
// the location of the original image to sample, and the pixel value is
// interpolated bilinearly. The returned image has the same dimensions as img.
//
// Pixels are independent of each other, so the work is spread across
// goroutines as row bands, see [WarpOpts.Workers].
//
// Warp panics if src and dst have different lengths or are empty.
func Warp(img image.Image, src, dst []Point, d Deformer, opts WarpOpts) *image.NRGBA {
	validateControls(src, dst)
	in := toNRGBA(img)
	out := image.NewNRGBA(in.Bounds())
	warpRows(in, out, opts, func(x, y int) Point {
		return d.Deform(dst, src, Pt(float64(x), float64(y)))
	})
	return out
}

// WarpSparse computes a deformed version of img like [Warp], but evaluates
// the deformation only on a grid of anchor points spaced pitch pixels apart.
// The source locations of the remaining pixels are interpolated bilinearly
// from the four surrounding anchors.
//
// With many control points this is substantially faster than [Warp] — the
// cost of a single deformation evaluation grows with the number of control
// points, and a pitch of n cuts the number of evaluations by roughly n² —
// with minimal impact on the produced image.
//
// WarpSparse panics if src and dst have different lengths or are empty, or if
// pitch is less than 1.
func WarpSparse(img image.Image, src, dst []Point, d Deformer, pitch int, opts WarpOpts) *image.NRGBA {
	validateControls(src, dst)
	if pitch < 1 {
		panic("mls: anchor pitch must be at least 1")
	}
	in := toNRGBA(img)
	out := image.NewNRGBA(in.Bounds())
	w := in.Rect.Dx()
	h := in.Rect.Dy()
	if w == 0 || h == 0 {
		return out
	}

	// One extra anchor row and column past the last full grid cell, so that
	// every pixel has four surrounding anchors.
	subW := (w-1)/pitch + 2
	subH := (h-1)/pitch + 2
	anchors := make([]Point, subW*subH)
	for v := 0; v < subH; v++ {
		for u := 0; u < subW; u++ {
			anchors[v*subW+u] = d.Deform(dst, src, Pt(float64(u*pitch), float64(v*pitch)))
		}
	}

	warpRows(in, out, opts, func(x, y int) Point {
		u := x / pitch
		v := y / pitch
		fx := float64(x-u*pitch) / float64(pitch)
		fy := float64(y-v*pitch) / float64(pitch)
		top := anchors[v*subW+u].Lerp(anchors[v*subW+u+1], fx)
		bot := anchors[(v+1)*subW+u].Lerp(anchors[(v+1)*subW+u+1], fx)
		return top.Lerp(bot, fy)
	})
	return out
}

// warpRows fills every pixel of out by sampling in at project(x, y),
// optionally in parallel. Workers write disjoint row bands, so no
// synchronization beyond the final join is needed.
func warpRows(in, out *image.NRGBA, opts WarpOpts, project func(x, y int) Point) {
	h := out.Rect.Dy()
	workers := opts.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = max(1, min(workers, h))
	if workers == 1 {
		warpBand(in, out, opts, project, 0, h)
		return
	}
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		y0 := i * h / workers
		y1 := (i + 1) * h / workers
		g.Go(func() error {
			warpBand(in, out, opts, project, y0, y1)
			return nil
		})
	}
	g.Wait()
}

func warpBand(in, out *image.NRGBA, opts WarpOpts, project func(x, y int) Point, y0, y1 int) {
	w := out.Rect.Dx()
	for y := y0; y < y1; y++ {
		for x := 0; x < w; x++ {
			out.SetNRGBA(x, y, sample(in, project(x, y), opts))
		}
	}
}

// sample bilinearly interpolates the pixel of img at the fractional location
// pt, resolving out-of-bounds locations per opts.
func sample(img *image.NRGBA, pt Point, opts WarpOpts) color.NRGBA {
	maxX := float64(img.Rect.Dx() - 1)
	maxY := float64(img.Rect.Dy() - 1)
	x, y := pt.Splat()
	if opts.Edge == Fill && (x < 0 || x > maxX || y < 0 || y > maxY) {
		return opts.Background
	}
	x = math.Min(math.Max(x, 0), maxX)
	y = math.Min(math.Max(y, 0), maxY)

	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	x1 := min(x0+1, int(maxX))
	y1 := min(y0+1, int(maxY))
	fx := x - float64(x0)
	fy := y - float64(y0)

	c00 := img.NRGBAAt(x0, y0)
	c10 := img.NRGBAAt(x1, y0)
	c01 := img.NRGBAAt(x0, y1)
	c11 := img.NRGBAAt(x1, y1)
	lerp := func(a, b, c, d uint8) uint8 {
		top := (1-fx)*float64(a) + fx*float64(b)
		bot := (1-fx)*float64(c) + fx*float64(d)
		return uint8((1-fy)*top + fy*bot + 0.5)
	}
	return color.NRGBA{
		R: lerp(c00.R, c10.R, c01.R, c11.R),
		G: lerp(c00.G, c10.G, c01.G, c11.G),
		B: lerp(c00.B, c10.B, c01.B, c11.B),
		A: lerp(c00.A, c10.A, c01.A, c11.A),
	}
}

// toNRGBA returns img as an NRGBA image with its origin at (0, 0), converting
// only when necessary.
func toNRGBA(img image.Image) *image.NRGBA {
	if in, ok := img.(*image.NRGBA); ok && in.Rect.Min == (image.Point{}) {
		return in
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
