package mls

import (
	"fmt"
	"math"
)

// DefaultAlpha is the default falloff exponent for control point weights. It
// matches the value commonly used with the Schaefer–McPhail–Warren paper and
// is suitable for general image deformation.
const DefaultAlpha = 1.0

// Kind selects one of the moving least squares deformation variants.
type Kind uint8

const (
	// KindAffine fits an unconstrained affine transform per query point.
	KindAffine Kind = iota
	// KindSimilarity fits a rotation, uniform scale, and translation.
	KindSimilarity
	// KindRigid fits a rotation and translation only.
	KindRigid
)

func (k Kind) String() string {
	switch k {
	case KindAffine:
		return "affine"
	case KindSimilarity:
		return "similarity"
	case KindRigid:
		return "rigid"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Deformer describes deformations driven by control point correspondences.
// src and dst must have equal, non-zero lengths; index i of src corresponds
// to index i of dst.
//
// [Kind] and [Deformation] implement this interface; [Warp] and [WarpSparse]
// consume it.
type Deformer interface {
	Deform(src, dst []Point, pt Point) Point
}

// Deform evaluates the deformation variant k at pt with the default falloff.
func (k Kind) Deform(src, dst []Point, pt Point) Point {
	return Deformation{Kind: k}.Deform(src, dst, pt)
}

// A Deformation pairs a deformation variant with a weighting falloff. The
// weight of control point i at query point v is 1/|pᵢ−v|^2α. Larger values of
// Alpha localize the deformation more strongly around the control points.
type Deformation struct {
	Kind Kind
	// Falloff exponent α. Zero means DefaultAlpha.
	Alpha float64
}

// Deform evaluates the deformation at pt.
//
// Deform panics if src and dst have different lengths or are empty.
func (d Deformation) Deform(src, dst []Point, pt Point) Point {
	validateControls(src, dst)
	alpha := d.Alpha
	if alpha == 0 {
		alpha = DefaultAlpha
	}
	return deform(d.Kind, src, dst, pt, alpha)
}

// DeformAffine moves pt from its original position to its new position
// according to the deformation that carries the src control points to their
// dst locations, estimating the locally best-fitting affine transform.
//
// DeformAffine panics if src and dst have different lengths or are empty.
func DeformAffine(src, dst []Point, pt Point) Point {
	validateControls(src, dst)
	return deform(KindAffine, src, dst, pt, DefaultAlpha)
}

// DeformSimilarity moves pt from its original position to its new position
// according to the deformation that carries the src control points to their
// dst locations, estimating the locally best-fitting similarity transform
// (rotation, uniform scale, and translation). It is stiffer than
// [DeformAffine] and avoids shear artifacts.
//
// DeformSimilarity panics if src and dst have different lengths or are empty.
func DeformSimilarity(src, dst []Point, pt Point) Point {
	validateControls(src, dst)
	return deform(KindSimilarity, src, dst, pt, DefaultAlpha)
}

// DeformRigid moves pt from its original position to its new position
// according to the deformation that carries the src control points to their
// dst locations, estimating the locally best-fitting rigid transform
// (rotation and translation, no scale). It is the most shape-preserving
// variant.
//
// DeformRigid panics if src and dst have different lengths or are empty.
func DeformRigid(src, dst []Point, pt Point) Point {
	validateControls(src, dst)
	return deform(KindRigid, src, dst, pt, DefaultAlpha)
}

// LocalTransform returns the affine transform fitted by variant k at pt, with
// the default falloff. All three variants are affine for any fixed query
// point; the transform varies from query to query, which is what makes the
// deformation non-linear as a whole.
//
// The second return value reports whether a transform exists. It is false
// when pt coincides exactly with a control point, where weights diverge and
// the deformation maps pt directly to the corresponding destination point.
//
// LocalTransform panics if src and dst have different lengths or are empty.
func LocalTransform(k Kind, src, dst []Point, pt Point) (Affine, bool) {
	validateControls(src, dst)
	aff, idx := localTransform(k, src, dst, pt, DefaultAlpha)
	if idx >= 0 {
		return Affine{}, false
	}
	return aff, true
}

func validateControls(src, dst []Point) {
	if len(src) != len(dst) {
		panic(fmt.Sprintf("mls: mismatched control points: %d source, %d destination", len(src), len(dst)))
	}
	if len(src) == 0 {
		panic("mls: called with no control points")
	}
}

func deform(k Kind, src, dst []Point, pt Point, alpha float64) Point {
	aff, idx := localTransform(k, src, dst, pt, alpha)
	if idx >= 0 {
		// pt coincides with a control point; it maps to the corresponding
		// destination exactly.
		return dst[idx]
	}
	return pt.Transform(aff)
}

// weight computes the influence of a control point at squared distance distSq
// from the query point.
func weight(distSq, alpha float64) float64 {
	if alpha == 1 {
		return 1 / distSq
	}
	return 1 / math.Pow(distSq, alpha)
}

// localTransform computes the local transform of variant k at pt. If pt
// coincides with a control point it returns that point's index instead, and
// -1 otherwise. Weights are recomputed in the second pass rather than stored,
// to keep the per-query evaluation allocation-free.
func localTransform(k Kind, src, dst []Point, pt Point, alpha float64) (Affine, int) {
	var wSum float64
	var pSum, qSum Vec2
	for i, p := range src {
		distSq := p.DistanceSquared(pt)
		if distSq == 0 {
			return Affine{}, i
		}
		w := weight(distSq, alpha)
		wSum += w
		pSum = pSum.Add(Vec2(p).Mul(w))
		qSum = qSum.Add(Vec2(dst[i]).Mul(w))
	}

	// Weighted centroids p* and q* (eq 2 resp. the text after it).
	pStar := Point(pSum.Div(wSum))
	qStar := Point(qSum.Div(wSum))

	switch k {
	case KindAffine:
		return affineTransform(src, dst, pt, alpha, pStar, qStar), -1
	case KindSimilarity, KindRigid:
		return similarityTransform(k, src, dst, pt, alpha, pStar, qStar), -1
	default:
		panic(fmt.Sprintf("invalid Kind %v", k))
	}
}

// affineTransform solves the weighted normal equations for the best 2x2
// linear map M minimizing Σ wᵢ|p̂ᵢM − q̂ᵢ|² (eq 5), where p̂ᵢ and q̂ᵢ are the
// control points centered on their weighted centroids.
func affineTransform(src, dst []Point, pt Point, alpha float64, pStar, qStar Point) Affine {
	// mp = Σ wᵢ p̂ᵢᵀp̂ᵢ is symmetric, so three accumulators suffice.
	var mpA, mpB, mpD float64
	var mq00, mq01, mq10, mq11 float64
	for i, p := range src {
		w := weight(p.DistanceSquared(pt), alpha)
		ph := p.Sub(pStar)
		qh := dst[i].Sub(qStar)
		mpA += w * ph.X * ph.X
		mpB += w * ph.X * ph.Y
		mpD += w * ph.Y * ph.Y
		mq00 += w * ph.X * qh.X
		mq01 += w * ph.X * qh.Y
		mq10 += w * ph.Y * qh.X
		mq11 += w * ph.Y * qh.Y
	}

	det := mpA*mpD - mpB*mpB
	if det == 0 {
		// All control points are collinear and mp is singular. Fall back to
		// the translation carrying p* to q* instead of dividing by zero.
		return Translate(qStar.Sub(pStar))
	}

	// M = mp⁻¹ mq, with mp inverted via its determinant.
	m00 := (mpD*mq00 - mpB*mq10) / det
	m01 := (mpD*mq01 - mpB*mq11) / det
	m10 := (mpA*mq10 - mpB*mq00) / det
	m11 := (mpA*mq11 - mpB*mq01) / det
	return rowTransform(m00, m01, m10, m11, pStar, qStar)
}

// similarityTransform computes the closed-form similarity solution (eq 6) and
// its rigid counterpart (eq 8). Both avoid a matrix inversion: the matrix
// Σ wᵢ p̂ᵢᵀ(q̂ᵢ, q̂ᵢ⊥) reduces to ((a, b), (−b, a)) with a = Σ wᵢ p̂ᵢ·q̂ᵢ and
// b = Σ wᵢ p̂ᵢ×q̂ᵢ, so only the normalization differs:
//
//   - similarity divides by μ_s = Σ wᵢ|p̂ᵢ|², yielding rotation + uniform
//     scale;
//   - rigid divides by μ_r = |(a, b)|, yielding an exact rotation. This is
//     equivalent to rescaling the similarity offset f̂(v)−q* back to the
//     length of v−p*.
func similarityTransform(k Kind, src, dst []Point, pt Point, alpha float64, pStar, qStar Point) Affine {
	var mu, a, b float64
	for i, p := range src {
		w := weight(p.DistanceSquared(pt), alpha)
		ph := p.Sub(pStar)
		qh := dst[i].Sub(qStar)
		mu += w * ph.Hypot2()
		a += w * ph.Dot(qh)
		b += w * ph.Cross(qh)
	}
	if k == KindRigid {
		mu = math.Hypot(a, b)
	}
	if mu == 0 {
		// Zero spread (all source controls coincide with p*), or for the
		// rigid case a degenerate rotation. Fall back to the translation
		// carrying p* to q*.
		return Translate(qStar.Sub(pStar))
	}
	return rowTransform(a/mu, b/mu, -b/mu, a/mu, pStar, qStar)
}

// rowTransform builds the affine transform v ↦ (v−p*)M + q* from the 2x2
// matrix M given in the paper's row-vector convention.
func rowTransform(m00, m01, m10, m11 float64, pStar, qStar Point) Affine {
	return Affine{
		m00, m01, m10, m11,
		qStar.X - (pStar.X*m00 + pStar.Y*m10),
		qStar.Y - (pStar.X*m01 + pStar.Y*m11),
	}
}
