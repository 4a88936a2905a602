// Package mls implements image deformation using moving least squares.
//
// Given a sparse set of control point correspondences — pairs of source and
// destination points — the package derives, for any query location, the
// locally optimal transform that best explains the correspondences near that
// location, weighted inversely by distance. Evaluating that transform densely
// over a pixel grid deforms an entire image smoothly: regions near a control
// point follow it closely, regions far from all control points barely move.
//
// # Deformation variants
//
// Three variants are provided, in increasing order of stiffness:
//
//   - [DeformAffine] fits an unconstrained affine transform per query point.
//     It is the cheapest variant but permits shear and non-uniform scaling,
//     which can look unnatural for image manipulation.
//   - [DeformSimilarity] fits a rotation, uniform scale, and translation.
//   - [DeformRigid] fits a rotation and translation only. It preserves local
//     shape best and is usually the variant you want for deforming
//     photographs.
//
// All three have closed-form solutions; no iterative solver is involved. They
// are pure functions of their arguments and safe for concurrent use.
//
// The variants can be selected dynamically through [Kind], which implements
// the [Deformer] interface consumed by [Warp]. The weighting falloff exponent
// can be adjusted with [Deformation].
//
// # Warping images
//
// [Warp] deforms a dense image by reverse mapping: for every output pixel it
// evaluates the inverse deformation to find the source location to sample,
// then interpolates bilinearly. [WarpSparse] trades a little accuracy for
// speed by evaluating the deformation on a subsampled grid only. Both can
// spread the work across goroutines, see [WarpOpts].
//
// # Literature
//
// The algorithms follow [Image Deformation Using Moving Least Squares] by
// Schaefer, McPhail and Warren (SIGGRAPH 2006). Equation references in the
// source refer to that paper.
//
// [Image Deformation Using Moving Least Squares]: https://people.engr.tamu.edu/schaefer/research/mls.pdf
package mls
