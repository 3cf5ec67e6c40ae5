/*
 * superpose.go, part of molecule-aligner.
 *
 * Copyright 2026 The molecule-aligner developers
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package molalign

import (
	"fmt"
	"math"

	v3 "github.com/kangmg/molecule-aligner/v3"
	"gonum.org/v1/gonum/mat"
)

// Transform is a rigid-body transformation: a 3x3 proper rotation and a
// 1x3 translation. It acts on row-vector coordinates as
// transformed = coords*Rotation + Translation.
type Transform struct {
	Rotation    *v3.Matrix
	Translation *v3.Matrix
}

// Apply returns a new matrix with the transform applied to every vector
// of coords. The input is not modified.
func (T *Transform) Apply(coords *v3.Matrix) *v3.Matrix {
	out := v3.Zeros(coords.NVecs())
	out.Mul(coords, T.Rotation)
	out.AddVec(out, T.Translation)
	return out
}

// String returns a printable representation of the transform.
func (T *Transform) String() string {
	return fmt.Sprintf("rotation:%vtranslation:%v", T.Rotation, T.Translation)
}

// Superpose computes the rigid transform that superposes the moving
// points onto the reference points with the smallest possible RMSD
// (Kabsch). Both matrices must have the same number of vectors; three
// or more points in general position determine the transform fully.
//
// The rotation returned is always proper (determinant +1). When the
// unconstrained optimum is an improper rotation, as happens between
// mirror-image point sets, the smallest singular direction of the
// cross-covariance matrix is flipped. Without that correction the
// superposition would silently turn a structure into its specular
// image.
func Superpose(moving, reference *v3.Matrix) (*Transform, error) {
	n := moving.NVecs()
	if n != reference.NVecs() {
		return nil, fmt.Errorf("molalign: superposing %d points onto %d: %w", n, reference.NVecs(), ErrShapeMismatch)
	}
	if n < 1 {
		return nil, fmt.Errorf("molalign: superposition needs at least one point: %w", ErrShapeMismatch)
	}
	cmov := Centroid(moving)
	cref := Centroid(reference)
	p := v3.Zeros(n)
	q := v3.Zeros(n)
	p.SubVec(moving, cmov)
	q.SubVec(reference, cref)
	var cov mat.Dense
	cov.Mul(p.T(), q)
	var svd mat.SVD
	if ok := svd.Factorize(&cov, mat.SVDFull); !ok {
		return nil, fmt.Errorf("molalign: SVD of the cross-covariance matrix did not converge")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	if mat.Det(&u)*mat.Det(&v) < 0 {
		for i := 0; i < 3; i++ {
			u.Set(i, 2, -u.At(i, 2))
		}
	}
	var r mat.Dense
	r.Mul(&u, v.T())
	rot := v3.Dense2Matrix(&r)
	trans := v3.Zeros(1)
	trans.Mul(cmov, rot)
	trans.Sub(cref, trans)
	return &Transform{Rotation: rot, Translation: trans}, nil
}

// Centroid returns the geometric center of the points in m as a 1x3
// matrix. Masses are not considered.
func Centroid(m *v3.Matrix) *v3.Matrix {
	c := v3.Zeros(1)
	n := m.NVecs()
	if n == 0 {
		return c
	}
	for i := 0; i < n; i++ {
		c.Add(c, m.VecView(i))
	}
	c.Scale(1/float64(n), c)
	return c
}

// RMSD returns the root mean square deviation between two coordinate
// sets of the same size, without superposing them first.
func RMSD(test, reference *v3.Matrix) (float64, error) {
	tr := test.NVecs()
	rr := reference.NVecs()
	if tr != rr {
		return 0, fmt.Errorf("molalign: RMSD between %d and %d points: %w", tr, rr, ErrShapeMismatch)
	}
	if tr == 0 {
		return 0, fmt.Errorf("molalign: RMSD of empty coordinate sets: %w", ErrShapeMismatch)
	}
	var sum float64
	for i := 0; i < tr; i++ {
		for j := 0; j < 3; j++ {
			d := test.At(i, j) - reference.At(i, j)
			sum += d * d
		}
	}
	return math.Sqrt(sum / float64(tr)), nil
}
