/*
 * v3_test.go, part of molecule-aligner.
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

package v3

import (
	"fmt"
	"math"
	"testing"
)

func TestNewMatrix(Te *testing.T) {
	a := []float64{1.0, 2.0, 3, 4, 5, 6, 7, 8, 9}
	A, err := NewMatrix(a)
	if err != nil {
		Te.Error(err)
	}
	if A.NVecs() != 3 {
		Te.Errorf("wrong number of vectors: %d", A.NVecs())
	}
	fmt.Println(A)
	_, err = NewMatrix([]float64{1, 2, 3, 4})
	if err == nil {
		Te.Error("expected an error for a slice not divisible by 3")
	}
	View := A.VecView(1)
	View.Set(0, 0, 100)
	if A.At(1, 0) != 100 {
		Te.Error("changes in a view should be reflected in the viewed matrix")
	}
	fmt.Println("View\n", A, "\n", View)
}

func TestSomeVecs(Te *testing.T) {
	a := []float64{1.0, 2.0, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18}
	A, err := NewMatrix(a)
	if err != nil {
		Te.Error(err)
	}
	B := Zeros(3)
	cind := []int{1, 3, 5}
	B.SomeVecs(A, cind)
	for key, val := range cind {
		for j := 0; j < 3; j++ {
			if B.At(key, j) != A.At(val, j) {
				Te.Errorf("vector %d not extracted correctly", val)
			}
		}
	}
	fmt.Println(A, "\n", B)
}

func TestVecOps(Te *testing.T) {
	a := []float64{1.0, 2.0, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	A, err := NewMatrix(a)
	if err != nil {
		Te.Error(err)
	}
	row, err := NewMatrix([]float64{10, 20, 30})
	if err != nil {
		Te.Error(err)
	}
	B := Zeros(A.NVecs())
	B.AddVec(A, row)
	if B.At(0, 0) != 11 || B.At(3, 2) != 42 {
		Te.Error("AddVec gave a wrong result", B)
	}
	B.SubVec(B, row)
	for i := 0; i < A.NVecs(); i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(B.At(i, j)-A.At(i, j)) > 1e-12 {
				Te.Error("SubVec did not undo AddVec", A, B)
			}
		}
	}
	A.Scale(3, A)
	if A.At(0, 0) != 3 {
		Te.Error("Scale gave a wrong result", A)
	}
	fmt.Println("Additions", A, "\n", B)
}
