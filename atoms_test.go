/*
 * atoms_test.go, part of molecule-aligner.
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
	"errors"
	"testing"

	v3 "github.com/kangmg/molecule-aligner/v3"
)

func TestNewStructure(Te *testing.T) {
	atoms := []*Atom{{Symbol: "O"}, {Symbol: "H"}, {Symbol: "H"}}
	coords, _ := v3.NewMatrix([]float64{
		0, 0, 0,
		0.96, 0, 0,
		-0.24, 0.93, 0,
	})
	s, err := NewStructure(atoms, coords)
	if err != nil {
		Te.Fatal(err)
	}
	if s.Len() != 3 {
		Te.Errorf("wrong length %d", s.Len())
	}
	if f := s.Formula(); f != "OHH" {
		Te.Errorf("wrong formula %q", f)
	}
	if _, err := NewStructure(atoms, v3.Zeros(2)); !errors.Is(err, ErrAtomCountMismatch) {
		Te.Errorf("expected an atom count mismatch, got %v", err)
	}
	if _, err := NewStructure(atoms, nil); !errors.Is(err, ErrShapeMismatch) {
		Te.Errorf("expected a shape mismatch for nil coordinates, got %v", err)
	}
}

func TestStructureCopy(Te *testing.T) {
	s := testStructure([]string{"C", "O"}, []float64{
		0, 0, 0,
		1.2, 0, 0,
	})
	c := s.Copy()
	c.Coords.Set(0, 0, 99)
	c.Atoms[0].Symbol = "N"
	if s.Coords.At(0, 0) != 0 {
		Te.Error("copying shared coordinates with the original")
	}
	if s.Atoms[0].Symbol != "C" {
		Te.Error("copying shared atoms with the original")
	}
}

func TestStructureRMSD(Te *testing.T) {
	a := testStructure([]string{"C", "C"}, []float64{
		0, 0, 0,
		1, 0, 0,
	})
	b := testStructure([]string{"C", "C"}, []float64{
		0, 0, 3,
		1, 0, 3,
	})
	rmsd, err := a.RMSD(b)
	if err != nil {
		Te.Fatal(err)
	}
	if rmsd != 3 {
		Te.Errorf("expected an RMSD of 3, got %f", rmsd)
	}
	rmsd, err = a.RMSD(b, []int{1})
	if err != nil {
		Te.Fatal(err)
	}
	if rmsd != 3 {
		Te.Errorf("expected a subset RMSD of 3, got %f", rmsd)
	}
	if _, err := a.RMSD(b, []int{5}); !errors.Is(err, ErrIndexOutOfRange) {
		Te.Errorf("expected an out of range error, got %v", err)
	}
}

func TestSequenceReverse(Te *testing.T) {
	a := testStructure([]string{"H"}, []float64{0, 0, 0})
	b := testStructure([]string{"H"}, []float64{1, 0, 0})
	c := testStructure([]string{"H"}, []float64{2, 0, 0})
	seq := Sequence{a, b, c}
	rev := seq.Reverse()
	if rev[0] != c || rev[1] != b || rev[2] != a {
		Te.Error("wrong frame order after reversal")
	}
	if seq[0] != a {
		Te.Error("reversal mutated the original sequence")
	}
}
