/*
 * bond_test.go, part of molecule-aligner.
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

package bond

import (
	"errors"
	"fmt"
	"testing"

	molalign "github.com/kangmg/molecule-aligner"
	v3 "github.com/kangmg/molecule-aligner/v3"
)

func newStruct(symbols []string, data []float64) *molalign.Structure {
	atoms := make([]*molalign.Atom, len(symbols))
	for i, s := range symbols {
		atoms[i] = &molalign.Atom{Symbol: s}
	}
	coords, err := v3.NewMatrix(data)
	if err != nil {
		panic(err.Error())
	}
	str, err := molalign.NewStructure(atoms, coords)
	if err != nil {
		panic(err.Error())
	}
	return str
}

func water() *molalign.Structure {
	return newStruct([]string{"O", "H", "H"}, []float64{
		0, 0, 0,
		0.96, 0, 0,
		-0.24, 0.93, 0,
	})
}

func TestDetect(Te *testing.T) {
	bonds, err := Detect(water())
	if err != nil {
		Te.Fatal(err)
	}
	fmt.Println(bonds)
	if len(bonds) != 2 {
		Te.Fatalf("water has %d bonds", len(bonds))
	}
	// both O-H, never the H-H contact
	for _, b := range bonds {
		if b.I != 0 {
			Te.Errorf("bond %v does not start at the oxygen", b)
		}
	}
	if Label(water(), bonds[0]) != "O0-H1" {
		Te.Errorf("label %q", Label(water(), bonds[0]))
	}
	// atoms fused together are not bonded
	squeezed, err := Detect(newStruct([]string{"H", "H"}, []float64{0, 0, 0, 0.5, 0, 0}))
	if err != nil {
		Te.Fatal(err)
	}
	if len(squeezed) != 0 {
		Te.Errorf("bond found at 0.5 A: %v", squeezed)
	}
	if _, err := Detect(newStruct([]string{"Xx"}, []float64{0, 0, 0})); err == nil {
		Te.Error("unknown element accepted")
	}
}

func TestMaxBonds(Te *testing.T) {
	// a hydrogen within bonding distance of two oxygens keeps only
	// the shorter contact
	s := newStruct([]string{"O", "H", "O"}, []float64{
		0, 0, 0,
		1.0, 0, 0,
		2.05, 0, 0,
	})
	bonds, err := Detect(s)
	if err != nil {
		Te.Fatal(err)
	}
	if len(bonds) != 1 {
		Te.Fatalf("got %v, want the single O0-H1 bond", bonds)
	}
	if bonds[0].I != 0 || bonds[0].J != 1 {
		Te.Errorf("kept %s instead of O0-H1", Label(s, bonds[0]))
	}
}

func TestTrace(Te *testing.T) {
	stretch := func(d float64) *molalign.Structure {
		return newStruct([]string{"H", "H"}, []float64{0, 0, 0, d, 0, 0})
	}
	frames := molalign.Sequence{stretch(0.74), stretch(1.10), stretch(2.0)}
	changes, err := Trace(frames)
	if err != nil {
		Te.Fatal(err)
	}
	for _, c := range changes {
		fmt.Println(c)
	}
	if len(changes) != 1 {
		Te.Fatalf("dissociation traced as %v", changes)
	}
	c := changes[0]
	if c.Formed || c.Frame != 2 || c.I != 0 || c.J != 1 {
		Te.Errorf("got %v, want the 0-1 bond broken at frame 2", c)
	}
	if c.Dist < 1.09 || c.Dist > 1.11 {
		Te.Errorf("broken bond carries distance %.2f, want the last bonded one", c.Dist)
	}

	// the reverse sequence is an association
	back := molalign.Sequence{stretch(2.0), stretch(1.10), stretch(0.74)}
	changes, err = Trace(back)
	if err != nil {
		Te.Fatal(err)
	}
	if len(changes) != 1 || !changes[0].Formed || changes[0].Frame != 1 {
		Te.Errorf("association traced as %v", changes)
	}

	mixed := molalign.Sequence{stretch(0.74), water()}
	if _, err = Trace(mixed); !errors.Is(err, molalign.ErrAtomCountMismatch) {
		Te.Errorf("atom count mismatch not reported: %v", err)
	}
}

func TestClashes(Te *testing.T) {
	// geminal hydrogens sit under the vdW sum but do not clash
	clashes, err := Clashes(water(), 0)
	if err != nil {
		Te.Fatal(err)
	}
	if len(clashes) != 0 {
		Te.Errorf("water clashes with itself: %v", clashes)
	}
	// an unbound oxygen pressed against a C-H fragment does
	s := newStruct([]string{"C", "H", "O"}, []float64{
		0, 0, 0,
		1.0, 0, 0,
		0, 2.0, 0,
	})
	clashes, err = Clashes(s, 0)
	if err != nil {
		Te.Fatal(err)
	}
	if len(clashes) != 1 || clashes[0].I != 0 || clashes[0].J != 2 {
		Te.Fatalf("got %v, want the single C0-O2 clash", clashes)
	}
	// a tighter threshold clears it
	clashes, err = Clashes(s, 0.5)
	if err != nil {
		Te.Fatal(err)
	}
	if len(clashes) != 0 {
		Te.Errorf("clashes at half the vdW sum: %v", clashes)
	}
}
