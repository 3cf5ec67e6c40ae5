/*
 * bond.go, part of molecule-aligner.
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

// Package bond detects covalent bonds from geometry and tracks how
// they change along a structure sequence. A pathway is only chemistry
// when the right bonds break and form between its endpoints; Trace
// makes that visible without loading the frames into a viewer.
//
// Detection uses the distance criterion of DOI:10.1186/1758-2946-3-33:
// two atoms bond when they sit within the sum of their covalent radii
// plus a tolerance, but not implausibly close. Atoms with a fixed
// valence then shed their longest bonds until the count fits.
package bond

import (
	"fmt"
	"math"
	"sort"

	molalign "github.com/kangmg/molecule-aligner"
)

// constants from DOI:10.1186/1758-2946-3-33
const (
	tooClose   = 0.63
	defaultTol = 0.45
)

// Covalent radii from Cordero et al., 2008 (DOI:10.1039/B801115J).
// H is raised from 0.31 so marginal X-H contacts register; the max
// bond pruning discards the spurious extras that a longer radius
// admits.
var covalentRadius = map[string]float64{
	"H":  0.4,
	"C":  0.76, //the sp3 radius
	"O":  0.66,
	"N":  0.71,
	"P":  1.07,
	"S":  1.05,
	"Se": 1.2,
	"K":  2.03,
	"Ca": 1.76,
	"Mg": 1.41,
	"Cl": 1.02,
	"Na": 1.66,
	"Cu": 1.32,
	"Zn": 1.22,
	"Co": 1.5,  //hs
	"Fe": 1.52, //hs
	"Mn": 1.61, //hs
	"Cr": 1.39,
	"Si": 1.11,
	"Be": 0.96,
	"F":  0.57,
	"Br": 1.2,
	"I":  1.39,
}

// van der Waals radii from 10.1021/j100785a001 and 10.1021/jp8111556,
// metals from 10.1023/A:1011625728803.
var vdwRadius = map[string]float64{
	"H":  1.10,
	"C":  1.70,
	"O":  1.52,
	"N":  1.55,
	"P":  1.80,
	"S":  1.80,
	"Se": 1.90,
	"K":  2.75,
	"Ca": 2.31,
	"Mg": 1.73,
	"Cl": 1.75,
	"Na": 2.27,
	"Cu": 2.00,
	"Zn": 2.02,
	"Co": 1.95,
	"Fe": 1.96,
	"Mn": 1.96,
	"Cr": 1.97,
	"Si": 2.10,
	"Be": 1.53,
	"F":  1.47,
	"Br": 1.83,
	"I":  1.98,
}

// maxBonds caps the valence of elements where the distance criterion
// alone overcounts. Zero means no cap is enforced.
var maxBonds = map[string]int{
	"H":  1, //the one that really matters
	"C":  4,
	"O":  2,
	"F":  1,
	"Br": 1,
	"I":  1,
}

// A Bond joins atoms I and J of one structure, I < J, Dist in
// angstroms.
type Bond struct {
	I, J int
	Dist float64
}

// Label names a bond after the symbols and indices of its atoms, like
// C0-H4.
func Label(s *molalign.Structure, b Bond) string {
	return fmt.Sprintf("%s%d-%s%d", s.Atoms[b.I].Symbol, b.I, s.Atoms[b.J].Symbol, b.J)
}

func dist(s *molalign.Structure, i, j int) float64 {
	dx := s.Coords.At(i, 0) - s.Coords.At(j, 0)
	dy := s.Coords.At(i, 1) - s.Coords.At(j, 1)
	dz := s.Coords.At(i, 2) - s.Coords.At(j, 2)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Detect returns the covalent bonds of s, ordered by first atom. An
// optional tolerance in angstroms widens or narrows the distance
// criterion; omitted or non-positive means the default 0.45.
func Detect(s *molalign.Structure, tol ...float64) ([]Bond, error) {
	t := defaultTol
	if len(tol) > 0 && tol[0] > 0 {
		t = tol[0]
	}
	bonds := make([]Bond, 0, s.Len())
	perAtom := make([][]int, s.Len())
	for i := 0; i < s.Len(); i++ {
		ci, ok := covalentRadius[s.Atoms[i].Symbol]
		if !ok {
			return nil, fmt.Errorf("bond: no covalent radius for %s (atom %d)", s.Atoms[i].Symbol, i)
		}
		for j := i + 1; j < s.Len(); j++ {
			cj, ok := covalentRadius[s.Atoms[j].Symbol]
			if !ok {
				return nil, fmt.Errorf("bond: no covalent radius for %s (atom %d)", s.Atoms[j].Symbol, j)
			}
			d := dist(s, i, j)
			if d < ci+cj+t && d > tooClose {
				perAtom[i] = append(perAtom[i], len(bonds))
				perAtom[j] = append(perAtom[j], len(bonds))
				bonds = append(bonds, Bond{I: i, J: j, Dist: d})
			}
		}
	}
	// shed the longest bonds of any atom over its valence cap
	removed := make([]bool, len(bonds))
	for a := 0; a < s.Len(); a++ {
		max := maxBonds[s.Atoms[a].Symbol]
		if max == 0 {
			continue
		}
		alive := make([]int, 0, len(perAtom[a]))
		for _, id := range perAtom[a] {
			if !removed[id] {
				alive = append(alive, id)
			}
		}
		sort.Slice(alive, func(i, j int) bool { return bonds[alive[i]].Dist < bonds[alive[j]].Dist })
		for len(alive) > max {
			removed[alive[len(alive)-1]] = true
			alive = alive[:len(alive)-1]
		}
	}
	kept := make([]Bond, 0, len(bonds))
	for id, b := range bonds {
		if !removed[id] {
			kept = append(kept, b)
		}
	}
	return kept, nil
}

// Diff compares the bonds of two index-compatible structures. Formed
// bonds are in b but not a, broken ones the reverse; each carries the
// distance from the frame where it exists.
func Diff(a, b *molalign.Structure, tol ...float64) (formed, broken []Bond, err error) {
	if a.Len() != b.Len() {
		return nil, nil, fmt.Errorf("bond: %d atoms against %d: %w", a.Len(), b.Len(), molalign.ErrAtomCountMismatch)
	}
	ba, err := Detect(a, tol...)
	if err != nil {
		return nil, nil, err
	}
	bb, err := Detect(b, tol...)
	if err != nil {
		return nil, nil, err
	}
	inA := make(map[[2]int]bool, len(ba))
	for _, bond := range ba {
		inA[[2]int{bond.I, bond.J}] = true
	}
	inB := make(map[[2]int]bool, len(bb))
	for _, bond := range bb {
		inB[[2]int{bond.I, bond.J}] = true
	}
	for _, bond := range bb {
		if !inA[[2]int{bond.I, bond.J}] {
			formed = append(formed, bond)
		}
	}
	for _, bond := range ba {
		if !inB[[2]int{bond.I, bond.J}] {
			broken = append(broken, bond)
		}
	}
	return formed, broken, nil
}

// A Change is one bond appearing or disappearing between consecutive
// frames. Frame indexes the first frame with the new pattern.
type Change struct {
	Bond
	Formed bool
	Frame  int
}

func (C Change) String() string {
	verb := "broken"
	if C.Formed {
		verb = "formed"
	}
	return fmt.Sprintf("frame %d: %s %d-%d (%.2f A)", C.Frame, verb, C.I, C.J, C.Dist)
}

// Trace reports every bond change along frames, in frame order. All
// frames must be index-compatible; fewer than two frames trace to
// nothing.
func Trace(frames molalign.Sequence, tol ...float64) ([]Change, error) {
	var out []Change
	for i := 1; i < len(frames); i++ {
		formed, broken, err := Diff(frames[i-1], frames[i], tol...)
		if err != nil {
			return nil, err
		}
		for _, b := range formed {
			out = append(out, Change{Bond: b, Formed: true, Frame: i})
		}
		for _, b := range broken {
			out = append(out, Change{Bond: b, Frame: i})
		}
	}
	return out, nil
}

// Clashes returns the atom pairs of s closer than scale times the sum
// of their van der Waals radii. Interpolation can drag atoms through
// each other, and a clash list spots that without a viewer. Bonded
// pairs and pairs bonded to a common atom are skipped. Non-positive
// scale means the default 0.7.
func Clashes(s *molalign.Structure, scale float64, tol ...float64) ([]Bond, error) {
	if scale <= 0 {
		scale = 0.7
	}
	bonds, err := Detect(s, tol...)
	if err != nil {
		return nil, err
	}
	adjacent := make([][]int, s.Len())
	for _, b := range bonds {
		adjacent[b.I] = append(adjacent[b.I], b.J)
		adjacent[b.J] = append(adjacent[b.J], b.I)
	}
	excluded := make(map[[2]int]bool, 3*len(bonds))
	for _, b := range bonds {
		excluded[[2]int{b.I, b.J}] = true
	}
	for _, neighbors := range adjacent {
		for x := 0; x < len(neighbors); x++ {
			for y := x + 1; y < len(neighbors); y++ {
				i, j := neighbors[x], neighbors[y]
				if i > j {
					i, j = j, i
				}
				excluded[[2]int{i, j}] = true
			}
		}
	}
	var clashes []Bond
	for i := 0; i < s.Len(); i++ {
		vi, ok := vdwRadius[s.Atoms[i].Symbol]
		if !ok {
			return nil, fmt.Errorf("bond: no van der Waals radius for %s (atom %d)", s.Atoms[i].Symbol, i)
		}
		for j := i + 1; j < s.Len(); j++ {
			if excluded[[2]int{i, j}] {
				continue
			}
			vj, ok := vdwRadius[s.Atoms[j].Symbol]
			if !ok {
				return nil, fmt.Errorf("bond: no van der Waals radius for %s (atom %d)", s.Atoms[j].Symbol, j)
			}
			if d := dist(s, i, j); d < scale*(vi+vj) {
				clashes = append(clashes, Bond{I: i, J: j, Dist: d})
			}
		}
	}
	return clashes, nil
}
