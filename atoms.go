/*
 * atoms.go, part of molecule-aligner.
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
	"strings"

	v3 "github.com/kangmg/molecule-aligner/v3"
)

// Atom is the identity of one atom in a structure. Positions live in
// the containing Structure, so the same Atom can back several frames.
type Atom struct {
	Symbol string //chemical symbol, as it appears in an xyz file.
}

// Structure is one frame: an ordered list of atoms plus one coordinate
// matrix with a row per atom. Functions in this library treat
// structures as immutable and return new ones instead of modifying
// their inputs; structures derived from s share the atom identities of
// s unless stated otherwise, while coordinates are always freshly
// allocated.
type Structure struct {
	Atoms  []*Atom
	Coords *v3.Matrix
}

// NewStructure assembles a structure from atoms and coordinates. The
// given slices are stored, not copied. It fails if the atom count does
// not match the number of coordinate rows.
func NewStructure(atoms []*Atom, coords *v3.Matrix) (*Structure, error) {
	if coords == nil {
		return nil, fmt.Errorf("molalign: nil coordinates for %d atoms: %w", len(atoms), ErrShapeMismatch)
	}
	if len(atoms) != coords.NVecs() {
		return nil, fmt.Errorf("molalign: %d atoms for %d coordinate rows: %w", len(atoms), coords.NVecs(), ErrAtomCountMismatch)
	}
	return &Structure{Atoms: atoms, Coords: coords}, nil
}

// Len returns the number of atoms in the structure.
func (S *Structure) Len() int {
	return len(S.Atoms)
}

// Copy returns a deep copy of the structure: both the atoms and the
// coordinates are newly allocated.
func (S *Structure) Copy() *Structure {
	atoms := make([]*Atom, len(S.Atoms))
	for i, at := range S.Atoms {
		a := *at
		atoms[i] = &a
	}
	coords := v3.Zeros(S.Len())
	coords.Copy(S.Coords)
	return &Structure{Atoms: atoms, Coords: coords}
}

// Formula returns the chemical symbols of the structure concatenated in
// atom order, mostly for error messages and quick checks.
func (S *Structure) Formula() string {
	var b strings.Builder
	for _, at := range S.Atoms {
		b.WriteString(at.Symbol)
	}
	return b.String()
}

// RMSD returns the RMSD between the structure and other without any
// prior superposition. If an index list is given, only the atoms at
// those indices are considered; otherwise all atoms are, which requires
// equal atom counts.
func (S *Structure) RMSD(other *Structure, indices ...[]int) (float64, error) {
	if len(indices) > 0 && len(indices[0]) > 0 {
		idx := indices[0]
		if err := checkIndices(S, other, idx); err != nil {
			return 0, err
		}
		a := v3.Zeros(len(idx))
		a.SomeVecs(S.Coords, idx)
		b := v3.Zeros(len(idx))
		b.SomeVecs(other.Coords, idx)
		return RMSD(a, b)
	}
	if S.Len() != other.Len() {
		return 0, fmt.Errorf("molalign: RMSD between structures with %d and %d atoms: %w", S.Len(), other.Len(), ErrAtomCountMismatch)
	}
	return RMSD(S.Coords, other.Coords)
}

// Sequence is an ordered list of structures along a path. The order is
// meaningful: it is the time or reaction-coordinate axis.
type Sequence []*Structure

// Reverse returns a new sequence with the frames in opposite order. The
// frames themselves are shared, not copied.
func (S Sequence) Reverse() Sequence {
	r := make(Sequence, len(S))
	for i, v := range S {
		r[len(S)-1-i] = v
	}
	return r
}
