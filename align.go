/*
 * align.go, part of molecule-aligner.
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
	"log"

	v3 "github.com/kangmg/molecule-aligner/v3"
)

// AlignTo returns a new structure with s rigidly transformed so that
// its atoms at the given indices superpose onto the same atoms of ref.
// Only the atoms at indices influence the fit, but the transform is
// applied to the whole structure, so the two structures may differ in
// atom count as long as all indices are valid in both. An empty or nil
// index list fits on all atoms, which then requires equal atom counts.
//
// The returned structure shares the atom identities of s. A species
// mismatch between fitted atom pairs is logged as a warning; passing
// strict as true turns it into an error instead.
func AlignTo(s, ref *Structure, indices []int, strict ...bool) (*Structure, error) {
	idx := indices
	if len(idx) == 0 {
		if s.Len() != ref.Len() {
			return nil, fmt.Errorf("molalign: aligning on all atoms needs equal atom counts, got %d and %d: %w", s.Len(), ref.Len(), ErrAtomCountMismatch)
		}
		idx = make([]int, s.Len())
		for i := range idx {
			idx[i] = i
		}
	}
	if err := checkIndices(s, ref, idx); err != nil {
		return nil, err
	}
	if err := checkSpecies(s, ref, idx, len(strict) > 0 && strict[0]); err != nil {
		return nil, err
	}
	sub := v3.Zeros(len(idx))
	sub.SomeVecs(s.Coords, idx)
	refsub := v3.Zeros(len(idx))
	refsub.SomeVecs(ref.Coords, idx)
	T, err := Superpose(sub, refsub)
	if err != nil {
		return nil, err
	}
	return NewStructure(s.Atoms, T.Apply(s.Coords))
}

// AlignSeq aligns every frame of the sequence onto ref, fitting on the
// atoms at the given indices as AlignTo does. It returns a new sequence
// of the same length; the input frames are untouched.
func AlignSeq(frames Sequence, ref *Structure, indices []int, strict ...bool) (Sequence, error) {
	out := make(Sequence, len(frames))
	for i, f := range frames {
		a, err := AlignTo(f, ref, indices, strict...)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		out[i] = a
	}
	return out, nil
}

func checkIndices(s, ref *Structure, indices []int) error {
	for _, i := range indices {
		if i < 0 || i >= s.Len() || i >= ref.Len() {
			return fmt.Errorf("molalign: base index %d outside structures with %d and %d atoms: %w", i, s.Len(), ref.Len(), ErrIndexOutOfRange)
		}
	}
	return nil
}

func checkSpecies(s, ref *Structure, indices []int, strict bool) error {
	mismatches := 0
	for _, i := range indices {
		if s.Atoms[i].Symbol != ref.Atoms[i].Symbol {
			mismatches++
		}
	}
	if mismatches == 0 {
		return nil
	}
	if strict {
		return fmt.Errorf("molalign: %d of %d fitted atoms differ in species from the reference: %w", mismatches, len(indices), ErrAtomCountMismatch)
	}
	log.Printf("molalign: %d of %d fitted atoms differ in species from the reference", mismatches, len(indices))
	return nil
}
