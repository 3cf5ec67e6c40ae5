/*
 * rigid.go, part of molecule-aligner.
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

// Package rigid finds the atoms that move least along a structure
// sequence. Pathway assembly fits segments on a base-index subset, and
// the right subset is usually the rigid part of the system, spectator
// atoms rather than the reacting ones; this package suggests that
// subset instead of leaving the choice to inspection.
//
// The selection is iterative, in the manner of the LOVO alignment
// method (10.1371/journal.pone.0119264): align every frame on the
// current candidates, rank all atoms by mean square displacement from
// the reference, refit on the best ranked, and repeat until the
// selection stops changing.
package rigid

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	molalign "github.com/kangmg/molecule-aligner"
)

// Options modifies MostRigid.
type Options struct {
	// N is how many atoms to select. At or below zero selects a
	// quarter of the candidates, but never fewer than 3, the smallest
	// subset that pins down a rigid fit.
	N int
	// Symbols restricts the candidates to these chemical symbols.
	// Empty admits every atom; C, N, O skips the hydrogens.
	Symbols []string
	// MaxIterations caps the refit loop. The last selection is
	// returned even if it has not stabilized.
	MaxIterations int
}

// DefaultOptions returns the options MostRigid uses when given nil.
func DefaultOptions() *Options {
	return &Options{N: -1, MaxIterations: 50}
}

// Return contains the outcome of a MostRigid run.
type Return struct {
	N int
	// Indices are the N most rigid atoms, ascending.
	Indices []int
	// Candidates lists every considered atom, ascending, and MSD the
	// mean square displacement of each under the final fit.
	Candidates []int
	MSD        []float64
	Iterations int
	// Converged reports whether the selection stabilized before
	// MaxIterations ran out.
	Converged bool
}

func (R *Return) String() string {
	state := "converged"
	if !R.Converged {
		state = "not converged"
	}
	return fmt.Sprintf("%d most rigid atoms after %d iterations (%s): %v", R.N, R.Iterations, state, R.Indices)
}

// IndexList formats the selection the way the command line --indices
// flags and the pathway documents' base_indices take it.
func (R *Return) IndexList() string {
	parts := make([]string, len(R.Indices))
	for i, v := range R.Indices {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// MostRigid selects the atoms of frames that stay closest to their
// pose in the first frame once each frame is rigidly fitted on the
// selection itself. All frames must share the first frame's atom
// count and ordering.
func MostRigid(frames molalign.Sequence, o *Options) (*Return, error) {
	if o == nil {
		o = DefaultOptions()
	}
	if len(frames) < 2 {
		return nil, errors.New("rigid: need at least two frames to rank mobility")
	}
	ref := frames[0]
	candidates := filterSymbols(ref, o.Symbols)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("rigid: no atoms with symbols %v", o.Symbols)
	}
	n := o.N
	if n <= 0 {
		n = len(candidates) / 4
		if n < 3 {
			n = 3
		}
	}
	if n > len(candidates) {
		n = len(candidates)
	}
	maxIter := o.MaxIterations
	if maxIter <= 0 {
		maxIter = 50
	}

	// the first pass fits on every candidate
	msd, err := MSDSeq(frames, ref, candidates)
	if err != nil {
		return nil, err
	}
	rank := newRanking(candidates, pick(msd, candidates))
	rank.SortBy("msd")
	selected := rank.IndicesCopy()[:n]

	r := &Return{N: n}
	for {
		msd, err = MSDSeq(frames, ref, selected)
		if err != nil {
			return nil, err
		}
		rank = newRanking(candidates, pick(msd, candidates))
		rank.SortBy("msd")
		next := rank.IndicesCopy()[:n]
		r.Iterations++
		if sameElements(next, selected) {
			r.Converged = true
			break
		}
		selected = next
		if r.Iterations >= maxIter {
			log.Printf("rigid: selection still changing after %d iterations", r.Iterations)
			break
		}
	}
	sort.Ints(selected)
	rank.SortBy("index")
	r.Indices = selected
	r.Candidates = rank.IndicesCopy()
	r.MSD = rank.msds
	return r, nil
}

// MSDSeq returns the mean square displacement of every atom of ref
// over frames, fitting each frame on the indices subset first.
func MSDSeq(frames molalign.Sequence, ref *molalign.Structure, indices []int) ([]float64, error) {
	msd := make([]float64, ref.Len())
	for i, f := range frames {
		if f.Len() != ref.Len() {
			return nil, fmt.Errorf("rigid: frame %d has %d atoms, the reference %d: %w", i, f.Len(), ref.Len(), molalign.ErrAtomCountMismatch)
		}
		a, err := molalign.AlignTo(f, ref, indices)
		if err != nil {
			return nil, fmt.Errorf("rigid: frame %d: %w", i, err)
		}
		for at := 0; at < ref.Len(); at++ {
			dx := a.Coords.At(at, 0) - ref.Coords.At(at, 0)
			dy := a.Coords.At(at, 1) - ref.Coords.At(at, 1)
			dz := a.Coords.At(at, 2) - ref.Coords.At(at, 2)
			msd[at] += dx*dx + dy*dy + dz*dz
		}
	}
	for i := range msd {
		msd[i] /= float64(len(frames))
	}
	return msd, nil
}

// ranking pairs candidate indices with their displacements and sorts
// by either key.
type ranking struct {
	indices []int
	msds    []float64
	sorting string
}

func newRanking(indices []int, msds []float64) *ranking {
	r := &ranking{indices: make([]int, len(indices)), msds: msds}
	copy(r.indices, indices)
	return r
}

func (m *ranking) Len() int { return len(m.indices) }

func (m *ranking) Swap(i, j int) {
	m.indices[i], m.indices[j] = m.indices[j], m.indices[i]
	m.msds[i], m.msds[j] = m.msds[j], m.msds[i]
}

func (m *ranking) Less(i, j int) bool {
	if m.sorting == "msd" {
		return m.msds[i] < m.msds[j]
	}
	return m.indices[i] < m.indices[j]
}

func (m *ranking) SortBy(key string) {
	m.sorting = strings.ToLower(key)
	sort.Stable(m)
}

func (m *ranking) IndicesCopy() []int {
	ret := make([]int, len(m.indices))
	copy(ret, m.indices)
	return ret
}

// helper predicates

// sameElements is order-insensitive equality.
func sameElements(t1, t2 []int) bool {
	if len(t1) != len(t2) {
		return false
	}
	for _, v := range t1 {
		if !isIn(v, t2) {
			return false
		}
	}
	return true
}

func isIn(test int, container []int) bool {
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}

func isInString(test string, container []string) bool {
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}

func filterSymbols(s *molalign.Structure, symbols []string) []int {
	ret := make([]int, 0, s.Len())
	for i, at := range s.Atoms {
		if len(symbols) == 0 || isInString(at.Symbol, symbols) {
			ret = append(ret, i)
		}
	}
	return ret
}

// pick takes the msd entries of the given atoms, in their order.
func pick(msd []float64, indices []int) []float64 {
	ret := make([]float64, 0, len(indices))
	for _, i := range indices {
		ret = append(ret, msd[i])
	}
	return ret
}
