/*
 * rigid_test.go, part of molecule-aligner.
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

package rigid

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

// swingFrames builds 4 frames of a 5 atom system. Atom 0 never moves,
// atoms 1 to 3 jitter by growing amounts and atom 4 swings around, so
// the rigidity ranking is 0 < 1 < 2 < 3 << 4 under any sensible fit.
func swingFrames(symbols []string) molalign.Sequence {
	frames := make(molalign.Sequence, 0, 4)
	for f := 0; f < 4; f++ {
		sign := float64(1 - 2*(f%2))
		frames = append(frames, newStruct(symbols, []float64{
			0, 0, 0,
			1.5 + sign*0.01, 0.5, 0,
			0, 1.5 + sign*0.02, 0,
			-1.2, -0.8, 1.0 + sign*0.03,
			3, 0, float64(f) * 1.5,
		}))
	}
	return frames
}

func TestMostRigid(Te *testing.T) {
	frames := swingFrames([]string{"C", "H", "C", "C", "C"})
	r, err := MostRigid(frames, nil)
	if err != nil {
		Te.Fatal(err)
	}
	fmt.Println(r)
	if r.N != 3 {
		Te.Errorf("default selection size: got %d, want 3", r.N)
	}
	want := []int{0, 1, 2}
	if len(r.Indices) != len(want) {
		Te.Fatalf("selected %v", r.Indices)
	}
	for i, v := range want {
		if r.Indices[i] != v {
			Te.Errorf("selected %v, want %v", r.Indices, want)
			break
		}
	}
	if !r.Converged {
		Te.Error("selection did not converge")
	}
	if r.IndexList() != "0,1,2" {
		Te.Errorf("IndexList: %q", r.IndexList())
	}
	if len(r.Candidates) != 5 || len(r.MSD) != 5 {
		Te.Fatalf("got %d candidates and %d displacements", len(r.Candidates), len(r.MSD))
	}
	// the swinging atom must carry the largest displacement
	for i := 0; i < 4; i++ {
		if r.MSD[4] <= r.MSD[i] {
			Te.Errorf("MSD[4]=%.4f not above MSD[%d]=%.4f", r.MSD[4], i, r.MSD[i])
		}
	}
}

func TestMostRigidSymbols(Te *testing.T) {
	frames := swingFrames([]string{"C", "H", "C", "C", "C"})
	r, err := MostRigid(frames, &Options{N: 3, Symbols: []string{"C"}, MaxIterations: 50})
	if err != nil {
		Te.Fatal(err)
	}
	wantCand := []int{0, 2, 3, 4}
	if len(r.Candidates) != len(wantCand) {
		Te.Fatalf("candidates %v", r.Candidates)
	}
	for i, v := range wantCand {
		if r.Candidates[i] != v {
			Te.Errorf("candidates %v, want %v", r.Candidates, wantCand)
			break
		}
	}
	// the hydrogen is out and the swinging atom ranks last
	want := []int{0, 2, 3}
	for i, v := range want {
		if r.Indices[i] != v {
			Te.Errorf("selected %v, want %v", r.Indices, want)
			break
		}
	}
}

func TestMSDSeq(Te *testing.T) {
	symbols := []string{"C", "C", "O"}
	ref := newStruct(symbols, []float64{0, 0, 0, 1.4, 0, 0, 0, 1.2, 0})
	// a rigidly translated copy must show no displacement after the fit
	moved := newStruct(symbols, []float64{3, 3, 3, 4.4, 3, 3, 3, 4.2, 3})
	msd, err := MSDSeq(molalign.Sequence{ref, moved}, ref, nil)
	if err != nil {
		Te.Fatal(err)
	}
	for i, v := range msd {
		if v > 1e-10 {
			Te.Errorf("atom %d moved by %.2e under a rigid translation", i, v)
		}
	}
}

func TestMostRigidErrors(Te *testing.T) {
	symbols := []string{"C", "H", "C", "C", "C"}
	frames := swingFrames(symbols)
	if _, err := MostRigid(frames[:1], nil); err == nil {
		Te.Error("single frame accepted")
	}
	if _, err := MostRigid(frames, &Options{Symbols: []string{"Xx"}}); err == nil {
		Te.Error("selection from absent symbols accepted")
	}
	short := append(molalign.Sequence{}, frames...)
	short[2] = newStruct([]string{"C"}, []float64{0, 0, 0})
	_, err := MostRigid(short, nil)
	if !errors.Is(err, molalign.ErrAtomCountMismatch) {
		Te.Errorf("atom count mismatch not reported: %v", err)
	}
}
