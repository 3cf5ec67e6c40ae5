/*
 * interp_test.go, part of molecule-aligner.
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

package interp

import (
	"errors"
	"fmt"
	"math"
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

func maxDiff(a, b *v3.Matrix) float64 {
	var max float64
	for i := 0; i < a.NVecs(); i++ {
		for j := 0; j < 3; j++ {
			if d := math.Abs(a.At(i, j) - b.At(i, j)); d > max {
				max = d
			}
		}
	}
	return max
}

// fakeRefiner stands in for the idpp package: it records the settings
// it was handed and nudges one interior atom so refinement is visible.
type fakeRefiner struct {
	fail   bool
	badLen bool
	called bool
	got    *RefineSettings
}

func (F *fakeRefiner) Refine(frames molalign.Sequence, s *RefineSettings) (molalign.Sequence, error) {
	F.called = true
	F.got = s
	if F.fail {
		return nil, errors.New("deliberate failure")
	}
	if F.badLen {
		return frames[:len(frames)-1], nil
	}
	out := make(molalign.Sequence, len(frames))
	copy(out, frames)
	if len(out) > 2 {
		c := v3.Zeros(out[1].Len())
		c.Copy(out[1].Coords)
		c.Set(0, 0, c.At(0, 0)+0.01)
		out[1] = &molalign.Structure{Atoms: out[1].Atoms, Coords: c}
	}
	return out, nil
}

var ethaneLike = []string{"C", "C"}

func TestLinearPath(Te *testing.T) {
	start := newStruct(ethaneLike, []float64{
		0, 0, 0,
		1.4, 0, 0,
	})
	end := newStruct(ethaneLike, []float64{
		0, 0, 0,
		2.6, 0, 0,
	})
	endBefore := v3.Zeros(end.Len())
	endBefore.Copy(end.Coords)
	rv, err := Path(start, end, 5, &Options{Method: Linear})
	if err != nil {
		Te.Fatal(err)
	}
	if len(rv.Frames) != 5 {
		Te.Fatalf("expected 5 frames, got %d", len(rv.Frames))
	}
	if rv.Method != Linear || rv.Fallback || rv.Err != nil {
		Te.Errorf("unexpected result state: %v", rv)
	}
	if maxDiff(rv.Frames[0].Coords, start.Coords) != 0 {
		Te.Error("first frame does not reproduce the start exactly")
	}
	if maxDiff(end.Coords, endBefore) != 0 {
		Te.Error("Path mutated the end structure")
	}
	// the middle frame must be the exact average of the endpoints
	mid := v3.Zeros(start.Len())
	mid.Add(rv.Frames[0].Coords, rv.Frames[4].Coords)
	mid.Scale(0.5, mid)
	if d := maxDiff(rv.Frames[2].Coords, mid); d > 1e-12 {
		Te.Errorf("middle frame off the segment midpoint by %g", d)
	}
	fmt.Println(rv)
}

func TestPathEndpointFidelity(Te *testing.T) {
	start := newStruct(ethaneLike, []float64{
		0, 0, 0,
		1.4, 0, 0,
	})
	end := newStruct(ethaneLike, []float64{
		3, 1, 0,
		3, 2.6, 0,
	})
	rv, err := Path(start, end, 3, &Options{Method: Linear})
	if err != nil {
		Te.Fatal(err)
	}
	aligned, err := molalign.AlignTo(end, start, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if maxDiff(rv.Frames[2].Coords, aligned.Coords) != 0 {
		Te.Error("last frame does not reproduce the aligned end exactly")
	}
}

func TestPathValidation(Te *testing.T) {
	a := newStruct(ethaneLike, []float64{
		0, 0, 0,
		1.4, 0, 0,
	})
	b := newStruct([]string{"C"}, []float64{0, 0, 0})
	if _, err := Path(a, a, 1, nil); !errors.Is(err, ErrInvalidFrameCount) {
		Te.Errorf("expected an invalid frame count, got %v", err)
	}
	if _, err := Path(a, b, 5, nil); !errors.Is(err, molalign.ErrAtomCountMismatch) {
		Te.Errorf("expected an atom count mismatch, got %v", err)
	}
	if _, err := Path(a, a, 5, &Options{Method: "spline"}); err == nil {
		Te.Error("an unknown method went through")
	}
	if _, err := Path(a, a, 5, &Options{Fallback: IDPP}); err == nil {
		Te.Error("an unsupported fallback went through")
	}
}

func TestFallback(Te *testing.T) {
	start := newStruct(ethaneLike, []float64{
		0, 0, 0,
		1.4, 0, 0,
	})
	end := newStruct(ethaneLike, []float64{
		0, 0, 0,
		2.6, 0, 0,
	})
	// no refiner at all
	rv, err := Path(start, end, 5, &Options{Method: IDPP})
	if err != nil {
		Te.Fatal(err)
	}
	if !rv.Fallback || rv.Method != Linear || rv.Err == nil {
		Te.Errorf("missing refiner should fall back to linear, got %v", rv)
	}
	// a refiner that fails
	rv, err = Path(start, end, 5, &Options{Method: IDPP, Refiner: &fakeRefiner{fail: true}})
	if err != nil {
		Te.Fatal(err)
	}
	if !rv.Fallback || rv.Err == nil {
		Te.Errorf("failing refiner should fall back to linear, got %v", rv)
	}
	// a refiner that returns the wrong number of frames
	rv, err = Path(start, end, 5, &Options{Method: IDPP, Refiner: &fakeRefiner{badLen: true}})
	if err != nil {
		Te.Fatal(err)
	}
	if !rv.Fallback {
		Te.Errorf("truncating refiner should fall back to linear, got %v", rv)
	}
	// fallback disabled
	_, err = Path(start, end, 5, &Options{Method: IDPP, Fallback: None})
	if !errors.Is(err, ErrInterpolationFailed) {
		Te.Errorf("expected an interpolation failure, got %v", err)
	}
	fmt.Println(rv)
}

func TestRefineSuccess(Te *testing.T) {
	start := newStruct(ethaneLike, []float64{
		0, 0, 0,
		1.4, 0, 0,
	})
	end := newStruct(ethaneLike, []float64{
		0, 0, 0,
		2.6, 0, 0,
	})
	fake := &fakeRefiner{}
	settings := &RefineSettings{FMax: 0.05, MaxSteps: 7, Optimizer: "fire"}
	rv, err := Path(start, end, 5, &Options{Method: IDPP, Refiner: fake, Refine: settings})
	if err != nil {
		Te.Fatal(err)
	}
	if !fake.called {
		Te.Fatal("the refiner was never called")
	}
	if fake.got.FMax != 0.05 || fake.got.MaxSteps != 7 {
		Te.Errorf("settings were not passed through: %+v", fake.got)
	}
	if rv.Method != IDPP || rv.Fallback {
		Te.Errorf("unexpected result state: %v", rv)
	}
	linear, err := Path(start, end, 5, &Options{Method: Linear})
	if err != nil {
		Te.Fatal(err)
	}
	nudge := rv.Frames[1].Coords.At(0, 0) - linear.Frames[1].Coords.At(0, 0)
	if math.Abs(nudge-0.01) > 1e-12 {
		Te.Errorf("refined frames were not the ones the refiner returned (nudge %g)", nudge)
	}
}

func TestAutoFrames(Te *testing.T) {
	start := newStruct(ethaneLike, []float64{
		0, 0, 0,
		1.0, 0, 0,
	})
	far := newStruct(ethaneLike, []float64{
		0, 0, 0,
		9.2, 0, 0,
	})
	near := newStruct(ethaneLike, []float64{
		0, 0, 0,
		1.4, 0, 0,
	})
	// the aligned residual is half the stretch: 4.1 A here
	n, err := AutoFrames(start, far, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if n != 20 {
		Te.Errorf("expected 20 frames for a 4.1 A deviation, got %d", n)
	}
	n, err = AutoFrames(start, near, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if n != MinAutoFrames {
		Te.Errorf("expected the %d-frame floor, got %d", MinAutoFrames, n)
	}
	n, err = AutoFrames(start, far, nil, 2)
	if err != nil {
		Te.Fatal(err)
	}
	if n != 8 {
		Te.Errorf("expected 8 frames at 2 frames per Angstrom, got %d", n)
	}
}

func TestQuality(Te *testing.T) {
	frames := molalign.Sequence{
		newStruct([]string{"H"}, []float64{0, 0, 0}),
		newStruct([]string{"H"}, []float64{1, 0, 0}),
		newStruct([]string{"H"}, []float64{2, 0, 0}),
	}
	q, err := Quality(frames, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(q.Span-2) > 1e-12 || math.Abs(q.Length-2) > 1e-12 {
		Te.Errorf("wrong span or length: %v", q)
	}
	if math.Abs(q.MeanStep-1) > 1e-12 || q.StepDev > 1e-12 || math.Abs(q.MaxStep-1) > 1e-12 {
		Te.Errorf("wrong step statistics: %v", q)
	}
	if _, err := Quality(frames[:1], nil); !errors.Is(err, ErrInvalidFrameCount) {
		Te.Errorf("expected an invalid frame count, got %v", err)
	}
	fmt.Println(q)
}
