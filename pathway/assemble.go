/*
 * assemble.go, part of molecule-aligner.
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

// Package pathway assembles reaction pathways from ordered steps. Each
// step resolves to a segment of frames, interpolated between two
// structures, cut from a trajectory or holding a single pose. The
// assembler aligns every segment onto a running reference and
// concatenates the results into one continuous sequence, ready to be
// written out or inspected.
//
// Assembly is strictly sequential: with the default reference policy a
// segment is aligned against the last frame the previous step
// produced, so steps cannot be resolved out of order.
package pathway

import (
	"fmt"
	"strconv"
	"strings"

	molalign "github.com/kangmg/molecule-aligner"
	"github.com/kangmg/molecule-aligner/interp"
)

// Reference selects how the running reference behaves during assembly.
type Reference string

const (
	// First starts the reference at the first resolved frame and
	// advances it to the last aligned frame of every segment, so
	// consecutive segments connect as smoothly as a rigid fit
	// allows.
	First Reference = "first"
	// Reactant pins the reference to the first frame of the first
	// step for the whole pathway, so every frame is superposed onto
	// the reactant pose.
	Reactant Reference = "reactant"
)

// Options modifies Assemble. The zero value works: it means the First
// policy, 10-frame interpolations and IDPP with a linear fallback.
type Options struct {
	// BaseIndices is the pathway-wide fit subset. Steps may override
	// it; empty means all atoms.
	BaseIndices []int
	// Reference is the running-reference policy. Empty means First.
	Reference Reference
	// Strict turns species mismatch warnings into errors.
	Strict bool
	// Refiner serves the interpolation steps that ask for
	// refinement. Without one those steps fall back to linear paths.
	Refiner interp.Refiner
	// DefaultFrames is the length of interpolation steps that do not
	// set their own. Zero means 10.
	DefaultFrames int
	// DefaultMethod is the method of interpolation steps that do not
	// set their own. Empty means IDPP.
	DefaultMethod interp.Method
	// Progress, when set, is called with 0 before each step resolves
	// and with 100 once its frames are appended. Long assemblies can
	// report per-step progress through it.
	Progress func(step int, kind string, percent int)
}

// DefaultOptions returns the options Assemble uses when given nil.
func DefaultOptions() *Options {
	return &Options{
		Reference:     First,
		DefaultFrames: 10,
		DefaultMethod: interp.IDPP,
	}
}

// StepError labels a failure with the step that caused it. Unwrap
// exposes the cause, so errors.Is sees through to the underlying kind.
type StepError struct {
	Index int
	Kind  string
	Err   error
}

func (E *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", E.Index, E.Kind, E.Err)
}

func (E *StepError) Unwrap() error { return E.Err }

// StepReport records where a step's frames ended up in the pathway.
type StepReport struct {
	Kind string
	// First is the pathway index of the step's first frame, Frames
	// how many frames the step contributed.
	First  int
	Frames int
	// Method and Fallback are only set for interpolation steps:
	// the method that actually ran, and whether it was a fallback
	// from the requested one.
	Method   interp.Method
	Fallback bool
}

// Pathway is an assembled frame sequence plus per-step bookkeeping.
type Pathway struct {
	Frames molalign.Sequence
	Steps  []StepReport
}

// StepOf returns the index of the step that produced frame i, or -1
// when i is out of range.
func (P *Pathway) StepOf(i int) int {
	for s, r := range P.Steps {
		if i >= r.First && i < r.First+r.Frames {
			return s
		}
	}
	return -1
}

// Meta returns the provenance metadata a trajectory writer stores with
// frame i: the frame index and the step that produced it.
func (P *Pathway) Meta(i int) map[string]string {
	return map[string]string{
		"Frame": strconv.Itoa(i),
		"Step":  strconv.Itoa(P.StepOf(i)),
	}
}

func (P *Pathway) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "pathway of %d frames in %d steps", len(P.Frames), len(P.Steps))
	for i, r := range P.Steps {
		fmt.Fprintf(&b, "\n%3d %-11s %3d frames at %3d", i, r.Kind, r.Frames, r.First)
		if r.Method != "" {
			fmt.Fprintf(&b, " (%s", r.Method)
			if r.Fallback {
				b.WriteString(", fallback")
			}
			b.WriteString(")")
		}
	}
	return b.String()
}

// Assemble resolves every step in order, aligns each resolved segment
// onto the running reference over the fit subset, and concatenates the
// aligned frames. The pathway length is exactly the sum of the per-step
// frame counts; boundary frames are never deduplicated. A failing step
// aborts the whole assembly with a StepError: a partial pathway is
// never returned.
func Assemble(steps []Step, o *Options) (*Pathway, error) {
	if o == nil {
		o = DefaultOptions()
	} else {
		opt := *o
		o = &opt
	}
	if o.Reference == "" {
		o.Reference = First
	}
	if o.Reference != First && o.Reference != Reactant {
		return nil, fmt.Errorf("pathway: unknown reference policy %q", o.Reference)
	}
	if o.DefaultFrames <= 0 {
		o.DefaultFrames = 10
	}
	if o.DefaultMethod == "" {
		o.DefaultMethod = interp.IDPP
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("pathway: no steps to assemble: %w", ErrEmptySelection)
	}
	var (
		out     molalign.Sequence
		reports []StepReport
		ref     *molalign.Structure
	)
	for i, st := range steps {
		if o.Progress != nil {
			o.Progress(i, st.Kind(), 0)
		}
		frames, res, err := st.resolve(o)
		if err != nil {
			return nil, &StepError{Index: i, Kind: st.Kind(), Err: err}
		}
		idx := st.indices()
		if idx == nil {
			idx = o.BaseIndices
		}
		if ref == nil {
			ref = frames[0]
		}
		aligned, err := molalign.AlignSeq(frames, ref, idx, o.Strict)
		if err != nil {
			return nil, &StepError{Index: i, Kind: st.Kind(), Err: err}
		}
		report := StepReport{Kind: st.Kind(), First: len(out), Frames: len(aligned)}
		if res != nil {
			report.Method = res.method
			report.Fallback = res.fallback
		}
		reports = append(reports, report)
		out = append(out, aligned...)
		if o.Reference == First {
			ref = aligned[len(aligned)-1]
		}
		if o.Progress != nil {
			o.Progress(i, st.Kind(), 100)
		}
	}
	return &Pathway{Frames: out, Steps: reports}, nil
}
