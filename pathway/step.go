/*
 * step.go, part of molecule-aligner.
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

package pathway

import (
	"errors"
	"fmt"

	molalign "github.com/kangmg/molecule-aligner"
	"github.com/kangmg/molecule-aligner/interp"
)

var (
	// ErrEmptySelection flags a trajectory selection with no frames.
	ErrEmptySelection = errors.New("trajectory selection is empty")
	// ErrInvalidRepeatCount flags a frame step with a repeat below 1.
	ErrInvalidRepeatCount = errors.New("repeat count must be at least 1")
)

// A Step is one segment specification of a pathway. InterpolateStep,
// TrajectoryStep and FrameStep are the only implementations; resolution
// is package-internal, so the assembler's dispatch is closed.
type Step interface {
	// Kind names the step type in reports and errors.
	Kind() string
	// indices is the per-step fit override, nil to use the
	// pathway-wide one.
	indices() []int
	resolve(o *Options) (molalign.Sequence, *resolution, error)
}

// resolution carries what a resolver reports beyond its frames.
type resolution struct {
	method   interp.Method
	fallback bool
}

// InterpolateStep bridges two structures with interpolated frames.
type InterpolateStep struct {
	From, To *molalign.Structure
	// Frames is the segment length, endpoints included. Zero means
	// the assembler default.
	Frames int
	// Auto sizes the segment from the endpoint RMSD instead of
	// Frames.
	Auto bool
	// PerAngstrom scales Auto sizing in frames per angstrom of RMSD.
	// At or below zero the interp default applies.
	PerAngstrom float64
	// Method and Fallback override the assembler defaults. See the
	// interp package for the values.
	Method   interp.Method
	Fallback interp.Method
	// Refine overrides the refinement settings for this step.
	Refine *interp.RefineSettings
	// BaseIndices overrides the pathway-wide fit subset.
	BaseIndices []int
}

func (S *InterpolateStep) Kind() string { return "interpolate" }

func (S *InterpolateStep) indices() []int { return S.BaseIndices }

func (S *InterpolateStep) resolve(o *Options) (molalign.Sequence, *resolution, error) {
	if S.From == nil || S.To == nil {
		return nil, nil, errors.New("missing endpoint structure")
	}
	idx := S.BaseIndices
	if idx == nil {
		idx = o.BaseIndices
	}
	n := S.Frames
	if S.Auto {
		var err error
		if S.PerAngstrom > 0 {
			n, err = interp.AutoFrames(S.From, S.To, idx, S.PerAngstrom)
		} else {
			n, err = interp.AutoFrames(S.From, S.To, idx)
		}
		if err != nil {
			return nil, nil, err
		}
	} else if n == 0 {
		n = o.DefaultFrames
	}
	method := S.Method
	if method == "" {
		method = o.DefaultMethod
	}
	rv, err := interp.Path(S.From, S.To, n, &interp.Options{
		Method:      method,
		Fallback:    S.Fallback,
		BaseIndices: idx,
		Strict:      o.Strict,
		Refiner:     o.Refiner,
		Refine:      S.Refine,
	})
	if err != nil {
		return nil, nil, err
	}
	return rv.Frames, &resolution{method: rv.Method, fallback: rv.Fallback}, nil
}

// TrajectoryStep selects frames from an existing sequence, typically a
// computed trajectory read from disk.
type TrajectoryStep struct {
	Frames molalign.Sequence
	// Begin and End bound the selection as the half open range
	// [Begin, End). End at or below zero means the end of the
	// sequence; both bounds are clamped to it.
	Begin, End int
	// Skip keeps every Skip-th frame of the range. Values below 2
	// keep every frame.
	Skip int
	// Reverse flips the selection after the range and the stride are
	// applied. The order matters: reversing first would pick a
	// different subsample for Skip > 1.
	Reverse bool
	// BaseIndices overrides the pathway-wide fit subset.
	BaseIndices []int
}

func (S *TrajectoryStep) Kind() string { return "trajectory" }

func (S *TrajectoryStep) indices() []int { return S.BaseIndices }

func (S *TrajectoryStep) resolve(o *Options) (molalign.Sequence, *resolution, error) {
	begin, end := S.Begin, S.End
	if begin < 0 {
		begin = 0
	}
	if end <= 0 || end > len(S.Frames) {
		end = len(S.Frames)
	}
	if begin >= end {
		return nil, nil, fmt.Errorf("frames %d to %d of %d: %w", S.Begin, S.End, len(S.Frames), ErrEmptySelection)
	}
	skip := S.Skip
	if skip < 1 {
		skip = 1
	}
	var out molalign.Sequence
	for i := begin; i < end; i += skip {
		out = append(out, S.Frames[i])
	}
	if S.Reverse {
		out = out.Reverse()
	}
	return out, nil, nil
}

// FrameStep inserts one structure Repeat times, to hold a pose for a
// few frames of the final pathway.
type FrameStep struct {
	Source *molalign.Structure
	// Repeat must be at least 1.
	Repeat int
	// BaseIndices overrides the pathway-wide fit subset.
	BaseIndices []int
}

func (S *FrameStep) Kind() string { return "frame" }

func (S *FrameStep) indices() []int { return S.BaseIndices }

func (S *FrameStep) resolve(o *Options) (molalign.Sequence, *resolution, error) {
	if S.Source == nil {
		return nil, nil, errors.New("missing source structure")
	}
	if S.Repeat < 1 {
		return nil, nil, fmt.Errorf("repeat %d: %w", S.Repeat, ErrInvalidRepeatCount)
	}
	out := make(molalign.Sequence, S.Repeat)
	for i := range out {
		out[i] = S.Source
	}
	return out, nil, nil
}
