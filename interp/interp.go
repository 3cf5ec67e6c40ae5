/*
 * interp.go, part of molecule-aligner.
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

// Package interp builds interpolated paths between two conformations of
// a structure. The end structure is first rigidly aligned onto the
// start, so the interpolation only has to bridge the internal motion,
// never a rigid-body one. A path is a Sequence of frames whose first
// and last members reproduce the (aligned) endpoints exactly.
//
// Linear interpolation is built in. Anything smarter is delegated to a
// Refiner, an interface a caller plugs in; the idpp subpackage provides
// one. When the requested refiner is missing or fails, the linear path
// is returned instead and the Result records the substitution, so a
// caller can tell a refined path from a fallback without parsing logs.
package interp

import (
	"errors"
	"fmt"
	"log"
	"time"

	molalign "github.com/kangmg/molecule-aligner"
	v3 "github.com/kangmg/molecule-aligner/v3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Method names an interpolation scheme.
type Method string

const (
	// Linear places each atom on the straight segment between its
	// endpoint positions.
	Linear Method = "linear"
	// IDPP refines a linear guess toward the image dependent pair
	// potential, which favors evenly changing interatomic distances.
	IDPP Method = "idpp"
	// None is only meaningful as a fallback method and disables the
	// fallback entirely.
	None Method = "none"
)

var (
	// ErrInvalidFrameCount flags a requested path of fewer than 2 frames.
	ErrInvalidFrameCount = errors.New("frame count must be at least 2")
	// ErrInterpolationFailed flags a refinement failure with the
	// fallback disabled.
	ErrInterpolationFailed = errors.New("interpolation failed")
)

// MinAutoFrames is the smallest path length AutoFrames will suggest.
const MinAutoFrames = 5

// DefaultFramesPerAngstrom scales the AutoFrames suggestion with the
// endpoint RMSD.
const DefaultFramesPerAngstrom = 5.0

// A Refiner turns an initial path into a refined one. Implementations
// must return exactly len(frames) frames and leave the first and last
// ones untouched. The frames given to Refine are freshly allocated, so
// a refiner may relax them in place.
type Refiner interface {
	Refine(frames molalign.Sequence, s *RefineSettings) (molalign.Sequence, error)
}

// RefineSettings holds the knobs a Refiner honors. The zero value is
// not useful; start from DefaultRefineSettings.
type RefineSettings struct {
	// FMax is the convergence threshold on the largest per-atom
	// force norm.
	FMax float64
	// MaxSteps caps the optimizer iterations per image.
	MaxSteps int
	// Optimizer selects the minimizer by name. The idpp subpackage
	// understands "mdmin", "fire" and "lbfgs".
	Optimizer string
	// PeriodicImages requests minimum-image distances. A refiner
	// without cell information ignores it.
	PeriodicImages bool
	// Timeout is the wall-clock budget for the whole refinement.
	// Zero means no limit.
	Timeout time.Duration
}

// DefaultRefineSettings returns the settings used when none are given.
func DefaultRefineSettings() *RefineSettings {
	return &RefineSettings{
		FMax:      0.1,
		MaxSteps:  100,
		Optimizer: "mdmin",
	}
}

// Options modifies the behavior of Path.
type Options struct {
	// Method selects the interpolation scheme. Empty means IDPP.
	Method Method
	// Fallback is used when Method needs a refiner that is missing
	// or failing. Empty means Linear; None disables the fallback.
	Fallback Method
	// BaseIndices are the atoms the endpoint alignment is fitted on.
	// Empty means all atoms.
	BaseIndices []int
	// Strict turns the species mismatch warning into an error.
	Strict bool
	// Refiner produces refined paths for methods beyond Linear.
	Refiner Refiner
	// Refine is passed to the Refiner. Nil means defaults.
	Refine *RefineSettings
}

// DefaultOptions returns the options used by Path when given nil:
// IDPP with a linear fallback, fitted on all atoms.
func DefaultOptions() *Options {
	return &Options{
		Method:   IDPP,
		Fallback: Linear,
		Refine:   DefaultRefineSettings(),
	}
}

// Result is the outcome of a Path call.
type Result struct {
	// Frames is the path, endpoints included.
	Frames molalign.Sequence
	// Method is the scheme that actually produced the frames, which
	// differs from the requested one after a fallback.
	Method Method
	// Fallback is true when the requested method failed and the
	// linear path was kept.
	Fallback bool
	// Err is the cause of the fallback, nil otherwise.
	Err error
}

func (R *Result) String() string {
	if R.Fallback {
		return fmt.Sprintf("%d-frame path (%s, after fallback: %v)", len(R.Frames), R.Method, R.Err)
	}
	return fmt.Sprintf("%d-frame path (%s)", len(R.Frames), R.Method)
}

// Path builds an n-frame path from start to end, both endpoints
// included. End is first aligned onto start over o.BaseIndices. The
// input structures are never modified; the returned frames share the
// atom records of start but carry their own coordinates.
//
// With the IDPP method and no usable refiner, Path falls back to the
// linear path unless o.Fallback is None, in which case it returns an
// error wrapping ErrInterpolationFailed.
func Path(start, end *molalign.Structure, n int, o *Options) (*Result, error) {
	if o == nil {
		o = DefaultOptions()
	}
	if n < 2 {
		return nil, fmt.Errorf("interp: cannot build a %d-frame path: %w", n, ErrInvalidFrameCount)
	}
	method := o.Method
	if method == "" {
		method = IDPP
	}
	if method != Linear && method != IDPP {
		return nil, fmt.Errorf("interp: unknown interpolation method %q", method)
	}
	fallback := o.Fallback
	if fallback == "" {
		fallback = Linear
	}
	if fallback != Linear && fallback != None {
		return nil, fmt.Errorf("interp: unsupported fallback method %q", fallback)
	}
	if start.Len() != end.Len() {
		return nil, fmt.Errorf("interp: interpolating between %d and %d atoms: %w", start.Len(), end.Len(), molalign.ErrAtomCountMismatch)
	}
	aligned, err := molalign.AlignTo(end, start, o.BaseIndices, o.Strict)
	if err != nil {
		return nil, fmt.Errorf("interp: aligning endpoints: %w", err)
	}
	frames := linearPath(start, aligned, n)
	if method == Linear {
		return &Result{Frames: frames, Method: Linear}, nil
	}
	settings := o.Refine
	if settings == nil {
		settings = DefaultRefineSettings()
	}
	var cause error
	if o.Refiner == nil {
		cause = errors.New("no refiner configured")
	} else {
		refined, err := o.Refiner.Refine(frames, settings)
		switch {
		case err != nil:
			cause = err
		case len(refined) != n:
			cause = fmt.Errorf("refiner returned %d frames, want %d", len(refined), n)
		default:
			return &Result{Frames: refined, Method: IDPP}, nil
		}
	}
	if fallback == None {
		return nil, fmt.Errorf("interp: %s refinement failed (%v): %w", method, cause, ErrInterpolationFailed)
	}
	log.Printf("interp: %s refinement failed, keeping the linear path: %v", method, cause)
	return &Result{Frames: frames, Method: Linear, Fallback: true, Err: cause}, nil
}

// linearPath interpolates coordinates on straight segments. Endpoint
// frames are copies of the inputs, not recomputed, so they match them
// to the bit.
func linearPath(start, end *molalign.Structure, n int) molalign.Sequence {
	delta := v3.Zeros(start.Len())
	delta.Sub(end.Coords, start.Coords)
	frames := make(molalign.Sequence, n)
	first := v3.Zeros(start.Len())
	first.Copy(start.Coords)
	frames[0] = &molalign.Structure{Atoms: start.Atoms, Coords: first}
	for i := 1; i < n-1; i++ {
		c := v3.Zeros(start.Len())
		c.Scale(float64(i)/float64(n-1), delta)
		c.Add(c, start.Coords)
		frames[i] = &molalign.Structure{Atoms: start.Atoms, Coords: c}
	}
	last := v3.Zeros(start.Len())
	last.Copy(end.Coords)
	frames[n-1] = &molalign.Structure{Atoms: start.Atoms, Coords: last}
	return frames
}

// AutoFrames suggests a frame count for a path between start and end,
// scaling with the RMSD left after aligning end onto start: about
// perAngstrom frames per Angstrom of deviation, never fewer than
// MinAutoFrames. If perAngstrom is not given or not positive,
// DefaultFramesPerAngstrom is used.
func AutoFrames(start, end *molalign.Structure, indices []int, perAngstrom ...float64) (int, error) {
	per := DefaultFramesPerAngstrom
	if len(perAngstrom) > 0 && perAngstrom[0] > 0 {
		per = perAngstrom[0]
	}
	aligned, err := molalign.AlignTo(end, start, indices)
	if err != nil {
		return 0, fmt.Errorf("interp: sizing path: %w", err)
	}
	rmsd, err := start.RMSD(aligned, indices)
	if err != nil {
		return 0, fmt.Errorf("interp: sizing path: %w", err)
	}
	n := int(rmsd * per)
	if n < MinAutoFrames {
		n = MinAutoFrames
	}
	return n, nil
}

// PathQuality summarizes how evenly a path progresses. All RMSDs are
// taken between frames as given, without re-alignment.
type PathQuality struct {
	// Frames is the number of frames examined.
	Frames int
	// Span is the RMSD between the first and last frames.
	Span float64
	// Length is the sum of the RMSDs between consecutive frames.
	Length float64
	// MeanStep and StepDev are the mean and standard deviation of
	// the consecutive-frame RMSDs.
	MeanStep float64
	StepDev  float64
	// MaxStep is the largest consecutive-frame RMSD.
	MaxStep float64
}

func (Q *PathQuality) String() string {
	return fmt.Sprintf("%d frames, span %.3f A, length %.3f A, steps %.3f+-%.3f A (max %.3f A)",
		Q.Frames, Q.Span, Q.Length, Q.MeanStep, Q.StepDev, Q.MaxStep)
}

// Quality measures a path. If indices are given only those atoms enter
// the RMSDs. A path with a Length much larger than its Span doubles
// back on itself; a large StepDev means the frames are unevenly spaced.
func Quality(frames molalign.Sequence, indices []int) (*PathQuality, error) {
	if len(frames) < 2 {
		return nil, fmt.Errorf("interp: path quality needs at least 2 frames, got %d: %w", len(frames), ErrInvalidFrameCount)
	}
	steps := make([]float64, len(frames)-1)
	for i := range steps {
		r, err := frames[i].RMSD(frames[i+1], indices)
		if err != nil {
			return nil, fmt.Errorf("interp: frames %d and %d: %w", i, i+1, err)
		}
		steps[i] = r
	}
	span, err := frames[0].RMSD(frames[len(frames)-1], indices)
	if err != nil {
		return nil, fmt.Errorf("interp: endpoint frames: %w", err)
	}
	mean, dev := stat.MeanStdDev(steps, nil)
	if len(steps) < 2 {
		dev = 0
	}
	return &PathQuality{
		Frames:   len(frames),
		Span:     span,
		Length:   floats.Sum(steps),
		MeanStep: mean,
		StepDev:  dev,
		MaxStep:  floats.Max(steps),
	}, nil
}
