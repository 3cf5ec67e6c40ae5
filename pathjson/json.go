/*
 * json.go, part of molecule-aligner.
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

// Package pathjson parses pathway descriptions from JSON and
// serializes assembly reports back. A document is a list of step
// records plus pathway-wide settings; Build turns it into the steps
// and options the pathway package consumes. Structures are named
// either by file path, resolved through an injected source, or written
// inline.
//
// A minimal document:
//
//	{"steps": [
//	  {"type": "interpolate", "from": "reactant.xyz",
//	   "to": "product.xyz", "frames": "auto"}
//	]}
package pathjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	molalign "github.com/kangmg/molecule-aligner"
	"github.com/kangmg/molecule-aligner/interp"
	"github.com/kangmg/molecule-aligner/pathway"
	v3 "github.com/kangmg/molecule-aligner/v3"
)

// Document is the on-disk pathway description.
type Document struct {
	// BaseIndices is the pathway-wide fit subset.
	BaseIndices []int `json:"base_indices,omitempty"`
	// Reference is the running-reference policy, "first" or
	// "reactant".
	Reference string `json:"reference,omitempty"`
	// Settings holds the pathway-wide interpolation defaults.
	Settings *Settings    `json:"settings,omitempty"`
	Steps    []StepRecord `json:"steps"`
}

// Settings are the pathway-wide interpolation defaults.
type Settings struct {
	Frames int    `json:"default_frames,omitempty"`
	Method string `json:"default_method,omitempty"`
}

// StepRecord is one step of a Document. Which fields matter depends on
// Type: "interpolate" uses from, to, frames, method, fallback and
// options; "trajectory" uses source, frames, skip and reverse; "frame"
// uses source and repeat. Any step may override base_indices.
type StepRecord struct {
	Type string `json:"type"`

	From     *StructRef     `json:"from,omitempty"`
	To       *StructRef     `json:"to,omitempty"`
	Frames   *FrameSel      `json:"frames,omitempty"`
	Method   string         `json:"method,omitempty"`
	Fallback string         `json:"fallback,omitempty"`
	Options  *RefineOptions `json:"options,omitempty"`
	// PerAngstrom scales "auto" frame counts, in frames per angstrom.
	PerAngstrom float64 `json:"frames_per_angstrom,omitempty"`

	Source  *StructRef `json:"source,omitempty"`
	Skip    int        `json:"skip,omitempty"`
	Reverse bool       `json:"reverse,omitempty"`
	Repeat  int        `json:"repeat,omitempty"`

	BaseIndices []int `json:"base_indices,omitempty"`
}

// RefineOptions mirrors the refinement settings on the wire.
type RefineOptions struct {
	FMax      float64 `json:"fmax,omitempty"`
	Steps     int     `json:"steps,omitempty"`
	Optimizer string  `json:"optimizer,omitempty"`
	// Mic requests minimum-image distances for periodic systems.
	Mic bool `json:"mic,omitempty"`
	// TimeoutS is the refinement budget in seconds.
	TimeoutS float64 `json:"timeout_s,omitempty"`
}

// settings converts wire options to refinement settings, keeping the
// defaults for absent fields.
func (R *RefineOptions) settings() *interp.RefineSettings {
	if R == nil {
		return nil
	}
	s := interp.DefaultRefineSettings()
	if R.FMax > 0 {
		s.FMax = R.FMax
	}
	if R.Steps > 0 {
		s.MaxSteps = R.Steps
	}
	if R.Optimizer != "" {
		s.Optimizer = R.Optimizer
	}
	s.PeriodicImages = R.Mic
	if R.TimeoutS > 0 {
		s.Timeout = time.Duration(R.TimeoutS * float64(time.Second))
	}
	return s
}

// StructRef names a structure either by file path or inline, as an
// object with "symbols" and "positions" members.
type StructRef struct {
	Path      string
	Symbols   []string
	Positions [][3]float64
}

func (S *StructRef) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &S.Path)
	}
	aux := struct {
		Symbols   []string     `json:"symbols"`
		Positions [][3]float64 `json:"positions"`
	}{}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	S.Symbols = aux.Symbols
	S.Positions = aux.Positions
	return nil
}

// structure resolves the reference, through src for paths. For
// multi-frame files the first frame is taken.
func (S *StructRef) structure(src molalign.Source) (*molalign.Structure, error) {
	if S == nil {
		return nil, errors.New("missing structure")
	}
	if S.Path != "" {
		if src == nil {
			return nil, fmt.Errorf("no source to read %s through", S.Path)
		}
		frames, err := src.Read(S.Path)
		if err != nil {
			return nil, err
		}
		if len(frames) == 0 {
			return nil, fmt.Errorf("%s has no frames", S.Path)
		}
		return frames[0], nil
	}
	if len(S.Symbols) == 0 || len(S.Symbols) != len(S.Positions) {
		return nil, fmt.Errorf("inline structure with %d symbols and %d positions", len(S.Symbols), len(S.Positions))
	}
	atoms := make([]*molalign.Atom, len(S.Symbols))
	data := make([]float64, 0, 3*len(S.Symbols))
	for i, sym := range S.Symbols {
		atoms[i] = &molalign.Atom{Symbol: sym}
		data = append(data, S.Positions[i][0], S.Positions[i][1], S.Positions[i][2])
	}
	coords, err := v3.NewMatrix(data)
	if err != nil {
		return nil, err
	}
	return molalign.NewStructure(atoms, coords)
}

// FrameSel is the polymorphic "frames" member: an explicit count, the
// word "auto" (interpolation only), the word "all" or a [begin, end)
// pair (trajectory only).
type FrameSel struct {
	N     int
	Auto  bool
	All   bool
	Range *[2]int
}

func (F *FrameSel) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == `"auto"`:
		F.Auto = true
		return nil
	case s == `"all"`:
		F.All = true
		return nil
	case strings.HasPrefix(s, "["):
		var r []int
		if err := json.Unmarshal(b, &r); err != nil {
			return err
		}
		if len(r) != 2 {
			return fmt.Errorf("a frame range has 2 elements, got %d", len(r))
		}
		F.Range = &[2]int{r[0], r[1]}
		return nil
	default:
		return json.Unmarshal(b, &F.N)
	}
}

// Read parses a Document from r.
func Read(r io.Reader) (*Document, error) {
	doc := new(Document)
	if err := json.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("pathjson: decoding document: %w", err)
	}
	return doc, nil
}

// Load parses the Document stored in name.
func Load(name string) (*Document, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("pathjson: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Build turns a parsed Document into assembler input. Structures named
// by path are read through src. The returned options carry no refiner;
// wiring one in is the caller's choice, typically from the idpp
// package.
func (D *Document) Build(src molalign.Source) ([]pathway.Step, *pathway.Options, error) {
	o := pathway.DefaultOptions()
	o.BaseIndices = D.BaseIndices
	if D.Reference != "" {
		o.Reference = pathway.Reference(D.Reference)
	}
	if D.Settings != nil {
		if D.Settings.Frames > 0 {
			o.DefaultFrames = D.Settings.Frames
		}
		if D.Settings.Method != "" {
			o.DefaultMethod = interp.Method(D.Settings.Method)
		}
	}
	steps := make([]pathway.Step, 0, len(D.Steps))
	for i, rec := range D.Steps {
		st, err := rec.step(src)
		if err != nil {
			return nil, nil, fmt.Errorf("pathjson: step %d (%s): %w", i, rec.Type, err)
		}
		steps = append(steps, st)
	}
	return steps, o, nil
}

func (R *StepRecord) step(src molalign.Source) (pathway.Step, error) {
	switch R.Type {
	case "interpolate":
		from, err := R.From.structure(src)
		if err != nil {
			return nil, fmt.Errorf("from: %w", err)
		}
		to, err := R.To.structure(src)
		if err != nil {
			return nil, fmt.Errorf("to: %w", err)
		}
		st := &pathway.InterpolateStep{
			From:        from,
			To:          to,
			PerAngstrom: R.PerAngstrom,
			Method:      interp.Method(R.Method),
			Fallback:    interp.Method(R.Fallback),
			Refine:      R.Options.settings(),
			BaseIndices: R.BaseIndices,
		}
		if R.Frames != nil {
			switch {
			case R.Frames.Auto:
				st.Auto = true
			case R.Frames.All, R.Frames.Range != nil:
				return nil, errors.New(`"frames" must be a count or "auto"`)
			default:
				st.Frames = R.Frames.N
			}
		}
		return st, nil
	case "trajectory":
		if R.Source == nil || R.Source.Path == "" {
			return nil, errors.New(`a trajectory step needs a file "source"`)
		}
		if src == nil {
			return nil, fmt.Errorf("no source to read %s through", R.Source.Path)
		}
		frames, err := src.Read(R.Source.Path)
		if err != nil {
			return nil, err
		}
		st := &pathway.TrajectoryStep{
			Frames:      frames,
			Skip:        R.Skip,
			Reverse:     R.Reverse,
			BaseIndices: R.BaseIndices,
		}
		if R.Frames != nil {
			switch {
			case R.Frames.All:
			case R.Frames.Range != nil:
				st.Begin, st.End = R.Frames.Range[0], R.Frames.Range[1]
			case R.Frames.Auto:
				return nil, errors.New(`"frames" must be "all", a count or a range`)
			default:
				st.End = R.Frames.N
			}
		}
		return st, nil
	case "frame":
		s, err := R.Source.structure(src)
		if err != nil {
			return nil, fmt.Errorf("source: %w", err)
		}
		repeat := R.Repeat
		if repeat == 0 {
			repeat = 1
		}
		return &pathway.FrameStep{Source: s, Repeat: repeat, BaseIndices: R.BaseIndices}, nil
	default:
		return nil, fmt.Errorf("unknown step type %q", R.Type)
	}
}

// Report mirrors an assembled pathway for serialization: the overall
// frame count plus one record per step.
type Report struct {
	Frames int          `json:"frames"`
	Steps  []StepReport `json:"steps"`
}

// StepReport is the wire form of one step's bookkeeping.
type StepReport struct {
	Kind     string `json:"kind"`
	First    int    `json:"first"`
	Frames   int    `json:"frames"`
	Method   string `json:"method,omitempty"`
	Fallback bool   `json:"fallback,omitempty"`
}

// NewReport builds the wire report of an assembled pathway.
func NewReport(p *pathway.Pathway) *Report {
	r := &Report{Frames: len(p.Frames)}
	for _, s := range p.Steps {
		r.Steps = append(r.Steps, StepReport{
			Kind:     s.Kind,
			First:    s.First,
			Frames:   s.Frames,
			Method:   string(s.Method),
			Fallback: s.Fallback,
		})
	}
	return r
}

// Send writes the report to out as indented JSON.
func (R *Report) Send(out io.Writer) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(R); err != nil {
		return fmt.Errorf("pathjson: encoding report: %w", err)
	}
	return nil
}
