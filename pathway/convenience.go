/*
 * convenience.go, part of molecule-aligner.
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
	molalign "github.com/kangmg/molecule-aligner"
	"github.com/kangmg/molecule-aligner/interp"
)

// Chain builds the steps for a pathway visiting the given structures in
// order: one interpolation step per consecutive pair. Zero frames means
// the assembler default; an empty method means the assembler default
// too.
func Chain(structures []*molalign.Structure, frames int, method interp.Method) []Step {
	var steps []Step
	for i := 0; i+1 < len(structures); i++ {
		steps = append(steps, &InterpolateStep{
			From:   structures[i],
			To:     structures[i+1],
			Frames: frames,
			Method: method,
		})
	}
	return steps
}

// Cyclic is Chain with a closing interpolation from the last structure
// back to the first, for pathways meant to loop.
func Cyclic(structures []*molalign.Structure, frames int, method interp.Method) []Step {
	steps := Chain(structures, frames, method)
	if len(structures) > 1 {
		steps = append(steps, &InterpolateStep{
			From:   structures[len(structures)-1],
			To:     structures[0],
			Frames: frames,
			Method: method,
		})
	}
	return steps
}
