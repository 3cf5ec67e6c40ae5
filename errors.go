/*
 * errors.go, part of molecule-aligner.
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

import "errors"

// The error kinds of the alignment operations. The functions returning
// them add context with the %w directive, so a caller tests for a kind
// with errors.Is regardless of how deep the error comes from.
var (
	// ErrShapeMismatch flags point sets that cannot enter the same
	// superposition: their sizes differ, or they are empty.
	ErrShapeMismatch = errors.New("mismatched point sets")

	// ErrIndexOutOfRange flags a base index that falls outside one of
	// the structures involved in an alignment.
	ErrIndexOutOfRange = errors.New("base index out of range")

	// ErrAtomCountMismatch flags structures that are not
	// index-compatible: different atom counts where equal ones are
	// needed, or different species at a fitted index under strict
	// alignment.
	ErrAtomCountMismatch = errors.New("structures are not index-compatible")
)
