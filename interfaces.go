/*
 * interfaces.go, part of molecule-aligner.
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

// Source reads a structure sequence by name, typically from a file.
// Which formats are understood is up to the implementation; this
// library never parses structure files itself. A file with a single
// structure is returned as a sequence of length one.
type Source interface {
	Read(name string) (Sequence, error)
}

// Sink writes a structure sequence under the given name.
type Sink interface {
	Write(name string, frames Sequence) error
}

// Error is the interface for errors of the file-handling subpackages.
// The Decorate method adds information to the error as it is passed up,
// without changing its type; each call returns the current decoration
// slice. Passing an empty string just returns the current value. The
// numeric packages use plain wrapped errors instead, so kinds can be
// tested with errors.Is.
type Error interface {
	Error() string
	Decorate(string) []string
}
