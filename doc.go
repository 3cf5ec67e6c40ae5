/*
 * doc.go, part of molecule-aligner.
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

/*Package molalign superimposes and aligns sequences of molecular structures.
It is the base package of the molecule-aligner library, which assembles
composite reaction pathways out of interpolated, trajectory and static
segments.

	**Capabilities**

    Computes the optimal rigid superposition between two sets of points
	(Kabsch). The rotation returned is always proper: mirror-image point
	sets do not produce a reflection.

    Aligns whole structures, or whole sequences of structures, onto a
	reference using only a subset of atoms ("base indices") for the fit.
	The full structure follows the transform computed from the subset, so
	non-identical molecules can be aligned on a common scaffold.

    Calculates RMSD between coordinate sets and between structures.

The subpackages build on these operations: interp interpolates between
two aligned endpoint structures, pathway assembles multi-segment
pathways, idpp refines interpolated paths, and xyz reads and writes the
structures themselves.

Structures handed to this library are never modified: every aligning or
interpolating operation returns newly allocated coordinates.*/
package molalign
