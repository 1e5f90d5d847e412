/*
 * doc.go, part of goband.
 *
 * Copyright 2024 Raul Mera <rmeraatusachdotcl>
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

/*Package band is a companion toolkit for band-structure calculations with
FHI-aims. It covers the three steps around the calculation itself:


	**goBand Capabilities**


    Generates two-tier (sparse + dense) "output band" scan-line directives
	around a high-symmetry point, in the exact format the FHI-aims control
	mechanism expects. The dense tier always samples the symmetry point
	exactly.

    Discovers the files belonging to a finished calculation (band output
	files plus the main output), including gzipped band files and the
	.no_soc companions a spin-orbit-coupled run leaves behind.

    Parses the main output for the Fermi level, the electron count and the
	spin-orbit-coupling mode, and the band files for k-points and
	eigenvalues. Two band-file layouts are understood: the raw FHI-aims one
	(index, k-point, occupation/eigenvalue pairs) and a plain one (k-point,
	eigenvalues).

    Locates the HOMO and LUMO bands from the electron count (occupation
	counting differs between SOC and non-SOC runs), cross-checking against
	the per-band occupation numbers when the band files carry them, selects
	their eigenvalues at every k-point, merges all band files into one set
	and assembles a regular grid over reciprocal space.

    Writes and reads back the four grid artifacts (KX.grd, KY.grd,
	BAND_HOMO.grd, BAND_LUMO.grd), optionally gzipped. The four files are
	always written or replaced together.

    The surf subpackage renders the HOMO and LUMO surfaces as heat maps
	(PNG) and as an interactive 3D page (HTML), with one energy color scale
	shared by both surfaces.

Band-file eigenvalues are already referenced to the Fermi level by
FHI-aims; goBand never shifts them again. Grids are gonum mat.Dense
matrices, with one column per scan line and one row per point along the
line.*/
package band
