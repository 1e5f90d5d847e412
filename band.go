/*
 * band.go, part of goband.
 *
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
 *
 */
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package band

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

/**Note: A few functions here panic instead of returning errors, when called
 * on nil data. They are "fundamental" functions, so if something goes wrong
 * there the program is way-most likely wrong and should crash.**/

// KPoint is one sampled point in reciprocal space: a fractional coordinate
// and one eigenvalue per electronic band, in ascending band order.
// Occ holds the occupation numbers when the file carried them (the raw
// FHI-aims band layout does, the plain layout doesn't), or nil.
type KPoint struct {
	K     [3]float64
	Eigen []float64
	Occ   []float64
}

// BandFile is one parsed band output file: an ordered sequence of k-points,
// all with the same number of bands.
type BandFile struct {
	Name   string
	NBands int
	Points []*KPoint
}

// Summary holds the scalar metadata read from the main FHI-aims output:
// the Fermi level (eV), the total electron count and whether the run used
// spin-orbit coupling. Band-file eigenvalues come already referenced to
// Fermi, so Fermi is kept for reporting, never subtracted again.
type Summary struct {
	Fermi     float64
	Electrons float64
	SOC       bool
}

// HOMOIndex returns the 0-based index of the highest occupied band for the
// calculation the summary describes. Without SOC each band holds 2
// electrons, so the index is round(electrons/2). With SOC the spinors hold
// one electron-equivalent each and the index is round(electrons).
// Fractional electron counts are rounded half away from zero.
func (S *Summary) HOMOIndex() int {
	if S == nil {
		panic("HOMOIndex called on a nil Summary")
	}
	if S.SOC {
		return int(math.Round(S.Electrons))
	}
	return int(math.Round(S.Electrons / 2))
}

// LUMOIndex returns the 0-based index of the lowest unoccupied band,
// always HOMOIndex()+1.
func (S *Summary) LUMOIndex() int {
	return S.HOMOIndex() + 1
}

// Extraction is the merged result of reading every band file of one
// calculation: per k-point kx, ky and the HOMO and LUMO eigenvalues,
// index-aligned. It is the flat form; Grid assembles the regular-grid form.
type Extraction struct {
	KX, KY     []float64
	HOMO, LUMO []float64
	//the band indices the energies were taken from, for reporting
	HOMOIdx, LUMOIdx int
	//Fermi level from the summary, eV. Energies are NOT shifted by it.
	Fermi float64
}

// Len returns the number of k-points in the extraction.
func (E *Extraction) Len() int {
	return len(E.KX)
}

// Grid is the gridded form of an extraction, ready for rendering: four
// matrices of identical shape, row r column c being point r of scan line c.
type Grid struct {
	KX, KY     *mat.Dense
	HOMO, LUMO *mat.Dense
}

// Check verifies that the four grids are present and share one shape.
// It returns a KindShape error otherwise.
func (G *Grid) Check() error {
	if G == nil || G.KX == nil || G.KY == nil || G.HOMO == nil || G.LUMO == nil {
		return CError{KindShape, ErrNilData, "", 0, []string{"Check"}, true}
	}
	r, c := G.KX.Dims()
	for _, m := range []*mat.Dense{G.KY, G.HOMO, G.LUMO} {
		r2, c2 := m.Dims()
		if r2 != r || c2 != c {
			return CError{KindShape, "Grid shapes don't match", "", 0, []string{"Check"}, true}
		}
	}
	return nil
}

// Dims returns the shared shape of the grids.
func (G *Grid) Dims() (r, c int) {
	return G.KX.Dims()
}
