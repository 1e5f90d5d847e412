/*
 * extract.go, part of goband.
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
	"bufio"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"gonum.org/v1/gonum/mat"
)

const (
	//KTol is the distance (in fractional coordinates, per component) under
	//which two k-points count as the same point. It matches the dedup
	//tolerance of the line generator, so overlapping scan lines merge
	//cleanly.
	KTol = 1e-8
	//ETol is the maximum disagreement (eV) tolerated between the energies
	//two band files report for the same k-point. Beyond it the files are
	//inconsistent; within it the first-seen value wins. Never averaged.
	ETol = 1e-6
)

//The four artifact names, fixed so the renderer (and other tools) can find
//them.
const (
	KXFile   = "KX.grd"
	KYFile   = "KY.grd"
	HOMOFile = "BAND_HOMO.grd"
	LUMOFile = "BAND_LUMO.grd"
)

func sameK(a, b [3]float64) bool {
	for i := 0; i < 3; i++ {
		if math.Abs(a[i]-b[i]) >= KTol {
			return false
		}
	}
	return true
}

// Extract selects the HOMO and LUMO eigenvalues at every k-point of every
// band file and merges them into one flat set. The HOMO index comes from
// the summary's electron count (see Summary.HOMOIndex). Files disagreeing
// on the band count are a KindConsistency error; a HOMO or LUMO index
// beyond the bands actually present is a KindIndex error (the summary and
// the band files describe different systems); duplicate k-points with
// energies differing beyond ETol are a KindConsistency error. Energies are
// kept exactly as read: FHI-aims already references them to the Fermi
// level.
func Extract(files []*BandFile, s *Summary) (*Extraction, error) {
	if len(files) == 0 || s == nil {
		return nil, CError{KindValidation, ErrNilData, "", 0, []string{"Extract"}, true}
	}
	nbands := files[0].NBands
	for _, B := range files[1:] {
		if B.NBands != nbands {
			return nil, CError{KindConsistency, fmt.Sprintf("%s has %d bands, %s has %d", files[0].Name, nbands, B.Name, B.NBands), B.Name, 0, []string{"Extract"}, true}
		}
	}
	homo := s.HOMOIndex()
	lumo := s.LUMOIndex()
	if homo < 0 || lumo >= nbands {
		return nil, CError{KindIndex, fmt.Sprintf("HOMO index %d (LUMO %d) out of the %d bands present", homo, lumo, nbands), files[0].Name, 0, []string{"Extract"}, true}
	}
	//When the files carry occupations they are an independent statement of
	//where the occupied bands end; a disagreement means the summary and the
	//band files describe different systems.
	if oh, ol, ok := OccupationIndices(files); ok && (oh != homo || ol != lumo) {
		return nil, CError{KindConsistency, fmt.Sprintf("occupations put HOMO/LUMO at bands %d/%d, the electron count at %d/%d", oh, ol, homo, lumo), files[0].Name, 0, []string{"Extract"}, true}
	}
	E := &Extraction{HOMOIdx: homo, LUMOIdx: lumo, Fermi: s.Fermi}
	kseen := make([][3]float64, 0, len(files)*len(files[0].Points))
	dups := 0
	for _, B := range files {
		for _, p := range B.Points {
			prev := -1
			for i, k := range kseen {
				if sameK(k, p.K) {
					prev = i
					break
				}
			}
			if prev >= 0 {
				//Overlapping scan lines revisit k-points; the energies must
				//agree, and the first-seen value is the one kept.
				if math.Abs(E.HOMO[prev]-p.Eigen[homo]) > ETol || math.Abs(E.LUMO[prev]-p.Eigen[lumo]) > ETol {
					return nil, CError{KindConsistency, fmt.Sprintf("k-point (%g,%g,%g) has conflicting energies across files", p.K[0], p.K[1], p.K[2]), B.Name, 0, []string{"Extract"}, true}
				}
				dups++
				continue
			}
			kseen = append(kseen, p.K)
			E.KX = append(E.KX, p.K[0])
			E.KY = append(E.KY, p.K[1])
			E.HOMO = append(E.HOMO, p.Eigen[homo])
			E.LUMO = append(E.LUMO, p.Eigen[lumo])
		}
	}
	if dups > 0 {
		log.Printf("goBand: %d duplicate k-points merged across band files", dups) //just a head-up
	}
	return E, nil
}

// OccupationIndices determines the HOMO and LUMO band indices from the
// occupation numbers of the band files themselves: the HOMO is the highest
// band occupied (occupation above 0.5) at any k-point, the LUMO the lowest
// band empty at every k-point. With partial occupations the two need not be
// adjacent. ok is false when the files carry no occupations (the plain
// layout doesn't) or no such bands exist.
func OccupationIndices(files []*BandFile) (homo, lumo int, ok bool) {
	hasOcc := false
	for _, B := range files {
		for _, p := range B.Points {
			if p.Occ != nil {
				hasOcc = true
			}
		}
	}
	if !hasOcc || len(files) == 0 {
		return -1, -1, false
	}
	nbands := files[0].NBands
	homo, lumo = -1, -1
	for i := nbands - 1; i >= 0; i-- {
		if occupiedSomewhere(files, i) {
			homo = i
			break
		}
	}
	for i := 0; i < nbands; i++ {
		if !occupiedSomewhere(files, i) {
			lumo = i
			break
		}
	}
	return homo, lumo, homo >= 0 && lumo >= 0
}

func occupiedSomewhere(files []*BandFile, band int) bool {
	for _, B := range files {
		for _, p := range B.Points {
			if p.Occ != nil && p.Occ[band] > 0.5 {
				return true
			}
		}
	}
	return false
}

// Grid reassembles the flat extraction into the regular grid the scan lines
// sampled: one column per unique kx (ascending), one row per point along
// the line (ascending ky). The four matrices share one shape by
// construction. K-points that don't form equal-length columns mean the
// input files don't cover a regular grid, which is a KindConsistency error
// rather than something to interpolate over.
func (E *Extraction) Grid() (*Grid, error) {
	if E == nil || E.Len() == 0 {
		return nil, CError{KindValidation, ErrNilData, "", 0, []string{"Grid"}, true}
	}
	//column positions, unique kx values in ascending order
	xs := make([]float64, 0, 10)
	for _, x := range E.KX {
		found := false
		for _, ux := range xs {
			if math.Abs(x-ux) < KTol {
				found = true
				break
			}
		}
		if !found {
			xs = append(xs, x)
		}
	}
	sort.Float64s(xs)
	type gridPoint struct {
		ky, homo, lumo float64
	}
	cols := make([][]gridPoint, len(xs))
	for i := 0; i < E.Len(); i++ {
		c := -1
		for j, ux := range xs {
			if math.Abs(E.KX[i]-ux) < KTol {
				c = j
				break
			}
		}
		cols[c] = append(cols[c], gridPoint{E.KY[i], E.HOMO[i], E.LUMO[i]})
	}
	rows := len(cols[0])
	for j, col := range cols {
		if len(col) != rows {
			return nil, CError{KindConsistency, fmt.Sprintf("scan line at kx=%g has %d points, want %d: not a regular grid", xs[j], len(col), rows), "", 0, []string{"Grid"}, true}
		}
		sort.Slice(col, func(a, b int) bool { return col[a].ky < col[b].ky })
	}
	G := &Grid{
		KX:   mat.NewDense(rows, len(xs), nil),
		KY:   mat.NewDense(rows, len(xs), nil),
		HOMO: mat.NewDense(rows, len(xs), nil),
		LUMO: mat.NewDense(rows, len(xs), nil),
	}
	for j, col := range cols {
		for i, p := range col {
			G.KX.Set(i, j, xs[j])
			G.KY.Set(i, j, p.ky)
			G.HOMO.Set(i, j, p.homo)
			G.LUMO.Set(i, j, p.lumo)
		}
	}
	return G, nil
}

//Artifact IO. One value per line, %16.8f, as the downstream visualization
//tools expect. The four files are staged with a .tmp suffix and renamed
//only after all of them were written, so a failure can't leave a mixed
//artifact set from two runs.

func writeGrd(name string, data []float64, compress bool) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	var w io.Writer = f
	var gz *gzip.Writer
	if compress {
		gz = gzip.NewWriter(f)
		w = gz
	}
	bw := bufio.NewWriter(w)
	for _, v := range data {
		if _, err := fmt.Fprintf(bw, "%16.8f\n", v); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if gz != nil {
		return gz.Close()
	}
	return nil
}

// Save persists the four artifacts (KX.grd, KY.grd, BAND_HOMO.grd,
// BAND_LUMO.grd, with a .gz suffix when compress is true) in dir. Either
// all four are written, or none: everything is staged first and renamed
// only when complete, and the stage is removed on any failure, leaving
// whatever a previous run wrote untouched.
func (E *Extraction) Save(dir string, compress bool) error {
	if E == nil || E.Len() == 0 {
		return CError{KindValidation, ErrNilData, "", 0, []string{"Save"}, true}
	}
	suffix := ""
	if compress {
		suffix = ".gz"
	}
	names := []string{KXFile, KYFile, HOMOFile, LUMOFile}
	data := [][]float64{E.KX, E.KY, E.HOMO, E.LUMO}
	staged := make([]string, 0, 4)
	cleanup := func() {
		for _, tmp := range staged {
			os.Remove(tmp)
		}
	}
	for i, name := range names {
		tmp := filepath.Join(dir, name+suffix+".tmp")
		if err := writeGrd(tmp, data[i], compress); err != nil {
			cleanup()
			return CError{KindFormat, err.Error(), tmp, 0, []string{"writeGrd", "Save"}, true}
		}
		staged = append(staged, tmp)
	}
	for i, tmp := range staged {
		if err := os.Rename(tmp, filepath.Join(dir, names[i]+suffix)); err != nil {
			cleanup()
			return CError{KindFormat, err.Error(), tmp, 0, []string{"os.Rename", "Save"}, true}
		}
	}
	//a set left by a run with the other compression setting would shadow
	//(or be shadowed by) the one just written when loading
	stale := ".gz"
	if compress {
		stale = ""
	}
	for _, name := range names {
		os.Remove(filepath.Join(dir, name+stale))
	}
	return nil
}

func readGrd(name string) ([]float64, error) {
	r, f, err := openMaybeGz(name)
	if err != nil {
		return nil, CError{KindFormat, err.Error(), name, 0, []string{"os.Open", "readGrd"}, true}
	}
	defer f.Close()
	if r != f {
		defer r.Close()
	}
	data := make([]float64, 0, 100)
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, CError{KindFormat, err.Error(), name, lineno, []string{"strconv.ParseFloat", "readGrd"}, true}
		}
		data = append(data, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, CError{KindFormat, err.Error(), name, lineno, []string{"bufio.Scanner", "readGrd"}, true}
	}
	return data, nil
}

//grdName returns the plain or gzipped artifact path, whichever exists,
//preferring the plain one.
func grdName(dir, name string) string {
	plain := filepath.Join(dir, name)
	if _, err := os.Stat(plain); err == nil {
		return plain
	}
	return plain + ".gz"
}

// Load reads the four artifacts back from dir, accepting plain or gzipped
// files. Artifacts of different lengths are a KindShape error: the set is
// stale or mismatched and must not be rendered.
func Load(dir string) (*Extraction, error) {
	E := new(Extraction)
	targets := []struct {
		name string
		dst  *[]float64
	}{
		{KXFile, &E.KX},
		{KYFile, &E.KY},
		{HOMOFile, &E.HOMO},
		{LUMOFile, &E.LUMO},
	}
	for _, t := range targets {
		data, err := readGrd(grdName(dir, t.name))
		if err != nil {
			return nil, errDecorate(err, "Load")
		}
		*t.dst = data
	}
	n := len(E.KX)
	if len(E.KY) != n || len(E.HOMO) != n || len(E.LUMO) != n {
		return nil, CError{KindShape, fmt.Sprintf("artifact lengths disagree: %d %d %d %d", n, len(E.KY), len(E.HOMO), len(E.LUMO)), dir, 0, []string{"Load"}, true}
	}
	return E, nil
}
