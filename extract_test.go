/*
 * extract_test.go, part of goband.
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
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
)

//the full fixture calculation: 2 scan lines, 3 k-points each, 4 bands,
//4 electrons without SOC.
func fixtureExtraction(Te *testing.T) (*Extraction, []*BandFile, *Summary) {
	M, err := Discover("test")
	if err != nil {
		Te.Fatal(err)
	}
	files, err := ReadBandFiles(M.BandFiles)
	if err != nil {
		Te.Fatal(err)
	}
	S, err := ReadSummary(M.Output)
	if err != nil {
		Te.Fatal(err)
	}
	E, err := Extract(files, S)
	if err != nil {
		Te.Fatal(err)
	}
	return E, files, S
}

func TestExtract(Te *testing.T) {
	E, files, _ := fixtureExtraction(Te)
	fmt.Println("extracted", E.Len(), "k-points, HOMO band", E.HOMOIdx, "LUMO band", E.LUMOIdx)
	if E.HOMOIdx != 2 || E.LUMOIdx != 3 {
		Te.Errorf("HOMO/LUMO indices %d/%d, want 2/3", E.HOMOIdx, E.LUMOIdx)
	}
	if E.Len() != 6 {
		Te.Fatalf("got %d k-points, want 6", E.Len())
	}
	//the energies must be exactly the input eigenvalues: no Fermi shift,
	//no averaging, nothing.
	if E.HOMO[0] != -0.45 || E.LUMO[0] != 1.20 {
		Te.Errorf("first k-point energies %v %v, want -0.45 1.20", E.HOMO[0], E.LUMO[0])
	}
	if E.HOMO[5] != -0.10 || E.LUMO[5] != 1.55 {
		Te.Errorf("last k-point energies %v %v, want -0.10 1.55", E.HOMO[5], E.LUMO[5])
	}
	//one file alone must give exactly its own 3 HOMO and 3 LUMO values
	S := &Summary{Electrons: 4}
	E1, err := Extract(files[:1], S)
	if err != nil {
		Te.Fatal(err)
	}
	if E1.Len() != 3 {
		Te.Fatalf("single file gave %d k-points, want 3", E1.Len())
	}
	for i, want := range []float64{-0.45, -0.30, -0.15} {
		if E1.HOMO[i] != want {
			Te.Errorf("HOMO[%d] = %v, want %v", i, E1.HOMO[i], want)
		}
	}
}

func TestExtractBandIndex(Te *testing.T) {
	_, files, _ := fixtureExtraction(Te)
	//a summary for a much bigger system than the band files describe
	S := &Summary{Electrons: 40}
	_, err := Extract(files, S)
	if err == nil {
		Te.Fatal("HOMO index beyond the bands present should fail")
	}
	if err.(Error).Kind() != KindIndex {
		Te.Errorf("got kind %v, want KindIndex", err.(Error).Kind())
	}
	fmt.Println("rejected as it should:", err)
}

func kp(kx, ky float64, eigen ...float64) *KPoint {
	return &KPoint{K: [3]float64{kx, ky, 0}, Eigen: eigen}
}

func TestExtractDuplicates(Te *testing.T) {
	S := &Summary{Electrons: 4}
	a := &BandFile{Name: "a", NBands: 4, Points: []*KPoint{kp(0, 0, -3, -1, -0.5, 1)}}
	//same k-point, HOMO energy off by well over ETol
	b := &BandFile{Name: "b", NBands: 4, Points: []*KPoint{kp(0, 0, -3, -1, -0.4, 1)}}
	if _, err := Extract([]*BandFile{a, b}, S); err == nil {
		Te.Error("conflicting duplicate k-points should fail")
	} else if err.(Error).Kind() != KindConsistency {
		Te.Errorf("got kind %v, want KindConsistency", err.(Error).Kind())
	}
	//same k-point within roundoff: first one wins, silently
	c := &BandFile{Name: "c", NBands: 4, Points: []*KPoint{kp(0, 1e-9, -3, -1, -0.5+1e-9, 1)}}
	E, err := Extract([]*BandFile{a, c}, S)
	if err != nil {
		Te.Fatal(err)
	}
	if E.Len() != 1 {
		Te.Errorf("got %d k-points after merging a roundoff duplicate, want 1", E.Len())
	}
	if E.HOMO[0] != -0.5 {
		Te.Errorf("tie-break kept %v, want the first-seen -0.5", E.HOMO[0])
	}
}

func TestOccupationIndices(Te *testing.T) {
	_, files, _ := fixtureExtraction(Te)
	homo, lumo, ok := OccupationIndices(files)
	if !ok {
		Te.Fatal("the raw fixture files carry occupations")
	}
	fmt.Println("occupations put HOMO at band", homo, "and LUMO at band", lumo)
	if homo != 2 || lumo != 3 {
		Te.Errorf("occupation HOMO/LUMO %d/%d, want 2/3", homo, lumo)
	}
	//the plain layout has no occupations to go by
	plain, err := ReadBandFile("test/plain.dat")
	if err != nil {
		Te.Fatal(err)
	}
	if _, _, ok := OccupationIndices([]*BandFile{plain}); ok {
		Te.Error("indices found in a file without occupations")
	}
}

func TestExtractOccupationMismatch(Te *testing.T) {
	//occupations end at band 1, but 4 electrons put the HOMO at band 2
	p := kp(0, 0, -3, -1, -0.5, 1)
	p.Occ = []float64{2, 2, 0, 0}
	B := &BandFile{Name: "a", NBands: 4, Points: []*KPoint{p}}
	_, err := Extract([]*BandFile{B}, &Summary{Electrons: 4})
	if err == nil {
		Te.Fatal("summary and occupations disagree, Extract should fail")
	}
	if err.(Error).Kind() != KindConsistency {
		Te.Errorf("got kind %v, want KindConsistency", err.(Error).Kind())
	}
	fmt.Println("rejected as it should:", err)
}

func TestExtractBandCountMismatch(Te *testing.T) {
	S := &Summary{Electrons: 2}
	a := &BandFile{Name: "a", NBands: 4, Points: []*KPoint{kp(0, 0, -3, -1, -0.5, 1)}}
	b := &BandFile{Name: "b", NBands: 3, Points: []*KPoint{kp(0.1, 0, -3, -1, -0.5)}}
	_, err := Extract([]*BandFile{a, b}, S)
	if err == nil {
		Te.Fatal("files with different band counts should fail")
	}
	if err.(Error).Kind() != KindConsistency {
		Te.Errorf("got kind %v, want KindConsistency", err.(Error).Kind())
	}
}

func TestGrid(Te *testing.T) {
	E, _, _ := fixtureExtraction(Te)
	G, err := E.Grid()
	if err != nil {
		Te.Fatal(err)
	}
	if err := G.Check(); err != nil {
		Te.Fatal(err)
	}
	r, c := G.Dims()
	fmt.Println("grid is", r, "x", c)
	if r != 3 || c != 2 {
		Te.Fatalf("grid is %dx%d, want 3x2", r, c)
	}
	if G.KX.At(0, 1) != 0.1 || G.KY.At(2, 0) != 0.2 {
		Te.Errorf("grid coordinates misplaced: kx(0,1)=%v ky(2,0)=%v", G.KX.At(0, 1), G.KY.At(2, 0))
	}
	if G.HOMO.At(0, 0) != -0.45 || G.LUMO.At(2, 1) != 1.55 {
		Te.Errorf("grid energies misplaced: homo(0,0)=%v lumo(2,1)=%v", G.HOMO.At(0, 0), G.LUMO.At(2, 1))
	}
}

func TestGridRagged(Te *testing.T) {
	E := &Extraction{
		KX:   []float64{0, 0, 0.1}, //the kx=0.1 line has one point less
		KY:   []float64{0, 0.1, 0},
		HOMO: []float64{-1, -1, -1},
		LUMO: []float64{1, 1, 1},
	}
	_, err := E.Grid()
	if err == nil {
		Te.Fatal("a ragged point set should not grid")
	}
	if err.(Error).Kind() != KindConsistency {
		Te.Errorf("got kind %v, want KindConsistency", err.(Error).Kind())
	}
	fmt.Println("rejected as it should:", err)
}

func TestSaveLoad(Te *testing.T) {
	E, _, _ := fixtureExtraction(Te)
	for _, compress := range []bool{false, true} {
		dir := "test/artifacts"
		if compress {
			dir = "test/artifacts_gz"
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			Te.Fatal(err)
		}
		if err := E.Save(dir, compress); err != nil {
			Te.Fatal(err)
		}
		//no staging leftovers
		tmps, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
		if len(tmps) != 0 {
			Te.Errorf("staging files left behind: %v", tmps)
		}
		L, err := Load(dir)
		if err != nil {
			Te.Fatal(err)
		}
		if L.Len() != E.Len() {
			Te.Fatalf("saved %d points, loaded %d (compress=%v)", E.Len(), L.Len(), compress)
		}
		for i := 0; i < E.Len(); i++ {
			//the artifacts keep 8 decimals
			if math.Abs(L.HOMO[i]-E.HOMO[i]) > 1e-8 || math.Abs(L.LUMO[i]-E.LUMO[i]) > 1e-8 ||
				math.Abs(L.KX[i]-E.KX[i]) > 1e-8 || math.Abs(L.KY[i]-E.KY[i]) > 1e-8 {
				Te.Errorf("point %d did not survive the round trip (compress=%v)", i, compress)
			}
		}
	}
}

func TestSaveReplacesStale(Te *testing.T) {
	E, _, _ := fixtureExtraction(Te)
	dir := "test/artifacts_swap"
	if err := os.MkdirAll(dir, 0755); err != nil {
		Te.Fatal(err)
	}
	old := &Extraction{KX: E.KX, KY: E.KY, HOMO: make([]float64, E.Len()), LUMO: make([]float64, E.Len())}
	for i := range old.HOMO {
		old.HOMO[i] = -9
		old.LUMO[i] = 9
	}
	if err := old.Save(dir, false); err != nil {
		Te.Fatal(err)
	}
	//a later compressed save must fully replace the plain set, or loading
	//would quietly give back the old run
	if err := E.Save(dir, true); err != nil {
		Te.Fatal(err)
	}
	L, err := Load(dir)
	if err != nil {
		Te.Fatal(err)
	}
	if L.HOMO[0] != E.HOMO[0] {
		Te.Errorf("loaded the stale value %v, want %v", L.HOMO[0], E.HOMO[0])
	}
	if plain, _ := filepath.Glob(filepath.Join(dir, "*.grd")); len(plain) != 0 {
		Te.Errorf("plain artifacts survived the compressed save: %v", plain)
	}
	//and the other direction
	if err := old.Save(dir, false); err != nil {
		Te.Fatal(err)
	}
	L, err = Load(dir)
	if err != nil {
		Te.Fatal(err)
	}
	if L.HOMO[0] != -9 {
		Te.Errorf("loaded the stale value %v, want -9", L.HOMO[0])
	}
	if gzed, _ := filepath.Glob(filepath.Join(dir, "*.grd.gz")); len(gzed) != 0 {
		Te.Errorf("gzipped artifacts survived the plain save: %v", gzed)
	}
}

func TestSaveAtomic(Te *testing.T) {
	E, _, _ := fixtureExtraction(Te)
	//writing into a directory that does not exist must fail without
	//leaving anything behind anywhere
	err := E.Save("test/no_such_dir", false)
	if err == nil {
		Te.Fatal("saving into a missing directory should fail")
	}
	if _, err := os.Stat("test/no_such_dir"); !os.IsNotExist(err) {
		Te.Error("the failed save created the directory")
	}
	fmt.Println("rejected as it should:", err)
}
