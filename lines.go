/*
 * lines.go, part of goband.
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
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

//The generator builds "output band" directives for the FHI-aims control
//mechanism: a two-tier set of parallel lines in reciprocal space, a sparse
//tier for background coverage and a dense tier around the symmetry point
//(where the interesting band features, e.g. a Dirac cone, live). The dense
//tier always contains a line through the exact symmetry point.

const (
	//two kx positions closer than this are the same line
	dedupTol = 1e-8
	//a dense-tier position farther than this from the center gets snapped to it
	centerSnapTol = 1e-6
)

// Centers are the supported high-symmetry points of a hexagonal reciprocal
// cell, in fractional coordinates.
var Centers = map[string][3]float64{
	"G": {0.0, 0.0, 0.0},
	"K": {1.0 / 3.0, 1.0 / 3.0, 0.0},
	"M": {0.5, 0.0, 0.0},
}

// LineSpec is the full specification for one generator run. It is built
// once, validated, and not changed afterwards.
type LineSpec struct {
	Center        string     //"G", "K" or "M", case-insensitive
	SparseRange   [2]float64 //kx range of the background tier
	SparseLines   int        //lines in the background tier
	ConeRange     [2]float64 //kx range of the dense tier around the center
	ConeLines     int        //lines in the dense tier
	YRange        [2]float64 //the ky sweep shared by every line
	PointsPerLine int
}

// Check validates the spec. Degenerate or reversed ranges, unknown centers
// and too-low counts are rejected (KindValidation) before anything is
// written.
func (S *LineSpec) Check() error {
	if S == nil {
		panic("Check called on a nil LineSpec")
	}
	if _, ok := Centers[strings.ToUpper(S.Center)]; !ok {
		return CError{KindValidation, fmt.Sprintf("%s: %s (choose from G, K or M)", ErrBadCenter, S.Center), "", 0, []string{"Check"}, true}
	}
	for _, r := range [][2]float64{S.SparseRange, S.ConeRange} {
		if r[1] <= r[0] {
			return CError{KindValidation, fmt.Sprintf("%s: [%g,%g]", ErrBadRange, r[0], r[1]), "", 0, []string{"Check"}, true}
		}
	}
	if S.YRange[0] == S.YRange[1] {
		return CError{KindValidation, fmt.Sprintf("%s: ky [%g,%g]", ErrBadRange, S.YRange[0], S.YRange[1]), "", 0, []string{"Check"}, true}
	}
	if S.SparseLines < 1 || S.ConeLines < 1 {
		return CError{KindValidation, ErrFewLines, "", 0, []string{"Check"}, true}
	}
	if S.PointsPerLine < 2 {
		return CError{KindValidation, ErrFewPoints, "", 0, []string{"Check"}, true}
	}
	return nil
}

// ScanLine is one 1D sampling path for the simulation to evaluate: start
// and end in fractional coordinates, the number of sample points on the
// path, and the two endpoint labels.
type ScanLine struct {
	Start, End [3]float64
	Points     int
	LabelStart string
	LabelEnd   string
}

//linspace, with n==1 giving just the start (as numpy does).
func linspace(min, max float64, n int) []float64 {
	pos := make([]float64, n)
	if n == 1 {
		pos[0] = min
		return pos
	}
	step := (max - min) / float64(n-1)
	for i := 0; i < n; i++ {
		pos[i] = min + float64(i)*step
	}
	return pos
}

// GenerateLines builds the ordered set of scan lines for spec. Lines go
// from (x, ky0, cz) to (x, ky1, cz) for every unique kx position of the two
// tiers, sorted by kx ascending so the output is reproducible. The line
// through the center carries the starred labels (e.g. "G*", "A*"), the rest
// are numbered in order. Duplicate positions between tiers are emitted only
// once.
func GenerateLines(spec *LineSpec) ([]*ScanLine, error) {
	if err := spec.Check(); err != nil {
		return nil, errDecorate(err, "GenerateLines")
	}
	center := Centers[strings.ToUpper(spec.Center)]
	cx, cz := center[0], center[2]
	sparse := linspace(spec.SparseRange[0], spec.SparseRange[1], spec.SparseLines)
	cone := linspace(spec.ConeRange[0], spec.ConeRange[1], spec.ConeLines)
	//The dense tier must sample the center exactly: the closest cone
	//position gets replaced by cx when none is already there.
	closest := 0
	for i, x := range cone {
		if math.Abs(x-cx) < math.Abs(cone[closest]-cx) {
			closest = i
		}
	}
	if math.Abs(cone[closest]-cx) > centerSnapTol {
		cone[closest] = cx
	}
	all := append(sparse, cone...)
	sort.Float64s(all)
	unique := make([]float64, 0, len(all))
	for _, x := range all {
		if len(unique) == 0 || math.Abs(x-unique[len(unique)-1]) >= dedupTol {
			unique = append(unique, x)
		}
	}
	name := strings.ToUpper(spec.Center)
	lines := make([]*ScanLine, 0, len(unique))
	for i, x := range unique {
		l := &ScanLine{
			Start:      [3]float64{x, spec.YRange[0], cz},
			End:        [3]float64{x, spec.YRange[1], cz},
			Points:     spec.PointsPerLine,
			LabelStart: fmt.Sprintf("%s%d", name, i+1),
			LabelEnd:   fmt.Sprintf("A%d", i+1),
		}
		if math.Abs(x-cx) < centerSnapTol {
			l.LabelStart = name + "*"
			l.LabelEnd = "A*"
		}
		lines = append(lines, l)
	}
	return lines, nil
}

//The directive format is fixed by FHI-aims, so the verbs below matter
//byte-for-byte.

func (L *ScanLine) directive() string {
	return fmt.Sprintf("output band %16.12f %16.12f %16.12f %16.12f %16.12f %16.12f %4d %s %s",
		L.Start[0], L.Start[1], L.Start[2], L.End[0], L.End[1], L.End[2], L.Points, L.LabelStart, L.LabelEnd)
}

// WriteLines writes the scan lines as output band directives to the file
// name, preceded by a commented header describing the run. The spec is only
// used for the header and may be nil, in which case the header is omitted.
func WriteLines(name string, spec *LineSpec, lines []*ScanLine) error {
	if lines == nil {
		panic("WriteLines: nil lines")
	}
	f, err := os.Create(name)
	if err != nil {
		return CError{KindFormat, err.Error(), name, 0, []string{"os.Create", "WriteLines"}, true}
	}
	defer f.Close()
	if spec != nil {
		fmt.Fprintf(f, "# FHI-aims band structure lines around %s point\n", strings.ToUpper(spec.Center))
		fmt.Fprintf(f, "# Sparse grid: %d lines from x=%g to x=%g\n", spec.SparseLines, spec.SparseRange[0], spec.SparseRange[1])
		fmt.Fprintf(f, "# Dense grid: %d lines from x=%g to x=%g\n", spec.ConeLines, spec.ConeRange[0], spec.ConeRange[1])
		fmt.Fprintf(f, "# Total unique lines: %d\n", len(lines))
		fmt.Fprintf(f, "# Each line goes from y=%g to y=%g with %d points\n\n", spec.YRange[0], spec.YRange[1], spec.PointsPerLine)
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(f, l.directive()); err != nil {
			return CError{KindFormat, err.Error(), name, 0, []string{"fmt.Fprintln", "WriteLines"}, true}
		}
	}
	return nil
}

// ReadLines reads output band directives back from the file name, skipping
// comments and blank lines. Malformed directives are a KindFormat error
// with the offending line number.
func ReadLines(name string) ([]*ScanLine, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, CError{KindFormat, err.Error(), name, 0, []string{"os.Open", "ReadLines"}, true}
	}
	defer f.Close()
	lines := make([]*ScanLine, 0, 10)
	scanner := bufio.NewScanner(f)
	lineno := 0
	for scanner.Scan() {
		lineno++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		l, err := parseDirective(text)
		if err != nil {
			return nil, CError{KindFormat, fmt.Sprintf("%s: %s", ErrBadDirective, err.Error()), name, lineno, []string{"ReadLines"}, true}
		}
		lines = append(lines, l)
	}
	if err := scanner.Err(); err != nil {
		return nil, CError{KindFormat, err.Error(), name, lineno, []string{"bufio.Scanner", "ReadLines"}, true}
	}
	return lines, nil
}

func parseDirective(text string) (*ScanLine, error) {
	fields := strings.Fields(text)
	if len(fields) != 11 || fields[0] != "output" || fields[1] != "band" {
		return nil, fmt.Errorf("want 'output band' plus 9 fields, got %d fields", len(fields))
	}
	l := new(ScanLine)
	var coords [6]float64
	for i := 0; i < 6; i++ {
		v, err := strconv.ParseFloat(fields[2+i], 64)
		if err != nil {
			return nil, err
		}
		coords[i] = v
	}
	l.Start = [3]float64{coords[0], coords[1], coords[2]}
	l.End = [3]float64{coords[3], coords[4], coords[5]}
	points, err := strconv.Atoi(fields[8])
	if err != nil {
		return nil, err
	}
	if points < 2 {
		return nil, fmt.Errorf("%d sample points", points)
	}
	l.Points = points
	l.LabelStart = fields[9]
	l.LabelEnd = fields[10]
	return l, nil
}

//errDecorate is a helper function that asserts that the error implements
//the Error interface of this package and decorates it with the caller's
//name before returning it. Used with any other error, it will panic.
func errDecorate(err error, caller string) error {
	err2 := err.(Error)
	err2.Decorate(caller)
	return err2
}
