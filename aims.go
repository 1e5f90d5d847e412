/*
 * aims.go, part of goband.
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
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

//Readers for the files a finished FHI-aims band calculation leaves behind:
//the main output (Fermi level, electron count, SOC mode) and one band file
//per scan line (k-points and eigenvalues). Band files may be gzipped.

// Manifest lists the files of one calculation in a directory, as found by
// Discover. BandFiles is sorted, so the k-point order is reproducible.
// NoSOC tells whether .no_soc companion files were present; in that case
// the main band files hold the spin-orbit-coupled eigenvalues and the
// companions the scalar-relativistic ones (which Discover excludes).
type Manifest struct {
	Dir       string
	BandFiles []string
	Output    string
	NoSOC     bool
}

// Discover inspects dir and returns the manifest of the calculation in it:
// every band*.out and band*.out.gz file (excluding .no_soc companions) plus
// the first, in lexical order, non-band .out file, taken to be the main
// output. A directory without band files or without a main output is a
// KindFormat error.
func Discover(dir string) (*Manifest, error) {
	M := &Manifest{Dir: dir}
	for _, pattern := range []string{"band*.out", "band*.out.gz"} {
		found, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, CError{KindFormat, err.Error(), dir, 0, []string{"filepath.Glob", "Discover"}, true}
		}
		M.BandFiles = append(M.BandFiles, found...)
	}
	sort.Strings(M.BandFiles)
	if len(M.BandFiles) == 0 {
		return nil, CError{KindFormat, ErrNoBandFiles, dir, 0, []string{"Discover"}, true}
	}
	nosoc, _ := filepath.Glob(filepath.Join(dir, "band*.out.no_soc"))
	M.NoSOC = len(nosoc) > 0
	outs, err := filepath.Glob(filepath.Join(dir, "*.out"))
	if err != nil {
		return nil, CError{KindFormat, err.Error(), dir, 0, []string{"filepath.Glob", "Discover"}, true}
	}
	sort.Strings(outs)
	for _, f := range outs {
		base := filepath.Base(f)
		if !strings.HasPrefix(base, "band") && !strings.Contains(base, "no_soc") {
			M.Output = f
			break
		}
	}
	if M.Output == "" {
		return nil, CError{KindFormat, ErrNoOutput, dir, 0, []string{"Discover"}, true}
	}
	return M, nil
}

//firstFloat returns the first field that parses as a float, for fishing
//values out of labeled report lines.
func firstFloat(fields []string) (float64, bool) {
	for _, f := range fields {
		if v, err := strconv.ParseFloat(strings.TrimRight(f, "."), 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

// ReadSummary scans the main FHI-aims output file for the Fermi level, the
// total electron count and the spin-orbit-coupling mode, ignoring the
// (large amount of) surrounding text. Both the regular and the MD_light
// chemical-potential formats are understood. For SOC runs, the values
// printed after the second-variational section header win over the
// scalar-relativistic ones. A file missing the Fermi level or the electron
// count is a KindFormat error.
func ReadSummary(name string) (*Summary, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, CError{KindFormat, err.Error(), name, 0, []string{"os.Open", "ReadSummary"}, true}
	}
	defer f.Close()
	S := new(Summary)
	var gotFermi, gotElectrons bool
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, "STARTING SECOND VARIATIONAL SOC CALCULATION") {
			S.SOC = true
			continue
		}
		switch {
		case strings.Contains(line, "Chemical potential (Fermi level)"),
			strings.Contains(line, "| Chemical Potential") && strings.Contains(line, ":"):
			//In a SOC run this line appears twice and the second (SOC) value
			//is the one that matches the band files, hence no break on the first.
			if v, ok := firstFloat(strings.Fields(line)); ok {
				S.Fermi = v
				gotFermi = true
			}
		case strings.Contains(line, "Number of electrons"):
			if v, ok := firstFloat(fieldsAfter(line, ":")); ok {
				S.Electrons = v
				gotElectrons = true
			}
		case strings.Contains(line, "total of") && strings.Contains(line, "electrons"):
			//"The structure contains N atoms, and a total of M electrons."
			fields := strings.Fields(line)
			for i, f := range fields {
				if strings.HasPrefix(f, "electrons") && i > 0 {
					if v, err := strconv.ParseFloat(fields[i-1], 64); err == nil {
						S.Electrons = v
						gotElectrons = true
					}
					break
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, CError{KindFormat, err.Error(), name, 0, []string{"bufio.Scanner", "ReadSummary"}, true}
	}
	if !gotFermi {
		return nil, CError{KindFormat, ErrNoFermi, name, 0, []string{"ReadSummary"}, true}
	}
	if !gotElectrons {
		return nil, CError{KindFormat, ErrNoElectrons, name, 0, []string{"ReadSummary"}, true}
	}
	return S, nil
}

//fieldsAfter splits line at the last sep and returns the fields after it,
//or all fields if sep is absent.
func fieldsAfter(line, sep string) []string {
	if i := strings.LastIndex(line, sep); i >= 0 {
		line = line[i+len(sep):]
	}
	return strings.Fields(line)
}

//The two band-file layouts. The raw FHI-aims one is
//  index kx ky kz occ1 eig1 occ2 eig2 ...
//and the plain one is
//  kx ky kz eig1 eig2 ...
//The first data line of a file decides the layout for the whole file; a
//malformed or switched line later on is an error, never skipped.

type bandLayout int

const (
	layoutUnknown bandLayout = iota
	layoutRaw
	layoutPlain
)

//The raw layout is recognized by its leading k-point index: a bare integer
//(1-based, so >= 1) followed by decimal-formatted coordinates. A plain file
//whose first field were a bare integer >= 1 would be misread as raw, but
//FHI-aims always prints coordinates with decimals.
func guessLayout(fields []string) bandLayout {
	if len(fields) >= 6 && (len(fields)-4)%2 == 0 {
		if idx, err := strconv.Atoi(fields[0]); err == nil && idx >= 1 && decimalCoords(fields[1:4]) {
			return layoutRaw
		}
	}
	if len(fields) >= 4 {
		return layoutPlain
	}
	return layoutUnknown
}

func decimalCoords(fields []string) bool {
	for _, f := range fields {
		if !strings.Contains(f, ".") {
			return false
		}
	}
	return true
}

//openMaybeGz opens name, transparently ungzipping .gz files.
func openMaybeGz(name string) (io.ReadCloser, *os.File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	if !strings.HasSuffix(name, ".gz") {
		return f, f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return gz, f, nil
}

// ReadBandFile parses one band output file into k-points and eigenvalues.
// Gzipped files (.gz suffix) are handled transparently. Wrong field counts
// and non-numeric values are KindFormat errors carrying the file name and
// the 1-based line number.
func ReadBandFile(name string) (*BandFile, error) {
	r, f, err := openMaybeGz(name)
	if err != nil {
		return nil, CError{KindFormat, err.Error(), name, 0, []string{"os.Open", "ReadBandFile"}, true}
	}
	defer f.Close()
	if r != f {
		defer r.Close()
	}
	B := &BandFile{Name: name}
	layout := layoutUnknown
	nfields := 0
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024) //lines get long with many bands
	lineno := 0
	for scanner.Scan() {
		lineno++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if layout == layoutUnknown {
			layout = guessLayout(fields)
			if layout == layoutUnknown {
				return nil, CError{KindFormat, fmt.Sprintf("%s: only %d fields", ErrBadBandLine, len(fields)), name, lineno, []string{"ReadBandFile"}, true}
			}
			nfields = len(fields)
			if layout == layoutRaw {
				B.NBands = (nfields - 4) / 2
			} else {
				B.NBands = nfields - 3
			}
		}
		if len(fields) != nfields {
			return nil, CError{KindFormat, fmt.Sprintf("%s: %d fields, want %d", ErrBadBandLine, len(fields), nfields), name, lineno, []string{"ReadBandFile"}, true}
		}
		var p *KPoint
		var err error
		if layout == layoutRaw {
			p, err = parseRawKPoint(fields)
		} else {
			p, err = parsePlainKPoint(fields)
		}
		if err != nil {
			return nil, CError{KindFormat, fmt.Sprintf("%s: %s", ErrBadBandLine, err.Error()), name, lineno, []string{"ReadBandFile"}, true}
		}
		B.Points = append(B.Points, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, CError{KindFormat, err.Error(), name, lineno, []string{"bufio.Scanner", "ReadBandFile"}, true}
	}
	if len(B.Points) == 0 {
		return nil, CError{KindFormat, "No k-points in file", name, 0, []string{"ReadBandFile"}, true}
	}
	return B, nil
}

func parseRawKPoint(fields []string) (*KPoint, error) {
	p := new(KPoint)
	if _, err := strconv.Atoi(fields[0]); err != nil {
		return nil, err
	}
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(fields[1+i], 64)
		if err != nil {
			return nil, err
		}
		p.K[i] = v
	}
	rest := fields[4:]
	p.Occ = make([]float64, 0, len(rest)/2)
	p.Eigen = make([]float64, 0, len(rest)/2)
	for i := 0; i < len(rest); i += 2 {
		occ, err := strconv.ParseFloat(rest[i], 64)
		if err != nil {
			return nil, err
		}
		eig, err := strconv.ParseFloat(rest[i+1], 64)
		if err != nil {
			return nil, err
		}
		p.Occ = append(p.Occ, occ)
		p.Eigen = append(p.Eigen, eig)
	}
	return p, nil
}

func parsePlainKPoint(fields []string) (*KPoint, error) {
	p := new(KPoint)
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, err
		}
		p.K[i] = v
	}
	p.Eigen = make([]float64, 0, len(fields)-3)
	for _, f := range fields[3:] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		p.Eigen = append(p.Eigen, v)
	}
	return p, nil
}

// ReadBandFiles parses every band file of a manifest, in order.
func ReadBandFiles(names []string) ([]*BandFile, error) {
	files := make([]*BandFile, 0, len(names))
	for _, name := range names {
		B, err := ReadBandFile(name)
		if err != nil {
			return nil, errDecorate(err, "ReadBandFiles")
		}
		files = append(files, B)
	}
	return files, nil
}
