/*
 * errors.go, part of goband.
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

import "fmt"

// CError is the concrete error for the band package. It fulfills the Error
// and FileError interfaces. filename and line are empty/zero when they don't
// apply.
type CError struct {
	kind     Kind
	message  string
	filename string
	line     int
	deco     []string
	critical bool
}

func (err CError) Error() string {
	if err.filename == "" {
		return fmt.Sprintf("goBand: %s", err.message)
	}
	if err.line <= 0 {
		return fmt.Sprintf("goBand: file %s: %s", err.filename, err.message)
	}
	return fmt.Sprintf("goBand: file %s, line %d: %s", err.filename, err.line, err.message)
}

// Decorate adds new information to the error.
func (err CError) Decorate(deco string) []string {
	//Even though this method does not use a pointer as a receiver, and tries to alter the receiver,
	//it should work, since err.deco is a slice, and hence a pointer itself.
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// Kind returns the class of the failure.
func (err CError) Kind() Kind {
	return err.kind
}

// Critical returns whether the error is critical or it can be ignored.
// Everything this package returns is critical; the method exists to fulfill
// the Error interface.
func (err CError) Critical() bool {
	return err.critical
}

// FileName returns the input file where the problem was found, or an empty
// string.
func (err CError) FileName() string {
	return err.filename
}

// Line returns the 1-based line where the problem was found, or 0.
func (err CError) Line() int {
	return err.line
}

//Messages for the errors reported by this package. Each is completed with
//file/line/detail context by the function that builds the error.

const (
	ErrNoBandFiles  = "No band output files found"
	ErrNoOutput     = "No main output file found"
	ErrNoFermi      = "Fermi level not found in main output"
	ErrNoElectrons  = "Electron count not found in main output"
	ErrBadDirective = "Malformed output band directive"
	ErrBadBandLine  = "Malformed band-file line"
	ErrBadRange     = "Degenerate or reversed sampling range"
	ErrFewPoints    = "Scan lines need at least 2 points"
	ErrFewLines     = "Each tier needs at least 1 line"
	ErrBadCenter    = "Unknown symmetry center"
	ErrNilData      = "Nil data given"
)
