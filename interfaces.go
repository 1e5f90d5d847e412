/*
 * interfaces.go, part of goband.
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

//Errors

// Kind tells apart the classes of failure this library reports, so callers
// can branch on them without string matching. Every failure here is fatal to
// the current step; Kind only says what went wrong, not whether to retry
// (never retry, this is a one-shot batch tool).
type Kind int

const (
	//A malformed or missing field in an input file.
	KindFormat Kind = iota
	//The summary and the band files (or two band files) disagree with each other.
	KindConsistency
	//Grid artifacts whose shapes don't match.
	KindShape
	//A degenerate or otherwise impossible numeric specification, caught before anything is written.
	KindValidation
	//A band index outside the bands actually present in a file.
	KindIndex
)

// Error is the interface for errors that all packages in this library implement. The Decorate method allows to add and retrieve info from the
// error, without changing it's type or wrapping it around something else.
type Error interface {
	Error() string
	Decorate(string) []string //Adds information when you pass the error up. Each call also returns the "decoration" slice of strings resulting from the current call. If passed an empty string, it should just return the current value, not add the empty string to the slice.
	Kind() Kind
	Critical() bool
}

// FileError is the interface for errors tied to a place in an input file.
// Line returns 0 when the problem is with the file as a whole (absent,
// unreadable, missing a required field) rather than with one line of it.
type FileError interface {
	Error
	FileName() string
	Line() int
}
