/*
 * surf.go, part of goband.
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

//Package surf renders the HOMO and LUMO energy surfaces produced by the
//extractor. It is purely a presentation layer: it validates the shapes of
//the grids and draws them, nothing else. Both surfaces always share one
//energy color scale so they can be compared by eye.
package surf

import (
	"fmt"
	"math"

	band "github.com/rmera/goband"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//surfGrid adapts one energy surface of a band.Grid to plotter.GridXYZ.
//The grid is regular by construction (one column per kx, one row per ky),
//so the axis coordinates come from the first row/column.
type surfGrid struct {
	g *band.Grid
	z *mat.Dense
}

func (s *surfGrid) Dims() (c, r int) {
	r, c = s.g.Dims()
	return c, r
}

func (s *surfGrid) Z(c, r int) float64 {
	return s.z.At(r, c)
}

func (s *surfGrid) X(c int) float64 {
	return s.g.KX.At(0, c)
}

func (s *surfGrid) Y(r int) float64 {
	return s.g.KY.At(r, 0)
}

//energyRange returns the min and max over both surfaces, the shared color
//scale of every rendering.
func energyRange(G *band.Grid) (min, max float64) {
	min = math.Min(mat.Min(G.HOMO), mat.Min(G.LUMO))
	max = math.Max(mat.Max(G.HOMO), mat.Max(G.LUMO))
	if min == max {
		//a flat pair of surfaces still needs a non-empty scale
		min -= 0.5
		max += 0.5
	}
	return min, max
}

// HeatMaps renders the two surfaces of G as heat maps over (kx, ky) and
// saves them as plotname_HOMO.png and plotname_LUMO.png. Both plots use one
// diverging color scale spanning the energy range of both surfaces, with
// white at the midpoint. Mismatched grid shapes are a KindShape error.
func HeatMaps(G *band.Grid, title, plotname string) error {
	if err := G.Check(); err != nil {
		return errDecorate(err, "HeatMaps")
	}
	min, max := energyRange(G)
	colors := moreland.SmoothBlueRed()
	colors.SetMin(min)
	colors.SetMax(max)
	pal := colors.Palette(255)
	surfaces := []struct {
		z    *mat.Dense
		name string
	}{
		{G.HOMO, "HOMO"},
		{G.LUMO, "LUMO"},
	}
	for _, s := range surfaces {
		p := plot.New()
		p.Title.Padding = 3 * vg.Millimeter
		p.Title.Text = fmt.Sprintf("%s (%s)", title, s.name)
		p.X.Label.Text = "kx"
		p.Y.Label.Text = "ky"
		h := plotter.NewHeatMap(&surfGrid{g: G, z: s.z}, pal)
		h.Min = min //the shared scale, not the per-surface one
		h.Max = max
		p.Add(h)
		filename := fmt.Sprintf("%s_%s.png", plotname, s.name)
		if err := p.Save(5*vg.Inch, 5*vg.Inch, filename); err != nil {
			return Error{err.Error(), filename, []string{"plot.Save", "HeatMaps"}, true}
		}
	}
	return nil
}

//Errors

//errDecorate is a helper function that asserts that the error implements
//band.Error and decorates the error with the caller's name before
//returning it. If used with any other error type, it will cause a panic.
func errDecorate(err error, caller string) error {
	err2 := err.(band.Error)
	err2.Decorate(caller)
	return err2
}

// Error is the structure for the errors of this package. It fulfills
// band.Error; everything a renderer can report is a rendering failure, so
// the kind is always KindShape for shape mismatches (reported through
// band.Grid.Check) and KindFormat otherwise.
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("surf: %s (%s)", err.message, err.filename)
}

// Decorate adds new information to the error.
func (E Error) Decorate(deco string) []string {
	//Even though this method does not use a pointer as a receiver, and
	//tries to alter the receiver, it should work, since E.deco is a slice,
	//and hence a pointer itself.
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

// Kind returns the failure class, for callers that branch on it.
func (err Error) Kind() band.Kind {
	return band.KindFormat
}

// Critical always returns true: a rendering failure aborts the run.
func (err Error) Critical() bool {
	return err.critical
}

// FileName returns the output file involved in the failure.
func (err Error) FileName() string {
	return err.filename
}
