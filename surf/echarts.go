/*
 * echarts.go, part of goband.
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

package surf

import (
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	band "github.com/rmera/goband"
	"gonum.org/v1/gonum/mat"
)

//A rotatable view helps a lot when hunting for band crossings and cone
//tips, which the static heat maps flatten away.

//viridis, same ramp for both surfaces
var surfaceColors = []string{"#440154", "#482777", "#3e4989", "#31688e",
	"#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

func surfaceData(G *band.Grid, z *mat.Dense) []opts.Chart3DData {
	r, c := G.Dims()
	data := make([]opts.Chart3DData, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			data = append(data, opts.Chart3DData{
				Value: []interface{}{G.KX.At(i, j), G.KY.At(i, j), z.At(i, j)},
			})
		}
	}
	return data
}

func surfaceChart(G *band.Grid, z *mat.Dense, name, title string, min, max float64) *charts.Surface3D {
	surface := charts.NewSurface3D()
	surface.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: name, Subtitle: title}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: "kx"}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: "ky"}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: "E-EF (eV)"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(min),
			Max:        float32(max),
			InRange:    &opts.VisualMapInRange{Color: surfaceColors},
		}),
	)
	surface.AddSeries(name, surfaceData(G, z))
	return surface
}

// SurfacePage writes an HTML page with the HOMO and LUMO surfaces of G as
// interactive 3D plots, one visual-map range (the energy range of both
// surfaces together) for the two of them. Mismatched grid shapes are a
// KindShape error.
func SurfacePage(G *band.Grid, title, filename string) error {
	if err := G.Check(); err != nil {
		return errDecorate(err, "SurfacePage")
	}
	min, max := energyRange(G)
	page := components.NewPage()
	page.AddCharts(
		surfaceChart(G, G.HOMO, "HOMO", title, min, max),
		surfaceChart(G, G.LUMO, "LUMO", title, min, max),
	)
	f, err := os.Create(filename)
	if err != nil {
		return Error{err.Error(), filename, []string{"os.Create", "SurfacePage"}, true}
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		return Error{err.Error(), filename, []string{"page.Render", "SurfacePage"}, true}
	}
	return nil
}
