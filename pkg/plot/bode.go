// Package plot renders AC sweep results as stacked frequency-domain
// plots.
package plot

import (
	"fmt"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Series is one probed quantity over a frequency sweep.
type Series struct {
	Name   string
	Values []float64
}

// Sweep writes a PNG with one stacked panel per series over a
// logarithmic frequency axis.
func Sweep(title string, freqs []float64, series []Series, path string) error {
	if len(series) == 0 {
		return fmt.Errorf("plot: no series to draw")
	}

	plots := make([][]*plot.Plot, len(series))
	for i, s := range series {
		if len(s.Values) != len(freqs) {
			return fmt.Errorf("plot: series %q has %d values for %d frequencies",
				s.Name, len(s.Values), len(freqs))
		}
		p, err := newLogFreqPlot(title, s.Name, freqs, s.Values)
		if err != nil {
			return err
		}
		plots[i] = []*plot.Plot{p}
	}

	height := 4 * vg.Inch * vg.Length(len(series))
	img := vgimg.New(8*vg.Inch, height)
	dc := draw.New(img)
	tiles := draw.Tiles{Rows: len(series), Cols: 1}

	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	defer f.Close()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	return nil
}

// Bode writes a PNG with magnitude and phase panels.
func Bode(title string, freqs, magnitude, phase []float64, path string) error {
	return Sweep(title, freqs, []Series{
		{Name: "magnitude", Values: magnitude},
		{Name: "phase [rad]", Values: phase},
	}, path)
}

func newLogFreqPlot(title, yLabel string, freqs, values []float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "frequency [Hz]"
	p.Y.Label.Text = yLabel
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Add(plotter.NewGrid())

	xys := make(plotter.XYs, len(freqs))
	for i := range freqs {
		xys[i].X = freqs[i]
		xys[i].Y = values[i]
	}

	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, fmt.Errorf("plot: %w", err)
	}
	p.Add(line)
	return p, nil
}
