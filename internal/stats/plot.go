package stats

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"genomaze/internal/model"
)

var (
	bestLineColor = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	meanLineColor = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	goalLineColor = color.RGBA{R: 0x7f, G: 0x7f, B: 0x7f, A: 0xff}
)

type PlotOptions struct {
	Title string
	// Goal draws a horizontal reference line when > 0.
	Goal   float64
	Width  vg.Length
	Height vg.Length
}

// PlotFitnessHistory renders best fitness per generation, plus mean fitness
// when diagnostics are given, to path. The image format follows the file
// extension.
func PlotFitnessHistory(path string, best []float64, diagnostics []model.GenerationDiagnostics, opts PlotOptions) error {
	if len(best) == 0 {
		return fmt.Errorf("fitness history is empty")
	}
	if opts.Width <= 0 {
		opts.Width = 8 * vg.Inch
	}
	if opts.Height <= 0 {
		opts.Height = 4 * vg.Inch
	}

	p := plot.New()
	p.Title.Text = opts.Title
	if p.Title.Text == "" {
		p.Title.Text = "fitness by generation"
	}
	p.X.Label.Text = "generation"
	p.Y.Label.Text = "fitness"
	p.Add(plotter.NewGrid())

	bestLine, err := plotter.NewLine(seriesXYs(best))
	if err != nil {
		return fmt.Errorf("best series: %w", err)
	}
	bestLine.Color = bestLineColor
	bestLine.Width = vg.Points(1.5)
	p.Add(bestLine)
	p.Legend.Add("best", bestLine)

	if len(diagnostics) > 0 {
		mean := make([]float64, len(diagnostics))
		for i, d := range diagnostics {
			mean[i] = d.MeanFitness
		}
		meanLine, err := plotter.NewLine(seriesXYs(mean))
		if err != nil {
			return fmt.Errorf("mean series: %w", err)
		}
		meanLine.Color = meanLineColor
		p.Add(meanLine)
		p.Legend.Add("mean", meanLine)
	}

	if opts.Goal > 0 {
		goalLine, err := plotter.NewLine(plotter.XYs{
			{X: 1, Y: opts.Goal},
			{X: float64(len(best)), Y: opts.Goal},
		})
		if err != nil {
			return fmt.Errorf("goal line: %w", err)
		}
		goalLine.Color = goalLineColor
		goalLine.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		p.Add(goalLine)
		p.Legend.Add("goal", goalLine)
	}
	p.Legend.Top = false
	p.Legend.Left = false

	return p.Save(opts.Width, opts.Height, path)
}

func seriesXYs(series []float64) plotter.XYs {
	pts := make(plotter.XYs, len(series))
	for i, value := range series {
		pts[i].X = float64(i + 1)
		pts[i].Y = value
	}
	return pts
}
