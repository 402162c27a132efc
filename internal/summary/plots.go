package summary

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/canvaswizards/canvas-moderator/internal/report"
	"github.com/canvaswizards/canvas-moderator/internal/stats"
)

// boxPlot renders one per-grader box plot for a metric: boxes ordered by
// grader median, a green reference line at the global median, and a red
// asterisk above each significant grader.
func boxPlot(path string, table *report.Table, metric string, result stats.Result) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s by grader", metric)
	p.X.Label.Text = "Grader"
	p.Y.Label.Text = metric

	byGrader := make(map[string][]float64)
	maxValue := 0.0
	for _, row := range table.Rows {
		v, ok := row.Float(metric)
		if !ok {
			continue
		}
		grader := row[report.ColGrader]
		byGrader[grader] = append(byGrader[grader], v)
		if v > maxValue {
			maxValue = v
		}
	}

	names := make([]string, 0, len(result.Rows))
	var starPoints plotter.XYs
	var starLabels []string

	for i, graderStats := range result.Rows {
		values := byGrader[graderStats.Grader]
		box, err := plotter.NewBoxPlot(vg.Points(20), float64(i), plotter.Values(values))
		if err != nil {
			return fmt.Errorf("failed to build box for grader %s: %w", graderStats.Grader, err)
		}
		p.Add(box)
		names = append(names, graderStats.Grader)

		if graderStats.P < stats.SignificanceThreshold {
			starPoints = append(starPoints, plotter.XY{X: float64(i), Y: maxValue + 1})
			starLabels = append(starLabels, "*")
		}
	}

	p.NominalX(names...)

	medianLine, err := plotter.NewLine(plotter.XYs{
		{X: -0.5, Y: result.GlobalMedian},
		{X: float64(len(result.Rows)) - 0.5, Y: result.GlobalMedian},
	})
	if err != nil {
		return fmt.Errorf("failed to build median line: %w", err)
	}
	medianLine.Color = color.RGBA{G: 0xa0, A: 0xff}
	p.Add(medianLine)
	p.Legend.Add("global median", medianLine)

	if len(starPoints) > 0 {
		labels, err := plotter.NewLabels(plotter.XYLabels{XYs: starPoints, Labels: starLabels})
		if err != nil {
			return fmt.Errorf("failed to build significance markers: %w", err)
		}
		for i := range labels.TextStyle {
			labels.TextStyle[i].Color = color.RGBA{R: 0xff, A: 0xff}
		}
		p.Add(labels)
	}

	if err := p.Save(10*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot %s: %w", path, err)
	}

	return nil
}
