// Package plot renders per-episode diagnostics of an experiment
package plot

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Kind is a kind of rendered diagnostic
type Kind string

// Available diagnostic kinds. None renders nothing.
const (
	None Kind = ""
	PNG  Kind = "png"
	HTML Kind = "html"
)

// ParseKind returns the Kind named by s
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case None, PNG, HTML:
		return k, nil
	}
	return None, fmt.Errorf("parseKind: unknown diagnostic kind %q", s)
}

// Summary returns the mean and standard deviation of data. Both are
// zero when data is empty.
func Summary(data []float64) (mean, std float64) {
	switch len(data) {
	case 0:
		return 0, 0
	case 1:
		return data[0], 0
	}
	return stat.MeanStdDev(data, nil)
}

// EpisodeLengths renders the length of each episode to path
func EpisodeLengths(kind Kind, path string, lengths []float64) error {
	mean, std := Summary(lengths)
	title := fmt.Sprintf("Episode length (mean %.1f, std %.1f)", mean, std)

	switch kind {
	case None:
		return nil
	case PNG:
		return renderPNG(path, title, lengths)
	case HTML:
		return renderHTML(path, title, lengths)
	}
	return fmt.Errorf("episodeLengths: unknown diagnostic kind %q", kind)
}

func renderPNG(path, title string, data []float64) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Episode"
	p.Y.Label.Text = "Steps"

	pts := make(plotter.XYs, len(data))
	for i, y := range data {
		pts[i].X = float64(i)
		pts[i].Y = y
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("renderPNG: could not create line plotter: %w", err)
	}
	p.Add(line, plotter.NewGrid())

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("renderPNG: could not save plot: %w", err)
	}
	return nil
}

func renderHTML(path, title string, data []float64) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)

	episodes := make([]string, len(data))
	items := make([]opts.LineData, len(data))
	for i, y := range data {
		episodes[i] = fmt.Sprintf("%d", i)
		items[i] = opts.LineData{Value: y}
	}
	line.SetXAxis(episodes).AddSeries("steps", items)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("renderHTML: %w", err)
	}
	if err := line.Render(file); err != nil {
		file.Close()
		return fmt.Errorf("renderHTML: could not render chart: %w", err)
	}
	return file.Close()
}
