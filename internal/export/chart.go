package export

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ErrNoData is returned when a chart has no points to draw.
var ErrNoData = errors.New("chart has no data")

type ChartKind int

const (
	BarChart ChartKind = iota
	LineChart
)

// Chart is a single series: categorical labels for bar charts, days for
// line charts.
type Chart struct {
	Kind   ChartKind
	Title  string
	XLabel string
	YLabel string
	Labels []string
	Days   []time.Time
	Values []float64
	Colors []color.Color
}

func (c Chart) points() int {
	return len(c.Values)
}

// ChartRenderer turns a chart into PNG bytes.
type ChartRenderer interface {
	Render(c Chart) ([]byte, error)
}

// PlotRenderer draws charts with gonum/plot.
type PlotRenderer struct {
	Width  vg.Length
	Height vg.Length
}

func NewPlotRenderer() *PlotRenderer {
	return &PlotRenderer{Width: 10 * vg.Inch, Height: 6 * vg.Inch}
}

var (
	skyBlue = color.RGBA{R: 135, G: 206, B: 235, A: 255}
	green   = color.RGBA{R: 0, G: 128, B: 0, A: 255}
)

func (r *PlotRenderer) Render(c Chart) ([]byte, error) {
	if c.points() == 0 {
		return nil, ErrNoData
	}

	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.Y.Min = 0

	switch c.Kind {
	case BarChart:
		if len(c.Labels) != len(c.Values) {
			return nil, fmt.Errorf("bar chart %q: %d labels for %d values", c.Title, len(c.Labels), len(c.Values))
		}
		if err := addBars(p, c); err != nil {
			return nil, err
		}
		p.NominalX(c.Labels...)
		p.X.Tick.Label.Rotation = math.Pi / 4
	case LineChart:
		if len(c.Days) != len(c.Values) {
			return nil, fmt.Errorf("line chart %q: %d days for %d values", c.Title, len(c.Days), len(c.Values))
		}
		pts := make(plotter.XYs, len(c.Values))
		for i, v := range c.Values {
			pts[i].X = float64(c.Days[i].Unix())
			pts[i].Y = v
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("line chart %q: %w", c.Title, err)
		}
		line.Color = green
		p.Add(line)
		p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	default:
		return nil, fmt.Errorf("unknown chart kind %d", c.Kind)
	}

	w, err := p.WriterTo(r.Width, r.Height, "png")
	if err != nil {
		return nil, fmt.Errorf("render %q: %w", c.Title, err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode %q: %w", c.Title, err)
	}
	return buf.Bytes(), nil
}

// addBars draws one bar per value. With per-bar colors each bar is its own
// series offset onto its nominal slot.
func addBars(p *plot.Plot, c Chart) error {
	width := vg.Points(20)
	if len(c.Colors) < len(c.Values) {
		bars, err := plotter.NewBarChart(plotter.Values(c.Values), width)
		if err != nil {
			return fmt.Errorf("bar chart %q: %w", c.Title, err)
		}
		bars.Color = skyBlue
		p.Add(bars)
		return nil
	}
	for i, v := range c.Values {
		vals := make(plotter.Values, len(c.Values))
		vals[i] = v
		bars, err := plotter.NewBarChart(vals, width)
		if err != nil {
			return fmt.Errorf("bar chart %q: %w", c.Title, err)
		}
		bars.Color = c.Colors[i]
		bars.LineStyle.Width = 0
		p.Add(bars)
	}
	return nil
}
