// Package chart renders a token price line with historical signal
// markers into a PNG suitable for a Telegram photo message.
package chart

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"dexsignal/internal/domain"
)

const (
	chartWidth  = 8 * vg.Inch
	chartHeight = 6 * vg.Inch
)

var (
	lineColor   = color.RGBA{G: 255, A: 255}
	markerColor = color.RGBA{R: 255, G: 255, A: 255} // yellow
	axisColor   = color.Gray{Y: 0xb0}
)

// Render draws the price series as a continuous line and each aligned
// marker as a triangle layered on top. It never mutates its inputs.
//
// An empty series yields a minimal empty chart rather than an error, so
// missing provider data never blocks a notification.
func Render(series []domain.PricePoint, symbol, name string, markers []domain.AlertMarker) ([]byte, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s | %s", symbol, name)
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Price (USD)"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02 15:04"}

	p.BackgroundColor = color.Black
	for _, axis := range []*plot.Axis{&p.X, &p.Y} {
		axis.Color = axisColor
		axis.Label.TextStyle.Color = axisColor
		axis.Tick.Color = axisColor
		axis.Tick.Label.Color = axisColor
	}
	p.Title.TextStyle.Color = color.White
	p.Legend.TextStyle.Color = color.White
	p.Legend.Top = true

	if len(series) > 0 {
		xys := make(plotter.XYs, len(series))
		for i, pt := range series {
			xys[i].X = float64(pt.Unix)
			xys[i].Y = pt.Price
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("chart: price line: %w", err)
		}
		line.LineStyle.Width = vg.Points(2)
		line.LineStyle.Color = lineColor
		p.Add(line)
		p.Legend.Add(p.Title.Text, line)
	}

	if len(markers) > 0 {
		xys := make(plotter.XYs, len(markers))
		for i, m := range markers {
			xys[i].X = float64(m.Unix)
			xys[i].Y = m.Price
		}
		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("chart: signal markers: %w", err)
		}
		scatter.GlyphStyle.Shape = draw.TriangleGlyph{}
		scatter.GlyphStyle.Color = markerColor
		scatter.GlyphStyle.Radius = vg.Points(6)
		p.Add(scatter)
		p.Legend.Add("Buy Signal", scatter)
	}

	w, err := p.WriterTo(chartWidth, chartHeight, "png")
	if err != nil {
		return nil, fmt.Errorf("chart: png writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("chart: encode: %w", err)
	}
	return buf.Bytes(), nil
}
