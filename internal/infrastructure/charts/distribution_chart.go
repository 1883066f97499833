// Package charts renders scoreboard statistics as PNG images for chat
// clients that can't draw their own graphs.
package charts

import (
	"bytes"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/tally-hub/tally-score-hub/internal/domain/scoreboard"
)

// ══════════════════════════════════════════════════════════════════════════════
// DISTRIBUTION CHART
// ══════════════════════════════════════════════════════════════════════════════

const (
	chartWidth  = 800
	chartHeight = 400

	// densitySamples is how many points each curve is sampled at.
	densitySamples = 120
)

// seriesPalette cycles over players. Colours are picked to stay readable
// on the light background.
var seriesPalette = []drawing.Color{
	{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}, // blue
	{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}, // red
	{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}, // green
	{R: 0x94, G: 0x67, B: 0xbd, A: 0xff}, // purple
	{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff}, // orange
	{R: 0x8c, G: 0x56, B: 0x4b, A: 0xff}, // brown
}

var (
	backgroundColour = drawing.Color{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	textColour       = drawing.Color{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
)

// PlayerCurve is one player's fitted score distribution, ready to plot.
type PlayerCurve struct {
	PlayerName string
	Estimate   scoreboard.DistributionEstimate
}

// RenderDistributionChart plots the gamma density curve of every player
// on a single PNG. Curves share one x-axis spanning the observed score
// range of all players combined.
func RenderDistributionChart(title string, curves []PlayerCurve) ([]byte, error) {
	if len(curves) == 0 {
		return renderNoDataPlaceholder()
	}

	from, to := scoreRange(curves)

	series := make([]chart.Series, 0, len(curves))
	for i, curve := range curves {
		xs, ys := sampleDensity(curve.Estimate, from, to)
		colour := seriesPalette[i%len(seriesPalette)]

		series = append(series, chart.ContinuousSeries{
			Name:    curve.PlayerName,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: colour,
				StrokeWidth: 2,
			},
		})
	}

	graph := chart.Chart{
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			FillColor: backgroundColour,
		},
		Canvas: chart.Style{
			FillColor: backgroundColour,
		},
		XAxis: chart.XAxis{
			Name: "Score",
			Style: chart.Style{
				FontColor: textColour,
			},
			Range: &chart.ContinuousRange{
				Min: from,
				Max: to,
			},
		},
		YAxis: chart.YAxis{
			Name: "Density",
			Style: chart.Style{
				FontColor: textColour,
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{
		chart.Legend(&graph),
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render distribution chart: %w", err)
	}

	return buffer.Bytes(), nil
}

// scoreRange returns the x-axis span covering every curve, padded so the
// density tails don't get clipped at the observed extremes.
func scoreRange(curves []PlayerCurve) (float64, float64) {
	lo := curves[0].Estimate.MinScore.Float64()
	hi := curves[0].Estimate.MaxScore.Float64()
	for _, c := range curves[1:] {
		lo = math.Min(lo, c.Estimate.MinScore.Float64())
		hi = math.Max(hi, c.Estimate.MaxScore.Float64())
	}

	from := math.Max(0.1, lo*0.5)
	to := hi * 1.25
	if to <= from {
		to = from + 1
	}
	return from, to
}

// sampleDensity evaluates the gamma density at evenly spaced points.
func sampleDensity(est scoreboard.DistributionEstimate, from, to float64) ([]float64, []float64) {
	xs := make([]float64, densitySamples)
	ys := make([]float64, densitySamples)
	step := (to - from) / float64(densitySamples-1)

	for i := 0; i < densitySamples; i++ {
		x := from + step*float64(i)
		xs[i] = x
		ys[i] = est.Density(x)
	}
	return xs, ys
}

func renderNoDataPlaceholder() ([]byte, error) {
	const (
		width  = 400
		height = 200
		msg    = "Not enough matches to estimate distributions"
	)

	// Render rejects a chart without a visible series, so the placeholder
	// carries one painted in the background colour. Axes stay hidden.
	graph := chart.Chart{
		Width:  width,
		Height: height,
		Background: chart.Style{
			FillColor: backgroundColour,
		},
		Canvas: chart.Style{
			FillColor: backgroundColour,
		},
		XAxis: chart.XAxis{
			Style: chart.Style{Hidden: true},
		},
		YAxis: chart.YAxis{
			Style: chart.Style{Hidden: true},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: []float64{0, 1},
				YValues: []float64{0, 1},
				Style: chart.Style{
					StrokeColor: backgroundColour,
					StrokeWidth: 1,
				},
			},
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, chartDefaults chart.Style) {
				r.SetFontColor(textColour)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}
