// Package chart renders the mood distribution bar chart served by the mood
// visualisation endpoint. The image is produced once at startup.
package chart

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/i474232898/weatherbeats/internal/store"
)

// TopMoods is how many moods the distribution chart shows.
const TopMoods = 10

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no mood counts to plot")

// barColor matches the bar colour of the original web page chart.
var barColor = drawing.ColorFromHex("1EB2F7")

// Image is an immutable base64-encoded PNG, serialised as {"image": ...}.
type Image struct {
	Data string `json:"image"`
}

// Bytes decodes the PNG.
func (i Image) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(i.Data)
}

// MoodCounter is the store query the chart is built from.
type MoodCounter interface {
	TopMoodCounts(ctx context.Context, limit int) ([]store.MoodCount, error)
}

// Build queries the top moods and renders them.
func Build(ctx context.Context, src MoodCounter) (Image, error) {
	counts, err := src.TopMoodCounts(ctx, TopMoods)
	if err != nil {
		return Image{}, fmt.Errorf("load mood counts: %w", err)
	}
	png, err := RenderPNG(counts)
	if err != nil {
		return Image{}, err
	}
	return Image{Data: base64.StdEncoding.EncodeToString(png)}, nil
}

// RenderPNG draws one bar per mood, labelled with the mood name, in the
// order given.
func RenderPNG(counts []store.MoodCount) ([]byte, error) {
	if len(counts) == 0 {
		return nil, ErrNoData
	}

	maxCount := 0
	bars := make([]gochart.Value, 0, len(counts))
	for _, mc := range counts {
		if mc.Count > maxCount {
			maxCount = mc.Count
		}
		bars = append(bars, gochart.Value{
			Label: mc.Mood,
			Value: float64(mc.Count),
			Style: gochart.Style{FillColor: barColor, StrokeColor: barColor},
		})
	}

	graph := gochart.BarChart{
		Title:  "Number of Songs per Mood",
		Width:  1600,
		Height: 960,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 60, Left: 20, Right: 20, Bottom: 20},
		},
		BarWidth:   80,
		BarSpacing: 40,
		XAxis:      gochart.Style{FontSize: 12},
		YAxis: gochart.YAxis{
			Name:  "Number of Songs",
			Style: gochart.Style{FontSize: 12},
			Range: &gochart.ContinuousRange{Min: 0, Max: float64(maxCount) * 1.1},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render mood chart: %w", err)
	}
	return buf.Bytes(), nil
}
