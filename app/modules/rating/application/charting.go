package ratingservice

import (
	"bytes"
	"context"
	"fmt"
	"time"

	ratingdomain "github.com/Black-And-White-Club/league-ratings/app/modules/rating/domain"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartPalette holds the colors of rendered charts.
type ChartPalette struct {
	Background  drawing.Color
	PrimaryLine drawing.Color
	AccentLine  drawing.Color
	TextColor   drawing.Color
}

// DefaultChartPalette is used by RatingHistoryChart.
var DefaultChartPalette = ChartPalette{
	Background:  drawing.ColorFromHex("0f1f17"),
	PrimaryLine: drawing.ColorFromHex("4caf7a"),
	AccentLine:  drawing.ColorFromHex("d4af37"),
	TextColor:   drawing.ColorFromHex("e8efe9"),
}

// RatingHistoryChart renders an entity's rating history as a PNG.
func (s *RatingService) RatingHistoryChart(ctx context.Context, leagueID ratingdomain.LeagueID, entityID ratingdomain.EntityID, since time.Time) ([]byte, error) {
	return withTelemetry(s, ctx, "RatingHistoryChart", string(entityID), func(ctx context.Context) ([]byte, error) {
		history, err := s.ledger.History(ctx, nil, leagueID, entityID, since)
		if err != nil {
			return nil, err
		}
		return GenerateRatingHistoryChart(history, DefaultChartPalette)
	})
}

// GenerateRatingHistoryChart produces a PNG line chart of rating after each game.
// The first point is the rating the entity entered its first charted game with.
func GenerateRatingHistoryChart(history []ratingdomain.RatingRecord, palette ChartPalette) ([]byte, error) {
	if len(history) == 0 {
		return renderNoDataPlaceholder(palette)
	}

	xValues := make([]time.Time, 0, len(history)+1)
	yValues := make([]float64, 0, len(history)+1)

	xValues = append(xValues, history[0].Timestamp.Add(-time.Second))
	yValues = append(yValues, float64(history[0].RatingBefore))
	for _, rec := range history {
		xValues = append(xValues, rec.Timestamp)
		yValues = append(yValues, float64(rec.RatingAfter))
	}

	mainSeries := chart.TimeSeries{
		Name:    "Rating",
		XValues: xValues,
		YValues: yValues,
		Style: chart.Style{
			StrokeColor: palette.PrimaryLine,
			StrokeWidth: 2,
			DotWidth:    4,
			DotColor:    palette.AccentLine,
		},
	}

	graph := chart.Chart{
		Width:  800,
		Height: 400,
		Background: chart.Style{
			FillColor: palette.Background,
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
			Style: chart.Style{
				FontColor: palette.TextColor,
			},
		},
		YAxis: chart.YAxis{
			Name: "Rating",
			Style: chart.Style{
				FontColor: palette.TextColor,
			},
		},
		Series: []chart.Series{mainSeries},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render rating chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// renderNoDataPlaceholder draws the message straight onto a PNG canvas:
// Chart.Render refuses a chart without series.
func renderNoDataPlaceholder(palette ChartPalette) ([]byte, error) {
	const (
		width  = 400
		height = 200
		msg    = "No rated games yet"
	)

	r, err := chart.PNG(width, height)
	if err != nil {
		return nil, fmt.Errorf("failed to create placeholder canvas: %w", err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("failed to load chart font: %w", err)
	}

	r.SetFillColor(palette.Background)
	r.MoveTo(0, 0)
	r.LineTo(width, 0)
	r.LineTo(width, height)
	r.LineTo(0, height)
	r.Close()
	r.Fill()

	r.SetFont(font)
	r.SetFontColor(palette.TextColor)
	r.SetFontSize(12.0)
	tb := r.MeasureText(msg)
	r.Text(msg, (width-tb.Width())/2, (height+tb.Height())/2)

	buffer := bytes.NewBuffer([]byte{})
	if err := r.Save(buffer); err != nil {
		return nil, fmt.Errorf("failed to render placeholder chart: %w", err)
	}
	return buffer.Bytes(), nil
}
