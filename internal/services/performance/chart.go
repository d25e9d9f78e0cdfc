package performance

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/fundboard/internal/common"
	"github.com/bobmcallan/fundboard/internal/models"
)

// RenderChart draws the share value series of a fund as PNG.
func (s *Service) RenderChart(ctx context.Context, fundID int64, limit int) ([]byte, error) {
	perf, err := s.GetFundPerformance(ctx, fundID, limit)
	if err != nil {
		return nil, err
	}
	return RenderShareValueChart(perf)
}

// RenderShareValueChart renders a PNG line chart of share value over time.
// Values are converted to float64 for plotting only.
func RenderShareValueChart(perf *models.FundPerformance) ([]byte, error) {
	if len(perf.Navs) < 2 {
		return nil, common.Invalidf("need at least 2 NAV points to chart fund %d, got %d", perf.FundID, len(perf.Navs))
	}

	xValues := make([]time.Time, len(perf.Navs))
	yValues := make([]float64, len(perf.Navs))
	for i, p := range perf.Navs {
		xValues[i] = p.AsOfDate.Time()
		yValues[i] = p.ShareValue.InexactFloat64()
	}

	series := chart.TimeSeries{
		Name: "Share Value",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: yValues,
	}

	currency := perf.Currency
	graph := chart.Chart{
		Title:  perf.FundName,
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f %s", f, currency)
				}
				return ""
			},
		},
		Series: []chart.Series{series},
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
