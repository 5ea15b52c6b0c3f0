package export

import (
	"errors"
	"fmt"

	"github.com/go-analyze/charts"
	"github.com/rain-corsiva-lab/internal-toolkit-sub000/internal/models"
	"github.com/shopspring/decimal"
)

// ErrEmptyBreakdown is returned when a breakdown has nothing to draw.
var ErrEmptyBreakdown = errors.New("breakdown has no positive components")

// BreakdownChart draws a pie chart of a cost breakdown and returns it as PNG
// bytes. Components with a zero or negative amount are left out, and
// components sharing a label are merged.
func BreakdownChart(breakdown models.Breakdown, title string) ([]byte, error) {
	labels, values := chartSeries(breakdown)
	if len(values) == 0 {
		return nil, ErrEmptyBreakdown
	}

	p, err := charts.PieRender(
		values,
		charts.TitleOptionFunc(charts.TitleOption{
			Text: title,
		}),
		charts.LegendLabelsOptionFunc(labels),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	return buf, nil
}

// chartSeries aggregates positive amounts by label, keeping first-seen order.
func chartSeries(breakdown models.Breakdown) ([]string, []float64) {
	totals := make(map[string]decimal.Decimal)
	var labels []string
	for _, c := range breakdown {
		if !c.Amount.IsPositive() {
			continue
		}
		if existing, ok := totals[c.Label]; ok {
			totals[c.Label] = existing.Add(c.Amount)
			continue
		}
		totals[c.Label] = c.Amount
		labels = append(labels, c.Label)
	}

	values := make([]float64, 0, len(labels))
	for _, l := range labels {
		values = append(values, totals[l].InexactFloat64())
	}
	return labels, values
}
