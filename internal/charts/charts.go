// Package charts renders report data as PNG images.
package charts

import (
	"errors"
	"fmt"

	"github.com/go-analyze/charts"
	"gitlab.com/yelinaung/budget-tracker/internal/tracker"
)

// ErrNoSpending is returned when a report has nothing to plot.
var ErrNoSpending = errors.New("no spending to chart")

// CategoryPie draws the report's per-category spend as a pie chart.
// Categories with no spending are left out.
func CategoryPie(report *tracker.Report) ([]byte, error) {
	var values []float64
	var names []string
	for _, row := range report.Categories {
		if !row.Spent.IsPositive() {
			continue
		}
		values = append(values, row.Spent.InexactFloat64())
		names = append(names, row.Name)
	}
	if len(values) == 0 {
		return nil, ErrNoSpending
	}

	p, err := charts.PieRender(
		values,
		charts.TitleOptionFunc(charts.TitleOption{
			Text: fmt.Sprintf("Spending by category - %s", report.Period),
		}),
		charts.LegendLabelsOptionFunc(names),
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
