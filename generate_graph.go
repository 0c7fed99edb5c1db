//go:build ignore
// +build ignore

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/budget-tracker/internal/charts"
	"gitlab.com/yelinaung/budget-tracker/internal/models"
	"gitlab.com/yelinaung/budget-tracker/internal/tracker"
)

func main() {
	report := &tracker.Report{
		Period: models.Period{Month: time.June, Year: 2024},
		Categories: []tracker.CategoryReport{
			{CategoryID: 1, Name: "Food", Spent: decimal.NewFromFloat(281.00)},
			{CategoryID: 2, Name: "Transport", Spent: decimal.NewFromFloat(60.00)},
			{CategoryID: 3, Name: "Entertainment", Spent: decimal.NewFromFloat(25.00)},
			{CategoryID: 5, Name: "Utilities", Spent: decimal.NewFromFloat(120.00)},
		},
	}

	chartData, err := charts.CategoryPie(report)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile("graph.png", chartData, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Created graph.png with an example category breakdown")
}
