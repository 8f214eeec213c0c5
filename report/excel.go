package report

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SheetName is the sheet read on import and written on export.
const SheetName = "Sheet1"

var ErrNoDataRows = errors.New("excel must have a header and at least one row of data")

// IngredientHeader is the column layout shared by import and export.
var IngredientHeader = []string{"code", "name", "unit", "unit_cost", "category"}

var menuCostHeader = []string{"dish", "cost", "sale_price", "profit", "margin_percent", "cost_percent", "suggested_price"}

// IngredientRow is one ingredient line of a price list. Row is the 1-based
// sheet row it was read from.
type IngredientRow struct {
	Row      int     `json:"row"`
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	UnitCost float64 `json:"unit_cost"`
	Category string  `json:"category"`
}

// RowError reports why an import row was skipped.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type MenuCostRow struct {
	Dish           string
	Cost           float64
	SalePrice      float64
	Profit         float64
	MarginPercent  float64
	CostPercent    float64
	SuggestedPrice float64
}

// ParseIngredientSheet reads an ingredient price list. Rows that cannot be
// used are returned as RowErrors instead of failing the whole file.
func ParseIngredientSheet(r io.Reader) ([]IngredientRow, []RowError, error) {
	xl, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse excel file: %w", err)
	}
	defer xl.Close()

	rows, err := xl.GetRows(SheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", SheetName, err)
	}
	if len(rows) < 2 {
		return nil, nil, ErrNoDataRows
	}

	var out []IngredientRow
	var skipped []RowError
	for i, row := range rows[1:] {
		rowNum := i + 2
		if isBlank(row) {
			continue
		}
		if len(row) < 4 {
			skipped = append(skipped, RowError{Row: rowNum, Error: "incomplete row"})
			continue
		}

		name := strings.TrimSpace(row[1])
		if name == "" {
			skipped = append(skipped, RowError{Row: rowNum, Error: "name is required"})
			continue
		}
		unit := strings.TrimSpace(row[2])
		if unit == "" {
			skipped = append(skipped, RowError{Row: rowNum, Error: "unit is required"})
			continue
		}
		cost, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
		if err != nil || cost < 0 || math.IsNaN(cost) || math.IsInf(cost, 0) {
			skipped = append(skipped, RowError{Row: rowNum, Error: fmt.Sprintf("invalid unit cost %q", row[3])})
			continue
		}

		item := IngredientRow{
			Row:      rowNum,
			Code:     strings.TrimSpace(row[0]),
			Name:     name,
			Unit:     unit,
			UnitCost: cost,
		}
		if len(row) > 4 {
			item.Category = strings.TrimSpace(row[4])
		}
		out = append(out, item)
	}
	return out, skipped, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// WriteIngredients writes a price list in the same layout ParseIngredientSheet reads.
func WriteIngredients(w io.Writer, rows []IngredientRow) error {
	data := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		data = append(data, []interface{}{r.Code, r.Name, r.Unit, r.UnitCost, r.Category})
	}
	return writeSheet(w, IngredientHeader, data)
}

// WriteMenuCosts writes one row per menu item.
func WriteMenuCosts(w io.Writer, rows []MenuCostRow) error {
	data := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		data = append(data, []interface{}{
			r.Dish, r.Cost, r.SalePrice, r.Profit, r.MarginPercent, r.CostPercent, r.SuggestedPrice,
		})
	}
	return writeSheet(w, menuCostHeader, data)
}

func writeSheet(w io.Writer, header []string, rows [][]interface{}) error {
	xl := excelize.NewFile()
	defer xl.Close()

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := xl.SetSheetRow(SheetName, "A1", &headerRow); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := xl.SetSheetRow(SheetName, cell, &row); err != nil {
			return err
		}
	}
	_, err := xl.WriteTo(w)
	return err
}
