package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sheetBytes(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	xl := excelize.NewFile()
	defer xl.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, xl.SetSheetRow(SheetName, cell, &r))
	}
	buf := &bytes.Buffer{}
	_, err := xl.WriteTo(buf)
	require.NoError(t, err)
	return buf
}

func TestParseIngredientSheet(t *testing.T) {
	buf := sheetBytes(t, [][]interface{}{
		{"code", "name", "unit", "unit_cost", "category"},
		{"ING-1", "Tomate", "kg", "25.5", "Frutas y verduras"},
		{"", "", "kg", "3"},
		{"ING-3", "Sal", "kg", "abc"},
		{"ING-4", "Aceite", "l"},
		{},
		{"ING-6", "Harina", "kg", "12"},
		{"ING-7", "Queso", "", "80"},
		{"ING-8", "Limón", "kg", "-1"},
	})

	rows, skipped, err := ParseIngredientSheet(buf)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, IngredientRow{Row: 2, Code: "ING-1", Name: "Tomate", Unit: "kg", UnitCost: 25.5, Category: "Frutas y verduras"}, rows[0])
	assert.Equal(t, 7, rows[1].Row)
	assert.Empty(t, rows[1].Category)

	var skippedRows []int
	for _, s := range skipped {
		skippedRows = append(skippedRows, s.Row)
	}
	assert.Equal(t, []int{3, 4, 5, 8, 9}, skippedRows)
}

func TestParseIngredientSheet_NonFiniteCost(t *testing.T) {
	buf := sheetBytes(t, [][]interface{}{
		{"code", "name", "unit", "unit_cost"},
		{"ING-1", "Sal", "kg", "NaN"},
		{"ING-2", "Azúcar", "kg", "Inf"},
		{"ING-3", "Pimienta", "kg", "-Inf"},
		{"ING-4", "Arroz", "kg", "18"},
	})

	rows, skipped, err := ParseIngredientSheet(buf)
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, "Arroz", rows[0].Name)
	require.Len(t, skipped, 3)
	for _, s := range skipped {
		assert.Contains(t, s.Error, "invalid unit cost")
	}
}

func TestParseIngredientSheet_HeaderOnly(t *testing.T) {
	buf := sheetBytes(t, [][]interface{}{{"code", "name", "unit", "unit_cost"}})
	_, _, err := ParseIngredientSheet(buf)
	assert.ErrorIs(t, err, ErrNoDataRows)
}

func TestParseIngredientSheet_NotExcel(t *testing.T) {
	_, _, err := ParseIngredientSheet(bytes.NewBufferString("not a workbook"))
	assert.Error(t, err)
}

func TestWriteIngredients_ReadBack(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteIngredients(buf, []IngredientRow{
		{Code: "A", Name: "Arroz", Unit: "kg", UnitCost: 18.75, Category: "Abarrotes"},
	}))

	rows, skipped, err := ParseIngredientSheet(buf)
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, rows, 1)
	assert.Equal(t, "Arroz", rows[0].Name)
	assert.InDelta(t, 18.75, rows[0].UnitCost, 1e-9)
	assert.Equal(t, "Abarrotes", rows[0].Category)
}

func TestWriteMenuCosts(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteMenuCosts(buf, []MenuCostRow{
		{Dish: "Enchiladas", Cost: 30, SalePrice: 120, Profit: 90, MarginPercent: 75, CostPercent: 25, SuggestedPrice: 100},
	}))

	xl, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer xl.Close()

	rows, err := xl.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "dish", rows[0][0])
	assert.Equal(t, "Enchiladas", rows[1][0])
	assert.Equal(t, "120", rows[1][2])
}
