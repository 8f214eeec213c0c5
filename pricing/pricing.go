// Package pricing holds the cost and price rollups shown on dashboards
// and reports. Everything here is pure arithmetic over float64 amounts.
package pricing

import (
	"errors"
	"math"
)

// DefaultCostFactor is the target food-cost ratio used when neither the
// configuration nor the hotel settings provide one.
const DefaultCostFactor = 0.30

var (
	ErrInvalidFactor = errors.New("cost factor must be greater than 0 and at most 1")
	ErrInvalidYield  = errors.New("recipe yield must be greater than 0")
)

// Line is one ingredient usage: quantity expressed in the ingredient's unit.
type Line struct {
	Quantity float64
	UnitCost float64
}

// RecipeUsage is a sub-recipe used by a dish, in portions.
type RecipeUsage struct {
	Portions       float64
	CostPerPortion float64
}

// RecipeSummary is the rollup of a recipe.
type RecipeSummary struct {
	TotalCost      float64 `json:"total_cost"`
	YieldPortions  float64 `json:"yield_portions"`
	CostPerPortion float64 `json:"cost_per_portion"`
}

// DishSummary is the rollup of a dish.
type DishSummary struct {
	IngredientCost     float64 `json:"ingredient_cost"`
	RecipeCost         float64 `json:"recipe_cost"`
	AdministrativeCost float64 `json:"administrative_cost"`
	CostFactor         float64 `json:"cost_factor"`
	SuggestedPrice     float64 `json:"suggested_price"`
}

// MarginSummary compares a sale price against a cost.
type MarginSummary struct {
	SalePrice     float64 `json:"sale_price"`
	Cost          float64 `json:"cost"`
	Profit        float64 `json:"profit"`
	MarginPercent float64 `json:"margin_percent"`
	CostPercent   float64 `json:"cost_percent"`
}

// Round2 rounds an amount to cents.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func LineCost(quantity, unitCost float64) float64 {
	return quantity * unitCost
}

func sumLines(lines []Line) float64 {
	var total float64
	for _, l := range lines {
		total += LineCost(l.Quantity, l.UnitCost)
	}
	return total
}

// Recipe totals the ingredient lines and splits the total across the yield.
func Recipe(lines []Line, yieldPortions float64) (RecipeSummary, error) {
	if yieldPortions <= 0 {
		return RecipeSummary{}, ErrInvalidYield
	}
	total := sumLines(lines)
	return RecipeSummary{
		TotalCost:      Round2(total),
		YieldPortions:  yieldPortions,
		CostPerPortion: Round2(total / yieldPortions),
	}, nil
}

// ValidFactor reports whether f is usable as a cost factor.
func ValidFactor(f float64) bool {
	return f > 0 && f <= 1
}

// SuggestedPrice derives a sale price from the administrative cost.
func SuggestedPrice(administrativeCost, factor float64) (float64, error) {
	if !ValidFactor(factor) {
		return 0, ErrInvalidFactor
	}
	return Round2(administrativeCost / factor), nil
}

// Dish adds direct ingredient cost and sub-recipe cost and prices the result.
func Dish(lines []Line, recipes []RecipeUsage, factor float64) (DishSummary, error) {
	ingredientCost := sumLines(lines)

	var recipeCost float64
	for _, r := range recipes {
		recipeCost += r.Portions * r.CostPerPortion
	}

	admin := ingredientCost + recipeCost
	suggested, err := SuggestedPrice(admin, factor)
	if err != nil {
		return DishSummary{}, err
	}

	return DishSummary{
		IngredientCost:     Round2(ingredientCost),
		RecipeCost:         Round2(recipeCost),
		AdministrativeCost: Round2(admin),
		CostFactor:         factor,
		SuggestedPrice:     suggested,
	}, nil
}

// Margin compares salePrice with cost. A zero sale price yields zero percentages.
func Margin(salePrice, cost float64) MarginSummary {
	m := MarginSummary{
		SalePrice: Round2(salePrice),
		Cost:      Round2(cost),
		Profit:    Round2(salePrice - cost),
	}
	if salePrice != 0 {
		m.MarginPercent = Round2((salePrice - cost) / salePrice * 100)
		m.CostPercent = Round2(cost / salePrice * 100)
	}
	return m
}

// AverageMargin returns the mean margin percent, ignoring items without a sale price.
func AverageMargin(items []MarginSummary) float64 {
	var sum float64
	var n int
	for _, m := range items {
		if m.SalePrice == 0 {
			continue
		}
		sum += m.MarginPercent
		n++
	}
	if n == 0 {
		return 0
	}
	return Round2(sum / float64(n))
}
