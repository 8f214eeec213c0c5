package service

import (
	"fmt"

	"gorm.io/gorm"

	"costeo/model"
	"costeo/pricing"
)

// CostLine is one ingredient usage with its extended cost.
type CostLine struct {
	IngredientID uint    `json:"ingredient_id"`
	Ingredient   string  `json:"ingredient"`
	Unit         string  `json:"unit"`
	Quantity     float64 `json:"quantity"`
	UnitCost     float64 `json:"unit_cost"`
	Cost         float64 `json:"cost"`
}

// RecipePortion is one sub-recipe usage of a dish.
type RecipePortion struct {
	RecipeID       uint    `json:"recipe_id"`
	Recipe         string  `json:"recipe"`
	Portions       float64 `json:"portions"`
	CostPerPortion float64 `json:"cost_per_portion"`
	Cost           float64 `json:"cost"`
}

type RecipeCost struct {
	RecipeID uint       `json:"recipe_id"`
	Name     string     `json:"name"`
	Lines    []CostLine `json:"lines"`
	pricing.RecipeSummary
}

type DishCost struct {
	DishID      uint            `json:"dish_id"`
	Name        string          `json:"name"`
	Ingredients []CostLine      `json:"ingredients"`
	Recipes     []RecipePortion `json:"recipes"`
	pricing.DishSummary
}

// LineInput is one ingredient line of a recipe or dish.
type LineInput struct {
	IngredientID uint    `json:"ingredient_id" binding:"required"`
	Quantity     float64 `json:"quantity" binding:"required,gt=0"`
}

// PortionInput is one sub-recipe usage of a dish.
type PortionInput struct {
	RecipeID uint    `json:"recipe_id" binding:"required"`
	Portions float64 `json:"portions" binding:"required,gt=0"`
}

func costLine(ingredientID uint, ing *model.Ingredient, quantity float64) (CostLine, pricing.Line) {
	line := CostLine{IngredientID: ingredientID, Quantity: quantity}
	if ing != nil {
		line.Ingredient = ing.Name
		line.UnitCost = ing.UnitCost
		if ing.Unit != nil {
			line.Unit = ing.Unit.Abbreviation
		}
	}
	line.Cost = pricing.Round2(pricing.LineCost(quantity, line.UnitCost))
	return line, pricing.Line{Quantity: quantity, UnitCost: line.UnitCost}
}

func recipeCost(r *model.Recipe) (*RecipeCost, error) {
	lines := make([]CostLine, 0, len(r.Lines))
	priced := make([]pricing.Line, 0, len(r.Lines))
	for _, l := range r.Lines {
		cl, pl := costLine(l.IngredientID, l.Ingredient, l.Quantity)
		lines = append(lines, cl)
		priced = append(priced, pl)
	}
	summary, err := pricing.Recipe(priced, r.YieldPortions)
	if err != nil {
		return nil, fmt.Errorf("recipe %d: %w", r.ID, err)
	}
	return &RecipeCost{RecipeID: r.ID, Name: r.Name, Lines: lines, RecipeSummary: summary}, nil
}

// loadRecipeCosts returns the rollup of every recipe in ids.
func loadRecipeCosts(db *gorm.DB, ids []uint) (map[uint]*RecipeCost, error) {
	out := make(map[uint]*RecipeCost, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var recipes []model.Recipe
	if err := db.Preload("Lines.Ingredient.Unit").Where("id IN ?", ids).Find(&recipes).Error; err != nil {
		return nil, err
	}
	for i := range recipes {
		rc, err := recipeCost(&recipes[i])
		if err != nil {
			return nil, err
		}
		out[recipes[i].ID] = rc
	}
	return out, nil
}

// preloadDishCosting loads everything dishCosts needs.
func preloadDishCosting(q *gorm.DB) *gorm.DB {
	return q.Preload("Ingredients.Ingredient.Unit").Preload("Recipes.Recipe")
}

// dishCosts prices dishes loaded through preloadDishCosting. factorFor
// gives the cost factor of the dish's hotel.
func dishCosts(db *gorm.DB, dishes []model.Dish, factorFor func(hotelID uint) float64) (map[uint]*DishCost, error) {
	var recipeIDs []uint
	seen := map[uint]bool{}
	for _, d := range dishes {
		for _, r := range d.Recipes {
			if !seen[r.RecipeID] {
				seen[r.RecipeID] = true
				recipeIDs = append(recipeIDs, r.RecipeID)
			}
		}
	}
	recipes, err := loadRecipeCosts(db, recipeIDs)
	if err != nil {
		return nil, err
	}

	out := make(map[uint]*DishCost, len(dishes))
	for _, d := range dishes {
		lines := make([]CostLine, 0, len(d.Ingredients))
		priced := make([]pricing.Line, 0, len(d.Ingredients))
		for _, l := range d.Ingredients {
			cl, pl := costLine(l.IngredientID, l.Ingredient, l.Quantity)
			lines = append(lines, cl)
			priced = append(priced, pl)
		}

		portions := make([]RecipePortion, 0, len(d.Recipes))
		usages := make([]pricing.RecipeUsage, 0, len(d.Recipes))
		for _, r := range d.Recipes {
			p := RecipePortion{RecipeID: r.RecipeID, Portions: r.Portions}
			if rc, ok := recipes[r.RecipeID]; ok {
				p.Recipe = rc.Name
				p.CostPerPortion = rc.CostPerPortion
			}
			p.Cost = pricing.Round2(p.Portions * p.CostPerPortion)
			portions = append(portions, p)
			usages = append(usages, pricing.RecipeUsage{Portions: p.Portions, CostPerPortion: p.CostPerPortion})
		}

		summary, err := pricing.Dish(priced, usages, factorFor(d.HotelID))
		if err != nil {
			return nil, fmt.Errorf("dish %d: %w", d.ID, err)
		}
		out[d.ID] = &DishCost{DishID: d.ID, Name: d.Name, Ingredients: lines, Recipes: portions, DishSummary: summary}
	}
	return out, nil
}

// factorCache memoizes hotel cost factors for one request.
func factorCache(db *gorm.DB, def float64) func(hotelID uint) float64 {
	factors := map[uint]float64{}
	return func(hotelID uint) float64 {
		if f, ok := factors[hotelID]; ok {
			return f
		}
		f := costFactor(db, hotelID, def)
		factors[hotelID] = f
		return f
	}
}

// checkIngredients verifies every id exists and belongs to hotelID.
func checkIngredients(db *gorm.DB, hotelID uint, lines []LineInput) error {
	ids := make([]uint, 0, len(lines))
	seen := map[uint]bool{}
	for i, l := range lines {
		if l.IngredientID == 0 {
			return invalid(fmt.Sprintf("lines[%d].ingredient_id", i), "is required")
		}
		if l.Quantity <= 0 || !finite(l.Quantity) {
			return invalid(fmt.Sprintf("lines[%d].quantity", i), "must be greater than 0")
		}
		if seen[l.IngredientID] {
			return invalid(fmt.Sprintf("lines[%d].ingredient_id", i), "is repeated")
		}
		seen[l.IngredientID] = true
		ids = append(ids, l.IngredientID)
	}
	if len(ids) == 0 {
		return nil
	}

	var found []model.Ingredient
	if err := db.Select("id", "hotel_id").Where("id IN ?", ids).Find(&found).Error; err != nil {
		return err
	}
	owner := make(map[uint]uint, len(found))
	for _, ing := range found {
		owner[ing.ID] = ing.HotelID
	}
	for _, id := range ids {
		h, ok := owner[id]
		if !ok {
			return invalid("ingredient_id", fmt.Sprintf("%d does not exist", id))
		}
		if h != hotelID {
			return ErrForbidden
		}
	}
	return nil
}
