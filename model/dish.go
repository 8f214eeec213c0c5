package model

import (
	"time"

	"gorm.io/gorm"
)

type Ingredient struct {
	gorm.Model
	HotelID     uint           `json:"hotel_id" gorm:"index;not null"`
	CategoryID  *uint          `json:"category_id" gorm:"index"`
	Category    *Category      `json:"category,omitempty"`
	UnitID      uint           `json:"unit_id" gorm:"index;not null"`
	Unit        *UnitOfMeasure `json:"unit,omitempty"`
	Code        string         `json:"code" gorm:"size:50;index"`
	Name        string         `json:"name" gorm:"size:150;not null"`
	Description string         `json:"description" gorm:"type:text"`
	UnitCost    float64        `json:"unit_cost" gorm:"type:decimal(12,4);not null"`
	Active      bool           `json:"active"`
}

type Recipe struct {
	gorm.Model
	HotelID       uint               `json:"hotel_id" gorm:"index;not null"`
	Name          string             `json:"name" gorm:"size:150;not null"`
	Description   string             `json:"description" gorm:"type:text"`
	Instructions  string             `json:"instructions" gorm:"type:text"`
	YieldPortions float64            `json:"yield_portions" gorm:"type:decimal(10,2);not null"`
	Active        bool               `json:"active"`
	Lines         []RecipeIngredient `json:"lines,omitempty" gorm:"foreignKey:RecipeID"`
}

type RecipeIngredient struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	RecipeID     uint        `json:"recipe_id" gorm:"index;not null"`
	IngredientID uint        `json:"ingredient_id" gorm:"index;not null"`
	Ingredient   *Ingredient `json:"ingredient,omitempty"`
	Quantity     float64     `json:"quantity" gorm:"type:decimal(12,4);not null"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Dish is a platillo: ingredients used directly plus portions of sub-recipes.
type Dish struct {
	gorm.Model
	HotelID     uint             `json:"hotel_id" gorm:"index;not null"`
	CategoryID  *uint            `json:"category_id" gorm:"index"`
	Category    *Category        `json:"category,omitempty"`
	Name        string           `json:"name" gorm:"size:150;not null"`
	Description string           `json:"description" gorm:"type:text"`
	Image       string           `json:"image" gorm:"size:255"`
	Active      bool             `json:"active"`
	Ingredients []DishIngredient `json:"ingredients,omitempty" gorm:"foreignKey:DishID"`
	Recipes     []DishRecipe     `json:"recipes,omitempty" gorm:"foreignKey:DishID"`
}

type DishIngredient struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	DishID       uint        `json:"dish_id" gorm:"index;not null"`
	IngredientID uint        `json:"ingredient_id" gorm:"index;not null"`
	Ingredient   *Ingredient `json:"ingredient,omitempty"`
	Quantity     float64     `json:"quantity" gorm:"type:decimal(12,4);not null"`
	CreatedAt    time.Time   `json:"created_at"`
}

type DishRecipe struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	DishID    uint      `json:"dish_id" gorm:"index;not null"`
	RecipeID  uint      `json:"recipe_id" gorm:"index;not null"`
	Recipe    *Recipe   `json:"recipe,omitempty"`
	Portions  float64   `json:"portions" gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time `json:"created_at"`
}
