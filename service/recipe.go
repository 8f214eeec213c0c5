package service

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"costeo/model"
)

type RecipeInput struct {
	HotelID       uint     `json:"hotel_id" form:"hotel_id"`
	Name          string   `json:"name" form:"name"`
	Description   string   `json:"description" form:"description"`
	Instructions  string   `json:"instructions" form:"instructions"`
	YieldPortions *float64 `json:"yield_portions" form:"yield_portions"`
}

type RecipeService struct {
	db *gorm.DB
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

func (s *RecipeService) List(ctx context.Context, scope Scope, f ListFilter) (*Page[model.Recipe], error) {
	f.normalize()
	q := s.db.WithContext(ctx).Model(&model.Recipe{})
	q = scope.restrict(q, "recipes.hotel_id")
	q = f.apply(q, "recipes")
	return paginate[model.Recipe](q, f)
}

// Get returns the recipe with its lines.
func (s *RecipeService) Get(ctx context.Context, scope Scope, id uint) (*model.Recipe, error) {
	var r model.Recipe
	q := scope.restrict(s.db.WithContext(ctx), "hotel_id").Preload("Lines.Ingredient.Unit")
	if err := q.First(&r, id).Error; err != nil {
		return nil, dbError(err)
	}
	return &r, nil
}

func (s *RecipeService) Create(ctx context.Context, scope Scope, in RecipeInput) (*model.Recipe, error) {
	name, err := requireName(in.Name)
	if err != nil {
		return nil, err
	}
	if in.YieldPortions == nil || *in.YieldPortions <= 0 || !finite(*in.YieldPortions) {
		return nil, invalid("yield_portions", "must be greater than 0")
	}
	hotelID, err := scope.targetHotel(in.HotelID)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if err := requireHotel(db, hotelID); err != nil {
		return nil, err
	}

	r := model.Recipe{
		HotelID:       hotelID,
		Name:          name,
		Description:   in.Description,
		Instructions:  in.Instructions,
		YieldPortions: *in.YieldPortions,
		Active:        true,
	}
	if err := db.Create(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *RecipeService) Update(ctx context.Context, scope Scope, id uint, in RecipeInput) (*model.Recipe, error) {
	r, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		r.Name = name
	}
	if in.Description != "" {
		r.Description = in.Description
	}
	if in.Instructions != "" {
		r.Instructions = in.Instructions
	}
	if in.YieldPortions != nil {
		if *in.YieldPortions <= 0 || !finite(*in.YieldPortions) {
			return nil, invalid("yield_portions", "must be greater than 0")
		}
		r.YieldPortions = *in.YieldPortions
	}
	if err := s.db.WithContext(ctx).Omit("Lines").Save(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

func (s *RecipeService) SetActive(ctx context.Context, scope Scope, id uint, active bool) (*model.Recipe, error) {
	r, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&model.Recipe{}).Where("id = ?", id).Update("active", active).Error; err != nil {
		return nil, err
	}
	r.Active = active
	return r, nil
}

// Delete removes the recipe and its lines unless a dish still uses it.
func (s *RecipeService) Delete(ctx context.Context, scope Scope, id uint) error {
	r, err := s.Get(ctx, scope, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkDependents(tx, "recipe", id,
			dependent{"dishes", &model.DishRecipe{}, "recipe_id"},
		); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&model.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return tx.Delete(r).Error
	})
}

// SetLines replaces every ingredient line of the recipe.
func (s *RecipeService) SetLines(ctx context.Context, scope Scope, id uint, lines []LineInput) (*model.Recipe, error) {
	r, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkIngredients(tx, r.HotelID, lines); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&model.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		rows := make([]model.RecipeIngredient, 0, len(lines))
		for _, l := range lines {
			rows = append(rows, model.RecipeIngredient{RecipeID: id, IngredientID: l.IngredientID, Quantity: l.Quantity})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, scope, id)
}

// Cost returns the recipe total and cost per portion.
func (s *RecipeService) Cost(ctx context.Context, scope Scope, id uint) (*RecipeCost, error) {
	r, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	return recipeCost(r)
}
