package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"gorm.io/gorm"

	"costeo/model"
)

type DishInput struct {
	HotelID     uint   `json:"hotel_id" form:"hotel_id"`
	CategoryID  *uint  `json:"category_id" form:"category_id"`
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
}

type DishService struct {
	db            *gorm.DB
	images        ImageStore
	defaultFactor float64
}

func NewDishService(db *gorm.DB, images ImageStore, defaultFactor float64) *DishService {
	return &DishService{db: db, images: images, defaultFactor: defaultFactor}
}

func (s *DishService) List(ctx context.Context, scope Scope, f ListFilter) (*Page[model.Dish], error) {
	f.normalize()
	q := s.db.WithContext(ctx).Model(&model.Dish{})
	q = scope.restrict(q, "dishes.hotel_id")
	q = f.apply(q, "dishes")
	if f.CategoryID != 0 {
		q = q.Where("dishes.category_id = ?", f.CategoryID)
	}
	return paginate[model.Dish](q, f, "Category")
}

// Get returns the dish with its ingredient and recipe lines.
func (s *DishService) Get(ctx context.Context, scope Scope, id uint) (*model.Dish, error) {
	var d model.Dish
	q := scope.restrict(s.db.WithContext(ctx), "hotel_id").Preload("Category")
	q = preloadDishCosting(q)
	if err := q.First(&d, id).Error; err != nil {
		return nil, dbError(err)
	}
	return &d, nil
}

func (s *DishService) Create(ctx context.Context, scope Scope, in DishInput, image *multipart.FileHeader) (*model.Dish, error) {
	name, err := requireName(in.Name)
	if err != nil {
		return nil, err
	}
	hotelID, err := scope.targetHotel(in.HotelID)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if err := requireHotel(db, hotelID); err != nil {
		return nil, err
	}
	if err := resolveCategory(db, scope, hotelID, in.CategoryID, model.CategoryDish); err != nil {
		return nil, err
	}

	d := model.Dish{
		HotelID:     hotelID,
		CategoryID:  nonZero(in.CategoryID),
		Name:        name,
		Description: in.Description,
		Active:      true,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&d).Error; err != nil {
			return err
		}
		if image == nil {
			return nil
		}
		return replaceImage(s.images, image, "dish", d.ID, "", func(name string) error {
			return tx.Model(&d).Update("image", name).Error
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, scope, d.ID)
}

func (s *DishService) Update(ctx context.Context, scope Scope, id uint, in DishInput, image *multipart.FileHeader) (*model.Dish, error) {
	d, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	updates := map[string]interface{}{}
	if name := strings.TrimSpace(in.Name); name != "" {
		updates["name"] = name
	}
	if in.Description != "" {
		updates["description"] = in.Description
	}
	if in.CategoryID != nil && *in.CategoryID != 0 {
		if err := resolveCategory(db, scope, d.HotelID, in.CategoryID, model.CategoryDish); err != nil {
			return nil, err
		}
		updates["category_id"] = *in.CategoryID
	}
	if len(updates) > 0 {
		if err := db.Model(&model.Dish{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	if image != nil {
		err := replaceImage(s.images, image, "dish", id, d.Image, func(name string) error {
			return db.Model(&model.Dish{}).Where("id = ?", id).Update("image", name).Error
		})
		if err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, scope, id)
}

func (s *DishService) SetActive(ctx context.Context, scope Scope, id uint, active bool) (*model.Dish, error) {
	if _, err := s.Get(ctx, scope, id); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&model.Dish{}).Where("id = ?", id).Update("active", active).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, scope, id)
}

// Delete removes the dish and its lines unless a menu still lists it.
func (s *DishService) Delete(ctx context.Context, scope Scope, id uint) error {
	d, err := s.Get(ctx, scope, id)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkDependents(tx, "dish", id,
			dependent{"menu items", &model.MenuItem{}, "dish_id"},
		); err != nil {
			return err
		}
		if err := tx.Where("dish_id = ?", id).Delete(&model.DishIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("dish_id = ?", id).Delete(&model.DishRecipe{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Dish{}, id).Error
	})
	if err != nil {
		return err
	}
	removeImage(s.images, d.Image)
	return nil
}

// SetIngredients replaces the dish's direct ingredient lines.
func (s *DishService) SetIngredients(ctx context.Context, scope Scope, id uint, lines []LineInput) (*model.Dish, error) {
	d, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkIngredients(tx, d.HotelID, lines); err != nil {
			return err
		}
		if err := tx.Where("dish_id = ?", id).Delete(&model.DishIngredient{}).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		rows := make([]model.DishIngredient, 0, len(lines))
		for _, l := range lines {
			rows = append(rows, model.DishIngredient{DishID: id, IngredientID: l.IngredientID, Quantity: l.Quantity})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, scope, id)
}

// SetRecipes replaces the sub-recipes used by the dish.
func (s *DishService) SetRecipes(ctx context.Context, scope Scope, id uint, portions []PortionInput) (*model.Dish, error) {
	d, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkRecipes(tx, d.HotelID, portions); err != nil {
			return err
		}
		if err := tx.Where("dish_id = ?", id).Delete(&model.DishRecipe{}).Error; err != nil {
			return err
		}
		if len(portions) == 0 {
			return nil
		}
		rows := make([]model.DishRecipe, 0, len(portions))
		for _, p := range portions {
			rows = append(rows, model.DishRecipe{DishID: id, RecipeID: p.RecipeID, Portions: p.Portions})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, scope, id)
}

func checkRecipes(db *gorm.DB, hotelID uint, portions []PortionInput) error {
	ids := make([]uint, 0, len(portions))
	seen := map[uint]bool{}
	for i, p := range portions {
		if p.RecipeID == 0 {
			return invalid(fmt.Sprintf("recipes[%d].recipe_id", i), "is required")
		}
		if p.Portions <= 0 || !finite(p.Portions) {
			return invalid(fmt.Sprintf("recipes[%d].portions", i), "must be greater than 0")
		}
		if seen[p.RecipeID] {
			return invalid(fmt.Sprintf("recipes[%d].recipe_id", i), "is repeated")
		}
		seen[p.RecipeID] = true
		ids = append(ids, p.RecipeID)
	}
	if len(ids) == 0 {
		return nil
	}

	var found []model.Recipe
	if err := db.Select("id", "hotel_id").Where("id IN ?", ids).Find(&found).Error; err != nil {
		return err
	}
	owner := make(map[uint]uint, len(found))
	for _, r := range found {
		owner[r.ID] = r.HotelID
	}
	for _, id := range ids {
		h, ok := owner[id]
		if !ok {
			return invalid("recipe_id", fmt.Sprintf("%d does not exist", id))
		}
		if h != hotelID {
			return ErrForbidden
		}
	}
	return nil
}

// Cost prices the dish with its hotel's cost factor.
func (s *DishService) Cost(ctx context.Context, scope Scope, id uint) (*DishCost, error) {
	d, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	costs, err := dishCosts(db, []model.Dish{*d}, factorCache(db, s.defaultFactor))
	if err != nil {
		return nil, err
	}
	return costs[d.ID], nil
}
