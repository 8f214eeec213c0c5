package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"gorm.io/gorm"

	"costeo/model"
	"costeo/report"
)

type IngredientInput struct {
	HotelID     uint     `json:"hotel_id" form:"hotel_id"`
	CategoryID  *uint    `json:"category_id" form:"category_id"`
	UnitID      uint     `json:"unit_id" form:"unit_id"`
	Code        string   `json:"code" form:"code"`
	Name        string   `json:"name" form:"name"`
	Description string   `json:"description" form:"description"`
	UnitCost    *float64 `json:"unit_cost" form:"unit_cost"`
}

// ImportResult summarizes a spreadsheet import.
type ImportResult struct {
	Created int               `json:"created"`
	Updated int               `json:"updated"`
	Skipped []report.RowError `json:"skipped"`
}

type IngredientService struct {
	db *gorm.DB
}

func NewIngredientService(db *gorm.DB) *IngredientService {
	return &IngredientService{db: db}
}

func (s *IngredientService) List(ctx context.Context, scope Scope, f ListFilter) (*Page[model.Ingredient], error) {
	f.normalize()
	q := s.db.WithContext(ctx).Model(&model.Ingredient{})
	q = scope.restrict(q, "ingredients.hotel_id")
	q = f.apply(q, "ingredients")
	if f.CategoryID != 0 {
		q = q.Where("ingredients.category_id = ?", f.CategoryID)
	}
	return paginate[model.Ingredient](q, f, "Unit", "Category")
}

func (s *IngredientService) Get(ctx context.Context, scope Scope, id uint) (*model.Ingredient, error) {
	var ing model.Ingredient
	q := scope.restrict(s.db.WithContext(ctx), "hotel_id").Preload("Unit").Preload("Category")
	if err := q.First(&ing, id).Error; err != nil {
		return nil, dbError(err)
	}
	return &ing, nil
}

func requireUnit(db *gorm.DB, unitID uint) error {
	if unitID == 0 {
		return invalid("unit_id", "is required")
	}
	var u model.UnitOfMeasure
	err := db.Select("id").First(&u, unitID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return invalid("unit_id", "does not exist")
	}
	return err
}

func (s *IngredientService) Create(ctx context.Context, scope Scope, in IngredientInput) (*model.Ingredient, error) {
	name, err := requireName(in.Name)
	if err != nil {
		return nil, err
	}
	if in.UnitCost == nil {
		return nil, invalid("unit_cost", "is required")
	}
	if !finite(*in.UnitCost) {
		return nil, invalid("unit_cost", "must be a finite number")
	}
	if *in.UnitCost < 0 {
		return nil, invalid("unit_cost", "must not be negative")
	}
	hotelID, err := scope.targetHotel(in.HotelID)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if err := requireHotel(db, hotelID); err != nil {
		return nil, err
	}
	if err := requireUnit(db, in.UnitID); err != nil {
		return nil, err
	}
	if err := resolveCategory(db, scope, hotelID, in.CategoryID, model.CategoryIngredient); err != nil {
		return nil, err
	}

	ing := model.Ingredient{
		HotelID:     hotelID,
		CategoryID:  nonZero(in.CategoryID),
		UnitID:      in.UnitID,
		Code:        strings.TrimSpace(in.Code),
		Name:        name,
		Description: in.Description,
		UnitCost:    *in.UnitCost,
		Active:      true,
	}
	if err := db.Create(&ing).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, scope, ing.ID)
}

func nonZero(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	return id
}

func (s *IngredientService) Update(ctx context.Context, scope Scope, id uint, in IngredientInput) (*model.Ingredient, error) {
	ing, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	if name := strings.TrimSpace(in.Name); name != "" {
		ing.Name = name
	}
	if code := strings.TrimSpace(in.Code); code != "" {
		ing.Code = code
	}
	if in.Description != "" {
		ing.Description = in.Description
	}
	if in.UnitCost != nil {
		if !finite(*in.UnitCost) {
			return nil, invalid("unit_cost", "must be a finite number")
		}
		if *in.UnitCost < 0 {
			return nil, invalid("unit_cost", "must not be negative")
		}
		ing.UnitCost = *in.UnitCost
	}
	if in.UnitID != 0 && in.UnitID != ing.UnitID {
		if err := requireUnit(db, in.UnitID); err != nil {
			return nil, err
		}
		ing.UnitID = in.UnitID
		ing.Unit = nil
	}
	if in.CategoryID != nil && *in.CategoryID != 0 {
		if err := resolveCategory(db, scope, ing.HotelID, in.CategoryID, model.CategoryIngredient); err != nil {
			return nil, err
		}
		ing.CategoryID = in.CategoryID
		ing.Category = nil
	}

	if err := db.Omit("Unit", "Category").Save(ing).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, scope, id)
}

func (s *IngredientService) SetActive(ctx context.Context, scope Scope, id uint, active bool) (*model.Ingredient, error) {
	ing, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&model.Ingredient{}).Where("id = ?", id).Update("active", active).Error; err != nil {
		return nil, err
	}
	ing.Active = active
	return ing, nil
}

func (s *IngredientService) Delete(ctx context.Context, scope Scope, id uint) error {
	ing, err := s.Get(ctx, scope, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkDependents(tx, "ingredient", id,
			dependent{"recipe lines", &model.RecipeIngredient{}, "ingredient_id"},
			dependent{"dish lines", &model.DishIngredient{}, "ingredient_id"},
		); err != nil {
			return err
		}
		return tx.Delete(ing).Error
	})
}

// Import reads a price list and upserts ingredients of one hotel. Rows
// with a code matching an existing ingredient update its name, unit, cost
// and category; other rows create new ingredients. Unusable rows are skipped.
func (s *IngredientService) Import(ctx context.Context, scope Scope, hotelID uint, r io.Reader) (*ImportResult, error) {
	hotelID, err := scope.targetHotel(hotelID)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if err := requireHotel(db, hotelID); err != nil {
		return nil, err
	}

	rows, skipped, err := report.ParseIngredientSheet(r)
	if err != nil {
		return nil, invalid("file", err.Error())
	}

	var units []model.UnitOfMeasure
	if err := db.Find(&units).Error; err != nil {
		return nil, err
	}
	unitIDs := make(map[string]uint, len(units)*2)
	for _, u := range units {
		unitIDs[strings.ToLower(u.Abbreviation)] = u.ID
		unitIDs[strings.ToLower(u.Name)] = u.ID
	}

	var cats []model.Category
	if err := db.Where("hotel_id = ? AND kind = ?", hotelID, model.CategoryIngredient).Find(&cats).Error; err != nil {
		return nil, err
	}
	catIDs := make(map[string]uint, len(cats))
	for _, c := range cats {
		catIDs[strings.ToLower(c.Name)] = c.ID
	}

	result := &ImportResult{Skipped: skipped}
	err = db.Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			unitID, ok := unitIDs[strings.ToLower(row.Unit)]
			if !ok {
				result.Skipped = append(result.Skipped, report.RowError{Row: row.Row, Error: "unknown unit " + row.Unit})
				continue
			}
			var categoryID *uint
			if row.Category != "" {
				id, ok := catIDs[strings.ToLower(row.Category)]
				if !ok {
					result.Skipped = append(result.Skipped, report.RowError{Row: row.Row, Error: "unknown category " + row.Category})
					continue
				}
				categoryID = &id
			}

			var existing model.Ingredient
			found := false
			if row.Code != "" {
				err := tx.Where("hotel_id = ? AND code = ?", hotelID, row.Code).First(&existing).Error
				if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				found = err == nil
			}

			if found {
				err := tx.Model(&existing).Updates(map[string]interface{}{
					"name":        row.Name,
					"unit_id":     unitID,
					"unit_cost":   row.UnitCost,
					"category_id": categoryID,
				}).Error
				if err != nil {
					return err
				}
				result.Updated++
				continue
			}

			ing := model.Ingredient{
				HotelID:    hotelID,
				CategoryID: categoryID,
				UnitID:     unitID,
				Code:       row.Code,
				Name:       row.Name,
				UnitCost:   row.UnitCost,
				Active:     true,
			}
			if err := tx.Create(&ing).Error; err != nil {
				return err
			}
			result.Created++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PriceList returns every active ingredient of the caller's hotels as export rows.
func (s *IngredientService) PriceList(ctx context.Context, scope Scope, hotelID uint) ([]report.IngredientRow, error) {
	q := s.db.WithContext(ctx).Preload("Unit").Preload("Category").Where("active = ?", true)
	q = scope.restrict(q, "hotel_id")
	if hotelID != 0 {
		q = q.Where("hotel_id = ?", hotelID)
	}
	var ingredients []model.Ingredient
	if err := q.Order("name").Find(&ingredients).Error; err != nil {
		return nil, err
	}

	rows := make([]report.IngredientRow, 0, len(ingredients))
	for _, ing := range ingredients {
		row := report.IngredientRow{Code: ing.Code, Name: ing.Name, UnitCost: ing.UnitCost}
		if ing.Unit != nil {
			row.Unit = ing.Unit.Abbreviation
		}
		if ing.Category != nil {
			row.Category = ing.Category.Name
		}
		rows = append(rows, row)
	}
	return rows, nil
}
