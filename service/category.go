package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"costeo/model"
)

type CategoryInput struct {
	HotelID     uint   `json:"hotel_id" form:"hotel_id"`
	Name        string `json:"name" form:"name"`
	Kind        string `json:"kind" form:"kind"`
	Description string `json:"description" form:"description"`
}

type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

func (s *CategoryService) List(ctx context.Context, scope Scope, f ListFilter) (*Page[model.Category], error) {
	f.normalize()
	// categories have no active flag
	f.Active = nil
	q := s.db.WithContext(ctx).Model(&model.Category{})
	q = scope.restrict(q, "categories.hotel_id")
	q = f.apply(q, "categories")
	if f.Kind != "" {
		q = q.Where("categories.kind = ?", f.Kind)
	}
	return paginate[model.Category](q, f)
}

func (s *CategoryService) Get(ctx context.Context, scope Scope, id uint) (*model.Category, error) {
	var c model.Category
	q := scope.restrict(s.db.WithContext(ctx), "hotel_id")
	if err := q.First(&c, id).Error; err != nil {
		return nil, dbError(err)
	}
	return &c, nil
}

func (s *CategoryService) Create(ctx context.Context, scope Scope, in CategoryInput) (*model.Category, error) {
	name, err := requireName(in.Name)
	if err != nil {
		return nil, err
	}
	kind := model.CategoryKind(in.Kind)
	if !kind.Valid() {
		return nil, invalid("kind", "must be ingredient or dish")
	}
	hotelID, err := scope.targetHotel(in.HotelID)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if err := requireHotel(db, hotelID); err != nil {
		return nil, err
	}

	c := model.Category{HotelID: hotelID, Name: name, Kind: kind, Description: in.Description}
	if err := db.Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CategoryService) Update(ctx context.Context, scope Scope, id uint, in CategoryInput) (*model.Category, error) {
	c, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		c.Name = name
	}
	if in.Kind != "" && model.CategoryKind(in.Kind) != c.Kind {
		kind := model.CategoryKind(in.Kind)
		if !kind.Valid() {
			return nil, invalid("kind", "must be ingredient or dish")
		}
		// a category in use keeps its kind
		if err := checkDependents(s.db.WithContext(ctx), "category", id,
			dependent{"ingredients", &model.Ingredient{}, "category_id"},
			dependent{"dishes", &model.Dish{}, "category_id"},
		); err != nil {
			return nil, err
		}
		c.Kind = kind
	}
	if in.Description != "" {
		c.Description = in.Description
	}
	if err := s.db.WithContext(ctx).Save(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, scope Scope, id uint) error {
	c, err := s.Get(ctx, scope, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkDependents(tx, "category", id,
			dependent{"ingredients", &model.Ingredient{}, "category_id"},
			dependent{"dishes", &model.Dish{}, "category_id"},
		); err != nil {
			return err
		}
		return tx.Delete(c).Error
	})
}

// resolveCategory checks that categoryID exists, belongs to hotelID and has the given kind.
func resolveCategory(db *gorm.DB, scope Scope, hotelID uint, categoryID *uint, kind model.CategoryKind) error {
	if categoryID == nil || *categoryID == 0 {
		return nil
	}
	var c model.Category
	err := db.First(&c, *categoryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return invalid("category_id", "does not exist")
	}
	if err != nil {
		return err
	}
	if c.HotelID != hotelID || !scope.owns(c.HotelID) {
		return ErrForbidden
	}
	if c.Kind != kind {
		return invalid("category_id", "must be a "+string(kind)+" category")
	}
	return nil
}

type UnitInput struct {
	Name         string `json:"name" form:"name"`
	Abbreviation string `json:"abbreviation" form:"abbreviation"`
}

// UnitService manages the global unit catalog. Writes are admin-only.
type UnitService struct {
	db *gorm.DB
}

func NewUnitService(db *gorm.DB) *UnitService {
	return &UnitService{db: db}
}

func (s *UnitService) List(ctx context.Context, f ListFilter) (*Page[model.UnitOfMeasure], error) {
	f.normalize()
	q := s.db.WithContext(ctx).Model(&model.UnitOfMeasure{})
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(abbreviation) LIKE ?", like, like)
	}
	return paginate[model.UnitOfMeasure](q, f)
}

func (s *UnitService) Get(ctx context.Context, id uint) (*model.UnitOfMeasure, error) {
	var u model.UnitOfMeasure
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, dbError(err)
	}
	return &u, nil
}

func (s *UnitService) nameTaken(ctx context.Context, name string, exceptID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.UnitOfMeasure{}).
		Where("LOWER(name) = ? AND id <> ?", strings.ToLower(name), exceptID).Count(&count).Error
	return count > 0, err
}

func (s *UnitService) Create(ctx context.Context, scope Scope, in UnitInput) (*model.UnitOfMeasure, error) {
	if !scope.Admin() {
		return nil, ErrForbidden
	}
	name, err := requireName(in.Name)
	if err != nil {
		return nil, err
	}
	abbr := strings.TrimSpace(in.Abbreviation)
	if abbr == "" {
		return nil, invalid("abbreviation", "is required")
	}
	taken, err := s.nameTaken(ctx, name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrConflict
	}
	u := model.UnitOfMeasure{Name: name, Abbreviation: abbr}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, dbError(err)
	}
	return &u, nil
}

func (s *UnitService) Update(ctx context.Context, scope Scope, id uint, in UnitInput) (*model.UnitOfMeasure, error) {
	if !scope.Admin() {
		return nil, ErrForbidden
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" && name != u.Name {
		taken, err := s.nameTaken(ctx, name, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrConflict
		}
		u.Name = name
	}
	if abbr := strings.TrimSpace(in.Abbreviation); abbr != "" {
		u.Abbreviation = abbr
	}
	if err := s.db.WithContext(ctx).Save(u).Error; err != nil {
		return nil, dbError(err)
	}
	return u, nil
}

func (s *UnitService) Delete(ctx context.Context, scope Scope, id uint) error {
	if !scope.Admin() {
		return ErrForbidden
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkDependents(tx, "unit", id,
			dependent{"ingredients", &model.Ingredient{}, "unit_id"},
		); err != nil {
			return err
		}
		return tx.Delete(u).Error
	})
}
