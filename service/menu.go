package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"costeo/model"
	"costeo/pricing"
)

type MenuInput struct {
	RestaurantID uint   `json:"restaurant_id" form:"restaurant_id"`
	Name         string `json:"name" form:"name"`
	Description  string `json:"description" form:"description"`
}

type MenuItemInput struct {
	DishID    uint     `json:"dish_id"`
	SalePrice *float64 `json:"sale_price" binding:"required"`
}

// ItemPricing is one priced menu line.
type ItemPricing struct {
	ItemID         uint    `json:"item_id"`
	DishID         uint    `json:"dish_id"`
	Dish           string  `json:"dish"`
	SuggestedPrice float64 `json:"suggested_price"`
	pricing.MarginSummary
}

type MenuPricing struct {
	MenuID        uint          `json:"menu_id"`
	Name          string        `json:"name"`
	Restaurant    string        `json:"restaurant"`
	CostFactor    float64       `json:"cost_factor"`
	AverageMargin float64       `json:"average_margin_percent"`
	Items         []ItemPricing `json:"items"`
}

type MenuService struct {
	db            *gorm.DB
	defaultFactor float64
}

func NewMenuService(db *gorm.DB, defaultFactor float64) *MenuService {
	return &MenuService{db: db, defaultFactor: defaultFactor}
}

func (s *MenuService) List(ctx context.Context, scope Scope, f ListFilter) (*Page[model.Menu], error) {
	f.normalize()
	q := s.db.WithContext(ctx).Model(&model.Menu{})
	q = scope.restrict(q, "menus.hotel_id")
	q = f.apply(q, "menus")
	if f.RestaurantID != 0 {
		q = q.Where("menus.restaurant_id = ?", f.RestaurantID)
	}
	return paginate[model.Menu](q, f, "Restaurant")
}

// Get returns the menu with its restaurant and items.
func (s *MenuService) Get(ctx context.Context, scope Scope, id uint) (*model.Menu, error) {
	var m model.Menu
	q := scope.restrict(s.db.WithContext(ctx), "hotel_id").
		Preload("Restaurant").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Dish")
	if err := q.First(&m, id).Error; err != nil {
		return nil, dbError(err)
	}
	return &m, nil
}

// ownedRestaurant loads a restaurant the caller may attach menus to.
func ownedRestaurant(db *gorm.DB, scope Scope, id uint) (*model.Restaurant, error) {
	if id == 0 {
		return nil, invalid("restaurant_id", "is required")
	}
	var r model.Restaurant
	err := db.First(&r, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invalid("restaurant_id", "does not exist")
	}
	if err != nil {
		return nil, err
	}
	if !scope.owns(r.HotelID) {
		return nil, ErrForbidden
	}
	return &r, nil
}

func (s *MenuService) Create(ctx context.Context, scope Scope, in MenuInput) (*model.Menu, error) {
	name, err := requireName(in.Name)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	r, err := ownedRestaurant(db, scope, in.RestaurantID)
	if err != nil {
		return nil, err
	}

	m := model.Menu{
		HotelID:      r.HotelID,
		RestaurantID: r.ID,
		Name:         name,
		Description:  in.Description,
		Active:       true,
	}
	if err := db.Create(&m).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, scope, m.ID)
}

// Update may move the menu to another restaurant of the same hotel.
func (s *MenuService) Update(ctx context.Context, scope Scope, id uint, in MenuInput) (*model.Menu, error) {
	m, err := s.Get(ctx, scope, id)
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
	if in.RestaurantID != 0 && in.RestaurantID != m.RestaurantID {
		r, err := ownedRestaurant(db, scope, in.RestaurantID)
		if err != nil {
			return nil, err
		}
		if r.HotelID != m.HotelID {
			return nil, ErrForbidden
		}
		updates["restaurant_id"] = r.ID
	}
	if len(updates) > 0 {
		if err := db.Model(&model.Menu{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, scope, id)
}

func (s *MenuService) SetActive(ctx context.Context, scope Scope, id uint, active bool) (*model.Menu, error) {
	if _, err := s.Get(ctx, scope, id); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&model.Menu{}).Where("id = ?", id).Update("active", active).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, scope, id)
}

// Delete removes the menu together with its items.
func (s *MenuService) Delete(ctx context.Context, scope Scope, id uint) error {
	if _, err := s.Get(ctx, scope, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("menu_id = ?", id).Delete(&model.MenuItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Menu{}, id).Error
	})
}

func validPrice(p *float64) error {
	if p == nil {
		return invalid("sale_price", "is required")
	}
	if !finite(*p) {
		return invalid("sale_price", "must be a finite number")
	}
	if *p < 0 {
		return invalid("sale_price", "must not be negative")
	}
	return nil
}

// AddItem puts a dish of the menu's hotel on the menu at salePrice.
func (s *MenuService) AddItem(ctx context.Context, scope Scope, menuID uint, in MenuItemInput) (*model.MenuItem, error) {
	m, err := s.Get(ctx, scope, menuID)
	if err != nil {
		return nil, err
	}
	if in.DishID == 0 {
		return nil, invalid("dish_id", "is required")
	}
	if err := validPrice(in.SalePrice); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	var dish model.Dish
	err = db.First(&dish, in.DishID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invalid("dish_id", "does not exist")
	}
	if err != nil {
		return nil, err
	}
	if dish.HotelID != m.HotelID {
		return nil, ErrForbidden
	}

	var count int64
	if err := db.Model(&model.MenuItem{}).Where("menu_id = ? AND dish_id = ?", menuID, in.DishID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrConflict
	}

	item := model.MenuItem{MenuID: menuID, DishID: in.DishID, SalePrice: pricing.Round2(*in.SalePrice)}
	if err := db.Create(&item).Error; err != nil {
		return nil, dbError(err)
	}
	item.Dish = &dish
	return &item, nil
}

func (s *MenuService) item(ctx context.Context, scope Scope, menuID, itemID uint) (*model.MenuItem, error) {
	if _, err := s.Get(ctx, scope, menuID); err != nil {
		return nil, err
	}
	var item model.MenuItem
	err := s.db.WithContext(ctx).Preload("Dish").Where("menu_id = ?", menuID).First(&item, itemID).Error
	if err != nil {
		return nil, dbError(err)
	}
	return &item, nil
}

func (s *MenuService) UpdateItemPrice(ctx context.Context, scope Scope, menuID, itemID uint, salePrice *float64) (*model.MenuItem, error) {
	if err := validPrice(salePrice); err != nil {
		return nil, err
	}
	item, err := s.item(ctx, scope, menuID, itemID)
	if err != nil {
		return nil, err
	}
	item.SalePrice = pricing.Round2(*salePrice)
	if err := s.db.WithContext(ctx).Model(&model.MenuItem{}).Where("id = ?", item.ID).Update("sale_price", item.SalePrice).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (s *MenuService) RemoveItem(ctx context.Context, scope Scope, menuID, itemID uint) error {
	item, err := s.item(ctx, scope, menuID, itemID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(item).Error
}

// Pricing compares each item's sale price with its dish cost.
func (s *MenuService) Pricing(ctx context.Context, scope Scope, menuID uint) (*MenuPricing, error) {
	m, err := s.Get(ctx, scope, menuID)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	factorFor := factorCache(db, s.defaultFactor)

	dishIDs := make([]uint, 0, len(m.Items))
	for _, it := range m.Items {
		dishIDs = append(dishIDs, it.DishID)
	}
	var dishes []model.Dish
	if len(dishIDs) > 0 {
		if err := preloadDishCosting(db).Where("id IN ?", dishIDs).Find(&dishes).Error; err != nil {
			return nil, err
		}
	}
	costs, err := dishCosts(db, dishes, factorFor)
	if err != nil {
		return nil, err
	}

	out := &MenuPricing{
		MenuID:     m.ID,
		Name:       m.Name,
		CostFactor: factorFor(m.HotelID),
		Items:      make([]ItemPricing, 0, len(m.Items)),
	}
	if m.Restaurant != nil {
		out.Restaurant = m.Restaurant.Name
	}
	margins := make([]pricing.MarginSummary, 0, len(m.Items))
	for _, it := range m.Items {
		row := ItemPricing{ItemID: it.ID, DishID: it.DishID}
		var cost float64
		if dc, ok := costs[it.DishID]; ok {
			row.Dish = dc.Name
			row.SuggestedPrice = dc.SuggestedPrice
			cost = dc.AdministrativeCost
		}
		row.MarginSummary = pricing.Margin(it.SalePrice, cost)
		margins = append(margins, row.MarginSummary)
		out.Items = append(out.Items, row)
	}
	out.AverageMargin = pricing.AverageMargin(margins)
	return out, nil
}
