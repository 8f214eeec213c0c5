package service

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"costeo/logger"
	"costeo/model"
	"costeo/pricing"
)

const topDishesLimit = 5

type DashboardCounts struct {
	Restaurants int64 `json:"restaurants"`
	Menus       int64 `json:"menus"`
	Dishes      int64 `json:"dishes"`
	Ingredients int64 `json:"ingredients"`
	Recipes     int64 `json:"recipes"`
}

type DishCostSummary struct {
	DishID             uint    `json:"dish_id"`
	Name               string  `json:"name"`
	AdministrativeCost float64 `json:"administrative_cost"`
	SuggestedPrice     float64 `json:"suggested_price"`
}

type Dashboard struct {
	HotelID       uint              `json:"hotel_id,omitempty"`
	Counts        DashboardCounts   `json:"counts"`
	AverageMargin float64           `json:"average_margin_percent"`
	TopDishes     []DishCostSummary `json:"top_dishes"`
}

type DashboardService struct {
	db            *gorm.DB
	defaultFactor float64
}

func NewDashboardService(db *gorm.DB, defaultFactor float64) *DashboardService {
	return &DashboardService{db: db, defaultFactor: defaultFactor}
}

// Get builds the dashboard for hotelID (0 means every hotel the caller
// sees). A failing part is logged and left empty.
func (s *DashboardService) Get(ctx context.Context, scope Scope, hotelID uint) (*Dashboard, error) {
	if !scope.Admin() {
		if hotelID != 0 && hotelID != scope.HotelID {
			return nil, ErrForbidden
		}
		hotelID = scope.HotelID
	}
	db := s.db.WithContext(ctx)
	log := logger.WithContext(ctx)

	scoped := func(m interface{}) *gorm.DB {
		q := db.Model(m)
		if hotelID != 0 {
			q = q.Where("hotel_id = ?", hotelID)
		}
		return q
	}

	d := &Dashboard{HotelID: hotelID, TopDishes: []DishCostSummary{}}
	counts := []struct {
		name  string
		model interface{}
		dest  *int64
	}{
		{"restaurants", &model.Restaurant{}, &d.Counts.Restaurants},
		{"menus", &model.Menu{}, &d.Counts.Menus},
		{"dishes", &model.Dish{}, &d.Counts.Dishes},
		{"ingredients", &model.Ingredient{}, &d.Counts.Ingredients},
		{"recipes", &model.Recipe{}, &d.Counts.Recipes},
	}
	for _, c := range counts {
		if err := scoped(c.model).Count(c.dest).Error; err != nil {
			log.Warn("dashboard count failed", zap.String("entity", c.name), zap.Error(err))
			*c.dest = 0
		}
	}

	var dishes []model.Dish
	if err := preloadDishCosting(scoped(&model.Dish{})).Find(&dishes).Error; err != nil {
		log.Warn("dashboard dishes failed", zap.Error(err))
		return d, nil
	}
	costs, err := dishCosts(db, dishes, factorCache(db, s.defaultFactor))
	if err != nil {
		log.Warn("dashboard costing failed", zap.Error(err))
		return d, nil
	}

	for _, c := range costs {
		d.TopDishes = append(d.TopDishes, DishCostSummary{
			DishID:             c.DishID,
			Name:               c.Name,
			AdministrativeCost: c.AdministrativeCost,
			SuggestedPrice:     c.SuggestedPrice,
		})
	}
	sort.Slice(d.TopDishes, func(i, j int) bool {
		if d.TopDishes[i].AdministrativeCost == d.TopDishes[j].AdministrativeCost {
			return d.TopDishes[i].DishID < d.TopDishes[j].DishID
		}
		return d.TopDishes[i].AdministrativeCost > d.TopDishes[j].AdministrativeCost
	})
	if len(d.TopDishes) > topDishesLimit {
		d.TopDishes = d.TopDishes[:topDishesLimit]
	}

	var items []model.MenuItem
	itemsQ := db.Model(&model.MenuItem{}).Joins("JOIN menus ON menus.id = menu_items.menu_id AND menus.deleted_at IS NULL")
	if hotelID != 0 {
		itemsQ = itemsQ.Where("menus.hotel_id = ?", hotelID)
	}
	if err := itemsQ.Find(&items).Error; err != nil {
		log.Warn("dashboard menu items failed", zap.Error(err))
		return d, nil
	}
	margins := make([]pricing.MarginSummary, 0, len(items))
	for _, it := range items {
		var cost float64
		if c, ok := costs[it.DishID]; ok {
			cost = c.AdministrativeCost
		}
		margins = append(margins, pricing.Margin(it.SalePrice, cost))
	}
	d.AverageMargin = pricing.AverageMargin(margins)
	return d, nil
}
