package model

import (
	"time"

	"gorm.io/gorm"
)

type Menu struct {
	gorm.Model
	HotelID      uint        `json:"hotel_id" gorm:"index;not null"`
	RestaurantID uint        `json:"restaurant_id" gorm:"index;not null"`
	Restaurant   *Restaurant `json:"restaurant,omitempty"`
	Name         string      `json:"name" gorm:"size:150;not null"`
	Description  string      `json:"description" gorm:"type:text"`
	Active       bool        `json:"active"`
	Items        []MenuItem  `json:"items,omitempty" gorm:"foreignKey:MenuID"`
}

// MenuItem carries the sale price of a dish on a menu.
type MenuItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	MenuID    uint      `json:"menu_id" gorm:"uniqueIndex:idx_menu_dish;not null"`
	DishID    uint      `json:"dish_id" gorm:"uniqueIndex:idx_menu_dish;index;not null"`
	Dish      *Dish     `json:"dish,omitempty"`
	SalePrice float64   `json:"sale_price" gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
