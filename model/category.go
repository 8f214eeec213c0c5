package model

import "gorm.io/gorm"

type CategoryKind string

const (
	CategoryIngredient CategoryKind = "ingredient"
	CategoryDish       CategoryKind = "dish"
)

func (k CategoryKind) Valid() bool {
	return k == CategoryIngredient || k == CategoryDish
}

type Category struct {
	gorm.Model
	HotelID     uint         `json:"hotel_id" gorm:"index;not null"`
	Name        string       `json:"name" gorm:"size:100;not null"`
	Kind        CategoryKind `json:"kind" gorm:"size:20;index;not null"`
	Description string       `json:"description" gorm:"size:255"`
}

// UnitOfMeasure is shared by every hotel.
type UnitOfMeasure struct {
	gorm.Model
	Name         string `json:"name" gorm:"size:50;uniqueIndex;not null"`
	Abbreviation string `json:"abbreviation" gorm:"size:10;not null"`
}

func (UnitOfMeasure) TableName() string {
	return "units_of_measure"
}
