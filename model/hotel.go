package model

import (
	"strconv"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"costeo/pricing"
)

// SettingCostFactor is the hotel settings key overriding the default cost factor.
const SettingCostFactor = "cost_factor"

type Hotel struct {
	gorm.Model
	Name     string            `json:"name" gorm:"size:150;not null"`
	Code     string            `json:"code" gorm:"size:50;uniqueIndex;not null"`
	Address  string            `json:"address" gorm:"type:text"`
	Phone    string            `json:"phone" gorm:"size:50"`
	Email    string            `json:"email" gorm:"size:150"`
	Logo     string            `json:"logo" gorm:"size:255"`
	Settings datatypes.JSONMap `json:"settings"`
	Active   bool              `json:"active"`
}

// CostFactor returns the hotel's cost factor override, or def when the
// setting is missing or unusable.
func (h *Hotel) CostFactor(def float64) float64 {
	if h == nil || h.Settings == nil {
		return def
	}
	var f float64
	switch v := h.Settings[SettingCostFactor].(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return def
		}
		f = parsed
	default:
		return def
	}
	if !pricing.ValidFactor(f) {
		return def
	}
	return f
}

type Restaurant struct {
	gorm.Model
	HotelID     uint   `json:"hotel_id" gorm:"index;not null"`
	Hotel       *Hotel `json:"hotel,omitempty"`
	Name        string `json:"name" gorm:"size:150;not null"`
	Description string `json:"description" gorm:"type:text"`
	Image       string `json:"image" gorm:"size:255"`
	Active      bool   `json:"active"`
}
