package model

import (
	"testing"

	"gorm.io/datatypes"
)

func TestHotelCostFactor(t *testing.T) {
	tests := []struct {
		name     string
		settings datatypes.JSONMap
		want     float64
	}{
		{"no settings", nil, 0.3},
		{"float override", datatypes.JSONMap{SettingCostFactor: 0.25}, 0.25},
		{"int one", datatypes.JSONMap{SettingCostFactor: 1}, 1},
		{"string override", datatypes.JSONMap{SettingCostFactor: "0.4"}, 0.4},
		{"bad string", datatypes.JSONMap{SettingCostFactor: "abc"}, 0.3},
		{"out of range", datatypes.JSONMap{SettingCostFactor: 1.5}, 0.3},
		{"zero", datatypes.JSONMap{SettingCostFactor: 0.0}, 0.3},
		{"wrong type", datatypes.JSONMap{SettingCostFactor: true}, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &Hotel{Settings: tt.settings}
			if got := h.CostFactor(0.3); got != tt.want {
				t.Errorf("CostFactor() = %v, want %v", got, tt.want)
			}
		})
	}

	var nilHotel *Hotel
	if got := nilHotel.CostFactor(0.3); got != 0.3 {
		t.Errorf("nil hotel CostFactor() = %v, want 0.3", got)
	}
}

func TestRoleAndKindValid(t *testing.T) {
	if !RoleManager.Valid() || UserRole("chef").Valid() {
		t.Error("unexpected role validity")
	}
	if !CategoryDish.Valid() || CategoryKind("drink").Valid() {
		t.Error("unexpected kind validity")
	}
}
