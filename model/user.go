package model

import (
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleStaff   UserRole = "staff"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleStaff:
		return true
	}
	return false
}

type User struct {
	gorm.Model
	Email    string   `json:"email" gorm:"size:150;uniqueIndex;not null"`
	FullName string   `json:"full_name" gorm:"size:150"`
	Password string   `json:"-" gorm:"size:255;not null"`
	Role     UserRole `json:"role" gorm:"size:20;not null"`
	HotelID  *uint    `json:"hotel_id" gorm:"index"`
	Hotel    *Hotel   `json:"hotel,omitempty"`
	Active   bool     `json:"active"`
}
