// Package service holds the entity actions. Every method validates its
// input, runs one or two scoped gorm queries and returns sentinel errors
// the controllers map to HTTP statuses.
package service

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gorm.io/gorm"

	"costeo/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrForbidden = errors.New("access to this hotel is not allowed")
	ErrConflict  = errors.New("record already exists")
)

// DependentsError blocks a delete while other rows still reference the record.
type DependentsError struct {
	Entity    string
	Dependent string
	Count     int64
}

func (e *DependentsError) Error() string {
	return fmt.Sprintf("cannot delete %s: %d %s still reference it", e.Entity, e.Count, e.Dependent)
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// finite rejects NaN and ±Inf, which bind from JSON strings and forms and
// cannot be encoded back out.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Scope is the caller as seen by the services.
type Scope struct {
	UserID  uint
	Role    model.UserRole
	HotelID uint
}

func (s Scope) Admin() bool {
	return s.Role == model.RoleAdmin
}

// restrict limits q to the caller's hotel unless the caller is an admin.
func (s Scope) restrict(q *gorm.DB, column string) *gorm.DB {
	if s.Admin() {
		return q
	}
	return q.Where(column+" = ?", s.HotelID)
}

// targetHotel decides which hotel a new row belongs to. Admins must name
// one; everyone else gets their own and may not name another.
func (s Scope) targetHotel(requested uint) (uint, error) {
	if s.Admin() {
		if requested == 0 {
			return 0, invalid("hotel_id", "is required")
		}
		return requested, nil
	}
	if requested != 0 && requested != s.HotelID {
		return 0, ErrForbidden
	}
	return s.HotelID, nil
}

// owns reports whether the caller may touch rows of hotelID.
func (s Scope) owns(hotelID uint) bool {
	return s.Admin() || s.HotelID == hotelID
}

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// ListFilter carries the query string filters shared by every List.
type ListFilter struct {
	Search       string `form:"search"`
	Active       *bool  `form:"active"`
	HotelID      uint   `form:"hotel_id"`
	RestaurantID uint   `form:"restaurant_id"`
	CategoryID   uint   `form:"category_id"`
	Kind         string `form:"kind"`
	Page         int    `form:"page"`
	PerPage      int    `form:"per_page"`
}

func (f *ListFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = defaultPerPage
	}
	if f.PerPage > maxPerPage {
		f.PerPage = maxPerPage
	}
	f.Search = strings.TrimSpace(f.Search)
}

func (f ListFilter) offset() int {
	return (f.Page - 1) * f.PerPage
}

// Page is one page of List results.
type Page[T any] struct {
	Items   []T
	Total   int64
	Page    int
	PerPage int
}

// apply adds the filters common to hotel-owned tables.
func (f ListFilter) apply(q *gorm.DB, table string) *gorm.DB {
	if f.Search != "" {
		q = q.Where("LOWER("+table+".name) LIKE ?", "%"+strings.ToLower(f.Search)+"%")
	}
	if f.Active != nil {
		q = q.Where(table+".active = ?", *f.Active)
	}
	if f.HotelID != 0 {
		q = q.Where(table+".hotel_id = ?", f.HotelID)
	}
	return q
}

// paginate counts q and loads one page of it. Preloads only apply to the page query.
func paginate[T any](q *gorm.DB, f ListFilter, preloads ...string) (*Page[T], error) {
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}
	find := q
	for _, p := range preloads {
		find = find.Preload(p)
	}
	items := make([]T, 0)
	if err := find.Order("id").Offset(f.offset()).Limit(f.PerPage).Find(&items).Error; err != nil {
		return nil, err
	}
	return &Page[T]{Items: items, Total: total, Page: f.Page, PerPage: f.PerPage}, nil
}

// dependent names a table that references the row being deleted.
type dependent struct {
	name   string
	model  interface{}
	column string
}

func checkDependents(tx *gorm.DB, entity string, id uint, deps ...dependent) error {
	for _, d := range deps {
		var count int64
		if err := tx.Model(d.model).Where(d.column+" = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &DependentsError{Entity: entity, Dependent: d.name, Count: count}
		}
	}
	return nil
}

// dbError turns gorm errors into service sentinels.
func dbError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	}
	return err
}

func requireName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("name", "is required")
	}
	return name, nil
}
