package service

import (
	"context"
	"mime/multipart"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"costeo/model"
	"costeo/pricing"
)

type HotelInput struct {
	Name     string                 `json:"name" form:"name"`
	Code     string                 `json:"code" form:"code"`
	Address  string                 `json:"address" form:"address"`
	Phone    string                 `json:"phone" form:"phone"`
	Email    string                 `json:"email" form:"email" binding:"omitempty,email"`
	Settings map[string]interface{} `json:"settings" form:"-"`
}

// DefaultCategoriesFunc returns the categories every new hotel starts with.
type DefaultCategoriesFunc func(hotelID uint) []model.Category

type HotelService struct {
	db                *gorm.DB
	images            ImageStore
	defaultFactor     float64
	defaultCategories DefaultCategoriesFunc
}

func NewHotelService(db *gorm.DB, images ImageStore, defaultFactor float64, categories DefaultCategoriesFunc) *HotelService {
	return &HotelService{db: db, images: images, defaultFactor: defaultFactor, defaultCategories: categories}
}

func (s *HotelService) List(ctx context.Context, scope Scope, f ListFilter) (*Page[model.Hotel], error) {
	f.normalize()
	q := s.db.WithContext(ctx).Model(&model.Hotel{})
	q = scope.restrict(q, "hotels.id")
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(hotels.name) LIKE ? OR LOWER(hotels.code) LIKE ?", like, like)
	}
	if f.Active != nil {
		q = q.Where("hotels.active = ?", *f.Active)
	}
	return paginate[model.Hotel](q, f)
}

func (s *HotelService) Get(ctx context.Context, scope Scope, id uint) (*model.Hotel, error) {
	if !scope.owns(id) {
		return nil, ErrNotFound
	}
	var hotel model.Hotel
	if err := s.db.WithContext(ctx).First(&hotel, id).Error; err != nil {
		return nil, dbError(err)
	}
	return &hotel, nil
}

func validateSettings(settings map[string]interface{}) error {
	raw, ok := settings[model.SettingCostFactor]
	if !ok {
		return nil
	}
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return invalid("settings.cost_factor", "must be a number")
		}
		f = parsed
	default:
		return invalid("settings.cost_factor", "must be a number")
	}
	if !pricing.ValidFactor(f) {
		return invalid("settings.cost_factor", "must be greater than 0 and at most 1")
	}
	return nil
}

func (s *HotelService) codeTaken(ctx context.Context, code string, exceptID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Hotel{}).
		Where("code = ? AND id <> ?", code, exceptID).Count(&count).Error
	return count > 0, err
}

// Create adds a hotel together with its default categories.
func (s *HotelService) Create(ctx context.Context, scope Scope, in HotelInput, logo *multipart.FileHeader) (*model.Hotel, error) {
	if !scope.Admin() {
		return nil, ErrForbidden
	}
	name, err := requireName(in.Name)
	if err != nil {
		return nil, err
	}
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return nil, invalid("code", "is required")
	}
	if err := validateSettings(in.Settings); err != nil {
		return nil, err
	}
	taken, err := s.codeTaken(ctx, code, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrConflict
	}

	hotel := model.Hotel{
		Name:     name,
		Code:     code,
		Address:  in.Address,
		Phone:    in.Phone,
		Email:    in.Email,
		Settings: in.Settings,
		Active:   true,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&hotel).Error; err != nil {
			return dbError(err)
		}
		if s.defaultCategories != nil {
			if cats := s.defaultCategories(hotel.ID); len(cats) > 0 {
				if err := tx.Create(&cats).Error; err != nil {
					return err
				}
			}
		}
		if logo == nil {
			return nil
		}
		return replaceImage(s.images, logo, "hotel", hotel.ID, "", func(name string) error {
			hotel.Logo = name
			return tx.Model(&hotel).Update("logo", name).Error
		})
	})
	if err != nil {
		return nil, err
	}
	return &hotel, nil
}

func (s *HotelService) Update(ctx context.Context, scope Scope, id uint, in HotelInput, logo *multipart.FileHeader) (*model.Hotel, error) {
	hotel, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := validateSettings(in.Settings); err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		hotel.Name = name
	}
	if code := strings.TrimSpace(in.Code); code != "" && code != hotel.Code {
		taken, err := s.codeTaken(ctx, code, hotel.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrConflict
		}
		hotel.Code = code
	}
	if in.Address != "" {
		hotel.Address = in.Address
	}
	if in.Phone != "" {
		hotel.Phone = in.Phone
	}
	if in.Email != "" {
		hotel.Email = in.Email
	}
	if in.Settings != nil {
		hotel.Settings = in.Settings
	}

	db := s.db.WithContext(ctx)
	if err := db.Save(hotel).Error; err != nil {
		return nil, dbError(err)
	}
	if logo != nil {
		err := replaceImage(s.images, logo, "hotel", hotel.ID, hotel.Logo, func(name string) error {
			if err := db.Model(hotel).Update("logo", name).Error; err != nil {
				return err
			}
			hotel.Logo = name
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return hotel, nil
}

func (s *HotelService) SetActive(ctx context.Context, scope Scope, id uint, active bool) (*model.Hotel, error) {
	if !scope.Admin() {
		return nil, ErrForbidden
	}
	hotel, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(hotel).Update("active", active).Error; err != nil {
		return nil, err
	}
	return hotel, nil
}

// Delete soft-deletes a hotel and its categories once nothing else references it.
func (s *HotelService) Delete(ctx context.Context, scope Scope, id uint) error {
	if !scope.Admin() {
		return ErrForbidden
	}
	hotel, err := s.Get(ctx, scope, id)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkDependents(tx, "hotel", id,
			dependent{"restaurants", &model.Restaurant{}, "hotel_id"},
			dependent{"ingredients", &model.Ingredient{}, "hotel_id"},
			dependent{"dishes", &model.Dish{}, "hotel_id"},
			dependent{"recipes", &model.Recipe{}, "hotel_id"},
			dependent{"users", &model.User{}, "hotel_id"},
		); err != nil {
			return err
		}
		if err := tx.Where("hotel_id = ?", id).Delete(&model.Category{}).Error; err != nil {
			return err
		}
		return tx.Delete(hotel).Error
	})
	if err != nil {
		return err
	}
	removeImage(s.images, hotel.Logo)
	return nil
}

// CostFactor returns the hotel's cost factor, falling back to the configured default.
func (s *HotelService) CostFactor(ctx context.Context, hotelID uint) float64 {
	return costFactor(s.db.WithContext(ctx), hotelID, s.defaultFactor)
}

func costFactor(db *gorm.DB, hotelID uint, def float64) float64 {
	var hotel model.Hotel
	if err := db.Select("id", "settings").First(&hotel, hotelID).Error; err != nil {
		return def
	}
	return hotel.CostFactor(def)
}
