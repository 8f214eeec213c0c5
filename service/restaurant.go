package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"gorm.io/gorm"

	"costeo/model"
)

type RestaurantInput struct {
	HotelID     uint   `json:"hotel_id" form:"hotel_id"`
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
}

type RestaurantService struct {
	db     *gorm.DB
	images ImageStore
}

func NewRestaurantService(db *gorm.DB, images ImageStore) *RestaurantService {
	return &RestaurantService{db: db, images: images}
}

func (s *RestaurantService) List(ctx context.Context, scope Scope, f ListFilter) (*Page[model.Restaurant], error) {
	f.normalize()
	q := s.db.WithContext(ctx).Model(&model.Restaurant{})
	q = scope.restrict(q, "restaurants.hotel_id")
	q = f.apply(q, "restaurants")
	return paginate[model.Restaurant](q, f)
}

func (s *RestaurantService) Get(ctx context.Context, scope Scope, id uint) (*model.Restaurant, error) {
	var r model.Restaurant
	q := scope.restrict(s.db.WithContext(ctx), "hotel_id")
	if err := q.First(&r, id).Error; err != nil {
		return nil, dbError(err)
	}
	return &r, nil
}

// requireHotel checks that hotelID names an existing hotel.
func requireHotel(db *gorm.DB, hotelID uint) error {
	var hotel model.Hotel
	err := db.Select("id").First(&hotel, hotelID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return invalid("hotel_id", "does not exist")
	}
	return err
}

func (s *RestaurantService) Create(ctx context.Context, scope Scope, in RestaurantInput, image *multipart.FileHeader) (*model.Restaurant, error) {
	name, err := requireName(in.Name)
	if err != nil {
		return nil, err
	}
	hotelID, err := scope.targetHotel(in.HotelID)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if err := requireHotel(db, hotelID); err != nil {
		return nil, err
	}

	r := model.Restaurant{
		HotelID:     hotelID,
		Name:        name,
		Description: in.Description,
		Active:      true,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&r).Error; err != nil {
			return err
		}
		if image == nil {
			return nil
		}
		return replaceImage(s.images, image, "restaurant", r.ID, "", func(name string) error {
			r.Image = name
			return tx.Model(&r).Update("image", name).Error
		})
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Update changes the non-empty fields. The owning hotel cannot change.
func (s *RestaurantService) Update(ctx context.Context, scope Scope, id uint, in RestaurantInput, image *multipart.FileHeader) (*model.Restaurant, error) {
	r, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if in.HotelID != 0 && in.HotelID != r.HotelID {
		return nil, invalid("hotel_id", "cannot be changed")
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		r.Name = name
	}
	if in.Description != "" {
		r.Description = in.Description
	}

	db := s.db.WithContext(ctx)
	if err := db.Save(r).Error; err != nil {
		return nil, err
	}
	if image != nil {
		err := replaceImage(s.images, image, "restaurant", r.ID, r.Image, func(name string) error {
			if err := db.Model(r).Update("image", name).Error; err != nil {
				return err
			}
			r.Image = name
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (s *RestaurantService) SetActive(ctx context.Context, scope Scope, id uint, active bool) (*model.Restaurant, error) {
	r, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(r).Update("active", active).Error; err != nil {
		return nil, err
	}
	return r, nil
}

func (s *RestaurantService) Delete(ctx context.Context, scope Scope, id uint) error {
	r, err := s.Get(ctx, scope, id)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkDependents(tx, "restaurant", id,
			dependent{"menus", &model.Menu{}, "restaurant_id"},
		); err != nil {
			return err
		}
		return tx.Delete(r).Error
	})
	if err != nil {
		return err
	}
	removeImage(s.images, r.Image)
	return nil
}
