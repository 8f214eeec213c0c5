package database

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"costeo/auth"
	"costeo/logger"
	"costeo/model"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Catalog is the default reference data shipped with the service.
type Catalog struct {
	Units []struct {
		Name         string `yaml:"name"`
		Abbreviation string `yaml:"abbreviation"`
	} `yaml:"units"`
	Categories map[model.CategoryKind][]string `yaml:"categories"`
}

// LoadCatalog parses the embedded catalog.
func LoadCatalog() (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(catalogYAML, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return &c, nil
}

// DefaultCategories returns unsaved categories for a new hotel.
func (c *Catalog) DefaultCategories(hotelID uint) []model.Category {
	var out []model.Category
	for _, kind := range []model.CategoryKind{model.CategoryIngredient, model.CategoryDish} {
		for _, name := range c.Categories[kind] {
			out = append(out, model.Category{HotelID: hotelID, Name: name, Kind: kind})
		}
	}
	return out
}

// SeedOptions configures the bootstrap admin account.
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
}

// Seed inserts missing units and the bootstrap admin. It is safe to run on every start.
func Seed(db *gorm.DB, catalog *Catalog, opts SeedOptions) error {
	for _, u := range catalog.Units {
		// Soft-deleted units keep their unique name; an admin removed them, so leave them out.
		var existing int64
		if err := db.Unscoped().Model(&model.UnitOfMeasure{}).Where("name = ?", u.Name).Count(&existing).Error; err != nil {
			return fmt.Errorf("seed unit %s: %w", u.Name, err)
		}
		if existing > 0 {
			continue
		}
		unit := model.UnitOfMeasure{Name: u.Name, Abbreviation: u.Abbreviation}
		if err := db.Create(&unit).Error; err != nil {
			return fmt.Errorf("seed unit %s: %w", u.Name, err)
		}
	}

	var admins int64
	if err := db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&admins).Error; err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if admins > 0 {
		return nil
	}
	if opts.AdminEmail == "" || opts.AdminPassword == "" {
		return errors.New("no admin user exists and ADMIN_EMAIL/ADMIN_PASSWORD are not set")
	}

	hash, err := auth.HashPassword(opts.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := model.User{
		Email:    strings.ToLower(strings.TrimSpace(opts.AdminEmail)),
		FullName: "Administrator",
		Password: hash,
		Role:     model.RoleAdmin,
		Active:   true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	logger.Info("default admin seeded", zap.String("email", admin.Email))
	return nil
}
