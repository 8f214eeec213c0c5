package service

import (
	"mime/multipart"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"costeo/model"
	"costeo/utils"
)

var (
	adminScope = Scope{UserID: 1, Role: model.RoleAdmin}
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.Hotel{}, &model.User{}, &model.Restaurant{}, &model.Category{},
		&model.UnitOfMeasure{}, &model.Ingredient{}, &model.Recipe{}, &model.RecipeIngredient{},
		&model.Dish{}, &model.DishIngredient{}, &model.DishRecipe{}, &model.Menu{}, &model.MenuItem{},
	))
	return db
}

type fakeImages struct {
	saved   []string
	deleted []string
	err     error
}

func (f *fakeImages) SaveImage(_ *multipart.FileHeader, prefix string, id uint) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	name := prefix + "-" + time.Now().Format("150405.000000000") + ".png"
	f.saved = append(f.saved, name)
	return name, nil
}

func (f *fakeImages) Delete(name string) error {
	f.deleted = append(f.deleted, name)
	return nil
}

// fixture is a small hotel with one of everything.
type fixture struct {
	db       *gorm.DB
	hotel    *model.Hotel
	other    *model.Hotel
	unit     model.UnitOfMeasure
	manager  Scope
	staff    Scope
	outsider Scope
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	hotels := NewHotelService(db, &fakeImages{}, 0.30, nil)

	h, err := hotels.Create(t.Context(), adminScope, HotelInput{Name: "Hotel Uno", Code: "H1"}, nil)
	require.NoError(t, err)
	o, err := hotels.Create(t.Context(), adminScope, HotelInput{Name: "Hotel Dos", Code: "H2"}, nil)
	require.NoError(t, err)

	unit := model.UnitOfMeasure{Name: "Kilogramo", Abbreviation: "kg"}
	require.NoError(t, db.Create(&unit).Error)

	return &fixture{
		db:       db,
		hotel:    h,
		other:    o,
		unit:     unit,
		manager:  Scope{UserID: 10, Role: model.RoleManager, HotelID: h.ID},
		staff:    Scope{UserID: 11, Role: model.RoleStaff, HotelID: h.ID},
		outsider: Scope{UserID: 20, Role: model.RoleManager, HotelID: o.ID},
	}
}

func (f *fixture) ingredient(t *testing.T, name string, cost float64) *model.Ingredient {
	t.Helper()
	ing, err := NewIngredientService(f.db).Create(t.Context(), f.manager, IngredientInput{
		Name: name, UnitID: f.unit.ID, UnitCost: &cost,
	})
	require.NoError(t, err)
	return ing
}

func ptr[T any](v T) *T {
	return &v
}

func newTokenManager() *utils.TokenManager {
	return utils.NewTokenManager("service-test-secret", 15*time.Minute, time.Hour)
}

func fileHeaderStub() *multipart.FileHeader {
	return &multipart.FileHeader{Filename: "logo.png", Size: 128}
}
