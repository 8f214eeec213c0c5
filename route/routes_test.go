package route_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"costeo/cache"
	"costeo/config"
	"costeo/controller"
	"costeo/database"
	"costeo/middleware"
	"costeo/route"
	"costeo/service"
	"costeo/storage"
	"costeo/utils"
)

const (
	adminEmail    = "admin@costeo.local"
	adminPassword = "admin123"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    *utils.Meta     `json:"meta"`
	Error   string          `json:"error"`
}

type api struct {
	t      *testing.T
	router *gin.Engine
	tokens *utils.TokenManager
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	catalog, err := database.LoadCatalog()
	require.NoError(t, err)
	require.NoError(t, database.Seed(db, catalog, database.SeedOptions{
		AdminEmail: adminEmail, AdminPassword: adminPassword,
	}))

	images := storage.NewLocalStore(t.TempDir(), 5<<20)
	tokens := utils.NewTokenManager("route-test-secret", 15*time.Minute, time.Hour)
	ingredients := service.NewIngredientService(db)
	menus := service.NewMenuService(db, 0.30)

	router := gin.New()
	router.Use(middleware.RequestID())
	route.Register(router, route.Controllers{
		Hotels:      controller.NewHotelController(service.NewHotelService(db, images, 0.30, catalog.DefaultCategories)),
		Restaurants: controller.NewRestaurantController(service.NewRestaurantService(db, images)),
		Categories:  controller.NewCategoryController(service.NewCategoryService(db), service.NewUnitService(db)),
		Ingredients: controller.NewIngredientController(ingredients),
		Recipes:     controller.NewRecipeController(service.NewRecipeService(db)),
		Dishes:      controller.NewDishController(service.NewDishService(db, images, 0.30)),
		Menus:       controller.NewMenuController(menus),
		Users:       controller.NewUserController(service.NewUserService(db, tokens, 15*time.Minute)),
		Reports: controller.NewReportController(
			service.NewReportService(menus, ingredients),
			service.NewDashboardService(db, 0.30),
		),
	}, route.Options{Tokens: tokens, Cache: cache.NewMemoryStore(), CacheTTL: time.Minute})

	return &api{t: t, router: router, tokens: tokens}
}

func (a *api) serve(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *api) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return a.serve(req, token)
}

// call runs a request, checks the status and decodes data into out.
func (a *api) call(method, path, token string, body interface{}, want int, out interface{}) envelope {
	a.t.Helper()
	w := a.do(method, path, token, body)
	require.Equal(a.t, want, w.Code, "%s %s: %s", method, path, w.Body.String())
	var env envelope
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env))
	if out != nil {
		require.NoError(a.t, json.Unmarshal(env.Data, out))
	}
	return env
}

func (a *api) login(email, password string) service.LoginResult {
	a.t.Helper()
	var res service.LoginResult
	a.call(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": password}, http.StatusOK, &res)
	return res
}

type idOnly struct {
	ID uint `json:"ID"`
}

func (a *api) create(path, token string, body interface{}) uint {
	a.t.Helper()
	var out idOnly
	a.call(http.MethodPost, path, token, body, http.StatusCreated, &out)
	require.NotZero(a.t, out.ID)
	return out.ID
}

type kitchen struct {
	admin, manager, staff string
	hotel, tomato, onion  uint
	salsa, dish, menu     uint
	item                  uint
}

// setupKitchen builds a hotel with one priced dish on one menu.
func setupKitchen(a *api) kitchen {
	a.t.Helper()
	k := kitchen{admin: a.login(adminEmail, adminPassword).AccessToken}

	k.hotel = a.create("/api/v1/hotels", k.admin, gin.H{
		"name": "Hotel Centro", "code": "HC", "settings": gin.H{"cost_factor": 0.25},
	})
	a.create("/api/v1/users", k.admin, gin.H{
		"email": "gerente@centro.com", "password": "secret1", "role": "manager", "hotel_id": k.hotel,
	})
	k.manager = a.login("gerente@centro.com", "secret1").AccessToken
	a.create("/api/v1/users", k.manager, gin.H{"email": "cocina@centro.com", "password": "secret1"})
	k.staff = a.login("cocina@centro.com", "secret1").AccessToken

	var units []struct {
		ID           uint   `json:"ID"`
		Abbreviation string `json:"abbreviation"`
	}
	a.call(http.MethodGet, "/api/v1/units", k.manager, nil, http.StatusOK, &units)
	var kg uint
	for _, u := range units {
		if u.Abbreviation == "kg" {
			kg = u.ID
		}
	}
	require.NotZero(a.t, kg)

	k.tomato = a.create("/api/v1/ingredients", k.staff, gin.H{"name": "Tomate", "code": "TOM", "unit_id": kg, "unit_cost": 20})
	k.onion = a.create("/api/v1/ingredients", k.staff, gin.H{"name": "Cebolla", "code": "CEB", "unit_id": kg, "unit_cost": 10})

	k.salsa = a.create("/api/v1/recipes", k.staff, gin.H{"name": "Salsa roja", "yield_portions": 4})
	a.call(http.MethodPut, fmt.Sprintf("/api/v1/recipes/%d/lines", k.salsa), k.staff, gin.H{
		"lines": []gin.H{{"ingredient_id": k.tomato, "quantity": 1}, {"ingredient_id": k.onion, "quantity": 0.5}},
	}, http.StatusOK, nil)

	k.dish = a.create("/api/v1/dishes", k.staff, gin.H{"name": "Enchiladas"})
	a.call(http.MethodPut, fmt.Sprintf("/api/v1/dishes/%d/ingredients", k.dish), k.staff, gin.H{
		"lines": []gin.H{{"ingredient_id": k.tomato, "quantity": 0.2}},
	}, http.StatusOK, nil)
	a.call(http.MethodPut, fmt.Sprintf("/api/v1/dishes/%d/recipes", k.dish), k.staff, gin.H{
		"recipes": []gin.H{{"recipe_id": k.salsa, "portions": 2}},
	}, http.StatusOK, nil)

	restaurant := a.create("/api/v1/restaurants", k.manager, gin.H{"name": "La Terraza"})
	k.menu = a.create("/api/v1/menus", k.manager, gin.H{"restaurant_id": restaurant, "name": "Comida"})

	var item struct {
		ID uint `json:"id"`
	}
	a.call(http.MethodPost, fmt.Sprintf("/api/v1/menus/%d/items", k.menu), k.manager,
		gin.H{"dish_id": k.dish, "sale_price": 66}, http.StatusCreated, &item)
	k.item = item.ID
	return k
}

func TestAPI_CostingFlow(t *testing.T) {
	a := newAPI(t)
	k := setupKitchen(a)

	var recipe service.RecipeCost
	a.call(http.MethodGet, fmt.Sprintf("/api/v1/recipes/%d/cost", k.salsa), k.staff, nil, http.StatusOK, &recipe)
	assert.InDelta(t, 25, recipe.TotalCost, 1e-9)
	assert.InDelta(t, 6.25, recipe.CostPerPortion, 1e-9)

	var dish service.DishCost
	a.call(http.MethodGet, fmt.Sprintf("/api/v1/dishes/%d/cost", k.dish), k.staff, nil, http.StatusOK, &dish)
	assert.InDelta(t, 4, dish.IngredientCost, 1e-9)
	assert.InDelta(t, 12.5, dish.RecipeCost, 1e-9)
	assert.InDelta(t, 16.5, dish.AdministrativeCost, 1e-9)
	assert.InDelta(t, 0.25, dish.CostFactor, 1e-9)
	assert.InDelta(t, 66, dish.SuggestedPrice, 1e-9)

	var pricing service.MenuPricing
	a.call(http.MethodGet, fmt.Sprintf("/api/v1/menus/%d/pricing", k.menu), k.staff, nil, http.StatusOK, &pricing)
	require.Len(t, pricing.Items, 1)
	assert.InDelta(t, 75, pricing.Items[0].MarginPercent, 1e-9)
	assert.InDelta(t, 25, pricing.Items[0].CostPercent, 1e-9)

	env := a.call(http.MethodGet, "/api/v1/ingredients?search=tom", k.staff, nil, http.StatusOK, nil)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(1), env.Meta.Total)
	assert.Equal(t, 20, env.Meta.PerPage)
}

func TestAPI_DashboardCache(t *testing.T) {
	a := newAPI(t)
	k := setupKitchen(a)

	var dash service.Dashboard
	w := a.do(http.MethodGet, "/api/v1/dashboard", k.manager, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "MISS", w.Header().Get(middleware.CacheHeader))

	w = a.do(http.MethodGet, "/api/v1/dashboard", k.manager, nil)
	assert.Equal(t, "HIT", w.Header().Get(middleware.CacheHeader))
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, &dash))
	assert.InDelta(t, 75, dash.AverageMargin, 1e-9)
	assert.Equal(t, int64(2), dash.Counts.Ingredients)

	a.call(http.MethodPut, fmt.Sprintf("/api/v1/menus/%d/items/%d", k.menu, k.item), k.manager,
		gin.H{"sale_price": 60}, http.StatusOK, nil)

	w = a.do(http.MethodGet, "/api/v1/dashboard", k.manager, nil)
	assert.Equal(t, "MISS", w.Header().Get(middleware.CacheHeader))
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, &dash))
	assert.InDelta(t, 72.5, dash.AverageMargin, 1e-9)
}

func TestAPI_AuthAndRoles(t *testing.T) {
	a := newAPI(t)
	k := setupKitchen(a)

	w := a.do(http.MethodGet, "/api/v1/hotels", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	res := a.login("cocina@centro.com", "secret1")
	w = a.do(http.MethodGet, "/api/v1/hotels", res.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "refresh tokens are not access tokens")

	var refreshed service.LoginResult
	a.call(http.MethodPost, "/api/v1/auth/refresh", "", gin.H{"refresh_token": res.RefreshToken}, http.StatusOK, &refreshed)
	assert.NotEmpty(t, refreshed.AccessToken)

	w = a.do(http.MethodPost, "/api/v1/auth/refresh", "", gin.H{"refresh_token": res.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": adminEmail, "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var me struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	a.call(http.MethodGet, "/api/v1/auth/me", k.staff, nil, http.StatusOK, &me)
	assert.Equal(t, "cocina@centro.com", me.Email)
	assert.Equal(t, "staff", me.Role)

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/api/v1/users", k.staff, nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/api/v1/menus", k.staff, gin.H{"name": "x"}).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/api/v1/hotels", k.manager, gin.H{"name": "x"}).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/api/v1/units", k.manager, gin.H{"name": "Taza", "abbreviation": "tz"}).Code)

	other := a.create("/api/v1/hotels", k.admin, gin.H{"name": "Hotel Playa", "code": "HP"})
	w = a.do(http.MethodGet, fmt.Sprintf("/api/v1/hotels/%d", other), k.manager, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = a.do(http.MethodPost, "/api/v1/ingredients", k.manager, gin.H{"name": "Sal", "unit_id": 1, "unit_cost": 1, "hotel_id": other})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAPI_ErrorMapping(t *testing.T) {
	a := newAPI(t)
	k := setupKitchen(a)

	w := a.do(http.MethodDelete, fmt.Sprintf("/api/v1/ingredients/%d", k.tomato), k.manager, nil)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "recipe lines")

	w = a.do(http.MethodPost, "/api/v1/ingredients", k.manager, gin.H{"name": "Sal", "unit_cost": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unit_id")

	w = a.do(http.MethodPost, "/api/v1/hotels", k.admin, gin.H{"name": "Otro", "code": "HC"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(http.MethodGet, "/api/v1/dishes/abc", k.manager, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, "/api/v1/dishes/9999", k.manager, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)

	w = a.do(http.MethodPatch, fmt.Sprintf("/api/v1/dishes/%d/active", k.dish), k.manager, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code, "active is required")

	var dish struct {
		Active bool `json:"active"`
	}
	a.call(http.MethodPatch, fmt.Sprintf("/api/v1/dishes/%d/active", k.dish), k.manager, gin.H{"active": false}, http.StatusOK, &dish)
	assert.False(t, dish.Active)
}

func TestAPI_Spreadsheets(t *testing.T) {
	a := newAPI(t)
	k := setupKitchen(a)

	w := a.do(http.MethodGet, fmt.Sprintf("/api/v1/reports/menus/%d/costs.xlsx", k.menu), k.manager, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "menu-")
	f, err := excelize.OpenReader(w.Body)
	require.NoError(t, err)
	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Enchiladas", rows[1][0])

	book := excelize.NewFile()
	require.NoError(t, book.SetSheetRow("Sheet1", "A1", &[]interface{}{"code", "name", "unit", "unit_cost", "category"}))
	require.NoError(t, book.SetSheetRow("Sheet1", "A2", &[]interface{}{"TOM", "Tomate bola", "kg", 24, ""}))
	require.NoError(t, book.SetSheetRow("Sheet1", "A3", &[]interface{}{"AJO", "Ajo", "kg", 80, "Frutas y verduras"}))
	require.NoError(t, book.SetSheetRow("Sheet1", "A4", &[]interface{}{"ZZZ", "Sin unidad", "lb", 5, ""}))
	var xlsx bytes.Buffer
	require.NoError(t, book.Write(&xlsx))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "precios.xlsx")
	require.NoError(t, err)
	_, err = part.Write(xlsx.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingredients/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w = a.serve(req, k.manager)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var result service.ImportResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, 4, result.Skipped[0].Row)

	var dish service.DishCost
	a.call(http.MethodGet, fmt.Sprintf("/api/v1/dishes/%d/cost", k.dish), k.manager, nil, http.StatusOK, &dish)
	assert.InDelta(t, 4.8, dish.IngredientCost, 1e-9, "imported price flows into costing")

	w = a.do(http.MethodGet, "/api/v1/reports/ingredients.xlsx", k.manager, nil)
	require.Equal(t, http.StatusOK, w.Code)
	f, err = excelize.OpenReader(w.Body)
	require.NoError(t, err)
	rows, err = f.GetRows("Sheet1")
	require.NoError(t, err)
	assert.Len(t, rows, 4, "header plus three ingredients")
}
