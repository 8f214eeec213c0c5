package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costeo/model"
)

// kitchen builds: salsa (yield 4) = 1kg tomato + 0.5kg onion; enchiladas =
// 0.2kg tomato + 2 portions of salsa.
type kitchen struct {
	*fixture
	tomato, onion *model.Ingredient
	salsa         *model.Recipe
	dish          *model.Dish
}

func newKitchen(t *testing.T) *kitchen {
	f := newFixture(t)
	k := &kitchen{fixture: f}
	k.tomato = f.ingredient(t, "Tomate", 20)
	k.onion = f.ingredient(t, "Cebolla", 10)

	recipes := NewRecipeService(f.db)
	salsa, err := recipes.Create(t.Context(), f.staff, RecipeInput{Name: "Salsa roja", YieldPortions: ptr(4.0)})
	require.NoError(t, err)
	salsa, err = recipes.SetLines(t.Context(), f.staff, salsa.ID, []LineInput{
		{IngredientID: k.tomato.ID, Quantity: 1},
		{IngredientID: k.onion.ID, Quantity: 0.5},
	})
	require.NoError(t, err)
	k.salsa = salsa

	dishes := NewDishService(f.db, &fakeImages{}, 0.30)
	dish, err := dishes.Create(t.Context(), f.staff, DishInput{Name: "Enchiladas"}, nil)
	require.NoError(t, err)
	_, err = dishes.SetIngredients(t.Context(), f.staff, dish.ID, []LineInput{{IngredientID: k.tomato.ID, Quantity: 0.2}})
	require.NoError(t, err)
	dish, err = dishes.SetRecipes(t.Context(), f.staff, dish.ID, []PortionInput{{RecipeID: salsa.ID, Portions: 2}})
	require.NoError(t, err)
	k.dish = dish
	return k
}

func TestRecipeCost(t *testing.T) {
	k := newKitchen(t)
	require.Len(t, k.salsa.Lines, 2)

	cost, err := NewRecipeService(k.db).Cost(t.Context(), k.staff, k.salsa.ID)
	require.NoError(t, err)
	assert.Equal(t, 25.0, cost.TotalCost)
	assert.Equal(t, 6.25, cost.CostPerPortion)
	assert.Equal(t, "kg", cost.Lines[0].Unit)
	assert.Equal(t, 20.0, cost.Lines[0].Cost)
}

func TestRecipeSetLines_Replaces(t *testing.T) {
	k := newKitchen(t)
	recipes := NewRecipeService(k.db)

	r, err := recipes.SetLines(t.Context(), k.staff, k.salsa.ID, []LineInput{{IngredientID: k.onion.ID, Quantity: 2}})
	require.NoError(t, err)
	require.Len(t, r.Lines, 1)
	assert.Equal(t, k.onion.ID, r.Lines[0].IngredientID)

	var count int64
	require.NoError(t, k.db.Model(&model.RecipeIngredient{}).Where("recipe_id = ?", k.salsa.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRecipeSetLines_Rejects(t *testing.T) {
	k := newKitchen(t)
	recipes := NewRecipeService(k.db)

	foreignCost := 5.0
	foreign, err := NewIngredientService(k.db).Create(t.Context(), k.outsider, IngredientInput{
		Name: "Ajeno", UnitID: k.unit.ID, UnitCost: &foreignCost,
	})
	require.NoError(t, err)

	_, err = recipes.SetLines(t.Context(), k.staff, k.salsa.ID, []LineInput{{IngredientID: foreign.ID, Quantity: 1}})
	assert.ErrorIs(t, err, ErrForbidden)

	var verr *ValidationError
	_, err = recipes.SetLines(t.Context(), k.staff, k.salsa.ID, []LineInput{{IngredientID: 9999, Quantity: 1}})
	assert.ErrorAs(t, err, &verr)
	_, err = recipes.SetLines(t.Context(), k.staff, k.salsa.ID, []LineInput{{IngredientID: k.onion.ID, Quantity: 0}})
	assert.ErrorAs(t, err, &verr)
	_, err = recipes.SetLines(t.Context(), k.staff, k.salsa.ID, []LineInput{
		{IngredientID: k.onion.ID, Quantity: 1}, {IngredientID: k.onion.ID, Quantity: 2},
	})
	assert.ErrorAs(t, err, &verr)

	// failed replacements keep the old lines
	r, err := recipes.Get(t.Context(), k.staff, k.salsa.ID)
	require.NoError(t, err)
	assert.Len(t, r.Lines, 2)
}

func TestDishCost(t *testing.T) {
	k := newKitchen(t)
	dishes := NewDishService(k.db, &fakeImages{}, 0.30)

	cost, err := dishes.Cost(t.Context(), k.staff, k.dish.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, cost.IngredientCost)
	assert.Equal(t, 12.5, cost.RecipeCost)
	assert.Equal(t, 16.5, cost.AdministrativeCost)
	assert.Equal(t, 0.30, cost.CostFactor)
	assert.Equal(t, 55.0, cost.SuggestedPrice)
	require.Len(t, cost.Recipes, 1)
	assert.Equal(t, "Salsa roja", cost.Recipes[0].Recipe)
}

func TestDishCost_HotelFactorOverride(t *testing.T) {
	k := newKitchen(t)
	_, err := NewHotelService(k.db, &fakeImages{}, 0.30, nil).Update(t.Context(), k.manager, k.hotel.ID,
		HotelInput{Settings: map[string]interface{}{model.SettingCostFactor: 0.25}}, nil)
	require.NoError(t, err)

	cost, err := NewDishService(k.db, &fakeImages{}, 0.30).Cost(t.Context(), k.staff, k.dish.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.25, cost.CostFactor)
	assert.Equal(t, 66.0, cost.SuggestedPrice)
}

func TestDishCost_FollowsIngredientPrice(t *testing.T) {
	k := newKitchen(t)
	_, err := NewIngredientService(k.db).Update(t.Context(), k.staff, k.tomato.ID, IngredientInput{UnitCost: ptr(40.0)})
	require.NoError(t, err)

	cost, err := NewDishService(k.db, &fakeImages{}, 0.30).Cost(t.Context(), k.staff, k.dish.ID)
	require.NoError(t, err)
	// 0.2*40 + 2 * (40 + 5) / 4
	assert.Equal(t, 8.0, cost.IngredientCost)
	assert.Equal(t, 22.5, cost.RecipeCost)
	assert.Equal(t, 30.5, cost.AdministrativeCost)
}

func TestMenuPricing(t *testing.T) {
	k := newKitchen(t)
	rest, err := NewRestaurantService(k.db, &fakeImages{}).Create(t.Context(), k.manager, RestaurantInput{Name: "La Terraza"}, nil)
	require.NoError(t, err)

	menus := NewMenuService(k.db, 0.30)
	menu, err := menus.Create(t.Context(), k.manager, MenuInput{RestaurantID: rest.ID, Name: "Comida"})
	require.NoError(t, err)
	assert.Equal(t, k.hotel.ID, menu.HotelID)

	item, err := menus.AddItem(t.Context(), k.manager, menu.ID, MenuItemInput{DishID: k.dish.ID, SalePrice: ptr(60.0)})
	require.NoError(t, err)

	p, err := menus.Pricing(t.Context(), k.manager, menu.ID)
	require.NoError(t, err)
	assert.Equal(t, "La Terraza", p.Restaurant)
	require.Len(t, p.Items, 1)
	row := p.Items[0]
	assert.Equal(t, item.ID, row.ItemID)
	assert.Equal(t, "Enchiladas", row.Dish)
	assert.Equal(t, 16.5, row.Cost)
	assert.Equal(t, 43.5, row.Profit)
	assert.Equal(t, 72.5, row.MarginPercent)
	assert.Equal(t, 27.5, row.CostPercent)
	assert.Equal(t, 55.0, row.SuggestedPrice)
	assert.Equal(t, 72.5, p.AverageMargin)

	_, err = menus.UpdateItemPrice(t.Context(), k.manager, menu.ID, item.ID, ptr(0.0))
	require.NoError(t, err)
	p, err = menus.Pricing(t.Context(), k.manager, menu.ID)
	require.NoError(t, err)
	assert.Zero(t, p.Items[0].MarginPercent)
	assert.Zero(t, p.Items[0].CostPercent)
	assert.Zero(t, p.AverageMargin)
}

func TestMenuItems_Rules(t *testing.T) {
	k := newKitchen(t)
	rest, err := NewRestaurantService(k.db, &fakeImages{}).Create(t.Context(), k.manager, RestaurantInput{Name: "Bar"}, nil)
	require.NoError(t, err)
	menus := NewMenuService(k.db, 0.30)
	menu, err := menus.Create(t.Context(), k.manager, MenuInput{RestaurantID: rest.ID, Name: "Bebidas"})
	require.NoError(t, err)

	_, err = menus.AddItem(t.Context(), k.manager, menu.ID, MenuItemInput{DishID: k.dish.ID, SalePrice: ptr(50.0)})
	require.NoError(t, err)
	_, err = menus.AddItem(t.Context(), k.manager, menu.ID, MenuItemInput{DishID: k.dish.ID, SalePrice: ptr(70.0)})
	assert.ErrorIs(t, err, ErrConflict)

	var verr *ValidationError
	_, err = menus.AddItem(t.Context(), k.manager, menu.ID, MenuItemInput{DishID: k.dish.ID})
	assert.ErrorAs(t, err, &verr)
	_, err = menus.AddItem(t.Context(), k.manager, menu.ID, MenuItemInput{DishID: k.dish.ID, SalePrice: ptr(-1.0)})
	assert.ErrorAs(t, err, &verr)

	foreign, err := NewDishService(k.db, &fakeImages{}, 0.30).Create(t.Context(), k.outsider, DishInput{Name: "Ajeno"}, nil)
	require.NoError(t, err)
	_, err = menus.AddItem(t.Context(), k.manager, menu.ID, MenuItemInput{DishID: foreign.ID, SalePrice: ptr(10.0)})
	assert.ErrorIs(t, err, ErrForbidden)

	// dish on a menu cannot be deleted
	err = NewDishService(k.db, &fakeImages{}, 0.30).Delete(t.Context(), k.manager, k.dish.ID)
	var derr *DependentsError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "dish", derr.Entity)

	// deleting the menu removes its items and frees the dish
	require.NoError(t, menus.Delete(t.Context(), k.manager, menu.ID))
	var items int64
	require.NoError(t, k.db.Model(&model.MenuItem{}).Where("menu_id = ?", menu.ID).Count(&items).Error)
	assert.Zero(t, items)
	assert.NoError(t, NewDishService(k.db, &fakeImages{}, 0.30).Delete(t.Context(), k.manager, k.dish.ID))
}
