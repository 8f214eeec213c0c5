package route

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"costeo/cache"
	"costeo/controller"
	"costeo/middleware"
	"costeo/model"
	"costeo/utils"
)

// Controllers groups every handler the API serves.
type Controllers struct {
	Hotels      *controller.HotelController
	Restaurants *controller.RestaurantController
	Categories  *controller.CategoryController
	Ingredients *controller.IngredientController
	Recipes     *controller.RecipeController
	Dishes      *controller.DishController
	Menus       *controller.MenuController
	Users       *controller.UserController
	Reports     *controller.ReportController
}

// Options carries what the routes need besides the controllers.
type Options struct {
	Tokens   *utils.TokenManager
	Cache    cache.Store
	CacheTTL time.Duration
}

var (
	admin      = string(model.RoleAdmin)
	manager    = string(model.RoleManager)
	staff      = string(model.RoleStaff)
	managers   = []string{admin, manager}
	everyone   = []string{admin, manager, staff}
	adminsOnly = []string{admin}
)

func Register(router *gin.Engine, ctrl Controllers, opts Options) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", ctrl.Users.Login)
		authGroup.POST("/refresh", ctrl.Users.Refresh)
		authGroup.GET("/me", utils.AuthMiddleware(opts.Tokens), ctrl.Users.Me)
	}

	protected := api.Group("")
	protected.Use(utils.AuthMiddleware(opts.Tokens))
	protected.Use(middleware.InvalidateOnWrite(cache.NewInvalidator(opts.Cache)))

	pages := middleware.PageCache(opts.Cache, opts.CacheTTL)

	hotels := protected.Group("/hotels")
	{
		hotels.GET("", ctrl.Hotels.List)
		hotels.GET("/:id", ctrl.Hotels.Get)
		hotels.POST("", utils.RequireRole(adminsOnly...), ctrl.Hotels.Create)
		hotels.PUT("/:id", utils.RequireRole(managers...), ctrl.Hotels.Update)
		hotels.PATCH("/:id/active", utils.RequireRole(adminsOnly...), ctrl.Hotels.SetActive)
		hotels.DELETE("/:id", utils.RequireRole(adminsOnly...), ctrl.Hotels.Delete)
	}

	restaurants := protected.Group("/restaurants")
	{
		restaurants.GET("", ctrl.Restaurants.List)
		restaurants.GET("/:id", ctrl.Restaurants.Get)
		restaurants.POST("", utils.RequireRole(managers...), ctrl.Restaurants.Create)
		restaurants.PUT("/:id", utils.RequireRole(managers...), ctrl.Restaurants.Update)
		restaurants.PATCH("/:id/active", utils.RequireRole(managers...), ctrl.Restaurants.SetActive)
		restaurants.DELETE("/:id", utils.RequireRole(managers...), ctrl.Restaurants.Delete)
	}

	categories := protected.Group("/categories")
	{
		categories.GET("", ctrl.Categories.List)
		categories.GET("/:id", ctrl.Categories.Get)
		categories.POST("", utils.RequireRole(managers...), ctrl.Categories.Create)
		categories.PUT("/:id", utils.RequireRole(managers...), ctrl.Categories.Update)
		categories.DELETE("/:id", utils.RequireRole(managers...), ctrl.Categories.Delete)
	}

	units := protected.Group("/units")
	{
		units.GET("", ctrl.Categories.ListUnits)
		units.GET("/:id", ctrl.Categories.GetUnit)
		units.POST("", utils.RequireRole(adminsOnly...), ctrl.Categories.CreateUnit)
		units.PUT("/:id", utils.RequireRole(adminsOnly...), ctrl.Categories.UpdateUnit)
		units.DELETE("/:id", utils.RequireRole(adminsOnly...), ctrl.Categories.DeleteUnit)
	}

	ingredients := protected.Group("/ingredients", utils.RequireRole(everyone...))
	{
		ingredients.GET("", ctrl.Ingredients.List)
		ingredients.GET("/:id", ctrl.Ingredients.Get)
		ingredients.POST("", ctrl.Ingredients.Create)
		ingredients.POST("/import", ctrl.Ingredients.Import)
		ingredients.PUT("/:id", ctrl.Ingredients.Update)
		ingredients.PATCH("/:id/active", ctrl.Ingredients.SetActive)
		ingredients.DELETE("/:id", ctrl.Ingredients.Delete)
	}

	recipes := protected.Group("/recipes", utils.RequireRole(everyone...))
	{
		recipes.GET("", ctrl.Recipes.List)
		recipes.GET("/:id", ctrl.Recipes.Get)
		recipes.GET("/:id/cost", ctrl.Recipes.Cost)
		recipes.POST("", ctrl.Recipes.Create)
		recipes.PUT("/:id", ctrl.Recipes.Update)
		recipes.PUT("/:id/lines", ctrl.Recipes.SetLines)
		recipes.PATCH("/:id/active", ctrl.Recipes.SetActive)
		recipes.DELETE("/:id", ctrl.Recipes.Delete)
	}

	dishes := protected.Group("/dishes", utils.RequireRole(everyone...))
	{
		dishes.GET("", ctrl.Dishes.List)
		dishes.GET("/:id", ctrl.Dishes.Get)
		dishes.GET("/:id/cost", ctrl.Dishes.Cost)
		dishes.POST("", ctrl.Dishes.Create)
		dishes.PUT("/:id", ctrl.Dishes.Update)
		dishes.PUT("/:id/ingredients", ctrl.Dishes.SetIngredients)
		dishes.PUT("/:id/recipes", ctrl.Dishes.SetRecipes)
		dishes.PATCH("/:id/active", ctrl.Dishes.SetActive)
		dishes.DELETE("/:id", ctrl.Dishes.Delete)
	}

	menus := protected.Group("/menus")
	{
		menus.GET("", ctrl.Menus.List)
		menus.GET("/:id", ctrl.Menus.Get)
		menus.GET("/:id/pricing", ctrl.Menus.Pricing)
		menus.POST("", utils.RequireRole(managers...), ctrl.Menus.Create)
		menus.PUT("/:id", utils.RequireRole(managers...), ctrl.Menus.Update)
		menus.PATCH("/:id/active", utils.RequireRole(managers...), ctrl.Menus.SetActive)
		menus.DELETE("/:id", utils.RequireRole(managers...), ctrl.Menus.Delete)
		menus.POST("/:id/items", utils.RequireRole(managers...), ctrl.Menus.AddItem)
		menus.PUT("/:id/items/:item_id", utils.RequireRole(managers...), ctrl.Menus.UpdateItem)
		menus.DELETE("/:id/items/:item_id", utils.RequireRole(managers...), ctrl.Menus.RemoveItem)
	}

	users := protected.Group("/users", utils.RequireRole(managers...))
	{
		users.GET("", ctrl.Users.List)
		users.GET("/:id", ctrl.Users.Get)
		users.POST("", ctrl.Users.Create)
		users.PUT("/:id", ctrl.Users.Update)
		users.PATCH("/:id/active", ctrl.Users.SetActive)
		users.DELETE("/:id", ctrl.Users.Delete)
	}

	protected.GET("/dashboard", pages, ctrl.Reports.Dashboard)

	reports := protected.Group("/reports")
	{
		reports.GET("/menus/:id/costs", pages, ctrl.Reports.MenuCosts)
		reports.GET("/menus/:id/costs.xlsx", ctrl.Reports.MenuCostsExcel)
		reports.GET("/ingredients.xlsx", ctrl.Reports.IngredientsExcel)
	}
}
