package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"costeo/service"
	"costeo/utils"
)

type DishController struct {
	dishes *service.DishService
}

func NewDishController(dishes *service.DishService) *DishController {
	return &DishController{dishes: dishes}
}

type portionsRequest struct {
	Recipes []service.PortionInput `json:"recipes" binding:"dive"`
}

func (h *DishController) List(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	f, ok := bindFilter(c)
	if !ok {
		return
	}
	page, err := h.dishes.List(c.Request.Context(), scope, f)
	if err != nil {
		handleError(c, err)
		return
	}
	respondPage(c, "Dishes retrieved successfully", page)
}

func (h *DishController) Get(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	d, err := h.dishes.Get(c.Request.Context(), scope, id)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Dish retrieved successfully", d)
}

func (h *DishController) Create(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	var in service.DishInput
	if !bindBody(c, &in) {
		return
	}
	image, ok := optionalFile(c, "image")
	if !ok {
		return
	}
	d, err := h.dishes.Create(c.Request.Context(), scope, in, image)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, "Dish created successfully", d)
}

func (h *DishController) Update(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	var in service.DishInput
	if !bindBody(c, &in) {
		return
	}
	image, ok := optionalFile(c, "image")
	if !ok {
		return
	}
	d, err := h.dishes.Update(c.Request.Context(), scope, id, in, image)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Dish updated successfully", d)
}

func (h *DishController) SetActive(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	active, ok := bindActive(c)
	if !ok {
		return
	}
	d, err := h.dishes.SetActive(c.Request.Context(), scope, id, active)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Dish status updated", d)
}

func (h *DishController) Delete(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	if err := h.dishes.Delete(c.Request.Context(), scope, id); err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Dish deleted successfully", nil)
}

func (h *DishController) SetIngredients(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	var req linesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	d, err := h.dishes.SetIngredients(c.Request.Context(), scope, id, req.Lines)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Dish ingredients updated", d)
}

func (h *DishController) SetRecipes(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	var req portionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	d, err := h.dishes.SetRecipes(c.Request.Context(), scope, id, req.Recipes)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Dish recipes updated", d)
}

func (h *DishController) Cost(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	cost, err := h.dishes.Cost(c.Request.Context(), scope, id)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Dish cost calculated", cost)
}
