package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"costeo/service"
	"costeo/utils"
)

type RecipeController struct {
	recipes *service.RecipeService
}

func NewRecipeController(recipes *service.RecipeService) *RecipeController {
	return &RecipeController{recipes: recipes}
}

type linesRequest struct {
	Lines []service.LineInput `json:"lines" binding:"dive"`
}

func (h *RecipeController) List(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	f, ok := bindFilter(c)
	if !ok {
		return
	}
	page, err := h.recipes.List(c.Request.Context(), scope, f)
	if err != nil {
		handleError(c, err)
		return
	}
	respondPage(c, "Recipes retrieved successfully", page)
}

func (h *RecipeController) Get(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	r, err := h.recipes.Get(c.Request.Context(), scope, id)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Recipe retrieved successfully", r)
}

func (h *RecipeController) Create(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	var in service.RecipeInput
	if !bindBody(c, &in) {
		return
	}
	r, err := h.recipes.Create(c.Request.Context(), scope, in)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, "Recipe created successfully", r)
}

func (h *RecipeController) Update(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	var in service.RecipeInput
	if !bindBody(c, &in) {
		return
	}
	r, err := h.recipes.Update(c.Request.Context(), scope, id, in)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Recipe updated successfully", r)
}

func (h *RecipeController) SetActive(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	active, ok := bindActive(c)
	if !ok {
		return
	}
	r, err := h.recipes.SetActive(c.Request.Context(), scope, id, active)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Recipe status updated", r)
}

func (h *RecipeController) Delete(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	if err := h.recipes.Delete(c.Request.Context(), scope, id); err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Recipe deleted successfully", nil)
}

func (h *RecipeController) SetLines(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	var req linesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	r, err := h.recipes.SetLines(c.Request.Context(), scope, id, req.Lines)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Recipe lines updated", r)
}

func (h *RecipeController) Cost(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	cost, err := h.recipes.Cost(c.Request.Context(), scope, id)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Recipe cost calculated", cost)
}
