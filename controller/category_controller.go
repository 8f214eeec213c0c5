package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"costeo/service"
	"costeo/utils"
)

type CategoryController struct {
	categories *service.CategoryService
	units      *service.UnitService
}

func NewCategoryController(categories *service.CategoryService, units *service.UnitService) *CategoryController {
	return &CategoryController{categories: categories, units: units}
}

func (h *CategoryController) List(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	f, ok := bindFilter(c)
	if !ok {
		return
	}
	page, err := h.categories.List(c.Request.Context(), scope, f)
	if err != nil {
		handleError(c, err)
		return
	}
	respondPage(c, "Categories retrieved successfully", page)
}

func (h *CategoryController) Get(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	cat, err := h.categories.Get(c.Request.Context(), scope, id)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Category retrieved successfully", cat)
}

func (h *CategoryController) Create(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	var in service.CategoryInput
	if !bindBody(c, &in) {
		return
	}
	cat, err := h.categories.Create(c.Request.Context(), scope, in)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, "Category created successfully", cat)
}

func (h *CategoryController) Update(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	var in service.CategoryInput
	if !bindBody(c, &in) {
		return
	}
	cat, err := h.categories.Update(c.Request.Context(), scope, id, in)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Category updated successfully", cat)
}

func (h *CategoryController) Delete(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	if err := h.categories.Delete(c.Request.Context(), scope, id); err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Category deleted successfully", nil)
}

// Units are a global catalog; any signed-in user may read them.

func (h *CategoryController) ListUnits(c *gin.Context) {
	f, ok := bindFilter(c)
	if !ok {
		return
	}
	page, err := h.units.List(c.Request.Context(), f)
	if err != nil {
		handleError(c, err)
		return
	}
	respondPage(c, "Units retrieved successfully", page)
}

func (h *CategoryController) GetUnit(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	u, err := h.units.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Unit retrieved successfully", u)
}

func (h *CategoryController) CreateUnit(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	var in service.UnitInput
	if !bindBody(c, &in) {
		return
	}
	u, err := h.units.Create(c.Request.Context(), scope, in)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, "Unit created successfully", u)
}

func (h *CategoryController) UpdateUnit(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	var in service.UnitInput
	if !bindBody(c, &in) {
		return
	}
	u, err := h.units.Update(c.Request.Context(), scope, id, in)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Unit updated successfully", u)
}

func (h *CategoryController) DeleteUnit(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	if err := h.units.Delete(c.Request.Context(), scope, id); err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Unit deleted successfully", nil)
}
