package controller

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"costeo/service"
	"costeo/utils"
)

type IngredientController struct {
	ingredients *service.IngredientService
}

func NewIngredientController(ingredients *service.IngredientService) *IngredientController {
	return &IngredientController{ingredients: ingredients}
}

func (h *IngredientController) List(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	f, ok := bindFilter(c)
	if !ok {
		return
	}
	page, err := h.ingredients.List(c.Request.Context(), scope, f)
	if err != nil {
		handleError(c, err)
		return
	}
	respondPage(c, "Ingredients retrieved successfully", page)
}

func (h *IngredientController) Get(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	ing, err := h.ingredients.Get(c.Request.Context(), scope, id)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Ingredient retrieved successfully", ing)
}

func (h *IngredientController) Create(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	var in service.IngredientInput
	if !bindBody(c, &in) {
		return
	}
	ing, err := h.ingredients.Create(c.Request.Context(), scope, in)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, "Ingredient created successfully", ing)
}

func (h *IngredientController) Update(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	var in service.IngredientInput
	if !bindBody(c, &in) {
		return
	}
	ing, err := h.ingredients.Update(c.Request.Context(), scope, id, in)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Ingredient updated successfully", ing)
}

func (h *IngredientController) SetActive(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	active, ok := bindActive(c)
	if !ok {
		return
	}
	ing, err := h.ingredients.SetActive(c.Request.Context(), scope, id, active)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Ingredient status updated", ing)
}

func (h *IngredientController) Delete(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	if err := h.ingredients.Delete(c.Request.Context(), scope, id); err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Ingredient deleted successfully", nil)
}

// Import upserts ingredients from an uploaded .xlsx price list.
func (h *IngredientController) Import(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Excel file is required")
		return
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".xlsx") {
		utils.JSONError(c, http.StatusBadRequest, "Only .xlsx files are supported")
		return
	}

	var hotelID uint
	if raw := c.PostForm("hotel_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid hotel_id")
			return
		}
		hotelID = uint(id)
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Unable to open Excel file")
		return
	}
	defer file.Close()

	result, err := h.ingredients.Import(c.Request.Context(), scope, hotelID, file)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Ingredients imported", result)
}
