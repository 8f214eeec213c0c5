package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"costeo/service"
	"costeo/utils"
)

type RestaurantController struct {
	restaurants *service.RestaurantService
}

func NewRestaurantController(restaurants *service.RestaurantService) *RestaurantController {
	return &RestaurantController{restaurants: restaurants}
}

func (h *RestaurantController) List(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	f, ok := bindFilter(c)
	if !ok {
		return
	}
	page, err := h.restaurants.List(c.Request.Context(), scope, f)
	if err != nil {
		handleError(c, err)
		return
	}
	respondPage(c, "Restaurants retrieved successfully", page)
}

func (h *RestaurantController) Get(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	r, err := h.restaurants.Get(c.Request.Context(), scope, id)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Restaurant retrieved successfully", r)
}

func (h *RestaurantController) Create(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	var in service.RestaurantInput
	if !bindBody(c, &in) {
		return
	}
	image, ok := optionalFile(c, "image")
	if !ok {
		return
	}
	r, err := h.restaurants.Create(c.Request.Context(), scope, in, image)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, "Restaurant created successfully", r)
}

func (h *RestaurantController) Update(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	var in service.RestaurantInput
	if !bindBody(c, &in) {
		return
	}
	image, ok := optionalFile(c, "image")
	if !ok {
		return
	}
	r, err := h.restaurants.Update(c.Request.Context(), scope, id, in, image)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Restaurant updated successfully", r)
}

func (h *RestaurantController) SetActive(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	active, ok := bindActive(c)
	if !ok {
		return
	}
	r, err := h.restaurants.SetActive(c.Request.Context(), scope, id, active)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Restaurant status updated", r)
}

func (h *RestaurantController) Delete(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	if err := h.restaurants.Delete(c.Request.Context(), scope, id); err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Restaurant deleted successfully", nil)
}
