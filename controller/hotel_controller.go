package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"costeo/service"
	"costeo/utils"
)

type HotelController struct {
	hotels *service.HotelService
}

func NewHotelController(hotels *service.HotelService) *HotelController {
	return &HotelController{hotels: hotels}
}

func (h *HotelController) List(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	f, ok := bindFilter(c)
	if !ok {
		return
	}
	page, err := h.hotels.List(c.Request.Context(), scope, f)
	if err != nil {
		handleError(c, err)
		return
	}
	respondPage(c, "Hotels retrieved successfully", page)
}

func (h *HotelController) Get(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	hotel, err := h.hotels.Get(c.Request.Context(), scope, id)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Hotel retrieved successfully", hotel)
}

func (h *HotelController) Create(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	var in service.HotelInput
	if !bindBody(c, &in) || !settingsForm(c, &in) {
		return
	}
	logo, ok := optionalFile(c, "logo")
	if !ok {
		return
	}
	hotel, err := h.hotels.Create(c.Request.Context(), scope, in, logo)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, "Hotel created successfully", hotel)
}

func (h *HotelController) Update(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	var in service.HotelInput
	if !bindBody(c, &in) || !settingsForm(c, &in) {
		return
	}
	logo, ok := optionalFile(c, "logo")
	if !ok {
		return
	}
	hotel, err := h.hotels.Update(c.Request.Context(), scope, id, in, logo)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Hotel updated successfully", hotel)
}

func (h *HotelController) SetActive(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	active, ok := bindActive(c)
	if !ok {
		return
	}
	hotel, err := h.hotels.SetActive(c.Request.Context(), scope, id, active)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Hotel status updated", hotel)
}

func (h *HotelController) Delete(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	if err := h.hotels.Delete(c.Request.Context(), scope, id); err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Hotel deleted successfully", nil)
}
