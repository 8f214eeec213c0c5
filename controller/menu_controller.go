package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"costeo/service"
	"costeo/utils"
)

type MenuController struct {
	menus *service.MenuService
}

func NewMenuController(menus *service.MenuService) *MenuController {
	return &MenuController{menus: menus}
}

type itemPriceRequest struct {
	SalePrice *float64 `json:"sale_price" binding:"required"`
}

func (h *MenuController) List(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	f, ok := bindFilter(c)
	if !ok {
		return
	}
	page, err := h.menus.List(c.Request.Context(), scope, f)
	if err != nil {
		handleError(c, err)
		return
	}
	respondPage(c, "Menus retrieved successfully", page)
}

func (h *MenuController) Get(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	m, err := h.menus.Get(c.Request.Context(), scope, id)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Menu retrieved successfully", m)
}

func (h *MenuController) Create(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	var in service.MenuInput
	if !bindBody(c, &in) {
		return
	}
	m, err := h.menus.Create(c.Request.Context(), scope, in)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, "Menu created successfully", m)
}

func (h *MenuController) Update(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	var in service.MenuInput
	if !bindBody(c, &in) {
		return
	}
	m, err := h.menus.Update(c.Request.Context(), scope, id, in)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Menu updated successfully", m)
}

func (h *MenuController) SetActive(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	active, ok := bindActive(c)
	if !ok {
		return
	}
	m, err := h.menus.SetActive(c.Request.Context(), scope, id, active)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Menu status updated", m)
}

func (h *MenuController) Delete(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	if err := h.menus.Delete(c.Request.Context(), scope, id); err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Menu deleted successfully", nil)
}

func (h *MenuController) AddItem(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	var in service.MenuItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	item, err := h.menus.AddItem(c.Request.Context(), scope, id, in)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, "Dish added to menu", item)
}

func (h *MenuController) UpdateItem(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	itemID, ok := parseID(c, "item_id")
	if !ok {
		return
	}
	var req itemPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	item, err := h.menus.UpdateItemPrice(c.Request.Context(), scope, id, itemID, req.SalePrice)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Menu item updated", item)
}

func (h *MenuController) RemoveItem(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	itemID, ok := parseID(c, "item_id")
	if !ok {
		return
	}
	if err := h.menus.RemoveItem(c.Request.Context(), scope, id, itemID); err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Dish removed from menu", nil)
}

func (h *MenuController) Pricing(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	p, err := h.menus.Pricing(c.Request.Context(), scope, id)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Menu pricing calculated", p)
}
