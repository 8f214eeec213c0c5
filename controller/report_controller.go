package controller

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"costeo/service"
	"costeo/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportController struct {
	reports   *service.ReportService
	dashboard *service.DashboardService
}

func NewReportController(reports *service.ReportService, dashboard *service.DashboardService) *ReportController {
	return &ReportController{reports: reports, dashboard: dashboard}
}

func queryHotelID(c *gin.Context) (uint, bool) {
	raw := c.Query("hotel_id")
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid hotel_id")
		return 0, false
	}
	return uint(id), true
}

func (h *ReportController) Dashboard(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	hotelID, ok := queryHotelID(c)
	if !ok {
		return
	}
	d, err := h.dashboard.Get(c.Request.Context(), scope, hotelID)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Dashboard retrieved successfully", d)
}

func (h *ReportController) MenuCosts(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	p, err := h.reports.MenuCosts(c.Request.Context(), scope, id)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Menu costs retrieved successfully", p)
}

func (h *ReportController) MenuCostsExcel(c *gin.Context) {
	scope, id, ok := request(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if _, err := h.reports.WriteMenuCosts(c.Request.Context(), scope, id, &buf); err != nil {
		handleError(c, err)
		return
	}
	sendWorkbook(c, fmt.Sprintf("menu-%d-costs.xlsx", id), &buf)
}

func (h *ReportController) IngredientsExcel(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}
	hotelID, ok := queryHotelID(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.reports.WriteIngredients(c.Request.Context(), scope, hotelID, &buf); err != nil {
		handleError(c, err)
		return
	}
	sendWorkbook(c, "ingredients.xlsx", &buf)
}

func sendWorkbook(c *gin.Context, filename string, buf *bytes.Buffer) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
