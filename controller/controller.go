// Package controller turns HTTP requests into service calls and service
// errors into the JSON envelope.
package controller

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"costeo/auth"
	"costeo/logger"
	"costeo/model"
	"costeo/pricing"
	"costeo/report"
	"costeo/service"
	"costeo/storage"
	"costeo/utils"
)

type activeRequest struct {
	Active *bool `json:"active" form:"active" binding:"required"`
}

func scopeFrom(c *gin.Context) (service.Scope, bool) {
	claims, ok := utils.GetClaims(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "User not authenticated")
		return service.Scope{}, false
	}
	return service.Scope{
		UserID:  claims.UserID,
		Role:    model.UserRole(claims.Role),
		HotelID: claims.HotelID,
	}, true
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		utils.JSONError(c, http.StatusBadRequest, "Invalid "+param)
		return 0, false
	}
	return uint(id), true
}

// request resolves the caller and the :id parameter in one step.
func request(c *gin.Context) (service.Scope, uint, bool) {
	scope, ok := scopeFrom(c)
	if !ok {
		return scope, 0, false
	}
	id, ok := parseID(c, "id")
	return scope, id, ok
}

func bindFilter(c *gin.Context) (service.ListFilter, bool) {
	var f service.ListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid query: "+err.Error())
		return f, false
	}
	return f, true
}

func bindBody(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBind(dst); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return false
	}
	return true
}

func bindActive(c *gin.Context) (bool, bool) {
	var req activeRequest
	if !bindBody(c, &req) {
		return false, false
	}
	return *req.Active, true
}

// optionalFile returns the uploaded file under field, or nil when the
// request carries none.
func optionalFile(c *gin.Context, field string) (*multipart.FileHeader, bool) {
	file, err := c.FormFile(field)
	if err == nil {
		return file, true
	}
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, true
	}
	utils.JSONError(c, http.StatusBadRequest, "Invalid "+field+" upload: "+err.Error())
	return nil, false
}

// settingsForm decodes the JSON "settings" field of a multipart form.
func settingsForm(c *gin.Context, in *service.HotelInput) bool {
	raw := c.PostForm("settings")
	if raw == "" || in.Settings != nil {
		return true
	}
	if err := json.Unmarshal([]byte(raw), &in.Settings); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "settings must be a JSON object")
		return false
	}
	return true
}

func respondPage[T any](c *gin.Context, message string, p *service.Page[T]) {
	utils.JSONList(c, http.StatusOK, message, p.Items, utils.NewMeta(p.Page, p.PerPage, p.Total))
}

func handleError(c *gin.Context, err error) {
	var verr *service.ValidationError
	var derr *service.DependentsError
	switch {
	case errors.As(err, &verr):
		utils.JSONError(c, http.StatusBadRequest, verr.Error())
	case errors.As(err, &derr):
		utils.JSONError(c, http.StatusConflict, derr.Error())
	case errors.Is(err, service.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "Record not found")
	case errors.Is(err, service.ErrForbidden):
		utils.JSONError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrConflict):
		utils.JSONError(c, http.StatusConflict, err.Error())
	case errors.Is(err, pricing.ErrInvalidFactor), errors.Is(err, pricing.ErrInvalidYield):
		utils.JSONError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrFileTooLarge), errors.Is(err, storage.ErrInvalidFileType):
		utils.JSONError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, report.ErrNoDataRows):
		utils.JSONError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		utils.JSONError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, utils.ErrTokenExpired):
		utils.JSONError(c, http.StatusUnauthorized, "Refresh token has expired")
	case errors.Is(err, utils.ErrInvalidToken), errors.Is(err, utils.ErrWrongTokenType):
		utils.JSONError(c, http.StatusUnauthorized, "Invalid refresh token")
	default:
		logger.WithContext(c.Request.Context()).Error("request failed",
			zap.String("path", c.FullPath()), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Internal server error")
	}
}
