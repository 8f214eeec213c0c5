package utils

import "github.com/gin-gonic/gin"

// Meta describes one page of a list response.
type Meta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func NewMeta(page, perPage int, total int64) Meta {
	totalPages := 0
	if perPage > 0 {
		totalPages = int(total) / perPage
		if int(total)%perPage > 0 {
			totalPages++
		}
	}
	return Meta{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

func JSONSuccess(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, gin.H{"success": true, "message": message, "data": data})
}

func JSONList(c *gin.Context, code int, message string, data interface{}, meta Meta) {
	c.JSON(code, gin.H{"success": true, "message": message, "data": data, "meta": meta})
}

func JSONError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"success": false, "error": message})
}

func AbortError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"success": false, "error": message})
}
