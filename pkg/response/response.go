package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/ElCzar/secchub-backend-sub001/pkg/errors"
)

// Envelope wraps every planning payload. Exactly one of Data and Error is set.
type Envelope struct {
	Data  interface{}      `json:"data,omitempty"`
	Error *appErrors.Error `json:"error,omitempty"`
	Meta  *Meta            `json:"meta,omitempty"`
}

// Meta accompanies listings of classes, schedules, assignments and conflicts.
type Meta struct {
	Count int `json:"count"`
}

// JSON sends a success envelope. Planning data changes between requests, so nothing is cached.
func JSON(c *gin.Context, status int, data interface{}, meta *Meta) {
	noStore(c)
	c.JSON(status, Envelope{Data: data, Meta: meta})
}

// List sends a 200 envelope whose meta carries the number of items returned after scope filtering.
func List(c *gin.Context, items interface{}, count int) {
	JSON(c, http.StatusOK, items, &Meta{Count: count})
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data, nil)
}

// Error maps err to its application error and status. Wrapped causes never reach the client.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// File streams a workload or schedule export as a download named filename.
func File(c *gin.Context, filename, contentType string, payload []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	noStore(c)
	c.Data(http.StatusOK, contentType, payload)
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
