package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/patient-registry/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    interface{}         `json:"data,omitempty"`
	Errors  []errors.FieldError `json:"errors,omitempty"`
}

// Pagination represents pagination metadata
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalCount  int  `json:"totalCount"`
	Limit       int  `json:"limit"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

// NewPagination derives page metadata from the requested page, the page size
// and the total number of matching rows.
func NewPagination(page, limit, total int) Pagination {
	if limit < 1 {
		limit = 1
	}
	if page < 1 {
		page = 1
	}
	totalPages := (total + limit - 1) / limit

	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  total,
		Limit:       limit,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}

// RespondWithSuccess sends a 200 response
func RespondWithSuccess(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RespondWithCreated sends a 201 response
func RespondWithCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RespondWithPagination sends a page of items under the given collection key.
func RespondWithPagination(c *gin.Context, key string, items interface{}, page, limit, total int) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			key:          items,
			"pagination": NewPagination(page, limit, total),
		},
	})
}

// RespondWithError renders err as an envelope. Errors that are not AppErrors
// are reported as a generic 500 unless exposeInternal is set.
func RespondWithError(c *gin.Context, err error, exposeInternal bool) {
	appErr, ok := errors.As(err)
	if !ok {
		message := "Internal server error"
		if exposeInternal && err != nil {
			message = err.Error()
		}
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Message: message,
		})
		return
	}

	message := appErr.Message
	if appErr.Code == errors.ErrInternal {
		message = "Internal server error"
		if exposeInternal && appErr.Err != nil {
			message = appErr.Err.Error()
		}
	}

	c.JSON(appErr.StatusCode(), Response{
		Success: false,
		Message: message,
		Errors:  appErr.Fields,
	})
}

// AbortWithError renders err and stops the handler chain.
func AbortWithError(c *gin.Context, err error) {
	RespondWithError(c, err, false)
	c.Abort()
}
