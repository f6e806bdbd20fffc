// Package handler holds the request helpers shared by the resource handlers.
package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jwalitptl/patient-registry/internal/middleware"
	"github.com/jwalitptl/patient-registry/internal/model"
	apperrors "github.com/jwalitptl/patient-registry/pkg/errors"
	pkgvalidator "github.com/jwalitptl/patient-registry/pkg/validator"
)

// BindJSON decodes and validates the request body into dst. On failure the
// error is pushed for the error middleware and false is returned.
func BindJSON(c *gin.Context, dst interface{}) bool {
	return bind(c, c.ShouldBindJSON(dst))
}

// BindQuery decodes and validates query parameters into dst.
func BindQuery(c *gin.Context, dst interface{}) bool {
	return bind(c, c.ShouldBindQuery(dst))
}

// BindForm decodes and validates multipart or urlencoded form values into dst.
func BindForm(c *gin.Context, dst interface{}) bool {
	return bind(c, c.ShouldBind(dst))
}

func bind(c *gin.Context, err error) bool {
	if err == nil {
		return true
	}
	Fail(c, BindError(err))
	return false
}

// BindError turns a binding failure into an application error. Every
// violated rule is reported as its own field error.
func BindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(pkgvalidator.Translate(verrs)...)
	}

	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return apperrors.BadRequest(fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit), err)
	case errors.Is(err, io.EOF):
		return apperrors.BadRequest("request body is required", err)
	default:
		return apperrors.BadRequest("invalid request body", err)
	}
}

// ParseID reads a UUID path parameter. A malformed value is a 400.
func ParseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		Fail(c, apperrors.BadRequest(fmt.Sprintf("invalid %s", param), err))
		return uuid.Nil, false
	}
	return id, true
}

// CurrentUser returns the authenticated caller.
func CurrentUser(c *gin.Context) (*model.TokenClaims, bool) {
	claims, ok := middleware.Claims(c)
	if !ok {
		Fail(c, apperrors.Unauthorized("authentication required"))
		return nil, false
	}
	return claims, true
}

// Fail records err for the error middleware and stops the chain.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
