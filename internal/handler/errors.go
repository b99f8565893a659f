package handler

import (
	"errors"
	"net/http"

	"repairdesk/internal/apperror"
	"repairdesk/internal/observability/logger"
	"repairdesk/pkg/pagination"
	"repairdesk/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindReferentialIntegrity, apperror.KindConcurrency:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError maps domain errors to HTTP. Anything unclassified is a 500 and its detail stays in the log.
func writeError(c *gin.Context, err error) {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		status := statusFor(appErr.Kind)
		c.JSON(status, response.ErrorWithCode(status, appErr.Code, appErr.Field, appErr.Message))
		return
	}

	logger.FromContext(c.Request.Context()).Error("request failed",
		zap.String("route", c.FullPath()),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "internal server error"))
}

func writeBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.ErrorWithCode(http.StatusBadRequest, "invalid_payload", "", "Invalid request payload: "+err.Error()))
}

// parsePage writes the 400 itself when the paging query is malformed.
func parsePage(c *gin.Context) (pagination.Params, bool) {
	params, err := pagination.Parse(c)
	var pErr *pagination.Error
	if errors.As(err, &pErr) {
		c.JSON(http.StatusBadRequest, response.ErrorWithCode(http.StatusBadRequest, "invalid_pagination", pErr.Param, pErr.Error()))
		return pagination.Params{}, false
	}
	return params, true
}
