package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/hrms-lite/internal/core/attendance"
	"github.com/ogurasousui/hrms-lite/internal/core/employee"
	"github.com/rs/zerolog"
)

const internalErrorDetail = "internal server error"

type errorResponse struct {
	Detail string `json:"detail"`
}

func toHTTPStatus(err error) int {
	switch {
	case errors.Is(err, employee.ErrInvalidEmployeeID),
		errors.Is(err, employee.ErrInvalidFullName),
		errors.Is(err, employee.ErrInvalidEmail),
		errors.Is(err, employee.ErrInvalidDepartment),
		errors.Is(err, attendance.ErrInvalidStatus),
		errors.Is(err, attendance.ErrInvalidDate),
		errors.Is(err, attendance.ErrEmployeeIDRequired):
		return http.StatusUnprocessableEntity
	case errors.Is(err, employee.ErrInvalidID),
		errors.Is(err, attendance.ErrInvalidEmployeeID):
		return http.StatusBadRequest
	case errors.Is(err, employee.ErrEmployeeIDAlreadyExists),
		errors.Is(err, employee.ErrEmailAlreadyExists):
		return http.StatusBadRequest
	case errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, attendance.ErrEmployeeNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError はドメインエラーを HTTP ステータスへ変換して応答します。想定外のエラーは詳細を伏せて記録します。
func respondError(c *gin.Context, err error) {
	status := toHTTPStatus(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("request failed")
		c.AbortWithStatusJSON(status, errorResponse{Detail: internalErrorDetail})
		return
	}
	c.AbortWithStatusJSON(status, errorResponse{Detail: err.Error()})
}

func respondBindingError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorResponse{Detail: formatBindingError(err)})
}
