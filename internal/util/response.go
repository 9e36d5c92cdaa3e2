package util

import (
	"errors"
	"kreuzen_backend/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageResponse 分页响应结构
type PageResponse struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func ErrorWithData(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error",
		zap.Error(err),
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
	)
	InternalServerError(c)
}

// HandleError 将领域错误映射为 HTTP 状态码
func HandleError(c *gin.Context, err error) {
	var (
		validationErr *ValidationError
		conflictErr   *ConflictError
		notFoundErr   *NotFoundError
		unknownErr    *UnknownTypeError
	)

	switch {
	case errors.As(err, &validationErr):
		ErrorWithData(c, http.StatusBadRequest, validationErr.Error(), gin.H{"field": validationErr.Field})
	case errors.As(err, &unknownErr):
		ErrorWithData(c, http.StatusBadRequest, unknownErr.Error(), gin.H{"type": unknownErr.Type})
	case errors.As(err, &conflictErr):
		ErrorWithData(c, http.StatusConflict, conflictErr.Error(), gin.H{"code": conflictErr.Code})
	case errors.As(err, &notFoundErr):
		Error(c, http.StatusNotFound, notFoundErr.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c)
	case errors.Is(err, ErrPermissionDenied):
		Forbidden(c)
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrTokenInvalid):
		Error(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrUserLocked), errors.Is(err, ErrEmailNotConfirmed), errors.Is(err, ErrMailDomainNotAllowed):
		Error(c, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrEmailRegistered), errors.Is(err, ErrUsernameTaken):
		Error(c, http.StatusConflict, err.Error())
	default:
		LogInternalError(c, err)
	}
}
