package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/ikkim/minishop-backend/internal/app/service"
	apperrors "github.com/ikkim/minishop-backend/internal/errors"
	"github.com/ikkim/minishop-backend/internal/middleware"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string // empty uses err.Error()
}

// serviceErrors maps service sentinels to HTTP responses, first match wins
var serviceErrors = []errorMapping{
	{service.ErrUserNotFound, http.StatusNotFound, apperrors.UserNotFound, "user not found"},
	{service.ErrCategoryNotFound, http.StatusNotFound, apperrors.CategoryNotFound, "category not found"},
	{service.ErrGoodsNotFound, http.StatusNotFound, apperrors.GoodsNotFound, "goods not found"},
	{service.ErrCartItemNotFound, http.StatusNotFound, apperrors.CartItemNotFound, "cart item not found"},
	{service.ErrAddressNotFound, http.StatusNotFound, apperrors.AddressNotFound, "address not found"},
	{service.ErrOrderNotFound, http.StatusNotFound, apperrors.OrderNotFound, "order not found"},
	{service.ErrInsufficientInventory, http.StatusConflict, apperrors.GoodsInsufficientStock, ""},
	{service.ErrDefaultAddressExists, http.StatusConflict, apperrors.AddressDefaultExists, "a default address already exists"},
	{service.ErrOrderNotCancellable, http.StatusConflict, apperrors.OrderNotCancellable, "only orders awaiting payment can be cancelled"},
	{service.ErrOrderNotPayable, http.StatusConflict, apperrors.OrderNotPayable, "only orders awaiting payment can be paid"},
	{service.ErrEmptyCartSelection, http.StatusBadRequest, apperrors.CartEmptySelection, "no cart items selected"},
	{service.ErrInvalidOrderRequest, http.StatusBadRequest, apperrors.ValidationInvalidInput, ""},
	{service.ErrInvalidCartCount, http.StatusBadRequest, apperrors.ValidationInvalidInput, "count must be positive"},
	{service.ErrInvalidBirthday, http.StatusBadRequest, apperrors.ValidationInvalidFormat, "birthday must be YYYY-MM-DD"},
	{service.ErrInvalidFileType, http.StatusBadRequest, apperrors.UploadInvalidFileType, "only jpeg, png, gif and webp images are allowed"},
	{service.ErrFileTooLarge, http.StatusBadRequest, apperrors.UploadFileTooLarge, "file exceeds the 5MB limit"},
	{service.ErrUploadFailed, http.StatusBadGateway, apperrors.UploadFailed, "upload failed, please try again later"},
	{service.ErrIdentityExchangeFailed, http.StatusUnauthorized, apperrors.AuthCodeInvalid, "login code rejected"},
}

// respondServiceError writes the mapped response for a service error.
// Unknown errors are logged and parsed as storage errors.
func respondServiceError(c *gin.Context, err error, operation string) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			msg := m.message
			if msg == "" {
				msg = err.Error()
			}
			middleware.GetLoggerFromContext(c).Warn("Request rejected", map[string]interface{}{
				"operation": operation,
				"error":     err.Error(),
			})
			apperrors.RespondWithError(c, m.status, m.code, msg)
			return
		}
	}

	middleware.GetLoggerFromContext(c).Error("Request failed", err, map[string]interface{}{
		"operation": operation,
	})
	apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, operation)
}

// requireUser returns the authenticated user id or writes 401
func requireUser(c *gin.Context) (uint, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		middleware.GetLoggerFromContext(c).Warn("Unauthenticated access", map[string]interface{}{
			"path": c.Request.URL.Path,
		})
		apperrors.Unauthorized(c, "")
		return 0, false
	}
	return userID, true
}

// parseIDParam reads a positive integer path parameter or writes 400
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// bindError reports binding failures, per field when the validator produced them
func bindError(c *gin.Context, err error, operation string) {
	middleware.GetLoggerFromContext(c).Warn("Invalid request body", map[string]interface{}{
		"operation": operation,
		"error":     err.Error(),
	})

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = validationMessage(fe)
		}
		apperrors.RespondWithValidationError(c, fields)
		return
	}
	apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid request data")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}
