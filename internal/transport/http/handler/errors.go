package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/domain"
)

// statusFor maps the failure taxonomy to HTTP. Privacy failures answer 403
// so they are indistinguishable from an authorization denial.
func statusFor(e *domain.Error) int {
	switch e.Category {
	case domain.CategoryValidation:
		return http.StatusBadRequest
	case domain.CategoryAuthentication:
		return http.StatusUnauthorized
	case domain.CategoryAuthorization, domain.CategoryPrivacy:
		return http.StatusForbidden
	case domain.CategoryNotFound:
		return http.StatusNotFound
	case domain.CategoryConflict, domain.CategoryBusinessRule:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, e *domain.Error) {
	c.JSON(statusFor(e), gin.H{"error": gin.H{
		"code":    e.Code,
		"message": e.Message,
	}})
}
