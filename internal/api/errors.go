package api

import (
	"errors"
	"net/http"

	"helios/internal/exec"
	"helios/internal/identity"
	"helios/internal/pool"

	"github.com/gin-gonic/gin"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrUnauthorized   = errors.New("unauthorized")
)

func respondError(c *gin.Context, code int, err error) {
	c.JSON(code, ErrorResponse{
		Error: err.Error(),
		Code:  code,
	})
}

func respondErrorWithDetails(c *gin.Context, code int, err error, details string) {
	c.JSON(code, ErrorResponse{
		Error:   err.Error(),
		Code:    code,
		Details: details,
	})
}

func abortWithError(c *gin.Context, code int, err error) {
	c.AbortWithStatusJSON(code, ErrorResponse{
		Error: err.Error(),
		Code:  code,
	})
}

// mapPoolError translates pool errors to transport status codes. Exhaustion is
// a recoverable overload condition, not a server fault.
func mapPoolError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, pool.ErrPoolExhausted):
		return http.StatusServiceUnavailable
	case errors.Is(err, pool.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, pool.ErrInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func mapIdentityError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, identity.ErrInvalidCredentials), errors.Is(err, identity.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, identity.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, identity.ErrUserNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func mapExecError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, exec.ErrCommandNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, exec.ErrEmptyCommand):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
