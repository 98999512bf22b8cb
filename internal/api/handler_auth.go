package api

import (
	"net/http"

	"helios/internal/identity"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	ids *identity.Service
}

func NewAuthHandler(ids *identity.Service) *AuthHandler {
	return &AuthHandler{ids: ids}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, ErrInvalidRequest, err.Error())
		return
	}

	user, err := h.ids.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(c, mapIdentityError(err), err)
		return
	}

	c.JSON(http.StatusCreated, UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: formatTime(user.CreatedAt),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, ErrInvalidRequest, err.Error())
		return
	}

	token, user, err := h.ids.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, mapIdentityError(err), err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		UserID:    user.ID,
		Username:  user.Username,
		LastLogin: formatTime(user.LastLogin),
	})
}
