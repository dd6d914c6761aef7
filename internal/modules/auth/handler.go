package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"flashfix/internal/pkg/response"
	pkgvalidator "flashfix/internal/pkg/validator"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublicRoutes mounts the endpoints that run without a token.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}
}

// RegisterProtectedRoutes mounts the endpoints behind the auth middleware.
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.GET("/me", h.Me)
		auth.PUT("/profile", h.UpdateProfile)
		auth.PUT("/change-password", h.ChangePassword)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if details := pkgvalidator.Details(err); details != nil {
			response.ErrorWithDetails(c, http.StatusBadRequest, "Validation failed", details)
			return
		}
		response.Error(c, http.StatusBadRequest, "Name, phone and password are required")
		return
	}

	res, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Registered successfully", res)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if details := pkgvalidator.Details(err); details != nil {
			response.ErrorWithDetails(c, http.StatusBadRequest, "Validation failed", details)
			return
		}
		response.Error(c, http.StatusBadRequest, "Phone and password are required")
		return
	}

	res, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Login successful", res)
}

func (h *Handler) Me(c *gin.Context) {
	u, err := h.svc.GetCurrentUser(c.Request.Context(), actorID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "User retrieved successfully", u)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := h.svc.UpdateProfile(c.Request.Context(), actorID(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Profile updated successfully", u)
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Old and new passwords are required")
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), actorID(c), req); err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Password changed successfully", nil)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, "Invalid phone or password")
	case errors.Is(err, ErrWrongPassword):
		response.Error(c, http.StatusUnauthorized, "Current password is incorrect")
	case errors.Is(err, ErrPhoneExists):
		response.Error(c, http.StatusConflict, "Phone number already registered")
	case errors.Is(err, ErrAmbiguousRole):
		response.Error(c, http.StatusConflict, "Multiple accounts exist for this phone, please specify a role")
	case errors.Is(err, ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "User not found")
	default:
		response.Error(c, http.StatusInternalServerError, "Internal server error")
	}
}

func actorID(c *gin.Context) int64 {
	v, _ := c.Get("user_id")
	id, _ := v.(int64)
	return id
}
