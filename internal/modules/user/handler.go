package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"flashfix/internal/domain"
	"flashfix/internal/middleware"
	"flashfix/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	{
		users.GET("", middleware.AdminOnly(), h.List)
		users.POST("", middleware.AdminOnly(), h.Create)
		users.GET("/stats", middleware.AdminOnly(), h.Stats)
		users.GET("/technicians", middleware.RequireRole(domain.RoleAdmin, domain.RoleService), h.Technicians)
		users.GET("/:id", h.Get)
		users.PUT("/:id", h.Update)
		users.DELETE("/:id", middleware.AdminOnly(), h.Delete)
		users.PUT("/:id/reset-password", middleware.AdminOnly(), h.ResetPassword)
	}
}

func (h *Handler) List(c *gin.Context) {
	q := ListQuery{
		Role:   c.Query("role"),
		Search: c.Query("search"),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 10),
	}

	items, total, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Paginated(c, http.StatusOK, "Users retrieved successfully", items, q.Page, q.Limit, total)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Name, phone, password and role are required")
		return
	}

	u, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "User created successfully", u)
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "User statistics retrieved successfully", stats)
}

func (h *Handler) Technicians(c *gin.Context) {
	items, err := h.svc.ListTechnicians(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Technicians retrieved successfully", items)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	u, err := h.svc.Get(c.Request.Context(), actorID(c), actorRole(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "User retrieved successfully", u)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := h.svc.Update(c.Request.Context(), actorID(c), actorRole(c), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "User updated successfully", u)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), actorID(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "User deleted successfully", nil)
}

func (h *Handler) ResetPassword(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "New password is required")
		return
	}

	if err := h.svc.ResetPassword(c.Request.Context(), id, req); err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Password reset successfully", nil)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "User not found")
	case errors.Is(err, ErrPhoneExists):
		response.Error(c, http.StatusConflict, "Phone number already registered")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "Insufficient permissions for this operation")
	case errors.Is(err, ErrSelfDelete):
		response.Error(c, http.StatusBadRequest, "Cannot delete your own account")
	case errors.Is(err, ErrUserInUse):
		response.Error(c, http.StatusBadRequest, "User has orders and cannot be deleted")
	default:
		response.Error(c, http.StatusInternalServerError, "Internal server error")
	}
}

func userID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "Invalid user ID")
		return 0, false
	}
	return id, true
}

func actorID(c *gin.Context) int64 {
	v, _ := c.Get("user_id")
	id, _ := v.(int64)
	return id
}

func actorRole(c *gin.Context) domain.UserRole {
	v, _ := c.Get("role")
	r, _ := v.(string)
	return domain.UserRole(r)
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < 1 {
		return def
	}
	return v
}
