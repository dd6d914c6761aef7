package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"flashfix/internal/middleware"
	"flashfix/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublicRoutes mounts the read-only catalog endpoints. Customers
// browse services without signing in.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	services := rg.Group("/services")
	{
		services.GET("", h.List)
		services.GET("/categories", h.Categories)
		services.GET("/popular", h.Popular)
		services.GET("/:id", h.Get)
	}
}

// RegisterProtectedRoutes mounts the admin-only catalog management endpoints.
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	services := rg.Group("/services", middleware.AdminOnly())
	{
		services.POST("", h.Create)
		services.PUT("/:id", h.Update)
		services.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) List(c *gin.Context) {
	q := ListQuery{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Page:     queryInt(c, "page", 1),
		Limit:    queryInt(c, "limit", 10),
	}

	// anonymous callers only see active services
	if c.Query("includeInactive") != "true" {
		active := true
		q.IsActive = &active
	}

	items, total, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Paginated(c, http.StatusOK, "Services retrieved successfully", items, q.Page, q.Limit, total)
}

func (h *Handler) Categories(c *gin.Context) {
	cats, err := h.svc.Categories(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Categories retrieved successfully", cats)
}

func (h *Handler) Popular(c *gin.Context) {
	limit := queryInt(c, "limit", 0)

	items, err := h.svc.Popular(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Popular services retrieved successfully", items)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := serviceID(c)
	if !ok {
		return
	}

	svc, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Service retrieved successfully", svc)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Name, category and base price are required")
		return
	}

	svc, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Service created successfully", svc)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := serviceID(c)
	if !ok {
		return
	}
	var req UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	svc, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Service updated successfully", svc)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := serviceID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Service deleted successfully", nil)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "Service not found")
	case errors.Is(err, ErrServiceInUse):
		response.Error(c, http.StatusBadRequest, "Service has orders and cannot be deleted")
	default:
		response.Error(c, http.StatusInternalServerError, "Internal server error")
	}
}

func serviceID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "Invalid service ID")
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < 1 {
		return def
	}
	return v
}
