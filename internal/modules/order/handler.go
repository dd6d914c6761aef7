package order

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"flashfix/internal/domain"
	"flashfix/internal/middleware"
	"flashfix/internal/pkg/response"
	pkgvalidator "flashfix/internal/pkg/validator"
)

type Handler struct {
	svc *Service
	hub *Hub
}

func NewHandler(svc *Service, hub *Hub) *Handler {
	return &Handler{svc: svc, hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.POST("", h.Create)
		orders.GET("", h.List)
		orders.GET("/feed", h.Feed)
		orders.GET("/:id", h.Get)
		orders.PUT("/:id/assign", middleware.AdminOnly(), h.Assign)
		orders.POST("/:id/claim", middleware.TechnicianOnly(), h.Claim)
		orders.PUT("/:id/accept", middleware.TechnicianOnly(), h.Accept)
		orders.PUT("/:id/reject", middleware.TechnicianOnly(), h.Reject)
		orders.PUT("/:id/transfer", middleware.TechnicianOnly(), h.Transfer)
		orders.PUT("/:id/details", middleware.TechnicianOnly(), h.UpdateDetails)
		orders.PUT("/:id/status", h.UpdateStatus)
		orders.POST("/:id/logs", h.AddLog)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if details := pkgvalidator.Details(err); details != nil {
			response.ErrorWithDetails(c, http.StatusBadRequest, "Validation failed", details)
			return
		}
		response.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	o, err := h.svc.Create(c.Request.Context(), actorID(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Order created successfully", o)
}

func (h *Handler) List(c *gin.Context) {
	q := ListQuery{
		Status: c.Query("status"),
		Search: c.Query("search"),
		View:   c.Query("view"),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 10),
	}

	items, total, err := h.svc.List(c.Request.Context(), actorID(c), actorRole(c), q)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Paginated(c, http.StatusOK, "Orders retrieved successfully", items, q.Page, q.Limit, total)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	detail, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Order retrieved successfully", detail)
}

func (h *Handler) Assign(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Technician ID is required")
		return
	}

	o, err := h.svc.Assign(c.Request.Context(), actorID(c), id, req.TechnicianID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Order assigned successfully", o)
}

func (h *Handler) Claim(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	o, err := h.svc.Claim(c.Request.Context(), actorID(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Order claimed successfully", o)
}

func (h *Handler) Accept(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	o, err := h.svc.Accept(c.Request.Context(), actorID(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Order accepted successfully", o)
}

func (h *Handler) Reject(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	o, err := h.svc.Reject(c.Request.Context(), actorID(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Order rejected successfully", o)
}

func (h *Handler) Transfer(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	o, err := h.svc.Transfer(c.Request.Context(), actorID(c), id, req.NewTechnicianID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Order transferred successfully", o)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Status is required")
		return
	}

	o, err := h.svc.UpdateStatus(c.Request.Context(), actorID(c), actorRole(c), id, domain.OrderStatus(req.Status))
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Order status updated successfully", o)
}

func (h *Handler) UpdateDetails(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	var req UpdateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	o, err := h.svc.UpdateDetails(c.Request.Context(), actorID(c), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Order details updated successfully", o)
}

func (h *Handler) AddLog(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	var req AddLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Notes are required")
		return
	}

	l, err := h.svc.AddLog(c.Request.Context(), actorID(c), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Order log added successfully", l)
}

var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Feed upgrades to a websocket and streams order events until the client
// disconnects. Auth ran in the middleware chain before the upgrade.
func (h *Handler) Feed(c *gin.Context) {
	userID := actorID(c)
	role := actorRole(c)

	conn, err := feedUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	h.hub.Register(userID, role, conn)
	defer h.hub.Unregister(userID, conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "Order not found")
	case errors.Is(err, ErrServiceNotFound):
		response.Error(c, http.StatusNotFound, "Service not found or inactive")
	case errors.Is(err, ErrTechnicianNotFound):
		response.Error(c, http.StatusNotFound, "Technician not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "Insufficient permissions for this operation")
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, "Order was updated by someone else, please refresh")
	default:
		response.Error(c, http.StatusInternalServerError, "Internal server error")
	}
}

func orderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "Invalid order ID")
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
