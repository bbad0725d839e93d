package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shareit-platform/service-booking/internal/application"
	"github.com/shareit-platform/service-booking/pkg/middleware"
	"github.com/shareit-platform/service-booking/pkg/response"
)

// RequestHandler handles HTTP requests for item requests.
type RequestHandler struct {
	service *application.RequestService
}

// NewRequestHandler creates a new RequestHandler.
func NewRequestHandler(service *application.RequestService) *RequestHandler {
	return &RequestHandler{service: service}
}

// RegisterRoutes registers all item request routes.
func (h *RequestHandler) RegisterRoutes(r *gin.RouterGroup) {
	requests := r.Group("/requests")
	requests.Use(middleware.Identity())
	{
		requests.POST("", h.AddRequest)
		requests.GET("", h.ListOwnRequests)
		requests.GET("/all", h.ListOtherRequests)
		requests.GET("/:id", h.GetRequest)
	}
}

// AddRequest handles POST /requests.
func (h *RequestHandler) AddRequest(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req application.NewItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.AddRequest(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListOwnRequests handles GET /requests.
func (h *RequestHandler) ListOwnRequests(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	result, err := h.service.ListOwnRequests(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListOtherRequests handles GET /requests/all.
func (h *RequestHandler) ListOtherRequests(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	result, err := h.service.ListOtherRequests(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetRequest handles GET /requests/:id.
func (h *RequestHandler) GetRequest(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid request ID")
		return
	}

	result, err := h.service.GetRequest(c.Request.Context(), requestID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
