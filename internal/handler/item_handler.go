package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shareit-platform/service-booking/internal/application"
	"github.com/shareit-platform/service-booking/pkg/middleware"
	"github.com/shareit-platform/service-booking/pkg/response"
)

// ItemHandler handles HTTP requests for items and their comments.
type ItemHandler struct {
	items    *application.ItemService
	comments *application.CommentService
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(items *application.ItemService, comments *application.CommentService) *ItemHandler {
	return &ItemHandler{items: items, comments: comments}
}

// RegisterRoutes registers all item routes.
func (h *ItemHandler) RegisterRoutes(r *gin.RouterGroup) {
	items := r.Group("/items")
	items.Use(middleware.Identity())
	{
		items.POST("", h.CreateItem)
		items.GET("", h.ListItems)
		items.GET("/search", h.SearchItems)
		items.GET("/:id", h.GetItem)
		items.PATCH("/:id", h.UpdateItem)
		items.POST("/:id/comment", h.AddComment)
	}
}

// CreateItem handles POST /items.
func (h *ItemHandler) CreateItem(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req application.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.items.CreateItem(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateItem handles PATCH /items/:id.
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid item ID")
		return
	}

	var req application.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.items.UpdateItem(c.Request.Context(), userID, itemID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetItem handles GET /items/:id.
func (h *ItemHandler) GetItem(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid item ID")
		return
	}

	result, err := h.items.GetItem(c.Request.Context(), userID, itemID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListItems handles GET /items (the caller's own items).
func (h *ItemHandler) ListItems(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	result, err := h.items.ListOwnerItems(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SearchItems handles GET /items/search?text=.
func (h *ItemHandler) SearchItems(c *gin.Context) {
	result, err := h.items.SearchItems(c.Request.Context(), c.Query("text"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// AddComment handles POST /items/:id/comment.
func (h *ItemHandler) AddComment(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid item ID")
		return
	}

	var req application.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.comments.AddComment(c.Request.Context(), userID, itemID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}
