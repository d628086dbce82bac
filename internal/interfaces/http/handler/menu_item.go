package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/restaurant/backend/internal/application/catalog"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/interfaces/http/dto"
)

// MenuItemService is the catalog surface MenuItemHandler depends on
type MenuItemService interface {
	Create(ctx context.Context, req catalogapp.MenuItemRequest) (*catalogapp.MenuItemResponse, error)
	Update(ctx context.Context, id uuid.UUID, req catalogapp.MenuItemRequest) (*catalogapp.MenuItemResponse, error)
	Delete(ctx context.Context, id uuid.UUID) (*catalogapp.DeleteMenuItemResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*catalogapp.MenuItemResponse, error)
	List(ctx context.Context) ([]catalogapp.MenuItemResponse, error)
	ListPage(ctx context.Context, filter shared.Filter) (*shared.Paginated[catalogapp.MenuItemResponse], error)
	ImageUploadURL(ctx context.Context, req catalogapp.ImageUploadRequest) (*catalogapp.ImageUploadResponse, error)
}

// MenuItemHandler handles menu item endpoints
type MenuItemHandler struct {
	BaseHandler
	service MenuItemService
}

// NewMenuItemHandler creates a new MenuItemHandler
func NewMenuItemHandler(service MenuItemService) *MenuItemHandler {
	return &MenuItemHandler{service: service}
}

// List godoc
//
//	@ID				listMenuItems
//	@Summary		List menu items
//	@Description	Returns every menu item, enabled or disabled
//	@Tags			menuitem
//	@Produce		json
//	@Success		200	{array}		catalogapp.MenuItemResponse
//	@Failure		500	{object}	dto.ErrorResponse
//	@Router			/menuitem [get]
func (h *MenuItemHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// GetByID godoc
//
//	@ID				getMenuItem
//	@Summary		Get a menu item
//	@Tags			menuitem
//	@Produce		json
//	@Param			id	path		string	true	"Menu item ID"	format(uuid)
//	@Success		200	{object}	catalogapp.MenuItemResponse
//	@Failure		400	{object}	dto.ErrorResponse
//	@Failure		404	{object}	dto.ErrorResponse
//	@Router			/menuitem/{id} [get]
func (h *MenuItemHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id", "menu item")
	if !ok {
		return
	}
	item, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// ListPage godoc
//
//	@ID				listMenuItemPage
//	@Summary		Page through menu items
//	@Description	Searches id, name and description. Sortable by name, price, inStock, createdAt, updatedAt.
//	@Tags			menuitem
//	@Produce		json
//	@Param			pageNum		path		int		true	"1-based page number"	minimum(1)
//	@Param			size		query		int		false	"Page size"				default(10)	maximum(100)
//	@Param			sortBy		query		string	false	"Sort field"			default(created_at)
//	@Param			sortDir		query		string	false	"asc or desc"			default(asc)
//	@Param			searchKey	query		string	false	"Substring search"
//	@Success		200			{object}	dto.PageResponse[catalogapp.MenuItemResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Router			/menuitem/page/{pageNum} [get]
func (h *MenuItemHandler) ListPage(c *gin.Context) {
	filter, ok := h.parsePage(c)
	if !ok {
		return
	}
	page, err := h.service.ListPage(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewPageResponse(page))
}

// Create godoc
//
//	@ID				createMenuItem
//	@Summary		Create a menu item
//	@Description	Names are unique across the catalog. At most 5 additional details with distinct names.
//	@Tags			menuitem
//	@Accept			json
//	@Produce		json
//	@Param			request	body		catalogapp.MenuItemRequest	true	"Menu item"
//	@Success		201		{object}	catalogapp.MenuItemResponse
//	@Failure		400		{object}	dto.ErrorResponse
//	@Router			/menuitem [post]
func (h *MenuItemHandler) Create(c *gin.Context) {
	var req catalogapp.MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}
	item, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// Update godoc
//
//	@ID				updateMenuItem
//	@Summary		Update a menu item
//	@Description	Rejected while the item is on an unpaid bill. Details with an id are updated, without one are added, and omitted ones are removed.
//	@Tags			menuitem
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Menu item ID"	format(uuid)
//	@Param			request	body		catalogapp.MenuItemRequest	true	"Menu item"
//	@Success		200		{object}	catalogapp.MenuItemResponse
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		404		{object}	dto.ErrorResponse
//	@Failure		409		{object}	dto.ErrorResponse
//	@Router			/menuitem/{id} [put]
func (h *MenuItemHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id", "menu item")
	if !ok {
		return
	}
	var req catalogapp.MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}
	item, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Delete godoc
//
//	@ID				deleteMenuItem
//	@Summary		Delete a menu item
//	@Description	Items without bill history are removed. Items that appear on paid bills are disabled instead.
//	@Tags			menuitem
//	@Produce		json
//	@Param			id	path		string	true	"Menu item ID"	format(uuid)
//	@Success		200	{object}	catalogapp.DeleteMenuItemResponse
//	@Failure		400	{object}	dto.ErrorResponse
//	@Failure		404	{object}	dto.ErrorResponse
//	@Router			/menuitem/{id} [delete]
func (h *MenuItemHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id", "menu item")
	if !ok {
		return
	}
	result, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ImageUploadURL godoc
//
//	@ID				createMenuItemImageUploadURL
//	@Summary		Get a presigned image upload URL
//	@Description	The returned imageUrl goes into the image field of a menu item once the upload has finished.
//	@Tags			menuitem
//	@Accept			json
//	@Produce		json
//	@Param			request	body		catalogapp.ImageUploadRequest	true	"Image to upload"
//	@Success		200		{object}	catalogapp.ImageUploadResponse
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		503		{object}	dto.ErrorResponse
//	@Router			/menuitem/image-upload-url [post]
func (h *MenuItemHandler) ImageUploadURL(c *gin.Context) {
	var req catalogapp.ImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}
	upload, err := h.service.ImageUploadURL(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, upload)
}
