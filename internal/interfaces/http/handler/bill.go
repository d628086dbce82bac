package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	billingapp "github.com/restaurant/backend/internal/application/billing"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/interfaces/http/dto"
)

// BillService is the billing surface BillHandler depends on
type BillService interface {
	Create(ctx context.Context, reqs []billingapp.OrderItemRequest) (*billingapp.BillResponse, error)
	AddLines(ctx context.Context, billID uuid.UUID, reqs []billingapp.OrderItemRequest) (*billingapp.BillResponse, error)
	RemoveLines(ctx context.Context, billID uuid.UUID, reqs []billingapp.OrderItemRequest) (*billingapp.RemoveOrderResponse, error)
	Pay(ctx context.Context, billID uuid.UUID) (*billingapp.BillResponse, error)
	Delete(ctx context.Context, billID uuid.UUID) error
	GetByID(ctx context.Context, billID uuid.UUID) (*billingapp.BillResponse, error)
	List(ctx context.Context) ([]billingapp.BillResponse, error)
	ListPage(ctx context.Context, filter shared.Filter) (*shared.Paginated[billingapp.BillResponse], error)
}

// BillHandler handles bill endpoints
type BillHandler struct {
	BaseHandler
	service BillService
}

// NewBillHandler creates a new BillHandler
func NewBillHandler(service BillService) *BillHandler {
	return &BillHandler{service: service}
}

// List godoc
//
//	@ID			listBills
//	@Summary	List bills
//	@Tags		bill
//	@Produce	json
//	@Success	200	{array}		billingapp.BillResponse
//	@Failure	500	{object}	dto.ErrorResponse
//	@Router		/bill [get]
func (h *BillHandler) List(c *gin.Context) {
	bills, err := h.service.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bills)
}

// GetByID godoc
//
//	@ID			getBill
//	@Summary	Get a bill
//	@Tags		bill
//	@Produce	json
//	@Param		id	path		string	true	"Bill ID"	format(uuid)
//	@Success	200	{object}	billingapp.BillResponse
//	@Failure	400	{object}	dto.ErrorResponse
//	@Failure	404	{object}	dto.ErrorResponse
//	@Router		/bill/{id} [get]
func (h *BillHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id", "bill")
	if !ok {
		return
	}
	bill, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bill)
}

// ListPage godoc
//
//	@ID				listBillPage
//	@Summary		Page through bills
//	@Description	searchKey matches the name or description of any menu item on the bill. Sortable by createdAt, updatedAt, paid, totalPrice.
//	@Tags			bill
//	@Produce		json
//	@Param			pageNum		path		int		true	"1-based page number"	minimum(1)
//	@Param			size		query		int		false	"Page size"				default(10)	maximum(100)
//	@Param			sortBy		query		string	false	"Sort field"			default(created_at)
//	@Param			sortDir		query		string	false	"asc or desc"			default(asc)
//	@Param			searchKey	query		string	false	"Menu item search"
//	@Success		200			{object}	dto.PageResponse[billingapp.BillResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Router			/bill/page/{pageNum} [get]
func (h *BillHandler) ListPage(c *gin.Context) {
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
//	@ID				createBill
//	@Summary		Open a bill
//	@Description	Stock is checked for every line but only taken on payment. Repeated menu items are merged.
//	@Tags			bill
//	@Accept			json
//	@Produce		json
//	@Param			request	body		[]billingapp.OrderItemRequest	true	"Order lines"
//	@Success		201		{object}	billingapp.BillResponse
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		404		{object}	dto.ErrorResponse
//	@Router			/bill [post]
func (h *BillHandler) Create(c *gin.Context) {
	reqs, ok := h.bindLines(c)
	if !ok {
		return
	}
	bill, err := h.service.Create(c.Request.Context(), reqs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, bill)
}

// Delete godoc
//
//	@ID				deleteBill
//	@Summary		Delete a bill
//	@Description	Only unpaid bills at least 14 days old can be deleted.
//	@Tags			bill
//	@Param			id	path	string	true	"Bill ID"	format(uuid)
//	@Success		200
//	@Failure		400	{object}	dto.ErrorResponse
//	@Failure		404	{object}	dto.ErrorResponse
//	@Router			/bill/{id} [delete]
func (h *BillHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id", "bill")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Pay godoc
//
//	@ID				payBill
//	@Summary		Pay a bill
//	@Description	Takes stock for every line. Fails without changes when any item is short.
//	@Tags			bill
//	@Produce		json
//	@Param			id	path		string	true	"Bill ID"	format(uuid)
//	@Success		200	{object}	billingapp.BillResponse
//	@Failure		400	{object}	dto.ErrorResponse
//	@Failure		404	{object}	dto.ErrorResponse
//	@Failure		409	{object}	dto.ErrorResponse
//	@Router			/bill/{id}/payment [put]
func (h *BillHandler) Pay(c *gin.Context) {
	id, ok := h.parseID(c, "id", "bill")
	if !ok {
		return
	}
	bill, err := h.service.Pay(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bill)
}

// AddOrder godoc
//
//	@ID			addBillOrder
//	@Summary	Add lines to an unpaid bill
//	@Tags		bill
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string							true	"Bill ID"	format(uuid)
//	@Param		request	body		[]billingapp.OrderItemRequest	true	"Order lines"
//	@Success	200		{object}	billingapp.BillResponse
//	@Failure	400		{object}	dto.ErrorResponse
//	@Failure	404		{object}	dto.ErrorResponse
//	@Router		/bill/{id}/add-order [put]
func (h *BillHandler) AddOrder(c *gin.Context) {
	id, ok := h.parseID(c, "id", "bill")
	if !ok {
		return
	}
	reqs, ok := h.bindLines(c)
	if !ok {
		return
	}
	bill, err := h.service.AddLines(c.Request.Context(), id, reqs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bill)
}

// RemoveOrder godoc
//
//	@ID				removeBillOrder
//	@Summary		Remove quantities from an unpaid bill
//	@Description	Removing at least the ordered quantity drops the line. A bill left without lines is deleted.
//	@Tags			bill
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Bill ID"	format(uuid)
//	@Param			request	body		[]billingapp.OrderItemRequest	true	"Lines to remove"
//	@Success		200		{object}	billingapp.RemoveOrderResponse
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		404		{object}	dto.ErrorResponse
//	@Router			/bill/{id}/remove-order [delete]
func (h *BillHandler) RemoveOrder(c *gin.Context) {
	id, ok := h.parseID(c, "id", "bill")
	if !ok {
		return
	}
	reqs, ok := h.bindLines(c)
	if !ok {
		return
	}
	result, err := h.service.RemoveLines(c.Request.Context(), id, reqs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// bindLines binds a JSON list of order lines. An empty list is passed through
// so the service can report the operation-specific error.
func (h *BillHandler) bindLines(c *gin.Context) ([]billingapp.OrderItemRequest, bool) {
	var reqs []billingapp.OrderItemRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		h.HandleBindError(c, err)
		return nil, false
	}
	return reqs, true
}
