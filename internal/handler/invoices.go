package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tillpos/internal/apierror"
	"tillpos/internal/dto"
	"tillpos/internal/service"
)

type InvoiceHandler struct {
	invoices  service.InvoiceService
	navigator service.NavigatorService
}

func NewInvoiceHandler(invoices service.InvoiceService, navigator service.NavigatorService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, navigator: navigator}
}

// Create godoc
// @Summary Record an invoice and mutate stock atomically
// @Tags invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateInvoiceRequest true "Invoice lines"
// @Success 201 {object} dto.InvoiceResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.invoices.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, resp)
}

// Get returns a single invoice with its lines.
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid invoice id"))
		return
	}
	resp, err := h.invoices.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}

// Reclassify godoc
// @Summary Correct an invoice's payment classification label
// @Tags invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Invoice id"
// @Param body body dto.ReclassifyRequest true "New payment type"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/invoices/{id}/payment-type [patch]
func (h *InvoiceHandler) Reclassify(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid invoice id"))
		return
	}
	var req dto.ReclassifyRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.invoices.Reclassify(c.Request.Context(), id, req.PaymentType); err != nil {
		fail(c, err)
		return
	}
	resp, err := h.invoices.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}

// Before godoc
// @Summary Previous invoice relative to the cursor
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param cursor query int false "Invoice id to step back from; omit for the latest"
// @Param from query string false "Inclusive lower day bound (YYYY-MM-DD)"
// @Param to query string false "Inclusive upper day bound (YYYY-MM-DD)"
// @Param payment_type query string false "paid | deferred | return"
// @Param scope query string false "all | session"
// @Success 200 {object} dto.NavigationResponse
// @Router /v1/invoices/before [get]
func (h *InvoiceHandler) Before(c *gin.Context) {
	cursor, filter, valid := h.bindNavigation(c)
	if !valid {
		return
	}
	resp, err := h.navigator.Before(c.Request.Context(), cursor, filter)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}

// After godoc
// @Summary Next invoice relative to the cursor
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param cursor query int false "Invoice id to step forward from; omit for the earliest"
// @Success 200 {object} dto.NavigationResponse
// @Router /v1/invoices/after [get]
func (h *InvoiceHandler) After(c *gin.Context) {
	cursor, filter, valid := h.bindNavigation(c)
	if !valid {
		return
	}
	resp, err := h.navigator.After(c.Request.Context(), cursor, filter)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}

func (h *InvoiceHandler) bindNavigation(c *gin.Context) (*uint64, dto.InvoiceFilter, bool) {
	var filter dto.InvoiceFilter
	if !bindQueryAndValidate(c, &filter) {
		return nil, filter, false
	}

	var cursor *uint64
	if raw := c.Query("cursor"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid cursor"))
			return nil, filter, false
		}
		cursor = &id
	}
	return cursor, filter, true
}
