package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"tillpos/internal/apierror"
	"tillpos/internal/dto"
	"tillpos/internal/repository"
	"tillpos/internal/service"
)

const priceCacheTTL = 4 * time.Hour

type ProductHandler struct {
	svc   service.ProductService
	stock service.StockService
	rdb   *redis.Client
}

func NewProductHandler(svc service.ProductService, stock service.StockService, rdb *redis.Client) *ProductHandler {
	return &ProductHandler{svc: svc, stock: stock, rdb: rdb}
}

// Create godoc
// @Summary Register a catalog product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateProductRequest true "Product"
// @Success 201 {object} dto.ProductResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, resp)
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid product id"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}

func (h *ProductHandler) List(c *gin.Context) {
	var filter dto.ProductFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid product id"))
		return
	}
	var req dto.UpdateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}

func (h *ProductHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid product id"))
		return
	}
	if err := h.svc.Deactivate(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProductHandler) Reactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid product id"))
		return
	}
	if err := h.svc.Reactivate(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AdjustStock godoc
// @Summary Apply a manual signed stock correction with an audit trail
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product id"
// @Param body body dto.AdjustStockRequest true "Signed delta and reason"
// @Success 200 {object} dto.ProductResponse
// @Router /v1/products/{id}/stock [post]
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid product id"))
		return
	}
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AdjustStock(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}

// PriceByBarcode godoc
// @Summary Price check by barcode (no authentication, no side effects)
// @Tags price
// @Produce json
// @Param barcode path string true "Barcode"
// @Success 200 {object} dto.PriceResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/price/{barcode} [get]
func (h *ProductHandler) PriceByBarcode(c *gin.Context) {
	barcode := c.Param("barcode")
	ctx := c.Request.Context()
	cacheKey := "price:" + barcode

	if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var resp dto.PriceResponse
		if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
			ok(c, http.StatusOK, resp)
			return
		}
	}

	resp, err := h.svc.PriceByBarcode(ctx, barcode)
	if err != nil {
		fail(c, err)
		return
	}

	// Populate cache best effort, ignore errors
	if b, jsonErr := json.Marshal(resp); jsonErr == nil {
		_ = h.rdb.Set(context.Background(), cacheKey, b, priceCacheTTL).Err()
	}

	ok(c, http.StatusOK, resp)
}

// ListMovements returns the paginated stock movement audit trail.
func (h *ProductHandler) ListMovements(c *gin.Context) {
	var filter repository.StockMovementFilter
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))
	filter.Type = c.Query("type")
	if raw := c.Query("product_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid product id"))
			return
		}
		filter.ProductID = &id
	}

	movements, total, err := h.stock.ListMovements(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}

	data := make([]dto.StockMovementResponse, len(movements))
	for i, m := range movements {
		data[i] = dto.StockMovementResponse{
			ID:          m.ID.String(),
			ProductID:   m.ProductID.String(),
			Type:        m.Type,
			Quantity:    m.Quantity,
			UnitPrice:   m.UnitPrice,
			StockBefore: m.StockBefore,
			StockAfter:  m.StockAfter,
			Reason:      m.Reason,
			InvoiceID:   m.InvoiceID,
			CreatedAt:   m.CreatedAt.Format(time.RFC3339),
		}
		if m.Product != nil {
			data[i].ProductName = m.Product.Name
		}
	}
	ok(c, http.StatusOK, dto.StockMovementListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	})
}
