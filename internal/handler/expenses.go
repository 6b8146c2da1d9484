package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tillpos/internal/apierror"
	"tillpos/internal/dto"
	"tillpos/internal/service"
)

type ExpenseHandler struct{ svc service.ExpenseService }

func NewExpenseHandler(svc service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{svc: svc}
}

// Create godoc
// @Summary Record a cash outflow against the open session
// @Tags expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateExpenseRequest true "Expense"
// @Success 201 {object} dto.ExpenseResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req dto.CreateExpenseRequest
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

// List returns the paginated expense ledger across sessions, newest first.
func (h *ExpenseHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	resp, err := h.svc.List(c.Request.Context(), page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}

// ListCurrent returns the expenses of the open session, oldest first.
// An empty list is returned when no session is open.
func (h *ExpenseHandler) ListCurrent(c *gin.Context) {
	resp, err := h.svc.ListCurrentSession(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}

// ListBySession returns all expenses recorded during one session.
func (h *ExpenseHandler) ListBySession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid session id"))
		return
	}
	resp, err := h.svc.ListBySession(c.Request.Context(), sessionID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}

// Delete godoc
// @Summary Remove a mistakenly recorded expense
// @Tags expenses
// @Security BearerAuth
// @Param id path int true "Expense id"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Router /v1/expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid expense id"))
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
