package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tillpos/internal/apierror"
	"tillpos/internal/dto"
	"tillpos/internal/middleware"
	"tillpos/internal/service"
)

type SessionHandler struct{ svc service.SessionService }

func NewSessionHandler(svc service.SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// Open godoc
// @Summary Open a new working session
// @Tags session
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.OpenSessionRequest true "Opening float"
// @Success 201 {object} dto.SessionResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/session/open [post]
func (h *SessionHandler) Open(c *gin.Context) {
	var req dto.OpenSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid user id"))
		return
	}

	resp, err := h.svc.Open(c.Request.Context(), userID, req.OpeningFloat)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, resp)
}

// Close godoc
// @Summary Close the open session with a counted drawer amount
// @Tags session
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CloseSessionRequest true "Counted closing amount"
// @Success 200 {object} dto.SessionResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/session/close [post]
func (h *SessionHandler) Close(c *gin.Context) {
	var req dto.CloseSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Close(c.Request.Context(), req.ClosingAmount)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}

// Current godoc
// @Summary Current open session with its live drawer summary
// @Tags session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CurrentSessionResponse
// @Router /v1/session [get]
func (h *SessionHandler) Current(c *gin.Context) {
	resp, err := h.svc.GetOpenWithSummary(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}

// History returns a paginated list of closed sessions, newest first.
func (h *SessionHandler) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	resp, err := h.svc.History(c.Request.Context(), page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}
