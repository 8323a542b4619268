package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	treasuryapp "github.com/opsdesk/backend/internal/application/treasury"
	"github.com/opsdesk/backend/internal/domain/treasury"
	"github.com/opsdesk/backend/internal/interfaces/http/dto"
	"github.com/opsdesk/backend/internal/interfaces/http/middleware"
)

// EventAggregator lists pending cash events across all sources
type EventAggregator interface {
	PendingEvents(ctx context.Context, filter treasury.EventFilter) ([]treasury.CashEvent, error)
}

// EventAcceptor transitions a pending cash event to collected
type EventAcceptor interface {
	Accept(ctx context.Context, ref string, acceptingUser uuid.UUID) (*treasuryapp.AcceptResult, error)
}

// CashEventHandler serves the acceptance queue
type CashEventHandler struct {
	BaseHandler
	aggregator EventAggregator
	acceptor   EventAcceptor
}

// NewCashEventHandler creates a new CashEventHandler
func NewCashEventHandler(aggregator EventAggregator, acceptor EventAcceptor) *CashEventHandler {
	return &CashEventHandler{aggregator: aggregator, acceptor: acceptor}
}

// AcceptEventRequest identifies the cash event to accept
type AcceptEventRequest struct {
	Ref string `json:"ref" binding:"required"`
}

// Pending handles GET /cash-events/pending
func (h *CashEventHandler) Pending(c *gin.Context) {
	var rangeReq dto.DateRangeRequest
	if err := c.ShouldBindQuery(&rangeReq); err != nil {
		h.BadRequest(c, "Invalid date range, expected YYYY-MM-DD")
		return
	}

	filter := treasury.EventFilter{From: rangeReq.From, To: rangeReq.To}
	if raw := c.Query("custodian_id"); raw != "" {
		custodianID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid custodian_id")
			return
		}
		filter.CustodianID = &custodianID
	}

	events, err := h.aggregator.PendingEvents(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCashEventResponses(events))
}

// Accept handles POST /cash-events/accept
func (h *CashEventHandler) Accept(c *gin.Context) {
	var req AcceptEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	result, err := h.acceptor.Accept(c.Request.Context(), req.Ref, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
