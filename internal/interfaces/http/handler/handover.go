package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/opsdesk/backend/internal/domain/treasury"
	"github.com/opsdesk/backend/internal/interfaces/http/dto"
)

// HandoverReader loads handovers with their member events
type HandoverReader interface {
	GetHandover(ctx context.Context, id uuid.UUID) (*treasury.Handover, []treasury.CashEvent, error)
	VirtualWarehouseHandovers(ctx context.Context, from, to *time.Time) ([]treasury.VirtualHandover, error)
}

// HandoverCloser closes a handover after review
type HandoverCloser interface {
	Close(ctx context.Context, id uuid.UUID, approver uuid.UUID) (*treasury.Handover, error)
}

// HandoverHandler serves custodian handovers and the computed warehouse
// groupings
type HandoverHandler struct {
	BaseHandler
	reader HandoverReader
	closer HandoverCloser
}

// NewHandoverHandler creates a new HandoverHandler
func NewHandoverHandler(reader HandoverReader, closer HandoverCloser) *HandoverHandler {
	return &HandoverHandler{reader: reader, closer: closer}
}

// Get handles GET /handovers/:id
func (h *HandoverHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid handover id")
		return
	}

	handover, members, err := h.reader.GetHandover(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toHandoverResponse(handover, members))
}

// Close handles POST /handovers/:id/close
func (h *HandoverHandler) Close(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid handover id")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	handover, err := h.closer.Close(c.Request.Context(), id, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toHandoverResponse(handover, nil))
}

// VirtualWarehouse handles GET /handovers/virtual-warehouse
func (h *HandoverHandler) VirtualWarehouse(c *gin.Context) {
	var rangeReq dto.DateRangeRequest
	if err := c.ShouldBindQuery(&rangeReq); err != nil {
		h.BadRequest(c, "Invalid date range, expected YYYY-MM-DD")
		return
	}

	items, err := h.reader.VirtualWarehouseHandovers(c.Request.Context(), rangeReq.From, rangeReq.To)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toVirtualHandoverResponses(items))
}
