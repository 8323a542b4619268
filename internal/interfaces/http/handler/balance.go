package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opsdesk/backend/internal/domain/treasury"
	"github.com/opsdesk/backend/internal/interfaces/http/dto"
)

// BalanceReader computes the cash position from the ledger
type BalanceReader interface {
	Statement(ctx context.Context, from, to *time.Time) (*treasury.BalanceStatement, error)
}

// BalanceHandler serves the derived cash balance
type BalanceHandler struct {
	BaseHandler
	balance BalanceReader
}

// NewBalanceHandler creates a new BalanceHandler
func NewBalanceHandler(balance BalanceReader) *BalanceHandler {
	return &BalanceHandler{balance: balance}
}

// Statement handles GET /balance
func (h *BalanceHandler) Statement(c *gin.Context) {
	var rangeReq dto.DateRangeRequest
	if err := c.ShouldBindQuery(&rangeReq); err != nil {
		h.BadRequest(c, "Invalid date range, expected YYYY-MM-DD")
		return
	}

	statement, err := h.balance.Statement(c.Request.Context(), rangeReq.From, rangeReq.To)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, statement)
}
