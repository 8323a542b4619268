package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/opsdesk/backend/internal/domain/settings"
	"github.com/opsdesk/backend/internal/domain/shared/valueobject"
	"github.com/opsdesk/backend/internal/interfaces/http/middleware"
)

// defaultAuditTrailLimit bounds the base-balance history response
const defaultAuditTrailLimit = 50

// SettingsManager reads and updates treasury configuration values
type SettingsManager interface {
	BaseBalance(ctx context.Context) (valueobject.Money, error)
	WithdrawalThreshold(ctx context.Context) (valueobject.Money, error)
	DepositTolerance(ctx context.Context) (valueobject.Money, error)
	SetBaseBalance(ctx context.Context, value decimal.Decimal, changedBy uuid.UUID) error
	SetWithdrawalThreshold(ctx context.Context, value decimal.Decimal, changedBy uuid.UUID) error
	SetDepositTolerance(ctx context.Context, value decimal.Decimal, changedBy uuid.UUID) error
	BaseBalanceAuditTrail(ctx context.Context, limit int) ([]settings.BaseBalanceAudit, error)
}

// SettingsHandler serves treasury configuration
type SettingsHandler struct {
	BaseHandler
	settings SettingsManager
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settings SettingsManager) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// TreasurySettingsResponse is the wire shape of the treasury settings
type TreasurySettingsResponse struct {
	BaseBalance         string `json:"base_balance"`
	WithdrawalThreshold string `json:"withdrawal_approval_threshold"`
	DepositTolerance    string `json:"deposit_tolerance"`
}

// UpdateSettingsRequest carries the values to change. Omitted fields stay
// untouched.
type UpdateSettingsRequest struct {
	BaseBalance         *float64 `json:"base_balance,omitempty"`
	WithdrawalThreshold *float64 `json:"withdrawal_approval_threshold,omitempty"`
	DepositTolerance    *float64 `json:"deposit_tolerance,omitempty"`
}

// BaseBalanceAuditResponse is one entry of the base-balance change history
type BaseBalanceAuditResponse struct {
	ID            uuid.UUID `json:"id"`
	PreviousValue string    `json:"previous_value"`
	NewValue      string    `json:"new_value"`
	ChangedBy     uuid.UUID `json:"changed_by"`
	ChangedAt     time.Time `json:"changed_at"`
}

// Get handles GET /settings/treasury
func (h *SettingsHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	base, err := h.settings.BaseBalance(ctx)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	threshold, err := h.settings.WithdrawalThreshold(ctx)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	tolerance, err := h.settings.DepositTolerance(ctx)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, TreasurySettingsResponse{
		BaseBalance:         base.String(),
		WithdrawalThreshold: threshold.String(),
		DepositTolerance:    tolerance.String(),
	})
}

// Update handles PUT /settings/treasury
func (h *SettingsHandler) Update(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if req.BaseBalance == nil && req.WithdrawalThreshold == nil && req.DepositTolerance == nil {
		h.BadRequest(c, "At least one setting value is required")
		return
	}

	ctx := c.Request.Context()
	if req.BaseBalance != nil {
		if err := h.settings.SetBaseBalance(ctx, decimal.NewFromFloat(*req.BaseBalance), userID); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	if req.WithdrawalThreshold != nil {
		if err := h.settings.SetWithdrawalThreshold(ctx, decimal.NewFromFloat(*req.WithdrawalThreshold), userID); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	if req.DepositTolerance != nil {
		if err := h.settings.SetDepositTolerance(ctx, decimal.NewFromFloat(*req.DepositTolerance), userID); err != nil {
			h.HandleError(c, err)
			return
		}
	}

	h.Get(c)
}

// BaseBalanceAuditTrail handles GET /settings/treasury/base-balance/audit
func (h *SettingsHandler) BaseBalanceAuditTrail(c *gin.Context) {
	limit := defaultAuditTrailLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	trail, err := h.settings.BaseBalanceAuditTrail(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]BaseBalanceAuditResponse, len(trail))
	for i, entry := range trail {
		out[i] = BaseBalanceAuditResponse{
			ID:            entry.ID,
			PreviousValue: entry.PreviousValue.String(),
			NewValue:      entry.NewValue.String(),
			ChangedBy:     entry.ChangedBy,
			ChangedAt:     entry.ChangedAt,
		}
	}

	h.Success(c, out)
}
