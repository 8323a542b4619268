package handler

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	treasuryapp "github.com/opsdesk/backend/internal/application/treasury"
	"github.com/opsdesk/backend/internal/domain/treasury"
	"github.com/opsdesk/backend/internal/interfaces/http/middleware"
)

// evidenceURLExpiration is how long signed evidence download links stay
// valid
const evidenceURLExpiration = 15 * time.Minute

// MovementManager records, approves and removes manual cash movements
type MovementManager interface {
	Record(ctx context.Context, req treasuryapp.RecordMovementRequest, registeredBy uuid.UUID) (*treasury.Movement, error)
	Get(ctx context.Context, id uuid.UUID) (*treasury.Movement, error)
	Approve(ctx context.Context, id uuid.UUID, approver uuid.UUID) (*treasury.Movement, error)
	Delete(ctx context.Context, id uuid.UUID, deletedBy uuid.UUID) error
}

// EvidenceURLSigner issues short-lived download links for stored evidence
type EvidenceURLSigner interface {
	DownloadURL(ctx context.Context, ref string, expiresIn time.Duration) (string, time.Time, error)
}

// MovementHandler serves manual cash movement operations
type MovementHandler struct {
	BaseHandler
	movements MovementManager
	signer    EvidenceURLSigner
}

// NewMovementHandler creates a new MovementHandler. signer may be nil when
// no evidence store is configured.
func NewMovementHandler(movements MovementManager, signer EvidenceURLSigner) *MovementHandler {
	return &MovementHandler{movements: movements, signer: signer}
}

// Record handles POST /movements. JSON bodies carry the movement alone;
// multipart bodies additionally carry an evidence file.
func (h *MovementHandler) Record(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req treasuryapp.RecordMovementRequest
	if isMultipart(c) {
		parsed, ok := h.bindMovementForm(c)
		if !ok {
			return
		}
		req = parsed
	} else if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	movement, err := h.movements.Record(c.Request.Context(), req, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toMovementResponse(movement))
}

// Get handles GET /movements/:id
func (h *MovementHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid movement id")
		return
	}

	movement, err := h.movements.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toMovementResponse(movement))
}

// Approve handles POST /movements/:id/approve
func (h *MovementHandler) Approve(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid movement id")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	movement, err := h.movements.Approve(c.Request.Context(), id, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toMovementResponse(movement))
}

// Delete handles DELETE /movements/:id
func (h *MovementHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid movement id")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.movements.Delete(c.Request.Context(), id, userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// EvidenceURL handles GET /movements/:id/evidence. It returns a signed
// download link instead of streaming the blob.
func (h *MovementHandler) EvidenceURL(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid movement id")
		return
	}

	movement, err := h.movements.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if movement.EvidenceRef == "" {
		h.NotFound(c, "Movement has no evidence attached")
		return
	}
	if h.signer == nil {
		h.NotFound(c, "Evidence storage is not configured")
		return
	}

	url, expiresAt, err := h.signer.DownloadURL(c.Request.Context(), movement.EvidenceRef, evidenceURLExpiration)
	if err != nil {
		h.InternalError(c, "Failed to sign evidence URL")
		return
	}

	h.Success(c, gin.H{"url": url, "expires_at": expiresAt})
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// bindMovementForm parses a multipart movement submission with its
// optional evidence file
func (h *MovementHandler) bindMovementForm(c *gin.Context) (treasuryapp.RecordMovementRequest, bool) {
	var req treasuryapp.RecordMovementRequest

	amount, err := strconv.ParseFloat(c.PostForm("amount"), 64)
	if err != nil || amount <= 0 {
		h.BadRequest(c, "amount must be a positive number")
		return req, false
	}

	req.Type = treasury.MovementType(c.PostForm("type"))
	req.Amount = amount
	req.ReasonCode = c.PostForm("reason_code")
	if req.ReasonCode == "" {
		h.BadRequest(c, "reason_code is required")
		return req, false
	}

	if raw := c.PostForm("linked_order_id"); raw != "" {
		orderID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid linked_order_id")
			return req, false
		}
		req.LinkedOrderID = &orderID
	}

	evidence, contentType, err := readEvidenceFile(c)
	if err != nil {
		h.BadRequest(c, "Invalid evidence file")
		return req, false
	}
	req.Evidence = evidence
	req.EvidenceType = contentType

	return req, true
}
