package handler

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	treasuryapp "github.com/opsdesk/backend/internal/application/treasury"
	"github.com/opsdesk/backend/internal/domain/treasury"
	"github.com/opsdesk/backend/internal/interfaces/http/middleware"
)

// DepositManager registers bank deposits and tracks their external closure
type DepositManager interface {
	Create(ctx context.Context, req treasuryapp.CreateDepositRequest, depositedBy uuid.UUID) (*treasury.Deposit, error)
	GetDeposit(ctx context.Context, id uuid.UUID) (*treasury.Deposit, error)
	Candidates(ctx context.Context) ([]treasury.DepositCandidate, error)
	SetExternalClosure(ctx context.Context, id uuid.UUID, closed bool, actor uuid.UUID) (*treasury.Deposit, error)
}

// DepositHandler serves bank deposit operations
type DepositHandler struct {
	BaseHandler
	deposits DepositManager
}

// NewDepositHandler creates a new DepositHandler
func NewDepositHandler(deposits DepositManager) *DepositHandler {
	return &DepositHandler{deposits: deposits}
}

// ExternalClosureRequest toggles the external-system closure flag
type ExternalClosureRequest struct {
	Closed *bool `json:"closed" binding:"required"`
}

// Create handles POST /deposits. JSON bodies carry the deposit alone;
// multipart bodies additionally carry the consignment receipt as an
// evidence file.
func (h *DepositHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req treasuryapp.CreateDepositRequest
	if isMultipart(c) {
		parsed, ok := h.bindDepositForm(c)
		if !ok {
			return
		}
		req = parsed
	} else if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	deposit, err := h.deposits.Create(c.Request.Context(), req, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toDepositResponse(deposit))
}

// Get handles GET /deposits/:id
func (h *DepositHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid deposit id")
		return
	}

	deposit, err := h.deposits.GetDeposit(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toDepositResponse(deposit))
}

// Candidates handles GET /deposits/candidates
func (h *DepositHandler) Candidates(c *gin.Context) {
	candidates, err := h.deposits.Candidates(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, candidates)
}

// SetExternalClosure handles PUT /deposits/:id/external-closure
func (h *DepositHandler) SetExternalClosure(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid deposit id")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req ExternalClosureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	deposit, err := h.deposits.SetExternalClosure(c.Request.Context(), id, *req.Closed, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toDepositResponse(deposit))
}

// bindDepositForm parses a multipart deposit submission. Details arrive as
// a JSON array in the "details" field.
func (h *DepositHandler) bindDepositForm(c *gin.Context) (treasuryapp.CreateDepositRequest, bool) {
	var req treasuryapp.CreateDepositRequest

	amount, err := strconv.ParseFloat(c.PostForm("amount"), 64)
	if err != nil || amount <= 0 {
		h.BadRequest(c, "amount must be a positive number")
		return req, false
	}
	req.Amount = amount

	req.BankName = c.PostForm("bank_name")
	req.ReferenceNumber = c.PostForm("reference_number")
	if req.BankName == "" || req.ReferenceNumber == "" {
		h.BadRequest(c, "bank_name and reference_number are required")
		return req, false
	}

	if raw := c.PostForm("details"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Details); err != nil {
			h.BadRequest(c, "Invalid details, expected a JSON array of order assignments")
			return req, false
		}
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
