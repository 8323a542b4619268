package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/opsdesk/backend/internal/domain/treasury"
)

// CashEventResponse is the wire shape of a cash event
type CashEventResponse struct {
	ID             uuid.UUID  `json:"id"`
	Ref            string     `json:"ref"`
	Source         string     `json:"source"`
	SourceID       uuid.UUID  `json:"source_id"`
	CustodianID    *uuid.UUID `json:"custodian_id,omitempty"`
	LinkedOrderID  *uuid.UUID `json:"linked_order_id,omitempty"`
	HandoverID     *uuid.UUID `json:"handover_id,omitempty"`
	ExpectedAmount string     `json:"expected_amount"`
	DeclaredAmount string     `json:"declared_amount"`
	Status         string     `json:"status"`
	CollectedAt    *time.Time `json:"collected_at,omitempty"`
	AcceptedBy     *uuid.UUID `json:"accepted_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func toCashEventResponse(e treasury.CashEvent) CashEventResponse {
	ref := treasury.EventRef{Source: e.Source, SourceID: e.SourceID}
	return CashEventResponse{
		ID:             e.ID,
		Ref:            ref.String(),
		Source:         e.Source.String(),
		SourceID:       e.SourceID,
		CustodianID:    e.CustodianID,
		LinkedOrderID:  e.LinkedOrderID,
		HandoverID:     e.HandoverID,
		ExpectedAmount: e.ExpectedAmount.String(),
		DeclaredAmount: e.DeclaredAmount.String(),
		Status:         e.Status.String(),
		CollectedAt:    e.CollectedAt,
		AcceptedBy:     e.AcceptedBy,
		CreatedAt:      e.CreatedAt,
	}
}

func toCashEventResponses(events []treasury.CashEvent) []CashEventResponse {
	out := make([]CashEventResponse, len(events))
	for i, e := range events {
		out[i] = toCashEventResponse(e)
	}
	return out
}

// HandoverResponse is the wire shape of a handover
type HandoverResponse struct {
	ID             uuid.UUID           `json:"id"`
	CustodianID    *uuid.UUID          `json:"custodian_id,omitempty"`
	PeriodKey      string              `json:"period_key"`
	ExpectedAmount string              `json:"expected_amount"`
	DeclaredAmount string              `json:"declared_amount"`
	Status         string              `json:"status"`
	ApprovedBy     *uuid.UUID          `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time          `json:"approved_at,omitempty"`
	Members        []CashEventResponse `json:"members,omitempty"`
}

func toHandoverResponse(h *treasury.Handover, members []treasury.CashEvent) HandoverResponse {
	resp := HandoverResponse{
		ID:             h.ID,
		CustodianID:    h.CustodianID,
		PeriodKey:      h.PeriodKey.Format("2006-01-02"),
		ExpectedAmount: h.ExpectedAmount.String(),
		DeclaredAmount: h.DeclaredAmount.String(),
		Status:         h.Status.String(),
		ApprovedBy:     h.ApprovedBy,
		ApprovedAt:     h.ApprovedAt,
	}
	if members != nil {
		resp.Members = toCashEventResponses(members)
	}
	return resp
}

// VirtualHandoverResponse is the wire shape of a computed warehouse
// handover grouping
type VirtualHandoverResponse struct {
	Class          string `json:"class"`
	PeriodKey      string `json:"period_key"`
	ExpectedAmount string `json:"expected_amount"`
	DeclaredAmount string `json:"declared_amount"`
	EventCount     int    `json:"event_count"`
	Status         string `json:"status"`
}

func toVirtualHandoverResponses(items []treasury.VirtualHandover) []VirtualHandoverResponse {
	out := make([]VirtualHandoverResponse, len(items))
	for i, v := range items {
		out[i] = VirtualHandoverResponse{
			Class:          v.Class.String(),
			PeriodKey:      v.PeriodKey.Format("2006-01-02"),
			ExpectedAmount: v.ExpectedAmount.String(),
			DeclaredAmount: v.DeclaredAmount.String(),
			EventCount:     v.EventCount,
			Status:         v.Status().String(),
		}
	}
	return out
}

// MovementResponse is the wire shape of a manual cash movement
type MovementResponse struct {
	ID             uuid.UUID  `json:"id"`
	Type           string     `json:"type"`
	Amount         string     `json:"amount"`
	ReasonCode     string     `json:"reason_code"`
	LinkedOrderID  *uuid.UUID `json:"linked_order_id,omitempty"`
	RegisteredBy   uuid.UUID  `json:"registered_by"`
	ApprovalStatus string     `json:"approval_status"`
	ApprovedBy     *uuid.UUID `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty"`
	HasEvidence    bool       `json:"has_evidence"`
	CreatedAt      time.Time  `json:"created_at"`
}

func toMovementResponse(m *treasury.Movement) MovementResponse {
	return MovementResponse{
		ID:             m.ID,
		Type:           m.Type.String(),
		Amount:         m.Amount.String(),
		ReasonCode:     m.ReasonCode,
		LinkedOrderID:  m.LinkedOrderID,
		RegisteredBy:   m.RegisteredBy,
		ApprovalStatus: m.ApprovalStatus.String(),
		ApprovedBy:     m.ApprovedBy,
		ApprovedAt:     m.ApprovedAt,
		HasEvidence:    m.EvidenceRef != "",
		CreatedAt:      m.CreatedAt,
	}
}

// DepositDetailResponse is one order assignment within a deposit
type DepositDetailResponse struct {
	ID             uuid.UUID `json:"id"`
	OrderID        uuid.UUID `json:"order_id"`
	AssignedAmount string    `json:"assigned_amount"`
}

// DepositResponse is the wire shape of a bank deposit
type DepositResponse struct {
	ID                     uuid.UUID               `json:"id"`
	Amount                 string                  `json:"amount"`
	BankName               string                  `json:"bank_name"`
	ReferenceNumber        string                  `json:"reference_number"`
	DepositedBy            uuid.UUID               `json:"deposited_by"`
	DepositedAt            time.Time               `json:"deposited_at"`
	ClosedInExternalSystem bool                    `json:"closed_in_external_system"`
	Details                []DepositDetailResponse `json:"details"`
}

func toDepositResponse(d *treasury.Deposit) DepositResponse {
	details := make([]DepositDetailResponse, len(d.Details))
	for i, detail := range d.Details {
		details[i] = DepositDetailResponse{
			ID:             detail.ID,
			OrderID:        detail.OrderID,
			AssignedAmount: detail.AssignedAmount.String(),
		}
	}
	return DepositResponse{
		ID:                     d.ID,
		Amount:                 d.Amount.String(),
		BankName:               d.BankName,
		ReferenceNumber:        d.ReferenceNumber,
		DepositedBy:            d.DepositedBy,
		DepositedAt:            d.DepositedAt,
		ClosedInExternalSystem: d.ClosedInExternalSystem,
		Details:                details,
	}
}
