package treasury

import (
	"time"

	"github.com/opsdesk/backend/internal/domain/shared/valueobject"
)

// BalanceInflows breaks down the accepted cash feeding the balance
type BalanceInflows struct {
	Messenger   valueobject.Money `json:"messenger"`
	Warehouse   valueobject.Money `json:"warehouse"`
	ExtraIncome valueobject.Money `json:"extra_income"`
}

// Total returns the sum of all inflow components
func (i BalanceInflows) Total() valueobject.Money {
	return i.Messenger.Add(i.Warehouse).Add(i.ExtraIncome)
}

// BalanceOutflows breaks down the cash leaving the custodian's float
type BalanceOutflows struct {
	Deposits    valueobject.Money `json:"deposits"`
	Withdrawals valueobject.Money `json:"withdrawals"`
}

// Total returns the sum of all outflow components
func (o BalanceOutflows) Total() valueobject.Money {
	return o.Deposits.Add(o.Withdrawals)
}

// BalanceStatement is the custodian's cash position, derived fresh from
// the ledger on every call and never cached. Balance is always
// base + inflows - outflows; it is a computed field, not a stored one.
type BalanceStatement struct {
	Base     valueobject.Money `json:"base"`
	Inflows  BalanceInflows    `json:"inflows"`
	Outflows BalanceOutflows   `json:"outflows"`
	Balance  valueobject.Money `json:"balance"`
	From     *time.Time        `json:"from,omitempty"`
	To       *time.Time        `json:"to,omitempty"`
}

// NewBalanceStatement computes a statement from its components
func NewBalanceStatement(base valueobject.Money, inflows BalanceInflows, outflows BalanceOutflows, from, to *time.Time) BalanceStatement {
	return BalanceStatement{
		Base:     base,
		Inflows:  inflows,
		Outflows: outflows,
		Balance:  base.Add(inflows.Total()).Subtract(outflows.Total()),
		From:     from,
		To:       to,
	}
}
