package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shrawani1619/ykc-finserv-backoffice/internal/commission"
)

// Commission types. The type names which commission input is authoritative
// for a tranche; the other field is derived from it. Always stored
// explicitly, never inferred from the value range.
const (
	CommissionTypeAmount  = commission.TypeAmount
	CommissionTypePercent = commission.TypePercent
)

// Tranche is one disbursement event against a loan.
type Tranche struct {
	ID                   uuid.UUID       `json:"id" db:"id"`
	LoanID               uuid.UUID       `json:"loan_id" db:"loan_id"`
	Amount               decimal.Decimal `json:"amount" db:"amount"`
	Date                 time.Time       `json:"date" db:"date"`
	UTR                  string          `json:"utr" db:"utr"`
	BankRef              string          `json:"bank_ref" db:"bank_ref"`
	CommissionType       string          `json:"commission_type" db:"commission_type"`
	CommissionPercentage decimal.Decimal `json:"commission_percentage" db:"commission_percentage"`
	CommissionAmount     decimal.Decimal `json:"commission_amount" db:"commission_amount"`
	GST                  decimal.Decimal `json:"gst" db:"gst"`
	Notes                string          `json:"notes" db:"notes"`
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at" db:"updated_at"`
}

// NetCommission is the payout after GST, floored at zero.
func (t *Tranche) NetCommission() decimal.Decimal {
	return commission.Net(t.CommissionAmount, t.GST)
}

// TrancheInput is the explicit form-state struct a caller submits for a
// proposed or revised tranche. Optional numerics are NullDecimal so that
// absent, zero, and invalid remain distinct.
type TrancheInput struct {
	Amount               decimal.NullDecimal
	Date                 *time.Time
	UTR                  string
	BankRef              string
	CommissionType       string
	CommissionPercentage decimal.NullDecimal
	CommissionAmount     decimal.NullDecimal
	GST                  decimal.NullDecimal
	Notes                string
}

// SwitchCommissionType changes the authoritative commission input and clears
// both commission fields, so a stale derived value is never carried forward
// as if it were user input.
func (in *TrancheInput) SwitchCommissionType(typ string) {
	in.CommissionType = typ
	in.CommissionAmount = decimal.NullDecimal{}
	in.CommissionPercentage = decimal.NullDecimal{}
}
