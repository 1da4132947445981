package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Loan status labels. Status is derived from the disbursement totals,
// never edited independently.
const (
	LoanStatusApproved         = "approved"
	LoanStatusPartialDisbursed = "partial_disbursed"
	LoanStatusCompleted        = "completed"
)

// Commission basis selects which loan amount a loan-level commission
// percentage applies to.
const (
	CommissionBasisSanctioned = "sanctioned"
	CommissionBasisDisbursed  = "disbursed"
)

// Loan represents a sanctioned loan and its disbursement state
type Loan struct {
	ID                   uuid.UUID       `json:"id" db:"id"`
	LoanNumber           string          `json:"loan_number" db:"loan_number"`
	Agent                EntityRef       `json:"agent" db:"agent_id"`
	Bank                 EntityRef       `json:"bank" db:"bank_id"`
	Franchise            EntityRef       `json:"franchise" db:"franchise_id"`
	SanctionedAmount     decimal.Decimal `json:"sanctioned_amount" db:"sanctioned_amount"`
	DisbursedAmount      decimal.Decimal `json:"disbursed_amount" db:"disbursed_amount"`
	CommissionBasis      string          `json:"commission_basis" db:"commission_basis"`
	CommissionPercentage decimal.Decimal `json:"commission_percentage" db:"commission_percentage"`
	CommissionAmount     decimal.Decimal `json:"commission_amount" db:"commission_amount"`
	Status               string          `json:"status" db:"status"`
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at" db:"updated_at"`

	// History holds the disbursement tranches in chronological insertion
	// order. Loaded separately from the loans row.
	History []*Tranche `json:"disbursement_history,omitempty" db:"-"`
}

// CommissionBase returns the amount a loan-level commission percentage
// applies to, per the loan's commission basis.
func (l *Loan) CommissionBase() decimal.Decimal {
	if l.CommissionBasis == CommissionBasisDisbursed {
		return l.DisbursedAmount
	}
	return l.SanctionedAmount
}

// Remaining returns the undisbursed portion of the sanctioned amount.
func (l *Loan) Remaining() decimal.Decimal {
	return l.SanctionedAmount.Sub(l.DisbursedAmount)
}

// RemainingForEdit returns the cap available when revising an existing
// tranche: its own prior contribution is excluded from the disbursed total.
func (l *Loan) RemainingForEdit(existing *Tranche) decimal.Decimal {
	return l.SanctionedAmount.Sub(l.DisbursedAmount.Sub(existing.Amount))
}

// Recompute refreshes DisbursedAmount from the tranche history and
// re-derives the status.
func (l *Loan) Recompute() {
	total := decimal.Zero
	for _, t := range l.History {
		total = total.Add(t.Amount)
	}
	l.DisbursedAmount = total
	l.Status = DeriveStatus(l.SanctionedAmount, l.DisbursedAmount, l.Status)
}

// DeriveStatus maps the disbursement totals to a status label. When neither
// threshold is crossed the prior status is retained.
func DeriveStatus(sanctioned, disbursed decimal.Decimal, prior string) string {
	if disbursed.GreaterThan(decimal.Zero) && disbursed.GreaterThanOrEqual(sanctioned) {
		return LoanStatusCompleted
	}
	if disbursed.GreaterThan(decimal.Zero) && disbursed.LessThan(sanctioned) {
		return LoanStatusPartialDisbursed
	}
	return prior
}
