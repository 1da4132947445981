// Package ledger validates and resolves disbursement tranches against a
// loan's sanctioned cap. Every function is pure: it reads the loan snapshot
// it is given, performs no I/O, and returns either a fully resolved tranche
// or a single ValidationError for the first rule that failed.
package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shrawani1619/ykc-finserv-backoffice/internal/commission"
	"github.com/shrawani1619/ykc-finserv-backoffice/internal/domain"
	"github.com/shrawani1619/ykc-finserv-backoffice/pkg/currency"
	apperrors "github.com/shrawani1619/ykc-finserv-backoffice/pkg/errors"
	"github.com/shrawani1619/ykc-finserv-backoffice/pkg/validation"
)

// MinUTRLength is the shortest bank transaction reference accepted.
const MinUTRLength = 5

var (
	zero    = decimal.Zero
	hundred = decimal.NewFromInt(100)
)

// ProposeTranche validates a new disbursement against the loan and, on
// success, returns the resolved tranche. Appending it to the history and
// recomputing the loan totals stays with the caller; AppendTranche does both.
func ProposeTranche(loan *domain.Loan, input domain.TrancheInput) (*domain.Tranche, error) {
	t, err := resolve(loan, input, loan.DisbursedAmount, false)
	if err != nil {
		return nil, err
	}

	t.ID = uuid.New()
	t.LoanID = loan.ID
	return t, nil
}

// ReviseTranche validates an edit of an existing tranche. The cap checks
// exclude the tranche's own prior contribution from the disbursed total, so
// an amount can be raised as long as the net total still respects the cap.
// Unlike creation, the commission type itself must be submitted.
func ReviseTranche(loan *domain.Loan, existing *domain.Tranche, input domain.TrancheInput) (*domain.Tranche, error) {
	t, err := resolve(loan, input, loan.DisbursedAmount.Sub(existing.Amount), true)
	if err != nil {
		return nil, err
	}

	t.ID = existing.ID
	t.LoanID = existing.LoanID
	t.CreatedAt = existing.CreatedAt
	return t, nil
}

// AppendTranche adds an accepted tranche to the history and refreshes the
// loan totals and derived status.
func AppendTranche(loan *domain.Loan, t *domain.Tranche) {
	loan.History = append(loan.History, t)
	loan.Recompute()
}

// ReplaceTranche swaps a revised tranche into the history in place,
// preserving chronological order, and refreshes the loan totals.
func ReplaceTranche(loan *domain.Loan, t *domain.Tranche) {
	for i, existing := range loan.History {
		if existing.ID == t.ID {
			loan.History[i] = t
			break
		}
	}
	loan.Recompute()
}

// RemoveTranche drops a tranche from the history unconditionally and
// refreshes the loan totals. A missing ID is a no-op; existence is the
// caller's lookup concern.
func RemoveTranche(loan *domain.Loan, trancheID uuid.UUID) {
	kept := loan.History[:0]
	for _, t := range loan.History {
		if t.ID != trancheID {
			kept = append(kept, t)
		}
	}
	loan.History = kept
	loan.Recompute()
}

// resolve runs the rule set in order, short-circuiting on the first failure.
// disbursed is the effective already-disbursed total for the cap checks; for
// an edit it excludes the tranche under revision.
func resolve(loan *domain.Loan, input domain.TrancheInput, disbursed decimal.Decimal, strictCommission bool) (*domain.Tranche, error) {
	if !validation.IsPositiveAmount(input.Amount) {
		return nil, apperrors.NewValidationError("amount",
			apperrors.CodeAmountRequired,
			"Disbursement amount is required and must be greater than 0")
	}
	amount := input.Amount.Decimal.Round(2)

	remaining := loan.SanctionedAmount.Sub(disbursed)
	if amount.GreaterThan(remaining) {
		return nil, apperrors.NewValidationError("amount",
			apperrors.CodeExceedsRemainingBalance,
			fmt.Sprintf("Amount exceeds remaining balance of %s", currency.FormatINR(remaining)))
	}

	// Redundant with the remaining-balance check under consistent
	// bookkeeping, but enforced independently to tolerate a stale cached
	// disbursed total.
	if amount.Add(disbursed).GreaterThan(loan.SanctionedAmount) {
		return nil, apperrors.NewValidationError("amount",
			apperrors.CodeExceedsApprovedAmount,
			fmt.Sprintf("Total disbursed would exceed the approved amount of %s", currency.FormatINR(loan.SanctionedAmount)))
	}

	if input.Date == nil || input.Date.IsZero() {
		return nil, apperrors.NewValidationError("date",
			apperrors.CodeDateRequired, "Disbursement date is required")
	}

	if !validation.IsNonEmptyString(input.UTR, MinUTRLength) {
		return nil, apperrors.NewValidationError("utr",
			apperrors.CodeUtrInvalid,
			fmt.Sprintf("UTR number must be at least %d characters", MinUTRLength))
	}

	commissionType := input.CommissionType
	if commissionType == "" {
		if strictCommission {
			return nil, apperrors.NewValidationError("commission_type",
				apperrors.CodeCommissionRequired, "Commission type is required")
		}
		commissionType = domain.CommissionTypeAmount
	}

	switch commissionType {
	case domain.CommissionTypePercent:
		if !validation.IsInRange(input.CommissionPercentage, zero, hundred) {
			return nil, apperrors.NewValidationError("commission_percentage",
				apperrors.CodeCommissionPercentInvalid,
				"Commission percentage is required and must be between 0 and 100")
		}
	default:
		if !validation.IsPositiveAmount(input.CommissionAmount) {
			return nil, apperrors.NewValidationError("commission_amount",
				apperrors.CodeCommissionRequired, "Commission amount is required")
		}
	}

	gst := decimal.Zero
	if input.GST.Valid {
		if input.GST.Decimal.IsNegative() {
			return nil, apperrors.NewValidationError("gst",
				apperrors.CodeGstInvalid, "GST cannot be negative")
		}
		gst = input.GST.Decimal
	}

	// Per-tranche commission is always based on the tranche's own amount.
	commissionAmount := commission.Resolve(commissionType,
		input.CommissionAmount.Decimal, input.CommissionPercentage.Decimal, amount).Round(2)

	commissionPercentage := decimal.Zero
	if commissionType == domain.CommissionTypePercent {
		commissionPercentage = input.CommissionPercentage.Decimal
	}

	return &domain.Tranche{
		Amount:               amount,
		Date:                 truncateToDay(*input.Date),
		UTR:                  input.UTR,
		BankRef:              input.BankRef,
		CommissionType:       commissionType,
		CommissionPercentage: commissionPercentage,
		CommissionAmount:     commissionAmount,
		GST:                  gst,
		Notes:                input.Notes,
	}, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
