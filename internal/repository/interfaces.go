package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shrawani1619/ykc-finserv-backoffice/internal/domain"
)

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// Create creates a new loan
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByLoanNumber retrieves a loan by its business loan number
	GetByLoanNumber(ctx context.Context, loanNumber string) (*domain.Loan, error)

	// List retrieves all loans, oldest first
	List(ctx context.Context) ([]*domain.Loan, error)

	// UpdateTotals persists the recomputed disbursed total and derived status
	UpdateTotals(ctx context.Context, loan *domain.Loan) error
}

// TrancheRepository defines the interface for disbursement data operations
type TrancheRepository interface {
	// Create inserts a new disbursement tranche
	Create(ctx context.Context, tranche *domain.Tranche) error

	// Update rewrites an existing tranche
	Update(ctx context.Context, tranche *domain.Tranche) error

	// Delete removes a tranche by ID
	Delete(ctx context.Context, trancheID uuid.UUID) error

	// GetByID retrieves a single tranche
	GetByID(ctx context.Context, trancheID uuid.UUID) (*domain.Tranche, error)

	// ListByLoanID retrieves a loan's tranches in chronological insertion order
	ListByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Tranche, error)

	// SumByLoanID computes the disbursed total straight from the rows
	SumByLoanID(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error)
}
