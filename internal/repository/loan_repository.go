package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/shrawani1619/ykc-finserv-backoffice/internal/domain"
)

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (id, loan_number, agent_id, bank_id, franchise_id, sanctioned_amount, disbursed_amount,
			commission_basis, commission_percentage, commission_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.LoanNumber,
		loan.Agent,
		loan.Bank,
		loan.Franchise,
		loan.SanctionedAmount,
		loan.DisbursedAmount,
		loan.CommissionBasis,
		loan.CommissionPercentage,
		loan.CommissionAmount,
		loan.Status,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	return err
}

func (r *loanRepository) GetByLoanNumber(ctx context.Context, loanNumber string) (*domain.Loan, error) {
	query := `
		SELECT id, loan_number, agent_id, bank_id, franchise_id, sanctioned_amount, disbursed_amount,
			commission_basis, commission_percentage, commission_amount, status, created_at, updated_at
		FROM loans
		WHERE loan_number = $1
	`

	var loan domain.Loan
	err := r.db.GetContext(ctx, &loan, query, loanNumber)
	if err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) List(ctx context.Context) ([]*domain.Loan, error) {
	query := `
		SELECT id, loan_number, agent_id, bank_id, franchise_id, sanctioned_amount, disbursed_amount,
			commission_basis, commission_percentage, commission_amount, status, created_at, updated_at
		FROM loans
		ORDER BY created_at
	`

	var loans []*domain.Loan
	err := r.db.SelectContext(ctx, &loans, query)
	if err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) UpdateTotals(ctx context.Context, loan *domain.Loan) error {
	query := `
		UPDATE loans
		SET disbursed_amount = $2, status = $3, updated_at = $4
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.DisbursedAmount,
		loan.Status,
		time.Now(),
	)

	return err
}
