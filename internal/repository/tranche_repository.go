package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/shrawani1619/ykc-finserv-backoffice/internal/domain"
)

type trancheRepository struct {
	db *sqlx.DB
}

func NewTrancheRepository(db *sqlx.DB) TrancheRepository {
	return &trancheRepository{db: db}
}

func (r *trancheRepository) Create(ctx context.Context, tranche *domain.Tranche) error {
	query := `
		INSERT INTO disbursements (id, loan_id, amount, date, utr, bank_ref, commission_type,
			commission_percentage, commission_amount, gst, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(ctx, query,
		tranche.ID,
		tranche.LoanID,
		tranche.Amount,
		tranche.Date,
		tranche.UTR,
		tranche.BankRef,
		tranche.CommissionType,
		tranche.CommissionPercentage,
		tranche.CommissionAmount,
		tranche.GST,
		tranche.Notes,
		tranche.CreatedAt,
		tranche.UpdatedAt,
	)

	return err
}

func (r *trancheRepository) Update(ctx context.Context, tranche *domain.Tranche) error {
	query := `
		UPDATE disbursements
		SET amount = $2, date = $3, utr = $4, bank_ref = $5, commission_type = $6,
			commission_percentage = $7, commission_amount = $8, gst = $9, notes = $10, updated_at = $11
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		tranche.ID,
		tranche.Amount,
		tranche.Date,
		tranche.UTR,
		tranche.BankRef,
		tranche.CommissionType,
		tranche.CommissionPercentage,
		tranche.CommissionAmount,
		tranche.GST,
		tranche.Notes,
		time.Now(),
	)

	return err
}

func (r *trancheRepository) Delete(ctx context.Context, trancheID uuid.UUID) error {
	query := `DELETE FROM disbursements WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, trancheID)
	return err
}

func (r *trancheRepository) GetByID(ctx context.Context, trancheID uuid.UUID) (*domain.Tranche, error) {
	query := `
		SELECT id, loan_id, amount, date, utr, bank_ref, commission_type,
			commission_percentage, commission_amount, gst, notes, created_at, updated_at
		FROM disbursements
		WHERE id = $1
	`

	var tranche domain.Tranche
	err := r.db.GetContext(ctx, &tranche, query, trancheID)
	if err != nil {
		return nil, err
	}

	return &tranche, nil
}

func (r *trancheRepository) ListByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Tranche, error) {
	query := `
		SELECT id, loan_id, amount, date, utr, bank_ref, commission_type,
			commission_percentage, commission_amount, gst, notes, created_at, updated_at
		FROM disbursements
		WHERE loan_id = $1
		ORDER BY created_at
	`

	var tranches []*domain.Tranche
	err := r.db.SelectContext(ctx, &tranches, query, loanID)
	if err != nil {
		return nil, err
	}

	return tranches, nil
}

func (r *trancheRepository) SumByLoanID(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM disbursements WHERE loan_id = $1`

	var total decimal.Decimal
	err := r.db.GetContext(ctx, &total, query, loanID)
	if err != nil {
		return decimal.Zero, err
	}

	return total, nil
}
