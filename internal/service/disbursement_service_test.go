package service

import (
	"context"
	"database/sql"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shrawani1619/ykc-finserv-backoffice/internal/config"
	"github.com/shrawani1619/ykc-finserv-backoffice/internal/domain"
	customError "github.com/shrawani1619/ykc-finserv-backoffice/pkg/errors"
)

func testConfig() *config.Config {
	return &config.Config{
		Business: config.BusinessConfig{
			DefaultTDSPercent: "2",
			CacheTTL:          time.Minute,
		},
	}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newService(loanRepo *MockLoanRepository, trancheRepo *MockTrancheRepository, notifier *MockNotifier) *DisbursementService {
	if notifier == nil {
		return NewDisbursementService(loanRepo, trancheRepo, nil, testConfig(), nil, testLogger())
	}
	return NewDisbursementService(loanRepo, trancheRepo, nil, testConfig(), notifier, testLogger())
}

func storedLoan(sanctioned, disbursed int64) *domain.Loan {
	return &domain.Loan{
		ID:               uuid.New(),
		LoanNumber:       "YKC-001",
		SanctionedAmount: decimal.NewFromInt(sanctioned),
		DisbursedAmount:  decimal.NewFromInt(disbursed),
		Status:           domain.LoanStatusApproved,
	}
}

func optional(v float64) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.NewFromFloat(v), Valid: true}
}

func datePtr(s string) *time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return &t
}

func trancheInput(amount float64) domain.TrancheInput {
	return domain.TrancheInput{
		Amount:           optional(amount),
		Date:             datePtr("2024-01-15"),
		UTR:              "HDFC00012345",
		CommissionType:   domain.CommissionTypeAmount,
		CommissionAmount: optional(8000),
	}
}

func TestCreateLoan(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		loanRepo := new(MockLoanRepository)
		trancheRepo := new(MockTrancheRepository)
		svc := newService(loanRepo, trancheRepo, nil)

		loanRepo.On("GetByLoanNumber", mock.Anything, "YKC-002").Return(nil, sql.ErrNoRows)
		loanRepo.On("Create", mock.Anything, mock.MatchedBy(func(loan *domain.Loan) bool {
			return loan.LoanNumber == "YKC-002" && loan.Status == domain.LoanStatusApproved
		})).Return(nil)

		loan, err := svc.CreateLoan(context.Background(), &domain.CreateLoanRequest{
			LoanNumber:           "YKC-002",
			SanctionedAmount:     decimal.NewFromInt(1000000),
			CommissionType:       domain.CommissionTypePercent,
			CommissionPercentage: decimal.NewFromInt(2),
		})

		require.NoError(t, err)
		assert.Equal(t, domain.CommissionBasisSanctioned, loan.CommissionBasis)
		// Default commission from the sanctioned base: 2% of 10 lakh.
		assert.True(t, loan.CommissionAmount.Equal(decimal.NewFromInt(20000)))
		loanRepo.AssertExpectations(t)
	})

	t.Run("duplicate loan number", func(t *testing.T) {
		loanRepo := new(MockLoanRepository)
		trancheRepo := new(MockTrancheRepository)
		svc := newService(loanRepo, trancheRepo, nil)

		loanRepo.On("GetByLoanNumber", mock.Anything, "YKC-001").Return(storedLoan(1000000, 0), nil)

		_, err := svc.CreateLoan(context.Background(), &domain.CreateLoanRequest{
			LoanNumber:       "YKC-001",
			SanctionedAmount: decimal.NewFromInt(1000000),
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
		loanRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("non-positive sanctioned amount", func(t *testing.T) {
		loanRepo := new(MockLoanRepository)
		trancheRepo := new(MockTrancheRepository)
		svc := newService(loanRepo, trancheRepo, nil)

		loanRepo.On("GetByLoanNumber", mock.Anything, "YKC-003").Return(nil, sql.ErrNoRows)

		_, err := svc.CreateLoan(context.Background(), &domain.CreateLoanRequest{
			LoanNumber:       "YKC-003",
			SanctionedAmount: decimal.Zero,
		})

		ve, ok := customError.AsValidation(err)
		require.True(t, ok)
		assert.Equal(t, "sanctioned_amount", ve.Field)
	})
}

func TestAddDisbursement(t *testing.T) {
	t.Run("success updates totals and notifies", func(t *testing.T) {
		loanRepo := new(MockLoanRepository)
		trancheRepo := new(MockTrancheRepository)
		notifier := new(MockNotifier)
		svc := newService(loanRepo, trancheRepo, notifier)

		stored := storedLoan(1000000, 0)
		loanRepo.On("GetByLoanNumber", mock.Anything, "YKC-001").Return(stored, nil)
		trancheRepo.On("ListByLoanID", mock.Anything, stored.ID).Return([]*domain.Tranche{}, nil)
		trancheRepo.On("Create", mock.Anything, mock.MatchedBy(func(tr *domain.Tranche) bool {
			return tr.Amount.Equal(decimal.NewFromInt(400000)) && tr.LoanID == stored.ID
		})).Return(nil)
		loanRepo.On("UpdateTotals", mock.Anything, mock.MatchedBy(func(loan *domain.Loan) bool {
			return loan.DisbursedAmount.Equal(decimal.NewFromInt(400000)) &&
				loan.Status == domain.LoanStatusPartialDisbursed
		})).Return(nil)
		notifier.On("SendDisbursementConfirmation",
			[]string{"accounts@ykcfinserv.in"}, mock.Anything, mock.Anything).Return(nil)

		loan, tranche, err := svc.AddDisbursement(context.Background(), "YKC-001",
			trancheInput(400000), []string{"accounts@ykcfinserv.in"})

		require.NoError(t, err)
		assert.True(t, loan.DisbursedAmount.Equal(decimal.NewFromInt(400000)))
		assert.True(t, tranche.NetCommission().Equal(decimal.NewFromInt(8000)))
		loanRepo.AssertExpectations(t)
		trancheRepo.AssertExpectations(t)
		notifier.AssertExpectations(t)
	})

	t.Run("validation failure persists nothing", func(t *testing.T) {
		loanRepo := new(MockLoanRepository)
		trancheRepo := new(MockTrancheRepository)
		svc := newService(loanRepo, trancheRepo, nil)

		stored := storedLoan(1000000, 0)
		loanRepo.On("GetByLoanNumber", mock.Anything, "YKC-001").Return(stored, nil)
		trancheRepo.On("ListByLoanID", mock.Anything, stored.ID).Return([]*domain.Tranche{}, nil)

		_, _, err := svc.AddDisbursement(context.Background(), "YKC-001",
			trancheInput(1000001), nil)

		ve, ok := customError.AsValidation(err)
		require.True(t, ok)
		assert.Equal(t, customError.CodeExceedsRemainingBalance, ve.Code)
		trancheRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		loanRepo.AssertNotCalled(t, "UpdateTotals", mock.Anything, mock.Anything)
	})

	t.Run("stale cached total is recomputed before validating", func(t *testing.T) {
		loanRepo := new(MockLoanRepository)
		trancheRepo := new(MockTrancheRepository)
		svc := newService(loanRepo, trancheRepo, nil)

		// The loans row claims nothing disbursed, but a 7 lakh tranche
		// exists; the cap check must see the real total.
		stored := storedLoan(1000000, 0)
		existing := &domain.Tranche{
			ID:     uuid.New(),
			LoanID: stored.ID,
			Amount: decimal.NewFromInt(700000),
		}
		loanRepo.On("GetByLoanNumber", mock.Anything, "YKC-001").Return(stored, nil)
		trancheRepo.On("ListByLoanID", mock.Anything, stored.ID).Return([]*domain.Tranche{existing}, nil)

		_, _, err := svc.AddDisbursement(context.Background(), "YKC-001",
			trancheInput(400000), nil)

		ve, ok := customError.AsValidation(err)
		require.True(t, ok)
		assert.Equal(t, customError.CodeExceedsRemainingBalance, ve.Code)
		assert.Contains(t, ve.Message, "₹3,00,000")
	})

	t.Run("loan not found", func(t *testing.T) {
		loanRepo := new(MockLoanRepository)
		trancheRepo := new(MockTrancheRepository)
		svc := newService(loanRepo, trancheRepo, nil)

		loanRepo.On("GetByLoanNumber", mock.Anything, "NOPE").Return(nil, sql.ErrNoRows)

		_, _, err := svc.AddDisbursement(context.Background(), "NOPE", trancheInput(1), nil)

		require.Error(t, err)
		assert.ErrorIs(t, err, customError.ErrLoanNotFound)
	})
}

func TestEditDisbursement(t *testing.T) {
	t.Run("cap excludes the tranche's own amount", func(t *testing.T) {
		loanRepo := new(MockLoanRepository)
		trancheRepo := new(MockTrancheRepository)
		svc := newService(loanRepo, trancheRepo, nil)

		stored := storedLoan(1000000, 500000)
		target := &domain.Tranche{
			ID:               uuid.New(),
			LoanID:           stored.ID,
			Amount:           decimal.NewFromInt(200000),
			Date:             time.Now(),
			UTR:              "HDFC00099999",
			CommissionType:   domain.CommissionTypeAmount,
			CommissionAmount: decimal.NewFromInt(4000),
		}
		other := &domain.Tranche{
			ID:     uuid.New(),
			LoanID: stored.ID,
			Amount: decimal.NewFromInt(300000),
		}

		loanRepo.On("GetByLoanNumber", mock.Anything, "YKC-001").Return(stored, nil)
		trancheRepo.On("ListByLoanID", mock.Anything, stored.ID).Return([]*domain.Tranche{target, other}, nil)
		trancheRepo.On("Update", mock.Anything, mock.MatchedBy(func(tr *domain.Tranche) bool {
			return tr.ID == target.ID && tr.Amount.Equal(decimal.NewFromInt(700000))
		})).Return(nil)
		loanRepo.On("UpdateTotals", mock.Anything, mock.MatchedBy(func(loan *domain.Loan) bool {
			return loan.DisbursedAmount.Equal(decimal.NewFromInt(1000000)) &&
				loan.Status == domain.LoanStatusCompleted
		})).Return(nil)

		// remaining-for-edit = 1000000 - (500000 - 200000) = 700000 exactly
		loan, tranche, err := svc.EditDisbursement(context.Background(), "YKC-001",
			target.ID, trancheInput(700000))

		require.NoError(t, err)
		assert.True(t, tranche.Amount.Equal(decimal.NewFromInt(700000)))
		assert.True(t, loan.DisbursedAmount.Equal(decimal.NewFromInt(1000000)))
		trancheRepo.AssertExpectations(t)
		loanRepo.AssertExpectations(t)
	})

	t.Run("unknown tranche", func(t *testing.T) {
		loanRepo := new(MockLoanRepository)
		trancheRepo := new(MockTrancheRepository)
		svc := newService(loanRepo, trancheRepo, nil)

		stored := storedLoan(1000000, 0)
		loanRepo.On("GetByLoanNumber", mock.Anything, "YKC-001").Return(stored, nil)
		trancheRepo.On("ListByLoanID", mock.Anything, stored.ID).Return([]*domain.Tranche{}, nil)

		_, _, err := svc.EditDisbursement(context.Background(), "YKC-001",
			uuid.New(), trancheInput(100))

		assert.ErrorIs(t, err, customError.ErrTrancheNotFound)
	})
}

func TestDeleteDisbursement(t *testing.T) {
	loanRepo := new(MockLoanRepository)
	trancheRepo := new(MockTrancheRepository)
	svc := newService(loanRepo, trancheRepo, nil)

	stored := storedLoan(1000000, 500000)
	target := &domain.Tranche{ID: uuid.New(), LoanID: stored.ID, Amount: decimal.NewFromInt(200000)}
	other := &domain.Tranche{ID: uuid.New(), LoanID: stored.ID, Amount: decimal.NewFromInt(300000)}

	loanRepo.On("GetByLoanNumber", mock.Anything, "YKC-001").Return(stored, nil)
	trancheRepo.On("ListByLoanID", mock.Anything, stored.ID).Return([]*domain.Tranche{target, other}, nil)
	trancheRepo.On("Delete", mock.Anything, target.ID).Return(nil)
	loanRepo.On("UpdateTotals", mock.Anything, mock.MatchedBy(func(loan *domain.Loan) bool {
		return loan.DisbursedAmount.Equal(decimal.NewFromInt(300000))
	})).Return(nil)

	loan, err := svc.DeleteDisbursement(context.Background(), "YKC-001", target.ID)

	require.NoError(t, err)
	assert.Len(t, loan.History, 1)
	assert.True(t, loan.DisbursedAmount.Equal(decimal.NewFromInt(300000)))
	trancheRepo.AssertExpectations(t)
	loanRepo.AssertExpectations(t)
}

func TestInvoiceFigures(t *testing.T) {
	svc := newService(new(MockLoanRepository), new(MockTrancheRepository), nil)

	t.Run("explicit tds", func(t *testing.T) {
		figures := svc.InvoiceFigures(decimal.NewFromInt(50000), optional(2))
		assert.True(t, figures.GSTAmount.Equal(decimal.NewFromInt(9000)))
		assert.True(t, figures.TDSAmount.Equal(decimal.NewFromInt(1000)))
		assert.True(t, figures.NetPayable.Equal(decimal.NewFromInt(58000)))
	})

	t.Run("config default tds", func(t *testing.T) {
		figures := svc.InvoiceFigures(decimal.NewFromInt(50000), decimal.NullDecimal{})
		assert.True(t, figures.TDSAmount.Equal(decimal.NewFromInt(1000)),
			"default 2%% TDS should apply, got %s", figures.TDSAmount)
	})
}

func TestReconcileLoanTotals(t *testing.T) {
	loanRepo := new(MockLoanRepository)
	trancheRepo := new(MockTrancheRepository)
	svc := newService(loanRepo, trancheRepo, nil)

	clean := storedLoan(1000000, 400000)
	drifted := storedLoan(1000000, 0)
	drifted.LoanNumber = "YKC-002"

	loanRepo.On("List", mock.Anything).Return([]*domain.Loan{clean, drifted}, nil)
	trancheRepo.On("SumByLoanID", mock.Anything, clean.ID).Return(decimal.NewFromInt(400000), nil)
	trancheRepo.On("SumByLoanID", mock.Anything, drifted.ID).Return(decimal.NewFromInt(250000), nil)
	loanRepo.On("UpdateTotals", mock.Anything, mock.MatchedBy(func(loan *domain.Loan) bool {
		return loan.LoanNumber == "YKC-002" &&
			loan.DisbursedAmount.Equal(decimal.NewFromInt(250000)) &&
			loan.Status == domain.LoanStatusPartialDisbursed
	})).Return(nil)

	repaired, err := svc.ReconcileLoanTotals(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, repaired)
	loanRepo.AssertExpectations(t)
	trancheRepo.AssertExpectations(t)
}
