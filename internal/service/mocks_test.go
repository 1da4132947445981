package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/shrawani1619/ykc-finserv-backoffice/internal/domain"
)

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByLoanNumber(ctx context.Context, loanNumber string) (*domain.Loan, error) {
	args := m.Called(ctx, loanNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) List(ctx context.Context) ([]*domain.Loan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) UpdateTotals(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

type MockTrancheRepository struct {
	mock.Mock
}

func (m *MockTrancheRepository) Create(ctx context.Context, tranche *domain.Tranche) error {
	args := m.Called(ctx, tranche)
	return args.Error(0)
}

func (m *MockTrancheRepository) Update(ctx context.Context, tranche *domain.Tranche) error {
	args := m.Called(ctx, tranche)
	return args.Error(0)
}

func (m *MockTrancheRepository) Delete(ctx context.Context, trancheID uuid.UUID) error {
	args := m.Called(ctx, trancheID)
	return args.Error(0)
}

func (m *MockTrancheRepository) GetByID(ctx context.Context, trancheID uuid.UUID) (*domain.Tranche, error) {
	args := m.Called(ctx, trancheID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tranche), args.Error(1)
}

func (m *MockTrancheRepository) ListByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Tranche, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Tranche), args.Error(1)
}

func (m *MockTrancheRepository) SumByLoanID(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, loanID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendDisbursementConfirmation(to []string, loan *domain.Loan, tranche *domain.Tranche) error {
	args := m.Called(to, loan, tranche)
	return args.Error(0)
}
