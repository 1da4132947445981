package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/shrawani1619/ykc-finserv-backoffice/internal/commission"
	"github.com/shrawani1619/ykc-finserv-backoffice/internal/config"
	"github.com/shrawani1619/ykc-finserv-backoffice/internal/domain"
	"github.com/shrawani1619/ykc-finserv-backoffice/internal/ledger"
	"github.com/shrawani1619/ykc-finserv-backoffice/internal/notify"
	"github.com/shrawani1619/ykc-finserv-backoffice/internal/repository"
	customError "github.com/shrawani1619/ykc-finserv-backoffice/pkg/errors"
)

// DisbursementService owns the CRUD lifecycle around the pure ledger: it
// loads a fresh loan snapshot per call, runs the validation/resolution in
// internal/ledger, and persists the outcome.
type DisbursementService struct {
	LoanRepo    repository.LoanRepository
	TrancheRepo repository.TrancheRepository
	redis       *redis.Client
	config      *config.Config
	notifier    notify.Notifier
	logger      *logrus.Logger
}

func NewDisbursementService(
	loanRepo repository.LoanRepository,
	trancheRepo repository.TrancheRepository,
	redisClient *redis.Client,
	cfg *config.Config,
	notifier notify.Notifier,
	logger *logrus.Logger,
) *DisbursementService {
	return &DisbursementService{
		LoanRepo:    loanRepo,
		TrancheRepo: trancheRepo,
		redis:       redisClient,
		config:      cfg,
		notifier:    notifier,
		logger:      logger,
	}
}

// CreateLoan registers a sanctioned loan.
func (s *DisbursementService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, error) {
	existing, err := s.LoanRepo.GetByLoanNumber(ctx, request.LoanNumber)
	if err == nil && existing != nil {
		return nil, customError.WrapLoanAlreadyExists(request.LoanNumber)
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	if !request.SanctionedAmount.GreaterThan(decimal.Zero) {
		return nil, customError.NewValidationError("sanctioned_amount",
			customError.CodeAmountRequired, "Sanctioned amount must be greater than 0")
	}

	basis := request.CommissionBasis
	if basis == "" {
		basis = domain.CommissionBasisSanctioned
	}

	now := time.Now()
	loan := &domain.Loan{
		ID:                   uuid.New(),
		LoanNumber:           request.LoanNumber,
		Agent:                request.Agent,
		Bank:                 request.Bank,
		Franchise:            request.Franchise,
		SanctionedAmount:     request.SanctionedAmount.Round(2),
		DisbursedAmount:      decimal.Zero,
		CommissionBasis:      basis,
		CommissionPercentage: request.CommissionPercentage,
		Status:               domain.LoanStatusApproved,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	// Loan-level default commission, used to pre-fill new tranches.
	loan.CommissionAmount = commission.Resolve(request.CommissionType,
		request.CommissionAmount, request.CommissionPercentage, loan.CommissionBase()).Round(2)

	if err := s.LoanRepo.Create(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return loan, nil
}

// GetLoan returns the loan with its full history and totals recomputed from
// the disbursement rows.
func (s *DisbursementService) GetLoan(ctx context.Context, loanNumber string) (*domain.Loan, error) {
	loan, err := s.loadLoan(ctx, loanNumber)
	if err != nil {
		return nil, err
	}

	s.cacheRemaining(ctx, loan)
	return loan, nil
}

// AddDisbursement validates and records a new tranche, then updates the
// loan's cached totals and derived status.
func (s *DisbursementService) AddDisbursement(ctx context.Context, loanNumber string, input domain.TrancheInput, notifyTo []string) (*domain.Loan, *domain.Tranche, error) {
	loan, err := s.loadLoan(ctx, loanNumber)
	if err != nil {
		return nil, nil, err
	}

	tranche, err := ledger.ProposeTranche(loan, input)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	tranche.CreatedAt = now
	tranche.UpdatedAt = now

	if err := s.TrancheRepo.Create(ctx, tranche); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	ledger.AppendTranche(loan, tranche)
	if err := s.LoanRepo.UpdateTotals(ctx, loan); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	s.invalidateCache(ctx, loanNumber)
	s.sendConfirmation(notifyTo, loan, tranche)

	return loan, tranche, nil
}

// EditDisbursement revalidates an existing tranche with the submitted input
// and persists the revision. The cap check excludes the tranche's own prior
// amount.
func (s *DisbursementService) EditDisbursement(ctx context.Context, loanNumber string, trancheID uuid.UUID, input domain.TrancheInput) (*domain.Loan, *domain.Tranche, error) {
	loan, err := s.loadLoan(ctx, loanNumber)
	if err != nil {
		return nil, nil, err
	}

	existing, err := s.findTranche(loan, trancheID)
	if err != nil {
		return nil, nil, err
	}

	revised, err := ledger.ReviseTranche(loan, existing, input)
	if err != nil {
		return nil, nil, err
	}
	revised.UpdatedAt = time.Now()

	if err := s.TrancheRepo.Update(ctx, revised); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	ledger.ReplaceTranche(loan, revised)
	if err := s.LoanRepo.UpdateTotals(ctx, loan); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	s.invalidateCache(ctx, loanNumber)
	return loan, revised, nil
}

// DeleteDisbursement removes a tranche unconditionally and recomputes the
// loan totals from the remaining rows.
func (s *DisbursementService) DeleteDisbursement(ctx context.Context, loanNumber string, trancheID uuid.UUID) (*domain.Loan, error) {
	loan, err := s.loadLoan(ctx, loanNumber)
	if err != nil {
		return nil, err
	}

	if _, err := s.findTranche(loan, trancheID); err != nil {
		return nil, err
	}

	if err := s.TrancheRepo.Delete(ctx, trancheID); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	ledger.RemoveTranche(loan, trancheID)
	if err := s.LoanRepo.UpdateTotals(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateCache(ctx, loanNumber)
	return loan, nil
}

// InvoiceFigures computes the invoice breakdown, falling back to the
// configured TDS default when the request leaves it out.
func (s *DisbursementService) InvoiceFigures(commissionAmount decimal.Decimal, tdsPercent decimal.NullDecimal) commission.Figures {
	tds := s.config.DefaultTDSPercent()
	if tdsPercent.Valid {
		tds = tdsPercent.Decimal
	}
	return commission.InvoiceFigures(commissionAmount, tds)
}

// ReconcileLoanTotals recomputes every loan's disbursed total straight from
// its disbursement rows and repairs drifted caches. Returns the number of
// repairs.
func (s *DisbursementService) ReconcileLoanTotals(ctx context.Context) (int, error) {
	loans, err := s.LoanRepo.List(ctx)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	repaired := 0
	for _, loan := range loans {
		actual, err := s.TrancheRepo.SumByLoanID(ctx, loan.ID)
		if err != nil {
			return repaired, customError.WrapDatabaseError(err)
		}

		if actual.Equal(loan.DisbursedAmount) {
			continue
		}

		s.logger.WithFields(logrus.Fields{
			"loan_number": loan.LoanNumber,
			"cached":      loan.DisbursedAmount.String(),
			"actual":      actual.String(),
		}).Warn("Repairing drifted disbursed total")

		loan.DisbursedAmount = actual
		loan.Status = domain.DeriveStatus(loan.SanctionedAmount, actual, loan.Status)
		if err := s.LoanRepo.UpdateTotals(ctx, loan); err != nil {
			return repaired, customError.WrapDatabaseError(err)
		}
		s.invalidateCache(ctx, loan.LoanNumber)
		repaired++
	}

	return repaired, nil
}

// loadLoan fetches a fresh snapshot: the loans row plus the full tranche
// list, with totals recomputed from the rows rather than trusted from the
// cached column.
func (s *DisbursementService) loadLoan(ctx context.Context, loanNumber string) (*domain.Loan, error) {
	loan, err := s.LoanRepo.GetByLoanNumber(ctx, loanNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(loanNumber)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	tranches, err := s.TrancheRepo.ListByLoanID(ctx, loan.ID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	loan.History = tranches
	loan.Recompute()
	return loan, nil
}

func (s *DisbursementService) findTranche(loan *domain.Loan, trancheID uuid.UUID) (*domain.Tranche, error) {
	for _, t := range loan.History {
		if t.ID == trancheID {
			return t, nil
		}
	}
	return nil, customError.WrapTrancheNotFound(trancheID.String())
}

func remainingCacheKey(loanNumber string) string {
	return fmt.Sprintf("loan:remaining:%s", loanNumber)
}

func (s *DisbursementService) cacheRemaining(ctx context.Context, loan *domain.Loan) {
	if s.redis == nil {
		return
	}
	err := s.redis.Set(ctx, remainingCacheKey(loan.LoanNumber),
		loan.Remaining().String(), s.config.Business.CacheTTL).Err()
	if err != nil {
		s.logger.WithError(customError.WrapCacheError(err)).Warn("Failed to cache remaining balance")
	}
}

func (s *DisbursementService) invalidateCache(ctx context.Context, loanNumber string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, remainingCacheKey(loanNumber)).Err(); err != nil {
		s.logger.WithError(customError.WrapCacheError(err)).Warn("Failed to invalidate loan cache")
	}
}

// sendConfirmation is best effort: a mail failure is logged, never surfaced
// to the submitting accountant.
func (s *DisbursementService) sendConfirmation(to []string, loan *domain.Loan, tranche *domain.Tranche) {
	if s.notifier == nil || len(to) == 0 {
		return
	}
	if err := s.notifier.SendDisbursementConfirmation(to, loan, tranche); err != nil {
		s.logger.WithError(err).Warn("Disbursement confirmation email failed")
	}
}
