package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/shrawani1619/ykc-finserv-backoffice/internal/domain"
	"github.com/shrawani1619/ykc-finserv-backoffice/internal/service"
	apperrors "github.com/shrawani1619/ykc-finserv-backoffice/pkg/errors"
	"github.com/shrawani1619/ykc-finserv-backoffice/pkg/response"
)

type DisbursementHandler struct {
	service   *service.DisbursementService
	validator *validator.Validate
}

func NewDisbursementHandler(service *service.DisbursementService) *DisbursementHandler {
	return &DisbursementHandler{
		service:   service,
		validator: validator.New(),
	}
}

// CreateLoan handles POST /api/v1/loans
func (h *DisbursementHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Invalid request", err)
		return
	}

	loan, err := h.service.CreateLoan(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, domain.LoanResponse{Loan: loan, Remaining: loan.Remaining()})
}

// GetLoan handles GET /api/v1/loans/{loanNumber}
func (h *DisbursementHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanNumber := mux.Vars(r)["loanNumber"]

	loan, err := h.service.GetLoan(r.Context(), loanNumber)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, domain.LoanResponse{Loan: loan, Remaining: loan.Remaining()})
}

// AddDisbursement handles POST /api/v1/loans/{loanNumber}/disbursements
func (h *DisbursementHandler) AddDisbursement(w http.ResponseWriter, r *http.Request) {
	loanNumber := mux.Vars(r)["loanNumber"]

	var req domain.DisbursementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Invalid request", err)
		return
	}

	input, verr := buildTrancheInput(req)
	if verr != nil {
		response.ValidationFailed(w, verr.Message, verr.Fields())
		return
	}

	loan, tranche, err := h.service.AddDisbursement(r.Context(), loanNumber, input, req.NotifyEmails)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, disbursementResponse(loan, tranche))
}

// EditDisbursement handles PUT /api/v1/loans/{loanNumber}/disbursements/{trancheId}
func (h *DisbursementHandler) EditDisbursement(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	loanNumber := vars["loanNumber"]

	trancheID, err := uuid.Parse(vars["trancheId"])
	if err != nil {
		response.BadRequest(w, "Invalid disbursement id", err)
		return
	}

	var req domain.DisbursementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Invalid request", err)
		return
	}

	input, verr := buildTrancheInput(req)
	if verr != nil {
		response.ValidationFailed(w, verr.Message, verr.Fields())
		return
	}

	loan, tranche, err := h.service.EditDisbursement(r.Context(), loanNumber, trancheID, input)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, disbursementResponse(loan, tranche))
}

// DeleteDisbursement handles DELETE /api/v1/loans/{loanNumber}/disbursements/{trancheId}
func (h *DisbursementHandler) DeleteDisbursement(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	loanNumber := vars["loanNumber"]

	trancheID, err := uuid.Parse(vars["trancheId"])
	if err != nil {
		response.BadRequest(w, "Invalid disbursement id", err)
		return
	}

	loan, err := h.service.DeleteDisbursement(r.Context(), loanNumber, trancheID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, domain.LoanResponse{Loan: loan, Remaining: loan.Remaining()})
}

// InvoiceFigures handles POST /api/v1/invoices/figures
func (h *DisbursementHandler) InvoiceFigures(w http.ResponseWriter, r *http.Request) {
	var req domain.InvoiceFiguresRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Invalid request", err)
		return
	}

	tds, err := domain.ParseOptionalDecimal(req.TDSPercentage)
	if err != nil {
		response.BadRequest(w, "TDS percentage must be a number", err)
		return
	}

	figures := h.service.InvoiceFigures(req.CommissionAmount, tds)
	response.Success(w, figures)
}

func disbursementResponse(loan *domain.Loan, tranche *domain.Tranche) domain.DisbursementResponse {
	return domain.DisbursementResponse{
		Tranche:         tranche,
		NetCommission:   tranche.NetCommission(),
		DisbursedAmount: loan.DisbursedAmount,
		Remaining:       loan.Remaining(),
		Status:          loan.Status,
	}
}

// buildTrancheInput normalizes a raw submission into the ledger's input
// struct. A non-numeric entry maps to the same validation code the ledger
// would return for that field being absent or invalid.
func buildTrancheInput(req domain.DisbursementRequest) (domain.TrancheInput, *apperrors.ValidationError) {
	var input domain.TrancheInput

	amount, err := domain.ParseOptionalDecimal(req.Amount)
	if err != nil {
		return input, apperrors.NewValidationError("amount",
			apperrors.CodeAmountRequired, "Disbursement amount must be a number")
	}

	date, err := domain.ParseDate(req.Date)
	if err != nil {
		return input, apperrors.NewValidationError("date",
			apperrors.CodeDateRequired, "Disbursement date is invalid")
	}

	commissionAmount, err := domain.ParseOptionalDecimal(req.CommissionAmount)
	if err != nil {
		return input, apperrors.NewValidationError("commission_amount",
			apperrors.CodeCommissionRequired, "Commission amount must be a number")
	}

	commissionPercentage, err := domain.ParseOptionalDecimal(req.CommissionPercentage)
	if err != nil {
		return input, apperrors.NewValidationError("commission_percentage",
			apperrors.CodeCommissionPercentInvalid, "Commission percentage must be a number")
	}

	gst, err := domain.ParseOptionalDecimal(req.GST)
	if err != nil {
		return input, apperrors.NewValidationError("gst",
			apperrors.CodeGstInvalid, "GST must be a number")
	}

	input = domain.TrancheInput{
		Amount:               amount,
		Date:                 date,
		UTR:                  req.UTR,
		BankRef:              req.BankRef,
		CommissionType:       req.CommissionType,
		CommissionPercentage: commissionPercentage,
		CommissionAmount:     commissionAmount,
		GST:                  gst,
		Notes:                req.Notes,
	}
	return input, nil
}

func (h *DisbursementHandler) writeError(w http.ResponseWriter, err error) {
	if ve, ok := apperrors.AsValidation(err); ok {
		response.ValidationFailed(w, ve.Message, ve.Fields())
		return
	}

	var be *apperrors.BusinessError
	if errors.As(err, &be) {
		switch be.Code {
		case apperrors.ErrCodeLoanNotFound, apperrors.ErrCodeTrancheNotFound:
			response.NotFound(w, be.Message)
		case apperrors.ErrCodeLoanAlreadyExists:
			response.Conflict(w, be.Message)
		default:
			response.InternalServerError(w, be.Message, be.Err)
		}
		return
	}

	response.InternalServerError(w, "Unexpected error", err)
}
