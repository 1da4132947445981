package domain

import "github.com/shopspring/decimal"

// DTOs for requests and responses

type CreateLoanRequest struct {
	LoanNumber           string          `json:"loan_number" validate:"required"`
	Agent                EntityRef       `json:"agent"`
	Bank                 EntityRef       `json:"bank"`
	Franchise            EntityRef       `json:"franchise"`
	SanctionedAmount     decimal.Decimal `json:"sanctioned_amount" validate:"required"`
	CommissionBasis      string          `json:"commission_basis" validate:"omitempty,oneof=sanctioned disbursed"`
	CommissionType       string          `json:"commission_type" validate:"omitempty,oneof=amount percent"`
	CommissionPercentage decimal.Decimal `json:"commission_percentage"`
	CommissionAmount     decimal.Decimal `json:"commission_amount"`
}

// DisbursementRequest carries one add/edit submission. Numeric fields arrive
// as strings straight from form state and go through ParseOptionalDecimal;
// the ledger owns required/range checks, so none of them are tagged required
// here.
type DisbursementRequest struct {
	Amount               string   `json:"amount"`
	Date                 string   `json:"date"`
	UTR                  string   `json:"utr"`
	BankRef              string   `json:"bank_ref"`
	CommissionType       string   `json:"commission_type" validate:"omitempty,oneof=amount percent"`
	CommissionPercentage string   `json:"commission_percentage"`
	CommissionAmount     string   `json:"commission_amount"`
	GST                  string   `json:"gst"`
	Notes                string   `json:"notes"`
	NotifyEmails         []string `json:"notify_emails"`
}

type InvoiceFiguresRequest struct {
	CommissionAmount decimal.Decimal `json:"commission_amount" validate:"required"`
	TDSPercentage    string          `json:"tds_percentage"`
}

type LoanResponse struct {
	Loan      *Loan           `json:"loan"`
	Remaining decimal.Decimal `json:"remaining"`
}

type DisbursementResponse struct {
	Tranche         *Tranche        `json:"tranche"`
	NetCommission   decimal.Decimal `json:"net_commission"`
	DisbursedAmount decimal.Decimal `json:"disbursed_amount"`
	Remaining       decimal.Decimal `json:"remaining"`
	Status          string          `json:"status"`
}
