package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrawani1619/ykc-finserv-backoffice/internal/config"
	"github.com/shrawani1619/ykc-finserv-backoffice/internal/domain"
	"github.com/shrawani1619/ykc-finserv-backoffice/internal/service"
	apperrors "github.com/shrawani1619/ykc-finserv-backoffice/pkg/errors"
)

func TestBuildTrancheInput(t *testing.T) {
	base := domain.DisbursementRequest{
		Amount:           "400000",
		Date:             "2024-01-15",
		UTR:              "HDFC00012345",
		CommissionType:   "amount",
		CommissionAmount: "8000",
		GST:              "1440",
	}

	t.Run("valid request maps through", func(t *testing.T) {
		input, verr := buildTrancheInput(base)
		require.Nil(t, verr)

		assert.True(t, input.Amount.Valid)
		assert.Equal(t, "400000", input.Amount.Decimal.String())
		require.NotNil(t, input.Date)
		assert.Equal(t, 15, input.Date.Day())
		assert.True(t, input.GST.Valid)
		assert.Equal(t, domain.CommissionTypeAmount, input.CommissionType)
	})

	t.Run("absent optionals stay absent", func(t *testing.T) {
		req := base
		req.CommissionAmount = ""
		req.GST = "  "

		input, verr := buildTrancheInput(req)
		require.Nil(t, verr)
		assert.False(t, input.CommissionAmount.Valid)
		assert.False(t, input.GST.Valid)
	})

	t.Run("parse failures map to the field's code", func(t *testing.T) {
		tests := []struct {
			name         string
			mutate       func(*domain.DisbursementRequest)
			expectedCode string
			field        string
		}{
			{"bad amount", func(r *domain.DisbursementRequest) { r.Amount = "4,00,000" }, apperrors.CodeAmountRequired, "amount"},
			{"bad date", func(r *domain.DisbursementRequest) { r.Date = "15/01/2024" }, apperrors.CodeDateRequired, "date"},
			{"bad commission amount", func(r *domain.DisbursementRequest) { r.CommissionAmount = "abc" }, apperrors.CodeCommissionRequired, "commission_amount"},
			{"bad percentage", func(r *domain.DisbursementRequest) { r.CommissionPercentage = "two" }, apperrors.CodeCommissionPercentInvalid, "commission_percentage"},
			{"bad gst", func(r *domain.DisbursementRequest) { r.GST = "n/a" }, apperrors.CodeGstInvalid, "gst"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				req := base
				tt.mutate(&req)

				_, verr := buildTrancheInput(req)
				require.NotNil(t, verr)
				assert.Equal(t, tt.expectedCode, verr.Code)
				assert.Equal(t, tt.field, verr.Field)
			})
		}
	})
}

func newInvoiceRouter() *mux.Router {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{
		Business: config.BusinessConfig{DefaultTDSPercent: "2", CacheTTL: time.Minute},
	}

	// InvoiceFigures is pure; no repositories or cache are touched.
	svc := service.NewDisbursementService(nil, nil, nil, cfg, nil, logger)
	h := NewDisbursementHandler(svc)

	router := mux.NewRouter()
	router.HandleFunc("/api/v1/invoices/figures", h.InvoiceFigures).Methods("POST")
	return router
}

func TestInvoiceFiguresEndpoint(t *testing.T) {
	router := newInvoiceRouter()

	t.Run("explicit tds", func(t *testing.T) {
		body := `{"commission_amount": 50000, "tds_percentage": "2"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/figures", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var envelope struct {
			Success bool `json:"success"`
			Data    struct {
				Taxable    string `json:"taxable"`
				GSTAmount  string `json:"gst_amount"`
				TDSAmount  string `json:"tds_amount"`
				NetPayable string `json:"net_payable"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		assert.True(t, envelope.Success)
		assert.Equal(t, "50000", envelope.Data.Taxable)
		assert.Equal(t, "9000", envelope.Data.GSTAmount)
		assert.Equal(t, "1000", envelope.Data.TDSAmount)
		assert.Equal(t, "58000", envelope.Data.NetPayable)
	})

	t.Run("tds defaults from config", func(t *testing.T) {
		body := `{"commission_amount": 50000}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/figures", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"tds_amount":"1000"`)
	})

	t.Run("non-numeric tds is a bad request", func(t *testing.T) {
		body := `{"commission_amount": 50000, "tds_percentage": "two"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/figures", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing commission amount fails validation", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/figures", bytes.NewBufferString(`{}`))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
