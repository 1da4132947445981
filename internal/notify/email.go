package notify

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/shrawani1619/ykc-finserv-backoffice/internal/config"
	"github.com/shrawani1619/ykc-finserv-backoffice/internal/domain"
	"github.com/shrawani1619/ykc-finserv-backoffice/pkg/currency"
	"github.com/shrawani1619/ykc-finserv-backoffice/pkg/validation"
)

// Notifier sends disbursement confirmations. The zero-value check on the
// SMTP host lets deployments without mail configured run silently.
type Notifier interface {
	SendDisbursementConfirmation(to []string, loan *domain.Loan, tranche *domain.Tranche) error
}

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    config.SMTPConfig
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg config.SMTPConfig, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendDisbursementConfirmation mails the disbursement summary to the given
// recipients. Syntactically invalid addresses are dropped with a warning
// rather than failing the whole send.
func (s *Sender) SendDisbursementConfirmation(to []string, loan *domain.Loan, tranche *domain.Tranche) error {
	if s.cfg.Host == "" {
		s.logger.Debug("SMTP not configured, skipping disbursement confirmation")
		return nil
	}

	recipients := make([]string, 0, len(to))
	for _, addr := range to {
		if !validation.IsValidEmail(addr) {
			s.logger.WithField("address", addr).Warn("Dropping invalid recipient address")
			continue
		}
		recipients = append(recipients, addr)
	}
	if len(recipients) == 0 {
		return nil
	}

	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = recipients
	e.Subject = fmt.Sprintf("Disbursement recorded for loan %s", loan.LoanNumber)

	body := fmt.Sprintf(
		"A disbursement of %s was recorded against loan %s on %s.\n"+
			"UTR: %s\n"+
			"Commission: %s (net %s after GST)\n"+
			"Total disbursed: %s of %s sanctioned.\n",
		currency.FormatINR(tranche.Amount),
		loan.LoanNumber,
		tranche.Date.Format("2006-01-02"),
		tranche.UTR,
		currency.FormatINR(tranche.CommissionAmount),
		currency.FormatINR(tranche.NetCommission()),
		currency.FormatINR(loan.DisbursedAmount),
		currency.FormatINR(loan.SanctionedAmount),
	)
	body += "\nBest regards,\nYKC Finserv"
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	if err := e.Send(addr, auth); err != nil {
		s.logger.WithError(err).Errorf("Failed to send confirmation for loan %s", loan.LoanNumber)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Confirmation sent for loan %s to %d recipients", loan.LoanNumber, len(recipients))
	return nil
}
