package service

import (
	"context"
	"fmt"
	"time"

	"elitepay/internal/core/domain"
	"elitepay/internal/core/ports"

	"github.com/rs/zerolog"
)

// receiptRetryIntervals defines the delivery retry schedule.
var receiptRetryIntervals = []time.Duration{
	15 * time.Second,
	time.Minute,
	5 * time.Minute,
}

// ReceiptService implements ports.Notifier by emailing transaction
// receipts. Delivery happens on a detached goroutine; the caller's
// commit is never gated on it.
type ReceiptService struct {
	mailer ports.Mailer
	log    zerolog.Logger
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService(mailer ports.Mailer, log zerolog.Logger) *ReceiptService {
	return &ReceiptService{mailer: mailer, log: log}
}

// Notify queues a receipt email. Cards without a registered email are
// skipped silently.
func (s *ReceiptService) Notify(_ context.Context, receipt ports.Receipt) error {
	if receipt.Email == "" {
		s.log.Debug().Msg("receipt: no email registered, skipping")
		return nil
	}

	subject, body := renderReceipt(receipt)

	// Detach from the request: delivery retries outlive the HTTP call
	// and must never block or fail the committed transaction.
	go s.deliverWithRetries(receipt.Email, subject, body)

	return nil
}

// deliverWithRetries attempts delivery, backing off between attempts.
func (s *ReceiptService) deliverWithRetries(to, subject, body string) {
	for attempt := 0; attempt <= len(receiptRetryIntervals); attempt++ {
		if attempt > 0 {
			time.Sleep(receiptRetryIntervals[attempt-1])
		}

		err := s.mailer.Send(context.Background(), to, subject, body)
		if err == nil {
			s.log.Info().Str("to", to).Int("attempt", attempt+1).Msg("receipt delivered")
			return
		}
		s.log.Warn().Err(err).Str("to", to).Int("attempt", attempt+1).Msg("receipt delivery failed")
	}

	s.log.Error().Str("to", to).Msg("receipt: all delivery attempts exhausted")
}

// renderReceipt produces the subject and plain-text body for a receipt.
// Wording follows the product's existing notification copy.
func renderReceipt(r ports.Receipt) (subject, body string) {
	switch r.Kind {
	case domain.TransactionTypePayment:
		subject = "Payment Successful"
		body = fmt.Sprintf(
			"You paid ₹%s. Platform fee: ₹%s. Total deducted: ₹%s. New balance: ₹%s",
			r.Amount.StringFixed(2),
			r.Fee.StringFixed(2),
			domain.Round2(r.Amount.Add(r.Fee)).StringFixed(2),
			r.NewBalance.StringFixed(2),
		)
		if r.PreviousBalance != nil {
			body += fmt.Sprintf(" (previous balance: ₹%s)", r.PreviousBalance.StringFixed(2))
		}
	case domain.TransactionTypeEthConversion:
		subject = "Reward Credit Received"
		body = fmt.Sprintf(
			"₹%s has been credited to your wallet from your reward conversion. New balance: ₹%s",
			r.Amount.StringFixed(2),
			r.NewBalance.StringFixed(2),
		)
	default:
		subject = "Wallet Top-up Successful"
		body = fmt.Sprintf(
			"₹%s has been added to your wallet. New balance: ₹%s",
			r.Amount.StringFixed(2),
			r.NewBalance.StringFixed(2),
		)
	}
	return subject, body
}
