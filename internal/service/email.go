package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"bikerental-backend/internal/logger"
)

type emailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &emailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *emailService) SendReservationConfirmation(ctx context.Context, email, customerName, reference string, startDate time.Time, totalCents int64) error {
	subject := fmt.Sprintf("Your bike reservation %s is confirmed", reference)
	body := fmt.Sprintf(
		"Hello %s,\n\nYour reservation %s is confirmed for %s.\nTotal (incl. tax): %s.\n\nSee you at the shop!",
		customerName, reference, startDate.Format("Monday, 2 January 2006"), formatCents(totalCents))
	return s.send(ctx, email, customerName, subject, body)
}

func (s *emailService) SendCancellationNotice(ctx context.Context, email, customerName, reference, reason string) error {
	subject := fmt.Sprintf("Reservation %s cancelled", reference)
	body := fmt.Sprintf("Hello %s,\n\nYour reservation %s has been cancelled.", customerName, reference)
	if reason != "" {
		body += fmt.Sprintf("\nReason: %s", reason)
	}
	return s.send(ctx, email, customerName, subject, body)
}

func (s *emailService) SendCheckoutReceipt(ctx context.Context, email, customerName, reference string, totalWithTaxCents, lateFeeCents int64) error {
	subject := fmt.Sprintf("Receipt for rental %s", reference)
	body := fmt.Sprintf("Hello %s,\n\nThanks for riding with us.\nRental total (incl. tax): %s.",
		customerName, formatCents(totalWithTaxCents))
	if lateFeeCents > 0 {
		body += fmt.Sprintf("\nLate return fee: %s.", formatCents(lateFeeCents))
	}
	return s.send(ctx, email, customerName, subject, body)
}

func (s *emailService) SendLateReturnReminder(ctx context.Context, email, customerName, reference string, expectedReturn time.Time) error {
	subject := fmt.Sprintf("Rental %s is past its return date", reference)
	body := fmt.Sprintf(
		"Hello %s,\n\nYour rental %s was due back on %s. Please return the bike(s) as soon as possible to avoid further late fees.",
		customerName, reference, expectedReturn.Format("Monday, 2 January 2006 15:04"))
	return s.send(ctx, email, customerName, subject, body)
}

func (s *emailService) send(ctx context.Context, to, toName, subject, plainText string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}

	logger.DebugContext(ctx, "email sent", "to", to, "subject", subject)
	return nil
}

func formatCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
