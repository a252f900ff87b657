package jobs

import (
	"context"
	"time"

	"bikerental-backend/internal/domain"
	"bikerental-backend/internal/logger"
)

// SendLateReturnReminders emails every customer whose ACTIVE rental is past
// its expected return date. Lateness in listings and reminders is a pure
// date comparison; the configured tolerance only affects fee calculation.
func (jr *JobRunner) SendLateReturnReminders() {
	jr.runWithRecovery("SendLateReturnReminders", func() {
		ctx := context.Background()

		late, err := jr.store.RentalRepository.ListLate(ctx, time.Now())
		if err != nil {
			logger.Error("Failed to list late rentals", "error", err)
			return
		}

		sent := 0
		for _, rental := range late {
			customer, err := jr.store.CustomerRepository.GetByID(ctx, rental.TenantID, rental.CustomerID)
			if err != nil {
				logger.Warn("Skipping late reminder; customer lookup failed",
					"rental_id", rental.ID, "customer_id", rental.CustomerID, "error", err)
				continue
			}
			err = jr.emailSvc.SendLateReturnReminder(ctx, customer.Email, customer.FullName(), rental.Reference, rental.ExpectedReturnDate)
			if err != nil {
				logger.Error("Failed to send late reminder", "rental_id", rental.ID, "error", err)
				continue
			}
			sent++
		}

		logger.Info("Late return reminders sent", "late_rentals", len(late), "emails_sent", sent)
	})
}

// CancelExpiredReservations cancels RESERVED rentals whose start date passed
// more than a day ago without a check-in. The cancellation goes through the
// state machine so the usual bookkeeping applies.
func (jr *JobRunner) CancelExpiredReservations() {
	jr.runWithRecovery("CancelExpiredReservations", func() {
		ctx := context.Background()
		cutoff := time.Now().Add(-24 * time.Hour)

		query := `SELECT id, tenant_id FROM rentals WHERE status = $1 AND start_date < $2`
		rows, err := jr.db.QueryContext(ctx, query, domain.RentalStatusReserved, cutoff)
		if err != nil {
			logger.Error("Failed to list expired reservations", "error", err)
			return
		}
		defer rows.Close()

		type ref struct{ id, tenantID int64 }
		var expired []ref
		for rows.Next() {
			var r ref
			if err := rows.Scan(&r.id, &r.tenantID); err != nil {
				logger.Error("Failed to scan expired reservation", "error", err)
				continue
			}
			expired = append(expired, r)
		}
		if err := rows.Err(); err != nil {
			logger.Error("Error iterating expired reservations", "error", err)
			return
		}

		cancelled := 0
		for _, r := range expired {
			_, err := jr.rentals.ChangeRentalStatus(ctx, r.tenantID, r.id, domain.RentalStatusCancelled, "Reservation expired without check-in")
			if err != nil {
				logger.Error("Failed to cancel expired reservation", "rental_id", r.id, "error", err)
				continue
			}
			cancelled++
		}

		logger.Info("Expired reservations cancelled", "found", len(expired), "cancelled", cancelled)
	})
}
