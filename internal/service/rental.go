package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bikerental-backend/internal/availability"
	"bikerental-backend/internal/domain"
	"bikerental-backend/internal/logger"
	"bikerental-backend/internal/pricing"
	"bikerental-backend/internal/repository"
)

// defaultCancellationReason is recorded when a rental is cancelled without an
// operator-supplied reason.
const defaultCancellationReason = "Status changed manually"

type rentalService struct {
	rentalRepo   repository.RentalRepository
	bikeRepo     repository.BikeRepository
	customerRepo repository.CustomerRepository
	settingsRepo repository.SettingsRepository
	resolver     *availability.Resolver
	pricer       *pricing.Engine
	calculator   *ReturnCalculator
	emailSvc     EmailService
	now          func() time.Time
}

func NewRentalService(
	rentalRepo repository.RentalRepository,
	bikeRepo repository.BikeRepository,
	customerRepo repository.CustomerRepository,
	settingsRepo repository.SettingsRepository,
	resolver *availability.Resolver,
	pricer *pricing.Engine,
	calculator *ReturnCalculator,
	emailSvc EmailService,
) RentalService {
	return &rentalService{
		rentalRepo:   rentalRepo,
		bikeRepo:     bikeRepo,
		customerRepo: customerRepo,
		settingsRepo: settingsRepo,
		resolver:     resolver,
		pricer:       pricer,
		calculator:   calculator,
		emailSvc:     emailSvc,
		now:          time.Now,
	}
}

func (s *rentalService) CreateReservation(ctx context.Context, in CreateReservationInput) (*domain.Rental, error) {
	if len(in.BikeIDs) == 0 {
		return nil, &domain.InvalidTemporalOrderingError{Reason: "a reservation needs at least one bike"}
	}
	if !in.StartDate.Before(in.ExpectedReturnDate) {
		return nil, &domain.InvalidTemporalOrderingError{Reason: "start date must be before the expected return date"}
	}

	days, err := pricing.ResolveDays(in.Duration, in.CustomDays)
	if err != nil {
		return nil, err
	}

	settings, err := s.settingsRepo.GetEffectiveSettings(ctx, in.TenantID, in.SiteID)
	if err != nil {
		return nil, fmt.Errorf("resolving settings: %w", err)
	}
	if settings.MaxRentalDurationDays > 0 && days > settings.MaxRentalDurationDays {
		return nil, &domain.ConfigurationViolationError{
			Setting: "max_rental_duration_days",
			Limit:   fmt.Sprintf("%d", settings.MaxRentalDurationDays),
			Reason:  fmt.Sprintf("rental of %d days exceeds the maximum duration", days),
		}
	}
	now := s.now()
	if settings.MinReservationHoursAhead > 0 {
		minStart := now.Add(time.Duration(settings.MinReservationHoursAhead) * time.Hour)
		if in.StartDate.Before(minStart) {
			return nil, &domain.ConfigurationViolationError{
				Setting: "min_reservation_hours_ahead",
				Limit:   fmt.Sprintf("%d", settings.MinReservationHoursAhead),
				Reason:  "reservation start is below the minimum advance-booking window",
			}
		}
	}

	if _, err := s.customerRepo.GetByID(ctx, in.TenantID, in.CustomerID); err != nil {
		return nil, err
	}

	rental := &domain.Rental{
		Reference:          uuid.NewString(),
		TenantID:           in.TenantID,
		SiteID:             in.SiteID,
		CustomerID:         in.CustomerID,
		StartDate:          in.StartDate,
		ExpectedReturnDate: in.ExpectedReturnDate,
		Duration:           in.Duration,
		CustomDays:         in.CustomDays,
		TaxRate:            in.TaxRate,
		DepositCents:       in.DepositCents,
		DepositStatus:      domain.DepositStatusHeld,
		Status:             initialStatus(in.StartDate, now),
	}

	for _, bikeID := range in.BikeIDs {
		bike, err := s.bikeRepo.GetByID(ctx, in.TenantID, bikeID)
		if err != nil {
			return nil, err
		}

		res, err := s.resolver.IsAvailableForPeriod(ctx, in.TenantID, bikeID, in.StartDate, in.ExpectedReturnDate, nil)
		if err != nil {
			return nil, err
		}
		if !res.Available {
			return nil, &domain.UnavailableError{BikeID: bikeID, Conflicts: res.Conflicts}
		}

		calc, err := s.pricer.Calculate(ctx, in.TenantID, bike.CategoryID, bike.PricingClassID, in.Duration, in.CustomDays)
		if err != nil {
			return nil, err
		}
		rental.Items = append(rental.Items, domain.RentalItem{
			BikeID:         bikeID,
			DailyRateCents: calc.PricePerDayCents,
			Quantity:       1,
		})
		rental.DiscountAmountCents += calc.DiscountTotalCents()
	}

	for _, eq := range in.Equipment {
		rental.Equipment = append(rental.Equipment, domain.RentalEquipment{
			Type:              eq.Type,
			Quantity:          eq.Quantity,
			PricePerUnitCents: eq.PricePerUnitCents,
		})
	}

	rental.RecalculateTotalAmount()

	// The repository re-checks interval conflicts inside a serializable
	// transaction, so two concurrent reservations for the same bike and
	// window cannot both succeed.
	if err := s.rentalRepo.CreateWithItems(ctx, rental); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "reservation created",
		"rental_id", rental.ID, "reference", rental.Reference,
		"tenant_id", rental.TenantID, "status", rental.Status, "bikes", len(rental.Items))

	s.notifyReservation(ctx, rental)
	return rental, nil
}

// initialStatus: a booking starting today is immediately ready for check-in.
func initialStatus(start, now time.Time) domain.RentalStatus {
	sy, sm, sd := start.UTC().Date()
	ny, nm, nd := now.UTC().Date()
	if sy == ny && sm == nm && sd == nd {
		return domain.RentalStatusPending
	}
	return domain.RentalStatusReserved
}

func (s *rentalService) ChangeRentalStatus(ctx context.Context, tenantID, rentalID int64, to domain.RentalStatus, reason string) (*StatusChangeResult, error) {
	rental, err := s.rentalRepo.GetByID(ctx, tenantID, rentalID)
	if err != nil {
		return nil, err
	}

	if rental.Status == to {
		return &StatusChangeResult{
			Rental:  rental,
			Message: fmt.Sprintf("rental is already %s; nothing to do", to),
		}, nil
	}

	bikes, records, err := s.applyTransition(ctx, rental, to, reason)
	if err != nil {
		return nil, err
	}
	if err := s.rentalRepo.UpdateWithBikes(ctx, rental, bikes, records); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "rental status changed",
		"rental_id", rental.ID, "tenant_id", tenantID, "status", to, "bikes_touched", len(bikes))

	if to == domain.RentalStatusCancelled {
		s.notifyCancellation(ctx, rental)
	}
	return &StatusChangeResult{Rental: rental}, nil
}

// applyTransition validates the transition and performs its entry actions.
// It returns the bikes whose status changed and the maintenance records to
// open; the caller persists both in the same transaction as the rental. Bike
// status only changes at the ACTIVE entry and exit boundaries.
func (s *rentalService) applyTransition(ctx context.Context, rental *domain.Rental, to domain.RentalStatus, reason string) ([]*domain.Bike, []*domain.MaintenanceRecord, error) {
	from := rental.Status
	if !from.CanTransitionTo(to) {
		return nil, nil, &domain.InvalidTransitionError{From: from, To: to}
	}

	var (
		bikes   []*domain.Bike
		records []*domain.MaintenanceRecord
	)
	switch to {
	case domain.RentalStatusPending:
		// Confirming has no side effects beyond the status itself.

	case domain.RentalStatusActive:
		// Starting from RESERVED implicitly confirms first; neither RESERVED
		// nor PENDING block the bike physically, so the flip happens here.
		if !from.BlocksBikePhysically() {
			for i := range rental.Items {
				bike, err := s.bikeRepo.GetByID(ctx, rental.TenantID, rental.Items[i].BikeID)
				if err != nil {
					return nil, nil, err
				}
				bike.MarkAsRented()
				bikes = append(bikes, bike)
			}
		}

	case domain.RentalStatusCompleted:
		if rental.ActualReturnDate == nil {
			t := s.now()
			rental.ActualReturnDate = &t
		}
		if rental.DepositRetainedCents == nil {
			rental.ApplyDepositRetention(0)
		}
		released, opened, err := s.releaseBikes(ctx, rental, true)
		if err != nil {
			return nil, nil, err
		}
		bikes, records = released, opened

	case domain.RentalStatusCancelled:
		if reason == "" {
			reason = defaultCancellationReason
		}
		rental.CancellationReason = &reason
		if from == domain.RentalStatusActive {
			released, _, err := s.releaseBikes(ctx, rental, false)
			if err != nil {
				return nil, nil, err
			}
			bikes = released
		}
	}

	rental.Status = to
	return bikes, records, nil
}

// releaseBikes returns every item bike to the available pool. When honoring
// check-out conditions, a bike whose returned condition requires maintenance
// is routed to the workshop instead, and a maintenance record is prepared for
// it. The records are handed back unpersisted so they commit in the same
// transaction as the rental and bike updates.
func (s *rentalService) releaseBikes(ctx context.Context, rental *domain.Rental, honorConditions bool) ([]*domain.Bike, []*domain.MaintenanceRecord, error) {
	bikes := make([]*domain.Bike, 0, len(rental.Items))
	var records []*domain.MaintenanceRecord
	for i := range rental.Items {
		item := &rental.Items[i]
		bike, err := s.bikeRepo.GetByID(ctx, rental.TenantID, item.BikeID)
		if err != nil {
			return nil, nil, err
		}

		target := domain.BikeStatusAvailable
		if honorConditions && item.CheckOut != nil {
			target = item.CheckOut.Condition.ReleaseStatus()
		}
		bike.ChangeStatus(target)
		bikes = append(bikes, bike)

		if target == domain.BikeStatusMaintenance {
			records = append(records, &domain.MaintenanceRecord{
				TenantID:    rental.TenantID,
				BikeID:      bike.ID,
				Title:       "Post-rental damage inspection",
				Description: item.CheckOut.DamageDescription,
				ScheduledAt: s.now(),
				Status:      domain.MaintenanceStatusTodo,
			})
		}
	}
	return bikes, records, nil
}

func (s *rentalService) CheckInRental(ctx context.Context, tenantID, rentalID int64, items []CheckInItemInput) (*domain.Rental, error) {
	rental, err := s.rentalRepo.GetByID(ctx, tenantID, rentalID)
	if err != nil {
		return nil, err
	}

	// A same-day reservation may still be RESERVED when the customer walks
	// in; confirm it first, then record the fitting data.
	if rental.Status == domain.RentalStatusReserved {
		rental.Status = domain.RentalStatusPending
	}
	if !rental.Status.CanStart() {
		return nil, &domain.InvalidTransitionError{From: rental.Status, To: domain.RentalStatusActive}
	}

	for _, in := range items {
		item := rental.ItemForBike(in.BikeID)
		if item == nil {
			return nil, &domain.BikeNotInRentalError{RentalID: rentalID, BikeID: in.BikeID}
		}
		data := in.Data
		item.CheckIn = &data
	}

	var bikes []*domain.Bike
	if rental.AllItemsCheckedIn() {
		bikes, _, err = s.applyTransition(ctx, rental, domain.RentalStatusActive, "")
		if err != nil {
			return nil, err
		}
	}

	if err := s.rentalRepo.UpdateWithBikes(ctx, rental, bikes, nil); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "rental checked in",
		"rental_id", rental.ID, "tenant_id", tenantID, "status", rental.Status)
	return rental, nil
}

func (s *rentalService) CheckOutRental(ctx context.Context, tenantID, rentalID int64, in CheckOutInput) (*CheckOutResult, error) {
	rental, err := s.rentalRepo.GetByID(ctx, tenantID, rentalID)
	if err != nil {
		return nil, err
	}
	if rental.Status != domain.RentalStatusActive {
		return nil, &domain.InvalidTransitionError{From: rental.Status, To: domain.RentalStatusCompleted}
	}

	if err := s.recordCheckOutData(rental, in.Items); err != nil {
		return nil, err
	}
	if missing := rental.UncheckedOutBikeIDs(); len(missing) > 0 {
		return nil, &domain.IncompleteCheckOutError{RentalID: rental.ID, MissingBikeIDs: missing}
	}

	actual := s.now()
	rental.ActualReturnDate = &actual

	lateFee, err := s.calculator.LateFee(ctx, rental, actual, in.LateFeeRate)
	if err != nil {
		return nil, err
	}

	rental.ApplyDepositRetention(in.DepositRetainedCents)

	bikes, records, err := s.applyTransition(ctx, rental, domain.RentalStatusCompleted, "")
	if err != nil {
		return nil, err
	}
	if err := s.rentalRepo.UpdateWithBikes(ctx, rental, bikes, records); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "rental checked out",
		"rental_id", rental.ID, "tenant_id", tenantID,
		"late_fee_cents", lateFee.FeeCents, "deposit_status", rental.DepositStatus)

	s.notifyCheckout(ctx, rental, lateFee.FeeCents)
	return &CheckOutResult{Rental: rental, LateFee: lateFee}, nil
}

func (s *rentalService) EarlyReturn(ctx context.Context, tenantID, rentalID int64, in CheckOutInput) (*EarlyReturnOutcome, error) {
	rental, err := s.rentalRepo.GetByID(ctx, tenantID, rentalID)
	if err != nil {
		return nil, err
	}
	if rental.Status != domain.RentalStatusActive {
		return nil, &domain.InvalidTransitionError{From: rental.Status, To: domain.RentalStatusCompleted}
	}

	actual := s.now()
	settlement, err := s.calculator.EarlyReturn(ctx, rental, actual)
	if err != nil {
		return nil, err
	}

	if err := s.recordCheckOutData(rental, in.Items); err != nil {
		return nil, err
	}
	if missing := rental.UncheckedOutBikeIDs(); len(missing) > 0 {
		return nil, &domain.IncompleteCheckOutError{RentalID: rental.ID, MissingBikeIDs: missing}
	}
	rental.ActualReturnDate = &actual
	rental.ApplyDepositRetention(in.DepositRetainedCents)

	bikes, records, err := s.applyTransition(ctx, rental, domain.RentalStatusCompleted, "")
	if err != nil {
		return nil, err
	}
	if err := s.rentalRepo.UpdateWithBikes(ctx, rental, bikes, records); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "rental returned early",
		"rental_id", rental.ID, "tenant_id", tenantID,
		"unused_days", settlement.UnusedDays, "refund_cents", settlement.RefundAmountCents)

	s.notifyCheckout(ctx, rental, 0)
	return &EarlyReturnOutcome{Rental: rental, Settlement: settlement}, nil
}

func (s *rentalService) recordCheckOutData(rental *domain.Rental, items []CheckOutItemInput) error {
	for _, in := range items {
		item := rental.ItemForBike(in.BikeID)
		if item == nil {
			return &domain.BikeNotInRentalError{RentalID: rental.ID, BikeID: in.BikeID}
		}
		item.CheckOut = &domain.CheckOutData{
			Condition:         in.Condition,
			DamageDescription: in.DamageDescription,
			DamagePhotos:      in.DamagePhotos,
		}
	}
	return nil
}

func (s *rentalService) GetRentalDetail(ctx context.Context, tenantID, rentalID int64) (*RentalDetail, error) {
	rental, err := s.rentalRepo.GetByID(ctx, tenantID, rentalID)
	if err != nil {
		return nil, err
	}
	detail := &RentalDetail{Rental: rental}
	// Customer enrichment is best-effort; the rental stands on its own.
	if customer, err := s.customerRepo.GetByID(ctx, tenantID, rental.CustomerID); err == nil {
		detail.Customer = customer
	}
	return detail, nil
}

func (s *rentalService) GetBikeRentals(ctx context.Context, tenantID, bikeID int64, statuses []domain.RentalStatus) ([]domain.Rental, error) {
	return s.rentalRepo.ListByBike(ctx, tenantID, bikeID, statuses)
}

func (s *rentalService) ListRentals(ctx context.Context, tenantID int64, siteID *int64, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	return s.rentalRepo.List(ctx, tenantID, siteID, status, page, pageSize)
}

func (s *rentalService) notifyReservation(ctx context.Context, rental *domain.Rental) {
	if s.emailSvc == nil {
		return
	}
	customer, err := s.customerRepo.GetByID(ctx, rental.TenantID, rental.CustomerID)
	if err != nil {
		return
	}
	_ = s.emailSvc.SendReservationConfirmation(ctx, customer.Email, customer.FullName(), rental.Reference, rental.StartDate, rental.TotalWithTaxCents)
}

func (s *rentalService) notifyCancellation(ctx context.Context, rental *domain.Rental) {
	if s.emailSvc == nil {
		return
	}
	customer, err := s.customerRepo.GetByID(ctx, rental.TenantID, rental.CustomerID)
	if err != nil {
		return
	}
	reason := ""
	if rental.CancellationReason != nil {
		reason = *rental.CancellationReason
	}
	_ = s.emailSvc.SendCancellationNotice(ctx, customer.Email, customer.FullName(), rental.Reference, reason)
}

func (s *rentalService) notifyCheckout(ctx context.Context, rental *domain.Rental, lateFeeCents int64) {
	if s.emailSvc == nil {
		return
	}
	customer, err := s.customerRepo.GetByID(ctx, rental.TenantID, rental.CustomerID)
	if err != nil {
		return
	}
	_ = s.emailSvc.SendCheckoutReceipt(ctx, customer.Email, customer.FullName(), rental.Reference, rental.TotalWithTaxCents, lateFeeCents)
}
