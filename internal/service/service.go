package service

import (
	"context"
	"time"

	"bikerental-backend/internal/domain"
)

// CreateReservationInput is the typed command for booking one or more bikes.
// Tenant and site scope always arrive explicitly from the caller.
type CreateReservationInput struct {
	TenantID           int64
	SiteID             *int64
	CustomerID         int64
	StartDate          time.Time
	ExpectedReturnDate time.Time
	Duration           domain.RentalDuration
	CustomDays         int32
	TaxRate            float64
	DepositCents       int64
	BikeIDs            []int64
	Equipment          []EquipmentInput
}

type EquipmentInput struct {
	Type              domain.EquipmentType
	Quantity          int32
	PricePerUnitCents int64
}

// StatusChangeResult reports the rental after a transition. Message is set
// when the request was an idempotent no-op (target equals current status).
type StatusChangeResult struct {
	Rental  *domain.Rental
	Message string
}

type CheckInItemInput struct {
	BikeID int64
	Data   domain.CheckInData
}

type CheckOutItemInput struct {
	BikeID            int64
	Condition         domain.ReturnCondition
	DamageDescription string
	DamagePhotos      []string
}

type CheckOutInput struct {
	Items []CheckOutItemInput
	// DepositRetainedCents is the condition-driven retention decided by the
	// operator; it is orthogonal to late/early fee math.
	DepositRetainedCents int64
	// LateFeeRate selects which configured rate applies when the return is
	// late. Defaults to hourly.
	LateFeeRate LateFeeRateKind
}

// CheckOutResult carries the completed rental plus the settlement adjustment
// computed at the counter. The rental's money fields stay derived from its
// items; the late fee is reported alongside, not folded into them.
type CheckOutResult struct {
	Rental  *domain.Rental
	LateFee *LateFeeResult
}

type EarlyReturnOutcome struct {
	Rental     *domain.Rental
	Settlement *EarlyReturnResult
}

type RentalDetail struct {
	Rental   *domain.Rental
	Customer *domain.Customer
}

type RentalService interface {
	CreateReservation(ctx context.Context, in CreateReservationInput) (*domain.Rental, error)
	ChangeRentalStatus(ctx context.Context, tenantID, rentalID int64, to domain.RentalStatus, reason string) (*StatusChangeResult, error)
	CheckInRental(ctx context.Context, tenantID, rentalID int64, items []CheckInItemInput) (*domain.Rental, error)
	CheckOutRental(ctx context.Context, tenantID, rentalID int64, in CheckOutInput) (*CheckOutResult, error)
	EarlyReturn(ctx context.Context, tenantID, rentalID int64, in CheckOutInput) (*EarlyReturnOutcome, error)
	GetRentalDetail(ctx context.Context, tenantID, rentalID int64) (*RentalDetail, error)
	GetBikeRentals(ctx context.Context, tenantID, bikeID int64, statuses []domain.RentalStatus) ([]domain.Rental, error)
	ListRentals(ctx context.Context, tenantID int64, siteID *int64, status string, page, pageSize int32) ([]domain.Rental, int32, error)
}

type EmailService interface {
	SendReservationConfirmation(ctx context.Context, email, customerName, reference string, startDate time.Time, totalCents int64) error
	SendCancellationNotice(ctx context.Context, email, customerName, reference, reason string) error
	SendCheckoutReceipt(ctx context.Context, email, customerName, reference string, totalWithTaxCents, lateFeeCents int64) error
	SendLateReturnReminder(ctx context.Context, email, customerName, reference string, expectedReturn time.Time) error
}
