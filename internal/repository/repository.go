package repository

import (
	"context"
	"time"

	"bikerental-backend/internal/domain"
)

// Tenant scoping is explicit everywhere: every query takes the tenant id (and
// site id where relevant) as a parameter instead of reading ambient state.

type BikeRepository interface {
	GetByID(ctx context.Context, tenantID, id int64) (*domain.Bike, error)
	Update(ctx context.Context, bike *domain.Bike) error
	// ListPhysicallyAvailable returns bikes whose current discrete status is
	// AVAILABLE, optionally filtered by site, category and pricing class.
	ListPhysicallyAvailable(ctx context.Context, tenantID int64, siteID, categoryID, pricingClassID *int64) ([]domain.Bike, error)
}

type RentalRepository interface {
	GetByID(ctx context.Context, tenantID, id int64) (*domain.Rental, error)
	// CreateWithItems writes the aggregate and its children atomically. The
	// insert runs in a serializable transaction that re-checks interval
	// conflicts for every bike; it returns *domain.UnavailableError when a
	// concurrent reservation won the window.
	CreateWithItems(ctx context.Context, rental *domain.Rental) error
	Update(ctx context.Context, rental *domain.Rental) error
	// UpdateWithBikes persists a rental-status mutation, the bike-status
	// flips it triggered and any maintenance records it opened in one
	// transaction. Partial application is a correctness bug, not an
	// acceptable race.
	UpdateWithBikes(ctx context.Context, rental *domain.Rental, bikes []*domain.Bike, records []*domain.MaintenanceRecord) error
	UpdateItem(ctx context.Context, item *domain.RentalItem) error
	// ListBlockingByBike returns rentals in calendar-blocking statuses whose
	// [start, expected-return) interval overlaps [start, end), half-open.
	ListBlockingByBike(ctx context.Context, tenantID, bikeID int64, start, end time.Time, excludeRentalID *int64) ([]domain.Rental, error)
	// ListConflictingBikeIDs is the bulk variant used for set-difference
	// availability queries.
	ListConflictingBikeIDs(ctx context.Context, tenantID int64, start, end time.Time) ([]int64, error)
	ListByBike(ctx context.Context, tenantID, bikeID int64, statuses []domain.RentalStatus) ([]domain.Rental, error)
	List(ctx context.Context, tenantID int64, siteID *int64, status string, page, pageSize int32) ([]domain.Rental, int32, error)
	// ListLate returns ACTIVE rentals past their expected return date across
	// all tenants; used by the nightly reminder job.
	ListLate(ctx context.Context, asOf time.Time) ([]domain.Rental, error)
}

type MaintenanceRepository interface {
	Create(ctx context.Context, rec *domain.MaintenanceRecord) error
	// ListBlockingByBike returns records in blocking statuses whose
	// [scheduledAt, completedAt-or-open) interval overlaps [start, end).
	ListBlockingByBike(ctx context.Context, tenantID, bikeID int64, start, end time.Time) ([]domain.MaintenanceRecord, error)
	ListConflictingBikeIDs(ctx context.Context, tenantID int64, start, end time.Time) ([]int64, error)
}

type PricingRepository interface {
	// GetActiveRate resolves the unique active rate for the
	// (category, pricing class, duration) triple.
	GetActiveRate(ctx context.Context, tenantID, categoryID, pricingClassID int64, duration domain.RentalDuration) (*domain.PricingRate, error)
	// ListApplicableDiscounts returns active rules matching the category and
	// pricing class (or wildcards) whose minimum-day bound admits the given
	// day count, ordered by priority ascending.
	ListApplicableDiscounts(ctx context.Context, tenantID, categoryID, pricingClassID int64, days int32) ([]domain.DiscountRule, error)
}

type SettingsRepository interface {
	// GetEffectiveSettings resolves settings with site-specific, then
	// tenant-default, then application-default precedence.
	GetEffectiveSettings(ctx context.Context, tenantID int64, siteID *int64) (*domain.RentalSettings, error)
}

type CustomerRepository interface {
	GetByID(ctx context.Context, tenantID, id int64) (*domain.Customer, error)
}
