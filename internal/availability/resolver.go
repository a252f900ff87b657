// Package availability computes calendar and physical availability of bikes
// by merging the two independent sources of blocking intervals: rentals and
// maintenance windows.
package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	"bikerental-backend/internal/domain"
	"bikerental-backend/internal/repository"
)

type Resolver struct {
	bikes       repository.BikeRepository
	rentals     repository.RentalRepository
	maintenance repository.MaintenanceRepository
}

func NewResolver(
	bikes repository.BikeRepository,
	rentals repository.RentalRepository,
	maintenance repository.MaintenanceRepository,
) *Resolver {
	return &Resolver{
		bikes:       bikes,
		rentals:     rentals,
		maintenance: maintenance,
	}
}

// Result is the outcome of a single-bike availability check.
type Result struct {
	Available bool                        `json:"available"`
	Reason    string                      `json:"reason,omitempty"`
	Conflicts []domain.UnavailabilitySlot `json:"conflicts"`
}

// IsAvailableForPeriod checks whether the bike is free of overlapping rentals
// and maintenance windows over [start, end). excludeRentalID lets a rental
// skip its own existing reservation when re-validating its dates.
func (r *Resolver) IsAvailableForPeriod(ctx context.Context, tenantID, bikeID int64, start, end time.Time, excludeRentalID *int64) (*Result, error) {
	if !start.Before(end) {
		return nil, &domain.InvalidTemporalOrderingError{Reason: "period start must be before period end"}
	}

	conflicts, err := r.collectConflicts(ctx, tenantID, bikeID, start, end, excludeRentalID)
	if err != nil {
		return nil, err
	}

	if len(conflicts) > 0 {
		return &Result{
			Available: false,
			Reason:    fmt.Sprintf("bike %d has %d conflicting slot(s) in the requested period", bikeID, len(conflicts)),
			Conflicts: conflicts,
		}, nil
	}
	return &Result{Available: true}, nil
}

// GetUnavailabilitySlots returns the merged, time-sorted list of blocking
// intervals for calendar rendering.
func (r *Resolver) GetUnavailabilitySlots(ctx context.Context, tenantID, bikeID int64, from, to time.Time) ([]domain.UnavailabilitySlot, error) {
	if !from.Before(to) {
		return nil, &domain.InvalidTemporalOrderingError{Reason: "period start must be before period end"}
	}
	slots, err := r.collectConflicts(ctx, tenantID, bikeID, from, to, nil)
	if err != nil {
		return nil, err
	}
	return slots, nil
}

// GetAvailableBikesForPeriod computes the set difference between physically
// available bikes matching the filters and bikes with any rental or
// maintenance conflict in the window. It is a bulk operation, not N
// single-bike checks.
func (r *Resolver) GetAvailableBikesForPeriod(ctx context.Context, tenantID int64, siteID *int64, start, end time.Time, categoryID, pricingClassID *int64) ([]domain.Bike, error) {
	if !start.Before(end) {
		return nil, &domain.InvalidTemporalOrderingError{Reason: "period start must be before period end"}
	}

	bikes, err := r.bikes.ListPhysicallyAvailable(ctx, tenantID, siteID, categoryID, pricingClassID)
	if err != nil {
		return nil, fmt.Errorf("listing bikes: %w", err)
	}

	rentalBlocked, err := r.rentals.ListConflictingBikeIDs(ctx, tenantID, start, end)
	if err != nil {
		return nil, fmt.Errorf("listing rental conflicts: %w", err)
	}
	maintBlocked, err := r.maintenance.ListConflictingBikeIDs(ctx, tenantID, start, end)
	if err != nil {
		return nil, fmt.Errorf("listing maintenance conflicts: %w", err)
	}

	blocked := make(map[int64]struct{}, len(rentalBlocked)+len(maintBlocked))
	for _, id := range rentalBlocked {
		blocked[id] = struct{}{}
	}
	for _, id := range maintBlocked {
		blocked[id] = struct{}{}
	}

	free := make([]domain.Bike, 0, len(bikes))
	for _, bike := range bikes {
		if _, ok := blocked[bike.ID]; !ok {
			free = append(free, bike)
		}
	}
	return free, nil
}

// IsPhysicallyAvailable checks only the bike's current discrete status, not
// its calendar. A bike can be calendar-free yet sitting in the workshop.
func (r *Resolver) IsPhysicallyAvailable(ctx context.Context, tenantID, bikeID int64) (bool, error) {
	bike, err := r.bikes.GetByID(ctx, tenantID, bikeID)
	if err != nil {
		return false, err
	}
	return !bike.Status.IsPhysicallyUnavailable(), nil
}

func (r *Resolver) collectConflicts(ctx context.Context, tenantID, bikeID int64, start, end time.Time, excludeRentalID *int64) ([]domain.UnavailabilitySlot, error) {
	rentals, err := r.rentals.ListBlockingByBike(ctx, tenantID, bikeID, start, end, excludeRentalID)
	if err != nil {
		return nil, fmt.Errorf("listing blocking rentals: %w", err)
	}
	records, err := r.maintenance.ListBlockingByBike(ctx, tenantID, bikeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("listing blocking maintenance: %w", err)
	}

	slots := make([]domain.UnavailabilitySlot, 0, len(rentals)+len(records))
	for _, rt := range rentals {
		endDate := rt.ExpectedReturnDate
		slots = append(slots, domain.UnavailabilitySlot{
			Source:   domain.SlotSourceRental,
			SourceID: rt.ID,
			BikeID:   bikeID,
			Start:    rt.StartDate,
			End:      &endDate,
			Reason:   string(rt.Status),
		})
	}
	for _, rec := range records {
		slots = append(slots, domain.UnavailabilitySlot{
			Source:   domain.SlotSourceMaintenance,
			SourceID: rec.ID,
			BikeID:   bikeID,
			Start:    rec.ScheduledAt,
			End:      rec.CompletedAt,
			Reason:   string(rec.Status),
		})
	}

	// The repositories already filter by overlap in SQL; re-apply the
	// half-open test so the boundary semantics hold regardless of backend.
	filtered := slots[:0]
	for _, slot := range slots {
		if slot.Overlaps(start, end) {
			filtered = append(filtered, slot)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Start.Before(filtered[j].Start)
	})
	return filtered, nil
}
