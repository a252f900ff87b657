package postgres

import (
	"context"
	"database/sql"
	"errors"

	"bikerental-backend/internal/domain"
	"bikerental-backend/internal/repository"
)

type settingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

const settingsColumns = `id, tenant_id, site_id, late_tolerance_minutes, hourly_late_rate_cents, daily_late_rate_cents,
	early_return_enabled, early_return_fee_type, early_return_fee_percent, early_return_fee_fixed_cents,
	max_rental_duration_days, min_reservation_hours_ahead`

// GetEffectiveSettings resolves with site-specific, then tenant-default, then
// application-default precedence.
func (r *settingsRepository) GetEffectiveSettings(ctx context.Context, tenantID int64, siteID *int64) (*domain.RentalSettings, error) {
	if siteID != nil {
		settings, err := r.lookup(ctx,
			`SELECT `+settingsColumns+` FROM rental_settings WHERE tenant_id = $1 AND site_id = $2`,
			tenantID, *siteID)
		if err != nil {
			return nil, err
		}
		if settings != nil {
			return settings, nil
		}
	}

	settings, err := r.lookup(ctx,
		`SELECT `+settingsColumns+` FROM rental_settings WHERE tenant_id = $1 AND site_id IS NULL`,
		tenantID)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		return settings, nil
	}

	return domain.DefaultRentalSettings(), nil
}

func (r *settingsRepository) lookup(ctx context.Context, query string, args ...interface{}) (*domain.RentalSettings, error) {
	var s domain.RentalSettings
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&s.ID, &s.TenantID, &s.SiteID, &s.LateToleranceMinutes, &s.HourlyLateRateCents, &s.DailyLateRateCents,
		&s.EarlyReturnEnabled, &s.EarlyReturnFeeType, &s.EarlyReturnFeePercent, &s.EarlyReturnFeeFixedCents,
		&s.MaxRentalDurationDays, &s.MinReservationHoursAhead,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
