package domain

type EarlyReturnFeeType string

const (
	EarlyReturnFeePercentage EarlyReturnFeeType = "percentage"
	EarlyReturnFeeFixed      EarlyReturnFeeType = "fixed"
	EarlyReturnFeeNone       EarlyReturnFeeType = "none"
)

// RentalSettings is per-tenant or per-site configuration. A nil TenantID and
// SiteID marks the application default; resolution precedence is
// site-specific, then tenant default, then application default.
type RentalSettings struct {
	ID                       int64              `json:"id"`
	TenantID                 *int64             `json:"tenant_id,omitempty"`
	SiteID                   *int64             `json:"site_id,omitempty"`
	LateToleranceMinutes     int32              `json:"late_tolerance_minutes"`
	HourlyLateRateCents      int64              `json:"hourly_late_rate_cents"`
	DailyLateRateCents       int64              `json:"daily_late_rate_cents"`
	EarlyReturnEnabled       bool               `json:"early_return_enabled"`
	EarlyReturnFeeType       EarlyReturnFeeType `json:"early_return_fee_type"`
	EarlyReturnFeePercent    float64            `json:"early_return_fee_percent"`
	EarlyReturnFeeFixedCents int64              `json:"early_return_fee_fixed_cents"`
	MaxRentalDurationDays    int32              `json:"max_rental_duration_days"`
	MinReservationHoursAhead int32              `json:"min_reservation_hours_ahead"`
}

// DefaultRentalSettings is the application-level fallback used when neither a
// site nor a tenant override exists.
func DefaultRentalSettings() *RentalSettings {
	return &RentalSettings{
		LateToleranceMinutes:     30,
		HourlyLateRateCents:      500,
		DailyLateRateCents:       2500,
		EarlyReturnEnabled:       true,
		EarlyReturnFeeType:       EarlyReturnFeeNone,
		MaxRentalDurationDays:    30,
		MinReservationHoursAhead: 0,
	}
}
