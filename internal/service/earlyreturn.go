package service

import (
	"context"
	"math"
	"time"

	"bikerental-backend/internal/domain"
	"bikerental-backend/internal/repository"
)

type LateFeeRateKind string

const (
	LateFeeRateHourly LateFeeRateKind = "hourly"
	LateFeeRateDaily  LateFeeRateKind = "daily"
)

// LateFeeResult describes the penalty for a checkout after the expected
// return date.
type LateFeeResult struct {
	MinutesLate int64 `json:"minutes_late"`
	HoursLate   int64 `json:"hours_late"`
	DaysLate    int64 `json:"days_late"`
	FeeCents    int64 `json:"fee_cents"`
}

// EarlyReturnResult describes the refund for a checkout strictly before the
// expected return date.
type EarlyReturnResult struct {
	UnusedDays        int32 `json:"unused_days"`
	UnusedAmountCents int64 `json:"unused_amount_cents"`
	FeeAmountCents    int64 `json:"fee_amount_cents"`
	RefundAmountCents int64 `json:"refund_amount_cents"`
}

// ReturnCalculator computes late penalties and early-return refunds. The two
// adjustments are distinct code paths and are never conflated; deposit
// handling is orthogonal to both.
type ReturnCalculator struct {
	settings repository.SettingsRepository
}

func NewReturnCalculator(settings repository.SettingsRepository) *ReturnCalculator {
	return &ReturnCalculator{settings: settings}
}

// LateFee computes the penalty for an actual return after the expected
// return date using the configured hourly or daily rate. Returns within the
// configured tolerance window, or not late at all, incur no fee.
func (c *ReturnCalculator) LateFee(ctx context.Context, rental *domain.Rental, actualReturn time.Time, kind LateFeeRateKind) (*LateFeeResult, error) {
	settings, err := c.settings.GetEffectiveSettings(ctx, rental.TenantID, rental.SiteID)
	if err != nil {
		return nil, err
	}

	result := &LateFeeResult{}
	if !actualReturn.After(rental.ExpectedReturnDate) {
		return result, nil
	}

	lateBy := actualReturn.Sub(rental.ExpectedReturnDate)
	result.MinutesLate = int64(lateBy.Minutes())
	result.HoursLate = int64(math.Ceil(lateBy.Hours()))
	result.DaysLate = int64(math.Ceil(lateBy.Hours() / 24))

	if result.MinutesLate <= int64(settings.LateToleranceMinutes) {
		return result, nil
	}

	switch kind {
	case LateFeeRateDaily:
		result.FeeCents = result.DaysLate * settings.DailyLateRateCents
	default:
		result.FeeCents = result.HoursLate * settings.HourlyLateRateCents
	}
	return result, nil
}

// EarlyReturn computes the refund for an actual return strictly before the
// expected return date: a proportional credit for the whole unused days,
// minus the configured early-return fee, floored at zero. A return on or
// after the expected date is a usage error directing the caller to the
// regular checkout path, not a zero-refund result.
func (c *ReturnCalculator) EarlyReturn(ctx context.Context, rental *domain.Rental, actualReturn time.Time) (*EarlyReturnResult, error) {
	if !actualReturn.Before(rental.ExpectedReturnDate) {
		return nil, domain.ErrUseRegularCheckout(actualReturn, rental.ExpectedReturnDate)
	}

	settings, err := c.settings.GetEffectiveSettings(ctx, rental.TenantID, rental.SiteID)
	if err != nil {
		return nil, err
	}
	if !settings.EarlyReturnEnabled {
		return nil, &domain.ConfigurationViolationError{
			Setting: "early_return_enabled",
			Limit:   "false",
			Reason:  "early returns are disabled for this tenant",
		}
	}

	totalDays := rental.NumberOfDays()
	unusedDays := int32(rental.ExpectedReturnDate.Sub(actualReturn).Hours() / 24)
	if unusedDays > totalDays {
		unusedDays = totalDays
	}

	result := &EarlyReturnResult{UnusedDays: unusedDays}
	if unusedDays == 0 || totalDays == 0 {
		return result, nil
	}

	result.UnusedAmountCents = int64(math.Round(
		float64(rental.TotalAmountCents) * float64(unusedDays) / float64(totalDays)))

	switch settings.EarlyReturnFeeType {
	case domain.EarlyReturnFeePercentage:
		result.FeeAmountCents = int64(math.Round(
			float64(result.UnusedAmountCents) * settings.EarlyReturnFeePercent / 100))
	case domain.EarlyReturnFeeFixed:
		result.FeeAmountCents = settings.EarlyReturnFeeFixedCents
	}

	refund := result.UnusedAmountCents - result.FeeAmountCents
	if refund < 0 {
		refund = 0
	}
	result.RefundAmountCents = refund
	return result, nil
}
