package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"bikerental-backend/internal/domain"
)

func calculatorWithSettings(settings *domain.RentalSettings) *ReturnCalculator {
	repo := new(MockSettingsRepo)
	repo.On("GetEffectiveSettings", mock.Anything, mock.Anything, mock.Anything).Return(settings, nil)
	return NewReturnCalculator(repo)
}

func TestReturnCalculator_EarlyReturn(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	// 300.00 over six days, returned two days early with a 10% fee:
	// unused 100.00, fee 10.00, refund 90.00.
	rental := &domain.Rental{
		TenantID:           1,
		StartDate:          start,
		ExpectedReturnDate: start.AddDate(0, 0, 6),
		Duration:           domain.DurationCustom,
		CustomDays:         6,
		TotalAmountCents:   30000,
		Status:             domain.RentalStatusActive,
	}

	t.Run("percentage fee", func(t *testing.T) {
		calc := calculatorWithSettings(&domain.RentalSettings{
			EarlyReturnEnabled:    true,
			EarlyReturnFeeType:    domain.EarlyReturnFeePercentage,
			EarlyReturnFeePercent: 10,
		})

		res, err := calc.EarlyReturn(ctx, rental, start.AddDate(0, 0, 4))
		assert.NoError(t, err)
		assert.Equal(t, int32(2), res.UnusedDays)
		assert.Equal(t, int64(10000), res.UnusedAmountCents)
		assert.Equal(t, int64(1000), res.FeeAmountCents)
		assert.Equal(t, int64(9000), res.RefundAmountCents)
	})

	t.Run("fixed fee", func(t *testing.T) {
		calc := calculatorWithSettings(&domain.RentalSettings{
			EarlyReturnEnabled:       true,
			EarlyReturnFeeType:       domain.EarlyReturnFeeFixed,
			EarlyReturnFeeFixedCents: 2500,
		})

		res, err := calc.EarlyReturn(ctx, rental, start.AddDate(0, 0, 4))
		assert.NoError(t, err)
		assert.Equal(t, int64(2500), res.FeeAmountCents)
		assert.Equal(t, int64(7500), res.RefundAmountCents)
	})

	t.Run("no fee", func(t *testing.T) {
		calc := calculatorWithSettings(&domain.RentalSettings{
			EarlyReturnEnabled: true,
			EarlyReturnFeeType: domain.EarlyReturnFeeNone,
		})

		res, err := calc.EarlyReturn(ctx, rental, start.AddDate(0, 0, 4))
		assert.NoError(t, err)
		assert.Equal(t, int64(0), res.FeeAmountCents)
		assert.Equal(t, int64(10000), res.RefundAmountCents)
	})

	t.Run("fee exceeding the unused amount floors the refund at zero", func(t *testing.T) {
		calc := calculatorWithSettings(&domain.RentalSettings{
			EarlyReturnEnabled:       true,
			EarlyReturnFeeType:       domain.EarlyReturnFeeFixed,
			EarlyReturnFeeFixedCents: 999999,
		})

		res, err := calc.EarlyReturn(ctx, rental, start.AddDate(0, 0, 4))
		assert.NoError(t, err)
		assert.Equal(t, int64(0), res.RefundAmountCents)
	})

	t.Run("partial day early yields zero unused days and zero refund", func(t *testing.T) {
		calc := calculatorWithSettings(&domain.RentalSettings{
			EarlyReturnEnabled:    true,
			EarlyReturnFeeType:    domain.EarlyReturnFeePercentage,
			EarlyReturnFeePercent: 10,
		})

		res, err := calc.EarlyReturn(ctx, rental, rental.ExpectedReturnDate.Add(-6*time.Hour))
		assert.NoError(t, err)
		assert.Equal(t, int32(0), res.UnusedDays)
		assert.Equal(t, int64(0), res.RefundAmountCents)
	})

	t.Run("return on the expected date directs to regular checkout", func(t *testing.T) {
		calc := calculatorWithSettings(&domain.RentalSettings{EarlyReturnEnabled: true})

		_, err := calc.EarlyReturn(ctx, rental, rental.ExpectedReturnDate)
		var orderErr *domain.InvalidTemporalOrderingError
		assert.ErrorAs(t, err, &orderErr)
		assert.Contains(t, err.Error(), "use regular checkout")
	})

	t.Run("disabled by configuration", func(t *testing.T) {
		calc := calculatorWithSettings(&domain.RentalSettings{EarlyReturnEnabled: false})

		_, err := calc.EarlyReturn(ctx, rental, start.AddDate(0, 0, 4))
		var cfgErr *domain.ConfigurationViolationError
		assert.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "early_return_enabled", cfgErr.Setting)
	})
}

func TestReturnCalculator_LateFee(t *testing.T) {
	ctx := context.Background()
	expected := time.Date(2026, 5, 7, 18, 0, 0, 0, time.UTC)
	rental := &domain.Rental{
		TenantID:           1,
		ExpectedReturnDate: expected,
		Status:             domain.RentalStatusActive,
	}
	settings := &domain.RentalSettings{
		LateToleranceMinutes: 30,
		HourlyLateRateCents:  500,
		DailyLateRateCents:   2500,
	}

	t.Run("on time", func(t *testing.T) {
		calc := calculatorWithSettings(settings)
		res, err := calc.LateFee(ctx, rental, expected.Add(-time.Hour), LateFeeRateHourly)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), res.FeeCents)
	})

	t.Run("within tolerance", func(t *testing.T) {
		calc := calculatorWithSettings(settings)
		res, err := calc.LateFee(ctx, rental, expected.Add(20*time.Minute), LateFeeRateHourly)
		assert.NoError(t, err)
		assert.Equal(t, int64(20), res.MinutesLate)
		assert.Equal(t, int64(0), res.FeeCents)
	})

	t.Run("hourly rate rounds hours up", func(t *testing.T) {
		calc := calculatorWithSettings(settings)
		res, err := calc.LateFee(ctx, rental, expected.Add(90*time.Minute), LateFeeRateHourly)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), res.HoursLate)
		assert.Equal(t, int64(1000), res.FeeCents)
	})

	t.Run("daily rate rounds days up", func(t *testing.T) {
		calc := calculatorWithSettings(settings)
		res, err := calc.LateFee(ctx, rental, expected.Add(26*time.Hour), LateFeeRateDaily)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), res.DaysLate)
		assert.Equal(t, int64(5000), res.FeeCents)
	})
}
