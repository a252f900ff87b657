// Package pricing resolves base rates and applies ordered, possibly
// cumulative discount rules to produce a finalized price breakdown.
package pricing

import (
	"context"
	"fmt"
	"math"

	"bikerental-backend/internal/domain"
	"bikerental-backend/internal/repository"
)

type Engine struct {
	rates repository.PricingRepository
}

func NewEngine(rates repository.PricingRepository) *Engine {
	return &Engine{rates: rates}
}

// Calculate resolves the base rate for the (category, pricing class,
// duration) triple and applies discount rules in priority order. Each rule's
// amount is computed against the current running price, so cumulative rules
// compound on the already-discounted amount; the first non-cumulative rule
// wins and stops further application. The final price never goes below zero.
func (e *Engine) Calculate(ctx context.Context, tenantID, categoryID, pricingClassID int64, duration domain.RentalDuration, customDays int32) (*domain.PriceCalculation, error) {
	calc, err := e.baseCalculation(ctx, tenantID, categoryID, pricingClassID, duration, customDays)
	if err != nil {
		return nil, err
	}

	rules, err := e.rates.ListApplicableDiscounts(ctx, tenantID, categoryID, pricingClassID, calc.Days)
	if err != nil {
		return nil, fmt.Errorf("listing discount rules: %w", err)
	}

	running := calc.BasePriceCents
	for _, rule := range rules {
		if !rule.IsActive || rule.Value <= 0 {
			continue
		}
		if !minDurationSatisfied(rule.MinDuration, calc.Days) {
			continue
		}

		var amount int64
		switch rule.Type {
		case domain.DiscountTypePercentage:
			amount = int64(math.Round(float64(running) * rule.Value / 100))
		case domain.DiscountTypeFixed:
			amount = int64(math.Round(rule.Value))
		default:
			continue
		}
		if amount > running {
			amount = running
		}
		running -= amount

		calc.AppliedDiscounts = append(calc.AppliedDiscounts, domain.AppliedDiscount{
			RuleID:      rule.ID,
			Label:       rule.Label,
			Type:        rule.Type,
			Value:       rule.Value,
			AmountCents: amount,
		})

		// A non-cumulative rule blocks everything behind it.
		if !rule.IsCumulative {
			break
		}
	}

	calc.FinalPriceCents = running
	return calc, nil
}

// minDurationSatisfied compares the rule's minimum-duration bound against the
// billable day count. The duration-to-days mapping lives here rather than in
// SQL; a bound that does not resolve to a day count never matches.
func minDurationSatisfied(min *domain.RentalDuration, days int32) bool {
	if min == nil {
		return true
	}
	minDays, ok := min.Days()
	if !ok {
		return false
	}
	return days >= minDays
}

// CalculateQuickEstimate skips discount resolution entirely; it only performs
// the rate lookup. Meant for fast preview surfaces.
func (e *Engine) CalculateQuickEstimate(ctx context.Context, tenantID, categoryID, pricingClassID int64, duration domain.RentalDuration, customDays int32) (*domain.PriceCalculation, error) {
	return e.baseCalculation(ctx, tenantID, categoryID, pricingClassID, duration, customDays)
}

func (e *Engine) baseCalculation(ctx context.Context, tenantID, categoryID, pricingClassID int64, duration domain.RentalDuration, customDays int32) (*domain.PriceCalculation, error) {
	days, err := ResolveDays(duration, customDays)
	if err != nil {
		return nil, err
	}

	rate, err := e.rates.GetActiveRate(ctx, tenantID, categoryID, pricingClassID, duration)
	if err != nil {
		return nil, err
	}

	base := rate.PriceCents * int64(days)
	return &domain.PriceCalculation{
		BasePriceCents:   base,
		FinalPriceCents:  base,
		Days:             days,
		PricePerDayCents: rate.PriceCents,
		AppliedDiscounts: []domain.AppliedDiscount{},
	}, nil
}

// ResolveDays maps a duration to its billable day count. Custom durations
// require an explicit day count; anything resolving below one day is a usage
// error.
func ResolveDays(duration domain.RentalDuration, customDays int32) (int32, error) {
	days := customDays
	if days == 0 {
		configured, ok := duration.Days()
		if !ok && duration != domain.DurationCustom {
			return 0, &domain.NotFoundError{Entity: fmt.Sprintf("duration %q", duration)}
		}
		if !ok {
			return 0, &domain.InvalidTemporalOrderingError{Reason: "custom duration requires an explicit day count"}
		}
		days = configured
	}
	if days < 1 {
		return 0, &domain.InvalidTemporalOrderingError{Reason: fmt.Sprintf("rental duration resolves to %d days; must be at least 1", days)}
	}
	return days, nil
}
