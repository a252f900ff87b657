package domain

import "time"

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// PricingRate is the per-day price for a (category, pricing class, duration)
// triple. The triple is the lookup key; only active rates resolve.
type PricingRate struct {
	ID             int64          `json:"id"`
	TenantID       int64          `json:"tenant_id"`
	CategoryID     int64          `json:"category_id"`
	PricingClassID int64          `json:"pricing_class_id"`
	Duration       RentalDuration `json:"duration"`
	PriceCents     int64          `json:"price_cents"`
	IsActive       bool           `json:"is_active"`
	CreatedOn      time.Time      `json:"created_on"`
	UpdatedOn      time.Time      `json:"updated_on"`
}

// DiscountRule scopes a discount to a category and/or pricing class (nil =
// wildcard) and a minimum rental length. Value is a percent for percentage
// rules and an amount in cents for fixed rules; it is always > 0.
type DiscountRule struct {
	ID             int64          `json:"id"`
	TenantID       int64          `json:"tenant_id"`
	CategoryID     *int64         `json:"category_id,omitempty"`
	PricingClassID *int64         `json:"pricing_class_id,omitempty"`
	MinDays        *int32         `json:"min_days,omitempty"`
	MinDuration    *RentalDuration `json:"min_duration,omitempty"`
	Type           DiscountType   `json:"discount_type"`
	Value          float64        `json:"discount_value"`
	Label          string         `json:"label"`
	IsCumulative   bool           `json:"is_cumulative"`
	Priority       int32          `json:"priority"`
	IsActive       bool           `json:"is_active"`
}

// AppliedDiscount is a snapshot of a rule's effect on one calculation. It
// captures the rule as applied, not a live reference.
type AppliedDiscount struct {
	RuleID      int64        `json:"rule_id"`
	Label       string       `json:"label"`
	Type        DiscountType `json:"type"`
	Value       float64      `json:"value"`
	AmountCents int64        `json:"amount_cents"`
}

// PriceCalculation is the finalized breakdown produced by the pricing engine.
type PriceCalculation struct {
	BasePriceCents   int64             `json:"base_price_cents"`
	FinalPriceCents  int64             `json:"final_price_cents"`
	Days             int32             `json:"days"`
	PricePerDayCents int64             `json:"price_per_day_cents"`
	AppliedDiscounts []AppliedDiscount `json:"applied_discounts"`
}

// DiscountTotalCents is the total amount shaved off the base price.
func (c *PriceCalculation) DiscountTotalCents() int64 {
	return c.BasePriceCents - c.FinalPriceCents
}
