package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bikerental-backend/internal/domain"
	"bikerental-backend/internal/repository"
)

type pricingRepository struct {
	db *sql.DB
}

func NewPricingRepository(db *sql.DB) repository.PricingRepository {
	return &pricingRepository{db: db}
}

func (r *pricingRepository) GetActiveRate(ctx context.Context, tenantID, categoryID, pricingClassID int64, duration domain.RentalDuration) (*domain.PricingRate, error) {
	query := `SELECT id, tenant_id, category_id, pricing_class_id, duration, price_cents, is_active, created_on, updated_on
		FROM pricing_rates
		WHERE tenant_id = $1 AND category_id = $2 AND pricing_class_id = $3 AND duration = $4 AND is_active = true`
	var rate domain.PricingRate
	err := r.db.QueryRowContext(ctx, query, tenantID, categoryID, pricingClassID, duration).Scan(
		&rate.ID, &rate.TenantID, &rate.CategoryID, &rate.PricingClassID, &rate.Duration,
		&rate.PriceCents, &rate.IsActive, &rate.CreatedOn, &rate.UpdatedOn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{
			Entity: fmt.Sprintf("active pricing rate for category %d, class %d, duration %s", categoryID, pricingClassID, duration),
		}
	}
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

// ListApplicableDiscounts matches rules scoped to the category and pricing
// class, treating a null scope column as a wildcard, and admits rules whose
// minimum-day bound is satisfied. The minimum-duration bound is returned on
// the rule for the pricing engine to evaluate, since the duration-to-days
// mapping lives there. Priority ascending is the application order.
func (r *pricingRepository) ListApplicableDiscounts(ctx context.Context, tenantID, categoryID, pricingClassID int64, days int32) ([]domain.DiscountRule, error) {
	query := `SELECT id, tenant_id, category_id, pricing_class_id, min_days, min_duration, discount_type, discount_value,
		label, is_cumulative, priority, is_active
		FROM discount_rules
		WHERE tenant_id = $1
		  AND (category_id IS NULL OR category_id = $2)
		  AND (pricing_class_id IS NULL OR pricing_class_id = $3)
		  AND (min_days IS NULL OR min_days <= $4)
		  AND is_active = true
		ORDER BY priority ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, tenantID, categoryID, pricingClassID, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []domain.DiscountRule
	for rows.Next() {
		var (
			rule        domain.DiscountRule
			minDuration sql.NullString
		)
		err := rows.Scan(
			&rule.ID, &rule.TenantID, &rule.CategoryID, &rule.PricingClassID, &rule.MinDays, &minDuration,
			&rule.Type, &rule.Value, &rule.Label, &rule.IsCumulative, &rule.Priority, &rule.IsActive,
		)
		if err != nil {
			return nil, err
		}
		if minDuration.Valid {
			d := domain.RentalDuration(minDuration.String)
			rule.MinDuration = &d
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}
