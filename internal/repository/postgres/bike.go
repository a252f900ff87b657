package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bikerental-backend/internal/domain"
	"bikerental-backend/internal/repository"
)

type bikeRepository struct {
	db *sql.DB
}

func NewBikeRepository(db *sql.DB) repository.BikeRepository {
	return &bikeRepository{db: db}
}

const bikeColumns = `id, tenant_id, site_id, serial_number, name, brand_id, category_id, pricing_class_id, status, created_on, updated_on`

func (r *bikeRepository) GetByID(ctx context.Context, tenantID, id int64) (*domain.Bike, error) {
	query := `SELECT ` + bikeColumns + ` FROM bikes WHERE tenant_id = $1 AND id = $2`
	bike, err := scanBike(r.db.QueryRowContext(ctx, query, tenantID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "bike", ID: id}
	}
	return bike, err
}

func (r *bikeRepository) Update(ctx context.Context, bike *domain.Bike) error {
	query := `UPDATE bikes SET status = $1, updated_on = $2 WHERE tenant_id = $3 AND id = $4`
	_, err := r.db.ExecContext(ctx, query, bike.Status, time.Now(), bike.TenantID, bike.ID)
	return err
}

func (r *bikeRepository) ListPhysicallyAvailable(ctx context.Context, tenantID int64, siteID, categoryID, pricingClassID *int64) ([]domain.Bike, error) {
	query := `SELECT ` + bikeColumns + ` FROM bikes WHERE tenant_id = $1 AND status = $2`
	args := []interface{}{tenantID, domain.BikeStatusAvailable}

	if siteID != nil {
		args = append(args, *siteID)
		query += placeholderClause(` AND site_id`, len(args))
	}
	if categoryID != nil {
		args = append(args, *categoryID)
		query += placeholderClause(` AND category_id`, len(args))
	}
	if pricingClassID != nil {
		args = append(args, *pricingClassID)
		query += placeholderClause(` AND pricing_class_id`, len(args))
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bikes []domain.Bike
	for rows.Next() {
		bike, err := scanBike(rows)
		if err != nil {
			return nil, err
		}
		bikes = append(bikes, *bike)
	}
	return bikes, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBike(row rowScanner) (*domain.Bike, error) {
	var bike domain.Bike
	err := row.Scan(
		&bike.ID, &bike.TenantID, &bike.SiteID, &bike.SerialNumber, &bike.Name,
		&bike.BrandID, &bike.CategoryID, &bike.PricingClassID, &bike.Status,
		&bike.CreatedOn, &bike.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	return &bike, nil
}
