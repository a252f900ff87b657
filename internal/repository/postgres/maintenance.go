package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"bikerental-backend/internal/domain"
	"bikerental-backend/internal/repository"
)

type maintenanceRepository struct {
	db *sql.DB
}

func NewMaintenanceRepository(db *sql.DB) repository.MaintenanceRepository {
	return &maintenanceRepository{db: db}
}

var blockingMaintenanceStatuses = pq.Array([]string{
	string(domain.MaintenanceStatusTodo),
	string(domain.MaintenanceStatusInProgress),
})

func (r *maintenanceRepository) Create(ctx context.Context, rec *domain.MaintenanceRecord) error {
	return insertMaintenanceRecord(ctx, r.db, rec)
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// insertMaintenanceRecord works against both the pool and an open transaction
// so record creation can ride inside a rental status update.
func insertMaintenanceRecord(ctx context.Context, db rowQuerier, rec *domain.MaintenanceRecord) error {
	query := `INSERT INTO maintenance_records (tenant_id, bike_id, title, description, scheduled_at, completed_at, status, created_on, updated_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	now := time.Now()
	return db.QueryRowContext(ctx, query,
		rec.TenantID, rec.BikeID, rec.Title, rec.Description, rec.ScheduledAt, rec.CompletedAt, rec.Status, now, now,
	).Scan(&rec.ID)
}

// ListBlockingByBike returns open maintenance windows overlapping [start, end).
// A null completed_at is open-ended and blocks any window starting after the
// scheduled time.
func (r *maintenanceRepository) ListBlockingByBike(ctx context.Context, tenantID, bikeID int64, start, end time.Time) ([]domain.MaintenanceRecord, error) {
	query := `SELECT id, tenant_id, bike_id, title, description, scheduled_at, completed_at, status, created_on, updated_on
		FROM maintenance_records
		WHERE tenant_id = $1 AND bike_id = $2
		  AND status = ANY($3)
		  AND scheduled_at < $4 AND (completed_at IS NULL OR completed_at > $5)
		ORDER BY scheduled_at`
	rows, err := r.db.QueryContext(ctx, query, tenantID, bikeID, blockingMaintenanceStatuses, end, start)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.MaintenanceRecord
	for rows.Next() {
		var rec domain.MaintenanceRecord
		err := rows.Scan(
			&rec.ID, &rec.TenantID, &rec.BikeID, &rec.Title, &rec.Description,
			&rec.ScheduledAt, &rec.CompletedAt, &rec.Status, &rec.CreatedOn, &rec.UpdatedOn,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *maintenanceRepository) ListConflictingBikeIDs(ctx context.Context, tenantID int64, start, end time.Time) ([]int64, error) {
	query := `SELECT DISTINCT bike_id FROM maintenance_records
		WHERE tenant_id = $1
		  AND status = ANY($2)
		  AND scheduled_at < $3 AND (completed_at IS NULL OR completed_at > $4)`
	rows, err := r.db.QueryContext(ctx, query, tenantID, blockingMaintenanceStatuses, end, start)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
