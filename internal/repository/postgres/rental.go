package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"bikerental-backend/internal/domain"
	"bikerental-backend/internal/repository"
)

type rentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

const rentalColumns = `id, reference, tenant_id, site_id, customer_id, start_date, expected_return_date, actual_return_date,
	duration, custom_days, deposit_cents, total_amount_cents, discount_amount_cents, tax_rate, tax_amount_cents,
	total_with_tax_cents, status, deposit_status, deposit_retained_cents, cancellation_reason, created_on, updated_on`

// blockingStatuses is the set of rental statuses that occupy a bike's
// booking calendar.
var blockingStatuses = pq.Array([]string{
	string(domain.RentalStatusReserved),
	string(domain.RentalStatusPending),
	string(domain.RentalStatusActive),
})

// CreateWithItems inserts the aggregate and its children in one serializable
// transaction. Inside the transaction every bike's window is re-checked
// against rentals and maintenance records, so the availability check and the
// insert are effectively atomic per bike.
func (r *rentalRepository) CreateWithItems(ctx context.Context, rt *domain.Rental) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for i := range rt.Items {
		conflict, err := hasWindowConflict(ctx, tx, rt.TenantID, rt.Items[i].BikeID, rt.StartDate, rt.ExpectedReturnDate)
		if err != nil {
			return err
		}
		if conflict {
			return &domain.UnavailableError{BikeID: rt.Items[i].BikeID}
		}
	}

	now := time.Now()
	insertRental := `INSERT INTO rentals (reference, tenant_id, site_id, customer_id, start_date, expected_return_date,
		duration, custom_days, deposit_cents, total_amount_cents, discount_amount_cents, tax_rate, tax_amount_cents,
		total_with_tax_cents, status, deposit_status, created_on, updated_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18) RETURNING id`
	err = tx.QueryRowContext(ctx, insertRental,
		rt.Reference, rt.TenantID, rt.SiteID, rt.CustomerID, rt.StartDate, rt.ExpectedReturnDate,
		rt.Duration, rt.CustomDays, rt.DepositCents, rt.TotalAmountCents, rt.DiscountAmountCents, rt.TaxRate,
		rt.TaxAmountCents, rt.TotalWithTaxCents, rt.Status, rt.DepositStatus, now, now,
	).Scan(&rt.ID)
	if err != nil {
		return fmt.Errorf("inserting rental: %w", err)
	}

	for i := range rt.Items {
		item := &rt.Items[i]
		item.RentalID = rt.ID
		err := tx.QueryRowContext(ctx,
			`INSERT INTO rental_items (rental_id, bike_id, daily_rate_cents, quantity) VALUES ($1, $2, $3, $4) RETURNING id`,
			item.RentalID, item.BikeID, item.DailyRateCents, item.Quantity,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("inserting rental item for bike %d: %w", item.BikeID, err)
		}
	}

	for i := range rt.Equipment {
		eq := &rt.Equipment[i]
		eq.RentalID = rt.ID
		err := tx.QueryRowContext(ctx,
			`INSERT INTO rental_equipment (rental_id, type, quantity, price_per_unit_cents) VALUES ($1, $2, $3, $4) RETURNING id`,
			eq.RentalID, eq.Type, eq.Quantity, eq.PricePerUnitCents,
		).Scan(&eq.ID)
		if err != nil {
			return fmt.Errorf("inserting rental equipment: %w", err)
		}
	}

	return tx.Commit()
}

// hasWindowConflict applies the half-open overlap test against both
// unavailability sources inside the calling transaction.
func hasWindowConflict(ctx context.Context, tx *sql.Tx, tenantID, bikeID int64, start, end time.Time) (bool, error) {
	var exists bool
	rentalCheck := `SELECT EXISTS (
		SELECT 1 FROM rentals r
		JOIN rental_items ri ON ri.rental_id = r.id
		WHERE r.tenant_id = $1 AND ri.bike_id = $2
		  AND r.status = ANY($3)
		  AND r.start_date < $4 AND r.expected_return_date > $5)`
	if err := tx.QueryRowContext(ctx, rentalCheck, tenantID, bikeID, blockingStatuses, end, start).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking rental conflicts: %w", err)
	}
	if exists {
		return true, nil
	}

	maintCheck := `SELECT EXISTS (
		SELECT 1 FROM maintenance_records
		WHERE tenant_id = $1 AND bike_id = $2
		  AND status = ANY($3)
		  AND scheduled_at < $4 AND (completed_at IS NULL OR completed_at > $5))`
	blocking := pq.Array([]string{string(domain.MaintenanceStatusTodo), string(domain.MaintenanceStatusInProgress)})
	if err := tx.QueryRowContext(ctx, maintCheck, tenantID, bikeID, blocking, end, start).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking maintenance conflicts: %w", err)
	}
	return exists, nil
}

func (r *rentalRepository) GetByID(ctx context.Context, tenantID, id int64) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE tenant_id = $1 AND id = $2`
	rt, err := scanRental(r.db.QueryRowContext(ctx, query, tenantID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "rental", ID: id}
	}
	if err != nil {
		return nil, err
	}

	if rt.Items, err = r.loadItems(ctx, rt.ID); err != nil {
		return nil, err
	}
	if rt.Equipment, err = r.loadEquipment(ctx, rt.ID); err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *rentalRepository) Update(ctx context.Context, rt *domain.Rental) error {
	_, err := updateRental(ctx, r.db, rt)
	return err
}

// UpdateWithBikes persists the rental, its items, the triggered bike status
// flips and any newly opened maintenance records in one transaction. Rental
// status, bike status and workshop records never advance independently.
func (r *rentalRepository) UpdateWithBikes(ctx context.Context, rt *domain.Rental, bikes []*domain.Bike, records []*domain.MaintenanceRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := updateRental(ctx, tx, rt); err != nil {
		return err
	}
	for i := range rt.Items {
		if err := updateItem(ctx, tx, &rt.Items[i]); err != nil {
			return err
		}
	}
	for _, bike := range bikes {
		_, err := tx.ExecContext(ctx,
			`UPDATE bikes SET status = $1, updated_on = $2 WHERE tenant_id = $3 AND id = $4`,
			bike.Status, time.Now(), bike.TenantID, bike.ID)
		if err != nil {
			return fmt.Errorf("updating bike %d: %w", bike.ID, err)
		}
	}
	for _, rec := range records {
		if err := insertMaintenanceRecord(ctx, tx, rec); err != nil {
			return fmt.Errorf("opening maintenance record for bike %d: %w", rec.BikeID, err)
		}
	}

	return tx.Commit()
}

func (r *rentalRepository) UpdateItem(ctx context.Context, item *domain.RentalItem) error {
	return updateItem(ctx, r.db, item)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func updateRental(ctx context.Context, db execer, rt *domain.Rental) (sql.Result, error) {
	query := `UPDATE rentals SET status = $1, actual_return_date = $2, deposit_status = $3, deposit_retained_cents = $4,
		cancellation_reason = $5, total_amount_cents = $6, discount_amount_cents = $7, tax_amount_cents = $8,
		total_with_tax_cents = $9, updated_on = $10
		WHERE tenant_id = $11 AND id = $12`
	res, err := db.ExecContext(ctx, query,
		rt.Status, rt.ActualReturnDate, rt.DepositStatus, rt.DepositRetainedCents,
		rt.CancellationReason, rt.TotalAmountCents, rt.DiscountAmountCents, rt.TaxAmountCents,
		rt.TotalWithTaxCents, time.Now(), rt.TenantID, rt.ID)
	if err != nil {
		return nil, fmt.Errorf("updating rental %d: %w", rt.ID, err)
	}
	return res, nil
}

func updateItem(ctx context.Context, db execer, item *domain.RentalItem) error {
	var (
		heightCm, weightKg, saddleMm, frontPSI, rearPSI sql.NullFloat64
		pedalType, checkinNotes                         sql.NullString
		condition, damageDescription                    sql.NullString
		photos                                          interface{}
	)
	if item.CheckIn != nil {
		heightCm = sql.NullFloat64{Float64: item.CheckIn.ClientHeightCm, Valid: true}
		weightKg = sql.NullFloat64{Float64: item.CheckIn.ClientWeightKg, Valid: true}
		saddleMm = sql.NullFloat64{Float64: item.CheckIn.SaddleHeightMm, Valid: true}
		frontPSI = sql.NullFloat64{Float64: item.CheckIn.FrontSuspensionPSI, Valid: true}
		rearPSI = sql.NullFloat64{Float64: item.CheckIn.RearSuspensionPSI, Valid: true}
		pedalType = sql.NullString{String: item.CheckIn.PedalType, Valid: true}
		checkinNotes = sql.NullString{String: item.CheckIn.Notes, Valid: true}
	}
	if item.CheckOut != nil {
		condition = sql.NullString{String: string(item.CheckOut.Condition), Valid: true}
		damageDescription = sql.NullString{String: item.CheckOut.DamageDescription, Valid: true}
		photos = pq.Array(item.CheckOut.DamagePhotos)
	}

	query := `UPDATE rental_items SET client_height_cm = $1, client_weight_kg = $2, saddle_height_mm = $3,
		front_suspension_psi = $4, rear_suspension_psi = $5, pedal_type = $6, checkin_notes = $7,
		return_condition = $8, damage_description = $9, damage_photos = $10
		WHERE id = $11`
	_, err := db.ExecContext(ctx, query,
		heightCm, weightKg, saddleMm, frontPSI, rearPSI, pedalType, checkinNotes,
		condition, damageDescription, photos, item.ID)
	if err != nil {
		return fmt.Errorf("updating rental item %d: %w", item.ID, err)
	}
	return nil
}

func (r *rentalRepository) ListBlockingByBike(ctx context.Context, tenantID, bikeID int64, start, end time.Time, excludeRentalID *int64) ([]domain.Rental, error) {
	query := `SELECT ` + prefixedRentalColumns("r") + ` FROM rentals r
		JOIN rental_items ri ON ri.rental_id = r.id
		WHERE r.tenant_id = $1 AND ri.bike_id = $2
		  AND r.status = ANY($3)
		  AND r.start_date < $4 AND r.expected_return_date > $5`
	args := []interface{}{tenantID, bikeID, blockingStatuses, end, start}
	if excludeRentalID != nil {
		args = append(args, *excludeRentalID)
		query += fmt.Sprintf(" AND r.id <> $%d", len(args))
	}
	query += ` ORDER BY r.start_date`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRentals(rows)
}

func (r *rentalRepository) ListConflictingBikeIDs(ctx context.Context, tenantID int64, start, end time.Time) ([]int64, error) {
	query := `SELECT DISTINCT ri.bike_id FROM rentals r
		JOIN rental_items ri ON ri.rental_id = r.id
		WHERE r.tenant_id = $1
		  AND r.status = ANY($2)
		  AND r.start_date < $3 AND r.expected_return_date > $4`
	rows, err := r.db.QueryContext(ctx, query, tenantID, blockingStatuses, end, start)
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

func (r *rentalRepository) ListByBike(ctx context.Context, tenantID, bikeID int64, statuses []domain.RentalStatus) ([]domain.Rental, error) {
	query := `SELECT ` + prefixedRentalColumns("r") + ` FROM rentals r
		JOIN rental_items ri ON ri.rental_id = r.id
		WHERE r.tenant_id = $1 AND ri.bike_id = $2`
	args := []interface{}{tenantID, bikeID}
	if len(statuses) > 0 {
		names := make([]string, len(statuses))
		for i, s := range statuses {
			names[i] = string(s)
		}
		args = append(args, pq.Array(names))
		query += fmt.Sprintf(" AND r.status = ANY($%d)", len(args))
	}
	query += ` ORDER BY r.start_date DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRentals(rows)
}

func (r *rentalRepository) List(ctx context.Context, tenantID int64, siteID *int64, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE tenant_id = $1`
	args := []interface{}{tenantID}
	if siteID != nil {
		args = append(args, *siteID)
		query += placeholderClause(` AND site_id`, len(args))
	}
	if status != "" {
		args = append(args, status)
		query += placeholderClause(` AND status`, len(args))
	}

	var count int32
	countQuery := `SELECT count(*) FROM (` + query + `) AS sub`
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	rentals, err := collectRentals(rows)
	return rentals, count, err
}

func (r *rentalRepository) ListLate(ctx context.Context, asOf time.Time) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals
		WHERE status = $1 AND expected_return_date < $2 ORDER BY expected_return_date`
	rows, err := r.db.QueryContext(ctx, query, domain.RentalStatusActive, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRentals(rows)
}

func (r *rentalRepository) loadItems(ctx context.Context, rentalID int64) ([]domain.RentalItem, error) {
	query := `SELECT id, rental_id, bike_id, daily_rate_cents, quantity,
		client_height_cm, client_weight_kg, saddle_height_mm, front_suspension_psi, rear_suspension_psi,
		pedal_type, checkin_notes, return_condition, damage_description, damage_photos
		FROM rental_items WHERE rental_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, rentalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.RentalItem
	for rows.Next() {
		var (
			item                                            domain.RentalItem
			heightCm, weightKg, saddleMm, frontPSI, rearPSI sql.NullFloat64
			pedalType, checkinNotes                         sql.NullString
			condition, damageDescription                    sql.NullString
			photos                                          pq.StringArray
		)
		err := rows.Scan(
			&item.ID, &item.RentalID, &item.BikeID, &item.DailyRateCents, &item.Quantity,
			&heightCm, &weightKg, &saddleMm, &frontPSI, &rearPSI,
			&pedalType, &checkinNotes, &condition, &damageDescription, &photos,
		)
		if err != nil {
			return nil, err
		}
		if pedalType.Valid || heightCm.Valid {
			item.CheckIn = &domain.CheckInData{
				ClientHeightCm:     heightCm.Float64,
				ClientWeightKg:     weightKg.Float64,
				SaddleHeightMm:     saddleMm.Float64,
				FrontSuspensionPSI: frontPSI.Float64,
				RearSuspensionPSI:  rearPSI.Float64,
				PedalType:          pedalType.String,
				Notes:              checkinNotes.String,
			}
		}
		if condition.Valid {
			item.CheckOut = &domain.CheckOutData{
				Condition:         domain.ReturnCondition(condition.String),
				DamageDescription: damageDescription.String,
				DamagePhotos:      photos,
			}
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *rentalRepository) loadEquipment(ctx context.Context, rentalID int64) ([]domain.RentalEquipment, error) {
	query := `SELECT id, rental_id, type, quantity, price_per_unit_cents FROM rental_equipment WHERE rental_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, rentalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var equipment []domain.RentalEquipment
	for rows.Next() {
		var eq domain.RentalEquipment
		if err := rows.Scan(&eq.ID, &eq.RentalID, &eq.Type, &eq.Quantity, &eq.PricePerUnitCents); err != nil {
			return nil, err
		}
		equipment = append(equipment, eq)
	}
	return equipment, rows.Err()
}

func scanRental(row rowScanner) (*domain.Rental, error) {
	var rt domain.Rental
	err := row.Scan(
		&rt.ID, &rt.Reference, &rt.TenantID, &rt.SiteID, &rt.CustomerID, &rt.StartDate, &rt.ExpectedReturnDate,
		&rt.ActualReturnDate, &rt.Duration, &rt.CustomDays, &rt.DepositCents, &rt.TotalAmountCents,
		&rt.DiscountAmountCents, &rt.TaxRate, &rt.TaxAmountCents, &rt.TotalWithTaxCents, &rt.Status,
		&rt.DepositStatus, &rt.DepositRetainedCents, &rt.CancellationReason, &rt.CreatedOn, &rt.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

func collectRentals(rows *sql.Rows) ([]domain.Rental, error) {
	var rentals []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, rows.Err()
}

// prefixedRentalColumns qualifies the rental column list with a table alias
// for joined queries.
func prefixedRentalColumns(alias string) string {
	return alias + `.id, ` + alias + `.reference, ` + alias + `.tenant_id, ` + alias + `.site_id, ` + alias + `.customer_id, ` +
		alias + `.start_date, ` + alias + `.expected_return_date, ` + alias + `.actual_return_date, ` + alias + `.duration, ` +
		alias + `.custom_days, ` + alias + `.deposit_cents, ` + alias + `.total_amount_cents, ` + alias + `.discount_amount_cents, ` +
		alias + `.tax_rate, ` + alias + `.tax_amount_cents, ` + alias + `.total_with_tax_cents, ` + alias + `.status, ` +
		alias + `.deposit_status, ` + alias + `.deposit_retained_cents, ` + alias + `.cancellation_reason, ` +
		alias + `.created_on, ` + alias + `.updated_on`
}
