package postgres

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikerental-backend/internal/domain"
)

type driverValue = driver.Value

var rentalColumnNames = []string{
	"id", "reference", "tenant_id", "site_id", "customer_id", "start_date", "expected_return_date",
	"actual_return_date", "duration", "custom_days", "deposit_cents", "total_amount_cents",
	"discount_amount_cents", "tax_rate", "tax_amount_cents", "total_with_tax_cents", "status",
	"deposit_status", "deposit_retained_cents", "cancellation_reason", "created_on", "updated_on",
}

func rentalRow(id int64, status domain.RentalStatus, start, expected time.Time) []driverValue {
	now := time.Now()
	return []driverValue{
		id, "ref-1", int64(1), nil, int64(5), start, expected,
		nil, string(domain.DurationTwoDays), int32(0), int64(10000), int64(5000),
		int64(0), float64(20), int64(1000), int64(6000), string(status),
		string(domain.DepositStatusHeld), nil, nil, now, now,
	}
}

func addRentalRow(rows *sqlmock.Rows, values []driverValue) *sqlmock.Rows {
	return rows.AddRow(values...)
}

func TestRentalRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRentalRepository(db)
	ctx := context.Background()
	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		rows := addRentalRow(sqlmock.NewRows(rentalColumnNames),
			rentalRow(7, domain.RentalStatusReserved, start, start.AddDate(0, 0, 2)))
		mock.ExpectQuery(`(?s)SELECT .+ FROM rentals WHERE tenant_id`).
			WithArgs(int64(1), int64(7)).
			WillReturnRows(rows)
		mock.ExpectQuery(`(?s)SELECT .+ FROM rental_items WHERE rental_id`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "rental_id", "bike_id", "daily_rate_cents", "quantity",
				"client_height_cm", "client_weight_kg", "saddle_height_mm", "front_suspension_psi", "rear_suspension_psi",
				"pedal_type", "checkin_notes", "return_condition", "damage_description", "damage_photos",
			}).AddRow(int64(100), int64(7), int64(42), int64(2500), int32(1),
				nil, nil, nil, nil, nil, nil, nil, nil, nil, nil))
		mock.ExpectQuery(`SELECT .+ FROM rental_equipment WHERE rental_id`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "rental_id", "type", "quantity", "price_per_unit_cents"}).
				AddRow(int64(200), int64(7), string(domain.EquipmentHelmet), int32(1), int64(300)))

		rental, err := repo.GetByID(ctx, 1, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(7), rental.ID)
		assert.Equal(t, domain.RentalStatusReserved, rental.Status)
		require.Len(t, rental.Items, 1)
		assert.Equal(t, int64(42), rental.Items[0].BikeID)
		assert.Nil(t, rental.Items[0].CheckIn)
		require.Len(t, rental.Equipment, 1)
		assert.Equal(t, domain.EquipmentHelmet, rental.Equipment[0].Type)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`(?s)SELECT .+ FROM rentals WHERE tenant_id`).
			WithArgs(int64(1), int64(99)).
			WillReturnRows(sqlmock.NewRows(rentalColumnNames))

		_, err := repo.GetByID(ctx, 1, 99)
		var notFound *domain.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, int64(99), notFound.ID)
	})
}

func TestRentalRepository_CreateWithItems(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	newRental := func() *domain.Rental {
		return &domain.Rental{
			Reference:          "ref-1",
			TenantID:           1,
			CustomerID:         5,
			StartDate:          start,
			ExpectedReturnDate: start.AddDate(0, 0, 2),
			Duration:           domain.DurationTwoDays,
			Status:             domain.RentalStatusReserved,
			DepositStatus:      domain.DepositStatusHeld,
			Items:              []domain.RentalItem{{BikeID: 42, DailyRateCents: 2500, Quantity: 1}},
		}
	}

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRentalRepository(db)

		mock.ExpectBegin()
		// In-transaction conflict re-checks against both blocking sources.
		mock.ExpectQuery("SELECT EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery("SELECT EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery(`INSERT INTO rentals`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
		mock.ExpectQuery(`INSERT INTO rental_items`).
			WithArgs(int64(7), int64(42), int64(2500), int32(1)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(100)))
		mock.ExpectCommit()

		rental := newRental()
		err = repo.CreateWithItems(ctx, rental)
		require.NoError(t, err)
		assert.Equal(t, int64(7), rental.ID)
		assert.Equal(t, int64(100), rental.Items[0].ID)
		assert.Equal(t, int64(7), rental.Items[0].RentalID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ConflictInsideTransaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRentalRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		err = repo.CreateWithItems(ctx, newRental())
		var unavailable *domain.UnavailableError
		require.ErrorAs(t, err, &unavailable)
		assert.Equal(t, int64(42), unavailable.BikeID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRentalRepository_ListBlockingByBike(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRentalRepository(db)
	ctx := context.Background()
	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 5)

	t.Run("WithExclusion", func(t *testing.T) {
		rows := addRentalRow(sqlmock.NewRows(rentalColumnNames),
			rentalRow(7, domain.RentalStatusActive, start, end))
		mock.ExpectQuery(`(?s)SELECT .+ FROM rentals r\s+JOIN rental_items ri .+ AND r\.id <> \$6 ORDER BY r\.start_date`).
			WithArgs(int64(1), int64(42), sqlmock.AnyArg(), end, start, int64(9)).
			WillReturnRows(rows)

		exclude := int64(9)
		rentals, err := repo.ListBlockingByBike(ctx, 1, 42, start, end, &exclude)
		require.NoError(t, err)
		require.Len(t, rentals, 1)
		assert.Equal(t, int64(7), rentals[0].ID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRentalRepository_ListLate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRentalRepository(db)
	ctx := context.Background()
	asOf := time.Date(2026, 1, 20, 8, 0, 0, 0, time.UTC)

	rows := addRentalRow(sqlmock.NewRows(rentalColumnNames),
		rentalRow(7, domain.RentalStatusActive, asOf.AddDate(0, 0, -5), asOf.AddDate(0, 0, -1)))
	mock.ExpectQuery(`(?s)SELECT .+ FROM rentals\s+WHERE status = \$1 AND expected_return_date < \$2`).
		WithArgs(string(domain.RentalStatusActive), asOf).
		WillReturnRows(rows)

	late, err := repo.ListLate(ctx, asOf)
	require.NoError(t, err)
	require.Len(t, late, 1)
	assert.Equal(t, int64(7), late[0].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRepository_UpdateWithBikes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRentalRepository(db)
	ctx := context.Background()
	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	rentalFor := func() *domain.Rental {
		return &domain.Rental{
			ID: 7, TenantID: 1, Status: domain.RentalStatusCompleted,
			StartDate: start, ExpectedReturnDate: start.AddDate(0, 0, 2),
			Items: []domain.RentalItem{{
				ID: 100, RentalID: 7, BikeID: 42,
				CheckOut: &domain.CheckOutData{
					Condition:         domain.ReturnConditionMajorDamage,
					DamageDescription: "bent rear wheel",
				},
			}},
		}
	}
	bike := &domain.Bike{ID: 42, TenantID: 1, Status: domain.BikeStatusMaintenance}

	t.Run("MaintenanceRecordCommitsWithRental", func(t *testing.T) {
		rec := &domain.MaintenanceRecord{
			TenantID: 1, BikeID: 42, Title: "Post-rental damage inspection",
			ScheduledAt: start.AddDate(0, 0, 2), Status: domain.MaintenanceStatusTodo,
		}

		mock.ExpectBegin()
		mock.ExpectExec(`(?s)UPDATE rentals SET status`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`(?s)UPDATE rental_items SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE bikes SET status`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`(?s)INSERT INTO maintenance_records .+ RETURNING id`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(900)))
		mock.ExpectCommit()

		err := repo.UpdateWithBikes(ctx, rentalFor(), []*domain.Bike{bike}, []*domain.MaintenanceRecord{rec})
		require.NoError(t, err)
		assert.Equal(t, int64(900), rec.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("FailedBikeUpdateRollsBackTheRecord", func(t *testing.T) {
		rec := &domain.MaintenanceRecord{TenantID: 1, BikeID: 42, Status: domain.MaintenanceStatusTodo}

		mock.ExpectBegin()
		mock.ExpectExec(`(?s)UPDATE rentals SET status`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`(?s)UPDATE rental_items SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE bikes SET status`).
			WillReturnError(assert.AnError)
		mock.ExpectRollback()

		err := repo.UpdateWithBikes(ctx, rentalFor(), []*domain.Bike{bike}, []*domain.MaintenanceRecord{rec})
		require.Error(t, err)
		assert.Zero(t, rec.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
