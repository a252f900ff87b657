package postgres

import (
	"database/sql"
	"fmt"

	"bikerental-backend/internal/repository"

	_ "github.com/lib/pq"
)

// placeholderClause appends an equality predicate bound to the given
// positional argument, e.g. placeholderClause(" AND site_id", 3) yields
// " AND site_id = $3".
func placeholderClause(column string, position int) string {
	return fmt.Sprintf("%s = $%d", column, position)
}

type Store struct {
	db *sql.DB
	repository.BikeRepository
	repository.RentalRepository
	repository.MaintenanceRepository
	repository.PricingRepository
	repository.SettingsRepository
	repository.CustomerRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                    db,
		BikeRepository:        NewBikeRepository(db),
		RentalRepository:      NewRentalRepository(db),
		MaintenanceRepository: NewMaintenanceRepository(db),
		PricingRepository:     NewPricingRepository(db),
		SettingsRepository:    NewSettingsRepository(db),
		CustomerRepository:    NewCustomerRepository(db),
	}
}
