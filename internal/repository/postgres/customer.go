package postgres

import (
	"context"
	"database/sql"
	"errors"

	"bikerental-backend/internal/domain"
	"bikerental-backend/internal/repository"
)

type customerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) repository.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) GetByID(ctx context.Context, tenantID, id int64) (*domain.Customer, error) {
	query := `SELECT id, tenant_id, first_name, last_name, email, phone, created_on
		FROM customers WHERE tenant_id = $1 AND id = $2`
	var c domain.Customer
	err := r.db.QueryRowContext(ctx, query, tenantID, id).Scan(
		&c.ID, &c.TenantID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.CreatedOn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "customer", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
