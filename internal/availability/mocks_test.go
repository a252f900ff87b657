package availability

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"bikerental-backend/internal/domain"
)

// MockBikeRepo
type MockBikeRepo struct {
	mock.Mock
}

func (m *MockBikeRepo) GetByID(ctx context.Context, tenantID, id int64) (*domain.Bike, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bike), args.Error(1)
}
func (m *MockBikeRepo) Update(ctx context.Context, bike *domain.Bike) error {
	args := m.Called(ctx, bike)
	return args.Error(0)
}
func (m *MockBikeRepo) ListPhysicallyAvailable(ctx context.Context, tenantID int64, siteID, categoryID, pricingClassID *int64) ([]domain.Bike, error) {
	args := m.Called(ctx, tenantID, siteID, categoryID, pricingClassID)
	return args.Get(0).([]domain.Bike), args.Error(1)
}

// MockRentalRepo
type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) GetByID(ctx context.Context, tenantID, id int64) (*domain.Rental, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) CreateWithItems(ctx context.Context, rental *domain.Rental) error {
	args := m.Called(ctx, rental)
	return args.Error(0)
}
func (m *MockRentalRepo) Update(ctx context.Context, rental *domain.Rental) error {
	args := m.Called(ctx, rental)
	return args.Error(0)
}
func (m *MockRentalRepo) UpdateWithBikes(ctx context.Context, rental *domain.Rental, bikes []*domain.Bike, records []*domain.MaintenanceRecord) error {
	args := m.Called(ctx, rental, bikes, records)
	return args.Error(0)
}
func (m *MockRentalRepo) UpdateItem(ctx context.Context, item *domain.RentalItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}
func (m *MockRentalRepo) ListBlockingByBike(ctx context.Context, tenantID, bikeID int64, start, end time.Time, excludeRentalID *int64) ([]domain.Rental, error) {
	args := m.Called(ctx, tenantID, bikeID, start, end, excludeRentalID)
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) ListConflictingBikeIDs(ctx context.Context, tenantID int64, start, end time.Time) ([]int64, error) {
	args := m.Called(ctx, tenantID, start, end)
	return args.Get(0).([]int64), args.Error(1)
}
func (m *MockRentalRepo) ListByBike(ctx context.Context, tenantID, bikeID int64, statuses []domain.RentalStatus) ([]domain.Rental, error) {
	args := m.Called(ctx, tenantID, bikeID, statuses)
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) List(ctx context.Context, tenantID int64, siteID *int64, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	args := m.Called(ctx, tenantID, siteID, status, page, pageSize)
	return args.Get(0).([]domain.Rental), args.Get(1).(int32), args.Error(2)
}
func (m *MockRentalRepo) ListLate(ctx context.Context, asOf time.Time) ([]domain.Rental, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).([]domain.Rental), args.Error(1)
}

// MockMaintenanceRepo
type MockMaintenanceRepo struct {
	mock.Mock
}

func (m *MockMaintenanceRepo) Create(ctx context.Context, rec *domain.MaintenanceRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}
func (m *MockMaintenanceRepo) ListBlockingByBike(ctx context.Context, tenantID, bikeID int64, start, end time.Time) ([]domain.MaintenanceRecord, error) {
	args := m.Called(ctx, tenantID, bikeID, start, end)
	return args.Get(0).([]domain.MaintenanceRecord), args.Error(1)
}
func (m *MockMaintenanceRepo) ListConflictingBikeIDs(ctx context.Context, tenantID int64, start, end time.Time) ([]int64, error) {
	args := m.Called(ctx, tenantID, start, end)
	return args.Get(0).([]int64), args.Error(1)
}
