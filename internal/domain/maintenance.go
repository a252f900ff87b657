package domain

import "time"

type MaintenanceStatus string

const (
	MaintenanceStatusTodo       MaintenanceStatus = "TODO"
	MaintenanceStatusInProgress MaintenanceStatus = "IN_PROGRESS"
	MaintenanceStatusDone       MaintenanceStatus = "DONE"
	MaintenanceStatusCancelled  MaintenanceStatus = "CANCELLED"
)

// IsBlocking reports whether a record in this status blocks the bike's
// booking calendar.
func (s MaintenanceStatus) IsBlocking() bool {
	return s == MaintenanceStatusTodo || s == MaintenanceStatusInProgress
}

// MaintenanceRecord is a scheduled or ongoing service intervention on a bike.
// A nil CompletedAt means the work is open-ended and blocks the calendar
// indefinitely until it is closed.
type MaintenanceRecord struct {
	ID          int64             `json:"id"`
	TenantID    int64             `json:"tenant_id"`
	BikeID      int64             `json:"bike_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	ScheduledAt time.Time         `json:"scheduled_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Status      MaintenanceStatus `json:"status"`
	CreatedOn   time.Time         `json:"created_on"`
	UpdatedOn   time.Time         `json:"updated_on"`
}
