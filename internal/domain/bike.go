package domain

import "time"

type BikeStatus string

const (
	BikeStatusAvailable   BikeStatus = "AVAILABLE"
	BikeStatusRented      BikeStatus = "RENTED"
	BikeStatusMaintenance BikeStatus = "MAINTENANCE"
	BikeStatusUnavailable BikeStatus = "UNAVAILABLE"
	BikeStatusRetired     BikeStatus = "RETIRED"
)

// IsPhysicallyUnavailable reports whether the bike's current discrete status
// makes it unusable right now, independent of its booking calendar.
func (s BikeStatus) IsPhysicallyUnavailable() bool {
	switch s {
	case BikeStatusRented, BikeStatusMaintenance, BikeStatusUnavailable, BikeStatusRetired:
		return true
	}
	return false
}

type Bike struct {
	ID             int64      `json:"id"`
	TenantID       int64      `json:"tenant_id"`
	SiteID         *int64     `json:"site_id,omitempty"`
	SerialNumber   string     `json:"serial_number"`
	Name           string     `json:"name"`
	BrandID        int64      `json:"brand_id"`
	CategoryID     int64      `json:"category_id"`
	PricingClassID int64      `json:"pricing_class_id"`
	Status         BikeStatus `json:"status"`
	CreatedOn      time.Time  `json:"created_on"`
	UpdatedOn      time.Time  `json:"updated_on"`
}

func (b *Bike) MarkAsRented() {
	b.Status = BikeStatusRented
}

func (b *Bike) MarkAsAvailable() {
	b.Status = BikeStatusAvailable
}

func (b *Bike) ChangeStatus(status BikeStatus) {
	b.Status = status
}
