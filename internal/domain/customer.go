package domain

import "time"

// Customer is used for response enrichment only; the core decision logic does
// not depend on it.
type Customer struct {
	ID        int64     `json:"id"`
	TenantID  int64     `json:"tenant_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedOn time.Time `json:"created_on"`
}

func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}
