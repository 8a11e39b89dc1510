package domain

import "time"

// Category groups tickets for reporting within a tenant.
type Category struct {
	ID        string
	TenantID  string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
