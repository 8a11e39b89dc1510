package domain

import "time"

// Contact is a customer identity, unique by (tenant_id, email).
type Contact struct {
	ID        string
	TenantID  string
	Name      string
	Email     string
	Phone     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
