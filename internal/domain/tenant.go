package domain

import "time"

// Tenant is the isolation boundary: every contact, ticket and category
// belongs to exactly one tenant.
type Tenant struct {
	ID        string
	Name      string
	Domain    string
	Config    map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}
