package dto

import "time"

// TenantResponse metadata.
type TenantResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Domain    string         `json:"domain"`
	Config    map[string]any `json:"config"`
	CreatedAt time.Time      `json:"created_at"`
}
