package domain

import "time"

// AgentRole scopes what an agent may do.
type AgentRole string

const (
	AgentRoleAgent AgentRole = "AGENT"
	AgentRoleAdmin AgentRole = "ADMIN"
)

// AgentStatus represents lifecycle states for an agent account.
type AgentStatus string

const (
	AgentStatusActive    AgentStatus = "ACTIVE"
	AgentStatusSuspended AgentStatus = "SUSPENDED"
)

// Agent is a support staff member who works tickets for a tenant.
type Agent struct {
	ID           string
	TenantID     string
	Name         string
	Email        string
	PasswordHash string
	Role         AgentRole
	Status       AgentStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
