package service

import (
	"github.com/dmehra2102/prod-golang-projects/carebook/internal/domain"
)

// Caller describes who issued a request. There is no authentication, so
// Actor is the role implied by the surface used.
type Caller struct {
	Actor     domain.Actor
	IPAddress string
	RequestID string
}

type AuditEntry struct {
	Caller       Caller
	Action       domain.AuditAction
	ResourceType string
	ResourceID   string
	Changes      map[string]any
}
