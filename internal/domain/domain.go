package domain

import (
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	ActionCreate       AuditAction = "create"
	ActionRead         AuditAction = "read"
	ActionStatusChange AuditAction = "status_change"
	ActionRevert       AuditAction = "revert"
)

// Actor identifies who triggered an audited change. There is no
// authentication, so this is the declared role of the surface used.
type Actor string

const (
	ActorPatient Actor = "patient"
	ActorDoctor  Actor = "doctor"
	ActorSystem  Actor = "system"
)

type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	OccurredAt time.Time `gorm:"column:occurred_at;not null;index"`

	Actor     Actor  `gorm:"column:actor;type:varchar(30);not null"`
	IPAddress string `gorm:"column:ip_address;type:varchar(45)"`

	Action       AuditAction `gorm:"column:action;type:varchar(30);not null;index"`
	ResourceType string      `gorm:"column:resource_type;type:varchar(50);not null;index"`
	ResourceID   string      `gorm:"column:resource_id;type:varchar(50);index"`

	RequestID string `gorm:"column:request_id;type:varchar(50);index"`
	Changes   string `gorm:"column:changes;type:jsonb"`
}

func (AuditLog) TableName() string {
	return "audit.logs"
}
