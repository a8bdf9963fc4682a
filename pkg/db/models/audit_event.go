package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/frescamar/reefertrack-backend/pkg/enums"
)

// AuditEvent is an immutable trail entry written in the same transaction as
// the mutation it describes.
type AuditEvent struct {
	ID       uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	RecordID *uuid.UUID        `gorm:"column:record_id;type:uuid"`
	Action   enums.AuditAction `gorm:"column:action;type:text;not null"`
	Before   json.RawMessage   `gorm:"column:before;type:jsonb"`
	After    json.RawMessage   `gorm:"column:after;type:jsonb"`
	Reason   string            `gorm:"column:reason;not null;default:''"`
	Actor    string            `gorm:"column:actor;not null;default:''"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
