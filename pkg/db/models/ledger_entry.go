package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/frescamar/reefertrack-backend/pkg/enums"
)

// LedgerEntry is one claimed business code in the uniqueness ledger.
// Historic types stay claimed forever; transient types hold a lock only
// while the container is out on its travel window.
type LedgerEntry struct {
	ID       uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Type     enums.CodeType `gorm:"column:type;type:text;not null"`
	Value    string         `gorm:"column:value;not null"`
	OwnerRef string         `gorm:"column:owner_ref;not null"`
	Origin   string         `gorm:"column:origin;not null;default:''"`
	SetBy    string         `gorm:"column:set_by;not null;default:''"`

	Locked      bool       `gorm:"column:locked;not null;default:false"`
	LockedSince *time.Time `gorm:"column:locked_since"`
	ReleasedAt  *time.Time `gorm:"column:released_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
