package models

import (
	"time"

	"github.com/google/uuid"
)

// Carrier is a trucking company in the catalog.
type Carrier struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name          string    `gorm:"column:name;not null;uniqueIndex"`
	TaxID         string    `gorm:"column:tax_id;not null;default:''"`
	SAPCode       string    `gorm:"column:sap_code;not null;default:''"`
	RegistryEntry string    `gorm:"column:registry_entry;not null;default:''"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
