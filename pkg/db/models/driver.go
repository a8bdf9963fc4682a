package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Driver is a catalog entry resolved by national document id at dispatch.
type Driver struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	DocumentID string    `gorm:"column:document_id;not null;uniqueIndex"`
	FirstName  string    `gorm:"column:first_name;not null;default:''"`
	LastName   string    `gorm:"column:last_name;not null;default:''"`
	SAPName    string    `gorm:"column:sap_name;not null;default:''"`
	License    string    `gorm:"column:license;not null;default:''"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// DisplayName prefers the SAP grid name, falling back to "last, first".
func (d Driver) DisplayName() string {
	if d.SAPName != "" {
		return d.SAPName
	}
	return strings.TrimSuffix(strings.TrimSpace(d.LastName+", "+d.FirstName), ",")
}
