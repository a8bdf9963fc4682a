package audit

import (
	"context"

	"gorm.io/gorm"

	"github.com/frescamar/reefertrack-backend/pkg/db/models"
	"github.com/frescamar/reefertrack-backend/pkg/enums"
	"github.com/frescamar/reefertrack-backend/pkg/pagination"
)

// Filter narrows audit trail reads.
type Filter struct {
	Actor              string
	Action             enums.AuditAction
	HideUserManagement bool
	Page               pagination.Params
}

// Repository manages persistence for audit events.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, event *models.AuditEvent) error
	List(ctx context.Context, filter Filter) ([]models.AuditEvent, int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an audit repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, event *models.AuditEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) List(ctx context.Context, filter Filter) ([]models.AuditEvent, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditEvent{})
	if filter.Actor != "" {
		query = query.Where("actor = ?", filter.Actor)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.HideUserManagement {
		query = query.Where(`action NOT LIKE 'USER\_%' ESCAPE '\'`)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var events []models.AuditEvent
	if err := query.
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}
