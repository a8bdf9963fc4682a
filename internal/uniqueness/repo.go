package uniqueness

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/frescamar/reefertrack-backend/pkg/db/models"
	"github.com/frescamar/reefertrack-backend/pkg/enums"
)

// Repository manages persistence for ledger entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByTypeValues(ctx context.Context, codeType enums.CodeType, values []string, excludeOwner string) ([]models.LedgerEntry, error)
	ListByOwner(ctx context.Context, ownerRef string) ([]models.LedgerEntry, error)
	CreateBatch(ctx context.Context, entries []*models.LedgerEntry) error
	DeleteByOwner(ctx context.Context, ownerRef string, types []enums.CodeType) error
	ReleaseByOwner(ctx context.Context, ownerRef string, types []enums.CodeType, releasedAt time.Time) error
	ReleaseExpiredLocks(ctx context.Context, codeType enums.CodeType, values []string, cutoff, releasedAt time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByTypeValues(ctx context.Context, codeType enums.CodeType, values []string, excludeOwner string) ([]models.LedgerEntry, error) {
	if len(values) == 0 {
		return nil, nil
	}
	query := r.db.WithContext(ctx).
		Where("type = ? AND value IN ?", codeType, values)
	if excludeOwner != "" {
		query = query.Where("owner_ref <> ?", excludeOwner)
	}
	var entries []models.LedgerEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerRef string) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("owner_ref = ?", ownerRef).
		Order("type ASC, value ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) CreateBatch(ctx context.Context, entries []*models.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(entries).Error
}

func (r *repository) DeleteByOwner(ctx context.Context, ownerRef string, types []enums.CodeType) error {
	query := r.db.WithContext(ctx).Where("owner_ref = ?", ownerRef)
	if len(types) > 0 {
		query = query.Where("type IN ?", types)
	}
	return query.Delete(&models.LedgerEntry{}).Error
}

func (r *repository) ReleaseByOwner(ctx context.Context, ownerRef string, types []enums.CodeType, releasedAt time.Time) error {
	query := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Where("owner_ref = ? AND locked", ownerRef)
	if len(types) > 0 {
		query = query.Where("type IN ?", types)
	}
	return query.Updates(map[string]any{
		"locked":      false,
		"released_at": releasedAt,
	}).Error
}

func (r *repository) ReleaseExpiredLocks(ctx context.Context, codeType enums.CodeType, values []string, cutoff, releasedAt time.Time) error {
	if len(values) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Where("type = ? AND value IN ? AND locked AND locked_since < ?", codeType, values, cutoff).
		Updates(map[string]any{
			"locked":      false,
			"released_at": releasedAt,
		}).Error
}
