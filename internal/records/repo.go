package records

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/frescamar/reefertrack-backend/pkg/db/models"
	"github.com/frescamar/reefertrack-backend/pkg/enums"
	"github.com/frescamar/reefertrack-backend/pkg/pagination"
)

// HistoryFilter narrows the dispatch history listing.
type HistoryFilter struct {
	From    *time.Time
	To      *time.Time
	Status  enums.RecordStatus
	Booking string
	Page    pagination.Params
}

// Repository manages persistence for dispatch records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, record *models.Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Record, error)
	Save(ctx context.Context, record *models.Record) error
	ListHistory(ctx context.Context, filter HistoryFilter) ([]models.Record, int64, error)
	ListProcessedBetween(ctx context.Context, from, to time.Time) ([]models.Record, error)
	StatusCountsBetween(ctx context.Context, from, to time.Time) (map[enums.RecordStatus]int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a record repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, record *models.Record) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Record, error) {
	var record models.Record
	if err := r.db.WithContext(ctx).
		Preload("Driver").
		Preload("Vehicle").
		Preload("Carrier").
		Where("id = ?", id).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) Save(ctx context.Context, record *models.Record) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *repository) ListHistory(ctx context.Context, filter HistoryFilter) ([]models.Record, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Record{})
	if filter.From != nil {
		query = query.Where("dispatch_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("dispatch_date < ?", *filter.To)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Booking != "" {
		query = query.Where("booking = ?", filter.Booking)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var rows []models.Record
	if err := query.
		Preload("Driver").
		Preload("Vehicle").
		Preload("Carrier").
		Order("dispatch_date DESC, created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) ListProcessedBetween(ctx context.Context, from, to time.Time) ([]models.Record, error) {
	var rows []models.Record
	if err := r.db.WithContext(ctx).
		Preload("Driver").
		Preload("Vehicle").
		Preload("Carrier").
		Where("processed_at >= ? AND processed_at < ?", from, to).
		Order("processed_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) StatusCountsBetween(ctx context.Context, from, to time.Time) (map[enums.RecordStatus]int64, error) {
	type row struct {
		Status enums.RecordStatus
		Total  int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.Record{}).
		Select("status, COUNT(*) AS total").
		Where("dispatch_date >= ? AND dispatch_date < ?", from, to).
		Group("status").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[enums.RecordStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}
