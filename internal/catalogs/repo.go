package catalogs

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/frescamar/reefertrack-backend/pkg/db/models"
	"github.com/frescamar/reefertrack-backend/pkg/pagination"
)

// Repository manages persistence for the driver/vehicle/carrier catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	DriverByDocument(ctx context.Context, documentID string) (*models.Driver, error)
	CreateDriver(ctx context.Context, driver *models.Driver) error
	ListDrivers(ctx context.Context, page pagination.Params) ([]models.Driver, int64, error)

	VehicleByTractorPlate(ctx context.Context, plate string) (*models.Vehicle, error)
	VehicleByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	CreateVehicle(ctx context.Context, vehicle *models.Vehicle) error
	ListVehicles(ctx context.Context, page pagination.Params) ([]models.Vehicle, int64, error)
	SetVehicleCarrier(ctx context.Context, vehicleID, carrierID uuid.UUID) error

	CarrierByID(ctx context.Context, id uuid.UUID) (*models.Carrier, error)
	CreateCarrier(ctx context.Context, carrier *models.Carrier) error
	ListCarriers(ctx context.Context, page pagination.Params) ([]models.Carrier, int64, error)
	SearchCarriers(ctx context.Context, term string) ([]models.Carrier, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) DriverByDocument(ctx context.Context, documentID string) (*models.Driver, error) {
	var driver models.Driver
	if err := r.db.WithContext(ctx).Where("document_id = ?", documentID).First(&driver).Error; err != nil {
		return nil, err
	}
	return &driver, nil
}

func (r *repository) CreateDriver(ctx context.Context, driver *models.Driver) error {
	return r.db.WithContext(ctx).Create(driver).Error
}

func (r *repository) ListDrivers(ctx context.Context, page pagination.Params) ([]models.Driver, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Driver{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page = page.Normalize()
	var drivers []models.Driver
	if err := r.db.WithContext(ctx).
		Order("last_name ASC, first_name ASC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&drivers).Error; err != nil {
		return nil, 0, err
	}
	return drivers, total, nil
}

func (r *repository) VehicleByTractorPlate(ctx context.Context, plate string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.db.WithContext(ctx).
		Preload("Carrier").
		Where("plate_tractor = ?", plate).
		First(&vehicle).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *repository) VehicleByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.db.WithContext(ctx).
		Preload("Carrier").
		Where("id = ?", id).
		First(&vehicle).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *repository) CreateVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	return r.db.WithContext(ctx).Create(vehicle).Error
}

func (r *repository) ListVehicles(ctx context.Context, page pagination.Params) ([]models.Vehicle, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Vehicle{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page = page.Normalize()
	var vehicles []models.Vehicle
	if err := r.db.WithContext(ctx).
		Preload("Carrier").
		Order("plate_tractor ASC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&vehicles).Error; err != nil {
		return nil, 0, err
	}
	return vehicles, total, nil
}

func (r *repository) SetVehicleCarrier(ctx context.Context, vehicleID, carrierID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("id = ?", vehicleID).
		Update("carrier_id", carrierID).Error
}

func (r *repository) CarrierByID(ctx context.Context, id uuid.UUID) (*models.Carrier, error) {
	var carrier models.Carrier
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&carrier).Error; err != nil {
		return nil, err
	}
	return &carrier, nil
}

func (r *repository) CreateCarrier(ctx context.Context, carrier *models.Carrier) error {
	return r.db.WithContext(ctx).Create(carrier).Error
}

func (r *repository) ListCarriers(ctx context.Context, page pagination.Params) ([]models.Carrier, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Carrier{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page = page.Normalize()
	var carriers []models.Carrier
	if err := r.db.WithContext(ctx).
		Order("name ASC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&carriers).Error; err != nil {
		return nil, 0, err
	}
	return carriers, total, nil
}

func (r *repository) SearchCarriers(ctx context.Context, term string) ([]models.Carrier, error) {
	var carriers []models.Carrier
	if err := r.db.WithContext(ctx).
		Where("name LIKE ?", "%"+term+"%").
		Order("name ASC").
		Find(&carriers).Error; err != nil {
		return nil, err
	}
	return carriers, nil
}
