package catalogs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/frescamar/reefertrack-backend/internal/audit"
	"github.com/frescamar/reefertrack-backend/internal/uniqueness"
	"github.com/frescamar/reefertrack-backend/pkg/db"
	"github.com/frescamar/reefertrack-backend/pkg/db/models"
	"github.com/frescamar/reefertrack-backend/pkg/enums"
	pkgerrors "github.com/frescamar/reefertrack-backend/pkg/errors"
	"github.com/frescamar/reefertrack-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the catalog directory for drivers, vehicles and carriers.
type Service interface {
	DriverByDocument(ctx context.Context, documentID string) (*models.Driver, error)
	CreateDriver(ctx context.Context, input CreateDriverInput, actor string) (*models.Driver, error)
	ListDrivers(ctx context.Context, page pagination.Params) ([]models.Driver, int64, error)

	VehicleByTractorPlate(ctx context.Context, plate string) (*models.Vehicle, error)
	PlatePairLookup(ctx context.Context, tractor, trailer string) (*PlatePairResult, error)
	CreateVehicle(ctx context.Context, input CreateVehicleInput, actor string) (*models.Vehicle, error)
	ListVehicles(ctx context.Context, page pagination.Params) ([]models.Vehicle, int64, error)
	AssignCarrier(ctx context.Context, vehicleID, carrierID uuid.UUID, actor string) (*models.Vehicle, error)

	ResolveCarrier(ctx context.Context, term string) (*models.Carrier, error)
	CreateCarrier(ctx context.Context, input CreateCarrierInput, actor string) (*models.Carrier, error)
	ListCarriers(ctx context.Context, page pagination.Params) ([]models.Carrier, int64, error)
}

// CreateDriverInput registers a driver in the catalog.
type CreateDriverInput struct {
	DocumentID string `json:"document_id" validate:"required"`
	FirstName  string `json:"first_name" validate:"required"`
	LastName   string `json:"last_name" validate:"required"`
	SAPName    string `json:"sap_name"`
	License    string `json:"license"`
}

// CreateVehicleInput registers a tractor/trailer pair.
type CreateVehicleInput struct {
	PlateTractor string `json:"plate_tractor" validate:"required"`
	PlateTrailer string `json:"plate_trailer" validate:"required"`
	Brand        string `json:"brand"`
	CertTractor  string `json:"cert_tractor"`
	CertTrailer  string `json:"cert_trailer"`
	CarrierName  string `json:"carrier_name"`
}

// CreateCarrierInput registers a trucking company.
type CreateCarrierInput struct {
	Name          string `json:"name" validate:"required"`
	TaxID         string `json:"tax_id"`
	SAPCode       string `json:"sap_code"`
	RegistryEntry string `json:"registry_entry"`
}

// PlatePairResult resolves a dispatch plate pair against the catalog. Warning
// is set when the trailer plate does not match the registered pair.
type PlatePairResult struct {
	Vehicle *models.Vehicle `json:"vehicle"`
	Warning string          `json:"warning,omitempty"`
}

type service struct {
	repo  Repository
	tx    txRunner
	trail audit.Sink
}

// NewService wires the catalog service with its collaborators.
func NewService(repo Repository, tx txRunner, trail audit.Sink) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if trail == nil {
		return nil, fmt.Errorf("audit sink required")
	}
	return &service{repo: repo, tx: tx, trail: trail}, nil
}

func (s *service) DriverByDocument(ctx context.Context, documentID string) (*models.Driver, error) {
	doc := strings.TrimSpace(documentID)
	if doc == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "driver document is required")
	}
	driver, err := s.repo.DriverByDocument(ctx, doc)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "driver not found").
			WithDetails(map[string]string{"document_id": doc})
	}
	if err != nil {
		return nil, err
	}
	return driver, nil
}

func (s *service) CreateDriver(ctx context.Context, input CreateDriverInput, actor string) (*models.Driver, error) {
	driver := &models.Driver{
		ID:         uuid.New(),
		DocumentID: strings.TrimSpace(input.DocumentID),
		FirstName:  strings.TrimSpace(input.FirstName),
		LastName:   strings.TrimSpace(input.LastName),
		SAPName:    strings.TrimSpace(input.SAPName),
		License:    uniqueness.Normalize(input.License),
	}
	if driver.DocumentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "driver document is required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateDriver(ctx, driver); err != nil {
			return err
		}
		return s.trail.Write(ctx, tx, audit.Entry{
			Action: enums.AuditActionDriverCreate,
			After:  snapshot(driver),
			Actor:  actor,
		})
	})
	if err != nil {
		return nil, conflictOnDuplicate(err, "driver document already registered")
	}
	return driver, nil
}

func (s *service) ListDrivers(ctx context.Context, page pagination.Params) ([]models.Driver, int64, error) {
	return s.repo.ListDrivers(ctx, page)
}

func (s *service) VehicleByTractorPlate(ctx context.Context, plate string) (*models.Vehicle, error) {
	normalized := uniqueness.Normalize(plate)
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tractor plate is required")
	}
	vehicle, err := s.repo.VehicleByTractorPlate(ctx, normalized)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found").
			WithDetails(map[string]string{"plate_tractor": normalized})
	}
	if err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (s *service) PlatePairLookup(ctx context.Context, tractor, trailer string) (*PlatePairResult, error) {
	vehicle, err := s.VehicleByTractorPlate(ctx, tractor)
	if err != nil {
		return nil, err
	}
	result := &PlatePairResult{Vehicle: vehicle}
	wanted := uniqueness.Normalize(trailer)
	if wanted != "" && vehicle.PlateTrailer != "" && vehicle.PlateTrailer != wanted {
		result.Warning = fmt.Sprintf("trailer %s is registered to tractor %s as %s",
			wanted, vehicle.PlateTractor, vehicle.PlateTrailer)
	}
	return result, nil
}

func (s *service) CreateVehicle(ctx context.Context, input CreateVehicleInput, actor string) (*models.Vehicle, error) {
	vehicle := &models.Vehicle{
		ID:           uuid.New(),
		PlateTractor: uniqueness.Normalize(input.PlateTractor),
		PlateTrailer: uniqueness.Normalize(input.PlateTrailer),
		Brand:        strings.TrimSpace(input.Brand),
		CertTractor:  uniqueness.Normalize(input.CertTractor),
		CertTrailer:  uniqueness.Normalize(input.CertTrailer),
	}
	if vehicle.PlateTractor == "" || vehicle.PlateTrailer == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "both plates are required")
	}

	if input.CarrierName != "" {
		carrier, err := s.ResolveCarrier(ctx, input.CarrierName)
		if err != nil {
			return nil, err
		}
		vehicle.CarrierID = &carrier.ID
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateVehicle(ctx, vehicle); err != nil {
			return err
		}
		return s.trail.Write(ctx, tx, audit.Entry{
			Action: enums.AuditActionVehicleCreate,
			After:  snapshot(vehicle),
			Actor:  actor,
		})
	})
	if err != nil {
		return nil, conflictOnDuplicate(err, "tractor plate already registered")
	}
	return vehicle, nil
}

func (s *service) ListVehicles(ctx context.Context, page pagination.Params) ([]models.Vehicle, int64, error) {
	return s.repo.ListVehicles(ctx, page)
}

func (s *service) AssignCarrier(ctx context.Context, vehicleID, carrierID uuid.UUID, actor string) (*models.Vehicle, error) {
	carrier, err := s.repo.CarrierByID(ctx, carrierID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "carrier not found")
	}
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.SetVehicleCarrier(ctx, vehicleID, carrier.ID); err != nil {
			return err
		}
		return s.trail.Write(ctx, tx, audit.Entry{
			Action: enums.AuditActionCarrierAssign,
			After: snapshot(map[string]string{
				"vehicle_id": vehicleID.String(),
				"carrier_id": carrier.ID.String(),
			}),
			Actor: actor,
		})
	})
	if err != nil {
		return nil, err
	}

	vehicle, err := s.repo.VehicleByID(ctx, vehicleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
	}
	if err != nil {
		return nil, err
	}
	return vehicle, nil
}

// ResolveCarrier applies the 0/1/n rule to a name search: no match is an
// error the caller can surface, more than one match is ambiguous and carries
// the candidate names.
func (s *service) ResolveCarrier(ctx context.Context, term string) (*models.Carrier, error) {
	trimmed := strings.TrimSpace(term)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "carrier search term is required")
	}
	carriers, err := s.repo.SearchCarriers(ctx, trimmed)
	if err != nil {
		return nil, err
	}
	switch len(carriers) {
	case 0:
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "carrier not found").
			WithDetails(map[string]string{"term": trimmed})
	case 1:
		return &carriers[0], nil
	default:
		names := make([]string, len(carriers))
		for i, c := range carriers {
			names[i] = c.Name
		}
		return nil, pkgerrors.New(pkgerrors.CodeAmbiguous, "carrier search matched more than one company").
			WithDetails(map[string]any{"term": trimmed, "matches": names})
	}
}

func (s *service) CreateCarrier(ctx context.Context, input CreateCarrierInput, actor string) (*models.Carrier, error) {
	carrier := &models.Carrier{
		ID:            uuid.New(),
		Name:          strings.TrimSpace(input.Name),
		TaxID:         strings.TrimSpace(input.TaxID),
		SAPCode:       strings.TrimSpace(input.SAPCode),
		RegistryEntry: strings.TrimSpace(input.RegistryEntry),
	}
	if carrier.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "carrier name is required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateCarrier(ctx, carrier); err != nil {
			return err
		}
		return s.trail.Write(ctx, tx, audit.Entry{
			Action: enums.AuditActionCarrierCreate,
			After:  snapshot(carrier),
			Actor:  actor,
		})
	})
	if err != nil {
		return nil, conflictOnDuplicate(err, "carrier name already registered")
	}
	return carrier, nil
}

func (s *service) ListCarriers(ctx context.Context, page pagination.Params) ([]models.Carrier, int64, error) {
	return s.repo.ListCarriers(ctx, page)
}

func snapshot(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}

func conflictOnDuplicate(err error, msg string) error {
	if err == nil {
		return nil
	}
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, msg)
	}
	return err
}
