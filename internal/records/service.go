package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/frescamar/reefertrack-backend/internal/audit"
	"github.com/frescamar/reefertrack-backend/internal/refs"
	"github.com/frescamar/reefertrack-backend/internal/uniqueness"
	"github.com/frescamar/reefertrack-backend/pkg/db/models"
	"github.com/frescamar/reefertrack-backend/pkg/enums"
	pkgerrors "github.com/frescamar/reefertrack-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// directory is the slice of the catalog the engine needs at dispatch time.
type directory interface {
	DriverByDocument(ctx context.Context, documentID string) (*models.Driver, error)
	VehicleByTractorPlate(ctx context.Context, plate string) (*models.Vehicle, error)
	ResolveCarrier(ctx context.Context, term string) (*models.Carrier, error)
}

type bookingRefs interface {
	LookupByBooking(ctx context.Context, booking string) (refs.BookingCodes, error)
}

// Service is the record store and lifecycle engine.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Record, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Record, error)
	Process(ctx context.Context, id uuid.UUID, actor string) (*models.Record, error)
	Void(ctx context.Context, id uuid.UUID, reason, actor string) (*models.Record, error)
	Edit(ctx context.Context, id uuid.UUID, input EditInput) (*models.Record, error)
	History(ctx context.Context, filter HistoryFilter) ([]models.Record, int64, error)
	ProcessedOn(ctx context.Context, day time.Time) ([]models.Record, error)
	Dashboard(ctx context.Context, from, to time.Time) (*DashboardStats, error)
}

type service struct {
	repo   Repository
	ledger uniqueness.Service
	trail  audit.Sink
	dir    directory
	refs   bookingRefs
	tx     txRunner
	loc    *time.Location
}

// NewService wires the record engine with its collaborators. loc is the
// reporting timezone used for day windows.
func NewService(repo Repository, ledger uniqueness.Service, trail audit.Sink, dir directory, refLookup bookingRefs, tx txRunner, loc *time.Location) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("record repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("uniqueness ledger required")
	}
	if trail == nil {
		return nil, fmt.Errorf("audit sink required")
	}
	if dir == nil {
		return nil, fmt.Errorf("catalog directory required")
	}
	if refLookup == nil {
		return nil, fmt.Errorf("booking reference lookup required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &service{
		repo:   repo,
		ledger: ledger,
		trail:  trail,
		dir:    dir,
		refs:   refLookup,
		tx:     tx,
		loc:    loc,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Record, error) {
	if input.DispatchDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dispatch date is required")
	}

	tractor, trailer, err := parsePlatePair(input.Plates)
	if err != nil {
		return nil, err
	}

	driver, err := s.dir.DriverByDocument(ctx, input.DriverDocument)
	if err != nil {
		return nil, err
	}
	vehicle, err := s.dir.VehicleByTractorPlate(ctx, tractor)
	if err != nil {
		return nil, err
	}

	carrierID := vehicle.CarrierID
	if carrierID == nil && input.CarrierName != "" {
		carrier, err := s.dir.ResolveCarrier(ctx, input.CarrierName)
		if err != nil {
			return nil, err
		}
		carrierID = &carrier.ID
	}
	if carrierID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle has no carrier assigned").
			WithDetails(map[string]string{"plate_tractor": tractor})
	}

	record := &models.Record{
		ID:            uuid.New(),
		Status:        enums.RecordStatusPending,
		DispatchDate:  input.DispatchDate,
		Booking:       uniqueness.Normalize(input.Booking),
		OrderCode:     uniqueness.Normalize(input.OrderCode),
		ContainerCode: uniqueness.Normalize(input.ContainerCode),
		CustomsDoc:    uniqueness.Normalize(input.CustomsDoc),
		Thermograph1:  normalizeMulti(input.Thermograph1),
		Thermograph2:  normalizeMulti(input.Thermograph2),
		SealBeta:      normalizeMulti(input.SealBeta),
		SealCustoms:   uniqueness.Normalize(input.SealCustoms),
		SealOperator:  uniqueness.Normalize(input.SealOperator),
		Senasa:        uniqueness.Normalize(input.Senasa),
		Line:          uniqueness.Normalize(input.Line),
		PlateTractor:  tractor,
		PlateTrailer:  trailer,
		DriverID:      &driver.ID,
		VehicleID:     &vehicle.ID,
		CarrierID:     carrierID,
		CreatedBy:     input.Actor,
	}

	if err := s.autofillFromBooking(ctx, record, false); err != nil {
		return nil, err
	}
	record.SenasaLineComposite = senasaComposite(record.Senasa, record.Line)

	cands := candidates(record)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.checkAndClaim(ctx, tx, record, cands, true, input.Actor, "dispatch"); err != nil {
			return err
		}
		if err := s.repo.WithTx(tx).Create(ctx, record); err != nil {
			return err
		}
		return s.trail.Write(ctx, tx, audit.Entry{
			RecordID: &record.ID,
			Action:   enums.AuditActionRecordCreate,
			After:    snapshot(record),
			Actor:    input.Actor,
		})
	})
	if err != nil {
		return nil, s.mapClaimError(ctx, err, record.OwnerRef(), cands)
	}
	return record, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Record, error) {
	record, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Process moves a pending record to processed and releases its container
// lock. Re-processing an already processed record is a no-op; voided records
// refuse.
func (s *service) Process(ctx context.Context, id uuid.UUID, actor string) (*models.Record, error) {
	var out *models.Record
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		record, err := repo.GetByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
		}
		if err != nil {
			return err
		}

		if record.Status.IsProcessedLike() {
			out = record
			return nil
		}
		if record.Status == enums.RecordStatusVoided {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "voided records cannot be processed").
				WithDetails(map[string]string{"status": record.Status.String()})
		}

		before := snapshot(record)
		now := time.Now()
		record.Status = enums.RecordStatusProcessed
		record.ProcessedAt = &now

		if err := repo.Save(ctx, record); err != nil {
			return err
		}
		if err := s.ledger.Release(ctx, tx, record.OwnerRef(), []enums.CodeType{enums.CodeTypeContainer}); err != nil {
			return err
		}
		if err := s.trail.Write(ctx, tx, audit.Entry{
			RecordID: &record.ID,
			Action:   enums.AuditActionRecordProcess,
			Before:   before,
			After:    snapshot(record),
			Actor:    actor,
		}); err != nil {
			return err
		}
		out = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Void cancels a processed record. A non-empty reason is mandatory; it goes
// on the record and into the trail.
func (s *service) Void(ctx context.Context, id uuid.UUID, reason, actor string) (*models.Record, error) {
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "void reason is required")
	}

	var out *models.Record
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		record, err := repo.GetByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
		}
		if err != nil {
			return err
		}

		if !record.Status.IsProcessedLike() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only processed records can be voided").
				WithDetails(map[string]string{"status": record.Status.String()})
		}

		before := snapshot(record)
		now := time.Now()
		record.Status = enums.RecordStatusVoided
		record.VoidedAt = &now
		record.VoidReason = reason

		if err := repo.Save(ctx, record); err != nil {
			return err
		}
		// Normally released at process time already; voiding re-asserts it so
		// the container is free regardless of how the record got here.
		if err := s.ledger.Release(ctx, tx, record.OwnerRef(), []enums.CodeType{enums.CodeTypeContainer}); err != nil {
			return err
		}
		if err := s.trail.Write(ctx, tx, audit.Entry{
			RecordID: &record.ID,
			Action:   enums.AuditActionRecordVoid,
			Before:   before,
			After:    snapshot(record),
			Reason:   reason,
			Actor:    actor,
		}); err != nil {
			return err
		}
		out = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Edit corrects a processed record by group, then re-derives and re-claims
// the full code set. Claims replace; nothing is patched in place. Because the
// record is already processed the container code is re-claimed unlocked.
func (s *service) Edit(ctx context.Context, id uuid.UUID, input EditInput) (*models.Record, error) {
	if input.empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one edit group is required")
	}

	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !record.Status.IsProcessedLike() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only processed records can be edited").
			WithDetails(map[string]string{"status": record.Status.String()})
	}

	before := snapshot(record)

	if input.Driver != nil {
		driver, err := s.dir.DriverByDocument(ctx, input.Driver.DriverDocument)
		if err != nil {
			return nil, err
		}
		record.DriverID = &driver.ID
		record.Driver = driver
	}
	if input.Carrier != nil {
		carrier, err := s.dir.ResolveCarrier(ctx, input.Carrier.CarrierName)
		if err != nil {
			return nil, err
		}
		record.CarrierID = &carrier.ID
		record.Carrier = carrier
	}
	if input.Booking != nil {
		record.Booking = uniqueness.Normalize(input.Booking.Booking)
		if err := s.autofillFromBooking(ctx, record, true); err != nil {
			return nil, err
		}
	}
	if input.Container != nil {
		record.ContainerCode = uniqueness.Normalize(input.Container.ContainerCode)
	}
	if input.Thermographs != nil {
		record.Thermograph1 = normalizeMulti(input.Thermographs.Thermograph1)
		record.Thermograph2 = normalizeMulti(input.Thermographs.Thermograph2)
	}
	if input.Seals != nil {
		record.SealBeta = normalizeMulti(input.Seals.SealBeta)
		record.SealCustoms = uniqueness.Normalize(input.Seals.SealCustoms)
		record.SealOperator = uniqueness.Normalize(input.Seals.SealOperator)
	}
	record.SenasaLineComposite = senasaComposite(record.Senasa, record.Line)

	cands := candidates(record)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.checkAndClaim(ctx, tx, record, cands, false, input.Actor, "edit"); err != nil {
			return err
		}
		if err := s.repo.WithTx(tx).Save(ctx, record); err != nil {
			return err
		}
		return s.trail.Write(ctx, tx, audit.Entry{
			RecordID: &record.ID,
			Action:   enums.AuditActionRecordEdit,
			Before:   before,
			After:    snapshot(record),
			Actor:    input.Actor,
		})
	})
	if err != nil {
		return nil, s.mapClaimError(ctx, err, record.OwnerRef(), cands)
	}
	return record, nil
}

func (s *service) History(ctx context.Context, filter HistoryFilter) ([]models.Record, int64, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter").
			WithDetails(map[string]string{"status": filter.Status.String()})
	}
	filter.Booking = uniqueness.Normalize(filter.Booking)
	return s.repo.ListHistory(ctx, filter)
}

// ProcessedOn lists the dispatches processed during one local day in the
// reporting timezone.
func (s *service) ProcessedOn(ctx context.Context, day time.Time) ([]models.Record, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, s.loc)
	return s.repo.ListProcessedBetween(ctx, start, start.AddDate(0, 0, 1))
}

func (s *service) Dashboard(ctx context.Context, from, to time.Time) (*DashboardStats, error) {
	if !to.After(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date range is empty")
	}
	byStatus, err := s.repo.StatusCountsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListProcessedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	dayTotals := map[string]int64{}
	carrierTotals := map[string]int64{}
	var days []string
	for _, row := range rows {
		if row.ProcessedAt == nil {
			continue
		}
		day := row.ProcessedAt.In(s.loc).Format("2006-01-02")
		if _, seen := dayTotals[day]; !seen {
			days = append(days, day)
		}
		dayTotals[day]++
		name := "unassigned"
		if row.Carrier != nil {
			name = row.Carrier.Name
		}
		carrierTotals[name]++
	}

	stats := &DashboardStats{ByStatus: byStatus}
	for _, day := range days {
		stats.ByDay = append(stats.ByDay, DayCount{Day: day, Total: dayTotals[day]})
	}
	for name, total := range carrierTotals {
		stats.ByCarrier = append(stats.ByCarrier, CarrierCount{Carrier: name, Total: total})
	}
	return stats, nil
}

// checkAndClaim validates the candidate set against the ledger and claims it
// for the record, all on the supplied transaction.
func (s *service) checkAndClaim(ctx context.Context, tx *gorm.DB, record *models.Record, cands []uniqueness.Candidate, lock bool, actor, origin string) error {
	conflicts, err := s.ledger.Validate(ctx, tx, cands, record.OwnerRef())
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return conflictError(conflicts)
	}
	return s.ledger.Claim(ctx, tx, uniqueness.ClaimInput{
		OwnerRef:   record.OwnerRef(),
		Origin:     origin,
		Actor:      actor,
		Lock:       lock,
		Candidates: cands,
	})
}

// mapClaimError converts a storage race into the same conflict shape the
// validation path produces, re-validating once outside the failed
// transaction.
func (s *service) mapClaimError(ctx context.Context, err error, ownerRef string, cands []uniqueness.Candidate) error {
	if !errors.Is(err, uniqueness.ErrStorageRace) {
		return err
	}
	conflicts, verr := s.ledger.Validate(ctx, nil, cands, ownerRef)
	if verr == nil && len(conflicts) > 0 {
		return conflictError(conflicts)
	}
	return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "codes were claimed concurrently")
}

func conflictError(conflicts []uniqueness.Conflict) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "business codes already in use").
		WithDetails(map[string]any{"conflicts": conflicts})
}

// autofillFromBooking pulls pre-assigned codes for the record's booking.
// Create fills blanks only. A booking edit re-derives the three codes from
// the reference row outright, clearing them when the new booking has no row,
// so nothing from the previous booking survives.
func (s *service) autofillFromBooking(ctx context.Context, record *models.Record, overwrite bool) error {
	var codes refs.BookingCodes
	if record.Booking != "" {
		var err error
		codes, err = s.refs.LookupByBooking(ctx, record.Booking)
		if err != nil {
			return err
		}
	}
	if overwrite {
		record.OrderCode = codes.OrderCode
		record.ContainerCode = codes.ContainerCode
		record.CustomsDoc = codes.CustomsDocCode
		return nil
	}
	if codes.OrderCode != "" && record.OrderCode == "" {
		record.OrderCode = codes.OrderCode
	}
	if codes.ContainerCode != "" && record.ContainerCode == "" {
		record.ContainerCode = codes.ContainerCode
	}
	if codes.CustomsDocCode != "" && record.CustomsDoc == "" {
		record.CustomsDoc = codes.CustomsDocCode
	}
	return nil
}

// normalizeMulti canonicalizes a slash-separated multi-value field, dropping
// blank and wildcard parts.
func normalizeMulti(value string) string {
	return uniqueness.JoinMulti(uniqueness.SplitMulti(value))
}

// candidates derives the full claim set from the record's business codes.
// Thermograph and beta-seal fields can carry several devices in one
// slash-separated value; each part is claimed on its own. Blank and wildcard
// values drop out inside the ledger.
func candidates(record *models.Record) []uniqueness.Candidate {
	cands := []uniqueness.Candidate{
		{Type: enums.CodeTypeOrder, Value: record.OrderCode},
		{Type: enums.CodeTypeBooking, Value: record.Booking},
		{Type: enums.CodeTypeContainer, Value: record.ContainerCode},
	}
	for _, value := range uniqueness.SplitMulti(record.Thermograph1) {
		cands = append(cands, uniqueness.Candidate{Type: enums.CodeTypeThermograph, Value: value})
	}
	for _, value := range uniqueness.SplitMulti(record.Thermograph2) {
		cands = append(cands, uniqueness.Candidate{Type: enums.CodeTypeThermograph, Value: value})
	}
	for _, value := range uniqueness.SplitMulti(record.SealBeta) {
		cands = append(cands, uniqueness.Candidate{Type: enums.CodeTypeSealBeta, Value: value})
	}
	return append(cands,
		uniqueness.Candidate{Type: enums.CodeTypeSealCustoms, Value: record.SealCustoms},
		uniqueness.Candidate{Type: enums.CodeTypeSealOperator, Value: record.SealOperator},
		uniqueness.Candidate{Type: enums.CodeTypeSenasaLine, Value: record.SenasaLineComposite},
	)
}

func parsePlatePair(combined string) (string, string, error) {
	parts := uniqueness.SplitMulti(combined)
	if len(parts) != 2 {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "plates must be the TRACTOR/TRAILER pair").
			WithDetails(map[string]string{"plates": combined})
	}
	return parts[0], parts[1], nil
}

func senasaComposite(senasa, line string) string {
	if line == "" {
		return senasa
	}
	if senasa == "" {
		return "PS." + line
	}
	return senasa + "/PS." + line
}

// recordSnapshot is the audited view of a record: business fields only, no
// association objects.
type recordSnapshot struct {
	ID                  uuid.UUID          `json:"id"`
	Status              enums.RecordStatus `json:"status"`
	DispatchDate        time.Time          `json:"dispatch_date"`
	Booking             string             `json:"booking"`
	OrderCode           string             `json:"order_code"`
	ContainerCode       string             `json:"container_code"`
	CustomsDoc          string             `json:"customs_doc"`
	Thermograph1        string             `json:"thermograph1"`
	Thermograph2        string             `json:"thermograph2"`
	SealBeta            string             `json:"seal_beta"`
	SealCustoms         string             `json:"seal_customs"`
	SealOperator        string             `json:"seal_operator"`
	Senasa              string             `json:"senasa"`
	Line                string             `json:"line"`
	SenasaLineComposite string             `json:"senasa_line_composite"`
	PlateTractor        string             `json:"plate_tractor"`
	PlateTrailer        string             `json:"plate_trailer"`
	DriverID            *uuid.UUID         `json:"driver_id"`
	VehicleID           *uuid.UUID         `json:"vehicle_id"`
	CarrierID           *uuid.UUID         `json:"carrier_id"`
	VoidReason          string             `json:"void_reason,omitempty"`
}

func snapshot(record *models.Record) json.RawMessage {
	raw, err := json.Marshal(recordSnapshot{
		ID:                  record.ID,
		Status:              record.Status,
		DispatchDate:        record.DispatchDate,
		Booking:             record.Booking,
		OrderCode:           record.OrderCode,
		ContainerCode:       record.ContainerCode,
		CustomsDoc:          record.CustomsDoc,
		Thermograph1:        record.Thermograph1,
		Thermograph2:        record.Thermograph2,
		SealBeta:            record.SealBeta,
		SealCustoms:         record.SealCustoms,
		SealOperator:        record.SealOperator,
		Senasa:              record.Senasa,
		Line:                record.Line,
		SenasaLineComposite: record.SenasaLineComposite,
		PlateTractor:        record.PlateTractor,
		PlateTrailer:        record.PlateTrailer,
		DriverID:            record.DriverID,
		VehicleID:           record.VehicleID,
		CarrierID:           record.CarrierID,
		VoidReason:          record.VoidReason,
	})
	if err != nil {
		return nil
	}
	return raw
}
