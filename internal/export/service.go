package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/frescamar/reefertrack-backend/pkg/db/models"
)

// processedSource lists the records processed during one reporting day.
type processedSource interface {
	ProcessedOn(ctx context.Context, day time.Time) ([]models.Record, error)
}

// Row is one line of the daily SAP dispatch sheet: the record joined with its
// resolved driver, vehicle and carrier.
type Row struct {
	DispatchDate  string `json:"dispatch_date"`
	ProcessedAt   string `json:"processed_at"`
	Booking       string `json:"booking"`
	OrderCode     string `json:"order_code"`
	ContainerCode string `json:"container_code"`
	CustomsDoc    string `json:"customs_doc"`
	Thermographs  string `json:"thermographs"`
	SealBeta      string `json:"seal_beta"`
	SealCustoms   string `json:"seal_customs"`
	SealOperator  string `json:"seal_operator"`
	SenasaLine    string `json:"senasa_line"`

	DriverDocument string `json:"driver_document"`
	DriverName     string `json:"driver_name"`
	DriverLicense  string `json:"driver_license"`
	Plates         string `json:"plates"`
	Certs          string `json:"certs"`
	CarrierName    string `json:"carrier_name"`
	CarrierTaxID   string `json:"carrier_tax_id"`
	CarrierSAPCode string `json:"carrier_sap_code"`
}

// Service assembles the daily dispatch sheet.
type Service interface {
	DailySheet(ctx context.Context, day time.Time) ([]Row, error)
}

type service struct {
	source processedSource
	loc    *time.Location
}

// NewService wires the export service. loc is the reporting timezone used to
// render timestamps on the sheet.
func NewService(source processedSource, loc *time.Location) (Service, error) {
	if source == nil {
		return nil, fmt.Errorf("processed record source required")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &service{source: source, loc: loc}, nil
}

func (s *service) DailySheet(ctx context.Context, day time.Time) ([]Row, error) {
	records, err := s.source.ProcessedOn(ctx, day)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(records))
	for _, record := range records {
		rows = append(rows, s.rowFor(record))
	}
	return rows, nil
}

func (s *service) rowFor(record models.Record) Row {
	row := Row{
		DispatchDate:  record.DispatchDate.In(s.loc).Format("2006-01-02"),
		Booking:       record.Booking,
		OrderCode:     record.OrderCode,
		ContainerCode: record.ContainerCode,
		CustomsDoc:    record.CustomsDoc,
		Thermographs:  joinPair(record.Thermograph1, record.Thermograph2),
		SealBeta:      record.SealBeta,
		SealCustoms:   record.SealCustoms,
		SealOperator:  record.SealOperator,
		SenasaLine:    record.SenasaLineComposite,
		Plates:        record.PlateTractor + "/" + record.PlateTrailer,
	}
	if record.ProcessedAt != nil {
		row.ProcessedAt = record.ProcessedAt.In(s.loc).Format("2006-01-02 15:04:05")
	}
	if record.Driver != nil {
		row.DriverDocument = record.Driver.DocumentID
		row.DriverName = record.Driver.DisplayName()
		row.DriverLicense = record.Driver.License
	}
	if record.Vehicle != nil {
		row.Certs = record.Vehicle.CertsCombined()
	}
	if record.Carrier != nil {
		row.CarrierName = record.Carrier.Name
		row.CarrierTaxID = record.Carrier.TaxID
		row.CarrierSAPCode = record.Carrier.SAPCode
	}
	return row
}

func joinPair(a, b string) string {
	if b == "" {
		return a
	}
	if a == "" {
		return b
	}
	return a + "/" + b
}

var csvHeader = []string{
	"dispatch_date", "processed_at", "booking", "order_code", "container",
	"customs_doc", "thermographs", "seal_beta", "seal_customs", "seal_operator",
	"senasa_line", "driver_document", "driver_name", "driver_license",
	"plates", "certs", "carrier", "carrier_tax_id", "carrier_sap_code",
}

// WriteCSV renders the sheet in the layout the SAP import expects.
func WriteCSV(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.DispatchDate, row.ProcessedAt, row.Booking, row.OrderCode,
			row.ContainerCode, row.CustomsDoc, row.Thermographs, row.SealBeta,
			row.SealCustoms, row.SealOperator, row.SenasaLine,
			row.DriverDocument, row.DriverName, row.DriverLicense,
			row.Plates, row.Certs, row.CarrierName, row.CarrierTaxID,
			row.CarrierSAPCode,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
