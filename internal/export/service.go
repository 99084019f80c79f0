package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/clinops/docintake/internal/entity"
	"github.com/clinops/docintake/internal/repository"
)

// Service is a tiny façade over repositories that produces XLSX bytes for exports.
type Service struct {
	orders   repository.OrderRepository
	patients repository.PatientRepository
	logger   *slog.Logger
}

func NewService(orders repository.OrderRepository, patients repository.PatientRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{orders: orders, patients: patients, logger: logger}
}

// ExportOrdersXLSX returns an XLSX workbook (as bytes) with one row per
// order, optionally filtered to a single status.
func (s *Service) ExportOrdersXLSX(ctx context.Context, status string) ([]byte, error) {
	start := time.Now()

	orders, err := s.orders.List(ctx, 0, 10000)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	if status != "" {
		filtered := orders[:0]
		for _, o := range orders {
			if string(o.Status) == status {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}

	f := excelize.NewFile()
	const sheet = "Orders"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Order ID",
		"Patient",
		"Date of Birth",
		"Order Type",
		"Status",
		"Documents",
		"Created",
		"Completed",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, o := range orders {
		patientName := ""
		dob := ""
		if o.PatientID != nil {
			if p, err := s.patients.GetByID(ctx, *o.PatientID); err == nil {
				patientName = p.FullName()
				if p.DateOfBirth != nil {
					dob = *p.DateOfBirth
				}
			}
		}

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, o.ID.String())
		write(2, patientName)
		write(3, dob)
		write(4, o.OrderType)
		write(5, string(o.Status))
		write(6, len(o.Documents))
		write(7, o.CreatedAt.Format("2006-01-02"))
		write(8, completedDate(o))

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 38) // id
	_ = f.SetColWidth(sheet, "B", "B", 26) // patient
	_ = f.SetColWidth(sheet, "C", "C", 14) // dob
	_ = f.SetColWidth(sheet, "D", "E", 16) // type + status
	_ = f.SetColWidth(sheet, "G", "H", 12) // dates

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(orders),
		"status_filter", status,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func completedDate(o *entity.Order) string {
	if o.CompletedAt == nil {
		return ""
	}
	return o.CompletedAt.Format("2006-01-02")
}
