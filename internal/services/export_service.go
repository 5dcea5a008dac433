package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/ksys/admission-service/internal/repositories"
)

const (
	exportSheet     = "Sheet1"
	exportBatchSize = 500
)

var exportHeader = []interface{}{
	"Admission ID", "Full Name", "Father Name", "Date of Birth", "Mobile",
	"Last Qualification", "Address", "Status", "Reviewed By", "Submitted At",
}

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ExportCandidates writes the matching candidates as an XLSX workbook
func (s *exportService) ExportCandidates(ctx context.Context, w io.Writer, filters repositories.CandidateFilters, actor string) error {
	if err := requireAdmin(ctx, s.repo, actor, "candidate", "export"); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(exportSheet, "A1", "J1", style)
	}
	_ = f.SetColWidth(exportSheet, "A", "J", 20)

	filters.Limit = exportBatchSize
	filters.Offset = 0
	filters.SortBy = "admission_id"
	filters.SortOrder = "asc"

	row := 2
	for {
		candidates, _, err := s.repo.Candidate().List(ctx, nil, filters)
		if err != nil {
			return fmt.Errorf("failed to load candidates: %w", err)
		}

		for _, c := range candidates {
			reviewedBy := ""
			if c.ReviewedBy != nil {
				reviewedBy = *c.ReviewedBy
			}
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			values := []interface{}{
				c.AdmissionID, c.FullName, c.FatherName, c.DateOfBirth, c.Mobile,
				c.LastQualification, c.Address, string(c.Status), reviewedBy,
				c.CreatedAt.Format("2006-01-02 15:04"),
			}
			if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
				return fmt.Errorf("failed to write row %d: %w", row, err)
			}
			row++
		}

		if len(candidates) < exportBatchSize {
			break
		}
		filters.Offset += exportBatchSize
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("Candidates exported", "rows", row-2, "actor", actor)
	return nil
}
