// Package export renders verification packages as XLSX workbooks for
// compliance reviewers.
package export

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/compliancehq/kyc-verifier/internal/output"
)

// Service produces XLSX bytes from a verification package.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ExportVerificationXLSX returns a workbook (as bytes) summarizing one
// verification run: a Summary sheet with the outcome and an Input Files
// sheet listing every processed file.
func (s *Service) ExportVerificationXLSX(pkg output.Package) ([]byte, error) {
	start := time.Now()
	exportID := uuid.New()

	f := excelize.NewFile()

	if err := s.writeSummarySheet(f, pkg); err != nil {
		return nil, err
	}
	if err := s.writeFilesSheet(f, pkg); err != nil {
		return nil, err
	}

	// The default sheet excelize creates is replaced by Summary.
	if index, err := f.GetSheetIndex("Summary"); err == nil && index != -1 {
		f.SetActiveSheet(index)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"export_id", exportID.String(),
		"package_id", pkg.PackageID,
		"files", len(pkg.FileMetadata),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func (s *Service) writeSummarySheet(f *excelize.File, pkg output.Package) error {
	const sheet = "Summary"
	if err := ensureSheet(f, sheet); err != nil {
		return err
	}

	v := pkg.FlowResults.Verification
	rows := [][2]any{
		{"Package ID", pkg.PackageID},
		{"Created At", pkg.CreatedAt},
		{"Package Status", pkg.PackageStatus},
		{"Run Status", pkg.FlowResults.Status},
		{"Execution Time (s)", pkg.FlowResults.ExecutionTime},
		{"Documents Processed", v.DocumentsProcessed},
		{"Risk Level", string(v.RiskLevel)},
		{"Compliance Status", string(v.ComplianceStatus)},
		{"Recommendation", string(v.Recommendation)},
		{"Missing Fields", joinOrDash(v.MissingFields)},
	}

	// Stage timings in a stable order under the outcome block.
	stages := make([]string, 0, len(pkg.FlowResults.Metrics))
	for name := range pkg.FlowResults.Metrics {
		stages = append(stages, name)
	}
	sort.Strings(stages)
	for _, name := range stages {
		rows = append(rows, [2]any{
			fmt.Sprintf("Stage %s (s)", name),
			pkg.FlowResults.Metrics[name],
		})
	}

	for i, r := range rows {
		keyCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valCell, _ := excelize.CoordinatesToCellName(2, i+1)
		_ = f.SetCellValue(sheet, keyCell, r[0])
		_ = f.SetCellValue(sheet, valCell, r[1])
	}

	_ = f.SetColWidth(sheet, "A", "A", 32)
	_ = f.SetColWidth(sheet, "B", "B", 48)
	return nil
}

func (s *Service) writeFilesSheet(f *excelize.File, pkg output.Package) error {
	const sheet = "Input Files"
	if err := ensureSheet(f, sheet); err != nil {
		return err
	}

	headers := []string{"File Name", "Type", "Size (MB)", "Extension", "Modified", "Extraction Error"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, rec := range pkg.FileMetadata {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, rec.FileName)
		write(2, rec.FileType)
		write(3, rec.FileSizeMB)
		write(4, rec.FileExt)
		write(5, rec.ModifiedDate)
		write(6, rec.ExtractionError)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 36)
	_ = f.SetColWidth(sheet, "B", "B", 18)
	_ = f.SetColWidth(sheet, "C", "D", 12)
	_ = f.SetColWidth(sheet, "E", "E", 22)
	_ = f.SetColWidth(sheet, "F", "F", 48)
	return nil
}

func ensureSheet(f *excelize.File, sheet string) error {
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}
	// Drop the workbook's default sheet once our own sheets exist.
	if sheet != "Sheet1" {
		if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
			_ = f.DeleteSheet("Sheet1")
		}
	}
	return nil
}

func joinOrDash(fields []string) string {
	if len(fields) == 0 {
		return "—"
	}
	out := fields[0]
	for _, s := range fields[1:] {
		out += ", " + s
	}
	return out
}
