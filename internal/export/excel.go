package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"aoqbot/internal/domain"
	"aoqbot/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const (
	aoqSheet = "Оценки качества"
	npsSheet = "NPS"
)

// ExcelExporter собирает книгу статистики: лист с оценками качества и
// лист с NPS.
type ExcelExporter struct {
	repo   domain.Repository
	path   string
	logger *zerolog.Logger
}

func NewExcelExporter(repo domain.Repository, path string, logger *zerolog.Logger) *ExcelExporter {
	return &ExcelExporter{
		repo:   repo,
		path:   path,
		logger: logger,
	}
}

// Export выгружает все оценки в xlsx и возвращает путь к файлу.
func (e *ExcelExporter) Export(ctx context.Context) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	aoqRows, err := e.repo.GetAOQExportRows(ctx)
	if err != nil {
		return "", fmt.Errorf("error getting assessments: %v", err)
	}
	npsRows, err := e.repo.GetNPSExportRows(ctx)
	if err != nil {
		return "", fmt.Errorf("error getting nps: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := e.writeAOQSheet(f, aoqRows); err != nil {
		return "", err
	}
	if err := e.writeNPSSheet(f, npsRows); err != nil {
		return "", err
	}

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("stats_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(e.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	e.logger.Info().Str("file_path", filePath).Int("aoq", len(aoqRows)).Int("nps", len(npsRows)).Msg("Excel file created")
	return filePath, nil
}

func (e *ExcelExporter) writeAOQSheet(f *excelize.File, rows []*models.AOQExportRow) error {
	index, err := f.NewSheet(aoqSheet)
	if err != nil {
		return fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"ID", "Username", "Имя", "Соц. категория", "Организация",
		"Специалист", "Отдел", "Должность", "Услуга", "Оценка", "Комментарий", "Дата",
	}
	writeHeaderRow(f, aoqSheet, headers)

	for n, row := range rows {
		r := n + 2
		_ = f.SetCellValue(aoqSheet, fmt.Sprintf("A%d", r), row.ID)
		_ = f.SetCellValue(aoqSheet, fmt.Sprintf("B%d", r), row.Username)
		_ = f.SetCellValue(aoqSheet, fmt.Sprintf("C%d", r), row.UserFullName)
		_ = f.SetCellValue(aoqSheet, fmt.Sprintf("D%d", r), row.SocialCategory)
		_ = f.SetCellValue(aoqSheet, fmt.Sprintf("E%d", r), row.Organization)
		_ = f.SetCellValue(aoqSheet, fmt.Sprintf("F%d", r), row.SpecialistName)
		_ = f.SetCellValue(aoqSheet, fmt.Sprintf("G%d", r), row.Department)
		_ = f.SetCellValue(aoqSheet, fmt.Sprintf("H%d", r), row.Position)
		_ = f.SetCellValue(aoqSheet, fmt.Sprintf("I%d", r), row.ServiceName)
		_ = f.SetCellValue(aoqSheet, fmt.Sprintf("J%d", r), row.Score)
		_ = f.SetCellValue(aoqSheet, fmt.Sprintf("K%d", r), row.Comment)
		_ = f.SetCellValue(aoqSheet, fmt.Sprintf("L%d", r), row.CreatedAt.Format("02.01.2006 15:04"))
	}

	_ = f.SetColWidth(aoqSheet, "A", "A", 38)
	_ = f.SetColWidth(aoqSheet, "B", "I", 22)
	_ = f.SetColWidth(aoqSheet, "J", "J", 8)
	_ = f.SetColWidth(aoqSheet, "K", "K", 40)
	_ = f.SetColWidth(aoqSheet, "L", "L", 18)

	return nil
}

func (e *ExcelExporter) writeNPSSheet(f *excelize.File, rows []*models.NPSExportRow) error {
	if _, err := f.NewSheet(npsSheet); err != nil {
		return fmt.Errorf("error creating sheet: %v", err)
	}

	headers := []string{"ID", "Username", "Имя", "Организация", "Специалист", "Оценка", "Дата"}
	writeHeaderRow(f, npsSheet, headers)

	for n, row := range rows {
		r := n + 2
		_ = f.SetCellValue(npsSheet, fmt.Sprintf("A%d", r), row.ID)
		_ = f.SetCellValue(npsSheet, fmt.Sprintf("B%d", r), row.Username)
		_ = f.SetCellValue(npsSheet, fmt.Sprintf("C%d", r), row.UserFullName)
		_ = f.SetCellValue(npsSheet, fmt.Sprintf("D%d", r), row.Organization)
		_ = f.SetCellValue(npsSheet, fmt.Sprintf("E%d", r), row.SpecialistName)
		_ = f.SetCellValue(npsSheet, fmt.Sprintf("F%d", r), row.Score)
		_ = f.SetCellValue(npsSheet, fmt.Sprintf("G%d", r), row.CreatedAt.Format("02.01.2006 15:04"))
	}

	_ = f.SetColWidth(npsSheet, "A", "A", 38)
	_ = f.SetColWidth(npsSheet, "B", "E", 22)
	_ = f.SetColWidth(npsSheet, "F", "F", 8)
	_ = f.SetColWidth(npsSheet, "G", "G", 18)

	return nil
}

func writeHeaderRow(f *excelize.File, sheet string, headers []string) {
	style, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, header)
		_ = f.SetCellStyle(sheet, cell, cell, style)
	}
}
