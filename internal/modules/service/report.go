package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/sitedash-io/sitedash/internal/config"
	"github.com/sitedash-io/sitedash/internal/infra/blob"
	"github.com/sitedash-io/sitedash/internal/pkg/dates"
)

const reportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Report is a rendered project workbook. ArchiveURL is only set when S3
// archiving is enabled and the upload succeeded.
type Report struct {
	Filename   string `json:"filename"`
	Content    []byte `json:"-"`
	ArchiveURL string `json:"archive_url,omitempty"`
}

type ReportService interface {
	// Generate renders the project overview into an XLSX workbook and
	// archives it when a blob store is configured.
	Generate(ctx context.Context, projectID string) (*Report, error)
}

type reportService struct {
	dashboard DashboardService
	s3        *blob.S3Deps // nil disables archiving
	cfg       *config.Config
	log       *zap.Logger
}

func NewReportService(dashboard DashboardService, s3 *blob.S3Deps, cfg *config.Config, log *zap.Logger) ReportService {
	return &reportService{
		dashboard: dashboard,
		s3:        s3,
		cfg:       cfg,
		log:       log,
	}
}

func (s *reportService) Generate(ctx context.Context, projectID string) (*Report, error) {
	ov, err := s.dashboard.LoadOverview(ctx, projectID, true)
	if err != nil {
		return nil, err
	}

	content, err := renderWorkbook(ov)
	if err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}

	report := &Report{
		Filename: fmt.Sprintf("%s-report-%s.xlsx", projectID, time.Now().UTC().Format("20060102")),
		Content:  content,
	}

	// Archive failures degrade to a download-only report.
	if s.s3 != nil {
		key := fmt.Sprintf("reports/%s/%s", projectID, report.Filename)
		url, err := s.s3.Upload(ctx, key, reportContentType, content)
		if err != nil {
			s.log.Warn("report archive failed", zap.String("project_id", projectID), zap.Error(err))
		} else {
			report.ArchiveURL = url
		}
	}

	return report, nil
}

func renderWorkbook(ov *Overview) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Overview"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	rows := [][2]any{
		{"Project", ov.Project.Name},
		{"ID", ov.Project.ID},
		{"Location", ov.Project.Location},
		{"Contractor", ov.Project.Contractor},
		{"Engineer", ov.Project.Engineer},
		{"Start Date", ov.StartDateDisplay},
		{"Deadline", ov.DeadlineDisplay},
		{"Budget", ov.Financial.Budget},
		{"Total Spent", ov.Financial.TotalSpent},
		{"Remaining", ov.Financial.Remaining},
		{"Budget Band", ov.Financial.Band},
		{"Completion %", ov.Tasks.CompletionPercent},
		{"Tasks Completed", fmt.Sprintf("%d / %d", ov.Tasks.CompletedCount, ov.Tasks.TotalCount)},
		{"Materials Dispatched %", ov.Materials.DispatchedPercent},
	}
	for i, row := range rows {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", i+1), row[0])
		f.SetCellValue(sheet, fmt.Sprintf("B%d", i+1), row[1])
	}

	const tasksSheet = "Tasks"
	if _, err := f.NewSheet(tasksSheet); err != nil {
		return nil, err
	}
	f.SetCellValue(tasksSheet, "A1", "Step")
	f.SetCellValue(tasksSheet, "B1", "Task")
	f.SetCellValue(tasksSheet, "C1", "Role")
	f.SetCellValue(tasksSheet, "D1", "Status")
	f.SetCellValue(tasksSheet, "E1", "Progress")
	f.SetCellValue(tasksSheet, "F1", "Due Date")
	f.SetCellValue(tasksSheet, "G1", "Completed")
	for i, t := range ov.TaskList {
		r := fmt.Sprint(i + 2)
		f.SetCellValue(tasksSheet, "A"+r, t.Step)
		f.SetCellValue(tasksSheet, "B"+r, t.Name)
		f.SetCellValue(tasksSheet, "C"+r, t.Role)
		f.SetCellValue(tasksSheet, "D"+r, t.Status)
		if t.Progress != nil {
			f.SetCellValue(tasksSheet, "E"+r, *t.Progress)
		}
		f.SetCellValue(tasksSheet, "F"+r, dates.FormatDisplay(t.DueDate))
		f.SetCellValue(tasksSheet, "G"+r, dates.FormatDisplay(t.CompletedAt))
	}

	const expensesSheet = "Expenses"
	if _, err := f.NewSheet(expensesSheet); err != nil {
		return nil, err
	}
	f.SetCellValue(expensesSheet, "A1", "Date")
	f.SetCellValue(expensesSheet, "B1", "Description")
	f.SetCellValue(expensesSheet, "C1", "Amount")
	f.SetCellValue(expensesSheet, "D1", "Category")
	f.SetCellValue(expensesSheet, "E1", "Recorded By")
	for i, e := range ov.ExpenseList {
		r := fmt.Sprint(i + 2)
		f.SetCellValue(expensesSheet, "A"+r, dates.FormatDisplay(e.Date))
		f.SetCellValue(expensesSheet, "B"+r, e.Description)
		f.SetCellValue(expensesSheet, "C"+r, e.Amount)
		f.SetCellValue(expensesSheet, "D"+r, e.Category)
		f.SetCellValue(expensesSheet, "E"+r, e.RecordedBy)
	}

	const materialsSheet = "Materials"
	if _, err := f.NewSheet(materialsSheet); err != nil {
		return nil, err
	}
	f.SetCellValue(materialsSheet, "A1", "Item")
	f.SetCellValue(materialsSheet, "B1", "Required")
	f.SetCellValue(materialsSheet, "C1", "Dispatched")
	f.SetCellValue(materialsSheet, "D1", "Balance")
	f.SetCellValue(materialsSheet, "E1", "Unit")
	for i, m := range ov.MaterialList {
		r := fmt.Sprint(i + 2)
		f.SetCellValue(materialsSheet, "A"+r, m.Item)
		f.SetCellValue(materialsSheet, "B"+r, m.Required)
		f.SetCellValue(materialsSheet, "C"+r, m.Dispatched)
		f.SetCellValue(materialsSheet, "D"+r, m.Balance())
		f.SetCellValue(materialsSheet, "E"+r, m.Unit)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
