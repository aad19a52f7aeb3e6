package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-admissions-api/internal/models"
	appErrors "github.com/noah-isme/uni-admissions-api/pkg/errors"
	"github.com/noah-isme/uni-admissions-api/pkg/export"
)

// Report export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

type exportApplicationRepo interface {
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error)
}

// ExportFile is a rendered report ready to stream to the client.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders officer workload reports as CSV or PDF downloads.
type ExportService struct {
	applications exportApplicationRepo
	officers     officerReader
	csv          *export.CSVExporter
	pdf          *export.PDFExporter
	logger       *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(applications exportApplicationRepo, officers officerReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		applications: applications,
		officers:     officers,
		csv:          export.NewCSVExporter(),
		pdf:          export.NewPDFExporter(),
		logger:       logger,
	}
}

// OfficerWorkloadReport renders the applications currently assigned to an
// officer in the requested format.
func (s *ExportService) OfficerWorkloadReport(ctx context.Context, officerID, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format: %s", format))
	}

	officer, err := s.officers.FindOfficer(ctx, officerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "officer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load officer")
	}

	filter := models.ApplicationFilter{
		OfficerID: officerID,
		SortBy:    "assigned_at",
		SortOrder: "ASC",
		PageSize:  100,
	}
	var rows []map[string]string
	for page := 1; ; page++ {
		filter.Page = page
		apps, total, err := s.applications.List(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list officer applications")
		}
		for _, app := range apps {
			rows = append(rows, workloadRow(app))
		}
		if len(rows) >= total || len(apps) == 0 {
			break
		}
	}

	dataset := export.Dataset{
		Headers: []string{"Application", "Applicant", "Program", "Session", "Status", "Submitted", "Assigned"},
		Rows:    rows,
	}

	stamp := time.Now().UTC().Format("20060102")
	switch format {
	case FormatPDF:
		payload, err := s.pdf.Render(dataset, fmt.Sprintf("Workload report for %s", officer.FullName))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("workload-%s-%s.pdf", officer.ID, stamp),
			ContentType: "application/pdf",
			Payload:     payload,
		}, nil
	default:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("workload-%s-%s.csv", officer.ID, stamp),
			ContentType: "text/csv",
			Payload:     payload,
		}, nil
	}
}

func workloadRow(app models.ApplicationDetail) map[string]string {
	row := map[string]string{
		"Application": app.ID,
		"Applicant":   app.ApplicantName,
		"Program":     app.ProgramName,
		"Session":     app.SessionName,
		"Status":      string(app.Status),
	}
	if app.SubmittedAt != nil {
		row["Submitted"] = app.SubmittedAt.UTC().Format(time.RFC3339)
	}
	if app.AssignedAt != nil {
		row["Assigned"] = app.AssignedAt.UTC().Format(time.RFC3339)
	}
	return row
}
