package service

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tintin4303/uniplanner-sub000/internal/models"
	"github.com/tintin4303/uniplanner-sub000/internal/planner"
	"github.com/tintin4303/uniplanner-sub000/pkg/export"
	"github.com/tintin4303/uniplanner-sub000/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders saved schedules into downloadable files.
type ExportService struct {
	schedules savedScheduleRepository
	storage   fileStorage
	csv       csvRenderer
	pdf       pdfRenderer
	signer    *storage.SignedURLSigner
	logger    *zap.Logger
	cfg       ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(schedules savedScheduleRepository, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		schedules: schedules,
		storage:   store,
		csv:       csv,
		pdf:       pdf,
		signer:    signer,
		logger:    logger,
		cfg:       cfg,
	}
}

// Generate renders the job's schedule and stores the result file.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	saved, err := s.schedules.FindByID(ctx, job.ScheduleID)
	if err != nil {
		return nil, fmt.Errorf("load schedule %s: %w", job.ScheduleID, err)
	}
	if saved.Schedule == nil {
		return nil, fmt.Errorf("schedule %s has no payload", job.ScheduleID)
	}

	dataset := buildTimetableDataset(*saved.Schedule)
	var payload []byte
	switch job.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, saved.Label)
	default:
		err = fmt.Errorf("unsupported format %s", job.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job, saved.Label)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/exports/download/%s", prefix, token),
		Format:       job.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ExportJob, label string) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("schedule_%s_%s.%s", sanitizeFilename(label), timestamp, job.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(strings.ToLower(raw))
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

// buildTimetableDataset flattens a schedule into one row per session, day
// order first, then start time. Untimed sections close the table with blank
// time cells.
func buildTimetableDataset(schedule models.Schedule) export.Dataset {
	headers := []string{"Day", "Start", "End", "Subject", "Section", "Credits"}
	rows := make([]map[string]string, 0)

	type timedRow struct {
		dayIndex int
		start    int
		row      map[string]string
	}
	timed := make([]timedRow, 0)
	dayIndex := make(map[models.Weekday]int, len(models.AllWeekdays))
	for i, day := range models.AllWeekdays {
		dayIndex[day] = i
	}

	for _, section := range schedule.Sections {
		if section.NoTime {
			continue
		}
		for _, session := range section.Sessions {
			timed = append(timed, timedRow{
				dayIndex: dayIndex[session.Day],
				start:    session.Start,
				row: map[string]string{
					"Day":     session.Day.Label(),
					"Start":   planner.FormatClock(session.Start),
					"End":     planner.FormatClock(session.End),
					"Subject": section.Name,
					"Section": section.SectionLabel,
					"Credits": fmt.Sprintf("%d", section.Credits),
				},
			})
		}
	}
	sort.SliceStable(timed, func(i, j int) bool {
		if timed[i].dayIndex == timed[j].dayIndex {
			return timed[i].start < timed[j].start
		}
		return timed[i].dayIndex < timed[j].dayIndex
	})
	for _, t := range timed {
		rows = append(rows, t.row)
	}

	for _, section := range schedule.Sections {
		if !section.NoTime {
			continue
		}
		rows = append(rows, map[string]string{
			"Day":     "",
			"Start":   "",
			"End":     "",
			"Subject": section.Name,
			"Section": section.SectionLabel,
			"Credits": fmt.Sprintf("%d", section.Credits),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
