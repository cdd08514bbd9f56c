package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/horunap/timetable-api/internal/dto"
	"github.com/horunap/timetable-api/internal/models"
	appErrors "github.com/horunap/timetable-api/pkg/errors"
	"github.com/horunap/timetable-api/pkg/export"
	"github.com/horunap/timetable-api/pkg/jobs"
	"github.com/horunap/timetable-api/pkg/storage"
)

type exportScheduleReader interface {
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
}

type exportAssignmentReader interface {
	ListDetailsBySchedule(ctx context.Context, scheduleID string) ([]models.AssignmentDetail, error)
}

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
	Queue     jobs.QueueConfig
}

// ExportService renders schedule timetables to CSV or PDF through the
// background queue. Job state lives in memory; the artifacts and the signed
// download tokens outlive the job records.
type ExportService struct {
	schedules   exportScheduleReader
	assignments exportAssignmentReader
	storage     fileStorage
	csv         csvRenderer
	pdf         pdfRenderer
	signer      *storage.SignedURLSigner
	queue       *jobs.Queue
	logger      *zap.Logger
	cfg         ExportConfig

	mu   sync.RWMutex
	jobs map[string]*models.ExportJob
}

// NewExportService constructs an ExportService and its queue. Call Start
// before enqueueing.
func NewExportService(
	schedules exportScheduleReader,
	assignments exportAssignmentReader,
	fileStore fileStorage,
	signer *storage.SignedURLSigner,
	cfg ExportConfig,
	logger *zap.Logger,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}

	s := &ExportService{
		schedules:   schedules,
		assignments: assignments,
		storage:     fileStore,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		signer:      signer,
		logger:      logger,
		cfg:         cfg,
		jobs:        make(map[string]*models.ExportJob),
	}
	queueCfg := cfg.Queue
	if queueCfg.Logger == nil {
		queueCfg.Logger = logger
	}
	s.queue = jobs.NewQueue("exports", s.process, queueCfg)
	return s
}

// Start launches the queue workers and sweeps stale artifacts.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
	if removed, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL); err != nil {
		s.logger.Warn("export cleanup failed", zap.Error(err))
	} else if len(removed) > 0 {
		s.logger.Info("stale exports removed", zap.Int("count", len(removed)))
	}
}

// Stop drains the queue.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Enqueue validates the request and queues an export job for the schedule.
func (s *ExportService) Enqueue(ctx context.Context, scheduleID string, format models.ExportFormat) (*dto.ExportJobResponse, error) {
	if format != models.ExportFormatCSV && format != models.ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if _, err := s.schedules.FindByID(ctx, scheduleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}

	job := &models.ExportJob{
		ID:         uuid.NewString(),
		ScheduleID: scheduleID,
		Format:     format,
		Status:     models.ExportStatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "export", Payload: job.ID}); err != nil {
		s.setFailed(job.ID, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}

	return &dto.ExportJobResponse{
		ID:         job.ID,
		ScheduleID: scheduleID,
		Format:     format,
		Status:     job.Status,
	}, nil
}

// Status returns the job state and, once completed, a signed download URL.
func (s *ExportService) Status(jobID string) (*dto.ExportStatusResponse, error) {
	s.mu.RLock()
	job, ok := s.jobs[jobID]
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}

	resp := &dto.ExportStatusResponse{
		ID:         job.ID,
		ScheduleID: job.ScheduleID,
		Format:     job.Format,
		Status:     job.Status,
		Error:      job.Error,
	}
	if job.Status == models.ExportStatusCompleted && job.RelativePath != "" {
		token, expiresAt, err := s.signer.Generate(job.ID, job.RelativePath)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download URL")
		}
		resp.DownloadURL = fmt.Sprintf("%s/downloads?token=%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token)
		resp.ExpiresAt = &expiresAt
	}
	return resp, nil
}

// OpenSigned validates a download token and opens the artifact it names.
func (s *ExportService) OpenSigned(token string) (*os.File, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export artifact not found")
	}
	return file, nil
}

func (s *ExportService) process(ctx context.Context, job jobs.Job) error {
	jobID, _ := job.Payload.(string)
	record := s.get(jobID)
	if record == nil {
		return fmt.Errorf("export job %s missing from registry", jobID)
	}
	s.setStatus(jobID, models.ExportStatusRunning)

	schedule, err := s.schedules.FindByID(ctx, record.ScheduleID)
	if err != nil {
		s.setFailed(jobID, err)
		return err
	}
	details, err := s.assignments.ListDetailsBySchedule(ctx, record.ScheduleID)
	if err != nil {
		s.setFailed(jobID, err)
		return err
	}

	dataset := buildTimetableDataset(details)
	title := fmt.Sprintf("Timetable %s (%s)", schedule.Name, schedule.Semester)

	var payload []byte
	switch record.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", record.Format)
	}
	if err != nil {
		s.setFailed(jobID, err)
		return err
	}

	filename := fmt.Sprintf("timetable_%s_%s.%s", record.ScheduleID, time.Now().UTC().Format("20060102T150405"), record.Format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		s.setFailed(jobID, err)
		return err
	}

	now := time.Now().UTC()
	s.mu.Lock()
	record.RelativePath = relPath
	record.Status = models.ExportStatusCompleted
	record.CompletedAt = &now
	s.mu.Unlock()

	s.logger.Info("export completed",
		zap.String("job_id", jobID),
		zap.String("schedule_id", record.ScheduleID),
		zap.String("format", string(record.Format)))
	return nil
}

func (s *ExportService) get(jobID string) *models.ExportJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobs[jobID]
}

func (s *ExportService) setStatus(jobID string, status models.ExportStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[jobID]; ok {
		job.Status = status
	}
}

func (s *ExportService) setFailed(jobID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[jobID]; ok {
		job.Status = models.ExportStatusFailed
		job.Error = err.Error()
	}
}

// buildTimetableDataset flattens active assignments into export rows sorted
// by day then block then course code.
func buildTimetableDataset(details []models.AssignmentDetail) export.Dataset {
	dayOrder := make(map[models.Weekday]int, len(models.AllWeekdays))
	for i, d := range models.AllWeekdays {
		dayOrder[d] = i
	}
	blockOrder := make(map[models.TimeBlock]int, len(models.AllTimeBlocks))
	for i, b := range models.AllTimeBlocks {
		blockOrder[b] = i
	}

	rows := make([][]string, 0, len(details))
	active := make([]models.AssignmentDetail, 0, len(details))
	for _, d := range details {
		if d.Active {
			active = append(active, d)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if dayOrder[active[i].Day] != dayOrder[active[j].Day] {
			return dayOrder[active[i].Day] < dayOrder[active[j].Day]
		}
		if blockOrder[active[i].Block] != blockOrder[active[j].Block] {
			return blockOrder[active[i].Block] < blockOrder[active[j].Block]
		}
		return active[i].CourseCode < active[j].CourseCode
	})
	for _, d := range active {
		rows = append(rows, []string{
			string(d.Day),
			string(d.Block),
			fmt.Sprintf("%s %s", d.CourseCode, d.CourseName),
			d.InstructorName,
			d.RoomName,
		})
	}

	return export.Dataset{
		Headers: []string{"Day", "Block", "Course", "Instructor", "Room"},
		Rows:    rows,
	}
}
