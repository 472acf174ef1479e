package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-seating-api/internal/dto"
	"github.com/noah-isme/sma-seating-api/internal/models"
	appErrors "github.com/noah-isme/sma-seating-api/pkg/errors"
	"github.com/noah-isme/sma-seating-api/pkg/export"
	"github.com/noah-isme/sma-seating-api/pkg/jobs"
	"github.com/noah-isme/sma-seating-api/pkg/storage"
)

const exportJobType = "seating_chart"

type gridSource interface {
	SeatGrid(classroomID string) (*dto.GridResponse, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type tableRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type chartRenderer interface {
	Render(data export.Dataset, chart export.SeatChart) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportDownload is an opened export ready to stream.
type ExportDownload struct {
	File        *os.File
	Filename    string
	ContentType string
	ExpiresAt   time.Time
}

// ExportService renders classroom seating charts in the background and hands out signed
// download links. Job records live in memory; files outlive them until cleanup.
type ExportService struct {
	grids     gridSource
	storage   fileStorage
	signer    *storage.SignedURLSigner
	queue     jobDispatcher
	csv       chartRenderer
	pdf       chartRenderer
	xlsx      chartRenderer
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportConfig

	mu   sync.RWMutex
	jobs map[string]*models.ExportJob
}

// NewExportService constructs an ExportService. Call SetDispatcher before Request.
func NewExportService(grids gridSource, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, validate *validator.Validate, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		grids:     grids,
		storage:   store,
		signer:    signer,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		xlsx:      export.NewXLSXExporter(),
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		jobs:      make(map[string]*models.ExportJob),
	}
}

// SetDispatcher wires the queue whose handler is Process.
func (s *ExportService) SetDispatcher(queue jobDispatcher) {
	s.queue = queue
}

// Request queues a rendering of the classroom's current grid.
func (s *ExportService) Request(ctx context.Context, classroomID string, req dto.ExportRequest) (*dto.ExportJobResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be one of csv, pdf, xlsx")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "exports are disabled")
	}
	if _, err := s.grids.SeatGrid(classroomID); err != nil {
		return nil, err
	}

	job := &models.ExportJob{
		ID:          uuid.NewString(),
		ClassroomID: classroomID,
		Format:      req.Format,
		Status:      models.ExportStatusQueued,
		CreatedAt:   time.Now().UTC(),
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: exportJobType, Payload: classroomID}); err != nil {
		s.fail(job.ID, "failed to enqueue export")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}
	return s.Get(ctx, job.ID)
}

// Get returns the job's current status.
func (s *ExportService) Get(_ context.Context, id string) (*dto.ExportJobResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	resp := &dto.ExportJobResponse{
		ID:          job.ID,
		ClassroomID: job.ClassroomID,
		Format:      job.Format,
		Status:      job.Status,
		ExpiresAt:   job.ExpiresAt,
		Error:       job.ErrorMessage,
	}
	if job.Status == models.ExportStatusFinished && job.Token != "" {
		url := s.downloadURL(job.Token)
		resp.DownloadURL = &url
	}
	return resp, nil
}

// Process renders one queued job. It is the queue handler.
func (s *ExportService) Process(_ context.Context, queued jobs.Job) error {
	s.mu.Lock()
	job, ok := s.jobs[queued.ID]
	if ok {
		job.Status = models.ExportStatusProcessing
		job.Attempts++
	}
	s.mu.Unlock()
	if !ok {
		return nil
	}

	grid, err := s.grids.SeatGrid(job.ClassroomID)
	if err != nil {
		return fmt.Errorf("load grid %s: %w", job.ClassroomID, err)
	}
	dataset, chart := buildSeatingDataset(grid)

	var payload []byte
	switch job.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset, chart)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, chart)
	case models.ExportFormatXLSX:
		payload, err = s.xlsx.Render(dataset, chart)
	default:
		err = fmt.Errorf("unsupported format %s", job.Format)
	}
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("%s/%s_%s.%s", sanitizeFilename(job.ClassroomID), job.ID, time.Now().UTC().Format("20060102_150405"), job.Format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return err
	}
	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	s.mu.Lock()
	job.Status = models.ExportStatusFinished
	job.ResultPath = relPath
	job.Token = token
	job.FinishedAt = &now
	job.ExpiresAt = &expiresAt
	job.ErrorMessage = nil
	s.mu.Unlock()

	s.logger.Info("seating chart exported", zap.String("job_id", job.ID), zap.String("classroom_id", job.ClassroomID), zap.String("format", string(job.Format)))
	return nil
}

// MarkExhausted records a job that failed on every attempt. It is the queue's exhaustion hook.
func (s *ExportService) MarkExhausted(queued jobs.Job, err error) {
	s.fail(queued.ID, err.Error())
}

func (s *ExportService) fail(id, message string) {
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Status = models.ExportStatusFailed
		job.ErrorMessage = &message
		job.FinishedAt = &now
	}
}

// Resolve validates a download token and opens the file it names.
func (s *ExportService) Resolve(_ context.Context, token string) (*ExportDownload, error) {
	jobID, relPath, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "download link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid download token")
	}
	s.mu.RLock()
	job, ok := s.jobs[jobID]
	var format models.ExportFormat
	if ok {
		format = job.Format
		ok = job.Status == models.ExportStatusFinished && job.ResultPath == relPath
	}
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export not available")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	return &ExportDownload{
		File:        file,
		Filename:    filepath.Base(relPath),
		ContentType: contentType(format),
		ExpiresAt:   expiresAt,
	}, nil
}

// StartCleanup purges expired files and job records every interval until ctx ends.
func (s *ExportService) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Cleanup()
			}
		}
	}()
}

// Cleanup removes files older than the result TTL and forgets jobs that finished before it.
func (s *ExportService) Cleanup() {
	if _, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL); err != nil {
		s.logger.Warn("export cleanup failed", zap.Error(err))
	}
	cutoff := time.Now().Add(-s.cfg.ResultTTL)
	s.mu.Lock()
	for id, job := range s.jobs {
		if job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			delete(s.jobs, id)
		}
	}
	s.mu.Unlock()
}

func (s *ExportService) downloadURL(token string) string {
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return fmt.Sprintf("%s/exports/download?token=%s", prefix, token)
}

func buildSeatingDataset(grid *dto.GridResponse) (export.Dataset, export.SeatChart) {
	headers := []string{"Row", "Column", "Student ID", "Name", "Class", "House"}
	rows := make([]map[string]string, 0, grid.Rows*grid.Columns)
	cells := make([][]string, grid.Rows)
	for r, seats := range grid.Seats {
		cells[r] = make([]string, len(seats))
		for c, seat := range seats {
			record := map[string]string{
				"Row":    strconv.Itoa(seat.Row + 1),
				"Column": strconv.Itoa(seat.Column + 1),
			}
			if seat.Occupant != nil {
				record["Student ID"] = seat.Occupant.StudentID
				record["Name"] = seat.Occupant.Name
				record["Class"] = seat.Occupant.ClassSection
				record["House"] = seat.Occupant.House
				cells[r][c] = fmt.Sprintf("%s\n%s / %s", seat.Occupant.Name, seat.Occupant.ClassSection, seat.Occupant.House)
			}
			rows = append(rows, record)
		}
	}
	title := grid.Name
	if title == "" {
		title = grid.ClassroomID
	}
	return export.Dataset{Headers: headers, Rows: rows}, export.SeatChart{
		Title:   fmt.Sprintf("Seating chart %s", title),
		Rows:    grid.Rows,
		Columns: grid.Columns,
		Cells:   cells,
	}
}

func contentType(format models.ExportFormat) string {
	switch format {
	case models.ExportFormatPDF:
		return "application/pdf"
	case models.ExportFormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv"
	}
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
