package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-seating-api/internal/dto"
	"github.com/noah-isme/sma-seating-api/internal/models"
	appErrors "github.com/noah-isme/sma-seating-api/pkg/errors"
)

// ClassroomSheet is the optional worksheet listing classrooms as ID, Name, Rows, Columns.
const ClassroomSheet = "Classrooms"

type studentUpserter interface {
	UpsertStudents(ctx context.Context, students []models.Student) (int, error)
}

type sessionReloader interface {
	Load(ctx context.Context) error
}

// RosterWorkbook is the parsed content of a roster spreadsheet.
type RosterWorkbook struct {
	Students   []models.Student
	Classrooms []models.Classroom
	Skipped    []dto.SkippedRow
}

// RosterImportService reads roster spreadsheets. The first sheet lists students as
// ID, Name, Class, House below a header row.
type RosterImportService struct {
	store    studentUpserter
	reloader sessionReloader
	logger   *zap.Logger
}

// NewRosterImportService constructs the importer. store and reloader may be nil when
// the service is only used to parse workbooks.
func NewRosterImportService(store studentUpserter, reloader sessionReloader, logger *zap.Logger) *RosterImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterImportService{store: store, reloader: reloader, logger: logger}
}

// Import parses r, upserts its students and reloads the session so they become candidates.
func (s *RosterImportService) Import(ctx context.Context, r io.Reader) (*dto.RosterImportResult, error) {
	if s.store == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "roster import is not available for this roster source")
	}
	workbook, err := s.ParseWorkbook(r)
	if err != nil {
		return nil, err
	}
	if len(workbook.Students) == 0 {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "workbook contains no importable students"), map[string]any{"skipped": workbook.Skipped})
	}
	count, err := s.store.UpsertStudents(ctx, workbook.Students)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store imported students")
	}
	if s.reloader != nil {
		if err := s.reloader.Load(ctx); err != nil {
			return nil, err
		}
	}
	s.logger.Info("roster imported", zap.Int("imported", count), zap.Int("skipped", len(workbook.Skipped)))
	return &dto.RosterImportResult{Imported: count, Skipped: workbook.Skipped, Students: workbook.Students}, nil
}

// ParseWorkbook reads students from the first sheet and classrooms from ClassroomSheet if present.
// Rows missing a field are skipped and reported. A repeated student ID keeps the first row.
func (s *RosterImportService) ParseWorkbook(r io.Reader) (*RosterWorkbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to open roster workbook")
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("closing roster workbook", zap.Error(err))
		}
	}()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "roster workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("failed to read sheet %s", sheet))
	}

	workbook := &RosterWorkbook{}
	seen := make(map[string]struct{})
	for i, row := range rows {
		if i == 0 {
			continue
		}
		id, name, class, house := cell(row, 0), cell(row, 1), cell(row, 2), cell(row, 3)
		if id == "" && name == "" && class == "" && house == "" {
			continue
		}
		if id == "" || name == "" || class == "" || house == "" {
			workbook.Skipped = append(workbook.Skipped, dto.SkippedRow{Row: i + 1, Reason: "ID, Name, Class and House are required"})
			continue
		}
		if _, dup := seen[id]; dup {
			workbook.Skipped = append(workbook.Skipped, dto.SkippedRow{Row: i + 1, Reason: fmt.Sprintf("duplicate student ID %s", id)})
			continue
		}
		seen[id] = struct{}{}
		workbook.Students = append(workbook.Students, models.Student{ID: id, Name: name, ClassSection: class, House: house})
	}

	classrooms, err := parseClassrooms(f)
	if err != nil {
		return nil, err
	}
	workbook.Classrooms = classrooms
	return workbook, nil
}

func parseClassrooms(f *excelize.File) ([]models.Classroom, error) {
	sheet := ""
	for _, name := range f.GetSheetList() {
		if strings.EqualFold(name, ClassroomSheet) {
			sheet = name
			break
		}
	}
	if sheet == "" {
		return nil, nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read classrooms sheet")
	}
	var out []models.Classroom
	for i, row := range rows {
		if i == 0 {
			continue
		}
		id := cell(row, 0)
		if id == "" {
			continue
		}
		name := cell(row, 1)
		if name == "" {
			name = id
		}
		rowsCount, errRows := optionalInt(cell(row, 2))
		colsCount, errCols := optionalInt(cell(row, 3))
		if err := errors.Join(errRows, errCols); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("classroom %s on row %d has invalid dimensions", id, i+1))
		}
		out = append(out, models.Classroom{ID: id, Name: name, Rows: rowsCount, Columns: colsCount})
	}
	return out, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func optionalInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// DefaultClassroomID names the classroom created for workbooks without a Classrooms sheet.
const DefaultClassroomID = "hall-1"

// LoadXLSXRoster reads the workbook at path into a MemoryRoster. Without a Classrooms
// sheet the roster gets a single classroom sized by the session defaults.
func LoadXLSXRoster(path string, logger *zap.Logger) (*MemoryRoster, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster file: %w", err)
	}
	defer file.Close()

	workbook, err := NewRosterImportService(nil, nil, logger).ParseWorkbook(file)
	if err != nil {
		return nil, err
	}
	classrooms := workbook.Classrooms
	if len(classrooms) == 0 {
		classrooms = []models.Classroom{{ID: DefaultClassroomID, Name: "Hall 1"}}
	}
	if logger != nil && len(workbook.Skipped) > 0 {
		logger.Warn("roster rows skipped", zap.String("file", path), zap.Int("skipped", len(workbook.Skipped)))
	}
	return NewMemoryRoster(workbook.Students, classrooms), nil
}
