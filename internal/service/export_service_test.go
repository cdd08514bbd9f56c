package service

import (
	"context"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/horunap/timetable-api/internal/models"
	appErrors "github.com/horunap/timetable-api/pkg/errors"
	"github.com/horunap/timetable-api/pkg/jobs"
	"github.com/horunap/timetable-api/pkg/storage"
)

func TestExportServiceCSVJobLifecycle(t *testing.T) {
	svc := newExportFixture(t, []models.AssignmentDetail{
		mockDetail("a-1", detailOpts{courseCapacity: 30, roomCapacity: 40}),
	})
	svc.Start(context.Background())
	defer svc.Stop()

	job, err := svc.Enqueue(context.Background(), "sched-1", models.ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusPending, job.Status)

	require.Eventually(t, func() bool {
		status, err := svc.Status(job.ID)
		return err == nil && status.Status == models.ExportStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	status, err := svc.Status(job.ID)
	require.NoError(t, err)
	require.NotEmpty(t, status.DownloadURL)
	assert.Contains(t, status.DownloadURL, "/downloads?token=")
	require.NotNil(t, status.ExpiresAt)

	parsed, err := url.Parse(status.DownloadURL)
	require.NoError(t, err)
	file, err := svc.OpenSigned(parsed.Query().Get("token"))
	require.NoError(t, err)
	defer file.Close()

	payload, err := io.ReadAll(file)
	require.NoError(t, err)
	content := string(payload)
	assert.True(t, strings.HasPrefix(content, "Day,Block,Course,Instructor,Room"))
	assert.Contains(t, content, "MAT101")
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc := newExportFixture(t, nil)

	_, err := svc.Enqueue(context.Background(), "sched-1", models.ExportFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportServiceEnqueueScheduleNotFound(t *testing.T) {
	svc := NewExportService(
		&scheduleCrudStub{missing: true},
		detailReaderStub{},
		newTestStorage(t),
		storage.NewSignedURLSigner("secret", time.Hour),
		ExportConfig{Queue: jobs.QueueConfig{Workers: 1}},
		zap.NewNop(),
	)

	_, err := svc.Enqueue(context.Background(), "missing", models.ExportFormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExportServiceStatusUnknownJob(t *testing.T) {
	svc := newExportFixture(t, nil)

	_, err := svc.Status("missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExportServiceOpenSignedRejectsForgedToken(t *testing.T) {
	svc := newExportFixture(t, nil)

	_, err := svc.OpenSigned("forged-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestBuildTimetableDatasetOrdersAndFiltersRows(t *testing.T) {
	friday := mockDetail("a-1", detailOpts{courseCapacity: 20, roomCapacity: 40})
	friday.Day = models.WeekdayFriday
	monLate := mockDetail("a-2", detailOpts{courseCapacity: 20, roomCapacity: 40})
	monLate.Block = models.Block1400
	monEarly := mockDetail("a-3", detailOpts{courseCapacity: 20, roomCapacity: 40})
	hidden := mockDetail("a-4", detailOpts{courseCapacity: 20, roomCapacity: 40, inactive: true})

	dataset := buildTimetableDataset([]models.AssignmentDetail{friday, monLate, monEarly, hidden})
	require.Len(t, dataset.Rows, 3, "inactive assignments stay out of exports")
	assert.Equal(t, "MONDAY", dataset.Rows[0][0])
	assert.Equal(t, "08:00-10:00", dataset.Rows[0][1])
	assert.Equal(t, "14:00-16:00", dataset.Rows[1][1])
	assert.Equal(t, "FRIDAY", dataset.Rows[2][0])
}

// --- Fixtures ---

func newExportFixture(t *testing.T, details []models.AssignmentDetail) *ExportService {
	t.Helper()
	return NewExportService(
		&scheduleCrudStub{},
		detailReaderStub{items: details},
		newTestStorage(t),
		storage.NewSignedURLSigner("secret", time.Hour),
		ExportConfig{Queue: jobs.QueueConfig{Workers: 1, Logger: zap.NewNop()}},
		zap.NewNop(),
	)
}

func newTestStorage(t *testing.T) *storage.LocalStorage {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return store
}
