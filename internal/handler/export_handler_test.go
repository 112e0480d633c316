package handler

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studydesk-api/internal/dto"
	"github.com/noah-isme/studydesk-api/internal/models"
	"github.com/noah-isme/studydesk-api/internal/service"
	appErrors "github.com/noah-isme/studydesk-api/pkg/errors"
	"github.com/noah-isme/studydesk-api/pkg/middleware/usercontext"
)

type fakeExportSrv struct {
	requestedBy string
	lastReq     service.CreateExportRequest
	filePath    string
}

func (f *fakeExportSrv) Request(_ context.Context, req service.CreateExportRequest, requestedBy string) (*dto.ExportJobResponse, error) {
	f.lastReq = req
	f.requestedBy = requestedBy
	return &dto.ExportJobResponse{ExportJob: models.ExportJob{ID: "job-1", Type: req.Type, Format: req.Format, Status: models.ExportStatusQueued}}, nil
}

func (f *fakeExportSrv) Status(_ context.Context, id string) (*dto.ExportJobResponse, error) {
	if id != "job-1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
	}
	return &dto.ExportJobResponse{
		ExportJob:   models.ExportJob{ID: id, Status: models.ExportStatusFinished, Progress: 100},
		DownloadURL: "/api/v1/exports/download/tok",
	}, nil
}

func (f *fakeExportSrv) Open(_ context.Context, token string) (*service.Download, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download link")
	}
	file, err := os.Open(f.filePath)
	if err != nil {
		return nil, err
	}
	return &service.Download{File: file, Filename: "studydesk-grades-20240515.csv", ContentType: "text/csv"}, nil
}

func TestExportHandlerCreateRecordsCaller(t *testing.T) {
	fake := &fakeExportSrv{}
	router := newTestRouter(Handlers{Exports: NewExportHandler(fake, nil)})

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "student-7",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	withUser := newTestRouterWith(Handlers{Exports: NewExportHandler(fake, nil)}, usercontext.Middleware("secret"))
	req := newJSONRequestBody(t, http.MethodPost, "/api/v1/exports", map[string]interface{}{"type": "grades", "format": "pdf", "course_id": 2})
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := serve(withUser, req)

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.Equal(t, "student-7", fake.requestedBy)
	assert.Equal(t, models.ExportFormatPDF, fake.lastReq.Format)
	require.NotNil(t, fake.lastReq.CourseID)
	assert.Equal(t, int64(2), *fake.lastReq.CourseID)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/exports", map[string]string{"type": "grades", "format": "csv"})
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, fake.requestedBy)
}

func TestExportHandlerStatus(t *testing.T) {
	router := newTestRouter(Handlers{Exports: NewExportHandler(&fakeExportSrv{}, nil)})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/exports/job-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var job dto.ExportJobResponse
	decodeEnvelope(t, rec, &job)
	assert.Equal(t, models.ExportStatusFinished, job.Status)
	assert.Equal(t, "/api/v1/exports/download/tok", job.DownloadURL)

	requireErrorCode(t, doRequest(t, router, http.MethodGet, "/api/v1/exports/other", nil), http.StatusNotFound, "NOT_FOUND")
}

func TestExportHandlerDownload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job-1.csv")
	require.NoError(t, os.WriteFile(path, []byte("Course,Assignment\nCalculus,Midterm\n"), 0o600))
	router := newTestRouter(Handlers{Exports: NewExportHandler(&fakeExportSrv{filePath: path}, nil)})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/exports/download/good", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="studydesk-grades-20240515.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "Course,Assignment\nCalculus,Midterm\n", rec.Body.String())

	requireErrorCode(t, doRequest(t, router, http.MethodGet, "/api/v1/exports/download/forged", nil), http.StatusForbidden, "FORBIDDEN")
}
