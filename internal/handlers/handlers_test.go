package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-matcher/internal/apperrors"
	"alfredoptarigan/resume-matcher/internal/middleware"
	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/services"
)

const testSecret = "handler-test-secret-123"

type stubUploads struct {
	gotOwner uint
	gotFile  services.UploadFile
	gotBody  string
	err      error
}

func (s *stubUploads) Ingest(_ context.Context, ownerID uint, file services.UploadFile) (*models.Upload, error) {
	s.gotOwner = ownerID
	s.gotFile = file
	body, _ := io.ReadAll(file.Content)
	s.gotBody = string(body)
	if s.err != nil {
		return nil, s.err
	}
	return &models.Upload{ID: 12, UserID: ownerID, OriginalFilename: file.Filename, FileType: "txt", FileSize: int64(len(body))}, nil
}

func (s *stubUploads) ListRecent(_ context.Context, ownerID uint, limit int) ([]models.Upload, error) {
	return []models.Upload{{ID: 1, UserID: ownerID, OriginalFilename: "a.pdf"}}, nil
}

type stubAnalyses struct {
	gotInput services.AnalyzeInput
	err      error
}

func (s *stubAnalyses) Analyze(_ context.Context, _ uint, input services.AnalyzeInput) (*models.AnalysisResponse, error) {
	s.gotInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &models.AnalysisResponse{ID: 5, UploadID: input.UploadID, JobTitle: models.CustomJobTitle}, nil
}

type stubHistory struct {
	page, pageSize int
	getErr         error
}

func (s *stubHistory) List(_ context.Context, _ uint, page, pageSize int) (*models.HistoryResponse, error) {
	s.page, s.pageSize = page, pageSize
	return &models.HistoryResponse{Items: []models.HistoryItem{}, Page: page, PageSize: pageSize}, nil
}

func (s *stubHistory) Stats(context.Context, uint) (*models.Stats, error) {
	return &models.Stats{ResumeCount: 2}, nil
}

func (s *stubHistory) Trend(context.Context, uint, int) ([]models.TrendPoint, error) {
	return []models.TrendPoint{{Label: "Mar 1", Score: 70}}, nil
}

func (s *stubHistory) Get(_ context.Context, _ uint, id uint) (*models.AnalysisResponse, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &models.AnalysisResponse{ID: id}, nil
}

func (s *stubHistory) Related(context.Context, uint, uint, int) ([]models.HistoryItem, error) {
	return []models.HistoryItem{{ID: 3}}, nil
}

type testEnv struct {
	app      *fiber.App
	uploads  *stubUploads
	analyses *stubAnalyses
	history  *stubHistory
	token    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	verifier := middleware.NewTokenVerifier(testSecret)
	token, err := verifier.Issue(7, time.Hour)
	require.NoError(t, err)

	env := &testEnv{
		uploads:  &stubUploads{},
		analyses: &stubAnalyses{},
		history:  &stubHistory{},
		token:    token,
	}
	env.app = NewApp(Services{
		Uploads:  env.uploads,
		Analyses: env.analyses,
		History:  env.history,
	}, verifier, AppOptions{MaxFileSize: 1 << 20})
	return env
}

func (e *testEnv) do(t *testing.T, req *http.Request) (int, map[string]any) {
	t.Helper()
	req.Header.Set("Authorization", "Bearer "+e.token)

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHealthIsPublic(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.app.Test(httptest.NewRequest("GET", "/api/v1/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = env.app.Test(httptest.NewRequest("GET", "/api/v1/stats", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestUploadHandler(t *testing.T) {
	t.Run("multipart upload", func(t *testing.T) {
		env := newTestEnv(t)

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile(ResumeFormField, "cv.txt")
		require.NoError(t, err)
		_, _ = part.Write([]byte("Jane Doe"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest("POST", "/api/v1/uploads", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		status, body := env.do(t, req)

		assert.Equal(t, fiber.StatusCreated, status)
		assert.Equal(t, float64(12), body["id"])
		assert.Equal(t, uint(7), env.uploads.gotOwner)
		assert.Equal(t, "cv.txt", env.uploads.gotFile.Filename)
		assert.Equal(t, "Jane Doe", env.uploads.gotBody)
	})

	t.Run("missing file field", func(t *testing.T) {
		env := newTestEnv(t)

		status, body := env.do(t, jsonRequest("POST", "/api/v1/uploads", `{}`))

		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, "validation", body["kind"])
		assert.Equal(t, ResumeFormField, body["field"])
	})
}

func TestAnalyzeHandler(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		env := newTestEnv(t)

		status, body := env.do(t, jsonRequest("POST", "/api/v1/analyses", `{"upload_id": 10, "job_description": "Go dev"}`))

		assert.Equal(t, fiber.StatusCreated, status)
		assert.Equal(t, float64(5), body["id"])
		assert.Equal(t, uint(10), env.analyses.gotInput.UploadID)
		assert.Equal(t, "Go dev", env.analyses.gotInput.JobDescription)
	})

	t.Run("requires a job", func(t *testing.T) {
		env := newTestEnv(t)

		status, body := env.do(t, jsonRequest("POST", "/api/v1/analyses", `{"upload_id": 10}`))

		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, "validation", body["kind"])
	})

	t.Run("requires upload id", func(t *testing.T) {
		env := newTestEnv(t)

		status, body := env.do(t, jsonRequest("POST", "/api/v1/analyses", `{"job_description": "x"}`))

		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, "upload_id", body["field"])
	})

	errorCases := []struct {
		name       string
		err        error
		wantStatus int
		wantField  string
		wantValue  any
	}{
		{"not found", apperrors.NotFound("upload"), fiber.StatusNotFound, "", nil},
		{"blocked", &apperrors.ContentBlockedError{Reason: "SAFETY"}, fiber.StatusUnprocessableEntity, "reason", "SAFETY"},
		{"upstream http", &apperrors.HTTPError{Status: 503}, fiber.StatusBadGateway, "upstream_status", float64(503)},
		{"transport", &apperrors.TransportError{Err: context.DeadlineExceeded}, fiber.StatusBadGateway, "", nil},
		{"malformed", &apperrors.MalformedOutputError{Raw: "oops"}, fiber.StatusBadGateway, "raw_output", "oops"},
		{"persistence", apperrors.Persistence("insert", io.ErrUnexpectedEOF), fiber.StatusInternalServerError, "error", "Internal server error"},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.analyses.err = tc.err

			status, body := env.do(t, jsonRequest("POST", "/api/v1/analyses", `{"upload_id": 1, "job_id": 2}`))

			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, float64(tc.wantStatus), body["code"])
			assert.Equal(t, string(apperrors.KindOf(tc.err)), body["kind"])
			if tc.wantField != "" {
				assert.Equal(t, tc.wantValue, body[tc.wantField])
			}
		})
	}
}

func TestHistoryRoutes(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.do(t, httptest.NewRequest("GET", "/api/v1/analyses?page=3&page_size=20", nil))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 3, env.history.page)
	assert.Equal(t, 20, env.history.pageSize)

	status, body := env.do(t, httptest.NewRequest("GET", "/api/v1/analyses/9", nil))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(9), body["id"])

	status, body = env.do(t, httptest.NewRequest("GET", "/api/v1/analyses/abc", nil))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "id", body["field"])

	status, body = env.do(t, httptest.NewRequest("GET", "/api/v1/analyses/9/related", nil))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["items"], 1)

	status, body = env.do(t, httptest.NewRequest("GET", "/api/v1/stats", nil))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(2), body["resume_count"])
	assert.Nil(t, body["avg_score"])

	status, body = env.do(t, httptest.NewRequest("GET", "/api/v1/stats/trend", nil))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["points"], 1)

	status, body = env.do(t, httptest.NewRequest("GET", "/api/v1/uploads", nil))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["items"], 1)

	env.history.getErr = apperrors.NotFound("analysis")
	status, body = env.do(t, httptest.NewRequest("GET", "/api/v1/analyses/9", nil))
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "not_found", body["kind"])
}
