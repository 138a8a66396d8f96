package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/resume-analyzer/internal/application"
	appanalysis "github.com/bryanwahyu/resume-analyzer/internal/application/analysis"
	appdocs "github.com/bryanwahyu/resume-analyzer/internal/application/documents"
	domain "github.com/bryanwahyu/resume-analyzer/internal/domain/analysis"
	"github.com/bryanwahyu/resume-analyzer/internal/domain/document"
	aiclient "github.com/bryanwahyu/resume-analyzer/internal/infra/ai/openai"
	"github.com/bryanwahyu/resume-analyzer/internal/infra/db/memory"
	"github.com/bryanwahyu/resume-analyzer/internal/middleware"
	"github.com/bryanwahyu/resume-analyzer/internal/mocks"
)

const fencedReply = "```json {\"match_score\": 88, \"matched_skills\": [\"Python\",\"AWS\"], \"missing_skills\": [], \"suggestions\": [\"Add leadership examples\"], \"insights\": [\"Strong technical fit\"]} ```"

var quietLog = slog.New(slog.NewTextHandler(io.Discard, nil))

type fixture struct {
	handler http.Handler
	ai      *mocks.MockAIClient
	ext     *mocks.MockExtractor
	repo    domain.Repository
}

type checkFunc func(ctx context.Context) error

func (f checkFunc) Check(ctx context.Context) error { return f(ctx) }

func newFixture(t *testing.T, repo domain.Repository, opts Options) *fixture {
	t.Helper()
	ai := new(mocks.MockAIClient)
	ext := new(mocks.MockExtractor)
	clock := application.FixedClock{T: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	if repo == nil {
		repo = memory.NewAnalysisRepository()
	}
	opts.Logger = quietLog

	analysisSvc := &appanalysis.Service{AI: ai, Repo: repo, Clock: clock, Logger: quietLog}
	docsSvc := &appdocs.Service{Extractor: ext, Clock: clock, Logger: quietLog}
	return &fixture{
		handler: NewRouter(analysisSvc, docsSvc, opts),
		ai:      ai,
		ext:     ext,
		repo:    repo,
	}
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func analyzeRequest(resume, job string) *http.Request {
	body, _ := json.Marshal(map[string]string{"resume_text": resume, "job_description": job})
	req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func uploadRequest(t *testing.T, field, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/extract-pdf", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAnalyze_WorkedExample(t *testing.T) {
	f := newFixture(t, nil, Options{})
	f.ai.On("Analyze", mock.Anything, "5 years Python, AWS", "Senior Python Engineer, AWS required").
		Return(fencedReply, nil).Once()

	rec := f.do(analyzeRequest("5 years Python, AWS", "Senior Python Engineer, AWS required"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, rec.Header().Get(PersistedHeader))
	assert.JSONEq(t, `{
		"match_score": 88,
		"matched_skills": ["Python", "AWS"],
		"missing_skills": [],
		"suggestions": ["Add leadership examples"],
		"insights": ["Strong technical fit"]
	}`, rec.Body.String())

	rec = f.do(httptest.NewRequest(http.MethodGet, "/analyses", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var list []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.NotContains(t, list[0], "id")
	assert.NotContains(t, list[0], "_id")
	assert.JSONEq(t, `"5 years Python, AWS"`, string(list[0]["resume_text"]))
	assert.JSONEq(t, `"2024-05-01T12:00:00Z"`, string(list[0]["created_at"]))

	var analysis domain.Result
	require.NoError(t, json.Unmarshal(list[0]["analysis"], &analysis))
	assert.Equal(t, 88, analysis.MatchScore)
	f.ai.AssertExpectations(t)
}

func TestAnalyze_EmptyResume(t *testing.T) {
	f := newFixture(t, nil, Options{})

	rec := f.do(analyzeRequest("   ", "Go engineer"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Both resume and job description are required"}`, rec.Body.String())
	f.ai.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything, mock.Anything)

	list, err := f.repo.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAnalyze_MalformedBody(t *testing.T) {
	f := newFixture(t, nil, Options{})

	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader("{not json"))
	rec := f.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "JSON object")
}

func TestAnalyze_UnparseableReply(t *testing.T) {
	f := newFixture(t, nil, Options{})
	reply := "Sure! Here is my analysis: {\"match_score\": \"high\"}"
	f.ai.On("Analyze", mock.Anything, mock.Anything, mock.Anything).Return(reply, nil)

	rec := f.do(analyzeRequest("resume", "job"))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var body domain.ErrorPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Error)
	assert.Equal(t, reply, body.RawResponse)
	assert.Equal(t, `{"match_score": "high"}`, body.ExtractedJSON)

	list, err := f.repo.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAnalyze_TransportFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"network", &domain.TransportError{Err: errors.New("connection refused")}, http.StatusBadGateway},
		{"upstream 500", &domain.TransportError{StatusCode: 500, Err: errors.New("boom")}, http.StatusBadGateway},
		{"quota", &domain.TransportError{StatusCode: 429, Err: domain.ErrQuotaExceeded}, http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, Options{})
			f.ai.On("Analyze", mock.Anything, mock.Anything, mock.Anything).Return("", tt.err)

			rec := f.do(analyzeRequest("resume", "job"))

			assert.Equal(t, tt.code, rec.Code)
			var body domain.ErrorPayload
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
			assert.Empty(t, body.RawResponse)
		})
	}
}

func TestAnalyze_UpstreamDetailStaysInLogs(t *testing.T) {
	rejecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid API Key gsk_abc123","type":"invalid_request_error","code":"invalid_api_key"}}`))
	}))
	defer rejecting.Close()

	unreachable := httptest.NewServer(http.NotFoundHandler())
	unreachableURL := unreachable.URL
	unreachable.Close()

	tests := []struct {
		name    string
		baseURL string
		leaks   []string
	}{
		{"provider rejects key", rejecting.URL + "/internal/openai/v1", []string{"gsk_abc123", "Invalid API Key", "401", rejecting.URL}},
		{"endpoint down", unreachableURL + "/internal/openai/v1", []string{unreachableURL, "/internal/openai", "tcp"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := application.FixedClock{T: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
			analysisSvc := &appanalysis.Service{
				AI:     aiclient.NewClient("gsk_abc123", tt.baseURL),
				Repo:   memory.NewAnalysisRepository(),
				Clock:  clock,
				Logger: quietLog,
			}
			h := NewRouter(analysisSvc, &appdocs.Service{Clock: clock}, Options{Logger: quietLog})

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, analyzeRequest("resume", "job"))

			assert.Equal(t, http.StatusBadGateway, rec.Code)
			assert.JSONEq(t, `{"error":"`+domain.MsgAIUnavailable+`"}`, rec.Body.String())
			for _, leak := range tt.leaks {
				assert.NotContains(t, rec.Body.String(), leak)
			}
		})
	}
}

func TestAnalyze_StorageFailureStillReturnsResult(t *testing.T) {
	repo := new(mocks.MockRepository)
	repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))
	f := newFixture(t, repo, Options{})
	f.ai.On("Analyze", mock.Anything, mock.Anything, mock.Anything).Return(fencedReply, nil)

	rec := f.do(analyzeRequest("resume", "job"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "false", rec.Header().Get(PersistedHeader))
	assert.Contains(t, rec.Body.String(), `"match_score":88`)
}

func TestAnalyze_BodyTooLarge(t *testing.T) {
	f := newFixture(t, nil, Options{MaxUploadBytes: 64})

	rec := f.do(analyzeRequest(strings.Repeat("x", 200), "job"))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	f.ai.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecent_NewestTenOnly(t *testing.T) {
	repo := memory.NewAnalysisRepository()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		require.NoError(t, repo.Save(context.Background(), &domain.Record{
			ResumeText:     fmt.Sprintf("resume %d", i),
			JobDescription: "job",
			Analysis:       domain.Result{MatchScore: i, MatchedSkills: []string{}, MissingSkills: []string{}, Suggestions: []string{}, Insights: []string{}},
			CreatedAt:      base.Add(time.Duration(i) * time.Hour),
		}))
	}
	f := newFixture(t, repo, Options{})

	rec := f.do(httptest.NewRequest(http.MethodGet, "/analyses?limit=50", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var list []domain.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 10)
	assert.Equal(t, 11, list[0].Analysis.MatchScore)
	assert.Equal(t, 2, list[9].Analysis.MatchScore)
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i].CreatedAt.After(list[i-1].CreatedAt))
	}
}

func TestRecent_EmptyIsArray(t *testing.T) {
	f := newFixture(t, nil, Options{})

	rec := f.do(httptest.NewRequest(http.MethodGet, "/analyses", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRecent_StorageError(t *testing.T) {
	repo := new(mocks.MockRepository)
	repo.On("Recent", mock.Anything, appanalysis.MaxRecent).Return(nil, errors.New("connection reset"))
	f := newFixture(t, repo, Options{})

	rec := f.do(httptest.NewRequest(http.MethodGet, "/analyses", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"failed to access analysis history"}`, rec.Body.String())
}

func TestExtract_Success(t *testing.T) {
	f := newFixture(t, nil, Options{})
	f.ext.On("Extract", mock.Anything, []byte("%PDF-1.4 fake")).Return("Jane Doe\nGo Engineer", nil).Once()

	rec := f.do(uploadRequest(t, "file", "resume.pdf", []byte("%PDF-1.4 fake")))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"text":"Jane Doe\nGo Engineer"}`, rec.Body.String())
	f.ext.AssertExpectations(t)
}

func TestExtract_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		filename string
		data     []byte
		extErr   error
		message  string
	}{
		{name: "missing field", field: "", message: "No file provided"},
		{name: "wrong field", field: "upload", filename: "resume.pdf", data: []byte("%PDF"), message: "No file provided"},
		{name: "not a pdf", field: "file", filename: "resume.txt", data: []byte("hello"), message: "File must be a PDF"},
		{name: "corrupt", field: "file", filename: "resume.pdf", data: []byte("garbage"),
			extErr: &document.ExtractionError{Err: errors.New("runtime error: index out of range")}, message: domain.MsgExtractionFailed},
		{name: "scanned image", field: "file", filename: "scan.pdf", data: []byte("%PDF"),
			extErr: document.ErrEmptyContent, message: "scanned image"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, Options{})
			if tt.extErr != nil {
				f.ext.On("Extract", mock.Anything, mock.Anything).Return("", tt.extErr)
			}

			rec := f.do(uploadRequest(t, tt.field, tt.filename, tt.data))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var body domain.ErrorPayload
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body.Error, tt.message)
			assert.NotContains(t, body.Error, "runtime error")
		})
	}
}

func TestHealthEndpoints(t *testing.T) {
	f := newFixture(t, nil, Options{
		Metrics: middleware.NewMetrics(),
		Health: map[string]middleware.HealthChecker{
			"database": checkFunc(func(ctx context.Context) error { return nil }),
		},
	})

	for _, path := range []string{"/health", "/healthz", "/readyz", "/metrics"} {
		rec := f.do(httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, nil, Options{AllowedOrigins: []string{"http://localhost:3000"}})

	req := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := f.do(req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{&domain.ValidationError{Message: "x"}, http.StatusBadRequest},
		{document.ErrEmptyContent, http.StatusBadRequest},
		{&document.ExtractionError{Err: errors.New("x")}, http.StatusBadRequest},
		{&domain.NormalizationError{Message: "x"}, http.StatusBadGateway},
		{&domain.TransportError{Err: errors.New("x")}, http.StatusBadGateway},
		{&domain.TransportError{StatusCode: 429, Err: domain.ErrQuotaExceeded}, http.StatusTooManyRequests},
		{&domain.StorageError{Op: "save", Err: errors.New("x")}, http.StatusInternalServerError},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, statusFor(tt.err), "%T", tt.err)
	}
}
