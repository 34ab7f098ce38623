package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/interview-prep/internal/config"
	"github.com/jonathan/interview-prep/internal/db"
	"github.com/jonathan/interview-prep/internal/fetch"
	"github.com/jonathan/interview-prep/internal/ingestion"
	"github.com/jonathan/interview-prep/internal/jobstore"
	"github.com/jonathan/interview-prep/internal/llm/llmtest"
	"github.com/jonathan/interview-prep/internal/pipeline"
	"github.com/jonathan/interview-prep/internal/responses"
	"github.com/jonathan/interview-prep/internal/server/ratelimit"
	"github.com/jonathan/interview-prep/internal/stages"
	"github.com/jonathan/interview-prep/internal/types"
	"github.com/jonathan/interview-prep/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testJobURL   = "https://boards.greenhouse.io/acme/jobs/42"
	testEvidence = "Reduced latency by 40% at Acme Corp (2019–2021)."
	testResume   = "Senior engineer.\nReduced latency by 40% at Acme Corp (2019–2021).\nBuilt Go services on Kubernetes."
)

type fakePages map[string]string

func (f fakePages) Page(_ context.Context, url string) (*fetch.Page, error) {
	text, ok := f[url]
	if !ok {
		return nil, &fetch.Error{URL: url, Message: "status 404"}
	}
	return &fetch.Page{URL: url, Text: text}, nil
}

// pipelineCaller scripts a run that passes review without repairs.
func pipelineCaller() *llmtest.Caller {
	var set stages.QuestionSet
	for _, q := range []string{
		"Walk me through the latency project.",
		"How do you debug production incidents?",
		"Describe a system you designed end to end.",
		"Tell me about a disagreement with a teammate.",
		"Why do you want to join Acme Corp?",
	} {
		set.Questions = append(set.Questions, stages.GeneratedQuestion{
			Text: q,
			TalkingPoints: []stages.GeneratedPoint{
				{Text: "Latency cut by 40%", Evidence: testEvidence},
				{Text: "Profiling hot paths"},
				{Text: "Rollout with feature flags"},
			},
		})
	}

	return llmtest.New().
		Respond(schemas.JobDetails, types.JobDetails{
			Company:        "Acme Corp",
			Title:          "Senior Backend Engineer",
			RequiredSkills: []string{"Go", "Kubernetes", "PostgreSQL"},
		}).
		Respond(schemas.ProfileAnalysis, types.ProfileAnalysis{
			Summary:  "Backend engineer",
			Skills:   []string{"Go", "Kubernetes"},
			Evidence: []string{testEvidence, "Built Go services on Kubernetes."},
		}).
		Respond(schemas.CandidateHighlights, types.CandidateHighlights{
			RelevantPoints: []types.HighlightPoint{
				{Text: "Reduced latency by 40% at Acme Corp", Evidence: testEvidence},
				{Text: "Go services in production", Evidence: "Built Go services on Kubernetes."},
				{Text: "Kubernetes operations", Evidence: "Built Go services on Kubernetes."},
			},
			GapAreas: []string{"PostgreSQL tuning", "People management"},
		}).
		Respond(schemas.CompanyInfo, types.CompanyInfo{
			Description:   "Acme builds anvils.",
			Culture:       []string{"Ownership"},
			BusinessFocus: []string{"Anvils"},
			TeamInfo:      []string{"Platform team"},
			RoleDetails:   []string{"Backend services"},
		}).
		Fail(schemas.InterviewRounds).
		Respond(schemas.QuestionSet, set)
}

// sweepCounter records DeleteExpired calls made by background sweeps and can fail reads.
type sweepCounter struct {
	*jobstore.MemoryArtifacts
	calls    atomic.Int32
	failGets atomic.Bool
}

func (c *sweepCounter) GetArtifact(ctx context.Context, id string) (*types.StoredArtifact, error) {
	if c.failGets.Load() {
		return nil, &db.PersistenceError{Op: "get artifact", Cause: errors.New("connection refused")}
	}
	return c.MemoryArtifacts.GetArtifact(ctx, id)
}

func (c *sweepCounter) DeleteExpired(ctx context.Context) (int64, error) {
	c.calls.Add(1)
	return c.MemoryArtifacts.DeleteExpired(ctx)
}

type testEnv struct {
	handler http.Handler
	store   *jobstore.Store
	durable *sweepCounter
	runner  *pipeline.Runner
	caller  *llmtest.Caller
	jwt     *JWTService
}

func newTestEnv(t *testing.T, caller *llmtest.Caller, mutate ...func(*Config)) *testEnv {
	t.Helper()
	env := &testEnv{durable: &sweepCounter{MemoryArtifacts: jobstore.NewMemoryArtifacts()}, caller: caller}
	env.store = jobstore.New(env.durable)
	orch := pipeline.NewOrchestrator(stages.Deps{Caller: caller, Pages: fakePages{testJobURL: "Senior Backend Engineer at Acme Corp"}}, env.store)
	env.runner = pipeline.NewRunner(orch, env.store, nil)
	env.jwt = NewJWTService(&config.JWTConfig{Secret: testSecret, ExpirationHours: 1})

	cfg := Config{
		MaxUploadBytes: 1 << 20,
		HistoryLimit:   20,
		RateLimit:      &ratelimit.Config{Enabled: false},
		JWT:            env.jwt,
	}
	for _, m := range mutate {
		m(&cfg)
	}

	srv := New(cfg, Deps{
		Store:     env.store,
		Runner:    env.runner,
		Responses: responses.NewService(responses.NewMemoryStore(), env.store, caller, nil),
	})
	env.handler = srv.Handler()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = env.runner.Shutdown(ctx)
		srv.sweeps.Wait()
		srv.rateLimiter.Stop()
	})
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *testEnv) getJSON(t *testing.T, path string, out any) *httptest.ResponseRecorder {
	t.Helper()
	w := e.do(httptest.NewRequest(http.MethodGet, path, nil))
	if out != nil && w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w
}

func (e *testEnv) postJSON(path string, body any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return e.do(req)
}

// seed stores a completed artifact directly in the durable store.
func (e *testEnv) seed(t *testing.T, userID string, created time.Time, ttl time.Duration) string {
	t.Helper()
	id := uuid.NewString()
	require.NoError(t, e.durable.SaveArtifact(context.Background(), &types.StoredArtifact{
		ID:     id,
		UserID: userID,
		JobURL: testJobURL,
		Artifact: types.Artifact{
			JobDetails: types.JobDetails{Company: "Acme Corp", Title: "Engineer " + id[:4]},
			CandidateHighlights: types.CandidateHighlights{
				RelevantPoints: []types.HighlightPoint{{Text: "Reduced latency by 40%", Evidence: testEvidence}},
			},
			InterviewRounds: []types.InterviewRound{{
				ID:   "r1",
				Name: "Technical Assessment",
				Questions: []types.InterviewQuestion{{
					ID:            "q1",
					Text:          "Walk me through the latency project.",
					TalkingPoints: []types.TalkingPoint{{ID: "tp1", Text: "Latency cut by 40%"}},
				}},
			}},
		},
		CreatedAt: created,
		ExpiresAt: created.Add(ttl),
	}))
	return id
}

func submitRequest(t *testing.T, fields map[string]string, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("resume", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/interview-prep", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func waitForStatus(t *testing.T, env *testEnv, id string) types.StatusView {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		var view types.StatusView
		w := env.getJSON(t, "/api/interview-prep/"+id, &view)
		require.Equal(t, http.StatusOK, w.Code)
		if view.Status != types.StatusProcessing {
			return view
		}
		if time.Now().After(deadline) {
			t.Fatalf("job %s still processing at %s", id, view.Progress)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, llmtest.New())

	w := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, llmtest.New())

	w := env.do(httptest.NewRequest(http.MethodOptions, "/api/interview-prep", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestSubmitRunsToCompletion(t *testing.T) {
	env := newTestEnv(t, pipelineCaller())

	w := env.do(submitRequest(t, map[string]string{"jobUrl": testJobURL}, "resume.txt", testResume))
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var submitted SubmitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitted))
	require.NotEmpty(t, submitted.ID)

	view := waitForStatus(t, env, submitted.ID)
	require.Equal(t, types.StatusCompleted, view.Status)
	assert.Equal(t, types.StageCompleted, view.Progress)
	assert.Nil(t, view.Error)
	require.NotNil(t, view.Result)
	assert.Equal(t, "Acme Corp", view.Result.JobDetails.Company)
	assert.NotEmpty(t, view.ReasoningLog)

	var history HistoryResponse
	require.Equal(t, http.StatusOK, env.getJSON(t, "/api/history", &history).Code)
	require.Len(t, history.Items, 1)
	assert.Equal(t, submitted.ID, history.Items[0].ID)
}

func TestSubmitRecordsUser(t *testing.T) {
	env := newTestEnv(t, pipelineCaller())
	userID := uuid.New()
	token, err := env.jwt.GenerateToken(userID)
	require.NoError(t, err)

	req := submitRequest(t, map[string]string{"jobUrl": testJobURL}, "resume.md", testResume)
	req.Header.Set("Authorization", "Bearer "+token)
	w := env.do(req)
	require.Equal(t, http.StatusAccepted, w.Code)

	var submitted SubmitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitted))
	job, err := env.store.Get(context.Background(), submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), job.UserID)
}

func TestSubmitValidation(t *testing.T) {
	env := newTestEnv(t, llmtest.New())

	tests := []struct {
		name     string
		fields   map[string]string
		filename string
		content  string
		want     string
	}{
		{name: "missing job url", fields: map[string]string{}, filename: "resume.txt", content: testResume, want: "jobUrl"},
		{name: "relative job url", fields: map[string]string{"jobUrl": "/jobs/42"}, filename: "resume.txt", content: testResume, want: "jobUrl"},
		{name: "bad linkedin url", fields: map[string]string{"jobUrl": testJobURL, "linkedinUrl": "linkedin"}, filename: "resume.txt", content: testResume, want: "linkedinUrl"},
		{name: "missing resume", fields: map[string]string{"jobUrl": testJobURL}, want: "resume"},
		{name: "unsupported type", fields: map[string]string{"jobUrl": testJobURL}, filename: "resume.exe", content: "MZ", want: "unsupported"},
		{name: "empty resume", fields: map[string]string{"jobUrl": testJobURL}, filename: "resume.txt", content: "  \n ", want: "no readable text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(submitRequest(t, tt.fields, tt.filename, tt.content))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
	assert.Equal(t, 0, env.store.Len(), "rejected submissions must not create jobs")
}

func TestSubmitNotMultipart(t *testing.T) {
	env := newTestEnv(t, llmtest.New())

	w := env.postJSON("/api/interview-prep", map[string]string{"jobUrl": testJobURL})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitTooLarge(t *testing.T) {
	env := newTestEnv(t, llmtest.New(), func(c *Config) { c.MaxUploadBytes = 512 })

	w := env.do(submitRequest(t, map[string]string{"jobUrl": testJobURL}, "resume.txt", strings.Repeat("a", 4096)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestSubmitAfterShutdown(t *testing.T) {
	env := newTestEnv(t, llmtest.New())
	require.NoError(t, env.runner.Shutdown(context.Background()))

	w := env.do(submitRequest(t, map[string]string{"jobUrl": testJobURL}, "resume.txt", testResume))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStatusUnknown(t *testing.T) {
	env := newTestEnv(t, llmtest.New())

	w := env.getJSON(t, "/api/interview-prep/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not found")
}

func TestStatusResolvesDurableArtifact(t *testing.T) {
	env := newTestEnv(t, llmtest.New())
	id := env.seed(t, "", time.Now().Add(-time.Hour), 24*time.Hour)

	var view types.StatusView
	w := env.getJSON(t, "/api/interview-prep/"+id, &view)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, types.StatusCompleted, view.Status)
	require.NotNil(t, view.Result)
	assert.Equal(t, "Acme Corp", view.Result.JobDetails.Company)
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t, llmtest.New())
	now := time.Now()
	older := env.seed(t, "", now.Add(-3*time.Hour), 24*time.Hour)
	newer := env.seed(t, "", now.Add(-time.Hour), 24*time.Hour)
	expired := env.seed(t, "", now.Add(-48*time.Hour), 24*time.Hour)

	var history HistoryResponse
	require.Equal(t, http.StatusOK, env.getJSON(t, "/api/history", &history).Code)
	require.Len(t, history.Items, 2)
	assert.Equal(t, newer, history.Items[0].ID)
	assert.Equal(t, older, history.Items[1].ID)
	for _, item := range history.Items {
		assert.NotEqual(t, expired, item.ID)
	}

	history = HistoryResponse{}
	require.Equal(t, http.StatusOK, env.getJSON(t, "/api/history?limit=1", &history).Code)
	require.Len(t, history.Items, 1)
	assert.Equal(t, newer, history.Items[0].ID)

	require.Equal(t, http.StatusOK, env.getJSON(t, "/api/history?limit=500", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.getJSON(t, "/api/history?limit=abc", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.getJSON(t, "/api/history?limit=0", nil).Code)
}

func TestHistoryTriggersSweep(t *testing.T) {
	env := newTestEnv(t, llmtest.New())
	expired := env.seed(t, "", time.Now().Add(-48*time.Hour), 24*time.Hour)

	require.Equal(t, http.StatusOK, env.getJSON(t, "/api/history", nil).Code)

	assert.Eventually(t, func() bool {
		return env.durable.calls.Load() > 0
	}, 2*time.Second, 10*time.Millisecond)
	_, err := env.store.Get(context.Background(), expired)
	var notFound *jobstore.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestHistoryFiltersByUser(t *testing.T) {
	env := newTestEnv(t, llmtest.New())
	alice, bob := uuid.New(), uuid.New()
	aliceJob := env.seed(t, alice.String(), time.Now().Add(-time.Hour), 24*time.Hour)
	env.seed(t, bob.String(), time.Now().Add(-time.Hour), 24*time.Hour)

	token, err := env.jwt.GenerateToken(alice)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := env.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	var history HistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Len(t, history.Items, 1)
	assert.Equal(t, aliceJob, history.Items[0].ID)

	var all HistoryResponse
	require.Equal(t, http.StatusOK, env.getJSON(t, "/api/history", &all).Code)
	assert.Len(t, all.Items, 2)
}

func TestInvalidBearerRejected(t *testing.T) {
	env := newTestEnv(t, llmtest.New())

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, env.do(req).Code)
}

func TestSaveAndListResponses(t *testing.T) {
	env := newTestEnv(t, llmtest.New())
	id := env.seed(t, "", time.Now(), time.Hour)

	body := map[string]string{
		"jobId": id, "questionId": "q1", "roundId": "r1",
		"situation": "Checkout was slow", "action": "Profiled", "result": "40% faster",
	}
	w := env.postJSON("/api/responses", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var saved types.UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.Equal(t, "Profiled", saved.Action)
	assert.False(t, saved.UpdatedAt.IsZero())

	body["action"] = "Profiled and cached"
	require.Equal(t, http.StatusOK, env.postJSON("/api/responses", body).Code)

	var list ResponsesResponse
	require.Equal(t, http.StatusOK, env.getJSON(t, "/api/responses/"+id, &list).Code)
	require.Len(t, list.Responses, 1)
	assert.Equal(t, "Profiled and cached", list.Responses[0].Action)
}

func TestSaveResponseErrors(t *testing.T) {
	env := newTestEnv(t, llmtest.New())

	w := env.postJSON("/api/responses", map[string]string{"jobId": "j", "roundId": "r1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "questionId is required")

	w = env.do(httptest.NewRequest(http.MethodPost, "/api/responses", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.postJSON("/api/responses", map[string]string{"jobId": uuid.NewString(), "questionId": "q1", "roundId": "r1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "situation is required when action and result are empty")

	w = env.postJSON("/api/responses", map[string]string{"jobId": uuid.NewString(), "questionId": "q1", "roundId": "r1", "result": "shipped"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListResponsesEmpty(t *testing.T) {
	env := newTestEnv(t, llmtest.New())

	w := env.getJSON(t, "/api/responses/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"responses":[]}`, w.Body.String())
}

func TestGrade(t *testing.T) {
	caller := llmtest.New().Respond(schemas.GradingResult, map[string]any{
		"score":        14,
		"feedback":     "Strong answer",
		"strengths":    []string{"Quantified impact"},
		"improvements": []string{"Mention trade-offs"},
	})
	env := newTestEnv(t, caller)
	id := env.seed(t, "", time.Now(), time.Hour)

	w := env.postJSON("/api/grade", map[string]string{"jobId": id, "questionId": "q1", "responseText": "I cut latency by 40%."})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result types.GradingResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, responses.MaxScore, result.Score)
	assert.Equal(t, "Strong answer", result.Feedback)
	assert.Equal(t, 1, caller.Count(schemas.GradingResult))
}

func TestGradeDegradesOnFailure(t *testing.T) {
	env := newTestEnv(t, llmtest.New().Fail(schemas.GradingResult))
	id := env.seed(t, "", time.Now(), time.Hour)

	w := env.postJSON("/api/grade", map[string]string{"jobId": id, "questionId": "q1", "responseText": "answer"})
	require.Equal(t, http.StatusOK, w.Code)

	var result types.GradingResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, responses.DefaultScore, result.Score)
}

func TestGradeDegradesOnStorageFailure(t *testing.T) {
	caller := llmtest.New()
	env := newTestEnv(t, caller)
	id := env.seed(t, "", time.Now(), time.Hour)
	env.durable.failGets.Store(true)

	w := env.postJSON("/api/grade", map[string]string{"jobId": id, "questionId": "q1", "responseText": "answer"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result types.GradingResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, responses.DefaultScore, result.Score)
	assert.Empty(t, caller.Requests())
}

func TestGradeErrors(t *testing.T) {
	env := newTestEnv(t, llmtest.New())

	w := env.postJSON("/api/grade", map[string]string{"jobId": "j", "questionId": "q1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "responseText is required")

	w = env.postJSON("/api/grade", map[string]string{"jobId": uuid.NewString(), "questionId": "q1", "responseText": "answer"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRateLimitedSubmission(t *testing.T) {
	settings := config.RateLimit{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		SubmitLimit:   1,
		SubmitWindow:  time.Hour,
		GradeLimit:    10,
		GradeWindow:   time.Hour,
	}
	env := newTestEnv(t, llmtest.New(), func(c *Config) { c.RateLimit = ratelimit.NewConfig(settings) })

	first := env.do(submitRequest(t, map[string]string{}, "resume.txt", testResume))
	assert.Equal(t, http.StatusBadRequest, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := env.do(submitRequest(t, map[string]string{}, "resume.txt", testResume))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	assert.Contains(t, second.Body.String(), "rate_limit_exceeded")

	assert.Equal(t, http.StatusOK, env.do(httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
}

func TestHTTPStatus(t *testing.T) {
	var fieldErrs validator.ValidationErrors
	require.ErrorAs(t, (&types.GradeRequest{}).Validate(), &fieldErrs)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &ErrValidation{Field: "jobUrl", Message: "is required"}, http.StatusBadRequest},
		{"validator", fieldErrs, http.StatusBadRequest},
		{"unsupported upload", &ingestion.UnsupportedTypeError{Extension: ".exe"}, http.StatusBadRequest},
		{"empty upload", ingestion.ErrEmptyResume, http.StatusBadRequest},
		{"not found", &jobstore.NotFoundError{ID: "x"}, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", &jobstore.NotFoundError{ID: "x"}), http.StatusNotFound},
		{"shutting down", pipeline.ErrShuttingDown, http.StatusServiceUnavailable},
		{"persistence", &db.PersistenceError{Op: "save artifact", Cause: errors.New("conn reset")}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestValidationMessage(t *testing.T) {
	err := (&types.SaveResponseRequest{JobID: "j", QuestionID: "q"}).Validate()
	assert.Equal(t, "roundId is required", validationMessage(err))
	assert.Equal(t, "plain", validationMessage(errors.New("plain")))
}
