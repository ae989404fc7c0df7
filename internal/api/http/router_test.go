package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/mind-engage/mindengage-qbank/internal/auth/middleware"
	"github.com/mind-engage/mindengage-qbank/internal/config"
	"github.com/mind-engage/mindengage-qbank/internal/db"
	"github.com/mind-engage/mindengage-qbank/internal/events"
	_ "github.com/mind-engage/mindengage-qbank/internal/formats/cfa"
	"github.com/mind-engage/mindengage-qbank/internal/generation"
	"github.com/mind-engage/mindengage-qbank/internal/llm"
	"github.com/mind-engage/mindengage-qbank/internal/logger"
	"github.com/mind-engage/mindengage-qbank/internal/materials"
	"github.com/mind-engage/mindengage-qbank/internal/qbank"
	"github.com/mind-engage/mindengage-qbank/internal/rbac"
	"github.com/mind-engage/mindengage-qbank/internal/storage"
)

type server struct {
	h    http.Handler
	auth *auth.AuthService
	mock *llm.MockProvider
}

func cannedQuestions(n int) json.RawMessage {
	var items []string
	for i := 1; i <= n; i++ {
		items = append(items, fmt.Sprintf(
			`{"question":"Q%d?","answer_1":"a","answer_2":"b","answer_3":"c","answer_4":"d","solution":%d}`, i, 1+i%4))
	}
	return json.RawMessage(`{"questions":[` + strings.Join(items, ",") + `]}`)
}

func newServer(t *testing.T) server {
	t.Helper()
	ctx := context.Background()
	h, err := db.Open(ctx, db.DriverSQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	blobs, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)
	mock := llm.NewMockProvider()
	mock.Respond = func(req llm.Request) llm.MockResponse {
		if req.Schema != nil && req.Schema.Name == "qbank-specification" {
			return llm.MockResponse{Content: json.RawMessage(`{"specification":"outline"}`)}
		}
		return llm.MockResponse{Content: cannedQuestions(3)}
	}

	log := logger.Nop()
	store := qbank.NewSQLStore(h, db.DriverSQLite)
	repo := events.NewEventRepo(h)
	a := auth.NewAuthService("test-secret", 0)
	cfg := config.Defaults()

	router := NewRouter(Deps{
		Config:    cfg,
		DB:        h,
		Log:       log,
		Auth:      a,
		Users:     auth.NewUserStore(h),
		Engine:    qbank.NewEngine(store, log, qbank.WithEvents(repo)),
		Events:    repo,
		Generator: generation.NewOrchestrator(mock, store, blobs, log, repo, generation.Options{}),
		Materials: materials.NewService(h, mock, blobs, log),
	})
	return server{h: router, auth: a, mock: mock}
}

func (s server) token(t *testing.T, sub, role string) string {
	t.Helper()
	tok, err := s.auth.IssueJWT(sub, role)
	require.NoError(t, err)
	return tok
}

func (s server) do(t *testing.T, method, path, tok string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestStudentFlow(t *testing.T) {
	s := newServer(t)
	author := s.token(t, "author@x.io", rbac.RoleAuthor)

	rec := s.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"username": "Alice@X.io", "password": "correct-horse", "fullname": "Alice",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	student := decodeBody[struct {
		AccessToken string `json:"access_token"`
		Role        string `json:"role"`
	}](t, rec)
	assert.Equal(t, rbac.RoleStudent, student.Role)

	rec = s.do(t, http.MethodPost, "/questions/generate", student.AccessToken, generation.Request{
		ExamType: "CFA1", Topics: []string{"economics"}, NumQuestions: 3,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/questions/generate", author, generation.Request{
		ExamType: "CFA1", Topics: []string{"economics"}, NumQuestions: 3,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	gen := decodeBody[generation.Result](t, rec)
	assert.Equal(t, 3, gen.TotalQuestions)

	rec = s.do(t, http.MethodPost, "/question-sets", student.AccessToken, map[string]any{
		"topics": []string{"economics"}, "num_questions_per_topic": 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	set := decodeBody[qbank.QuestionSet](t, rec)
	require.Len(t, set.Questions, 2)
	assert.Equal(t, 1, set.Questions[0].TopicNumber)
	assert.Equal(t, 2, set.Questions[1].TopicNumber)

	first := set.Questions[0]
	rec = s.do(t, http.MethodPost, "/answers", student.AccessToken, map[string]any{
		"question_id": first.ID, "selected_answer": first.Solution,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ans := decodeBody[qbank.AnswerResult](t, rec)
	assert.True(t, ans.Correct)
	assert.Equal(t, "alice@x.io", ans.Log.UserEmail)

	path := fmt.Sprintf("/question-sets/%d/unseen", set.ID)
	rec = s.do(t, http.MethodGet, path, student.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	unseen := decodeBody[qbank.Unseen](t, rec)
	assert.Equal(t, 1, unseen.TotalQuestions)
	assert.Equal(t, 2, unseen.SetSize)

	rec = s.do(t, http.MethodGet, "/question-sets/in-progress", student.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	inProgress := decodeBody[struct {
		IDs []int64 `json:"in_progress_sets"`
	}](t, rec)
	assert.Equal(t, []int64{set.ID}, inProgress.IDs)

	rec = s.do(t, http.MethodGet, "/question-sets", student.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sets := decodeBody[struct {
		Sets []qbank.SetProgress `json:"question_sets"`
	}](t, rec)
	require.Len(t, sets.Sets, 1)
	assert.Equal(t, qbank.SetInProgress, sets.Sets[0].State)

	// The next set continues after the last assigned question.
	rec = s.do(t, http.MethodPost, "/question-sets", student.AccessToken, map[string]any{
		"topics": []string{"economics"}, "num_questions_per_topic": 5,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	next := decodeBody[qbank.QuestionSet](t, rec)
	require.Len(t, next.Questions, 1)
	assert.Equal(t, 3, next.Questions[0].TopicNumber)
	assert.Greater(t, next.ID, set.ID)

	rec = s.do(t, http.MethodPost, "/opinions", student.AccessToken, map[string]any{
		"question_id": first.ID, "up": false,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/questions/%d/answers", first.ID), student.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	answers := decodeBody[struct {
		Answers []qbank.AnswerLog `json:"answers"`
	}](t, rec)
	assert.Len(t, answers.Answers, 1)

	rec = s.do(t, http.MethodGet, "/events", student.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(t, http.MethodGet, "/events", s.token(t, "root@x.io", rbac.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	evs := decodeBody[struct {
		Events []events.Event `json:"events"`
	}](t, rec)
	assert.NotEmpty(t, evs.Events)
}

func TestRequestValidation(t *testing.T) {
	s := newServer(t)
	tok := s.token(t, "bob@x.io", rbac.RoleStudent)

	for name, body := range map[string]any{
		"unknown topic":     map[string]any{"topics": []string{"astrology"}, "num_questions_per_topic": 1},
		"topic not in exam": map[string]any{"exam_type": "CFA3topics", "topics": []string{"derivatives"}, "num_questions_per_topic": 1},
		"zero per topic":    map[string]any{"topics": []string{"economics"}, "num_questions_per_topic": 0},
		"missing count":     map[string]any{"topics": []string{"economics"}},
		"no topics":         map[string]any{"topics": []string{}, "num_questions_per_topic": 1},
		"unknown field":     map[string]any{"topics": []string{"economics"}, "num_questions_per_topic": 1, "x": 1},
	} {
		rec := s.do(t, http.MethodPost, "/question-sets", tok, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}

	rec := s.do(t, http.MethodPost, "/answers", tok, map[string]any{"question_id": 99, "selected_answer": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodPost, "/answers", tok, map[string]any{"question_id": 99, "selected_answer": 7})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodGet, "/questions/abc", tok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodGet, "/questions/99", tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	s := newServer(t)
	rec := s.do(t, http.MethodGet, "/question-sets", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/exams", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"CFA1"`)

	rec = s.do(t, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGeneratorFailureIsBadGateway(t *testing.T) {
	s := newServer(t)
	s.mock.Respond = func(llm.Request) llm.MockResponse {
		return llm.MockResponse{Content: json.RawMessage(`{"questions":[{"question":"only"}]}`)}
	}
	rec := s.do(t, http.MethodPost, "/questions/generate", s.token(t, "a@x.io", rbac.RoleAuthor), generation.Request{
		ExamType: "CFA1", Topics: []string{"economics"}, NumQuestions: 1,
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code, rec.Body.String())
}

func TestLearningMaterials(t *testing.T) {
	s := newServer(t)
	author := s.token(t, "a@x.io", rbac.RoleAuthor)
	student := s.token(t, "s@x.io", rbac.RoleStudent)

	rec := s.do(t, http.MethodGet, "/learning-materials/CFA1/economics", student, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/learning-materials/generate", student, map[string]string{"exam": "CFA1", "topic": "economics"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/learning-materials/generate", author, map[string]string{"exam": "CFA1", "topic": "economics"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/learning-materials/CFA1/economics", student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "outline")
}
