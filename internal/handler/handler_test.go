package handler

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/dkarimov/examhall/internal/assign"
	"github.com/dkarimov/examhall/internal/model"
	"github.com/dkarimov/examhall/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()
	s, err := store.New(store.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	sampler := assign.NewSamplerFrom(rand.New(rand.NewPCG(7, 11)))
	h := New(s, assign.NewAssembler(s, sampler))
	r := chi.NewRouter()
	h.Routes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, s
}

func request(t *testing.T, srv *httptest.Server, method, path, body string, out any) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return resp
}

func errorKind(t *testing.T, srv *httptest.Server, method, path, body string) (int, string) {
	t.Helper()
	var wrapped struct {
		Error struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"error"`
	}
	resp := request(t, srv, method, path, body, &wrapped)
	return resp.StatusCode, wrapped.Error.Kind
}

func createTestUser(t *testing.T, srv *httptest.Server, username string) model.User {
	t.Helper()
	var u model.User
	resp := request(t, srv, http.MethodPost, "/api/users",
		fmt.Sprintf(`{"username":%q,"display_name":%q,"role":"student"}`, username, username), &u)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create user: status %d", resp.StatusCode)
	}
	return u
}

func createTestExam(t *testing.T, srv *httptest.Server, title string) model.Exam {
	t.Helper()
	var e model.Exam
	resp := request(t, srv, http.MethodPost, "/api/exams",
		fmt.Sprintf(`{"title":%q,"duration_min":60}`, title), &e)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create exam: status %d", resp.StatusCode)
	}
	return e
}

func createTestQuestion(t *testing.T, srv *httptest.Server, examID int64, text string, d model.Difficulty) model.Question {
	t.Helper()
	var q model.Question
	resp := request(t, srv, http.MethodPost, fmt.Sprintf("/api/exams/%d/questions", examID),
		fmt.Sprintf(`{"text":%q,"difficulty":%q}`, text, d), &q)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create question: status %d", resp.StatusCode)
	}
	return q
}

func TestCreateUserValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	status, kind := errorKind(t, srv, http.MethodPost, "/api/users", `{"display_name":"no name"}`)
	if status != http.StatusBadRequest || kind != "bad_request" {
		t.Errorf("missing username: got %d/%s", status, kind)
	}

	createTestUser(t, srv, "rosa")
	status, kind = errorKind(t, srv, http.MethodPost, "/api/users", `{"username":"rosa"}`)
	if status != http.StatusConflict || kind != "conflict" {
		t.Errorf("duplicate username: got %d/%s", status, kind)
	}
}

func TestListUsers(t *testing.T) {
	srv, _ := newTestServer(t)

	var users []model.User
	resp := request(t, srv, http.MethodGet, "/api/users", "", &users)
	if resp.StatusCode != http.StatusOK || len(users) != 0 {
		t.Errorf("empty roster: status %d, %d users", resp.StatusCode, len(users))
	}

	createTestUser(t, srv, "vera")
	createTestUser(t, srv, "walt")
	resp = request(t, srv, http.MethodGet, "/api/users", "", &users)
	if resp.StatusCode != http.StatusOK || len(users) != 2 {
		t.Fatalf("roster: status %d, %d users", resp.StatusCode, len(users))
	}
	if users[0].Username != "vera" || users[1].Username != "walt" {
		t.Errorf("unexpected roster order: %+v", users)
	}
}

func TestExamEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	exam := createTestExam(t, srv, "Statistics")
	if exam.Title != "Statistics" || exam.ID == 0 {
		t.Errorf("unexpected exam: %+v", exam)
	}

	var got struct {
		model.Exam
		QuestionCount int `json:"question_count"`
	}
	resp := request(t, srv, http.MethodGet, fmt.Sprintf("/api/exams/%d", exam.ID), "", &got)
	if resp.StatusCode != http.StatusOK || got.ID != exam.ID {
		t.Errorf("get exam: status %d, exam %+v", resp.StatusCode, got)
	}
	if got.QuestionCount != 0 {
		t.Errorf("fresh exam question_count = %d, want 0", got.QuestionCount)
	}

	createTestQuestion(t, srv, exam.ID, "q1", model.DifficultyEasy)
	resp = request(t, srv, http.MethodGet, fmt.Sprintf("/api/exams/%d", exam.ID), "", &got)
	if resp.StatusCode != http.StatusOK || got.QuestionCount != 1 {
		t.Errorf("after one question: status %d, question_count = %d", resp.StatusCode, got.QuestionCount)
	}

	status, kind := errorKind(t, srv, http.MethodGet, "/api/exams/9999", "")
	if status != http.StatusNotFound || kind != "not_found" {
		t.Errorf("missing exam: got %d/%s", status, kind)
	}

	var exams []model.Exam
	resp = request(t, srv, http.MethodGet, "/api/exams", "", &exams)
	if resp.StatusCode != http.StatusOK || len(exams) != 1 {
		t.Errorf("list exams: status %d, %d exams", resp.StatusCode, len(exams))
	}
}

func TestQuestionEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	exam := createTestExam(t, srv, "Astronomy")

	createTestQuestion(t, srv, exam.ID, "Name the closest star.", model.DifficultyEasy)

	status, kind := errorKind(t, srv, http.MethodPost,
		fmt.Sprintf("/api/exams/%d/questions", exam.ID), `{"text":"x","difficulty":"trivial"}`)
	if status != http.StatusBadRequest || kind != "bad_request" {
		t.Errorf("bad difficulty: got %d/%s", status, kind)
	}

	status, kind = errorKind(t, srv, http.MethodPost,
		"/api/exams/9999/questions", `{"text":"x","difficulty":"easy"}`)
	if status != http.StatusNotFound || kind != "not_found" {
		t.Errorf("missing exam: got %d/%s", status, kind)
	}

	var questions []model.Question
	resp := request(t, srv, http.MethodGet, fmt.Sprintf("/api/exams/%d/questions", exam.ID), "", &questions)
	if resp.StatusCode != http.StatusOK || len(questions) != 1 {
		t.Errorf("list questions: status %d, %d questions", resp.StatusCode, len(questions))
	}
}

func TestGenerateAssignmentFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	exam := createTestExam(t, srv, "Networking")
	student := createTestUser(t, srv, "sven")
	for i := range 3 {
		createTestQuestion(t, srv, exam.ID, fmt.Sprintf("easy %d", i), model.DifficultyEasy)
	}

	path := fmt.Sprintf("/api/exams/%d/assignments/%d", exam.ID, student.ID)

	var generated struct {
		Questions []model.AssignedQuestion `json:"questions"`
	}
	resp := request(t, srv, http.MethodPost, path, "", &generated)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("generate: status %d", resp.StatusCode)
	}
	if len(generated.Questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(generated.Questions))
	}

	// Repeat returns the same set.
	var again struct {
		Questions []model.AssignedQuestion `json:"questions"`
	}
	resp = request(t, srv, http.MethodPost, path, "", &again)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("regenerate: status %d", resp.StatusCode)
	}
	if len(again.Questions) != len(generated.Questions) {
		t.Fatalf("repeat returned %d questions, want %d", len(again.Questions), len(generated.Questions))
	}
	for i := range generated.Questions {
		if again.Questions[i] != generated.Questions[i] {
			t.Errorf("question %d differs between calls", i)
		}
	}

	var a model.Assignment
	resp = request(t, srv, http.MethodGet, path, "", &a)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get assignment: status %d", resp.StatusCode)
	}
	if a.Status != model.AssignmentInProgress || !a.SetGenerated {
		t.Errorf("unexpected assignment: %+v", a)
	}
}

func TestGenerateAssignmentErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	exam := createTestExam(t, srv, "Sparse")
	student := createTestUser(t, srv, "tara")
	createTestQuestion(t, srv, exam.ID, "lonely", model.DifficultyEasy)

	status, kind := errorKind(t, srv, http.MethodPost,
		fmt.Sprintf("/api/exams/%d/assignments/%d", exam.ID, student.ID), "")
	if status != http.StatusBadRequest || kind != "insufficient_pool" {
		t.Errorf("insufficient pool: got %d/%s", status, kind)
	}

	status, kind = errorKind(t, srv, http.MethodPost,
		fmt.Sprintf("/api/exams/9999/assignments/%d", student.ID), "")
	if status != http.StatusNotFound || kind != "not_found" {
		t.Errorf("missing exam: got %d/%s", status, kind)
	}

	status, kind = errorKind(t, srv, http.MethodPost,
		fmt.Sprintf("/api/exams/%d/assignments/9999", exam.ID), "")
	if status != http.StatusNotFound || kind != "not_found" {
		t.Errorf("missing student: got %d/%s", status, kind)
	}
}

func TestSubmitAssignment(t *testing.T) {
	srv, s := newTestServer(t)
	exam := createTestExam(t, srv, "Databases")
	student := createTestUser(t, srv, "ulla")
	createTestQuestion(t, srv, exam.ID, "e1", model.DifficultyEasy)
	createTestQuestion(t, srv, exam.ID, "e2", model.DifficultyEasy)

	resp := request(t, srv, http.MethodPost,
		fmt.Sprintf("/api/exams/%d/assignments/%d", exam.ID, student.ID), "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("generate: status %d", resp.StatusCode)
	}

	rec, err := s.GetAssignment(exam.ID, student.ID)
	if err != nil || rec == nil {
		t.Fatalf("GetAssignment: %v, %+v", err, rec)
	}

	var submitted model.Assignment
	submitPath := fmt.Sprintf("/api/assignments/%d/submit", rec.ID)
	resp = request(t, srv, http.MethodPost, submitPath, "", &submitted)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit: status %d", resp.StatusCode)
	}
	if submitted.Status != model.AssignmentSubmitted || submitted.SubmittedAt == nil {
		t.Errorf("unexpected submitted assignment: %+v", submitted)
	}

	status, kind := errorKind(t, srv, http.MethodPost, submitPath, "")
	if status != http.StatusConflict || kind != "already_submitted" {
		t.Errorf("double submit: got %d/%s", status, kind)
	}

	status, kind = errorKind(t, srv, http.MethodPost, "/api/assignments/9999/submit", "")
	if status != http.StatusNotFound || kind != "not_found" {
		t.Errorf("missing assignment: got %d/%s", status, kind)
	}
}
