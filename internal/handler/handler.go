package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dkarimov/examhall/internal/assign"
	"github.com/dkarimov/examhall/internal/model"
	"github.com/dkarimov/examhall/internal/store"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store     *store.Store
	assembler *assign.Assembler
}

// New creates a new Handler.
func New(s *store.Store, a *assign.Assembler) *Handler {
	return &Handler{store: s, assembler: a}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/users", h.handleCreateUser)
		r.Get("/users", h.handleListUsers)
		r.Post("/exams", h.handleCreateExam)
		r.Get("/exams", h.handleListExams)
		r.Get("/exams/{examID}", h.handleGetExam)
		r.Post("/exams/{examID}/questions", h.handleCreateQuestion)
		r.Get("/exams/{examID}/questions", h.handleListQuestions)
		r.Post("/exams/{examID}/assignments/{studentID}", h.handleGenerateAssignment)
		r.Get("/exams/{examID}/assignments/{studentID}", h.handleGetAssignment)
		r.Post("/assignments/{assignmentID}/submit", h.handleSubmitAssignment)
	})
}

// apiError is the wire shape for failures: a machine-checkable kind plus a
// human message. No internals leak to the caller.
type apiError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, map[string]apiError{"error": {Kind: kind, Message: msg}})
}

// writeAssignError maps the assign package's error taxonomy onto HTTP.
func writeAssignError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, assign.ErrExamNotFound),
		errors.Is(err, assign.ErrStudentNotFound),
		errors.Is(err, assign.ErrAssignmentNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, assign.ErrInsufficientPool):
		writeError(w, http.StatusBadRequest, "insufficient_pool",
			"not enough questions to build a set; add more questions to the exam")
	case errors.Is(err, assign.ErrAlreadySubmitted):
		writeError(w, http.StatusConflict, "already_submitted", err.Error())
	default:
		slog.Error("assignment operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "storage failure")
	}
}

func urlID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username    string         `json:"username"`
		DisplayName string         `json:"display_name"`
		Role        model.UserRole `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if req.Username == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "username is required")
		return
	}
	if req.Role == "" {
		req.Role = model.UserRoleStudent
	}
	existing, err := h.store.GetUserByUsername(req.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage_error", "storage failure")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "conflict", "username already taken")
		return
	}
	id, err := h.store.CreateUser(model.User{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Role:        req.Role,
		Active:      true,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage_error", "storage failure")
		return
	}
	u, err := h.store.GetUserByID(id)
	if err != nil || u == nil {
		writeError(w, http.StatusInternalServerError, "storage_error", "storage failure")
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage_error", "storage failure")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) handleCreateExam(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		DurationMin int    `json:"duration_min"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "title is required")
		return
	}
	id, err := h.store.CreateExam(model.Exam{Title: req.Title, DurationMin: req.DurationMin})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage_error", "storage failure")
		return
	}
	e, err := h.store.GetExam(id)
	if err != nil || e == nil {
		writeError(w, http.StatusInternalServerError, "storage_error", "storage failure")
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h *Handler) handleListExams(w http.ResponseWriter, r *http.Request) {
	exams, err := h.store.ListExams()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage_error", "storage failure")
		return
	}
	if exams == nil {
		exams = []model.Exam{}
	}
	writeJSON(w, http.StatusOK, exams)
}

func (h *Handler) handleGetExam(w http.ResponseWriter, r *http.Request) {
	examID, err := urlID(r, "examID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid exam ID")
		return
	}
	e, err := h.store.GetExam(examID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage_error", "storage failure")
		return
	}
	if e == nil {
		writeError(w, http.StatusNotFound, "not_found", "exam not found")
		return
	}
	count, err := h.store.QuestionCount(examID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage_error", "storage failure")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		model.Exam
		QuestionCount int `json:"question_count"`
	}{*e, count})
}

func (h *Handler) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	examID, err := urlID(r, "examID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid exam ID")
		return
	}
	var req struct {
		Text       string           `json:"text"`
		Difficulty model.Difficulty `json:"difficulty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "text is required")
		return
	}
	if !req.Difficulty.Valid() {
		writeError(w, http.StatusBadRequest, "bad_request", "difficulty must be easy, medium, or hard")
		return
	}
	exam, err := h.store.GetExam(examID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage_error", "storage failure")
		return
	}
	if exam == nil {
		writeError(w, http.StatusNotFound, "not_found", "exam not found")
		return
	}
	id, err := h.store.InsertQuestion(model.Question{
		ExamID:     examID,
		Text:       req.Text,
		Difficulty: req.Difficulty,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage_error", "storage failure")
		return
	}
	q, err := h.store.GetQuestion(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage_error", "storage failure")
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (h *Handler) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	examID, err := urlID(r, "examID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid exam ID")
		return
	}
	var questions []model.Question
	for _, d := range []model.Difficulty{model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard} {
		qs, err := h.store.ListExamQuestions(examID, d)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "storage_error", "storage failure")
			return
		}
		questions = append(questions, qs...)
	}
	if questions == nil {
		questions = []model.Question{}
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *Handler) handleGenerateAssignment(w http.ResponseWriter, r *http.Request) {
	examID, err := urlID(r, "examID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid exam ID")
		return
	}
	studentID, err := urlID(r, "studentID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid student ID")
		return
	}
	questions, err := h.assembler.GenerateOrFetch(studentID, examID)
	if err != nil {
		writeAssignError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]model.AssignedQuestion{"questions": questions})
}

func (h *Handler) handleGetAssignment(w http.ResponseWriter, r *http.Request) {
	examID, err := urlID(r, "examID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid exam ID")
		return
	}
	studentID, err := urlID(r, "studentID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid student ID")
		return
	}
	a, err := h.store.GetAssignment(examID, studentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage_error", "storage failure")
		return
	}
	if a == nil {
		writeError(w, http.StatusNotFound, "not_found", "assignment not found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) handleSubmitAssignment(w http.ResponseWriter, r *http.Request) {
	assignmentID, err := urlID(r, "assignmentID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid assignment ID")
		return
	}
	a, err := h.assembler.Submit(assignmentID)
	if err != nil {
		writeAssignError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
