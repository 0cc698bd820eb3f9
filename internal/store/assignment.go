package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/dkarimov/examhall/internal/model"
)

func scanAssignment(row interface{ Scan(...any) error }) (*model.Assignment, error) {
	var a model.Assignment
	var qjson string
	err := row.Scan(&a.ID, &a.ExamID, &a.StudentID, &a.Status, &a.SetGenerated,
		&qjson, &a.CreatedAt, &a.StartedAt, &a.SubmittedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(qjson), &a.Questions); err != nil {
		return nil, err
	}
	return &a, nil
}

const assignmentCols = `id, exam_id, student_id, status, set_generated, questions_json, created_at, started_at, submitted_at`

// GetAssignment returns the assignment for (examID, studentID), or nil if
// none exists.
func (s *Store) GetAssignment(examID, studentID int64) (*model.Assignment, error) {
	row := s.db.QueryRow(
		`SELECT `+assignmentCols+` FROM assignments WHERE exam_id = $1 AND student_id = $2`,
		examID, studentID,
	)
	return scanAssignment(row)
}

// GetAssignmentByID returns an assignment by primary key, or nil.
func (s *Store) GetAssignmentByID(id int64) (*model.Assignment, error) {
	row := s.db.QueryRow(`SELECT `+assignmentCols+` FROM assignments WHERE id = $1`, id)
	return scanAssignment(row)
}

// CreateAssignment inserts an empty, not-yet-generated assignment record.
// Used when provisioning a roster ahead of the exam.
func (s *Store) CreateAssignment(examID, studentID int64) (int64, error) {
	var id int64
	err := s.db.QueryRow(
		`INSERT INTO assignments (exam_id, student_id, status, set_generated, questions_json, created_at)
		 VALUES ($1, $2, $3, $4, '[]', $5) RETURNING id`,
		examID, studentID, model.AssignmentNotStarted, false, time.Now(),
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// SaveGeneratedAssignment persists a freshly generated question set for
// (ExamID, StudentID). The conditional upsert guarantees at most one
// generated set per pair: a row that already has set_generated wins and is
// left untouched. won=false tells the caller its draw lost a concurrent
// race and the stored set is authoritative.
func (s *Store) SaveGeneratedAssignment(a model.Assignment) (id int64, won bool, err error) {
	qj, err := json.Marshal(a.Questions)
	if err != nil {
		return 0, false, err
	}
	startedAt := time.Now()
	if a.StartedAt != nil {
		startedAt = *a.StartedAt
	}
	err = s.db.QueryRow(
		`INSERT INTO assignments (exam_id, student_id, status, set_generated, questions_json, created_at, started_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)
		 ON CONFLICT (exam_id, student_id) DO UPDATE
		 SET status = $3, set_generated = $4, questions_json = $5, started_at = $6
		 WHERE assignments.set_generated = $7
		 RETURNING id`,
		a.ExamID, a.StudentID, model.AssignmentInProgress, true, string(qj), startedAt, false,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// MarkAssignmentSubmitted flips an assignment to submitted and stamps the
// submission time.
func (s *Store) MarkAssignmentSubmitted(id int64, at time.Time) error {
	_, err := s.db.Exec(
		`UPDATE assignments SET status = $1, submitted_at = $2 WHERE id = $3`,
		model.AssignmentSubmitted, at, id,
	)
	return err
}

// ListAssignments returns all assignments, newest first.
func (s *Store) ListAssignments() ([]model.Assignment, error) {
	rows, err := s.db.Query(`SELECT ` + assignmentCols + ` FROM assignments ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}
