package model

import "time"

// UserRole represents a user's access level.
type UserRole string

const (
	// UserRoleStudent is a student user role.
	UserRoleStudent UserRole = "student"
	// UserRoleTeacher is a teacher user role.
	UserRoleTeacher UserRole = "teacher"
	// UserRoleAdmin is an admin user role.
	UserRoleAdmin UserRole = "admin"
)

// User represents a roster entry: a student, teacher, or admin.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Difficulty represents question difficulty level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the three recognized levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Exam is a scheduled exam. Questions are attached separately.
type Exam struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	DurationMin int       `json:"duration_min"`
	CreatedAt   time.Time `json:"created_at"`
}

// Question belongs to exactly one exam. UsageCount grows by one every time
// the question is handed to a student; it is never decremented.
type Question struct {
	ID         int64      `json:"id"`
	ExamID     int64      `json:"exam_id"`
	Text       string     `json:"text"`
	Difficulty Difficulty `json:"difficulty"`
	UsageCount int        `json:"usage_count"`
}

// AssignmentStatus represents the lifecycle of a student's assignment.
type AssignmentStatus string

const (
	AssignmentNotStarted AssignmentStatus = "not_started"
	AssignmentInProgress AssignmentStatus = "in_progress"
	AssignmentSubmitted  AssignmentStatus = "submitted"
)

// AssignedQuestion is a snapshot of a question at assignment time. Later
// edits to the live question do not alter an already-generated set.
type AssignedQuestion struct {
	QuestionID int64      `json:"question_id"`
	Text       string     `json:"text"`
	Difficulty Difficulty `json:"difficulty"`
}

// Assignment is one student's generated question set for one exam. Once
// SetGenerated is true the Questions list never changes.
type Assignment struct {
	ID           int64              `json:"id"`
	ExamID       int64              `json:"exam_id"`
	StudentID    int64              `json:"student_id"`
	Status       AssignmentStatus   `json:"status"`
	SetGenerated bool               `json:"set_generated"`
	Questions    []AssignedQuestion `json:"questions"`
	CreatedAt    time.Time          `json:"created_at"`
	StartedAt    *time.Time         `json:"started_at,omitempty"`
	SubmittedAt  *time.Time         `json:"submitted_at,omitempty"`
}

// QuestionImport is used for loading questions from JSON files.
type QuestionImport struct {
	Text       string     `json:"text"`
	Difficulty Difficulty `json:"difficulty"`
}

// ExamImport is the exam header in a question file.
type ExamImport struct {
	Title       string `json:"title"`
	DurationMin int    `json:"duration_min"`
}

// QuestionFile is the on-disk format for bulk question loading.
type QuestionFile struct {
	Exam      ExamImport       `json:"exam"`
	Questions []QuestionImport `json:"questions"`
}
