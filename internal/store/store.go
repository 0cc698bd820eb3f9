package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dkarimov/examhall/internal/model"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

// DriverSQLite and DriverPostgres are the supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store wraps the SQL database. All queries use $N placeholders, which both
// the sqlite and pgx drivers understand.
type Store struct {
	db     *sql.DB
	driver string
}

// New opens a database and ensures the schema exists.
func New(driver, dsn string) (*Store, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite"
		if dsn == "" {
			dsn = "file:examhall.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx"
		if dsn == "" {
			dsn = "postgres://localhost:5432/examhall?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db, driver: driver}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := schemaSQLite
	if s.driver == DriverPostgres {
		schema = schemaPostgres
	}
	_, err := s.db.Exec(schema)
	return err
}

const schemaSQLite = `
	PRAGMA foreign_keys=ON;

	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'student',
		active INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS exams (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		duration_min INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS questions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		exam_id INTEGER NOT NULL REFERENCES exams(id),
		text TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		usage_count INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_questions_exam_difficulty
		ON questions(exam_id, difficulty);

	CREATE TABLE IF NOT EXISTS distribution_usage (
		exam_id INTEGER NOT NULL REFERENCES exams(id),
		label TEXT NOT NULL,
		usage_count INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (exam_id, label)
	);

	CREATE TABLE IF NOT EXISTS assignments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		exam_id INTEGER NOT NULL REFERENCES exams(id),
		student_id INTEGER NOT NULL REFERENCES users(id),
		status TEXT NOT NULL DEFAULT 'not_started',
		set_generated INTEGER NOT NULL DEFAULT 0,
		questions_json TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME NOT NULL,
		started_at DATETIME,
		submitted_at DATETIME,
		UNIQUE (exam_id, student_id)
	);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

const schemaPostgres = `
	CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'student',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS exams (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		duration_min INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS questions (
		id BIGSERIAL PRIMARY KEY,
		exam_id BIGINT NOT NULL REFERENCES exams(id),
		text TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		usage_count INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_questions_exam_difficulty
		ON questions(exam_id, difficulty);

	CREATE TABLE IF NOT EXISTS distribution_usage (
		exam_id BIGINT NOT NULL REFERENCES exams(id),
		label TEXT NOT NULL,
		usage_count INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (exam_id, label)
	);

	CREATE TABLE IF NOT EXISTS assignments (
		id BIGSERIAL PRIMARY KEY,
		exam_id BIGINT NOT NULL REFERENCES exams(id),
		student_id BIGINT NOT NULL REFERENCES users(id),
		status TEXT NOT NULL DEFAULT 'not_started',
		set_generated BOOLEAN NOT NULL DEFAULT FALSE,
		questions_json TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL,
		started_at TIMESTAMPTZ,
		submitted_at TIMESTAMPTZ,
		UNIQUE (exam_id, student_id)
	);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

// CreateExam inserts an exam and returns its ID.
func (s *Store) CreateExam(e model.Exam) (int64, error) {
	var id int64
	err := s.db.QueryRow(
		`INSERT INTO exams (title, duration_min, created_at) VALUES ($1, $2, $3) RETURNING id`,
		e.Title, e.DurationMin, time.Now(),
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetExam returns an exam by ID, or nil if it does not exist.
func (s *Store) GetExam(id int64) (*model.Exam, error) {
	var e model.Exam
	err := s.db.QueryRow(
		`SELECT id, title, duration_min, created_at FROM exams WHERE id = $1`, id,
	).Scan(&e.ID, &e.Title, &e.DurationMin, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetExamByTitle returns an exam by title, or nil if it does not exist.
func (s *Store) GetExamByTitle(title string) (*model.Exam, error) {
	var e model.Exam
	err := s.db.QueryRow(
		`SELECT id, title, duration_min, created_at FROM exams WHERE title = $1`, title,
	).Scan(&e.ID, &e.Title, &e.DurationMin, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListExams returns all exams, newest first.
func (s *Store) ListExams() ([]model.Exam, error) {
	rows, err := s.db.Query(`SELECT id, title, duration_min, created_at FROM exams ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.Title, &e.DurationMin, &e.CreatedAt); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// InsertQuestion stores a question and returns its ID.
func (s *Store) InsertQuestion(q model.Question) (int64, error) {
	var id int64
	err := s.db.QueryRow(
		`INSERT INTO questions (exam_id, text, difficulty, usage_count)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		q.ExamID, q.Text, q.Difficulty, q.UsageCount,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetQuestion returns a question by ID.
func (s *Store) GetQuestion(id int64) (model.Question, error) {
	var q model.Question
	err := s.db.QueryRow(
		`SELECT id, exam_id, text, difficulty, usage_count FROM questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.ExamID, &q.Text, &q.Difficulty, &q.UsageCount)
	return q, err
}

// UpdateQuestionText changes a question's text. Already-generated
// assignments keep their stored snapshot.
func (s *Store) UpdateQuestionText(id int64, text string) error {
	_, err := s.db.Exec(`UPDATE questions SET text = $1 WHERE id = $2`, text, id)
	return err
}

// ListExamQuestions returns an exam's questions at one difficulty level,
// least-used first so that low-usage questions lead on ties downstream.
func (s *Store) ListExamQuestions(examID int64, difficulty model.Difficulty) ([]model.Question, error) {
	rows, err := s.db.Query(
		`SELECT id, exam_id, text, difficulty, usage_count FROM questions
		 WHERE exam_id = $1 AND difficulty = $2
		 ORDER BY usage_count ASC, id ASC`,
		examID, difficulty,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.ExamID, &q.Text, &q.Difficulty, &q.UsageCount); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// QuestionCount returns the number of questions for an exam.
func (s *Store) QuestionCount(examID int64) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM questions WHERE exam_id = $1`, examID).Scan(&count)
	return count, err
}
