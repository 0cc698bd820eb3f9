package assign

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dkarimov/examhall/internal/model"
)

// Store is the persistence surface the assembler needs.
type Store interface {
	GetExam(id int64) (*model.Exam, error)
	GetUserByID(id int64) (*model.User, error)
	ListExamQuestions(examID int64, difficulty model.Difficulty) ([]model.Question, error)

	GetAssignment(examID, studentID int64) (*model.Assignment, error)
	GetAssignmentByID(id int64) (*model.Assignment, error)
	SaveGeneratedAssignment(a model.Assignment) (id int64, won bool, err error)
	MarkAssignmentSubmitted(id int64, at time.Time) error

	IncrementQuestionUsage(questionID int64) error
	IncrementDistributionUsage(examID int64, label string) error
	GetDistributionUsage(examID int64) (map[string]int, error)
}

// Assembler builds question sets. It is safe for concurrent use; all
// mutable state lives in the store.
type Assembler struct {
	store   Store
	sampler *Sampler
}

// NewAssembler wires an assembler to its store and sampler.
func NewAssembler(st Store, sm *Sampler) *Assembler {
	return &Assembler{store: st, sampler: sm}
}

// GenerateOrFetch returns the student's question set for an exam,
// generating and persisting it on first call. Generation is idempotent per
// (student, exam): once a set exists it is returned unchanged and no usage
// counter moves again.
//
// Usage increments are applied as selections happen and are not rolled back
// if a later step fails, so counters may over-count relative to stored
// assignments after a storage fault. Retrying the whole call is safe.
func (a *Assembler) GenerateOrFetch(studentID, examID int64) ([]model.AssignedQuestion, error) {
	existing, err := a.store.GetAssignment(examID, studentID)
	if err != nil {
		return nil, fmt.Errorf("load assignment: %w", err)
	}
	if existing != nil && existing.SetGenerated {
		return existing.Questions, nil
	}

	exam, err := a.store.GetExam(examID)
	if err != nil {
		return nil, fmt.Errorf("load exam: %w", err)
	}
	if exam == nil {
		return nil, ErrExamNotFound
	}
	student, err := a.store.GetUserByID(studentID)
	if err != nil {
		return nil, fmt.Errorf("load student: %w", err)
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}

	pools, err := a.loadPools(examID)
	if err != nil {
		return nil, err
	}

	candidates := ValidDistributions(len(pools[0]), len(pools[1]), len(pools[2]))
	if len(candidates) == 0 {
		return nil, ErrInsufficientPool
	}

	distUsage, err := a.store.GetDistributionUsage(examID)
	if err != nil {
		return nil, fmt.Errorf("load distribution usage: %w", err)
	}
	usages := make([]int, len(candidates))
	for i, d := range candidates {
		usages[i] = distUsage[d.Label]
	}
	i, _ := a.sampler.PickOne(usages)
	chosen := candidates[i]
	if err := a.store.IncrementDistributionUsage(examID, chosen.Label); err != nil {
		return nil, fmt.Errorf("record distribution usage: %w", err)
	}

	var picked []model.Question
	for level, want := range []int{chosen.Easy, chosen.Medium, chosen.Hard} {
		if want == 0 {
			continue
		}
		pool := pools[level]
		poolUsage := make([]int, len(pool))
		for j, q := range pool {
			poolUsage[j] = q.UsageCount
		}
		for _, k := range a.sampler.PickMany(poolUsage, want) {
			q := pool[k]
			if err := a.store.IncrementQuestionUsage(q.ID); err != nil {
				return nil, fmt.Errorf("record question usage: %w", err)
			}
			picked = append(picked, q)
		}
	}
	if len(picked) == 0 {
		return nil, ErrInsufficientPool
	}

	// Shuffle so on-screen position reveals nothing about difficulty.
	a.sampler.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})

	snapshot := make([]model.AssignedQuestion, len(picked))
	for j, q := range picked {
		snapshot[j] = model.AssignedQuestion{QuestionID: q.ID, Text: q.Text, Difficulty: q.Difficulty}
	}

	now := time.Now()
	_, won, err := a.store.SaveGeneratedAssignment(model.Assignment{
		ExamID:       examID,
		StudentID:    studentID,
		Status:       model.AssignmentInProgress,
		SetGenerated: true,
		Questions:    snapshot,
		StartedAt:    &now,
	})
	if err != nil {
		return nil, fmt.Errorf("save assignment: %w", err)
	}
	if !won {
		// A concurrent generation for the same pair got there first; its
		// stored set is the one the student keeps. The local draw was
		// never persisted and must not be handed out.
		stored, err := a.store.GetAssignment(examID, studentID)
		if err != nil {
			return nil, fmt.Errorf("reload assignment: %w", err)
		}
		if stored == nil {
			return nil, fmt.Errorf("reload assignment: generated set missing after lost save")
		}
		return stored.Questions, nil
	}

	slog.Info("generated question set",
		"exam_id", examID, "student_id", studentID,
		"distribution", chosen.Label, "questions", len(snapshot))
	return snapshot, nil
}

// Submit marks an in-progress assignment as submitted. Submitting twice
// fails with ErrAlreadySubmitted.
func (a *Assembler) Submit(assignmentID int64) (*model.Assignment, error) {
	rec, err := a.store.GetAssignmentByID(assignmentID)
	if err != nil {
		return nil, fmt.Errorf("load assignment: %w", err)
	}
	if rec == nil {
		return nil, ErrAssignmentNotFound
	}
	if rec.Status == model.AssignmentSubmitted {
		return nil, ErrAlreadySubmitted
	}
	now := time.Now()
	if err := a.store.MarkAssignmentSubmitted(assignmentID, now); err != nil {
		return nil, fmt.Errorf("mark submitted: %w", err)
	}
	rec.Status = model.AssignmentSubmitted
	rec.SubmittedAt = &now
	return rec, nil
}

// loadPools returns the exam's easy, medium, and hard question pools, each
// ordered ascending by usage count.
func (a *Assembler) loadPools(examID int64) ([3][]model.Question, error) {
	var pools [3][]model.Question
	for i, d := range []model.Difficulty{model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard} {
		qs, err := a.store.ListExamQuestions(examID, d)
		if err != nil {
			return pools, fmt.Errorf("load %s pool: %w", d, err)
		}
		pools[i] = qs
	}
	return pools, nil
}
