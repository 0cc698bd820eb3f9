package store

import (
	"fmt"

	"github.com/dkarimov/examhall/internal/model"
)

// ExportAllAssignments builds export-ready student results from all
// assignment records.
func (s *Store) ExportAllAssignments() ([]model.StudentResult, error) {
	assignments, err := s.ListAssignments()
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}

	var results []model.StudentResult
	for _, a := range assignments {
		user, err := s.GetUserByID(a.StudentID)
		if err != nil {
			return nil, fmt.Errorf("get user %d: %w", a.StudentID, err)
		}
		exam, err := s.GetExam(a.ExamID)
		if err != nil {
			return nil, fmt.Errorf("get exam %d: %w", a.ExamID, err)
		}

		var username, displayName, examTitle string
		if user != nil {
			username = user.Username
			displayName = user.DisplayName
		}
		if exam != nil {
			examTitle = exam.Title
		}

		results = append(results, model.StudentResult{
			Username:    username,
			DisplayName: displayName,
			ExamTitle:   examTitle,
			Status:      a.Status,
			StartedAt:   a.StartedAt,
			SubmittedAt: a.SubmittedAt,
			Questions:   a.Questions,
		})
	}
	return results, nil
}
