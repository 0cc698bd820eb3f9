package model

import "time"

// ExamExport is the top-level JSON structure for assignment export.
type ExamExport struct {
	ExamID  string          `json:"exam_id"`
	Subject string          `json:"subject"`
	Date    string          `json:"date"`
	Results []StudentResult `json:"results"`
}

// StudentResult holds one student's assignment data for export.
type StudentResult struct {
	Username    string             `json:"username"`
	DisplayName string             `json:"display_name"`
	ExamTitle   string             `json:"exam_title"`
	Status      AssignmentStatus   `json:"status"`
	StartedAt   *time.Time         `json:"started_at,omitempty"`
	SubmittedAt *time.Time         `json:"submitted_at,omitempty"`
	Questions   []AssignedQuestion `json:"questions"`
}
