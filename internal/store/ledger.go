package store

// Usage counters are the fairness signal behind question-set generation.
// Increments are single atomic UPDATEs at the database so concurrent
// generations for different students never lose updates.

// IncrementQuestionUsage adds one to a question's usage counter. The write
// is persisted immediately, not batched with the rest of a generation.
func (s *Store) IncrementQuestionUsage(questionID int64) error {
	_, err := s.db.Exec(
		`UPDATE questions SET usage_count = usage_count + 1 WHERE id = $1`, questionID,
	)
	return err
}

// IncrementDistributionUsage upserts the counter for (examID, label),
// creating it at 1 if absent.
func (s *Store) IncrementDistributionUsage(examID int64, label string) error {
	_, err := s.db.Exec(
		`INSERT INTO distribution_usage (exam_id, label, usage_count) VALUES ($1, $2, 1)
		 ON CONFLICT (exam_id, label) DO UPDATE SET usage_count = distribution_usage.usage_count + 1`,
		examID, label,
	)
	return err
}

// GetDistributionUsage returns label -> count for an exam. Labels that have
// never been chosen are simply absent; callers treat them as zero.
func (s *Store) GetDistributionUsage(examID int64) (map[string]int, error) {
	rows, err := s.db.Query(
		`SELECT label, usage_count FROM distribution_usage WHERE exam_id = $1`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	usage := make(map[string]int)
	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return nil, err
		}
		usage[label] = count
	}
	return usage, rows.Err()
}
