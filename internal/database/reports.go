package database

import "database/sql"

// InsertReport inserts or replaces the run report for a date.
func (db *DB) InsertReport(date string, headlineCount, droppedCount int) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT OR REPLACE INTO run_reports (date, headline_count, dropped_count)
		VALUES (?, ?, ?)`,
		date, headlineCount, droppedCount,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetReport returns the run report for a date.
func (db *DB) GetReport(date string) (*RunReport, error) {
	row := db.conn.QueryRow(
		`SELECT id, date, generated_at, headline_count, dropped_count
		FROM run_reports WHERE date = ?`, date,
	)
	var r RunReport
	if err := row.Scan(&r.ID, &r.Date, &r.GeneratedAt, &r.HeadlineCount, &r.DroppedCount); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

// GetLastRunDate returns the date of the most recent run report.
// Returns empty string if no runs exist.
func (db *DB) GetLastRunDate() (string, error) {
	row := db.conn.QueryRow("SELECT date FROM run_reports ORDER BY date DESC LIMIT 1")

	var date string
	if err := row.Scan(&date); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return date, nil
}

// GetStats returns aggregate database statistics.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{}

	queries := []struct {
		sql  string
		dest *int
	}{
		{"SELECT COUNT(*) FROM headlines", &s.TotalHeadlines},
		{"SELECT COUNT(DISTINCT date) FROM headlines", &s.DaysWithHeadlines},
		{"SELECT COUNT(*) FROM daily_summaries", &s.Summaries},
		{"SELECT COUNT(*) FROM run_reports", &s.Runs},
	}

	for _, q := range queries {
		if err := db.conn.QueryRow(q.sql).Scan(q.dest); err != nil {
			return nil, err
		}
	}

	var first, last sql.NullString
	if err := db.conn.QueryRow("SELECT MIN(date), MAX(date) FROM daily_summaries").Scan(&first, &last); err != nil {
		return nil, err
	}
	s.FirstSummary, s.LastSummary = first.String, last.String
	return s, nil
}
