package database

import (
	"database/sql"
)

// UpsertSummary inserts or replaces the summary for its date.
func (db *DB) UpsertSummary(s DailySummary) error {
	_, err := db.conn.Exec(
		`INSERT OR REPLACE INTO daily_summaries
		(date, payload, n_items, vader_mean, head_w_neg, head_w_unc, head_w_pos)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.Date, s.Payload, s.Items, s.VaderMean, s.HeadWithNeg, s.HeadWithUnc, s.HeadWithPos,
	)
	return err
}

// GetSummary returns the summary for a date, or nil if none is stored.
func (db *DB) GetSummary(date string) (*DailySummary, error) {
	row := db.conn.QueryRow(
		`SELECT date, payload, n_items, vader_mean, head_w_neg, head_w_unc, head_w_pos, generated_at
		FROM daily_summaries WHERE date = ?`, date,
	)

	var s DailySummary
	if err := row.Scan(&s.Date, &s.Payload, &s.Items, &s.VaderMean,
		&s.HeadWithNeg, &s.HeadWithUnc, &s.HeadWithPos, &s.GeneratedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// GetAllSummaries returns all summaries ordered by date DESC.
func (db *DB) GetAllSummaries() ([]DailySummary, error) {
	rows, err := db.conn.Query(
		`SELECT date, payload, n_items, vader_mean, head_w_neg, head_w_unc, head_w_pos, generated_at
		FROM daily_summaries ORDER BY date DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []DailySummary
	for rows.Next() {
		var s DailySummary
		if err := rows.Scan(&s.Date, &s.Payload, &s.Items, &s.VaderMean,
			&s.HeadWithNeg, &s.HeadWithUnc, &s.HeadWithPos, &s.GeneratedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// GetTrend returns up to limit of the most recent days in ascending date order.
// A limit of 0 returns every day.
func (db *DB) GetTrend(limit int) ([]TrendPoint, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.conn.Query(
		`SELECT date, n_items, vader_mean, head_w_neg, head_w_unc, head_w_pos FROM (
			SELECT * FROM daily_summaries ORDER BY date DESC LIMIT ?
		) ORDER BY date ASC`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []TrendPoint
	for rows.Next() {
		var p TrendPoint
		if err := rows.Scan(&p.Date, &p.Items, &p.VaderMean,
			&p.HeadWithNeg, &p.HeadWithUnc, &p.HeadWithPos); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// DeleteSummary removes the summary for a date and reports whether one existed.
func (db *DB) DeleteSummary(date string) (bool, error) {
	result, err := db.conn.Exec("DELETE FROM daily_summaries WHERE date = ?", date)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}
