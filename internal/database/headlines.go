package database

import "database/sql"

// InsertHeadline stores a headline for a date. Returns the ID on success, 0 if
// the same (date, url, title) is already stored.
func (db *DB) InsertHeadline(date, url, title string, source, published *string) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT OR IGNORE INTO headlines (date, url, title, source, published)
		VALUES (?, ?, ?, ?, ?)`,
		date, url, title, source, published,
	)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	if err != nil || n == 0 {
		return 0, err
	}
	return result.LastInsertId()
}

// GetHeadlinesForDate returns the headlines for a date in collection order.
func (db *DB) GetHeadlinesForDate(date string) ([]Headline, error) {
	rows, err := db.conn.Query(
		`SELECT id, date, url, title, source, published, collected_at
		FROM headlines WHERE date = ? ORDER BY id`, date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHeadlines(rows)
}

// CountHeadlinesForDate returns how many headlines are stored for a date.
func (db *DB) CountHeadlinesForDate(date string) (int, error) {
	var n int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM headlines WHERE date = ?", date).Scan(&n)
	return n, err
}

// ClearHeadlinesForDate deletes the headlines stored for a date.
func (db *DB) ClearHeadlinesForDate(date string) (int64, error) {
	result, err := db.conn.Exec("DELETE FROM headlines WHERE date = ?", date)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanHeadlines(rows *sql.Rows) ([]Headline, error) {
	var headlines []Headline
	for rows.Next() {
		var h Headline
		if err := rows.Scan(&h.ID, &h.Date, &h.URL, &h.Title, &h.Source,
			&h.Published, &h.CollectedAt); err != nil {
			return nil, err
		}
		headlines = append(headlines, h)
	}
	return headlines, rows.Err()
}
