// Package report prints per-user monthly scan totals. It talks to Postgres
// through database/sql with the pgx driver so the queries stay plain SQL.
package report

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open connects with the pgx stdlib driver.
func Open(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

// MonthRange returns the UTC bounds [start, end) of a YYYY-MM month.
func MonthRange(month string) (start, end time.Time, err error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month format, expected YYYY-MM: %w", err)
	}
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0), nil
}

type MethodCount struct {
	Method string
	Count  int64
}

type Row struct {
	ID         int64
	FileName   string
	Method     string
	Identifier string
	CreatedAt  time.Time
}

type Report struct {
	Username string
	Month    string
	Methods  []MethodCount
	Rows     []Row
}

// Total is the number of scans in the month.
func (r Report) Total() int64 {
	var n int64
	for _, m := range r.Methods {
		n += m.Count
	}
	return n
}

// Resolved is the number of scans that ended on a card.
func (r Report) Resolved() int64 {
	var n int64
	for _, m := range r.Methods {
		if m.Method != "none" {
			n += m.Count
		}
	}
	return n
}

// Build queries the month's scans for username. Rows are only loaded when
// list is set.
func Build(ctx context.Context, db *sql.DB, username, month string, list bool) (Report, error) {
	rep := Report{Username: username, Month: month}
	start, end, err := MonthRange(month)
	if err != nil {
		return rep, err
	}
	var userID int64
	if err := db.QueryRowContext(ctx, `SELECT id FROM users WHERE username = $1`, username).Scan(&userID); err != nil {
		return rep, fmt.Errorf("user not found: %w", err)
	}
	rows, err := db.QueryContext(ctx, `SELECT method, COUNT(*) FROM scans
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
		GROUP BY method ORDER BY method`, userID, start, end)
	if err != nil {
		return rep, fmt.Errorf("query failed: %w", err)
	}
	for rows.Next() {
		var mc MethodCount
		if err := rows.Scan(&mc.Method, &mc.Count); err != nil {
			rows.Close()
			return rep, err
		}
		rep.Methods = append(rep.Methods, mc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return rep, err
	}
	if !list {
		return rep, nil
	}

	rows, err = db.QueryContext(ctx, `SELECT id, file_name, method, identifier, created_at FROM scans
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3 ORDER BY id`, userID, start, end)
	if err != nil {
		return rep, fmt.Errorf("fetch rows failed: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.FileName, &r.Method, &r.Identifier, &r.CreatedAt); err != nil {
			return rep, err
		}
		rep.Rows = append(rep.Rows, r)
	}
	return rep, rows.Err()
}

func Render(w io.Writer, rep Report) {
	fmt.Fprintf(w, "Report for user=%s month=%s (UTC):\n", rep.Username, rep.Month)
	fmt.Fprintf(w, "  scans=%d resolved=%d\n", rep.Total(), rep.Resolved())
	for _, m := range rep.Methods {
		fmt.Fprintf(w, "  %-7s %d\n", m.Method, m.Count)
	}
	for _, r := range rep.Rows {
		fmt.Fprintf(w, "%d|%s|%s|%s|%s\n", r.ID, r.FileName, r.Method, r.Identifier, r.CreatedAt.Format(time.RFC3339))
	}
}
