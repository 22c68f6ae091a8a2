package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bloghub/internal/domain"
)

var ErrNoBlogs = errors.New("blog catalogue is empty")

// ListBlogs returns the catalogue in display order.
func (d *Database) ListBlogs(ctx context.Context) ([]domain.Blog, error) {
	query := "select name, description, url from blogs order by position, id"

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close rows",
				"error", err,
				"operation", "ListBlogs")
		}
	}()

	var blogs []domain.Blog
	for rows.Next() {
		var b domain.Blog
		if err = rows.Scan(&b.Name, &b.Description, &b.URL); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		b.Name = strings.TrimSpace(b.Name)
		b.Description = strings.TrimSpace(b.Description)
		b.URL = strings.TrimSpace(b.URL)

		blogs = append(blogs, b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	if len(blogs) == 0 {
		return nil, ErrNoBlogs
	}

	return blogs, nil
}

func (d *Database) LogSearch(ctx context.Context, entry domain.SearchLogEntry) error {
	query := `insert into search_log (chat_id, kind, keywords, outcome, duration_ms, created_at)
values (?, ?, ?, ?, ?, ?)`

	_, err := d.db.ExecContext(
		ctx,
		query,
		entry.ChatID,
		string(entry.Kind),
		strings.TrimSpace(entry.Keywords),
		string(entry.Outcome),
		entry.DurationMS,
		d.now().Unix(),
	)

	return err
}

// PruneSearchLog deletes entries older than before and reports how many
// were removed.
func (d *Database) PruneSearchLog(ctx context.Context, before time.Time) (int64, error) {
	query := "delete from search_log where created_at < ?"

	res, err := d.db.ExecContext(ctx, query, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("execute query: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}

	return n, nil
}

// CountSearches reports logged searches per outcome since the given time.
func (d *Database) CountSearches(
	ctx context.Context,
	since time.Time,
) (map[domain.SearchOutcome]int64, error) {
	query := "select outcome, count(*) from search_log where created_at >= ? group by outcome"

	rows, err := d.db.QueryContext(ctx, query, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close rows",
				"error", err,
				"operation", "CountSearches")
		}
	}()

	counts := make(map[domain.SearchOutcome]int64)
	for rows.Next() {
		var (
			outcome string
			n       int64
		)
		if err = rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		counts[domain.SearchOutcome(outcome)] = n
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return counts, nil
}
