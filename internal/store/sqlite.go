package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kearry/mca/internal/types"
)

type SQLite struct {
	db *sql.DB
}

func Open(path string) (SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return SQLite{}, fmt.Errorf("open sqlite: %w", err)
	}
	s := SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return SQLite{}, err
	}
	return s, nil
}

func NewSQLite(db *sql.DB) SQLite {
	return SQLite{db: db}
}

func (s SQLite) Close() error {
	return s.db.Close()
}

func (s SQLite) migrate() error {
	_, err := s.db.Exec(`
		create table if not exists jobs (
			id text primary key,
			transcript text
		);
		create table if not exists posts (
			id integer primary key autoincrement,
			job_id text not null,
			content text not null,
			media_path text,
			quote_snippet text,
			start_time real,
			end_time real,
			page_number integer
		);
		create index if not exists posts_job_id on posts (job_id);
	`)
	if err != nil {
		return fmt.Errorf("migrate sqlite: %w", err)
	}
	return nil
}

func (s SQLite) SaveTranscript(ctx context.Context, jobID, transcript string) error {
	_, err := s.db.ExecContext(ctx, `
		insert into jobs (id, transcript) values ($1, $2)
		on conflict (id) do update set transcript = excluded.transcript
	`, jobID, transcript)
	if err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	return nil
}

func (s SQLite) SavePosts(ctx context.Context, jobID string, posts []types.Post) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save posts: begin trx: %w", err)
	}
	for _, p := range posts {
		// A clip legitimately starts at 0.0; only a fully zero pair means
		// the post has no timing.
		var start, end any
		if p.StartTime != 0 || p.EndTime != 0 {
			start, end = p.StartTime, p.EndTime
		}
		_, err := tx.ExecContext(ctx, `
			insert into posts (job_id, content, media_path, quote_snippet, start_time, end_time, page_number)
			values ($1, $2, $3, $4, $5, $6, $7)
		`, jobID, p.Text, nullStr(p.MediaPath), nullStr(p.QuoteSnippet),
			start, end, nullInt(p.PageNumber))
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return fmt.Errorf("rollback save posts: %w", rbErr)
			}
			return fmt.Errorf("save posts: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save posts: committing: %w", err)
	}
	return nil
}

func (s SQLite) LoadPosts(ctx context.Context, jobID string) ([]types.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		select content, media_path, quote_snippet, start_time, end_time, page_number
		from posts where job_id = $1 order by id
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("load posts: %w", err)
	}
	defer rows.Close()

	var out []types.Post
	for rows.Next() {
		var p types.Post
		var media, snippet sql.NullString
		var start, end sql.NullFloat64
		var page sql.NullInt64
		if err := rows.Scan(&p.Text, &media, &snippet, &start, &end, &page); err != nil {
			return nil, fmt.Errorf("load posts: scan: %w", err)
		}
		p.MediaPath = media.String
		p.QuoteSnippet = snippet.String
		p.StartTime = start.Float64
		p.EndTime = end.Float64
		p.PageNumber = int(page.Int64)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load posts: %w", err)
	}
	return out, nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(i int) any {
	if i == 0 {
		return nil
	}
	return i
}
