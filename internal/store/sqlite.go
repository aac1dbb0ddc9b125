package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

func (s *SQLite) InsertLink(ctx context.Context, slug, target string) (RedirectLink, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO redirect_links(slug, target_url, click_count, created_at, updated_at) VALUES(?, ?, 0, ?, ?)`,
		slug, target, now, now)
	if err != nil {
		return RedirectLink{}, translateUnique(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return RedirectLink{}, err
	}
	return RedirectLink{ID: id, Slug: slug, TargetURL: target, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *SQLite) LinkBySlug(ctx context.Context, slug string) (RedirectLink, error) {
	return s.scanLink(s.db.QueryRowContext(ctx,
		`SELECT id, slug, target_url, click_count, created_at, updated_at FROM redirect_links WHERE slug = ?`, slug))
}

func (s *SQLite) LinkByID(ctx context.Context, id int64) (RedirectLink, error) {
	return s.scanLink(s.db.QueryRowContext(ctx,
		`SELECT id, slug, target_url, click_count, created_at, updated_at FROM redirect_links WHERE id = ?`, id))
}

func (s *SQLite) ListLinks(ctx context.Context) ([]RedirectLink, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, slug, target_url, click_count, created_at, updated_at FROM redirect_links ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RedirectLink
	for rows.Next() {
		var l RedirectLink
		if err := rows.Scan(&l.ID, &l.Slug, &l.TargetURL, &l.ClickCount, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *SQLite) UpdateLink(ctx context.Context, id int64, slug, target string) (RedirectLink, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE redirect_links SET slug = ?, target_url = ?, updated_at = ? WHERE id = ?`,
		slug, target, time.Now().UTC(), id)
	if err != nil {
		return RedirectLink{}, translateUnique(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return RedirectLink{}, err
	}
	if n == 0 {
		return RedirectLink{}, ErrNotFound
	}
	return s.LinkByID(ctx, id)
}

func (s *SQLite) DeleteLink(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM redirect_links WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) SlugExists(ctx context.Context, slug string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM redirect_links WHERE slug = ?`, slug).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// IncrementClicks runs the bump and the target fetch in one transaction so
// concurrent clicks on the same slug never lose updates.
func (s *SQLite) IncrementClicks(ctx context.Context, slug string) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE redirect_links SET click_count = click_count + 1 WHERE slug = ?`, slug)
	if err != nil {
		return "", err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", ErrNotFound
	}
	var target string
	if err := tx.QueryRowContext(ctx, `SELECT target_url FROM redirect_links WHERE slug = ?`, slug).Scan(&target); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return target, nil
}

func (s *SQLite) PageSections(ctx context.Context, page string) ([]PageSection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT page_name, section_name, content FROM page_contents WHERE page_name = ?`, page)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PageSection
	for rows.Next() {
		var p PageSection
		if err := rows.Scan(&p.PageName, &p.SectionName, &p.Content); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLite) GetPageSection(ctx context.Context, page, section string) (PageSection, error) {
	var p PageSection
	err := s.db.QueryRowContext(ctx,
		`SELECT page_name, section_name, content FROM page_contents WHERE page_name = ? AND section_name = ?`,
		page, section).Scan(&p.PageName, &p.SectionName, &p.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return PageSection{}, ErrNotFound
	}
	if err != nil {
		return PageSection{}, err
	}
	return p, nil
}

func (s *SQLite) UpsertPageSection(ctx context.Context, page, section, content string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO page_contents(page_name, section_name, content) VALUES(?, ?, ?)
		 ON CONFLICT(page_name, section_name) DO UPDATE SET content = excluded.content`,
		page, section, content)
	return err
}

func (s *SQLite) scanLink(row *sql.Row) (RedirectLink, error) {
	var l RedirectLink
	err := row.Scan(&l.ID, &l.Slug, &l.TargetURL, &l.ClickCount, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return RedirectLink{}, ErrNotFound
	}
	if err != nil {
		return RedirectLink{}, err
	}
	return l, nil
}

// translateUnique maps a UNIQUE constraint violation to ErrSlugTaken. The
// constraint is the authority of last resort when a pre-check races.
func translateUnique(err error) error {
	var serr sqlite3.Error
	if errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return ErrSlugTaken
	}
	return err
}

// Migrate ensures schema exists
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS redirect_links (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			slug TEXT NOT NULL UNIQUE,
			target_url TEXT NOT NULL,
			click_count INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_redirect_links_created_at ON redirect_links(created_at);`,
		`CREATE TABLE IF NOT EXISTS page_contents (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			page_name TEXT NOT NULL,
			section_name TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			UNIQUE(page_name, section_name)
		);`,
	}
	for _, q := range stmts {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
