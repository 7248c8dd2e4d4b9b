package linkdb

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/wikimark/internal/apperr"
	"github.com/starford/wikimark/internal/models"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// PageRow represents a row in the pages table.
type PageRow struct {
	Path      string
	URL       string
	Title     string
	Checksum  string
	Tags      []string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// UpsertPage inserts or replaces a page, its FTS entry, and its outgoing
// links within a transaction.
func (db *DB) UpsertPage(p PageRow, body string, links []models.Link) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("linkdb: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if p.Tags == nil {
		p.Tags = []string{}
	}
	tagsJSON, _ := json.Marshal(p.Tags)

	_, err = tx.Exec(`
		INSERT INTO pages (path, url, title, checksum, tags, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			url        = excluded.url,
			title      = excluded.title,
			checksum   = excluded.checksum,
			tags       = excluded.tags,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, p.Path, p.URL, p.Title, p.Checksum, string(tagsJSON), body, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("linkdb: upsert page: %w", err)
	}

	if err := ftsUpsert(tx, p.Path, p.Title, body, p.Tags); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM links WHERE source = ?`, p.Path); err != nil {
		return fmt.Errorf("linkdb: clear links: %w", err)
	}
	if len(links) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO links (source, raw, target, resolved, embed) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("linkdb: prepare link insert: %w", err)
		}
		defer stmt.Close()
		for _, l := range links {
			if _, err := stmt.Exec(p.Path, l.Raw, l.Target, l.Resolved, l.Embed); err != nil {
				return fmt.Errorf("linkdb: insert link: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeletePage removes a page, its FTS entry, and its outgoing links.
func (db *DB) DeletePage(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("linkdb: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	if _, err := tx.Exec(`DELETE FROM links WHERE source = ?`, path); err != nil {
		return fmt.Errorf("linkdb: delete links: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM pages WHERE path = ?`, path); err != nil {
		return fmt.Errorf("linkdb: delete page: %w", err)
	}
	return tx.Commit()
}

// GetChecksum returns the stored checksum for a page, or "" if the page is
// not indexed.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM pages WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("linkdb: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns the checksum of every indexed page keyed by path.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM pages`)
	if err != nil {
		return nil, fmt.Errorf("linkdb: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

const pageColumns = `path, url, title, checksum, tags, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanPage(s scanner) (*PageRow, error) {
	var (
		p    PageRow
		tags string
	)
	if err := s.Scan(&p.Path, &p.URL, &p.Title, &p.Checksum, &tags, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil || p.Tags == nil {
		p.Tags = []string{}
	}
	return &p, nil
}

// GetPage returns the indexed page at path.
func (db *DB) GetPage(path string) (*PageRow, error) {
	return db.getPage(`SELECT `+pageColumns+` FROM pages WHERE path = ?`, path)
}

// PageByURL returns the page served at url.
func (db *DB) PageByURL(url string) (*PageRow, error) {
	return db.getPage(`SELECT `+pageColumns+` FROM pages WHERE url = ? ORDER BY path LIMIT 1`, url)
}

func (db *DB) getPage(query, arg string) (*PageRow, error) {
	p, err := scanPage(db.conn.QueryRow(query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("linkdb: page %s: %w", arg, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("linkdb: get page: %w", err)
	}
	return p, nil
}

// ListPages returns pages ordered by path, optionally filtered by tag, and
// the total number of matching pages.
func (db *DB) ListPages(limit, offset int, tag string) ([]PageRow, int, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)
	offset = max(offset, 0)

	where, args := "", []any{}
	if tag != "" {
		tagJSON, _ := json.Marshal(tag)
		where = ` WHERE tags LIKE ?`
		args = append(args, "%"+string(tagJSON)+"%")
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM pages`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("linkdb: count pages: %w", err)
	}

	rows, err := db.conn.Query(`SELECT `+pageColumns+` FROM pages`+where+` ORDER BY path LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("linkdb: list pages: %w", err)
	}
	defer rows.Close()

	out := []PageRow{}
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

// Backlinks returns every link that resolves to path.
func (db *DB) Backlinks(path string) ([]models.Link, error) {
	return db.links(`SELECT source, raw, target, resolved, embed FROM links
		WHERE resolved = ? ORDER BY source, raw`, path)
}

// Unresolved returns every link whose target matched no file.
func (db *DB) Unresolved() ([]models.Link, error) {
	return db.links(`SELECT source, raw, target, resolved, embed FROM links
		WHERE resolved = '' AND target != '' ORDER BY source, raw`)
}

func (db *DB) links(query string, args ...any) ([]models.Link, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("linkdb: query links: %w", err)
	}
	defer rows.Close()

	out := []models.Link{}
	for rows.Next() {
		var l models.Link
		if err := rows.Scan(&l.Source, &l.Raw, &l.Target, &l.Resolved, &l.Embed); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// SourcesResolvingTo returns the pages with at least one link to path.
func (db *DB) SourcesResolvingTo(path string) ([]string, error) {
	return db.paths(`SELECT DISTINCT source FROM links WHERE resolved = ? ORDER BY source`, path)
}

// SourcesWithUnresolved returns the pages with at least one dangling link.
func (db *DB) SourcesWithUnresolved() ([]string, error) {
	return db.paths(`SELECT DISTINCT source FROM links WHERE resolved = '' AND target != '' ORDER BY source`)
}

func (db *DB) paths(query string, args ...any) ([]string, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("linkdb: query sources: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
