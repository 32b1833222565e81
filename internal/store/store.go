// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists the paper library in a SQLite database. Papers
// fetched from remote sources land here so local retrieval can resolve
// index hits back to full metadata across runs.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/litreview/pkg/types"
)

// Store manages the paper library SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the paper database at cfg.Path, creating parent
// directories and the schema as needed.
func Open(cfg types.StoreConfig) (*Store, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			url TEXT,
			title TEXT,
			summary TEXT,
			authors TEXT,
			published TEXT,
			citation_count INTEGER DEFAULT -1
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_title ON papers(title)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Upsert inserts a paper or replaces the stored metadata for its ID.
func (s *Store) Upsert(ctx context.Context, p types.Paper) error {
	if p.ID == "" {
		return fmt.Errorf("paper has no ID")
	}

	authorsJSON, _ := json.Marshal(p.Authors)
	published := ""
	if !p.Published.IsZero() {
		published = p.Published.Format(time.RFC3339)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO papers (id, url, title, summary, authors, published, citation_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			url=excluded.url, title=excluded.title, summary=excluded.summary,
			authors=excluded.authors, published=excluded.published,
			citation_count=excluded.citation_count`,
		p.ID, p.URL, p.Title, p.Summary, string(authorsJSON), published, p.CitationCount,
	)
	if err != nil {
		return fmt.Errorf("upserting paper %s: %w", p.ID, err)
	}
	return nil
}

// UpsertAll persists papers in one transaction.
func (s *Store) UpsertAll(ctx context.Context, papers []types.Paper) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO papers (id, url, title, summary, authors, published, citation_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			url=excluded.url, title=excluded.title, summary=excluded.summary,
			authors=excluded.authors, published=excluded.published,
			citation_count=excluded.citation_count`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range papers {
		if p.ID == "" {
			continue
		}
		authorsJSON, _ := json.Marshal(p.Authors)
		published := ""
		if !p.Published.IsZero() {
			published = p.Published.Format(time.RFC3339)
		}
		if _, err := stmt.ExecContext(ctx, p.ID, p.URL, p.Title, p.Summary, string(authorsJSON), published, p.CitationCount); err != nil {
			return fmt.Errorf("upserting paper %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// Get resolves a paper ID back to its stored metadata. The second return
// reports whether the paper was found.
func (s *Store) Get(ctx context.Context, id string) (types.Paper, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, url, title, summary, authors, published, citation_count
		 FROM papers WHERE id = ?`, id)

	p, err := scanPaper(row)
	if err == sql.ErrNoRows {
		return types.Paper{}, false, nil
	}
	if err != nil {
		return types.Paper{}, false, fmt.Errorf("querying paper %s: %w", id, err)
	}
	return p, true, nil
}

// All returns every stored paper ordered by ID.
func (s *Store) All(ctx context.Context) ([]types.Paper, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, title, summary, authors, published, citation_count
		 FROM papers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	var papers []types.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning paper: %w", err)
		}
		papers = append(papers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating papers: %w", err)
	}
	return papers, nil
}

// Count returns the number of stored papers.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM papers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting papers: %w", err)
	}
	return n, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPaper(row scanner) (types.Paper, error) {
	var p types.Paper
	var authorsJSON, published string
	if err := row.Scan(&p.ID, &p.URL, &p.Title, &p.Summary, &authorsJSON, &published, &p.CitationCount); err != nil {
		return types.Paper{}, err
	}
	if authorsJSON != "" {
		if err := json.Unmarshal([]byte(authorsJSON), &p.Authors); err != nil {
			return types.Paper{}, fmt.Errorf("parsing authors for %s: %w", p.ID, err)
		}
	}
	if published != "" {
		t, err := time.Parse(time.RFC3339, published)
		if err != nil {
			return types.Paper{}, fmt.Errorf("parsing published date for %s: %w", p.ID, err)
		}
		p.Published = t
	}
	return p, nil
}
