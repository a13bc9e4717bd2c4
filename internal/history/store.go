package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"starspread/internal/domain"
)

// Run is one recorded expansion.
type Run struct {
	ID        string `json:"id"`
	TableName string `json:"table_name"`
	Mode      string `json:"mode"`
	Statement string `json:"statement"`
	Validated bool   `json:"validated"`
	// Equivalent is nil when the run was not validated.
	Equivalent *bool     `json:"equivalent,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store reads and writes run records.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Save inserts the run and fills in its ID and CreatedAt.
func (s *Store) Save(ctx context.Context, run *Run) error {
	run.ID = uuid.NewString()
	run.CreatedAt = time.Now().UTC().Truncate(time.Second)

	var equivalent interface{}
	if run.Equivalent != nil {
		equivalent = *run.Equivalent
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, table_name, mode, statement, validated, equivalent, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.TableName, run.Mode, run.Statement, run.Validated, equivalent,
		run.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// List returns the most recent runs, newest first. limit <= 0 means 50.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, table_name, mode, statement, validated, equivalent, created_at
		 FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Get returns a single run by ID.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, table_name, mode, statement, validated, equivalent, created_at
		 FROM runs WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("get run: %w", err)
		}
		return nil, domain.ErrNotFound("run %q not found", id)
	}
	run, err := scanRun(rows)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func scanRun(rows *sql.Rows) (Run, error) {
	var (
		run        Run
		equivalent sql.NullBool
		createdAt  string
	)
	if err := rows.Scan(&run.ID, &run.TableName, &run.Mode, &run.Statement,
		&run.Validated, &equivalent, &createdAt); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if equivalent.Valid {
		run.Equivalent = &equivalent.Bool
	}
	ts, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse run timestamp: %w", err)
	}
	run.CreatedAt = ts
	return run, nil
}
