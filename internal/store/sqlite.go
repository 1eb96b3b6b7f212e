package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/proppulse/underwrite/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS analyses (
	id         TEXT PRIMARY KEY,
	address    TEXT NOT NULL,
	status     TEXT NOT NULL,
	score      REAL NOT NULL,
	result     TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analyses_status ON analyses(status);
CREATE INDEX IF NOT EXISTS idx_analyses_address ON analyses(address);
CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveAnalysis(ctx context.Context, result *model.AnalysisResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal analysis")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, address, status, score, result, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		result.ID, result.PropertyAddress, string(result.Decision.Status),
		result.Decision.Score, string(payload), result.CreatedAt.UTC(),
	)
	return eris.Wrap(err, "sqlite: insert analysis")
}

func (s *SQLiteStore) GetAnalysis(ctx context.Context, id string) (*model.AnalysisResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT result FROM analyses WHERE id = ?`, id,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get analysis %s", id)
	}

	var result model.AnalysisResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal analysis %s", id)
	}
	return &result, nil
}

func (s *SQLiteStore) ListAnalyses(ctx context.Context, filter ListFilter) ([]AnalysisSummary, error) {
	query := `SELECT id, address, status, score, created_at FROM analyses`
	var args []any
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	} else if filter.Offset > 0 {
		// SQLite only accepts OFFSET after a LIMIT clause; -1 means unbounded.
		query += ` LIMIT -1`
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list analyses")
	}
	defer rows.Close() //nolint:errcheck

	var out []AnalysisSummary
	for rows.Next() {
		var sum AnalysisSummary
		var status string
		if err := rows.Scan(&sum.ID, &sum.Address, &status, &sum.Score, &sum.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan analysis row")
		}
		sum.Status = model.DealStatus(status)
		out = append(out, sum)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate analyses")
}
