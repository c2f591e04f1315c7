package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/ricirt/problem-interpretation/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS predictions (
	id                 TEXT PRIMARY KEY,
	organism           TEXT NOT NULL,
	model_type         TEXT NOT NULL,
	factor4_type       TEXT NOT NULL,
	total_log_increase REAL NOT NULL,
	payload            TEXT NOT NULL,
	result             TEXT NOT NULL,
	created_at         DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_predictions_organism ON predictions (organism);
CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions (created_at);
`

// SQLitePredictionRepository stores predictions in a local SQLite file
// (pure Go driver, no CGO).
type SQLitePredictionRepository struct {
	db *sql.DB
}

// NewSQLitePredictionRepository opens or creates the database at path,
// creating the parent directory when needed, and applies the schema.
func NewSQLitePredictionRepository(ctx context.Context, path string) (*SQLitePredictionRepository, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_time_format=sqlite")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite is single-writer

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &SQLitePredictionRepository{db: db}, nil
}

func (s *SQLitePredictionRepository) Close() error {
	return s.db.Close()
}

func (s *SQLitePredictionRepository) Create(ctx context.Context, p *domain.Prediction) error {
	payload, result, err := marshalPrediction(p)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO predictions (id, organism, model_type, factor4_type, total_log_increase, payload, result, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, string(p.Organism), string(p.ModelType), string(p.Factor4Type), p.TotalLogIncrease,
		string(payload), string(result), p.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

func (s *SQLitePredictionRepository) GetByID(ctx context.Context, id string) (*domain.Prediction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, organism, model_type, factor4_type, total_log_increase, payload, result, created_at
		 FROM predictions WHERE id = ?`, id)

	p, err := scanSQLitePrediction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return p, err
}

func (s *SQLitePredictionRepository) List(ctx context.Context, f domain.ListFilter) ([]*domain.Prediction, int, error) {
	f.Normalize()

	where := ""
	var args []any
	if f.Organism != nil {
		where = " WHERE organism = ?"
		args = append(args, string(*f.Organism))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM predictions"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count predictions: %w", err)
	}

	args = append(args, f.Limit, f.Offset())
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, organism, model_type, factor4_type, total_log_increase, payload, result, created_at
		 FROM predictions`+where+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list predictions: %w", err)
	}
	defer rows.Close()

	predictions := []*domain.Prediction{}
	for rows.Next() {
		p, err := scanSQLitePrediction(rows)
		if err != nil {
			return nil, 0, err
		}
		predictions = append(predictions, p)
	}
	return predictions, total, rows.Err()
}

func (s *SQLitePredictionRepository) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLitePrediction(row rowScanner) (*domain.Prediction, error) {
	var (
		p               domain.Prediction
		organism        string
		modelType       string
		factor4         string
		payload, result string
	)
	err := row.Scan(&p.ID, &organism, &modelType, &factor4, &p.TotalLogIncrease, &payload, &result, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Organism = domain.Organism(organism)
	p.ModelType = domain.ModelType(modelType)
	p.Factor4Type = domain.Factor4Type(factor4)
	if err := unmarshalPrediction(&p, []byte(payload), []byte(result)); err != nil {
		return nil, err
	}
	return &p, nil
}

var _ PredictionRepository = (*SQLitePredictionRepository)(nil)
