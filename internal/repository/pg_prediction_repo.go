package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ricirt/problem-interpretation/internal/domain"
)

type pgPredictionRepository struct {
	pool *pgxpool.Pool
}

// NewPgPredictionRepository returns a PredictionRepository backed by PostgreSQL.
// The schema lives in migrations/ and is applied by db.Migrate.
func NewPgPredictionRepository(pool *pgxpool.Pool) PredictionRepository {
	return &pgPredictionRepository{pool: pool}
}

func (r *pgPredictionRepository) Create(ctx context.Context, p *domain.Prediction) error {
	payload, result, err := marshalPrediction(p)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO predictions
			(id, organism, model_type, factor4_type, total_log_increase, payload, result, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.Organism, p.ModelType, p.Factor4Type, p.TotalLogIncrease, payload, result, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

func (r *pgPredictionRepository) GetByID(ctx context.Context, id string) (*domain.Prediction, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, organism, model_type, factor4_type, total_log_increase,
		       payload, result, created_at
		FROM predictions WHERE id = $1`, id)

	p, err := scanPrediction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return p, err
}

func (r *pgPredictionRepository) List(ctx context.Context, f domain.ListFilter) ([]*domain.Prediction, int, error) {
	f.Normalize()

	where := ""
	var args []any
	if f.Organism != nil {
		where = " WHERE organism = $1"
		args = append(args, *f.Organism)
	}

	// Count total matching rows for pagination metadata.
	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM predictions"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count predictions: %w", err)
	}

	// Append pagination args after the WHERE args.
	args = append(args, f.Limit, f.Offset())
	query := fmt.Sprintf(`
		SELECT id, organism, model_type, factor4_type, total_log_increase,
		       payload, result, created_at
		FROM predictions%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list predictions: %w", err)
	}
	defer rows.Close()

	predictions := []*domain.Prediction{}
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, 0, err
		}
		predictions = append(predictions, p)
	}
	return predictions, total, rows.Err()
}

func (r *pgPredictionRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// scanPrediction works for both pgx.Row and pgx.Rows.
func scanPrediction(row pgx.Row) (*domain.Prediction, error) {
	var (
		p       domain.Prediction
		payload []byte
		result  []byte
	)
	err := row.Scan(
		&p.ID, &p.Organism, &p.ModelType, &p.Factor4Type, &p.TotalLogIncrease,
		&payload, &result, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := unmarshalPrediction(&p, payload, result); err != nil {
		return nil, err
	}
	return &p, nil
}

func marshalPrediction(p *domain.Prediction) (payload, result []byte, err error) {
	if payload, err = json.Marshal(p.Payload); err != nil {
		return nil, nil, fmt.Errorf("marshal payload: %w", err)
	}
	if result, err = json.Marshal(p.Result); err != nil {
		return nil, nil, fmt.Errorf("marshal result: %w", err)
	}
	return payload, result, nil
}

func unmarshalPrediction(p *domain.Prediction, payload, result []byte) error {
	if err := json.Unmarshal(payload, &p.Payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if err := json.Unmarshal(result, &p.Result); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	return nil
}
