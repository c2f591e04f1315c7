package repository

import (
	"context"

	"github.com/ricirt/problem-interpretation/internal/domain"
)

// PredictionRepository persists prediction runs.
// Implementations: in-memory (memory_prediction_repo.go), PostgreSQL
// (pg_prediction_repo.go) and SQLite (sqlite_prediction_repo.go).
type PredictionRepository interface {
	Create(ctx context.Context, p *domain.Prediction) error
	GetByID(ctx context.Context, id string) (*domain.Prediction, error)
	List(ctx context.Context, filter domain.ListFilter) ([]*domain.Prediction, int, error)
	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
