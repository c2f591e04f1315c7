package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/ricirt/problem-interpretation/internal/domain"
)

// MemoryPredictionRepository keeps predictions in process memory. It backs
// the default "memory" store driver and doubles as the test fake.
type MemoryPredictionRepository struct {
	mu          sync.RWMutex
	predictions map[string]*domain.Prediction

	// Optional error overrides, set in tests to simulate failure paths.
	CreateErr error
	ListErr   error
	PingErr   error
}

func NewMemoryPredictionRepository() *MemoryPredictionRepository {
	return &MemoryPredictionRepository{predictions: make(map[string]*domain.Prediction)}
}

func (m *MemoryPredictionRepository) Create(_ context.Context, p *domain.Prediction) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *p
	m.predictions[p.ID] = &clone
	return nil
}

func (m *MemoryPredictionRepository) GetByID(_ context.Context, id string) (*domain.Prediction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.predictions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

// List returns the newest predictions first.
func (m *MemoryPredictionRepository) List(_ context.Context, f domain.ListFilter) ([]*domain.Prediction, int, error) {
	if m.ListErr != nil {
		return nil, 0, m.ListErr
	}
	f.Normalize()
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]*domain.Prediction, 0, len(m.predictions))
	for _, p := range m.predictions {
		if f.Organism != nil && p.Organism != *f.Organism {
			continue
		}
		clone := *p
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := min(max(f.Offset(), 0), total)
	end := min(start+f.Limit, total)
	return matched[start:end], total, nil
}

func (m *MemoryPredictionRepository) Ping(_ context.Context) error {
	return m.PingErr
}

var _ PredictionRepository = (*MemoryPredictionRepository)(nil)
