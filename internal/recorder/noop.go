package recorder

import (
	"context"

	"github.com/google/uuid"

	"TickerScope/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) Save(_ context.Context, a *model.Analysis) (string, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return a.ID, nil
}

func (n *NoopRecorder) List(_ context.Context, _ string) ([]model.Summary, error) {
	return []model.Summary{}, nil
}

func (n *NoopRecorder) Get(_ context.Context, _ string) (*model.Summary, error) {
	return nil, ErrNotFound
}

func (n *NoopRecorder) Delete(_ context.Context, _ string) error { return ErrNotFound }
func (n *NoopRecorder) Close() error                             { return nil }
