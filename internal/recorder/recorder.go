package recorder

import (
	"context"
	"errors"

	"TickerScope/internal/model"
)

// ErrNotFound is returned when no saved analysis has the requested id.
var ErrNotFound = errors.New("analysis not found")

// Recorder persists analyses for later review.
type Recorder interface {
	// Save stores the analysis, assigning a.ID when empty, and returns the id.
	Save(ctx context.Context, a *model.Analysis) (string, error)
	// List returns saved analyses newest first. An empty symbol lists everything.
	List(ctx context.Context, symbol string) ([]model.Summary, error)
	Get(ctx context.Context, id string) (*model.Summary, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
