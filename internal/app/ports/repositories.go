package ports

import (
	"context"
	"time"

	"dronefarm/internal/domain/console"
	"dronefarm/internal/domain/farm"
)

type SaveRecord struct {
	Name     string                    `json:"name"`
	Farm     farm.Snapshot             `json:"farm"`
	Sessions []console.SessionSnapshot `json:"sessions"`
	SavedAt  time.Time                 `json:"saved_at"`
}

type SaveSummary struct {
	Name    string    `json:"name"`
	SavedAt time.Time `json:"saved_at"`
}

// SaveRepository stores whole-game snapshots keyed by a user-chosen name.
// Put overwrites an existing save with the same name.
type SaveRepository interface {
	Put(ctx context.Context, rec SaveRecord) error
	Get(ctx context.Context, name string) (SaveRecord, error)
	List(ctx context.Context) ([]SaveSummary, error)
	Delete(ctx context.Context, name string) error
}
