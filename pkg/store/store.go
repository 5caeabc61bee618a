// Package store persists exploration snapshots.
//
// A snapshot captures everything needed to resume an exploration later:
// the materialized tree (with cached positions) and the view state. Two
// backends ship: memory for development and tests, and MongoDB for
// server deployments.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/orbit/pkg/domain"
	"github.com/matzehuels/orbit/pkg/explorer"
)

// Sentinel errors for snapshot operations.
var (
	// ErrNotFound is returned when a snapshot does not exist.
	ErrNotFound = errors.New("snapshot not found")
)

// Snapshot is a resumable exploration: tree plus view state.
type Snapshot struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Tree      *domain.Node       `json:"tree"`
	View      explorer.ViewState `json:"view"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Meta is the listing view of a snapshot, without the tree payload.
type Meta struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Store is the interface for snapshot storage backends.
type Store interface {
	// Get retrieves a snapshot by ID. Returns ErrNotFound when absent.
	Get(ctx context.Context, id string) (*Snapshot, error)

	// Put stores a snapshot, minting an ID when it has none and
	// maintaining the created/updated timestamps.
	Put(ctx context.Context, snap *Snapshot) error

	// Delete removes a snapshot. Deleting a missing ID returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// List returns snapshot metadata, most recently updated first.
	List(ctx context.Context) ([]Meta, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// stamp fills in identity and timestamps before a write.
func stamp(snap *Snapshot) {
	now := time.Now().UTC()
	if snap.ID == "" {
		snap.ID = uuid.NewString()
		snap.CreatedAt = now
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = now
	}
	snap.UpdatedAt = now
}
