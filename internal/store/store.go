// Package store persists audited properties, their forensic documents and
// valuation snapshots. Records are stored as JSON documents keyed by ID.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/indigoandlavender/agenz2-willow-morocco/internal/model"
)

// ErrNotFound is returned when a property does not exist.
var ErrNotFound = errors.New("store: not found")

// Store defines the persistence interface for property records.
type Store interface {
	// Properties
	GetProperty(ctx context.Context, id string) (*model.Property, error)
	ListProperties(ctx context.Context) ([]*model.Property, error)
	SaveProperty(ctx context.Context, p *model.Property) error
	SaveProperties(ctx context.Context, props []*model.Property) (int64, error)

	// Documents
	ListDocuments(ctx context.Context, propertyID string) ([]model.ForensicDocument, error)
	SaveDocument(ctx context.Context, d *model.ForensicDocument) error
	SaveDocuments(ctx context.Context, docs []model.ForensicDocument) (int64, error)

	// Valuations
	SaveValuation(ctx context.Context, propertyID string, snap model.ValuationSnapshot) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// stamp assigns an ID to new records and maintains the timestamps.
func stamp(p *model.Property, now time.Time) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

func stampDocument(d *model.ForensicDocument) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
}
