package history

import (
	"context"
	"time"

	"github.com/Medic423/medport-sub003/core/factory"
)

// Store is a durable archive of history entries. Implementations live in
// infra/history and register themselves with the store registry.
type Store interface {
	Append(ctx context.Context, e Entry) error
	Query(ctx context.Context, q Query) ([]Entry, error)
	Close() error
}

// Query filters archived entries. Zero fields match everything.
type Query struct {
	RequestID string
	Kind      Kind
	Start     time.Time
	End       time.Time
}

// Matches reports whether the entry satisfies the query.
func (q Query) Matches(e Entry) bool {
	if q.RequestID != "" && e.RequestID != q.RequestID {
		return false
	}
	if q.Kind != "" && e.Kind != q.Kind {
		return false
	}
	if !q.Start.IsZero() && e.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && e.Timestamp.After(q.End) {
		return false
	}
	return true
}

var storeRegistry = factory.NewRegistry[Store]()

// RegisterStore adds an archive store factory identified by name.
func RegisterStore(name string, f factory.Factory[Store]) error {
	return storeRegistry.Register(name, f)
}

// NewStore instantiates an archive store from configuration. A nil config
// means no archive.
func NewStore(cfg *factory.ModuleConfig) (Store, error) {
	if cfg == nil || cfg.Type == "" || cfg.Type == "none" {
		return nil, nil
	}
	return storeRegistry.Create(*cfg)
}
