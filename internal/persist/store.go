package persist

import "context"

//go:generate mockgen -destination=mocks/store.go -package=mocks -source=store.go

// Store is the backing storage for characters and factions.
// Implementations are safe for use from multiple goroutines.
type Store interface {
	// Load returns the record for userID, or a NotFound error.
	Load(ctx context.Context, userID string) (*Record, error)
	// Save replaces the stored record for rec.UserID atomically.
	Save(ctx context.Context, rec *Record) error

	LoadFactions(ctx context.Context) ([]FactionRecord, error)
	SaveFaction(ctx context.Context, f FactionRecord) error
	DeleteFaction(ctx context.Context, id string) error

	Close() error
}
