package system

import (
	"context"

	"github.com/l1jgo/gridworld/internal/persist"
)

// Storage is the asynchronous persistence surface used by the loop.
// *persist.Writer satisfies it.
type Storage interface {
	Load(userID string, token uint64) bool
	Save(rec *persist.Record, token uint64) bool
	SaveNow(ctx context.Context, rec *persist.Record) error
	SaveFaction(f persist.FactionRecord) bool
	DeleteFaction(id string) bool
	Completions() <-chan persist.Completion
}

var _ Storage = (*persist.Writer)(nil)
