package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	coresys "github.com/l1jgo/gridworld/internal/core/system"
	"github.com/l1jgo/gridworld/internal/persist"
	"github.com/l1jgo/gridworld/internal/world"
)

// PersistenceSystem periodically snapshots dirty characters and hands
// them to the writer, and forwards faction changes every tick.
// Phase 4 (Persist).
type PersistenceSystem struct {
	world     *world.State
	storage   Storage
	log       *zap.Logger
	tickCount uint64
	interval  uint64 // auto-save every N ticks
}

func NewPersistenceSystem(ws *world.State, storage Storage, log *zap.Logger, intervalTicks uint64) *PersistenceSystem {
	return &PersistenceSystem{
		world:    ws,
		storage:  storage,
		log:      log,
		interval: max(1, intervalTicks),
	}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	s.saveFactions()

	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.saveDirty()
}

func (s *PersistenceSystem) saveFactions() {
	created, disbanded := s.world.Factions().TakeChanges()
	for _, f := range created {
		if !s.storage.SaveFaction(persist.FactionFromWorld(f)) {
			s.log.Error("陣營存檔排程失敗", zap.String("faction", f.Name))
		}
	}
	for _, id := range disbanded {
		if !s.storage.DeleteFaction(id) {
			s.log.Error("陣營刪除排程失敗", zap.String("faction", id))
		}
	}
}

// saveDirty queues a snapshot of every dirty player and clears the flag.
// A failed save is spooled by the writer, so the flag is not restored.
func (s *PersistenceSystem) saveDirty() {
	count := 0
	for _, c := range s.world.Players() {
		if !c.Dirty {
			continue // clean since last save
		}
		s.storage.Save(persist.FromCharacter(c), 0)
		c.Dirty = false
		count++
	}
	if count > 0 {
		s.log.Debug("自動存檔", zap.Int("players", count))
	}
}

// SaveAllPlayers persists every online player synchronously, ignoring
// dirty flags. Called for graceful shutdown after the loop has stopped.
func (s *PersistenceSystem) SaveAllPlayers(ctx context.Context) int {
	s.saveFactions()
	saved := 0
	for _, c := range s.world.Players() {
		if err := s.storage.SaveNow(ctx, persist.FromCharacter(c)); err != nil {
			s.log.Error("關閉存檔失敗", zap.String("name", c.Name), zap.Error(err))
			continue
		}
		c.Dirty = false
		saved++
	}
	return saved
}
