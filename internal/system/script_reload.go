package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/l1jgo/gridworld/internal/core/system"
)

// Reloader swaps in freshly loaded scripts. *scripting.Engine satisfies it.
type Reloader interface {
	Reload() error
}

// ScriptReloadSystem applies file-change signals on the game loop, so a
// reload never races a formula call. Phase 2 (Update).
type ScriptReloadSystem struct {
	engine  Reloader
	changed <-chan struct{}
	log     *zap.Logger
}

func NewScriptReloadSystem(engine Reloader, changed <-chan struct{}, log *zap.Logger) *ScriptReloadSystem {
	return &ScriptReloadSystem{engine: engine, changed: changed, log: log}
}

func (s *ScriptReloadSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *ScriptReloadSystem) Update(_ time.Duration) {
	select {
	case <-s.changed:
	default:
		return
	}
	if err := s.engine.Reload(); err != nil {
		s.log.Error("腳本重載失敗，保留舊版本", zap.Error(err))
		return
	}
	s.log.Info("腳本已重載")
}
