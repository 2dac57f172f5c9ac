package system

import (
	"time"

	coresys "github.com/l1jgo/gridworld/internal/core/system"
	"github.com/l1jgo/gridworld/internal/metrics"
	"github.com/l1jgo/gridworld/internal/net"
	"github.com/l1jgo/gridworld/internal/world"
)

// OutputSystem flushes every session's buffered frames to its writer
// goroutine and publishes population gauges. Phase 3 (Output).
type OutputSystem struct {
	sessions *net.SessionStore
	world    *world.State
	metrics  *metrics.Metrics
}

func NewOutputSystem(sessions *net.SessionStore, ws *world.State, m *metrics.Metrics) *OutputSystem {
	return &OutputSystem{sessions: sessions, world: ws, metrics: m}
}

func (s *OutputSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *OutputSystem) Update(_ time.Duration) {
	s.sessions.ForEach(func(sess *net.Session) {
		sess.FlushOutput()
	})
	s.metrics.SetPopulation(s.world.PlayerCount(), len(s.world.NPCs()))
}
