package system

import (
	"sort"
	"time"
)

// Runner executes systems in phase order each tick and owns the monotonic
// tick counter that cooldowns and NPC timers are measured in.
type Runner struct {
	systems []System
	sorted  bool
	tick    uint64
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 16),
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// Now returns the number of completed ticks.
func (r *Runner) Now() uint64 { return r.tick }

// Tick runs every registered system once, then advances the counter.
func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		s.Update(dt)
	}
	r.tick++
}

// TickPhase 只執行指定 Phase 的 System，不推進 tick 計數。
// 主迴圈在兩次完整 tick 之間以此輪詢輸入，降低指令延遲。
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(dt)
		}
	}
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
