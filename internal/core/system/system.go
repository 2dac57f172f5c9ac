package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput   Phase = iota // 0: accept sessions, drain command queues
	PhaseEvents               // 1: deliver last tick's domain events
	PhaseUpdate               // 2: autonomous entities, script reloads
	PhaseOutput               // 3: flush outbound envelopes
	PhasePersist              // 4: autosave, persistence completions
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseEvents:
		return "events"
	case PhaseUpdate:
		return "update"
	case PhaseOutput:
		return "output"
	case PhasePersist:
		return "persist"
	}
	return "unknown"
}

// System is one unit of per-tick work.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
