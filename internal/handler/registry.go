package handler

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/l1jgo/gridworld/internal/errors"
	"github.com/l1jgo/gridworld/internal/metrics"
	"github.com/l1jgo/gridworld/internal/net/packet"
	"github.com/l1jgo/gridworld/internal/world"
)

// HandlerFunc runs one command for actor. It mutates world state through
// Deps and returns the events to deliver; it never writes to a connection.
type HandlerFunc func(actor *world.Character, args []string, d *Deps) ([]packet.Envelope, error)

type handlerEntry struct {
	name   string
	fn     HandlerFunc
	action string // cooldown key, "" when ungated
	ticks  uint64
}

// Registry maps command names and aliases to handlers.
type Registry struct {
	handlers map[string]*handlerEntry
	log      *zap.Logger
	metrics  *metrics.Metrics
}

func NewRegistry(log *zap.Logger, m *metrics.Metrics) *Registry {
	return &Registry{
		handlers: make(map[string]*handlerEntry),
		log:      log,
		metrics:  m,
	}
}

// Register maps a command and its aliases to fn.
func (reg *Registry) Register(name string, fn HandlerFunc, aliases ...string) {
	reg.add(&handlerEntry{name: name, fn: fn}, aliases)
}

// RegisterGated is Register behind a per-character cooldown: action is the
// key in Character.Cooldowns and ticks the length of the cooldown.
func (reg *Registry) RegisterGated(name, action string, ticks uint64, fn HandlerFunc, aliases ...string) {
	reg.add(&handlerEntry{name: name, fn: fn, action: action, ticks: ticks}, aliases)
}

func (reg *Registry) add(e *handlerEntry, aliases []string) {
	reg.handlers[e.name] = e
	for _, a := range aliases {
		reg.handlers[a] = e
	}
}

// Names returns the canonical command names, sorted.
func (reg *Registry) Names() []string {
	var out []string
	for key, e := range reg.handlers {
		if key == e.name {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// Dispatch parses and runs one input line. Failures come back as an
// error event for the sender; nothing here panics past the boundary.
func (reg *Registry) Dispatch(actor *world.Character, input string, d *Deps) []packet.Envelope {
	cmd := Parse(input)
	if cmd.Name == "" {
		return nil
	}
	entry, ok := reg.handlers[cmd.Name]
	if !ok {
		reg.metrics.CommandFailed(string(errors.CodeValidation))
		return []packet.Envelope{packet.Error(fmt.Sprintf("Unknown command: /%s", cmd.Name))}
	}
	reg.metrics.CommandDispatched(entry.name)

	if entry.action != "" {
		now := d.Now()
		if left := actor.CooldownRemaining(entry.action, now); left > 0 {
			reg.metrics.CommandFailed(string(errors.CodeValidation))
			return []packet.Envelope{packet.Error(fmt.Sprintf("%s is on cooldown (%d ticks)", entry.action, left))}
		}
		actor.StartCooldown(entry.action, now, entry.ticks)
	}

	out, err := reg.safeCall(entry, actor, cmd.Args, d)
	if err != nil {
		return []packet.Envelope{reg.reject(entry.name, actor, err)}
	}
	return out
}

// reject turns a handler error into the sender's error event. Player-facing
// codes keep their message; anything else is logged and masked.
func (reg *Registry) reject(name string, actor *world.Character, err error) packet.Envelope {
	code := errors.GetCode(err)
	reg.metrics.CommandFailed(string(code))
	if code.PlayerVisible() {
		reg.log.Debug("指令被拒絕",
			zap.String("command", name),
			zap.String("actor", actor.Name),
			zap.String("code", string(code)),
			zap.Error(err),
		)
		return packet.Error(errors.Message(err))
	}
	reg.log.Error("指令執行失敗",
		zap.String("command", name),
		zap.String("actor", actor.Name),
		zap.Error(err),
	)
	return packet.Error("Something went wrong. Please try again.")
}

// safeCall executes a handler with panic recovery to prevent a single
// bad command from crashing the entire game loop.
func (reg *Registry) safeCall(e *handlerEntry, actor *world.Character, args []string, d *Deps) (out []packet.Envelope, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("處理器 panic 已恢復",
				zap.String("command", e.name),
				zap.String("actor", actor.Name),
				zap.Any("panic", rec),
				zap.Stack("stack"),
			)
			reg.metrics.PanicRecovered()
			out, err = nil, errors.Internal(fmt.Sprintf("handler panic in /%s: %v", e.name, rec))
		}
	}()
	return e.fn(actor, args, d)
}
