package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// scriptDirs are loaded in order; later files may use globals of earlier ones.
var scriptDirs = []string{"core", "combat", "ai"}

// Fallback supplies the result when a Lua function is missing or fails.
// combat.DefaultFormulas satisfies it.
type Fallback interface {
	HitChance(accuracy int) int
	KillExp(victimHealthMax int) int
}

// Engine wraps a single gopher-lua VM for game formulas.
// Single-goroutine access only (game loop). Reload swaps the VM in place.
type Engine struct {
	dir      string
	vm       *lua.LState
	log      *zap.Logger
	fallback Fallback
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, fallback Fallback, log *zap.Logger) (*Engine, error) {
	vm, err := loadVM(scriptsDir, log)
	if err != nil {
		return nil, err
	}
	return &Engine{dir: scriptsDir, vm: vm, log: log, fallback: fallback}, nil
}

func loadVM(scriptsDir string, log *zap.Logger) (*lua.LState, error) {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	for _, sub := range scriptDirs {
		if err := loadDir(vm, filepath.Join(scriptsDir, sub), log); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return vm, nil
}

// loadDir loads all .lua files in a directory. Missing dirs are skipped.
func loadDir(vm *lua.LState, dir string, log *zap.Logger) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Reload re-reads every script into a fresh VM. On error the running VM
// is kept.
func (e *Engine) Reload() error {
	vm, err := loadVM(e.dir, e.log)
	if err != nil {
		return err
	}
	e.vm.Close()
	e.vm = vm
	return nil
}

// HitChance calls Lua calc_hit_chance(accuracy), clamped to 0..100.
func (e *Engine) HitChance(accuracy int) int {
	v, ok := e.callIntFunc("calc_hit_chance", accuracy)
	if !ok {
		return e.fallback.HitChance(accuracy)
	}
	return min(100, max(0, v))
}

// KillExp calls Lua calc_kill_exp(victim_health_max).
func (e *Engine) KillExp(victimHealthMax int) int {
	v, ok := e.callIntFunc("calc_kill_exp", victimHealthMax)
	if !ok {
		return e.fallback.KillExp(victimHealthMax)
	}
	return max(0, v)
}

// AIContext is what an NPC sees when deciding its next step.
type AIContext struct {
	Health       int
	HealthMax    int
	Hostiles     int // live hostiles sharing the cell
	Players      int // players sharing the cell
	Aggressive   bool
	Wanders      bool
	DistHome     int
	ShouldPatrol bool
}

// AIDecision is the action chosen by npc_ai. Action is "attack", "move"
// or "idle"; Dir is used by "move" and may be empty for a random step.
type AIDecision struct {
	Action string
	Dir    string
}

// DecideNpc calls Lua npc_ai(ctx). ok is false when no script decides, in
// which case the caller applies its built-in behaviour.
func (e *Engine) DecideNpc(ctx AIContext) (AIDecision, bool) {
	fn := e.vm.GetGlobal("npc_ai")
	if fn == lua.LNil {
		return AIDecision{}, false
	}

	t := e.vm.NewTable()
	t.RawSetString("health", lua.LNumber(ctx.Health))
	t.RawSetString("health_max", lua.LNumber(ctx.HealthMax))
	t.RawSetString("hostiles", lua.LNumber(ctx.Hostiles))
	t.RawSetString("players", lua.LNumber(ctx.Players))
	t.RawSetString("aggressive", lua.LBool(ctx.Aggressive))
	t.RawSetString("wanders", lua.LBool(ctx.Wanders))
	t.RawSetString("dist_home", lua.LNumber(ctx.DistHome))
	t.RawSetString("should_patrol", lua.LBool(ctx.ShouldPatrol))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua npc_ai error", zap.Error(err))
		return AIDecision{}, false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		return AIDecision{}, false
	}
	return AIDecision{Action: lStr(rt, "action"), Dir: lStr(rt, "dir")}, true
}

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	v := t.RawGetString(key)
	if v == lua.LNil {
		return ""
	}
	return lua.LVAsString(v)
}

// callIntFunc calls a Lua function with int args and returns an int result.
// ok is false when the function is missing, fails, or returns a non-number.
func (e *Engine) callIntFunc(name string, args ...int) (int, bool) {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return 0, false
	}

	lArgs := make([]lua.LValue, len(args))
	for i, a := range args {
		lArgs[i] = lua.LNumber(a)
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lArgs...); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return 0, false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	n, ok := result.(lua.LNumber)
	if !ok {
		e.log.Error("lua call returned non-number", zap.String("func", name))
		return 0, false
	}
	return int(n), true
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
