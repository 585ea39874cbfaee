package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/heartbound/internal/game/dice"
	"github.com/cory-johannsen/heartbound/internal/game/player"
)

// ErrUnknownHook is returned when a predicate names a function no script defines.
var ErrUnknownHook = errors.New("unknown script hook")

// Runner owns one sandboxed VM holding every loaded predicate script.
//
// Runner is safe for concurrent use; calls are serialized because an LState
// is single-threaded.
type Runner struct {
	mu     sync.Mutex
	L      *lua.LState
	limit  int
	roller *dice.Roller
	logger *zap.Logger
	// active serves engine.roll and engine.chance during a call.
	active *dice.Roller
}

// NewRunner creates a Runner with an empty VM.
//
// Precondition: roller and logger must be non-nil; instLimit >= 0.
// Postcondition: Returns a Runner whose engine.* module is registered.
func NewRunner(instLimit int, roller *dice.Roller, logger *zap.Logger) *Runner {
	r := &Runner{
		L:      NewSandboxedState(instLimit),
		limit:  instLimit,
		roller: roller,
		logger: logger,
		active: roller,
	}
	r.RegisterModules(r.L)
	return r
}

// LoadDir executes every *.lua file in dir in lexicographic order.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns an error naming the first file that fails to load.
func (r *Runner) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, path := range files {
		Rearm(r.L, r.limit)
		if err := r.L.DoFile(path); err != nil {
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}
	return nil
}

// LoadString executes src under name. Used for inline scripts and tests.
func (r *Runner) LoadString(name, src string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	Rearm(r.L, r.limit)
	if err := r.L.DoString(src); err != nil {
		return fmt.Errorf("scripting: loading %s: %w", name, err)
	}
	return nil
}

// HasHook reports whether a global function named hook is defined.
func (r *Runner) HasHook(hook string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.L.GetGlobal(hook).(*lua.LFunction)
	return ok
}

// EvalPredicate calls the global function hook with a read-only view of p and
// reports whether it returned a truthy value. engine.roll and engine.chance
// draw from src for the duration of the call; a nil src uses the runner's roller.
//
// Postcondition: p is never modified; a runtime error or an exhausted
// instruction budget is returned as an error.
func (r *Runner) EvalPredicate(hook string, p player.Player, src dice.Source) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if src != nil {
		r.active = dice.NewLoggedRoller(src, r.logger)
		defer func() { r.active = r.roller }()
	}

	fn, ok := r.L.GetGlobal(hook).(*lua.LFunction)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownHook, hook)
	}
	cancel := Rearm(r.L, r.limit)
	defer cancel()

	if err := r.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, playerTable(r.L, p)); err != nil {
		r.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return false, fmt.Errorf("script %s: %w", hook, err)
	}
	ret := r.L.Get(-1)
	r.L.Pop(1)
	return lua.LVAsBool(ret), nil
}

// Close releases the VM.
func (r *Runner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.L.Close()
}

// playerTable builds the Lua view of p. Scripts receive a fresh table on
// every call, so writes to it never reach the player.
func playerTable(L *lua.LState, p player.Player) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("name", lua.LString(p.Name))
	t.RawSetString("level", lua.LNumber(p.Level))
	t.RawSetString("experience", lua.LNumber(p.Experience))
	t.RawSetString("rank", lua.LNumber(p.RankPoints))
	t.RawSetString("day", lua.LNumber(p.Day))
	t.RawSetString("time", lua.LString(p.Time.String()))
	t.RawSetString("location", lua.LString(p.Location))
	t.RawSetString("money", lua.LNumber(p.Money))
	t.RawSetString("hp", lua.LNumber(p.HP))
	t.RawSetString("max_hp", lua.LNumber(p.MaxHP))
	t.RawSetString("mp", lua.LNumber(p.MP))
	t.RawSetString("max_mp", lua.LNumber(p.MaxMP))

	stats := L.NewTable()
	for _, st := range player.AllStats {
		stats.RawSetString(string(st), lua.LNumber(p.Stats.Get(st)))
	}
	t.RawSetString("stats", stats)

	aff := L.NewTable()
	for id, v := range p.Affection {
		aff.RawSetString(id, lua.LNumber(v))
	}
	t.RawSetString("affection", aff)

	inv := L.NewTable()
	for id, n := range p.Inventory {
		inv.RawSetString(id, lua.LNumber(n))
	}
	t.RawSetString("inventory", inv)

	flags := L.NewTable()
	for name, v := range p.Flags {
		flags.RawSetString(name, lua.LBool(v))
	}
	t.RawSetString("flags", flags)

	unlocked := L.NewTable()
	for id, v := range p.Unlocked {
		if v {
			unlocked.RawSetString(id, lua.LTrue)
		}
	}
	t.RawSetString("unlocked", unlocked)
	return t
}
