package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers the engine.* Lua table into L:
//
//	engine.log(msg)          logs msg at info level
//	engine.roll(n)           returns a uniform draw in [0, n) from the caller's source
//	engine.chance(label, p)  returns true with probability p
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (r *Runner) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "log", L.NewFunction(func(L *lua.LState) int {
		r.logger.Info("script", zap.String("msg", L.CheckString(1)))
		return 0
	}))
	L.SetField(engine, "roll", L.NewFunction(func(L *lua.LState) int {
		n := L.CheckInt(1)
		if n <= 0 {
			L.ArgError(1, "n must be positive")
			return 0
		}
		L.Push(lua.LNumber(r.active.Intn(n)))
		return 1
	}))
	L.SetField(engine, "chance", L.NewFunction(func(L *lua.LState) int {
		label := L.CheckString(1)
		p := float64(L.CheckNumber(2))
		L.Push(lua.LBool(r.active.Chance(label, p)))
		return 1
	}))
	L.SetGlobal("engine", engine)
}
