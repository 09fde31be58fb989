package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers the content constructors as Lua globals. Each is
// curried: `Resource(2) { ... }` — the id call returns a function that takes
// the definition table.
func registerAPI(L *lua.LState, coll *collector) {
	constructor := func(sink *[]rawRecord) lua.LGFunction {
		return func(L *lua.LState) int {
			id := L.CheckInt(1)
			L.Push(L.NewFunction(func(L *lua.LState) int {
				tbl := L.CheckTable(1)
				*sink = append(*sink, rawRecord{id: id, table: tbl})
				return 0
			}))
			return 1
		}
	}

	L.SetGlobal("Resource", L.NewFunction(constructor(&coll.resources)))
	L.SetGlobal("Event", L.NewFunction(constructor(&coll.events)))
	L.SetGlobal("Item", L.NewFunction(constructor(&coll.items)))
	L.SetGlobal("Entity", L.NewFunction(constructor(&coll.entities)))
	L.SetGlobal("TemporaryEvent", L.NewFunction(constructor(&coll.tempEvents)))
	L.SetGlobal("ScheduledTask", L.NewFunction(constructor(&coll.tasks)))
	L.SetGlobal("Location", L.NewFunction(constructor(&coll.locations)))
	L.SetGlobal("Ending", L.NewFunction(constructor(&coll.endings)))
	L.SetGlobal("Text", L.NewFunction(constructor(&coll.texts)))
}
