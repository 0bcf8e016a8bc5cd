package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors as globals.
func registerAPI(L *lua.LState, coll *collector) {
	// Game { title = "...", width = 40, height = 20, player = "hero", ... }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		coll.game = L.CheckTable(1)
		return 0
	}))

	// Being "id" { ... }, Item "id" { ... }, Spell "id" { ... }: curried,
	// the first call takes the ID and returns a function taking the table.
	L.SetGlobal("Being", curried(L, &coll.beings))
	L.SetGlobal("Item", curried(L, &coll.items))
	L.SetGlobal("Spell", curried(L, &coll.spells))

	// Spawn("being", x, y)
	L.SetGlobal("Spawn", L.NewFunction(func(L *lua.LState) int {
		coll.spawns = append(coll.spawns, rawSpawn{
			being: L.CheckString(1),
			x:     L.CheckInt(2),
			y:     L.CheckInt(3),
		})
		return 0
	}))

	// Wall(x, y) places one wall; Wall(x1, y1, x2, y2) fills the rectangle.
	L.SetGlobal("Wall", L.NewFunction(func(L *lua.LState) int {
		x1, y1 := L.CheckInt(1), L.CheckInt(2)
		x2, y2 := L.OptInt(3, x1), L.OptInt(4, y1)
		coll.walls = append(coll.walls, rawWall{x1: x1, y1: y1, x2: x2, y2: y2})
		return 0
	}))

	// Map { "#####", "#...#", ... } marks every '#' as a wall, row by row
	// from the top.
	L.SetGlobal("Map", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		for i := 1; i <= tbl.MaxN(); i++ {
			row, ok := tbl.RawGetInt(i).(lua.LString)
			if !ok {
				L.ArgError(1, "map rows must be strings")
			}
			coll.rows = append(coll.rows, string(row))
		}
		return 0
	}))
}

func curried(L *lua.LState, into *[]rawDef) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			*into = append(*into, rawDef{id: id, table: L.CheckTable(1)})
			return 0
		}))
		return 1
	})
}
