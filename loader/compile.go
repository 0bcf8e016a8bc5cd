// Package loader loads Lua game content into Go structs at compile time.
// The Lua VM is discarded after loading, so no Lua runs during play.
package loader

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/runecore/engine/state"
	"github.com/nathoo/runecore/types"
)

// rawDef holds a Being, Item or Spell table before compilation.
type rawDef struct {
	id    string
	table *lua.LTable
}

type rawSpawn struct {
	being string
	x, y  int
}

type rawWall struct {
	x1, y1, x2, y2 int
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// getStrings returns the string elements of an array field.
func getStrings(tbl *lua.LTable, key string) []string {
	arr := getTable(tbl, key)
	if arr == nil {
		return nil
	}
	var out []string
	for i := 1; i <= arr.MaxN(); i++ {
		if s, ok := arr.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// compile converts all collected Lua data into a Defs struct.
func compile(coll *collector) (*state.Defs, error) {
	defs := state.NewDefs()

	if coll.game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}
	defs.Game = compileGame(coll.game)

	for _, raw := range coll.beings {
		if _, dup := defs.Beings[raw.id]; dup {
			return nil, fmt.Errorf("being %q defined twice", raw.id)
		}
		defs.Beings[raw.id] = compileBeing(raw)
	}
	for _, raw := range coll.items {
		if _, dup := defs.Items[raw.id]; dup {
			return nil, fmt.Errorf("item %q defined twice", raw.id)
		}
		defs.Items[raw.id] = compileItem(raw)
	}
	for _, raw := range coll.spells {
		if _, dup := defs.Spells[raw.id]; dup {
			return nil, fmt.Errorf("spell %q defined twice", raw.id)
		}
		defs.Spells[raw.id] = compileSpell(raw)
	}

	for _, sp := range coll.spawns {
		defs.Spawns = append(defs.Spawns, types.SpawnDef{Being: sp.being, At: types.Coord{X: sp.x, Y: sp.y}})
	}

	defs.Walls = compileWalls(coll)

	// A Map with no explicit size sizes the grid.
	if len(coll.rows) > 0 {
		if defs.Game.Height == 0 {
			defs.Game.Height = len(coll.rows)
		}
		if defs.Game.Width == 0 {
			for _, row := range coll.rows {
				defs.Game.Width = max(defs.Game.Width, len(row))
			}
		}
	}
	return defs, nil
}

func compileGame(tbl *lua.LTable) types.GameDef {
	return types.GameDef{
		Title:   getString(tbl, "title"),
		Author:  getString(tbl, "author"),
		Version: getString(tbl, "version"),
		Intro:   getString(tbl, "intro"),
		Seed:    int64(getNumber(tbl, "seed")),
		Width:   getInt(tbl, "width"),
		Height:  getInt(tbl, "height"),
		Player:  getString(tbl, "player"),
	}
}

func compileBeing(raw rawDef) types.BeingDef {
	tbl := raw.table
	def := types.BeingDef{
		ID:      raw.id,
		Name:    getString(tbl, "name"),
		Glyph:   getString(tbl, "glyph"),
		Faction: getString(tbl, "faction"),
		Items:   getStrings(tbl, "items"),
		Spells:  getStrings(tbl, "spells"),
	}
	if def.Name == "" {
		def.Name = raw.id
	}
	if st := getTable(tbl, "stats"); st != nil {
		def.Stats = compileStats(st)
	}
	if beh := getTable(tbl, "behavior"); beh != nil {
		// behavior = { attack = 3, approach = 2 }, sorted by action name.
		beh.ForEach(func(k, v lua.LValue) {
			name, ok := k.(lua.LString)
			if !ok {
				return
			}
			if w, ok := v.(lua.LNumber); ok {
				def.Behavior = append(def.Behavior, types.BehaviorEntry{Action: string(name), Weight: int(w)})
			}
		})
		sort.Slice(def.Behavior, func(i, j int) bool { return def.Behavior[i].Action < def.Behavior[j].Action })
	}
	if body := getTable(tbl, "body"); body != nil {
		for i := 1; i <= body.MaxN(); i++ {
			part, ok := body.RawGetInt(i).(*lua.LTable)
			if !ok {
				continue
			}
			def.Body = append(def.Body, types.BodyPartDef{
				Name:   getString(part, "name"),
				Slot:   getString(part, "slot"),
				Parent: getString(part, "parent"),
			})
		}
	}
	return def
}

func compileStats(tbl *lua.LTable) types.Attributes {
	return types.Attributes{
		MaxHP:    getInt(tbl, "max_hp"),
		MaxMana:  getInt(tbl, "max_mana"),
		Attack:   getInt(tbl, "attack"),
		Defense:  getInt(tbl, "defense"),
		Accuracy: getInt(tbl, "accuracy"),
		Evasion:  getInt(tbl, "evasion"),
		Speech:   getInt(tbl, "speech"),
		Speed:    getInt(tbl, "speed"),
	}
}

func compileItem(raw rawDef) types.ItemDef {
	tbl := raw.table
	def := types.ItemDef{
		ID:         raw.id,
		Name:       getString(tbl, "name"),
		Kind:       getString(tbl, "kind"),
		Slot:       getString(tbl, "slot"),
		Damage:     getInt(tbl, "damage"),
		Windup:     getInt(tbl, "windup"),
		Range:      getInt(tbl, "range"),
		Arrows:     getInt(tbl, "arrows"),
		Charge:     getInt(tbl, "charge"),
		Capacity:   getInt(tbl, "capacity"),
		Autocharge: getBool(tbl, "autocharge", false),
	}
	if def.Name == "" {
		def.Name = raw.id
	}
	if def.Kind == "" {
		def.Kind = "trinket"
	}
	return def
}

func compileSpell(raw rawDef) types.SpellDef {
	tbl := raw.table
	def := types.SpellDef{
		ID:     raw.id,
		Name:   getString(tbl, "name"),
		Words:  getString(tbl, "words"),
		Kind:   getString(tbl, "kind"),
		Mana:   getInt(tbl, "mana"),
		Incant: getInt(tbl, "incant"),
		Power:  getInt(tbl, "power"),
		Range:  getInt(tbl, "range"),
	}
	if def.Name == "" {
		def.Name = raw.id
	}
	return def
}

// compileWalls expands Wall rectangles and Map rows into wall tiles,
// without duplicates, in row-major order.
func compileWalls(coll *collector) []types.Coord {
	seen := map[types.Coord]bool{}
	for _, w := range coll.walls {
		x1, x2 := min(w.x1, w.x2), max(w.x1, w.x2)
		y1, y2 := min(w.y1, w.y2), max(w.y1, w.y2)
		for y := y1; y <= y2; y++ {
			for x := x1; x <= x2; x++ {
				seen[types.Coord{X: x, Y: y}] = true
			}
		}
	}
	for y, row := range coll.rows {
		for x, ch := range []byte(row) {
			if ch == '#' {
				seen[types.Coord{X: x, Y: y}] = true
			}
		}
	}
	walls := make([]types.Coord, 0, len(seen))
	for c := range seen {
		walls = append(walls, c)
	}
	sort.Slice(walls, func(i, j int) bool {
		if walls[i].Y != walls[j].Y {
			return walls[i].Y < walls[j].Y
		}
		return walls[i].X < walls[j].X
	})
	return walls
}

// sortedLuaFiles returns .lua files in a directory, with game.lua first
// and the rest sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var gameFile string
	var others []string
	for _, f := range files {
		if f == "game.lua" {
			gameFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if gameFile != "" {
		return append([]string{gameFile}, others...)
	}
	return others
}
