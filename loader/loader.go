package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/runecore/engine/state"
)

// StatsFile is the optional stat template file read from a game directory.
const StatsFile = "stats.json"

// collector accumulates Lua definitions during file execution.
type collector struct {
	game   *lua.LTable
	beings []rawDef
	items  []rawDef
	spells []rawDef
	spawns []rawSpawn
	walls  []rawWall
	rows   []string
}

// Load reads all .lua files from dir, compiles them into game definitions,
// merges dir/stats.json over the being stats when present, validates
// references, and returns the immutable Defs. The Lua VM is discarded
// after loading.
func Load(dir string) (*state.Defs, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading game directory %s: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", dir)
	}

	// Sort: game.lua first, rest alphabetical.
	luaFiles = sortedLuaFiles(luaFiles)

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range luaFiles {
		path := filepath.Join(dir, f)
		if err := L.DoFile(path); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	defs, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling game data: %w", err)
	}

	if err := MergeStatsFile(defs, filepath.Join(dir, StatsFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if err := validate(defs); err != nil {
		return nil, err
	}
	return defs, nil
}

// MergeStatsFile loads a stat template file and overrides the stats of the
// beings it names. Naming a being the game does not define is an error.
func MergeStatsFile(defs *state.Defs, path string) error {
	stats, err := LoadStats(path)
	if err != nil {
		return err
	}
	if unknown := defs.MergeStats(stats); len(unknown) > 0 {
		return &ValidationError{Errors: []string{
			fmt.Sprintf("%s: stats for undefined beings: %s", path, strings.Join(unknown, ", ")),
		}}
	}
	return nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	// Base library (print, type, tostring, tonumber, pairs, ipairs, etc.)
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals and functions.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Remove math.randomseed to preserve determinism.
	if mathTbl := L.GetGlobal("math"); mathTbl != lua.LNil {
		if tbl, ok := mathTbl.(*lua.LTable); ok {
			tbl.RawSetString("randomseed", lua.LNil)
		}
	}
}
