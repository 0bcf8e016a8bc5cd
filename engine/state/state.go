// Package state holds the immutable content definitions a game is built
// from and the generational storage the engine keeps live objects in.
package state

import (
	"sort"

	"github.com/nathoo/runecore/types"
)

// Defs holds the immutable game definitions loaded from Lua and JSON.
type Defs struct {
	Game   types.GameDef
	Beings map[string]types.BeingDef
	Items  map[string]types.ItemDef
	Spells map[string]types.SpellDef
	Spawns []types.SpawnDef
	Walls  []types.Coord
}

// NewDefs returns empty definitions with all maps allocated.
func NewDefs() *Defs {
	return &Defs{
		Beings: map[string]types.BeingDef{},
		Items:  map[string]types.ItemDef{},
		Spells: map[string]types.SpellDef{},
	}
}

// Being returns the being template with the given ID.
func (d *Defs) Being(id string) (types.BeingDef, bool) {
	def, ok := d.Beings[id]
	return def, ok
}

// Item returns the item template with the given ID.
func (d *Defs) Item(id string) (types.ItemDef, bool) {
	def, ok := d.Items[id]
	return def, ok
}

// Spell returns the spell template with the given ID.
func (d *Defs) Spell(id string) (types.SpellDef, bool) {
	def, ok := d.Spells[id]
	return def, ok
}

// SpellIDs returns the IDs of all spells, sorted.
func (d *Defs) SpellIDs() []string {
	ids := make([]string, 0, len(d.Spells))
	for id := range d.Spells {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MergeStats overrides the base attributes of existing being templates.
// Templates not present in defs are reported back as unknown.
func (d *Defs) MergeStats(stats map[string]types.Attributes) (unknown []string) {
	for id, attrs := range stats {
		def, ok := d.Beings[id]
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		def.Stats = attrs
		d.Beings[id] = def
	}
	sort.Strings(unknown)
	return unknown
}
