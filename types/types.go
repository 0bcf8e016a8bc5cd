// Package types defines the shared data structures for the runecore engine.
// This package contains only type definitions — no logic, no methods.
package types

// BeingID is a generational handle to a being. The zero value refers to
// nothing; a handle goes stale when its slot is reused.
type BeingID struct {
	Slot uint32 `json:"slot"`
	Gen  uint32 `json:"gen"`
}

// ItemID is a generational handle to an item.
type ItemID struct {
	Slot uint32 `json:"slot"`
	Gen  uint32 `json:"gen"`
}

// Coord is a tile position in a region.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Vector is a relative displacement between tiles.
type Vector struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

// Direction is one of the eight compass directions. Zero is "none".
type Direction int

const (
	NoDirection Direction = iota
	North
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

// Directions lists every compass direction in clockwise order from north.
var Directions = []Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}

// DirectionDeltas maps each direction to its unit step. Y grows southward.
var DirectionDeltas = map[Direction]Vector{
	North:     {0, -1},
	NorthEast: {1, -1},
	East:      {1, 0},
	SouthEast: {1, 1},
	South:     {0, 1},
	SouthWest: {-1, 1},
	West:      {-1, 0},
	NorthWest: {-1, -1},
}

// DirectionNames maps each direction to its canonical name.
var DirectionNames = map[Direction]string{
	North:     "north",
	NorthEast: "northeast",
	East:      "east",
	SouthEast: "southeast",
	South:     "south",
	SouthWest: "southwest",
	West:      "west",
	NorthWest: "northwest",
}

// Attributes is the flat block of numeric base attributes of a being.
type Attributes struct {
	MaxHP    int `json:"max_hp"`
	MaxMana  int `json:"max_mana"`
	Attack   int `json:"attack"`
	Defense  int `json:"defense"`
	Accuracy int `json:"accuracy"`
	Evasion  int `json:"evasion"`
	Speech   int `json:"speech"`
	Speed    int `json:"speed"`
}

// BehaviorEntry is one weighted row of an AI behavior table.
type BehaviorEntry struct {
	Action string `json:"action"`
	Weight int    `json:"weight"`
}

// BodyPartDef describes one node of a being's body tree.
type BodyPartDef struct {
	Name   string `json:"name"`
	Slot   string `json:"slot"`   // equip slot accepted by this part ("hand", "neck", ...)
	Parent string `json:"parent"` // empty for the root part
}

// GameDef holds game metadata from Lua.
type GameDef struct {
	Title   string
	Author  string
	Version string
	Intro   string
	Seed    int64
	Width   int
	Height  int
	Player  string // being template controlled by the human agent
}

// BeingDef is the template a being is spawned from.
type BeingDef struct {
	ID       string
	Name     string
	Glyph    string
	Faction  string
	Stats    Attributes
	Items    []string // item templates carried at spawn
	Spells   []string // spell templates known
	Behavior []BehaviorEntry
	Body     []BodyPartDef
}

// ItemDef is the template an item is created from.
type ItemDef struct {
	ID         string
	Name       string
	Kind       string // "weapon", "bow", "quiver", "gatestone", "trinket"
	Slot       string // equip slot, empty if not equippable
	Damage     int
	Windup     int
	Range      int
	Arrows     int
	Charge     int
	Capacity   int
	Autocharge bool
}

// SpellDef is the template of a learnable spell.
type SpellDef struct {
	ID     string
	Name   string
	Words  string
	Kind   string // "bolt", "heal", "blink", "shove", "hex"
	Mana   int
	Incant int // base incant time in ticks
	Power  int
	Range  int
}

// SpawnDef places a being template at a coordinate when a game starts.
type SpawnDef struct {
	Being string
	At    Coord
}

// Event is published by the engine after state changes.
type Event struct {
	Tick  int            `json:"tick"`
	Type  string         `json:"type"`
	Being BeingID        `json:"being"`
	Data  map[string]any `json:"data,omitempty"`
}

// Intent is a parsed player command.
type Intent struct {
	Verb   string
	Object string
	Target string
}
