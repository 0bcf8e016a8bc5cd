package engine

import (
	"slices"

	"github.com/nathoo/runecore/types"
)

// Region is the view of the world that actions consume: what is at a
// coordinate, and a place to register effects.
type Region interface {
	InBounds(c types.Coord) bool
	Passable(c types.Coord) bool
	BeingAt(c types.Coord) (types.BeingID, bool)
	ItemsAt(c types.Coord) []types.ItemID
	Register(fx Effect)
}

// Effect is a short-lived visual left on the grid by an action, such as
// the path of a bolt.
type Effect struct {
	Kind  string
	Path  []types.Coord
	Ticks int
}

// Grid is a rectangular region with walls, one being per tile, and any
// number of items per tile.
type Grid struct {
	Width  int
	Height int

	walls    map[types.Coord]bool
	occupant map[types.Coord]types.BeingID
	ground   map[types.Coord][]types.ItemID
	effects  []Effect
}

var _ Region = (*Grid)(nil)

// NewGrid creates an empty w by h grid.
func NewGrid(w, h int) *Grid {
	return &Grid{
		Width:    w,
		Height:   h,
		walls:    map[types.Coord]bool{},
		occupant: map[types.Coord]types.BeingID{},
		ground:   map[types.Coord][]types.ItemID{},
	}
}

// InBounds reports whether c lies on the grid.
func (g *Grid) InBounds(c types.Coord) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < g.Width && c.Y < g.Height
}

// SetWall places or removes a wall.
func (g *Grid) SetWall(c types.Coord, wall bool) {
	if wall {
		g.walls[c] = true
	} else {
		delete(g.walls, c)
	}
}

// Wall reports whether c is a wall. Tiles off the grid count as walls.
func (g *Grid) Wall(c types.Coord) bool {
	return !g.InBounds(c) || g.walls[c]
}

// Passable reports whether a being could step onto c.
func (g *Grid) Passable(c types.Coord) bool {
	if g.Wall(c) {
		return false
	}
	_, taken := g.occupant[c]
	return !taken
}

// BeingAt returns the being standing on c.
func (g *Grid) BeingAt(c types.Coord) (types.BeingID, bool) {
	id, ok := g.occupant[c]
	return id, ok
}

// ItemsAt returns the items lying on c, oldest first.
func (g *Grid) ItemsAt(c types.Coord) []types.ItemID {
	return slices.Clone(g.ground[c])
}

// Register adds fx to the grid's active effects.
func (g *Grid) Register(fx Effect) {
	if fx.Ticks < 1 {
		fx.Ticks = 1
	}
	g.effects = append(g.effects, fx)
}

// Effects returns the active effects.
func (g *Grid) Effects() []Effect {
	return slices.Clone(g.effects)
}

func (g *Grid) place(id types.BeingID, c types.Coord) { g.occupant[c] = id }

func (g *Grid) vacate(c types.Coord) { delete(g.occupant, c) }

func (g *Grid) dropItem(id types.ItemID, c types.Coord) {
	g.ground[c] = append(g.ground[c], id)
}

func (g *Grid) liftItem(id types.ItemID, c types.Coord) bool {
	items := g.ground[c]
	i := slices.Index(items, id)
	if i < 0 {
		return false
	}
	items = slices.Delete(items, i, i+1)
	if len(items) == 0 {
		delete(g.ground, c)
	} else {
		g.ground[c] = items
	}
	return true
}

func (g *Grid) tick() {
	kept := g.effects[:0]
	for _, fx := range g.effects {
		fx.Ticks--
		if fx.Ticks > 0 {
			kept = append(kept, fx)
		}
	}
	g.effects = kept
}

// LineOfFire walks the line from from to to and stops at the first wall or
// being. The returned path excludes from and any wall; it ends on the being
// hit, if there was one.
func (g *Grid) LineOfFire(from, to types.Coord) (path []types.Coord, hit types.BeingID, ok bool) {
	for _, c := range Line(from, to) {
		if g.Wall(c) {
			return path, types.BeingID{}, false
		}
		path = append(path, c)
		if id, taken := g.occupant[c]; taken {
			return path, id, true
		}
	}
	return path, types.BeingID{}, false
}

// Distance is the Chebyshev distance between a and b: the number of king
// moves from one to the other.
func Distance(a, b types.Coord) int {
	return max(abs(a.X-b.X), abs(a.Y-b.Y))
}

// Line returns the Bresenham line from a to b, excluding a and including b.
func Line(a, b types.Coord) []types.Coord {
	dx, dy := abs(b.X-a.X), -abs(b.Y-a.Y)
	sx, sy := sign(b.X-a.X), sign(b.Y-a.Y)
	err := dx + dy

	var out []types.Coord
	x, y := a.X, a.Y
	for x != b.X || y != b.Y {
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
		out = append(out, types.Coord{X: x, Y: y})
	}
	return out
}

// Adjacent returns the tile one step from c in dir.
func Adjacent(c types.Coord, dir types.Direction) types.Coord {
	d := types.DirectionDeltas[dir]
	return types.Coord{X: c.X + d.DX, Y: c.Y + d.DY}
}

// Toward returns the direction of the first step from a toward b.
func Toward(a, b types.Coord) types.Direction {
	v := types.Vector{DX: sign(b.X - a.X), DY: sign(b.Y - a.Y)}
	for _, dir := range types.Directions {
		if types.DirectionDeltas[dir] == v {
			return dir
		}
	}
	return types.NoDirection
}

// Offset applies v to c.
func Offset(c types.Coord, v types.Vector) types.Coord {
	return types.Coord{X: c.X + v.DX, Y: c.Y + v.DY}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
