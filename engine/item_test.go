package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/runecore/engine/query"
	"github.com/nathoo/runecore/types"
)

func arrows(t *testing.T, e *Engine, id types.ItemID) int {
	t.Helper()
	it, ok := e.Item(id)
	require.True(t, ok)
	q, ok := BodyAs[*Quiver](it)
	require.True(t, ok)
	return q.Arrows
}

func TestDrop_QuiverAsksHowMany(t *testing.T) {
	e := newTestEngine(t)
	agent := &scripted{}
	hero := spawn(t, e, "hero", 1, 1, agent)
	quiver := give(t, e, hero, "quiver")
	agent.items = []query.Answer[types.ItemID]{query.Some(quiver)}
	agent.counts = []query.Answer[int]{query.Some(4)}

	p := &tally{}
	Drop{}.Perform(e, hero, p.cont())

	require.Equal(t, 1, p.calls)
	assert.Equal(t, Success, p.last)
	require.Len(t, agent.asked, 2)
	assert.Equal(t, query.KindCount, agent.asked[1].Kind())
	assert.Equal(t, 10, agent.asked[1].(query.Count).Max)

	assert.Equal(t, 6, arrows(t, e, quiver))
	_, held := e.Held(hero, quiver)
	assert.True(t, held)

	ground := e.Grid.ItemsAt(types.Coord{X: 1, Y: 1})
	require.Len(t, ground, 1)
	assert.NotEqual(t, quiver, ground[0])
	assert.Equal(t, 4, arrows(t, e, ground[0]))
	split, _ := e.Item(ground[0])
	assert.Equal(t, "quiver", split.Name)
	assert.True(t, split.OnGround())
}

func TestDrop_CancelledCountKeepsQuiver(t *testing.T) {
	e := newTestEngine(t)
	agent := &scripted{}
	hero := spawn(t, e, "hero", 1, 1, agent)
	quiver := give(t, e, hero, "quiver")

	p := &tally{}
	Drop{Item: quiver}.Perform(e, hero, p.cont())

	assert.Equal(t, 1, p.calls)
	assert.Equal(t, Aborted, p.last)
	require.Len(t, agent.asked, 1)
	assert.Equal(t, query.KindCount, agent.asked[0].Kind())
	assert.Equal(t, 10, arrows(t, e, quiver))
	_, held := e.Held(hero, quiver)
	assert.True(t, held)
	assert.Empty(t, e.Grid.ItemsAt(types.Coord{X: 1, Y: 1}))
}

func TestDrop_WholeQuiver(t *testing.T) {
	e := newTestEngine(t)
	agent := &scripted{counts: []query.Answer[int]{query.Some(10)}}
	hero := spawn(t, e, "hero", 1, 1, agent)
	quiver := give(t, e, hero, "quiver")

	p := &tally{}
	Drop{Item: quiver}.Perform(e, hero, p.cont())

	assert.Equal(t, Success, p.last)
	_, held := e.Held(hero, quiver)
	assert.False(t, held)
	assert.Equal(t, []types.ItemID{quiver}, e.Grid.ItemsAt(types.Coord{X: 1, Y: 1}))
	assert.Equal(t, 10, arrows(t, e, quiver))
}

func TestDrop_TrinketAsksNoCount(t *testing.T) {
	e := newTestEngine(t)
	agent := &scripted{}
	hero := spawn(t, e, "hero", 2, 2, agent)
	ring := give(t, e, hero, "ring")

	p := &tally{}
	Drop{Item: ring}.Perform(e, hero, p.cont())

	assert.Equal(t, Success, p.last)
	assert.Empty(t, agent.asked)
	assert.Equal(t, []types.ItemID{ring}, e.Grid.ItemsAt(types.Coord{X: 2, Y: 2}))
}

func TestToss_LandsInFrontOfBeing(t *testing.T) {
	e := newTestEngine(t)
	agent := &scripted{}
	hero := spawn(t, e, "hero", 1, 1, agent)
	spawn(t, e, "goblin", 4, 1, nil)
	ring := give(t, e, hero, "ring")
	agent.items = []query.Answer[types.ItemID]{query.Some(ring)}
	agent.tiles = []query.Answer[types.Coord]{query.Some(types.Coord{X: 5, Y: 1})}

	p := &tally{}
	Toss{}.Perform(e, hero, p.cont())

	require.Equal(t, 1, p.calls)
	assert.Equal(t, Success, p.last)
	_, held := e.Held(hero, ring)
	assert.False(t, held)
	assert.Equal(t, []types.ItemID{ring}, e.Grid.ItemsAt(types.Coord{X: 3, Y: 1}))
}

func TestToss_OpenGroundReachesTarget(t *testing.T) {
	e := newTestEngine(t)
	agent := &scripted{tiles: []query.Answer[types.Coord]{query.Some(types.Coord{X: 4, Y: 4})}}
	hero := spawn(t, e, "hero", 1, 1, agent)
	ring := give(t, e, hero, "ring")

	p := &tally{}
	Toss{Item: ring}.Perform(e, hero, p.cont())

	assert.Equal(t, Success, p.last)
	require.Len(t, agent.asked, 1)
	assert.Equal(t, query.KindTile, agent.asked[0].Kind())
	assert.Equal(t, []types.ItemID{ring}, e.Grid.ItemsAt(types.Coord{X: 4, Y: 4}))
}

func TestToss_TooFarKeepsItem(t *testing.T) {
	e := newTestEngine(t)
	agent := &scripted{tiles: []query.Answer[types.Coord]{query.Some(types.Coord{X: 9, Y: 1})}}
	hero := spawn(t, e, "hero", 1, 1, agent)
	ring := give(t, e, hero, "ring")

	p := &tally{}
	Toss{Item: ring}.Perform(e, hero, p.cont())

	assert.Equal(t, Aborted, p.last)
	assert.Equal(t, "That is too far.", agent.lastMessage().Text)
	_, held := e.Held(hero, ring)
	assert.True(t, held)
}

func TestToss_CancelledTileKeepsItem(t *testing.T) {
	e := newTestEngine(t)
	agent := &scripted{}
	hero := spawn(t, e, "hero", 1, 1, agent)
	ring := give(t, e, hero, "ring")

	p := &tally{}
	Toss{Item: ring}.Perform(e, hero, p.cont())

	assert.Equal(t, 1, p.calls)
	assert.Equal(t, Aborted, p.last)
	_, held := e.Held(hero, ring)
	assert.True(t, held)
	for _, id := range e.Items() {
		it, _ := e.Item(id)
		assert.False(t, it.OnGround(), "nothing should lie on the ground")
	}
}
