package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/runecore/engine/enginetest"
	"github.com/nathoo/runecore/engine/human"
	"github.com/nathoo/runecore/engine/save"
	"github.com/nathoo/runecore/engine/state"
	"github.com/nathoo/runecore/session"
	"github.com/nathoo/runecore/types"
)

func arena() *state.Defs {
	defs := enginetest.Defs()
	defs.Walls = []types.Coord{{X: 0, Y: 0}, {X: 1, Y: 0}}
	defs.Spawns = []types.SpawnDef{
		{Being: "hero", At: types.Coord{X: 1, Y: 1}},
		{Being: "goblin", At: types.Coord{X: 10, Y: 6}},
	}
	return defs
}

func open(t *testing.T, opts session.Options) *session.Session {
	t.Helper()
	s, err := session.New(arena(), opts)
	require.NoError(t, err)
	return s
}

func heroAt(t *testing.T, s *session.Session) types.Coord {
	t.Helper()
	b, ok := s.Player()
	require.True(t, ok)
	return b.Pos
}

func TestNew_PlayerIsHuman(t *testing.T) {
	s := open(t, session.Options{})

	require.True(t, s.Advance())
	p, ok := s.Human.Pending()
	require.True(t, ok)
	assert.Equal(t, human.Command, p.Kind)
	assert.False(t, s.Over())
}

func TestNew_PlayerNeverSpawned(t *testing.T) {
	defs := arena()
	defs.Spawns = defs.Spawns[1:]
	_, err := session.New(defs, session.Options{})
	assert.ErrorContains(t, err, "never spawns its player")
}

func TestNew_SeedOverride(t *testing.T) {
	s := open(t, session.Options{Seed: 99})
	assert.Equal(t, int64(99), s.Engine.RNG.Seed())
}

func TestMap(t *testing.T) {
	s := open(t, session.Options{})
	bow, err := s.Engine.CreateItem("bow")
	require.NoError(t, err)
	require.True(t, s.Engine.PlaceItem(bow, types.Coord{X: 4, Y: 3}))

	rows := s.Map()
	require.Len(t, rows, 8)
	assert.Len(t, rows[0], 12)
	assert.Equal(t, byte('#'), rows[0][0])
	assert.Equal(t, byte('@'), rows[1][1])
	assert.Equal(t, byte('g'), rows[6][10])
	assert.Equal(t, byte('}'), rows[3][4])
	assert.Equal(t, byte('.'), rows[5][5])
}

func TestStatus(t *testing.T) {
	s := open(t, session.Options{})
	assert.Contains(t, s.Status(), "hero  HP 20/20  Mana 10/10  Tick 0")
}

func TestSave_NoStore(t *testing.T) {
	s := open(t, session.Options{})
	_, err := s.Save(context.Background(), "x")
	assert.ErrorIs(t, err, session.ErrNoStore)
	_, err = s.Load(context.Background(), "")
	assert.ErrorIs(t, err, session.ErrNoStore)
}

func TestSaveLoad_AtCommandPrompt(t *testing.T) {
	ctx := context.Background()
	store, err := save.OpenStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	s := open(t, session.Options{Store: store})
	require.True(t, s.Advance())

	slot, err := s.Save(ctx, "start")
	require.NoError(t, err)
	assert.Equal(t, "start", slot.Name)
	assert.Equal(t, "Test Arena", slot.Game)

	require.NoError(t, s.Human.Answer("e"))
	require.True(t, s.Advance())
	assert.Equal(t, types.Coord{X: 2, Y: 1}, heroAt(t, s))

	got, err := s.Load(ctx, "start")
	require.NoError(t, err)
	assert.Equal(t, slot.ID, got.ID)
	assert.Equal(t, types.Coord{X: 1, Y: 1}, heroAt(t, s))
	assert.Equal(t, slot.Tick, s.Engine.Now())

	// The restored hero is offered the turn it was deciding when saved.
	require.True(t, s.Advance())
	p, ok := s.Human.Pending()
	require.True(t, ok)
	assert.Equal(t, human.Command, p.Kind)
}

func TestLoad_ByIDAndLatest(t *testing.T) {
	ctx := context.Background()
	store, err := save.OpenStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	s := open(t, session.Options{Store: store})
	require.True(t, s.Advance())
	first, err := s.Save(ctx, "one")
	require.NoError(t, err)

	require.NoError(t, s.Human.Answer("s"))
	require.True(t, s.Advance())
	second, err := s.Save(ctx, "two")
	require.NoError(t, err)

	slots, err := s.Saves(ctx)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, second.ID, slots[0].ID)

	got, err := s.Load(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.Equal(t, types.Coord{X: 1, Y: 2}, heroAt(t, s))

	got, err = s.Load(ctx, first.ID.String())
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, types.Coord{X: 1, Y: 1}, heroAt(t, s))

	_, err = s.Load(ctx, "nope")
	assert.ErrorIs(t, err, save.ErrNoSlot)
}

func TestTrace_SeesEvents(t *testing.T) {
	var seen []string
	s := open(t, session.Options{})
	s.Watch(func(ev types.Event) { seen = append(seen, ev.Type) })
	require.True(t, s.Advance())
	require.NoError(t, s.Human.Answer("e"))
	assert.Contains(t, seen, "moved")
}
