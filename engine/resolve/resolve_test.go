package resolve

import (
	"errors"
	"testing"

	"github.com/nathoo/runecore/engine"
	"github.com/nathoo/runecore/engine/enginetest"
	"github.com/nathoo/runecore/types"
)

func setup(t *testing.T) (*engine.Engine, types.BeingID) {
	t.Helper()
	defs := enginetest.Defs()
	defs.Items["iron_sword"] = types.ItemDef{ID: "iron_sword", Name: "Iron Sword", Kind: "weapon", Slot: "hand", Damage: 3}
	e := engine.New(defs, engine.Services{})
	hero := enginetest.Spawn(t, e, "hero", 2, 2, nil)
	return e, hero
}

func TestItem_ByName_CaseInsensitive(t *testing.T) {
	e, hero := setup(t)
	sword := enginetest.Give(t, e, hero, "iron_sword")

	got, err := Item(e, hero, "IRON SWORD", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != sword {
		t.Errorf("expected %v, got %v", sword, got)
	}
}

func TestItem_PartialNameMatch(t *testing.T) {
	e, hero := setup(t)
	sword := enginetest.Give(t, e, hero, "iron_sword")

	got, err := Item(e, hero, "sword", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != sword {
		t.Errorf("expected %v, got %v", sword, got)
	}
}

func TestItem_ByTemplateID(t *testing.T) {
	e, hero := setup(t)
	sword := enginetest.Give(t, e, hero, "iron_sword")

	got, err := Item(e, hero, "iron_sword", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != sword {
		t.Errorf("expected %v, got %v", sword, got)
	}
}

func TestItem_GroundAtFeet(t *testing.T) {
	e, hero := setup(t)
	quiver, err := e.CreateItem("quiver")
	if err != nil {
		t.Fatal(err)
	}
	e.PlaceItem(quiver, types.Coord{X: 2, Y: 2})

	got, err := Item(e, hero, "quiver", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != quiver {
		t.Errorf("expected %v, got %v", quiver, got)
	}
}

func TestItem_GroundElsewhereNotFound(t *testing.T) {
	e, hero := setup(t)
	quiver, _ := e.CreateItem("quiver")
	e.PlaceItem(quiver, types.Coord{X: 5, Y: 5})

	_, err := Item(e, hero, "quiver", nil)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %T: %v", err, err)
	}
	if nf.Name != "quiver" {
		t.Errorf("expected name 'quiver', got %q", nf.Name)
	}
}

func TestItem_Ambiguity(t *testing.T) {
	e, hero := setup(t)
	enginetest.Give(t, e, hero, "quiver")
	enginetest.Give(t, e, hero, "quiver")

	_, err := Item(e, hero, "quiver", nil)
	var ae *AmbiguityError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AmbiguityError, got %T: %v", err, err)
	}
	if len(ae.Candidates) != 2 {
		t.Errorf("expected 2 candidates, got %d", len(ae.Candidates))
	}
}

func TestItem_AcceptFilterNarrows(t *testing.T) {
	e, hero := setup(t)
	first := enginetest.Give(t, e, hero, "quiver")
	second := enginetest.Give(t, e, hero, "quiver")

	got, err := Item(e, hero, "quiver", func(id types.ItemID) bool { return id == second })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != second || got == first {
		t.Errorf("expected the accepted quiver, got %v", got)
	}
}

func TestBeing_WithinReach(t *testing.T) {
	e, hero := setup(t)
	near := enginetest.Spawn(t, e, "goblin", 3, 2, nil)
	enginetest.Spawn(t, e, "ogre", 9, 6, nil)

	got, err := Being(e, hero, "goblin", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != near {
		t.Errorf("expected %v, got %v", near, got)
	}

	if _, err := Being(e, hero, "ogre", 3); err == nil {
		t.Error("expected the distant ogre to be out of reach")
	}
	if _, err := Being(e, hero, "ogre", 0); err != nil {
		t.Errorf("unlimited reach should find the ogre: %v", err)
	}
}

func TestBeing_Self(t *testing.T) {
	e, hero := setup(t)
	got, err := Being(e, hero, "me", 1)
	if err != nil || got != hero {
		t.Errorf("expected self, got %v, %v", got, err)
	}
}

func TestSpell_ByNameOrID(t *testing.T) {
	e, hero := setup(t)

	for _, name := range []string{"bolt", "lightning bolt", "Lightning"} {
		got, err := Spell(e, hero, name)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", name, err)
		}
		if got != "bolt" {
			t.Errorf("%q: expected bolt, got %q", name, got)
		}
	}
}

func TestSpell_UnknownToCaster(t *testing.T) {
	e, _ := setup(t)
	goblin := enginetest.Spawn(t, e, "goblin", 4, 4, nil)

	if _, err := Spell(e, goblin, "bolt"); err == nil {
		t.Error("goblin should not know bolt")
	}
}
