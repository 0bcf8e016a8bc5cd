package loader

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/nathoo/runecore/engine"
	"github.com/nathoo/runecore/engine/ai"
	"github.com/nathoo/runecore/engine/spells"
	"github.com/nathoo/runecore/engine/state"
	"github.com/nathoo/runecore/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Behavior names a behavior table may weight.
var validBehaviors = map[string]bool{
	ai.Attack:   true,
	ai.Shoot:    true,
	ai.Cast:     true,
	ai.Approach: true,
	ai.Wait:     true,
}

// validate checks the compiled defs for referential integrity and consistency.
func validate(defs *state.Defs) error {
	ve := &ValidationError{}

	if defs.Game.Title == "" {
		ve.Errors = append(ve.Errors, "Game.Title is required")
	}
	if defs.Game.Width <= 0 || defs.Game.Height <= 0 {
		ve.Errors = append(ve.Errors, "Game.width and Game.height must be positive (or give a Map)")
	}

	if defs.Game.Player == "" {
		ve.Errors = append(ve.Errors, "Game.player is required")
	} else if _, ok := defs.Beings[defs.Game.Player]; !ok {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"player being %q not found in defined beings", defs.Game.Player))
	}

	for _, id := range sortedKeys(defs.Beings) {
		validateBeing(defs.Beings[id], defs, ve)
	}
	for _, id := range sortedKeys(defs.Items) {
		validateItem(defs.Items[id], ve)
	}
	for _, id := range sortedKeys(defs.Spells) {
		validateSpell(defs.Spells[id], ve)
	}
	validateSpawns(defs, ve)

	// Warnings: content nothing refers to.
	usedItems, usedSpells := map[string]bool{}, map[string]bool{}
	for _, b := range defs.Beings {
		for _, it := range b.Items {
			usedItems[it] = true
		}
		for _, sp := range b.Spells {
			usedSpells[sp] = true
		}
	}
	for _, id := range sortedKeys(defs.Items) {
		if !usedItems[id] {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf("item %q is never carried", id))
		}
	}
	for _, id := range sortedKeys(defs.Spells) {
		if !usedSpells[id] {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf("spell %q is known by no being", id))
		}
	}

	// Print warnings to stderr.
	for _, w := range ve.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateBeing(def types.BeingDef, defs *state.Defs, ve *ValidationError) {
	if def.Stats.MaxHP <= 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf("being %q needs stats.max_hp above zero", def.ID))
	}
	if def.Glyph == "" {
		ve.Warnings = append(ve.Warnings, fmt.Sprintf("being %q has no glyph", def.ID))
	}
	for _, it := range def.Items {
		if _, ok := defs.Items[it]; !ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"being %q carries undefined item %q", def.ID, it))
		}
	}
	for _, sp := range def.Spells {
		if _, ok := defs.Spells[sp]; !ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"being %q knows undefined spell %q", def.ID, sp))
		}
	}
	for _, b := range def.Behavior {
		if !validBehaviors[b.Action] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"being %q has unknown behavior %q", def.ID, b.Action))
		}
		if b.Weight <= 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"being %q behavior %q needs a positive weight", def.ID, b.Action))
		}
	}

	names := map[string]bool{}
	roots := 0
	for _, p := range def.Body {
		if p.Name == "" {
			ve.Errors = append(ve.Errors, fmt.Sprintf("being %q has a body part with no name", def.ID))
			continue
		}
		if names[p.Name] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("being %q has body part %q twice", def.ID, p.Name))
		}
		names[p.Name] = true
		if p.Parent == "" {
			roots++
		}
	}
	for _, p := range def.Body {
		if p.Parent != "" && !names[p.Parent] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"being %q body part %q hangs off undefined part %q", def.ID, p.Name, p.Parent))
		}
	}
	if len(def.Body) > 0 && roots != 1 {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"being %q body needs exactly one root part, has %d", def.ID, roots))
	}
}

func validateItem(def types.ItemDef, ve *ValidationError) {
	if _, err := engine.NewItemBody(def); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
		return
	}
	switch def.Kind {
	case "bow":
		if def.Range <= 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf("bow %q needs a range", def.ID))
		}
	case "gatestone":
		if def.Capacity <= 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf("gatestone %q needs a capacity", def.ID))
		}
		if def.Charge > def.Capacity {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"gatestone %q starts with more charge than it holds", def.ID))
		}
	}
}

func validateSpell(def types.SpellDef, ve *ValidationError) {
	kind, err := spells.ParseKind(def.Kind)
	if err != nil {
		ve.Errors = append(ve.Errors, fmt.Sprintf("spell %q: %v", def.ID, err))
		return
	}
	if def.Mana < 0 || def.Incant < 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf("spell %q has a negative cost", def.ID))
	}
	if def.Words == "" {
		ve.Warnings = append(ve.Warnings, fmt.Sprintf("spell %q has no words", def.ID))
	}
	if kind != spells.Heal && def.Range <= 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf("spell %q needs a range", def.ID))
	}
}

func validateSpawns(defs *state.Defs, ve *ValidationError) {
	walls := map[types.Coord]bool{}
	for _, c := range defs.Walls {
		walls[c] = true
	}
	taken := map[types.Coord]string{}
	playerSpawned := false
	for _, sp := range defs.Spawns {
		if _, ok := defs.Beings[sp.Being]; !ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"spawn at %d,%d references undefined being %q", sp.At.X, sp.At.Y, sp.Being))
			continue
		}
		if sp.At.X < 0 || sp.At.Y < 0 || sp.At.X >= defs.Game.Width || sp.At.Y >= defs.Game.Height {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"spawn of %q at %d,%d is off the map", sp.Being, sp.At.X, sp.At.Y))
			continue
		}
		if walls[sp.At] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"spawn of %q at %d,%d is inside a wall", sp.Being, sp.At.X, sp.At.Y))
		}
		if other, ok := taken[sp.At]; ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"spawn of %q at %d,%d overlaps %q", sp.Being, sp.At.X, sp.At.Y, other))
		}
		taken[sp.At] = sp.Being
		if sp.Being == defs.Game.Player {
			playerSpawned = true
		}
	}
	if defs.Game.Player != "" && !playerSpawned {
		ve.Errors = append(ve.Errors, fmt.Sprintf("player being %q is never spawned", defs.Game.Player))
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
