// Package resolve maps names typed by the player to the items, beings and
// spells they refer to.
package resolve

import (
	"fmt"
	"strings"

	"github.com/nathoo/runecore/engine"
	"github.com/nathoo/runecore/types"
)

// AmbiguityError indicates multiple candidates matched a name.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	names := strings.Join(e.Candidates, ", ")
	return fmt.Sprintf("which %s? (%s)", e.Name, names)
}

// NotFoundError indicates nothing matched a name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("you don't see %q here", e.Name)
}

// Item resolves name among what holder carries and what lies at its feet.
// Items rejected by accept are skipped; a nil accept takes any item.
func Item(e *engine.Engine, holder types.BeingID, name string, accept func(types.ItemID) bool) (types.ItemID, error) {
	b, ok := e.Being(holder)
	if !ok {
		return types.ItemID{}, &NotFoundError{Name: name}
	}
	nameLower := strings.ToLower(strings.TrimSpace(name))

	var (
		matches []types.ItemID
		labels  []string
	)
	consider := func(id types.ItemID, where string) {
		if accept != nil && !accept(id) {
			return
		}
		it, ok := e.Item(id)
		if !ok || !matchesName(it.Name, it.Template, nameLower) {
			return
		}
		matches = append(matches, id)
		labels = append(labels, fmt.Sprintf("%s %s", it.Name, where))
	}
	for _, id := range b.Inventory {
		consider(id, "(carried)")
	}
	for _, id := range e.Grid.ItemsAt(b.Pos) {
		consider(id, "(on the ground)")
	}

	switch len(matches) {
	case 0:
		return types.ItemID{}, &NotFoundError{Name: name}
	case 1:
		return matches[0], nil
	default:
		return types.ItemID{}, &AmbiguityError{Name: name, Candidates: labels}
	}
}

// Being resolves name among the beings within reach tiles of from. "me"
// and "self" name from itself. A reach of zero or less means any distance.
func Being(e *engine.Engine, from types.BeingID, name string, reach int) (types.BeingID, error) {
	self, ok := e.Being(from)
	if !ok {
		return types.BeingID{}, &NotFoundError{Name: name}
	}
	nameLower := strings.ToLower(strings.TrimSpace(name))
	if nameLower == "me" || nameLower == "self" || nameLower == "myself" {
		return from, nil
	}

	var (
		matches []types.BeingID
		labels  []string
	)
	for _, id := range e.Beings() {
		o, ok := e.Being(id)
		if !ok || (reach > 0 && engine.Distance(self.Pos, o.Pos) > reach) {
			continue
		}
		if matchesName(o.Name, o.Template, nameLower) {
			matches = append(matches, id)
			labels = append(labels, fmt.Sprintf("%s at %d,%d", o.Name, o.Pos.X, o.Pos.Y))
		}
	}

	switch len(matches) {
	case 0:
		return types.BeingID{}, &NotFoundError{Name: name}
	case 1:
		return matches[0], nil
	default:
		return types.BeingID{}, &AmbiguityError{Name: name, Candidates: labels}
	}
}

// Spell resolves name among the spells caster knows and returns its ID.
func Spell(e *engine.Engine, caster types.BeingID, name string) (string, error) {
	b, ok := e.Being(caster)
	if !ok {
		return "", &NotFoundError{Name: name}
	}
	nameLower := strings.ToLower(strings.TrimSpace(name))

	var matches []string
	for _, id := range b.Spells {
		def, ok := e.Defs.Spell(id)
		if !ok {
			continue
		}
		if matchesName(def.Name, def.ID, nameLower) {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 0:
		return "", &NotFoundError{Name: name}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguityError{Name: name, Candidates: matches}
	}
}

// matchesName checks a display name and template ID against the query
// (case-insensitive). Supports exact match, word-based partial match, and
// template ID match.
func matchesName(name, id, nameLower string) bool {
	if nameLower == "" {
		return false
	}
	entityNameLower := strings.ToLower(name)
	// Exact match.
	if entityNameLower == nameLower {
		return true
	}
	// Word-based partial match: query matches any word in the name.
	// e.g. "bolt" matches "lightning bolt".
	for _, word := range strings.Fields(entityNameLower) {
		if word == nameLower {
			return true
		}
	}
	idLower := strings.ToLower(id)
	if idLower == nameLower {
		return true
	}
	// Underscore normalization: "iron sword" matches template "iron_sword".
	return strings.ReplaceAll(nameLower, " ", "_") == idLower
}
