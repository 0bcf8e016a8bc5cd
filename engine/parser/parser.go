// Package parser converts command strings into Intent structs.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"strings"

	"github.com/nathoo/runecore/types"
)

var directionExpansions = map[string]string{
	"n":  "north",
	"s":  "south",
	"e":  "east",
	"w":  "west",
	"ne": "northeast",
	"nw": "northwest",
	"se": "southeast",
	"sw": "southwest",
}

var directionsByName = map[string]types.Direction{}

func init() {
	for dir, name := range types.DirectionNames {
		directionsByName[name] = dir
	}
}

var verbAliases = map[string]string{
	// Movement
	"go":   "walk",
	"move": "walk",
	"step": "walk",

	// Waiting
	"z":    "wait",
	".":    "wait",
	"rest": "wait",
	"pass": "wait",

	// Melee
	"attack": "strike",
	"hit":    "strike",
	"swing":  "strike",
	"poke":   "jab",
	"stab":   "jab",

	// Ranged
	"fire": "shoot",

	// Magic
	"cast":   "incant",
	"chant":  "incant",
	"recite": "incant",
	"c":      "incant",

	// Gatestones
	"fill":   "charge",
	"infuse": "charge",

	// Items
	"get":     "take",
	"grab":    "take",
	"g":       "take",
	"wear":    "equip",
	"wield":   "equip",
	"don":     "equip",
	"remove":  "unequip",
	"doff":    "unequip",
	"discard": "drop",
	"throw":   "toss",
	"hurl":    "toss",
	"lob":     "toss",

	// Miscellaneous
	"inv":  "inventory",
	"i":    "inventory",
	"x":    "look",
	"?":    "help",
	"q":    "quit",
	"exit": "quit",
}

var prepositions = map[string]bool{
	"on": true, "at": true, "to": true,
	"with": true, "from": true, "using": true,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true, "my": true,
}

// Parse converts a raw command string into an Intent.
func Parse(input string) types.Intent {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Intent{}
	}

	words := strings.Fields(strings.ToLower(input))

	// Direction shortcut: bare "n", "south", etc. → walk <direction>
	if len(words) == 1 {
		if dir, ok := directionExpansions[words[0]]; ok {
			return types.Intent{Verb: "walk", Object: dir}
		}
		if _, ok := directionsByName[words[0]]; ok {
			return types.Intent{Verb: "walk", Object: words[0]}
		}
	}

	// Handle multi-word verb phrases before general parsing.
	words = expandMultiWordVerbs(words)

	// Apply verb aliases.
	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	verb := words[0]
	rest := words[1:]

	// Strip articles ("the", "a", "an").
	rest = stripArticles(rest)

	// Use the first preposition as a delimiter between object and target.
	object, target := splitOnPreposition(rest)

	// Direction arguments are spelled out: "walk n" → "walk north".
	if dir, ok := directionExpansions[object]; ok {
		object = dir
	}

	return types.Intent{
		Verb:   verb,
		Object: object,
		Target: target,
	}
}

// ParseDirection maps a direction word or abbreviation to a Direction.
func ParseDirection(word string) (types.Direction, bool) {
	word = strings.ToLower(strings.TrimSpace(word))
	if full, ok := directionExpansions[word]; ok {
		word = full
	}
	dir, ok := directionsByName[word]
	return dir, ok
}

// IsCancel reports whether input asks to back out of a prompt.
func IsCancel(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "cancel", "esc", "q", "quit", "never mind", "nevermind":
		return true
	}
	return false
}

// expandMultiWordVerbs handles "pick up", "put on", "take off" etc.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}

	switch words[0] {
	case "look":
		if words[1] == "at" {
			return append([]string{"look"}, words[2:]...)
		}
	case "pick":
		if words[1] == "up" {
			return append([]string{"take"}, words[2:]...)
		}
	case "put":
		if words[1] == "on" {
			return append([]string{"equip"}, words[2:]...)
		}
		if words[1] == "down" {
			return append([]string{"drop"}, words[2:]...)
		}
	case "take":
		if words[1] == "off" {
			return append([]string{"unequip"}, words[2:]...)
		}
	case "toggle":
		if words[1] == "autocharge" {
			return append([]string{"autocharge"}, words[2:]...)
		}
	}

	return words
}

// stripArticles removes articles ("the", "a", "an") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}

// splitOnPreposition splits words on the first preposition.
// Words before the preposition become the object, words after become the target.
// If no preposition is found, all words become the object.
func splitOnPreposition(words []string) (object, target string) {
	for i, w := range words {
		if prepositions[w] {
			object = strings.Join(words[:i], " ")
			target = strings.Join(words[i+1:], " ")
			return object, target
		}
	}
	return strings.Join(words, " "), ""
}
