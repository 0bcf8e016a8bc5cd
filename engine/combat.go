package engine

import (
	"fmt"

	"github.com/nathoo/runecore/engine/query"
	"github.com/nathoo/runecore/types"
)

// DamageCalc computes damage: max(1, roll(1d6) + attack + bonus - defense).
// Returns (damage, dieRoll).
func DamageCalc(attack, defense, bonus int, rng *RNG) (damage, roll int) {
	roll = rng.Roll(6)
	damage = roll + attack + bonus - defense
	if damage < 1 {
		damage = 1
	}
	return damage, roll
}

// HitRoll rolls 1d20 + accuracy against 10 + evasion. Returns (hit, dieRoll).
func HitRoll(accuracy, evasion int, rng *RNG) (hit bool, roll int) {
	roll = rng.Roll(20)
	return roll+accuracy >= 10+evasion, roll
}

// Blow is one attack of attacker against defender.
type Blow struct {
	Attacker types.BeingID
	Defender types.BeingID
	Bonus    int  // weapon damage added to the attack
	Sure     bool // skip the hit roll
	Verb     string
}

// Attack resolves a blow. Both sides are re-resolved by ID; a defender that
// is gone yields a target-missing message and Aborted. Misses return
// Failure, hits Success. The attacker hears about it either way.
func (e *Engine) Attack(blow Blow) Outcome {
	atk, ok := e.Being(blow.Attacker)
	if !ok {
		return Aborted
	}
	def, ok := e.Being(blow.Defender)
	if !ok {
		e.Notify(blow.Attacker, gone("Your target is gone."))
		return Aborted
	}
	verb := blow.Verb
	if verb == "" {
		verb = "hit"
	}
	a, d := atk.Attributes(), def.Attributes()

	if !blow.Sure {
		hit, roll := HitRoll(a.Accuracy, d.Evasion, e.RNG)
		if !hit {
			e.Notify(blow.Attacker, query.Message{
				Kind: query.Miss,
				Text: fmt.Sprintf("You miss the %s. Roll: 1d20+%d → [%d] vs %d", def.Name, a.Accuracy, roll, 10+d.Evasion),
			})
			e.Notify(blow.Defender, query.Message{
				Kind: query.Info,
				Text: fmt.Sprintf("The %s misses you.", atk.Name),
			})
			return Failure
		}
	}

	damage, roll := DamageCalc(a.Attack, d.Defense, blow.Bonus, e.RNG)
	e.Notify(blow.Attacker, query.Message{
		Kind:   query.Hit,
		Amount: damage,
		Text: fmt.Sprintf("You %s the %s. Roll: 1d6+%d → [%d]+%d = %d vs defense %d → %d damage",
			verb, def.Name, a.Attack+blow.Bonus, roll, a.Attack+blow.Bonus, roll+a.Attack+blow.Bonus, d.Defense, damage),
	})
	e.Notify(blow.Defender, query.Message{
		Kind:   query.Info,
		Amount: damage,
		Text:   fmt.Sprintf("The %s %ss you for %d.", atk.Name, verb, damage),
	})
	e.Damage(blow.Defender, damage, blow.Attacker)
	return Success
}
