package engine

import (
	"fmt"
	"slices"

	"github.com/nathoo/runecore/engine/events"
	"github.com/nathoo/runecore/engine/kont"
	"github.com/nathoo/runecore/engine/query"
	"github.com/nathoo/runecore/engine/state"
	"github.com/nathoo/runecore/types"
)

// ItemBody is the closed set of item kinds: *Weapon, *Bow, *Quiver,
// *Gatestone and *Trinket.
type ItemBody interface {
	Kind() string
	itemBody()
}

// Weapon is a melee weapon. Windup is the delay before a full strike lands.
type Weapon struct {
	Damage int
	Windup int
}

// Bow fires arrows drawn from a quiver.
type Bow struct {
	Damage int
	Range  int
}

// Quiver holds arrows.
type Quiver struct {
	Arrows int
}

// Gatestone stores charge that spells can draw on instead of mana. An
// autocharging stone fills itself from its holder's spare mana.
type Gatestone struct {
	Charge     int
	Capacity   int
	Autocharge bool
}

// Trinket has no behaviour of its own.
type Trinket struct{}

func (*Weapon) Kind() string    { return "weapon" }
func (*Bow) Kind() string       { return "bow" }
func (*Quiver) Kind() string    { return "quiver" }
func (*Gatestone) Kind() string { return "gatestone" }
func (*Trinket) Kind() string   { return "trinket" }

func (*Weapon) itemBody()    {}
func (*Bow) itemBody()       {}
func (*Quiver) itemBody()    {}
func (*Gatestone) itemBody() {}
func (*Trinket) itemBody()   {}

// NewItemBody builds the body an item template describes.
func NewItemBody(def types.ItemDef) (ItemBody, error) {
	switch def.Kind {
	case "weapon":
		return &Weapon{Damage: def.Damage, Windup: def.Windup}, nil
	case "bow":
		return &Bow{Damage: def.Damage, Range: def.Range}, nil
	case "quiver":
		return &Quiver{Arrows: def.Arrows}, nil
	case "gatestone":
		return &Gatestone{Charge: min(def.Charge, def.Capacity), Capacity: def.Capacity, Autocharge: def.Autocharge}, nil
	case "trinket", "":
		return &Trinket{}, nil
	default:
		return nil, fmt.Errorf("item %q: unknown kind %q", def.ID, def.Kind)
	}
}

// Item is an object that is either held by a being or lying on the grid.
type Item struct {
	ID       types.ItemID
	Template string
	Name     string
	Slot     string
	Body     ItemBody
	Holder   types.BeingID // zero while on the ground
	Pos      types.Coord   // ground position while Holder is zero
}

// OnGround reports whether it lies on the grid.
func (it *Item) OnGround() bool { return it.Holder == (types.BeingID{}) }

// BodyAs returns the body of it as T.
func BodyAs[T ItemBody](it *Item) (T, bool) {
	t, ok := it.Body.(T)
	return t, ok
}

// heldBody resolves item, checks holder carries it, and returns its body
// as T.
func heldBody[T ItemBody](e *Engine, holder types.BeingID, item types.ItemID) (T, bool) {
	var zero T
	it, ok := e.Held(holder, item)
	if !ok {
		return zero, false
	}
	return BodyAs[T](it)
}

// CreateItem makes a new item from a template. The item is nowhere until
// it is given to a being or placed on the grid.
func (e *Engine) CreateItem(template string) (types.ItemID, error) {
	def, ok := e.Defs.Item(template)
	if !ok {
		return types.ItemID{}, fmt.Errorf("unknown item template %q", template)
	}
	body, err := NewItemBody(def)
	if err != nil {
		return types.ItemID{}, err
	}
	name := def.Name
	if name == "" {
		name = def.ID
	}
	return e.addItem(&Item{Template: def.ID, Name: name, Slot: def.Slot, Body: body}), nil
}

func (e *Engine) addItem(it *Item) types.ItemID {
	h := e.items.Insert(it)
	it.ID = types.ItemID(h)
	return it.ID
}

// Item resolves id.
func (e *Engine) Item(id types.ItemID) (*Item, bool) {
	return e.items.Get(state.Handle(id))
}

// Held resolves id and checks that holder carries it.
func (e *Engine) Held(holder types.BeingID, id types.ItemID) (*Item, bool) {
	it, ok := e.Item(id)
	if !ok || it.Holder != holder {
		return nil, false
	}
	return it, true
}

// carriedBy returns an item filter accepting what holder carries. It holds
// the ID, not the being, so it stays safe while a prompt is open.
func (e *Engine) carriedBy(holder types.BeingID) func(types.ItemID) bool {
	return func(id types.ItemID) bool {
		_, ok := e.Held(holder, id)
		return ok
	}
}

// GiveItem moves id into holder's inventory, lifting it off the grid if
// it was lying there.
func (e *Engine) GiveItem(holder types.BeingID, id types.ItemID) bool {
	b, ok := e.Being(holder)
	if !ok {
		return false
	}
	it, ok := e.Item(id)
	if !ok {
		return false
	}
	if it.Holder == holder {
		return true
	}
	e.detach(it)
	it.Holder = holder
	b.Inventory = append(b.Inventory, id)
	e.Publish(types.Event{Type: events.ItemPicked, Being: holder, Data: map[string]any{"item": it.Name}})
	return true
}

// PlaceItem puts id on the grid at c, taking it from its holder first.
func (e *Engine) PlaceItem(id types.ItemID, c types.Coord) bool {
	it, ok := e.Item(id)
	if !ok || !e.Grid.InBounds(c) {
		return false
	}
	holder := it.Holder
	e.detach(it)
	it.Pos = c
	e.Grid.dropItem(id, c)
	e.Publish(types.Event{Type: events.ItemDropped, Being: holder, Data: map[string]any{
		"item": it.Name,
		"x":    c.X,
		"y":    c.Y,
	}})
	return true
}

// detach removes it from wherever it is.
func (e *Engine) detach(it *Item) {
	if it.OnGround() {
		e.Grid.liftItem(it.ID, it.Pos)
		return
	}
	if b, ok := e.Being(it.Holder); ok {
		if p := b.EquippedOn(it.ID); p != nil {
			p.Item = types.ItemID{}
		}
		if i := slices.Index(b.Inventory, it.ID); i >= 0 {
			b.Inventory = slices.Delete(b.Inventory, i, i+1)
		}
	}
	it.Holder = types.BeingID{}
}

// FirstCarried returns the first item in holder's inventory whose body is a
// T accepted by ok. A nil ok accepts any T.
func FirstCarried[T ItemBody](e *Engine, holder types.BeingID, ok func(T) bool) (types.ItemID, T, bool) {
	var zero T
	b, found := e.Being(holder)
	if !found {
		return types.ItemID{}, zero, false
	}
	for _, id := range b.Inventory {
		it, found := e.Item(id)
		if !found {
			continue
		}
		if body, is := BodyAs[T](it); is && (ok == nil || ok(body)) {
			return id, body, true
		}
	}
	return types.ItemID{}, zero, false
}

// Wear puts item, which holder carries, on the first free body part of its
// slot.
func (e *Engine) Wear(holder types.BeingID, item types.ItemID) bool {
	b, ok := e.Being(holder)
	if !ok {
		return false
	}
	it, ok := e.Held(holder, item)
	if !ok || it.Slot == "" || b.EquippedOn(item) != nil {
		return false
	}
	p := b.FreePart(it.Slot)
	if p == nil {
		return false
	}
	p.Item = item
	e.Publish(types.Event{Type: events.ItemEquipped, Being: holder, Data: map[string]any{
		"item": it.Name,
		"part": p.Name,
	}})
	return true
}

// TakeOff frees the body part holding item. The item stays in the
// inventory.
func (e *Engine) TakeOff(holder types.BeingID, item types.ItemID) bool {
	b, ok := e.Being(holder)
	if !ok || item == (types.ItemID{}) {
		return false
	}
	p := b.EquippedOn(item)
	if p == nil {
		return false
	}
	p.Item = types.ItemID{}
	name := ""
	if it, ok := e.Item(item); ok {
		name = it.Name
	}
	e.Publish(types.Event{Type: events.ItemUnequipped, Being: holder, Data: map[string]any{
		"item": name,
		"part": p.Name,
	}})
	return true
}

// Drop puts an item the actor carries on the ground at its feet. With no
// Item set it asks which; for a quiver of several arrows it asks how many.
type Drop struct {
	Item types.ItemID
}

func (Drop) Name() string { return "drop" }

func (a Drop) Perform(e *Engine, actor types.BeingID, k *kont.Cont[Outcome]) kont.Done {
	return Run(e, actor, &dropMachine{item: a.Item}, k)
}

type dropMachine struct {
	item types.ItemID
}

func (m *dropMachine) Name() string { return "drop" }

func (m *dropMachine) Start(e *Engine, self *Being) Step {
	if m.item == (types.ItemID{}) {
		return Ask(query.Item{Asker: self.ID, Prompt: "Drop what?", Filter: e.carriedBy(self.ID)})
	}
	return m.chosen(e, self)
}

func (m *dropMachine) Resume(e *Engine, self *Being, r query.Reply) Step {
	if !r.OK {
		return Finish(Aborted)
	}
	switch r.Kind {
	case query.KindItem:
		m.item = r.Item
		return m.chosen(e, self)
	case query.KindCount:
		if r.N < 1 {
			return Finish(Aborted)
		}
		return m.drop(e, self, r.N)
	}
	return Finish(Aborted)
}

func (m *dropMachine) chosen(e *Engine, self *Being) Step {
	it, ok := e.Held(self.ID, m.item)
	if !ok {
		return Report(gone("You are not carrying that."), Aborted)
	}
	if q, ok := BodyAs[*Quiver](it); ok && q.Arrows > 1 {
		return Ask(query.Count{
			Asker:  self.ID,
			Prompt: fmt.Sprintf("Drop how many of %d arrows?", q.Arrows),
			Max:    q.Arrows,
		})
	}
	return m.drop(e, self, 0)
}

func (m *dropMachine) drop(e *Engine, self *Being, n int) Step {
	it, ok := e.Held(self.ID, m.item)
	if !ok {
		return Report(gone("You are not carrying that."), Aborted)
	}
	if q, ok := BodyAs[*Quiver](it); ok && n > 0 && n < q.Arrows {
		q.Arrows -= n
		split := e.addItem(&Item{Template: it.Template, Name: it.Name, Slot: it.Slot, Body: &Quiver{Arrows: n}})
		e.PlaceItem(split, self.Pos)
		return Finish(Success)
	}
	e.PlaceItem(m.item, self.Pos)
	return Finish(Success)
}

// Toss throws an item the actor carries at a tile within toss range. The
// item flies along the line toward the tile and lands in front of the first
// wall or being in the way.
type Toss struct {
	Item types.ItemID
}

func (Toss) Name() string { return "toss" }

func (a Toss) Perform(e *Engine, actor types.BeingID, k *kont.Cont[Outcome]) kont.Done {
	return Run(e, actor, &tossMachine{item: a.Item}, k)
}

type tossMachine struct {
	item types.ItemID
}

func (m *tossMachine) Name() string { return "toss" }

func (m *tossMachine) Start(e *Engine, self *Being) Step {
	if m.item == (types.ItemID{}) {
		return Ask(query.Item{Asker: self.ID, Prompt: "Toss what?", Filter: e.carriedBy(self.ID)})
	}
	return m.aim(e, self)
}

func (m *tossMachine) Resume(e *Engine, self *Being, r query.Reply) Step {
	if !r.OK {
		return Finish(Aborted)
	}
	switch r.Kind {
	case query.KindItem:
		m.item = r.Item
		return m.aim(e, self)
	case query.KindTile:
		return m.throw(e, self, r.Tile)
	}
	return Finish(Aborted)
}

func (m *tossMachine) aim(e *Engine, self *Being) Step {
	if _, ok := e.Held(self.ID, m.item); !ok {
		return Report(gone("You are not carrying that."), Aborted)
	}
	return Ask(query.Tile{
		Asker:  self.ID,
		Prompt: "Toss where?",
		Origin: self.Pos,
		Range:  e.Tuning.TossRange,
		Filter: e.Grid.InBounds,
	})
}

func (m *tossMachine) throw(e *Engine, self *Being, target types.Coord) Step {
	if _, ok := e.Held(self.ID, m.item); !ok {
		return Report(gone("You are not carrying that."), Aborted)
	}
	if Distance(self.Pos, target) > e.Tuning.TossRange || !e.Grid.InBounds(target) {
		return Report(query.Message{Kind: query.Info, Text: "That is too far."}, Aborted)
	}
	landing := self.Pos
	for _, c := range Line(self.Pos, target) {
		if !e.Grid.Passable(c) {
			break
		}
		landing = c
	}
	e.PlaceItem(m.item, landing)
	return Finish(Success)
}

func gone(text string) query.Message {
	return query.Message{Kind: query.TargetMissing, Text: text}
}
