// Package state owns the immutable content definitions and the single
// mutable GameState. All resource mutations go through the Store so the
// min/max clamping invariant can never be bypassed.
package state

import (
	"math"
	"sort"

	"github.com/mkwok/lifecore/types"
)

// Defs holds the immutable content records loaded from Lua. Endings,
// temporary events, and scheduled tasks additionally keep their declaration
// order: ending selection is first-match-wins over that order, and trigger
// checks iterate it so results are deterministic.
type Defs struct {
	Resources map[int]types.Resource
	Events    map[int]types.Event
	Items     map[int]types.Item
	Entities  map[int]types.Entity
	Locations map[int]types.Location
	Texts     map[int]types.Text

	TempEvents []types.TemporaryEvent
	Tasks      []types.ScheduledTask
	Endings    []types.Ending

	tempByID   map[int]int
	taskByID   map[int]int
	endingByID map[int]int
}

// Index builds the id lookup tables for the ordered slices. Loaders call it
// once after filling the slices.
func (d *Defs) Index() {
	d.tempByID = make(map[int]int, len(d.TempEvents))
	for i, te := range d.TempEvents {
		d.tempByID[te.ID] = i
	}
	d.taskByID = make(map[int]int, len(d.Tasks))
	for i, task := range d.Tasks {
		d.taskByID[task.ID] = i
	}
	d.endingByID = make(map[int]int, len(d.Endings))
	for i, end := range d.Endings {
		d.endingByID[end.ID] = i
	}
}

// TemporaryEvent looks up a temporary event by id.
func (d *Defs) TemporaryEvent(id int) (types.TemporaryEvent, bool) {
	i, ok := d.tempByID[id]
	if !ok {
		return types.TemporaryEvent{}, false
	}
	return d.TempEvents[i], true
}

// Task looks up a scheduled task by id.
func (d *Defs) Task(id int) (types.ScheduledTask, bool) {
	i, ok := d.taskByID[id]
	if !ok {
		return types.ScheduledTask{}, false
	}
	return d.Tasks[i], true
}

// Ending looks up an ending by id.
func (d *Defs) Ending(id int) (types.Ending, bool) {
	i, ok := d.endingByID[id]
	if !ok {
		return types.Ending{}, false
	}
	return d.Endings[i], true
}

// EventIDs returns all event ids in ascending order.
func (d *Defs) EventIDs() []int {
	ids := make([]int, 0, len(d.Events))
	for id := range d.Events {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Store is the in-memory resource map plus trigger bookkeeping. It is the
// sole owner of the GameState; every mutation is clamped against the
// content-declared bounds.
type Store struct {
	defs *Defs
	gs   types.GameState
}

// NewStore creates a store with every resource at its initial value and all
// trigger counters at zero.
func NewStore(defs *Defs) *Store {
	s := &Store{defs: defs}
	s.Reset()
	return s
}

// Reset restores the construction-time defaults: initial resource values,
// cleared trigger maps, cleared game-over flag and ending.
func (s *Store) Reset() {
	gs := types.GameState{
		Resources:    make(map[int]float64, len(s.defs.Resources)),
		TempTriggers: make(map[int]int, len(s.defs.TempEvents)),
		TaskTriggers: make(map[int]float64, len(s.defs.Tasks)),
	}
	for id, r := range s.defs.Resources {
		gs.Resources[id] = r.Initial
	}
	for _, te := range s.defs.TempEvents {
		gs.TempTriggers[te.ID] = 0
	}
	for _, task := range s.defs.Tasks {
		gs.TaskTriggers[task.ID] = 0
	}
	s.gs = gs
}

// Get returns the current value of a resource, 0 if unknown.
func (s *Store) Get(id int) float64 {
	return s.gs.Resources[id]
}

// Set stores a value, clamped to the resource's declared bounds. Values for
// ids unknown to content pass through unclamped.
func (s *Store) Set(id int, value float64) {
	s.gs.Resources[id] = s.clamp(id, value)
}

// Change applies a delta and returns the actual change after clamping. The
// return value is load-bearing: callers report it to the player as the real
// effect, so it must equal value_after - value_before.
func (s *Store) Change(id int, delta float64) float64 {
	old := s.Get(id)
	nv := s.clamp(id, old+delta)
	s.gs.Resources[id] = nv
	return nv - old
}

func (s *Store) clamp(id int, value float64) float64 {
	r, ok := s.defs.Resources[id]
	if !ok {
		return value
	}
	return math.Max(r.Min, math.Min(r.Max, value))
}

// Snapshot returns a copy of the current resource values for expression
// evaluation. The evaluator never sees the live map.
func (s *Store) Snapshot() map[int]float64 {
	out := make(map[int]float64, len(s.gs.Resources))
	for id, v := range s.gs.Resources {
		out[id] = v
	}
	return out
}

// GameOver reports whether an ending has halted the simulation.
func (s *Store) GameOver() bool { return s.gs.GameOver }

// Ending returns the ending that halted the game, or nil.
func (s *Store) Ending() *types.Ending { return s.gs.Ending }

// SetEnding marks the game over with the given ending.
func (s *Store) SetEnding(e types.Ending) {
	s.gs.GameOver = true
	s.gs.Ending = &e
}

// TriggerCount returns how many times a temporary event has fired.
func (s *Store) TriggerCount(tempEventID int) int {
	return s.gs.TempTriggers[tempEventID]
}

// IncrementTrigger records one more firing of a temporary event.
func (s *Store) IncrementTrigger(tempEventID int) {
	s.gs.TempTriggers[tempEventID]++
}

// LastTaskTrigger returns the clock value at a task's last firing, 0 if it
// has never fired.
func (s *Store) LastTaskTrigger(taskID int) float64 {
	return s.gs.TaskTriggers[taskID]
}

// SetLastTaskTrigger records the clock value of a task firing.
func (s *Store) SetLastTaskTrigger(taskID int, at float64) {
	s.gs.TaskTriggers[taskID] = at
}

// AddItem places a grant into the fixed inventory slots (alternating
// item-id/quantity resource pairs). A slot already holding the same item
// stacks; otherwise the first empty slot is used. Returns false when full.
func (s *Store) AddItem(itemID int, quantity float64) bool {
	if itemID == 0 || quantity <= 0 {
		return false
	}
	for slot := types.ResInventoryFirst; slot < types.ResInventoryLast; slot += 2 {
		if int(s.Get(slot)) == itemID {
			s.Set(slot+1, s.Get(slot+1)+quantity)
			return true
		}
	}
	for slot := types.ResInventoryFirst; slot < types.ResInventoryLast; slot += 2 {
		if s.Get(slot) == 0 {
			s.Set(slot, float64(itemID))
			s.Set(slot+1, quantity)
			return true
		}
	}
	return false
}

// Slot returns the item id and quantity in a 1-based inventory slot.
func (s *Store) Slot(n int) (itemID int, quantity float64) {
	base := types.ResInventoryFirst + (n-1)*2
	return int(s.Get(base)), s.Get(base + 1)
}

// SlotCount returns the number of fixed inventory slots.
func (s *Store) SlotCount() int {
	return (types.ResInventoryLast - types.ResInventoryFirst + 1) / 2
}

// State returns a deep copy of the game state for serialization.
func (s *Store) State() types.GameState {
	out := types.GameState{
		Resources:    make(map[int]float64, len(s.gs.Resources)),
		TempTriggers: make(map[int]int, len(s.gs.TempTriggers)),
		TaskTriggers: make(map[int]float64, len(s.gs.TaskTriggers)),
		GameOver:     s.gs.GameOver,
	}
	for id, v := range s.gs.Resources {
		out.Resources[id] = v
	}
	for id, v := range s.gs.TempTriggers {
		out.TempTriggers[id] = v
	}
	for id, v := range s.gs.TaskTriggers {
		out.TaskTriggers[id] = v
	}
	if s.gs.Ending != nil {
		e := *s.gs.Ending
		out.Ending = &e
	}
	return out
}

// Replace installs a loaded game state wholesale. No merge with defaults:
// the caller has already validated the shape.
func (s *Store) Replace(gs types.GameState) {
	if gs.Resources == nil {
		gs.Resources = map[int]float64{}
	}
	if gs.TempTriggers == nil {
		gs.TempTriggers = map[int]int{}
	}
	if gs.TaskTriggers == nil {
		gs.TaskTriggers = map[int]float64{}
	}
	s.gs = gs
}
