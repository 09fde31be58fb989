package state

import (
	"testing"

	"github.com/mkwok/lifecore/types"
)

func storeDefs() *Defs {
	d := &Defs{
		Resources: map[int]types.Resource{
			1:  {ID: 1, Name: "time", Initial: 14, Min: 0, Max: 1e9},
			2:  {ID: 2, Name: "money", Initial: 1000, Min: 0, Max: 100000},
			14: {ID: 14, Name: "fatigue", Initial: 20, Min: 0, Max: 100},
		},
		TempEvents: []types.TemporaryEvent{{ID: 101, MaxTriggers: 1}},
		Tasks:      []types.ScheduledTask{{ID: 201}},
		Endings:    []types.Ending{{ID: 301}},
	}
	d.Index()
	return d
}

func TestStore_InitialValues(t *testing.T) {
	s := NewStore(storeDefs())

	if got := s.Get(2); got != 1000 {
		t.Errorf("money = %v, want 1000", got)
	}
	if got := s.Get(14); got != 20 {
		t.Errorf("fatigue = %v, want 20", got)
	}
	if got := s.Get(999); got != 0 {
		t.Errorf("unknown resource = %v, want 0", got)
	}
}

func TestStore_ChangeClampsAndReportsActual(t *testing.T) {
	s := NewStore(storeDefs())

	// Plain change inside the bounds.
	if got := s.Change(2, 500); got != 500 {
		t.Errorf("Change(+500) reported %v, want 500", got)
	}

	// Clamped at max: only the realized part is reported.
	if got := s.Change(14, 200); got != 80 {
		t.Errorf("Change(+200) at fatigue 20/100 reported %v, want 80", got)
	}
	if got := s.Get(14); got != 100 {
		t.Errorf("fatigue = %v, want 100", got)
	}

	// Clamped at min.
	if got := s.Change(2, -999999); got != -1500 {
		t.Errorf("Change(-999999) at 1500 money reported %v, want -1500", got)
	}

	// No-op at a bound reports zero.
	if got := s.Change(2, -1); got != 0 {
		t.Errorf("Change(-1) at min reported %v, want 0", got)
	}
}

func TestStore_UnknownResourcePassesThroughUnclamped(t *testing.T) {
	s := NewStore(storeDefs())

	if got := s.Change(77, -5); got != -5 {
		t.Errorf("Change on undeclared resource reported %v, want -5", got)
	}
	if got := s.Get(77); got != -5 {
		t.Errorf("undeclared resource = %v, want -5", got)
	}
}

func TestStore_SetClamps(t *testing.T) {
	s := NewStore(storeDefs())

	s.Set(14, 250)
	if got := s.Get(14); got != 100 {
		t.Errorf("Set(250) left %v, want 100", got)
	}
	s.Set(14, -10)
	if got := s.Get(14); got != 0 {
		t.Errorf("Set(-10) left %v, want 0", got)
	}
}

func TestStore_Reset(t *testing.T) {
	s := NewStore(storeDefs())
	s.Change(2, 500)
	s.IncrementTrigger(101)
	s.SetLastTaskTrigger(201, 62)
	s.SetEnding(types.Ending{ID: 301})

	s.Reset()

	if got := s.Get(2); got != 1000 {
		t.Errorf("money after reset = %v, want 1000", got)
	}
	if s.TriggerCount(101) != 0 {
		t.Error("trigger count should reset to 0")
	}
	if s.LastTaskTrigger(201) != 0 {
		t.Error("task trigger time should reset to 0")
	}
	if s.GameOver() || s.Ending() != nil {
		t.Error("game-over flag and ending should clear on reset")
	}
}

func TestStore_AddItemStacksThenFillsFirstEmpty(t *testing.T) {
	s := NewStore(storeDefs())

	if !s.AddItem(7, 2) {
		t.Fatal("AddItem into empty inventory failed")
	}
	if id, qty := s.Slot(1); id != 7 || qty != 2 {
		t.Errorf("slot 1 = (%d, %v), want (7, 2)", id, qty)
	}

	// Same item stacks in place.
	s.AddItem(7, 3)
	if id, qty := s.Slot(1); id != 7 || qty != 5 {
		t.Errorf("slot 1 after stacking = (%d, %v), want (7, 5)", id, qty)
	}

	// A different item takes the next slot.
	s.AddItem(8, 1)
	if id, qty := s.Slot(2); id != 8 || qty != 1 {
		t.Errorf("slot 2 = (%d, %v), want (8, 1)", id, qty)
	}

	// Fill the rest, then the next grant is refused.
	s.AddItem(9, 1)
	s.AddItem(10, 1)
	s.AddItem(11, 1)
	if s.AddItem(12, 1) {
		t.Error("AddItem should fail with all slots occupied")
	}

	if s.AddItem(0, 1) || s.AddItem(7, 0) {
		t.Error("zero item id and non-positive quantity should be refused")
	}
}

func TestStore_StateIsDeepCopy(t *testing.T) {
	s := NewStore(storeDefs())
	snap := s.State()

	snap.Resources[2] = -1
	snap.TempTriggers[101] = 99
	if s.Get(2) != 1000 || s.TriggerCount(101) != 0 {
		t.Error("mutating the State() copy leaked into the store")
	}
}

func TestStore_Replace(t *testing.T) {
	s := NewStore(storeDefs())
	s.Replace(types.GameState{
		Resources:    map[int]float64{2: 7777},
		TempTriggers: map[int]int{101: 1},
		TaskTriggers: map[int]float64{201: 62},
		GameOver:     false,
	})

	if got := s.Get(2); got != 7777 {
		t.Errorf("money after replace = %v, want 7777", got)
	}
	if s.TriggerCount(101) != 1 {
		t.Error("trigger count not replaced")
	}

	// Nil maps are tolerated.
	s.Replace(types.GameState{})
	if got := s.Get(2); got != 0 {
		t.Errorf("money after empty replace = %v, want 0", got)
	}
	s.Set(5, 1) // must not panic on the installed empty maps
}

func TestDefs_Lookups(t *testing.T) {
	d := storeDefs()

	if _, ok := d.TemporaryEvent(101); !ok {
		t.Error("temporary event 101 not found")
	}
	if _, ok := d.Task(201); !ok {
		t.Error("task 201 not found")
	}
	if _, ok := d.Ending(301); !ok {
		t.Error("ending 301 not found")
	}
	if _, ok := d.Ending(999); ok {
		t.Error("ending 999 should not resolve")
	}

	ids := d.EventIDs()
	if len(ids) != 0 {
		t.Errorf("EventIDs on empty events = %v", ids)
	}
}
