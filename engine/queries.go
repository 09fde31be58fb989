package engine

import (
	"github.com/mkwok/lifecore/types"
)

// ResourceInfo is the answer to a resource query.
type ResourceInfo struct {
	ResourceID   int     `json:"resource_id"`
	ResourceName string  `json:"resource_name"`
	Value        float64 `json:"value"`
	MaxValue     float64 `json:"max_value"`
	MinValue     float64 `json:"min_value"`
}

// QueryResource reports a resource's current value and declared bounds.
func (e *Engine) QueryResource(resourceID int, lang types.Language) ResourceInfo {
	info := ResourceInfo{
		ResourceID:   resourceID,
		ResourceName: "Unknown",
		Value:        e.Store.Get(resourceID),
	}
	if r, ok := e.Defs.Resources[resourceID]; ok {
		info.ResourceName = r.DisplayName(lang)
		info.MaxValue = r.Max
		info.MinValue = r.Min
	}
	return info
}

// LocationInfo is the answer to a location query.
type LocationInfo struct {
	LocationID       int    `json:"location_id"`
	LocationName     string `json:"location_name"`
	AvailableEntities []int `json:"available_entities"`
}

// QueryLocation describes a location; id 0 means the player's current one.
func (e *Engine) QueryLocation(locationID int, lang types.Language) LocationInfo {
	if locationID == 0 {
		locationID = int(e.Store.Get(types.ResLocation))
	}
	info := LocationInfo{
		LocationID:        locationID,
		LocationName:      "Unknown",
		AvailableEntities: []int{},
	}
	if loc, ok := e.Defs.Locations[locationID]; ok {
		info.LocationName = loc.DisplayName(lang)
		info.AvailableEntities = loc.Entities
	}
	return info
}

// AvailableEvent is one entry in an available-events listing.
type AvailableEvent struct {
	EventID   int    `json:"event_id"`
	EventName string `json:"event_name"`
	TimeCost  int    `json:"time_cost"`
}

// AvailableEvents lists the events whose location requirement and condition
// expression both hold right now, in ascending id order.
func (e *Engine) AvailableEvents(lang types.Language) []AvailableEvent {
	location := e.Store.Get(types.ResLocation)
	ev := e.evaluator()

	available := []AvailableEvent{}
	for _, id := range e.Defs.EventIDs() {
		event := e.Defs.Events[id]
		if event.Location != 0 && float64(event.Location) != location {
			continue
		}
		if !ev.Evaluate(event.Condition) {
			continue
		}
		available = append(available, AvailableEvent{
			EventID:   event.ID,
			EventName: event.DisplayName(lang),
			TimeCost:  event.TimeCost,
		})
	}
	return available
}

// Inventory lists the occupied fixed inventory slots.
func (e *Engine) Inventory(lang types.Language) []types.InventorySlot {
	slots := []types.InventorySlot{}
	for n := 1; n <= e.Store.SlotCount(); n++ {
		itemID, quantity := e.Store.Slot(n)
		if itemID == 0 || quantity <= 0 {
			continue
		}
		name := "Unknown"
		if item, ok := e.Defs.Items[itemID]; ok {
			name = item.DisplayName(lang)
		}
		slots = append(slots, types.InventorySlot{
			Slot:     n,
			ItemID:   itemID,
			ItemName: name,
			Quantity: quantity,
		})
	}
	return slots
}

// TimeInfo returns the current calendar snapshot.
func (e *Engine) TimeInfo() types.TimeInfo {
	return e.Clock.Info()
}

// StateSummary is the answer to a game-state query.
type StateSummary struct {
	Resources map[int]float64 `json:"resources"`
	GameOver  bool            `json:"game_over"`
	Ending    *types.Ending   `json:"current_ending,omitempty"`
	TimeInfo  types.TimeInfo  `json:"time_info"`
}

// StateSummary reports the full resource map, the game-over flag, and the
// calendar in one shot.
func (e *Engine) StateSummary() StateSummary {
	return StateSummary{
		Resources: e.Store.Snapshot(),
		GameOver:  e.Store.GameOver(),
		Ending:    e.Store.Ending(),
		TimeInfo:  e.Clock.Info(),
	}
}
