package loader

import (
	"fmt"
	"strconv"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/mkwok/lifecore/engine/expr"
	"github.com/mkwok/lifecore/engine/state"
	"github.com/mkwok/lifecore/types"
)

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	if s, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	if b, ok := tbl.RawGetString(key).(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getIntList returns an array field as []int, or an empty slice.
func getIntList(tbl *lua.LTable, key string) []int {
	out := []int{}
	arr, ok := tbl.RawGetString(key).(*lua.LTable)
	if !ok {
		return out
	}
	for i := 1; i <= arr.MaxN(); i++ {
		if n, ok := arr.RawGetInt(i).(lua.LNumber); ok {
			out = append(out, int(n))
		}
	}
	return out
}

// getChanges returns a `changes` table keyed by resource id as a delta map.
func getChanges(tbl *lua.LTable, key string) map[int]float64 {
	out := map[int]float64{}
	ch, ok := tbl.RawGetString(key).(*lua.LTable)
	if !ok {
		return out
	}
	ch.ForEach(func(k, v lua.LValue) {
		kn, kok := k.(lua.LNumber)
		vn, vok := v.(lua.LNumber)
		if kok && vok {
			out[int(kn)] = float64(vn)
		}
	})
	return out
}

// getDelta classifies a delta field once, at load time: a number is a
// literal; set[...]/reset[...] strings are set operations; calc[...] and
// conditional[...] strings are computed expressions; a numeric string is a
// literal; anything else is treated as an expression and will evaluate to 0.
func getDelta(tbl *lua.LTable, key string) types.Delta {
	switch v := tbl.RawGetString(key).(type) {
	case lua.LNumber:
		return types.Delta{Kind: types.DeltaLiteral, Value: float64(v)}
	case lua.LString:
		return parseDelta(string(v))
	default:
		return types.Delta{}
	}
}

// getSetDelta classifies a field that may only hold set[...]/reset[...]
// operations. Permanent effects have no target resource of their own, so a
// literal or computed value here has nothing to apply to; it is dropped.
func getSetDelta(tbl *lua.LTable, key string) types.Delta {
	s, ok := tbl.RawGetString(key).(lua.LString)
	if !ok {
		return types.Delta{}
	}
	d := parseDelta(string(s))
	if d.Kind == types.DeltaSet || d.Kind == types.DeltaReset {
		return d
	}
	return types.Delta{}
}

func parseDelta(s string) types.Delta {
	s = strings.TrimSpace(s)
	if s == "" {
		return types.Delta{}
	}
	if op, ok := expr.ParseSetOperation(s); ok {
		if op.Value == 0 && strings.HasPrefix(s, "reset[") {
			return types.Delta{Kind: types.DeltaReset, Resource: op.Resource}
		}
		return types.Delta{Kind: types.DeltaSet, Resource: op.Resource, Value: op.Value}
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return types.Delta{Kind: types.DeltaLiteral, Value: n}
	}
	return types.Delta{Kind: types.DeltaExpr, Expr: s}
}

// compile converts the collected raw records into typed defs, rejecting
// duplicate ids.
func compile(coll *collector) (*state.Defs, error) {
	defs := &state.Defs{
		Resources: map[int]types.Resource{},
		Events:    map[int]types.Event{},
		Items:     map[int]types.Item{},
		Entities:  map[int]types.Entity{},
		Locations: map[int]types.Location{},
		Texts:     map[int]types.Text{},
	}

	for _, raw := range coll.resources {
		if _, dup := defs.Resources[raw.id]; dup {
			return nil, fmt.Errorf("duplicate resource id %d", raw.id)
		}
		defs.Resources[raw.id] = types.Resource{
			ID:          raw.id,
			Name:        getString(raw.table, "name"),
			NameEN:      getString(raw.table, "name_en"),
			Type:        types.ResourceType(getString(raw.table, "type")),
			Initial:     getNumber(raw.table, "initial"),
			Min:         getNumber(raw.table, "min"),
			Max:         getNumber(raw.table, "max"),
			Description: getString(raw.table, "description"),
		}
	}

	for _, raw := range coll.events {
		if _, dup := defs.Events[raw.id]; dup {
			return nil, fmt.Errorf("duplicate event id %d", raw.id)
		}
		defs.Events[raw.id] = types.Event{
			ID:           raw.id,
			Name:         getString(raw.table, "name"),
			NameEN:       getString(raw.table, "name_en"),
			TimeCost:     getInt(raw.table, "time_cost"),
			Location:     getInt(raw.table, "location"),
			Condition:    getString(raw.table, "condition"),
			Changes:      getChanges(raw.table, "changes"),
			Progress:     getDelta(raw.table, "progress"),
			Permanent:    getSetDelta(raw.table, "permanent"),
			ItemGained:   getInt(raw.table, "item"),
			ItemQuantity: getNumber(raw.table, "item_quantity"),
			TextID:       getInt(raw.table, "text"),
		}
	}

	for _, raw := range coll.items {
		if _, dup := defs.Items[raw.id]; dup {
			return nil, fmt.Errorf("duplicate item id %d", raw.id)
		}
		defs.Items[raw.id] = types.Item{
			ID:          raw.id,
			Name:        getString(raw.table, "name"),
			NameEN:      getString(raw.table, "name_en"),
			Type:        getString(raw.table, "type"),
			Price:       getNumber(raw.table, "price"),
			Description: getString(raw.table, "description"),
		}
	}

	for _, raw := range coll.entities {
		if _, dup := defs.Entities[raw.id]; dup {
			return nil, fmt.Errorf("duplicate entity id %d", raw.id)
		}
		defs.Entities[raw.id] = types.Entity{
			ID:       raw.id,
			Name:     getString(raw.table, "name"),
			NameEN:   getString(raw.table, "name_en"),
			Type:     getString(raw.table, "type"),
			Location: getInt(raw.table, "location"),
			Events:   getIntList(raw.table, "events"),
		}
	}

	seenTemp := map[int]bool{}
	for _, raw := range coll.tempEvents {
		if seenTemp[raw.id] {
			return nil, fmt.Errorf("duplicate temporary event id %d", raw.id)
		}
		seenTemp[raw.id] = true
		defs.TempEvents = append(defs.TempEvents, types.TemporaryEvent{
			ID:          raw.id,
			Name:        getString(raw.table, "name"),
			NameEN:      getString(raw.table, "name_en"),
			Condition:   getString(raw.table, "condition"),
			MaxTriggers: getInt(raw.table, "max_triggers"),
			Changes:     getChanges(raw.table, "changes"),
			Progress:    getDelta(raw.table, "progress"),
			Ending:      getInt(raw.table, "ending"),
			TextID:      getInt(raw.table, "text"),
		})
	}

	seenTask := map[int]bool{}
	for _, raw := range coll.tasks {
		if seenTask[raw.id] {
			return nil, fmt.Errorf("duplicate scheduled task id %d", raw.id)
		}
		seenTask[raw.id] = true
		defs.Tasks = append(defs.Tasks, types.ScheduledTask{
			ID:          raw.id,
			Name:        getString(raw.table, "name"),
			NameEN:      getString(raw.table, "name_en"),
			TriggerTime: getString(raw.table, "trigger_time"),
			Condition:   getString(raw.table, "condition"),
			Active:      getBool(raw.table, "active", true),
			RepeatDays:  getNumber(raw.table, "repeat_days"),
			Money:       getDelta(raw.table, "money"),
			Progress:    getDelta(raw.table, "progress"),
			Changes:     getChanges(raw.table, "changes"),
			TextID:      getInt(raw.table, "text"),
		})
	}

	for _, raw := range coll.locations {
		if _, dup := defs.Locations[raw.id]; dup {
			return nil, fmt.Errorf("duplicate location id %d", raw.id)
		}
		defs.Locations[raw.id] = types.Location{
			ID:          raw.id,
			Name:        getString(raw.table, "name"),
			NameEN:      getString(raw.table, "name_en"),
			Description: getString(raw.table, "description"),
			Entities:    getIntList(raw.table, "entities"),
		}
	}

	seenEnding := map[int]bool{}
	for _, raw := range coll.endings {
		if seenEnding[raw.id] {
			return nil, fmt.Errorf("duplicate ending id %d", raw.id)
		}
		seenEnding[raw.id] = true
		defs.Endings = append(defs.Endings, types.Ending{
			ID:            raw.id,
			Name:          getString(raw.table, "name"),
			NameEN:        getString(raw.table, "name_en"),
			Type:          types.EndingType(getString(raw.table, "type")),
			Condition:     getString(raw.table, "condition"),
			Description:   getString(raw.table, "description"),
			DescriptionEN: getString(raw.table, "description_en"),
			Philosophy:    getString(raw.table, "philosophy"),
			PhilosophyEN:  getString(raw.table, "philosophy_en"),
		})
	}

	for _, raw := range coll.texts {
		if _, dup := defs.Texts[raw.id]; dup {
			return nil, fmt.Errorf("duplicate text id %d", raw.id)
		}
		defs.Texts[raw.id] = types.Text{
			ID: raw.id,
			ZH: getString(raw.table, "zh"),
			EN: getString(raw.table, "en"),
		}
	}

	return defs, nil
}
