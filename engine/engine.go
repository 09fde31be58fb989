// Package engine provides the ExecuteEvent pipeline that wires together
// condition evaluation, resource mutation, time advancement, secondary
// triggers, and ending detection into a single call.
package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/mkwok/lifecore/engine/clock"
	"github.com/mkwok/lifecore/engine/expr"
	"github.com/mkwok/lifecore/engine/state"
	"github.com/mkwok/lifecore/types"
)

// Engine holds the content definitions and the mutable game state. It is not
// safe for concurrent use; hosts issuing commands from multiple goroutines
// must serialize them.
type Engine struct {
	Defs  *state.Defs
	Store *state.Store
	Clock *clock.Clock
}

// New creates an engine with a fresh game state built from content defaults.
func New(defs *state.Defs) *Engine {
	store := state.NewStore(defs)
	return &Engine{
		Defs:  defs,
		Store: store,
		Clock: clock.New(store),
	}
}

// Reset restores the construction-time state: initial resource values,
// cleared triggers, game over unset.
func (e *Engine) Reset() {
	e.Store.Reset()
}

// evaluator snapshots the current resources and calendar for expression
// evaluation. Snapshots are frozen: mutations made after this call are not
// visible to the returned evaluator.
func (e *Engine) evaluator() *expr.Evaluator {
	return expr.New(e.Store.Snapshot(), e.Clock.Info())
}

// ExecuteEvent runs one player-chosen event through the full pipeline and
// returns the structured result. Rejections are results, never errors, and
// happen strictly before any state mutation.
func (e *Engine) ExecuteEvent(eventID int, lang types.Language) types.EventResult {
	if lang == "" {
		lang = types.LangZH
	}

	// 1. Game over blocks everything, regardless of other preconditions.
	if e.Store.GameOver() {
		return rejection(eventID, "", "Game is over")
	}

	// 2. Resolve the event template.
	event, ok := e.Defs.Events[eventID]
	if !ok {
		return rejection(eventID, "", "Event not found")
	}

	// 3. Precondition.
	if !e.evaluator().Evaluate(event.Condition) {
		return rejection(eventID, event.DisplayName(lang), "Conditions not met")
	}

	// 4. Location requirement against resource 61.
	if event.Location != 0 && float64(event.Location) != e.Store.Get(types.ResLocation) {
		return rejection(eventID, event.DisplayName(lang), "Not in correct location")
	}

	// 5–8. Apply the event's declared effects.
	changes := map[int]float64{}
	e.applyEventEffects(event, changes)

	// 9. Report the time cost as a visible change on the time resource.
	// Informational only; the cost is consumed unit-by-unit below.
	if event.TimeCost > 0 {
		changes[types.ResTime] = float64(event.TimeCost)
	}

	// 10. Advance time one unit at a time so secondary triggers fire
	// per-unit, not once for the whole batch.
	var tempResults []types.TempEventResult
	var taskResults []types.TaskResult
	for i := 0; i < event.TimeCost; i++ {
		e.Clock.Advance(1)
		tempResults = append(tempResults, e.checkTemporaryEvents(lang)...)
		taskResults = append(taskResults, e.checkScheduledTasks(lang)...)
		e.Clock.NightBonus()
	}

	// 11. Endings, first match in content order wins.
	ending := e.checkEndings()
	if ending != nil {
		e.Store.SetEnding(*ending)
	}

	// 12. Resolve display text.
	textContent := e.text(event.TextID, lang, fmt.Sprintf("Event %s completed", event.DisplayName(lang)))

	// 13. Done.
	return types.EventResult{
		Success:         true,
		EventID:         eventID,
		EventName:       event.DisplayName(lang),
		TextID:          event.TextID,
		TextContent:     textContent,
		TimeConsumed:    event.TimeCost,
		ResourceChanges: changes,
		TempEvents:      tempResults,
		Tasks:           taskResults,
		Ending:          ending,
	}
}

func rejection(eventID int, eventName, reason string) types.EventResult {
	return types.EventResult{
		Success:         false,
		EventID:         eventID,
		EventName:       eventName,
		TextContent:     reason,
		ResourceChanges: map[int]float64{},
		TempEvents:      []types.TempEventResult{},
		Tasks:           []types.TaskResult{},
	}
}

// applyEventEffects applies simple deltas, the computed progress delta, the
// item grant, and the permanent effect. Actual post-clamp deltas are
// recorded in changes; zero deltas are omitted, set/reset ops record the new
// absolute value instead.
func (e *Engine) applyEventEffects(event types.Event, changes map[int]float64) {
	ev := e.evaluator()

	// The focus-consumption-reduction modifier (resource 78) scales only a
	// negative focus delta. Deliberately not generalized to other deltas.
	simple := make(map[int]float64, len(event.Changes))
	for id, delta := range event.Changes {
		simple[id] = delta
	}
	if focus, ok := simple[types.ResFocus]; ok && focus < 0 {
		reduction := e.Store.Get(types.ResFocusDiscount)
		simple[types.ResFocus] = floorScale(focus, reduction)
	}
	e.applySimple(simple, changes)

	e.applyDelta(event.Progress, types.ResProgress, changes, ev)

	if event.ItemGained != 0 && event.ItemQuantity > 0 {
		e.Store.AddItem(event.ItemGained, event.ItemQuantity)
	}

	e.applyDelta(event.Permanent, 0, changes, ev)
}

// floorScale applies the percentage reduction with floor semantics.
func floorScale(delta, reductionPercent float64) float64 {
	return math.Floor(delta * (100 - reductionPercent) / 100)
}

// applySimple applies plain numeric deltas through the store and records the
// actual changes, in ascending resource-id order for determinism.
func (e *Engine) applySimple(deltas map[int]float64, changes map[int]float64) {
	ids := make([]int, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if actual := e.Store.Change(id, deltas[id]); actual != 0 {
			changes[id] = actual
		}
	}
}

// applyDelta applies a tagged delta. Literal and expression deltas go
// through Change against the default resource; set/reset bypass delta
// semantics entirely and record the absolute value. Permanent effects pass
// no default resource, so literal and expression deltas there have no
// target and are ignored rather than applied to resource 0.
func (e *Engine) applyDelta(d types.Delta, defaultResource int, changes map[int]float64, ev *expr.Evaluator) {
	switch d.Kind {
	case types.DeltaNone:

	case types.DeltaLiteral:
		if defaultResource == 0 || d.Value == 0 {
			return
		}
		if actual := e.Store.Change(defaultResource, d.Value); actual != 0 {
			changes[defaultResource] = actual
		}

	case types.DeltaExpr:
		if defaultResource == 0 {
			return
		}
		v := ev.EvaluateExpression(d.Expr)
		if v == 0 {
			return
		}
		if actual := e.Store.Change(defaultResource, v); actual != 0 {
			changes[defaultResource] = actual
		}

	case types.DeltaSet:
		e.Store.Set(d.Resource, d.Value)
		changes[d.Resource] = d.Value

	case types.DeltaReset:
		e.Store.Set(d.Resource, 0)
		changes[d.Resource] = 0
	}
}

// checkTemporaryEvents fires every temporary event whose condition holds and
// whose trigger count is below its maximum. Conditions are evaluated against
// the snapshot taken at the start of the check: one firing does not affect
// another within the same time unit.
func (e *Engine) checkTemporaryEvents(lang types.Language) []types.TempEventResult {
	var triggered []types.TempEventResult
	ev := e.evaluator()

	for _, tempEvent := range e.Defs.TempEvents {
		if e.Store.TriggerCount(tempEvent.ID) >= tempEvent.MaxTriggers {
			continue
		}
		if !ev.Evaluate(tempEvent.Condition) {
			continue
		}

		e.Store.IncrementTrigger(tempEvent.ID)

		changes := map[int]float64{}
		e.applySimple(tempEvent.Changes, changes)
		e.applyDelta(tempEvent.Progress, types.ResProgress, changes, ev)

		var ending *types.Ending
		if tempEvent.Ending != 0 {
			if end, ok := e.Defs.Ending(tempEvent.Ending); ok {
				e.Store.SetEnding(end)
				ending = &end
			}
		}

		triggered = append(triggered, types.TempEventResult{
			ID:              tempEvent.ID,
			Name:            tempEvent.DisplayName(lang),
			TextID:          tempEvent.TextID,
			TextContent:     e.text(tempEvent.TextID, lang, tempEvent.DisplayName(lang)),
			ResourceChanges: changes,
			Ending:          ending,
		})
	}
	return triggered
}

// checkScheduledTasks fires every active task whose condition and trigger
// time both hold and whose repeat interval has elapsed since its last firing.
func (e *Engine) checkScheduledTasks(lang types.Language) []types.TaskResult {
	var triggered []types.TaskResult
	ev := e.evaluator()

	for _, task := range e.Defs.Tasks {
		if !task.Active {
			continue
		}
		if !ev.Evaluate(task.Condition) {
			continue
		}
		if !ev.Evaluate(task.TriggerTime) {
			continue
		}
		if !e.Clock.HasTimePassedSince(e.Store.LastTaskTrigger(task.ID), task.RepeatDays) {
			continue
		}

		e.Store.SetLastTaskTrigger(task.ID, float64(e.Clock.Current()))

		changes := map[int]float64{}
		e.applyDelta(task.Money, types.ResMoney, changes, ev)
		e.applyDelta(task.Progress, types.ResProgress, changes, ev)
		e.applySimple(task.Changes, changes)

		triggered = append(triggered, types.TaskResult{
			ID:              task.ID,
			Name:            task.DisplayName(lang),
			TextID:          task.TextID,
			TextContent:     e.text(task.TextID, lang, task.DisplayName(lang)),
			ResourceChanges: changes,
		})
	}
	return triggered
}

// checkEndings returns the first ending in content order whose trigger
// condition holds, or nil.
func (e *Engine) checkEndings() *types.Ending {
	ev := e.evaluator()
	for _, ending := range e.Defs.Endings {
		if ev.Evaluate(ending.Condition) {
			end := ending
			return &end
		}
	}
	return nil
}

// text resolves a display text by id, falling back when no record exists.
func (e *Engine) text(textID int, lang types.Language, fallback string) string {
	if t, ok := e.Defs.Texts[textID]; ok {
		return t.Localized(lang)
	}
	return fallback
}
