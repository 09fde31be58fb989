package loader

import (
	"fmt"
	"strings"

	"github.com/mkwok/lifecore/engine/state"
	"github.com/mkwok/lifecore/types"
)

// ValidationError collects all content validation errors and warnings, so a
// pack author sees every problem at once.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("content validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// validate checks the compiled defs for referential integrity and bound
// consistency.
func validate(defs *state.Defs) error {
	ve := &ValidationError{}

	// The time counter lives in resource 1; content must declare it.
	if _, ok := defs.Resources[types.ResTime]; !ok {
		ve.Errors = append(ve.Errors, "resource 1 (time counter) is required")
	}

	for id, r := range defs.Resources {
		if r.Min > r.Max {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"resource %d: min %g exceeds max %g", id, r.Min, r.Max))
			continue
		}
		if r.Initial < r.Min || r.Initial > r.Max {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"resource %d: initial %g outside bounds [%g, %g]", id, r.Initial, r.Min, r.Max))
		}
	}

	for id, ev := range defs.Events {
		if ev.TimeCost < 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf("event %d: negative time cost", id))
		}
		if ev.Location != 0 {
			if _, ok := defs.Locations[ev.Location]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"event %d references undefined location %d", id, ev.Location))
			}
		}
		if ev.ItemGained != 0 {
			if _, ok := defs.Items[ev.ItemGained]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"event %d grants undefined item %d", id, ev.ItemGained))
			}
		}
		if ev.TextID != 0 {
			if _, ok := defs.Texts[ev.TextID]; !ok {
				ve.Warnings = append(ve.Warnings, fmt.Sprintf(
					"event %d references undefined text %d, a fallback will be shown", id, ev.TextID))
			}
		}
	}

	endingIDs := map[int]bool{}
	for _, end := range defs.Endings {
		endingIDs[end.ID] = true
		if strings.TrimSpace(end.Condition) == "" {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"ending %d: empty trigger condition would end every game", end.ID))
		}
	}

	for _, te := range defs.TempEvents {
		if te.MaxTriggers <= 0 {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"temporary event %d: max_triggers %d means it never fires", te.ID, te.MaxTriggers))
		}
		if te.Ending != 0 && !endingIDs[te.Ending] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"temporary event %d references undefined ending %d", te.ID, te.Ending))
		}
	}

	for _, task := range defs.Tasks {
		if task.RepeatDays < 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"scheduled task %d: negative repeat interval", task.ID))
		}
	}

	for id, ent := range defs.Entities {
		if ent.Location != 0 {
			if _, ok := defs.Locations[ent.Location]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"entity %d placed at undefined location %d", id, ent.Location))
			}
		}
		for _, evID := range ent.Events {
			if _, ok := defs.Events[evID]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"entity %d references undefined event %d", id, evID))
			}
		}
	}

	for id, loc := range defs.Locations {
		for _, entID := range loc.Entities {
			if _, ok := defs.Entities[entID]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"location %d lists undefined entity %d", id, entID))
			}
		}
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}
