// Package clock derives calendar facts from the single time counter stored
// as resource 1. Two units make an hour, 48 units make a day; the counter
// starts at 14 (07:00 on day 1, a Monday).
package clock

import (
	"math"

	"github.com/mkwok/lifecore/types"
)

const (
	// UnitsPerHour is the number of time units in one simulated hour.
	UnitsPerHour = 2
	// UnitsPerDay is the number of time units in one simulated day.
	UnitsPerDay = 48
	// Epoch is the counter value the simulation starts at.
	Epoch = 14
	// DaysPerMonth is the length of the repeating month cycle.
	DaysPerMonth = 30
)

// Counter abstracts the store the counter lives in, so the clock never owns
// state of its own.
type Counter interface {
	Get(id int) float64
	Set(id int, value float64)
}

// Clock reads and advances the time counter through a Counter.
type Clock struct {
	counter Counter
}

// New creates a clock over the given counter store.
func New(counter Counter) *Clock {
	return &Clock{counter: counter}
}

// Current returns the raw counter value.
func (c *Clock) Current() int {
	return int(c.counter.Get(types.ResTime))
}

// Advance adds n units to the counter. Callers that need per-unit trigger
// checks advance one unit at a time.
func (c *Clock) Advance(n int) {
	c.counter.Set(types.ResTime, c.counter.Get(types.ResTime)+float64(n))
}

// Info derives the full calendar snapshot from the current counter.
func (c *Clock) Info() types.TimeInfo {
	return InfoAt(c.Current())
}

// InfoAt derives calendar facts for an arbitrary counter value.
func InfoAt(t int) types.TimeInfo {
	unitOfDay := mod(t, UnitsPerDay)
	daysPassed := int(math.Floor(float64(t-Epoch) / UnitsPerDay))
	dayOfWeek := mod(daysPassed, 7) + 1 // 1 = Monday … 7 = Sunday
	weekend := dayOfWeek == 6 || dayOfWeek == 7

	day := mod(daysPassed, DaysPerMonth) + 1

	return types.TimeInfo{
		Current:   t,
		Hour:      unitOfDay / UnitsPerHour,
		Day:       day,
		DayOfWeek: dayOfWeek,
		IsWeekend: weekend,
		IsWorkday: !weekend,
		IsNight:   unitOfDay >= 36 || unitOfDay < 14, // roughly 18:00–07:00
	}
}

// HasTimePassedSince reports whether at least intervalDays have elapsed
// between lastTime and the current counter.
func (c *Clock) HasTimePassedSince(lastTime float64, intervalDays float64) bool {
	return float64(c.Current())-lastTime >= intervalDays*UnitsPerDay
}

// NightBonus is the per-unit hook invoked after every advance, between the
// scheduled-task check and the next unit. It is an extension point and
// currently applies nothing, but it must stay in the execution order.
func (c *Clock) NightBonus() {
	if !c.Info().IsNight {
		return
	}
	// No night effects defined yet.
}

// mod is the positive modulus.
func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
