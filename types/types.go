// Package types defines the shared data structures for the LifeCore engine.
// This package contains only type definitions — no logic beyond trivial
// localized-name selectors.
package types

// Language selects which localized field of a content record is surfaced.
type Language string

const (
	LangZH Language = "zh"
	LangEN Language = "en"
)

// ResourceType tags what role a resource plays in content.
type ResourceType string

const (
	ResourceBasic     ResourceType = "basic"
	ResourceInventory ResourceType = "inventory"
	ResourceStorage   ResourceType = "storage"
	ResourceSocial    ResourceType = "social"
	ResourceAchieve   ResourceType = "achievement"
	ResourcePermanent ResourceType = "permanent"
	ResourceSystem    ResourceType = "system"
)

// Well-known resource ids the engine itself depends on.
const (
	ResTime           = 1  // monotonic time counter
	ResMoney          = 2  // money
	ResInventoryFirst = 3  // first inventory slot (item id)
	ResInventoryLast  = 12 // last inventory slot (quantity)
	ResHealth         = 13
	ResFatigue        = 14
	ResHunger         = 15
	ResRational       = 16
	ResEmotional      = 17
	ResFocus          = 18
	ResMood           = 19
	ResSkill          = 20
	ResProgress       = 23 // project progress
	ResLocation       = 61 // current location id
	ResFocusDiscount  = 78 // focus consumption reduction, percent
)

// Resource is a content-defined bounded game variable. Immutable at runtime.
type Resource struct {
	ID          int
	Name        string
	NameEN      string
	Type        ResourceType
	Initial     float64
	Min         float64
	Max         float64
	Description string
}

// DisplayName returns the localized resource name.
func (r Resource) DisplayName(lang Language) string {
	if lang == LangEN && r.NameEN != "" {
		return r.NameEN
	}
	return r.Name
}

// DeltaKind discriminates the Delta variant.
type DeltaKind int

const (
	DeltaNone    DeltaKind = iota // field absent
	DeltaLiteral                  // plain number applied via Change
	DeltaExpr                     // calc[...] / conditional[...] evaluated then applied via Change
	DeltaSet                      // set[id]=v applied via Set, reported as absolute value
	DeltaReset                    // reset[id] applied via Set(id, 0)
)

// Delta is a per-resource effect decided once at content-load time instead of
// being re-sniffed from a string on every execution.
type Delta struct {
	Kind     DeltaKind
	Value    float64 // DeltaLiteral amount, or DeltaSet target value
	Expr     string  // DeltaExpr source text
	Resource int     // DeltaSet / DeltaReset target resource id
}

// Event is a player-triggerable content record. A read-only template:
// executing one never mutates it, only the game state.
type Event struct {
	ID           int
	Name         string
	NameEN       string
	TimeCost     int
	Location     int    // required location id, 0 = anywhere
	Condition    string // condition expression, "" fails open
	Changes      map[int]float64
	Progress     Delta // project progress, may be calculated or a set/reset op
	Permanent    Delta // permanent effect, set/reset ops only
	ItemGained   int
	ItemQuantity float64
	TextID       int
}

// DisplayName returns the localized event name.
func (e Event) DisplayName(lang Language) string {
	if lang == LangEN && e.NameEN != "" {
		return e.NameEN
	}
	return e.Name
}

// TemporaryEvent self-triggers during time advancement, a bounded number of
// times, independent of player action.
type TemporaryEvent struct {
	ID          int
	Name        string
	NameEN      string
	Condition   string
	MaxTriggers int
	Changes     map[int]float64
	Progress    Delta
	Ending      int // ending id triggered on firing, 0 = none
	TextID      int
}

// DisplayName returns the localized temporary-event name.
func (t TemporaryEvent) DisplayName(lang Language) string {
	if lang == LangEN && t.NameEN != "" {
		return t.NameEN
	}
	return t.Name
}

// ScheduledTask is a recurring, time-gated content record (e.g. daily rent).
type ScheduledTask struct {
	ID          int
	Name        string
	NameEN      string
	TriggerTime string // time expression, e.g. "time[hour]==8"
	Condition   string
	Active      bool
	RepeatDays  float64 // minimum days between firings
	Money       Delta
	Progress    Delta
	Changes     map[int]float64
	TextID      int
}

// DisplayName returns the localized task name.
func (t ScheduledTask) DisplayName(lang Language) string {
	if lang == LangEN && t.NameEN != "" {
		return t.NameEN
	}
	return t.Name
}

// EndingType tags how an ending reads to the player.
type EndingType string

const (
	EndingFailure     EndingType = "failure"
	EndingAchievement EndingType = "achievement"
	EndingBalance     EndingType = "balance"
)

// Ending is a terminal content record. Once its condition is true the
// simulation halts.
type Ending struct {
	ID            int
	Name          string
	NameEN        string
	Type          EndingType
	Condition     string
	Description   string
	DescriptionEN string
	Philosophy    string
	PhilosophyEN  string
}

// DisplayName returns the localized ending name.
func (e Ending) DisplayName(lang Language) string {
	if lang == LangEN && e.NameEN != "" {
		return e.NameEN
	}
	return e.Name
}

// Item is a content-defined inventory item.
type Item struct {
	ID          int
	Name        string
	NameEN      string
	Type        string
	Price       float64
	Description string
}

// DisplayName returns the localized item name.
func (i Item) DisplayName(lang Language) string {
	if lang == LangEN && i.NameEN != "" {
		return i.NameEN
	}
	return i.Name
}

// Entity is an interactable person, object, or facility at a location.
type Entity struct {
	ID       int
	Name     string
	NameEN   string
	Type     string
	Location int
	Events   []int // event ids available through this entity
}

// DisplayName returns the localized entity name.
func (e Entity) DisplayName(lang Language) string {
	if lang == LangEN && e.NameEN != "" {
		return e.NameEN
	}
	return e.Name
}

// Location is a content-defined place the player can be at.
type Location struct {
	ID          int
	Name        string
	NameEN      string
	Description string
	Entities    []int
}

// DisplayName returns the localized location name.
func (l Location) DisplayName(lang Language) string {
	if lang == LangEN && l.NameEN != "" {
		return l.NameEN
	}
	return l.Name
}

// Text is a localized display string addressed by id.
type Text struct {
	ID int
	ZH string
	EN string
}

// Localized returns the text for the given language.
func (t Text) Localized(lang Language) string {
	if lang == LangEN && t.EN != "" {
		return t.EN
	}
	return t.ZH
}

// GameState is the complete mutable snapshot of the simulation.
type GameState struct {
	Resources    map[int]float64 `json:"resources"`
	TempTriggers map[int]int     `json:"temporary_event_triggers"`
	TaskTriggers map[int]float64 `json:"last_task_triggers"`
	GameOver     bool            `json:"game_over"`
	Ending       *Ending         `json:"current_ending,omitempty"`
}

// TimeInfo holds calendar facts derived from the time counter.
type TimeInfo struct {
	Current   int  `json:"current_time"`
	Hour      int  `json:"hour"`
	Day       int  `json:"day"`
	DayOfWeek int  `json:"day_of_week"` // 1 = Monday … 7 = Sunday
	IsWeekend bool `json:"is_weekend"`
	IsWorkday bool `json:"is_workday"`
	IsNight   bool `json:"is_night"`
}

// EventResult is the outcome of a single ExecuteEvent call. Success=false
// carries the rejection reason in TextContent; no state was mutated.
type EventResult struct {
	Success         bool              `json:"success"`
	EventID         int               `json:"event_id"`
	EventName       string            `json:"event_name"`
	TextID          int               `json:"text_id"`
	TextContent     string            `json:"text_content"`
	TimeConsumed    int               `json:"time_consumed"`
	ResourceChanges map[int]float64   `json:"resource_changes"`
	TempEvents      []TempEventResult `json:"temporary_events_triggered"`
	Tasks           []TaskResult      `json:"scheduled_tasks_triggered"`
	Ending          *Ending           `json:"ending_triggered,omitempty"`
}

// TempEventResult records one temporary-event firing during time advancement.
type TempEventResult struct {
	ID              int             `json:"temp_event_id"`
	Name            string          `json:"event_name"`
	TextID          int             `json:"text_id"`
	TextContent     string          `json:"text_content"`
	ResourceChanges map[int]float64 `json:"resource_changes"`
	Ending          *Ending         `json:"ending_triggered,omitempty"`
}

// TaskResult records one scheduled-task firing during time advancement.
type TaskResult struct {
	ID              int             `json:"task_id"`
	Name            string          `json:"task_name"`
	TextID          int             `json:"text_id"`
	TextContent     string          `json:"text_content"`
	ResourceChanges map[int]float64 `json:"resource_changes"`
}

// InventorySlot is one occupied slot reported by an inventory query.
type InventorySlot struct {
	Slot     int     `json:"slot"`
	ItemID   int     `json:"item_id"`
	ItemName string  `json:"item_name"`
	Quantity float64 `json:"quantity"`
}
