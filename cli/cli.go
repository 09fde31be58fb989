// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for the lifecore engine.
package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/mkwok/lifecore/engine"
	"github.com/mkwok/lifecore/engine/save"
	"github.com/mkwok/lifecore/engine/state"
	"github.com/mkwok/lifecore/savestore"
	"github.com/mkwok/lifecore/types"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Engine    *engine.Engine
	Defs      *state.Defs
	Saves     *savestore.Store // may be nil, disables /save and friends
	In        io.Reader
	Out       io.Writer
	Lang      types.Language
	EchoInput bool // echo each input line after the prompt (for script playback)
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine, defs *state.Defs, saves *savestore.Store, lang types.Language) *CLI {
	return &CLI{
		Engine: eng,
		Defs:   defs,
		Saves:  saves,
		In:     os.Stdin,
		Out:    os.Stdout,
		Lang:   lang,
	}
}

// Run starts the interaction loop: prompt → input → dispatch → output.
func (c *CLI) Run() {
	c.printLine("lifecore — type /help for commands")
	c.printLine("")
	c.cmdTime()

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if c.HandleLine(input) {
			return // /quit
		}
	}
}

// HandleLine dispatches one input line, meta or game command, and
// returns true when the session should end. The TUI drives the CLI
// through this entry point.
func (c *CLI) HandleLine(input string) bool {
	if strings.HasPrefix(input, "/") {
		return c.handleMeta(input)
	}
	c.handleGame(input)
	return false
}

// handleGame dispatches game commands.
func (c *CLI) handleGame(input string) {
	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "events", "e":
		c.cmdEvents()

	case "do", "d":
		c.cmdDo(arg)

	case "res", "r":
		c.cmdRes(arg)

	case "inv", "i":
		c.cmdInv()

	case "time", "t":
		c.cmdTime()

	case "loc", "l":
		c.cmdLoc(arg)

	case "state":
		c.cmdState()

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}
}

// handleMeta dispatches meta-commands. Returns true if the game should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = strings.Join(parts[1:], " ")
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/save":
		c.cmdSave(arg)

	case "/checkpoint":
		c.cmdCheckpoint(arg)

	case "/load":
		c.cmdLoad(arg)

	case "/saves":
		c.cmdSaves()

	case "/delete":
		c.cmdDelete(arg)

	case "/reset":
		c.Engine.Reset()
		c.printSystem("Game reset to initial state.")

	case "/lang":
		c.cmdLang(arg)

	case "/raw":
		c.cmdRaw(arg)

	case "/help":
		c.cmdHelp()

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdEvents() {
	events := c.Engine.AvailableEvents(c.Lang)
	if len(events) == 0 {
		c.printLine("No events available here right now.")
		return
	}
	for _, ev := range events {
		c.printLine(fmt.Sprintf("  [%d] %s (%d time units)", ev.EventID, ev.EventName, ev.TimeCost))
	}
}

func (c *CLI) cmdDo(arg string) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		c.printSystem("Usage: do <event id>")
		return
	}

	result := c.Engine.ExecuteEvent(id, c.Lang)
	if !result.Success {
		c.printLine(result.TextContent)
		return
	}

	c.printLine(result.TextContent)
	c.printChanges(result.ResourceChanges)
	for _, te := range result.TempEvents {
		c.printLine(fmt.Sprintf("! %s", te.TextContent))
		c.printChanges(te.ResourceChanges)
	}
	for _, task := range result.Tasks {
		c.printLine(fmt.Sprintf("* %s", task.TextContent))
		c.printChanges(task.ResourceChanges)
	}
	if result.Ending != nil {
		c.printLine("")
		c.printLine(fmt.Sprintf("=== %s ===", result.Ending.DisplayName(c.Lang)))
		if desc := endingDescription(*result.Ending, c.Lang); desc != "" {
			c.printLine(desc)
		}
	}
}

func (c *CLI) cmdRes(arg string) {
	if arg != "" {
		id, err := strconv.Atoi(arg)
		if err != nil {
			c.printSystem("Usage: res [resource id]")
			return
		}
		info := c.Engine.QueryResource(id, c.Lang)
		c.printLine(formatResource(info))
		return
	}

	ids := make([]int, 0, len(c.Defs.Resources))
	for id := range c.Defs.Resources {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		c.printLine(formatResource(c.Engine.QueryResource(id, c.Lang)))
	}
}

func (c *CLI) cmdInv() {
	slots := c.Engine.Inventory(c.Lang)
	if len(slots) == 0 {
		c.printLine("Inventory is empty.")
		return
	}
	for _, s := range slots {
		c.printLine(fmt.Sprintf("  slot %d: %s x%s", s.Slot, s.ItemName, trimFloat(s.Quantity)))
	}
}

func (c *CLI) cmdTime() {
	ti := c.Engine.TimeInfo()
	day := "workday"
	if ti.IsWeekend {
		day = "weekend"
	}
	night := ""
	if ti.IsNight {
		night = ", night"
	}
	c.printLine(fmt.Sprintf("Day %d (%s), %02d:00%s — time unit %d", ti.Day, day, ti.Hour, night, ti.Current))
}

func (c *CLI) cmdLoc(arg string) {
	id := 0
	if arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil {
			c.printSystem("Usage: loc [location id]")
			return
		}
		id = n
	}
	info := c.Engine.QueryLocation(id, c.Lang)
	c.printLine(fmt.Sprintf("%s (location %d)", info.LocationName, info.LocationID))
	for _, entID := range info.AvailableEntities {
		if ent, ok := c.Defs.Entities[entID]; ok {
			c.printLine(fmt.Sprintf("  - %s", ent.DisplayName(c.Lang)))
		}
	}
}

func (c *CLI) cmdState() {
	summary := c.Engine.StateSummary()
	c.printSystem(fmt.Sprintf("Time unit: %d", summary.TimeInfo.Current))
	c.printSystem(fmt.Sprintf("Game over: %v", summary.GameOver))
	if summary.Ending != nil {
		c.printSystem(fmt.Sprintf("Ending: %s", summary.Ending.DisplayName(c.Lang)))
	}
	ids := make([]int, 0, len(summary.Resources))
	for id := range summary.Resources {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		c.printSystem(fmt.Sprintf("  %d = %s", id, trimFloat(summary.Resources[id])))
	}
}

func (c *CLI) cmdSave(name string) {
	if c.Saves == nil {
		c.printSystem("Saving is disabled.")
		return
	}
	if name == "" {
		name = "quicksave"
	}

	payload, err := save.Encode(c.Engine.Store.State())
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	if err := c.Saves.Put(name, "", payload); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Game saved to %s.", name))
}

// cmdCheckpoint writes a named, described, timestamped checkpoint. The
// payload travels compressed; /load recognizes both formats.
func (c *CLI) cmdCheckpoint(arg string) {
	if c.Saves == nil {
		c.printSystem("Saving is disabled.")
		return
	}
	name, description, _ := strings.Cut(arg, " ")
	if name == "" {
		c.printSystem("Usage: /checkpoint <name> [description]")
		return
	}

	cp := save.NewCheckpoint(name, description, c.Engine.Store.State())
	payload, err := save.EncodeCheckpoint(cp)
	if err != nil {
		c.printSystem(fmt.Sprintf("Checkpoint failed: %v", err))
		return
	}
	if err := c.Saves.Put(name, description, payload); err != nil {
		c.printSystem(fmt.Sprintf("Checkpoint failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Checkpoint %s created.", name))
}

func (c *CLI) cmdLoad(name string) {
	if c.Saves == nil {
		c.printSystem("Saving is disabled.")
		return
	}
	if name == "" {
		name = "quicksave"
	}

	payload, err := c.Saves.Get(name)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	gs, err := save.Decode(payload)
	if err != nil {
		// Checkpoint payloads wrap the state in an envelope.
		cp, cpErr := save.DecodeCheckpoint(payload)
		if cpErr != nil {
			c.printSystem(fmt.Sprintf("Load failed: %v", err))
			return
		}
		gs = cp.GameState
	}
	c.Engine.Store.Replace(gs)
	c.printSystem(fmt.Sprintf("Game loaded from %s.", name))
	c.cmdTime()
}

func (c *CLI) cmdSaves() {
	if c.Saves == nil {
		c.printSystem("Saving is disabled.")
		return
	}
	entries, err := c.Saves.List()
	if err != nil {
		c.printSystem(fmt.Sprintf("Listing saves failed: %v", err))
		return
	}
	if len(entries) == 0 {
		c.printSystem("No saves yet.")
		return
	}
	for _, e := range entries {
		c.printLine(fmt.Sprintf("  %s  (%s)", e.Name, e.CreatedAt.Local().Format("2006-01-02 15:04")))
	}
}

func (c *CLI) cmdDelete(name string) {
	if c.Saves == nil {
		c.printSystem("Saving is disabled.")
		return
	}
	if name == "" {
		c.printSystem("Usage: /delete <name>")
		return
	}
	if err := c.Saves.Delete(name); err != nil {
		c.printSystem(fmt.Sprintf("Delete failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Deleted save %s.", name))
}

func (c *CLI) cmdLang(arg string) {
	switch arg {
	case "zh":
		c.Lang = types.LangZH
		c.printSystem("Language set to Chinese.")
	case "en":
		c.Lang = types.LangEN
		c.printSystem("Language set to English.")
	default:
		c.printSystem("Usage: /lang zh|en")
	}
}

// cmdRaw feeds one raw JSON command straight to the dispatcher, for
// protocol debugging.
func (c *CLI) cmdRaw(arg string) {
	if arg == "" {
		c.printSystem(`Usage: /raw {"type":"get_time_info"}`)
		return
	}
	resp := c.Engine.HandleCommand([]byte(arg))
	c.printLine(formatJSON(resp))
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [name]    — Save game (default: quicksave)",
		"  /load [name]    — Load game (default: quicksave)",
		"  /checkpoint <name> [desc] — Save a described checkpoint",
		"  /saves          — List saves",
		"  /delete <name>  — Delete a save",
		"  /reset          — Restart from the initial state",
		"  /lang zh|en     — Switch display language",
		"  /raw <json>     — Send a raw protocol command",
		"  /quit           — Exit",
		"  /help           — Show this help",
		"",
		"Game commands:",
		"  events (e)      — List events available here",
		"  do <id> (d)     — Execute an event",
		"  res [id] (r)    — Show resources, or one resource",
		"  inv (i)         — Show inventory",
		"  time (t)        — Show the calendar",
		"  loc [id] (l)    — Describe a location (default: current)",
		"  state           — Debug: dump current state",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

// printChanges prints non-zero resource deltas in ascending id order.
func (c *CLI) printChanges(changes map[int]float64) {
	ids := make([]int, 0, len(changes))
	for id := range changes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		name := strconv.Itoa(id)
		if r, ok := c.Defs.Resources[id]; ok {
			name = r.DisplayName(c.Lang)
		}
		delta := changes[id]
		sign := ""
		if delta > 0 {
			sign = "+"
		}
		c.printLine(fmt.Sprintf("    %s %s%s", name, sign, trimFloat(delta)))
	}
}

func formatResource(info engine.ResourceInfo) string {
	return fmt.Sprintf("  [%d] %s: %s (range %s..%s)",
		info.ResourceID, info.ResourceName,
		trimFloat(info.Value), trimFloat(info.MinValue), trimFloat(info.MaxValue))
}

func endingDescription(end types.Ending, lang types.Language) string {
	if lang == types.LangEN && end.DescriptionEN != "" {
		return end.DescriptionEN
	}
	return end.Description
}

// trimFloat renders a float without trailing zeros.
func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
