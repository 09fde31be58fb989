// Package protocol defines the JSON command/response envelope spoken by
// every front-end and transport. Commands route on a string tag; params are
// decoded per-command so unknown shapes fail at the boundary, not inside the
// engine.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/mkwok/lifecore/types"
)

// Command type tags.
const (
	CmdExecuteEvent         = "execute_event"
	CmdQueryResource        = "query_resource"
	CmdQueryLocation        = "query_location"
	CmdQueryAvailableEvents = "query_available_events"
	CmdQueryInventory       = "query_inventory"
	CmdUseItem              = "use_item"
	CmdSaveGame             = "save_game"
	CmdLoadGame             = "load_game"
	CmdGetGameState         = "get_game_state"
	CmdGetTimeInfo          = "get_time_info"
)

// Response type tags.
const (
	TypeEventResult = "event_result"
	TypeQueryResult = "query_result"
	TypeGameSaved   = "game_saved"
	TypeGameLoaded  = "game_loaded"
	TypeError       = "error"
)

// Command is the incoming envelope. Params stay raw until the dispatcher
// knows which shape to decode them into.
type Command struct {
	Type     string          `json:"type"`
	Params   json.RawMessage `json:"params,omitempty"`
	Language types.Language  `json:"language,omitempty"`
}

// Per-command parameter shapes.
type (
	ExecuteEventParams struct {
		EventID int `json:"event_id"`
	}
	QueryResourceParams struct {
		ResourceID int `json:"resource_id"`
	}
	QueryLocationParams struct {
		LocationID int `json:"location_id"`
	}
	UseItemParams struct {
		ItemSlot int `json:"item_slot"`
	}
	LoadGameParams struct {
		SaveData string `json:"save_data"`
	}
)

// Response is the outgoing envelope.
type Response struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// DecodeCommand parses a raw command envelope.
func DecodeCommand(raw []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		return Command{}, fmt.Errorf("parsing command: %w", err)
	}
	return cmd, nil
}

// DecodeParams decodes a command's params into the given shape. Absent
// params decode as the zero value.
func DecodeParams(cmd Command, into any) error {
	if len(cmd.Params) == 0 {
		return nil
	}
	if err := json.Unmarshal(cmd.Params, into); err != nil {
		return fmt.Errorf("parsing %s params: %w", cmd.Type, err)
	}
	return nil
}

// ErrorResponse wraps a message in an error envelope.
func ErrorResponse(msg string) Response {
	return Response{Type: TypeError, Error: msg}
}
