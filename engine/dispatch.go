package engine

import (
	"github.com/mkwok/lifecore/engine/save"
	"github.com/mkwok/lifecore/protocol"
)

// HandleCommand translates one external JSON command into a call against the
// engine and wraps the result in a response envelope. Malformed input and
// unknown command types become error responses; nothing escapes as a panic
// or error value.
func (e *Engine) HandleCommand(raw []byte) protocol.Response {
	cmd, err := protocol.DecodeCommand(raw)
	if err != nil {
		return protocol.ErrorResponse(err.Error())
	}
	return e.Dispatch(cmd)
}

// Dispatch routes a decoded command. The switch is exhaustive over the
// protocol's command tags.
func (e *Engine) Dispatch(cmd protocol.Command) protocol.Response {
	lang := cmd.Language

	switch cmd.Type {
	case protocol.CmdExecuteEvent:
		var p protocol.ExecuteEventParams
		if err := protocol.DecodeParams(cmd, &p); err != nil {
			return protocol.ErrorResponse(err.Error())
		}
		return protocol.Response{
			Type: protocol.TypeEventResult,
			Data: e.ExecuteEvent(p.EventID, lang),
		}

	case protocol.CmdQueryResource:
		var p protocol.QueryResourceParams
		if err := protocol.DecodeParams(cmd, &p); err != nil {
			return protocol.ErrorResponse(err.Error())
		}
		return protocol.Response{
			Type: protocol.TypeQueryResult,
			Data: e.QueryResource(p.ResourceID, lang),
		}

	case protocol.CmdQueryLocation:
		var p protocol.QueryLocationParams
		if err := protocol.DecodeParams(cmd, &p); err != nil {
			return protocol.ErrorResponse(err.Error())
		}
		return protocol.Response{
			Type: protocol.TypeQueryResult,
			Data: e.QueryLocation(p.LocationID, lang),
		}

	case protocol.CmdQueryAvailableEvents:
		return protocol.Response{
			Type: protocol.TypeQueryResult,
			Data: map[string]any{"available_events": e.AvailableEvents(lang)},
		}

	case protocol.CmdQueryInventory:
		return protocol.Response{
			Type: protocol.TypeQueryResult,
			Data: map[string]any{"inventory": e.Inventory(lang)},
		}

	case protocol.CmdUseItem:
		// Recognized but unimplemented: a structured error, not a crash.
		return protocol.ErrorResponse("Item usage not yet implemented")

	case protocol.CmdSaveGame:
		data, err := save.Encode(e.Store.State())
		if err != nil {
			return protocol.ErrorResponse("Failed to save game: " + err.Error())
		}
		return protocol.Response{
			Type: protocol.TypeGameSaved,
			Data: map[string]any{"save_data": data},
		}

	case protocol.CmdLoadGame:
		var p protocol.LoadGameParams
		if err := protocol.DecodeParams(cmd, &p); err != nil {
			return protocol.ErrorResponse(err.Error())
		}
		gs, err := save.Decode(p.SaveData)
		if err != nil {
			return protocol.ErrorResponse("Failed to load game: " + err.Error())
		}
		e.Store.Replace(gs)
		return protocol.Response{
			Type: protocol.TypeGameLoaded,
			Data: map[string]any{"success": true},
		}

	case protocol.CmdGetGameState:
		return protocol.Response{
			Type: protocol.TypeQueryResult,
			Data: e.StateSummary(),
		}

	case protocol.CmdGetTimeInfo:
		return protocol.Response{
			Type: protocol.TypeQueryResult,
			Data: e.TimeInfo(),
		}

	default:
		return protocol.ErrorResponse("Unknown command type: " + cmd.Type)
	}
}
