// Package save implements the persistence codec: the full game state is
// serialized to JSON and wrapped in a transport-safe base64 string.
// Loading validates the decoded payload structurally before anything is
// installed, reporting exactly which fields were missing or malformed.
package save

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/mkwok/lifecore/types"
)

const stateSchemaJSON = `{
  "type": "object",
  "required": ["resources", "temporary_event_triggers", "last_task_triggers", "game_over"],
  "properties": {
    "resources": {"type": "object", "additionalProperties": {"type": "number"}},
    "temporary_event_triggers": {"type": "object", "additionalProperties": {"type": "number"}},
    "last_task_triggers": {"type": "object", "additionalProperties": {"type": "number"}},
    "game_over": {"type": "boolean"}
  }
}`

const checkpointSchemaJSON = `{
  "type": "object",
  "required": ["name", "timestamp", "game_state"],
  "properties": {
    "name": {"type": "string"},
    "description": {"type": "string"},
    "timestamp": {"type": "number"},
    "game_state": ` + stateSchemaJSON + `
  }
}`

var (
	stateSchema      = jsonschema.MustCompileString("gamestate.schema.json", stateSchemaJSON)
	checkpointSchema = jsonschema.MustCompileString("checkpoint.schema.json", checkpointSchemaJSON)
)

// ValidationError lists the save-data fields that failed structural
// validation. The field granularity is deliberate: save corruption must be
// debuggable from the error alone.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid save data: %s", strings.Join(e.Fields, "; "))
}

// Encode serializes a game state to the opaque save string.
func Encode(gs types.GameState) (string, error) {
	data, err := json.Marshal(gs)
	if err != nil {
		return "", fmt.Errorf("encoding game state: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Decode parses and validates an opaque save string. The returned state is
// only safe to install when err is nil.
func Decode(saveData string) (types.GameState, error) {
	raw, err := decodeTransport(saveData)
	if err != nil {
		return types.GameState{}, err
	}

	var loose any
	if err := json.Unmarshal(raw, &loose); err != nil {
		return types.GameState{}, fmt.Errorf("parsing save data: %w", err)
	}
	if err := validate(stateSchema, loose); err != nil {
		return types.GameState{}, err
	}

	var gs types.GameState
	if err := json.Unmarshal(raw, &gs); err != nil {
		return types.GameState{}, fmt.Errorf("parsing save data: %w", err)
	}
	return gs, nil
}

// Checkpoint wraps a save payload with a name, free-text description, and a
// creation timestamp. It round-trips identically to a bare save.
type Checkpoint struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Timestamp   int64           `json:"timestamp"` // unix milliseconds
	GameState   types.GameState `json:"game_state"`
}

// NewCheckpoint stamps a checkpoint with the current wall-clock time.
func NewCheckpoint(name, description string, gs types.GameState) Checkpoint {
	return Checkpoint{
		Name:        name,
		Description: description,
		Timestamp:   time.Now().UnixMilli(),
		GameState:   gs,
	}
}

// EncodeCheckpoint serializes a checkpoint, gzip-compressed inside the
// base64 wrapper. Decode sniffs the gzip magic, so plain payloads written by
// older builds still load.
func EncodeCheckpoint(cp Checkpoint) (string, error) {
	data, err := json.Marshal(cp)
	if err != nil {
		return "", fmt.Errorf("encoding checkpoint: %w", err)
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return "", fmt.Errorf("compressing checkpoint: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("compressing checkpoint: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeCheckpoint parses and validates a checkpoint string.
func DecodeCheckpoint(saveData string) (Checkpoint, error) {
	raw, err := decodeTransport(saveData)
	if err != nil {
		return Checkpoint{}, err
	}

	var loose any
	if err := json.Unmarshal(raw, &loose); err != nil {
		return Checkpoint{}, fmt.Errorf("parsing checkpoint: %w", err)
	}
	if err := validate(checkpointSchema, loose); err != nil {
		return Checkpoint{}, err
	}

	var cp Checkpoint
	if err := json.Unmarshal(raw, &cp); err != nil {
		return Checkpoint{}, fmt.Errorf("parsing checkpoint: %w", err)
	}
	return cp, nil
}

// decodeTransport reverses the base64 wrapper and, when the gzip magic is
// present, the compression layer.
func decodeTransport(saveData string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(saveData))
	if err != nil {
		return nil, fmt.Errorf("decoding save data: %w", err)
	}
	if len(raw) >= 2 && raw[0] == 0x1f && raw[1] == 0x8b {
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("decompressing save data: %w", err)
		}
		defer zr.Close()
		raw, err = io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("decompressing save data: %w", err)
		}
	}
	return raw, nil
}

// validate runs the schema and flattens the causes into per-field messages.
func validate(schema *jsonschema.Schema, v any) error {
	err := schema.Validate(v)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return fmt.Errorf("validating save data: %w", err)
	}
	fields := flatten(ve)
	if len(fields) == 0 {
		fields = []string{ve.Message}
	}
	return &ValidationError{Fields: fields}
}

func flatten(ve *jsonschema.ValidationError) []string {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return []string{fmt.Sprintf("%s: %s", loc, ve.Message)}
	}
	var out []string
	for _, cause := range ve.Causes {
		out = append(out, flatten(cause)...)
	}
	return out
}
