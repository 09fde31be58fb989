package save

import (
	"encoding/base64"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/mkwok/lifecore/types"
)

func sampleState() types.GameState {
	return types.GameState{
		Resources:    map[int]float64{1: 62, 2: 1234.5, 13: 70},
		TempTriggers: map[int]int{101: 2},
		TaskTriggers: map[int]float64{201: 14},
		GameOver:     false,
	}
}

func TestSaveRoundTrip(t *testing.T) {
	original := sampleState()

	encoded, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// The payload is transport-safe base64, no raw JSON leaking out.
	if strings.ContainsAny(encoded, "{}\"") {
		t.Errorf("encoded save contains raw JSON characters: %q", encoded)
	}

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(original, decoded) {
		t.Errorf("round trip mismatch:\n  in:  %+v\n  out: %+v", original, decoded)
	}
}

func TestSaveRoundTrip_GameOverWithEnding(t *testing.T) {
	original := sampleState()
	original.GameOver = true
	original.Ending = &types.Ending{ID: 301, Name: "过劳死", Condition: "resource[14]>=100"}

	encoded, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !decoded.GameOver || decoded.Ending == nil || decoded.Ending.Name != "过劳死" {
		t.Errorf("ending did not survive the round trip: %+v", decoded)
	}
}

func TestDecode_RejectsGarbage(t *testing.T) {
	if _, err := Decode("not base64!!!"); err == nil {
		t.Error("Decode should reject invalid base64")
	}

	notJSON := base64.StdEncoding.EncodeToString([]byte("hello"))
	if _, err := Decode(notJSON); err == nil {
		t.Error("Decode should reject non-JSON payloads")
	}
}

func TestDecode_ReportsMissingFields(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte(`{"resources": {}}`))
	_, err := Decode(payload)
	if err == nil {
		t.Fatal("Decode should reject a state missing required fields")
	}

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	msg := ve.Error()
	for _, field := range []string{"temporary_event_triggers", "last_task_triggers", "game_over"} {
		if !strings.Contains(msg, field) {
			t.Errorf("validation error %q does not name missing field %s", msg, field)
		}
	}
}

func TestDecode_RejectsWrongTypes(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte(
		`{"resources": {"2": "lots"}, "temporary_event_triggers": {}, "last_task_triggers": {}, "game_over": false}`))
	_, err := Decode(payload)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError for string resource value, got %v", err)
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	cp := NewCheckpoint("before exam", "day 12, all-nighter", sampleState())
	if cp.Timestamp == 0 {
		t.Error("NewCheckpoint should stamp a timestamp")
	}

	encoded, err := EncodeCheckpoint(cp)
	if err != nil {
		t.Fatalf("EncodeCheckpoint: %v", err)
	}

	// Checkpoints travel gzip-compressed inside the base64 wrapper.
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("checkpoint is not base64: %v", err)
	}
	if len(raw) < 2 || raw[0] != 0x1f || raw[1] != 0x8b {
		t.Error("checkpoint payload is not gzip-compressed")
	}

	decoded, err := DecodeCheckpoint(encoded)
	if err != nil {
		t.Fatalf("DecodeCheckpoint: %v", err)
	}
	if !reflect.DeepEqual(cp, decoded) {
		t.Errorf("round trip mismatch:\n  in:  %+v\n  out: %+v", cp, decoded)
	}
}

func TestDecodeCheckpoint_AcceptsUncompressed(t *testing.T) {
	// Payloads written before compression was added are plain JSON in base64.
	plain := `{"name":"legacy","description":"","timestamp":1735689600000,` +
		`"game_state":{"resources":{"1":14},"temporary_event_triggers":{},"last_task_triggers":{},"game_over":false}}`
	encoded := base64.StdEncoding.EncodeToString([]byte(plain))

	cp, err := DecodeCheckpoint(encoded)
	if err != nil {
		t.Fatalf("DecodeCheckpoint: %v", err)
	}
	if cp.Name != "legacy" || cp.GameState.Resources[1] != 14 {
		t.Errorf("unexpected checkpoint: %+v", cp)
	}
}

func TestDecodeCheckpoint_ValidatesEmbeddedState(t *testing.T) {
	bad := `{"name":"x","timestamp":1,"game_state":{"resources":{}}}`
	encoded := base64.StdEncoding.EncodeToString([]byte(bad))

	var ve *ValidationError
	if _, err := DecodeCheckpoint(encoded); !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError for bad embedded state, got %v", err)
	}
}
