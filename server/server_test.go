package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/mkwok/lifecore/engine"
	"github.com/mkwok/lifecore/engine/state"
	"github.com/mkwok/lifecore/protocol"
	"github.com/mkwok/lifecore/types"
)

// testDefs returns minimal content definitions for server testing.
func testDefs() *state.Defs {
	d := &state.Defs{
		Resources: map[int]types.Resource{
			1:  {ID: 1, Name: "时间", NameEN: "Time", Initial: 14, Min: 0, Max: 1e9},
			2:  {ID: 2, Name: "金钱", NameEN: "Money", Initial: 1000, Min: 0, Max: 999999},
			61: {ID: 61, Name: "位置", NameEN: "Location", Initial: 1, Min: 0, Max: 99},
		},
		Events: map[int]types.Event{
			1: {ID: 1, Name: "工作", NameEN: "Work", TimeCost: 1,
				Changes: map[int]float64{2: 100}},
		},
		Locations: map[int]types.Location{
			1: {ID: 1, Name: "家", NameEN: "Home"},
		},
		Items: map[int]types.Item{},
		Texts: map[int]types.Text{},
	}
	d.Index()
	return d
}

// dialTest starts the server on an httptest listener and opens one
// websocket client against /ws.
func dialTest(t *testing.T) *websocket.Conn {
	t.Helper()
	defs := testDefs()
	srv := New(engine.New(defs), ":0")

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, cmd string) protocol.Response {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(cmd)); err != nil {
		t.Fatal(err)
	}
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	var resp protocol.Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("decoding response %s: %v", raw, err)
	}
	return resp
}

func TestServer_ExecuteEvent(t *testing.T) {
	conn := dialTest(t)

	resp := roundTrip(t, conn, `{"type":"execute_event","params":{"event_id":1},"language":"en"}`)
	if resp.Type != protocol.TypeEventResult {
		t.Fatalf("Type = %q, want %q (error: %s)", resp.Type, protocol.TypeEventResult, resp.Error)
	}

	// The mutated state is visible to the next command on the same engine.
	resp = roundTrip(t, conn, `{"type":"query_resource","params":{"resource_id":2},"language":"en"}`)
	data, _ := json.Marshal(resp.Data)
	if !strings.Contains(string(data), "1100") {
		t.Errorf("expected balance 1100 after event, got %s", data)
	}
}

func TestServer_MalformedCommand(t *testing.T) {
	conn := dialTest(t)

	resp := roundTrip(t, conn, `{"type":`)
	if resp.Type != protocol.TypeError {
		t.Errorf("Type = %q, want %q", resp.Type, protocol.TypeError)
	}
	if resp.Error == "" {
		t.Error("expected an error message")
	}
}

func TestServer_Healthz(t *testing.T) {
	defs := testDefs()
	srv := New(engine.New(defs), ":0")
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
