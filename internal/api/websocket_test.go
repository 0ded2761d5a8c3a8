package api

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/homedeck/homedeck/internal/infrastructure/config"
	"github.com/homedeck/homedeck/internal/notify"
	"github.com/homedeck/homedeck/internal/poller"
)

func dialWS(t *testing.T, env *testEnv, token string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(env.gateway.URL, "http") + "/api/v1/ws"
	if token != "" {
		url += "?token=" + token
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialling websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("reading websocket event: %v", err)
	}
	return ev.Type, ev.Payload
}

func TestWebSocketInitialStatusAndNotifications(t *testing.T) {
	env := newTestEnv(t, nil)
	conn := dialWS(t, env, "")

	// The first frame is the current snapshot.
	typ, payload := readEvent(t, conn)
	if typ != "status" {
		t.Fatalf("first event type = %q, want status", typ)
	}
	var snap poller.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		t.Fatalf("decoding snapshot payload: %v", err)
	}

	posted := env.notifier.Warning("battery low")
	typ, payload = readEvent(t, conn)
	if typ != "notification" {
		t.Fatalf("event type = %q, want notification", typ)
	}
	var n notify.Notification
	if err := json.Unmarshal(payload, &n); err != nil {
		t.Fatalf("decoding notification payload: %v", err)
	}
	if n.ID != posted.ID || n.Severity != notify.SeverityWarning {
		t.Errorf("received %+v, want the posted warning", n)
	}
}

func TestWebSocketRequiresTokenWhenAuthEnabled(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.Security.Password = "hunter2-but-longer"
	})

	url := "ws" + strings.TrimPrefix(env.gateway.URL, "http") + "/api/v1/ws"
	if _, _, err := websocket.DefaultDialer.Dial(url, nil); err == nil {
		t.Fatal("expected the handshake to fail without a token")
	}

	_, body := env.do(t, "POST", "/api/v1/auth/login", "", map[string]string{"password": "hunter2-but-longer"})
	var login loginResponse
	if err := json.Unmarshal(body, &login); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}

	conn := dialWS(t, env, login.Token)
	if typ, _ := readEvent(t, conn); typ != "status" {
		t.Fatalf("first event type = %q, want status", typ)
	}
}
