package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/myo-osc/internal/dispatch"
	"github.com/nerrad567/myo-osc/internal/infrastructure/config"
)

func testRelayConfig() config.RelayConfig {
	return config.RelayConfig{
		Enabled:        true,
		Host:           "127.0.0.1",
		Port:           0,
		Path:           "/ws",
		MaxMessageSize: 4096,
		PingInterval:   30,
		PongTimeout:    10,
	}
}

// startServer starts a relay on an ephemeral port.
func startServer(t *testing.T, deps Deps) *Server {
	t.Helper()

	if deps.Config.Host == "" {
		deps.Config = testRelayConfig()
	}
	srv := New(deps)
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

// dial connects to the relay and consumes the hello message.
func dial(t *testing.T, srv *Server, query string) (*websocket.Conn, WSMessage) {
	t.Helper()

	url := "ws://" + srv.Addr() + "/ws" + query
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })

	hello := readMessage(t, ws)
	require.Equal(t, TypeHello, hello.Type)
	return ws, hello
}

func readMessage(t *testing.T, ws *websocket.Conn) WSMessage {
	t.Helper()

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg WSMessage
	require.NoError(t, ws.ReadJSON(&msg))
	return msg
}

func pose(name string) dispatch.Message {
	return dispatch.Message{Address: "/myo/pose", Fields: []dispatch.Field{dispatch.String(name)}}
}

func accel(x, y, z float32) dispatch.Message {
	return dispatch.Message{
		Address: "/myo/accel",
		Fields:  []dispatch.Field{dispatch.Float32(x), dispatch.Float32(y), dispatch.Float32(z)},
	}
}

// =============================================================================
// WebSocket Tests
// =============================================================================

func TestWebSocket_Hello(t *testing.T) {
	srv := startServer(t, Deps{})
	_, hello := dial(t, srv, "")

	assert.NotEmpty(t, hello.ID)
	assert.NotEmpty(t, hello.Timestamp)
	assert.Equal(t, 1, srv.Hub().ClientCount())
}

func TestWebSocket_SubscribeAndReceive(t *testing.T) {
	srv := startServer(t, Deps{})
	ws, _ := dial(t, srv, "")

	require.NoError(t, ws.WriteJSON(WSMessage{
		Type:    TypeSubscribe,
		ID:      "sub-1",
		Payload: SubscribePayload{Addresses: []string{"/myo/pose"}},
	}))
	resp := readMessage(t, ws)
	assert.Equal(t, TypeResponse, resp.Type)
	assert.Equal(t, "sub-1", resp.ID)

	require.NoError(t, srv.Hub().Send(accel(1, 2, 3)))
	require.NoError(t, srv.Hub().Send(pose("fist")))

	event := readMessage(t, ws)
	require.Equal(t, TypeEvent, event.Type)
	payload, ok := event.Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "/myo/pose", payload["address"])
	assert.Equal(t, []any{"fist"}, payload["args"])
}

func TestWebSocket_QuerySubscription(t *testing.T) {
	srv := startServer(t, Deps{})
	ws, _ := dial(t, srv, "?address=/")

	require.NoError(t, srv.Hub().Send(accel(1, 2, 3)))

	event := readMessage(t, ws)
	require.Equal(t, TypeEvent, event.Type)
	payload := event.Payload.(map[string]any)
	assert.Equal(t, "/myo/accel", payload["address"])
	assert.Equal(t, []any{1.0, 2.0, 3.0}, payload["args"])
}

func TestWebSocket_Unsubscribe(t *testing.T) {
	srv := startServer(t, Deps{})
	ws, _ := dial(t, srv, "?address=/myo/pose&address=/myo/accel")

	require.NoError(t, ws.WriteJSON(WSMessage{
		Type:    TypeUnsubscribe,
		ID:      "u1",
		Payload: SubscribePayload{Addresses: []string{"/myo/pose"}},
	}))
	resp := readMessage(t, ws)
	assert.Equal(t, TypeResponse, resp.Type)

	require.NoError(t, srv.Hub().Send(pose("rest")))
	require.NoError(t, srv.Hub().Send(accel(0, 0, 1)))

	event := readMessage(t, ws)
	assert.Equal(t, "/myo/accel", event.Payload.(map[string]any)["address"])
}

func TestWebSocket_Ping(t *testing.T) {
	srv := startServer(t, Deps{})
	ws, _ := dial(t, srv, "")

	require.NoError(t, ws.WriteJSON(WSMessage{Type: TypePing, ID: "p1"}))
	resp := readMessage(t, ws)
	assert.Equal(t, TypePong, resp.Type)
	assert.Equal(t, "p1", resp.ID)
}

func TestWebSocket_UnknownType(t *testing.T) {
	srv := startServer(t, Deps{})
	ws, _ := dial(t, srv, "")

	require.NoError(t, ws.WriteJSON(WSMessage{Type: "bogus", ID: "x"}))
	resp := readMessage(t, ws)
	assert.Equal(t, TypeError, resp.Type)
	assert.Equal(t, "x", resp.ID)
}

func TestWebSocket_InvalidJSON(t *testing.T) {
	srv := startServer(t, Deps{})
	ws, _ := dial(t, srv, "")

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("not json")))
	resp := readMessage(t, ws)
	assert.Equal(t, TypeError, resp.Type)
}

func TestWebSocket_ClientCountCallback(t *testing.T) {
	counts := make(chan int, 8)
	hub := NewHub(nil, func(n int) { counts <- n })
	srv := startServer(t, Deps{Hub: hub})

	ws, _ := dial(t, srv, "")
	assert.Equal(t, 1, <-counts)

	ws.Close()
	select {
	case n := <-counts:
		assert.Equal(t, 0, n)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for disconnect")
	}
}

// =============================================================================
// HTTP Tests
// =============================================================================

func TestHealth_OK(t *testing.T) {
	srv := New(Deps{
		Config:  testRelayConfig(),
		Version: "test",
		Target:  func() string { return "127.0.0.1:9000" },
		Checks: map[string]HealthCheck{
			"osc": func(context.Context) error { return nil },
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "test", resp.Version)
	assert.Equal(t, "127.0.0.1:9000", resp.Target)
	assert.Equal(t, "ok", resp.Checks["osc"])
}

func TestHealth_Degraded(t *testing.T) {
	srv := New(Deps{
		Config: testRelayConfig(),
		Checks: map[string]HealthCheck{
			"mqtt": func(context.Context) error { return errors.New("not connected") },
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "not connected", resp.Checks["mqtt"])
}

func TestRequestID_PreservesClient(t *testing.T) {
	srv := New(Deps{Config: testRelayConfig()})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestMetrics_Route(t *testing.T) {
	srv := New(Deps{
		Config: testRelayConfig(),
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("myoosc_messages_sent_total 1\n"))
		}),
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "myoosc_messages_sent_total")
}

func TestMetrics_NotMounted(t *testing.T) {
	srv := New(Deps{Config: testRelayConfig()})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecovery(t *testing.T) {
	srv := New(Deps{Config: testRelayConfig()})
	h := srv.recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), ErrCodeInternal)
}

// =============================================================================
// Lifecycle Tests
// =============================================================================

func TestServer_HealthCheck(t *testing.T) {
	srv := New(Deps{Config: testRelayConfig()})
	assert.ErrorIs(t, srv.HealthCheck(context.Background()), ErrNotStarted)

	require.NoError(t, srv.Start(context.Background()))
	defer srv.Close()
	assert.NoError(t, srv.HealthCheck(context.Background()))
}

func TestServer_CloseBeforeStart(t *testing.T) {
	assert.NoError(t, New(Deps{}).Close())
}

func TestServer_CloseDisconnectsClients(t *testing.T) {
	srv := New(Deps{Config: testRelayConfig()})
	require.NoError(t, srv.Start(context.Background()))

	ws, _ := dial(t, srv, "")
	require.NoError(t, srv.Close())

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := ws.ReadMessage()
	assert.Error(t, err)
}
