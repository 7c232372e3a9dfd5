package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdanthq/verdant/internal/domain"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

func dialHub(t *testing.T, hub *Hub, userID int64) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		hub.Register(userID, conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForConnections(t *testing.T, hub *Hub, userID int64, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.Connections(userID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d connections for user %d, have %d", want, userID, hub.Connections(userID))
}

func TestNotify_DeliversToConnectedUser(t *testing.T) {
	hub := NewHub(nil)
	conn := dialHub(t, hub, 7)
	waitForConnections(t, hub, 7, 1)

	hub.Notify(7, &domain.Notification{ID: 1, UserID: 7, Type: domain.NotificationWeatherAlert, Message: "Heat warning"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Event   string              `json:"event"`
		Payload domain.Notification `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, "notification", msg.Event)
	assert.Equal(t, domain.NotificationWeatherAlert, msg.Payload.Type)
	assert.Equal(t, "Heat warning", msg.Payload.Message)
}

func TestBroadcast_FansOutToAllSessions(t *testing.T) {
	hub := NewHub(nil)
	first := dialHub(t, hub, 7)
	second := dialHub(t, hub, 7)
	waitForConnections(t, hub, 7, 2)

	hub.Broadcast(7, Message{Event: "ping", Payload: "hi"})

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"event":"ping"`)
	}
}

func TestNotify_NoSessionsIsNoop(t *testing.T) {
	hub := NewHub(nil)
	// Must not panic or block.
	hub.Notify(99, &domain.Notification{ID: 1, UserID: 99})
	assert.Zero(t, hub.Connections(99))
}

func TestRemove_OnClientDisconnect(t *testing.T) {
	hub := NewHub(nil)
	conn := dialHub(t, hub, 7)
	waitForConnections(t, hub, 7, 1)

	conn.Close()
	waitForConnections(t, hub, 7, 0)
}

// Concurrent broadcasters must survive a client being torn down between
// their snapshot of the connection set and the send: the peer here never
// reads, so the buffer fills, broadcasters hit the slow-consumer branch,
// and teardown races the remaining senders.
func TestBroadcast_ConcurrentWithTeardown(t *testing.T) {
	hub := NewHub(nil)
	conn := dialHub(t, hub, 7)
	waitForConnections(t, hub, 7, 1)

	payload := strings.Repeat("x", 64<<10)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 40; j++ {
				hub.Broadcast(7, Message{Event: "ping", Payload: payload})
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		conn.Close()
	}()
	wg.Wait()

	waitForConnections(t, hub, 7, 0)
}

func TestBroadcast_ConcurrentDisconnects(t *testing.T) {
	hub := NewHub(nil)

	for round := 0; round < 20; round++ {
		conn := dialHub(t, hub, 7)
		waitForConnections(t, hub, 7, 1)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				hub.Broadcast(7, Message{Event: "ping", Payload: "hi"})
			}()
		}
		conn.Close()
		wg.Wait()
		waitForConnections(t, hub, 7, 0)
	}
}
