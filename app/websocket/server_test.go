package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"TakeawayPos/app/models"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func httpHandler(s *Server) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

func TestBroadcastTicketReachesConnectedDisplay(t *testing.T) {
	s := NewServer(":0")
	go s.run()
	t.Cleanup(s.Stop)

	httpSrv := httptest.NewServer(httpHandler(s))
	t.Cleanup(httpSrv.Close)

	wsURL := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/ws"
	conn, _, err := gws.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// Wait for the hub to register the display before broadcasting
	require.Eventually(t, func() bool {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return len(s.clients) == 1
	}, time.Second, 10*time.Millisecond)

	s.BroadcastTicket(42, []models.CartItem{
		{ID: "a", Name: "Paneer Tikka", Quantity: 2, Department: "Grill"},
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var message Message
	require.NoError(t, json.Unmarshal(data, &message))
	assert.Equal(t, TypeTicketNew, message.Type)

	var payload TicketPayload
	require.NoError(t, json.Unmarshal(message.Data, &payload))
	assert.Equal(t, 42, payload.KOTNumber)
	assert.Equal(t, "Takeaway", payload.OrderType)
	require.Len(t, payload.Items, 1)
	assert.Equal(t, 2, payload.Items[0].Quantity)
}

func TestStopIsIdempotentAndUnblocksBroadcast(t *testing.T) {
	s := NewServer(":0")
	go s.run()

	s.Stop()
	s.Stop()

	// Broadcasting after shutdown returns instead of blocking forever
	done := make(chan struct{})
	go func() {
		s.BroadcastTicket(1, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked after server stop")
	}
}

func TestStopDisconnectsDisplays(t *testing.T) {
	s := NewServer(":0")
	go s.run()

	httpSrv := httptest.NewServer(httpHandler(s))
	t.Cleanup(httpSrv.Close)

	wsURL := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/ws"
	conn, _, err := gws.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return len(s.clients) == 1
	}, time.Second, 10*time.Millisecond)

	s.Stop()

	s.mu.RLock()
	remaining := len(s.clients)
	s.mu.RUnlock()
	assert.Zero(t, remaining)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}
