package net

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/gridworld/internal/auth"
	"github.com/l1jgo/gridworld/internal/config"
	"github.com/l1jgo/gridworld/internal/net/packet"
)

func testNetwork() config.NetworkConfig {
	return config.NetworkConfig{
		WSPath:          "/ws",
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		InQueueSize:     8,
		OutQueueSize:    8,
		MaxMessageSize:  4096,
		WriteTimeout:    time.Second,
		ReadTimeout:     5 * time.Second,
	}
}

func startServer(t *testing.T, rl config.RateLimitConfig) (*Server, string) {
	t.Helper()
	svc := auth.NewService(config.AuthConfig{Issuer: "test", TokenTTL: time.Hour, DevLogin: true})
	srv := NewServer(testNetwork(), rl, svc, nil, zap.NewNop())
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return srv, "ws" + strings.TrimPrefix(ts.URL, "http")
}

func acceptSession(t *testing.T, srv *Server) *Session {
	t.Helper()
	select {
	case sess := <-srv.NewSessions():
		t.Cleanup(sess.Close)
		return sess
	case <-time.After(2 * time.Second):
		t.Fatal("no session accepted")
		return nil
	}
}

func TestServerRejectsAnonymous(t *testing.T) {
	_, url := startServer(t, config.RateLimitConfig{})
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServerRoundTrip(t *testing.T) {
	srv, url := startServer(t, config.RateLimitConfig{})
	conn, _, err := websocket.DefaultDialer.Dial(url+"?user=u1&name=Alice", nil)
	require.NoError(t, err)
	defer conn.Close()

	sess := acceptSession(t, srv)
	assert.Equal(t, "u1", sess.UserID())
	assert.Equal(t, "Alice", sess.Name())

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"command","payload":"/look"}`)))
	select {
	case msg := <-sess.InQueue:
		cmd, err := msg.Command()
		require.NoError(t, err)
		assert.Equal(t, "/look", cmd)
	case <-time.After(2 * time.Second):
		t.Fatal("command not received")
	}

	data, err := packet.Text("hello").Encode()
	require.NoError(t, err)
	sess.Send(data)
	sess.FlushOutput()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, got, err := conn.ReadMessage()
	require.NoError(t, err)
	var env packet.Envelope
	require.NoError(t, json.Unmarshal(got, &env))
	assert.Equal(t, packet.TypeMessage, env.Type)
	assert.Equal(t, "hello", env.Payload)
}

func TestServerInvalidFrameBecomesInvalidMessage(t *testing.T) {
	srv, url := startServer(t, config.RateLimitConfig{})
	conn, _, err := websocket.DefaultDialer.Dial(url+"?user=u1&name=Alice", nil)
	require.NoError(t, err)
	defer conn.Close()
	sess := acceptSession(t, srv)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	select {
	case msg := <-sess.InQueue:
		assert.Equal(t, "invalid", msg.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("frame not received")
	}
}

func TestServerRateLimitDisconnects(t *testing.T) {
	srv, url := startServer(t, config.RateLimitConfig{Enabled: true, MessagesPerSecond: 2})
	conn, _, err := websocket.DefaultDialer.Dial(url+"?user=u1&name=Alice", nil)
	require.NoError(t, err)
	defer conn.Close()
	sess := acceptSession(t, srv)

	for range 6 {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`))
	}
	// Drain so the reader is never blocked on a full queue.
	deadline := time.After(3 * time.Second)
	for !sess.IsClosed() {
		select {
		case <-sess.InQueue:
		case <-deadline:
			t.Fatal("session not closed by rate limiter")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestServerShutdownRefuses(t *testing.T) {
	srv, url := startServer(t, config.RateLimitConfig{})
	srv.Shutdown()
	_, resp, err := websocket.DefaultDialer.Dial(url+"?user=u1&name=Alice", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestSessionFlushBackpressureCloses(t *testing.T) {
	cfg := testNetwork()
	cfg.OutQueueSize = 1
	sess := NewSession(nil, 1, auth.Identity{UserID: "u1", Name: "Alice"}, cfg, 0, zap.NewNop())
	sess.Send([]byte("a"))
	sess.Send([]byte("b"))
	sess.FlushOutput()
	assert.True(t, sess.IsClosed())

	sess.Send([]byte("c"))
	sess.FlushOutput()
	assert.Len(t, sess.OutQueue, 1)
}
