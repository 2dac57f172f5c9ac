package net

import (
	"net/http"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/l1jgo/gridworld/internal/auth"
	"github.com/l1jgo/gridworld/internal/config"
	"github.com/l1jgo/gridworld/internal/metrics"
)

// Authenticator resolves the identity behind an upgrade request.
type Authenticator interface {
	FromRequest(r *http.Request) (auth.Identity, error)
}

// Server upgrades authenticated HTTP requests to websocket Sessions.
// New sessions are handed to the game loop through a channel.
type Server struct {
	upgrader  websocket.Upgrader
	auth      Authenticator
	cfg       config.NetworkConfig
	msgPerSec int
	nextID    atomic.Uint64
	newConns  chan *Session
	closed    atomic.Bool
	metrics   *metrics.Metrics
	log       *zap.Logger
}

func NewServer(cfg config.NetworkConfig, rl config.RateLimitConfig, a Authenticator, m *metrics.Metrics, log *zap.Logger) *Server {
	perSec := 0
	if rl.Enabled {
		perSec = rl.MessagesPerSecond
	}
	return &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			// Browser clients are served from other origins; identity is the token.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		auth:      a,
		cfg:       cfg,
		msgPerSec: perSec,
		newConns:  make(chan *Session, 64),
		metrics:   m,
		log:       log,
	}
}

// ServeHTTP authenticates the request, upgrades it and queues the session.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.closed.Load() {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}
	who, err := s.auth.FromRequest(r)
	if err != nil {
		s.log.Debug("連線驗證失敗", zap.String("ip", r.RemoteAddr), zap.Error(err))
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		s.log.Debug("websocket 升級失敗", zap.Error(err))
		return
	}

	id := s.nextID.Add(1)
	sess := NewSession(conn, id, who, s.cfg, s.msgPerSec, s.log)
	sess.Start()
	s.metrics.ConnectionAccepted()

	s.log.Info("玩家連線",
		zap.Uint64("session", id),
		zap.String("user", who.UserID),
		zap.String("name", who.Name),
		zap.String("ip", sess.IP),
	)

	select {
	case s.newConns <- sess:
	default:
		s.log.Warn("連線佇列已滿，拒絕新連線")
		sess.Close()
	}
}

// NewSessions returns the channel of newly connected sessions.
func (s *Server) NewSessions() <-chan *Session {
	return s.newConns
}

// Shutdown stops accepting new connections. Live sessions are closed by
// the game loop after their characters are saved.
func (s *Server) Shutdown() {
	s.closed.Store(true)
}
