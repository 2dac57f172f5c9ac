package net

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/l1jgo/gridworld/internal/auth"
	"github.com/l1jgo/gridworld/internal/config"
	"github.com/l1jgo/gridworld/internal/core/ecs"
	"github.com/l1jgo/gridworld/internal/net/packet"
)

// Session represents a single client connection. Network I/O runs in
// dedicated goroutines; game state is accessed only from the game loop.
type Session struct {
	id       uint64
	identity auth.Identity
	IP       string

	conn *websocket.Conn
	cfg  config.NetworkConfig

	InQueue  chan packet.ClientMessage // game loop reads client messages from here
	OutQueue chan []byte               // writer goroutine reads from here

	// CharID is the character this session drives. Game loop only.
	CharID ecs.EntityID

	outBuf [][]byte // buffered frames, flushed by OutputSystem (game loop only)

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	// Per-second message rate limiter (readLoop goroutine only, no lock needed)
	msgPerSec  int   // max messages/sec (0 = unlimited)
	msgCount   int   // messages received this second
	msgResetAt int64 // unix second of last counter reset

	log *zap.Logger
}

func NewSession(conn *websocket.Conn, id uint64, who auth.Identity, cfg config.NetworkConfig, msgPerSec int, log *zap.Logger) *Session {
	s := &Session{
		id:        id,
		identity:  who,
		conn:      conn,
		cfg:       cfg,
		InQueue:   make(chan packet.ClientMessage, cfg.InQueueSize),
		OutQueue:  make(chan []byte, cfg.OutQueueSize),
		closeCh:   make(chan struct{}),
		msgPerSec: msgPerSec,
		log:       log.With(zap.Uint64("session", id), zap.String("user", who.UserID)),
	}
	if conn != nil {
		s.IP = conn.RemoteAddr().String()
	}
	return s
}

func (s *Session) ID() uint64     { return s.id }
func (s *Session) UserID() string { return s.identity.UserID }
func (s *Session) Name() string   { return s.identity.Name }

// Start launches the reader and writer goroutines.
func (s *Session) Start() {
	go s.readLoop()
	go s.writeLoop()
}

// Send buffers a frame for sending. The frame is not written until
// FlushOutput is called by OutputSystem.
// Called only from the game loop goroutine, so outBuf needs no lock.
func (s *Session) Send(data []byte) {
	if s.closed.Load() {
		return
	}
	s.outBuf = append(s.outBuf, data)
}

// FlushOutput drains the output buffer to OutQueue for the writeLoop goroutine.
// Non-blocking: if OutQueue is full, the session is disconnected (backpressure).
func (s *Session) FlushOutput() {
	for _, data := range s.outBuf {
		select {
		case s.OutQueue <- data:
		default:
			s.log.Warn("輸出佇列已滿，斷開慢速連線")
			s.Close()
			s.outBuf = s.outBuf[:0]
			return
		}
	}
	s.outBuf = s.outBuf[:0]
}

// Close gracefully shuts down the session.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.closeCh)
		if s.conn != nil {
			s.conn.Close()
		}
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// readLoop runs in its own goroutine. It reads frames from the websocket,
// decodes them, and pushes them onto InQueue for the game loop to consume.
func (s *Session) readLoop() {
	defer s.Close()

	s.conn.SetReadLimit(s.cfg.MaxMessageSize)
	s.extendDeadline()
	s.conn.SetPongHandler(func(string) error {
		s.extendDeadline()
		return nil
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if !s.closed.Load() && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("讀取錯誤", zap.Error(err))
			}
			return
		}
		s.extendDeadline()

		// Per-second message rate limiter
		if s.msgPerSec > 0 {
			now := time.Now().Unix()
			if now != s.msgResetAt {
				s.msgCount = 0
				s.msgResetAt = now
			}
			s.msgCount++
			if s.msgCount > s.msgPerSec {
				s.log.Warn("訊息速率超限，斷開連線", zap.Int("mps", s.msgCount))
				return
			}
		}

		msg, err := packet.Decode(data)
		if err != nil {
			s.log.Debug("無法解析的訊息", zap.Error(err))
			msg = packet.ClientMessage{Type: "invalid"}
		}

		// Block until InQueue has space or session closes. Dropping commands
		// would reorder a player's intent; blocking only stalls this client.
		select {
		case s.InQueue <- msg:
		case <-s.closeCh:
			return
		}
	}
}

func (s *Session) extendDeadline() {
	if s.cfg.ReadTimeout > 0 {
		s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	}
}

// writeLoop runs in its own goroutine. It writes frames from OutQueue and
// keeps the connection alive with pings.
func (s *Session) writeLoop() {
	defer s.Close()

	pingEvery := s.cfg.ReadTimeout * 9 / 10
	if pingEvery <= 0 {
		pingEvery = time.Minute
	}
	ticker := time.NewTicker(pingEvery)
	defer ticker.Stop()

	for {
		select {
		case data := <-s.OutQueue:
			if !s.write(websocket.TextMessage, data) {
				return
			}
		case <-ticker.C:
			if !s.write(websocket.PingMessage, nil) {
				return
			}
		case <-s.closeCh:
			s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return
		}
	}
}

// write 寫入單一 frame。成功回傳 true。
func (s *Session) write(kind int, data []byte) bool {
	s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	if err := s.conn.WriteMessage(kind, data); err != nil {
		if !s.closed.Load() {
			s.log.Debug("寫入錯誤", zap.Error(err))
		}
		return false
	}
	return true
}
