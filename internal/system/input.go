package system

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/gridworld/internal/config"
	"github.com/l1jgo/gridworld/internal/core/event"
	coresys "github.com/l1jgo/gridworld/internal/core/system"
	"github.com/l1jgo/gridworld/internal/data"
	"github.com/l1jgo/gridworld/internal/handler"
	"github.com/l1jgo/gridworld/internal/net"
	"github.com/l1jgo/gridworld/internal/net/packet"
	"github.com/l1jgo/gridworld/internal/persist"
	"github.com/l1jgo/gridworld/internal/world"
)

// SessionSource hands over freshly accepted sessions. *net.Server
// satisfies it.
type SessionSource interface {
	NewSessions() <-chan *net.Session
}

// InputSystem accepts sessions, applies persistence completions (logins
// and teardowns), and drains command queues through the handler
// registry. Phase 0 (Input).
//
// Login and logout are asynchronous. A session waits in pending until its
// record is loaded. A departing character stays in the world until its
// final save completes; leaving maps the user to the session whose
// teardown is in flight, so a reconnect (which deletes the entry) turns
// the late completion into a no-op.
type InputSystem struct {
	source     SessionSource
	sessions   *net.SessionStore
	hub        *net.Hub
	router     *Router
	registry   *handler.Registry
	deps       *handler.Deps
	storage    Storage
	bus        *event.Bus
	items      *data.ItemTable
	game       config.GameConfig
	maxPerTick int
	log        *zap.Logger

	pending map[uint64]*net.Session // session id → awaiting load
	leaving map[string]uint64       // user id → session id being torn down
}

func NewInputSystem(
	source SessionSource,
	sessions *net.SessionStore,
	hub *net.Hub,
	router *Router,
	registry *handler.Registry,
	deps *handler.Deps,
	storage Storage,
	bus *event.Bus,
	maxPerTick int,
	log *zap.Logger,
) *InputSystem {
	if maxPerTick <= 0 {
		maxPerTick = 1
	}
	return &InputSystem{
		source:     source,
		sessions:   sessions,
		hub:        hub,
		router:     router,
		registry:   registry,
		deps:       deps,
		storage:    storage,
		bus:        bus,
		items:      deps.Items,
		game:       deps.Config.Game,
		maxPerTick: maxPerTick,
		log:        log,
		pending:    make(map[uint64]*net.Session),
		leaving:    make(map[string]uint64),
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	// Accept new sessions
	for {
		select {
		case sess := <-s.source.NewSessions():
			s.accept(sess)
		default:
			goto doneNew
		}
	}
doneNew:

	s.applyCompletions()

	for _, sess := range s.sessions.All() {
		if sess.IsClosed() {
			// Commands sent just before the disconnect still run.
			s.drain(sess)
			sess.FlushOutput()
			s.disconnect(sess)
			continue
		}
		s.drain(sess)
	}

	// 提前 flush：讓 Phase 0 產生的訊息立即進入 OutQueue，
	// OutputSystem 會再 flush 之後 Phase 產生的剩餘訊息。
	s.sessions.ForEach(func(sess *net.Session) {
		sess.FlushOutput()
	})
}

// PendingLogins returns the number of sessions waiting for their record.
func (s *InputSystem) PendingLogins() int { return len(s.pending) }

// Leaving returns the number of characters whose final save is in flight.
func (s *InputSystem) Leaving() int { return len(s.leaving) }

func (s *InputSystem) drain(sess *net.Session) {
	for i := 0; i < s.maxPerTick; i++ {
		select {
		case msg := <-sess.InQueue:
			s.handle(sess, msg)
		default:
			return
		}
	}
}

func (s *InputSystem) handle(sess *net.Session, msg packet.ClientMessage) {
	switch msg.Type {
	case packet.ClientPing:
		s.router.Deliver(sess, []packet.Envelope{packet.ToSender(packet.TypePong, nil)})
	case packet.ClientCommand:
		line, err := msg.Command()
		if err != nil {
			s.router.Deliver(sess, []packet.Envelope{packet.Error("Malformed command.")})
			return
		}
		c := s.deps.World.Get(sess.CharID)
		if c == nil {
			s.router.Deliver(sess, []packet.Envelope{packet.Error("Your character is still loading.")})
			return
		}
		out := s.registry.Dispatch(c, line, s.deps)
		// PersistenceSystem only saves dirty characters.
		c.Dirty = true
		s.router.Deliver(sess, out)
	default:
		s.router.Deliver(sess, []packet.Envelope{packet.Error(fmt.Sprintf("Unknown message type %q.", msg.Type))})
	}
}

// ==================== 登入 ====================

func (s *InputSystem) accept(sess *net.Session) {
	s.sessions.Add(sess)
	s.hub.Attach(sess)

	if live := s.deps.World.ByUser(sess.UserID()); live != nil {
		s.reattach(sess, live)
		return
	}
	s.pending[sess.ID()] = sess
	if !s.storage.Load(sess.UserID(), sess.ID()) {
		delete(s.pending, sess.ID())
		s.refuse(sess, "The server is busy. Please try again.")
	}
}

// refuse tells the client why and closes it. The closed session is
// cleaned up on the next tick.
func (s *InputSystem) refuse(sess *net.Session, msg string) {
	s.router.Deliver(sess, []packet.Envelope{packet.Error(msg)})
	sess.FlushOutput()
	sess.Close()
}

// reattach binds sess to a character that is still in the world: a
// reconnect during teardown, or a second login that takes over.
func (s *InputSystem) reattach(sess *net.Session, c *world.Character) {
	human, ok := c.Control.(*world.Human)
	if !ok {
		s.refuse(sess, "That character cannot be played.")
		return
	}
	if old := s.sessions.Get(human.SessionID); old != nil && old != sess {
		s.router.Deliver(old, []packet.Envelope{packet.Error("You logged in from another connection.")})
		old.FlushOutput()
		old.CharID = 0
		old.Close()
	}
	human.SessionID = sess.ID()
	sess.CharID = c.ID
	delete(s.leaving, c.UserID)

	s.router.Deliver(sess, handler.EnterEvents(s.deps.World, c, "reconnect"))
	s.log.Info("玩家重新連線",
		zap.String("user", c.UserID),
		zap.String("name", c.Name),
		zap.Uint64("session", sess.ID()),
	)
}

func (s *InputSystem) applyCompletions() {
	for {
		select {
		case done := <-s.storage.Completions():
			switch done.Kind {
			case persist.JobLoad:
				s.finishLogin(done)
			case persist.JobSave:
				s.finishTeardown(done)
			}
		default:
			return
		}
	}
}

func (s *InputSystem) finishLogin(done persist.Completion) {
	sess := s.pending[done.Token]
	delete(s.pending, done.Token)
	if sess == nil || sess.IsClosed() {
		return // left before the load finished
	}
	if done.Err != nil {
		s.log.Error("角色載入失敗", zap.String("user", done.UserID), zap.Error(done.Err))
		s.refuse(sess, "Your character could not be loaded. Please try again later.")
		return
	}
	if live := s.deps.World.ByUser(sess.UserID()); live != nil {
		s.reattach(sess, live)
		return
	}

	c := s.materialize(sess, done.Record)
	c.Control = &world.Human{SessionID: sess.ID()}
	if err := s.deps.World.Upsert(c); err != nil {
		s.log.Error("角色加入世界失敗", zap.String("user", c.UserID), zap.Error(err))
		s.refuse(sess, "Your character could not enter the world.")
		return
	}
	sess.CharID = c.ID
	event.Emit(s.bus, event.PlayerEntered{EntityID: c.ID, UserID: c.UserID})

	s.router.Deliver(sess, handler.EnterEvents(s.deps.World, c, "login"))
	s.log.Info("玩家進入世界",
		zap.String("user", c.UserID),
		zap.String("name", c.Name),
		zap.String("cell", c.Location.RoomKey()),
	)
}

// materialize builds the character for a login. A user without a record
// starts fresh at the start map's spawn point; a stored location that no
// longer exists is moved there too.
func (s *InputSystem) materialize(sess *net.Session, rec *persist.Record) *world.Character {
	spawn := s.deps.World.SpawnPoint(s.game.StartMap)
	if rec == nil {
		c := world.NewCharacter(sess.UserID(), sess.Name(), spawn, world.Stats{
			Health:    s.game.StartHealth,
			HealthMax: s.game.StartHealth,
			Money:     s.game.StartMoney,
			Accuracy:  s.game.StartAccuracy,
		})
		c.Dirty = true
		return c
	}
	c := persist.Materialize(rec, s.items, s.log)
	if !s.deps.World.Grid().InBounds(c.Location) {
		s.log.Warn("儲存位置無效，移至出生點",
			zap.String("user", c.UserID), zap.String("cell", c.Location.RoomKey()))
		c.Location = spawn
		c.Dirty = true
	}
	return c
}

// ==================== 斷線 ====================

func (s *InputSystem) disconnect(sess *net.Session) {
	s.sessions.Remove(sess.ID())
	s.hub.Detach(sess.ID())
	delete(s.pending, sess.ID())

	c := s.deps.World.Get(sess.CharID)
	if c == nil {
		return
	}
	human, _ := c.Control.(*world.Human)
	if human == nil || human.SessionID != sess.ID() {
		return // taken over by a newer session
	}
	human.SessionID = 0
	s.deps.World.ReleaseAll(c)

	s.leaving[c.UserID] = sess.ID()
	c.Dirty = false
	if !s.storage.Save(persist.FromCharacter(c), sess.ID()) {
		// Spooled directly; no completion will follow.
		delete(s.leaving, c.UserID)
		s.removeCharacter(c)
	}
	s.log.Info("玩家斷線",
		zap.String("user", c.UserID),
		zap.String("name", c.Name),
		zap.Uint64("session", sess.ID()),
	)
}

func (s *InputSystem) finishTeardown(done persist.Completion) {
	if done.Token == 0 {
		return // autosave
	}
	if s.leaving[done.UserID] != done.Token {
		return // reconnected, or a duplicate completion
	}
	delete(s.leaving, done.UserID)
	if c := s.deps.World.ByUser(done.UserID); c != nil {
		s.removeCharacter(c)
	}
}

func (s *InputSystem) removeCharacter(c *world.Character) {
	loc := c.Location
	id := c.ID
	if !s.deps.World.Remove(id) {
		return
	}
	event.Emit(s.bus, event.PlayerLeft{EntityID: id, UserID: c.UserID})
	s.router.Deliver(nil, handler.LeaveEvents(c, loc))
	s.log.Info("玩家離開世界", zap.String("user", c.UserID), zap.String("name", c.Name))
}
