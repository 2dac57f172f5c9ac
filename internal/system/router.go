package system

import (
	"github.com/l1jgo/gridworld/internal/net"
	"github.com/l1jgo/gridworld/internal/net/packet"
	"github.com/l1jgo/gridworld/internal/world"
)

// Router keeps hub rooms in step with the world and delivers envelopes.
// Every session sits in its personal room, the room of its character's
// cell and its faction room.
type Router struct {
	hub      *net.Hub
	sessions *net.SessionStore
	world    *world.State
}

func NewRouter(hub *net.Hub, sessions *net.SessionStore, ws *world.State) *Router {
	return &Router{hub: hub, sessions: sessions, world: ws}
}

// Sync re-subscribes every session to the rooms of its character.
func (r *Router) Sync() {
	for _, sess := range r.sessions.All() {
		c := r.world.Get(sess.CharID)
		if c == nil {
			r.hub.SetRooms(sess.ID())
			continue
		}
		r.hub.SetRooms(sess.ID(), c.Location.RoomKey(), c.FactionID)
	}
}

// Deliver syncs rooms, then routes envs. sender may be nil for events
// produced by the server itself; their unscoped envelopes are dropped.
func (r *Router) Deliver(sender *net.Session, envs []packet.Envelope) {
	if len(envs) == 0 {
		return
	}
	r.Sync()
	var p net.Peer
	if sender != nil {
		p = sender
	}
	r.hub.Route(p, envs)
}
