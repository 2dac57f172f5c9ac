package net

import (
	"slices"

	"go.uber.org/zap"

	"github.com/l1jgo/gridworld/internal/net/packet"
)

// Peer is a connection the Hub can deliver frames to.
type Peer interface {
	ID() uint64
	UserID() string
	Send(data []byte)
}

// Hub keeps room subscriptions and fans envelopes out to peers.
// Every peer is subscribed to its personal room (its user id).
// Game loop only.
type Hub struct {
	peers  map[uint64]Peer
	rooms  map[string]map[uint64]Peer
	joined map[uint64][]string
	log    *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		peers:  make(map[uint64]Peer),
		rooms:  make(map[string]map[uint64]Peer),
		joined: make(map[uint64][]string),
		log:    log,
	}
}

// Attach registers a peer and joins it to its personal room.
func (h *Hub) Attach(p Peer) {
	h.peers[p.ID()] = p
	h.SetRooms(p.ID())
}

// Detach removes a peer from every room.
func (h *Hub) Detach(id uint64) {
	for _, room := range h.joined[id] {
		h.leave(id, room)
	}
	delete(h.joined, id)
	delete(h.peers, id)
}

// SetRooms replaces the peer's subscriptions with rooms plus its personal
// room. Empty names are skipped.
func (h *Hub) SetRooms(id uint64, rooms ...string) {
	p, ok := h.peers[id]
	if !ok {
		return
	}
	want := []string{p.UserID()}
	for _, r := range rooms {
		if r != "" && !slices.Contains(want, r) {
			want = append(want, r)
		}
	}

	for _, room := range h.joined[id] {
		if !slices.Contains(want, room) {
			h.leave(id, room)
		}
	}
	for _, room := range want {
		members := h.rooms[room]
		if members == nil {
			members = make(map[uint64]Peer)
			h.rooms[room] = members
		}
		members[id] = p
	}
	h.joined[id] = want
}

func (h *Hub) leave(id uint64, room string) {
	members := h.rooms[room]
	delete(members, id)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Rooms returns the peer's subscriptions, sorted.
func (h *Hub) Rooms(id uint64) []string {
	out := slices.Clone(h.joined[id])
	slices.Sort(out)
	return out
}

// Members returns the number of peers subscribed to room.
func (h *Hub) Members(room string) int { return len(h.rooms[room]) }

// Len returns the number of attached peers.
func (h *Hub) Len() int { return len(h.peers) }

// Route delivers envelopes produced on behalf of sender. Unscoped
// envelopes go to the sender alone; sender may be nil for server-side
// events. Returns the number of frames buffered.
func (h *Hub) Route(sender Peer, envs []packet.Envelope) int {
	n := 0
	for _, env := range envs {
		data, err := env.Encode()
		if err != nil {
			h.log.Error("訊息編碼失敗", zap.String("type", env.Type), zap.Error(err))
			continue
		}

		if !env.Scoped() {
			if sender != nil {
				sender.Send(data)
				n++
			}
			continue
		}

		targets := h.rooms[env.Meta.Target]
		if env.Meta.Target == packet.TargetServer {
			targets = h.peers
		}
		for _, p := range targets {
			if env.Ignores(p.UserID()) {
				continue
			}
			p.Send(data)
			n++
		}
	}
	return n
}
