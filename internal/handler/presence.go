package handler

import (
	"github.com/l1jgo/gridworld/internal/net/packet"
	"github.com/l1jgo/gridworld/internal/world"
)

// EnterEvents greets a player who just entered (or re-entered) the world
// and announces them to the cell.
func EnterEvents(ws *world.State, c *world.Character, how string) []packet.Envelope {
	out := []packet.Envelope{
		packet.ToSender(packet.TypeWelcome, packet.WelcomePayload{
			Name:  c.Name,
			Cell:  c.Location.RoomKey(),
			Stats: statsPayload(c),
		}),
		lookAt(ws, c.Location),
		packet.ToRoom(c.Location.RoomKey(), packet.TypeArrive, packet.MovePayload{
			Name: c.Name,
			To:   c.Location.RoomKey(),
			How:  how,
		}, userIDs(c)...),
	}
	if f := ws.Factions().Get(c.FactionID); f != nil {
		out = append(out, packet.ToRoom(f.ID, packet.TypeChat, packet.ChatPayload{
			Channel: packet.ChannelFaction,
			Text:    c.Name + " is online.",
		}, userIDs(c)...))
	}
	return out
}

// LeaveEvents announces a player leaving the world from cell loc.
func LeaveEvents(c *world.Character, loc world.Location) []packet.Envelope {
	return []packet.Envelope{
		packet.ToRoom(loc.RoomKey(), packet.TypeDepart, packet.MovePayload{
			Name: c.Name,
			From: loc.RoomKey(),
			How:  "logout",
		}),
	}
}
