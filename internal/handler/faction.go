package handler

import (
	"fmt"
	"strings"

	"github.com/l1jgo/gridworld/internal/errors"
	"github.com/l1jgo/gridworld/internal/net/packet"
	"github.com/l1jgo/gridworld/internal/world"
)

const factionUsage = "Usage: /faction create <tag> <name> | join <name> | leave | say <message>"

// HandleFaction processes /faction|/f and its subcommands. Without a
// subcommand it shows the actor's faction.
func HandleFaction(actor *world.Character, args []string, d *Deps) ([]packet.Envelope, error) {
	m := d.World.Factions()
	if len(args) == 0 {
		f := m.Get(actor.FactionID)
		if f == nil {
			return []packet.Envelope{packet.Text("You are not in a faction. " + factionUsage)}, nil
		}
		return []packet.Envelope{packet.Text(fmt.Sprintf("[%s] %s: %d online.", f.Tag, f.Name, f.OnlineCount()))}, nil
	}

	switch strings.ToLower(args[0]) {
	case "create":
		if len(args) < 3 {
			return nil, errors.Validation(factionUsage)
		}
		f, err := m.Create(strings.Join(args[2:], " "), args[1], actor)
		if err != nil {
			return nil, err
		}
		return []packet.Envelope{
			packet.Text(fmt.Sprintf("You found [%s] %s.", f.Tag, f.Name)),
			packet.ToServer(packet.TypeMessage, fmt.Sprintf("%s founds the faction [%s] %s.", actor.Name, f.Tag, f.Name), actor.UserID),
		}, nil

	case "join":
		if len(args) < 2 {
			return nil, errors.Validation(factionUsage)
		}
		if m.Get(actor.FactionID) != nil {
			return nil, errors.Validation("Leave your current faction first.")
		}
		key := strings.Join(args[1:], " ")
		f := m.Lookup(key)
		if f == nil {
			return nil, errors.NotFoundf("There is no faction called %s.", key)
		}
		m.Join(f, actor)
		return []packet.Envelope{
			packet.Text(fmt.Sprintf("You join [%s] %s.", f.Tag, f.Name)),
			packet.ToRoom(f.ID, packet.TypeMessage, actor.Name+" joins the faction.", actor.UserID),
		}, nil

	case "leave":
		f, lost := m.Leave(actor, d.World.Get)
		if f == nil {
			return nil, errors.Validation("You are not in a faction.")
		}
		out := []packet.Envelope{packet.Text(fmt.Sprintf("You leave [%s] %s.", f.Tag, f.Name))}
		if lost == nil && f.LeaderID != actor.UserID {
			return append(out, packet.ToRoom(f.ID, packet.TypeMessage, actor.Name+" leaves the faction.")), nil
		}
		for _, member := range lost {
			out = tellf(out, member, "%s disbanded [%s] %s.", actor.Name, f.Tag, f.Name)
		}
		return out, nil

	case "say":
		f := m.Get(actor.FactionID)
		if f == nil {
			return nil, errors.Validation("You are not in a faction.")
		}
		text := strings.Join(args[1:], " ")
		if text == "" {
			return nil, errors.Validation("Say what?")
		}
		return []packet.Envelope{packet.ToRoom(f.ID, packet.TypeChat, packet.ChatPayload{
			Channel: packet.ChannelFaction,
			From:    actor.Name,
			To:      f.Tag,
			Text:    text,
		})}, nil
	}
	return nil, errors.Validation(factionUsage)
}
