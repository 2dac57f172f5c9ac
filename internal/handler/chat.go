package handler

import (
	"strings"

	"github.com/l1jgo/gridworld/internal/errors"
	"github.com/l1jgo/gridworld/internal/net/packet"
	"github.com/l1jgo/gridworld/internal/world"
)

// HandleSay processes /say|/s and plain text: everyone in the cell hears it.
func HandleSay(actor *world.Character, args []string, _ *Deps) ([]packet.Envelope, error) {
	text := strings.Join(args, " ")
	if text == "" {
		return nil, errors.Validation("Say what?")
	}
	return []packet.Envelope{packet.ToRoom(actor.Location.RoomKey(), packet.TypeChat, packet.ChatPayload{
		Channel: packet.ChannelLocal,
		From:    actor.Name,
		Text:    text,
	})}, nil
}

// HandleGlobal processes /global|/g: everyone online hears it.
func HandleGlobal(actor *world.Character, args []string, _ *Deps) ([]packet.Envelope, error) {
	text := strings.Join(args, " ")
	if text == "" {
		return nil, errors.Validation("Say what?")
	}
	return []packet.Envelope{packet.ToServer(packet.TypeChat, packet.ChatPayload{
		Channel: packet.ChannelGlobal,
		From:    actor.Name,
		Text:    text,
	})}, nil
}

// HandleWhisper processes /whisper|/w <name> <msg>.
func HandleWhisper(actor *world.Character, args []string, d *Deps) ([]packet.Envelope, error) {
	if len(args) < 2 {
		return nil, errors.Validation("Usage: /whisper <name> <message>")
	}
	target := d.World.ByName(args[0])
	if target == nil {
		return nil, errors.NotFoundf("No one called %s is online.", args[0])
	}
	if target.ID == actor.ID {
		return nil, errors.Validation("You mutter to yourself.")
	}
	p := packet.ChatPayload{
		Channel: packet.ChannelWhisper,
		From:    actor.Name,
		To:      target.Name,
		Text:    strings.Join(args[1:], " "),
	}
	return []packet.Envelope{
		packet.ToSender(packet.TypeChat, p),
		packet.ToRoom(target.UserID, packet.TypeChat, p),
	}, nil
}
