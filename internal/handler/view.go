package handler

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/l1jgo/gridworld/internal/net/packet"
	"github.com/l1jgo/gridworld/internal/world"
)

// formatMoney renders a coin amount the way players see it.
func formatMoney(n int) string {
	if n == 1 {
		return "1 gold coin"
	}
	return humanize.Comma(int64(n)) + " gold coins"
}

func statsPayload(c *world.Character) packet.StatsPayload {
	return packet.StatsPayload{
		Health:    c.Stats.Health,
		HealthMax: c.Stats.HealthMax,
		Money:     c.Stats.Money,
		Bank:      c.Stats.Bank,
		Exp:       c.Stats.Exp,
		EnhPoints: c.Stats.EnhPoints,
		Accuracy:  c.Stats.Accuracy,
	}
}

func itemViews(items []*world.Item) []packet.ItemView {
	out := make([]packet.ItemView, 0, len(items))
	for _, it := range items {
		out = append(out, packet.ItemView{
			Name:     it.Name,
			Template: it.TemplateID,
			Count:    it.Count(),
			Slot:     string(it.EquippedSlot),
		})
	}
	return out
}

func names(cs []*world.Character) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Name)
	}
	return out
}

// lookAt describes a cell for the sender.
func lookAt(ws *world.State, loc world.Location) packet.Envelope {
	occ := ws.ListAt(loc)
	p := packet.LookPayload{
		Cell:       loc.RoomKey(),
		Map:        loc.Map,
		X:          loc.X,
		Y:          loc.Y,
		Characters: names(occ.Characters),
		NPCs:       names(occ.NPCs),
		Items:      itemViews(occ.Items),
	}
	if occ.Money > 0 {
		p.Money = formatMoney(occ.Money)
	}
	return packet.ToSender(packet.TypeLook, p)
}

// toPlayer addresses c's personal room. NPCs have none, so the envelope is
// dropped by the caller via ok=false.
func toPlayer(c *world.Character, typ string, payload any) (packet.Envelope, bool) {
	if c == nil || c.IsNPC() || c.UserID == "" {
		return packet.Envelope{}, false
	}
	return packet.ToRoom(c.UserID, typ, payload), true
}

// tellf appends a personal text message for c when c is a player.
func tellf(out []packet.Envelope, c *world.Character, format string, args ...any) []packet.Envelope {
	if env, ok := toPlayer(c, packet.TypeMessage, fmt.Sprintf(format, args...)); ok {
		return append(out, env)
	}
	return out
}

// roomf appends a text message for everyone in loc except the ignored
// characters.
func roomf(out []packet.Envelope, loc world.Location, ignore []*world.Character, format string, args ...any) []packet.Envelope {
	return append(out, packet.ToRoom(loc.RoomKey(), packet.TypeMessage, fmt.Sprintf(format, args...), userIDs(ignore...)...))
}

func userIDs(cs ...*world.Character) []string {
	var out []string
	for _, c := range cs {
		if c != nil && c.UserID != "" {
			out = append(out, c.UserID)
		}
	}
	return out
}

// statsTo sends c its refreshed stats when c is a player.
func statsTo(out []packet.Envelope, c *world.Character) []packet.Envelope {
	if env, ok := toPlayer(c, packet.TypeStats, statsPayload(c)); ok {
		return append(out, env)
	}
	return out
}
