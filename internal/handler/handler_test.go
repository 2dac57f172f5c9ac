package handler

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/l1jgo/gridworld/internal/combat"
	"github.com/l1jgo/gridworld/internal/config"
	"github.com/l1jgo/gridworld/internal/data"
	"github.com/l1jgo/gridworld/internal/net/packet"
	"github.com/l1jgo/gridworld/internal/world"
)

// fixedRoller always rolls the same face, clamped to the die size.
type fixedRoller struct{ face int }

func (r fixedRoller) Roll(size int) (int, error) {
	return min(max(r.face, 1), size), nil
}

func (r fixedRoller) RollN(count, size int) ([]int, error) {
	out := make([]int, count)
	for i := range out {
		out[i], _ = r.Roll(size)
	}
	return out, nil
}

type alwaysHit struct{}

func (alwaysHit) HitChance(int) int { return 100 }
func (alwaysHit) KillExp(int) int   { return 4 }

var testItems = data.NewItemTable(
	data.ItemInfo{ID: "apple", Name: "Apple", Subtype: data.SubtypeConsumable, Stackable: true, UseEffect: "heal:5"},
	data.ItemInfo{ID: "sword", Name: "Sword", Subtype: data.SubtypeMelee, DamageMin: 2, DamageMax: 6, Durability: 40},
	data.ItemInfo{ID: "mail", Name: "Chain Mail", Subtype: data.SubtypeBody, DamageReduction: 5, Durability: 10},
)

var testMaps = data.NewMapTable(
	data.MapInfo{ID: "m", Width: 5, Height: 5, SpawnX: 0, SpawnY: 0},
)

type HandlerTestSuite struct {
	suite.Suite
	reg  *Registry
	deps *Deps
	tick uint64
	a, b *world.Character
}

func (s *HandlerTestSuite) SetupTest() {
	cfg := config.Default()
	ws := world.NewState(testMaps)
	s.tick = 0
	s.deps = &Deps{
		Config: cfg,
		Log:    zap.NewNop(),
		World:  ws,
		Items:  testItems,
		Combat: combat.NewResolver(ws, combat.Config{
			Roller:   fixedRoller{face: 2},
			Formulas: alwaysHit{},
			Items:    testItems,
			FistMin:  1,
			FistMax:  3,
		}),
		Now: func() uint64 { return s.tick },
	}
	s.reg = NewRegistry(zap.NewNop(), nil)
	RegisterAll(s.reg, cfg.Game)

	s.a = world.NewCharacter("u1", "Alice", world.Location{Map: "m", X: 2, Y: 2}, world.Stats{Health: 30, HealthMax: 30, Money: 10})
	s.b = world.NewCharacter("u2", "Bob", world.Location{Map: "m", X: 2, Y: 2}, world.Stats{Health: 20, HealthMax: 20, Money: 9})
	s.Require().NoError(ws.Upsert(s.a))
	s.Require().NoError(ws.Upsert(s.b))
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (s *HandlerTestSuite) run(c *world.Character, line string) []packet.Envelope {
	return s.reg.Dispatch(c, line, s.deps)
}

// rejected asserts a single sender-only error event and returns its text.
func (s *HandlerTestSuite) rejected(out []packet.Envelope) string {
	s.Require().Len(out, 1)
	s.Require().Equal(packet.TypeError, out[0].Type)
	s.Require().Nil(out[0].Meta)
	return out[0].Payload.(string)
}

func (s *HandlerTestSuite) ok(out []packet.Envelope) []packet.Envelope {
	for _, env := range out {
		s.Require().NotEqual(packet.TypeError, env.Type, "unexpected error: %v", env.Payload)
	}
	return out
}

func (s *HandlerTestSuite) give(c *world.Character, id string, n int) {
	_, err := world.GiveItem(c, testItems.Get(id), n)
	s.Require().NoError(err)
}

func (s *HandlerTestSuite) TestUnknownCommand() {
	s.Equal("Unknown command: /dance", s.rejected(s.run(s.a, "/dance")))
	s.Nil(s.run(s.a, "   "))
}

func (s *HandlerTestSuite) TestAimIsMutualAndRouted() {
	out := s.ok(s.run(s.a, "/aim bo"))
	s.Equal(s.b.ID, s.a.Target)
	s.True(s.b.IsTargetedBy(s.a.ID))

	s.Require().Len(out, 3)
	s.Nil(out[0].Meta)
	s.Equal("u2", out[1].Meta.Target)
	s.Equal("m_2_2", out[2].Meta.Target)
	s.ElementsMatch([]string{"u1", "u2"}, out[2].Meta.Ignore)
}

func (s *HandlerTestSuite) TestAimRejects() {
	s.Equal("Aim at whom? Usage: /aim <name>", s.rejected(s.run(s.a, "/aim")))
	s.Equal("There is no Zed here.", s.rejected(s.run(s.a, "/aim Zed")))
	s.True(s.a.Target.IsZero())
}

func (s *HandlerTestSuite) TestReleaseClearsBothSides() {
	s.ok(s.run(s.a, "/aim bob"))
	s.ok(s.run(s.a, "/release"))
	s.True(s.a.Target.IsZero())
	s.False(s.b.IsTargetedBy(s.a.ID))
	s.Equal("You aren't aiming at anyone.", s.rejected(s.run(s.a, "/release")))
}

func (s *HandlerTestSuite) TestPunchWithoutTarget() {
	s.Equal("You aren't aiming at anyone. Use /aim <name>.", s.rejected(s.run(s.a, "/punch")))
}

func (s *HandlerTestSuite) TestCooldownRejectsWithoutSideEffects() {
	s.ok(s.run(s.a, "/aim bob"))
	out := s.ok(s.run(s.a, "/punch"))
	s.Equal(18, s.b.Stats.Health)
	s.Equal(packet.TypeCombat, out[0].Type)
	s.Equal("m_2_2", out[0].Meta.Target)

	s.tick = 2
	s.Equal("attack is on cooldown (3 ticks)", s.rejected(s.run(s.a, "/strike")))
	s.Equal(18, s.b.Stats.Health)

	s.tick = 5
	s.ok(s.run(s.a, "/punch"))
	s.Equal(16, s.b.Stats.Health)
}

func (s *HandlerTestSuite) TestStrikeNeedsWeapon() {
	s.ok(s.run(s.a, "/aim bob"))
	s.Equal("You have no melee weapon equipped.", s.rejected(s.run(s.a, "/strike")))
}

func (s *HandlerTestSuite) TestKillProducesDeathEvents() {
	s.b.Stats.Health = 2
	s.ok(s.run(s.a, "/aim bob"))
	out := s.ok(s.run(s.a, "/punch"))

	s.Equal(world.Location{Map: "m", X: 0, Y: 0}, s.b.Location)
	s.Equal(20, s.b.Stats.Health)
	s.Equal(0, s.b.Stats.Money)
	s.Equal(4, s.a.Stats.Exp)
	s.Equal(9, s.deps.World.ListAt(world.Location{Map: "m", X: 2, Y: 2}).Money)

	var types []string
	for _, env := range out {
		types = append(types, env.Type)
	}
	s.Contains(types, packet.TypeDeath)
	s.Contains(types, packet.TypeArrive)
	s.Equal([]string{"u2"}, out[0].Meta.Ignore, "dead victim gets a personal copy")
}

func (s *HandlerTestSuite) TestPanicIsContained() {
	s.reg.Register("boom", func(*world.Character, []string, *Deps) ([]packet.Envelope, error) {
		panic("kaboom")
	})
	s.Equal("Something went wrong. Please try again.", s.rejected(s.run(s.a, "/boom")))
	out := s.ok(s.run(s.a, "/look"))
	s.Equal(packet.TypeLook, out[0].Type)
}

func (s *HandlerTestSuite) TestPickupScenario() {
	loc := s.a.Location
	sword := world.NewItem(testItems.Get("sword"), 0)
	fp := sword.Fingerprint
	s.deps.World.Grid().DropItems(loc, sword)

	s.ok(s.run(s.a, "/pickup sword"))
	s.Require().Len(s.a.Inventory, 1)
	s.Equal("Sword", s.a.Inventory[0].Name)
	s.NotEqual(fp, s.a.Inventory[0].Fingerprint)
	s.Empty(s.deps.World.ListAt(loc).Items)

	s.Equal("There is no sword here.", s.rejected(s.run(s.a, "/get sword")))
}

func (s *HandlerTestSuite) TestPickupGold() {
	s.deps.World.Grid().DropMoney(s.a.Location, 1200)
	s.ok(s.run(s.a, "/get gold"))
	s.Equal(1210, s.a.Stats.Money)
	s.Equal("There is no gold here.", s.rejected(s.run(s.a, "/get gold")))
}

func (s *HandlerTestSuite) TestDropStackDefaultsToWhole() {
	s.give(s.a, "apple", 5)
	s.ok(s.run(s.a, "/drop apple 2"))
	s.Equal(3, s.a.Inventory[0].Count())

	s.ok(s.run(s.a, "/drop apple"))
	s.Empty(s.a.Inventory)
	ground := s.deps.World.ListAt(s.a.Location).Items
	s.Require().Len(ground, 1)
	s.Equal(5, ground[0].Count())
}

func (s *HandlerTestSuite) TestDropEquippedRejected() {
	s.give(s.a, "sword", 1)
	s.ok(s.run(s.a, "/equip sword"))
	s.Equal("You must unequip Sword first.", s.rejected(s.run(s.a, "/drop sword")))
	s.ok(s.run(s.a, "/unequip melee"))
	s.ok(s.run(s.a, "/drop sword"))
	s.Empty(s.a.Inventory)
}

func (s *HandlerTestSuite) TestGiveMoneyAndItems() {
	s.ok(s.run(s.a, "/give bob 5"))
	s.Equal(5, s.a.Stats.Money)
	s.Equal(14, s.b.Stats.Money)
	s.Equal("You only have 5 gold coins.", s.rejected(s.run(s.a, "/give bob 50")))

	s.give(s.a, "apple", 3)
	s.ok(s.run(s.a, "/give bob apple 2"))
	s.Equal(1, s.a.Inventory[0].Count())
	s.Require().Len(s.b.Inventory, 1)
	s.Equal(2, s.b.Inventory[0].Count())
}

func (s *HandlerTestSuite) TestMoveBlockedWhileGridlocked() {
	s.ok(s.run(s.a, "/aim bob"))
	s.Equal("You are locked in combat. Use /release or /flee.", s.rejected(s.run(s.b, "/move n")))

	s.ok(s.run(s.a, "/release"))
	out := s.ok(s.run(s.b, "/go n"))
	s.Equal(world.Location{Map: "m", X: 2, Y: 1}, s.b.Location)
	s.Equal("m_2_2", out[0].Meta.Target)
	s.Equal("m_1_2", out[1].Meta.Target)
	s.Equal(packet.TypeLook, out[2].Type)
}

func (s *HandlerTestSuite) TestMoveOutOfBounds() {
	s.b.Location = world.Location{Map: "m", X: 0, Y: 0}
	s.Require().NoError(s.deps.World.Upsert(s.b))
	s.Equal("You can't go that way.", s.rejected(s.run(s.b, "/move w")))
}

func (s *HandlerTestSuite) TestFleeReleasesDropsAndMoves() {
	s.give(s.b, "apple", 3)
	s.ok(s.run(s.a, "/aim bob"))

	s.ok(s.run(s.b, "/flee e"))
	s.True(s.a.Target.IsZero())
	s.Empty(s.b.TargetedBy)
	s.Equal(world.Location{Map: "m", X: 3, Y: 2}, s.b.Location)
	s.Equal(1, s.b.Inventory[0].Count())

	ground := s.deps.World.ListAt(world.Location{Map: "m", X: 2, Y: 2}).Items
	s.Require().Len(ground, 1)
	s.Equal(2, ground[0].Count())

	s.Equal("You have nothing to flee from.", s.rejected(s.run(s.a, "/flee")))
}

func (s *HandlerTestSuite) TestUseHeals() {
	s.give(s.a, "apple", 2)
	s.a.Stats.Health = 20
	s.ok(s.run(s.a, "/use apple"))
	s.Equal(25, s.a.Stats.Health)
	s.Equal(1, s.a.Inventory[0].Count())
}

func (s *HandlerTestSuite) TestChat() {
	out := s.ok(s.run(s.a, "hello there"))
	s.Equal("m_2_2", out[0].Meta.Target)
	s.Equal(packet.ChatPayload{Channel: packet.ChannelLocal, From: "Alice", Text: "hello there"}, out[0].Payload)

	out = s.ok(s.run(s.a, "/g anyone?"))
	s.Equal(packet.TargetServer, out[0].Meta.Target)

	out = s.ok(s.run(s.a, "/w BOB psst"))
	s.Require().Len(out, 2)
	s.Equal("u2", out[1].Meta.Target)
	s.Equal("No one called Zed is online.", s.rejected(s.run(s.a, "/w Zed hi")))
}

func (s *HandlerTestSuite) TestFactionLifecycle() {
	s.ok(s.run(s.a, "/f create RED Red Hand"))
	f := s.deps.World.Factions().Lookup("red")
	s.Require().NotNil(f)
	s.Equal(f.ID, s.a.FactionID)

	s.ok(s.run(s.b, "/faction join red hand"))
	s.Equal(f.ID, s.b.FactionID)

	out := s.ok(s.run(s.b, "/f say rally"))
	s.Equal(f.ID, out[0].Meta.Target)

	s.ok(s.run(s.a, "/f leave"))
	s.Empty(s.b.FactionID, "leader leaving disbands")
	s.Equal("You are not in a faction.", s.rejected(s.run(s.b, "/f say hi")))
}

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Command
	}{
		{"/AIM Bob", Command{Name: "aim", Args: []string{"Bob"}, Raw: "/AIM Bob"}},
		{"  hi  all ", Command{Name: "say", Args: []string{"hi", "all"}, Raw: "hi  all"}},
		{"/", Command{Raw: "/"}},
		{"", Command{}},
	}
	for _, c := range cases {
		got := Parse(c.in)
		if got.Name != c.want.Name || got.Raw != c.want.Raw || len(got.Args) != len(c.want.Args) {
			t.Errorf("Parse(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestSplitAmount(t *testing.T) {
	phrase, n, ok := splitAmount([]string{"iron", "sword", "2"})
	if phrase != "iron sword" || n != 2 || !ok {
		t.Fatalf("got %q %d %v", phrase, n, ok)
	}
	phrase, _, ok = splitAmount([]string{"7"})
	if phrase != "7" || ok {
		t.Fatalf("single token is a phrase, got %q %v", phrase, ok)
	}
}

func (s *HandlerTestSuite) TestEnterEventsGreetAndAnnounce() {
	out := EnterEvents(s.deps.World, s.a, "login")
	s.Require().Len(out, 3)
	s.Equal(packet.TypeWelcome, out[0].Type)
	s.Nil(out[0].Meta)
	s.Equal(packet.TypeLook, out[1].Type)
	s.Equal(packet.TypeArrive, out[2].Type)
	s.Equal("m_2_2", out[2].Meta.Target)
	s.Equal([]string{"u1"}, out[2].Meta.Ignore)

	f, err := s.deps.World.Factions().Create("Wolves", "WLF", s.a)
	s.Require().NoError(err)
	out = EnterEvents(s.deps.World, s.a, "reconnect")
	s.Require().Len(out, 4)
	s.Equal(f.ID, out[3].Meta.Target)
}

func (s *HandlerTestSuite) TestLeaveEventsUseLastCell() {
	out := LeaveEvents(s.a, world.Location{Map: "m", X: 1, Y: 0})
	s.Require().Len(out, 1)
	s.Equal(packet.TypeDepart, out[0].Type)
	s.Equal("m_1_0", out[0].Meta.Target)
}
