package packet

// Chat channels.
const (
	ChannelLocal   = "local"
	ChannelGlobal  = "global"
	ChannelWhisper = "whisper"
	ChannelFaction = "faction"
)

type ChatPayload struct {
	Channel string `json:"channel"`
	From    string `json:"from"`
	To      string `json:"to,omitempty"`
	Text    string `json:"text"`
}

// CombatPayload describes one attack as seen by bystanders.
type CombatPayload struct {
	Attacker      string `json:"attacker"`
	Victim        string `json:"victim"`
	Action        string `json:"action"`
	Hit           bool   `json:"hit"`
	DamageBlocked int    `json:"damage_blocked"`
	DamageDealt   int    `json:"damage_dealt"`
	HealthLeft    int    `json:"health_left"`
	ArmorRuined   bool   `json:"armor_ruined,omitempty"`
	Ammo          string `json:"ammo,omitempty"`
	AmmoLeft      int    `json:"ammo_left,omitempty"`
}

type DeathPayload struct {
	Victim  string `json:"victim"`
	Killer  string `json:"killer,omitempty"`
	Cell    string `json:"cell"`
	Respawn string `json:"respawn"`
	Loot    int    `json:"loot"`
	Money   int    `json:"money"`
	Exp     int    `json:"exp,omitempty"`
}

// MovePayload is sent to the cells on both sides of a move.
type MovePayload struct {
	Name string `json:"name"`
	From string `json:"from"`
	To   string `json:"to"`
	How  string `json:"how"` // walk, flee, respawn, login, logout
}

type ItemView struct {
	Name     string `json:"name"`
	Template string `json:"template"`
	Count    int    `json:"count"`
	Slot     string `json:"slot,omitempty"`
}

type LookPayload struct {
	Cell       string     `json:"cell"`
	Map        string     `json:"map"`
	X          int        `json:"x"`
	Y          int        `json:"y"`
	Characters []string   `json:"characters"`
	NPCs       []string   `json:"npcs"`
	Items      []ItemView `json:"items"`
	Money      string     `json:"money,omitempty"`
}

type StatsPayload struct {
	Health    int `json:"health"`
	HealthMax int `json:"health_max"`
	Money     int `json:"money"`
	Bank      int `json:"bank"`
	Exp       int `json:"exp"`
	EnhPoints int `json:"enh_points"`
	Accuracy  int `json:"accuracy"`
}

type InventoryPayload struct {
	Items []ItemView   `json:"items"`
	Stats StatsPayload `json:"stats"`
	Money string       `json:"money"`
}

type WelcomePayload struct {
	Name  string       `json:"name"`
	Cell  string       `json:"cell"`
	Stats StatsPayload `json:"stats"`
}
