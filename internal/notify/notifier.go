// Package notify is the boundary to the external chat platform. The
// coordinator only issues side-effect calls through it; delivery details
// (direct messages, rooms, threads) live on the other side.
package notify

import (
	"github.com/rs/zerolog/log"

	"github.com/romnet/lobbyd/internal/domain"
)

// RosterEntry is one member's line in a readiness summary.
type RosterEntry struct {
	Username   string `json:"username"`
	PlayerSlot int    `json:"player_slot"`
	Ping       int    `json:"ping"`
	FrameDelay int    `json:"frame_delay"`
}

// Summary is published once per ready roster: every member reported both
// ping and frame delay.
type Summary struct {
	LobbyID string        `json:"lobby_id"`
	RomName string        `json:"rom_name"`
	Roster  []RosterEntry `json:"roster"`
}

type Notifier interface {
	// PairingInstructions tells a freshly registered identity, over the
	// out-of-band channel, to submit the pairing code shown by its client.
	PairingInstructions(identity domain.Profile)

	// LobbyOpened asks the collaborator to establish a room for the lobby.
	LobbyOpened(owner domain.Profile, lobbyID, romName string)

	MemberJoined(member domain.Profile, lobbyID string)
	MemberLeft(member domain.Profile, lobbyID string)

	// LobbyClosed tears down the lobby's room.
	LobbyClosed(lobbyID string)

	// RosterReady publishes the readiness summary for display.
	RosterReady(s Summary)
}

// LogNotifier is the default collaborator: it only logs. The real chat
// platform adapter replaces it at wiring time.
type LogNotifier struct{}

func (LogNotifier) PairingInstructions(identity domain.Profile) {
	log.Info().Str("module", "notify").Str("identity", identity.ID).Str("username", identity.Username).Msg("pairing instructions sent")
}

func (LogNotifier) LobbyOpened(owner domain.Profile, lobbyID, romName string) {
	log.Info().Str("module", "notify").Str("lobby", lobbyID).Str("rom", romName).Str("owner", owner.Username).Msg("lobby opened")
}

func (LogNotifier) MemberJoined(member domain.Profile, lobbyID string) {
	log.Info().Str("module", "notify").Str("lobby", lobbyID).Str("username", member.Username).Msg("member joined")
}

func (LogNotifier) MemberLeft(member domain.Profile, lobbyID string) {
	log.Info().Str("module", "notify").Str("lobby", lobbyID).Str("username", member.Username).Msg("member left")
}

func (LogNotifier) LobbyClosed(lobbyID string) {
	log.Info().Str("module", "notify").Str("lobby", lobbyID).Msg("lobby closed")
}

func (LogNotifier) RosterReady(s Summary) {
	log.Info().Str("module", "notify").Str("lobby", s.LobbyID).Str("rom", s.RomName).Int("members", len(s.Roster)).Msg("roster ready")
}
