package app

import (
	"github.com/rs/zerolog/log"

	"github.com/romnet/lobbyd/internal/domain"
	"github.com/romnet/lobbyd/internal/protocol"
)

// Lobby commands are invoked by the external command sink. Every command
// validates in a fixed order (prerequisites and ownership, then capacity,
// then catalog) so the reported failure cause is deterministic, mutates
// under the coordinator lock, and delivers frames after release.

func (c *Coordinator) authedLocked(id string) (*domain.Identity, error) {
	s, ok := c.sessions[id]
	if !ok || s.State != domain.Authenticated {
		return nil, domain.ErrNotAuthenticated
	}
	return s, nil
}

// CreateLobby opens a new lobby owned by id for romName.
func (c *Coordinator) CreateLobby(id, romName string) error {
	c.mu.Lock()
	s, err := c.authedLocked(id)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if s.Lobby != "" {
		c.mu.Unlock()
		return domain.ErrAlreadyInLobby
	}
	if !s.HasRom(romName) {
		c.mu.Unlock()
		return domain.ErrRomNotOwned
	}

	l := domain.NewLobby(id, romName)
	c.lobbies[l.ID] = l
	s.Lobby = l.ID
	profile := s.Profile
	c.mu.Unlock()

	log.Info().Str("module", "app.lobby").Str("lobby", l.ID).Str("rom", romName).Msg("lobby created")
	c.flush([]frameTo{{c.Live, id, protocol.CreateGame{Rom: romName}}})
	c.notifier.LobbyOpened(profile, l.ID, romName)
	return nil
}

// JoinLobby appends id to the lobby owned by ownerID.
func (c *Coordinator) JoinLobby(id, ownerID string) error {
	c.mu.Lock()
	s, err := c.authedLocked(id)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if s.Lobby != "" {
		c.mu.Unlock()
		return domain.ErrAlreadyInLobby
	}
	l, ok := c.lobbies[ownerID]
	if !ok {
		c.mu.Unlock()
		return domain.ErrLobbyNotFound
	}
	if l.State != domain.LobbyIdle {
		c.mu.Unlock()
		return domain.ErrLobbyPlaying
	}
	if l.Full() {
		c.mu.Unlock()
		return domain.ErrLobbyFull
	}
	if !s.HasRom(l.RomName) {
		c.mu.Unlock()
		return domain.ErrRomNotOwned
	}

	l.Roster = append(l.Roster, id)
	l.SummaryPublished = false
	s.Lobby = l.ID
	profile := s.Profile
	addr := l.RelayAddress
	rom := l.RomName
	c.mu.Unlock()

	log.Info().Str("module", "app.lobby").Str("lobby", l.ID).Str("identity", id).Msg("member joined")
	c.flush([]frameTo{
		{c.Live, id, protocol.JoinGame{Addr: addr}},
		{c.Live, id, protocol.RomName{Rom: rom}},
	})
	c.notifier.MemberJoined(profile, l.ID)
	return nil
}

// LeaveLobby removes id from its lobby. An owner leaving destroys the whole
// lobby: every other member's lobby reference is cleared and notified.
// The leaver's own frame goes out first, its lobby reference is cleared last.
func (c *Coordinator) LeaveLobby(id string) error {
	c.mu.Lock()
	s, err := c.authedLocked(id)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if s.Lobby == "" {
		c.mu.Unlock()
		return domain.ErrNoLobby
	}
	lobbyID := s.Lobby
	out := []frameTo{{c.Live, id, protocol.LeaveGame{}}}
	more, notices := c.detachFromLobbyLocked(s)
	out = append(out, more...)
	c.mu.Unlock()

	log.Info().Str("module", "app.lobby").Str("lobby", lobbyID).Str("identity", id).Msg("member left")
	c.flush(out)
	runAll(notices)
	return nil
}

// StartLobby moves the lobby to playing. Owner only.
func (c *Coordinator) StartLobby(id string) error {
	c.mu.Lock()
	s, err := c.authedLocked(id)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if s.Lobby == "" {
		c.mu.Unlock()
		return domain.ErrNoLobby
	}
	l := c.lobbies[s.Lobby]
	if l.OwnerID != id {
		c.mu.Unlock()
		return domain.ErrNotOwner
	}
	if l.State == domain.LobbyPlaying {
		c.mu.Unlock()
		return domain.ErrLobbyPlaying
	}
	l.State = domain.LobbyPlaying
	notices := c.readyNoticeLocked(l)
	c.mu.Unlock()

	log.Info().Str("module", "app.lobby").Str("lobby", l.ID).Msg("lobby started")
	c.flush([]frameTo{{c.Live, id, protocol.StartGame{}}})
	runAll(notices)
	return nil
}

// DropLobby is the symmetric reverse of StartLobby.
func (c *Coordinator) DropLobby(id string) error {
	c.mu.Lock()
	s, err := c.authedLocked(id)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if s.Lobby == "" {
		c.mu.Unlock()
		return domain.ErrNoLobby
	}
	l := c.lobbies[s.Lobby]
	if l.OwnerID != id {
		c.mu.Unlock()
		return domain.ErrNotOwner
	}
	if l.State != domain.LobbyPlaying {
		c.mu.Unlock()
		return domain.ErrLobbyNotPlaying
	}
	l.State = domain.LobbyIdle
	username := s.Username
	c.mu.Unlock()

	log.Info().Str("module", "app.lobby").Str("lobby", l.ID).Msg("lobby dropped back to idle")
	c.flush([]frameTo{{c.Live, id, protocol.DropGame{Username: username}}})
	return nil
}
