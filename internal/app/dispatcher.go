package app

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/romnet/lobbyd/internal/protocol"
)

// HandleFrame parses and applies one inbound line from an authenticated
// connection. Protocol errors drop the frame and keep the connection open;
// unknown tags are ignored.
func (c *Coordinator) HandleFrame(id string, line string) {
	f, err := protocol.ParseInbound(line)
	if err != nil {
		if errors.Is(err, protocol.ErrBadPayload) {
			log.Warn().Str("module", "app.dispatcher").Str("identity", id).Str("frame", line).Msg("malformed frame dropped")
		}
		return
	}
	c.Dispatch(id, f)
}

// Dispatch mutates session/lobby state from client-reported telemetry. After
// any update the owning lobby is checked for readiness: once every roster
// member reported both ping and frame delay, the roster summary goes out
// exactly once.
func (c *Coordinator) Dispatch(id string, f protocol.Inbound) {
	if _, ok := f.(protocol.Logout); ok {
		c.Live.Remove(id)
		log.Info().Str("module", "app.dispatcher").Str("identity", id).Msg("logout")
		return
	}

	c.mu.Lock()
	s, ok := c.sessions[id]
	if !ok {
		c.mu.Unlock()
		return
	}

	var notices []func()
	switch f := f.(type) {
	case protocol.GameList:
		s.Catalog = f.Roms
		log.Info().Str("module", "app.dispatcher").Str("identity", id).Int("roms", len(f.Roms)).Msg("catalog updated")
	case protocol.ServerIP:
		l, ok := c.lobbies[s.Lobby]
		if !ok {
			c.mu.Unlock()
			log.Warn().Str("module", "app.dispatcher").Str("identity", id).Msg("relay address without a lobby, frame dropped")
			return
		}
		l.RelayAddress = f.Addr
	case protocol.PlayerNumber:
		slot := f.Slot
		s.PlayerSlot = &slot
	case protocol.FrameDelay:
		frames := f.Frames
		s.FrameDelay = &frames
	case protocol.UserPing:
		millis := f.Millis
		s.Ping = &millis
	case protocol.StartAuth:
		// Only meaningful on a pre-auth connection.
		c.mu.Unlock()
		return
	}

	if l, ok := c.lobbies[s.Lobby]; ok {
		notices = c.readyNoticeLocked(l)
	}
	c.mu.Unlock()
	runAll(notices)
}
