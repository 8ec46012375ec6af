// Package app holds the coordinator core: connection registries, the pairing
// hand-off, the inbound frame dispatcher and the lobby controller. All
// session and lobby state lives here, in memory, scoped to process lifetime.
package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/romnet/lobbyd/internal/domain"
	"github.com/romnet/lobbyd/internal/notify"
	"github.com/romnet/lobbyd/internal/protocol"
)

type Options struct {
	// LoginURL is sent verbatim in AUTH URL frames.
	LoginURL string

	// PairingTimeout bounds how long an unconfirmed pairing code and its
	// pending identity session stay alive.
	PairingTimeout time.Duration
}

// Coordinator owns all shared mutable state. One mutex funnels every
// session/lobby mutation; cross-entity invariants are restored before the
// lock is released, so no observer sees a half-updated roster. Transport
// sends never happen under the lock: operations collect frames into an
// outbox and deliver after unlocking.
type Coordinator struct {
	opts     Options
	notifier notify.Notifier

	// Pending holds anonymous connections keyed by pairing code,
	// Live authenticated connections keyed by identity id.
	Pending *Registry
	Live    *Registry

	mu       sync.Mutex
	sessions map[string]*domain.Identity
	lobbies  map[string]*domain.Lobby
}

func NewCoordinator(opts Options, n notify.Notifier) *Coordinator {
	if opts.PairingTimeout <= 0 {
		opts.PairingTimeout = 90 * time.Second
	}
	return &Coordinator{
		opts:     opts,
		notifier: n,
		Pending:  NewRegistry("pending"),
		Live:     NewRegistry("live"),
		sessions: make(map[string]*domain.Identity),
		lobbies:  make(map[string]*domain.Lobby),
	}
}

// frameTo is one deferred transport delivery, computed under the lock and
// flushed after release.
type frameTo struct {
	reg   *Registry
	id    string
	frame protocol.Outbound
}

func (c *Coordinator) flush(out []frameTo) {
	for _, ft := range out {
		// Fails fast when the peer is gone; teardown paths must still
		// run to completion for the remaining members.
		_ = ft.reg.Send(ft.id, ft.frame)
	}
}

func runAll(notices []func()) {
	for _, n := range notices {
		n()
	}
}

// Session returns a copy of the identity session, for read-only surfaces.
func (c *Coordinator) Session(id string) (domain.Identity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[id]
	if !ok {
		return domain.Identity{}, false
	}
	return *s, true
}

// LobbySnapshot returns a copy of a lobby, for read-only surfaces.
func (c *Coordinator) LobbySnapshot(id string) (domain.Lobby, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.lobbies[id]
	if !ok {
		return domain.Lobby{}, false
	}
	cp := *l
	cp.Roster = append([]string(nil), l.Roster...)
	return cp, true
}

// Lobbies lists all live lobbies.
func (c *Coordinator) Lobbies() []domain.Lobby {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Lobby, 0, len(c.lobbies))
	for _, l := range c.lobbies {
		cp := *l
		cp.Roster = append([]string(nil), l.Roster...)
		out = append(out, cp)
	}
	return out
}

// IdentityClosed reconciles state after an authenticated transport is lost.
// A stale close (the id was reused by a newer connection) is a no-op; a real
// loss deregisters the connection, dissolves lobby membership and destroys
// the session. Runs to completion even though the owner's own connection is
// already gone.
func (c *Coordinator) IdentityClosed(id string, conn Conn) {
	removed := c.Live.Disconnect(id, conn)
	if !removed {
		if _, ok := c.Live.Get(id); ok {
			// A newer connection took over the id; the session lives on.
			return
		}
	}

	c.mu.Lock()
	s, ok := c.sessions[id]
	var out []frameTo
	var notices []func()
	if ok {
		out, notices = c.detachFromLobbyLocked(s)
		delete(c.sessions, id)
	}
	c.mu.Unlock()

	if !ok {
		return
	}
	log.Info().Str("module", "app.coordinator").Str("identity", id).Msg("session destroyed on transport loss")
	c.flush(out)
	runAll(notices)
}

// detachFromLobbyLocked removes s from whichever lobby it belongs to. When s
// owns the lobby the whole lobby is torn down: every other member's lobby
// reference is cleared and each gets a leave frame plus a notification.
func (c *Coordinator) detachFromLobbyLocked(s *domain.Identity) ([]frameTo, []func()) {
	if s.Lobby == "" {
		return nil, nil
	}
	l, ok := c.lobbies[s.Lobby]
	if !ok {
		s.Lobby = ""
		return nil, nil
	}

	var out []frameTo
	var notices []func()
	n := c.notifier

	if l.OwnerID == s.ID {
		for _, memberID := range l.Roster {
			if memberID == s.ID {
				continue
			}
			if m, ok := c.sessions[memberID]; ok {
				m.Lobby = ""
				profile := m.Profile
				lobbyID := l.ID
				out = append(out, frameTo{c.Live, memberID, protocol.LeaveGame{}})
				notices = append(notices, func() { n.MemberLeft(profile, lobbyID) })
			}
		}
		lobbyID := l.ID
		delete(c.lobbies, l.ID)
		notices = append(notices, func() { n.LobbyClosed(lobbyID) })
	} else {
		l.RemoveMember(s.ID)
		l.SummaryPublished = false
		profile := s.Profile
		lobbyID := l.ID
		notices = append(notices, func() { n.MemberLeft(profile, lobbyID) })
	}
	s.Lobby = ""
	return out, notices
}

// readyNoticeLocked arms the one-shot roster-ready notification when every
// member of l has reported both ping and frame delay.
func (c *Coordinator) readyNoticeLocked(l *domain.Lobby) []func() {
	if l.SummaryPublished {
		return nil
	}
	summary := notify.Summary{LobbyID: l.ID, RomName: l.RomName}
	for _, memberID := range l.Roster {
		m, ok := c.sessions[memberID]
		if !ok || !m.TelemetryComplete() {
			return nil
		}
		entry := notify.RosterEntry{
			Username:   m.Username,
			Ping:       *m.Ping,
			FrameDelay: *m.FrameDelay,
		}
		if m.PlayerSlot != nil {
			entry.PlayerSlot = *m.PlayerSlot
		}
		summary.Roster = append(summary.Roster, entry)
	}
	l.SummaryPublished = true
	n := c.notifier
	return []func(){func() { n.RosterReady(summary) }}
}
