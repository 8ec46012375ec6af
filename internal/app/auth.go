package app

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/romnet/lobbyd/internal/domain"
	"github.com/romnet/lobbyd/internal/protocol"
)

// OpenPairing admits a fresh anonymous connection: it gets a random 128-bit
// pairing code, rendered as 32 hex digits for out-of-band display, a pending
// registry slot and an expiry timer. Returns the code.
func (c *Coordinator) OpenPairing(conn Conn) string {
	code := strings.ReplaceAll(uuid.NewString(), "-", "")
	c.Pending.Connect(code, conn)
	time.AfterFunc(c.opts.PairingTimeout, func() { c.ExpirePairing(code) })
	log.Info().Str("module", "app.auth").Str("code", code).Msg("pairing opened")
	return code
}

// RequestAuth (re)issues the login URL and pairing code to the anonymous
// connection. Repeatable while the code is still pending.
func (c *Coordinator) RequestAuth(code string) {
	if _, ok := c.Pending.Get(code); !ok {
		return
	}
	_ = c.Pending.Send(code, protocol.AuthURL{URL: c.opts.LoginURL})
	_ = c.Pending.Send(code, protocol.AuthID{Code: code})
}

// ExpirePairing discards an unconfirmed pairing entry and closes its
// connection. Idempotent: the disconnect path and a successful confirmation
// race this timer, only one winner performs teardown.
func (c *Coordinator) ExpirePairing(code string) {
	conn, ok := c.Pending.Remove(code)
	if !ok {
		return
	}
	conn.Close()
	log.Info().Str("module", "app.auth").Str("code", code).Msg("pairing expired")
}

// PairingClosed is the anonymous connection's disconnect path. When the
// connection was promoted by a confirmation in the meantime, it is cleaned
// up under its identity id instead.
func (c *Coordinator) PairingClosed(code string, conn Conn) {
	if c.Pending.Disconnect(code, conn) {
		return
	}
	if id, ok := c.Live.FindByConn(conn); ok {
		c.IdentityClosed(id, conn)
	}
}

// RegisterIdentity handles the external authentication event: it creates an
// unauthenticated session for the verified profile, instructs the identity
// out-of-band to submit its pairing code, and arms the discard timer for the
// case where no confirmation arrives.
func (c *Coordinator) RegisterIdentity(p domain.Profile) {
	c.mu.Lock()
	if s, ok := c.sessions[p.ID]; ok && s.State == domain.Authenticated {
		c.mu.Unlock()
		log.Info().Str("module", "app.auth").Str("identity", p.ID).Msg("identity already bound, register ignored")
		return
	}
	c.sessions[p.ID] = domain.NewIdentity(p)
	c.mu.Unlock()

	time.AfterFunc(c.opts.PairingTimeout, func() { c.expireIdentity(p.ID) })
	log.Info().Str("module", "app.auth").Str("identity", p.ID).Str("username", p.Username).Msg("identity registered, awaiting confirmation")
	c.notifier.PairingInstructions(p)
}

// expireIdentity discards a session that never confirmed its code.
func (c *Coordinator) expireIdentity(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[id]
	if !ok || s.State == domain.Authenticated {
		return
	}
	delete(c.sessions, id)
	log.Info().Str("module", "app.auth").Str("identity", id).Msg("unconfirmed identity discarded")
}

// ConfirmPairing correlates an externally confirmed code with its pending
// connection and promotes it: the connection learns its identity id, receives
// the success frame, and moves into the authenticated registry. At most one
// confirmation per code succeeds; malformed, unknown, consumed or expired
// codes fail without touching state.
func (c *Coordinator) ConfirmPairing(identityID, rawCode string) error {
	code, err := normalizeCode(rawCode)
	if err != nil {
		return domain.ErrPairingCodeInvalid
	}

	c.mu.Lock()
	if _, ok := c.Pending.Get(code); !ok {
		c.mu.Unlock()
		return domain.ErrPairingCodeUnknown
	}
	s, ok := c.sessions[identityID]
	if !ok {
		c.mu.Unlock()
		return domain.ErrIdentityUnknown
	}
	if s.State == domain.Authenticated {
		c.mu.Unlock()
		return domain.ErrAlreadyBound
	}
	conn, ok := c.Pending.Remove(code)
	if !ok {
		// The expiry timer won the race after the lookup above.
		c.mu.Unlock()
		return domain.ErrPairingCodeUnknown
	}
	s.State = domain.Authenticated
	c.mu.Unlock()

	// Down that exact connection, in order.
	_ = conn.TrySend([]byte(protocol.UserID{ID: identityID}.Encode()))
	_ = conn.TrySend([]byte(protocol.AuthSuccess{}.Encode()))
	c.Live.Connect(identityID, conn)

	log.Info().Str("module", "app.auth").Str("identity", identityID).Str("code", code).Msg("pairing confirmed")
	return nil
}

// AttachSession registers an authenticated client's connection under its
// identity id (a reconnect supersedes the promoted pairing connection) and
// requests the ROM catalog.
func (c *Coordinator) AttachSession(id string, conn Conn) error {
	c.mu.Lock()
	s, ok := c.sessions[id]
	if !ok {
		c.mu.Unlock()
		return domain.ErrIdentityUnknown
	}
	if s.State != domain.Authenticated {
		c.mu.Unlock()
		return domain.ErrNotAuthenticated
	}
	c.mu.Unlock()

	c.Live.Connect(id, conn)
	_ = c.Live.Send(id, protocol.GameListRequest{})
	return nil
}

// normalizeCode decodes the opaque pairing code back to its canonical hex
// rendering. Any form uuid.Parse accepts is tolerated.
func normalizeCode(raw string) (string, error) {
	u, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(u.String(), "-", ""), nil
}
