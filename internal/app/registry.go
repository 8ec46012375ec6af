package app

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/romnet/lobbyd/internal/protocol"
)

// Conn abstracts a duplex transport endpoint. Owned by the adapter; the
// adapter must Close() it. TrySend never blocks.
type Conn interface {
	TrySend(frame []byte) error
	Close()
}

var ErrNotConnected = errors.New("no connection registered for id")

// Registry maps an identifier to exactly one live connection. Two instances
// exist: one keyed by pairing code (pre-auth), one keyed by identity id.
type Registry struct {
	name string

	mu    sync.RWMutex
	conns map[string]Conn
}

func NewRegistry(name string) *Registry {
	return &Registry{name: name, conns: make(map[string]Conn)}
}

// Connect registers c for id, silently superseding any prior entry.
// A reconnect therefore wins over a stale registration.
func (r *Registry) Connect(id string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = c
	log.Info().Str("module", "app.registry").Str("registry", r.name).Str("id", id).Msg("connected")
}

// Disconnect removes the entry for id only while it still holds c, so a
// stale disconnect never evicts a newer connection that reused the id.
// Reports whether an entry was removed.
func (r *Registry) Disconnect(id string, c Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.conns[id]; !ok || cur != c {
		return false
	}
	delete(r.conns, id)
	log.Info().Str("module", "app.registry").Str("registry", r.name).Str("id", id).Msg("disconnected")
	return true
}

// Remove unconditionally drops the entry for id, returning the connection.
func (r *Registry) Remove(id string) (Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[id]
	if ok {
		delete(r.conns, id)
	}
	return c, ok
}

func (r *Registry) Get(id string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[id]
	return c, ok
}

// Send delivers one frame to id, failing fast when nothing is registered.
// Delivery per id is FIFO; the connection's single writer provides that.
func (r *Registry) Send(id string, f protocol.Outbound) error {
	r.mu.RLock()
	c, ok := r.conns[id]
	r.mu.RUnlock()
	if !ok {
		return ErrNotConnected
	}
	if err := c.TrySend([]byte(f.Encode())); err != nil {
		log.Warn().Err(err).Str("module", "app.registry").Str("registry", r.name).Str("id", id).Msg("send failed")
		return err
	}
	return nil
}

// Broadcast delivers one frame to every registered connection.
func (r *Registry) Broadcast(f protocol.Outbound) {
	r.mu.RLock()
	conns := make([]Conn, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	r.mu.RUnlock()
	data := []byte(f.Encode())
	for _, c := range conns {
		_ = c.TrySend(data)
	}
}

// FindByConn reverse-looks-up the id a connection is registered under.
func (r *Registry) FindByConn(c Conn) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, cur := range r.conns {
		if cur == c {
			return id, true
		}
	}
	return "", false
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
