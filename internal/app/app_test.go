package app

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/romnet/lobbyd/internal/domain"
	"github.com/romnet/lobbyd/internal/notify"
	"github.com/romnet/lobbyd/internal/protocol"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []string
	closed bool
}

func (f *fakeConn) TrySend(frame []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("connection closed")
	}
	f.frames = append(f.frames, string(frame))
	return nil
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeConn) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.frames...)
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type fakeNotifier struct {
	mu        sync.Mutex
	pairing   []string
	opened    []string
	joined    []string
	left      []string
	torndown  []string
	summaries []notify.Summary
}

func (n *fakeNotifier) PairingInstructions(p domain.Profile) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pairing = append(n.pairing, p.ID)
}

func (n *fakeNotifier) LobbyOpened(owner domain.Profile, lobbyID, romName string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.opened = append(n.opened, lobbyID)
}

func (n *fakeNotifier) MemberJoined(member domain.Profile, lobbyID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.joined = append(n.joined, member.ID)
}

func (n *fakeNotifier) MemberLeft(member domain.Profile, lobbyID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.left = append(n.left, member.ID)
}

func (n *fakeNotifier) LobbyClosed(lobbyID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.torndown = append(n.torndown, lobbyID)
}

func (n *fakeNotifier) RosterReady(s notify.Summary) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.summaries = append(n.summaries, s)
}

func (n *fakeNotifier) readyCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.summaries)
}

func newTestCoordinator() (*Coordinator, *fakeNotifier) {
	n := &fakeNotifier{}
	// Long timeout: expiry in tests is always triggered explicitly.
	c := NewCoordinator(Options{LoginURL: "https://example.com/authorize", PairingTimeout: time.Minute}, n)
	return c, n
}

// authedIdentity walks an identity through the full pairing hand-off and
// attaches a live connection, optionally reporting a ROM catalog.
func authedIdentity(t *testing.T, c *Coordinator, id, name string, roms ...string) *fakeConn {
	t.Helper()
	c.RegisterIdentity(domain.Profile{ID: id, Username: name})
	pre := &fakeConn{}
	code := c.OpenPairing(pre)
	if err := c.ConfirmPairing(id, code); err != nil {
		t.Fatalf("ConfirmPairing(%s): %v", id, err)
	}
	conn := &fakeConn{}
	if err := c.AttachSession(id, conn); err != nil {
		t.Fatalf("AttachSession(%s): %v", id, err)
	}
	if len(roms) > 0 {
		c.Dispatch(id, protocol.GameList{Roms: roms})
	}
	return conn
}

func codeOf(t *testing.T, err error) domain.Code {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error")
	}
	return domain.CodeOf(err)
}
