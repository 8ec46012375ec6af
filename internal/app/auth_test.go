package app

import (
	"strings"
	"testing"

	"github.com/romnet/lobbyd/internal/domain"
)

func TestPairingConfirmPromotesConnection(t *testing.T) {
	c, n := newTestCoordinator()
	c.RegisterIdentity(domain.Profile{ID: "81000", Username: "aki"})

	pre := &fakeConn{}
	code := c.OpenPairing(pre)
	if len(code) != 32 {
		t.Fatalf("pairing code %q is not 32 hex digits", code)
	}

	if err := c.ConfirmPairing("81000", code); err != nil {
		t.Fatalf("ConfirmPairing: %v", err)
	}

	got := pre.sent()
	if len(got) != 2 || got[0] != "USER ID81000" || got[1] != "AUTH SUCCESS" {
		t.Fatalf("promotion frames = %v", got)
	}
	s, ok := c.Session("81000")
	if !ok || s.State != domain.Authenticated {
		t.Fatalf("session not authenticated: %+v", s)
	}
	if _, ok := c.Live.Get("81000"); !ok {
		t.Fatalf("promoted connection not in the authenticated registry")
	}
	if _, ok := c.Pending.Get(code); ok {
		t.Fatalf("pairing entry survived confirmation")
	}
	if len(n.pairing) != 1 {
		t.Fatalf("pairing instructions sent %d times", len(n.pairing))
	}
}

func TestPairingCodeConfirmsAtMostOnce(t *testing.T) {
	c, _ := newTestCoordinator()
	c.RegisterIdentity(domain.Profile{ID: "1", Username: "aki"})
	c.RegisterIdentity(domain.Profile{ID: "2", Username: "rin"})

	code := c.OpenPairing(&fakeConn{})
	if err := c.ConfirmPairing("1", code); err != nil {
		t.Fatalf("first confirmation: %v", err)
	}
	if got := codeOf(t, c.ConfirmPairing("2", code)); got != domain.CodePairingCodeUnknown {
		t.Fatalf("second confirmation failed with %s, want %s", got, domain.CodePairingCodeUnknown)
	}
}

func TestConfirmMalformedCode(t *testing.T) {
	c, _ := newTestCoordinator()
	c.RegisterIdentity(domain.Profile{ID: "1", Username: "aki"})

	for _, raw := range []string{"", "zzzz", "12345"} {
		if got := codeOf(t, c.ConfirmPairing("1", raw)); got != domain.CodePairingCodeInvalid {
			t.Fatalf("ConfirmPairing(%q) failed with %s, want %s", raw, got, domain.CodePairingCodeInvalid)
		}
	}
}

func TestConfirmUnknownCode(t *testing.T) {
	c, _ := newTestCoordinator()
	c.RegisterIdentity(domain.Profile{ID: "1", Username: "aki"})

	// Well-formed but never issued.
	if got := codeOf(t, c.ConfirmPairing("1", strings.Repeat("ab", 16))); got != domain.CodePairingCodeUnknown {
		t.Fatalf("unknown code failed with %s, want %s", got, domain.CodePairingCodeUnknown)
	}
}

func TestConfirmForUnknownIdentity(t *testing.T) {
	c, _ := newTestCoordinator()
	code := c.OpenPairing(&fakeConn{})
	if got := codeOf(t, c.ConfirmPairing("ghost", code)); got != domain.CodeIdentityUnknown {
		t.Fatalf("failed with %s, want %s", got, domain.CodeIdentityUnknown)
	}
	// The failed confirmation must not consume the code.
	if _, ok := c.Pending.Get(code); !ok {
		t.Fatalf("failed confirmation consumed the pairing entry")
	}
}

func TestExpiredPairingCannotConfirm(t *testing.T) {
	c, _ := newTestCoordinator()
	c.RegisterIdentity(domain.Profile{ID: "1", Username: "aki"})

	pre := &fakeConn{}
	code := c.OpenPairing(pre)
	c.ExpirePairing(code)

	if !pre.isClosed() {
		t.Fatalf("expired pairing connection left open")
	}
	if got := codeOf(t, c.ConfirmPairing("1", code)); got != domain.CodePairingCodeUnknown {
		t.Fatalf("confirmation after expiry failed with %s, want %s", got, domain.CodePairingCodeUnknown)
	}
	// Expiry teardown is idempotent against the disconnect path.
	c.ExpirePairing(code)
	c.PairingClosed(code, pre)
}

func TestUnconfirmedIdentityDiscarded(t *testing.T) {
	c, _ := newTestCoordinator()
	c.RegisterIdentity(domain.Profile{ID: "1", Username: "aki"})

	c.expireIdentity("1")
	if _, ok := c.Session("1"); ok {
		t.Fatalf("unconfirmed session survived expiry")
	}

	code := c.OpenPairing(&fakeConn{})
	if got := codeOf(t, c.ConfirmPairing("1", code)); got != domain.CodeIdentityUnknown {
		t.Fatalf("confirmation after discard failed with %s, want %s", got, domain.CodeIdentityUnknown)
	}
}

func TestExpiryKeepsAuthenticatedIdentity(t *testing.T) {
	c, _ := newTestCoordinator()
	authedIdentity(t, c, "1", "aki")

	c.expireIdentity("1")
	if _, ok := c.Session("1"); !ok {
		t.Fatalf("expiry discarded an authenticated session")
	}
}

func TestRequestAuthReissues(t *testing.T) {
	c, _ := newTestCoordinator()
	pre := &fakeConn{}
	code := c.OpenPairing(pre)

	c.RequestAuth(code)
	c.RequestAuth(code)

	got := pre.sent()
	if len(got) != 4 {
		t.Fatalf("expected two URL/code pairs, got %v", got)
	}
	if got[0] != "AUTH URLhttps://example.com/authorize" || got[1] != "AUTH ID"+code {
		t.Fatalf("first reissue = %v", got[:2])
	}

	// After expiry the request is a no-op.
	c.ExpirePairing(code)
	c.RequestAuth(code)
	if len(pre.sent()) != 4 {
		t.Fatalf("reissue after expiry still delivered frames")
	}
}

func TestAttachSessionRequiresAuthentication(t *testing.T) {
	c, _ := newTestCoordinator()
	if got := codeOf(t, c.AttachSession("ghost", &fakeConn{})); got != domain.CodeIdentityUnknown {
		t.Fatalf("attach unknown failed with %s", got)
	}

	c.RegisterIdentity(domain.Profile{ID: "1", Username: "aki"})
	if got := codeOf(t, c.AttachSession("1", &fakeConn{})); got != domain.CodeNotAuthenticated {
		t.Fatalf("attach unauthenticated failed with %s", got)
	}
}

func TestAttachSessionRequestsCatalog(t *testing.T) {
	c, _ := newTestCoordinator()
	conn := authedIdentity(t, c, "1", "aki")

	got := conn.sent()
	if len(got) != 1 || got[0] != "GAME LIST" {
		t.Fatalf("greeting frames = %v", got)
	}
}
