// Package domain contains the coordinator entities, just meta-data and
// invariant helpers, no transport or lifecycle logic.
package domain

type AuthState int

const (
	Unauthenticated AuthState = iota
	Authenticated
)

func (s AuthState) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Profile is the static attribute set delivered by the identity provider
// at authentication time. It never changes for the lifetime of a session.
type Profile struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Avatar        string `json:"avatar"`
	Locale        string `json:"locale"`
}

// Identity is the per-identity session record. Catalog, Ping, FrameDelay and
// PlayerSlot are written only from the identity's own connection; Lobby is
// written only by the lobby controller and disconnect reconciliation.
type Identity struct {
	Profile
	State AuthState

	// Catalog is the set of ROM names the client reported owning.
	Catalog []string

	// Lobby is the id of the lobby this identity belongs to, "" when none.
	// An identity belongs to at most one lobby.
	Lobby string

	// Transient per-connection telemetry, nil until reported.
	Ping       *int
	FrameDelay *int
	PlayerSlot *int
}

func NewIdentity(p Profile) *Identity {
	return &Identity{Profile: p}
}

func (id *Identity) HasRom(rom string) bool {
	for _, r := range id.Catalog {
		if r == rom {
			return true
		}
	}
	return false
}

// TelemetryComplete reports whether both link metrics have arrived.
func (id *Identity) TelemetryComplete() bool {
	return id.Ping != nil && id.FrameDelay != nil
}
