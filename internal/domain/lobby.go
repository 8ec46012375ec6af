package domain

// LobbyCapacity is fixed: a netplay session holds at most four players.
const LobbyCapacity = 4

type LobbyState int

const (
	LobbyIdle LobbyState = iota
	LobbyPlaying
)

func (s LobbyState) String() string {
	if s == LobbyPlaying {
		return "playing"
	}
	return "idle"
}

// Lobby is a matchmaking session. Its id equals the owner's identity id, so
// one identity owns at most one lobby at a time. Roster holds identity ids in
// join order with the owner always first.
type Lobby struct {
	ID           string
	OwnerID      string
	RomName      string
	Roster       []string
	RelayAddress string
	State        LobbyState

	// SummaryPublished guards the roster-ready notification: once the
	// summary for the current roster went out, further telemetry updates
	// must not re-trigger it.
	SummaryPublished bool
}

func NewLobby(ownerID, romName string) *Lobby {
	return &Lobby{
		ID:      ownerID,
		OwnerID: ownerID,
		RomName: romName,
		Roster:  []string{ownerID},
	}
}

func (l *Lobby) HasMember(id string) bool {
	for _, m := range l.Roster {
		if m == id {
			return true
		}
	}
	return false
}

// RemoveMember drops id from the roster preserving join order.
func (l *Lobby) RemoveMember(id string) {
	for i, m := range l.Roster {
		if m == id {
			l.Roster = append(l.Roster[:i], l.Roster[i+1:]...)
			return
		}
	}
}

func (l *Lobby) Full() bool {
	return len(l.Roster) >= LobbyCapacity
}
