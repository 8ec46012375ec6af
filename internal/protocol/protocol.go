// Package protocol defines the text frames exchanged with the emulator
// client. A frame is a single ASCII line: a fixed literal tag immediately
// followed by the payload, no separator. Tags match case-sensitively.
package protocol

import (
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrUnknownTag marks a frame whose prefix matches no known tag.
	// Such frames are ignored, not fatal.
	ErrUnknownTag = errors.New("unknown frame tag")

	// ErrBadPayload marks a frame whose payload failed to parse. The frame
	// is dropped; the connection stays open.
	ErrBadPayload = errors.New("malformed frame payload")
)

// Inbound is a closed set of client-to-coordinator frames.
type Inbound interface{ inbound() }

type (
	// Logout asks the coordinator to forget this connection.
	Logout struct{}

	// StartAuth requests (re)issuance of the login URL and pairing code.
	// Valid only on a pre-authentication connection.
	StartAuth struct{}

	// GameList reports the client's ROM catalog.
	GameList struct{ Roms []string }

	// ServerIP announces the relay address of the owner's session.
	ServerIP struct{ Addr string }

	// PlayerNumber reports the player slot assigned to this client.
	PlayerNumber struct{ Slot int }

	// FrameDelay reports the client's configured frame delay.
	FrameDelay struct{ Frames int }

	// UserPing reports the client's measured ping in milliseconds.
	UserPing struct{ Millis int }
)

func (Logout) inbound() {}

func (StartAuth) inbound() {}

func (GameList) inbound() {}

func (ServerIP) inbound() {}

func (PlayerNumber) inbound() {}

func (FrameDelay) inbound() {}

func (UserPing) inbound() {}

// ParseInbound decodes one frame. Unmatched prefixes yield ErrUnknownTag,
// unparsable numeric payloads ErrBadPayload.
func ParseInbound(line string) (Inbound, error) {
	switch {
	case strings.HasPrefix(line, "LOGOUT"):
		return Logout{}, nil
	case strings.HasPrefix(line, "START AUTH"):
		return StartAuth{}, nil
	case strings.HasPrefix(line, "GAME LIST"):
		return GameList{Roms: splitCSV(line[len("GAME LIST"):])}, nil
	case strings.HasPrefix(line, "SERVER IP"):
		return ServerIP{Addr: line[len("SERVER IP"):]}, nil
	case strings.HasPrefix(line, "PLAYER NUMBER"):
		return parseIntFrame(line, "PLAYER NUMBER", func(n int) Inbound { return PlayerNumber{Slot: n} })
	case strings.HasPrefix(line, "FRAME DELAY"):
		return parseIntFrame(line, "FRAME DELAY", func(n int) Inbound { return FrameDelay{Frames: n} })
	case strings.HasPrefix(line, "USER PING"):
		return parseIntFrame(line, "USER PING", func(n int) Inbound { return UserPing{Millis: n} })
	default:
		return nil, ErrUnknownTag
	}
}

func parseIntFrame(line, tag string, build func(int) Inbound) (Inbound, error) {
	n, err := strconv.Atoi(strings.TrimSpace(line[len(tag):]))
	if err != nil {
		return nil, ErrBadPayload
	}
	return build(n), nil
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// Outbound is a coordinator-to-client frame; Encode renders the wire line.
type Outbound interface{ Encode() string }

type (
	AuthURL     struct{ URL string }
	AuthID      struct{ Code string }
	UserID      struct{ ID string }
	AuthSuccess struct{}

	// GameListRequest asks the client to report its ROM catalog.
	GameListRequest struct{}

	CreateGame struct{ Rom string }
	JoinGame   struct{ Addr string }
	RomName    struct{ Rom string }
	LeaveGame  struct{}
	StartGame  struct{}
	DropGame   struct{ Username string }
)

func (f AuthURL) Encode() string { return "AUTH URL" + f.URL }

func (f AuthID) Encode() string { return "AUTH ID" + f.Code }

func (f UserID) Encode() string { return "USER ID" + f.ID }

func (AuthSuccess) Encode() string { return "AUTH SUCCESS" }

func (GameListRequest) Encode() string { return "GAME LIST" }

func (f CreateGame) Encode() string { return "CREATE GAME" + f.Rom }

func (f JoinGame) Encode() string { return "JOIN GAME" + f.Addr }

func (f RomName) Encode() string { return "ROM NAME" + f.Rom }

func (LeaveGame) Encode() string { return "LEAVE GAME" }

func (StartGame) Encode() string { return "START GAME" }

func (f DropGame) Encode() string { return "DROP GAME" + f.Username }
