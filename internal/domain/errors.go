package domain

// Code is a machine-readable failure reason for the external command sink
// to render. Validation failures never mutate state.
type Code string

const (
	CodeUnknown Code = "UNKNOWN"

	// Pairing errors
	CodePairingCodeInvalid Code = "PAIRING_CODE_INVALID"
	CodePairingCodeUnknown Code = "PAIRING_CODE_UNKNOWN"
	CodeAlreadyBound       Code = "IDENTITY_ALREADY_BOUND"
	CodeIdentityUnknown    Code = "IDENTITY_UNKNOWN"

	// Lobby errors
	CodeNotAuthenticated Code = "NOT_AUTHENTICATED"
	CodeAlreadyInLobby   Code = "ALREADY_IN_LOBBY"
	CodeNoLobby          Code = "NO_LOBBY"
	CodeLobbyNotFound    Code = "LOBBY_NOT_FOUND"
	CodeNotOwner         Code = "NOT_OWNER"
	CodeLobbyFull        Code = "LOBBY_FULL"
	CodeLobbyPlaying     Code = "LOBBY_PLAYING"
	CodeLobbyNotPlaying  Code = "LOBBY_NOT_PLAYING"
	CodeRomNotOwned      Code = "ROM_NOT_OWNED"
)

// Error pairs a code with a human-readable message.
type Error struct {
	Code Code
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

var (
	ErrPairingCodeInvalid = &Error{CodePairingCodeInvalid, "pairing code is malformed"}
	ErrPairingCodeUnknown = &Error{CodePairingCodeUnknown, "pairing code is unknown, already used or expired"}
	ErrAlreadyBound       = &Error{CodeAlreadyBound, "identity is already bound to a connection"}
	ErrIdentityUnknown    = &Error{CodeIdentityUnknown, "identity is unknown"}

	ErrNotAuthenticated = &Error{CodeNotAuthenticated, "you must be authenticated to use this command"}
	ErrAlreadyInLobby   = &Error{CodeAlreadyInLobby, "you are already in a lobby"}
	ErrNoLobby          = &Error{CodeNoLobby, "you are not in a lobby"}
	ErrLobbyNotFound    = &Error{CodeLobbyNotFound, "this lobby does not exist"}
	ErrNotOwner         = &Error{CodeNotOwner, "you are not the owner of this lobby"}
	ErrLobbyFull        = &Error{CodeLobbyFull, "this lobby is full"}
	ErrLobbyPlaying     = &Error{CodeLobbyPlaying, "this lobby has already started"}
	ErrLobbyNotPlaying  = &Error{CodeLobbyNotPlaying, "this lobby is not playing"}
	ErrRomNotOwned      = &Error{CodeRomNotOwned, "you do not own this ROM"}
)

// CodeOf extracts the failure code, CodeUnknown for foreign errors.
func CodeOf(err error) Code {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return CodeUnknown
}
