package app

import "innkeep/internal/domain"

// Identity is the request-scoped caller, resolved once by the session
// middleware and passed explicitly into every service operation.
// A nil *Identity is an anonymous caller.
type Identity struct {
	UserID int64
	Email  string
	Name   string
	Admin  bool
}

type Level int

const (
	LevelAnonymous Level = iota
	LevelAuthenticated
	LevelAdmin
)

func (id *Identity) Level() Level {
	switch {
	case id == nil:
		return LevelAnonymous
	case id.Admin:
		return LevelAdmin
	default:
		return LevelAuthenticated
	}
}

// Require gates an operation on the caller's capability level.
// Anonymous callers short of the bar get ErrAuthenticationRequired (the
// HTTP layer turns that into a login redirect preserving the original
// destination); authenticated callers short of admin get
// ErrAuthorizationDenied (redirect home with a warning notice).
func Require(id *Identity, min Level) error {
	if id.Level() >= min {
		return nil
	}
	if id == nil {
		return domain.ErrAuthenticationRequired
	}
	return domain.ErrAuthorizationDenied
}
