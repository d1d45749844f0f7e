package share

import "errors"

// Typed failures returned by the Store and Service. Handlers map each one to a
// specific status code. A deleted link and a token that never existed both
// surface as ErrNotFound; callers cannot tell them apart.
var (
	ErrNotFound     = errors.New("share link not found")
	ErrGone         = errors.New("share link expired")
	ErrUnauthorized = errors.New("share password missing or incorrect")
	ErrForbidden    = errors.New("share link belongs to another user")
	ErrConflict     = errors.New("share token already taken")
	ErrUnavailable  = errors.New("share store unavailable")
)
