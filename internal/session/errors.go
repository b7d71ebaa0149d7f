package session

import "errors"

var (
	// ErrNoToken means the API answered a login, registration or account
	// switch with 2xx but without a token. That response cannot
	// authenticate anything, so it is a hard failure regardless of the
	// HTTP status.
	ErrNoToken = errors.New("authentication response carried no token")

	// ErrNoUser means a registration response omitted the created user.
	ErrNoUser = errors.New("registration response carried no user")
)
