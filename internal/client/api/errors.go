package api

import "errors"

var (
	ErrUnavailable     = errors.New("server unavailable")
	ErrNotLoggedIn     = errors.New("not logged in")
	ErrUnexpectedShape = errors.New("unexpected response shape")
)
