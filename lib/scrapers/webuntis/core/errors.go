package core

import "errors"

var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNetwork              = errors.New("network error")
	ErrSessionExpired       = errors.New("session expired, please login again")
	ErrPageNotFound         = errors.New("page not found")
	// the login page has no form this client knows how to fill out
	ErrUnsupportedVersion = errors.New("unsupported webuntis version")
)
