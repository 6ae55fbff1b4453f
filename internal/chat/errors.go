package chat

import "errors"

var (
	ErrNameTaken    = errors.New("name already taken")
	ErrEmptyName    = errors.New("participant name is empty")
	ErrOutboxFull   = errors.New("client outbox full")
	ErrClientClosed = errors.New("client closed")
)
