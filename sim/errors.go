package sim

import "errors"

var (
	ErrNoPlayer     = errors.New("no player")
	ErrPlayerExists = errors.New("player already exists")
	ErrInvalidSpawn = errors.New("invalid spawn")
)
