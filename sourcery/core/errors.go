package core

import (
	"errors"
)

var (
	ErrMetadataAbsent       = errors.New("metadata absent")
	ErrUnknownScaleMode     = errors.New("unknown scale mode")
	ErrUnknownCollisionMode = errors.New("unknown collision mode")
	ErrInvalidPayload       = errors.New("invalid extension payload")
	ErrNotMesh              = errors.New("object cannot carry metadata")
	ErrUnknownGame          = errors.New("unknown game")
	ErrWatcherClosed        = errors.New("watcher already closed")
)
