package room

import "errors"

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrAnnotationNotFound = errors.New("annotation not found")
)
