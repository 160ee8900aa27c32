// Package transport defines the local playback engine consumed by the
// session service. The engine is a dumb executor: it knows nothing about
// rooms, pivots or other clients.
package transport

import "errors"

var ErrNoTrackLoaded = errors.New("no track loaded")

type Player interface {
	// Load prepares the source for playback, replacing any loaded track.
	// The player is paused at position 0 after a successful load.
	Load(sourceLocator string) error
	Play() error
	Pause() error
	SeekTo(seconds float64) error
	// Position reports the current playback position in seconds.
	Position() (float64, error)
	// Duration reports the loaded track's duration in seconds, 0 if unknown.
	Duration() float64
}
