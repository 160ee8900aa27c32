package room

// Room is the shared document every client in a session reads and writes.
// Position is never stored directly: clients extrapolate it from the last
// action pivot (LastActionTime, LastActionSeekPosition, IsPlaying).
type Room struct {
	CurrentTrackId         string  `redis:"current_track_id" json:"current_track_id"`
	IsPlaying              bool    `redis:"is_playing" json:"is_playing"`
	LastActionSeekPosition float64 `redis:"last_action_seek_position" json:"last_action_seek_position"`
	// LastActionTime is unix milliseconds assigned by the store, not by the
	// writing client.
	LastActionTime int64  `redis:"last_action_time" json:"last_action_time"`
	LastActionBy   string `redis:"last_action_by" json:"last_action_by"`
	CreatedAt      int64  `redis:"created_at" json:"created_at"`
}

type Participant struct {
	Email    string `json:"email"`
	JoinedAt int64  `json:"joined_at"`
}

// Annotation is a per-track, per-user record (like or mood). Annotations are
// additive metadata and are never consulted by playback reconciliation.
type Annotation struct {
	UserId  string `json:"user_id"`
	TrackId string `json:"track_id"`
	Value   string `json:"value"`
	SetAt   int64  `json:"set_at"`
}

// ChangeEvent is the payload delivered on the room change feed after every
// write: a full snapshot of the room document and its roster.
type ChangeEvent struct {
	RoomId       string                 `json:"room_id"`
	Room         Room                   `json:"room"`
	Participants map[string]Participant `json:"participants"`
}

// Subscription is a handle on a room change feed. Events is closed after
// Close returns; Close blocks until no further event can be delivered.
type Subscription interface {
	Events() <-chan ChangeEvent
	Close() error
}
