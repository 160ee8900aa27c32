package session

type Track struct {
	Id            string  `json:"id"`
	Title         string  `json:"title"`
	Artist        string  `json:"artist"`
	Duration      float64 `json:"duration"`
	SourceLocator string  `json:"source_locator"`
}

type RosterEntry struct {
	UserId   string `json:"user_id"`
	Email    string `json:"email"`
	JoinedAt int64  `json:"joined_at"`
}

type PositionUpdate struct {
	TrackId   string  `json:"track_id"`
	Position  float64 `json:"position"`
	Duration  float64 `json:"duration"`
	IsPlaying bool    `json:"is_playing"`
}

// Status combines the local optimistic state with the shared pivot. The
// shared side carries the predicted position so callers never have to
// extrapolate themselves.
type Status struct {
	RoomId            string        `json:"room_id"`
	CurrentTrack      *Track        `json:"current_track"`
	IsPlaying         bool          `json:"is_playing"`
	Position          float64       `json:"position"`
	Duration          float64       `json:"duration"`
	PredictedPosition float64       `json:"predicted_position"`
	Roster            []RosterEntry `json:"roster"`
}
