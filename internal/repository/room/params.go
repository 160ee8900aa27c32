package room

type CreateRoomParams struct {
	RoomId string `json:"room_id"`
}

// UpdatePivotParams describes a transport action write. LastActionTime is
// always stamped server-side; callers never supply it. A nil TrackId leaves
// current_track_id untouched (merge semantics).
type UpdatePivotParams struct {
	TrackId      *string `json:"track_id"`
	IsPlaying    bool    `json:"is_playing"`
	SeekPosition float64 `json:"seek_position"`
	ByUserId     string  `json:"by_user_id"`
	RoomId       string  `json:"room_id"`
}

type SetParticipantParams struct {
	UserId   string `json:"user_id"`
	Email    string `json:"email"`
	JoinedAt int64  `json:"joined_at"`
	RoomId   string `json:"room_id"`
}

type RemoveParticipantParams struct {
	UserId string `json:"user_id"`
	RoomId string `json:"room_id"`
}

type SetAnnotationParams struct {
	Kind    string `json:"kind"`
	TrackId string `json:"track_id"`
	UserId  string `json:"user_id"`
	Value   string `json:"value"`
	SetAt   int64  `json:"set_at"`
	RoomId  string `json:"room_id"`
}

type RemoveAnnotationParams struct {
	Kind    string `json:"kind"`
	TrackId string `json:"track_id"`
	UserId  string `json:"user_id"`
	RoomId  string `json:"room_id"`
}

type GetAnnotationParams struct {
	Kind    string `json:"kind"`
	TrackId string `json:"track_id"`
	UserId  string `json:"user_id"`
	RoomId  string `json:"room_id"`
}

const (
	AnnotationLike = "likes"
	AnnotationMood = "moods"
)
