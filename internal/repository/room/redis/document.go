package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tuneroom/client/internal/repository/room"
)

func (r repo) CreateRoom(ctx context.Context, params *room.CreateRoomParams) (bool, error) {
	r.logger.DebugContext(ctx, "called", "params", params)

	nowMs, err := r.serverTimeMs(ctx)
	if err != nil {
		return false, err
	}

	res, err := r.rc.EvalSha(ctx, r.createRoomScript, []string{r.getRoomKey(params.RoomId)}, nowMs).Int()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return false, fmt.Errorf("failed to create room: %w", err)
	}

	return res == 1, nil
}

func (r repo) GetRoom(ctx context.Context, roomId string) (room.Room, error) {
	roomKey := r.getRoomKey(roomId)

	exists, err := r.rc.Exists(ctx, roomKey).Result()
	if err != nil {
		return room.Room{}, fmt.Errorf("failed to check if room exists: %w", err)
	}
	if exists == 0 {
		return room.Room{}, room.ErrRoomNotFound
	}

	var doc room.Room
	if err := r.rc.HGetAll(ctx, roomKey).Scan(&doc); err != nil {
		return room.Room{}, fmt.Errorf("failed to get room: %w", err)
	}

	return doc, nil
}

// UpdatePivot writes a transport action to the room document. The pivot
// timestamp is stamped with the store clock and returned to the caller.
// The write is a field-level merge: fields not named here keep their value.
func (r repo) UpdatePivot(ctx context.Context, params *room.UpdatePivotParams) (int64, error) {
	r.logger.DebugContext(ctx, "called", "params", params)

	roomKey := r.getRoomKey(params.RoomId)

	exists, err := r.rc.Exists(ctx, roomKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to check if room exists: %w", err)
	}
	if exists == 0 {
		return 0, room.ErrRoomNotFound
	}

	nowMs, err := r.serverTimeMs(ctx)
	if err != nil {
		return 0, err
	}

	fields := []any{
		"is_playing", params.IsPlaying,
		"last_action_seek_position", params.SeekPosition,
		"last_action_time", nowMs,
		"last_action_by", params.ByUserId,
	}
	if params.TrackId != nil {
		fields = append(fields, "current_track_id", *params.TrackId)
	}

	if err := r.rc.HSet(ctx, roomKey, fields...).Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return 0, fmt.Errorf("failed to update pivot: %w", err)
	}

	if err := r.publishSnapshot(ctx, params.RoomId); err != nil {
		return 0, err
	}

	return nowMs, nil
}

// publishSnapshot fans the current room document out to every subscriber.
// The store guarantees per-writer ordering only: two writers racing may
// interleave, and the last write wins.
func (r repo) publishSnapshot(ctx context.Context, roomId string) error {
	var doc room.Room
	if err := r.rc.HGetAll(ctx, r.getRoomKey(roomId)).Scan(&doc); err != nil {
		return fmt.Errorf("failed to get room: %w", err)
	}

	participants, err := r.GetParticipants(ctx, roomId)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(room.ChangeEvent{
		RoomId:       roomId,
		Room:         doc,
		Participants: participants,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}

	if err := r.rc.Publish(ctx, r.getChangesChannel(roomId), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish change event: %w", err)
	}

	return nil
}
