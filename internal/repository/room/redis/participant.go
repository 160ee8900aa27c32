package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tuneroom/client/internal/repository/room"
)

// SetParticipant adds the participant to the roster if absent. Returns false
// without touching the stored entry when the participant is already present,
// which keeps join idempotent and preserves the original joined_at.
func (r repo) SetParticipant(ctx context.Context, params *room.SetParticipantParams) (bool, error) {
	r.logger.DebugContext(ctx, "called", "params", params)

	value, err := json.Marshal(room.Participant{
		Email:    params.Email,
		JoinedAt: params.JoinedAt,
	})
	if err != nil {
		return false, fmt.Errorf("failed to marshal participant: %w", err)
	}

	added, err := r.rc.HSetNX(ctx, r.getParticipantsKey(params.RoomId), params.UserId, value).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return false, fmt.Errorf("failed to set participant: %w", err)
	}

	if err := r.publishSnapshot(ctx, params.RoomId); err != nil {
		return false, err
	}

	return added, nil
}

// RemoveParticipant removes only the caller's roster entry. The room document
// itself is never deleted, even when the roster becomes empty.
func (r repo) RemoveParticipant(ctx context.Context, params *room.RemoveParticipantParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)

	if err := r.rc.HDel(ctx, r.getParticipantsKey(params.RoomId), params.UserId).Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return fmt.Errorf("failed to remove participant: %w", err)
	}

	return r.publishSnapshot(ctx, params.RoomId)
}

func (r repo) GetParticipants(ctx context.Context, roomId string) (map[string]room.Participant, error) {
	entries, err := r.rc.HGetAll(ctx, r.getParticipantsKey(roomId)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}

	participants := make(map[string]room.Participant, len(entries))
	for userId, raw := range entries {
		var p room.Participant
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal participant: %w", err)
		}

		participants[userId] = p
	}

	return participants, nil
}
