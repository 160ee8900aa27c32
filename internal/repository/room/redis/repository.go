package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

type repo struct {
	rc               *redis.Client
	logger           *slog.Logger
	createRoomScript string
}

// NewRepo builds the redis-backed room store. Rooms are plain hashes with no
// TTL: a room is never deleted, so a returning participant always finds the
// last known pivot.
func NewRepo(rc *redis.Client, logger *slog.Logger) *repo {
	return &repo{
		rc:     rc,
		logger: logger,
		createRoomScript: rc.ScriptLoad(context.Background(), `
			if redis.call('EXISTS', KEYS[1]) == 1 then
				return 0
			end
			redis.call('HSET', KEYS[1],
				'current_track_id', '',
				'is_playing', '0',
				'last_action_seek_position', '0',
				'last_action_time', '0',
				'last_action_by', '',
				'created_at', ARGV[1])
			return 1
		`).Val(),
	}
}

func (r repo) getRoomKey(roomId string) string {
	return "room:" + roomId
}

func (r repo) getParticipantsKey(roomId string) string {
	return "room:" + roomId + ":participants"
}

func (r repo) getAnnotationsKey(roomId, kind string) string {
	return "room:" + roomId + ":" + kind
}

func (r repo) getChangesChannel(roomId string) string {
	return "room:" + roomId + ":changes"
}

// serverTimeMs resolves the current instant on the store, not on the client.
// Every pivot timestamp goes through here so that clients with skewed device
// clocks still agree on elapsed time.
func (r repo) serverTimeMs(ctx context.Context) (int64, error) {
	t, err := r.rc.Time(ctx).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get server time: %w", err)
	}

	return t.UnixMilli(), nil
}
