package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/tuneroom/client/internal/repository/room"
)

func (r repo) getAnnotationField(trackId, userId string) string {
	return trackId + ":" + userId
}

func (r repo) SetAnnotation(ctx context.Context, params *room.SetAnnotationParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)

	value, err := json.Marshal(room.Annotation{
		UserId:  params.UserId,
		TrackId: params.TrackId,
		Value:   params.Value,
		SetAt:   params.SetAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal annotation: %w", err)
	}

	annotationsKey := r.getAnnotationsKey(params.RoomId, params.Kind)
	field := r.getAnnotationField(params.TrackId, params.UserId)
	if err := r.rc.HSet(ctx, annotationsKey, field, value).Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return fmt.Errorf("failed to set annotation: %w", err)
	}

	return r.publishSnapshot(ctx, params.RoomId)
}

func (r repo) RemoveAnnotation(ctx context.Context, params *room.RemoveAnnotationParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)

	annotationsKey := r.getAnnotationsKey(params.RoomId, params.Kind)
	field := r.getAnnotationField(params.TrackId, params.UserId)
	res, err := r.rc.HDel(ctx, annotationsKey, field).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return fmt.Errorf("failed to remove annotation: %w", err)
	}

	if res == 0 {
		return room.ErrAnnotationNotFound
	}

	return r.publishSnapshot(ctx, params.RoomId)
}

func (r repo) GetAnnotation(ctx context.Context, params *room.GetAnnotationParams) (room.Annotation, error) {
	annotationsKey := r.getAnnotationsKey(params.RoomId, params.Kind)
	field := r.getAnnotationField(params.TrackId, params.UserId)
	raw, err := r.rc.HGet(ctx, annotationsKey, field).Result()
	if err != nil {
		if err == redis.Nil {
			return room.Annotation{}, room.ErrAnnotationNotFound
		}

		return room.Annotation{}, fmt.Errorf("failed to get annotation: %w", err)
	}

	var annotation room.Annotation
	if err := json.Unmarshal([]byte(raw), &annotation); err != nil {
		return room.Annotation{}, fmt.Errorf("failed to unmarshal annotation: %w", err)
	}

	return annotation, nil
}

func (r repo) GetAnnotations(ctx context.Context, roomId, kind string) ([]room.Annotation, error) {
	entries, err := r.rc.HGetAll(ctx, r.getAnnotationsKey(roomId, kind)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get annotations: %w", err)
	}

	annotations := make([]room.Annotation, 0, len(entries))
	for _, raw := range entries {
		var annotation room.Annotation
		if err := json.Unmarshal([]byte(raw), &annotation); err != nil {
			return nil, fmt.Errorf("failed to unmarshal annotation: %w", err)
		}

		annotations = append(annotations, annotation)
	}

	return annotations, nil
}
