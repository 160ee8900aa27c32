package session

import (
	"context"
	"fmt"

	"github.com/tuneroom/client/internal/repository/room"
)

// Join enters a room, creating the shared document with a neutral pivot if
// it does not exist, and opens the change subscription. Joining the same
// room twice is a no-op beyond re-asserting the roster entry.
func (s *service) Join(ctx context.Context, roomId string) error {
	s.mu.Lock()
	if s.roomId != "" && s.roomId != roomId {
		s.mu.Unlock()
		return ErrAlreadyInRoom
	}
	alreadyJoined := s.roomId == roomId
	s.mu.Unlock()

	created, err := s.roomRepo.CreateRoom(ctx, &room.CreateRoomParams{RoomId: roomId})
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	if created {
		s.logger.Info("created room", "room_id", roomId)
	}

	if _, err := s.roomRepo.SetParticipant(ctx, &room.SetParticipantParams{
		UserId:   s.userId,
		Email:    s.email,
		JoinedAt: s.now().UnixMilli(),
		RoomId:   roomId,
	}); err != nil {
		return fmt.Errorf("failed to set participant: %w", err)
	}

	if alreadyJoined {
		return nil
	}

	sub, err := s.roomRepo.Subscribe(ctx, roomId)
	if err != nil {
		return fmt.Errorf("failed to subscribe to room: %w", err)
	}

	s.mu.Lock()
	s.roomId = roomId
	s.sub = sub
	s.mu.Unlock()

	s.wg.Add(1)
	go s.reconcileLoop(sub)

	// resume from the stored document: a returning participant picks the
	// last known pivot back up, own writes from a previous run included
	doc, err := s.roomRepo.GetRoom(ctx, roomId)
	if err != nil {
		s.abortJoin(sub)
		return fmt.Errorf("failed to get room: %w", err)
	}

	participants, err := s.roomRepo.GetParticipants(ctx, roomId)
	if err != nil {
		s.abortJoin(sub)
		return fmt.Errorf("failed to get participants: %w", err)
	}

	s.applyChange(&room.ChangeEvent{
		RoomId:       roomId,
		Room:         doc,
		Participants: participants,
	}, true)

	s.logger.Info("joined room", "room_id", roomId)

	return nil
}

// abortJoin undoes a partially completed join when the initial snapshot
// cannot be read. A failed join must leave the session out of the room, so
// a retry runs the full join path again.
func (s *service) abortJoin(sub room.Subscription) {
	s.mu.Lock()
	s.sub = nil
	s.roomId = ""
	s.mu.Unlock()

	if err := sub.Close(); err != nil {
		s.logger.Warn("failed to close subscription", "error", err)
	}
	s.wg.Wait()
}

// Leave removes the caller from the roster and closes the subscription. The
// room document outlives its members: the last action pivot stays behind
// for whoever returns. After Leave returns no reconciliation callback can
// fire.
func (s *service) Leave(ctx context.Context) error {
	s.mu.Lock()
	roomId := s.roomId
	s.mu.Unlock()

	if roomId == "" {
		return ErrNotInRoom
	}

	if err := s.roomRepo.RemoveParticipant(ctx, &room.RemoveParticipantParams{
		UserId: s.userId,
		RoomId: roomId,
	}); err != nil {
		return fmt.Errorf("failed to remove participant: %w", err)
	}

	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.roomId = ""
	s.current = nil
	s.isPlaying = false
	s.roster = nil
	s.stopPollLocked()
	if s.seekTimer != nil {
		s.seekTimer.Stop()
		s.seekTimer = nil
	}
	s.mu.Unlock()

	if sub != nil {
		if err := sub.Close(); err != nil {
			s.logger.Warn("failed to close subscription", "error", err)
		}
		s.wg.Wait()
	}

	if err := s.player.Pause(); err != nil {
		s.logger.Debug("pause on leave", "error", err)
	}

	s.logger.Info("left room", "room_id", roomId)

	return nil
}
