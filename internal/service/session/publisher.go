package session

import (
	"context"
	"fmt"
	"time"

	"github.com/tuneroom/client/internal/repository/room"
)

// Play starts local playback immediately and publishes the pivot in the
// background. Local state is optimistic: a slow or failed write never holds
// up the transport.
func (s *service) Play(ctx context.Context) error {
	s.mu.Lock()

	if s.roomId == "" {
		s.mu.Unlock()
		return ErrNotInRoom
	}
	if s.current == nil {
		s.mu.Unlock()
		return ErrNoCurrentTrack
	}

	if err := s.player.Play(); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to play: %w", err)
	}

	s.isPlaying = true
	s.startPollLocked()

	pos, _ := s.player.Position()
	roomId := s.roomId
	s.mu.Unlock()

	s.publishPivot(&room.UpdatePivotParams{
		IsPlaying:    true,
		SeekPosition: pos,
		ByUserId:     s.userId,
		RoomId:       roomId,
	})

	return nil
}

func (s *service) Pause(ctx context.Context) error {
	s.mu.Lock()

	if s.roomId == "" {
		s.mu.Unlock()
		return ErrNotInRoom
	}
	if s.current == nil {
		s.mu.Unlock()
		return ErrNoCurrentTrack
	}

	if err := s.player.Pause(); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to pause: %w", err)
	}

	s.isPlaying = false
	s.stopPollLocked()

	pos, _ := s.player.Position()
	roomId := s.roomId
	s.mu.Unlock()

	s.publishPivot(&room.UpdatePivotParams{
		IsPlaying:    false,
		SeekPosition: pos,
		ByUserId:     s.userId,
		RoomId:       roomId,
	})

	return nil
}

// Seek moves the local transport at once but coalesces the outgoing write:
// only the last position requested within the debounce window is published.
// A new call always cancels and restarts the pending window.
func (s *service) Seek(ctx context.Context, seconds float64) error {
	s.mu.Lock()

	if s.roomId == "" {
		s.mu.Unlock()
		return ErrNotInRoom
	}
	if s.current == nil {
		s.mu.Unlock()
		return ErrNoCurrentTrack
	}

	if err := s.player.SeekTo(seconds); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to seek: %w", err)
	}

	s.pendingSeek = seconds
	if s.seekTimer != nil {
		s.seekTimer.Stop()
	}
	s.seekGen++
	gen := s.seekGen
	s.seekTimer = time.AfterFunc(s.seekDebounce, func() { s.flushSeek(gen) })

	s.mu.Unlock()

	return nil
}

// flushSeek publishes the pending seek. gen identifies the debounce window
// that scheduled it: a timer that already fired when its window was
// restarted must not publish ahead of the live window.
func (s *service) flushSeek(gen uint64) {
	s.mu.Lock()

	if s.seekTimer == nil || gen != s.seekGen || s.roomId == "" {
		s.mu.Unlock()
		return
	}
	s.seekTimer = nil

	params := room.UpdatePivotParams{
		IsPlaying:    s.isPlaying,
		SeekPosition: s.pendingSeek,
		ByUserId:     s.userId,
		RoomId:       s.roomId,
	}
	s.mu.Unlock()

	s.publishPivot(&params)
}

// ChangeTrack loads and plays the given queue track from the start, then
// publishes the change. Starting a new track always begins at zero and
// playing, and supersedes any pending seek.
func (s *service) ChangeTrack(ctx context.Context, trackId string) error {
	s.mu.Lock()

	if s.roomId == "" {
		s.mu.Unlock()
		return ErrNotInRoom
	}

	track, ok := s.resolveTrackLocked(trackId)
	if !ok {
		s.mu.Unlock()
		return ErrTrackNotFound
	}

	if s.seekTimer != nil {
		s.seekTimer.Stop()
		s.seekTimer = nil
	}

	if err := s.player.Load(track.SourceLocator); err != nil {
		s.isPlaying = false
		s.stopPollLocked()
		s.mu.Unlock()
		return fmt.Errorf("failed to load track: %w", err)
	}

	if err := s.player.Play(); err != nil {
		s.isPlaying = false
		s.stopPollLocked()
		s.mu.Unlock()
		return fmt.Errorf("failed to play track: %w", err)
	}

	s.current = &track
	s.isPlaying = true
	s.startPollLocked()

	roomId := s.roomId
	s.mu.Unlock()

	s.publishPivot(&room.UpdatePivotParams{
		TrackId:      &track.Id,
		IsPlaying:    true,
		SeekPosition: 0,
		ByUserId:     s.userId,
		RoomId:       roomId,
	})

	return nil
}

// publishPivot is fire-and-forget: the write is handed to a single worker
// goroutine so the client's own writes commit in action order, and a
// transient store error is logged while the optimistic local state stands,
// to be corrected by the next successful write.
func (s *service) publishPivot(params *room.UpdatePivotParams) {
	select {
	case s.pubCh <- params:
	default:
		s.logger.Warn("publish queue full, dropping pivot", "room_id", params.RoomId)
	}
}

func (s *service) publishLoop() {
	defer s.pubWg.Done()

	for params := range s.pubCh {
		if _, err := s.roomRepo.UpdatePivot(context.Background(), params); err != nil {
			s.logger.Warn("failed to publish pivot", "error", err, "room_id", params.RoomId)
		}
	}
}
