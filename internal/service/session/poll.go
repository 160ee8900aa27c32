package session

import (
	"time"

	"github.com/tuneroom/client/internal/repository/room"
)

// trackEndEpsilon absorbs poll granularity when deciding a track has played
// out.
const trackEndEpsilon = 0.05

// startPollLocked starts the periodic position poll. The poll runs only
// while playing; pausing stops it outright rather than letting stale ticks
// fire.
func (s *service) startPollLocked() {
	if s.pollStop != nil {
		return
	}

	stop := make(chan struct{})
	s.pollStop = stop

	s.pollWg.Add(1)
	go s.pollLoop(stop)
}

func (s *service) stopPollLocked() {
	if s.pollStop == nil {
		return
	}

	close(s.pollStop)
	s.pollStop = nil
}

func (s *service) pollLoop(stop chan struct{}) {
	defer s.pollWg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.pollTick()
		}
	}
}

func (s *service) pollTick() {
	s.mu.Lock()

	if !s.isPlaying || s.current == nil {
		s.mu.Unlock()
		return
	}

	pos, err := s.player.Position()
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("failed to read position", "error", err)
		return
	}

	duration := s.player.Duration()
	if duration > 0 && pos >= duration-trackEndEpsilon {
		s.handleTrackEndLocked()
		update := s.positionUpdateLocked()
		s.mu.Unlock()
		s.notifyPosition(update)
		return
	}

	update := PositionUpdate{
		TrackId:   s.current.Id,
		Position:  pos,
		Duration:  duration,
		IsPlaying: true,
	}
	s.mu.Unlock()

	s.notifyPosition(update)
}

func (s *service) positionUpdateLocked() PositionUpdate {
	update := PositionUpdate{IsPlaying: s.isPlaying}
	if s.current != nil {
		update.TrackId = s.current.Id
		update.Duration = s.current.Duration
	}
	if pos, err := s.player.Position(); err == nil {
		update.Position = pos
	}

	return update
}

// handleTrackEndLocked runs the "advance to next track" path: whichever
// client's track finishes first decides the next one and publishes it as an
// ordinary track change. Two clients finishing near-simultaneously may both
// publish; the store's last write wins.
func (s *service) handleTrackEndLocked() {
	next, ok := s.nextTrackLocked()
	if !ok {
		s.logger.Info("track ended with empty queue, pausing", "room_id", s.roomId)

		if err := s.player.Pause(); err != nil {
			s.logger.Warn("failed to pause", "error", err)
		}
		s.isPlaying = false
		s.stopPollLocked()

		pos, _ := s.player.Position()
		s.publishPivot(&room.UpdatePivotParams{
			IsPlaying:    false,
			SeekPosition: pos,
			ByUserId:     s.userId,
			RoomId:       s.roomId,
		})

		return
	}

	s.logger.Info("track ended, advancing", "room_id", s.roomId, "next_track_id", next.Id)

	if err := s.player.Load(next.SourceLocator); err != nil {
		s.logger.Warn("failed to load next track", "error", err)
		s.isPlaying = false
		s.stopPollLocked()
		return
	}
	if err := s.player.Play(); err != nil {
		s.logger.Warn("failed to play next track", "error", err)
		s.isPlaying = false
		s.stopPollLocked()
		return
	}

	s.current = &next
	s.isPlaying = true

	s.publishPivot(&room.UpdatePivotParams{
		TrackId:      &next.Id,
		IsPlaying:    true,
		SeekPosition: 0,
		ByUserId:     s.userId,
		RoomId:       s.roomId,
	})
}
