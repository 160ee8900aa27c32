package session

import (
	"math"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/tuneroom/client/internal/repository/room"
)

func (s *service) reconcileLoop(sub room.Subscription) {
	defer s.wg.Done()

	for event := range sub.Events() {
		s.applyChange(&event, false)
	}

	// the feed ending without Leave is terminal for this subscription: the
	// room is no longer subscribed and an explicit rejoin is required
	s.mu.Lock()
	if s.sub == sub {
		s.sub = nil
		s.roomId = ""
		s.isPlaying = false
		s.stopPollLocked()
		s.logger.Warn("room subscription terminated, rejoin required")
	}
	s.mu.Unlock()
}

// applyChange drives the local transport toward the state another client
// published. initial is set when replaying the stored document on join, in
// which case the echo filter is bypassed: there is no in-flight local action
// yet and a returning participant resumes its own last pivot.
func (s *service) applyChange(event *room.ChangeEvent, initial bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// events still buffered in the feed when a leave tears it down must
	// not mutate the session: after Leave returns the room is gone
	if s.roomId != event.RoomId {
		return
	}

	s.updateRosterLocked(event.Participants)

	doc := event.Room

	// Self-echo suppression. Reprocessing our own write would snap the
	// transport back onto an action it already took, and could reapply a
	// stale pivot over an action still in flight.
	if !initial && doc.LastActionBy == s.userId {
		s.logger.Debug("suppressed own change echo", "room_id", event.RoomId)
		return
	}

	// no action recorded yet (freshly created room)
	if doc.LastActionTime == 0 || doc.CurrentTrackId == "" {
		return
	}

	nowMs := s.now().UnixMilli()

	if s.current == nil || s.current.Id != doc.CurrentTrackId {
		s.applyTrackChangeLocked(&doc, nowMs)
		return
	}

	s.applyPivotLocked(&doc, nowMs)
}

// applyTrackChangeLocked loads the remote track, ignoring local transport
// state entirely: a track change supersedes whatever this client was doing.
func (s *service) applyTrackChangeLocked(doc *room.Room, nowMs int64) {
	track, ok := s.resolveTrackLocked(doc.CurrentTrackId)
	if !ok {
		// not fatal: the queue snapshot may simply be behind. Skip this
		// step; the next change notification or queue refresh retries.
		s.logger.Warn("remote track not in local queue, skipping", "track_id", doc.CurrentTrackId)
		return
	}

	if s.seekTimer != nil {
		s.seekTimer.Stop()
		s.seekTimer = nil
	}

	if err := s.player.Load(track.SourceLocator); err != nil {
		s.logger.Warn("failed to load remote track", "error", err, "track_id", track.Id)
		s.isPlaying = false
		s.stopPollLocked()
		return
	}

	s.current = &track

	predicted := Predict(doc.LastActionTime, doc.LastActionSeekPosition, doc.IsPlaying, nowMs)
	if err := s.player.SeekTo(predicted); err != nil {
		s.logger.Warn("failed to seek", "error", err)
	}

	if doc.IsPlaying {
		if err := s.player.Play(); err != nil {
			s.logger.Warn("failed to play remote track", "error", err, "track_id", track.Id)
			s.isPlaying = false
			s.stopPollLocked()
			return
		}
		s.isPlaying = true
		s.startPollLocked()
	} else {
		s.isPlaying = false
		s.stopPollLocked()
	}
}

// applyPivotLocked reconciles position and play state on the already-loaded
// track. Corrections under the tolerance are skipped: micro-seeks and
// redundant play/pause calls cause audible glitches.
func (s *service) applyPivotLocked(doc *room.Room, nowMs int64) {
	predicted := Predict(doc.LastActionTime, doc.LastActionSeekPosition, doc.IsPlaying, nowMs)

	if duration := s.player.Duration(); duration > 0 && predicted >= duration {
		// the shared pivot projects past the end of the track: it is
		// finished, take the advance path instead of seeking past the end
		s.handleTrackEndLocked()
		return
	}

	if pos, err := s.player.Position(); err == nil {
		if math.Abs(predicted-pos) > s.seekTolerance {
			if err := s.player.SeekTo(predicted); err != nil {
				s.logger.Warn("failed to seek", "error", err)
			}
		}
	}

	if doc.IsPlaying == s.isPlaying {
		return
	}

	if doc.IsPlaying {
		if err := s.player.Play(); err != nil {
			s.logger.Warn("failed to play", "error", err)
			return
		}
		s.isPlaying = true
		s.startPollLocked()
	} else {
		if err := s.player.Pause(); err != nil {
			s.logger.Warn("failed to pause", "error", err)
			return
		}
		s.isPlaying = false
		s.stopPollLocked()
	}
}

// updateRosterLocked surfaces the participant list, excluding the local
// user, ordered by join time.
func (s *service) updateRosterLocked(participants map[string]room.Participant) {
	roster := make([]RosterEntry, 0, len(participants))
	for userId, p := range participants {
		if userId == s.userId {
			continue
		}

		roster = append(roster, RosterEntry{
			UserId:   userId,
			Email:    p.Email,
			JoinedAt: p.JoinedAt,
		})
	}

	slices.SortFunc(roster, func(a, b RosterEntry) int {
		if a.JoinedAt != b.JoinedAt {
			return int(a.JoinedAt - b.JoinedAt)
		}

		return strings.Compare(a.UserId, b.UserId)
	})

	s.roster = roster
}
