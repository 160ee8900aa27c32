package session

// SetQueue replaces the local queue snapshot. Queue population (enumeration,
// metadata, caching) happens outside the client; reconciliation only ever
// looks tracks up by id against this snapshot.
func (s *service) SetQueue(tracks []Track) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue = append([]Track(nil), tracks...)
}

func (s *service) Queue() []Track {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Track(nil), s.queue...)
}

func (s *service) resolveTrackLocked(trackId string) (Track, bool) {
	for _, track := range s.queue {
		if track.Id == trackId {
			return track, true
		}
	}

	return Track{}, false
}

// nextTrackLocked picks the entry after the current one, wrapping to the
// first. When the current track is no longer in the queue the first entry
// is the next one.
func (s *service) nextTrackLocked() (Track, bool) {
	if len(s.queue) == 0 {
		return Track{}, false
	}

	if s.current == nil {
		return s.queue[0], true
	}

	for i, track := range s.queue {
		if track.Id == s.current.Id {
			return s.queue[(i+1)%len(s.queue)], true
		}
	}

	return s.queue[0], true
}
