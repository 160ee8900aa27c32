package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/tuneroom/client/internal/repository/room"
	"github.com/tuneroom/client/internal/transport"
)

var (
	ErrNotInRoom      = errors.New("not in a room")
	ErrAlreadyInRoom  = errors.New("already in another room")
	ErrNoCurrentTrack = errors.New("no current track")
	ErrTrackNotFound  = errors.New("track not found")
)

type iRoomRepo interface {
	CreateRoom(context.Context, *room.CreateRoomParams) (bool, error)
	GetRoom(context.Context, string) (room.Room, error)
	UpdatePivot(context.Context, *room.UpdatePivotParams) (int64, error)
	SetParticipant(context.Context, *room.SetParticipantParams) (bool, error)
	RemoveParticipant(context.Context, *room.RemoveParticipantParams) error
	GetParticipants(context.Context, string) (map[string]room.Participant, error)
	SetAnnotation(context.Context, *room.SetAnnotationParams) error
	RemoveAnnotation(context.Context, *room.RemoveAnnotationParams) error
	GetAnnotation(context.Context, *room.GetAnnotationParams) (room.Annotation, error)
	GetAnnotations(ctx context.Context, roomId, kind string) ([]room.Annotation, error)
	Subscribe(context.Context, string) (room.Subscription, error)
}

type Config struct {
	UserId string
	Email  string
	// SeekDebounce is the window during which rapid seek intents are
	// coalesced into a single write.
	SeekDebounce time.Duration
	// PollInterval drives the local position poll while playing.
	PollInterval time.Duration
	// SeekTolerance is the largest drift, in seconds, the reconciler leaves
	// uncorrected to avoid audible micro-seeks.
	SeekTolerance float64
}

type service struct {
	roomRepo iRoomRepo
	player   transport.Player
	logger   *slog.Logger

	userId        string
	email         string
	seekDebounce  time.Duration
	pollInterval  time.Duration
	seekTolerance float64
	now           func() time.Time

	mu          sync.Mutex
	roomId      string
	sub         room.Subscription
	queue       []Track
	current     *Track
	isPlaying   bool
	roster      []RosterEntry
	seekTimer   *time.Timer
	seekGen     uint64
	pendingSeek float64
	pollStop    chan struct{}

	wg     sync.WaitGroup
	pollWg sync.WaitGroup

	pubCh chan *room.UpdatePivotParams
	pubWg sync.WaitGroup

	listenersMu  sync.Mutex
	listeners    map[int]chan PositionUpdate
	nextListener int
}

func NewService(roomRepo iRoomRepo, player transport.Player, cfg *Config, logger *slog.Logger) *service {
	s := service{
		roomRepo:      roomRepo,
		player:        player,
		logger:        logger,
		userId:        cfg.UserId,
		email:         cfg.Email,
		seekDebounce:  cfg.SeekDebounce,
		pollInterval:  cfg.PollInterval,
		seekTolerance: cfg.SeekTolerance,
		now:           time.Now,
		listeners:     map[int]chan PositionUpdate{},
		pubCh:         make(chan *room.UpdatePivotParams, 64),
	}

	if s.seekDebounce <= 0 {
		s.seekDebounce = 500 * time.Millisecond
	}
	if s.pollInterval <= 0 {
		s.pollInterval = time.Second
	}
	if s.seekTolerance <= 0 {
		s.seekTolerance = 1.0
	}

	s.pubWg.Add(1)
	go s.publishLoop()

	return &s
}

// Close stops the background publisher. Call Leave first if still in a room.
func (s *service) Close() {
	s.mu.Lock()
	s.stopPollLocked()
	if s.seekTimer != nil {
		s.seekTimer.Stop()
		s.seekTimer = nil
	}
	s.mu.Unlock()

	close(s.pubCh)
	s.pubWg.Wait()
	s.pollWg.Wait()
}

// SetNow replaces the service clock. Test helper.
func (s *service) SetNow(now func() time.Time) {
	s.now = now
}

// SubscribeUpdates registers a listener for position updates. Slow listeners
// drop updates instead of blocking the poll.
func (s *service) SubscribeUpdates() (<-chan PositionUpdate, func()) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	id := s.nextListener
	s.nextListener++

	ch := make(chan PositionUpdate, 8)
	s.listeners[id] = ch

	return ch, func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()

		if _, ok := s.listeners[id]; ok {
			delete(s.listeners, id)
			close(ch)
		}
	}
}

func (s *service) notifyPosition(update PositionUpdate) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	for _, ch := range s.listeners {
		select {
		case ch <- update:
		default:
		}
	}
}

func (s *service) Status(ctx context.Context) (Status, error) {
	s.mu.Lock()
	roomId := s.roomId
	current := s.current
	isPlaying := s.isPlaying
	roster := append([]RosterEntry(nil), s.roster...)
	s.mu.Unlock()

	if roomId == "" {
		return Status{}, ErrNotInRoom
	}

	doc, err := s.roomRepo.GetRoom(ctx, roomId)
	if err != nil {
		return Status{}, err
	}

	status := Status{
		RoomId:    roomId,
		IsPlaying: isPlaying,
		Roster:    roster,
	}

	if current != nil {
		track := *current
		status.CurrentTrack = &track
		status.Duration = track.Duration

		if pos, err := s.player.Position(); err == nil {
			status.Position = pos
		}
	}

	if doc.LastActionTime != 0 {
		status.PredictedPosition = Predict(doc.LastActionTime, doc.LastActionSeekPosition, doc.IsPlaying, s.now().UnixMilli())
	}

	return status, nil
}

func (s *service) Annotations(ctx context.Context, kind string) ([]room.Annotation, error) {
	s.mu.Lock()
	roomId := s.roomId
	s.mu.Unlock()

	if roomId == "" {
		return nil, ErrNotInRoom
	}

	return s.roomRepo.GetAnnotations(ctx, roomId, kind)
}

// ToggleLike records or withdraws the local user's like on a track. Likes
// never influence reconciliation.
func (s *service) ToggleLike(ctx context.Context, trackId string) (bool, error) {
	s.mu.Lock()
	roomId := s.roomId
	s.mu.Unlock()

	if roomId == "" {
		return false, ErrNotInRoom
	}

	err := s.roomRepo.RemoveAnnotation(ctx, &room.RemoveAnnotationParams{
		Kind:    room.AnnotationLike,
		TrackId: trackId,
		UserId:  s.userId,
		RoomId:  roomId,
	})
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, room.ErrAnnotationNotFound) {
		return false, err
	}

	if err := s.roomRepo.SetAnnotation(ctx, &room.SetAnnotationParams{
		Kind:    room.AnnotationLike,
		TrackId: trackId,
		UserId:  s.userId,
		Value:   "like",
		SetAt:   s.now().UnixMilli(),
		RoomId:  roomId,
	}); err != nil {
		return false, err
	}

	return true, nil
}

func (s *service) SetMood(ctx context.Context, trackId, mood string) error {
	s.mu.Lock()
	roomId := s.roomId
	s.mu.Unlock()

	if roomId == "" {
		return ErrNotInRoom
	}

	return s.roomRepo.SetAnnotation(ctx, &room.SetAnnotationParams{
		Kind:    room.AnnotationMood,
		TrackId: trackId,
		UserId:  s.userId,
		Value:   mood,
		SetAt:   s.now().UnixMilli(),
		RoomId:  roomId,
	})
}
