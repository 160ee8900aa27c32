package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/tuneroom/client/internal/repository/room"
)

type fakeRepo struct {
	mu           sync.Mutex
	rooms        map[string]room.Room
	participants map[string]map[string]room.Participant
	annotations  map[string]room.Annotation
	pivotWrites  []room.UpdatePivotParams
	nowMs        int64
	subs         []*fakeSub
	getRoomErr   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		rooms:        map[string]room.Room{},
		participants: map[string]map[string]room.Participant{},
		annotations:  map[string]room.Annotation{},
		nowMs:        1_000_000,
	}
}

func (f *fakeRepo) CreateRoom(_ context.Context, params *room.CreateRoomParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.rooms[params.RoomId]; ok {
		return false, nil
	}

	f.rooms[params.RoomId] = room.Room{CreatedAt: f.nowMs}
	f.participants[params.RoomId] = map[string]room.Participant{}

	return true, nil
}

func (f *fakeRepo) GetRoom(_ context.Context, roomId string) (room.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getRoomErr != nil {
		return room.Room{}, f.getRoomErr
	}

	doc, ok := f.rooms[roomId]
	if !ok {
		return room.Room{}, room.ErrRoomNotFound
	}

	return doc, nil
}

func (f *fakeRepo) UpdatePivot(_ context.Context, params *room.UpdatePivotParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, ok := f.rooms[params.RoomId]
	if !ok {
		return 0, room.ErrRoomNotFound
	}

	f.nowMs++
	doc.IsPlaying = params.IsPlaying
	doc.LastActionSeekPosition = params.SeekPosition
	doc.LastActionTime = f.nowMs
	doc.LastActionBy = params.ByUserId
	if params.TrackId != nil {
		doc.CurrentTrackId = *params.TrackId
	}
	f.rooms[params.RoomId] = doc

	f.pivotWrites = append(f.pivotWrites, *params)

	return f.nowMs, nil
}

func (f *fakeRepo) SetParticipant(_ context.Context, params *room.SetParticipantParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	roster, ok := f.participants[params.RoomId]
	if !ok {
		roster = map[string]room.Participant{}
		f.participants[params.RoomId] = roster
	}

	if _, ok := roster[params.UserId]; ok {
		return false, nil
	}

	roster[params.UserId] = room.Participant{Email: params.Email, JoinedAt: params.JoinedAt}

	return true, nil
}

func (f *fakeRepo) RemoveParticipant(_ context.Context, params *room.RemoveParticipantParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.participants[params.RoomId], params.UserId)

	return nil
}

func (f *fakeRepo) GetParticipants(_ context.Context, roomId string) (map[string]room.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	roster := make(map[string]room.Participant, len(f.participants[roomId]))
	for userId, p := range f.participants[roomId] {
		roster[userId] = p
	}

	return roster, nil
}

func (f *fakeRepo) SetAnnotation(_ context.Context, params *room.SetAnnotationParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := params.Kind + ":" + params.TrackId + ":" + params.UserId
	f.annotations[key] = room.Annotation{
		UserId:  params.UserId,
		TrackId: params.TrackId,
		Value:   params.Value,
		SetAt:   params.SetAt,
	}

	return nil
}

func (f *fakeRepo) RemoveAnnotation(_ context.Context, params *room.RemoveAnnotationParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := params.Kind + ":" + params.TrackId + ":" + params.UserId
	if _, ok := f.annotations[key]; !ok {
		return room.ErrAnnotationNotFound
	}
	delete(f.annotations, key)

	return nil
}

func (f *fakeRepo) GetAnnotation(_ context.Context, params *room.GetAnnotationParams) (room.Annotation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := params.Kind + ":" + params.TrackId + ":" + params.UserId
	annotation, ok := f.annotations[key]
	if !ok {
		return room.Annotation{}, room.ErrAnnotationNotFound
	}

	return annotation, nil
}

func (f *fakeRepo) GetAnnotations(_ context.Context, roomId, kind string) ([]room.Annotation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	annotations := make([]room.Annotation, 0)
	for key, annotation := range f.annotations {
		if strings.HasPrefix(key, kind+":") {
			annotations = append(annotations, annotation)
		}
	}

	return annotations, nil
}

func (f *fakeRepo) Subscribe(_ context.Context, roomId string) (room.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sub := &fakeSub{events: make(chan room.ChangeEvent, 16)}
	f.subs = append(f.subs, sub)

	return sub, nil
}

func (f *fakeRepo) pivotWriteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.pivotWrites)
}

func (f *fakeRepo) lastPivotWrite() room.UpdatePivotParams {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.pivotWrites[len(f.pivotWrites)-1]
}

type fakeSub struct {
	events    chan room.ChangeEvent
	closeOnce sync.Once

	// onCloseEvents are flushed into the events channel before it closes,
	// mirroring a feed with notifications still buffered at teardown
	onCloseEvents []room.ChangeEvent
}

func (s *fakeSub) Events() <-chan room.ChangeEvent { return s.events }

func (s *fakeSub) Close() error {
	s.closeOnce.Do(func() {
		for _, event := range s.onCloseEvents {
			s.events <- event
		}
		close(s.events)
	})
	return nil
}

type fakePlayer struct {
	mu       sync.Mutex
	commands []string
	loaded   string
	position float64
	duration float64
	playing  bool
}

func (p *fakePlayer) Load(sourceLocator string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.commands = append(p.commands, "load:"+sourceLocator)
	p.loaded = sourceLocator
	p.position = 0
	p.playing = false

	return nil
}

func (p *fakePlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.commands = append(p.commands, "play")
	p.playing = true

	return nil
}

func (p *fakePlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.commands = append(p.commands, "pause")
	p.playing = false

	return nil
}

func (p *fakePlayer) SeekTo(seconds float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.commands = append(p.commands, fmt.Sprintf("seek:%.2f", seconds))
	p.position = seconds

	return nil
}

func (p *fakePlayer) Position() (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.position, nil
}

func (p *fakePlayer) Duration() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.duration
}

func (p *fakePlayer) commandLog() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]string(nil), p.commands...)
}
