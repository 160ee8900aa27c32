package session

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	roomRedis "github.com/tuneroom/client/internal/repository/room/redis"
)

func newRedisBackedService(t *testing.T, addr, userId string, player *fakePlayer) *service {
	t.Helper()

	rc := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { rc.Close() })

	repo := roomRedis.NewRepo(rc, slog.Default())
	s := NewService(repo, player, &Config{
		UserId:       userId,
		Email:        userId + "@example.com",
		SeekDebounce: 50 * time.Millisecond,
		PollInterval: 50 * time.Millisecond,
	}, slog.Default())
	t.Cleanup(s.Close)

	return s
}

func TestTwoClientScenario(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	queue := []Track{
		{Id: "x", Title: "Track X", SourceLocator: "file:x", Duration: 300},
		{Id: "y", Title: "Track Y", SourceLocator: "file:y", Duration: 300},
	}

	playerA := &fakePlayer{duration: 300}
	clientA := newRedisBackedService(t, mr.Addr(), "client-a", playerA)
	clientA.SetQueue(queue)

	playerB := &fakePlayer{duration: 300}
	clientB := newRedisBackedService(t, mr.Addr(), "client-b", playerB)
	clientB.SetQueue(queue)

	// room is absent: the first join creates it with a neutral pivot
	require.NoError(t, clientA.Join(ctx, "room-1"))
	require.NoError(t, clientB.Join(ctx, "room-1"))

	rcA := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rcA.Close()
	checkRepo := roomRedis.NewRepo(rcA, slog.Default())

	doc, err := checkRepo.GetRoom(ctx, "room-1")
	require.NoError(t, err)
	assert.False(t, doc.IsPlaying)
	assert.Zero(t, doc.LastActionSeekPosition)
	assert.Zero(t, doc.LastActionTime)

	// neither client has been commanded yet: no action was published
	assert.Empty(t, playerB.commandLog())

	// client A starts track x
	require.NoError(t, clientA.ChangeTrack(ctx, "x"))

	require.Eventually(t, func() bool {
		doc, err := checkRepo.GetRoom(ctx, "room-1")
		return err == nil && doc.CurrentTrackId == "x" && doc.IsPlaying
	}, 2*time.Second, 10*time.Millisecond)

	doc, err = checkRepo.GetRoom(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, "client-a", doc.LastActionBy)
	assert.Zero(t, doc.LastActionSeekPosition)
	assert.NotZero(t, doc.LastActionTime, "pivot must carry a store-assigned timestamp")

	// client B is not the writer: it resolves x, loads and plays it near
	// the projected position
	require.Eventually(t, func() bool {
		log := playerB.commandLog()
		return len(log) == 3 && log[0] == "load:file:x" && log[2] == "play"
	}, 2*time.Second, 10*time.Millisecond)

	posB, err := playerB.Position()
	require.NoError(t, err)
	assert.Less(t, posB, 5.0, "projection of a just-published pivot must be near zero")

	// client A only saw its own echo: its transport was commanded by the
	// local action, never by reconciliation
	assert.Equal(t, []string{"load:file:x", "play"}, playerA.commandLog())

	// roster on A surfaces B only
	require.Eventually(t, func() bool {
		s, err := clientA.Status(ctx)
		return err == nil && len(s.Roster) == 1 && s.Roster[0].UserId == "client-b"
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, clientB.Leave(ctx))
	require.NoError(t, clientA.Leave(ctx))
}

func TestJoinIsIdempotent(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	player := &fakePlayer{}
	client := newRedisBackedService(t, mr.Addr(), "client-a", player)

	require.NoError(t, client.Join(ctx, "room-1"))
	require.NoError(t, client.Join(ctx, "room-1"))

	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rc.Close()
	repo := roomRedis.NewRepo(rc, slog.Default())

	participants, err := repo.GetParticipants(ctx, "room-1")
	require.NoError(t, err)
	require.Len(t, participants, 1, "double join must leave exactly one roster entry")
	assert.Contains(t, participants, "client-a")

	require.NoError(t, client.Leave(ctx))

	assert.ErrorIs(t, client.Leave(ctx), ErrNotInRoom)
}

func TestJoinDifferentRoomFails(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	player := &fakePlayer{}
	client := newRedisBackedService(t, mr.Addr(), "client-a", player)

	require.NoError(t, client.Join(ctx, "room-1"))
	assert.ErrorIs(t, client.Join(ctx, "room-2"), ErrAlreadyInRoom)

	require.NoError(t, client.Leave(ctx))
}

func TestLeaveNeverDeletesRoom(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	player := &fakePlayer{duration: 300}
	client := newRedisBackedService(t, mr.Addr(), "client-a", player)
	client.SetQueue([]Track{{Id: "x", SourceLocator: "file:x", Duration: 300}})

	require.NoError(t, client.Join(ctx, "room-1"))
	require.NoError(t, client.ChangeTrack(ctx, "x"))

	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rc.Close()
	repo := roomRedis.NewRepo(rc, slog.Default())

	require.Eventually(t, func() bool {
		doc, err := repo.GetRoom(ctx, "room-1")
		return err == nil && doc.CurrentTrackId == "x"
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, client.Leave(ctx))

	// the last participant is gone but the document and pivot survive
	doc, err := repo.GetRoom(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, "x", doc.CurrentTrackId)
	assert.True(t, doc.IsPlaying)
	assert.NotZero(t, doc.LastActionTime)

	participants, err := repo.GetParticipants(ctx, "room-1")
	require.NoError(t, err)
	assert.Empty(t, participants)
}

func TestReturningParticipantResumesPivot(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	queue := []Track{{Id: "x", SourceLocator: "file:x", Duration: 300}}

	playerA := &fakePlayer{duration: 300}
	clientA := newRedisBackedService(t, mr.Addr(), "client-a", playerA)
	clientA.SetQueue(queue)

	require.NoError(t, clientA.Join(ctx, "room-1"))
	require.NoError(t, clientA.ChangeTrack(ctx, "x"))

	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rc.Close()
	repo := roomRedis.NewRepo(rc, slog.Default())

	require.Eventually(t, func() bool {
		doc, err := repo.GetRoom(ctx, "room-1")
		return err == nil && doc.CurrentTrackId == "x"
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, clientA.Leave(ctx))

	// a fresh client joining the abandoned room resumes the stored pivot
	playerB := &fakePlayer{duration: 300}
	clientB := newRedisBackedService(t, mr.Addr(), "client-b", playerB)
	clientB.SetQueue(queue)

	require.NoError(t, clientB.Join(ctx, "room-1"))

	log := playerB.commandLog()
	require.NotEmpty(t, log)
	assert.Equal(t, "load:file:x", log[0])

	require.NoError(t, clientB.Leave(ctx))
}

