package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/tuneroom/client/internal/repository/room"
	"github.com/tuneroom/client/internal/service/session"
	"github.com/tuneroom/client/pkg/validator"
)

type iSessionService interface {
	Join(ctx context.Context, roomId string) error
	Leave(ctx context.Context) error
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Seek(ctx context.Context, seconds float64) error
	ChangeTrack(ctx context.Context, trackId string) error
	ToggleLike(ctx context.Context, trackId string) (bool, error)
	SetMood(ctx context.Context, trackId, mood string) error
	Annotations(ctx context.Context, kind string) ([]room.Annotation, error)
	Status(ctx context.Context) (session.Status, error)
	SetQueue(tracks []session.Track)
	Queue() []session.Track
	SubscribeUpdates() (<-chan session.PositionUpdate, func())
}

type controller struct {
	sessionService iSessionService
	upgrader       websocket.Upgrader
	validate       *validator.Validator
	logger         *slog.Logger
}

func NewController(sessionService iSessionService, logger *slog.Logger) *controller {
	return &controller{
		sessionService: sessionService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// the control API binds to loopback; the UI is trusted
				return true
			},
		},
		validate: validator.NewValidator(),
		logger:   logger,
	}
}
