package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tuneroom/client/internal/repository/room"
	"github.com/tuneroom/client/internal/service/session"
	"github.com/tuneroom/client/pkg/rest"
)

func (c controller) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrTrackNotFound), errors.Is(err, room.ErrRoomNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrNotInRoom), errors.Is(err, session.ErrAlreadyInRoom),
		errors.Is(err, session.ErrNoCurrentTrack):
		status = http.StatusConflict
	}

	c.logger.InfoContext(r.Context(), "request failed", "error", err)
	rest.WriteJSON(w, status, rest.Envelope{"error": err.Error()})
}

func (c controller) JoinRoom(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")

	if err := c.sessionService.Join(r.Context(), roomId); err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": rest.Envelope{"room_id": roomId}})
}

func (c controller) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	if err := c.sessionService.Leave(r.Context()); err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": rest.Envelope{}})
}

func (c controller) GetRoom(w http.ResponseWriter, r *http.Request) {
	status, err := c.sessionService.Status(r.Context())
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": status})
}

func (c controller) Play(w http.ResponseWriter, r *http.Request) {
	if err := c.sessionService.Play(r.Context()); err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": rest.Envelope{}})
}

func (c controller) Pause(w http.ResponseWriter, r *http.Request) {
	if err := c.sessionService.Pause(r.Context()); err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": rest.Envelope{}})
}

type seekRequest struct {
	Position float64 `json:"position" validate:"gte=0"`
}

func (c controller) Seek(w http.ResponseWriter, r *http.Request) {
	var req seekRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	if err := c.sessionService.Seek(r.Context(), req.Position); err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": rest.Envelope{}})
}

type changeTrackRequest struct {
	TrackId string `json:"track_id" validate:"required"`
}

func (c controller) ChangeTrack(w http.ResponseWriter, r *http.Request) {
	var req changeTrackRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	if err := c.sessionService.ChangeTrack(r.Context(), req.TrackId); err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": rest.Envelope{}})
}

type likeRequest struct {
	TrackId string `json:"track_id" validate:"required"`
}

func (c controller) Like(w http.ResponseWriter, r *http.Request) {
	var req likeRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	liked, err := c.sessionService.ToggleLike(r.Context(), req.TrackId)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": rest.Envelope{"liked": liked}})
}

type moodRequest struct {
	TrackId string `json:"track_id" validate:"required"`
	Mood    string `json:"mood" validate:"required,max=32"`
}

func (c controller) Mood(w http.ResponseWriter, r *http.Request) {
	var req moodRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	if err := c.sessionService.SetMood(r.Context(), req.TrackId, req.Mood); err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": rest.Envelope{}})
}

func (c controller) GetAnnotations(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	if kind != room.AnnotationLike && kind != room.AnnotationMood {
		rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "unknown annotation kind"})
		return
	}

	annotations, err := c.sessionService.Annotations(r.Context(), kind)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": annotations})
}

func (c controller) GetQueue(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": c.sessionService.Queue()})
}

type putQueueRequest struct {
	Tracks []session.Track `json:"tracks" validate:"required,dive"`
}

func (c controller) PutQueue(w http.ResponseWriter, r *http.Request) {
	var req putQueueRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	c.sessionService.SetQueue(req.Tracks)

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": rest.Envelope{}})
}
