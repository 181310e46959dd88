package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/api"
	"github.com/Joaquim-Jambo/Sistema-de-Reserva-de-Cinema/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (app *Application) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var input api.CreateRoomRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	room := &domain.Room{
		ID:        uuid.NewString(),
		Name:      input.Name,
		Rows:      input.Rows,
		Columns:   input.Columns,
		CreatedAt: time.Now().UTC(),
	}

	err = app.roomRepo.Create(r.Context(), room)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomAlreadyExists):
			app.conflictResponse(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	app.contextGetLogger(r).Info("room created", "room_id", room.ID, "capacity", room.Capacity())

	err = app.writeJSON(w, http.StatusCreated, toRoomResponse(room, room.Seats()), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetRoomById(w http.ResponseWriter, r *http.Request) {
	room, err := app.roomRepo.GetById(r.Context(), chi.URLParam(r, "roomId"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	seats, err := app.roomRepo.GetSeats(r.Context(), room.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	labels := make([]string, len(seats))
	for i, seat := range seats {
		labels[i] = seat.Label
	}
	domain.SortSeats(labels)

	err = app.writeJSON(w, http.StatusOK, toRoomResponse(room, labels), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toRoomResponse(room *domain.Room, seats []string) api.RoomResponse {
	return api.RoomResponse{
		Id:        room.ID,
		Name:      room.Name,
		Rows:      room.Rows,
		Columns:   room.Columns,
		Capacity:  room.Capacity(),
		Seats:     seats,
		CreatedAt: room.CreatedAt,
	}
}
