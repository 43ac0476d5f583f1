package controller

import (
	"net/http"

	"github.com/watchroom/server/pkg/rest"
)

type createRoomResponse struct {
	RoomId string `json:"room_id"`
}

// createRoom mints an unused room code. The room itself is created lazily
// when the first participant joins it over the websocket endpoint.
func (c controller) createRoom(w http.ResponseWriter, r *http.Request) {
	roomId, err := c.roomService.MintRoomCode(r.Context())
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to mint room code", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to create room"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": createRoomResponse{RoomId: roomId}})
}

func (c controller) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.roomService.Stats(r.Context())
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to get stats", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to get stats"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": stats})
}
