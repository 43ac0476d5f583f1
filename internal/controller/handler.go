package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/watchroom/server/internal/service/room"
	"github.com/watchroom/server/pkg/rest"
)

type joinRoomRequest struct {
	RoomId   string `json:"room_id" validate:"required,max=16"`
	Username string `json:"username" validate:"required,max=32"`
}

// joinRoom upgrades the request to a websocket, joins the connection into
// the room and serves its messages until the connection drops. The
// disconnect path runs exactly once per served connection.
func (c controller) joinRoom(w http.ResponseWriter, r *http.Request) {
	req := joinRoomRequest{
		RoomId:   chi.URLParam(r, "room-id"),
		Username: r.URL.Query().Get("username"),
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		c.logger.DebugContext(r.Context(), "invalid join request", "errors", validationErrors)
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}

	connectionId := uuid.NewString()

	if err := c.roomService.JoinRoom(r.Context(), &room.JoinRoomParams{
		Conn:         conn,
		ConnectionId: connectionId,
		RoomId:       req.RoomId,
		Username:     req.Username,
	}); err != nil {
		c.logger.WarnContext(r.Context(), "failed to join room", "error", err)
		conn.Close()
		return
	}
	defer c.sender.Forget(conn)
	defer c.disconnect(r.Context(), connectionId, req.RoomId)

	ctx := context.WithValue(r.Context(), roomIdCtxKey, req.RoomId)
	ctx = context.WithValue(ctx, connectionIdCtxKey, connectionId)

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.DebugContext(r.Context(), "connection closed", "error", err)
	}
}

func (c controller) disconnect(ctx context.Context, connectionId, roomId string) {
	if err := c.roomService.DisconnectParticipant(ctx, &room.DisconnectParticipantParams{
		ConnectionId: connectionId,
		RoomId:       roomId,
	}); err != nil {
		// the room may already be gone; nothing left to unwind
		c.logger.DebugContext(ctx, "disconnect dropped", "connection_id", connectionId, "error", err)
	}
}
