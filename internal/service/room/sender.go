package room

import (
	"context"

	"github.com/gorilla/websocket"
)

func (s *service) sendTo(ctx context.Context, conn *websocket.Conn, msg *Message) {
	if err := s.sender.Send(conn, msg); err != nil {
		s.logger.WarnContext(ctx, "failed to send message", "type", msg.Type, "error", err)
	}
}

// broadcast writes msg to every participant of the room except
// excludedId. Callers hold the room lock, so all recipients observe the
// room's messages in the same order the transitions were applied.
func (s *service) broadcast(ctx context.Context, roomId string, excludedId string, msg *Message) {
	participants, err := s.roomRepo.GetParticipants(ctx, roomId)
	if err != nil {
		s.logger.DebugContext(ctx, "failed to get participants", "room_id", roomId, "error", err)
		return
	}

	for _, participant := range participants {
		if participant.Id == excludedId {
			continue
		}

		conn, err := s.connRepo.GetConn(participant.Id)
		if err != nil {
			// participant's conn may already be gone mid-disconnect
			continue
		}

		s.sendTo(ctx, conn, msg)
	}
}
