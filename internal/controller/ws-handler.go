package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/watchroom/server/internal/service/room"
	"github.com/watchroom/server/pkg/wsrouter"
)

type EmptyInput struct{}

func (c controller) handleAlive(_ context.Context, _ *websocket.Conn, _ EmptyInput) error {
	return nil
}

type ChangeVideoInput struct {
	VideoId string `json:"video_id" validate:"required"`
	Title   string `json:"title" validate:"required"`
}

func (c controller) handleChangeVideo(ctx context.Context, conn *websocket.Conn, input ChangeVideoInput) error {
	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.writeError(ctx, conn, fmt.Sprintf("invalid payload: %v", validationErrors))
		return nil
	}

	if err := c.roomService.ChangeVideo(ctx, &room.ChangeVideoParams{
		VideoId:  input.VideoId,
		Title:    input.Title,
		SenderId: c.getConnectionIdFromCtx(ctx),
		RoomId:   c.getRoomIdFromCtx(ctx),
	}); err != nil {
		return fmt.Errorf("failed to change video: %w", err)
	}

	return nil
}

type PlayInput struct {
	Position float64 `json:"position" validate:"gte=0"`
}

func (c controller) handlePlay(ctx context.Context, conn *websocket.Conn, input PlayInput) error {
	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.writeError(ctx, conn, fmt.Sprintf("invalid payload: %v", validationErrors))
		return nil
	}

	if err := c.roomService.Play(ctx, &room.PlayParams{
		Position: input.Position,
		SenderId: c.getConnectionIdFromCtx(ctx),
		RoomId:   c.getRoomIdFromCtx(ctx),
	}); err != nil {
		return fmt.Errorf("failed to play: %w", err)
	}

	return nil
}

type PauseInput struct {
	Position float64 `json:"position" validate:"gte=0"`
}

func (c controller) handlePause(ctx context.Context, conn *websocket.Conn, input PauseInput) error {
	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.writeError(ctx, conn, fmt.Sprintf("invalid payload: %v", validationErrors))
		return nil
	}

	if err := c.roomService.Pause(ctx, &room.PauseParams{
		Position: input.Position,
		SenderId: c.getConnectionIdFromCtx(ctx),
		RoomId:   c.getRoomIdFromCtx(ctx),
	}); err != nil {
		return fmt.Errorf("failed to pause: %w", err)
	}

	return nil
}

type SeekInput struct {
	Position float64 `json:"position" validate:"gte=0"`
}

func (c controller) handleSeek(ctx context.Context, conn *websocket.Conn, input SeekInput) error {
	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.writeError(ctx, conn, fmt.Sprintf("invalid payload: %v", validationErrors))
		return nil
	}

	if err := c.roomService.Seek(ctx, &room.SeekParams{
		Position: input.Position,
		SenderId: c.getConnectionIdFromCtx(ctx),
		RoomId:   c.getRoomIdFromCtx(ctx),
	}); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	return nil
}

type ChatInput struct {
	Text string `json:"text" validate:"required"`
}

func (c controller) handleChat(ctx context.Context, conn *websocket.Conn, input ChatInput) error {
	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.writeError(ctx, conn, fmt.Sprintf("invalid payload: %v", validationErrors))
		return nil
	}

	if err := c.roomService.SendChat(ctx, &room.SendChatParams{
		Text:     input.Text,
		SenderId: c.getConnectionIdFromCtx(ctx),
		RoomId:   c.getRoomIdFromCtx(ctx),
	}); err != nil {
		return fmt.Errorf("failed to send chat: %w", err)
	}

	return nil
}

func (c controller) handleGetChatHistory(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	if err := c.roomService.GetChatHistory(ctx, &room.GetChatHistoryParams{
		SenderId: c.getConnectionIdFromCtx(ctx),
		RoomId:   c.getRoomIdFromCtx(ctx),
	}); err != nil {
		return fmt.Errorf("failed to get chat history: %w", err)
	}

	return nil
}

// handleWSError is the wsmux error callback. A bad event affects at most
// the connection it came from: stale room or sender references are the
// expected aftermath of a disconnect and are dropped quietly.
func (c controller) handleWSError(ctx context.Context, conn *websocket.Conn, err error) {
	switch {
	case errors.Is(err, room.ErrRoomNotFound), errors.Is(err, room.ErrParticipantNotFound):
		c.logger.DebugContext(ctx, "event for unknown room or sender dropped", "error", err)
	case errors.Is(err, room.ErrEmptyChatText):
		c.writeError(ctx, conn, "chat text must not be empty")
	case errors.Is(err, wsrouter.ErrMalformedPayload):
		c.logger.DebugContext(ctx, "malformed payload dropped", "error", err)
		c.writeError(ctx, conn, "malformed payload")
	case errors.Is(err, wsrouter.ErrUnknownType):
		c.logger.DebugContext(ctx, "unknown message type dropped",
			"message_type", wsrouter.GetMessageTypeFromCtx(ctx))
		c.writeError(ctx, conn, "unknown message type")
	default:
		c.logger.WarnContext(ctx, "failed to handle ws message", "error", err)
	}
}

func (c controller) writeError(ctx context.Context, conn *websocket.Conn, message string) {
	if err := c.sender.Send(conn, &room.Message{
		Type:    room.MessageTypeError,
		Payload: room.ErrorPayload{Message: message},
	}); err != nil {
		c.logger.DebugContext(ctx, "failed to write error", "error", err)
	}
}
