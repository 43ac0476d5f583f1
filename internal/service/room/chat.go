package room

import (
	"context"
	"fmt"
	"strings"

	repo "github.com/watchroom/server/internal/repository/room"
)

type SendChatParams struct {
	Text     string
	SenderId string
	RoomId   string
}

// SendChat appends a user chat entry and echoes it to every participant,
// sender included, so the sender picks up the server-assigned id and
// timestamp.
func (s *service) SendChat(ctx context.Context, params *SendChatParams) error {
	if strings.TrimSpace(params.Text) == "" {
		return ErrEmptyChatText
	}

	unlock := s.lockRoom(params.RoomId)
	defer unlock()

	sender, err := s.roomRepo.GetParticipant(ctx, &repo.GetParticipantParams{
		ParticipantId: params.SenderId,
		RoomId:        params.RoomId,
	})
	if err != nil {
		return mapRepoErr(err)
	}

	entry, err := s.roomRepo.AppendChatEntry(ctx, &repo.AppendChatEntryParams{
		Kind:       repo.ChatEntryKindUser,
		AuthorName: sender.Username,
		Text:       params.Text,
		RoomId:     params.RoomId,
	})
	if err != nil {
		return fmt.Errorf("failed to append chat entry: %w", err)
	}

	s.broadcast(ctx, params.RoomId, "", &Message{
		Type:    MessageTypeChatMessage,
		Payload: ChatMessagePayload{Entry: toChatEntry(entry)},
	})

	return nil
}

type GetChatHistoryParams struct {
	SenderId string
	RoomId   string
}

// GetChatHistory replays the full history to the requesting participant
// only. Clients use it to recover from a missed push.
func (s *service) GetChatHistory(ctx context.Context, params *GetChatHistoryParams) error {
	unlock := s.lockRoom(params.RoomId)
	defer unlock()

	if _, err := s.roomRepo.GetParticipant(ctx, &repo.GetParticipantParams{
		ParticipantId: params.SenderId,
		RoomId:        params.RoomId,
	}); err != nil {
		return mapRepoErr(err)
	}

	entries, err := s.roomRepo.GetChatHistory(ctx, params.RoomId)
	if err != nil {
		return fmt.Errorf("failed to get chat history: %w", err)
	}

	conn, err := s.connRepo.GetConn(params.SenderId)
	if err != nil {
		return fmt.Errorf("failed to get conn: %w", err)
	}

	s.sendTo(ctx, conn, &Message{
		Type:    MessageTypeChatHistory,
		Payload: ChatHistoryPayload{Entries: toChatEntries(entries)},
	})

	return nil
}
