package room

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	repo "github.com/watchroom/server/internal/repository/room"
)

type JoinRoomParams struct {
	Conn         *websocket.Conn
	ConnectionId string
	RoomId       string
	Username     string
}

// JoinRoom adds the connection to the room, creating the room on first
// join. The joiner receives the full room snapshot; everyone else receives
// the updated roster and the join chat entry. The transport must call this
// at most once per connection.
func (s *service) JoinRoom(ctx context.Context, params *JoinRoomParams) error {
	unlock := s.lockRoom(params.RoomId)
	defer unlock()

	if err := s.roomRepo.CreateRoom(ctx, params.RoomId); err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	participants, err := s.roomRepo.GetParticipants(ctx, params.RoomId)
	if err != nil {
		return fmt.Errorf("failed to get participants: %w", err)
	}

	chatHistory, err := s.roomRepo.GetChatHistory(ctx, params.RoomId)
	if err != nil {
		return fmt.Errorf("failed to get chat history: %w", err)
	}

	// a fresh room gets the welcome entry in place of the first joiner's
	// join entry; a rejoin into the deletion grace window finds the chat
	// history intact and is announced like any other join
	fresh := len(participants) == 0 && len(chatHistory) == 0

	if fresh {
		if _, err := s.roomRepo.AppendChatEntry(ctx, &repo.AppendChatEntryParams{
			Kind:   repo.ChatEntryKindSystem,
			Text:   fmt.Sprintf("Welcome to room %s!", params.RoomId),
			RoomId: params.RoomId,
		}); err != nil {
			return fmt.Errorf("failed to append welcome entry: %w", err)
		}
	}

	if err := s.connRepo.Add(params.Conn, params.ConnectionId); err != nil {
		return fmt.Errorf("failed to register connection: %w", err)
	}

	if err := s.roomRepo.AddParticipant(ctx, &repo.AddParticipantParams{
		RoomId: params.RoomId,
		Participant: repo.Participant{
			Id:       params.ConnectionId,
			Username: params.Username,
		},
	}); err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}

	hostId, err := s.roomRepo.GetHostId(ctx, params.RoomId)
	if err != nil {
		return fmt.Errorf("failed to get host id: %w", err)
	}
	if hostId == "" {
		hostId = params.ConnectionId
		if err := s.roomRepo.SetHostId(ctx, &repo.SetHostIdParams{
			HostId: hostId,
			RoomId: params.RoomId,
		}); err != nil {
			return fmt.Errorf("failed to set host id: %w", err)
		}
	}

	var joinEntry repo.ChatEntry
	if !fresh {
		joinEntry, err = s.roomRepo.AppendChatEntry(ctx, &repo.AppendChatEntryParams{
			Kind:   repo.ChatEntryKindSystem,
			Text:   fmt.Sprintf("%s joined the room", params.Username),
			RoomId: params.RoomId,
		})
		if err != nil {
			return fmt.Errorf("failed to append join entry: %w", err)
		}
	}

	// the join entry is appended before the snapshot is built, so the
	// joiner sees it exactly once, in history
	participants, err = s.roomRepo.GetParticipants(ctx, params.RoomId)
	if err != nil {
		return fmt.Errorf("failed to get participants: %w", err)
	}

	chatHistory, err = s.roomRepo.GetChatHistory(ctx, params.RoomId)
	if err != nil {
		return fmt.Errorf("failed to get chat history: %w", err)
	}

	playback, err := s.roomRepo.GetPlayback(ctx, params.RoomId)
	if err != nil {
		return fmt.Errorf("failed to get playback: %w", err)
	}

	s.sendTo(ctx, params.Conn, &Message{
		Type: MessageTypeRoomState,
		Payload: RoomState{
			Playback:    toPlayback(playback),
			Members:     toParticipants(participants),
			IsHost:      hostId == params.ConnectionId,
			ChatHistory: toChatEntries(chatHistory),
		},
	})

	s.broadcast(ctx, params.RoomId, params.ConnectionId, &Message{
		Type:    MessageTypeRosterUpdated,
		Payload: RosterUpdatedPayload{Members: toParticipants(participants)},
	})
	if !fresh {
		s.broadcast(ctx, params.RoomId, params.ConnectionId, &Message{
			Type:    MessageTypeChatMessage,
			Payload: ChatMessagePayload{Entry: toChatEntry(joinEntry)},
		})
	}

	return nil
}

type DisconnectParticipantParams struct {
	ConnectionId string
	RoomId       string
}

// DisconnectParticipant removes the participant from its room and applies
// the disconnect rules: pause a playing video for the remaining
// participants, re-elect the host if needed, announce the departure, and
// arm the deletion timer when the room is left empty. The room and its
// chat history are never deleted synchronously.
func (s *service) DisconnectParticipant(ctx context.Context, params *DisconnectParticipantParams) error {
	unlock := s.lockRoom(params.RoomId)
	defer unlock()

	if err := s.connRepo.RemoveByConnectionId(params.ConnectionId); err != nil {
		s.logger.DebugContext(ctx, "connection already removed", "connection_id", params.ConnectionId)
	}

	removed, err := s.roomRepo.RemoveParticipant(ctx, &repo.RemoveParticipantParams{
		ParticipantId: params.ConnectionId,
		RoomId:        params.RoomId,
	})
	if err != nil {
		return mapRepoErr(err)
	}

	participants, err := s.roomRepo.GetParticipants(ctx, params.RoomId)
	if err != nil {
		return fmt.Errorf("failed to get participants: %w", err)
	}

	playback, err := s.roomRepo.GetPlayback(ctx, params.RoomId)
	if err != nil {
		return fmt.Errorf("failed to get playback: %w", err)
	}

	if playback.IsPlaying && len(participants) > 0 {
		playback.IsPlaying = false
		playback.UpdatedAt = time.Now().UnixMilli()
		if err := s.roomRepo.SetPlayback(ctx, &repo.SetPlaybackParams{
			Playback: playback,
			RoomId:   params.RoomId,
		}); err != nil {
			return fmt.Errorf("failed to set playback: %w", err)
		}

		s.broadcast(ctx, params.RoomId, "", &Message{
			Type: MessageTypePause,
			Payload: PausePayload{
				Position: playback.Position,
				Reason:   PauseReasonUserDisconnected,
				Username: removed.Username,
			},
		})
	}

	hostId, err := s.roomRepo.GetHostId(ctx, params.RoomId)
	if err != nil {
		return fmt.Errorf("failed to get host id: %w", err)
	}

	if hostId == removed.Id {
		// clearing the host id when the room drains lets the next joiner
		// be elected host, even during the deletion grace window
		newHostId := ""
		if len(participants) > 0 {
			newHostId = participants[0].Id
		}

		if err := s.roomRepo.SetHostId(ctx, &repo.SetHostIdParams{
			HostId: newHostId,
			RoomId: params.RoomId,
		}); err != nil {
			return fmt.Errorf("failed to set host id: %w", err)
		}

		if newHostId != "" {
			s.broadcast(ctx, params.RoomId, "", &Message{
				Type:    MessageTypeNewHost,
				Payload: NewHostPayload{HostId: newHostId},
			})
		}
	}

	if removed.Username != "" && len(participants) > 0 {
		leaveEntry, err := s.roomRepo.AppendChatEntry(ctx, &repo.AppendChatEntryParams{
			Kind:   repo.ChatEntryKindSystem,
			Text:   fmt.Sprintf("%s left the room", removed.Username),
			RoomId: params.RoomId,
		})
		if err != nil {
			return fmt.Errorf("failed to append leave entry: %w", err)
		}

		s.broadcast(ctx, params.RoomId, "", &Message{
			Type:    MessageTypeRosterUpdated,
			Payload: RosterUpdatedPayload{Members: toParticipants(participants)},
		})
		s.broadcast(ctx, params.RoomId, "", &Message{
			Type:    MessageTypeChatMessage,
			Payload: ChatMessagePayload{Entry: toChatEntry(leaveEntry)},
		})
	}

	if len(participants) == 0 {
		s.scheduleRoomCleanup(params.RoomId)
	}

	return nil
}

// scheduleRoomCleanup arms the deletion grace timer. The timer is never
// cancelled: at fire time the participant count is re-checked under the
// room lock, so a rejoin during the window keeps the room and a stale
// timer is a no-op.
func (s *service) scheduleRoomCleanup(roomId string) {
	time.AfterFunc(s.roomExp, func() {
		ctx := context.Background()

		unlock := s.lockRoom(roomId)
		defer unlock()

		deleted, err := s.roomRepo.DeleteRoomIfEmpty(ctx, roomId)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to delete room", "room_id", roomId, "error", err)
			return
		}

		if deleted {
			s.logger.InfoContext(ctx, "deleted empty room", "room_id", roomId)
		}
	})
}

// MintRoomCode returns a room code that is not currently in use. The room
// itself is created lazily on first join.
func (s *service) MintRoomCode(ctx context.Context) (string, error) {
	for i := 0; i < 10; i++ {
		code := s.generator.GenerateRandomString(s.roomCodeLength)

		exists, err := s.roomRepo.RoomExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check room existence: %w", err)
		}

		if !exists {
			return code, nil
		}
	}

	return "", errors.New("failed to generate unused room code")
}

func (s *service) Stats(ctx context.Context) (StatsResponse, error) {
	stats, err := s.roomRepo.GetStats(ctx)
	if err != nil {
		return StatsResponse{}, fmt.Errorf("failed to get stats: %w", err)
	}

	return StatsResponse{
		Rooms:        stats.Rooms,
		Participants: stats.Participants,
		RoomIds:      stats.RoomIds,
	}, nil
}
