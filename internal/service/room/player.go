package room

import (
	"context"
	"fmt"
	"time"

	repo "github.com/watchroom/server/internal/repository/room"
)

type ChangeVideoParams struct {
	VideoId  string
	Title    string
	SenderId string
	RoomId   string
}

// ChangeVideo loads a new video into the room, resetting the playhead to a
// paused position zero. Any participant may load a video; the sender gets
// the broadcast echoed back like everyone else.
func (s *service) ChangeVideo(ctx context.Context, params *ChangeVideoParams) error {
	unlock := s.lockRoom(params.RoomId)
	defer unlock()

	sender, err := s.roomRepo.GetParticipant(ctx, &repo.GetParticipantParams{
		ParticipantId: params.SenderId,
		RoomId:        params.RoomId,
	})
	if err != nil {
		return mapRepoErr(err)
	}

	if err := s.roomRepo.SetPlayback(ctx, &repo.SetPlaybackParams{
		Playback: repo.Playback{
			VideoRef: &repo.VideoRef{
				VideoId: params.VideoId,
				Title:   params.Title,
			},
			IsPlaying: false,
			Position:  0,
			UpdatedAt: time.Now().UnixMilli(),
		},
		RoomId: params.RoomId,
	}); err != nil {
		return fmt.Errorf("failed to set playback: %w", err)
	}

	entry, err := s.roomRepo.AppendChatEntry(ctx, &repo.AppendChatEntryParams{
		Kind:   repo.ChatEntryKindSystem,
		Text:   fmt.Sprintf("%s loaded: %s", sender.Username, params.Title),
		RoomId: params.RoomId,
	})
	if err != nil {
		return fmt.Errorf("failed to append chat entry: %w", err)
	}

	s.broadcast(ctx, params.RoomId, "", &Message{
		Type: MessageTypeVideoChanged,
		Payload: VideoChangedPayload{
			VideoId:   params.VideoId,
			Title:     params.Title,
			Position:  0,
			IsPlaying: false,
			ChangedBy: sender.Username,
		},
	})
	s.broadcast(ctx, params.RoomId, "", &Message{
		Type:    MessageTypeChatMessage,
		Payload: ChatMessagePayload{Entry: toChatEntry(entry)},
	})

	return nil
}

type PlayParams struct {
	Position float64
	SenderId string
	RoomId   string
}

// Play starts playback at the given position. The sender already applied
// the action locally, so the broadcast excludes it.
func (s *service) Play(ctx context.Context, params *PlayParams) error {
	unlock := s.lockRoom(params.RoomId)
	defer unlock()

	playback, err := s.roomRepo.GetPlayback(ctx, params.RoomId)
	if err != nil {
		return mapRepoErr(err)
	}

	playback.IsPlaying = true
	playback.Position = params.Position
	playback.UpdatedAt = time.Now().UnixMilli()

	if err := s.roomRepo.SetPlayback(ctx, &repo.SetPlaybackParams{
		Playback: playback,
		RoomId:   params.RoomId,
	}); err != nil {
		return fmt.Errorf("failed to set playback: %w", err)
	}

	s.broadcast(ctx, params.RoomId, params.SenderId, &Message{
		Type:    MessageTypePlay,
		Payload: PlayPayload{Position: params.Position},
	})

	return nil
}

type PauseParams struct {
	Position float64
	SenderId string
	RoomId   string
}

func (s *service) Pause(ctx context.Context, params *PauseParams) error {
	unlock := s.lockRoom(params.RoomId)
	defer unlock()

	playback, err := s.roomRepo.GetPlayback(ctx, params.RoomId)
	if err != nil {
		return mapRepoErr(err)
	}

	playback.IsPlaying = false
	playback.Position = params.Position
	playback.UpdatedAt = time.Now().UnixMilli()

	if err := s.roomRepo.SetPlayback(ctx, &repo.SetPlaybackParams{
		Playback: playback,
		RoomId:   params.RoomId,
	}); err != nil {
		return fmt.Errorf("failed to set playback: %w", err)
	}

	s.broadcast(ctx, params.RoomId, params.SenderId, &Message{
		Type:    MessageTypePause,
		Payload: PausePayload{Position: params.Position},
	})

	return nil
}

type SeekParams struct {
	Position float64
	SenderId string
	RoomId   string
}

// Seek moves the playhead without touching the playing flag.
func (s *service) Seek(ctx context.Context, params *SeekParams) error {
	unlock := s.lockRoom(params.RoomId)
	defer unlock()

	playback, err := s.roomRepo.GetPlayback(ctx, params.RoomId)
	if err != nil {
		return mapRepoErr(err)
	}

	playback.Position = params.Position
	playback.UpdatedAt = time.Now().UnixMilli()

	if err := s.roomRepo.SetPlayback(ctx, &repo.SetPlaybackParams{
		Playback: playback,
		RoomId:   params.RoomId,
	}); err != nil {
		return fmt.Errorf("failed to set playback: %w", err)
	}

	s.broadcast(ctx, params.RoomId, params.SenderId, &Message{
		Type:    MessageTypeSeek,
		Payload: SeekPayload{Position: params.Position},
	})

	return nil
}
