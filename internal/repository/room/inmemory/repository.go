package inmemory

import (
	"context"
	"sync"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/watchroom/server/internal/repository/room"
)

type roomState struct {
	participants []room.Participant
	hostId       string
	playback     room.Playback
	chatHistory  []room.ChatEntry
	nextEntryId  int64
}

// repo keeps all room state in process memory. Rooms do not survive a
// restart; that is the intended lifecycle.
type repo struct {
	rooms            map[string]*roomState
	chatHistoryLimit int
	mu               sync.RWMutex
}

func NewRepo(chatHistoryLimit int) *repo {
	return &repo{
		rooms:            make(map[string]*roomState),
		chatHistoryLimit: chatHistoryLimit,
	}
}

func (r *repo) CreateRoom(_ context.Context, roomId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[roomId]; ok {
		return nil
	}

	r.rooms[roomId] = &roomState{nextEntryId: 1}
	return nil
}

func (r *repo) RoomExists(_ context.Context, roomId string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.rooms[roomId]
	return ok, nil
}

// DeleteRoomIfEmpty removes the room only when it has no participants left
// and reports whether it was removed. Safe to call for unknown rooms.
func (r *repo) DeleteRoomIfEmpty(_ context.Context, roomId string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.rooms[roomId]
	if !ok {
		return false, nil
	}

	if len(state.participants) > 0 {
		return false, nil
	}

	delete(r.rooms, roomId)
	return true, nil
}

func (r *repo) AddParticipant(_ context.Context, params *room.AddParticipantParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.rooms[params.RoomId]
	if !ok {
		return room.ErrRoomNotFound
	}

	state.participants = append(state.participants, params.Participant)
	return nil
}

func (r *repo) RemoveParticipant(_ context.Context, params *room.RemoveParticipantParams) (room.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.rooms[params.RoomId]
	if !ok {
		return room.Participant{}, room.ErrRoomNotFound
	}

	for i, participant := range state.participants {
		if participant.Id == params.ParticipantId {
			state.participants = append(state.participants[:i], state.participants[i+1:]...)
			return participant, nil
		}
	}

	return room.Participant{}, room.ErrParticipantNotFound
}

func (r *repo) GetParticipant(_ context.Context, params *room.GetParticipantParams) (room.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.rooms[params.RoomId]
	if !ok {
		return room.Participant{}, room.ErrRoomNotFound
	}

	for _, participant := range state.participants {
		if participant.Id == params.ParticipantId {
			return participant, nil
		}
	}

	return room.Participant{}, room.ErrParticipantNotFound
}

// GetParticipants returns the participants in join order.
func (r *repo) GetParticipants(_ context.Context, roomId string) ([]room.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.rooms[roomId]
	if !ok {
		return nil, room.ErrRoomNotFound
	}

	return slices.Clone(state.participants), nil
}

func (r *repo) GetHostId(_ context.Context, roomId string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.rooms[roomId]
	if !ok {
		return "", room.ErrRoomNotFound
	}

	return state.hostId, nil
}

func (r *repo) SetHostId(_ context.Context, params *room.SetHostIdParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.rooms[params.RoomId]
	if !ok {
		return room.ErrRoomNotFound
	}

	state.hostId = params.HostId
	return nil
}

func (r *repo) GetPlayback(_ context.Context, roomId string) (room.Playback, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.rooms[roomId]
	if !ok {
		return room.Playback{}, room.ErrRoomNotFound
	}

	return copyPlayback(state.playback), nil
}

func (r *repo) SetPlayback(_ context.Context, params *room.SetPlaybackParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.rooms[params.RoomId]
	if !ok {
		return room.ErrRoomNotFound
	}

	state.playback = copyPlayback(params.Playback)
	return nil
}

// AppendChatEntry assigns the room's next entry id, appends the entry and
// evicts the oldest entries once the history exceeds the limit. Eviction
// preserves the relative order of the surviving entries.
func (r *repo) AppendChatEntry(_ context.Context, params *room.AppendChatEntryParams) (room.ChatEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.rooms[params.RoomId]
	if !ok {
		return room.ChatEntry{}, room.ErrRoomNotFound
	}

	entry := room.ChatEntry{
		Id:           state.nextEntryId,
		Kind:         params.Kind,
		AuthorName:   params.AuthorName,
		Text:         params.Text,
		RenderedTime: renderedTimeNow(),
	}
	state.nextEntryId++

	state.chatHistory = append(state.chatHistory, entry)
	if overflow := len(state.chatHistory) - r.chatHistoryLimit; overflow > 0 {
		state.chatHistory = slices.Clone(state.chatHistory[overflow:])
	}

	return entry, nil
}

func (r *repo) GetChatHistory(_ context.Context, roomId string) ([]room.ChatEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.rooms[roomId]
	if !ok {
		return nil, room.ErrRoomNotFound
	}

	return slices.Clone(state.chatHistory), nil
}

func (r *repo) GetStats(_ context.Context) (room.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roomIds := maps.Keys(r.rooms)
	slices.Sort(roomIds)

	participants := 0
	for _, state := range r.rooms {
		participants += len(state.participants)
	}

	return room.Stats{
		Rooms:        len(r.rooms),
		Participants: participants,
		RoomIds:      roomIds,
	}, nil
}

func renderedTimeNow() string {
	return time.Now().Format("15:04:05")
}

func copyPlayback(playback room.Playback) room.Playback {
	if playback.VideoRef != nil {
		videoRef := *playback.VideoRef
		playback.VideoRef = &videoRef
	}

	return playback
}
