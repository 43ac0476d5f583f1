package room

import repo "github.com/watchroom/server/internal/repository/room"

const (
	MessageTypeRoomState     = "ROOM_STATE"
	MessageTypeRosterUpdated = "ROSTER_UPDATED"
	MessageTypeNewHost       = "NEW_HOST"
	MessageTypeVideoChanged  = "VIDEO_CHANGED"
	MessageTypePlay          = "PLAY"
	MessageTypePause         = "PAUSE"
	MessageTypeSeek          = "SEEK"
	MessageTypeChatMessage   = "CHAT_MESSAGE"
	MessageTypeChatHistory   = "CHAT_HISTORY"
	MessageTypeError         = "ERROR"
)

const PauseReasonUserDisconnected = "user-disconnected"

type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type Participant struct {
	Id       string `json:"id"`
	Username string `json:"username"`
}

type VideoRef struct {
	VideoId string `json:"video_id"`
	Title   string `json:"title"`
}

type Playback struct {
	VideoRef  *VideoRef `json:"video_ref"`
	IsPlaying bool      `json:"is_playing"`
	Position  float64   `json:"position"`
	UpdatedAt int64     `json:"updated_at"`
}

type ChatEntry struct {
	Id           int64  `json:"id"`
	Kind         string `json:"kind"`
	AuthorName   string `json:"author_name,omitempty"`
	Text         string `json:"text"`
	RenderedTime string `json:"rendered_time"`
}

// RoomState is the full snapshot sent to a joining or re-syncing
// participant.
type RoomState struct {
	Playback    Playback      `json:"playback"`
	Members     []Participant `json:"members"`
	IsHost      bool          `json:"is_host"`
	ChatHistory []ChatEntry   `json:"chat_history"`
}

type RosterUpdatedPayload struct {
	Members []Participant `json:"members"`
}

type NewHostPayload struct {
	HostId string `json:"host_id"`
}

type VideoChangedPayload struct {
	VideoId   string  `json:"video_id"`
	Title     string  `json:"title"`
	Position  float64 `json:"position"`
	IsPlaying bool    `json:"is_playing"`
	ChangedBy string  `json:"changed_by"`
}

type PlayPayload struct {
	Position float64 `json:"position"`
}

type PausePayload struct {
	Position float64 `json:"position"`
	Reason   string  `json:"reason,omitempty"`
	Username string  `json:"username,omitempty"`
}

type SeekPayload struct {
	Position float64 `json:"position"`
}

type ChatMessagePayload struct {
	Entry ChatEntry `json:"entry"`
}

type ChatHistoryPayload struct {
	Entries []ChatEntry `json:"entries"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type StatsResponse struct {
	Rooms        int      `json:"rooms"`
	Participants int      `json:"participants"`
	RoomIds      []string `json:"room_ids"`
}

func toParticipant(participant repo.Participant) Participant {
	return Participant{
		Id:       participant.Id,
		Username: participant.Username,
	}
}

func toParticipants(participants []repo.Participant) []Participant {
	members := make([]Participant, 0, len(participants))
	for _, participant := range participants {
		members = append(members, toParticipant(participant))
	}

	return members
}

func toPlayback(playback repo.Playback) Playback {
	out := Playback{
		IsPlaying: playback.IsPlaying,
		Position:  playback.Position,
		UpdatedAt: playback.UpdatedAt,
	}
	if playback.VideoRef != nil {
		out.VideoRef = &VideoRef{
			VideoId: playback.VideoRef.VideoId,
			Title:   playback.VideoRef.Title,
		}
	}

	return out
}

func toChatEntry(entry repo.ChatEntry) ChatEntry {
	return ChatEntry{
		Id:           entry.Id,
		Kind:         entry.Kind,
		AuthorName:   entry.AuthorName,
		Text:         entry.Text,
		RenderedTime: entry.RenderedTime,
	}
}

func toChatEntries(entries []repo.ChatEntry) []ChatEntry {
	out := make([]ChatEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toChatEntry(entry))
	}

	return out
}
