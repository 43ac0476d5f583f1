package room

type AddParticipantParams struct {
	RoomId      string
	Participant Participant
}

type RemoveParticipantParams struct {
	ParticipantId string
	RoomId        string
}

type GetParticipantParams struct {
	ParticipantId string
	RoomId        string
}

type SetHostIdParams struct {
	HostId string
	RoomId string
}

type SetPlaybackParams struct {
	Playback Playback
	RoomId   string
}

type AppendChatEntryParams struct {
	Kind       string
	AuthorName string
	Text       string
	RoomId     string
}
