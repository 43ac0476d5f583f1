package room

const (
	ChatEntryKindSystem = "system"
	ChatEntryKindUser   = "user"
)

type Participant struct {
	Id       string
	Username string
}

type VideoRef struct {
	VideoId string
	Title   string
}

type Playback struct {
	VideoRef  *VideoRef
	IsPlaying bool
	Position  float64
	UpdatedAt int64
}

type ChatEntry struct {
	Id           int64
	Kind         string
	AuthorName   string
	Text         string
	RenderedTime string
}

type Stats struct {
	Rooms        int
	Participants int
	RoomIds      []string
}
