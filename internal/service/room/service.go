package room

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	repo "github.com/watchroom/server/internal/repository/room"
	"github.com/watchroom/server/pkg/randstr"
)

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrEmptyChatText       = errors.New("empty chat text")
)

type iRoomRepo interface {
	CreateRoom(ctx context.Context, roomId string) error
	RoomExists(ctx context.Context, roomId string) (bool, error)
	DeleteRoomIfEmpty(ctx context.Context, roomId string) (bool, error)
	AddParticipant(ctx context.Context, params *repo.AddParticipantParams) error
	RemoveParticipant(ctx context.Context, params *repo.RemoveParticipantParams) (repo.Participant, error)
	GetParticipant(ctx context.Context, params *repo.GetParticipantParams) (repo.Participant, error)
	GetParticipants(ctx context.Context, roomId string) ([]repo.Participant, error)
	GetHostId(ctx context.Context, roomId string) (string, error)
	SetHostId(ctx context.Context, params *repo.SetHostIdParams) error
	GetPlayback(ctx context.Context, roomId string) (repo.Playback, error)
	SetPlayback(ctx context.Context, params *repo.SetPlaybackParams) error
	AppendChatEntry(ctx context.Context, params *repo.AppendChatEntryParams) (repo.ChatEntry, error)
	GetChatHistory(ctx context.Context, roomId string) ([]repo.ChatEntry, error)
	GetStats(ctx context.Context) (repo.Stats, error)
}

type iConnRepo interface {
	Add(conn *websocket.Conn, connectionId string) error
	RemoveByConnectionId(connectionId string) error
	GetConn(connectionId string) (*websocket.Conn, error)
}

type iSender interface {
	Send(conn *websocket.Conn, msg any) error
}

type iGenerator interface {
	GenerateRandomString(length int) string
}

type Config struct {
	// RoomExp is how long an emptied room is kept alive to tolerate a
	// reconnecting client.
	RoomExp        time.Duration
	RoomCodeLength int
}

type service struct {
	roomRepo       iRoomRepo
	connRepo       iConnRepo
	sender         iSender
	generator      iGenerator
	logger         *slog.Logger
	roomExp        time.Duration
	roomCodeLength int

	locksMu sync.Mutex
	locks   map[string]*roomLock
}

func NewService(roomRepo iRoomRepo, connRepo iConnRepo, sender iSender, cfg *Config, logger *slog.Logger) *service {
	s := service{
		roomRepo:       roomRepo,
		connRepo:       connRepo,
		sender:         sender,
		logger:         logger,
		roomExp:        cfg.RoomExp,
		roomCodeLength: cfg.RoomCodeLength,
		locks:          make(map[string]*roomLock),
	}

	letterBytes := []byte("ABCDEFGHJKLMNPQRSTUVWXYZ23456789")
	s.generator = randstr.New(letterBytes)

	return &s
}

type roomLock struct {
	mu   sync.Mutex
	refs int
}

// lockRoom serializes every transition of a single room, including
// disconnect handling and the deferred deletion callback. Different rooms
// proceed in parallel. The returned func releases the lock.
func (s *service) lockRoom(roomId string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[roomId]
	if !ok {
		l = &roomLock{}
		s.locks[roomId] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, roomId)
		}
		s.locksMu.Unlock()
	}
}

func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, repo.ErrRoomNotFound):
		return ErrRoomNotFound
	case errors.Is(err, repo.ErrParticipantNotFound):
		return ErrParticipantNotFound
	}

	return err
}
