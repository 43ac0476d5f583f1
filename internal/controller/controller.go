package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/watchroom/server/internal/service/room"
	"github.com/watchroom/server/pkg/validator"
	"github.com/watchroom/server/pkg/wsrouter"
)

type iRoomService interface {
	MintRoomCode(ctx context.Context) (string, error)
	JoinRoom(ctx context.Context, params *room.JoinRoomParams) error
	DisconnectParticipant(ctx context.Context, params *room.DisconnectParticipantParams) error
	ChangeVideo(ctx context.Context, params *room.ChangeVideoParams) error
	Play(ctx context.Context, params *room.PlayParams) error
	Pause(ctx context.Context, params *room.PauseParams) error
	Seek(ctx context.Context, params *room.SeekParams) error
	SendChat(ctx context.Context, params *room.SendChatParams) error
	GetChatHistory(ctx context.Context, params *room.GetChatHistoryParams) error
	Stats(ctx context.Context) (room.StatsResponse, error)
}

// iSender serializes writes to a conn. Error frames must go through the
// same path as room broadcasts: gorilla allows only one concurrent writer
// per conn.
type iSender interface {
	Send(conn *websocket.Conn, msg any) error
	Forget(conn *websocket.Conn)
}

type controller struct {
	roomService iRoomService
	sender      iSender
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	wsmux       *wsrouter.WSRouter
	logger      *slog.Logger
}

func NewController(roomService iRoomService, sender iSender, logger *slog.Logger) *controller {
	c := controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		roomService: roomService,
		sender:      sender,
		validate:    validator.NewValidator(),
		logger:      logger,
	}
	c.wsmux = c.getWSRouter()

	return &c
}
