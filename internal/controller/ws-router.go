package controller

import (
	"github.com/watchroom/server/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	mux.Use(c.loggerWSMw())
	mux.OnError(c.handleWSError)

	// keepalive
	wsrouter.Handle(mux, "ALIVE", c.handleAlive)

	// playback
	wsrouter.Handle(mux, "CHANGE_VIDEO", c.handleChangeVideo)
	wsrouter.Handle(mux, "PLAY", c.handlePlay)
	wsrouter.Handle(mux, "PAUSE", c.handlePause)
	wsrouter.Handle(mux, "SEEK", c.handleSeek)

	// chat
	wsrouter.Handle(mux, "CHAT", c.handleChat)
	wsrouter.Handle(mux, "GET_CHAT_HISTORY", c.handleGetChatHistory)

	return mux
}
