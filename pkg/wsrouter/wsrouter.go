package wsrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
)

// ErrMalformedPayload is wrapped into errors returned by typed handlers
// when the payload cannot be unmarshaled into the handler's input type.
var ErrMalformedPayload = errors.New("malformed payload")

// ErrUnknownType is passed to the error handler when a message names a
// type no handler is registered for.
var ErrUnknownType = errors.New("unknown message type")

type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type HandlerFunc[T any] func(ctx context.Context, conn *websocket.Conn, input T) error

type Middleware func(next HandlerFunc[json.RawMessage]) HandlerFunc[json.RawMessage]

type ErrorHandlerFunc func(ctx context.Context, conn *websocket.Conn, err error)

type WSRouter struct {
	routes       map[string]HandlerFunc[json.RawMessage]
	middlewares  []Middleware
	errorHandler ErrorHandlerFunc
}

func New() *WSRouter {
	return &WSRouter{routes: make(map[string]HandlerFunc[json.RawMessage])}
}

func (r *WSRouter) Use(mw ...Middleware) {
	r.middlewares = append(r.middlewares, mw...)
}

// OnError sets the callback invoked when a handler returns an error.
// Handler errors never terminate the connection.
func (r *WSRouter) OnError(fn ErrorHandlerFunc) {
	r.errorHandler = fn
}

// Handle registers a typed handler for a message type. The payload is
// unmarshaled into T before the handler runs; an empty payload yields the
// zero value of T.
func Handle[T any](r *WSRouter, messageType string, handler HandlerFunc[T]) {
	r.routes[messageType] = func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
		var input T
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &input); err != nil {
				return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
			}
		}

		return handler(ctx, conn, input)
	}
}

// ServeConn reads messages from the connection and dispatches them to
// registered handlers until the connection fails or is closed. Messages of
// unknown type are reported to the error handler and skipped; the mux
// itself never writes to the conn.
func (r *WSRouter) ServeConn(ctx context.Context, conn *websocket.Conn) error {
	defer conn.Close()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		handler, exists := r.routes[msg.Type]
		if !exists {
			if r.errorHandler != nil {
				msgCtx := context.WithValue(ctx, messageTypeKey, msg.Type)
				r.errorHandler(msgCtx, conn, ErrUnknownType)
			}
			continue
		}

		for i := len(r.middlewares) - 1; i >= 0; i-- {
			handler = r.middlewares[i](handler)
		}

		msgCtx := context.WithValue(ctx, messageTypeKey, msg.Type)
		if err := handler(msgCtx, conn, msg.Payload); err != nil {
			if r.errorHandler != nil {
				r.errorHandler(msgCtx, conn, err)
			}
		}
	}
}
