package wssender

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

// Repo writes outbound messages to websocket connections. Writes to the
// same conn are serialized with a per-conn mutex: broadcasts run on the
// originating participant's goroutine while error frames come from the
// receiving conn's own read loop, and gorilla allows only one writer at a
// time. A failed write is reported but never acted on here; the
// connection's read loop observes the failure and routes the disconnect.
type Repo struct {
	mu    sync.Mutex
	locks map[*websocket.Conn]*sync.Mutex
}

func NewRepo() *Repo {
	return &Repo{locks: make(map[*websocket.Conn]*sync.Mutex)}
}

func (r *Repo) lockFor(conn *websocket.Conn) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.locks[conn]
	if !ok {
		l = &sync.Mutex{}
		r.locks[conn] = l
	}

	return l
}

func (r *Repo) Send(conn *websocket.Conn, msg any) error {
	l := r.lockFor(conn)
	l.Lock()
	defer l.Unlock()

	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(msg)
}

// Forget drops the conn's write lock entry. Called once the conn is
// closed and no writer can reach it anymore.
func (r *Repo) Forget(conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.locks, conn)
}
