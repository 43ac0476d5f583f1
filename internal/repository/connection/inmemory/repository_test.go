package inmemory

import (
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchroom/server/internal/repository/connection"
)

func TestAddAndLookup(t *testing.T) {
	repo := NewRepo()
	conn := &websocket.Conn{}

	require.NoError(t, repo.Add(conn, "conn-a"))

	got, err := repo.GetConn("conn-a")
	require.NoError(t, err)
	assert.Same(t, conn, got)

	id, err := repo.GetConnectionId(conn)
	require.NoError(t, err)
	assert.Equal(t, "conn-a", id)
}

func TestAddRejectsDuplicates(t *testing.T) {
	repo := NewRepo()
	conn := &websocket.Conn{}

	require.NoError(t, repo.Add(conn, "conn-a"))

	err := repo.Add(conn, "conn-b")
	require.ErrorIs(t, err, connection.ErrAlreadyExists)

	err = repo.Add(&websocket.Conn{}, "conn-a")
	require.ErrorIs(t, err, connection.ErrAlreadyExists)
}

func TestRemoveByConnectionId(t *testing.T) {
	repo := NewRepo()
	conn := &websocket.Conn{}

	require.NoError(t, repo.Add(conn, "conn-a"))
	require.NoError(t, repo.RemoveByConnectionId("conn-a"))

	_, err := repo.GetConn("conn-a")
	require.ErrorIs(t, err, connection.ErrNotFound)

	_, err = repo.GetConnectionId(conn)
	require.ErrorIs(t, err, connection.ErrNotFound)

	err = repo.RemoveByConnectionId("conn-a")
	require.ErrorIs(t, err, connection.ErrNotFound)
}
